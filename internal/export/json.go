package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"tomato/internal/model"
)

// Snapshot is the full-backup document: every task, the whole session log
// and the per-day summaries, in one file.
type Snapshot struct {
	ExportedAt   string                `json:"exported_at"`
	TaskCount    int                   `json:"task_count"`
	SessionCount int                   `json:"session_count"`
	Tasks        []model.Task          `json:"tasks"`
	Sessions     []model.SessionRecord `json:"sessions"`
	DailyStats   []model.DailyStats    `json:"daily_stats"`
}

// ToJSON writes a pretty-printed Snapshot to path.
func ToJSON(tasks []model.Task, records []model.SessionRecord, stats []model.DailyStats, path string) error {
	snap := Snapshot{
		ExportedAt:   time.Now().UTC().Format(time.RFC3339),
		TaskCount:    len(tasks),
		SessionCount: len(records),
		Tasks:        tasks,
		Sessions:     records,
		DailyStats:   stats,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
