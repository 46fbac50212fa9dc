package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"tomato/internal/model"
)

// ToCSV writes the session log as CSV. The tasks map resolves task ids to
// their text; records pointing at a deleted task show "Unknown".
func ToCSV(records []model.SessionRecord, tasks map[string]*model.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Type", "Task", "Started", "Completed At", "Duration (min)", "Completed"}); err != nil {
		return err
	}

	for _, r := range records {
		taskText := ""
		if r.TaskID != nil {
			taskText = "Unknown"
			if t, ok := tasks[*r.TaskID]; ok {
				taskText = t.Text
			}
		}
		completedAt := ""
		if r.CompletedAt != nil {
			completedAt = r.CompletedAt.Local().Format(time.RFC3339)
		}

		row := []string{
			r.ID,
			r.Type,
			taskText,
			r.StartedAt.Local().Format(time.RFC3339),
			completedAt,
			fmt.Sprintf("%d", r.DurationMinutes),
			fmt.Sprintf("%t", r.Completed),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}
