package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tomato/internal/model"
)

func sampleData() ([]model.SessionRecord, map[string]*model.Task) {
	now := time.Now().UTC()
	end := now
	tid := "task-1"

	records := []model.SessionRecord{
		{
			ID:              "rec-1",
			TaskID:          &tid,
			Type:            model.TypeWork,
			DurationMinutes: 25,
			Completed:       true,
			StartedAt:       now.Add(-1 * time.Hour),
			CompletedAt:     &end,
		},
		{
			ID:              "rec-2",
			Type:            model.TypeShortBreak,
			DurationMinutes: 5,
			Completed:       true,
			StartedAt:       now.Add(-30 * time.Minute),
			CompletedAt:     &end,
		},
		{
			ID:              "rec-3",
			TaskID:          &tid,
			Type:            model.TypeWork,
			DurationMinutes: 25,
			Completed:       false, // interrupted
			StartedAt:       now.Add(-10 * time.Minute),
			CompletedAt:     nil,
		},
	}

	tasks := map[string]*model.Task{
		"task-1": {ID: "task-1", Text: "write report", Priority: 1, CreatedAt: now},
	}

	return records, tasks
}

// ============================================================
// CSV
// ============================================================

func TestToCSV(t *testing.T) {
	records, tasks := sampleData()
	path := filepath.Join(t.TempDir(), "test.csv")

	err := ToCSV(records, tasks, path)
	if err != nil {
		t.Fatalf("ToCSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	// header + 3 data rows
	if len(rows) != 4 {
		t.Fatalf("expected 4 rows (1 header + 3 data), got %d", len(rows))
	}

	header := rows[0]
	expectedHeader := []string{"ID", "Type", "Task", "Started", "Completed At", "Duration (min)", "Completed"}
	for i, h := range expectedHeader {
		if header[i] != h {
			t.Fatalf("header[%d] = %q, want %q", i, header[i], h)
		}
	}

	row := rows[1]
	if row[0] != "rec-1" {
		t.Fatalf("ID = %q, want rec-1", row[0])
	}
	if row[1] != model.TypeWork {
		t.Fatalf("Type = %q, want work", row[1])
	}
	if row[2] != "write report" {
		t.Fatalf("Task = %q, want 'write report'", row[2])
	}
	if row[5] != "25" {
		t.Fatalf("Duration = %q, want 25", row[5])
	}
	if row[6] != "true" {
		t.Fatalf("Completed = %q, want true", row[6])
	}

	// Break rows carry no task text.
	if rows[2][2] != "" {
		t.Fatalf("break row should have empty task, got %q", rows[2][2])
	}

	// Interrupted records have empty completion time.
	if rows[3][4] != "" {
		t.Fatalf("interrupted record should have empty completion time, got %q", rows[3][4])
	}
}

func TestToCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")

	err := ToCSV(nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	rows, _ := r.ReadAll()
	if len(rows) != 1 {
		t.Fatalf("expected 1 row (header only), got %d", len(rows))
	}
}

func TestToCSVUnknownTask(t *testing.T) {
	gone := "deleted-task"
	records := []model.SessionRecord{
		{
			ID:              "rec-1",
			TaskID:          &gone,
			Type:            model.TypeWork,
			DurationMinutes: 25,
			StartedAt:       time.Now(),
		},
	}
	path := filepath.Join(t.TempDir(), "unknown.csv")

	err := ToCSV(records, map[string]*model.Task{}, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	rows, _ := r.ReadAll()
	if rows[1][2] != "Unknown" {
		t.Fatalf("expected 'Unknown' for deleted task, got %q", rows[1][2])
	}
}

func TestToCSVBadPath(t *testing.T) {
	err := ToCSV(nil, nil, "/nonexistent/dir/file.csv")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToCSVSpecialCharacters(t *testing.T) {
	now := time.Now()
	tid := "task-1"
	records := []model.SessionRecord{
		{
			ID:              "rec-1",
			TaskID:          &tid,
			Type:            model.TypeWork,
			DurationMinutes: 25,
			StartedAt:       now,
		},
	}
	tasks := map[string]*model.Task{
		"task-1": {ID: "task-1", Text: `fix "quotes" and, commas`},
	}
	path := filepath.Join(t.TempDir(), "special.csv")

	err := ToCSV(records, tasks, path)
	if err != nil {
		t.Fatal(err)
	}

	f, _ := os.Open(path)
	defer f.Close()
	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatalf("CSV should be valid even with special chars: %v", err)
	}
	if rows[1][2] != `fix "quotes" and, commas` {
		t.Fatalf("task text mangled: %q", rows[1][2])
	}
}

// ============================================================
// JSON
// ============================================================

func TestToJSON(t *testing.T) {
	records, taskMap := sampleData()
	tasks := []model.Task{*taskMap["task-1"]}
	stats := []model.DailyStats{
		{Date: "2025-06-10", PomodorosCompleted: 2, TotalWorkTime: 50, TasksCompleted: 1},
	}
	path := filepath.Join(t.TempDir(), "test.json")

	err := ToJSON(tasks, records, stats, path)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if snap.TaskCount != 1 || snap.SessionCount != 3 {
		t.Fatalf("counts = %d/%d, want 1/3", snap.TaskCount, snap.SessionCount)
	}
	if snap.ExportedAt == "" {
		t.Fatal("exported_at should not be empty")
	}
	if len(snap.Sessions) != 3 {
		t.Fatalf("sessions = %d, want 3", len(snap.Sessions))
	}
	if snap.Tasks[0].Text != "write report" {
		t.Fatalf("task text = %q", snap.Tasks[0].Text)
	}
	if snap.DailyStats[0].PomodorosCompleted != 2 {
		t.Fatalf("daily stats = %+v", snap.DailyStats[0])
	}
}

func TestToJSONEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.json")

	err := ToJSON(nil, nil, nil, path)
	if err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(path)
	var snap Snapshot
	json.Unmarshal(data, &snap)

	if snap.TaskCount != 0 || snap.SessionCount != 0 {
		t.Fatalf("counts = %d/%d, want 0/0", snap.TaskCount, snap.SessionCount)
	}
}

func TestToJSONBadPath(t *testing.T) {
	err := ToJSON(nil, nil, nil, "/nonexistent/dir/file.json")
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestToJSONPrettyPrinted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pretty.json")
	ToJSON(nil, nil, nil, path)

	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "\n") {
		t.Fatal("JSON should be pretty-printed with newlines")
	}
	if !strings.Contains(string(data), "  ") {
		t.Fatal("JSON should be indented with spaces")
	}
}

func TestToJSONValidTimestamps(t *testing.T) {
	records, taskMap := sampleData()
	tasks := []model.Task{*taskMap["task-1"]}
	path := filepath.Join(t.TempDir(), "ts.json")
	ToJSON(tasks, records, nil, path)

	data, _ := os.ReadFile(path)
	var snap Snapshot
	json.Unmarshal(data, &snap)

	_, err := time.Parse(time.RFC3339, snap.ExportedAt)
	if err != nil {
		t.Fatalf("exported_at is not valid RFC3339: %q", snap.ExportedAt)
	}
}
