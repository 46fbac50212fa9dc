package model

import "time"

// Session types as stored in session records.
const (
	TypeWork       = "work"
	TypeShortBreak = "short_break"
	TypeLongBreak  = "long_break"
)

// Task is a user-created work item. Completed and CompletedAt always change
// together: CompletedAt is set iff Completed is true.
type Task struct {
	ID                 string     `json:"id"`
	Text               string     `json:"text"`
	Completed          bool       `json:"completed"`
	CreatedAt          time.Time  `json:"created_at"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	Priority           int        `json:"priority"`
	EstimatedPomodoros int        `json:"estimated_pomodoros"`
	ActualPomodoros    int        `json:"actual_pomodoros"`
}

// SessionRecord is one immutable log entry for a finished or interrupted
// interval. Records are only ever appended, never edited.
type SessionRecord struct {
	ID              string     `json:"id"`
	TaskID          *string    `json:"task_id,omitempty"`
	Type            string     `json:"type"`
	DurationMinutes int        `json:"duration_minutes"`
	Completed       bool       `json:"completed"`
	StartedAt       time.Time  `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// DailyHistory is one calendar day's session log plus rollup counters.
// The rollups are pure functions of Sessions and are recomputed in full on
// every append; they are never incremented in place.
type DailyHistory struct {
	Date               string          `json:"date"`
	Sessions           []SessionRecord `json:"sessions"`
	TotalWorkSessions  int             `json:"total_work_sessions"`
	TotalBreakSessions int             `json:"total_break_sessions"`
	TotalWorkTime      int             `json:"total_work_time"` // minutes
	CompletionRate     float64         `json:"completion_rate"`
}

// Recompute derives the four rollup fields from the session list.
// Calling it twice on the same Sessions slice yields identical values.
func (d *DailyHistory) Recompute() {
	work, breaks, workMinutes, completed := 0, 0, 0, 0
	for _, s := range d.Sessions {
		if s.Type == TypeWork {
			work++
			if s.Completed {
				workMinutes += s.DurationMinutes
			}
		} else {
			breaks++
		}
		if s.Completed {
			completed++
		}
	}
	d.TotalWorkSessions = work
	d.TotalBreakSessions = breaks
	d.TotalWorkTime = workMinutes
	if len(d.Sessions) == 0 {
		d.CompletionRate = 0
	} else {
		d.CompletionRate = float64(completed) / float64(len(d.Sessions))
	}
}

// EmptyHistory returns a zero-valued bucket for the given date.
func EmptyHistory(date string) DailyHistory {
	return DailyHistory{Date: date, Sessions: []SessionRecord{}}
}

// DailyStats is the remote-authoritative per-day summary. Readers always get
// a value: a zero-valued record is synthesized when the remote has none.
type DailyStats struct {
	Date               string `json:"date"`
	PomodorosCompleted int    `json:"pomodoros_completed"`
	TotalWorkTime      int    `json:"total_work_time"` // minutes
	TasksCompleted     int    `json:"tasks_completed"`
}

// EmptyStats returns a zero-valued DailyStats for the given date.
func EmptyStats(date string) DailyStats {
	return DailyStats{Date: date}
}

// HeatmapPoint is one day in the focus heatmap: the number of completed work
// sessions and an intensity level in 0..4.
type HeatmapPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// HeatmapLevel buckets a completed-session count into an intensity level.
func HeatmapLevel(count int) int {
	switch {
	case count == 0:
		return 0
	case count <= 2:
		return 1
	case count <= 5:
		return 2
	case count <= 9:
		return 3
	default:
		return 4
	}
}
