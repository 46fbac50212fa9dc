// Package remotetest provides an in-memory Commander for exercising the
// remote-then-local fallback paths without a backend.
package remotetest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tomato/internal/model"
	"tomato/internal/remote"
)

// Fake is an in-memory Commander. Setting Fail makes every call return
// remote.ErrUnavailable, simulating a dead backend.
type Fake struct {
	Fail bool

	Tasks    []model.Task
	Sessions []model.SessionRecord
	Stats    map[string]model.DailyStats

	// Call counters for assertions.
	StartCalls        int
	CompleteCalls     int
	CompleteTaskCalls int
	AddRecordCalls    int
}

var _ remote.Commander = (*Fake)(nil)

func New() *Fake {
	return &Fake{Stats: map[string]model.DailyStats{}}
}

func (f *Fake) err() error {
	if f.Fail {
		return remote.ErrUnavailable
	}
	return nil
}

func (f *Fake) StartSession(_ context.Context, taskID *string, sessionType string, durationMinutes int) (remote.SessionHandle, error) {
	f.StartCalls++
	if err := f.err(); err != nil {
		return remote.SessionHandle{}, err
	}
	rec := model.SessionRecord{
		ID:              uuid.NewString(),
		TaskID:          taskID,
		Type:            sessionType,
		DurationMinutes: durationMinutes,
		StartedAt:       time.Now().UTC(),
	}
	f.Sessions = append(f.Sessions, rec)
	return remote.SessionHandle{ID: rec.ID}, nil
}

func (f *Fake) CompleteSession(_ context.Context, sessionID string, completed, interrupted bool) error {
	f.CompleteCalls++
	if err := f.err(); err != nil {
		return err
	}
	for i := range f.Sessions {
		if f.Sessions[i].ID == sessionID {
			if completed {
				now := time.Now().UTC()
				f.Sessions[i].CompletedAt = &now
			}
			f.Sessions[i].Completed = completed && !interrupted
		}
	}
	return nil
}

func (f *Fake) GetTasks(context.Context) ([]model.Task, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	out := make([]model.Task, len(f.Tasks))
	copy(out, f.Tasks)
	return out, nil
}

func (f *Fake) AddTask(_ context.Context, text string, priority, estimate int) (model.Task, error) {
	if err := f.err(); err != nil {
		return model.Task{}, err
	}
	t := model.Task{
		ID:                 uuid.NewString(),
		Text:               text,
		CreatedAt:          time.Now().UTC(),
		Priority:           priority,
		EstimatedPomodoros: estimate,
	}
	f.Tasks = append([]model.Task{t}, f.Tasks...)
	return t, nil
}

func (f *Fake) CompleteTask(_ context.Context, taskID string, completed bool) error {
	f.CompleteTaskCalls++
	if err := f.err(); err != nil {
		return err
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == taskID {
			f.Tasks[i].Completed = completed
			if completed {
				now := time.Now().UTC()
				f.Tasks[i].CompletedAt = &now
			} else {
				f.Tasks[i].CompletedAt = nil
			}
		}
	}
	return nil
}

func (f *Fake) UpdateTask(_ context.Context, taskID, text string, priority, estimate int) error {
	if err := f.err(); err != nil {
		return err
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == taskID {
			f.Tasks[i].Text = text
			f.Tasks[i].Priority = priority
			f.Tasks[i].EstimatedPomodoros = estimate
		}
	}
	return nil
}

func (f *Fake) DeleteTask(_ context.Context, taskID string) error {
	if err := f.err(); err != nil {
		return err
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == taskID {
			f.Tasks = append(f.Tasks[:i], f.Tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (f *Fake) GetDailyStats(_ context.Context, date string) (*model.DailyStats, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	d, ok := f.Stats[date]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (f *Fake) GetDailySessions(_ context.Context, date string) ([]model.SessionRecord, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	var out []model.SessionRecord
	for _, s := range f.Sessions {
		if s.StartedAt.UTC().Format(time.DateOnly) == date {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *Fake) AddSessionRecord(_ context.Context, rec model.SessionRecord) error {
	f.AddRecordCalls++
	if err := f.err(); err != nil {
		return err
	}
	f.Sessions = append(f.Sessions, rec)
	return nil
}

func (f *Fake) RecentStats(_ context.Context, limit int) ([]model.DailyStats, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	var out []model.DailyStats
	for _, d := range f.Stats {
		out = append(out, d)
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *Fake) Heatmap(context.Context, int) ([]model.HeatmapPoint, error) {
	if err := f.err(); err != nil {
		return nil, err
	}
	return nil, nil
}
