package remote

import (
	"context"
	"errors"

	"tomato/internal/model"
)

// ErrUnavailable indicates the remote backend is not reachable or not
// configured. Callers fall back to local storage and never surface it.
var ErrUnavailable = errors.New("remote store unavailable")

// SessionHandle identifies an open remote session record.
type SessionHandle struct {
	ID string
}

// Commander is the remote command surface backed by the authoritative store.
// Every call is fallible; callers route results through the persistence
// gateway or treat failures as best-effort.
type Commander interface {
	StartSession(ctx context.Context, taskID *string, sessionType string, durationMinutes int) (SessionHandle, error)
	CompleteSession(ctx context.Context, sessionID string, completed, interrupted bool) error

	GetTasks(ctx context.Context) ([]model.Task, error)
	AddTask(ctx context.Context, text string, priority, estimate int) (model.Task, error)
	CompleteTask(ctx context.Context, taskID string, completed bool) error
	UpdateTask(ctx context.Context, taskID, text string, priority, estimate int) error
	DeleteTask(ctx context.Context, taskID string) error

	GetDailyStats(ctx context.Context, date string) (*model.DailyStats, error)
	GetDailySessions(ctx context.Context, date string) ([]model.SessionRecord, error)
	AddSessionRecord(ctx context.Context, rec model.SessionRecord) error

	RecentStats(ctx context.Context, limit int) ([]model.DailyStats, error)
	Heatmap(ctx context.Context, days int) ([]model.HeatmapPoint, error)
}

// Unavailable is a Commander whose every call fails with ErrUnavailable.
// It stands in when no remote DSN is configured, so the rest of the system
// runs purely on the local fallback without special-casing.
type Unavailable struct{}

var _ Commander = Unavailable{}

func (Unavailable) StartSession(context.Context, *string, string, int) (SessionHandle, error) {
	return SessionHandle{}, ErrUnavailable
}

func (Unavailable) CompleteSession(context.Context, string, bool, bool) error {
	return ErrUnavailable
}

func (Unavailable) GetTasks(context.Context) ([]model.Task, error) {
	return nil, ErrUnavailable
}

func (Unavailable) AddTask(context.Context, string, int, int) (model.Task, error) {
	return model.Task{}, ErrUnavailable
}

func (Unavailable) CompleteTask(context.Context, string, bool) error {
	return ErrUnavailable
}

func (Unavailable) UpdateTask(context.Context, string, string, int, int) error {
	return ErrUnavailable
}

func (Unavailable) DeleteTask(context.Context, string) error {
	return ErrUnavailable
}

func (Unavailable) GetDailyStats(context.Context, string) (*model.DailyStats, error) {
	return nil, ErrUnavailable
}

func (Unavailable) GetDailySessions(context.Context, string) ([]model.SessionRecord, error) {
	return nil, ErrUnavailable
}

func (Unavailable) AddSessionRecord(context.Context, model.SessionRecord) error {
	return ErrUnavailable
}

func (Unavailable) RecentStats(context.Context, int) ([]model.DailyStats, error) {
	return nil, ErrUnavailable
}

func (Unavailable) Heatmap(context.Context, int) ([]model.HeatmapPoint, error) {
	return nil, ErrUnavailable
}
