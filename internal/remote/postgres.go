package remote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tomato/internal/model"
)

// Postgres is the pgx-backed Commander against the authoritative store.
// Every call is bounded by the configured timeout so a dead backend cannot
// stall a timer transition.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ Commander = (*Postgres)(nil)

// NewPostgres connects to the remote store and ensures the schema exists.
func NewPostgres(ctx context.Context, dsn string, timeout time.Duration) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect remote: %w", err)
	}
	s := &Postgres{pool: pool, timeout: timeout}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Postgres) Close() {
	s.pool.Close()
}

func (s *Postgres) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tasks (
			id                  TEXT PRIMARY KEY,
			text                TEXT NOT NULL,
			completed           BOOLEAN NOT NULL DEFAULT FALSE,
			created_at          TIMESTAMPTZ NOT NULL,
			completed_at        TIMESTAMPTZ,
			priority            INTEGER NOT NULL DEFAULT 0,
			estimated_pomodoros INTEGER NOT NULL DEFAULT 1,
			actual_pomodoros    INTEGER NOT NULL DEFAULT 0
		)`)
	if err != nil {
		return fmt.Errorf("ensure tasks table: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pomodoro_sessions (
			id               TEXT PRIMARY KEY,
			task_id          TEXT REFERENCES tasks(id) ON DELETE SET NULL,
			session_type     TEXT NOT NULL CHECK (session_type IN ('work', 'short_break', 'long_break')),
			duration_minutes INTEGER NOT NULL,
			started_at       TIMESTAMPTZ NOT NULL,
			completed_at     TIMESTAMPTZ,
			interrupted      BOOLEAN NOT NULL DEFAULT FALSE
		)`)
	if err != nil {
		return fmt.Errorf("ensure sessions table: %w", err)
	}
	_, err = s.pool.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_sessions_started ON pomodoro_sessions(started_at)`)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS daily_stats (
			date                TEXT PRIMARY KEY,
			pomodoros_completed INTEGER NOT NULL DEFAULT 0,
			total_work_time     INTEGER NOT NULL DEFAULT 0,
			tasks_completed     INTEGER NOT NULL DEFAULT 0,
			created_at          TIMESTAMPTZ NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("ensure stats table: %w", err)
	}
	return nil
}

func (s *Postgres) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *Postgres) StartSession(ctx context.Context, taskID *string, sessionType string, durationMinutes int) (SessionHandle, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	id := uuid.NewString()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pomodoro_sessions (id, task_id, session_type, duration_minutes, started_at, interrupted)
		VALUES ($1, $2, $3, $4, $5, FALSE)`,
		id, taskID, sessionType, durationMinutes, time.Now().UTC())
	if err != nil {
		return SessionHandle{}, fmt.Errorf("start session: %w", err)
	}
	return SessionHandle{ID: id}, nil
}

// CompleteSession closes a session record. When a work session completes
// normally it also advances the attached task's pomodoro count and the day's
// stats row, as the authoritative store owns that bookkeeping.
func (s *Postgres) CompleteSession(ctx context.Context, sessionID string, completed, interrupted bool) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	_, err := s.pool.Exec(ctx, `
		UPDATE pomodoro_sessions SET completed_at = $1, interrupted = $2 WHERE id = $3`,
		completedAt, interrupted, sessionID)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}

	var sessionType string
	var taskID *string
	var durationMinutes int
	err = s.pool.QueryRow(ctx, `
		SELECT session_type, task_id, duration_minutes FROM pomodoro_sessions WHERE id = $1`,
		sessionID).Scan(&sessionType, &taskID, &durationMinutes)
	if err != nil {
		return fmt.Errorf("read session %s: %w", sessionID, err)
	}

	if sessionType != model.TypeWork || !completed || interrupted {
		return nil
	}

	if taskID != nil {
		_, err = s.pool.Exec(ctx, `
			UPDATE tasks SET actual_pomodoros = actual_pomodoros + 1 WHERE id = $1`, *taskID)
		if err != nil {
			return fmt.Errorf("bump task pomodoros: %w", err)
		}
	}

	today := now.Format(time.DateOnly)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO daily_stats (date, pomodoros_completed, total_work_time, created_at)
		VALUES ($1, 1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET
			pomodoros_completed = daily_stats.pomodoros_completed + 1,
			total_work_time = daily_stats.total_work_time + $2`,
		today, durationMinutes, now)
	if err != nil {
		return fmt.Errorf("bump daily stats: %w", err)
	}
	return nil
}

func (s *Postgres) GetTasks(ctx context.Context) ([]model.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, text, completed, created_at, completed_at, priority, estimated_pomodoros, actual_pomodoros
		FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.Text, &t.Completed, &t.CreatedAt, &t.CompletedAt,
			&t.Priority, &t.EstimatedPomodoros, &t.ActualPomodoros); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *Postgres) AddTask(ctx context.Context, text string, priority, estimate int) (model.Task, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	t := model.Task{
		ID:                 uuid.NewString(),
		Text:               text,
		CreatedAt:          time.Now().UTC(),
		Priority:           priority,
		EstimatedPomodoros: estimate,
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO tasks (id, text, completed, created_at, priority, estimated_pomodoros, actual_pomodoros)
		VALUES ($1, $2, FALSE, $3, $4, $5, 0)`,
		t.ID, t.Text, t.CreatedAt, t.Priority, t.EstimatedPomodoros)
	if err != nil {
		return model.Task{}, fmt.Errorf("add task: %w", err)
	}
	return t, nil
}

// CompleteTask toggles a task's completion. Completing a task also counts it
// in the day's stats row.
func (s *Postgres) CompleteTask(ctx context.Context, taskID string, completed bool) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET completed = $1, completed_at = $2 WHERE id = $3`,
		completed, completedAt, taskID)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}

	if !completed {
		return nil
	}
	today := now.Format(time.DateOnly)
	_, err = s.pool.Exec(ctx, `
		INSERT INTO daily_stats (date, tasks_completed, created_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (date) DO UPDATE SET
			tasks_completed = daily_stats.tasks_completed + 1`,
		today, now)
	if err != nil {
		return fmt.Errorf("bump tasks completed: %w", err)
	}
	return nil
}

func (s *Postgres) UpdateTask(ctx context.Context, taskID, text string, priority, estimate int) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		UPDATE tasks SET text = $1, priority = $2, estimated_pomodoros = $3 WHERE id = $4`,
		text, priority, estimate, taskID)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *Postgres) DeleteTask(ctx context.Context, taskID string) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

func (s *Postgres) GetDailyStats(ctx context.Context, date string) (*model.DailyStats, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	var d model.DailyStats
	err := s.pool.QueryRow(ctx, `
		SELECT date, pomodoros_completed, total_work_time, tasks_completed
		FROM daily_stats WHERE date = $1`, date).
		Scan(&d.Date, &d.PomodorosCompleted, &d.TotalWorkTime, &d.TasksCompleted)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get daily stats %s: %w", date, err)
	}
	return &d, nil
}

func (s *Postgres) GetDailySessions(ctx context.Context, date string) ([]model.SessionRecord, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT id, task_id, session_type, duration_minutes, started_at, completed_at, interrupted
		FROM pomodoro_sessions
		WHERE to_char(started_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') = $1
		ORDER BY started_at ASC`, date)
	if err != nil {
		return nil, fmt.Errorf("get daily sessions %s: %w", date, err)
	}
	defer rows.Close()

	var records []model.SessionRecord
	for rows.Next() {
		var r model.SessionRecord
		var interrupted bool
		if err := rows.Scan(&r.ID, &r.TaskID, &r.Type, &r.DurationMinutes,
			&r.StartedAt, &r.CompletedAt, &interrupted); err != nil {
			return nil, err
		}
		r.Completed = r.CompletedAt != nil && !interrupted
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Postgres) AddSessionRecord(ctx context.Context, rec model.SessionRecord) error {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO pomodoro_sessions (id, task_id, session_type, duration_minutes, started_at, completed_at, interrupted)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID, rec.TaskID, rec.Type, rec.DurationMinutes, rec.StartedAt, rec.CompletedAt, !rec.Completed)
	if err != nil {
		return fmt.Errorf("add session record: %w", err)
	}
	return nil
}

func (s *Postgres) RecentStats(ctx context.Context, limit int) ([]model.DailyStats, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, `
		SELECT date, pomodoros_completed, total_work_time, tasks_completed
		FROM daily_stats ORDER BY date DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent stats: %w", err)
	}
	defer rows.Close()

	var stats []model.DailyStats
	for rows.Next() {
		var d model.DailyStats
		if err := rows.Scan(&d.Date, &d.PomodorosCompleted, &d.TotalWorkTime, &d.TasksCompleted); err != nil {
			return nil, err
		}
		stats = append(stats, d)
	}
	return stats, rows.Err()
}

func (s *Postgres) Heatmap(ctx context.Context, days int) ([]model.HeatmapPoint, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	start := time.Now().UTC().AddDate(0, 0, -days).Format(time.DateOnly)
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(started_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day, COUNT(*)
		FROM pomodoro_sessions
		WHERE session_type = 'work'
		  AND interrupted = FALSE
		  AND completed_at IS NOT NULL
		  AND to_char(started_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') >= $1
		GROUP BY day
		ORDER BY day ASC`, start)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	defer rows.Close()

	var points []model.HeatmapPoint
	for rows.Next() {
		var p model.HeatmapPoint
		if err := rows.Scan(&p.Date, &p.Count); err != nil {
			return nil, err
		}
		p.Level = model.HeatmapLevel(p.Count)
		points = append(points, p)
	}
	return points, rows.Err()
}
