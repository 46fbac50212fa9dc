// Package task owns the task list: CRUD over its entries routed through the
// persistence gateway, so every mutation lands in the remote store when it is
// reachable and in local fallback storage when it is not.
package task

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tomato/internal/audio"
	"tomato/internal/clock"
	"tomato/internal/gateway"
	"tomato/internal/local"
	"tomato/internal/model"
	"tomato/internal/remote"
)

const tasksKey = "tasks"

// Ledger is the single owner of the task list. Mutations are
// optimistic-remote: the remote command runs first and on success the
// in-memory list is reconciled to the remote-returned entity; on failure the
// same mutation is applied locally and persisted to fallback storage, so the
// two representations never diverge in shape.
type Ledger struct {
	log    zerolog.Logger
	remote remote.Commander
	local  *local.Store
	clock  clock.Clock
	cues   audio.Sink

	tasks    []model.Task
	onChange func()
}

func NewLedger(log zerolog.Logger, rc remote.Commander, ls *local.Store, clk clock.Clock, cues audio.Sink) *Ledger {
	return &Ledger{
		log:    log.With().Str("component", "tasks").Logger(),
		remote: rc,
		local:  ls,
		clock:  clk,
		cues:   cues,
	}
}

// SetOnChange registers a hook invoked after every successful mutation.
// The statistics layer uses it to refresh its view.
func (l *Ledger) SetOnChange(fn func()) {
	l.onChange = fn
}

// Tasks returns a copy of the current list, most recently added first.
func (l *Ledger) Tasks() []model.Task {
	out := make([]model.Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Get returns the task with the given id, or nil.
func (l *Ledger) Get(id string) *model.Task {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			t := l.tasks[i]
			return &t
		}
	}
	return nil
}

// Load populates the ledger from the remote store, or from fallback storage
// when the remote is unreachable. Malformed fallback data is treated as an
// empty list.
func (l *Ledger) Load(ctx context.Context) error {
	tasks, err := gateway.Perform(ctx, l.log, "tasks.load",
		func(ctx context.Context) ([]model.Task, error) {
			return l.remote.GetTasks(ctx)
		},
		func() ([]model.Task, error) {
			var ts []model.Task
			if err := l.local.Get(tasksKey, &ts); err != nil {
				l.log.Warn().Err(err).Msg("no usable local task list, starting empty")
				return []model.Task{}, nil
			}
			return ts, nil
		},
		nil,
	)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	l.tasks = tasks
	return nil
}

// Add creates a task and prepends it to the list.
func (l *Ledger) Add(ctx context.Context, text string, priority, estimate int) (model.Task, error) {
	t, err := gateway.Perform(ctx, l.log, "tasks.add",
		func(ctx context.Context) (model.Task, error) {
			return l.remote.AddTask(ctx, text, priority, estimate)
		},
		func() (model.Task, error) {
			t := model.Task{
				ID:                 uuid.NewString(),
				Text:               text,
				CreatedAt:          l.clock.Now(),
				Priority:           priority,
				EstimatedPomodoros: estimate,
			}
			l.tasks = append([]model.Task{t}, l.tasks...)
			return t, l.saveLocal()
		},
		func(t model.Task) {
			l.tasks = append([]model.Task{t}, l.tasks...)
		},
	)
	if err != nil {
		return model.Task{}, err
	}
	l.cues.PlayCue(audio.CueTaskAdd)
	l.notify()
	return t, nil
}

// Complete marks a task done, setting completed and completed_at together.
func (l *Ledger) Complete(ctx context.Context, id string) error {
	return l.mutate(ctx, "tasks.complete",
		func(ctx context.Context) error { return l.remote.CompleteTask(ctx, id, true) },
		func() { l.setCompleted(id, true) },
	)
}

// Uncomplete reverts a completed task, clearing both fields together.
func (l *Ledger) Uncomplete(ctx context.Context, id string) error {
	return l.mutate(ctx, "tasks.uncomplete",
		func(ctx context.Context) error { return l.remote.CompleteTask(ctx, id, false) },
		func() { l.setCompleted(id, false) },
	)
}

// IncrementActual bumps a task's actual pomodoro count. The remote store
// does the same bookkeeping itself when a work session completes; this keeps
// the locally visible copy in step.
func (l *Ledger) IncrementActual(id string) {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			l.tasks[i].ActualPomodoros++
		}
	}
}

func (l *Ledger) UpdateText(ctx context.Context, id, text string) error {
	t := l.Get(id)
	if t == nil {
		return fmt.Errorf("task %s not found", id)
	}
	return l.mutate(ctx, "tasks.update_text",
		func(ctx context.Context) error {
			return l.remote.UpdateTask(ctx, id, text, t.Priority, t.EstimatedPomodoros)
		},
		func() {
			for i := range l.tasks {
				if l.tasks[i].ID == id {
					l.tasks[i].Text = text
				}
			}
		},
	)
}

func (l *Ledger) UpdatePriority(ctx context.Context, id string, priority int) error {
	t := l.Get(id)
	if t == nil {
		return fmt.Errorf("task %s not found", id)
	}
	return l.mutate(ctx, "tasks.update_priority",
		func(ctx context.Context) error {
			return l.remote.UpdateTask(ctx, id, t.Text, priority, t.EstimatedPomodoros)
		},
		func() {
			for i := range l.tasks {
				if l.tasks[i].ID == id {
					l.tasks[i].Priority = priority
				}
			}
		},
	)
}

func (l *Ledger) UpdateEstimate(ctx context.Context, id string, estimate int) error {
	t := l.Get(id)
	if t == nil {
		return fmt.Errorf("task %s not found", id)
	}
	return l.mutate(ctx, "tasks.update_estimate",
		func(ctx context.Context) error {
			return l.remote.UpdateTask(ctx, id, t.Text, t.Priority, estimate)
		},
		func() {
			for i := range l.tasks {
				if l.tasks[i].ID == id {
					l.tasks[i].EstimatedPomodoros = estimate
				}
			}
		},
	)
}

// Remove deletes a task from the list.
func (l *Ledger) Remove(ctx context.Context, id string) error {
	err := l.mutate(ctx, "tasks.remove",
		func(ctx context.Context) error { return l.remote.DeleteTask(ctx, id) },
		func() {
			for i := range l.tasks {
				if l.tasks[i].ID == id {
					l.tasks = append(l.tasks[:i], l.tasks[i+1:]...)
					break
				}
			}
		},
	)
	if err != nil {
		return err
	}
	l.cues.PlayCue(audio.CueTaskDelete)
	return nil
}

// mutate applies one mutation through the gateway: the in-memory change runs
// on both paths, but only the fallback path writes local storage. A
// successful remote write is the single source of truth for that operation.
func (l *Ledger) mutate(ctx context.Context, op string, remoteCall func(context.Context) error, apply func()) error {
	_, err := gateway.Perform(ctx, l.log, op,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, remoteCall(ctx)
		},
		func() (struct{}, error) {
			apply()
			return struct{}{}, l.saveLocal()
		},
		func(struct{}) { apply() },
	)
	if err != nil {
		return err
	}
	l.notify()
	return nil
}

func (l *Ledger) setCompleted(id string, completed bool) {
	for i := range l.tasks {
		if l.tasks[i].ID != id {
			continue
		}
		l.tasks[i].Completed = completed
		if completed {
			now := l.clock.Now()
			l.tasks[i].CompletedAt = &now
		} else {
			l.tasks[i].CompletedAt = nil
		}
	}
}

func (l *Ledger) saveLocal() error {
	return l.local.Set(tasksKey, l.tasks)
}

func (l *Ledger) notify() {
	if l.onChange != nil {
		l.onChange()
	}
}
