// Package timer owns the live session state machine: the countdown, the
// work/break alternation with a long break every Nth completed work session,
// and the completion side effects. It has no internal goroutine or ticker;
// the caller drives it with Tick once per second and invokes CompleteSession
// when the countdown reaches zero.
package timer

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"tomato/internal/audio"
	"tomato/internal/clock"
	"tomato/internal/history"
	"tomato/internal/model"
	"tomato/internal/remote"
)

// Live session types. History records use the finer-grained model.Type*
// constants; the break flavor lives in State.BreakKind.
const (
	SessionWork  = "work"
	SessionBreak = "break"
)

// Session is the configured interval the machine is currently in.
type Session struct {
	Type            string
	DurationMinutes int
}

// State is the single live snapshot of the machine. Only the engine's own
// operations mutate it; everything else reads copies.
type State struct {
	IsRunning bool
	IsPaused  bool
	Session   Session
	// BreakKind is the flavor of the current or next-scheduled break,
	// model.TypeShortBreak or model.TypeLongBreak. It is decided once,
	// when the break is scheduled, and reused for the history record, so
	// the recorded tag can never disagree with the scheduled duration.
	BreakKind         string
	TimeRemaining     int // seconds
	SessionsCompleted int // completed work sessions
	CurrentTaskID     *string
	CurrentSessionID  string
	SessionNumber     int
	DailySessionCount int
	SessionStartTime  *time.Time
}

// Config holds session lengths in minutes and the long-break cycle.
type Config struct {
	WorkMinutes      int
	BreakMinutes     int
	LongBreakMinutes int
	CycleLength      int
}

// TaskLedger is the slice of the task ledger the engine needs for
// auto-completing the attached task.
type TaskLedger interface {
	Complete(ctx context.Context, id string) error
	IncrementActual(id string)
}

// HistoryAppender receives the immutable record of each completed session.
type HistoryAppender interface {
	AddSession(ctx context.Context, in history.AddSessionInput) (model.SessionRecord, error)
}

// Engine is the timer state machine. All remote calls it makes are
// best-effort: an error is logged and the in-memory transition proceeds as
// if the call had never been attempted.
type Engine struct {
	log     zerolog.Logger
	cfg     Config
	clock   clock.Clock
	remote  remote.Commander
	tasks   TaskLedger
	history HistoryAppender
	cues    audio.Sink

	state State

	onSessionEnd func()
}

func NewEngine(log zerolog.Logger, cfg Config, clk clock.Clock, rc remote.Commander, tasks TaskLedger, hist HistoryAppender, cues audio.Sink) *Engine {
	e := &Engine{
		log:     log.With().Str("component", "timer").Logger(),
		cfg:     cfg,
		clock:   clk,
		remote:  rc,
		tasks:   tasks,
		history: hist,
		cues:    cues,
	}
	e.state = e.initialState()
	return e
}

func (e *Engine) initialState() State {
	return State{
		Session:       Session{Type: SessionWork, DurationMinutes: e.cfg.WorkMinutes},
		BreakKind:     model.TypeShortBreak,
		TimeRemaining: e.cfg.WorkMinutes * 60,
		SessionNumber: 1,
	}
}

// State returns a copy of the live state.
func (e *Engine) State() State {
	return e.state
}

// recordType maps the live session to its history record type.
func (e *Engine) recordType() string {
	if e.state.Session.Type == SessionWork {
		return model.TypeWork
	}
	return e.state.BreakKind
}

// scheduleBreak decides the flavor and length of the break that follows the
// current work session. It reads SessionsCompleted+1 before the counter
// increments: finishing the CycleLength-th work session earns the long
// break.
func (e *Engine) scheduleBreak() Session {
	if (e.state.SessionsCompleted+1)%e.cfg.CycleLength == 0 {
		e.state.BreakKind = model.TypeLongBreak
		return Session{Type: SessionBreak, DurationMinutes: e.cfg.LongBreakMinutes}
	}
	e.state.BreakKind = model.TypeShortBreak
	return Session{Type: SessionBreak, DurationMinutes: e.cfg.BreakMinutes}
}

// Start begins the configured session. Callers must not call it while
// running; they guard on State().IsRunning. On remote failure the session
// still starts, tracked locally with no remote session id.
func (e *Engine) Start(ctx context.Context, taskID *string) {
	now := e.clock.Now()
	e.state.CurrentTaskID = taskID
	e.state.SessionStartTime = &now
	e.state.CurrentSessionID = ""

	handle, err := e.remote.StartSession(ctx, taskID, e.recordType(), e.state.Session.DurationMinutes)
	if err != nil {
		e.log.Debug().Err(err).Msg("remote session start failed, tracking locally")
	} else {
		e.state.CurrentSessionID = handle.ID
	}

	e.state.IsRunning = true
	e.state.IsPaused = false
}

// Pause suspends the countdown without touching persistence.
func (e *Engine) Pause() {
	if !e.state.IsRunning {
		return
	}
	e.state.IsPaused = true
}

// Resume continues a paused countdown.
func (e *Engine) Resume() {
	if !e.state.IsRunning {
		return
	}
	e.state.IsPaused = false
}

// Tick decrements the countdown by one second, floored at zero.
func (e *Engine) Tick() {
	if !e.state.IsRunning || e.state.IsPaused {
		return
	}
	if e.state.TimeRemaining > 0 {
		e.state.TimeRemaining--
	}
}

// Stop interrupts the running session. The open remote session is marked
// interrupted fire-and-forget; no counters advance, nothing is appended to
// history, and the next scheduled session type is unchanged.
func (e *Engine) Stop(ctx context.Context) {
	if !e.state.IsRunning {
		return
	}
	if e.state.CurrentSessionID != "" {
		if err := e.remote.CompleteSession(ctx, e.state.CurrentSessionID, false, true); err != nil {
			e.log.Debug().Err(err).Msg("remote session interrupt failed")
		}
	}
	e.state.CurrentTaskID = nil
	e.state.CurrentSessionID = ""
	e.state.SessionStartTime = nil
	e.state.IsRunning = false
	e.state.IsPaused = false
	e.state.TimeRemaining = e.state.Session.DurationMinutes * 60
}

// CompleteSession is the only path that advances the work/break cycle.
//
// With interrupted=false it closes the remote session, auto-completes the
// attached task after a work session, appends the history record, alternates
// the session type, advances the counters and triggers the session-end hook.
// With interrupted=true the alternation and field resets happen identically
// but the counters stay unchanged and nothing is appended to history.
func (e *Engine) CompleteSession(ctx context.Context, interrupted bool) {
	finished := e.state.Session
	finishedType := e.recordType()

	if !interrupted {
		if e.state.CurrentSessionID != "" {
			if err := e.remote.CompleteSession(ctx, e.state.CurrentSessionID, true, false); err != nil {
				e.log.Debug().Err(err).Msg("remote session complete failed")
			}
		}

		if finished.Type == SessionWork && e.state.CurrentTaskID != nil {
			id := *e.state.CurrentTaskID
			if err := e.tasks.Complete(ctx, id); err != nil {
				e.log.Warn().Err(err).Str("task", id).Msg("task auto-complete failed")
			}
			e.tasks.IncrementActual(id)
		}

		in := history.AddSessionInput{
			Type:            finishedType,
			DurationMinutes: finished.DurationMinutes,
			Completed:       true,
			TaskID:          e.state.CurrentTaskID,
		}
		if e.state.SessionStartTime != nil {
			in.StartTime = *e.state.SessionStartTime
		}
		if _, err := e.history.AddSession(ctx, in); err != nil {
			e.log.Warn().Err(err).Msg("history append failed")
		}
	} else if e.state.CurrentSessionID != "" {
		if err := e.remote.CompleteSession(ctx, e.state.CurrentSessionID, false, true); err != nil {
			e.log.Debug().Err(err).Msg("remote session interrupt failed")
		}
	}

	// The next session, with the break length decided before the work
	// counter increments.
	var next Session
	if finished.Type == SessionWork {
		next = e.scheduleBreak()
	} else {
		next = Session{Type: SessionWork, DurationMinutes: e.cfg.WorkMinutes}
	}

	if !interrupted {
		if finished.Type == SessionWork {
			e.state.SessionsCompleted++
		}
		e.state.DailySessionCount++
	}

	e.state.Session = next
	e.state.TimeRemaining = next.DurationMinutes * 60
	e.state.CurrentTaskID = nil
	e.state.CurrentSessionID = ""
	e.state.SessionStartTime = nil
	e.state.IsRunning = false
	e.state.IsPaused = false
	if next.Type == SessionWork {
		e.state.SessionNumber++
	}

	if !interrupted {
		if finished.Type == SessionWork {
			e.cues.PlayCue(audio.CueWorkComplete)
		} else {
			e.cues.PlayCue(audio.CueBreakComplete)
		}
	}

	if e.onSessionEnd != nil {
		e.onSessionEnd()
	}
}

// SetSession overrides the session type and duration, implicitly stopping
// any live session. A break whose duration reaches the configured long
// break length is treated as a long break.
func (e *Engine) SetSession(sessionType string, durationMinutes int) {
	e.state.Session = Session{Type: sessionType, DurationMinutes: durationMinutes}
	if sessionType == SessionBreak {
		if durationMinutes >= e.cfg.LongBreakMinutes {
			e.state.BreakKind = model.TypeLongBreak
		} else {
			e.state.BreakKind = model.TypeShortBreak
		}
	}
	e.state.TimeRemaining = durationMinutes * 60
	e.state.IsRunning = false
	e.state.IsPaused = false
	e.state.CurrentTaskID = nil
	e.state.CurrentSessionID = ""
	e.state.SessionStartTime = nil
}

// Reset returns every field to its startup default and fires the
// destructive-action cue.
func (e *Engine) Reset() {
	e.state = e.initialState()
	e.cues.PlayCue(audio.CueReset)
}

// SetOnSessionEnd registers a hook invoked after every completion
// transition. The statistics layer refreshes through it.
func (e *Engine) SetOnSessionEnd(fn func()) {
	e.onSessionEnd = fn
}
