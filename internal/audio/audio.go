// Package audio is the fire-and-forget cue sink. Cues are named events;
// nothing in the core ever waits on playback or reads a result.
package audio

import "io"

// Cue names emitted by the core.
const (
	CueTaskAdd       = "task_add"
	CueTaskDelete    = "task_delete"
	CueReset         = "reset"
	CueWorkComplete  = "work_complete"
	CueBreakComplete = "break_complete"
)

// Sink receives named cues. Implementations must not block.
type Sink interface {
	PlayCue(name string)
}

// Bell rings the terminal bell for every cue, the simplest audible signal.
type Bell struct {
	W io.Writer
}

func (b Bell) PlayCue(string) {
	if b.W != nil {
		_, _ = b.W.Write([]byte("\a"))
	}
}

// Nop discards all cues. Used when sound is disabled and in tests.
type Nop struct{}

func (Nop) PlayCue(string) {}
