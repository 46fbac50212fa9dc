package tui

import (
	"fmt"
	"time"
)

// viewState represents the currently active view.
type viewState int

const (
	viewTimer viewState = iota
	viewTasks
	viewReports
)

var viewNames = []string{"Timer", "Tasks", "Reports"}

// --- Messages ---

type tickMsg time.Time

type statusMsg struct {
	text    string
	isError bool
}

// sessionEndedMsg fires after a countdown reaches zero and the completion
// transition ran; views holding aggregates reload on it.
type sessionEndedMsg struct{}

type reportsDataMsg struct {
	week    []weekDay
	today   todaySummary
	heatmap []heatCell
}

type exportDoneMsg struct {
	path string
}

// --- Helpers ---

// formatClock renders a second count as MM:SS, clamped at zero.
func formatClock(secs int) string {
	if secs < 0 {
		secs = 0
	}
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}

func formatMinutes(mins int) string {
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}
