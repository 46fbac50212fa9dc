package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tomato/internal/model"
	"tomato/internal/task"
	"tomato/internal/timer"
)

// sessionPreset is one entry in the preset picker; it maps onto SetSession.
type sessionPreset struct {
	label           string
	sessionType     string
	durationMinutes int
}

type timerModel struct {
	engine *timer.Engine
	ledger *task.Ledger
	width  int
	height int

	cycleLength int

	// Task picker shown before starting a work session.
	picking      bool
	pickerTasks  []model.Task
	pickerCursor int

	// Preset picker overlay.
	presetPicking bool
	presetCursor  int
	presets       []sessionPreset
}

func newTimerModel(e *timer.Engine, l *task.Ledger, workMin, breakMin, longMin, cycle int) timerModel {
	return timerModel{
		engine:      e,
		ledger:      l,
		cycleLength: cycle,
		presets: []sessionPreset{
			{fmt.Sprintf("Work %d min", workMin), timer.SessionWork, workMin},
			{"Work 50 min", timer.SessionWork, 50},
			{fmt.Sprintf("Break %d min", breakMin), timer.SessionBreak, breakMin},
			{fmt.Sprintf("Break %d min", longMin), timer.SessionBreak, longMin},
		},
	}
}

func (m *timerModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m timerModel) update(msg tea.Msg) (timerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.engine.Tick()
		s := m.engine.State()
		if s.IsRunning && s.TimeRemaining <= 0 {
			m.engine.CompleteSession(context.Background(), false)
			return m, tea.Batch(
				func() tea.Msg { return sessionEndedMsg{} },
				func() tea.Msg { return statusMsg{text: sessionDoneText(s)} },
			)
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updateTaskPicker(msg)
		}
		if m.presetPicking {
			return m.updatePresetPicker(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func sessionDoneText(s timer.State) string {
	if s.Session.Type == timer.SessionWork {
		return "Work session complete. Break time!"
	}
	return "Break over. Back to work!"
}

func (m timerModel) updateKeys(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	s := m.engine.State()

	switch {
	case key.Matches(msg, keys.Start):
		if s.IsRunning {
			return m, nil
		}
		if s.Session.Type == timer.SessionWork {
			open := openTasks(m.ledger.Tasks())
			if len(open) > 0 {
				m.picking = true
				m.pickerTasks = open
				m.pickerCursor = 0
				return m, nil
			}
		}
		m.engine.Start(context.Background(), nil)
		return m, nil

	case key.Matches(msg, keys.Pause):
		if !s.IsRunning {
			return m, nil
		}
		if s.IsPaused {
			m.engine.Resume()
		} else {
			m.engine.Pause()
		}
		return m, nil

	case key.Matches(msg, keys.Stop):
		if s.IsRunning {
			m.engine.Stop(context.Background())
			return m, func() tea.Msg { return statusMsg{text: "Session stopped"} }
		}

	case key.Matches(msg, keys.Reset):
		if !s.IsRunning {
			m.engine.Reset()
			return m, func() tea.Msg { return statusMsg{text: "Timer reset"} }
		}

	case key.Matches(msg, keys.Preset):
		if !s.IsRunning {
			m.presetPicking = true
			m.presetCursor = 0
		}
		return m, nil
	}
	return m, nil
}

func openTasks(all []model.Task) []model.Task {
	var open []model.Task
	for _, t := range all {
		if !t.Completed {
			open = append(open, t)
		}
	}
	return open
}

func (m timerModel) updateTaskPicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	// Cursor 0 is the "no task" row; tasks follow.
	switch {
	case key.Matches(msg, keys.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.pickerCursor < len(m.pickerTasks) {
			m.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.picking = false
		var taskID *string
		if m.pickerCursor > 0 {
			id := m.pickerTasks[m.pickerCursor-1].ID
			taskID = &id
		}
		m.engine.Start(context.Background(), taskID)
	case key.Matches(msg, keys.Back):
		m.picking = false
	}
	return m, nil
}

func (m timerModel) updatePresetPicker(msg tea.KeyMsg) (timerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if m.presetCursor > 0 {
			m.presetCursor--
		}
	case key.Matches(msg, keys.Down):
		if m.presetCursor < len(m.presets)-1 {
			m.presetCursor++
		}
	case key.Matches(msg, keys.Enter):
		m.presetPicking = false
		p := m.presets[m.presetCursor]
		m.engine.SetSession(p.sessionType, p.durationMinutes)
		return m, func() tea.Msg { return statusMsg{text: "Session set: " + p.label} }
	case key.Matches(msg, keys.Back):
		m.presetPicking = false
	}
	return m, nil
}

func (m timerModel) view() string {
	w := m.width - 4
	s := m.engine.State()

	if m.picking {
		return m.renderTaskPicker(w)
	}
	if m.presetPicking {
		return m.renderPresetPicker(w)
	}

	title := titleStyle.Render("Pomodoro")
	clock := formatClock(s.TimeRemaining)

	var timeDisplay, phaseLabel, indicator string
	switch {
	case s.IsRunning && s.IsPaused:
		timeDisplay = countdownPausedStyle.Width(w - 6).Render(clock)
		phaseLabel = warningStyle.Bold(true).Render("⏸ PAUSED · " + phaseName(s))
		indicator = m.renderProgress(s)
	case s.IsRunning:
		timeDisplay = countdownRunStyle.Width(w - 6).Render(clock)
		phaseLabel = phaseStyle(s).Bold(true).Render(phaseName(s))
		indicator = m.renderProgress(s)
	default:
		timeDisplay = countdownIdleStyle.Width(w - 6).Render(clock)
		phaseLabel = mutedStyle.Render("Ready · next: " + phaseName(s))
		indicator = m.renderProgress(s)
	}

	taskLine := ""
	if s.CurrentTaskID != nil {
		if t := m.ledger.Get(*s.CurrentTaskID); t != nil {
			taskLine = highlightStyle.Render("▸ " + t.Text)
		}
	}

	var controls string
	if s.IsRunning {
		controls = mutedStyle.Render("space: pause/resume  x: stop")
	} else {
		controls = mutedStyle.Render("s: start  c: presets  r: reset")
	}

	parts := []string{title, "", timeDisplay, phaseLabel}
	if taskLine != "" {
		parts = append(parts, taskLine)
	}
	parts = append(parts, "", indicator, "", controls)

	style := panelStyle
	if s.IsRunning {
		style = activePanelStyle
	}
	return style.Width(w).Render(lipgloss.JoinVertical(lipgloss.Center, parts...))
}

func phaseName(s timer.State) string {
	if s.Session.Type == timer.SessionWork {
		return "WORK"
	}
	if s.BreakKind == model.TypeLongBreak {
		return "LONG BREAK"
	}
	return "SHORT BREAK"
}

func phaseStyle(s timer.State) lipgloss.Style {
	if s.Session.Type == timer.SessionWork {
		return accentStyle
	}
	if s.BreakKind == model.TypeLongBreak {
		return highlightStyle
	}
	return successStyle
}

// renderProgress draws one dot per work session in the current cycle.
func (m timerModel) renderProgress(s timer.State) string {
	done := s.SessionsCompleted % m.cycleLength
	if done == 0 && s.SessionsCompleted > 0 && s.Session.Type != timer.SessionWork {
		// The cycle just closed; show it full until the next work session.
		done = m.cycleLength
	}
	var parts []string
	for i := 0; i < m.cycleLength; i++ {
		switch {
		case i < done:
			parts = append(parts, successStyle.Render("●"))
		case i == done && s.IsRunning && s.Session.Type == timer.SessionWork:
			parts = append(parts, accentStyle.Render("◐"))
		default:
			parts = append(parts, mutedStyle.Render("○"))
		}
	}
	progress := strings.Join(parts, " ")
	counter := mutedStyle.Render(fmt.Sprintf("  #%d today: %d", s.SessionNumber, s.DailySessionCount))
	return progress + counter
}

func (m timerModel) renderTaskPicker(w int) string {
	title := titleStyle.Render("Attach a task")

	var rows []string
	rows = append(rows, title, "")
	labels := append([]string{"(no task)"}, taskLabels(m.pickerTasks)...)
	for i, label := range labels {
		cursor := "  "
		style := normalItemStyle
		if i == m.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: start  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func taskLabels(tasks []model.Task) []string {
	labels := make([]string, len(tasks))
	for i, t := range tasks {
		labels[i] = fmt.Sprintf("%s (%d/%d)", t.Text, t.ActualPomodoros, t.EstimatedPomodoros)
	}
	return labels
}

func (m timerModel) renderPresetPicker(w int) string {
	title := titleStyle.Render("Session Presets")

	var rows []string
	rows = append(rows, title, "")
	for i, p := range m.presets {
		cursor := "  "
		style := normalItemStyle
		if i == m.presetCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+p.label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: apply  esc: cancel"))

	return activePanelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
