package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"tomato/internal/export"
	"tomato/internal/history"
	"tomato/internal/model"
	"tomato/internal/stats"
	"tomato/internal/task"
	"tomato/internal/timer"
)

// Deps carries everything the TUI needs; main wires it up.
type Deps struct {
	Log        zerolog.Logger
	Engine     *timer.Engine
	Ledger     *task.Ledger
	Aggregator *history.Aggregator
	Stats      *stats.Service

	WorkMinutes      int
	BreakMinutes     int
	LongBreakMinutes int
	CycleLength      int
}

// App is the root Bubble Tea model. It owns the 1-second scheduler that
// drives the timer engine.
type App struct {
	log        zerolog.Logger
	ledger     *task.Ledger
	aggregator *history.Aggregator
	stats      *stats.Service

	width  int
	height int

	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	timer   timerModel
	tasks   tasksModel
	reports reportsModel

	help   help.Model
	status string
}

func NewApp(d Deps) App {
	h := help.New()
	h.ShowAll = false

	return App{
		log:        d.Log.With().Str("component", "tui").Logger(),
		ledger:     d.Ledger,
		aggregator: d.Aggregator,
		stats:      d.Stats,
		activeView: viewTimer,
		timer:      newTimerModel(d.Engine, d.Ledger, d.WorkMinutes, d.BreakMinutes, d.LongBreakMinutes, d.CycleLength),
		tasks:      newTasksModel(d.Ledger),
		reports:    newReportsModel(d.Aggregator, d.Stats),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.reports.refresh(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.timer.setSize(a.width, contentHeight)
		a.tasks.setSize(a.width, contentHeight)
		a.reports.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (form or picker), delegate.
		if a.isCapturing() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			a.exportPicking = true
			a.exportCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			a.activeView = viewTimer
			return a, nil
		case key.Matches(msg, keys.Tab2):
			a.activeView = viewTasks
			return a, nil
		case key.Matches(msg, keys.Tab3):
			a.activeView = viewReports
			return a, a.reports.refresh()
		case key.Matches(msg, keys.Tab):
			a.activeView = (a.activeView + 1) % 3
			if a.activeView == viewReports {
				return a, a.reports.refresh()
			}
			return a, nil
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		var cmd tea.Cmd
		a.timer, cmd = a.timer.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case sessionEndedMsg:
		var cmd tea.Cmd
		a.reports, cmd = a.reports.update(msg)
		return a, cmd

	case statusMsg:
		a.status = msg.text
		if msg.isError {
			a.log.Warn().Msg(msg.text)
		}
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + msg.path
		a.exportPicking = false
		return a, nil
	}

	return a.updateActiveView(msg)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewTimer:
		a.timer, cmd = a.timer.update(msg)
	case viewTasks:
		a.tasks, cmd = a.tasks.update(msg)
	case viewReports:
		a.reports, cmd = a.reports.update(msg)
	}
	return a, cmd
}

func (a App) isCapturing() bool {
	switch a.activeView {
	case viewTimer:
		return a.timer.picking || a.timer.presetPicking
	case viewTasks:
		return a.tasks.formActive
	}
	return false
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewTimer:
		content = a.timer.view()
	case viewTasks:
		content = a.tasks.view()
	case viewReports:
		content = a.reports.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("tomato")
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		status = mutedStyle.Render(" " + a.status)
	}

	// Countdown indicator in footer
	timerInfo := ""
	s := a.timer.engine.State()
	if s.IsRunning {
		timerInfo = successStyle.Render(" ● " + formatClock(s.TimeRemaining))
		if s.IsPaused {
			timerInfo = warningStyle.Render(" ⏸ " + formatClock(s.TimeRemaining))
		}
	}

	left := footerStyle.Render(helpView)
	right := timerInfo + status

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export Format")
	formats := []string{"CSV (session log)", "JSON (full snapshot)"}
	var rows []string
	rows = append(rows, title, "")
	for i, f := range formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+f))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < 1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(a.exportCursor)
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format int) tea.Cmd {
	return func() tea.Msg {
		tasks := a.ledger.Tasks()

		taskIndex := make(map[string]*model.Task)
		for i := range tasks {
			taskIndex[tasks[i].ID] = &tasks[i]
		}

		var records []model.SessionRecord
		for _, day := range a.aggregator.WeeklyStats() {
			records = append(records, day.Sessions...)
		}

		home, _ := os.UserHomeDir()
		dateStr := time.Now().Format("2006-01-02")

		var path string
		if format == 0 {
			path = filepath.Join(home, fmt.Sprintf("tomato-export-%s.csv", dateStr))
			if err := export.ToCSV(records, taskIndex, path); err != nil {
				return statusMsg{text: fmt.Sprintf("CSV error: %v", err), isError: true}
			}
		} else {
			recent := a.stats.Recent(context.Background(), 30)
			path = filepath.Join(home, fmt.Sprintf("tomato-export-%s.json", dateStr))
			if err := export.ToJSON(tasks, records, recent, path); err != nil {
				return statusMsg{text: fmt.Sprintf("JSON error: %v", err), isError: true}
			}
		}

		return exportDoneMsg{path: path}
	}
}
