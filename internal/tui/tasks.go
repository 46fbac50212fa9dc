package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"tomato/internal/task"
)

var priorityNames = []string{"Low", "Normal", "High"}

type tasksModel struct {
	ledger *task.Ledger
	width  int
	height int

	cursor int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit"

	// Form field pointers (survive value copies)
	formText     *string
	formPriority *string
	formEstimate *string

	editingID string
}

func newTasksModel(l *task.Ledger) tasksModel {
	text, prio, est := "", "1", "1"
	return tasksModel{
		ledger:       l,
		formText:     &text,
		formPriority: &prio,
		formEstimate: &est,
	}
}

func (m *tasksModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m tasksModel) update(msg tea.Msg) (tasksModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m tasksModel) updateKeys(msg tea.KeyMsg) (tasksModel, tea.Cmd) {
	tasks := m.ledger.Tasks()
	if m.cursor >= len(tasks) {
		m.cursor = max(0, len(tasks)-1)
	}

	switch {
	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if m.cursor < len(tasks)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.New):
		return m.showNewForm()
	case key.Matches(msg, keys.Edit):
		if len(tasks) > 0 {
			return m.showEditForm(tasks[m.cursor].ID)
		}
	case key.Matches(msg, keys.Toggle):
		if len(tasks) > 0 {
			t := tasks[m.cursor]
			var err error
			if t.Completed {
				err = m.ledger.Uncomplete(context.Background(), t.ID)
			} else {
				err = m.ledger.Complete(context.Background(), t.ID)
			}
			if err != nil {
				return m, errStatus(err)
			}
		}
	case key.Matches(msg, keys.Delete):
		if len(tasks) > 0 {
			if err := m.ledger.Remove(context.Background(), tasks[m.cursor].ID); err != nil {
				return m, errStatus(err)
			}
		}
	}
	return m, nil
}

func errStatus(err error) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: fmt.Sprintf("Error: %v", err), isError: true}
	}
}

func (m tasksModel) showNewForm() (tasksModel, tea.Cmd) {
	*m.formText = ""
	*m.formPriority = "1"
	*m.formEstimate = "1"
	m.formType = "new"

	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) showEditForm(id string) (tasksModel, tea.Cmd) {
	t := m.ledger.Get(id)
	if t == nil {
		return m, nil
	}
	*m.formText = t.Text
	*m.formPriority = strconv.Itoa(t.Priority)
	*m.formEstimate = strconv.Itoa(t.EstimatedPomodoros)
	m.formType = "edit"
	m.editingID = id

	m.form = m.buildForm()
	m.formActive = true
	return m, m.form.Init()
}

func (m tasksModel) buildForm() *huh.Form {
	prioOptions := make([]huh.Option[string], len(priorityNames))
	for i, name := range priorityNames {
		prioOptions[i] = huh.NewOption(name, strconv.Itoa(i))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task").Value(m.formText),
			huh.NewSelect[string]().Title("Priority").Options(prioOptions...).Value(m.formPriority),
			huh.NewInput().Title("Estimated pomodoros").Value(m.formEstimate),
		),
	).WithShowHelp(true).WithShowErrors(true)
}

func (m tasksModel) updateForm(msg tea.Msg) (tasksModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		if *m.formText == "" {
			return m, nil
		}
		prio, _ := strconv.Atoi(*m.formPriority)
		estimate, err := strconv.Atoi(*m.formEstimate)
		if err != nil || estimate < 1 {
			estimate = 1
		}

		ctx := context.Background()
		switch m.formType {
		case "new":
			if _, err := m.ledger.Add(ctx, *m.formText, prio, estimate); err != nil {
				return m, errStatus(err)
			}
			m.cursor = 0
		case "edit":
			if err := m.ledger.UpdateText(ctx, m.editingID, *m.formText); err != nil {
				return m, errStatus(err)
			}
			if err := m.ledger.UpdatePriority(ctx, m.editingID, prio); err != nil {
				return m, errStatus(err)
			}
			if err := m.ledger.UpdateEstimate(ctx, m.editingID, estimate); err != nil {
				return m, errStatus(err)
			}
		}
		return m, nil
	}

	return m, cmd
}

func (m tasksModel) view() string {
	w := m.width - 4

	if m.formActive && m.form != nil {
		title := titleStyle.Render("New Task")
		if m.formType == "edit" {
			title = titleStyle.Render("Edit Task")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", m.form.View())
		return panelStyle.Width(w).Render(content)
	}

	tasks := m.ledger.Tasks()
	title := titleStyle.Render("Tasks")

	if len(tasks) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No tasks yet. Press n to add one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-36s %-8s %s", "", "Task", "Priority", "Pomodoros"))
	rows = append(rows, header)

	for i, t := range tasks {
		cursor := "  "
		style := normalItemStyle
		if i == m.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		mark := "○"
		if t.Completed {
			mark = successStyle.Render("✓")
			if i != m.cursor {
				style = doneItemStyle
			}
		}
		prio := priorityNames[min(max(t.Priority, 0), len(priorityNames)-1)]
		row := fmt.Sprintf("%s%s %-36s %-8s %d/%d",
			cursor, mark, truncate(t.Text, 36), prio, t.ActualPomodoros, t.EstimatedPomodoros)
		rows = append(rows, style.Render(row))
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  enter: toggle done  d: delete"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
