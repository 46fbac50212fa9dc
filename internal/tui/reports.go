package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tomato/internal/history"
	"tomato/internal/stats"
)

type weekDay struct {
	date         string
	workSessions int
	workMinutes  int
	rate         float64
}

type todaySummary struct {
	pomodoros      int
	workMinutes    int
	tasksCompleted int
}

type heatCell struct {
	date  string
	count int
	level int
}

type reportsModel struct {
	aggregator *history.Aggregator
	stats      *stats.Service
	width      int
	height     int

	week    []weekDay
	today   todaySummary
	heatmap []heatCell

	chart barchart.Model
}

func newReportsModel(a *history.Aggregator, s *stats.Service) reportsModel {
	return reportsModel{
		aggregator: a,
		stats:      s,
		chart:      barchart.New(60, 12),
	}
}

func (r *reportsModel) setSize(w, h int) {
	r.width = w
	r.height = h
}

func (r reportsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()

		var week []weekDay
		for _, d := range r.aggregator.WeeklyStats() {
			week = append(week, weekDay{
				date:         d.Date,
				workSessions: d.TotalWorkSessions,
				workMinutes:  d.TotalWorkTime,
				rate:         d.CompletionRate,
			})
		}

		ds := r.stats.LoadToday(ctx)
		today := todaySummary{
			pomodoros:      ds.PomodorosCompleted,
			workMinutes:    ds.TotalWorkTime,
			tasksCompleted: ds.TasksCompleted,
		}

		var heat []heatCell
		for _, p := range r.stats.Heatmap(ctx, 28) {
			heat = append(heat, heatCell{date: p.Date, count: p.Count, level: p.Level})
		}

		return reportsDataMsg{week: week, today: today, heatmap: heat}
	}
}

func (r reportsModel) update(msg tea.Msg) (reportsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case reportsDataMsg:
		r.week = msg.week
		r.today = msg.today
		r.heatmap = msg.heatmap
		r.buildChart()
		return r, nil

	case sessionEndedMsg:
		return r, r.refresh()
	}
	return r, nil
}

func (r *reportsModel) buildChart() {
	chartWidth := r.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if r.height > 30 {
		chartHeight = 14
	}

	r.chart = barchart.New(chartWidth, chartHeight)

	var bars []barchart.BarData
	for _, d := range r.week {
		label := d.date
		if t, err := time.Parse(time.DateOnly, d.date); err == nil {
			label = t.Format("Mon 02")
		}

		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if d.workMinutes == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}
		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: "focus", Value: float64(d.workMinutes), Style: style},
			},
		})
	}

	r.chart.PushAll(bars)
	r.chart.Draw()
}

func (r reportsModel) view() string {
	w := r.width - 4

	from, to := "", ""
	if len(r.week) > 0 {
		from = r.week[0].date
		to = r.week[len(r.week)-1].date
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Reports"), "  ",
		mutedStyle.Render(fmt.Sprintf("%s — %s  (focus minutes per day)", from, to)),
	)

	chartView := r.chart.View()
	todayView := r.renderToday()
	weekTable := r.renderWeekTable(w)
	heatView := r.renderHeatmap()

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", todayView, "", weekTable, "", heatView,
		),
	)
}

func (r reportsModel) renderToday() string {
	return fmt.Sprintf("  %s  %s pomodoros · %s focus · %s tasks done",
		titleStyle.Render("Today"),
		highlightStyle.Render(fmt.Sprintf("%d", r.today.pomodoros)),
		highlightStyle.Render(formatMinutes(r.today.workMinutes)),
		highlightStyle.Render(fmt.Sprintf("%d", r.today.tasksCompleted)),
	)
}

func (r reportsModel) renderWeekTable(w int) string {
	if len(r.week) == 0 {
		return mutedStyle.Render("  No data for this week")
	}

	var rows []string
	headerRow := mutedStyle.Render(fmt.Sprintf("  %-12s %8s %10s %12s", "Date", "Focus", "Duration", "Completion"))
	rows = append(rows, headerRow)
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 46))))

	for _, d := range r.week {
		rows = append(rows, fmt.Sprintf("  %-12s %8d %10s %11.0f%%",
			d.date, d.workSessions, formatMinutes(d.workMinutes), d.rate*100,
		))
	}

	return strings.Join(rows, "\n")
}

// renderHeatmap draws the last four weeks as one block per day.
func (r reportsModel) renderHeatmap() string {
	if len(r.heatmap) == 0 {
		return ""
	}

	var cells []string
	for _, c := range r.heatmap {
		level := c.level
		if level < 0 {
			level = 0
		}
		if level >= len(heatStyles) {
			level = len(heatStyles) - 1
		}
		cells = append(cells, heatStyles[level].Render("▦"))
	}

	legend := mutedStyle.Render("  less ") +
		heatStyles[0].Render("▦") + heatStyles[2].Render("▦") + heatStyles[4].Render("▦") +
		mutedStyle.Render(" more")

	return "  " + titleStyle.Render("Focus heatmap") + "\n  " +
		strings.Join(cells, "") + "\n" + legend
}
