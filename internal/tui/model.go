package tui

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/sparkline"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/samber/lo"

	"github.com/mlipski/tokengauge/internal/usage"
)

// FetchFunc computes a fresh usage report. It runs inside a tea.Cmd, off
// the update loop.
type FetchFunc func() usage.Report

type ReportMsg usage.Report

type tickMsg time.Time

type logChangedMsg struct{}

const gaugeWidth = 40

// Model is the dashboard: one gauge card, refreshed on a timer and on
// log-directory activity.
type Model struct {
	fetch    FetchFunc
	interval time.Duration
	warn     float64
	crit     float64
	changes  <-chan struct{}

	report     usage.Report
	haveReport bool
	width      int
	refreshing bool
}

func NewModel(fetch FetchFunc, interval time.Duration, warn, crit float64, changes <-chan struct{}) Model {
	return Model{
		fetch:    fetch,
		interval: interval,
		warn:     warn,
		crit:     crit,
		changes:  changes,
		width:    80,
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.fetchCmd(), m.tickCmd()}
	if m.changes != nil {
		cmds = append(cmds, m.waitChangeCmd())
	}
	return tea.Batch(cmds...)
}

func (m Model) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		return ReportMsg(fetch())
	}
}

func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m Model) waitChangeCmd() tea.Cmd {
	changes := m.changes
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return logChangedMsg{}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			m.refreshing = true
			return m, m.fetchCmd()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tickMsg:
		m.refreshing = true
		return m, tea.Batch(m.fetchCmd(), m.tickCmd())

	case logChangedMsg:
		m.refreshing = true
		if m.changes != nil {
			return m, tea.Batch(m.fetchCmd(), m.waitChangeCmd())
		}
		return m, m.fetchCmd()

	case ReportMsg:
		m.report = usage.Report(msg)
		m.haveReport = true
		m.refreshing = false
	}

	return m, nil
}

func (m Model) View() string {
	if !m.haveReport {
		return cardStyle.Render(dimStyle.Render("Scanning session logs..."))
	}

	r := m.report

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		brandStyle.Render("tokengauge"),
		dimStyle.Render("  ·  "),
		titleStyle.Render(r.PlanName+" plan"),
	)

	gauge := RenderUsageGauge(r.UsedPercent(), gaugeWidth, m.warn, m.crit)

	rows := []string{
		header,
		"",
		gauge,
		"",
		statRow("Used", fmt.Sprintf("%s / %s tokens", formatCount(r.Used), formatCount(r.Limit))),
		statRow("Remaining", formatCount(r.Remaining)+" tokens"),
		statRow("Resets", resetLabel(r.WindowEnd, r.GeneratedAt)),
	}

	if r.Earliest != nil {
		rows = append(rows, statRow("First activity", r.Earliest.Local().Format("15:04")))
	} else {
		rows = append(rows, statRow("First activity", dimStyle.Render("none this window")))
	}

	if spark := m.renderSparkline(); spark != "" {
		rows = append(rows, "", labelStyle.Render("Window activity"), spark)
	}

	meta := fmt.Sprintf("%d files", r.FilesViewed)
	if r.CLIVersion != "" {
		meta += "  ·  CLI " + r.CLIVersion
	}
	if m.refreshing {
		meta += "  ·  refreshing"
	}
	rows = append(rows, "", dimStyle.Render(meta))
	rows = append(rows, helpStyle.Render("r refresh · q quit"))

	// Clip styled rows so narrow terminals never wrap the card.
	if inner := m.width - 6; inner > 10 {
		for i, row := range rows {
			rows[i] = ansi.Cut(row, 0, inner)
		}
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m Model) renderSparkline() string {
	if len(m.report.Hourly) == 0 {
		return ""
	}

	values := lo.Map(m.report.Hourly, func(p usage.HourPoint, _ int) float64 {
		return float64(p.Units)
	})

	width := len(values)
	if width < 10 {
		width = 10
	}
	if width > gaugeWidth {
		width = gaugeWidth
	}

	sl := sparkline.New(width, 4, sparkline.WithStyle(sparklineStyle))
	sl.PushAll(values)
	sl.Draw()
	return sl.View()
}

func statRow(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-16s", label)) + valueStyle.Render(value)
}

func resetLabel(windowEnd, now time.Time) string {
	remaining := windowEnd.Sub(now).Round(time.Minute)
	if remaining < 0 {
		remaining = 0
	}
	return fmt.Sprintf("%s (%s)",
		windowEnd.Local().Format("15:04"),
		tealStyle.Render("in "+formatDuration(remaining)))
}

func formatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h > 0 {
		return fmt.Sprintf("%dh %02dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatCount(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return fmt.Sprintf("%.0fk", float64(n)/1_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
