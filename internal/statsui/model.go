// Package statsui provides the Bubble Tea stats interface.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/morsehero/internal/model"
	"github.com/verte-zerg/morsehero/internal/stats"
)

const (
	tabOverview = iota
	tabCharTable
)

var curveWindows = []int{1, 3, 5, 10, 20, 50}

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Model implements the Bubble Tea stats UI.
type Model struct {
	src stats.Source
	cfg model.StatsConfig

	report stats.Report
	errMsg string

	tabs      []string
	activeTab int
	overview  viewport.Model
	charTable table.Model

	width  int
	height int
}

// NewModel constructs a stats UI model.
func NewModel(src stats.Source, cfg model.StatsConfig) *Model {
	m := &Model{
		src:       src,
		cfg:       cfg,
		tabs:      []string{"Overview", "Characters"},
		overview:  viewport.New(0, 0),
		charTable: buildCharTable(nil, 80, 10),
	}
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "left", "h", "shift+tab":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.CurveWindow = nextCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		case "-":
			m.cfg.CurveWindow = prevCurveWindow(m.cfg.CurveWindow)
			m.refreshReport()
			return m, nil
		}
		var cmd tea.Cmd
		if m.activeTab == tabCharTable {
			m.charTable, cmd = m.charTable.Update(msg)
		} else {
			m.overview, cmd = m.overview.Update(msg)
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	width, height := m.size()
	header := lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), m.renderSettings())
	footer := m.renderFooter()
	bodyHeight := maxInt(1, height-lipgloss.Height(header)-lipgloss.Height(footer))

	var body string
	switch {
	case m.errMsg != "":
		body = "Failed to load stats."
	case len(m.report.Sessions) == 0:
		body = "No sessions found."
	case m.activeTab == tabCharTable:
		body = tableMutedStyle.Render(m.charTable.View())
	default:
		body = m.overview.View()
	}
	body = lipgloss.NewStyle().MaxWidth(width).MaxHeight(bodyHeight).Render(body)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) size() (int, int) {
	width, height := m.width, m.height
	if width <= 0 {
		width = 80
	}
	if height <= 0 {
		height = 24
	}
	return width, height
}

func (m *Model) updateLayout() {
	width, height := m.size()
	bodyHeight := maxInt(1, height-5)
	m.overview.Width = width
	m.overview.Height = bodyHeight
	m.charTable.SetWidth(width)
	m.charTable.SetHeight(maxInt(1, bodyHeight-1))
	m.renderOverview()
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	m.activeTab = (m.activeTab + delta + count) % count
	if m.activeTab == tabCharTable {
		m.charTable.Focus()
	} else {
		m.charTable.Blur()
	}
}

func (m *Model) refreshReport() {
	report, err := stats.BuildReport(context.Background(), m.src, m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.report = report
	m.charTable.SetRows(charRows(report.CharAggsWindow))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	width, _ := m.size()
	if len(m.report.Sessions) == 0 {
		m.overview.SetContent("No sessions found.")
		return
	}
	cards := renderSummaryCards(m.report.Sessions, width)
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, m.report.Sessions, m.cfg.CurveWindow, width-12); err != nil {
		fmt.Fprintf(&buf, "Failed to render trend: %v", err)
	}
	m.overview.SetContent(strings.TrimRight(cards+"\n\n"+buf.String(), "\n"))
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderSettings() string {
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = fmt.Sprintf("%d", m.cfg.Last)
	}
	return headerStyle.Render(fmt.Sprintf("Settings: since=%s  last=%s  window=%d", since, last, m.cfg.CurveWindow))
}

func (m *Model) renderFooter() string {
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	var totalAcc, totalRate float64
	best := 0.0
	answers := 0
	for _, s := range sessions {
		acc, rate := stats.SessionMetrics(s.Correct, s.Incorrect, s.DurationMs)
		totalAcc += acc
		totalRate += rate
		if acc > best {
			best = acc
		}
		answers += s.Correct + s.Incorrect
	}
	count := float64(len(sessions))
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Answers", fmt.Sprintf("%d", answers)),
		metricCard("Avg Acc", fmt.Sprintf("%.1f%%", totalAcc/count*100)),
		metricCard("Best Acc", fmt.Sprintf("%.1f%%", best*100)),
		metricCard("Per Minute", fmt.Sprintf("%.1f", totalRate/count)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func charColumns() []table.Column {
	return []table.Column{
		{Title: "Char", Width: 4},
		{Title: "Morse", Width: 8},
		{Title: "Accuracy", Width: 9},
		{Title: "Avg Latency (ms)", Width: 17},
		{Title: "Correct", Width: 7},
		{Title: "Incorrect", Width: 9},
	}
}

func charRows(aggs []model.CharAggregate) []table.Row {
	src := stats.CharRows(aggs)
	rows := make([]table.Row, 0, len(src))
	for _, r := range src {
		rows = append(rows, table.Row{
			r.Char,
			r.Pattern,
			fmt.Sprintf("%.2f%%", r.Accuracy*100),
			fmt.Sprintf("%.1f", r.Latency),
			fmt.Sprintf("%d", r.Correct),
			fmt.Sprintf("%d", r.Incorrect),
		})
	}
	return rows
}

func buildCharTable(aggs []model.CharAggregate, width, height int) table.Model {
	t := table.New(
		table.WithColumns(charColumns()),
		table.WithRows(charRows(aggs)),
		table.WithHeight(maxInt(1, height-1)),
	)
	t.SetWidth(width)
	t.SetStyles(charTableStyles())
	return t
}

func charTableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func nextCurveWindow(n int) int {
	for _, w := range curveWindows {
		if w > n {
			return w
		}
	}
	return curveWindows[len(curveWindows)-1]
}

func prevCurveWindow(n int) int {
	for i := len(curveWindows) - 1; i >= 0; i-- {
		if curveWindows[i] < n {
			return curveWindows[i]
		}
	}
	return curveWindows[0]
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
