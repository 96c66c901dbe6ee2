// Package tui provides the Bubble Tea listening game.
package tui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/model"
	statsPkg "github.com/verte-zerg/morsehero/internal/stats"
)

const (
	instruction = "Listen to the Morse code and select the correct character"
	proTip      = "Pro Tip: Use your keyboard to select options faster!"
	audioFailed = "audio failed"
	startDelay  = 100 * time.Millisecond
)

// History is the subset of the store the game needs.
type History interface {
	InsertSession(ctx context.Context, stats model.SessionStats, chars []model.CharStats) (int64, error)
	ListSessions(ctx context.Context, cfg model.StatsConfig) ([]model.SessionAggregate, error)
	GetWeakChars(ctx context.Context, window int) ([]model.CharAggregate, error)
}

type beginMsg struct{}

type timerMsg struct {
	timer engine.Timer
}

type zone struct {
	x, y, w, h int
}

func (z zone) contains(x, y int) bool {
	return x >= z.x && x < z.x+z.w && y >= z.y && y < z.y+z.h
}

// Model implements the Bubble Tea game UI.
type Model struct {
	config  model.Config
	engine  *engine.Engine
	history History
	logger  zerolog.Logger
	now     func() time.Time

	keys keyMap
	help help.Model

	width  int
	height int

	started  bool
	audioErr string
	focus    int
	zones    []zone

	lastAcc  float64
	hasLast  bool
	allRight int
	allWrong int

	weakNoticeLogged bool
}

var (
	correctStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	incorrectStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	accentStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	footerStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	rightStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))

	buttonStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#8C8C8C")).
			Width(7).
			Align(lipgloss.Center)
	startStyle = buttonStyle.Copy().Width(14).BorderForeground(lipgloss.Color("#C89A3A"))
)

// NewModel constructs the game model around eng. history may be nil, in
// which case nothing is persisted.
func NewModel(cfg model.Config, eng *engine.Engine, history History) *Model {
	m := &Model{
		config:  cfg,
		engine:  eng,
		history: history,
		logger:  log.With().Str("component", "tui").Logger(),
		now:     time.Now,
		keys:    defaultKeyMap(),
		help:    help.New(),
		focus:   -1,
	}
	m.loadFooterStats()
	if cfg.FocusWeak {
		m.refreshWeakSet()
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	if m.config.Wait {
		return nil
	}
	return tea.Tick(startDelay, func(time.Time) tea.Msg { return beginMsg{} })
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case beginMsg:
		m.begin()
		return m, nil
	case timerMsg:
		if m.engine.Fire(msg.timer) && msg.timer.Kind == engine.Advance {
			m.focus = -1
		}
		return m, nil
	case tea.MouseMsg:
		return m, m.handleMouse(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.finishSession()
		return m, tea.Quit
	case !m.started:
		if key.Matches(msg, m.keys.Start) {
			m.begin()
		}
		return m, nil
	case key.Matches(msg, m.keys.Select):
		if m.focus < 0 {
			return m, nil
		}
		return m, m.dispatch(engine.PointerInput(m.roundID(), m.focus))
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Replay):
		if err := m.engine.Replay(m.roundID()); err != nil {
			m.logger.Debug().Err(err).Msg("replay ignored")
		}
	case key.Matches(msg, m.keys.Speed):
		wpm := engine.NextWPM(m.engine.Session().WPM)
		if err := m.engine.SetWPM(wpm); err != nil {
			m.logger.Warn().Err(err).Int("wpm", wpm).Msg("failed to change speed")
		}
	case key.Matches(msg, m.keys.Hints):
		m.engine.SetHints(!m.engine.Session().Hints)
	case key.Matches(msg, m.keys.Reset):
		m.finishSession()
		m.engine.Reset()
		m.focus = -1
		m.begin()
	case msg.Type == tea.KeyRunes && len(msg.Runes) == 1:
		return m, m.dispatch(engine.KeyInput(m.roundID(), msg.Runes[0]))
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	if !m.started {
		if len(m.zones) == 1 && m.zones[0].contains(msg.X, msg.Y) {
			m.begin()
		}
		return nil
	}
	for i, z := range m.zones {
		if z.contains(msg.X, msg.Y) {
			m.focus = i
			return m.dispatch(engine.PointerInput(m.roundID(), i))
		}
	}
	return nil
}

func (m *Model) begin() {
	if _, err := m.engine.Begin(); err != nil {
		if errors.Is(err, engine.ErrAudioInit) {
			m.audioErr = audioFailed
		}
		m.logger.Error().Err(err).Msg("failed to start game")
		return
	}
	m.started = true
	m.audioErr = ""
}

func (m *Model) roundID() uint64 {
	round, ok := m.engine.Round()
	if !ok {
		return 0
	}
	return round.ID
}

func (m *Model) moveFocus(delta int) {
	m.focus = (m.focus + delta + engine.OptionCount) % engine.OptionCount
}

func (m *Model) dispatch(in engine.Input) tea.Cmd {
	res, ok := m.engine.Dispatch(in)
	if !ok {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(res.Timers))
	for _, t := range res.Timers {
		cmds = append(cmds, schedule(t))
	}
	return tea.Batch(cmds...)
}

func schedule(t engine.Timer) tea.Cmd {
	return tea.Tick(t.Delay, func(time.Time) tea.Msg { return timerMsg{timer: t} })
}

// View implements tea.Model.
func (m *Model) View() string {
	footer := m.renderFooter()
	var block string
	var zones []zone
	if m.started {
		block, zones = m.renderGame()
	} else {
		block, zones = m.renderStart()
	}

	if m.width == 0 || m.height == 0 {
		m.zones = nil
		return lipgloss.JoinVertical(lipgloss.Left, block, footer)
	}

	bodyHeight := m.height - lipgloss.Height(footer)
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	left := centerOffset(m.width - lipgloss.Width(block))
	top := centerOffset(bodyHeight - lipgloss.Height(block))
	for i := range zones {
		zones[i].x += left
		zones[i].y += top
	}
	m.zones = zones

	body := lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, block)
	footerLine := lipgloss.Place(m.width, lipgloss.Height(footer), lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func centerOffset(gap int) int {
	if gap <= 0 {
		return 0
	}
	return int(math.Round(float64(gap) * 0.5))
}

func (m *Model) renderStart() (string, []zone) {
	title := accentStyle.Bold(true).Render("Morse Hero")
	button := startStyle.Render("Start Game")
	lines := []string{title, "", m.renderScore(), ""}
	if m.audioErr != "" {
		lines = append(lines, incorrectStyle.Render(m.audioErr), "")
	}
	buttonRow := len(lines)
	lines = append(lines, button)
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)

	bw := lipgloss.Width(button)
	z := zone{
		x: centerOffset(lipgloss.Width(block) - bw),
		y: rowOffset(lines, buttonRow),
		w: bw,
		h: lipgloss.Height(button),
	}
	return block, []zone{z}
}

func (m *Model) renderGame() (string, []zone) {
	round, _ := m.engine.Round()
	session := m.engine.Session()

	buttons := make([]string, 0, engine.OptionCount)
	widths := make([]int, 0, engine.OptionCount)
	for i, ch := range round.Options {
		b := m.renderButton(round, i, ch, session.Hints)
		buttons = append(buttons, b)
		widths = append(widths, lipgloss.Width(b))
	}
	spaced := make([]string, 0, len(buttons)*2)
	for i, b := range buttons {
		if i > 0 {
			spaced = append(spaced, " ")
		}
		spaced = append(spaced, b)
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, spaced...)

	lines := []string{
		m.renderScore(),
		m.renderTrail(session.Trail),
		"",
		pendingStyle.Render(instruction),
		"",
	}
	buttonRow := len(lines)
	lines = append(lines,
		row,
		"",
		pendingStyle.Render(fmt.Sprintf("Speed: %d WPM  Hints: %s", session.WPM, onOff(session.Hints))),
	)
	if !m.config.Wait {
		lines = append(lines, footerStyle.Render(proTip))
	}
	lines = append(lines, m.help.View(m.keys))
	block := lipgloss.JoinVertical(lipgloss.Center, lines...)

	x := centerOffset(lipgloss.Width(block) - lipgloss.Width(row))
	y := rowOffset(lines, buttonRow)
	h := lipgloss.Height(row)
	zones := make([]zone, 0, len(buttons))
	for _, w := range widths {
		zones = append(zones, zone{x: x, y: y, w: w, h: h})
		x += w + 1
	}
	return block, zones
}

func rowOffset(lines []string, idx int) int {
	y := 0
	for _, l := range lines[:idx] {
		y += lipgloss.Height(l)
	}
	return y
}

func (m *Model) renderButton(round engine.Round, idx int, ch rune, hints bool) string {
	style := buttonStyle.Copy()
	label := correctStyle.Render(string(ch))
	switch {
	case round.Revealed == idx:
		style = style.BorderForeground(lipgloss.Color("#52C41A"))
		label = rightStyle.Bold(true).Render(string(ch))
	case round.Resolved && round.Selected == ch:
		style = style.BorderForeground(lipgloss.Color("#FF4D4F"))
		label = incorrectStyle.Bold(true).Render(string(ch))
	case m.focus == idx:
		style = style.BorderForeground(lipgloss.Color("#C89A3A"))
		label = accentStyle.Render(string(ch))
	}
	content := label
	if hints {
		content += "\n" + pendingStyle.Render(catalog.Lookup(ch).Glyphs())
	}
	return style.Render(content)
}

func (m *Model) renderScore() string {
	s := m.engine.Session()
	return correctStyle.Render(fmt.Sprintf("Score: %d / %d", s.Score, s.TotalAnswered))
}

func (m *Model) renderTrail(trail []engine.Outcome) string {
	if len(trail) == 0 {
		return ""
	}
	var b strings.Builder
	for _, o := range trail {
		if o == engine.Correct {
			b.WriteString(rightStyle.Render("●"))
		} else {
			b.WriteString(incorrectStyle.Render("●"))
		}
	}
	return b.String()
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (m *Model) loadFooterStats() {
	if m.history == nil {
		return
	}
	sessions, err := m.history.ListSessions(context.Background(), model.StatsConfig{})
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load session stats")
		return
	}
	if len(sessions) == 0 {
		return
	}
	last := sessions[len(sessions)-1]
	m.lastAcc, _ = statsPkg.SessionMetrics(last.Correct, last.Incorrect, last.DurationMs)
	m.hasLast = true
	for _, s := range sessions {
		m.allRight += s.Correct
		m.allWrong += s.Incorrect
	}
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.hasLast {
		segments = append(segments, fmt.Sprintf("Last %.1f%%", m.lastAcc*100))
	}
	if m.allRight+m.allWrong > 0 {
		acc, _ := statsPkg.SessionMetrics(m.allRight, m.allWrong, 0)
		segments = append(segments, fmt.Sprintf("All-time %.1f%% over %d answers", acc*100, m.allRight+m.allWrong))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}

func (m *Model) finishSession() {
	session := m.engine.Session()
	if session.TotalAnswered == 0 {
		return
	}
	stats, chars := statsPkg.FromSession(session, m.engine.Answers(), m.now())
	m.lastAcc, _ = statsPkg.SessionMetrics(stats.Score, stats.Total-stats.Score, stats.DurationMs)
	m.hasLast = true
	m.allRight += stats.Score
	m.allWrong += stats.Total - stats.Score

	if m.history == nil {
		return
	}
	if _, err := m.history.InsertSession(context.Background(), stats, chars); err != nil {
		m.logger.Error().Err(err).Msg("failed to save session")
		return
	}
	if m.config.FocusWeak {
		m.refreshWeakSet()
	}
}

func (m *Model) refreshWeakSet() {
	if m.history == nil {
		return
	}
	aggs, err := m.history.GetWeakChars(context.Background(), m.config.WeakWindow)
	if err != nil {
		m.logger.Warn().Err(err).Msg("failed to load weak chars")
		return
	}
	weak := statsPkg.SelectWeakChars(aggs, m.config.WeakTop)
	if len(weak) == 0 && !m.weakNoticeLogged {
		m.logger.Info().Msg("no stats available for weak-char focus yet; using uniform targets")
		m.weakNoticeLogged = true
	}
	m.engine.SetFocus(weak, m.config.WeakFactor)
}

// Close releases the engine's audio voice.
func (m *Model) Close() error {
	return m.engine.Close()
}
