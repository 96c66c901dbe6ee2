// Package chart provides the Morse reference chart view.
package chart

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/catalog"
)

const (
	// WPM is the fixed speed used by the chart.
	WPM = 20
	// PlayingFor is how long a cell stays marked after being played.
	PlayingFor = 2 * time.Second

	columns   = 6
	cellWidth = 11
	cellGap   = 1
)

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	groupStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Underline(true)
	cellStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cursorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Reverse(true)
	playingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	footerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

type keyMap struct {
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Play  key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Up:    key.NewBinding(key.WithKeys("up", "k")),
	Down:  key.NewBinding(key.WithKeys("down", "j")),
	Left:  key.NewBinding(key.WithKeys("left", "h")),
	Right: key.NewBinding(key.WithKeys("right", "l")),
	Play:  key.NewBinding(key.WithKeys("enter", " ")),
	Quit:  key.NewBinding(key.WithKeys("esc", "q", "ctrl+c")),
}

type clearMsg struct {
	seq int
}

// cell is one character in the grid. line and col locate it on screen.
type cell struct {
	ch   rune
	line int
	col  int
}

// Model implements the chart view.
type Model struct {
	voice    audio.Voice
	audioErr error
	logger   zerolog.Logger

	cells []cell
	rows  [][]int
	row   int
	col   int

	playing rune
	seq     int
}

// New constructs a chart model. voice may be nil when audio could not be
// opened; openErr is then shown to the user.
func New(voice audio.Voice, openErr error) *Model {
	m := &Model{
		voice:    voice,
		audioErr: openErr,
		logger:   log.With().Str("component", "chart").Logger(),
	}
	m.layout()
	return m
}

// layout places every character. Each group starts on a fresh row below
// its heading.
func (m *Model) layout() {
	line := 1
	for _, g := range catalog.Groups() {
		line++
		for i, ch := range g.Chars {
			if i%columns == 0 {
				m.rows = append(m.rows, nil)
				line++
			}
			m.cells = append(m.cells, cell{ch: ch, line: line, col: i % columns})
			last := len(m.rows) - 1
			m.rows[last] = append(m.rows[last], len(m.cells)-1)
		}
		line++
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case clearMsg:
		if msg.seq == m.seq {
			m.playing = 0
		}
		return m, nil
	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if r, c, ok := m.hit(msg.X, msg.Y); ok {
			m.row, m.col = r, c
			return m, m.play()
		}
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Up):
			m.moveRow(-1)
		case key.Matches(msg, keys.Down):
			m.moveRow(1)
		case key.Matches(msg, keys.Left):
			m.moveCol(-1)
		case key.Matches(msg, keys.Right):
			m.moveCol(1)
		case key.Matches(msg, keys.Play):
			return m, m.play()
		}
		return m, nil
	default:
		return m, nil
	}
}

func (m *Model) moveRow(delta int) {
	next := m.row + delta
	if next < 0 || next >= len(m.rows) {
		return
	}
	m.row = next
	if m.col >= len(m.rows[next]) {
		m.col = len(m.rows[next]) - 1
	}
}

func (m *Model) moveCol(delta int) {
	next := m.col + delta
	switch {
	case next < 0:
		if m.row > 0 {
			m.row--
			m.col = len(m.rows[m.row]) - 1
		}
	case next >= len(m.rows[m.row]):
		if m.row < len(m.rows)-1 {
			m.row++
			m.col = 0
		}
	default:
		m.col = next
	}
}

// Selected returns the character under the cursor.
func (m *Model) Selected() rune {
	return m.cells[m.rows[m.row][m.col]].ch
}

// Playing returns the character currently marked as playing, or 0.
func (m *Model) Playing() rune {
	return m.playing
}

func (m *Model) play() tea.Cmd {
	ch := m.Selected()
	if m.voice != nil {
		if err := m.voice.Play(catalog.Lookup(ch), WPM); err != nil {
			m.logger.Warn().Err(err).Str("char", string(ch)).Msg("failed to play morse")
		}
	}
	m.seq++
	m.playing = ch
	seq := m.seq
	return tea.Tick(PlayingFor, func(time.Time) tea.Msg { return clearMsg{seq: seq} })
}

func (m *Model) hit(x, y int) (row, col int, ok bool) {
	for r, idxs := range m.rows {
		for c, idx := range idxs {
			cl := m.cells[idx]
			left := cl.col * (cellWidth + cellGap)
			if y == cl.line && x >= left && x < left+cellWidth {
				return r, c, true
			}
		}
	}
	return 0, 0, false
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Morse Code Chart"))
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("Click on any character to hear its Morse code sound."))
	b.WriteString("\n")

	selected := m.rows[m.row][m.col]
	idx := 0
	for _, g := range catalog.Groups() {
		b.WriteString(groupStyle.Render(g.Name))
		b.WriteString("\n")
		for i, ch := range g.Chars {
			if i > 0 && i%columns == 0 {
				b.WriteString("\n")
			}
			if i%columns != 0 {
				b.WriteString(strings.Repeat(" ", cellGap))
			}
			text := runewidth.FillRight(fmt.Sprintf("%c  %s", ch, catalog.Lookup(ch).Glyphs()), cellWidth)
			switch {
			case idx == selected:
				text = cursorStyle.Render(text)
			case ch == m.playing:
				text = playingStyle.Render(text)
			default:
				text = cellStyle.Render(text)
			}
			b.WriteString(text)
			idx++
		}
		b.WriteString("\n\n")
	}

	if m.playing != 0 {
		b.WriteString(playingStyle.Render(fmt.Sprintf("Playing %c", m.playing)))
	}
	if m.audioErr != nil {
		b.WriteString(errorStyle.Render("audio failed"))
	}
	b.WriteString("\n")
	b.WriteString(footerStyle.Render("arrows move · enter plays · esc quits"))
	return b.String()
}

// RenderPlain writes the chart as plain text.
func RenderPlain(w io.Writer) error {
	for gi, g := range catalog.Groups() {
		if gi > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w, g.Name); err != nil {
			return err
		}
		for _, ch := range g.Chars {
			p := catalog.Lookup(ch)
			line := runewidth.FillRight(fmt.Sprintf("  %c  %s", ch, p.Glyphs()), 14) + p.String()
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
	}
	return nil
}
