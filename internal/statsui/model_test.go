package statsui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/model"
)

type fakeSource struct {
	sessions []model.SessionAggregate
	aggs     []model.CharAggregate
	err      error
}

func (f *fakeSource) ListSessions(context.Context, model.StatsConfig) ([]model.SessionAggregate, error) {
	return f.sessions, f.err
}

func (f *fakeSource) ListCharAggregatesForSessions(context.Context, []int64) ([]model.CharAggregate, error) {
	return f.aggs, nil
}

func sampleSource() *fakeSource {
	return &fakeSource{
		sessions: []model.SessionAggregate{
			{SessionID: 1, Correct: 8, Incorrect: 2, DurationMs: 60000},
			{SessionID: 2, Correct: 9, Incorrect: 1, DurationMs: 60000},
		},
		aggs: []model.CharAggregate{
			{Char: "A", Correct: 5, Incorrect: 0},
			{Char: "Q", Correct: 1, Incorrect: 3},
		},
	}
}

func TestOverviewShowsCards(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	view := m.View()
	require.Contains(t, view, "Sessions")
	require.Contains(t, view, "85.0%")
	require.Contains(t, view, "Accuracy trend")
}

func TestCharacterTabListsWeakestFirst(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 1})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, tabCharTable, m.activeTab)

	rows := m.charTable.Rows()
	require.Len(t, rows, 2)
	require.Equal(t, "Q", rows[0][0])
	require.Equal(t, "−−·−", rows[0][1])
}

func TestCurveWindowKeys(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{CurveWindow: 5})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	require.Equal(t, 10, m.cfg.CurveWindow)
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	require.Equal(t, 3, m.cfg.CurveWindow)
}

func TestEmptyAndErrorStates(t *testing.T) {
	empty := NewModel(&fakeSource{}, model.StatsConfig{})
	require.Contains(t, empty.View(), "No sessions found.")

	broken := NewModel(&fakeSource{err: errors.New("disk gone")}, model.StatsConfig{})
	view := broken.View()
	require.Contains(t, view, "Failed to load stats.")
	require.Contains(t, view, "disk gone")
}

func TestQuit(t *testing.T) {
	m := NewModel(sampleSource(), model.StatsConfig{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}
