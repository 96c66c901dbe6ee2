package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "morsehero.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func insert(t *testing.T, st *Store, endedAt time.Time, score, total int, chars []model.CharStats) int64 {
	t.Helper()
	id, err := st.InsertSession(context.Background(), model.SessionStats{
		StartedAt:  endedAt.Add(-time.Minute),
		EndedAt:    endedAt,
		WPM:        20,
		Hints:      true,
		Score:      score,
		Total:      total,
		DurationMs: time.Minute.Milliseconds(),
	}, chars)
	require.NoError(t, err)
	return id
}

func TestInsertAndListSessions(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := insert(t, st, base, 7, 10, nil)
	second := insert(t, st, base.Add(time.Hour), 3, 4, nil)

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, first, sessions[0].SessionID)
	require.Equal(t, 7, sessions[0].Correct)
	require.Equal(t, 3, sessions[0].Incorrect)
	require.Equal(t, 20, sessions[0].WPM)
	require.Equal(t, second, sessions[1].SessionID)

	since := base.Add(30 * time.Minute)
	sessions, err = st.ListSessions(context.Background(), model.StatsConfig{Since: &since})
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, second, sessions[0].SessionID)
}

func TestGetWeakCharsWindow(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	insert(t, st, base, 1, 2, []model.CharStats{{Char: "A", Correct: 1, Incorrect: 1}})
	insert(t, st, base.Add(time.Hour), 2, 3, []model.CharStats{
		{Char: "A", Correct: 2},
		{Char: "B", Incorrect: 1, LatencySumMs: 900, LatencyCount: 1},
	})

	aggs, err := st.GetWeakChars(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, aggs, 2)

	aggs, err = st.GetWeakChars(context.Background(), 5)
	require.NoError(t, err)
	byChar := map[string]model.CharAggregate{}
	for _, a := range aggs {
		byChar[a.Char] = a
	}
	require.Equal(t, 3, byChar["A"].Correct)
	require.Equal(t, 1, byChar["A"].Incorrect)
	require.Equal(t, int64(900), byChar["B"].LatencySumMs)

	aggs, err = st.GetWeakChars(context.Background(), 0)
	require.NoError(t, err)
	require.Nil(t, aggs)
}

func TestListCharAggregatesForSessions(t *testing.T) {
	st := openTestStore(t)
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	a := insert(t, st, base, 1, 1, []model.CharStats{{Char: "E", Correct: 1}})
	insert(t, st, base.Add(time.Hour), 0, 1, []model.CharStats{{Char: "T", Incorrect: 1}})

	aggs, err := st.ListCharAggregatesForSessions(context.Background(), []int64{a})
	require.NoError(t, err)
	require.Len(t, aggs, 1)
	require.Equal(t, "E", aggs[0].Char)

	aggs, err = st.ListCharAggregatesForSessions(context.Background(), nil)
	require.NoError(t, err)
	require.Nil(t, aggs)
}

func TestInsertSessionRollsBackOnDuplicateChar(t *testing.T) {
	st := openTestStore(t)
	_, err := st.InsertSession(context.Background(), model.SessionStats{
		StartedAt: time.Now(),
		EndedAt:   time.Now(),
		WPM:       20,
	}, []model.CharStats{{Char: "A"}, {Char: "A"}})
	require.Error(t, err)

	sessions, err := st.ListSessions(context.Background(), model.StatsConfig{})
	require.NoError(t, err)
	require.Empty(t, sessions)
}
