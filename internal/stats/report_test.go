package stats

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/model"
	"github.com/verte-zerg/morsehero/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "morsehero.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		id, err := st.InsertSession(ctx, model.SessionStats{
			StartedAt:  start,
			EndedAt:    end,
			WPM:        20,
			Score:      9,
			Total:      10,
			DurationMs: end.Sub(start).Milliseconds(),
		}, []model.CharStats{
			{Char: "A", Correct: 5},
			{Char: "B", Correct: 4, Incorrect: 1},
		})
		require.NoError(t, err)
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	require.NoError(t, err)
	require.Len(t, report.Sessions, 2)
	require.Equal(t, ids[1], report.Sessions[0].SessionID)
	require.Equal(t, ids[2], report.Sessions[1].SessionID)
	require.Equal(t, []int64{ids[2]}, report.WindowSessionIDs)

	byChar := map[string]model.CharAggregate{}
	for _, a := range report.CharAggsAll {
		byChar[a.Char] = a
	}
	require.Equal(t, 10, byChar["A"].Correct)
	require.Equal(t, 2, byChar["B"].Incorrect)
	require.Len(t, report.CharAggsWindow, 2)
}
