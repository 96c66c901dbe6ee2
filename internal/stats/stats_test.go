package stats

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/model"
)

func TestSessionMetrics(t *testing.T) {
	acc, rate := SessionMetrics(8, 2, 60000)
	require.InDelta(t, 0.8, acc, 1e-9)
	require.InDelta(t, 10.0, rate, 1e-9)

	acc, rate = SessionMetrics(0, 0, 0)
	require.Zero(t, acc)
	require.Zero(t, rate)
}

func TestMovingAverage(t *testing.T) {
	require.Equal(t, []float64{1, 1.5, 2.5}, MovingAverage([]float64{1, 2, 3}, 2))
	require.Equal(t, []float64{4, 5}, MovingAverage([]float64{4, 5}, 1))
}

func TestSparkline(t *testing.T) {
	require.Equal(t, " @", Sparkline([]float64{0, 1}))
	require.Equal(t, "+++", Sparkline([]float64{2, 2, 2}))
	require.Empty(t, Sparkline(nil))
}

func TestSelectWeakChars(t *testing.T) {
	aggs := []model.CharAggregate{
		{Char: "A", Correct: 9, Incorrect: 1},
		{Char: "B", Correct: 1, Incorrect: 3},
		{Char: "C", Correct: 5},
		{Char: "D", Correct: 1, Incorrect: 1},
	}
	weak := SelectWeakChars(aggs, 2)
	require.Equal(t, map[rune]struct{}{'B': {}, 'D': {}}, weak)

	weak = SelectWeakChars(aggs, 0)
	require.Len(t, weak, 3)
	require.NotContains(t, weak, 'C')

	require.Empty(t, SelectWeakChars(nil, 3))
}

func TestFromSession(t *testing.T) {
	start := time.Unix(1000, 0)
	session := engine.Session{Score: 2, TotalAnswered: 3, WPM: 15, Hints: true, StartedAt: start}
	answers := []engine.Answer{
		{Target: 'K', Chosen: 'K', Outcome: engine.Correct, Latency: 800 * time.Millisecond},
		{Target: 'R', Chosen: 'K', Outcome: engine.Incorrect, Latency: time.Second},
		{Target: 'K', Chosen: 'K', Outcome: engine.Correct, Latency: 400 * time.Millisecond},
	}
	sess, chars := FromSession(session, answers, start.Add(90*time.Second))

	require.Equal(t, 15, sess.WPM)
	require.True(t, sess.Hints)
	require.Equal(t, 2, sess.Score)
	require.Equal(t, 3, sess.Total)
	require.Equal(t, int64(90000), sess.DurationMs)
	require.Equal(t, []model.CharStats{
		{Char: "K", Correct: 2, LatencySumMs: 1200, LatencyCount: 2},
		{Char: "R", Incorrect: 1},
	}, chars)
}

func TestRenderCharTable(t *testing.T) {
	var buf bytes.Buffer
	err := RenderCharTable(&buf, []model.CharAggregate{
		{Char: "A", Correct: 3, Incorrect: 1, LatencySumMs: 1500, LatencyCount: 3},
		{Char: "Q", Correct: 1, Incorrect: 1},
	}, 0)
	require.NoError(t, err)
	out := buf.String()
	require.Contains(t, out, "Per-Character")
	require.Contains(t, out, "75.00%")
	require.Contains(t, out, "50.00%")
	require.Contains(t, out, "−−·−")
	require.Less(t, bytes.Index(buf.Bytes(), []byte("50.00%")), bytes.Index(buf.Bytes(), []byte("75.00%")))
}

func TestRenderCharTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderCharTable(&buf, nil, 0))
	require.Equal(t, "No character stats found.\n", buf.String())
}

func TestRenderSummary(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{
		{SessionID: 1, Correct: 8, Incorrect: 2, DurationMs: 60000},
		{SessionID: 2, Correct: 6, Incorrect: 4, DurationMs: 60000},
	}
	aggs := []model.CharAggregate{{Char: "E", Correct: 4}}
	require.NoError(t, RenderSummary(&buf, sessions, aggs))
	out := buf.String()
	require.Contains(t, out, "Sessions: 2")
	require.Contains(t, out, "Answered: 20 (14 correct)")
	require.Contains(t, out, "Avg Accuracy: 70.00%")
	require.Contains(t, out, "Best Accuracy: 80.00%")
	require.Contains(t, out, "Most heard: E")
}

func TestRenderTrend(t *testing.T) {
	var buf bytes.Buffer
	sessions := []model.SessionAggregate{
		{Correct: 1, Incorrect: 1},
		{Correct: 1},
	}
	require.NoError(t, RenderTrend(&buf, sessions, 1, 0))
	require.Contains(t, buf.String(), "[ @] 100.0%")
}
