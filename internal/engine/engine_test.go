package engine

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/generator"
)

func newTestEngine(t *testing.T, rec *audio.Recorder, opts ...Option) *Engine {
	t.Helper()
	base := []Option{
		WithGenerator(generator.NewWithSource(rand.NewSource(42))),
		WithLogger(zerolog.Nop()),
	}
	e, err := New(rec, append(base, opts...)...)
	require.NoError(t, err)
	return e
}

func forceTarget(ch rune) Option {
	return WithTargetFunc(func([]rune) rune { return ch })
}

func wrongOption(r Round) rune {
	for _, o := range r.Options {
		if o != r.Target {
			return o
		}
	}
	return 0
}

func timerOf(timers []Timer, kind TimerKind) (Timer, bool) {
	return lo.Find(timers, func(t Timer) bool { return t.Kind == kind })
}

func TestBeginStartsRoundAndPlaysTarget(t *testing.T) {
	rec := &audio.Recorder{}
	e := newTestEngine(t, rec, WithToneHz(650))

	round, err := e.Begin()
	require.NoError(t, err)
	require.Equal(t, Active, e.State())
	require.Equal(t, uint64(1), round.ID)
	require.Equal(t, -1, round.Revealed)

	last, ok := rec.Last()
	require.True(t, ok)
	require.Equal(t, catalog.Lookup(round.Target), last.Pattern)
	require.Equal(t, DefaultWPM, last.WPM)
	require.Equal(t, 650.0, last.ToneHz)
}

func TestRoundOptionsInvariant(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	_, err := e.Begin()
	require.NoError(t, err)
	for i := 0; i < 500; i++ {
		round, err := e.StartRound()
		require.NoError(t, err)
		require.Len(t, round.Options, OptionCount)
		require.Len(t, lo.Uniq(round.Options), OptionCount)
		require.Contains(t, round.Options, round.Target)
	}
}

func TestSubmitCorrect(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{},
		WithAlphabet([]rune("ABCD")), forceTarget('A'))
	round, err := e.Begin()
	require.NoError(t, err)
	require.ElementsMatch(t, []rune("ABCD"), round.Options)

	res, ok := e.Submit(round.ID, 'A')
	require.True(t, ok)
	require.Equal(t, Correct, res.Outcome)
	require.Equal(t, round.IndexOf('A'), res.Round.Revealed)
	require.True(t, res.Round.Resolved)

	s := e.Session()
	require.Equal(t, 1, s.Score)
	require.Equal(t, 1, s.TotalAnswered)
	require.Equal(t, []Outcome{Correct}, s.Trail)

	_, hasReveal := timerOf(res.Timers, Reveal)
	require.False(t, hasReveal)
	adv, ok := timerOf(res.Timers, Advance)
	require.True(t, ok)
	require.Equal(t, DefaultPolicy().AdvanceCorrect, adv.Delay)
}

func TestSubmitIncorrectRevealsAfterDelay(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{},
		WithAlphabet([]rune("ABCD")), forceTarget('A'))
	round, err := e.Begin()
	require.NoError(t, err)

	res, ok := e.Submit(round.ID, 'B')
	require.True(t, ok)
	require.Equal(t, Incorrect, res.Outcome)
	require.Equal(t, -1, res.Round.Revealed)

	s := e.Session()
	require.Equal(t, 0, s.Score)
	require.Equal(t, 1, s.TotalAnswered)

	reveal, ok := timerOf(res.Timers, Reveal)
	require.True(t, ok)
	require.Equal(t, DefaultPolicy().RevealDelay, reveal.Delay)
	adv, ok := timerOf(res.Timers, Advance)
	require.True(t, ok)
	require.Equal(t, DefaultPolicy().AdvanceIncorrect, adv.Delay)

	require.True(t, e.Fire(reveal))
	current, ok := e.Round()
	require.True(t, ok)
	require.Equal(t, current.IndexOf('A'), current.Revealed)
	require.Equal(t, 'A', current.Options[current.Revealed])

	require.False(t, e.Fire(reveal), "reveal fires once")
}

func TestSecondSubmitIsNoop(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	round, err := e.Begin()
	require.NoError(t, err)

	_, ok := e.Submit(round.ID, round.Target)
	require.True(t, ok)
	_, ok = e.Submit(round.ID, wrongOption(round))
	require.False(t, ok)

	s := e.Session()
	require.Equal(t, 1, s.Score)
	require.Equal(t, 1, s.TotalAnswered)
	require.Len(t, e.Answers(), 1)
}

func TestTotalAnsweredCountsEverySubmission(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	round, err := e.Begin()
	require.NoError(t, err)

	wantScore := 0
	for i := 0; i < 20; i++ {
		choice := round.Target
		if i%3 == 0 {
			choice = wrongOption(round)
		} else {
			wantScore++
		}
		res, ok := e.Submit(round.ID, choice)
		require.True(t, ok)
		adv, _ := timerOf(res.Timers, Advance)
		require.True(t, e.Fire(adv))
		round, _ = e.Round()
	}
	s := e.Session()
	require.Equal(t, 20, s.TotalAnswered)
	require.Equal(t, wantScore, s.Score)
	require.Len(t, s.Trail, 20)
}

func TestAdvanceStartsNextRound(t *testing.T) {
	rec := &audio.Recorder{}
	e := newTestEngine(t, rec)
	round, err := e.Begin()
	require.NoError(t, err)

	res, _ := e.Submit(round.ID, round.Target)
	adv, _ := timerOf(res.Timers, Advance)
	require.True(t, e.Fire(adv))

	next, ok := e.Round()
	require.True(t, ok)
	require.Equal(t, round.ID+1, next.ID)
	require.Equal(t, Active, e.State())
	require.Len(t, rec.Plays(), 2)

	require.False(t, e.Fire(adv), "stale advance must not skip a round")
}

func TestStaleTimerAfterResetIsNoop(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	round, err := e.Begin()
	require.NoError(t, err)
	res, _ := e.Submit(round.ID, wrongOption(round))

	e.Reset()
	require.Equal(t, Unstarted, e.State())
	for _, tm := range res.Timers {
		require.False(t, e.Fire(tm))
	}
	require.Equal(t, Unstarted, e.State())
	require.Zero(t, e.Session().TotalAnswered)
}

func TestStaleTimerAfterRestartIsNoop(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	round, err := e.Begin()
	require.NoError(t, err)
	res, _ := e.Submit(round.ID, round.Target)

	e.Reset()
	again, err := e.Begin()
	require.NoError(t, err)
	nextRes, ok := e.Submit(again.ID, again.Target)
	require.True(t, ok)

	// Round IDs keep increasing across resets, generation differs too.
	adv, _ := timerOf(res.Timers, Advance)
	require.False(t, e.Fire(adv))
	cur, _ := e.Round()
	require.Equal(t, again.ID, cur.ID)

	nextAdv, _ := timerOf(nextRes.Timers, Advance)
	require.True(t, e.Fire(nextAdv))
}

func TestResetKeepsSettings(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{}, WithWPM(25), WithHints(true))
	round, err := e.Begin()
	require.NoError(t, err)
	e.Submit(round.ID, round.Target)
	e.Reset()

	s := e.Session()
	require.Zero(t, s.Score)
	require.Zero(t, s.TotalAnswered)
	require.Empty(t, s.Trail)
	require.Equal(t, 25, s.WPM)
	require.True(t, s.Hints)
	require.Empty(t, e.Answers())
}

func TestAudioInitFailureLeavesSessionUnstarted(t *testing.T) {
	rec := &audio.Recorder{OpenErr: errors.New("no device")}
	e := newTestEngine(t, rec)

	_, err := e.Begin()
	require.ErrorIs(t, err, ErrAudioInit)
	require.Equal(t, Unstarted, e.State())
	s := e.Session()
	require.Zero(t, s.Score)
	require.Zero(t, s.TotalAnswered)
	_, ok := e.Round()
	require.False(t, ok)

	_, ok = e.Dispatch(KeyInput(0, 'A'))
	require.False(t, ok)
}

func TestAudioInitRetrySucceeds(t *testing.T) {
	rec := &audio.Recorder{OpenErr: errors.New("busy")}
	e := newTestEngine(t, rec)
	_, err := e.Begin()
	require.Error(t, err)

	rec.OpenErr = nil
	_, err = e.Begin()
	require.NoError(t, err)
	require.Equal(t, Active, e.State())
}

func TestReplayDoesNotMutate(t *testing.T) {
	rec := &audio.Recorder{}
	e := newTestEngine(t, rec)
	round, err := e.Begin()
	require.NoError(t, err)

	require.NoError(t, e.Replay(round.ID))
	require.Len(t, rec.Plays(), 2)
	require.Equal(t, rec.Plays()[0], rec.Plays()[1])
	require.Equal(t, Active, e.State())
	require.Zero(t, e.Session().TotalAnswered)

	require.ErrorIs(t, e.Replay(round.ID+7), ErrNoRound)
}

func TestReplayUsesCurrentSpeed(t *testing.T) {
	rec := &audio.Recorder{}
	e := newTestEngine(t, rec)
	round, err := e.Begin()
	require.NoError(t, err)
	require.NoError(t, e.SetWPM(30))
	require.NoError(t, e.Replay(round.ID))
	last, _ := rec.Last()
	require.Equal(t, 30, last.WPM)
}

func TestSetWPMRejectsUnsupported(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{})
	require.ErrorIs(t, e.SetWPM(17), ErrUnsupportedWPM)
	require.Equal(t, DefaultWPM, e.Session().WPM)
	require.NoError(t, e.SetWPM(10))
	require.Equal(t, 10, e.Session().WPM)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(&audio.Recorder{}, WithAlphabet([]rune("ABC")))
	require.Error(t, err)
	_, err = New(&audio.Recorder{}, WithWPM(12))
	require.ErrorIs(t, err, ErrUnsupportedWPM)
	_, err = New(&audio.Recorder{}, WithPolicy(Policy{RevealDelay: time.Second, AdvanceCorrect: time.Second, AdvanceIncorrect: time.Second}))
	require.Error(t, err)
}

func TestCloseTearsDown(t *testing.T) {
	rec := &audio.Recorder{}
	e := newTestEngine(t, rec)
	round, err := e.Begin()
	require.NoError(t, err)
	res, _ := e.Submit(round.ID, round.Target)

	require.NoError(t, e.Close())
	require.Equal(t, 1, rec.Closed())
	for _, tm := range res.Timers {
		require.False(t, e.Fire(tm))
	}
	_, err = e.Begin()
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, 1, rec.Opened(), "closed engine must not reopen audio")
	require.NoError(t, e.Close())
}

func TestLatencyRecorded(t *testing.T) {
	now := time.Unix(100, 0)
	clock := func() time.Time { return now }
	e := newTestEngine(t, &audio.Recorder{}, WithClock(clock))
	round, err := e.Begin()
	require.NoError(t, err)
	now = now.Add(1200 * time.Millisecond)
	e.Submit(round.ID, round.Target)

	answers := e.Answers()
	require.Len(t, answers, 1)
	require.Equal(t, 1200*time.Millisecond, answers[0].Latency)
	require.Equal(t, time.Unix(100, 0), e.Session().StartedAt)
}

func TestFocusBiasesTargets(t *testing.T) {
	e := newTestEngine(t, &audio.Recorder{},
		WithFocus(Focus{Weak: map[rune]struct{}{'Q': {}}, Factor: 200}))
	_, err := e.Begin()
	require.NoError(t, err)
	hits := 0
	for i := 0; i < 200; i++ {
		round, err := e.StartRound()
		require.NoError(t, err)
		if round.Target == 'Q' {
			hits++
		}
	}
	require.Greater(t, hits, 100)

	e.SetFocus(nil, 0)
	hits = 0
	for i := 0; i < 200; i++ {
		round, _ := e.StartRound()
		if round.Target == 'Q' {
			hits++
		}
	}
	require.Less(t, hits, 40)
}

func TestNextWPMCycles(t *testing.T) {
	require.Equal(t, 25, NextWPM(20))
	require.Equal(t, 10, NextWPM(30))
	require.Equal(t, DefaultWPM, NextWPM(13))
}
