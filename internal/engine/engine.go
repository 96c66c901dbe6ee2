// Package engine runs the listen-and-pick round state machine.
//
// The engine is owned by a single host and is not safe for concurrent use.
// It never sleeps: delayed work is returned as Timer values that the host
// schedules and feeds back through Fire.
package engine

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/generator"
)

// Focus biases target selection toward weak characters.
type Focus struct {
	Weak   map[rune]struct{}
	Factor float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithAlphabet restricts the characters used for targets and options.
func WithAlphabet(alphabet []rune) Option {
	return func(e *Engine) {
		e.alphabet = append([]rune(nil), alphabet...)
	}
}

// WithGenerator replaces the random source.
func WithGenerator(gen *generator.Generator) Option {
	return func(e *Engine) {
		e.gen = gen
	}
}

// WithPolicy sets the feedback timings.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		e.policy = p
	}
}

// WithToneHz sets the pitch the voice is opened with.
func WithToneHz(hz float64) Option {
	return func(e *Engine) {
		e.toneHz = hz
	}
}

// WithWPM sets the initial playback speed.
func WithWPM(wpm int) Option {
	return func(e *Engine) {
		e.session.WPM = wpm
	}
}

// WithHints sets the initial hint visibility.
func WithHints(on bool) Option {
	return func(e *Engine) {
		e.session.Hints = on
	}
}

// WithFocus enables weighted target selection.
func WithFocus(f Focus) Option {
	return func(e *Engine) {
		e.focus = &f
	}
}

// WithTargetFunc overrides target selection. Mostly useful in tests.
func WithTargetFunc(fn func(alphabet []rune) rune) Option {
	return func(e *Engine) {
		e.pickTarget = fn
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// Engine drives rounds, scoring and feedback timing for one session.
type Engine struct {
	synth      audio.Synth
	voice      audio.Voice
	gen        *generator.Generator
	alphabet   []rune
	policy     Policy
	toneHz     float64
	focus      *Focus
	pickTarget func([]rune) rune
	now        func() time.Time
	logger     zerolog.Logger

	state      State
	session    Session
	round      Round
	lastRound  uint64
	generation uint64
	answers    []Answer
}

// New constructs an Engine that plays through synth.
func New(synth audio.Synth, opts ...Option) (*Engine, error) {
	e := &Engine{
		synth:    synth,
		alphabet: catalog.Alphabet(),
		policy:   DefaultPolicy(),
		toneHz:   audio.DefaultToneHz,
		now:      time.Now,
		logger:   log.Logger,
		session:  Session{WPM: DefaultWPM},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.gen == nil {
		e.gen = generator.New()
	}
	if len(e.alphabet) < OptionCount {
		return nil, fmt.Errorf("alphabet needs at least %d characters, got %d", OptionCount, len(e.alphabet))
	}
	if !ValidWPM(e.session.WPM) {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedWPM, e.session.WPM)
	}
	if err := e.policy.Validate(); err != nil {
		return nil, err
	}
	e.round.Revealed = -1
	return e, nil
}

// State returns the lifecycle state.
func (e *Engine) State() State {
	return e.state
}

// Session returns a copy of the session state.
func (e *Engine) Session() Session {
	return e.session.clone()
}

// Round returns a copy of the current round. ok is false when none is in play.
func (e *Engine) Round() (Round, bool) {
	if e.state != Active && e.state != Resolved {
		return Round{}, false
	}
	return e.round.clone(), true
}

// Answers returns every accepted submission since the last reset.
func (e *Engine) Answers() []Answer {
	return append([]Answer(nil), e.answers...)
}

// Policy returns the feedback timings.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Begin opens the voice if needed and starts the first round. When the
// voice cannot be opened the engine stays Unstarted and the session is
// left untouched.
func (e *Engine) Begin() (Round, error) {
	if e.state == Closed {
		return Round{}, ErrClosed
	}
	if e.state != Unstarted {
		return e.round.clone(), nil
	}
	if e.voice == nil {
		voice, err := e.synth.Open(e.toneHz)
		if err != nil {
			e.logger.Error().Err(err).Float64("tone_hz", e.toneHz).Msg("failed to open audio voice")
			return Round{}, fmt.Errorf("%w: %v", ErrAudioInit, err)
		}
		e.voice = voice
	}
	if e.session.StartedAt.IsZero() {
		e.session.StartedAt = e.now()
	}
	return e.StartRound()
}

// StartRound discards any current round and starts a new one.
func (e *Engine) StartRound() (Round, error) {
	switch {
	case e.state == Closed:
		return Round{}, ErrClosed
	case e.voice == nil:
		return Round{}, ErrNotStarted
	}

	target := e.drawTarget()
	e.lastRound++
	e.round = Round{
		ID:        e.lastRound,
		Target:    target,
		Options:   e.gen.Options(e.alphabet, target, OptionCount),
		Revealed:  -1,
		StartedAt: e.now(),
	}
	e.state = Active
	e.play(target)
	e.logger.Debug().Uint64("round", e.round.ID).Str("target", string(target)).Msg("round started")
	return e.round.clone(), nil
}

func (e *Engine) drawTarget() rune {
	switch {
	case e.pickTarget != nil:
		return e.pickTarget(e.alphabet)
	case e.focus != nil && len(e.focus.Weak) > 0:
		return e.gen.TargetWeighted(e.alphabet, e.focus.Weak, e.focus.Factor)
	default:
		return e.gen.Target(e.alphabet)
	}
}

func (e *Engine) play(ch rune) {
	if err := e.voice.Play(catalog.Lookup(ch), e.session.WPM); err != nil {
		e.logger.Warn().Err(err).Str("char", string(ch)).Msg("failed to play morse")
	}
}

// Submit evaluates chosen against the round's target. Only the first answer
// to the current active round is accepted; anything else returns false and
// changes nothing.
func (e *Engine) Submit(roundID uint64, chosen rune) (Result, bool) {
	if e.state != Active || roundID != e.round.ID {
		return Result{}, false
	}
	chosen = catalog.Normalize(chosen)

	outcome := Incorrect
	if chosen == e.round.Target {
		outcome = Correct
		e.session.Score++
	}
	e.session.TotalAnswered++
	e.session.Trail = append(e.session.Trail, outcome)
	e.answers = append(e.answers, Answer{
		Target:  e.round.Target,
		Chosen:  chosen,
		Outcome: outcome,
		Latency: e.now().Sub(e.round.StartedAt),
	})

	e.round.Selected = chosen
	e.round.Resolved = true
	e.state = Resolved

	var timers []Timer
	if outcome == Correct {
		e.round.Revealed = e.round.IndexOf(chosen)
	} else {
		timers = append(timers, e.timer(Reveal, e.policy.RevealDelay))
	}
	timers = append(timers, e.timer(Advance, e.policy.advance(outcome)))

	e.logger.Debug().
		Uint64("round", e.round.ID).
		Str("target", string(e.round.Target)).
		Str("chosen", string(chosen)).
		Stringer("outcome", outcome).
		Msg("answer submitted")

	return Result{Outcome: outcome, Round: e.round.clone(), Timers: timers}, true
}

func (e *Engine) timer(kind TimerKind, d time.Duration) Timer {
	return Timer{Kind: kind, Round: e.round.ID, Generation: e.generation, Delay: d}
}

// Fire runs a timer previously issued by Submit. Timers from a discarded
// round, a previous session or a closed engine are ignored.
func (e *Engine) Fire(t Timer) bool {
	if e.state != Resolved || t.Generation != e.generation || t.Round != e.round.ID {
		return false
	}
	switch t.Kind {
	case Reveal:
		if e.round.Revealed >= 0 {
			return false
		}
		e.round.Revealed = e.round.IndexOf(e.round.Target)
		return true
	case Advance:
		if _, err := e.StartRound(); err != nil {
			e.logger.Warn().Err(err).Msg("failed to advance round")
			return false
		}
		return true
	default:
		return false
	}
}

// Replay plays the target of the current round again.
func (e *Engine) Replay(roundID uint64) error {
	if e.state == Closed {
		return ErrClosed
	}
	if (e.state != Active && e.state != Resolved) || roundID != e.round.ID {
		return ErrNoRound
	}
	e.play(e.round.Target)
	return nil
}

// SetWPM changes the playback speed for subsequent plays.
func (e *Engine) SetWPM(wpm int) error {
	if !ValidWPM(wpm) {
		return fmt.Errorf("%w: %d", ErrUnsupportedWPM, wpm)
	}
	e.session.WPM = wpm
	return nil
}

// SetHints toggles pattern hints on the options.
func (e *Engine) SetHints(on bool) {
	e.session.Hints = on
}

// SetFocus replaces the weak-character bias. A nil weak set disables it.
func (e *Engine) SetFocus(weak map[rune]struct{}, factor float64) {
	if len(weak) == 0 {
		e.focus = nil
		return
	}
	e.focus = &Focus{Weak: weak, Factor: factor}
}

// Reset discards the round and zeroes the score. Pending timers become
// no-ops. The speed and hint settings and the open voice are kept.
func (e *Engine) Reset() {
	if e.state == Closed {
		return
	}
	e.generation++
	e.session = Session{WPM: e.session.WPM, Hints: e.session.Hints}
	e.round = Round{Revealed: -1}
	e.answers = nil
	e.state = Unstarted
}

// Close releases the voice. The engine accepts nothing afterwards.
func (e *Engine) Close() error {
	if e.state == Closed {
		return nil
	}
	e.state = Closed
	e.generation++
	if e.voice == nil {
		return nil
	}
	err := e.voice.Close()
	e.voice = nil
	if err != nil {
		return fmt.Errorf("failed to close voice: %w", err)
	}
	return nil
}
