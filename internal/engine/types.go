package engine

import (
	"time"

	"github.com/samber/lo"
)

// OptionCount is the number of answer options per round.
const OptionCount = 4

// State is the lifecycle position of the engine's current round.
type State int

const (
	// Unstarted means no round is in play.
	Unstarted State = iota
	// Active means options are shown and one answer is accepted.
	Active
	// Resolved means the round was answered and waits for its advance timer.
	Resolved
	// Closed means the engine was torn down; nothing further happens.
	Closed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Active:
		return "active"
	case Resolved:
		return "resolved"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// Outcome is the evaluation of one answer.
type Outcome int

const (
	// Correct means the chosen option was the target.
	Correct Outcome = iota + 1
	// Incorrect means it was not.
	Incorrect
)

func (o Outcome) String() string {
	switch o {
	case Correct:
		return "correct"
	case Incorrect:
		return "incorrect"
	default:
		return ""
	}
}

// Round is one question and answer cycle.
type Round struct {
	ID        uint64
	Target    rune
	Options   []rune
	Selected  rune
	Resolved  bool
	Revealed  int
	StartedAt time.Time
}

// IndexOf returns the option position of ch, or -1.
func (r Round) IndexOf(ch rune) int {
	return lo.IndexOf(r.Options, ch)
}

func (r Round) clone() Round {
	out := r
	out.Options = append([]rune(nil), r.Options...)
	return out
}

// Session is the cumulative state of one game until reset.
type Session struct {
	Score         int
	TotalAnswered int
	WPM           int
	Hints         bool
	Trail         []Outcome
	StartedAt     time.Time
}

func (s Session) clone() Session {
	out := s
	out.Trail = append([]Outcome(nil), s.Trail...)
	return out
}

// Answer records one accepted submission.
type Answer struct {
	Target  rune
	Chosen  rune
	Outcome Outcome
	Latency time.Duration
}

// Result is returned for an accepted submission.
type Result struct {
	Outcome Outcome
	Round   Round
	Timers  []Timer
}
