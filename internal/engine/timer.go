package engine

import "time"

// TimerKind identifies what a scheduled task does when it fires.
type TimerKind int

const (
	// Reveal highlights the target option after a miss.
	Reveal TimerKind = iota + 1
	// Advance discards the resolved round and starts the next one.
	Advance
)

func (k TimerKind) String() string {
	switch k {
	case Reveal:
		return "reveal"
	case Advance:
		return "advance"
	default:
		return "unknown"
	}
}

// Timer is a scheduled task issued by the engine. Hosts wait Delay and hand
// it back to Engine.Fire. Round and Generation act as the cancellation
// token: once the round is discarded or the session reset, Fire ignores it.
type Timer struct {
	Kind       TimerKind
	Round      uint64
	Generation uint64
	Delay      time.Duration
}
