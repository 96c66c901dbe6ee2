package engine

import "github.com/verte-zerg/morsehero/internal/catalog"

// Input is a pointer or keyboard selection aimed at a specific round.
type Input struct {
	Round uint64
	Index int
	Key   rune
}

// PointerInput selects the option at index.
func PointerInput(round uint64, index int) Input {
	return Input{Round: round, Index: index}
}

// KeyInput selects the option matching key, ignoring case.
func KeyInput(round uint64, key rune) Input {
	return Input{Round: round, Index: -1, Key: key}
}

// Dispatch funnels pointer and keyboard input into Submit. Input aimed at a
// round that is not active, an out of range index or a key that matches no
// displayed option is dropped without error.
func (e *Engine) Dispatch(in Input) (Result, bool) {
	if e.state != Active || in.Round != e.round.ID {
		return Result{}, false
	}
	idx := in.Index
	if idx < 0 {
		idx = e.round.IndexOf(catalog.Normalize(in.Key))
	}
	if idx < 0 || idx >= len(e.round.Options) {
		return Result{}, false
	}
	return e.Submit(in.Round, e.round.Options[idx])
}
