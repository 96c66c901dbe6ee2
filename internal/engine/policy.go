package engine

import (
	"fmt"
	"time"

	"github.com/samber/lo"
)

// SupportedWPM lists the selectable playback speeds.
var SupportedWPM = []int{10, 15, 20, 25, 30}

// DefaultWPM is the starting playback speed.
const DefaultWPM = 20

// Policy holds the feedback timings.
type Policy struct {
	// RevealDelay is the pause before highlighting the target after a miss.
	RevealDelay time.Duration
	// AdvanceCorrect is the pause before the next round after a hit.
	AdvanceCorrect time.Duration
	// AdvanceIncorrect is the pause before the next round after a miss.
	AdvanceIncorrect time.Duration
}

// DefaultPolicy returns the stock feedback timings.
func DefaultPolicy() Policy {
	return Policy{
		RevealDelay:      300 * time.Millisecond,
		AdvanceCorrect:   1500 * time.Millisecond,
		AdvanceIncorrect: 2000 * time.Millisecond,
	}
}

// Validate checks that every delay is usable.
func (p Policy) Validate() error {
	if p.RevealDelay < 0 {
		return fmt.Errorf("reveal delay must be >= 0")
	}
	if p.AdvanceCorrect <= 0 || p.AdvanceIncorrect <= 0 {
		return fmt.Errorf("advance delays must be > 0")
	}
	if p.RevealDelay >= p.AdvanceIncorrect {
		return fmt.Errorf("reveal delay must be shorter than the incorrect advance delay")
	}
	return nil
}

func (p Policy) advance(o Outcome) time.Duration {
	if o == Correct {
		return p.AdvanceCorrect
	}
	return p.AdvanceIncorrect
}

// ValidWPM reports whether wpm is one of SupportedWPM.
func ValidWPM(wpm int) bool {
	return lo.Contains(SupportedWPM, wpm)
}

// NextWPM cycles to the following supported speed.
func NextWPM(wpm int) int {
	idx := lo.IndexOf(SupportedWPM, wpm)
	if idx < 0 {
		return DefaultWPM
	}
	return SupportedWPM[(idx+1)%len(SupportedWPM)]
}
