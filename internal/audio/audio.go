// Package audio keys Morse patterns into tones.
//
// A Synth opens a Voice for a given tone frequency. Playing on a Voice
// supersedes whatever it was playing before, so at most one pattern is
// audible at a time.
package audio

import (
	"time"

	"github.com/verte-zerg/morsehero/internal/catalog"
)

const (
	// DefaultToneHz is the sidetone pitch used when none is configured.
	DefaultToneHz = 600.0
	// SampleRate is the rate used for playback and WAV rendering.
	SampleRate = 44100
)

// Synth opens voices on an audio backend.
type Synth interface {
	Open(toneHz float64) (Voice, error)
}

// Voice plays patterns at a tone chosen when it was opened.
type Voice interface {
	Play(p catalog.Pattern, wpm int) error
	Close() error
}

// Segment is one keyed span: a tone or a silence.
type Segment struct {
	Tone     bool
	Duration time.Duration
}

// UnitDuration returns the length of one Morse unit at wpm using the
// PARIS standard (50 units per word).
func UnitDuration(wpm int) time.Duration {
	if wpm <= 0 {
		wpm = 1
	}
	return time.Duration(float64(time.Second) * 60 / (50 * float64(wpm)))
}

// Keying expands a pattern into alternating tone and gap segments.
// Marks are separated by one-unit gaps; there is no trailing gap.
func Keying(p catalog.Pattern, wpm int) []Segment {
	if len(p) == 0 {
		return nil
	}
	unit := UnitDuration(wpm)
	segments := make([]Segment, 0, len(p)*2-1)
	for i, m := range p {
		if i > 0 {
			segments = append(segments, Segment{Duration: unit})
		}
		d := unit
		if m == catalog.Dash {
			d = 3 * unit
		}
		segments = append(segments, Segment{Tone: true, Duration: d})
	}
	return segments
}

// Duration returns the total keyed length of p at wpm.
func Duration(p catalog.Pattern, wpm int) time.Duration {
	return time.Duration(p.Units()) * UnitDuration(wpm)
}
