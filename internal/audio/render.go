package audio

import (
	"fmt"
	"io"
	"math"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"

	"github.com/verte-zerg/morsehero/internal/catalog"
)

const (
	volume   = 0.5
	fadeMin  = 10
	fadeFrac = 20
)

// Render builds a streamer that keys p at wpm on a sine tone.
func Render(p catalog.Pattern, wpm int, toneHz float64) beep.Streamer {
	sr := beep.SampleRate(SampleRate)
	segments := Keying(p, wpm)
	streamers := make([]beep.Streamer, 0, len(segments))
	for _, s := range segments {
		n := sr.N(s.Duration)
		if s.Tone {
			streamers = append(streamers, &toneStreamer{samples: n, frequency: toneHz})
		} else {
			streamers = append(streamers, beep.Silence(n))
		}
	}
	return beep.Seq(streamers...)
}

// WriteWAV renders p as a 16-bit mono WAV.
func WriteWAV(w io.WriteSeeker, p catalog.Pattern, wpm int, toneHz float64) error {
	if len(p) == 0 {
		return fmt.Errorf("empty pattern")
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(SampleRate),
		NumChannels: 1,
		Precision:   2,
	}
	if err := wav.Encode(w, Render(p, wpm, toneHz), format); err != nil {
		return fmt.Errorf("failed to encode wav: %w", err)
	}
	return nil
}

type toneStreamer struct {
	samples   int
	position  int
	frequency float64
}

func (t *toneStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if t.position >= t.samples {
		return 0, false
	}
	fadeLen := t.samples / fadeFrac
	if fadeLen < fadeMin {
		fadeLen = fadeMin
	}
	for i := range samples {
		if t.position >= t.samples {
			return i, true
		}
		phase := 2 * math.Pi * t.frequency * float64(t.position) / float64(SampleRate)
		value := math.Sin(phase)

		// Ramp both edges so keying does not click.
		envelope := 1.0
		if t.position < fadeLen {
			envelope = float64(t.position) / float64(fadeLen)
		} else if t.position > t.samples-fadeLen {
			envelope = float64(t.samples-t.position) / float64(fadeLen)
		}

		value *= envelope * volume
		samples[i][0] = value
		samples[i][1] = value
		t.position++
	}
	return len(samples), true
}

func (t *toneStreamer) Err() error {
	return nil
}
