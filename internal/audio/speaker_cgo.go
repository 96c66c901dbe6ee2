//go:build (linux && cgo) || windows || darwin

package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"

	"github.com/verte-zerg/morsehero/internal/catalog"
)

// Available reports whether this build drives a real audio device.
const Available = true

var speakerOnce struct {
	sync.Mutex
	initialized bool
}

// Speaker plays through the system audio device.
type Speaker struct{}

// NewSpeaker returns the device-backed Synth.
func NewSpeaker() *Speaker {
	return &Speaker{}
}

// Open initializes the speaker on first use.
func (s *Speaker) Open(toneHz float64) (Voice, error) {
	speakerOnce.Lock()
	defer speakerOnce.Unlock()
	if !speakerOnce.initialized {
		sr := beep.SampleRate(SampleRate)
		if err := speaker.Init(sr, sr.N(time.Second/10)); err != nil {
			return nil, fmt.Errorf("failed to init speaker: %w", err)
		}
		speakerOnce.initialized = true
	}
	return &speakerVoice{toneHz: toneHz}, nil
}

type speakerVoice struct {
	mu     sync.Mutex
	toneHz float64
	closed bool
}

func (v *speakerVoice) Play(p catalog.Pattern, wpm int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrVoiceClosed
	}
	speaker.Clear()
	speaker.Play(Render(p, wpm, v.toneHz))
	return nil
}

func (v *speakerVoice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	speaker.Clear()
	return nil
}
