//go:build linux && !cgo

package audio

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/verte-zerg/morsehero/internal/catalog"
)

// Available reports whether this build drives a real audio device.
const Available = false

// Speaker falls back to the terminal bell when built without cgo.
type Speaker struct {
	out io.Writer
}

// NewSpeaker returns the bell-backed Synth.
func NewSpeaker() *Speaker {
	return &Speaker{out: os.Stdout}
}

// Open implements Synth.
func (s *Speaker) Open(_ float64) (Voice, error) {
	return &bellVoice{out: s.out}, nil
}

type bellVoice struct {
	mu     sync.Mutex
	out    io.Writer
	cancel context.CancelFunc
	closed bool
}

func (v *bellVoice) Play(p catalog.Pattern, wpm int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return ErrVoiceClosed
	}
	if v.cancel != nil {
		v.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go v.key(ctx, Keying(p, wpm))
	return nil
}

func (v *bellVoice) key(ctx context.Context, segments []Segment) {
	for _, s := range segments {
		if s.Tone {
			v.mu.Lock()
			_, _ = io.WriteString(v.out, "\a")
			v.mu.Unlock()
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.Duration):
		}
	}
}

func (v *bellVoice) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.closed = true
	return nil
}
