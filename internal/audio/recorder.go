package audio

import (
	"errors"
	"sync"

	"github.com/verte-zerg/morsehero/internal/catalog"
)

// ErrVoiceClosed is returned when playing on a closed voice.
var ErrVoiceClosed = errors.New("voice closed")

// Play is a single recorded playback request.
type Play struct {
	Pattern catalog.Pattern
	WPM     int
	ToneHz  float64
}

// Recorder is a Synth that keeps plays in memory instead of sounding them.
// The HTTP host renders its last play to WAV on request.
type Recorder struct {
	// OpenErr, when set, is returned by Open.
	OpenErr error

	mu     sync.Mutex
	opened int
	closed int
	plays  []Play
}

// Open implements Synth.
func (r *Recorder) Open(toneHz float64) (Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.OpenErr != nil {
		return nil, r.OpenErr
	}
	r.opened++
	return &recorderVoice{rec: r, toneHz: toneHz}, nil
}

// Plays returns every recorded play in order.
func (r *Recorder) Plays() []Play {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Play, len(r.plays))
	copy(out, r.plays)
	return out
}

// Last returns the most recent play.
func (r *Recorder) Last() (Play, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.plays) == 0 {
		return Play{}, false
	}
	return r.plays[len(r.plays)-1], true
}

// Opened returns how many voices were opened.
func (r *Recorder) Opened() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opened
}

// Closed returns how many voices were closed.
func (r *Recorder) Closed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

type recorderVoice struct {
	rec    *Recorder
	toneHz float64
	closed bool
}

func (v *recorderVoice) Play(p catalog.Pattern, wpm int) error {
	v.rec.mu.Lock()
	defer v.rec.mu.Unlock()
	if v.closed {
		return ErrVoiceClosed
	}
	v.rec.plays = append(v.rec.plays, Play{Pattern: p, WPM: wpm, ToneHz: v.toneHz})
	return nil
}

func (v *recorderVoice) Close() error {
	v.rec.mu.Lock()
	defer v.rec.mu.Unlock()
	if v.closed {
		return nil
	}
	v.closed = true
	v.rec.closed++
	return nil
}
