package engine

import "errors"

var (
	// ErrAudioInit wraps failures opening the audio voice.
	ErrAudioInit = errors.New("audio failed")
	// ErrUnsupportedWPM is returned for speeds outside SupportedWPM.
	ErrUnsupportedWPM = errors.New("unsupported wpm")
	// ErrNoRound is returned when the referenced round is not current.
	ErrNoRound = errors.New("no such round")
	// ErrNotStarted is returned when a round is requested before Begin.
	ErrNotStarted = errors.New("game not started")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
)
