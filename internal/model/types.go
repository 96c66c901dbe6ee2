// Package model defines shared data structures.
package model

import "time"

// Config defines game settings resolved from flags and the config file.
type Config struct {
	WPM              int
	Hints            bool
	ToneHz           float64
	RevealDelay      time.Duration
	AdvanceCorrect   time.Duration
	AdvanceIncorrect time.Duration
	FocusWeak        bool
	WeakTop          int
	WeakFactor       float64
	WeakWindow       int
	Wait             bool
}

// StatsConfig defines filters and options for stats output.
type StatsConfig struct {
	Since       *time.Time
	Last        int
	CurveWindow int
}

// SessionStats captures a finished game session.
type SessionStats struct {
	StartedAt  time.Time
	EndedAt    time.Time
	WPM        int
	Hints      bool
	Score      int
	Total      int
	DurationMs int64
}

// CharStats stores per-character stats for a session.
type CharStats struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// CharAggregate aggregates character stats across sessions.
type CharAggregate struct {
	Char         string
	Correct      int
	Incorrect    int
	LatencySumMs int64
	LatencyCount int64
}

// SessionAggregate summarizes a session for reporting.
type SessionAggregate struct {
	SessionID  int64
	EndedAt    time.Time
	WPM        int
	Correct    int
	Incorrect  int
	DurationMs int64
}
