package httpapi

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/stats"
)

var (
	errSessionLimit = errors.New("too many open sessions")
	errNoSession    = errors.New("session not found")
)

// session is one browser game. mu guards every field below it.
type session struct {
	id  uuid.UUID
	rec *audio.Recorder
	// seen is the unix nano time of the last request that looked it up.
	seen atomic.Int64

	mu     sync.Mutex
	engine *engine.Engine
	timers []*time.Timer
	closed bool
}

// schedule arms the engine timers, replacing any from the previous round.
// Callers hold s.mu.
func (s *session) schedule(timers []engine.Timer) {
	s.stopTimers()
	for _, t := range timers {
		t := t
		s.timers = append(s.timers, time.AfterFunc(t.Delay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if s.closed {
				return
			}
			s.engine.Fire(t)
		}))
	}
}

// stopTimers cancels pending timers. Callers hold s.mu.
func (s *session) stopTimers() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.timers = nil
}

type registry struct {
	mu       sync.RWMutex
	max      int
	sessions map[uuid.UUID]*session
}

func newRegistry(max int) *registry {
	return &registry{max: max, sessions: map[uuid.UUID]*session{}}
}

func (r *registry) add(s *session, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.max > 0 && len(r.sessions) >= r.max {
		return errSessionLimit
	}
	s.seen.Store(now.UnixNano())
	r.sessions[s.id] = s
	return nil
}

func (r *registry) get(id string, now time.Time) (*session, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, errNoSession
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[parsed]
	if !ok {
		return nil, errNoSession
	}
	s.seen.Store(now.UnixNano())
	return s, nil
}

// expire removes and returns sessions not seen since cutoff.
func (r *registry) expire(cutoff time.Time) []*session {
	r.mu.Lock()
	defer r.mu.Unlock()
	idle := lo.Filter(lo.Values(r.sessions), func(s *session, _ int) bool {
		return s.seen.Load() < cutoff.UnixNano()
	})
	for _, s := range idle {
		delete(r.sessions, s.id)
	}
	return idle
}

func (r *registry) remove(id uuid.UUID) (*session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	return s, ok
}

func (r *registry) drain() []*session {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := lo.Values(r.sessions)
	r.sessions = map[uuid.UUID]*session{}
	return out
}

func (r *registry) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (s *Server) newSession(wpm int, hints bool) (*session, error) {
	rec := s.cfg.Synth()
	opts := []engine.Option{
		engine.WithPolicy(s.cfg.Policy),
		engine.WithToneHz(s.cfg.ToneHz),
		engine.WithHints(hints),
		engine.WithLogger(s.logger),
	}
	if wpm != 0 {
		opts = append(opts, engine.WithWPM(wpm))
	}
	eng, err := engine.New(rec, append(opts, s.cfg.EngineOptions...)...)
	if err != nil {
		return nil, err
	}
	sess := &session{id: uuid.New(), rec: rec, engine: eng}
	if err := s.sessions.add(sess, s.now()); err != nil {
		return nil, err
	}
	return sess, nil
}

// persist stores the answered rounds. Callers hold sess.mu.
func (s *Server) persist(sess *session) {
	if s.cfg.History == nil {
		return
	}
	snapshot := sess.engine.Session()
	if snapshot.TotalAnswered == 0 {
		return
	}
	row, chars := stats.FromSession(snapshot, sess.engine.Answers(), s.now())
	if _, err := s.cfg.History.InsertSession(context.Background(), row, chars); err != nil {
		s.logger.Error().Err(err).Str("session", sess.id.String()).Msg("failed to save session")
	}
}

// reapIdle finishes sessions idle for longer than IdleTTL.
func (s *Server) reapIdle() int {
	idle := s.sessions.expire(s.now().Add(-s.cfg.IdleTTL))
	for _, sess := range idle {
		s.finish(sess)
	}
	if len(idle) > 0 {
		s.logger.Info().Int("count", len(idle)).Msg("reaped idle sessions")
	}
	return len(idle)
}

func (s *Server) reapLoop(ctx context.Context) {
	interval := s.cfg.IdleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.reapIdle()
		}
	}
}

// finish stops the session for good.
func (s *Server) finish(sess *session) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.closed {
		return
	}
	sess.stopTimers()
	s.persist(sess)
	sess.closed = true
	if err := sess.engine.Close(); err != nil {
		s.logger.Warn().Err(err).Str("session", sess.id.String()).Msg("failed to close engine")
	}
}
