// Package httpapi exposes the game engine over HTTP for browser front ends.
//
// Every session owns an engine guarded by its own mutex. Feedback timers
// run through time.AfterFunc and take the same mutex before firing, so the
// engine is never touched by two goroutines at once.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/engine"
	"github.com/verte-zerg/morsehero/internal/model"
)

// History receives finished sessions.
type History interface {
	InsertSession(ctx context.Context, stats model.SessionStats, chars []model.CharStats) (int64, error)
}

// Config controls the HTTP host.
type Config struct {
	// Origin is sent as Access-Control-Allow-Origin.
	Origin string
	// MaxSessions caps concurrently open sessions. Zero means unlimited.
	MaxSessions int
	// IdleTTL finishes sessions with no requests for this long. Zero keeps
	// them until deleted.
	IdleTTL time.Duration
	// ToneHz is the pitch of rendered audio.
	ToneHz float64
	// Policy sets the feedback timings for new sessions.
	Policy engine.Policy
	// EngineOptions are applied to every new engine after the defaults.
	EngineOptions []engine.Option
	// Synth builds the recorder a new session plays into.
	Synth func() *audio.Recorder
	// History, when set, stores sessions on reset and delete.
	History History
	// Logger defaults to the global logger.
	Logger *zerolog.Logger
}

// Server bundles the router and the live sessions.
type Server struct {
	r        *chi.Mux
	cfg      Config
	sessions *registry
	validate *validator.Validate
	logger   zerolog.Logger
	now      func() time.Time
}

// New constructs a Server, installs middleware and registers routes.
func New(cfg Config) *Server {
	if cfg.Origin == "" {
		cfg.Origin = "*"
	}
	if cfg.ToneHz <= 0 {
		cfg.ToneHz = audio.DefaultToneHz
	}
	if cfg.Policy == (engine.Policy{}) {
		cfg.Policy = engine.DefaultPolicy()
	}
	if cfg.Synth == nil {
		cfg.Synth = func() *audio.Recorder { return &audio.Recorder{} }
	}
	logger := log.Logger
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	s := &Server{
		r:        chi.NewRouter(),
		cfg:      cfg,
		sessions: newRegistry(cfg.MaxSessions),
		validate: validator.New(),
		logger:   logger.With().Str("component", "httpapi").Logger(),
		now:      time.Now,
	}

	s.r.Use(chimw.RequestID)
	s.r.Use(chimw.RealIP)
	s.r.Use(chimw.Recoverer)
	s.r.Use(chimw.Timeout(10 * time.Second))
	s.r.Use(s.requestLogger)
	s.r.Use(s.cors)

	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	s.r.Get("/chart", s.handleChart)
	s.r.Get("/chart/{file}", s.handleChartWAV)

	s.r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGet)
			r.Delete("/", s.handleDelete)
			r.Post("/start", s.handleStart)
			r.Post("/answer", s.handleAnswer)
			r.Post("/replay", s.handleReplay)
			r.Put("/settings", s.handleSettings)
			r.Get("/audio", s.handleAudio)
			r.Post("/reset", s.handleReset)
		})
	})

	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found", "path": r.URL.Path})
	})
	return s
}

// Router exposes the router, mostly for tests and embedding.
func (s *Server) Router() chi.Router { return s.r }

// Serve runs the HTTP server on addr until ctx is cancelled, then closes
// every open session.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if s.cfg.IdleTTL > 0 {
		reapCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go s.reapLoop(reapCtx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Shutdown()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	s.Shutdown()
	return err
}

// Shutdown closes every session, persisting those with answers.
func (s *Server) Shutdown() {
	for _, sess := range s.sessions.drain() {
		s.finish(sess)
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Str("request_id", chimw.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Origin", s.cfg.Origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}
