package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/samber/lo"

	"github.com/verte-zerg/morsehero/internal/audio"
	"github.com/verte-zerg/morsehero/internal/catalog"
	"github.com/verte-zerg/morsehero/internal/engine"
)

type createReq struct {
	WPM   int  `json:"wpm" validate:"omitempty,oneof=10 15 20 25 30"`
	Hints bool `json:"hints"`
}

type answerReq struct {
	Round  uint64 `json:"round" validate:"required"`
	Choice string `json:"choice" validate:"required_without=Index,omitempty,max=4"`
	Index  *int   `json:"index" validate:"required_without=Choice,omitempty,min=0,max=3"`
}

type replayReq struct {
	Round uint64 `json:"round" validate:"required"`
}

type settingsReq struct {
	WPM   *int  `json:"wpm" validate:"omitempty,oneof=10 15 20 25 30"`
	Hints *bool `json:"hints"`
}

type optionView struct {
	Char    string `json:"char"`
	Pattern string `json:"pattern,omitempty"`
}

type roundView struct {
	ID       uint64       `json:"id"`
	Options  []optionView `json:"options"`
	Resolved bool         `json:"resolved"`
	Selected string       `json:"selected,omitempty"`
	Revealed *int         `json:"revealed,omitempty"`
	Target   string       `json:"target,omitempty"`
}

type sessionView struct {
	ID    string     `json:"id"`
	State string     `json:"state"`
	Score int        `json:"score"`
	Total int        `json:"total"`
	WPM   int        `json:"wpm"`
	Hints bool       `json:"hints"`
	Trail []string   `json:"trail"`
	Round *roundView `json:"round,omitempty"`
}

type answerRes struct {
	Accepted bool        `json:"accepted"`
	Outcome  string      `json:"outcome,omitempty"`
	Session  sessionView `json:"session"`
}

type chartChar struct {
	Char    string `json:"char"`
	Pattern string `json:"pattern"`
	Glyphs  string `json:"glyphs"`
}

type chartGroup struct {
	Name  string      `json:"name"`
	Chars []chartChar `json:"chars"`
}

// view snapshots the session. Callers hold sess.mu.
func view(sess *session) sessionView {
	snap := sess.engine.Session()
	out := sessionView{
		ID:    sess.id.String(),
		State: sess.engine.State().String(),
		Score: snap.Score,
		Total: snap.TotalAnswered,
		WPM:   snap.WPM,
		Hints: snap.Hints,
		Trail: lo.Map(snap.Trail, func(o engine.Outcome, _ int) string { return o.String() }),
	}
	round, ok := sess.engine.Round()
	if !ok {
		return out
	}
	rv := &roundView{
		ID:       round.ID,
		Resolved: round.Resolved,
		Options: lo.Map(round.Options, func(ch rune, _ int) optionView {
			ov := optionView{Char: string(ch)}
			if snap.Hints {
				ov.Pattern = catalog.Lookup(ch).String()
			}
			return ov
		}),
	}
	if round.Resolved {
		rv.Selected = string(round.Selected)
	}
	if round.Revealed >= 0 {
		idx := round.Revealed
		rv.Revealed = &idx
		rv.Target = string(round.Target)
	}
	out.Round = rv
	return out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any, optional bool) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if optional && errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_json")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid", "detail": err.Error()})
		return false
	}
	return true
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*session, bool) {
	sess, err := s.sessions.get(chi.URLParam(r, "id"), s.now())
	if err != nil {
		writeError(w, http.StatusNotFound, "session_not_found")
		return nil, false
	}
	return sess, true
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	groups := lo.Map(catalog.Groups(), func(g catalog.Group, _ int) chartGroup {
		return chartGroup{
			Name: g.Name,
			Chars: lo.Map(g.Chars, func(ch rune, _ int) chartChar {
				p := catalog.Lookup(ch)
				return chartChar{Char: string(ch), Pattern: p.String(), Glyphs: p.Glyphs()}
			}),
		}
	})
	writeJSON(w, http.StatusOK, groups)
}

// handleChartWAV renders one character at the chart speed. The character is
// URL escaped, so "/" arrives as %2F.
func (s *Server) handleChartWAV(w http.ResponseWriter, r *http.Request) {
	file := chi.URLParam(r, "file")
	name, ok := strings.CutSuffix(file, ".wav")
	if !ok {
		writeError(w, http.StatusNotFound, "not_found")
		return
	}
	name, err := url.PathUnescape(name)
	if err != nil || utf8.RuneCountInString(name) != 1 {
		writeError(w, http.StatusBadRequest, "bad_char")
		return
	}
	ch, _ := utf8.DecodeRuneInString(name)
	if !catalog.Supported(ch) {
		writeError(w, http.StatusNotFound, "unknown_char")
		return
	}
	s.writeWAV(w, catalog.Lookup(ch), engine.DefaultWPM)
}

func (s *Server) writeWAV(w http.ResponseWriter, p catalog.Pattern, wpm int) {
	var buf audio.Buffer
	if err := audio.WriteWAV(&buf, p, wpm, s.cfg.ToneHz); err != nil {
		s.logger.Error().Err(err).Msg("failed to render wav")
		writeError(w, http.StatusInternalServerError, "render_failed")
		return
	}
	w.Header().Set("Content-Type", "audio/wav")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if !s.decode(w, r, &req, true) {
		return
	}
	sess, err := s.newSession(req.WPM, req.Hints)
	switch {
	case errors.Is(err, errSessionLimit):
		writeError(w, http.StatusServiceUnavailable, "too_many_sessions")
		return
	case err != nil:
		s.logger.Error().Err(err).Msg("failed to create session")
		writeError(w, http.StatusInternalServerError, "create_failed")
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	s.logger.Info().Str("session", sess.id.String()).Msg("session created")
	writeJSON(w, http.StatusCreated, view(sess))
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if _, err := sess.engine.Begin(); err != nil {
		switch {
		case errors.Is(err, engine.ErrAudioInit):
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "audio_failed", "session": view(sess)})
		case errors.Is(err, engine.ErrClosed):
			writeError(w, http.StatusGone, "session_closed")
		default:
			writeError(w, http.StatusInternalServerError, "start_failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req answerReq
	if !s.decode(w, r, &req, false) {
		return
	}
	in := engine.PointerInput(req.Round, 0)
	if req.Index != nil {
		in.Index = *req.Index
	} else {
		ch, size := utf8.DecodeRuneInString(req.Choice)
		if size != len(req.Choice) {
			writeError(w, http.StatusBadRequest, "bad_choice")
			return
		}
		in = engine.KeyInput(req.Round, ch)
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	res, accepted := sess.engine.Dispatch(in)
	out := answerRes{Accepted: accepted}
	if accepted {
		out.Outcome = res.Outcome.String()
		sess.schedule(res.Timers)
	}
	out.Session = view(sess)
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req replayReq
	if !s.decode(w, r, &req, false) {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if err := sess.engine.Replay(req.Round); err != nil {
		writeError(w, http.StatusConflict, "no_round")
		return
	}
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	var req settingsReq
	if !s.decode(w, r, &req, false) {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if req.WPM != nil {
		if err := sess.engine.SetWPM(*req.WPM); err != nil {
			writeError(w, http.StatusBadRequest, "unsupported_wpm")
			return
		}
	}
	if req.Hints != nil {
		sess.engine.SetHints(*req.Hints)
	}
	writeJSON(w, http.StatusOK, view(sess))
}

// handleAudio returns the most recent play of the session as WAV.
func (s *Server) handleAudio(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	last, ok := sess.rec.Last()
	if !ok {
		writeError(w, http.StatusNotFound, "nothing_played")
		return
	}
	s.writeWAV(w, last.Pattern, last.WPM)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.stopTimers()
	s.persist(sess)
	sess.engine.Reset()
	writeJSON(w, http.StatusOK, view(sess))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if _, ok := s.sessions.remove(sess.id); !ok {
		writeError(w, http.StatusNotFound, "session_not_found")
		return
	}
	s.finish(sess)
	w.WriteHeader(http.StatusNoContent)
}
