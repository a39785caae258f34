package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/render"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/internal/session"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 10

// sessionFor resolves the caller's session from the cookie, creating one if needed.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id := ""
	if c, err := r.Cookie(CookieName); err == nil {
		id = c.Value
	}
	sess, created, err := s.reg.GetOrCreate(id)
	if err != nil {
		s.logger.Error("session_create_failed", zap.Error(err))
		s.writeError(w, http.StatusServiceUnavailable, s.pres.Formatter().Error(err, "", ""))
		return nil, false
	}
	if created {
		cookie := &http.Cookie{
			Name:     CookieName,
			Value:    sess.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   r.TLS != nil,
		}
		if s.cookieTTL > 0 {
			cookie.MaxAge = int(s.cookieTTL.Seconds())
		}
		http.SetCookie(w, cookie)
	}
	return sess, true
}

func (s *Server) stateOf(sess *session.Session, snap game.Snapshot) chessdto.GameState {
	meta := chesspresenter.SessionMeta{ID: sess.ID, Nickname: sess.Nickname}
	return s.pres.State(meta, snap, sess.Game().LegalUCI())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.reg.Len()})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	st := s.stateOf(sess, sess.Game().Snapshot())
	writeJSON(w, http.StatusOK, chessdto.ServerMessage{Type: chessdto.MsgState, State: &st})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	var req chessdto.MoveRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, s.pres.Formatter().BadRequest())
		return
	}
	snap, err := sess.Game().AttemptMove(req.From, req.To)
	if err != nil {
		de := s.pres.Formatter().Error(err, req.From, req.To)
		st := s.stateOf(sess, snap)
		writeJSON(w, statusFor(de.Code), chessdto.ServerMessage{Type: chessdto.MsgError, State: &st, Error: &de})
		return
	}
	st := s.stateOf(sess, snap)
	writeJSON(w, http.StatusOK, chessdto.ServerMessage{Type: chessdto.MsgState, State: &st})
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	snap, err := sess.Game().Restart()
	if err != nil {
		s.logger.Warn("game_restart_failed", zap.String("session_id", sess.ID), zap.Error(err))
		de := s.pres.Formatter().Error(err, "", "")
		s.writeError(w, statusFor(de.Code), de)
		return
	}
	st := s.stateOf(sess, snap)
	writeJSON(w, http.StatusOK, chessdto.ServerMessage{Type: chessdto.MsgState, State: &st})
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	snap := sess.Game().Snapshot()
	st := s.stateOf(sess, snap)
	board, err := rules.ParseBoard(snap.FEN)
	if err != nil {
		s.logger.Error("board_parse_failed", zap.String("game_id", snap.GameID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, s.pres.Formatter().Error(err, "", ""))
		return
	}

	opts := render.Options{
		Orientation: st.Orientation,
		Header:      st.Header,
		Turn:        s.pres.Formatter().Turn(snap.Turn),
		Material:    st.Material,
	}
	if st.Over {
		opts.Turn = st.OutcomeText
	}
	if st.LastMove != nil {
		opts.LastFrom, opts.LastTo = st.LastMove.From, st.LastMove.To
	}
	q := r.URL.Query()
	if o := strings.ToLower(strings.TrimSpace(q.Get("orientation"))); o == render.OrientationWhite || o == render.OrientationBlack {
		opts.Orientation = o
	}
	if raw := q.Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, s.pres.Formatter().BadRequest())
			return
		}
		opts.SquareSize = n
	}

	png, err := s.renderer.RenderPNG(r.Context(), board, opts)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		s.logger.Warn("board_render_failed", zap.String("game_id", snap.GameID), zap.Error(err))
		s.writeError(w, http.StatusBadRequest, s.pres.Formatter().BadRequest())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

func (s *Server) handlePGN(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	snap := sess.Game().Snapshot()
	writeJSON(w, http.StatusOK, chessdto.PGNResponse{
		GameID:  snap.GameID,
		PGN:     sess.Game().PGN(),
		History: chesspresenter.ToDTOHistory(snap.History),
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFor(w, r)
	if !ok {
		return
	}
	snap := sess.Game().Snapshot()
	st := s.stateOf(sess, snap)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.render(w, st, s.pres.StatusLines(st, snap)); err != nil {
		s.logger.Error("page_render_failed", zap.Error(err))
	}
}

func statusFor(code string) int {
	switch code {
	case chessdto.CodeGameOver, chessdto.CodeAwaitingOpponent:
		return http.StatusConflict
	case chessdto.CodeIllegalMove, chessdto.CodeInvalidSquare:
		return http.StatusUnprocessableEntity
	case chessdto.CodeClosed:
		return http.StatusGone
	case chessdto.CodeBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, de chessdto.DomainError) {
	writeJSON(w, status, chessdto.ServerMessage{Type: chessdto.MsgError, Error: &de})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
