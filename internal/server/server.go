// Package server exposes browser sessions over HTTP: a page, a small JSON API, a PNG
// board and a WebSocket that pushes every state change.
package server

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/park285/simple-ai-chess/internal/adapter/chesspresenter"
	"github.com/park285/simple-ai-chess/internal/render"
	"github.com/park285/simple-ai-chess/internal/session"
	"go.uber.org/zap"
)

const CookieName = "chess_session"

type Config struct {
	Registry  *session.Registry
	Presenter *chesspresenter.Presenter
	Renderer  render.Renderer
	Logger    *zap.Logger
	// CookieTTL sets the cookie Max-Age; zero makes it a browser-session cookie.
	CookieTTL time.Duration
	// PingInterval for WebSocket keepalive. Defaults to 30s.
	PingInterval time.Duration
}

type Server struct {
	reg      *session.Registry
	pres     *chesspresenter.Presenter
	renderer render.Renderer
	logger   *zap.Logger
	page     *pageRenderer

	cookieTTL    time.Duration
	pingInterval time.Duration
	mux          *http.ServeMux
}

func New(cfg Config) (*Server, error) {
	if cfg.Registry == nil || cfg.Presenter == nil {
		return nil, errors.New("server: registry and presenter are required")
	}
	s := &Server{
		reg:          cfg.Registry,
		pres:         cfg.Presenter,
		renderer:     cfg.Renderer,
		logger:       cfg.Logger,
		cookieTTL:    cfg.CookieTTL,
		pingInterval: cfg.PingInterval,
		mux:          http.NewServeMux(),
	}
	if s.renderer == nil {
		s.renderer = render.NewRenderer()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.pingInterval <= 0 {
		s.pingInterval = 30 * time.Second
	}
	page, err := newPageRenderer(cfg.Presenter.Formatter())
	if err != nil {
		return nil, err
	}
	s.page = page
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/state", s.handleState)
	s.mux.HandleFunc("POST /api/move", s.handleMove)
	s.mux.HandleFunc("POST /api/restart", s.handleRestart)
	s.mux.HandleFunc("GET /api/board.png", s.handleBoard)
	s.mux.HandleFunc("GET /api/pgn", s.handlePGN)
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

// Handler returns the routed handler wrapped with request logging.
func (s *Server) Handler() http.Handler {
	return s.withLogging(s.mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack is needed by the WebSocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("http_request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}
