// Package session keeps one game per browser session and fans its updates out to
// live subscribers and the event dispatcher.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/google/uuid"
	"github.com/park285/simple-ai-chess/internal/events"
	"github.com/park285/simple-ai-chess/internal/game"
	"go.uber.org/zap"
)

var ErrClosed = errors.New("session registry closed")

const subscriberBuffer = 8

type Config struct {
	// TTL after the last request before a session is swept. Zero disables expiry.
	TTL time.Duration
	// MaxSessions caps live sessions; the least recently seen one is evicted. Zero means no cap.
	MaxSessions int
	// Game is the template for every session's orchestrator. Its Listener is replaced.
	Game       game.Options
	Dispatcher *events.Dispatcher
	Logger     *zap.Logger
}

type Session struct {
	ID        string
	Nickname  string
	CreatedAt time.Time

	game *game.Orchestrator

	mu       sync.Mutex
	lastSeen time.Time
	subs     map[int]chan game.Update
	nextSub  int
	closed   bool
}

func (s *Session) Game() *game.Orchestrator { return s.game }

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	if now.After(s.lastSeen) {
		s.lastSeen = now
	}
	s.mu.Unlock()
}

// Subscribe returns a channel of updates and a func that cancels the subscription.
// A subscriber that falls behind loses older updates, never the newest one.
func (s *Session) Subscribe() (<-chan game.Update, func()) {
	ch := make(chan game.Update, subscriberBuffer)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
			s.mu.Unlock()
		})
	}
}

func (s *Session) broadcast(u game.Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- u:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (s *Session) close() {
	s.game.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

type Registry struct {
	cfg    Config
	logger *zap.Logger
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	closed   bool
}

func NewRegistry(cfg Config) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Get returns a live session and marks it as seen.
func (r *Registry) Get(id string) (*Session, bool) {
	id = strings.TrimSpace(id)
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, false
	}
	s.touch(r.now())
	return s, true
}

// GetOrCreate returns the session for id, or a new one under a fresh ID when id is
// unknown. created reports whether a session was made.
func (r *Registry) GetOrCreate(id string) (s *Session, created bool, err error) {
	if existing, ok := r.Get(id); ok {
		return existing, false, nil
	}

	now := r.now()
	s = &Session{
		ID:        uuid.NewString(),
		Nickname:  petname.Generate(2, "-"),
		CreatedAt: now,
		lastSeen:  now,
		subs:      make(map[int]chan game.Update),
	}
	opts := r.cfg.Game
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	opts.Logger = opts.Logger.With(zap.String("session_id", s.ID))
	opts.Listener = r.listenerFor(s)
	g, err := game.New(opts)
	if err != nil {
		return nil, false, err
	}
	s.game = g

	var evicted *Session
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		g.Close()
		return nil, false, ErrClosed
	}
	if r.cfg.MaxSessions > 0 && len(r.sessions) >= r.cfg.MaxSessions {
		evicted = r.oldestLocked()
		if evicted != nil {
			delete(r.sessions, evicted.ID)
		}
	}
	r.sessions[s.ID] = s
	total := len(r.sessions)
	r.mu.Unlock()

	if evicted != nil {
		evicted.close()
		r.logger.Info("session_evicted", zap.String("session_id", evicted.ID), zap.String("reason", "capacity"))
	}
	r.logger.Info("session_created",
		zap.String("session_id", s.ID),
		zap.String("nickname", s.Nickname),
		zap.Int("sessions", total),
	)
	return s, true, nil
}

func (r *Registry) listenerFor(s *Session) game.Listener {
	d := r.cfg.Dispatcher
	return func(u game.Update) {
		s.broadcast(u)
		if d == nil {
			return
		}
		for _, e := range events.FromUpdate(s.ID, u, r.now()) {
			d.Enqueue(e)
		}
	}
}

func (r *Registry) oldestLocked() *Session {
	var oldest *Session
	var oldestSeen time.Time
	for _, s := range r.sessions {
		seen := s.LastSeen()
		if oldest == nil || seen.Before(oldestSeen) {
			oldest, oldestSeen = s, seen
		}
	}
	return oldest
}

func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.close()
		r.logger.Info("session_removed", zap.String("session_id", id))
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it removed.
func (r *Registry) Sweep(now time.Time) int {
	if r.cfg.TTL <= 0 {
		return 0
	}
	var expired []*Session
	r.mu.Lock()
	for id, s := range r.sessions {
		if now.Sub(s.LastSeen()) > r.cfg.TTL {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()
	for _, s := range expired {
		s.close()
		r.logger.Info("session_evicted", zap.String("session_id", s.ID), zap.String("reason", "ttl"))
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(r.now()); n > 0 {
				r.logger.Debug("session_sweep", zap.Int("removed", n))
			}
		}
	}
}

// Close ends every session. The registry rejects new sessions afterwards.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	all := make([]*Session, 0, len(r.sessions))
	for id, s := range r.sessions {
		all = append(all, s)
		delete(r.sessions, id)
	}
	r.mu.Unlock()
	for _, s := range all {
		s.close()
	}
}
