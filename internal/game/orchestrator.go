// Package game runs a single human-versus-computer match: it applies the human's
// moves through the rules engine, detects the end of the game and answers with a
// delayed greedy opponent move.
package game

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/park285/simple-ai-chess/internal/rules"
	"go.uber.org/zap"
)

var (
	ErrGameOver         = errors.New("game is over")
	ErrIllegalMove      = errors.New("illegal move")
	ErrInvalidSquare    = errors.New("invalid square")
	ErrAwaitingOpponent = errors.New("opponent is still thinking")
	ErrClosed           = errors.New("game closed")
)

const DefaultOpponentDelay = 500 * time.Millisecond

// UpdateKind says which operation produced an Update.
type UpdateKind string

const (
	KindRestart      UpdateKind = "restart"
	KindHumanMove    UpdateKind = "human_move"
	KindOpponentMove UpdateKind = "opponent_move"
)

// Snapshot is an immutable copy of the observable game state.
type Snapshot struct {
	GameID   string
	Seq      uint64
	FEN      string
	Turn     rules.Color
	Over     bool
	Outcome  Outcome
	Thinking bool
	LastMove *rules.MoveRecord
	History  []rules.MoveRecord
	Opening  string
}

type Update struct {
	Kind     UpdateKind
	Snapshot Snapshot
}

// Listener receives every committed update in order. It runs outside the
// orchestrator lock but while the notification order is held, so it must not
// call any Orchestrator method synchronously, readers such as Snapshot included.
// Hand the update to another goroutine when it needs to query the game.
type Listener func(Update)

type Options struct {
	// Factory builds the engine for each new game. Defaults to the standard start position.
	Factory rules.Factory
	// Delay before the opponent answers. Zero or negative values use DefaultOpponentDelay.
	Delay time.Duration
	// InstantReply makes the opponent answer without any delay and overrides Delay.
	InstantReply bool
	// AllowMoveWhileThinking lets the human move again before the opponent replied.
	AllowMoveWhileThinking bool
	// Seed for the opponent's choices; zero seeds from the clock.
	Seed         int64
	NameOpenings bool
	Listener     Listener
	Logger       *zap.Logger
}

type timer interface{ Stop() bool }

type afterFunc func(d time.Duration, f func()) timer

func realAfterFunc(d time.Duration, f func()) timer { return time.AfterFunc(d, f) }

// state is one match. It is replaced wholesale on restart and never reused.
type state struct {
	id       string
	engine   rules.Engine
	position string
	over     bool
	outcome  Outcome
	last     *rules.MoveRecord
	pending  []timer
}

func (s *state) stopTimers() {
	for _, t := range s.pending {
		t.Stop()
	}
	s.pending = nil
}

type Orchestrator struct {
	mu     sync.Mutex
	cur    *state
	seq    uint64
	closed bool

	// notifyMu is taken before mu is released so listeners observe commit order.
	notifyMu sync.Mutex

	factory      rules.Factory
	delay        time.Duration
	block        bool
	nameOpenings bool
	listener     Listener
	logger       *zap.Logger
	rng          *lockedRand
	after        afterFunc
}

// New starts the first game.
func New(opts Options) (*Orchestrator, error) {
	o := &Orchestrator{
		factory:      opts.Factory,
		delay:        opts.Delay,
		block:        !opts.AllowMoveWhileThinking,
		nameOpenings: opts.NameOpenings,
		listener:     opts.Listener,
		logger:       opts.Logger,
		rng:          newLockedRand(opts.Seed),
		after:        realAfterFunc,
	}
	if o.factory == nil {
		o.factory = rules.NewFactory("")
	}
	switch {
	case opts.InstantReply:
		o.delay = 0
	case o.delay <= 0:
		o.delay = DefaultOpponentDelay
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	eng, err := o.factory()
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	o.mu.Lock()
	o.cur = newState(eng)
	o.commitLocked(o.cur, nil)
	o.mu.Unlock()
	return o, nil
}

func newState(eng rules.Engine) *state {
	return &state{id: uuid.NewString(), engine: eng}
}

// SetRandomSeed reseeds the opponent's move choice.
func (o *Orchestrator) SetRandomSeed(seed int64) { o.rng.Seed(seed) }

// SetListener replaces the update listener.
func (o *Orchestrator) SetListener(l Listener) {
	o.notifyMu.Lock()
	o.listener = l
	o.notifyMu.Unlock()
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked(o.cur)
}

// PGN returns the current game in PGN.
func (o *Orchestrator) PGN() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cur.engine.PGN()
}

// LegalUCI lists the legal moves of the side to move in coordinate form. It is empty
// once the game is over.
func (o *Orchestrator) LegalUCI() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cur.over {
		return nil
	}
	return o.cur.engine.LegalUCI()
}

// AttemptMove applies a human move from one square to another. Pawns reaching the
// last rank become queens. A rejected move leaves the state untouched.
func (o *Orchestrator) AttemptMove(from, to string) (Snapshot, error) {
	o.mu.Lock()
	st := o.cur
	if o.closed {
		snap := o.snapshotLocked(st)
		o.mu.Unlock()
		return snap, ErrClosed
	}
	if st.over {
		snap := o.snapshotLocked(st)
		o.mu.Unlock()
		return snap, ErrGameOver
	}
	if o.block && len(st.pending) > 0 {
		snap := o.snapshotLocked(st)
		o.mu.Unlock()
		return snap, ErrAwaitingOpponent
	}

	rec, err := st.engine.Move(from, to, rules.PromoteQueen)
	if err != nil {
		snap := o.snapshotLocked(st)
		o.mu.Unlock()
		o.logger.Debug("game_move_rejected",
			zap.String("game_id", st.id),
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err),
		)
		return snap, translateRulesErr(err)
	}

	o.commitLocked(st, &rec)
	if !st.over {
		o.scheduleOpponentLocked(st)
	}
	o.logger.Info("game_move",
		zap.String("game_id", st.id),
		zap.String("by", "human"),
		zap.String("san", rec.SAN),
		zap.String("fen", st.position),
	)
	return o.publishAndUnlock(KindHumanMove, st), nil
}

// Restart discards the current game, cancelling a pending opponent move, and starts
// a fresh one.
func (o *Orchestrator) Restart() (Snapshot, error) {
	eng, err := o.factory()
	if err != nil {
		return o.Snapshot(), fmt.Errorf("create engine: %w", err)
	}

	o.mu.Lock()
	if o.closed {
		snap := o.snapshotLocked(o.cur)
		o.mu.Unlock()
		return snap, ErrClosed
	}
	prev := o.cur
	prev.stopTimers()
	st := newState(eng)
	o.cur = st
	o.commitLocked(st, nil)
	o.logger.Info("game_restart",
		zap.String("previous_game_id", prev.id),
		zap.String("game_id", st.id),
	)
	return o.publishAndUnlock(KindRestart, st), nil
}

// Close cancels pending timers. Further moves and restarts fail with ErrClosed.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.cur.stopTimers()
	o.mu.Unlock()
}

func (o *Orchestrator) scheduleOpponentLocked(st *state) {
	// slot is read under mu, after the assignment below has completed.
	slot := new(timer)
	*slot = o.after(o.delay, func() { o.makeOpponentMove(st, slot) })
	st.pending = append(st.pending, *slot)
}

// makeOpponentMove is the timer callback. It is a no-op against a discarded state.
func (o *Orchestrator) makeOpponentMove(st *state, self *timer) {
	o.mu.Lock()
	st.pending = removeTimer(st.pending, *self)
	if o.closed || o.cur != st || st.over {
		o.mu.Unlock()
		return
	}

	moves := st.engine.LegalMoves()
	if len(moves) == 0 {
		o.mu.Unlock()
		o.logger.Warn("game_opponent_no_moves", zap.String("game_id", st.id))
		return
	}
	san := pickGreedy(moves, o.rng.Intn)
	rec, err := st.engine.MoveSAN(san)
	if err != nil {
		o.mu.Unlock()
		o.logger.Error("game_opponent_move_failed",
			zap.String("game_id", st.id),
			zap.String("san", san),
			zap.Error(err),
		)
		return
	}

	o.commitLocked(st, &rec)
	o.logger.Info("game_move",
		zap.String("game_id", st.id),
		zap.String("by", "opponent"),
		zap.String("san", rec.SAN),
		zap.Int("candidates", len(moves)),
	)
	o.publishAndUnlock(KindOpponentMove, st)
}

// commitLocked recomputes every derived field of st after a mutation.
func (o *Orchestrator) commitLocked(st *state, rec *rules.MoveRecord) {
	st.position = st.engine.FEN()
	if rec != nil {
		r := *rec
		st.last = &r
	}
	if !st.over {
		if out := Evaluate(st.engine.Status(), st.engine.Turn()); out != None {
			st.over = true
			st.outcome = out
			st.stopTimers()
			o.logger.Info("game_over",
				zap.String("game_id", st.id),
				zap.String("outcome", out.String()),
			)
		}
	}
	o.seq++
}

// publishAndUnlock releases mu and delivers the snapshot of st to the listener.
func (o *Orchestrator) publishAndUnlock(kind UpdateKind, st *state) Snapshot {
	snap := o.snapshotLocked(st)
	o.notifyMu.Lock()
	o.mu.Unlock()
	defer o.notifyMu.Unlock()
	if o.listener != nil {
		o.listener(Update{Kind: kind, Snapshot: snap})
	}
	return snap
}

func (o *Orchestrator) snapshotLocked(st *state) Snapshot {
	snap := Snapshot{
		GameID:   st.id,
		Seq:      o.seq,
		FEN:      st.position,
		Turn:     st.engine.Turn(),
		Over:     st.over,
		Outcome:  st.outcome,
		Thinking: len(st.pending) > 0,
		History:  st.engine.History(),
	}
	if st.last != nil {
		r := *st.last
		snap.LastMove = &r
	}
	if o.nameOpenings {
		if namer, ok := st.engine.(rules.OpeningNamer); ok {
			if code, title := namer.Opening(); code != "" {
				snap.Opening = strings.TrimSpace(code + " " + title)
			}
		}
	}
	return snap
}

func removeTimer(list []timer, t timer) []timer {
	for i, v := range list {
		if v == t {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

func translateRulesErr(err error) error {
	switch {
	case errors.Is(err, rules.ErrInvalidSquare):
		return fmt.Errorf("%w: %v", ErrInvalidSquare, err)
	case errors.Is(err, rules.ErrGameOver):
		return ErrGameOver
	default:
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
}
