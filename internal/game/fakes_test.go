package game

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/park285/simple-ai-chess/internal/rules"
)

// manualClock collects scheduled callbacks so tests decide when the opponent moves.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	mu      sync.Mutex
	f       func()
	delay   time.Duration
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *manualClock) after(d time.Duration, f func()) timer {
	t := &manualTimer{f: f, delay: d}
	c.mu.Lock()
	c.timers = append(c.timers, t)
	c.mu.Unlock()
	return t
}

func (c *manualClock) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

// fireAll runs every timer that is neither stopped nor fired.
func (c *manualClock) fireAll() int {
	c.mu.Lock()
	list := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	n := 0
	for _, t := range list {
		t.mu.Lock()
		run := !t.stopped && !t.fired
		t.fired = true
		t.mu.Unlock()
		if run {
			t.f()
			n++
		}
	}
	return n
}

// forceFire runs a callback even if it was stopped, as if it had already been
// dispatched when Stop was called.
func (c *manualClock) forceFire(i int) {
	c.mu.Lock()
	t := c.timers[i]
	c.mu.Unlock()
	t.f()
}

func newTestOrchestrator(opts Options) (*Orchestrator, *manualClock, error) {
	clock := &manualClock{}
	o, err := New(opts)
	if err != nil {
		return nil, nil, err
	}
	o.after = clock.after
	return o, clock, nil
}

// scriptedEngine is a minimal rules.Engine with a fixed move list.
type scriptedEngine struct {
	legal   []string
	applied []string
	status  rules.Status
	turn    rules.Color
}

func (e *scriptedEngine) FEN() string {
	return fmt.Sprintf("scripted %d %s", len(e.applied), strings.Join(e.applied, ","))
}
func (e *scriptedEngine) Turn() rules.Color    { return e.turn }
func (e *scriptedEngine) LegalMoves() []string { return append([]string(nil), e.legal...) }
func (e *scriptedEngine) LegalUCI() []string   { return nil }
func (e *scriptedEngine) Status() rules.Status { return e.status }
func (e *scriptedEngine) PGN() string          { return strings.Join(e.applied, " ") }

func (e *scriptedEngine) History() []rules.MoveRecord {
	out := make([]rules.MoveRecord, 0, len(e.applied))
	for _, m := range e.applied {
		out = append(out, rules.MoveRecord{SAN: m})
	}
	return out
}

func (e *scriptedEngine) Move(from, to string, _ rules.Promotion) (rules.MoveRecord, error) {
	san := from + to
	e.applied = append(e.applied, san)
	e.turn = e.turn.Other()
	return rules.MoveRecord{From: from, To: to, SAN: san, UCI: san}, nil
}

func (e *scriptedEngine) MoveSAN(san string) (rules.MoveRecord, error) {
	for _, m := range e.legal {
		if m == san {
			e.applied = append(e.applied, san)
			e.turn = e.turn.Other()
			return rules.MoveRecord{SAN: san, Capture: strings.Contains(san, "x")}, nil
		}
	}
	return rules.MoveRecord{}, rules.ErrIllegalMove
}
