package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher publishes events in order from a single goroutine so slow sinks never
// stall the game that produced them. When the queue is full new events are dropped.
type Dispatcher struct {
	pub     Publisher
	logger  *zap.Logger
	queue   chan Event
	timeout time.Duration

	mu     sync.RWMutex
	closed bool
	done   chan struct{}
}

func NewDispatcher(pub Publisher, size int, logger *zap.Logger) *Dispatcher {
	if pub == nil {
		pub = Nop()
	}
	if size <= 0 {
		size = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &Dispatcher{
		pub:     pub,
		logger:  logger,
		queue:   make(chan Event, size),
		timeout: 5 * time.Second,
		done:    make(chan struct{}),
	}
	go d.loop()
	return d
}

// Enqueue reports whether the event was accepted.
func (d *Dispatcher) Enqueue(e Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- e:
		return true
	default:
		d.logger.Warn("event_dropped",
			zap.String("type", e.Type),
			zap.String("game_id", e.GameID),
		)
		return false
	}
}

func (d *Dispatcher) loop() {
	defer close(d.done)
	for e := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := d.pub.Publish(ctx, e); err != nil {
			d.logger.Warn("event_publish_failed",
				zap.String("type", e.Type),
				zap.String("session_id", e.SessionID),
				zap.String("game_id", e.GameID),
				zap.Error(err),
			)
		}
		cancel()
	}
}

// Close drains queued events, waiting at most until ctx is done, then closes the publisher.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()
	select {
	case <-d.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return d.pub.Close()
}
