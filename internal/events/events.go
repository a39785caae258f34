// Package events publishes game updates to external sinks (Redis pub/sub, HTTP
// webhooks). Publishing is best effort and never blocks a game.
package events

import (
	"context"
	"errors"
	"time"

	"github.com/park285/simple-ai-chess/internal/game"
)

const (
	TypeMove     = "move"
	TypeRestart  = "restart"
	TypeGameOver = "game_over"
)

type Event struct {
	Type      string    `json:"type"`
	SessionID string    `json:"session_id"`
	GameID    string    `json:"game_id"`
	Seq       uint64    `json:"seq"`
	FEN       string    `json:"fen"`
	SAN       string    `json:"san,omitempty"`
	By        string    `json:"by,omitempty"`
	Outcome   string    `json:"outcome,omitempty"`
	Winner    string    `json:"winner,omitempty"`
	At        time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// FromUpdate converts an orchestrator update into events. A move that ends the game
// yields the move followed by a game_over event.
func FromUpdate(sessionID string, u game.Update, at time.Time) []Event {
	snap := u.Snapshot
	base := Event{
		SessionID: sessionID,
		GameID:    snap.GameID,
		Seq:       snap.Seq,
		FEN:       snap.FEN,
		At:        at.UTC(),
	}
	if u.Kind == game.KindRestart {
		e := base
		e.Type = TypeRestart
		return []Event{e}
	}

	move := base
	move.Type = TypeMove
	if snap.LastMove != nil {
		move.SAN = snap.LastMove.SAN
	}
	switch u.Kind {
	case game.KindHumanMove:
		move.By = "human"
	case game.KindOpponentMove:
		move.By = "opponent"
	}
	out := []Event{move}
	if snap.Over {
		over := base
		over.Type = TypeGameOver
		over.Outcome = snap.Outcome.String()
		over.Winner = snap.Outcome.Winner().String()
		out = append(out, over)
	}
	return out
}

type nop struct{}

// Nop discards every event.
func Nop() Publisher { return nop{} }

func (nop) Publish(context.Context, Event) error { return nil }
func (nop) Close() error                         { return nil }

type multi []Publisher

// Multi fans an event out to every publisher and joins their errors.
func Multi(pubs ...Publisher) Publisher {
	out := make(multi, 0, len(pubs))
	for _, p := range pubs {
		if p != nil {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return Nop()
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (m multi) Publish(ctx context.Context, e Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
