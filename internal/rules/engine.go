// Package rules adapts the chess rules library to the small capability set the
// game orchestrator relies on: apply a move, list legal moves as SAN, report the
// side to move and the terminal status, and serialize the position.
package rules

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidSquare = errors.New("invalid square")
	ErrIllegalMove   = errors.New("illegal move")
	ErrGameOver      = errors.New("game already finished")
	ErrInvalidFEN    = errors.New("invalid FEN")
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type Color int8

const (
	NoColor Color = iota
	White
	Black
)

func (c Color) String() string {
	switch c {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return ""
	}
}

// Other returns the opposing color.
func (c Color) Other() Color {
	switch c {
	case White:
		return Black
	case Black:
		return White
	default:
		return NoColor
	}
}

// Promotion selects the piece a pawn becomes on the last rank. The zero value means queen.
type Promotion byte

const (
	PromoteQueen  Promotion = 'q'
	PromoteRook   Promotion = 'r'
	PromoteBishop Promotion = 'b'
	PromoteKnight Promotion = 'n'
)

func (p Promotion) letter() string {
	switch p {
	case PromoteRook, PromoteBishop, PromoteKnight:
		return string(rune(p))
	default:
		return string(rune(PromoteQueen))
	}
}

// MoveRecord describes an applied move.
type MoveRecord struct {
	From    string
	To      string
	SAN     string
	UCI     string
	Color   Color
	Capture bool
}

// Status mirrors the boolean terminal queries of a rules engine. Draw is true for
// every drawn state, including the specific ones flagged alongside it.
type Status struct {
	Checkmate            bool
	Stalemate            bool
	InsufficientMaterial bool
	ThreefoldRepetition  bool
	Draw                 bool
}

func (s Status) Over() bool { return s.Checkmate || s.Draw }

// Engine is a stateful, single-game rules engine. Implementations are not safe for
// concurrent use; the orchestrator serializes access.
type Engine interface {
	FEN() string
	Turn() Color
	LegalMoves() []string
	// LegalUCI lists the same moves in coordinate form ("e2e4", "a7a8q").
	LegalUCI() []string
	Move(from, to string, promo Promotion) (MoveRecord, error)
	MoveSAN(san string) (MoveRecord, error)
	Status() Status
	History() []MoveRecord
	PGN() string
}

// OpeningNamer is implemented by engines that can name the opening played so far.
type OpeningNamer interface {
	Opening() (code, title string)
}

// Factory builds a fresh engine for a new game.
type Factory func() (Engine, error)

// NewFactory returns a Factory starting every game from startFEN (standard when empty).
func NewFactory(startFEN string) Factory {
	fen := strings.TrimSpace(startFEN)
	return func() (Engine, error) { return New(fen) }
}

func normalizeSquare(raw string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return "", fmt.Errorf("%w: %q", ErrInvalidSquare, raw)
	}
	return s, nil
}
