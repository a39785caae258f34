package chesspresenter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/msgcat"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
)

const capturedRecentLimit = 5

// Formatter turns game values into display text through the message catalog. Every
// method has an English fallback so a nil or partial catalog still renders.
type Formatter struct {
	cat *msgcat.Catalog
}

func NewFormatter(cat *msgcat.Catalog) *Formatter {
	return &Formatter{cat: cat}
}

func (f *Formatter) text(key string, data any, fallback string) string {
	if f == nil {
		return fallback
	}
	return f.cat.Text(key, data, fallback)
}

// Label renders a static catalog entry such as "page.title".
func (f *Formatter) Label(key, fallback string) string {
	return f.text(key, nil, fallback)
}

// Message renders any catalog entry with template data.
func (f *Formatter) Message(key string, data any, fallback string) string {
	return f.text(key, data, fallback)
}

func (f *Formatter) Header(s game.Snapshot) string {
	switch {
	case s.Over:
		return f.text("header.game_over", nil, "Chess Game - Game Over")
	case s.Thinking:
		return f.text("header.thinking", nil, "Chess Game - Opponent is thinking...")
	default:
		return f.text("header.your_move", nil, "Chess Game - Your Move")
	}
}

var outcomeFallback = map[game.Outcome]string{
	game.CheckmateWhite:           "White wins",
	game.CheckmateBlack:           "Black wins",
	game.StalemateDraw:            "Draw (Stalemate)",
	game.InsufficientMaterialDraw: "Draw (Insufficient Material)",
	game.RepetitionDraw:           "Draw (Threefold Repetition)",
	game.FiftyMoveDraw:            "Draw (50-move rule)",
}

// Outcome is empty while the game runs.
func (f *Formatter) Outcome(o game.Outcome) string {
	if o == game.None {
		return ""
	}
	return f.text("outcome."+o.String(), nil, outcomeFallback[o])
}

func (f *Formatter) Turn(c rules.Color) string {
	switch c {
	case rules.White:
		return f.text("turn.white", nil, "White to move")
	case rules.Black:
		return f.text("turn.black", nil, "Black to move")
	default:
		return ""
	}
}

func (f *Formatter) LastMove(rec *chessdto.LastMove) string {
	if rec == nil || rec.SAN == "" {
		return ""
	}
	by := "White"
	if rec.Color == rules.Black.String() {
		by = "Black"
	}
	data := map[string]string{"SAN": rec.SAN, "By": by}
	return f.text("move.last", data, fmt.Sprintf("Last move: %s (%s)", rec.SAN, by))
}

func (f *Formatter) Opening(name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}
	return f.text("move.opening", map[string]string{"Name": name}, "Opening: "+name)
}

func (f *Formatter) Material(score chessdto.MaterialScore) string {
	fallback := fmt.Sprintf("Material White %d / Black %d", score.White, score.Black)
	return f.text("material.summary", score, fallback)
}

// Captured shows the most recent captures per side as piece letters.
func (f *Formatter) Captured(c chessdto.CapturedPieces) string {
	white := capturedSequence(c.White)
	black := capturedSequence(c.Black)
	var parts []string
	if white != "" {
		parts = append(parts, "White +"+white)
	}
	if black != "" {
		parts = append(parts, "Black +"+black)
	}
	return strings.Join(parts, " / ")
}

func capturedSequence(names []string) string {
	if len(names) > capturedRecentLimit {
		names = names[:capturedRecentLimit]
	}
	tokens := make([]string, 0, len(names))
	for _, n := range names {
		if s := capturedSymbol(n); s != "" {
			tokens = append(tokens, s)
		}
	}
	return strings.Join(tokens, "")
}

func capturedSymbol(piece string) string {
	switch strings.ToLower(strings.TrimSpace(piece)) {
	case "queen", "q":
		return "Q"
	case "rook", "r":
		return "R"
	case "bishop", "b":
		return "B"
	case "knight", "n":
		return "N"
	case "pawn", "p":
		return "P"
	default:
		return ""
	}
}

// Error converts an orchestrator error into the wire error. from and to are the
// squares of the rejected move, if any.
func (f *Formatter) Error(err error, from, to string) chessdto.DomainError {
	switch {
	case err == nil:
		return chessdto.DomainError{}
	case errors.Is(err, game.ErrGameOver):
		return chessdto.DomainError{
			Code:    chessdto.CodeGameOver,
			Message: f.text("error.game_over", nil, "The game is over. Restart to play again."),
		}
	case errors.Is(err, game.ErrAwaitingOpponent):
		return chessdto.DomainError{
			Code:      chessdto.CodeAwaitingOpponent,
			Message:   f.text("error.awaiting_opponent", nil, "Wait for the opponent to move."),
			Retryable: true,
		}
	case errors.Is(err, game.ErrInvalidSquare):
		bad := from
		if _, _, perr := rules.ParseSquare(from); perr == nil {
			bad = to
		}
		return chessdto.DomainError{
			Code:    chessdto.CodeInvalidSquare,
			Message: f.text("error.invalid_square", map[string]string{"Square": bad}, "Not a board square: "+bad),
		}
	case errors.Is(err, game.ErrIllegalMove):
		data := map[string]string{"From": from, "To": to}
		return chessdto.DomainError{
			Code:    chessdto.CodeIllegalMove,
			Message: f.text("error.illegal_move", data, fmt.Sprintf("Illegal move: %s to %s", from, to)),
		}
	case errors.Is(err, game.ErrClosed):
		return chessdto.DomainError{
			Code:    chessdto.CodeClosed,
			Message: f.text("error.closed", nil, "This game has ended. Reload the page."),
		}
	default:
		return chessdto.DomainError{
			Code:      chessdto.CodeInternal,
			Message:   f.text("error.internal", nil, "Something went wrong. Try again."),
			Retryable: true,
		}
	}
}

// BadRequest is the error for malformed client input.
func (f *Formatter) BadRequest() chessdto.DomainError {
	return chessdto.DomainError{
		Code:    chessdto.CodeBadRequest,
		Message: f.text("error.bad_request", nil, "Malformed request."),
	}
}
