package rules

import (
	"fmt"
	"strings"
	"sync"

	nchess "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

type standard struct {
	game    *nchess.Game
	history []MoveRecord
}

// New builds an Engine backed by corentings/chess, optionally from a FEN.
func New(startFEN string) (Engine, error) {
	fen := strings.TrimSpace(startFEN)
	var game *nchess.Game
	if fen == "" {
		game = nchess.NewGame()
	} else {
		opt, err := nchess.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
		}
		game = nchess.NewGame(opt)
	}
	s := &standard{game: game}
	s.claimDraws()
	return s, nil
}

func (s *standard) FEN() string { return s.game.FEN() }

func (s *standard) Turn() Color { return fromColor(s.game.Position().Turn()) }

func (s *standard) LegalMoves() []string {
	if s.game.Outcome() != nchess.NoOutcome {
		return nil
	}
	pos := s.game.Position()
	uci := s.LegalUCI()
	out := make([]string, 0, len(uci))
	for _, text := range uci {
		mv, err := nchess.UCINotation{}.Decode(pos, text)
		if err != nil {
			continue
		}
		out = append(out, nchess.AlgebraicNotation{}.Encode(pos, mv))
	}
	return out
}

func (s *standard) Move(from, to string, promo Promotion) (MoveRecord, error) {
	if s.game.Outcome() != nchess.NoOutcome {
		return MoveRecord{}, ErrGameOver
	}
	f, err := normalizeSquare(from)
	if err != nil {
		return MoveRecord{}, err
	}
	t, err := normalizeSquare(to)
	if err != nil {
		return MoveRecord{}, err
	}

	pos := s.game.Position()
	board := pos.Board()
	piece := board.Piece(toSquare(f))
	if piece == nchess.NoPiece {
		return MoveRecord{}, fmt.Errorf("%w: no piece on %s", ErrIllegalMove, f)
	}
	if piece.Color() != pos.Turn() {
		return MoveRecord{}, fmt.Errorf("%w: %s is not the side to move", ErrIllegalMove, f)
	}

	text := f + t
	// promotion is only meaningful for a pawn landing on the last rank
	if piece.Type() == nchess.Pawn && (t[1] == '8' || t[1] == '1') {
		text += promo.letter()
	}
	return s.apply(text)
}

func (s *standard) MoveSAN(san string) (MoveRecord, error) {
	if s.game.Outcome() != nchess.NoOutcome {
		return MoveRecord{}, ErrGameOver
	}
	want := strings.TrimSpace(san)
	pos := s.game.Position()
	for _, text := range s.LegalUCI() {
		mv, err := nchess.UCINotation{}.Decode(pos, text)
		if err != nil {
			continue
		}
		if (nchess.AlgebraicNotation{}).Encode(pos, mv) == want {
			return s.apply(text)
		}
	}
	return MoveRecord{}, fmt.Errorf("%w: %q", ErrIllegalMove, san)
}

func (s *standard) apply(text string) (MoveRecord, error) {
	if !s.isLegal(text) {
		return MoveRecord{}, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	pos := s.game.Position()
	mv, err := nchess.UCINotation{}.Decode(pos, text)
	if err != nil {
		return MoveRecord{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, text, err)
	}
	san := nchess.AlgebraicNotation{}.Encode(pos, mv)
	mover := fromColor(pos.Turn())
	if err := s.game.Move(mv, nil); err != nil {
		return MoveRecord{}, fmt.Errorf("%w: %s: %v", ErrIllegalMove, text, err)
	}

	rec := MoveRecord{
		From:    text[:2],
		To:      text[2:4],
		SAN:     san,
		UCI:     text,
		Color:   mover,
		Capture: strings.Contains(san, "x"),
	}
	s.history = append(s.history, rec)
	s.claimDraws()
	return rec, nil
}

func (s *standard) LegalUCI() []string {
	if s.game.Outcome() != nchess.NoOutcome {
		return nil
	}
	valid := s.game.ValidMoves()
	out := make([]string, 0, len(valid))
	for _, mv := range valid {
		out = append(out, strings.ToLower(mv.String()))
	}
	return out
}

func (s *standard) isLegal(text string) bool {
	for _, candidate := range s.LegalUCI() {
		if candidate == text {
			return true
		}
	}
	return false
}

// claimDraws ends the game on threefold repetition or the fifty-move rule, which the
// library only offers as claimable draws.
func (s *standard) claimDraws() {
	if s.game.Outcome() != nchess.NoOutcome {
		return
	}
	eligible := map[nchess.Method]bool{}
	for _, m := range s.game.EligibleDraws() {
		eligible[m] = true
	}
	for _, m := range []nchess.Method{nchess.ThreefoldRepetition, nchess.FiftyMoveRule} {
		if eligible[m] {
			if err := s.game.Draw(m); err == nil {
				return
			}
		}
	}
}

func (s *standard) Status() Status {
	var st Status
	if s.game.Outcome() == nchess.NoOutcome {
		return st
	}
	switch s.game.Method() {
	case nchess.Checkmate:
		st.Checkmate = true
		return st
	case nchess.Stalemate:
		st.Stalemate = true
	case nchess.InsufficientMaterial:
		st.InsufficientMaterial = true
	case nchess.ThreefoldRepetition, nchess.FivefoldRepetition:
		st.ThreefoldRepetition = true
	}
	st.Draw = s.game.Outcome() == nchess.Draw
	return st
}

func (s *standard) History() []MoveRecord {
	return append([]MoveRecord(nil), s.history...)
}

func (s *standard) PGN() string { return s.game.String() }

var (
	ecoOnce sync.Once
	ecoBook *opening.BookECO
)

func (s *standard) Opening() (string, string) {
	if len(s.game.Moves()) == 0 {
		return "", ""
	}
	ecoOnce.Do(func() { ecoBook = opening.NewBookECO() })
	if ecoBook == nil {
		return "", ""
	}
	if eco := ecoBook.Find(s.game.Moves()); eco != nil {
		return eco.Code(), eco.Title()
	}
	return "", ""
}

func toSquare(s string) nchess.Square {
	return nchess.NewSquare(nchess.File(s[0]-'a'), nchess.Rank(s[1]-'1'))
}

func fromColor(c nchess.Color) Color {
	switch c {
	case nchess.White:
		return White
	case nchess.Black:
		return Black
	default:
		return NoColor
	}
}
