package chesspresenter

import (
	"github.com/park285/simple-ai-chess/internal/game"
	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
)

// ToDTOState maps the parts of a snapshot that need no formatting.
func ToDTOState(s game.Snapshot) chessdto.GameState {
	st := chessdto.GameState{
		GameID:   s.GameID,
		Seq:      s.Seq,
		FEN:      s.FEN,
		Turn:     s.Turn.String(),
		Over:     s.Over,
		Thinking: s.Thinking,
		LastMove: ToDTOLastMove(s.LastMove),
		MovesSAN: make([]string, 0, len(s.History)),
		Opening:  s.Opening,
	}
	if s.Outcome != game.None {
		st.Outcome = s.Outcome.String()
	}
	for _, rec := range s.History {
		st.MovesSAN = append(st.MovesSAN, rec.SAN)
	}
	return st
}

func ToDTOLastMove(rec *rules.MoveRecord) *chessdto.LastMove {
	if rec == nil {
		return nil
	}
	return &chessdto.LastMove{
		From:  rec.From,
		To:    rec.To,
		SAN:   rec.SAN,
		UCI:   rec.UCI,
		Color: rec.Color.String(),
	}
}

func ToDTOHistory(list []rules.MoveRecord) []chessdto.HistoryEntry {
	out := make([]chessdto.HistoryEntry, 0, len(list))
	for i, rec := range list {
		out = append(out, chessdto.HistoryEntry{
			Ply:     i + 1,
			Color:   rec.Color.String(),
			SAN:     rec.SAN,
			UCI:     rec.UCI,
			Capture: rec.Capture,
		})
	}
	return out
}

// capture order in the captured lists, most valuable first
var capturedOrder = []rules.PieceKind{rules.Queen, rules.Rook, rules.Bishop, rules.Knight, rules.Pawn}

var standardCounts = map[rules.PieceKind]int{
	rules.Queen:  1,
	rules.Rook:   2,
	rules.Bishop: 2,
	rules.Knight: 2,
	rules.Pawn:   8,
}

// ComputeMaterial totals the material on the board and lists what each side has
// taken, measured against a standard set.
func ComputeMaterial(fen string) (chessdto.MaterialScore, chessdto.CapturedPieces, error) {
	captured := chessdto.CapturedPieces{White: []string{}, Black: []string{}}
	board, err := rules.ParseBoard(fen)
	if err != nil {
		return chessdto.MaterialScore{}, captured, err
	}

	var score chessdto.MaterialScore
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			p := board.At(f, r)
			switch p.Color {
			case rules.White:
				score.White += p.Kind.Value()
			case rules.Black:
				score.Black += p.Kind.Value()
			}
		}
	}

	for _, kind := range capturedOrder {
		for i := board.Count(rules.Black, kind); i < standardCounts[kind]; i++ {
			captured.White = append(captured.White, kind.Name())
		}
		for i := board.Count(rules.White, kind); i < standardCounts[kind]; i++ {
			captured.Black = append(captured.Black, kind.Name())
		}
	}
	return score, captured, nil
}
