package game

import "github.com/park285/simple-ai-chess/internal/rules"

// Outcome is the terminal result of a game. None means the game is still running.
type Outcome int

const (
	None Outcome = iota
	CheckmateWhite
	CheckmateBlack
	StalemateDraw
	InsufficientMaterialDraw
	RepetitionDraw
	FiftyMoveDraw
)

func (o Outcome) String() string {
	switch o {
	case CheckmateWhite:
		return "checkmate_white"
	case CheckmateBlack:
		return "checkmate_black"
	case StalemateDraw:
		return "stalemate"
	case InsufficientMaterialDraw:
		return "insufficient_material"
	case RepetitionDraw:
		return "threefold_repetition"
	case FiftyMoveDraw:
		return "fifty_move_rule"
	default:
		return "none"
	}
}

// Winner returns the winning color, or NoColor for draws and running games.
func (o Outcome) Winner() rules.Color {
	switch o {
	case CheckmateWhite:
		return rules.White
	case CheckmateBlack:
		return rules.Black
	default:
		return rules.NoColor
	}
}

func (o Outcome) IsDraw() bool { return o >= StalemateDraw && o <= FiftyMoveDraw }

// Evaluate maps an engine status to an Outcome. The first matching condition wins:
// checkmate, stalemate, insufficient material, repetition, then any other draw.
// turn is the side to move, so a checkmate is credited to the other color.
func Evaluate(st rules.Status, turn rules.Color) Outcome {
	switch {
	case st.Checkmate:
		if turn == rules.White {
			return CheckmateBlack
		}
		return CheckmateWhite
	case st.Stalemate:
		return StalemateDraw
	case st.InsufficientMaterial:
		return InsufficientMaterialDraw
	case st.ThreefoldRepetition:
		return RepetitionDraw
	case st.Draw:
		return FiftyMoveDraw
	default:
		return None
	}
}
