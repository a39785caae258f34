package rules

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// PieceKind is the lowercase FEN letter of a piece type; zero means an empty square.
type PieceKind byte

const (
	NoKind PieceKind = 0
	King   PieceKind = 'k'
	Queen  PieceKind = 'q'
	Rook   PieceKind = 'r'
	Bishop PieceKind = 'b'
	Knight PieceKind = 'n'
	Pawn   PieceKind = 'p'
)

// Value is the conventional material value; kings count zero.
func (k PieceKind) Value() int {
	switch k {
	case Queen:
		return 9
	case Rook:
		return 5
	case Bishop, Knight:
		return 3
	case Pawn:
		return 1
	default:
		return 0
	}
}

func (k PieceKind) Name() string {
	switch k {
	case King:
		return "king"
	case Queen:
		return "queen"
	case Rook:
		return "rook"
	case Bishop:
		return "bishop"
	case Knight:
		return "knight"
	case Pawn:
		return "pawn"
	default:
		return ""
	}
}

type Piece struct {
	Color Color
	Kind  PieceKind
}

func (p Piece) Empty() bool { return p.Kind == NoKind }

// Letter returns the FEN letter, uppercase for white.
func (p Piece) Letter() string {
	if p.Empty() {
		return ""
	}
	s := string(rune(p.Kind))
	if p.Color == White {
		return strings.ToUpper(s)
	}
	return s
}

// Board is indexed [rank][file] from a1 = [0][0].
type Board [8][8]Piece

func (b *Board) At(file, rank int) Piece {
	if file < 0 || file > 7 || rank < 0 || rank > 7 {
		return Piece{}
	}
	return b[rank][file]
}

// Count returns how many pieces of kind the color has.
func (b *Board) Count(c Color, k PieceKind) int {
	n := 0
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if p := b[r][f]; p.Color == c && p.Kind == k {
				n++
			}
		}
	}
	return n
}

// ParseBoard decodes the piece placement of a FEN position.
func ParseBoard(fen string) (*Board, error) {
	opt, err := nchess.FEN(strings.TrimSpace(fen))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	g := nchess.NewGame(opt)
	nb := g.Position().Board()
	var b Board
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			pc := nb.Piece(nchess.NewSquare(nchess.File(f), nchess.Rank(r)))
			if pc == nchess.NoPiece {
				continue
			}
			b[r][f] = Piece{Color: fromColor(pc.Color()), Kind: fromPieceType(pc.Type())}
		}
	}
	return &b, nil
}

func fromPieceType(pt nchess.PieceType) PieceKind {
	switch pt {
	case nchess.King:
		return King
	case nchess.Queen:
		return Queen
	case nchess.Rook:
		return Rook
	case nchess.Bishop:
		return Bishop
	case nchess.Knight:
		return Knight
	case nchess.Pawn:
		return Pawn
	default:
		return NoKind
	}
}

// SquareName formats zero-based coordinates as algebraic ("e4").
func SquareName(file, rank int) string {
	return string([]byte{byte('a' + file), byte('1' + rank)})
}

// ParseSquare is the inverse of SquareName.
func ParseSquare(s string) (file, rank int, err error) {
	sq, err := normalizeSquare(s)
	if err != nil {
		return 0, 0, err
	}
	return int(sq[0] - 'a'), int(sq[1] - '1'), nil
}
