// Package termboard prints a board to a terminal with colored squares.
package termboard

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/park285/simple-ai-chess/internal/rules"
)

var glyphs = map[rules.Piece]string{
	{Color: rules.White, Kind: rules.King}:   "♔",
	{Color: rules.White, Kind: rules.Queen}:  "♕",
	{Color: rules.White, Kind: rules.Rook}:   "♖",
	{Color: rules.White, Kind: rules.Bishop}: "♗",
	{Color: rules.White, Kind: rules.Knight}: "♘",
	{Color: rules.White, Kind: rules.Pawn}:   "♙",
	{Color: rules.Black, Kind: rules.King}:   "♚",
	{Color: rules.Black, Kind: rules.Queen}:  "♛",
	{Color: rules.Black, Kind: rules.Rook}:   "♜",
	{Color: rules.Black, Kind: rules.Bishop}: "♝",
	{Color: rules.Black, Kind: rules.Knight}: "♞",
	{Color: rules.Black, Kind: rules.Pawn}:   "♟",
}

type Options struct {
	// Orientation "black" puts rank 1 at the top.
	Orientation string
	// Unicode draws chess glyphs instead of FEN letters.
	Unicode bool
	// ForceColor emits escape codes even when the output is not a terminal.
	ForceColor bool
}

type Printer struct {
	flipped bool
	unicode bool

	light, dark, highlight *color.Color
}

func New(opts Options) *Printer {
	p := &Printer{
		flipped:   strings.EqualFold(opts.Orientation, "black"),
		unicode:   opts.Unicode,
		light:     color.New(color.BgHiYellow, color.FgBlack),
		dark:      color.New(color.BgYellow, color.FgBlack),
		highlight: color.New(color.BgHiCyan, color.FgBlack),
	}
	if opts.ForceColor {
		for _, c := range []*color.Color{p.light, p.dark, p.highlight} {
			c.EnableColor()
		}
	}
	return p
}

// Fprint writes the board with rank and file labels. from and to mark the last
// move and may be empty.
func (p *Printer) Fprint(w io.Writer, b *rules.Board, from, to string) error {
	marked := map[string]bool{strings.ToLower(from): from != "", strings.ToLower(to): to != ""}

	var sb strings.Builder
	for row := 0; row < 8; row++ {
		rank := 7 - row
		if p.flipped {
			rank = row
		}
		fmt.Fprintf(&sb, "%d ", rank+1)
		for col := 0; col < 8; col++ {
			file := col
			if p.flipped {
				file = 7 - col
			}
			cell := " " + p.symbol(b.At(file, rank)) + " "
			sb.WriteString(p.squareColor(file, rank, marked).Sprint(cell))
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  ")
	for col := 0; col < 8; col++ {
		file := col
		if p.flipped {
			file = 7 - col
		}
		fmt.Fprintf(&sb, " %c ", 'a'+file)
	}
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())
	return err
}

func (p *Printer) String(b *rules.Board, from, to string) string {
	var sb strings.Builder
	_ = p.Fprint(&sb, b, from, to)
	return sb.String()
}

func (p *Printer) symbol(pc rules.Piece) string {
	if pc.Empty() {
		return "·"
	}
	if p.unicode {
		return glyphs[pc]
	}
	return pc.Letter()
}

func (p *Printer) squareColor(file, rank int, marked map[string]bool) *color.Color {
	if marked[rules.SquareName(file, rank)] {
		return p.highlight
	}
	if (file+rank)%2 == 0 {
		return p.dark
	}
	return p.light
}
