package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
)

func mustBoard(t *testing.T, fen string) *rules.Board {
	t.Helper()
	b, err := rules.ParseBoard(fen)
	if err != nil {
		t.Fatalf("ParseBoard: %v", err)
	}
	return b
}

func decode(t *testing.T, raw []byte) image.Image {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	return img
}

func luminance(c color.Color) uint32 {
	r, g, b, _ := c.RGBA()
	return (r*299 + g*587 + b*114) / 1000 >> 8
}

func TestRenderStartPosition(t *testing.T) {
	r := NewRenderer()
	raw, err := r.RenderPNG(context.Background(), mustBoard(t, rules.StartFEN), Options{
		Header:   "Chess Game - Your Move",
		Turn:     "White to move",
		Material: chessdto.MaterialScore{White: 39, Black: 39},
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, raw)
	_, canvas := layout(DefaultSquareSize, OrientationWhite)
	if img.Bounds() != canvas {
		t.Fatalf("bounds = %v, want %v", img.Bounds(), canvas)
	}
}

func TestOrientationFlipsBoard(t *testing.T) {
	r := NewRenderer()
	board := mustBoard(t, rules.StartFEN)

	sample := func(orientation string) color.Color {
		raw, err := r.RenderPNG(context.Background(), board, Options{Orientation: orientation})
		if err != nil {
			t.Fatalf("RenderPNG(%s): %v", orientation, err)
		}
		geo, _ := layout(DefaultSquareSize, orientation)
		// the rook body sits just below the middle of the top-left square
		top := image.Rect(geo.origin.X, geo.origin.Y, geo.origin.X+geo.square, geo.origin.Y+geo.square)
		return decode(t, raw).At(top.Min.X+geo.square/2, top.Min.Y+geo.square*8/15)
	}

	if l := luminance(sample(OrientationWhite)); l > 100 {
		t.Fatalf("white orientation should show the black rook on a8 top-left, luminance %d", l)
	}
	if l := luminance(sample(OrientationBlack)); l < 200 {
		t.Fatalf("black orientation should show the white rook on h1 top-left, luminance %d", l)
	}
}

func TestLastMoveHighlight(t *testing.T) {
	r := NewRenderer()
	board := mustBoard(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	raw, err := r.RenderPNG(context.Background(), board, Options{LastFrom: "e2", LastTo: "e4"})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}
	img := decode(t, raw)
	geo, _ := layout(DefaultSquareSize, OrientationWhite)
	e2 := geo.rect(4, 1)
	got := color.RGBAModel.Convert(img.At(e2.Min.X+1, e2.Min.Y+1)).(color.RGBA)
	if got == lightSquare {
		t.Fatalf("e2 should be highlighted")
	}
	d2 := geo.rect(3, 1)
	if plain := color.RGBAModel.Convert(img.At(d2.Min.X+1, d2.Min.Y+1)).(color.RGBA); plain != darkSquare {
		t.Fatalf("d2 should be untouched, got %v", plain)
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	r := NewRenderer()
	if _, err := r.RenderPNG(context.Background(), nil, Options{}); err == nil {
		t.Fatalf("nil board should fail")
	}
	board := mustBoard(t, rules.StartFEN)
	if _, err := r.RenderPNG(context.Background(), board, Options{SquareSize: 4}); err == nil {
		t.Fatalf("tiny squares should fail")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.RenderPNG(ctx, board, Options{}); err == nil {
		t.Fatalf("cancelled context should fail")
	}
}

func TestEveryPieceAssetRasterises(t *testing.T) {
	for _, c := range []rules.Color{rules.White, rules.Black} {
		for _, k := range []rules.PieceKind{rules.King, rules.Queen, rules.Rook, rules.Bishop, rules.Knight, rules.Pawn} {
			img, err := renderPieceImage(rules.Piece{Color: c, Kind: k}, 32)
			if err != nil {
				t.Fatalf("piece %c/%s: %v", rune(k), c, err)
			}
			if img.Bounds().Dx() != 32 {
				t.Fatalf("piece %c/%s has size %v", rune(k), c, img.Bounds())
			}
		}
	}
}

func TestFormatMaterialDiff(t *testing.T) {
	cases := map[chessdto.MaterialScore]string{
		{White: 39, Black: 39}: "=",
		{White: 39, Black: 36}: "+3",
		{White: 30, Black: 39}: "-9",
	}
	for in, want := range cases {
		if got := formatMaterialDiff(in); got != want {
			t.Fatalf("formatMaterialDiff(%+v) = %q, want %q", in, got, want)
		}
	}
}
