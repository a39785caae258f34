// Package render draws a board position as a PNG with a small status HUD above it.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	imagedraw "image/draw"
	"image/png"
	"strings"

	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/park285/simple-ai-chess/pkg/chessdto"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	OrientationWhite = "white"
	OrientationBlack = "black"

	DefaultSquareSize = 64
	minSquareSize     = 24
	maxSquareSize     = 160
)

// Options controls what is drawn around the pieces.
type Options struct {
	// Orientation puts this side at the bottom. Empty means white.
	Orientation string
	// LastMove squares, e.g. "e2" and "e4". Empty skips the highlight.
	LastFrom, LastTo string
	Header           string
	Turn             string
	Material         chessdto.MaterialScore
	SquareSize       int
}

type Renderer interface {
	RenderPNG(ctx context.Context, board *rules.Board, opts Options) ([]byte, error)
}

type svgBoardRenderer struct {
	face font.Face
}

func NewRenderer() Renderer {
	return &svgBoardRenderer{face: basicfont.Face7x13}
}

var (
	lightSquare             = color.RGBA{233, 207, 163, 255}
	darkSquare              = color.RGBA{187, 136, 96, 255}
	whiteMoveHighlightFill  = color.NRGBA{R: 255, G: 228, B: 120, A: 140}
	blackMoveHighlightArrow = color.NRGBA{R: 148, G: 207, B: 255, A: 170}
	hudPanelColor           = color.NRGBA{R: 28, G: 31, B: 46, A: 250}
	hudTurnPanelColor       = color.NRGBA{R: 32, G: 35, B: 52, A: 245}
	hudShadowColor          = color.NRGBA{0, 0, 0, 50}
	hudTextPrimary          = color.NRGBA{R: 236, G: 239, B: 255, A: 255}
	hudTurnTextColor        = color.NRGBA{R: 204, G: 210, B: 236, A: 255}
	backgroundColor         = color.RGBA{246, 243, 236, 255}
	coordinateTextColor     = color.NRGBA{R: 70, G: 62, B: 52, A: 255}
)

// geometry maps board coordinates to pixels for one orientation.
type geometry struct {
	origin  image.Point
	square  int
	flipped bool
}

func (g geometry) rect(file, rank int) image.Rectangle {
	col, row := file, 7-rank
	if g.flipped {
		col, row = 7-file, rank
	}
	x := g.origin.X + col*g.square
	y := g.origin.Y + row*g.square
	return image.Rect(x, y, x+g.square, y+g.square)
}

func (g geometry) center(file, rank int) pointF {
	r := g.rect(file, rank)
	return pointF{X: float64(r.Min.X) + float64(g.square)/2, Y: float64(r.Min.Y) + float64(g.square)/2}
}

// layout places the board below the HUD and returns the full canvas bounds.
func layout(size int, orientation string) (geometry, image.Rectangle) {
	side := size / 2
	top := size + 40
	bottom := size / 2
	geo := geometry{
		origin:  image.Point{X: side, Y: top},
		square:  size,
		flipped: strings.EqualFold(orientation, OrientationBlack),
	}
	return geo, image.Rect(0, 0, size*8+side*2, size*8+top+bottom)
}

func (r *svgBoardRenderer) RenderPNG(ctx context.Context, board *rules.Board, opts Options) ([]byte, error) {
	if board == nil {
		return nil, errors.New("board is nil")
	}
	size := opts.SquareSize
	if size == 0 {
		size = DefaultSquareSize
	}
	if size < minSquareSize || size > maxSquareSize {
		return nil, fmt.Errorf("square size %d out of range [%d,%d]", size, minSquareSize, maxSquareSize)
	}

	geo, canvas := layout(size, opts.Orientation)
	boardRect := geo.rect(0, 7).Union(geo.rect(7, 0))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(canvas)
	imagedraw.Draw(img, img.Bounds(), image.NewUniform(backgroundColor), image.Point{}, imagedraw.Src)

	r.drawHUD(img, opts, boardRect)
	drawSquares(img, geo)
	r.drawHighlight(img, board, geo, opts.LastFrom, opts.LastTo)
	if err := drawPieces(img, board, geo); err != nil {
		return nil, err
	}
	r.drawCoordinates(img, geo, geo.origin.X)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func drawSquares(dst imagedraw.Image, geo geometry) {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			clr := lightSquare
			if (file+rank)%2 == 0 {
				clr = darkSquare
			}
			imagedraw.Draw(dst, geo.rect(file, rank), image.NewUniform(clr), image.Point{}, imagedraw.Src)
		}
	}
}

func drawPieces(dst imagedraw.Image, board *rules.Board, geo geometry) error {
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			piece := board.At(file, rank)
			if piece.Empty() {
				continue
			}
			img, err := renderPieceImage(piece, geo.square)
			if err != nil {
				return err
			}
			imagedraw.Draw(dst, geo.rect(file, rank), img, image.Point{}, imagedraw.Over)
		}
	}
	return nil
}

// drawHighlight shades both squares of a white move and draws an arrow for a black one.
func (r *svgBoardRenderer) drawHighlight(img *image.RGBA, board *rules.Board, geo geometry, from, to string) {
	ff, fr, err := rules.ParseSquare(from)
	if err != nil {
		return
	}
	tf, tr, err := rules.ParseSquare(to)
	if err != nil {
		return
	}
	mover := board.At(tf, tr).Color
	if mover == rules.Black {
		drawArrow(img, geo.center(ff, fr), geo.center(tf, tr), geo.square, blackMoveHighlightArrow)
		return
	}
	imagedraw.Draw(img, geo.rect(ff, fr), image.NewUniform(whiteMoveHighlightFill), image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, geo.rect(tf, tr), image.NewUniform(whiteMoveHighlightFill), image.Point{}, imagedraw.Over)
}

func (r *svgBoardRenderer) drawHUD(img *image.RGBA, opts Options, boardRect image.Rectangle) {
	const (
		titleHeight    = 26
		turnHeight     = 22
		gapPanels      = 8
		gapToBoard     = 12
		radius         = 8
		paddingX       = 14
		shadowOffsetY  = 3
		scoreMinWidth  = 56
		titleMinWidth  = 160
		turnMinWidth   = 120
		scoreTurnSpace = 16
	)
	drawer := &font.Drawer{Dst: img, Face: r.face}

	title := strings.TrimSpace(opts.Header)
	if title == "" {
		title = "Chess"
	}
	turnText := strings.TrimSpace(opts.Turn)
	scoreText := formatMaterialDiff(opts.Material)

	turnBottom := boardRect.Min.Y - gapToBoard
	turnTop := turnBottom - turnHeight
	titleBottom := turnTop - gapPanels
	titleTop := titleBottom - titleHeight

	titleWidth := clampInt(drawer.MeasureString(title).Round()+paddingX*2, titleMinWidth, boardRect.Dx())
	scoreWidth := clampInt(drawer.MeasureString(scoreText).Round()+paddingX*2, scoreMinWidth, boardRect.Dx()/3)
	turnWidth := clampInt(drawer.MeasureString(turnText).Round()+paddingX*2, turnMinWidth, boardRect.Dx()-scoreWidth-scoreTurnSpace)

	titleRect := image.Rect(boardRect.Min.X, titleTop, boardRect.Min.X+titleWidth, titleBottom)
	turnRect := image.Rect(boardRect.Min.X, turnTop, boardRect.Min.X+turnWidth, turnBottom)
	scoreRect := image.Rect(boardRect.Max.X-scoreWidth, turnTop, boardRect.Max.X, turnBottom)

	panels := []image.Rectangle{titleRect, scoreRect}
	if turnText != "" {
		panels = append(panels, turnRect)
	}
	for _, rect := range panels {
		drawRoundedPanel(img, rect.Add(image.Pt(0, shadowOffsetY)), radius, hudShadowColor)
	}
	drawRoundedPanel(img, titleRect, radius, hudPanelColor)
	drawRoundedPanel(img, scoreRect, radius, hudPanelColor)
	drawCenteredString(drawer, titleRect, truncateWithEllipsis(r.face, title, titleRect.Dx()-paddingX*2), hudTextPrimary)
	drawCenteredString(drawer, scoreRect, scoreText, hudTextPrimary)
	if turnText != "" {
		drawRoundedPanel(img, turnRect, radius, hudTurnPanelColor)
		drawCenteredString(drawer, turnRect, truncateWithEllipsis(r.face, turnText, turnRect.Dx()-paddingX*2), hudTurnTextColor)
	}
}

func (r *svgBoardRenderer) drawCoordinates(img *image.RGBA, geo geometry, margin int) {
	drawer := &font.Drawer{Dst: img, Face: r.face, Src: image.NewUniform(coordinateTextColor)}
	ascent := r.face.Metrics().Ascent.Ceil()
	for i := 0; i < 8; i++ {
		rankRect := geo.rect(0, i)
		x := rankRect.Min.X - margin/2
		if geo.flipped {
			x = rankRect.Max.X + margin/2
		}
		drawCenteredText(drawer, string(rune('1'+i)), x, rankRect.Min.Y+geo.square/2+ascent/2)

		fileRect := geo.rect(i, 0)
		if geo.flipped {
			fileRect = geo.rect(i, 7)
		}
		drawCenteredText(drawer, string(rune('a'+i)), fileRect.Min.X+geo.square/2, fileRect.Max.Y+ascent+2)
	}
}

func formatMaterialDiff(m chessdto.MaterialScore) string {
	diff := m.White - m.Black
	if diff == 0 {
		return "="
	}
	return fmt.Sprintf("%+d", diff)
}

func truncateWithEllipsis(face font.Face, text string, maxWidth int) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || maxWidth <= 0 || face == nil {
		return trimmed
	}
	drawer := font.Drawer{Face: face}
	if drawer.MeasureString(trimmed).Round() <= maxWidth {
		return trimmed
	}
	const ellipsis = "..."
	if drawer.MeasureString(ellipsis).Round() > maxWidth {
		return ""
	}
	runes := []rune(trimmed)
	for len(runes) > 0 {
		runes = runes[:len(runes)-1]
		candidate := string(runes) + ellipsis
		if drawer.MeasureString(candidate).Round() <= maxWidth {
			return candidate
		}
	}
	return ellipsis
}

func drawCenteredString(drawer *font.Drawer, rect image.Rectangle, text string, clr color.Color) {
	if text == "" {
		return
	}
	metrics := drawer.Face.Metrics()
	width := drawer.MeasureString(text).Round()
	x := rect.Min.X + (rect.Dx()-width)/2
	if x < rect.Min.X {
		x = rect.Min.X
	}
	baseline := rect.Min.Y + (rect.Dy()+metrics.Ascent.Ceil()-metrics.Descent.Ceil())/2
	drawer.Src = image.NewUniform(clr)
	drawer.Dot = fixed.P(x, baseline)
	drawer.DrawString(text)
}

func drawCenteredText(drawer *font.Drawer, text string, centerX, baseline int) {
	width := drawer.MeasureString(text).Round()
	drawer.Dot = fixed.P(centerX-width/2, baseline)
	drawer.DrawString(text)
}

func clampInt(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
