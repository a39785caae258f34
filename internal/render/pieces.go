package render

import (
	"bytes"
	"embed"
	"fmt"
	"image"
	"sync"

	"github.com/park285/simple-ai-chess/internal/rules"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

//go:embed assets/pieces/*.svg
var pieceFiles embed.FS

type rasterKey struct {
	piece rules.Piece
	size  int
}

// pieceSet caches the colored SVG source per piece and the raster per piece and size.
// oksvg icons are mutated by SetTarget, so every raster parses its own icon.
type pieceSet struct {
	mu      sync.Mutex
	sources map[rules.Piece][]byte
	rasters map[rasterKey]*image.RGBA
}

var defaultPieces = &pieceSet{
	sources: make(map[rules.Piece][]byte),
	rasters: make(map[rasterKey]*image.RGBA),
}

func renderPieceImage(piece rules.Piece, size int) (image.Image, error) {
	return defaultPieces.raster(piece, size)
}

func (ps *pieceSet) raster(piece rules.Piece, size int) (*image.RGBA, error) {
	key := rasterKey{piece: piece, size: size}
	ps.mu.Lock()
	if img, ok := ps.rasters[key]; ok {
		ps.mu.Unlock()
		return img, nil
	}
	src, err := ps.sourceLocked(piece)
	ps.mu.Unlock()
	if err != nil {
		return nil, err
	}

	img, err := rasterizeSVG(src, size)
	if err != nil {
		return nil, fmt.Errorf("piece %s %s: %w", piece.Color, piece.Kind.Name(), err)
	}

	ps.mu.Lock()
	// a concurrent caller may have won; keep the first so callers share one image
	if prev, ok := ps.rasters[key]; ok {
		img = prev
	} else {
		ps.rasters[key] = img
	}
	ps.mu.Unlock()
	return img, nil
}

func (ps *pieceSet) sourceLocked(piece rules.Piece) ([]byte, error) {
	if src, ok := ps.sources[piece]; ok {
		return src, nil
	}
	if piece.Empty() {
		return nil, fmt.Errorf("no asset for an empty square")
	}
	name := fmt.Sprintf("assets/pieces/%c.svg", rune(piece.Kind))
	data, err := pieceFiles.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read piece asset %s: %w", name, err)
	}
	src := sanitizeSVG(colorizeSVG(data, piece.Color))
	ps.sources[piece] = src
	return src, nil
}

func rasterizeSVG(src []byte, size int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, img, img.Bounds())
	icon.Draw(rasterx.NewDasher(size, size, scanner), 1.0)
	return img, nil
}
