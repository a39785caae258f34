package render

import (
	"bytes"

	"github.com/park285/simple-ai-chess/internal/rules"
)

var (
	whiteFill   = []byte("#f8f4ea")
	whiteStroke = []byte("#1d1d1d")
	blackFill   = []byte("#2b2b2b")
	blackStroke = []byte("#e9e9e9")
)

// colorizeSVG fills the color placeholders of a piece template for one side.
func colorizeSVG(svg []byte, c rules.Color) []byte {
	fill, stroke := whiteFill, whiteStroke
	if c == rules.Black {
		fill, stroke = blackFill, blackStroke
	}
	out := bytes.ReplaceAll(svg, []byte("FILL_COLOR"), fill)
	return bytes.ReplaceAll(out, []byte("STROKE_COLOR"), stroke)
}

// sanitizeSVG normalises style spellings oksvg fails to parse.
func sanitizeSVG(svg []byte) []byte {
	fixed := bytes.ReplaceAll(svg, []byte("fill: #"), []byte("fill:#"))
	fixed = bytes.ReplaceAll(fixed, []byte("stroke: #"), []byte("stroke:#"))
	return bytes.ReplaceAll(fixed, []byte("stop-color: #"), []byte("stop-color:#"))
}
