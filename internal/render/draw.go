package render

import (
	"image"
	"image/color"
	imagedraw "image/draw"
	"math"
)

type pointF struct {
	X float64
	Y float64
}

func drawRoundedPanel(img *image.RGBA, rect image.Rectangle, radius int, clr color.Color) {
	if rect.Empty() {
		return
	}
	radius = clampInt(radius, 0, min(rect.Dx(), rect.Dy())/2)
	fill := image.NewUniform(clr)
	if radius == 0 {
		imagedraw.Draw(img, rect, fill, image.Point{}, imagedraw.Over)
		return
	}

	imagedraw.Draw(img, image.Rect(rect.Min.X+radius, rect.Min.Y, rect.Max.X-radius, rect.Max.Y), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Min.X, rect.Min.Y+radius, rect.Min.X+radius, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)
	imagedraw.Draw(img, image.Rect(rect.Max.X-radius, rect.Min.Y+radius, rect.Max.X, rect.Max.Y-radius), fill, image.Point{}, imagedraw.Over)

	corners := []struct {
		center image.Point
		dx, dy int
	}{
		{image.Pt(rect.Min.X+radius, rect.Min.Y+radius), -1, -1},
		{image.Pt(rect.Max.X-radius-1, rect.Min.Y+radius), 1, -1},
		{image.Pt(rect.Min.X+radius, rect.Max.Y-radius-1), -1, 1},
		{image.Pt(rect.Max.X-radius-1, rect.Max.Y-radius-1), 1, 1},
	}
	for _, c := range corners {
		drawQuarterDisc(img, c.center, radius, c.dx, c.dy, clr)
	}
}

// drawQuarterDisc fills the quadrant of a disc that points in direction (dx, dy).
func drawQuarterDisc(img *image.RGBA, center image.Point, radius, dx, dy int, clr color.Color) {
	rSquared := radius * radius
	for y := 0; y <= radius; y++ {
		for x := 0; x <= radius; x++ {
			if x*x+y*y > rSquared {
				continue
			}
			blendPixel(img, center.X+x*dx, center.Y+y*dy, clr)
		}
	}
}

func blendPixel(img *image.RGBA, x, y int, clr color.Color) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return
	}
	sr, sg, sb, sa := clr.RGBA()
	if sa == 0 {
		return
	}
	// color.RGBA is alpha premultiplied, so source-over is a single lerp per channel
	inv := 1 - float64(sa)/0xffff
	dst := img.RGBAAt(x, y)
	img.SetRGBA(x, y, color.RGBA{
		R: floatToUint8(float64(sr)/257 + float64(dst.R)*inv),
		G: floatToUint8(float64(sg)/257 + float64(dst.G)*inv),
		B: floatToUint8(float64(sb)/257 + float64(dst.B)*inv),
		A: floatToUint8(float64(sa)/257 + float64(dst.A)*inv),
	})
}

func floatToUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}

func drawArrow(img *image.RGBA, start, end pointF, squareSize int, clr color.Color) {
	dx := end.X - start.X
	dy := end.Y - start.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	dirX, dirY := dx/length, dy/length
	perpX, perpY := -dirY, dirX

	sq := float64(squareSize)
	baseLength := length - sq*0.45
	if baseLength < sq*0.35 {
		baseLength = length * 0.6
	}
	halfWidth := sq * 0.12
	headHalf := sq * 0.22

	baseX := start.X + dirX*baseLength
	baseY := start.Y + dirY*baseLength

	fillQuad(img,
		pointF{X: start.X - perpX*halfWidth, Y: start.Y - perpY*halfWidth},
		pointF{X: start.X + perpX*halfWidth, Y: start.Y + perpY*halfWidth},
		pointF{X: baseX + perpX*halfWidth, Y: baseY + perpY*halfWidth},
		pointF{X: baseX - perpX*halfWidth, Y: baseY - perpY*halfWidth},
		clr,
	)
	fillTriangleF(img,
		end,
		pointF{X: baseX - perpX*headHalf, Y: baseY - perpY*headHalf},
		pointF{X: baseX + perpX*headHalf, Y: baseY + perpY*headHalf},
		clr,
	)
}

func fillQuad(img *image.RGBA, p0, p1, p2, p3 pointF, clr color.Color) {
	fillTriangleF(img, p0, p1, p2, clr)
	fillTriangleF(img, p0, p2, p3, clr)
}

func fillTriangleF(img *image.RGBA, a, b, c pointF, clr color.Color) {
	minX := int(math.Floor(min(a.X, b.X, c.X)))
	maxX := int(math.Ceil(max(a.X, b.X, c.X)))
	minY := int(math.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math.Ceil(max(a.Y, b.Y, c.Y)))
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			if pointInTriangle(float64(x)+0.5, float64(y)+0.5, a, b, c) {
				blendPixel(img, x, y, clr)
			}
		}
	}
}

func pointInTriangle(x, y float64, a, b, c pointF) bool {
	denom := (b.Y-c.Y)*(a.X-c.X) + (c.X-b.X)*(a.Y-c.Y)
	if denom == 0 {
		return false
	}
	alpha := ((b.Y-c.Y)*(x-c.X) + (c.X-b.X)*(y-c.Y)) / denom
	beta := ((c.Y-a.Y)*(x-c.X) + (a.X-c.X)*(y-c.Y)) / denom
	return alpha >= 0 && beta >= 0 && 1-alpha-beta >= 0
}
