package canvas

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"micro-measure/pkg/geometry"
)

var (
	lineColor      = color.RGBA{R: 255, G: 64, B: 32, A: 255}
	highlightColor = color.RGBA{R: 255, G: 220, B: 0, A: 255}
	pendingColor   = color.RGBA{R: 64, G: 200, B: 255, A: 255}
	labelColor     = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBack      = color.RGBA{R: 0, G: 0, B: 0, A: 200}
	backColor      = color.RGBA{R: 24, G: 24, B: 28, A: 255}
)

func fillBackground(out *image.RGBA) {
	draw.Draw(out, out.Bounds(), image.NewUniform(backColor), image.Point{}, draw.Src)
}

func drawLine(out *image.RGBA, p1, p2 geometry.Point2D, col color.RGBA) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setPixel(out, int(p1.X), int(p1.Y), col)
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(out, int(math.Round(p1.X+dx*t)), int(math.Round(p1.Y+dy*t)), col)
	}
}

func drawCross(out *image.RGBA, p geometry.Point2D, col color.RGBA) {
	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	for d := -4; d <= 4; d++ {
		setPixel(out, cx+d, cy, col)
		setPixel(out, cx, cy+d, col)
	}
}

func setPixel(out *image.RGBA, x, y int, col color.RGBA) {
	if image.Pt(x, y).In(out.Bounds()) {
		out.SetRGBA(x, y, col)
	}
}

func drawLabel(out *image.RGBA, text string, x, y int) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(labelColor),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	w := d.MeasureString(text).Ceil()
	box := image.Rect(x-2, y-face.Ascent-1, x+w+2, y+face.Descent+1)
	draw.Draw(out, box.Intersect(out.Bounds()), image.NewUniform(labelBack), image.Point{}, draw.Over)
	d.DrawString(text)
}
