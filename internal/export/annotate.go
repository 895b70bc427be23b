package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"micro-measure/internal/calib"
	"micro-measure/internal/measure"
	"micro-measure/pkg/geometry"
)

var (
	lineColor  = color.RGBA{R: 255, G: 64, B: 32, A: 255}
	labelColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	labelBack  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
)

// Annotated renders the session image with every measurement drawn on top:
// the segment, endpoint ticks, and an "id: value unit" label at the
// midpoint.
func Annotated(sess *measure.Session, mode calib.RoundingMode) *image.RGBA {
	if sess.Image == nil {
		return nil
	}
	b := sess.Image.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), sess.Image, b.Min, draw.Src)

	for _, m := range sess.Results {
		drawSegment(out, m.P1, m.P2)
		drawTick(out, m.P1)
		drawTick(out, m.P2)

		label := fmt.Sprintf("%d: %s", m.ID, calib.FormatWithUnit(m.PixelLength, sess.Calibration, mode))
		mid := geometry.NewPoint2D((m.P1.X+m.P2.X)/2, (m.P1.Y+m.P2.Y)/2)
		drawLabel(out, label, int(mid.X)+4, int(mid.Y)-4)
	}
	return out
}

// WritePNG encodes an annotated image.
func WritePNG(w io.Writer, img image.Image) error {
	if img == nil {
		return fmt.Errorf("no image to export")
	}
	return png.Encode(w, img)
}

// drawSegment draws a 1-pixel line between two image-space points.
func drawSegment(out *image.RGBA, p1, p2 geometry.Point2D) {
	dx := p2.X - p1.X
	dy := p2.Y - p1.Y
	steps := int(math.Max(math.Abs(dx), math.Abs(dy)))
	if steps == 0 {
		setPixel(out, int(p1.X), int(p1.Y))
		return
	}
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		setPixel(out, int(math.Round(p1.X+dx*t)), int(math.Round(p1.Y+dy*t)))
	}
}

// drawTick marks an endpoint with a small cross.
func drawTick(out *image.RGBA, p geometry.Point2D) {
	cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
	for d := -3; d <= 3; d++ {
		setPixel(out, cx+d, cy)
		setPixel(out, cx, cy+d)
	}
}

func setPixel(out *image.RGBA, x, y int) {
	if image.Pt(x, y).In(out.Bounds()) {
		out.SetRGBA(x, y, lineColor)
	}
}

// drawLabel renders text with a solid backing box so it stays readable over
// the specimen.
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
	draw.Draw(out, box.Intersect(out.Bounds()), image.NewUniform(labelBack), image.Point{}, draw.Src)
	d.DrawString(text)
}
