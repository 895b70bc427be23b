package geometry

import "math"

// Zoom limits for a ViewTransform. Panning is unbounded.
const (
	MinScale = 0.05
	MaxScale = 80.0
)

// ViewTransform maps image coordinates to screen coordinates:
// screen = image*Scale + (TX, TY).
type ViewTransform struct {
	Scale float64 `json:"scale"`
	TX    float64 `json:"tx"`
	TY    float64 `json:"ty"`
}

// IdentityTransform returns a 1:1 transform with no offset.
func IdentityTransform() ViewTransform {
	return ViewTransform{Scale: 1}
}

// ScreenFromImage maps an image-space point to screen space.
func (t ViewTransform) ScreenFromImage(p Point2D) Point2D {
	return Point2D{X: p.X*t.Scale + t.TX, Y: p.Y*t.Scale + t.TY}
}

// ImageFromScreen maps a screen-space point to image space.
func (t ViewTransform) ImageFromScreen(p Point2D) Point2D {
	return Point2D{X: (p.X - t.TX) / t.Scale, Y: (p.Y - t.TY) / t.Scale}
}

// Fit returns the transform that fits an image of the given size into the
// canvas, centered.
func Fit(imageSize, canvasSize Size) ViewTransform {
	if imageSize.Width <= 0 || imageSize.Height <= 0 {
		return IdentityTransform()
	}
	scale := math.Min(canvasSize.Width/imageSize.Width, canvasSize.Height/imageSize.Height)
	return ViewTransform{
		Scale: scale,
		TX:    (canvasSize.Width - imageSize.Width*scale) / 2,
		TY:    (canvasSize.Height - imageSize.Height*scale) / 2,
	}
}

// Pan returns the transform shifted by (dx, dy) in screen space.
func (t ViewTransform) Pan(dx, dy float64) ViewTransform {
	t.TX += dx
	t.TY += dy
	return t
}

// ZoomAt rescales around a screen-space anchor so the image point under the
// anchor stays put. The factor must be finite and positive; otherwise the
// transform is returned unchanged. The resulting scale is clamped to
// [MinScale, MaxScale].
func (t ViewTransform) ZoomAt(anchor Point2D, factor float64) ViewTransform {
	if math.IsNaN(factor) || math.IsInf(factor, 0) || factor <= 0 {
		return t
	}
	pivot := t.ImageFromScreen(anchor)
	scale := t.Scale * factor
	if scale < MinScale {
		scale = MinScale
	}
	if scale > MaxScale {
		scale = MaxScale
	}
	return ViewTransform{
		Scale: scale,
		TX:    anchor.X - pivot.X*scale,
		TY:    anchor.Y - pivot.Y*scale,
	}
}
