package snap

import (
	"image"

	xdraw "golang.org/x/image/draw"
)

// Luma resamples an image into an 8-bit grayscale buffer at native pixel
// resolution with nearest-neighbor filtering. Returns nil for a nil or empty
// source.
func Luma(src image.Image) *image.Gray {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.NearestNeighbor.Scale(gray, gray.Bounds(), src, b, xdraw.Src, nil)
	return gray
}
