// Package snap moves clicked points onto nearby luminance edges.
//
// A fixed screen-space search radius is converted into image space using the
// current zoom, so snapping feels the same size at any magnification. The
// candidate pixel with the strongest central-difference gradient wins; weak
// gradients leave the point untouched.
package snap

import (
	"image"
	"math"
)

const (
	// RadiusScreen is the search radius in screen pixels.
	RadiusScreen = 16.0
	// Threshold is the minimum gradient score considered an edge.
	Threshold = 24
	// movedEpsilon is the displacement below which a snap does not count
	// as having moved the point.
	movedEpsilon = 0.1
)

// Point is an image-space coordinate pair.
type Point struct {
	X, Y float64
}

// Snap searches around p for the pixel with the locally maximal gradient
// magnitude in luma and returns it. The boolean reports whether the point
// actually moved. With no buffer, out-of-range input, or only weak gradients
// the original point comes back unchanged.
func Snap(luma *image.Gray, p Point, zoom float64) (Point, bool) {
	if luma == nil {
		return p, false
	}
	w := luma.Bounds().Dx()
	h := luma.Bounds().Dy()
	if w < 3 || h < 3 {
		return p, false
	}
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(zoom) || zoom <= 0 {
		return p, false
	}

	// A 1-pixel border stays reserved for the central-difference samples.
	cx := clampInt(int(math.Round(p.X)), 1, w-2)
	cy := clampInt(int(math.Round(p.Y)), 1, h-2)

	radius := int(math.Round(RadiusScreen / zoom))
	if radius < 1 {
		radius = 1
	}

	bestScore := -1
	bestX, bestY := cx, cy
	r2 := radius * radius

	for y := maxInt(cy-radius, 1); y <= minInt(cy+radius, h-2); y++ {
		dy := y - cy
		for x := maxInt(cx-radius, 1); x <= minInt(cx+radius, w-2); x++ {
			dx := x - cx
			if dx*dx+dy*dy > r2 {
				continue
			}
			score := gradient(luma, x, y)
			if score > bestScore {
				bestScore = score
				bestX, bestY = x, y
			}
		}
	}

	if bestScore < Threshold {
		return p, false
	}

	snapped := Point{X: float64(bestX), Y: float64(bestY)}
	moved := math.Hypot(snapped.X-p.X, snapped.Y-p.Y) > movedEpsilon
	return snapped, moved
}

// gradient scores a pixel as the L1 sum of horizontal and vertical central
// differences.
func gradient(luma *image.Gray, x, y int) int {
	left := int(luma.GrayAt(x-1, y).Y)
	right := int(luma.GrayAt(x+1, y).Y)
	up := int(luma.GrayAt(x, y-1).Y)
	down := int(luma.GrayAt(x, y+1).Y)
	return absInt(right-left) + absInt(down-up)
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
