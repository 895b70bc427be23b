package snap

import (
	"image"
	"image/color"
	"testing"
)

// flatGray returns a w x h buffer filled with one value.
func flatGray(w, h int, v uint8) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

// edgeGray returns a buffer that is dark left of column x0 and bright from
// x0 onward, producing a strong vertical edge.
func edgeGray(w, h, x0 int) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(10)
			if x >= x0 {
				v = 240
			}
			g.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return g
}

func TestSnapFlatImageNeverMoves(t *testing.T) {
	g := flatGray(64, 64, 128)
	p := Point{X: 30.3, Y: 41.7}
	got, moved := Snap(g, p, 1.0)
	if moved {
		t.Error("flat image reported a move")
	}
	if got != p {
		t.Errorf("point changed: %+v -> %+v", p, got)
	}
}

func TestSnapFindsEdge(t *testing.T) {
	g := edgeGray(64, 64, 32)
	// Click a few pixels left of the edge. The gradient peaks at the
	// columns straddling x0.
	got, moved := Snap(g, Point{X: 28, Y: 20}, 2.0)
	if !moved {
		t.Fatal("expected the point to move onto the edge")
	}
	// Radius is 8; the gradient peaks along columns 31 and 32 and the
	// row-major scan reaches (31, 13) first inside the circular mask.
	if got.X != 31 || got.Y != 13 {
		t.Errorf("snapped: got %+v, want (31, 13)", got)
	}
}

func TestSnapRadiusShrinksWithZoom(t *testing.T) {
	g := edgeGray(64, 64, 32)
	// At very high zoom the image-space radius collapses to 1 px, so an
	// edge 4 px away is out of reach.
	got, moved := Snap(g, Point{X: 27, Y: 20}, 16.0)
	if moved {
		t.Errorf("edge should be outside the search radius, moved to %+v", got)
	}
}

func TestSnapNilBuffer(t *testing.T) {
	p := Point{X: 5, Y: 5}
	if got, moved := Snap(nil, p, 1.0); moved || got != p {
		t.Errorf("nil buffer: got %+v moved=%v", got, moved)
	}
}

func TestSnapBadZoom(t *testing.T) {
	g := edgeGray(32, 32, 16)
	p := Point{X: 10, Y: 10}
	for _, zoom := range []float64{0, -2} {
		if got, moved := Snap(g, p, zoom); moved || got != p {
			t.Errorf("zoom %v: got %+v moved=%v", zoom, got, moved)
		}
	}
}

func TestSnapTiesKeepFirstInScanOrder(t *testing.T) {
	// Uniform vertical edge: every row scores identically at the edge
	// columns, so the winner must be the topmost candidate row.
	g := edgeGray(64, 64, 32)
	got, moved := Snap(g, Point{X: 31, Y: 30}, 1.0)
	if !moved {
		t.Fatal("expected a snap")
	}
	wantY := 30.0 - 16.0 // top of the circular mask at radius 16
	if got.Y != wantY {
		t.Errorf("tie break y: got %v, want %v", got.Y, wantY)
	}
}

func TestLumaDimensions(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 10, 7))
	g := Luma(src)
	if g == nil {
		t.Fatal("nil luma")
	}
	if g.Bounds().Dx() != 10 || g.Bounds().Dy() != 7 {
		t.Errorf("bounds: got %v", g.Bounds())
	}
	if Luma(nil) != nil {
		t.Error("nil source should give nil luma")
	}
}
