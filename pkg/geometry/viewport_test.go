package geometry

import (
	"math"
	"testing"
)

func TestTransformRoundTrip(t *testing.T) {
	transforms := []ViewTransform{
		IdentityTransform(),
		{Scale: 2.5, TX: -120, TY: 48},
		{Scale: 0.05, TX: 1000, TY: -1000},
		{Scale: 80, TX: 0.25, TY: 0.75},
	}
	points := []Point2D{{X: 0, Y: 0}, {X: 17.5, Y: -3.25}, {X: 4096, Y: 2048}}

	for _, tr := range transforms {
		for _, p := range points {
			got := tr.ScreenFromImage(tr.ImageFromScreen(p))
			if math.Abs(got.X-p.X) > 1e-9 || math.Abs(got.Y-p.Y) > 1e-9 {
				t.Errorf("round trip %+v through %+v: got %+v", p, tr, got)
			}
		}
	}
}

func TestFitCentersImage(t *testing.T) {
	tr := Fit(NewSize(200, 100), NewSize(400, 400))

	if tr.Scale != 2.0 {
		t.Errorf("scale: got %v, want 2.0", tr.Scale)
	}
	// 200*2=400 wide (flush), 100*2=200 tall (centered with 100 on each side)
	if tr.TX != 0 {
		t.Errorf("tx: got %v, want 0", tr.TX)
	}
	if tr.TY != 100 {
		t.Errorf("ty: got %v, want 100", tr.TY)
	}
}

func TestFitZeroImage(t *testing.T) {
	tr := Fit(NewSize(0, 0), NewSize(400, 400))
	if tr != IdentityTransform() {
		t.Errorf("got %+v, want identity", tr)
	}
}

func TestZoomAtPreservesAnchor(t *testing.T) {
	tr := ViewTransform{Scale: 1.5, TX: 30, TY: -12}
	anchor := NewPoint2D(211, 99)

	for _, factor := range []float64{0.5, 1.0, 1.25, 3.7} {
		before := tr.ImageFromScreen(anchor)
		after := tr.ZoomAt(anchor, factor).ImageFromScreen(anchor)
		if math.Abs(before.X-after.X) > 1e-9 || math.Abs(before.Y-after.Y) > 1e-9 {
			t.Errorf("factor %v moved anchor: %+v -> %+v", factor, before, after)
		}
	}
}

func TestZoomAtClampsScale(t *testing.T) {
	tr := IdentityTransform()
	for i := 0; i < 50; i++ {
		tr = tr.ZoomAt(NewPoint2D(100, 100), 2.0)
	}
	if tr.Scale != MaxScale {
		t.Errorf("scale after repeated zoom in: got %v, want %v", tr.Scale, MaxScale)
	}
	for i := 0; i < 100; i++ {
		tr = tr.ZoomAt(NewPoint2D(100, 100), 0.5)
	}
	if tr.Scale != MinScale {
		t.Errorf("scale after repeated zoom out: got %v, want %v", tr.Scale, MinScale)
	}
}

func TestZoomAtRejectsBadFactors(t *testing.T) {
	tr := ViewTransform{Scale: 2, TX: 5, TY: 6}
	for _, factor := range []float64{0, -1, math.NaN(), math.Inf(1), math.Inf(-1)} {
		if got := tr.ZoomAt(NewPoint2D(0, 0), factor); got != tr {
			t.Errorf("factor %v: got %+v, want unchanged %+v", factor, got, tr)
		}
	}
}

func TestPan(t *testing.T) {
	tr := ViewTransform{Scale: 1, TX: 10, TY: 20}.Pan(-4, 6)
	if tr.TX != 6 || tr.TY != 26 {
		t.Errorf("got tx=%v ty=%v, want 6, 26", tr.TX, tr.TY)
	}
}

func TestPointClamp(t *testing.T) {
	p := NewPoint2D(-5, 300).Clamp(100, 200)
	if p.X != 0 || p.Y != 200 {
		t.Errorf("got %+v, want (0, 200)", p)
	}
}
