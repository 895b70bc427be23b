package export

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"micro-measure/internal/calib"
	"micro-measure/internal/measure"
	"micro-measure/pkg/geometry"
)

// sessionWith builds a session whose results were measured in the given
// order (the store keeps newest first).
func sessionWith(t *testing.T, name string, cal *calib.Calibration, lengths ...float64) *measure.Session {
	t.Helper()
	store := measure.NewStore(measure.Options{})
	img := image.NewGray(image.Rect(0, 0, 500, 500))
	sess := store.AddSession("/img/"+name+".png", img)
	store.SetMode(measure.ModeMeasure)
	for _, d := range lengths {
		store.CommitImagePoint(geometry.NewPoint2D(0, 0))
		store.CommitImagePoint(geometry.NewPoint2D(d, 0))
	}
	sess.Calibration = cal
	return sess
}

func TestSessionTSVSingle(t *testing.T) {
	sess := sessionWith(t, "specimen", nil, 123.456, 10)

	got := SessionTSV(sess, calib.RoundNearest)
	want := "PositionNo\tspecimen\n" +
		"Unit\tpx\n" +
		"1\t123.5\n" +
		"2\t10.00\n"
	if got != want {
		t.Errorf("tsv:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSessionTSVCalibrated(t *testing.T) {
	cal := &calib.Calibration{Unit: "µm", UnitsPerPixel: 0.01}
	sess := sessionWith(t, "specimen", cal, 123.456)

	got := SessionTSV(sess, calib.RoundNearest)
	want := "PositionNo\tspecimen\n" +
		"Unit\tµm\n" +
		"1\t1.235\n"
	if got != want {
		t.Errorf("tsv:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestAllSessionsTSVPadsShortColumns(t *testing.T) {
	a := sessionWith(t, "a", nil, 10, 20, 30)
	b := sessionWith(t, "b", &calib.Calibration{Unit: "mm", UnitsPerPixel: 0.1}, 40)
	empty := sessionWith(t, "empty", nil)

	got := AllSessionsTSV([]*measure.Session{a, b, empty}, calib.RoundNearest)
	want := "PositionNo\ta\tb\n" +
		"Unit\tpx\tmm\n" +
		"1\t10.00\t4.000\n" +
		"2\t20.00\t\n" +
		"3\t30.00\t\n"
	if got != want {
		t.Errorf("tsv:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestSessionTSVWithStats(t *testing.T) {
	sess := sessionWith(t, "s", nil, 3, 4, 5)
	got := SessionTSVWithStats(sess, calib.RoundNearest)
	for _, want := range []string{"\nCount\t3\n", "\nMean\t4.000\n", "\nStdDev\t1.000\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in:\n%s", want, got)
		}
	}
}

func TestAnnotatedDrawsOnCopy(t *testing.T) {
	sess := sessionWith(t, "s", nil, 50)

	out := Annotated(sess, calib.RoundNearest)
	if out == nil {
		t.Fatal("nil annotated image")
	}
	if out.Bounds() != sess.Image.Bounds() {
		t.Errorf("bounds: got %v, want %v", out.Bounds(), sess.Image.Bounds())
	}
	// The segment from (0,0) to (50,0) must have recolored pixels.
	if out.RGBAAt(25, 0) != lineColor {
		t.Errorf("pixel (25,0): got %v", out.RGBAAt(25, 0))
	}

	var buf bytes.Buffer
	if err := WritePNG(&buf, out); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	if buf.Len() == 0 {
		t.Error("empty png")
	}
}
