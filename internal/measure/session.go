// Package measure implements the measurement session engine: per-image
// sessions, the point-picking state machine, undo snapshots, and debounced
// autosave.
package measure

import (
	"image"
	"path/filepath"
	"strings"
	"time"

	"micro-measure/internal/calib"
	"micro-measure/internal/snap"
	"micro-measure/pkg/geometry"
)

// Measurement is one completed point-to-point distance. Never mutated after
// creation; undo replaces result slices wholesale.
type Measurement struct {
	ID          int64
	P1          geometry.Point2D
	P2          geometry.Point2D
	PixelLength float64
	CreatedAt   time.Time
}

// Session holds one loaded image together with its view transform,
// calibration, and measurement results (newest first).
type Session struct {
	ID   int
	Name string
	Path string

	Image     image.Image
	PixelSize geometry.Size

	Transform          geometry.ViewTransform
	HasCustomTransform bool

	Calibration  *calib.Calibration
	Results      []Measurement
	NextResultID int64
	HighlightID  int64

	luma     *image.Gray
	lumaDone bool
}

// newSession builds a session around a decoded image. The display name is
// the file name without its extension.
func newSession(id int, path string, img image.Image) *Session {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	s := &Session{
		ID:           id,
		Name:         name,
		Path:         path,
		Image:        img,
		Transform:    geometry.IdentityTransform(),
		NextResultID: 1,
	}
	if img != nil {
		b := img.Bounds()
		s.PixelSize = geometry.NewSize(float64(b.Dx()), float64(b.Dy()))
	}
	return s
}

// Luma returns the session's cached grayscale buffer, building it on first
// use. Only the owner goroutine touches it.
func (s *Session) Luma() *image.Gray {
	if !s.lumaDone {
		s.luma = snap.Luma(s.Image)
		s.lumaDone = true
	}
	return s.luma
}

// findResult returns the index of the measurement with the given id, or -1.
func (s *Session) findResult(id int64) int {
	for i, m := range s.Results {
		if m.ID == id {
			return i
		}
	}
	return -1
}

// PixelLengths returns the stored lengths oldest-first, the order used for
// export and statistics.
func (s *Session) PixelLengths() []float64 {
	out := make([]float64, len(s.Results))
	for i, m := range s.Results {
		out[len(s.Results)-1-i] = m.PixelLength
	}
	return out
}
