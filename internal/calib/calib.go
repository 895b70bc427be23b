// Package calib provides pixel-to-real-unit calibration and length formatting.
package calib

import (
	"fmt"
	"math"
)

// Calibration maps pixel distances to a real-world unit.
type Calibration struct {
	Unit          string  `json:"unit"`
	UnitsPerPixel float64 `json:"unitsPerPixel"`
}

// New derives a calibration from a known real-world length spanning the given
// pixel distance. Both values must be finite and positive.
func New(unit string, realLength, pixelDistance float64) (*Calibration, error) {
	if !isPositiveFinite(realLength) {
		return nil, fmt.Errorf("invalid length %v: must be a positive number", realLength)
	}
	if !isPositiveFinite(pixelDistance) {
		return nil, fmt.Errorf("invalid pixel distance %v", pixelDistance)
	}
	upp := realLength / pixelDistance
	if !isPositiveFinite(upp) {
		return nil, fmt.Errorf("calibration out of range: %v units/px", upp)
	}
	return &Calibration{Unit: unit, UnitsPerPixel: upp}, nil
}

// Length converts a pixel length into calibrated units.
func (c *Calibration) Length(pixelLength float64) float64 {
	return pixelLength * c.UnitsPerPixel
}

func isPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
