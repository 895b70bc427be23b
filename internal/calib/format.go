package calib

import (
	"fmt"
	"math"
)

// RoundingMode selects how values are reduced to significant digits.
type RoundingMode int

const (
	// RoundNearest rounds to the nearest value.
	RoundNearest RoundingMode = iota
	// RoundCeil always rounds away from zero.
	RoundCeil
)

// SignificantDigits is the fixed precision used for reported lengths.
const SignificantDigits = 4

// ParseRoundingMode maps a stored preference string to a mode.
// Unknown strings fall back to RoundNearest.
func ParseRoundingMode(s string) RoundingMode {
	if s == "ceil" {
		return RoundCeil
	}
	return RoundNearest
}

// String returns the preference representation of the mode.
func (m RoundingMode) String() string {
	if m == RoundCeil {
		return "ceil"
	}
	return "round"
}

// RoundSignificant reduces v to the given number of significant digits.
func RoundSignificant(v float64, digits int, mode RoundingMode) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	e := int(math.Floor(math.Log10(math.Abs(v))))
	shift := math.Pow(10, float64(digits-e-1))
	scaled := v * shift
	if mode == RoundCeil {
		scaled = math.Copysign(math.Ceil(math.Abs(scaled)), scaled)
	} else {
		scaled = math.Round(scaled)
	}
	return scaled / shift
}

// FormatLength renders a pixel length as text: converted through the
// calibration when one is present, otherwise the raw pixel value. Zero
// renders as "0.0000"; non-finite values render empty.
func FormatLength(pixelLength float64, cal *Calibration, mode RoundingMode) string {
	v := pixelLength
	if cal != nil {
		v = cal.Length(pixelLength)
	}
	return FormatValue(v, mode)
}

// FormatWithUnit renders a pixel length followed by its unit, "px" when the
// session carries no calibration.
func FormatWithUnit(pixelLength float64, cal *Calibration, mode RoundingMode) string {
	s := FormatLength(pixelLength, cal, mode)
	if s == "" {
		return s
	}
	return s + " " + UnitLabel(cal)
}

// UnitLabel returns the calibration's unit string, or "px" when nil.
func UnitLabel(cal *Calibration) string {
	if cal == nil || cal.Unit == "" {
		return "px"
	}
	return cal.Unit
}

// FormatValue renders an already-converted value at SignificantDigits
// precision.
func FormatValue(v float64, mode RoundingMode) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == 0 {
		return "0.0000"
	}
	rounded := RoundSignificant(v, SignificantDigits, mode)
	e := int(math.Floor(math.Log10(math.Abs(rounded))))
	decimals := SignificantDigits - e - 1
	if decimals < 0 {
		decimals = 0
	}
	return fmt.Sprintf("%.*f", decimals, rounded)
}
