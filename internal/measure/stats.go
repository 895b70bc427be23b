package measure

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes a session's measurement lengths in calibrated units
// (raw pixels when uncalibrated).
type Stats struct {
	Count  int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// SessionStats computes length statistics for one session.
func SessionStats(sess *Session) Stats {
	lengths := sess.PixelLengths()
	if sess.Calibration != nil {
		for i, v := range lengths {
			lengths[i] = sess.Calibration.Length(v)
		}
	}
	s := Stats{Count: len(lengths)}
	if s.Count == 0 {
		return s
	}
	s.Mean = stat.Mean(lengths, nil)
	s.Min = floats.Min(lengths)
	s.Max = floats.Max(lengths)
	if s.Count > 1 {
		s.StdDev = stat.StdDev(lengths, nil)
	}
	return s
}
