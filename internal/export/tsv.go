// Package export renders measurement results as tab-separated text and
// annotated images.
package export

import (
	"fmt"
	"strings"

	"micro-measure/internal/calib"
	"micro-measure/internal/measure"
)

// SessionTSV renders one session's results as tab-separated text: a header
// row, a unit row, then one row per measurement oldest-first.
func SessionTSV(sess *measure.Session, mode calib.RoundingMode) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PositionNo\t%s\n", sess.Name)
	fmt.Fprintf(&b, "Unit\t%s\n", calib.UnitLabel(sess.Calibration))
	for i := len(sess.Results) - 1; i >= 0; i-- {
		m := sess.Results[i]
		fmt.Fprintf(&b, "%d\t%s\n", len(sess.Results)-i, calib.FormatLength(m.PixelLength, sess.Calibration, mode))
	}
	return b.String()
}

// SessionTSVWithStats appends a summary block (count, mean, standard
// deviation) after the result table, separated by a blank line.
func SessionTSVWithStats(sess *measure.Session, mode calib.RoundingMode) string {
	var b strings.Builder
	b.WriteString(SessionTSV(sess, mode))
	s := measure.SessionStats(sess)
	if s.Count == 0 {
		return b.String()
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Count\t%d\n", s.Count)
	fmt.Fprintf(&b, "Mean\t%s\n", calib.FormatValue(s.Mean, mode))
	fmt.Fprintf(&b, "StdDev\t%s\n", calib.FormatValue(s.StdDev, mode))
	return b.String()
}

// AllSessionsTSV renders every session that has results as one table:
// a column per session, a unit row, and data rows padded with empty cells
// where a session has fewer measurements than the longest one.
func AllSessionsTSV(sessions []*measure.Session, mode calib.RoundingMode) string {
	var cols []*measure.Session
	rows := 0
	for _, sess := range sessions {
		if len(sess.Results) == 0 {
			continue
		}
		cols = append(cols, sess)
		if len(sess.Results) > rows {
			rows = len(sess.Results)
		}
	}

	var b strings.Builder
	b.WriteString("PositionNo")
	for _, sess := range cols {
		b.WriteString("\t")
		b.WriteString(sess.Name)
	}
	b.WriteString("\n")

	b.WriteString("Unit")
	for _, sess := range cols {
		b.WriteString("\t")
		b.WriteString(calib.UnitLabel(sess.Calibration))
	}
	b.WriteString("\n")

	for row := 0; row < rows; row++ {
		fmt.Fprintf(&b, "%d", row+1)
		for _, sess := range cols {
			b.WriteString("\t")
			// Oldest first: row 0 is the last stored element.
			if row < len(sess.Results) {
				m := sess.Results[len(sess.Results)-1-row]
				b.WriteString(calib.FormatLength(m.PixelLength, sess.Calibration, mode))
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
