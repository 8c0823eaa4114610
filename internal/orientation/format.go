// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"
	"strconv"
	"strings"
)

// FormatAngle writes deg as a plain decimal rounded to 12 significant
// digits (never in exponent form, always with a fractional part) and then
// truncates the text to width characters. The rounding hides the last-bit
// noise left by the radian round trip, so 8.999699999999999 shows as
// "8.9997". Digits past the width are dropped, not
// rounded: 12.3456789 at width 6 is "12.345".
//
// Negative zero is written as "0.0".
func FormatAngle(deg float64, width int) string {
	if deg == 0 {
		deg = 0 // drop the sign of -0
	}

	var s string
	switch {
	case math.IsNaN(deg):
		s = "NaN"
	case math.IsInf(deg, 1):
		s = "+Inf"
	case math.IsInf(deg, -1):
		s = "-Inf"
	default:
		s = strconv.FormatFloat(roundSignificant(deg), 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
	}

	if width > 0 && len(s) > width {
		s = s[:width]
	}
	return s
}

// significantDigits matches the precision of the legacy display text.
const significantDigits = 12

func roundSignificant(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'g', significantDigits, 64), 64)
	if err != nil {
		return v
	}
	return r
}
