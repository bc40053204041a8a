package engine

import (
	"math"
	"strconv"
)

// roundTo rounds v to the given number of fractional digits. Values too
// large to carry that many fractional digits are returned unchanged.
func roundTo(v float64, places int) float64 {
	if places < 0 || math.IsInf(v, 0) || math.IsNaN(v) || math.Abs(v) >= 1e15 {
		return v
	}
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', places, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// FormatNumber renders v as the shortest decimal that parses back to v.
// Exponent notation is used below 1e-4 and from 1e15 on, e.g. "1E+15".
// Negative zero prints as "0".
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e15 || abs < 1e-4 {
		return strconv.FormatFloat(v, 'E', -1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// countDigits counts decimal digits, ignoring sign, point and exponent marks.
func countDigits(s string) int {
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			n++
		}
	}
	return n
}

// trimNumeral drops trailing characters until s parses as a number.
func trimNumeral(s string) string {
	for s != "" {
		if _, err := strconv.ParseFloat(s, 64); err == nil {
			return s
		}
		s = s[:len(s)-1]
	}
	return s
}
