package tax

import (
	"math"
	"strconv"
)

// round2 rounds the exact binary value half-to-even at two decimals. Every stage
// boundary rounds through here so figures match stage-by-stage reference results.
func round2(v float64) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	out, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return out
}

func percentOf(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return round2(part / whole * 100)
}
