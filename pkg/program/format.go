package program

import (
	"math"
	"strconv"
	"strings"
)

// FormatNumber writes v with at most three decimals, rounding half away
// from zero and dropping trailing zeros. Negative zero prints as "0".
func FormatNumber(v float64) string {
	r := math.Round(v*1000) / 1000
	if r == 0 {
		return "0"
	}
	s := strconv.FormatFloat(r, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
