package chart

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatValue renders v with three significant digits and an SI suffix
// (p n u m K M G T P), the layout of the values table. Magnitudes outside
// the SI range fall back to e-notation.
func FormatValue(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	}

	mag := math.Abs(v)
	if mag < 1e-12 || mag >= 1e18 {
		return strconv.FormatFloat(v, 'e', 2, 64)
	}

	val, prefix := humanize.ComputeSI(mag)
	s := strconv.FormatFloat(val, 'g', 3, 64)
	if strings.Contains(s, "e") {
		// 999.9 rounds to 1e+03 in 'g'
		s = strconv.FormatFloat(val, 'f', 0, 64)
	}
	if v < 0 {
		s = "-" + s
	}
	return s + siSuffix(prefix)
}

func siSuffix(prefix string) string {
	switch prefix {
	case "\u00b5", "\u03bc":
		return "u"
	case "k":
		return "K"
	}
	return prefix
}
