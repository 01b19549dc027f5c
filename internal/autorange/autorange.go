// Package autorange picks readable axis bounds for a trace from the extremes
// of its visible window.
//
// Bounds move in whole grid steps: either along the 1, 2, 5, 10 x 10^k ladder
// or to the enclosing power of two. A bound that already covers the data
// stays put, so small fluctuations never redraw the axis.
package autorange

import (
	"fmt"
	"math"
	"strings"
)

// Policy selects how a bound is quantized.
type Policy int

const (
	// Auto uses the 1-2-5 ladder when the side's own hard limit (top_min for
	// the upper bound, bot_max for the lower) is on it and powers of two
	// otherwise.
	Auto Policy = iota
	// Ladder125 always snaps to 1, 2 or 5 x 10^k.
	Ladder125
	// Pow2 always snaps to 2^k.
	Pow2
)

// String returns the config name of the policy.
func (p Policy) String() string {
	switch p {
	case Ladder125:
		return "125"
	case Pow2:
		return "pow2"
	default:
		return "auto"
	}
}

// ParsePolicy maps a config value to a Policy. Empty means Auto.
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "125", "1-2-5", "decade":
		return Ladder125, nil
	case "pow2", "power2", "binary":
		return Pow2, nil
	}
	return Auto, fmt.Errorf("unknown autorange policy %q (valid: auto, 125, pow2)", s)
}

// Side identifies which axis bound is being computed.
type Side int

const (
	Upper Side = iota
	Lower
)

// gridEpsilon is the tolerance, in log10 units, for treating a value as a
// grid line.
const gridEpsilon = 1e-9

var (
	log2of10 = math.Log10(2)
	log5of10 = math.Log10(5)
)

// ComputeBound returns the new bound for one side of an axis.
//
// For the upper side, hardMin is top_min (the bound never drops below it) and
// hardMax is top_max (the bound never exceeds it). For the lower side, hardMin
// is bot_min and hardMax is bot_max, with the roles mirrored. changed reports
// whether the result differs from current.
func ComputeBound(current, extreme, hardMin, hardMax float64, side Side, policy Policy) (bound float64, changed bool) {
	isUpper := side == Upper

	in, out := hardMin, hardMax
	if !isUpper {
		in, out = hardMax, hardMin
	}

	switch {
	case isUpper && extreme <= in, !isUpper && extreme >= in:
		bound = in
	case isUpper && extreme >= out, !isUpper && extreme <= out:
		bound = out
	case hardMin < 0 && hardMax > 0:
		bound = extreme
	case extreme == 0:
		bound = 0
	default:
		towardZero := isUpper == (extreme < 0)

		useLadder := false
		switch policy {
		case Ladder125:
			useLadder = true
		case Auto:
			useLadder = OnGrid(in)
		}

		if useLadder {
			bound = ladder(math.Abs(extreme), towardZero)
		} else {
			bound = powerOfTwo(math.Abs(extreme), towardZero)
		}
		bound = math.Copysign(bound, extreme)

		if isUpper && bound >= out || !isUpper && bound <= out {
			bound = out
		}
	}

	return bound, bound != current
}

// OnGrid reports whether v is 1, 2 or 5 x 10^k within a small tolerance.
// Zero and non-finite values are never on the grid.
func OnGrid(v float64) bool {
	if v == 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return false
	}
	frac := logFraction(math.Abs(v))
	return near(frac, 0) || near(frac, 1) || near(frac, log2of10) || near(frac, log5of10)
}

func near(a, b float64) bool {
	return math.Abs(a-b) < gridEpsilon
}

// logFraction returns the fractional part of log10(v).
func logFraction(v float64) float64 {
	l := math.Log10(v)
	return l - math.Floor(l)
}

// ladder snaps a magnitude to 1, 2, 5 or 10 x 10^k. Values already on a
// step stay there; anything between steps moves outward unless towardZero.
func ladder(mag float64, towardZero bool) float64 {
	l := math.Log10(mag)
	exp := math.Floor(l)
	frac := l - exp
	if near(frac, 1) {
		exp++
		frac = 0
	}

	var step float64
	switch {
	case frac <= gridEpsilon:
		step = 1
	case frac < log2of10-gridEpsilon:
		step = pick(towardZero, 1, 2)
	case frac <= log2of10+gridEpsilon:
		step = 2
	case frac < log5of10-gridEpsilon:
		step = pick(towardZero, 2, 5)
	case frac <= log5of10+gridEpsilon:
		step = 5
	default:
		step = pick(towardZero, 5, 10)
	}
	return step * math.Pow(10, exp)
}

// powerOfTwo snaps a magnitude to the enclosing 2^k.
func powerOfTwo(mag float64, towardZero bool) float64 {
	l := math.Log2(mag)
	i := math.Floor(l)
	if l > i && !towardZero {
		i++
	}
	return math.Ldexp(1, int(i))
}

func pick(towardZero bool, inner, outer float64) float64 {
	if towardZero {
		return inner
	}
	return outer
}

// Pair recomputes both bounds of an axis from the window extremes. If the
// result is inverted or empty it keeps the previous bounds when those were
// valid, otherwise it widens to [lower, lower+1]. changed reports whether
// either bound moved.
func Pair(lower, upper, lo, hi float64, lim Limits, policy Policy) (newLower, newUpper float64, changed bool) {
	newUpper, _ = ComputeBound(upper, hi, lim.TopMin, lim.TopMax, Upper, policy)
	newLower, _ = ComputeBound(lower, lo, lim.BotMin, lim.BotMax, Lower, policy)

	if !(newLower < newUpper) {
		if lower < upper {
			newLower, newUpper = lower, upper
		} else {
			newLower = lo
			if math.IsInf(newLower, 0) || math.IsNaN(newLower) {
				newLower = 0
			}
			newUpper = newLower + 1
		}
	}

	return newLower, newUpper, newLower != lower || newUpper != upper
}

// Limits are the hard clamps for one trace.
type Limits struct {
	TopMin float64
	TopMax float64
	BotMin float64
	BotMax float64
}

// Unbounded returns limits that never clamp.
func Unbounded() Limits {
	return Limits{
		TopMin: math.Inf(-1),
		TopMax: math.Inf(1),
		BotMin: math.Inf(-1),
		BotMax: math.Inf(1),
	}
}
