package config

import (
	"math"
	"strconv"
	"strings"

	"github.com/rileyhilliard/stripchart/internal/autorange"
)

// ParseLimit reads a range-limit string. Blank or unparsable text yields
// fallback, so a missing limit never clamps.
func ParseLimit(s string, fallback float64) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return fallback
	}
	return v
}

// Limits parses the four range-limit strings of p.
func (p ParamConfig) Limits() autorange.Limits {
	return autorange.Limits{
		TopMin: ParseLimit(p.TopMin, math.Inf(-1)),
		TopMax: ParseLimit(p.TopMax, math.Inf(1)),
		BotMin: ParseLimit(p.BotMin, math.Inf(-1)),
		BotMax: ParseLimit(p.BotMax, math.Inf(1)),
	}
}
