package monitor

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rileyhilliard/stripchart/internal/chart"
)

// Braille character rendering for high-resolution terminal graphs.
//
// Braille patterns use a 2x4 dot matrix per character:
//
//	  Col 0  Col 1
//	Row 0:   ⠁      ⠈     (dots 1, 4)
//	Row 1:   ⠂      ⠐     (dots 2, 5)
//	Row 2:   ⠄      ⠠     (dots 3, 6)
//	Row 3:   ⡀      ⢀     (dots 7, 8)
//
// Unicode braille starts at U+2800 (empty) and uses bit patterns:
// bit 0 = dot 1, bit 1 = dot 2, bit 2 = dot 3, bit 3 = dot 4,
// bit 4 = dot 5, bit 5 = dot 6, bit 6 = dot 7, bit 7 = dot 8

const brailleBase = '\u2800'

// sparklineBlocks are block characters for 8-level vertical resolution (lowest to highest).
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// brailleDots maps row/column to the bit offset for braille pattern
// [row][col] where row is 0-3 (top to bottom) and col is 0-1 (left to right)
var brailleDots = [4][2]uint8{
	{0, 3}, // Row 0: dots 1 and 4
	{1, 4}, // Row 1: dots 2 and 5
	{2, 5}, // Row 2: dots 3 and 6
	{6, 7}, // Row 3: dots 7 and 8
}

// Axis is the vertical range a trace is drawn against.
type Axis struct {
	Lower float64
	Upper float64
	Scale chart.ScaleStyle
}

// axisFor picks the axis of a snapshot. Unusable bounds (infinite, or not
// yet ordered because nothing was recorded) fall back to the data range.
func axisFor(s chart.Snapshot, data []float64) Axis {
	a := Axis{Lower: s.Lower, Upper: s.Upper, Scale: s.Scale}
	if usable(a.Lower, a.Upper) {
		return a
	}
	lo, hi := findMinMax(data)
	if hi <= lo {
		hi = lo + 1
	}
	a.Lower, a.Upper = lo, hi
	return a
}

func usable(lower, upper float64) bool {
	return !math.IsInf(lower, 0) && !math.IsInf(upper, 0) &&
		!math.IsNaN(lower) && !math.IsNaN(upper) && lower < upper
}

// findMinMax returns the minimum and maximum values in a slice.
func findMinMax(data []float64) (minVal, maxVal float64) {
	if len(data) == 0 {
		return 0, 1
	}
	minVal, maxVal = data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// normalizeValue converts a value to 0-1 range given min/max bounds.
func normalizeValue(val, minVal, maxVal float64) float64 {
	if maxVal > minVal {
		return (val - minVal) / (maxVal - minVal)
	}
	return 0.5
}

// normalize places v on the axis in [0,1]. Log scale is used only when the
// whole axis is positive.
func (a Axis) normalize(v float64) float64 {
	var n float64
	if a.Scale == chart.ScaleLog && a.Lower > 0 && v > 0 {
		n = normalizeValue(math.Log10(v), math.Log10(a.Lower), math.Log10(a.Upper))
	} else {
		n = normalizeValue(v, a.Lower, a.Upper)
	}
	switch {
	case math.IsNaN(n), n < 0:
		return 0
	case n > 1:
		return 1
	}
	return n
}

// level maps v to one of levels steps, 0 being the bottom.
func (a Axis) level(v float64, levels int) int {
	return clampInt(int(math.Round(a.normalize(v)*float64(levels-1))), levels-1)
}

// clampInt clamps an integer to a range [0, maxVal].
func clampInt(val, maxVal int) int {
	if val < 0 {
		return 0
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// RenderTrace draws data (oldest first) in the given plot style.
//
//   - solid: filled columns of block characters, one sample per column
//   - line: braille dots joined between consecutive samples
//   - point: one braille dot per sample
//   - indicator: a single lamp lit when the newest sample is non-zero
//
// Data is right-aligned so the newest sample sits at the right edge.
func RenderTrace(data []float64, width, height int, axis Axis, style chart.PlotStyle, color lipgloss.Color) string {
	if style == chart.PlotIndicator {
		return renderIndicator(data, color)
	}
	if len(data) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	var rows []string
	if style == chart.PlotSolid {
		rows = renderBlocks(data, width, height, axis)
	} else {
		rows = renderBraille(data, width, height, axis, style == chart.PlotLine)
	}

	s := lipgloss.NewStyle().Foreground(color)
	for i, r := range rows {
		rows[i] = s.Render(r)
	}
	return strings.Join(rows, "\n")
}

func renderIndicator(data []float64, color lipgloss.Color) string {
	if len(data) == 0 || data[len(data)-1] == 0 {
		return lipgloss.NewStyle().Foreground(ColorDim).Render(IndicatorOff)
	}
	return lipgloss.NewStyle().Foreground(color).Render(IndicatorOn)
}

// fit downsamples data to at most n points.
func fit(data []float64, n int) []float64 {
	if len(data) > n {
		return resampleData(data, n)
	}
	return data
}

func renderBlocks(data []float64, width, height int, axis Axis) []string {
	points := fit(data, width)
	offset := width - len(points)
	eighths := height * len(sparklineBlocks)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for i, v := range points {
		col := i + offset
		// at least one eighth so the bottom of the axis stays visible
		filled := axis.level(v, eighths) + 1
		for row := 0; row < height; row++ {
			fromBottom := height - 1 - row
			rest := filled - fromBottom*len(sparklineBlocks)
			switch {
			case rest >= len(sparklineBlocks):
				grid[row][col] = sparklineBlocks[len(sparklineBlocks)-1]
			case rest > 0:
				grid[row][col] = sparklineBlocks[rest-1]
			}
		}
	}

	out := make([]string, height)
	for i, r := range grid {
		out[i] = string(r)
	}
	return out
}

func renderBraille(data []float64, width, height int, axis Axis, join bool) []string {
	targetPoints := width * 2
	points := fit(data, targetPoints)
	offset := targetPoints - len(points)
	totalDots := height * 4

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = make([]rune, width)
		for j := range grid[i] {
			grid[i][j] = brailleBase
		}
	}

	set := func(x, dot int) {
		row := height - 1 - dot/4
		subRow := 3 - dot%4
		grid[row][x/2] |= rune(1) << brailleDots[subRow][x%2]
	}

	prev := -1
	for i, v := range points {
		x := i + offset
		lvl := axis.level(v, totalDots)
		lo, hi := lvl, lvl
		if join && prev >= 0 {
			if prev < lo {
				lo = prev
			}
			if prev > hi {
				hi = prev
			}
		}
		for dot := lo; dot <= hi; dot++ {
			set(x, dot)
		}
		prev = lvl
	}

	out := make([]string, height)
	for i, r := range grid {
		out[i] = string(r)
	}
	return out
}

// resampleData resamples data to the target size.
// When downsampling (compressing), uses max-based sampling to preserve peaks/spikes.
// When upsampling (expanding), uses linear interpolation.
func resampleData(data []float64, targetSize int) []float64 {
	if len(data) == 0 || targetSize <= 0 {
		return nil
	}

	if len(data) == targetSize {
		return data
	}

	result := make([]float64, targetSize)

	if len(data) == 1 {
		for i := range result {
			result[i] = data[0]
		}
		return result
	}

	// Downsampling: use max within each bucket to preserve peaks
	if len(data) > targetSize {
		bucketSize := float64(len(data)) / float64(targetSize)
		for i := 0; i < targetSize; i++ {
			start := int(float64(i) * bucketSize)
			end := int(float64(i+1) * bucketSize)
			if end > len(data) {
				end = len(data)
			}
			if start >= end {
				start = end - 1
			}
			if start < 0 {
				start = 0
			}

			maxVal := data[start]
			for j := start + 1; j < end; j++ {
				if data[j] > maxVal {
					maxVal = data[j]
				}
			}
			result[i] = maxVal
		}
		return result
	}

	// Upsampling: linear interpolation
	scale := float64(len(data)-1) / float64(targetSize-1)
	for i := 0; i < targetSize; i++ {
		pos := float64(i) * scale
		idx := int(pos)
		frac := pos - float64(idx)

		if idx >= len(data)-1 {
			result[i] = data[len(data)-1]
		} else {
			result[i] = data[idx]*(1-frac) + data[idx+1]*frac
		}
	}

	return result
}
