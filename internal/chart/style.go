package chart

import "strings"

// PlotStyle is how a renderer draws a trace. The engine only carries it.
type PlotStyle int

const (
	PlotLine PlotStyle = iota
	PlotPoint
	PlotSolid
	// PlotIndicator draws a single status lamp instead of a trace.
	PlotIndicator
)

func (s PlotStyle) String() string {
	switch s {
	case PlotPoint:
		return "point"
	case PlotSolid:
		return "solid"
	case PlotIndicator:
		return "indicator"
	}
	return "line"
}

// ParsePlotStyle is case-insensitive; unknown names mean PlotLine.
func ParsePlotStyle(s string) PlotStyle {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point":
		return PlotPoint
	case "solid":
		return PlotSolid
	case "indicator":
		return PlotIndicator
	}
	return PlotLine
}

// ScaleStyle is the axis mapping used to draw a trace.
type ScaleStyle int

const (
	ScaleLinear ScaleStyle = iota
	ScaleLog
)

func (s ScaleStyle) String() string {
	if s == ScaleLog {
		return "log"
	}
	return "linear"
}

// ParseScaleStyle is case-insensitive; unknown names mean ScaleLinear.
func ParseScaleStyle(s string) ScaleStyle {
	if strings.EqualFold(strings.TrimSpace(s), "log") {
		return ScaleLog
	}
	return ScaleLinear
}
