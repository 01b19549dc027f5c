package chart

import (
	"context"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/history"
)

// warmupTicks is how many samples a new parameter discards so delta and
// smoothing state can settle.
const warmupTicks = 2

// Sampler produces the next value for a parameter. It is only ever called
// from the tick loop.
type Sampler func(ctx context.Context) float64

// Bound names one of the four hard range limits.
type Bound int

const (
	TopMin Bound = iota
	TopMax
	BotMin
	BotMax
)

func (b Bound) String() string {
	switch b {
	case TopMin:
		return "top_min"
	case TopMax:
		return "top_max"
	case BotMin:
		return "bot_min"
	}
	return "bot_max"
}

// ParamConfig describes a parameter when it is added to a chart.
type ParamConfig struct {
	Name        string
	Description string
	Color       string
	Limits      autorange.Limits
	Autorange   bool
	Plot        PlotStyle
	Scale       ScaleStyle
	// HistorySize overrides the chart default when positive.
	HistorySize int
}

// Param is one traced value. Its fields are guarded by the owning chart's
// lock; callers outside the tick loop use the methods or Snapshot.
type Param struct {
	chart   *Chart
	cfg     ParamConfig
	ring    *history.Ring
	sampler Sampler

	active  bool
	idle    int
	skip    int
	rescale bool
	limits  autorange.Limits
	lower   float64
	upper   float64
	min     float64
	max     float64
	plot    PlotStyle
	scale   ScaleStyle
}

func newParam(c *Chart, cfg ParamConfig, sampler Sampler, size int) *Param {
	if cfg.HistorySize > 0 {
		size = cfg.HistorySize
	}
	return &Param{
		chart:   c,
		cfg:     cfg,
		ring:    history.NewRing(size),
		sampler: sampler,
		active:  true,
		skip:    warmupTicks,
		rescale: cfg.Autorange && cfg.Plot != PlotIndicator,
		limits:  cfg.Limits,
		upper:   cfg.Limits.TopMin,
		lower:   cfg.Limits.BotMax,
		plot:    cfg.Plot,
		scale:   cfg.Scale,
	}
}

// Name returns the parameter name.
func (p *Param) Name() string { return p.cfg.Name }

// Active reports whether the parameter is still being sampled.
func (p *Param) Active() bool {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	return p.active
}

// Deactivate stops sampling. The trace ages out over the following ticks and
// the parameter is then removed from the chart.
func (p *Param) Deactivate() {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	p.active = false
}

// SetLimit changes one hard range limit. The axis follows on the next
// autoranged tick.
func (p *Param) SetLimit(b Bound, v float64) {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	switch b {
	case TopMin:
		p.limits.TopMin = v
	case TopMax:
		p.limits.TopMax = v
	case BotMin:
		p.limits.BotMin = v
	case BotMax:
		p.limits.BotMax = v
	}
}

// SetAutorange turns autoranging on or off. Indicator plots never autorange.
func (p *Param) SetAutorange(on bool) {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	p.rescale = on && p.plot != PlotIndicator
}

// SetPlotStyle changes how the trace is drawn. Switching to an indicator
// turns autoranging off.
func (p *Param) SetPlotStyle(s PlotStyle) {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	p.plot = s
	if s == PlotIndicator {
		p.rescale = false
	}
}

// SetScaleStyle changes the axis mapping used to draw the trace.
func (p *Param) SetScaleStyle(s ScaleStyle) {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	p.scale = s
}

// Bounds returns the current axis bounds.
func (p *Param) Bounds() (lower, upper float64) {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	return p.lower, p.upper
}

// Snapshot copies the parameter state for display.
func (p *Param) Snapshot() Snapshot {
	p.chart.mu.Lock()
	defer p.chart.mu.Unlock()
	return p.snapshotLocked()
}

func (p *Param) snapshotLocked() Snapshot {
	latest, ok := p.ring.Newest()
	return Snapshot{
		Name:        p.cfg.Name,
		Description: p.cfg.Description,
		Color:       p.cfg.Color,
		Active:      p.active,
		Latest:      latest,
		HasValue:    ok,
		Min:         p.min,
		Max:         p.max,
		Lower:       p.lower,
		Upper:       p.upper,
		Limits:      p.limits,
		Autorange:   p.rescale,
		Plot:        p.plot,
		Scale:       p.scale,
		Count:       p.ring.Count(),
		Capacity:    p.ring.Capacity(),
		Idle:        p.idle,
		History:     p.ring.Ordered(),
	}
}

// age runs one tick of the removal protocol for an inactive parameter and
// reports whether it should be removed.
func (p *Param) age() bool {
	p.idle++
	if p.ring.Capacity() <= p.ring.Count()+p.idle {
		p.ring.Expire()
	}
	return p.ring.Count() == 0
}

// record stores a sample unless the parameter is still warming up. It
// reports whether the sample was kept.
func (p *Param) record(v float64) bool {
	if p.skip > 0 {
		p.skip--
		return false
	}
	p.ring.Record(v)
	return true
}

// autorange recomputes the window extremes and axis bounds.
func (p *Param) autorange(pointsInView int, policy autorange.Policy) bool {
	n := pointsInView - p.idle
	if n < 1 {
		n = 1
	}
	lo, hi, ok := p.ring.Extremes(n)
	if !ok {
		return false
	}
	p.min, p.max = lo, hi

	var changed bool
	p.lower, p.upper, changed = autorange.Pair(p.lower, p.upper, lo, hi, p.limits, policy)
	return changed
}

// Snapshot is a copy of one parameter's state, safe to keep across ticks.
type Snapshot struct {
	Name        string
	Description string
	Color       string
	Active      bool
	Latest      float64
	HasValue    bool
	Min         float64
	Max         float64
	Lower       float64
	Upper       float64
	Limits      autorange.Limits
	Autorange   bool
	Plot        PlotStyle
	Scale       ScaleStyle
	Count       int
	Capacity    int
	Idle        int
	// History is oldest first.
	History []float64
}
