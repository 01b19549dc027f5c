package chart

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counter returns a sampler producing 1, 2, 3, ...
func counter() Sampler {
	n := 0.0
	return func(context.Context) float64 {
		n++
		return n
	}
}

func constant(v float64) Sampler {
	return func(context.Context) float64 { return v }
}

func newTestChart(size int) *Chart {
	return New(Options{HistorySize: size, Logger: logger.Noop()})
}

func tickN(c *Chart, n int) {
	for i := 0; i < n; i++ {
		c.Tick(context.Background())
	}
}

func TestTick_WarmupDiscardsTwoSamples(t *testing.T) {
	c := newTestChart(10)
	p := c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded()}, counter())

	tickN(c, 2)
	snap := p.Snapshot()
	assert.Equal(t, 0, snap.Count)
	assert.False(t, snap.HasValue)

	tickN(c, 1)
	snap = p.Snapshot()
	assert.Equal(t, []float64{3}, snap.History)
	assert.Equal(t, 3.0, snap.Latest)
	assert.True(t, snap.HasValue)
}

func TestTick_HistoryWraps(t *testing.T) {
	c := newTestChart(4)
	p := c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded()}, counter())

	// 2 warm-up ticks, then 4 + 3 recorded samples
	tickN(c, 2+4+3)

	snap := p.Snapshot()
	assert.Equal(t, 4, snap.Count)
	assert.Equal(t, 4, snap.Capacity)
	assert.Equal(t, []float64{6, 7, 8, 9}, snap.History)
}

func TestTick_DeactivationAgesOutAfterHistorySize(t *testing.T) {
	const n = 5
	c := newTestChart(n)
	p := c.Add(ParamConfig{Name: "gone", Limits: autorange.Unbounded()}, counter())
	c.Add(ParamConfig{Name: "stays", Limits: autorange.Unbounded()}, counter())

	tickN(c, 2+n)
	require.Equal(t, n, p.Snapshot().Count)

	p.Deactivate()
	assert.False(t, p.Active())

	for i := 1; i < n; i++ {
		res := c.Tick(context.Background())
		assert.Empty(t, res.Removed, "tick %d", i)
		assert.Equal(t, n-i, p.Snapshot().Count)
	}

	res := c.Tick(context.Background())
	assert.Equal(t, []string{"gone"}, res.Removed)
	assert.Equal(t, 1, c.Len())

	_, ok := c.Find("gone")
	assert.False(t, ok)
	_, ok = c.Find("stays")
	assert.True(t, ok)
}

func TestTick_DeactivatedBeforeRecordingIsRemovedNextTick(t *testing.T) {
	c := newTestChart(8)
	p := c.Add(ParamConfig{Name: "a"}, counter())
	p.Deactivate()

	res := c.Tick(context.Background())
	assert.Equal(t, []string{"a"}, res.Removed)
	assert.Equal(t, 0, c.Len())
}

func TestTick_InactiveParamsAreNotSampled(t *testing.T) {
	c := newTestChart(8)
	calls := 0
	p := c.Add(ParamConfig{Name: "a"}, func(context.Context) float64 {
		calls++
		return 1
	})
	tickN(c, 3)
	p.Deactivate()
	tickN(c, 3)

	assert.Equal(t, 3, calls)
}

func TestTick_EventOrder(t *testing.T) {
	c := newTestChart(8)
	c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded(), Autorange: true}, counter())
	c.Add(ParamConfig{Name: "b", Limits: autorange.Unbounded(), Autorange: true}, counter())

	var events []Event
	for _, e := range []Event{PreUpdate, Rescale, PostUpdate} {
		e := e
		c.On(e, func(*Chart) { events = append(events, e) })
	}

	// warm-up ticks record nothing, so nothing rescales
	tickN(c, 2)
	assert.Equal(t, []Event{PreUpdate, PostUpdate, PreUpdate, PostUpdate}, events)

	events = nil
	res := c.Tick(context.Background())
	assert.True(t, res.Rescaled)
	// one rescale for the whole chart, not one per parameter
	assert.Equal(t, []Event{PreUpdate, Rescale, PostUpdate}, events)
}

func TestTick_NoRescaleWhenBoundsHold(t *testing.T) {
	c := newTestChart(8)
	lim := autorange.Limits{TopMin: 1, TopMax: 100, BotMin: -100, BotMax: 0}
	p := c.Add(ParamConfig{Name: "a", Limits: lim, Autorange: true}, constant(0.5))

	rescales := 0
	c.On(Rescale, func(*Chart) { rescales++ })

	tickN(c, 6)
	lower, upper := p.Bounds()
	assert.Equal(t, 0.0, lower)
	assert.Equal(t, 1.0, upper)
	assert.Equal(t, 0, rescales)
}

func TestTick_AutorangeGrowsAlongLadder(t *testing.T) {
	c := newTestChart(16)
	vals := []float64{0, 0, 0.5, 1.5, 3, 7}
	i := 0
	lim := autorange.Limits{TopMin: 1, TopMax: math.Inf(1), BotMin: math.Inf(-1), BotMax: 0}
	p := c.Add(ParamConfig{Name: "a", Limits: lim, Autorange: true}, func(context.Context) float64 {
		v := vals[i]
		i++
		return v
	})

	want := []float64{1, 1, 1, 2, 5, 10}
	for step, w := range want {
		c.Tick(context.Background())
		_, upper := p.Bounds()
		assert.Equal(t, w, upper, "after tick %d", step+1)
	}

	snap := p.Snapshot()
	assert.Equal(t, 0.5, snap.Min)
	assert.Equal(t, 7.0, snap.Max)
}

func TestTick_FlatUnboundedDataKeepsValidAxis(t *testing.T) {
	c := newTestChart(8)
	p := c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded(), Autorange: true}, constant(4))

	tickN(c, 5)
	lower, upper := p.Bounds()
	assert.Less(t, lower, upper)
	assert.Equal(t, 4.0, lower)
	assert.Equal(t, 5.0, upper)
}

func TestTick_AutorangeWindowUsesPointsInView(t *testing.T) {
	c := New(Options{HistorySize: 10, PointsInView: 2, Logger: logger.Noop()})
	vals := []float64{0, 0, 100, 1, 2}
	i := 0
	p := c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded(), Autorange: true}, func(context.Context) float64 {
		v := vals[i]
		i++
		return v
	})

	tickN(c, len(vals))
	snap := p.Snapshot()
	// 100 has scrolled out of the two-point window
	assert.Equal(t, 1.0, snap.Min)
	assert.Equal(t, 2.0, snap.Max)
	assert.Equal(t, []float64{100, 1, 2}, snap.History)
}

func TestSetLimitAndAutorange(t *testing.T) {
	c := newTestChart(8)
	p := c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded()}, constant(1e9))

	p.SetLimit(TopMin, 0)
	p.SetLimit(TopMax, 100)
	p.SetLimit(BotMin, -100)
	p.SetLimit(BotMax, 0)
	p.SetAutorange(true)

	tickN(c, 3)
	snap := p.Snapshot()
	assert.True(t, snap.Autorange)
	assert.Equal(t, 100.0, snap.Upper)
	assert.Equal(t, 0.0, snap.Lower)
	assert.Equal(t, autorange.Limits{TopMin: 0, TopMax: 100, BotMin: -100, BotMax: 0}, snap.Limits)
}

func TestIndicatorNeverAutoranges(t *testing.T) {
	c := newTestChart(8)
	p := c.Add(ParamConfig{Name: "lamp", Plot: PlotIndicator, Autorange: true}, constant(1))
	assert.False(t, p.Snapshot().Autorange)

	p.SetAutorange(true)
	assert.False(t, p.Snapshot().Autorange)

	p.SetPlotStyle(PlotLine)
	p.SetAutorange(true)
	assert.True(t, p.Snapshot().Autorange)

	p.SetPlotStyle(PlotIndicator)
	assert.False(t, p.Snapshot().Autorange)

	p.SetScaleStyle(ScaleLog)
	assert.Equal(t, ScaleLog, p.Snapshot().Scale)
}

func TestInitialBoundsComeFromLimits(t *testing.T) {
	c := newTestChart(8)
	lim := autorange.Limits{TopMin: 10, TopMax: 50, BotMin: -5, BotMax: 2}
	p := c.Add(ParamConfig{Name: "a", Limits: lim}, constant(1))

	lower, upper := p.Bounds()
	assert.Equal(t, 2.0, lower)
	assert.Equal(t, 10.0, upper)
}

func TestHandlersMayCallBackIntoChart(t *testing.T) {
	c := newTestChart(8)
	c.Add(ParamConfig{Name: "a"}, counter())

	var seen []int
	c.On(PostUpdate, func(ch *Chart) {
		seen = append(seen, len(ch.Snapshot()))
	})

	tickN(c, 2)
	assert.Equal(t, []int{1, 1}, seen)
}

func TestParamsAddedInPreUpdateAreSampled(t *testing.T) {
	c := newTestChart(8)
	var added *Param
	calls := 0
	c.On(PreUpdate, func(ch *Chart) {
		if added == nil {
			added = ch.Add(ParamConfig{Name: "late"}, func(context.Context) float64 {
				calls++
				return 1
			})
		}
	})

	res := c.Tick(context.Background())
	// the PreUpdate handler runs before the sweep collects due parameters
	assert.Equal(t, 1, res.Sampled)
	assert.Equal(t, 1, calls)
	assert.NotNil(t, added)
}

func TestConcurrentSnapshotsDuringTicks(t *testing.T) {
	c := newTestChart(32)
	for _, name := range []string{"a", "b", "c"} {
		c.Add(ParamConfig{Name: name, Limits: autorange.Unbounded(), Autorange: true}, counter())
	}

	var wg sync.WaitGroup
	done := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
				for _, s := range c.Snapshot() {
					assert.LessOrEqual(t, s.Count, s.Capacity)
				}
			}
		}
	}()

	tickN(c, 100)
	close(done)
	wg.Wait()
	assert.Equal(t, uint64(100), c.Ticks())
}

func TestStyles(t *testing.T) {
	plots := map[string]PlotStyle{
		"point":     PlotPoint,
		"LINE":      PlotLine,
		"Solid":     PlotSolid,
		"indicator": PlotIndicator,
		"":          PlotLine,
		"bogus":     PlotLine,
	}
	for in, want := range plots {
		assert.Equal(t, want, ParsePlotStyle(in), in)
	}

	assert.Equal(t, ScaleLog, ParseScaleStyle("LOG"))
	assert.Equal(t, ScaleLinear, ParseScaleStyle("linear"))
	assert.Equal(t, ScaleLinear, ParseScaleStyle("cubic"))
	assert.Equal(t, "indicator", PlotIndicator.String())
	assert.Equal(t, "log", ScaleLog.String())
}

func TestFormatValue(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{12, "12"},
		{1234, "1.23K"},
		{-42000, "-42K"},
		{0.0015, "1.5m"},
		{2.5e-6, "2.5u"},
		{5e9, "5G"},
		{999.9, "1000"},
		{3e20, "3.00e+20"},
		{math.Inf(1), "+Inf"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatValue(tt.in), "FormatValue(%v)", tt.in)
	}
}

func TestSubscribeKeepsNewestFrame(t *testing.T) {
	c := newTestChart(8)
	c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded()}, counter())

	ctx, cancel := context.WithCancel(context.Background())
	frames := c.Subscribe(ctx)

	tickN(c, 4)
	f := <-frames
	assert.Equal(t, uint64(4), f.Tick)
	require.Len(t, f.Params, 1)
	assert.Equal(t, []float64{3, 4}, f.Params[0].History)

	select {
	case <-frames:
		t.Fatal("stale frame left in channel")
	default:
	}

	cancel()
	tickN(c, 1)
	select {
	case <-frames:
		t.Fatal("frame delivered after cancel")
	default:
	}
}

func TestSubscribeUnregistersAfterCancel(t *testing.T) {
	c := newTestChart(8)
	c.Add(ParamConfig{Name: "a", Limits: autorange.Unbounded()}, counter())
	base := c.handlerCount(PostUpdate)

	live, stopLive := context.WithCancel(context.Background())
	defer stopLive()
	frames := c.Subscribe(live)

	for i := 0; i < 100; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		c.Subscribe(ctx)
		cancel()
	}

	require.Eventually(t, func() bool {
		return c.handlerCount(PostUpdate) == base+1
	}, time.Second, time.Millisecond)

	tickN(c, 1)
	f := <-frames
	assert.Equal(t, uint64(1), f.Tick)

	stopLive()
	require.Eventually(t, func() bool {
		return c.handlerCount(PostUpdate) == base
	}, time.Second, time.Millisecond)
}

func TestOnReturnsRemove(t *testing.T) {
	c := newTestChart(8)

	var calls []string
	removeA := c.On(PostUpdate, func(*Chart) { calls = append(calls, "a") })
	c.On(PostUpdate, func(*Chart) { calls = append(calls, "b") })

	tickN(c, 1)
	assert.Equal(t, []string{"a", "b"}, calls)

	removeA()
	removeA()
	calls = nil
	tickN(c, 1)
	assert.Equal(t, []string{"b"}, calls)
	assert.Equal(t, 1, c.handlerCount(PostUpdate))
}
