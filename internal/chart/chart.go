// Package chart runs the sampling sweep over a set of traced parameters:
// each tick samples every active parameter into its history ring, ages out
// deactivated ones and rescales axes.
package chart

import (
	"context"
	"sync"
	"time"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/history"
	"github.com/rileyhilliard/stripchart/internal/logger"
)

// Event is a point in the tick cycle that handlers can observe.
type Event int

const (
	// PreUpdate fires before any parameter is sampled.
	PreUpdate Event = iota
	// Rescale fires at most once per tick, after the sweep, when any axis
	// bound moved.
	Rescale
	// PostUpdate fires at the end of every tick.
	PostUpdate
)

func (e Event) String() string {
	switch e {
	case PreUpdate:
		return "pre-update"
	case Rescale:
		return "rescale"
	}
	return "post-update"
}

// Handler observes chart events. Handlers run on the tick goroutine without
// the chart lock held, so they may call back into the chart.
type Handler func(c *Chart)

// Options configure a Chart.
type Options struct {
	// HistorySize is the ring capacity for new parameters.
	HistorySize int
	// PointsInView bounds the autorange window. Zero means HistorySize.
	PointsInView int
	Policy       autorange.Policy
	Logger       logger.Logger
}

// Chart owns a set of parameters and advances them one tick at a time.
type Chart struct {
	mu           sync.Mutex
	params       []*Param
	historySize  int
	pointsInView int
	policy       autorange.Policy
	ticks        uint64

	hmu       sync.RWMutex
	handlers  map[Event][]handlerEntry
	handlerID uint64

	log logger.Logger
}

// New creates an empty chart.
func New(opts Options) *Chart {
	if opts.HistorySize <= 0 {
		opts.HistorySize = history.DefaultSize
	}
	if opts.PointsInView <= 0 {
		opts.PointsInView = opts.HistorySize
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewEnvLogger("[chart]")
	}
	return &Chart{
		historySize:  opts.HistorySize,
		pointsInView: opts.PointsInView,
		policy:       opts.Policy,
		handlers:     make(map[Event][]handlerEntry),
		log:          opts.Logger,
	}
}

type handlerEntry struct {
	id uint64
	h  Handler
}

// On registers a handler for an event. The returned func unregisters it and
// may be called more than once.
func (c *Chart) On(e Event, h Handler) (remove func()) {
	c.hmu.Lock()
	defer c.hmu.Unlock()
	c.handlerID++
	id := c.handlerID
	c.handlers[e] = append(c.handlers[e], handlerEntry{id: id, h: h})

	return func() {
		c.hmu.Lock()
		defer c.hmu.Unlock()
		entries := c.handlers[e]
		for i, en := range entries {
			if en.id == id {
				c.handlers[e] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

func (c *Chart) emit(e Event) {
	c.hmu.RLock()
	hs := make([]Handler, 0, len(c.handlers[e]))
	for _, en := range c.handlers[e] {
		hs = append(hs, en.h)
	}
	c.hmu.RUnlock()

	for _, h := range hs {
		h(c)
	}
}

func (c *Chart) handlerCount(e Event) int {
	c.hmu.RLock()
	defer c.hmu.RUnlock()
	return len(c.handlers[e])
}

// Add starts tracing a new parameter. It is sampled from the next tick on.
func (c *Chart) Add(cfg ParamConfig, sampler Sampler) *Param {
	c.mu.Lock()
	defer c.mu.Unlock()
	p := newParam(c, cfg, sampler, c.historySize)
	c.params = append(c.params, p)
	c.log.Debug("added %q (history %d, autorange %v)", cfg.Name, p.ring.Capacity(), p.rescale)
	return p
}

// Params returns the tracked parameters in display order.
func (c *Chart) Params() []*Param {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Param, len(c.params))
	copy(out, c.params)
	return out
}

// Find returns the first parameter with the given name.
func (c *Chart) Find(name string) (*Param, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range c.params {
		if p.cfg.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Len returns the number of tracked parameters, including ones still aging
// out.
func (c *Chart) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.params)
}

// Ticks returns how many ticks have completed.
func (c *Chart) Ticks() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// SetPolicy changes the quantization used by autoranging parameters.
func (c *Chart) SetPolicy(p autorange.Policy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.policy = p
}

// SetPointsInView changes the autorange window width.
func (c *Chart) SetPointsInView(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pointsInView = n
}

// Snapshot copies every parameter's state.
func (c *Chart) Snapshot() []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Snapshot, len(c.params))
	for i, p := range c.params {
		out[i] = p.snapshotLocked()
	}
	return out
}

// Frame is the whole chart at one instant.
type Frame struct {
	Tick   uint64
	Time   time.Time
	Params []Snapshot
}

// Frame copies the chart state together with the tick count.
func (c *Chart) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := Frame{Tick: c.ticks, Time: time.Now(), Params: make([]Snapshot, len(c.params))}
	for i, p := range c.params {
		f.Params[i] = p.snapshotLocked()
	}
	return f
}

// Subscribe delivers a Frame after every tick until ctx is done. A reader
// that falls behind only sees the newest frame. The channel is never closed;
// the subscription is unregistered once ctx is done.
func (c *Chart) Subscribe(ctx context.Context) <-chan Frame {
	ch := make(chan Frame, 1)
	remove := c.On(PostUpdate, func(c *Chart) {
		if ctx.Err() != nil {
			return
		}
		f := c.Frame()
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	})
	context.AfterFunc(ctx, remove)
	return ch
}

// TickResult summarizes one tick.
type TickResult struct {
	Sampled  int
	Recorded int
	Removed  []string
	Rescaled bool
}

// Tick runs one sampling sweep.
//
// Samplers run without the chart lock so slow sources do not block readers.
// Parameters added during the sweep wait for the next tick. Parameters
// deactivated during the sweep are aged instead of recorded.
func (c *Chart) Tick(ctx context.Context) TickResult {
	var res TickResult

	c.emit(PreUpdate)

	c.mu.Lock()
	var due []*Param
	for _, p := range c.params {
		if p.active {
			due = append(due, p)
		}
	}
	c.mu.Unlock()

	values := make(map[*Param]float64, len(due))
	for _, p := range due {
		values[p] = p.sampler(ctx)
	}
	res.Sampled = len(due)

	c.mu.Lock()
	kept := c.params[:0]
	for _, p := range c.params {
		if !p.active {
			if p.age() {
				res.Removed = append(res.Removed, p.cfg.Name)
				continue
			}
			kept = append(kept, p)
			continue
		}

		kept = append(kept, p)
		v, sampled := values[p]
		if !sampled || !p.record(v) {
			continue
		}
		res.Recorded++

		if p.rescale && p.autorange(c.pointsInView, c.policy) {
			res.Rescaled = true
		}
	}
	for i := len(kept); i < len(c.params); i++ {
		c.params[i] = nil
	}
	c.params = kept
	c.ticks++
	c.mu.Unlock()

	for _, name := range res.Removed {
		c.log.Debug("removed %q after aging out", name)
	}

	if res.Rescaled {
		c.emit(Rescale)
	}
	c.emit(PostUpdate)
	return res
}
