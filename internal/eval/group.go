package eval

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultFilter is the smoothing coefficient applied from the second
	// sample on. 1 disables smoothing.
	DefaultFilter = 0.5
	// DefaultInterval is the tick period.
	DefaultInterval = 5 * time.Second
)

// Group is the state shared by every equation driven by one timer: the
// smoothing coefficient, the tick interval and the tick timestamps behind
// the $t and ~t variables.
type Group struct {
	mu       sync.RWMutex
	filter   float64
	interval time.Duration
	clock    func() time.Time

	t0   time.Time
	now  time.Time
	last time.Time
	diff float64
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithClock replaces time.Now, for tests.
func WithClock(clock func() time.Time) GroupOption {
	return func(g *Group) {
		g.clock = clock
	}
}

// NewGroup creates a group. An out-of-range filter or a non-positive
// interval falls back to the defaults.
func NewGroup(filter float64, interval time.Duration, opts ...GroupOption) *Group {
	g := &Group{
		filter:   DefaultFilter,
		interval: DefaultInterval,
		clock:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	_ = g.SetFilter(filter)
	_ = g.SetInterval(interval)

	g.t0 = g.clock()
	g.now = g.t0
	g.last = g.t0
	return g
}

// Filter returns the smoothing coefficient.
func (g *Group) Filter() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.filter
}

// SetFilter changes the smoothing coefficient. It must lie in [0, 1].
func (g *Group) SetFilter(f float64) error {
	if f < 0 || f > 1 || f != f {
		return fmt.Errorf("smoothing %v outside [0, 1]", f)
	}
	g.mu.Lock()
	g.filter = f
	g.mu.Unlock()
	return nil
}

// Interval returns the tick period.
func (g *Group) Interval() time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.interval
}

// SetInterval records a new tick period. It must be positive.
func (g *Group) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("interval %v must be positive", d)
	}
	g.mu.Lock()
	g.interval = d
	g.mu.Unlock()
	return nil
}

// Advance moves the tick timestamps forward. It runs at the start of every
// tick, before any equation is evaluated.
func (g *Group) Advance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.last = g.now
	g.now = g.clock()
	g.diff = g.now.Sub(g.last).Seconds()
}

// Elapsed is the value of $t: seconds since the group was created.
func (g *Group) Elapsed() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.clock().Sub(g.t0).Seconds()
}

// Delta is the value of ~t: seconds between the last two ticks.
func (g *Group) Delta() float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.diff
}
