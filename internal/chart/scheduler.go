package chart

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Scheduler drives a chart from a ticker. Every tick runs on the goroutine
// that called Run, so ticks never overlap.
type Scheduler struct {
	chart *Chart

	mu       sync.Mutex
	interval time.Duration
	reset    chan time.Duration
}

// NewScheduler creates a scheduler for c. interval must be positive.
func NewScheduler(c *Chart, interval time.Duration) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("tick interval %v must be positive", interval)
	}
	return &Scheduler{
		chart:    c,
		interval: interval,
		reset:    make(chan time.Duration, 1),
	}, nil
}

// Interval returns the current tick period.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetInterval replaces the tick period. The next tick fires one full new
// interval after the change.
func (s *Scheduler) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("tick interval %v must be positive", d)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d

	// keep only the latest pending change
	select {
	case <-s.reset:
	default:
	}
	s.reset <- d
	return nil
}

// Run ticks the chart until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d := <-s.reset:
			ticker.Reset(d)
		case <-ticker.C:
			s.chart.Tick(ctx)
		}
	}
}
