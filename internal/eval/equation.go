// Package eval computes parameter values from small arithmetic equations
// over fields read from files, commands, file status checks and host
// metrics.
//
// An equation is compiled once. Each Evaluate call refreshes the field
// vector from the source, runs the compiled program and smooths the result
// with the group's filter. Setup failures are returned as errors; after a
// successful setup every failure reads as 0 so a broken source never stops
// the tick loop.
package eval

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
)

// Definition is the textual form of an equation and its data source.
type Definition struct {
	Equation string
	// Source is a file path, "|command", "?path" or "=key". Environment
	// variables should already be expanded.
	Source  string
	Pattern string
}

// Equation is a compiled, stateful equation. It is not safe for concurrent
// use; the tick loop is its only caller once it has been set up.
type Equation struct {
	def     Definition
	program *Program
	source  Source
	group   *Group
	log     logger.Logger
	hosts   *hoststate.Registry
	timeout time.Duration

	pass  int
	value float64
	now   []float64
	last  []float64
}

// Option configures an Equation.
type Option func(*Equation)

// WithLogger sets the logger used for runtime read failures.
func WithLogger(l logger.Logger) Option {
	return func(e *Equation) {
		e.log = l
	}
}

// WithTimeout bounds each source read. Zero uses the group's tick interval.
func WithTimeout(d time.Duration) Option {
	return func(e *Equation) {
		e.timeout = d
	}
}

// WithHosts sets the registry used to resolve =key sources.
func WithHosts(r *hoststate.Registry) Option {
	return func(e *Equation) {
		e.hosts = r
	}
}

// WithSource replaces the source that would be built from the definition.
func WithSource(src Source) Option {
	return func(e *Equation) {
		e.source = src
	}
}

// New compiles def and opens its source. It returns a *SyntaxError for a
// malformed equation and a *hoststate.UnknownKeyError for an unknown =key.
func New(def Definition, group *Group, opts ...Option) (*Equation, error) {
	if group == nil {
		group = NewGroup(DefaultFilter, DefaultInterval)
	}

	e := &Equation{
		def:   def,
		group: group,
		log:   logger.NewEnvLogger("[eval]"),
	}
	for _, opt := range opts {
		opt(e)
	}

	prog, err := Compile(def.Equation)
	if err != nil {
		return nil, err
	}
	e.program = prog

	if e.source == nil {
		src, err := NewSource(def.Source, SourceOptions{Pattern: def.Pattern, Hosts: e.hosts})
		if err != nil {
			return nil, err
		}
		e.source = src
	}

	e.now = make([]float64, prog.Vars())
	e.last = make([]float64, prog.Vars())
	return e, nil
}

// Setup runs the first evaluation. It yields no value but proves the source
// can be read; a failing host-state query is reported here. Calling Setup is
// optional: Evaluate treats its first call the same way.
func (e *Equation) Setup(ctx context.Context) error {
	_, err := e.compute(ctx)
	e.pass = 1
	e.value = 0
	return err
}

// Evaluate produces the next value. Pass 0 yields 0, pass 1 the raw value,
// later passes prev + filter*(raw-prev). Failures, including a NaN or
// infinite result, yield 0 for that pass and reset the smoothing state.
func (e *Equation) Evaluate(ctx context.Context) float64 {
	raw, err := e.compute(ctx)
	pass := e.pass
	e.pass++

	if err == nil && (math.IsNaN(raw) || math.IsInf(raw, 0)) {
		err = fmt.Errorf("non-finite result %v", raw)
	}
	if err != nil {
		e.log.Debug("%s: %v", e.Name(), err)
		e.value = 0
		return 0
	}

	switch pass {
	case 0:
		e.value = 0
	case 1:
		e.value = raw
	default:
		e.value += e.group.Filter() * (raw - e.value)
	}
	return e.value
}

func (e *Equation) compute(ctx context.Context) (float64, error) {
	if n := e.program.Vars(); n > 0 {
		copy(e.last, e.now)
		if e.source != nil {
			if err := e.refresh(ctx, n); err != nil {
				return 0, err
			}
		}
	}

	f := frame{
		now:     e.now,
		last:    e.last,
		elapsed: e.group.Elapsed(),
		delta:   e.group.Delta(),
	}
	return e.program.run(&f), nil
}

func (e *Equation) refresh(ctx context.Context, n int) error {
	timeout := e.timeout
	if timeout <= 0 {
		timeout = e.group.Interval()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	vals, err := e.source.Fields(ctx, n)
	copy(e.now, vals)
	for i := len(vals); i < n; i++ {
		e.now[i] = 0
	}
	if err == nil {
		return nil
	}

	if s, ok := e.source.(interface{ strict() bool }); ok && s.strict() {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		e.log.Warn("%s: source %s timed out after %v", e.Name(), e.source, timeout)
	} else {
		e.log.Debug("%s: source %s: %v", e.Name(), e.source, err)
	}
	return nil
}

// Name identifies the equation in log messages.
func (e *Equation) Name() string {
	if e.source != nil {
		return e.program.String() + " <" + e.source.String() + ">"
	}
	return e.program.String()
}

// Definition returns what the equation was built from.
func (e *Equation) Definition() Definition { return e.def }

// Vars returns the number of fields read from the source.
func (e *Equation) Vars() int { return e.program.Vars() }

// Pass returns how many evaluations have run, counting setup.
func (e *Equation) Pass() int { return e.pass }

// Value returns the last value produced.
func (e *Equation) Value() float64 { return e.value }

// Fields returns a copy of the current field vector.
func (e *Equation) Fields() []float64 {
	out := make([]float64, len(e.now))
	copy(out, e.now)
	return out
}
