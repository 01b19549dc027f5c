// Package strip assembles the pieces of a running strip chart: it turns
// parameter descriptors into compiled equations, adds them to a chart and
// drives the chart from a scheduler.
package strip

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/chart"
	"github.com/rileyhilliard/stripchart/internal/config"
	scerrors "github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/eval"
	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
)

// Reporter receives setup failures. It is called once per rejected
// parameter, in addition to the error being returned.
type Reporter func(name string, err error)

// Options configure an Engine.
type Options struct {
	Preferences config.Preferences
	Logger      logger.Logger
	Hosts       *hoststate.Registry
	Reporter    Reporter
	// Clock replaces time.Now for the $t and ~t variables.
	Clock func() time.Time
}

// Engine owns one chart, the evaluation group shared by its equations and
// the scheduler that ticks it.
type Engine struct {
	chart *chart.Chart
	group *eval.Group
	sched *chart.Scheduler
	hosts *hoststate.Registry
	log   logger.Logger

	report Reporter

	mu          sync.Mutex
	timeout     time.Duration
	historySize int
	equations   map[*chart.Param]*eval.Equation
}

// New builds an engine from preferences. Zero preferences fall back to the
// defaults.
func New(opts Options) (*Engine, error) {
	prefs := withDefaults(opts.Preferences)
	if err := config.ValidatePreferences(prefs); err != nil {
		return nil, scerrors.WrapWithCode(err, scerrors.ErrConfig,
			"Invalid preferences", "Check the 'preferences' section in your stripchart.yaml.")
	}
	policy, _ := autorange.ParsePolicy(prefs.Autorange)

	log := opts.Logger
	if log == nil {
		log = logger.NewEnvLogger("[strip]")
	}
	hosts := opts.Hosts
	if hosts == nil {
		hosts = hoststate.Default()
	}

	var gopts []eval.GroupOption
	if opts.Clock != nil {
		gopts = append(gopts, eval.WithClock(opts.Clock))
	}
	group := eval.NewGroup(prefs.Smoothing, prefs.Interval, gopts...)

	c := chart.New(chart.Options{
		HistorySize:  prefs.HistorySize,
		PointsInView: prefs.PointsInView,
		Policy:       policy,
		Logger:       log,
	})
	sched, err := chart.NewScheduler(c, prefs.Interval)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		chart:       c,
		group:       group,
		sched:       sched,
		hosts:       hosts,
		log:         log,
		report:      opts.Reporter,
		timeout:     prefs.SourceTimeout,
		historySize: prefs.HistorySize,
		equations:   make(map[*chart.Param]*eval.Equation),
	}
	if e.report == nil {
		e.report = func(name string, err error) {
			log.Error("parameter %q rejected: %v", name, err)
		}
	}

	c.On(chart.PreUpdate, func(*chart.Chart) { group.Advance() })
	c.On(chart.PostUpdate, e.forgetRemoved)
	return e, nil
}

func withDefaults(p config.Preferences) config.Preferences {
	d := config.DefaultPreferences()
	if p == (config.Preferences{}) {
		return d
	}
	if p.Interval == 0 {
		p.Interval = d.Interval
	}
	if p.HistorySize == 0 {
		p.HistorySize = d.HistorySize
	}
	if p.PointsInView == 0 {
		p.PointsInView = p.HistorySize
	}
	if p.Autorange == "" {
		p.Autorange = d.Autorange
	}
	return p
}

// Chart returns the chart the engine drives.
func (e *Engine) Chart() *chart.Chart { return e.chart }

// Group returns the evaluation group shared by every equation.
func (e *Engine) Group() *eval.Group { return e.group }

// Hosts returns the registry used for =key sources.
func (e *Engine) Hosts() *hoststate.Registry { return e.hosts }

// AddParameter compiles desc, runs its setup evaluation and starts tracing
// it. Nothing is added when setup fails; the error is reported and returned
// as an *errors.Error with code EVAL for a bad equation or SOURCE for a bad
// data source.
func (e *Engine) AddParameter(ctx context.Context, desc config.ParamConfig) (*chart.Param, error) {
	eq, err := e.compile(ctx, desc)
	if err != nil {
		e.report(desc.Name, err)
		return nil, err
	}

	e.mu.Lock()
	size := e.historySize
	e.mu.Unlock()

	plot := chart.ParsePlotStyle(desc.Plot)
	p := e.chart.Add(chart.ParamConfig{
		Name:        desc.Name,
		Description: desc.Description,
		Color:       desc.Color,
		Limits:      desc.Limits(),
		Autorange:   plot != chart.PlotIndicator,
		Plot:        plot,
		Scale:       chart.ParseScaleStyle(desc.Scale),
		HistorySize: size,
	}, eq.Evaluate)

	e.mu.Lock()
	e.equations[p] = eq
	e.mu.Unlock()

	e.log.Debug("tracing %q: %s", desc.Name, eq.Name())
	return p, nil
}

func (e *Engine) compile(ctx context.Context, desc config.ParamConfig) (*eval.Equation, error) {
	e.mu.Lock()
	timeout := e.timeout
	e.mu.Unlock()

	def := eval.Definition{
		Equation: desc.Equation,
		Source:   config.ExpandEnv(desc.Filename),
		Pattern:  desc.Pattern,
	}
	eq, err := eval.New(def, e.group,
		eval.WithLogger(e.log),
		eval.WithTimeout(timeout),
		eval.WithHosts(e.hosts))
	if err != nil {
		var syn *eval.SyntaxError
		if errors.As(err, &syn) {
			return nil, scerrors.WrapWithCode(err, scerrors.ErrEval,
				fmt.Sprintf("Equation for '%s' does not parse", desc.Name),
				"Equations use $N and ~N fields, $t and ~t, numbers, + - * / % and parentheses.")
		}
		var unknown *hoststate.UnknownKeyError
		if errors.As(err, &unknown) {
			return nil, scerrors.WrapWithCode(err, scerrors.ErrSource,
				fmt.Sprintf("Unknown host-state source for '%s'", desc.Name),
				"Run 'stripchart check --sources' to list the available =keys.")
		}
		return nil, scerrors.WrapWithCode(err, scerrors.ErrSource,
			fmt.Sprintf("Cannot open source for '%s'", desc.Name),
			"Check the 'filename' of this parameter.")
	}

	if err := eq.Setup(ctx); err != nil {
		return nil, scerrors.WrapWithCode(err, scerrors.ErrSource,
			fmt.Sprintf("Source for '%s' failed its first read", desc.Name),
			"Check the 'filename' of this parameter.")
	}
	return eq, nil
}

// Load adds every parameter in cfg. Rejected parameters are reported and
// skipped; their errors are returned joined.
func (e *Engine) Load(ctx context.Context, cfg *config.Config) ([]*chart.Param, error) {
	var added []*chart.Param
	var errs []error
	for _, desc := range cfg.Parameters {
		p, err := e.AddParameter(ctx, desc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		added = append(added, p)
	}
	return added, errors.Join(errs...)
}

// Equation returns the compiled equation behind p.
func (e *Engine) Equation(p *chart.Param) (*eval.Equation, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	eq, ok := e.equations[p]
	return eq, ok
}

// forgetRemoved drops equations whose parameters have aged out of the chart.
func (e *Engine) forgetRemoved(c *chart.Chart) {
	live := make(map[*chart.Param]bool)
	for _, p := range c.Params() {
		live[p] = true
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	for p := range e.equations {
		if !live[p] {
			delete(e.equations, p)
		}
	}
}

// Interval returns the tick period.
func (e *Engine) Interval() time.Duration { return e.sched.Interval() }

// SetInterval changes the tick period of both the scheduler and the group.
func (e *Engine) SetInterval(d time.Duration) error {
	if err := e.group.SetInterval(d); err != nil {
		return err
	}
	return e.sched.SetInterval(d)
}

// ApplyPreferences applies changed preferences to a running engine. The
// interval, smoothing, autorange policy and window take effect on the next
// tick. History size and source timeout apply to parameters added later.
func (e *Engine) ApplyPreferences(p config.Preferences) error {
	p = withDefaults(p)
	if err := config.ValidatePreferences(p); err != nil {
		return scerrors.WrapWithCode(err, scerrors.ErrConfig,
			"Invalid preferences", "Check the 'preferences' section in your stripchart.yaml.")
	}
	policy, _ := autorange.ParsePolicy(p.Autorange)

	if err := e.SetInterval(p.Interval); err != nil {
		return err
	}
	if err := e.group.SetFilter(p.Smoothing); err != nil {
		return err
	}
	e.chart.SetPolicy(policy)
	e.chart.SetPointsInView(p.PointsInView)

	e.mu.Lock()
	e.timeout = p.SourceTimeout
	e.historySize = p.HistorySize
	e.mu.Unlock()

	e.log.Info("preferences applied: interval %v, smoothing %v, autorange %s", p.Interval, p.Smoothing, policy)
	return nil
}

// Run ticks the chart until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	e.log.Debug("running %d parameters every %v", e.chart.Len(), e.Interval())
	return e.sched.Run(ctx)
}
