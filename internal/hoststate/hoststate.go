// Package hoststate answers "=key" data-source queries with host metrics.
//
// Each query returns a short field vector, so an equation can pick values
// with $1, $2 and so on exactly as it would from a line of text:
//
//	=load          1, 5 and 15 minute load averages
//	=mem           total, used, free, available bytes and used percent
//	=swap          total, used, free bytes and used percent
//	=cpu           busy percent across all CPUs
//	=uptime        seconds since boot
//	=procs         running and blocked processes, context switches
//	=disk:/path    total, used, free bytes and used percent for a mount
package hoststate

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/disk"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
)

// Query fetches one metric. arg is the text after the first ':' in the key.
type Query func(ctx context.Context, arg string) ([]float64, error)

type entry struct {
	query       Query
	description string
	needsArg    bool
}

// Registry maps query names to implementations.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds or replaces a query.
func (r *Registry) Register(name, description string, needsArg bool, q Query) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[strings.ToLower(name)] = entry{query: q, description: description, needsArg: needsArg}
}

// UnknownKeyError is returned when a key names no registered query.
type UnknownKeyError struct {
	Key   string
	Known []string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown host-state key %q (known: %s)", e.Key, strings.Join(e.Known, ", "))
}

// Bound is a resolved query ready to run.
type Bound struct {
	Key   string
	name  string
	arg   string
	query Query
}

// Run executes the query.
func (b *Bound) Run(ctx context.Context) ([]float64, error) {
	vals, err := b.query(ctx, b.arg)
	if err != nil {
		return nil, fmt.Errorf("host-state %s: %w", b.Key, err)
	}
	return vals, nil
}

// Resolve parses "name" or "name:arg" and binds it to a registered query.
func (r *Registry) Resolve(key string) (*Bound, error) {
	key = strings.TrimSpace(key)
	name, arg, _ := strings.Cut(key, ":")
	name = strings.ToLower(name)

	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, &UnknownKeyError{Key: key, Known: r.Names()}
	}
	if e.needsArg && arg == "" {
		return nil, fmt.Errorf("host-state key %q needs an argument, e.g. %s:/", name, name)
	}

	return &Bound{Key: key, name: name, arg: arg, query: e.query}, nil
}

// Names returns the registered query names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entries))
	for n := range r.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Describe returns the help line for a query name.
func (r *Registry) Describe(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entries[strings.ToLower(name)].description
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the registry backed by gopsutil.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerSystem(defaultRegistry)
	})
	return defaultRegistry
}

func registerSystem(r *Registry) {
	r.Register("load", "1, 5 and 15 minute load averages", false, func(ctx context.Context, _ string) ([]float64, error) {
		avg, err := load.AvgWithContext(ctx)
		if err != nil {
			return nil, err
		}
		return []float64{avg.Load1, avg.Load5, avg.Load15}, nil
	})

	r.Register("mem", "total, used, free, available bytes and used percent", false, func(ctx context.Context, _ string) ([]float64, error) {
		vm, err := mem.VirtualMemoryWithContext(ctx)
		if err != nil {
			return nil, err
		}
		return []float64{
			float64(vm.Total),
			float64(vm.Used),
			float64(vm.Free),
			float64(vm.Available),
			vm.UsedPercent,
		}, nil
	})

	r.Register("swap", "total, used, free bytes and used percent", false, func(ctx context.Context, _ string) ([]float64, error) {
		sw, err := mem.SwapMemoryWithContext(ctx)
		if err != nil {
			return nil, err
		}
		return []float64{float64(sw.Total), float64(sw.Used), float64(sw.Free), sw.UsedPercent}, nil
	})

	r.Register("cpu", "busy percent across all CPUs since the previous read", false, func(ctx context.Context, _ string) ([]float64, error) {
		pct, err := cpu.PercentWithContext(ctx, 0, false)
		if err != nil {
			return nil, err
		}
		if len(pct) == 0 {
			return []float64{0}, nil
		}
		return []float64{pct[0]}, nil
	})

	r.Register("uptime", "seconds since boot", false, func(ctx context.Context, _ string) ([]float64, error) {
		up, err := host.UptimeWithContext(ctx)
		if err != nil {
			return nil, err
		}
		return []float64{float64(up)}, nil
	})

	r.Register("procs", "running and blocked processes, context switches", false, func(ctx context.Context, _ string) ([]float64, error) {
		misc, err := load.MiscWithContext(ctx)
		if err != nil {
			return nil, err
		}
		return []float64{float64(misc.ProcsRunning), float64(misc.ProcsBlocked), float64(misc.Ctxt)}, nil
	})

	r.Register("disk", "total, used, free bytes and used percent for a mount point", true, func(ctx context.Context, path string) ([]float64, error) {
		u, err := disk.UsageWithContext(ctx, path)
		if err != nil {
			return nil, err
		}
		return []float64{float64(u.Total), float64(u.Used), float64(u.Free), u.UsedPercent}, nil
	})
}
