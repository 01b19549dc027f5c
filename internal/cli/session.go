package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rileyhilliard/stripchart/internal/config"
	scerrors "github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/rileyhilliard/stripchart/internal/strip"
	"github.com/rileyhilliard/stripchart/internal/ui"
)

// session is a loaded config with an engine holding its parameters.
type session struct {
	cfg    *config.Config
	path   string
	engine *strip.Engine

	mu       sync.Mutex
	rejected map[string]error
}

// sessionOptions control openSession.
type sessionOptions struct {
	// ConfigPath is the --config value; empty searches the usual places.
	ConfigPath string
	// Starter falls back to the starter parameters when no config is found.
	Starter bool
	// Warnings receives one line per rejected parameter. Nil discards them.
	Warnings io.Writer
	Logger   logger.Logger
	// Hosts overrides the gopsutil-backed host-state registry.
	Hosts *hoststate.Registry
}

// openSession loads and validates the config, builds an engine and adds
// every parameter to it. Rejected parameters are recorded, not fatal.
func openSession(ctx context.Context, opts sessionOptions) (*session, error) {
	cfg, path, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if path == "" && opts.Starter {
		cfg = config.StarterConfig()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	warnings := opts.Warnings
	if warnings == nil {
		warnings = io.Discard
	}
	if path == "" {
		ui.Warn(warnings, "No %s found, proceeding with built-in defaults", config.ConfigFileName)
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewEnvLogger("[strip]")
	}

	s := &session{cfg: cfg, path: path, rejected: make(map[string]error)}
	engine, err := strip.New(strip.Options{
		Preferences: cfg.Preferences,
		Logger:      log,
		Hosts:       opts.Hosts,
		Reporter: func(name string, err error) {
			s.mu.Lock()
			s.rejected[name] = err
			s.mu.Unlock()
			ui.Warn(warnings, "parameter %q rejected: %s", name, summary(err))
		},
	})
	if err != nil {
		return nil, err
	}
	s.engine = engine

	// rejects went through the reporter
	_, _ = engine.Load(ctx, cfg)

	if len(cfg.Parameters) > 0 && engine.Chart().Len() == 0 {
		return nil, scerrors.New(scerrors.ErrConfig,
			"None of the configured parameters could be set up",
			"Run 'stripchart check' to see why each one was rejected.")
	}
	return s, nil
}

// rejection returns the setup error of a rejected parameter, nil if it was
// accepted.
func (s *session) rejection(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rejected[name]
}

// summary flattens a structured error onto one line.
func summary(err error) string {
	var e *scerrors.Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %s", e.Message, strings.TrimSpace(e.Cause.Error()))
		}
		return e.Message
	}
	return err.Error()
}
