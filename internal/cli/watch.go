package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rileyhilliard/stripchart/internal/config"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/rileyhilliard/stripchart/internal/monitor"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"
)

var watchPlain bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Show the configured parameters as live strip charts",
	Long: `Sample every configured parameter on the preferences interval and show
the traces in a full-screen dashboard.

Edits to the config file are picked up while running: preferences take
effect on the next tick. Without a config file the starter parameters
are shown.

When stdout is not a terminal, or with --plain, one line per tick is
written instead.

Keyboard shortcuts:
  ↑/k ↓/j   select parameter
  a         toggle autorange for the selected parameter
  d         deactivate the selected parameter
  + -       double or halve the interval
  ?         help
  q         quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		plain := watchPlain || !term.IsTerminal(int(os.Stdout.Fd()))
		return watchCommand(ctx, cmd.OutOrStdout(), plain)
	},
}

func init() {
	watchCmd.Flags().BoolVar(&watchPlain, "plain", false, "write one line per tick instead of the dashboard")
	rootCmd.AddCommand(watchCmd)
}

// watchCommand runs the engine and renders it until ctx is done or the
// dashboard quits.
func watchCommand(ctx context.Context, w io.Writer, plain bool) error {
	s, err := openSession(ctx, sessionOptions{
		ConfigPath: cfgFile,
		Starter:    true,
		Warnings:   os.Stderr,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	s.start(ctx, g)

	if plain {
		g.Go(func() error {
			return monitor.WritePlain(ctx, w, s.engine.Chart().Subscribe(ctx))
		})
		return ignoreCanceled(g.Wait())
	}

	// log lines would tear the alt screen
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(os.Stderr)

	p := tea.NewProgram(monitor.NewModel(ctx, s.engine), tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()
	cancel()

	if err := ignoreCanceled(g.Wait()); err != nil {
		return err
	}
	if errors.Is(runErr, tea.ErrProgramKilled) {
		return nil
	}
	return runErr
}

// start runs the engine and, when the session has a config file, reloads
// its preferences on change.
func (s *session) start(ctx context.Context, g *errgroup.Group) {
	g.Go(func() error {
		return s.engine.Run(ctx)
	})
	if s.path == "" {
		return
	}
	log := logger.NewEnvLogger("[config]")
	g.Go(func() error {
		return config.Watch(ctx, s.path, func(cfg *config.Config, err error) {
			if err != nil {
				log.Warn("reload of %s ignored: %v", s.path, err)
				return
			}
			if err := s.engine.ApplyPreferences(cfg.Preferences); err != nil {
				log.Warn("preferences not applied: %v", err)
				return
			}
			log.Info("reloaded %s", s.path)
		})
	})
}

// ignoreCanceled treats a canceled context as a clean stop.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
