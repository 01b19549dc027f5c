package cli

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/feed"
	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	serveAddr   string
	serveReplay int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Publish the sampled values as a live JSON feed",
	Long: `Sample every configured parameter and publish one JSON message per tick.

Endpoints:
  /ws        websocket stream; new clients first receive the recent ticks
  /snapshot  the latest tick as a single JSON document

Slow clients miss ticks rather than stalling the sampler.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serveCommand(ctx, cmd.OutOrStdout(), serveOptions{
			ConfigPath: cfgFile,
			Addr:       serveAddr,
			Replay:     serveReplay,
		})
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", feed.DefaultAddr, "address to listen on")
	serveCmd.Flags().IntVar(&serveReplay, "replay", feed.DefaultReplay, "ticks replayed to a newly connected client (0 for the default)")
	rootCmd.AddCommand(serveCmd)
}

// serveOptions control serveCommand.
type serveOptions struct {
	ConfigPath string
	Addr       string
	// Listener is used instead of Addr when set.
	Listener net.Listener
	Replay   int
	Hosts    *hoststate.Registry
}

// serveCommand runs the engine and the feed server until ctx is done.
func serveCommand(ctx context.Context, w io.Writer, opts serveOptions) error {
	if opts.Replay < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Invalid --replay %d", opts.Replay),
			"Use a positive number of ticks, or 0 for the default.")
	}

	s, err := openSession(ctx, sessionOptions{
		ConfigPath: opts.ConfigPath,
		Starter:    true,
		Warnings:   os.Stderr,
		Hosts:      opts.Hosts,
	})
	if err != nil {
		return err
	}

	ln := opts.Listener
	if ln == nil {
		ln, err = net.Listen("tcp", opts.Addr)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrFeed,
				"Cannot listen on "+opts.Addr,
				"Pick another address with --addr, or stop whatever is using this one.")
		}
	}

	log := logger.NewEnvLogger("[feed]")
	b := feed.NewBroadcaster(opts.Replay, log)
	srv := feed.NewServer(b, log)

	fmt.Fprintf(w, "Publishing %d parameters every %v on http://%s\n",
		s.engine.Chart().Len(), s.engine.Interval(), ln.Addr())

	g, ctx := errgroup.WithContext(ctx)
	s.start(ctx, g)
	g.Go(func() error {
		return b.Run(ctx, s.engine.Chart().Subscribe(ctx))
	})
	g.Go(func() error {
		return srv.Serve(ctx, ln)
	})
	return ignoreCanceled(g.Wait())
}
