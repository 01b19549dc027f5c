package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rileyhilliard/stripchart/internal/config"
	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/rileyhilliard/stripchart/internal/strip"
	"github.com/spf13/cobra"
)

// Eval command flags
var (
	evalSource   string
	evalPattern  string
	evalCount    int
	evalInterval time.Duration
)

var evalCmd = &cobra.Command{
	Use:   "eval EQUATION",
	Short: "Evaluate an equation and print its values",
	Long: `Evaluate one equation the way a chart parameter would be evaluated and
print one value per line. The source is read before every evaluation, and
time and rate variables advance between evaluations.

Sources:
  /path/to/file   first line, or the first line containing --pattern
  |command args   first line of a command's output, same --pattern rule
  ?/path          file status in $1: -1 missing, 0 empty, 1 read since its
                  last change, 2 changed since it was last read
  =key            host-state query (see 'stripchart check --sources')

Examples:
  stripchart eval '2 * (3 + 4)'
  stripchart eval '$1' --source /proc/loadavg
  stripchart eval '~3 / ~t' --source '=procs' -n 5 --interval 1s
  stripchart eval '$2' --source '|df -k /' --pattern /dev`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return evalCommand(cmd.Context(), cmd.OutOrStdout(), evalOptions{
			Equation: args[0],
			Source:   evalSource,
			Pattern:  evalPattern,
			Count:    evalCount,
			Interval: evalInterval,
		})
	},
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringVarP(&evalSource, "source", "s", "", "data source for $N and ~N fields")
	evalCmd.Flags().StringVarP(&evalPattern, "pattern", "p", "", "substring selecting the source line")
	evalCmd.Flags().IntVarP(&evalCount, "count", "n", 1, "number of evaluations")
	evalCmd.Flags().DurationVar(&evalInterval, "interval", time.Second, "time between evaluations")
}

type evalOptions struct {
	Equation string
	Source   string
	Pattern  string
	Count    int
	Interval time.Duration
	Hosts    *hoststate.Registry
	// Clock replaces time.Now for the time variables.
	Clock func() time.Time
}

func evalCommand(ctx context.Context, w io.Writer, opts evalOptions) error {
	if opts.Count < 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--count must be at least 1, got %d", opts.Count),
			"Pass -n 1 for a single evaluation.")
	}
	if opts.Interval <= 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("--interval must be positive, got %v", opts.Interval),
			"Try something like 1s or 500ms.")
	}

	prefs := config.DefaultPreferences()
	prefs.Interval = opts.Interval

	engine, err := strip.New(strip.Options{
		Preferences: prefs,
		Logger:      logger.NewEnvLogger("[eval]"),
		Hosts:       opts.Hosts,
		Reporter:    func(string, error) {},
		Clock:       opts.Clock,
	})
	if err != nil {
		return err
	}

	param, err := engine.AddParameter(ctx, config.ParamConfig{
		Name:     "eval",
		Equation: opts.Equation,
		Filename: opts.Source,
		Pattern:  opts.Pattern,
	})
	if err != nil {
		return err
	}
	eq, _ := engine.Equation(param)

	for i := 0; i < opts.Count; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(opts.Interval):
			}
		}
		engine.Group().Advance()
		fmt.Fprintf(w, "%g\n", eq.Evaluate(ctx))
	}
	return nil
}
