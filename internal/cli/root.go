package cli

import (
	"fmt"
	"os"

	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/rileyhilliard/stripchart/internal/ui"
	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "stripchart",
	Short: "Scrolling strip charts of system and file-derived values",
	Long: `stripchart samples a set of parameters on a fixed interval and plots
their recent history as scrolling strip charts.

Each parameter is an arithmetic equation over fields read from a file, a
command, a file's status or a host-state source, with time and per-second
rate variables. The vertical axis of every trace follows its data within
configurable hard limits.

Examples:
  stripchart init
  stripchart watch
  stripchart eval '~3 / ~t' --source '=procs' -n 5
  stripchart serve --addr 127.0.0.1:8437`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor || os.Getenv("NO_COLOR") != "" {
			ui.DisableColors()
		}
		if verbose {
			os.Setenv(logger.DebugEnv, "1")
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: search ./stripchart.yaml, ~/.stripchart.yaml, ~/.config/stripchart/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// commands returning an ExitError have already printed their report
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
