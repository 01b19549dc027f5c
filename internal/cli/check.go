package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/rileyhilliard/stripchart/internal/chart"
	"github.com/rileyhilliard/stripchart/internal/config"
	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/rileyhilliard/stripchart/internal/strip"
	"github.com/rileyhilliard/stripchart/internal/ui"
	"github.com/spf13/cobra"
)

var checkSources bool

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the config and set up every parameter once",
	Long: `Load the config, validate it, and run the setup evaluation of every
parameter: equations are parsed and each data source gets its first read.
Rejected parameters are listed with the reason.

Exits non-zero when any parameter is rejected.

Examples:
  stripchart check
  stripchart check --config ./lab.yaml
  stripchart check --sources`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return checkCommand(cmd.Context(), cmd.OutOrStdout(), checkOptions{
			ConfigPath: cfgFile,
			Sources:    checkSources,
		})
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().BoolVar(&checkSources, "sources", false, "list the available =key host-state sources")
}

type checkOptions struct {
	ConfigPath string
	Sources    bool
	Hosts      *hoststate.Registry
}

func checkCommand(ctx context.Context, w io.Writer, opts checkOptions) error {
	hosts := opts.Hosts
	if hosts == nil {
		hosts = hoststate.Default()
	}
	if opts.Sources {
		fmt.Fprint(w, renderSources(hosts))
		return nil
	}

	cfg, path, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	fmt.Fprintln(w, ui.RenderHeader(ui.HeaderInfo{Version: formatVersion(version), Config: path}))

	engine, err := strip.New(strip.Options{
		Preferences: cfg.Preferences,
		Logger:      logger.NewEnvLogger("[check]"),
		Hosts:       hosts,
		Reporter:    func(string, error) {},
	})
	if err != nil {
		return err
	}

	p := cfg.Preferences
	rows := []ui.CheckRow{{
		Status:  "pass",
		Section: "Preferences",
		Message: fmt.Sprintf("every %v", p.Interval),
		Detail:  fmt.Sprintf("smoothing %g, history %d, autorange %s", p.Smoothing, p.HistorySize, p.Autorange),
	}}

	if len(cfg.Parameters) == 0 {
		rows = append(rows, ui.CheckRow{
			Status:  "warn",
			Section: "Parameters",
			Message: "No parameters configured",
			Detail:  "Run 'stripchart init' to write a starter config.",
		})
	}

	failed := 0
	for _, desc := range cfg.Parameters {
		row := ui.CheckRow{Section: "Parameters", Message: desc.Name}
		param, err := engine.AddParameter(ctx, desc)
		if err != nil {
			failed++
			row.Status = "fail"
			row.Detail = summary(err)
			rows = append(rows, row)
			continue
		}
		row.Status = "pass"
		if eq, ok := engine.Equation(param); ok {
			row.Detail = "= " + chart.FormatValue(eq.Evaluate(ctx))
		}
		rows = append(rows, row)
	}

	fmt.Fprint(w, ui.RenderCheckTable(rows))

	if failed > 0 {
		fmt.Fprintf(w, "%s %d of %d parameters rejected\n",
			ui.ErrorStyle().Render(ui.SymbolFail), failed, len(cfg.Parameters))
		return errors.NewExitError(1)
	}
	fmt.Fprintf(w, "%s %d parameters ready\n", ui.SuccessStyle().Render(ui.SymbolSuccess), len(cfg.Parameters))
	return nil
}

// renderSources lists the host-state keys usable as "=key" sources.
func renderSources(hosts *hoststate.Registry) string {
	names := hosts.Names()
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{"=" + n, hosts.Describe(n)})
	}
	if len(rows) == 0 {
		return "No host-state sources available\n"
	}
	return ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "Source", Width: 14},
		{Title: "Fields", Width: 60},
	}, rows) + "\n"
}
