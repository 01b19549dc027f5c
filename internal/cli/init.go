package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rileyhilliard/stripchart/internal/config"
	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/rileyhilliard/stripchart/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter stripchart.yaml in the current directory",
	Long: `Write a stripchart.yaml with three starter parameters: the load average,
memory in use and the context-switch rate. Edit it to trace your own
files and commands.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return initCommand(cmd.OutOrStdout(), ".", initForce)
	},
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing config file")
	rootCmd.AddCommand(initCmd)
}

const starterHeader = `# stripchart configuration
# Run 'stripchart check' to validate it and 'stripchart watch' to see the traces.
#
# Sources: a file path, "|command", "?path" (file status) or "=key" (host state;
# 'stripchart check --sources' lists the keys). Equations use $N for field N,
# ~N for its per-second rate, and t/~t for time and the interval.

`

// initCommand writes the starter config into dir.
func initCommand(w io.Writer, dir string, force bool) error {
	configPath := filepath.Join(dir, config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config file already exists: %s", configPath),
			"Use --force to overwrite")
	}

	data, err := yaml.Marshal(config.StarterConfig())
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if err := os.WriteFile(configPath, []byte(starterHeader+string(data)), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Failed to write config file: %s", configPath),
			"Check directory permissions")
	}

	fmt.Fprintf(w, "%s Created %s\n\n", ui.SymbolSuccess, configPath)
	fmt.Fprintln(w, "Next steps:")
	fmt.Fprintln(w, "  stripchart check   - Validate every parameter")
	fmt.Fprintln(w, "  stripchart watch   - Show the live strip charts")
	fmt.Fprintln(w, "  stripchart serve   - Publish a live JSON feed")
	return nil
}
