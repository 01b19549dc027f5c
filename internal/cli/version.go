package cli

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
)

// Set via -ldflags "-X main.version=..." and passed in by SetVersionInfo.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionShort bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of stripchart.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout(), versionShort)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

func printVersion(w io.Writer, short bool) {
	if short {
		fmt.Fprintln(w, version)
		return
	}

	fmt.Fprintf(w, "stripchart %s\n", formatVersion(version))
	for _, field := range [][2]string{
		{"commit", commit},
		{"built", date},
		{"go", runtime.Version()},
		{"os/arch", runtime.GOOS + "/" + runtime.GOARCH},
	} {
		fmt.Fprintf(w, "%s: %s\n", field[0], field[1])
	}
}

// formatVersion adds the 'v' prefix to release versions. Development builds
// are shown as-is.
func formatVersion(v string) string {
	if v == "" || v == "dev" || strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// SetVersionInfo records the ldflags values passed to main.
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
