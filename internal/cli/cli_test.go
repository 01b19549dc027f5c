package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/stripchart/internal/hoststate"
	"github.com/rileyhilliard/stripchart/internal/logger"
	"github.com/stretchr/testify/require"
)

// writeConfig writes body as a stripchart.yaml in a temp dir.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stripchart.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// writeSource writes a one-line data source.
func writeSource(t *testing.T, line string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source")
	require.NoError(t, os.WriteFile(path, []byte(line+"\n"), 0644))
	return path
}

// fixedHosts has a single "answer" key returning 42.
func fixedHosts() *hoststate.Registry {
	r := hoststate.NewRegistry()
	r.Register("answer", "the answer", false, func(context.Context, string) ([]float64, error) {
		return []float64{42}, nil
	})
	return r
}

func quietLogger() logger.Logger { return logger.Noop() }
