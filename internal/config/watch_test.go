package config

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, "preferences:\n  interval: 1s\n")

	type result struct {
		cfg *Config
		err error
	}
	results := make(chan result, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(cfg *Config, err error) {
			select {
			case results <- result{cfg, err}:
			default:
			}
		})
	}()

	// the watcher registers asynchronously and a write may be observed
	// half-done, so keep rewriting until the new interval shows up
	deadline := time.After(5 * time.Second)
	var got result
	for got.cfg == nil || got.cfg.Preferences.Interval != 3*time.Second {
		require.NoError(t, os.WriteFile(path, []byte("preferences:\n  interval: 3s\n"), 0644))
		select {
		case got = <-results:
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no reload observed")
		}
	}
	assert.NoError(t, got.err)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchReportsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, "preferences:\n  interval: 1s\n")

	errs := make(chan error, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = Watch(ctx, path, func(cfg *Config, err error) {
			if err == nil {
				return
			}
			select {
			case errs <- err:
			default:
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		require.NoError(t, os.WriteFile(path, []byte("preferences:\n  smoothing: 7\n"), 0644))
		select {
		case err := <-errs:
			if strings.Contains(err.Error(), "smoothing") {
				return
			}
		case <-time.After(50 * time.Millisecond):
		case <-deadline:
			t.Fatal("no validation error reported")
		}
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	err := Watch(context.Background(), "/nonexistent/dir/stripchart.yaml", func(*Config, error) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Cannot watch config directory")
}
