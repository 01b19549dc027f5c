package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which needs Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, 5*time.Second, cfg.Preferences.Interval)
	assert.Equal(t, 0.5, cfg.Preferences.Smoothing)
	assert.Equal(t, 600, cfg.Preferences.HistorySize)
	assert.Equal(t, 600, cfg.Preferences.PointsInView)
	assert.Equal(t, "auto", cfg.Preferences.Autorange)
	assert.Empty(t, cfg.Parameters)
	assert.NoError(t, Validate(cfg))
}

func TestStarterConfigIsValid(t *testing.T) {
	cfg := StarterConfig()
	require.NotEmpty(t, cfg.Parameters)
	assert.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, `
version: 1
preferences:
  interval: 2s
  smoothing: 0.25
  history_size: 120
  autorange: pow2
  source_timeout: 500ms
parameters:
  - name: load
    description: 1-minute load average
    equation: "$1"
    filename: /proc/loadavg
    top_min: 1
    bot_max: "0"
  - name: eth0
    equation: "~1 / ~t"
    filename: /proc/net/dev
    pattern: "eth0:"
    plot: solid
    scale: log
    color: "#FF0000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))

	assert.Equal(t, 2*time.Second, cfg.Preferences.Interval)
	assert.Equal(t, 0.25, cfg.Preferences.Smoothing)
	assert.Equal(t, 120, cfg.Preferences.HistorySize)
	// points_in_view follows history_size when unset
	assert.Equal(t, 120, cfg.Preferences.PointsInView)
	assert.Equal(t, "pow2", cfg.Preferences.Autorange)
	assert.Equal(t, 500*time.Millisecond, cfg.Preferences.SourceTimeout)

	require.Len(t, cfg.Parameters, 2)
	load := cfg.Parameters[0]
	assert.Equal(t, "load", load.Name)
	assert.Equal(t, "$1", load.Equation)
	assert.Equal(t, "/proc/loadavg", load.Filename)
	assert.Equal(t, "1", load.TopMin)
	assert.Equal(t, "0", load.BotMax)

	eth := cfg.Parameters[1]
	assert.Equal(t, "eth0:", eth.Pattern)
	assert.Equal(t, "solid", eth.Plot)
	assert.Equal(t, "log", eth.Scale)
	assert.Equal(t, "#FF0000", eth.Color)
}

func TestLoadAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, `
parameters:
  - name: only
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, 5*time.Second, cfg.Preferences.Interval)
	assert.Equal(t, 0.5, cfg.Preferences.Smoothing)
	assert.Equal(t, 600, cfg.Preferences.PointsInView)
	require.Len(t, cfg.Parameters, 1)
}

func TestLoadExpandsTildeInFilename(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, `
parameters:
  - name: x
    filename: ~/data.txt
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data.txt"), cfg.Parameters[0].Filename)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/stripchart.yaml")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, ConfigFileName, "parameters: [unterminated")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Failed to read config file")
}

func TestFind(t *testing.T) {
	t.Run("explicit path exists", func(t *testing.T) {
		path := writeConfig(t, t.TempDir(), "custom.yaml", "version: 1")
		got, err := Find(path)
		require.NoError(t, err)
		assert.Equal(t, path, got)
	})

	t.Run("explicit path not found", func(t *testing.T) {
		_, err := Find("/nonexistent/config.yaml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Specified config file not found")
	})

	t.Run("current directory wins over home", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		writeConfig(t, home, HomeConfigFile, "version: 1")

		dir := t.TempDir()
		local := writeConfig(t, dir, ConfigFileName, "version: 1")
		chdir(t, dir)

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, filepath.Base(local), filepath.Base(got))
		assert.NotEqual(t, filepath.Join(home, HomeConfigFile), got)
	})

	t.Run("home dotfile before global dir", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		require.NoError(t, os.MkdirAll(filepath.Join(home, GlobalConfigDir), 0755))
		writeConfig(t, filepath.Join(home, GlobalConfigDir), GlobalConfigFile, "version: 1")
		dot := writeConfig(t, home, HomeConfigFile, "version: 1")
		chdir(t, t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, dot, got)
	})

	t.Run("global dir", func(t *testing.T) {
		home := t.TempDir()
		t.Setenv("HOME", home)
		require.NoError(t, os.MkdirAll(filepath.Join(home, GlobalConfigDir), 0755))
		global := writeConfig(t, filepath.Join(home, GlobalConfigDir), GlobalConfigFile, "version: 1")
		chdir(t, t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Equal(t, global, got)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		chdir(t, t.TempDir())

		got, err := Find("")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestLoadOrDefault(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdir(t, t.TempDir())

	cfg, path, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Empty(t, cfg.Parameters)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := DefaultConfig()
		cfg.Parameters = []ParamConfig{{Name: "a", Equation: "$1", Filename: "/proc/loadavg"}}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{
			name:    "future version",
			mutate:  func(c *Config) { c.Version = CurrentConfigVersion + 1 },
			wantErr: "from the future",
		},
		{
			name:    "zero interval",
			mutate:  func(c *Config) { c.Preferences.Interval = 0 },
			wantErr: "interval must be positive",
		},
		{
			name:    "smoothing above one",
			mutate:  func(c *Config) { c.Preferences.Smoothing = 1.5 },
			wantErr: "smoothing must be between 0 and 1",
		},
		{
			name:    "smoothing NaN",
			mutate:  func(c *Config) { c.Preferences.Smoothing = math.NaN() },
			wantErr: "smoothing must be between 0 and 1",
		},
		{
			name:    "zero history",
			mutate:  func(c *Config) { c.Preferences.HistorySize = 0 },
			wantErr: "history_size must be positive",
		},
		{
			name:    "unknown autorange policy",
			mutate:  func(c *Config) { c.Preferences.Autorange = "cubic" },
			wantErr: "unknown autorange policy",
		},
		{
			name:    "missing name",
			mutate:  func(c *Config) { c.Parameters = append(c.Parameters, ParamConfig{}) },
			wantErr: "Parameter #2 has no name",
		},
		{
			name:    "duplicate name",
			mutate:  func(c *Config) { c.Parameters = append(c.Parameters, ParamConfig{Name: "a"}) },
			wantErr: "defined more than once",
		},
		{
			name:    "unknown plot",
			mutate:  func(c *Config) { c.Parameters[0].Plot = "bar" },
			wantErr: "unknown plot style",
		},
		{
			name:    "unknown scale",
			mutate:  func(c *Config) { c.Parameters[0].Scale = "cubic" },
			wantErr: "unknown scale",
		},
		{
			name: "inverted top limits",
			mutate: func(c *Config) {
				c.Parameters[0].TopMin = "10"
				c.Parameters[0].TopMax = "5"
			},
			wantErr: "top_min 10 above top_max 5",
		},
		{
			name:   "mixed case styles",
			mutate: func(c *Config) { c.Parameters[0].Plot = "Indicator"; c.Parameters[0].Scale = "LOG" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseLimit(t *testing.T) {
	inf := math.Inf(1)
	tests := []struct {
		in       string
		fallback float64
		want     float64
	}{
		{"", inf, inf},
		{"   ", -inf, -inf},
		{"42", inf, 42},
		{" -1.5e3 ", inf, -1500},
		{"abc", inf, inf},
		{"NaN", -inf, -inf},
		{"-Inf", 0, math.Inf(-1)},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLimit(tt.in, tt.fallback), "ParseLimit(%q)", tt.in)
	}
}

func TestParamLimits(t *testing.T) {
	p := ParamConfig{TopMin: "1", BotMax: "0"}
	lim := p.Limits()
	assert.Equal(t, autorange.Limits{
		TopMin: 1,
		TopMax: math.Inf(1),
		BotMin: math.Inf(-1),
		BotMax: 0,
	}, lim)

	assert.Equal(t, autorange.Unbounded(), ParamConfig{}.Limits())
}
