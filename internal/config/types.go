package config

import "time"

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete stripchart.yaml configuration file.
type Config struct {
	Version     int           `yaml:"version" mapstructure:"version"`
	Preferences Preferences   `yaml:"preferences" mapstructure:"preferences"`
	Parameters  []ParamConfig `yaml:"parameters" mapstructure:"parameters"`
}

// Preferences control the sampling loop shared by every parameter.
type Preferences struct {
	// Interval between ticks.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Smoothing is the filter coefficient in [0,1]. 1 disables smoothing.
	Smoothing float64 `yaml:"smoothing" mapstructure:"smoothing"`

	// HistorySize is the number of samples kept per parameter.
	HistorySize int `yaml:"history_size" mapstructure:"history_size"`

	// PointsInView is the autorange window. Defaults to HistorySize.
	PointsInView int `yaml:"points_in_view" mapstructure:"points_in_view"`

	// Autorange names the bound quantization: "auto", "125" or "pow2".
	Autorange string `yaml:"autorange" mapstructure:"autorange"`

	// SourceTimeout caps one file or command read. Zero uses Interval.
	SourceTimeout time.Duration `yaml:"source_timeout" mapstructure:"source_timeout"`
}

// ParamConfig describes one traced parameter.
type ParamConfig struct {
	Name        string `yaml:"name" mapstructure:"name"`
	Description string `yaml:"description,omitempty" mapstructure:"description"`

	// Equation over the source fields. Empty means "$1".
	Equation string `yaml:"equation,omitempty" mapstructure:"equation"`

	// Filename is the data source: a path, "|command", "?path" or "=key".
	// $NAME environment references are expanded once at setup.
	Filename string `yaml:"filename,omitempty" mapstructure:"filename"`

	// Pattern selects the first source line containing it.
	Pattern string `yaml:"pattern,omitempty" mapstructure:"pattern"`

	// Range limits are strings so that blank means unbounded.
	TopMin string `yaml:"top_min,omitempty" mapstructure:"top_min"`
	TopMax string `yaml:"top_max,omitempty" mapstructure:"top_max"`
	BotMin string `yaml:"bot_min,omitempty" mapstructure:"bot_min"`
	BotMax string `yaml:"bot_max,omitempty" mapstructure:"bot_max"`

	// Scale is "linear" or "log".
	Scale string `yaml:"scale,omitempty" mapstructure:"scale"`

	// Plot is "point", "line", "solid" or "indicator".
	Plot string `yaml:"plot,omitempty" mapstructure:"plot"`

	Color string `yaml:"color,omitempty" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults and no parameters.
func DefaultConfig() *Config {
	return &Config{
		Version:     CurrentConfigVersion,
		Preferences: DefaultPreferences(),
		Parameters:  []ParamConfig{},
	}
}

// DefaultPreferences returns the stock sampling preferences.
func DefaultPreferences() Preferences {
	return Preferences{
		Interval:     5 * time.Second,
		Smoothing:    0.5,
		HistorySize:  600,
		PointsInView: 600,
		Autorange:    "auto",
	}
}

// StarterConfig is what "stripchart init" writes.
func StarterConfig() *Config {
	cfg := DefaultConfig()
	cfg.Preferences.Interval = time.Second
	cfg.Parameters = []ParamConfig{
		{
			Name:        "load",
			Description: "1-minute load average",
			Equation:    "$1",
			Filename:    "=load",
			TopMin:      "1",
			BotMax:      "0",
			Color:       "#39FF14",
		},
		{
			Name:        "mem",
			Description: "Memory in use (%)",
			Equation:    "$5",
			Filename:    "=mem",
			TopMin:      "100",
			TopMax:      "100",
			BotMin:      "0",
			BotMax:      "0",
			Plot:        "solid",
			Color:       "#00D7FF",
		},
		{
			Name:        "ctxsw",
			Description: "Context switches per second",
			Equation:    "~3 / ~t",
			Filename:    "=procs",
			TopMin:      "100",
			BotMax:      "0",
			Color:       "#FFAF00",
		},
	}
	return cfg
}
