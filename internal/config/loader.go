package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/stripchart/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = "stripchart.yaml"
	// HomeConfigFile is the dotfile looked up in the home directory.
	HomeConfigFile = ".stripchart.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/stripchart"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'stripchart init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. stripchart.yaml in current directory
// 3. ~/.stripchart.yaml
// 4. ~/.config/stripchart/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	for _, candidate := range searchPath() {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// searchPath lists the implicit config locations in lookup order.
func searchPath() []string {
	var paths []string
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ConfigFileName))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		paths = append(paths,
			filepath.Join(home, HomeConfigFile),
			filepath.Join(home, GlobalConfigDir, GlobalConfigFile))
	}
	return paths
}

// LoadOrDefault loads config from the found path, or returns defaults if not
// found. The returned path is empty in the latter case.
func LoadOrDefault(explicit string) (*Config, string, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, "", err
	}

	if path == "" {
		return DefaultConfig(), "", nil
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	if cfg.Preferences.PointsInView <= 0 {
		cfg.Preferences.PointsInView = cfg.Preferences.HistorySize
	}

	for i := range cfg.Parameters {
		cfg.Parameters[i].Filename = ExpandTilde(cfg.Parameters[i].Filename)
	}

	return cfg, nil
}

// setDefaults registers defaults so that keys missing from the file still
// decode to usable values.
func setDefaults(v *viper.Viper) {
	d := DefaultPreferences()
	v.SetDefault("version", CurrentConfigVersion)
	v.SetDefault("preferences.interval", d.Interval.String())
	v.SetDefault("preferences.smoothing", d.Smoothing)
	v.SetDefault("preferences.history_size", d.HistorySize)
	v.SetDefault("preferences.points_in_view", 0)
	v.SetDefault("preferences.autorange", d.Autorange)
	v.SetDefault("preferences.source_timeout", "0s")
}
