package config

import (
	"fmt"
	"math"
	"strings"

	"github.com/rileyhilliard/stripchart/internal/autorange"
	"github.com/rileyhilliard/stripchart/internal/errors"
)

var (
	validPlots  = []string{"", "point", "line", "solid", "indicator"}
	validScales = []string{"", "linear", "log"}
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New(errors.ErrConfig,
			"Config is nil",
			"This is unexpected - try reloading the configuration.")
	}

	if cfg.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("This config is from the future (version %d, but stripchart only knows up to %d)", cfg.Version, CurrentConfigVersion),
			"Upgrade stripchart, or lower 'version' if the file does not use newer keys.")
	}

	if err := ValidatePreferences(cfg.Preferences); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, err.Error(), "Check the 'preferences' section in your stripchart.yaml.")
	}

	seen := make(map[string]bool, len(cfg.Parameters))
	for i, p := range cfg.Parameters {
		name := strings.TrimSpace(p.Name)
		if name == "" {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Parameter #%d has no name", i+1),
				"Give every entry under 'parameters' a 'name'.")
		}
		if seen[name] {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Parameter '%s' is defined more than once", name),
				"Parameter names must be unique - rename one of them.")
		}
		seen[name] = true

		if err := validateParam(p); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, err.Error(),
				fmt.Sprintf("Check parameter '%s' in your stripchart.yaml.", name))
		}
	}

	return nil
}

// ValidatePreferences checks the sampling preferences on their own. Used when
// a watched config changes and only preferences are re-applied.
func ValidatePreferences(p Preferences) error {
	if p.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %v", p.Interval)
	}
	if math.IsNaN(p.Smoothing) || p.Smoothing < 0 || p.Smoothing > 1 {
		return fmt.Errorf("smoothing must be between 0 and 1, got %v", p.Smoothing)
	}
	if p.HistorySize <= 0 {
		return fmt.Errorf("history_size must be positive, got %d", p.HistorySize)
	}
	if p.PointsInView < 0 {
		return fmt.Errorf("points_in_view can't be negative, got %d", p.PointsInView)
	}
	if p.SourceTimeout < 0 {
		return fmt.Errorf("source_timeout can't be negative, got %v", p.SourceTimeout)
	}
	if _, err := autorange.ParsePolicy(p.Autorange); err != nil {
		return err
	}
	return nil
}

func validateParam(p ParamConfig) error {
	if !contains(validPlots, strings.ToLower(p.Plot)) {
		return fmt.Errorf("parameter '%s' has unknown plot style '%s' (use %s)",
			p.Name, p.Plot, strings.Join(validPlots[1:], ", "))
	}
	if !contains(validScales, strings.ToLower(p.Scale)) {
		return fmt.Errorf("parameter '%s' has unknown scale '%s' (use %s)",
			p.Name, p.Scale, strings.Join(validScales[1:], ", "))
	}

	lim := p.Limits()
	if lim.TopMin > lim.TopMax {
		return fmt.Errorf("parameter '%s' has top_min %v above top_max %v", p.Name, lim.TopMin, lim.TopMax)
	}
	if lim.BotMin > lim.BotMax {
		return fmt.Errorf("parameter '%s' has bot_min %v above bot_max %v", p.Name, lim.BotMin, lim.BotMax)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
