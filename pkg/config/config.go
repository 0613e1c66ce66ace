// Package config handles loading and saving ct configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/ct/config.yaml
//   - State:  ~/.local/state/ct/ (recent datasets)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// TourConfig holds the session defaults the CLI falls back to when the
// corresponding flags are absent.
type TourConfig struct {
	Centroids     int     `yaml:"centroids,omitempty"`      // representative conditioning points
	Interpolation int     `yaml:"interpolation,omitempty"`  // interpolated steps between centroids
	Bandwidth     float64 `yaml:"bandwidth,omitempty"`      // similarity threshold in scaled units
	Metric        string  `yaml:"metric,omitempty"`         // euclidean or maxnorm
	Lambda        float64 `yaml:"lambda,omitempty"`         // factor mismatch penalty; 0 = hard filter
	ArrangeMethod string  `yaml:"arrange_method,omitempty"` // condition variable grouping method
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Theme        string `yaml:"theme,omitempty"`         // dark or light
	ShowWeights  *bool  `yaml:"show_weights,omitempty"`  // render the weight gauge panel
	CopySnapshot *bool  `yaml:"copy_snapshot,omitempty"` // copy snapshot path to clipboard
}

// Config is the top-level configuration for ct.
type Config struct {
	Tour TourConfig `yaml:"tour,omitempty"`
	UI   UIConfig   `yaml:"ui,omitempty"`
	// Recent holds dataset paths most recently opened, newest first.
	Recent []string `yaml:"recent,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Tour: TourConfig{
			Centroids:     10,
			Interpolation: 4,
			Bandwidth:     1.0,
			Metric:        "euclidean",
			ArrangeMethod: "association",
		},
		UI: UIConfig{Theme: "dark"},
	}
}

// ConfigDir returns the XDG config directory for ct.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "ct")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ct")
}

// StateDir returns the XDG state directory for ct.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "ct")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "ct")
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	for i := range cfg.Recent {
		cfg.Recent[i] = expandHome(cfg.Recent[i])
	}
	return cfg, nil
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// RememberDataset records path at the front of the recent list, dropping
// duplicates and keeping at most ten entries.
func (c *Config) RememberDataset(path string) {
	out := []string{path}
	for _, p := range c.Recent {
		if p != path {
			out = append(out, p)
		}
	}
	if len(out) > 10 {
		out = out[:10]
	}
	c.Recent = out
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
