package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures tunable behaviour for vidgrab. Everything has a working
// default; the file only exists when the user wants to override something.
type Config struct {
	Version       int            `yaml:"version"`
	Network       NetworkConfig  `yaml:"network"`
	Releases      ReleasesConfig `yaml:"releases"`
	Notifications *bool          `yaml:"notifications,omitempty"`
}

// NetworkConfig controls download retry behaviour.
type NetworkConfig struct {
	MaxAttempts    int `yaml:"max_attempts"`
	BackoffSeconds int `yaml:"backoff_seconds"`
}

// ReleasesConfig overrides the built-in per-platform release URLs.
type ReleasesConfig struct {
	DownloaderURL string `yaml:"downloader_url"`
	BundleURL     string `yaml:"bundle_url"`
}

// NotificationsEnabled returns the effective notifications flag applying
// defaults.
func (c Config) NotificationsEnabled() bool {
	if c.Notifications == nil {
		return true
	}
	return *c.Notifications
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Network: NetworkConfig{
			MaxAttempts:    3,
			BackoffSeconds: 2,
		},
		Notifications: boolPtr(true),
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise
// returns the default configuration.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// ApplyDefaults ensures nested fields fall back to sensible defaults when
// the YAML omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Network.MaxAttempts < 1 {
		c.Network.MaxAttempts = defaults.Network.MaxAttempts
	}
	if c.Network.BackoffSeconds < 1 {
		c.Network.BackoffSeconds = defaults.Network.BackoffSeconds
	}
	if c.Notifications == nil {
		c.Notifications = boolPtr(true)
	}
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}

func boolPtr(v bool) *bool {
	return &v
}
