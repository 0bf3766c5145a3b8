// Package config loads and validates the YAML configuration for flexo,
// per the teacher's internal/config/global.go load-with-defaults pattern.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the full flexo configuration, loaded from a YAML file.
type Config struct {
	CacheDir             string          `yaml:"cache_dir"`
	ListenAddr           string          `yaml:"listen_addr"`
	MirrorStatusEndpoint string          `yaml:"mirror_status_endpoint"`
	Discovery            DiscoveryConfig `yaml:"discovery"`
	Providers            []ProviderEntry `yaml:"providers"`
	LogLevel             string          `yaml:"log_level"`
}

// DiscoveryConfig controls how the mirror status endpoint is fetched and
// how candidate mirrors are scored and filtered.
type DiscoveryConfig struct {
	HTTPSRequired bool    `yaml:"https_required"`
	MaxScore      float64 `yaml:"max_score"`
	// Timeout is a Go duration string (e.g. "5s"), matching the teacher's
	// Review.Timeout/Review.PollInterval convention of storing durations
	// as strings and parsing them at validation/use time.
	Timeout string `yaml:"timeout"`
}

// ParsedTimeout parses Timeout, which validate has already confirmed is
// well-formed.
func (d DiscoveryConfig) ParsedTimeout() time.Duration {
	dur, _ := time.ParseDuration(d.Timeout)
	return dur
}

// ProviderEntry is one statically-configured mirror.
type ProviderEntry struct {
	URL        string `yaml:"url"`
	StaticRank int64  `yaml:"static_rank"`
}

// DefaultConfig returns a Config with every field set to its default
// value.
func DefaultConfig() *Config {
	return &Config{
		CacheDir:   "/var/cache/flexo",
		ListenAddr: ":7878",
		Discovery: DiscoveryConfig{
			HTTPSRequired: true,
			MaxScore:      1.0,
			Timeout:       "5s",
		},
		LogLevel: "info",
	}
}

// Load reads and validates the configuration file at path. A missing file
// is not an error: it yields DefaultConfig with environment overrides
// applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		applyEnvOverrides(cfg)
		if err := validate(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
