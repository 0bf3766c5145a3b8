package config

import "os"

// envOverrides maps environment variables to config field setters,
// applied after the file is loaded so the environment always wins.
var envOverrides = []struct {
	envVar string
	apply  func(*Config, string)
}{
	{
		envVar: "FLEXO_CACHE_DIR",
		apply: func(c *Config, v string) {
			c.CacheDir = v
		},
	},
	{
		envVar: "FLEXO_LISTEN_ADDR",
		apply: func(c *Config, v string) {
			c.ListenAddr = v
		},
	},
	{
		envVar: "FLEXO_LOG_LEVEL",
		apply: func(c *Config, v string) {
			c.LogLevel = v
		},
	},
}

// applyEnvOverrides modifies cfg in place with environment variable
// values.
func applyEnvOverrides(cfg *Config) {
	for _, override := range envOverrides {
		if val := os.Getenv(override.envVar); val != "" {
			override.apply(cfg, val)
		}
	}
}
