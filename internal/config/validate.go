package config

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError contains details about what failed validation.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config.%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validate checks all config values for validity. Returns nil if valid,
// or joined errors for all validation failures.
func validate(cfg *Config) error {
	var errs []error

	if cfg.CacheDir == "" {
		errs = append(errs, &ValidationError{
			Field:   "cache_dir",
			Value:   cfg.CacheDir,
			Message: "must not be empty",
		})
	}

	if cfg.ListenAddr == "" {
		errs = append(errs, &ValidationError{
			Field:   "listen_addr",
			Value:   cfg.ListenAddr,
			Message: "must not be empty",
		})
	}

	if _, err := time.ParseDuration(cfg.Discovery.Timeout); err != nil {
		errs = append(errs, &ValidationError{
			Field:   "discovery.timeout",
			Value:   cfg.Discovery.Timeout,
			Message: fmt.Sprintf("invalid duration: %v", err),
		})
	}

	if cfg.Discovery.MaxScore <= 0 {
		errs = append(errs, &ValidationError{
			Field:   "discovery.max_score",
			Value:   cfg.Discovery.MaxScore,
			Message: "must be positive",
		})
	}

	for i, p := range cfg.Providers {
		if p.URL == "" {
			errs = append(errs, &ValidationError{
				Field:   fmt.Sprintf("providers[%d].url", i),
				Value:   p.URL,
				Message: "must not be empty",
			})
		}
	}

	if !validLogLevels[cfg.LogLevel] {
		errs = append(errs, &ValidationError{
			Field:   "log_level",
			Value:   cfg.LogLevel,
			Message: "must be one of: debug, info, warn, error",
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
