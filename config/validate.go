package config

import (
	"fmt"
	"strings"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validBackends lists the accepted storage backends.
var validBackends = map[string]bool{
	BackendBolt:      true,
	BackendFirestore: true,
	BackendFile:      true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if !validBackends[cfg.Backend] {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, cfg.Backend)
	}

	if cfg.Backend == BackendFirestore && cfg.FirestoreProject == "" {
		return ErrMissingProject
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.Tolerance < 0 {
		return ErrInvalidTolerance
	}

	return nil
}
