package config

import (
	"errors"
	"fmt"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Root == "" {
		errs = append(errs, ValidationError{
			Field:   "root",
			Message: "project root is required",
		})
	}

	if cfg.GHCPath == "" {
		errs = append(errs, ValidationError{
			Field:   "ghc_path",
			Message: "toolchain path is required",
		})
	}

	if cfg.ExercisesDir == "" {
		errs = append(errs, ValidationError{
			Field:   "exercises_dir",
			Message: "exercises directory name is required",
		})
	}

	if cfg.PackageDB == "" {
		errs = append(errs, ValidationError{
			Field:   "package_db",
			Message: "package database path is required",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[cfg.LogFormat] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
