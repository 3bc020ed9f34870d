// Package config provides configuration management for haskellings.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// GeneratedFilesDir is the directory under the project root that holds
// per-exercise build artifacts.
const GeneratedFilesDir = "generated_files"

// Config holds everything the pipeline needs to compile and run
// exercises. Values come from defaults, then HASKELLINGS_* environment
// variables, then command-line flags, in increasing precedence.
type Config struct {
	// Root is the project root: the directory containing ExercisesDir.
	Root string `env:"HASKELLINGS_ROOT"`

	// GHCPath is the toolchain executable used to compile exercises.
	GHCPath string `env:"HASKELLINGS_GHC_PATH"`

	// ExercisesDir is the name of the exercises directory under Root.
	ExercisesDir string `env:"HASKELLINGS_EXERCISES_DIR"`

	// PackageDB is the GHC package database passed to every build.
	PackageDB string `env:"HASKELLINGS_PACKAGE_DB"`

	// MetricsAddr, when non-empty, serves Prometheus metrics during
	// watch sessions.
	MetricsAddr string `env:"HASKELLINGS_METRICS_ADDR"`

	// Observability
	Verbose   bool   `env:"HASKELLINGS_VERBOSE"`
	LogFormat string `env:"HASKELLINGS_LOG_FORMAT"` // text, json

	// NoColor disables styled terminal output.
	NoColor bool `env:"NO_COLOR"`
}

// DefaultConfig returns a Config with sensible defaults. Paths that
// depend on the machine (Root, GHCPath, PackageDB) are left empty and
// filled in by Discover.
func DefaultConfig() *Config {
	return &Config{
		ExercisesDir: "exercises",
		LogFormat:    "text",
	}
}

// FromEnv applies HASKELLINGS_* environment overrides on top of cfg.
func FromEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parsing environment: %w", err)
	}
	return nil
}

// ExercisesRoot returns the absolute path of the exercises directory.
func (c *Config) ExercisesRoot() string {
	return filepath.Join(c.Root, c.ExercisesDir)
}

// GeneratedRoot returns the absolute path of the build-artifact tree.
func (c *Config) GeneratedRoot() string {
	return filepath.Join(c.Root, GeneratedFilesDir)
}
