package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrRootNotFound is returned when no ancestor of the starting
// directory contains the exercises directory.
var ErrRootNotFound = errors.New("config: project root not found")

// ErrPackageDBNotFound is returned when no GHC package database could
// be located automatically.
var ErrPackageDBNotFound = errors.New("config: package database not found")

// Discover fills in the machine-dependent fields of cfg that are still
// empty: project root, toolchain path and package database.
func Discover(cfg *Config) error {
	if cfg.Root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		root, err := findRoot(wd, cfg.ExercisesDir)
		if err != nil {
			return err
		}
		cfg.Root = root
	}

	if cfg.GHCPath == "" {
		path, err := findGHC()
		if err != nil {
			return err
		}
		cfg.GHCPath = path
	}

	if cfg.PackageDB == "" {
		db, err := findPackageDB()
		if err != nil {
			return err
		}
		cfg.PackageDB = db
	}

	return nil
}

// CheckToolchain verifies the configured toolchain actually runs,
// before the first pipeline invocation. A missing compiler is a
// configuration error, not a compile error.
func CheckToolchain(cfg *Config) error {
	out, err := exec.Command(cfg.GHCPath, "--version").Output()
	if err != nil {
		return fmt.Errorf("toolchain not usable at %s: %w", cfg.GHCPath, err)
	}
	version := strings.TrimSpace(string(out))
	if version == "" {
		return fmt.Errorf("toolchain at %s produced no version output", cfg.GHCPath)
	}
	return nil
}

// findRoot walks up from start until it finds a directory containing
// the exercises directory.
func findRoot(start, exercisesDir string) (string, error) {
	dir := start
	for {
		candidate := filepath.Join(dir, exercisesDir)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w: no %q directory above %s", ErrRootNotFound, exercisesDir, start)
		}
		dir = parent
	}
}

// findGHC locates the compiler, preferring PATH and falling back to
// Stack's per-user install tree.
func findGHC() (string, error) {
	if path, err := exec.LookPath("ghc"); err == nil {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ghc not on PATH and no home directory: %w", err)
	}

	// Stack installs compilers under ~/.stack/programs/<arch>/ghc-<ver>/bin.
	programs := filepath.Join(home, ".stack", "programs")
	var found string
	walkErr := filepath.WalkDir(programs, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() && d.Name() == "ghc" && filepath.Base(filepath.Dir(path)) == "bin" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr == nil && found != "" {
		return found, nil
	}
	return "", errors.New("config: ghc not found on PATH or under ~/.stack/programs")
}

// findPackageDB locates a GHC package database under Stack's snapshot
// tree. The first package.conf.d found wins.
func findPackageDB() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating package database: %w", err)
	}

	snapshots := filepath.Join(home, ".stack", "snapshots")
	var found string
	walkErr := filepath.WalkDir(snapshots, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && d.Name() == "package.conf.d" {
			found = path
			return fs.SkipAll
		}
		return nil
	})
	if walkErr != nil || found == "" {
		return "", ErrPackageDBNotFound
	}
	return found, nil
}
