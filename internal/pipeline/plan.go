// Package pipeline implements the compile-then-run pipeline for one
// exercise: a build step, then an execution strategy selected by the
// exercise's kind, collapsing into a single terminal RunResult.
package pipeline

import (
	"path/filepath"

	"github.com/TonyCrane/haskellings/internal/config"
	"github.com/TonyCrane/haskellings/internal/exercise"
)

// BuildPlan is the concrete compile invocation for one exercise:
// command line, artifact directory, and the expected binary path.
// Derived fresh from the descriptor and config for every run and
// discarded afterward.
type BuildPlan struct {
	// GHCPath is the toolchain executable.
	GHCPath string

	// SourcePath is the absolute path of the exercise source file.
	SourcePath string

	// GenDir is the per-exercise artifact directory:
	// <root>/generated_files/<exercise directory>.
	GenDir string

	// BinaryPath is where the toolchain writes the executable. Empty
	// for compile-only exercises, which produce no binary to run.
	BinaryPath string

	// Args is the full toolchain argument list.
	Args []string
}

// NewBuildPlan derives the build plan for ex under cfg.
func NewBuildPlan(cfg *config.Config, ex exercise.Descriptor) BuildPlan {
	genDir := filepath.Join(cfg.GeneratedRoot(), ex.Directory)

	plan := BuildPlan{
		GHCPath:    cfg.GHCPath,
		SourcePath: filepath.Join(cfg.ExercisesRoot(), ex.SourcePath()),
		GenDir:     genDir,
	}

	plan.Args = []string{
		plan.SourcePath,
		"-odir", genDir,
		"-hidir", genDir,
	}

	// Only runnable kinds need a binary; compile-only exercises skip
	// the output flag entirely.
	if ex.Kind.Runnable() {
		plan.BinaryPath = filepath.Join(genDir, ex.BinaryName())
		plan.Args = append(plan.Args, "-o", plan.BinaryPath)
	}

	plan.Args = append(plan.Args, "-package-db", cfg.PackageDB)

	return plan
}
