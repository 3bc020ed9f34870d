package pipeline

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/TonyCrane/haskellings/internal/process"
)

// buildOutcome is what the build step hands back to the controller:
// whether the toolchain exited zero, and the diagnostic text it wrote.
type buildOutcome struct {
	ok     bool
	stderr string
	result process.Result
}

// runBuild executes the plan's compile command. The artifact directory
// is created first and the working directory is restored on every exit
// path. A spawn failure (toolchain missing) is returned as an error and
// never classified as a compile failure.
func runBuild(plan BuildPlan, logger *slog.Logger) (buildOutcome, error) {
	if err := os.MkdirAll(plan.GenDir, 0o755); err != nil {
		return buildOutcome{}, fmt.Errorf("creating artifact directory: %w", err)
	}

	var out buildOutcome
	err := inDirectory(plan.GenDir, func() error {
		handle, err := process.Spawn(process.Spec{
			Path:   plan.GHCPath,
			Args:   plan.Args,
			Stdin:  process.Inherit,
			Stdout: process.Capture,
			Stderr: process.Capture,
		})
		if err != nil {
			return fmt.Errorf("spawning toolchain %s: %w", plan.GHCPath, err)
		}

		res, err := handle.Wait()
		if err != nil {
			return fmt.Errorf("waiting for toolchain: %w", err)
		}

		stderr, _ := handle.Stderr()
		out = buildOutcome{ok: res.Success(), stderr: stderr, result: res}

		logger.Debug("build_finished",
			"source", plan.SourcePath,
			"exit_code", res.ExitCode,
			"duration", res.Duration,
		)
		return nil
	})
	if err != nil {
		return buildOutcome{}, err
	}
	return out, nil
}

// inDirectory runs fn with dir as the working directory, restoring the
// previous working directory on every exit path.
func inDirectory(dir string, fn func() error) error {
	prev, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return fmt.Errorf("entering %s: %w", dir, err)
	}
	defer os.Chdir(prev)

	return fn()
}
