package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/TonyCrane/haskellings/internal/config"
	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/process"
	"github.com/TonyCrane/haskellings/internal/report"
)

// Controller orchestrates the build step and the execution strategies
// for single exercises. It holds no per-run state: each invocation owns
// its own build plan, process handles and buffers.
type Controller struct {
	cfg     *config.Config
	printer *report.Printer
	logger  *slog.Logger
}

// NewController creates a pipeline controller.
func NewController(cfg *config.Config, printer *report.Printer, logger *slog.Logger) *Controller {
	return &Controller{cfg: cfg, printer: printer, logger: logger}
}

// Run compiles ex and, on success, dispatches to the strategy for its
// kind. Every outcome of the pipeline itself is expressed as a
// RunResult; a non-nil error means the pipeline could not run at all
// (toolchain missing, filesystem trouble) and is never folded into
// CompileError.
func (c *Controller) Run(ex exercise.Descriptor) (RunResult, error) {
	plan := NewBuildPlan(c.cfg, ex)

	build, err := runBuild(plan, c.logger)
	if err != nil {
		return CompileError, err
	}

	if !build.ok {
		c.printer.Failure("Couldn't compile %s:", ex.Name)
		if build.stderr != "" {
			c.printer.Line(build.stderr)
		}
		return CompileError, nil
	}

	c.printer.Success("Successfully compiled %s!", ex.Name)
	return c.runStrategy(ex, plan)
}

// RunAndReport runs the full pipeline for its reporting side effects
// and discards the result, for fire-and-forget callers like watch mode.
// Diagnostics are reported exactly as in Run.
func (c *Controller) RunAndReport(ex exercise.Descriptor) {
	if _, err := c.Run(ex); err != nil {
		c.printer.Failure("Couldn't run %s: %v", ex.Name, err)
	}
}

// Exec compiles ex and runs the produced binary interactively, with all
// standard streams inherited, so the learner can drive it by hand. Only
// runnable exercises can be executed this way.
func (c *Controller) Exec(ex exercise.Descriptor) error {
	if !ex.Kind.Runnable() {
		c.printer.Info("%s is a compile-only exercise; there is nothing to run.", ex.Name)
		return nil
	}

	plan := NewBuildPlan(c.cfg, ex)
	build, err := runBuild(plan, c.logger)
	if err != nil {
		return err
	}
	if !build.ok {
		c.printer.Failure("Couldn't compile %s:", ex.Name)
		if build.stderr != "" {
			c.printer.Line(build.stderr)
		}
		return nil
	}

	handle, err := process.Spawn(process.Spec{
		Path:   plan.BinaryPath,
		Stdin:  process.Inherit,
		Stdout: process.Inherit,
		Stderr: process.Inherit,
	})
	if err != nil {
		return fmt.Errorf("spawning %s: %w", plan.BinaryPath, err)
	}
	_, err = handle.Wait()
	return err
}
