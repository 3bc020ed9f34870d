package pipeline

import (
	"fmt"
	"strings"

	"github.com/TonyCrane/haskellings/internal/exercise"
	"github.com/TonyCrane/haskellings/internal/process"
)

// RunResult is the terminal outcome of the pipeline for one exercise.
// Exactly one escapes per invocation.
type RunResult int

const (
	// CompileError: the build command exited nonzero.
	CompileError RunResult = iota

	// TestFailed: the build succeeded but the post-build run exited
	// nonzero or its output failed the exercise's predicate.
	TestFailed

	// RunSuccess: the build and, when applicable, the run succeeded.
	RunSuccess
)

func (r RunResult) String() string {
	switch r {
	case CompileError:
		return "compile-error"
	case TestFailed:
		return "test-failed"
	case RunSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// runStrategy dispatches on the exercise kind after a successful build.
// The switch is closed: every KindTag has exactly one handler.
func (c *Controller) runStrategy(ex exercise.Descriptor, plan BuildPlan) (RunResult, error) {
	switch ex.Kind.Tag {
	case exercise.CompileOnly:
		return RunSuccess, nil
	case exercise.UnitTests:
		return c.runUnitTests(ex, plan)
	case exercise.Executable:
		return c.runExecutable(ex, plan)
	default:
		return TestFailed, fmt.Errorf("unknown exercise kind %v for %s", ex.Kind.Tag, ex.Name)
	}
}

// runUnitTests runs the built test binary through the shell with both
// output streams captured and stdin not connected.
func (c *Controller) runUnitTests(ex exercise.Descriptor, plan BuildPlan) (RunResult, error) {
	handle, err := process.Spawn(process.Spec{
		Shell:  plan.BinaryPath,
		Stdin:  process.Discard,
		Stdout: process.Capture,
		Stderr: process.Capture,
	})
	if err != nil {
		return TestFailed, fmt.Errorf("spawning test binary for %s: %w", ex.Name, err)
	}

	res, err := handle.Wait()
	if err != nil {
		return TestFailed, fmt.Errorf("waiting for test binary: %w", err)
	}

	if !res.Success() {
		c.printer.Failure("Tests failed for %s:", ex.Name)
		if stderr, ok := handle.Stderr(); ok && stderr != "" {
			c.printer.Line(stderr)
		}
		if stdout, ok := handle.Stdout(); ok && stdout != "" {
			c.printer.Line(stdout)
		}
		return TestFailed, nil
	}

	c.printer.Success("Tests passed for %s!", ex.Name)
	return RunSuccess, nil
}

// runExecutable runs the built program with all three streams captured,
// feeds it the exercise's input lines, and checks the stdout transcript
// against the exercise's predicate.
func (c *Controller) runExecutable(ex exercise.Descriptor, plan BuildPlan) (RunResult, error) {
	handle, err := process.Spawn(process.Spec{
		Path:   plan.BinaryPath,
		Stdin:  process.Capture,
		Stdout: process.Capture,
		Stderr: process.Capture,
	})
	if err != nil {
		return TestFailed, fmt.Errorf("spawning executable for %s: %w", ex.Name, err)
	}

	// Absent stdin is tolerated; a child that closes its input early
	// is not an error either.
	handle.WriteLines(ex.Kind.Inputs)

	res, err := handle.Wait()
	if err != nil {
		return TestFailed, fmt.Errorf("waiting for executable: %w", err)
	}

	if !res.Success() {
		c.printer.Failure("Running %s failed:", ex.Name)
		if stdout, ok := handle.Stdout(); ok && stdout != "" {
			c.printer.Line(stdout)
		}
		if stderr, ok := handle.Stderr(); ok && stderr != "" {
			c.printer.Line(stderr)
		}
		c.printRunHint(ex)
		return TestFailed, nil
	}

	stdout, _ := handle.Stdout()
	lines := splitLines(stdout)
	if ex.Kind.Check != nil && !ex.Kind.Check(lines) {
		c.printer.Failure("%s ran, but its output isn't what we expect!", ex.Name)
		c.printRunHint(ex)
		return TestFailed, nil
	}

	c.printer.Success("%s ran successfully!", ex.Name)
	c.printRunHint(ex)
	return RunSuccess, nil
}

func (c *Controller) printRunHint(ex exercise.Descriptor) {
	c.printer.Info("You can run it yourself with `haskellings exec %s`.", ex.Name)
}

// splitLines splits captured stdout into an ordered line sequence.
// An absent or empty stream yields an empty slice, so predicates always
// see a well-defined value.
func splitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
