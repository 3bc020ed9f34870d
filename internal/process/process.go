// Package process provides abstractions for running external processes.
//
// The pipeline spawns two kinds of children: the GHC toolchain and the
// executables it produces. Both go through Spawn, which lets the caller
// select, per stream, whether stdin/stdout/stderr are inherited from the
// parent, discarded, or captured.
package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"time"
)

// StreamMode selects how a child's standard stream is connected.
type StreamMode int

const (
	// Inherit connects the stream to the parent's corresponding stream.
	Inherit StreamMode = iota

	// Discard connects the stream to the null device.
	Discard

	// Capture buffers the stream in memory, owned by the Handle.
	Capture
)

// Spec describes one process to spawn.
type Spec struct {
	// Path is the executable to run. Ignored when Shell is set.
	Path string

	// Args are the arguments, not including the program name.
	Args []string

	// Shell, when non-empty, runs the command line through "sh -c"
	// instead of executing Path directly.
	Shell string

	// Dir is the working directory. Empty means the parent's.
	Dir string

	Stdin  StreamMode
	Stdout StreamMode
	Stderr StreamMode
}

// Result captures the outcome of a finished process.
type Result struct {
	ExitCode int
	Duration time.Duration
}

// Success reports whether the process exited zero.
func (r Result) Success() bool { return r.ExitCode == 0 }

// Handle represents a live child process. It owns the capture buffers for
// any streams spawned with Capture and the write end of a captured stdin.
// Wait must be called exactly once; the handle is consumed afterward.
type Handle struct {
	cmd     *exec.Cmd
	stdin   io.WriteCloser // nil unless Spec.Stdin == Capture
	stdout  *bytes.Buffer  // nil unless Spec.Stdout == Capture
	stderr  *bytes.Buffer  // nil unless Spec.Stderr == Capture
	started time.Time
	waited  bool
}

// Spawn starts the process described by spec.
//
// A spawn error (binary missing, permission denied) is returned as-is so
// callers can distinguish "could not start" from "started and failed".
func Spawn(spec Spec) (*Handle, error) {
	var cmd *exec.Cmd
	if spec.Shell != "" {
		cmd = exec.Command("sh", "-c", spec.Shell)
	} else {
		cmd = exec.Command(spec.Path, spec.Args...)
	}
	cmd.Dir = spec.Dir

	h := &Handle{cmd: cmd}

	switch spec.Stdin {
	case Inherit:
		cmd.Stdin = os.Stdin
	case Capture:
		pipe, err := cmd.StdinPipe()
		if err == nil {
			// Pipe creation failure is tolerated: the handle simply has
			// no stdin and WriteLines becomes a no-op.
			h.stdin = pipe
		}
	}

	switch spec.Stdout {
	case Inherit:
		cmd.Stdout = os.Stdout
	case Capture:
		h.stdout = &bytes.Buffer{}
		cmd.Stdout = h.stdout
	}

	switch spec.Stderr {
	case Inherit:
		cmd.Stderr = os.Stderr
	case Capture:
		h.stderr = &bytes.Buffer{}
		cmd.Stderr = h.stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	h.started = time.Now()
	return h, nil
}

// WriteLines writes each string as one newline-terminated line to the
// child's stdin, then closes it. Absent stdin (not captured, or the pipe
// could not be created) is a no-op. A child that closes its input early
// produces a broken pipe, which is not an error for the parent.
func (h *Handle) WriteLines(lines []string) {
	if h.stdin == nil {
		return
	}
	for _, line := range lines {
		if _, err := io.WriteString(h.stdin, line+"\n"); err != nil {
			break
		}
	}
	h.stdin.Close()
	h.stdin = nil
}

// Wait blocks until the child terminates and returns its exit status.
// Captured pipes are drained by the runtime before Wait returns, so a
// child that floods stdout or stderr cannot deadlock the parent.
// Calling Wait twice is a programming error.
func (h *Handle) Wait() (Result, error) {
	if h.waited {
		return Result{}, errors.New("process: Wait called twice on one handle")
	}
	h.waited = true
	if h.stdin != nil {
		h.stdin.Close()
		h.stdin = nil
	}

	err := h.cmd.Wait()
	res := Result{Duration: time.Since(h.started)}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// Stdout returns the captured stdout text. The second return is false
// when stdout was not captured; absence is an expected state, not an
// error.
func (h *Handle) Stdout() (string, bool) {
	if h.stdout == nil {
		return "", false
	}
	return h.stdout.String(), true
}

// Stderr returns the captured stderr text, if stderr was captured.
func (h *Handle) Stderr() (string, bool) {
	if h.stderr == nil {
		return "", false
	}
	return h.stderr.String(), true
}
