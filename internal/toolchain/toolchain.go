// Package toolchain wraps the external programs the drivers shell out to:
// the tracking simulator, the tracking-to-SDDS converter, and the analysis
// entry point.
//
// Each program sits behind the narrow Tool interface (input arguments in,
// error out) so the drivers can be tested without the real binaries and so
// child exit statuses propagate explicitly instead of leaking through
// package-level os.Exit calls.
package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Tool is a single external program invocation point.
type Tool interface {
	// Invoke runs the program with the given extra arguments and blocks
	// until it exits. A non-zero child exit status is returned as an
	// *ExitError.
	Invoke(ctx context.Context, args ...string) error

	// Name identifies the tool in errors and reports.
	Name() string
}

// ExitError reports a child process that ran and exited non-zero.
type ExitError struct {
	Tool string
	Code int

	// StderrTail holds the last captured stderr bytes, for the abort
	// message. The full stream has already been forwarded to the user.
	StderrTail string
}

func (e *ExitError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s exited with status %d", e.Tool, e.Code)
	if tail := strings.TrimSpace(e.StderrTail); tail != "" {
		msg += ": " + tail
	}
	return msg
}

// ExitCode extracts the child exit status from err, or fallback when err
// carries none.
func ExitCode(err error, fallback int) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code != 0 {
		return exitErr.Code
	}
	return fallback
}

// Command is a Tool backed by os/exec.
//
// Unlike an isolated build executor, the simulator and the analysis scripts
// need the real user environment (PATH, license variables, python setup), so
// the child inherits os.Environ plus any explicit extras.
type Command struct {
	// Path is the program to run, resolved through PATH if relative.
	Path string

	// BaseArgs are fixed arguments placed before the per-invocation ones.
	BaseArgs []string

	// Dir is the working directory for the child; empty means inherit.
	Dir string

	// ExtraEnv entries ("KEY=value") are appended to the inherited
	// environment.
	ExtraEnv []string

	// Stdout and Stderr receive the child's streams. Nil defaults to the
	// parent's os.Stdout / os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
}

// NewCommand builds a Command for path with fixed leading arguments.
func NewCommand(path string, baseArgs ...string) *Command {
	return &Command{Path: path, BaseArgs: baseArgs}
}

func (c *Command) Name() string { return c.Path }

// Invoke runs the program and blocks until it exits or ctx is cancelled.
// On cancellation the whole child process group is killed, so simulator
// subprocesses do not outlive an interrupted run.
func (c *Command) Invoke(ctx context.Context, args ...string) error {
	if c.Path == "" {
		return fmt.Errorf("tool path is empty")
	}

	full := make([]string, 0, len(c.BaseArgs)+len(args))
	full = append(full, c.BaseArgs...)
	full = append(full, args...)

	cmd := exec.Command(c.Path, full...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.ExtraEnv...)
	cmd.Stdin = os.Stdin
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var tail bytes.Buffer
	stdout := c.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := c.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}
	cmd.Stdout = stdout
	cmd.Stderr = io.MultiWriter(stderr, &tailWriter{buf: &tail})

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", c.Path, err)
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case <-ctx.Done():
		if cmd.Process != nil {
			syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		}
		<-done
		return fmt.Errorf("%s cancelled: %w", c.Path, ctx.Err())
	case waitErr = <-done:
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			return &ExitError{
				Tool:       c.Path,
				Code:       exitErr.ExitCode(),
				StderrTail: tail.String(),
			}
		}
		return fmt.Errorf("running %s: %w", c.Path, waitErr)
	}
	return nil
}

const tailLimit = 2048

// tailWriter keeps the last tailLimit bytes written through it.
type tailWriter struct {
	buf *bytes.Buffer
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.buf.Write(p)
	if w.buf.Len() > tailLimit {
		trimmed := w.buf.Bytes()[w.buf.Len()-tailLimit:]
		rest := make([]byte, len(trimmed))
		copy(rest, trimmed)
		w.buf.Reset()
		w.buf.Write(rest)
	}
	return len(p), nil
}
