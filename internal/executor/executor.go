// Package executor runs the external image-processing binary with an
// explicit argument vector, a sanitized environment and an optional working
// directory. Commands are never passed through a shell.
package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/kballard/go-shellquote"
)

// Request describes a single process invocation.
type Request struct {
	// Binary is resolved through the PATH entry of Env.
	Binary string
	Args   []string
	// Dir is the child's working directory. Empty means the caller's.
	Dir string
	// Env is the complete child environment. A nil Env is replaced by
	// SanitizedEnv(os.Environ()); it is never inherited as-is.
	Env []string
}

// Result is the outcome of a process that ran to completion. A non-zero
// ExitCode is data, not an error.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports whether the process exited with status 0.
func (r Result) Success() bool { return r.ExitCode == 0 }

// SpawnError reports that the binary could not be located or started.
type SpawnError struct {
	Binary string
	Err    error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Binary, e.Err)
}

// Unwrap returns the underlying error.
func (e *SpawnError) Unwrap() error { return e.Err }

// WorkspaceError reports an unusable working directory. Nothing is spawned.
type WorkspaceError struct {
	Dir string
	Err error
}

func (e *WorkspaceError) Error() string {
	return fmt.Sprintf("invalid workspace %q: %v", e.Dir, e.Err)
}

// Unwrap returns the underlying error.
func (e *WorkspaceError) Unwrap() error { return e.Err }

// ErrNotDirectory is wrapped by WorkspaceError when Dir is a file.
var ErrNotDirectory = errors.New("not a directory")

// Runner is an interface for executing commands. It allows tests to inject
// fake implementations without spawning real processes.
type Runner interface {
	Run(ctx context.Context, req Request) (Result, error)
}

// Executor is the os/exec backed Runner. It holds no mutable state and is
// safe for concurrent use.
type Executor struct {
	// DryRun resolves and validates the request but reports the command line
	// on Stdout instead of running it.
	DryRun bool
}

// New returns a Runner backed by the real Executor implementation.
func New(dry bool) Runner {
	return &Executor{DryRun: dry}
}

// Run executes req synchronously and collects both output streams.
func (e *Executor) Run(ctx context.Context, req Request) (Result, error) {
	env := req.Env
	if env == nil {
		env = SanitizedEnv(os.Environ())
	}

	if err := checkWorkspace(req.Dir); err != nil {
		return Result{}, err
	}

	bin, err := LookPathIn(req.Binary, PathValue(env))
	if err != nil {
		return Result{}, &SpawnError{Binary: req.Binary, Err: err}
	}

	if e.DryRun {
		return Result{Stdout: fmt.Sprintf("dry-run: %s\n", shellquote.Join(append([]string{bin}, req.Args...)...))}, nil
	}

	return runProcess(ctx, bin, req.Args, req.Dir, env)
}

func checkWorkspace(dir string) error {
	if dir == "" {
		return nil
	}
	fi, err := os.Stat(dir)
	if err != nil {
		return &WorkspaceError{Dir: dir, Err: err}
	}
	if !fi.IsDir() {
		return &WorkspaceError{Dir: dir, Err: ErrNotDirectory}
	}
	return nil
}

// waitDelay is how long Wait keeps reading output after the process is
// killed or has exited.
const waitDelay = 500 * time.Millisecond

// runProcess starts bin with args and waits for it, returning captured
// stdout/stderr along with the exit status. When ctx ends the process group
// is killed and the error wraps ctx.Err().
func runProcess(ctx context.Context, bin string, args []string, dir string, env []string) (Result, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	killGroup(cmd)
	// bounds Wait when a surviving descendant still holds the output pipes
	cmd.WaitDelay = waitDelay
	cmd.Dir = dir
	// a non-nil, possibly empty, slice so nothing is inherited
	cmd.Env = append(make([]string, 0, len(env)), env...)
	var bout, berr bytes.Buffer
	cmd.Stdout = &bout
	cmd.Stderr = &berr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{}, &SpawnError{Binary: bin, Err: err}
	}
	waitErr := cmd.Wait()
	res := Result{
		Stdout:   bout.String(),
		Stderr:   berr.String(),
		Duration: time.Since(start),
	}
	if waitErr == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
	}
	if ctx.Err() != nil {
		if res.ExitCode == 0 {
			res.ExitCode = -1
		}
		return res, fmt.Errorf("command interrupted: %w", ctx.Err())
	}
	if exitErr != nil {
		return res, nil
	}
	return res, fmt.Errorf("wait %s: %w", bin, waitErr)
}
