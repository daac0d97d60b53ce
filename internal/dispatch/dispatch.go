// Package dispatch maps the externally visible tools onto the executor and
// the function store, and shapes their results.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/magick-mcp/magick-mcp/internal/executor"
	"github.com/magick-mcp/magick-mcp/internal/function"
	"github.com/magick-mcp/magick-mcp/internal/nameutil"
	"github.com/magick-mcp/magick-mcp/internal/registry"
)

// Tool names.
const (
	ToolCheck       = "check"
	ToolMagick      = "magick"
	ToolFuncSave    = "func_save"
	ToolFuncExecute = "func_execute"
	ToolFuncList    = "func_list"
)

// helpCall names help requests in the call log.
const helpCall = "help"

// Dispatcher is safe for concurrent use. It holds no per-call state.
type Dispatcher struct {
	runner  executor.Runner
	store   registry.Store
	binary  string
	timeout time.Duration
	log     zerolog.Logger
	environ func() []string
	goos    string
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithBinary overrides the image tool name or path (default "magick").
func WithBinary(bin string) Option {
	return func(d *Dispatcher) {
		if bin != "" {
			d.binary = bin
		}
	}
}

// WithTimeout bounds each process run. Zero means no limit.
func WithTimeout(t time.Duration) Option {
	return func(d *Dispatcher) { d.timeout = t }
}

// WithLogger sets the logger used for per-call records.
func WithLogger(l zerolog.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// WithEnviron replaces os.Environ as the source the child environment is
// sanitized from.
func WithEnviron(fn func() []string) Option {
	return func(d *Dispatcher) { d.environ = fn }
}

// New returns a Dispatcher running commands through runner against store.
func New(runner executor.Runner, store registry.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		runner:  runner,
		store:   store,
		binary:  "magick",
		log:     zerolog.Nop(),
		environ: os.Environ,
		goos:    runtime.GOOS,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Binary returns the configured image tool.
func (d *Dispatcher) Binary() string { return d.binary }

func (d *Dispatcher) env() []string {
	return executor.SanitizedEnv(d.environ())
}

func (d *Dispatcher) callLogger(tool string) zerolog.Logger {
	return d.log.With().Str("call_id", uuid.New().String()).Str("tool", tool).Logger()
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout > 0 {
		return context.WithTimeout(ctx, d.timeout)
	}
	return context.WithCancel(ctx)
}

// Check runs the binary with "-version". A missing binary is reported as
// OK=false with install instructions, never as an error.
func (d *Dispatcher) Check(ctx context.Context) CheckResult {
	log := d.callLogger(ToolCheck)
	start := time.Now()
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := d.runner.Run(ctx, executor.Request{Binary: d.binary, Args: []string{"-version"}, Env: d.env()})
	var out CheckResult
	switch {
	case errors.Is(err, executor.ErrNotFound):
		out = CheckResult{OK: false, Detail: InstallInstructions(d.goos)}
	case err != nil:
		out = CheckResult{OK: false, Detail: fmt.Sprintf("failed to get ImageMagick version: %v", err)}
	case res.ExitCode != 0:
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			detail = fmt.Sprintf("%s -version exited with status %d", d.binary, res.ExitCode)
		}
		out = CheckResult{OK: false, Detail: detail}
	default:
		out = CheckResult{OK: true, Detail: strings.TrimSpace(res.Stdout)}
	}
	log.Info().Bool("ok", out.OK).Dur("duration", time.Since(start)).Msg("check")
	return out
}

// Help returns the binary's usage text from "-help". Some builds print it
// on stderr or exit non-zero; any non-empty output is accepted.
func (d *Dispatcher) Help(ctx context.Context) (string, error) {
	log := d.callLogger(helpCall)
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := d.runner.Run(ctx, executor.Request{Binary: d.binary, Args: []string{"-help"}, Env: d.env()})
	if errors.Is(err, executor.ErrNotFound) {
		return "", fmt.Errorf("%w\n\n%s", err, InstallInstructions(d.goos))
	}
	if err != nil {
		log.Warn().Err(err).Msg("help failed to run")
		return "", err
	}
	text := res.Stdout
	if strings.TrimSpace(text) == "" {
		text = res.Stderr
	}
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s -help exited with status %d and printed nothing", d.binary, res.ExitCode)
	}
	log.Debug().Int("bytes", len(text)).Msg("help")
	return text, nil
}

// Magick runs the binary once with args, without substitution. A non-zero
// exit is reported in the result; err is set only when nothing could run.
func (d *Dispatcher) Magick(ctx context.Context, args []string, workspace string) (MagickResult, error) {
	log := d.callLogger(ToolMagick)
	start := time.Now()
	ctx, cancel := d.withTimeout(ctx)
	defer cancel()

	res, err := d.runner.Run(ctx, executor.Request{Binary: d.binary, Args: args, Dir: workspace, Env: d.env()})
	if err != nil {
		log.Warn().Err(err).Strs("args", args).Msg("magick failed to run")
		return MagickResult{ExitCode: -1}, err
	}
	log.Info().Int("exit_code", res.ExitCode).Dur("duration", time.Since(start)).Msg("magick")
	return newMagickResult(res), nil
}

// FuncSave validates and persists a new function. The name is normalized
// first, as in FuncExecute. Validation and duplicate errors are reflected in
// the result and returned.
func (d *Dispatcher) FuncSave(ctx context.Context, name string, commands [][]string) (SaveResult, error) {
	log := d.callLogger(ToolFuncSave)
	name, _ = nameutil.Normalize(name)
	fn := registry.Function{Name: name, Commands: commands}
	err := registry.Validate(fn)
	if err == nil {
		err = d.store.Save(ctx, fn)
	}
	if err != nil {
		log.Warn().Err(err).Str("name", name).Msg("func_save rejected")
		return SaveResult{OK: false, Error: err.Error()}, err
	}
	log.Info().Str("name", name).Int("commands", len(commands)).Msg("func_save")
	return SaveResult{OK: true}, nil
}

// FuncExecute replays a stored function with input substituted for the
// placeholder, halting at the first failing step.
func (d *Dispatcher) FuncExecute(ctx context.Context, name, input, workspace string) (ExecuteResult, error) {
	name, _ = nameutil.Normalize(name)
	log := d.callLogger(ToolFuncExecute).With().Str("name", name).Logger()
	start := time.Now()

	fn, err := d.store.Get(ctx, name)
	if err != nil {
		log.Warn().Err(err).Msg("func_execute lookup failed")
		return ExecuteResult{OK: false, Steps: []MagickResult{}, Error: err.Error()}, err
	}

	ctx, cancel := d.withTimeout(ctx)
	defer cancel()
	seq := function.Sequence{Runner: d.runner, Binary: d.binary, Dir: workspace, Env: d.env()}
	outcome, runErr := seq.Run(ctx, fn.Commands, input)

	res := ExecuteResult{OK: outcome.OK() && runErr == nil, Steps: make([]MagickResult, 0, len(outcome.Steps))}
	for _, s := range outcome.Steps {
		res.Steps = append(res.Steps, newMagickResult(s.Result))
	}
	if outcome.FailedAt >= 0 {
		at := outcome.FailedAt
		res.FailedAt = &at
	}
	if runErr != nil {
		res.Error = runErr.Error()
		log.Warn().Err(runErr).Int("steps", len(res.Steps)).Msg("func_execute aborted")
		return res, runErr
	}
	ev := log.Info()
	if res.FailedAt != nil {
		ev = log.Warn().Int("failed_at", *res.FailedAt)
	}
	ev.Bool("ok", res.OK).Int("steps", len(res.Steps)).Dur("duration", time.Since(start)).Msg("func_execute")
	return res, nil
}

// FuncList reports every stored function in insertion order.
func (d *Dispatcher) FuncList(ctx context.Context) (ListResult, error) {
	log := d.callLogger(ToolFuncList)
	fns, err := d.store.List(ctx)
	if err != nil {
		log.Error().Err(err).Msg("func_list failed")
		return ListResult{Functions: []FunctionEntry{}}, err
	}
	out := ListResult{Functions: make([]FunctionEntry, 0, len(fns))}
	for _, f := range fns {
		out.Functions = append(out.Functions, FunctionEntry{Name: f.Name, Commands: f.Commands})
	}
	log.Debug().Int("count", len(out.Functions)).Msg("func_list")
	return out, nil
}
