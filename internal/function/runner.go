package function

import (
	"context"
	"fmt"

	"github.com/magick-mcp/magick-mcp/internal/executor"
)

// Step is the outcome of one command of a function run.
type Step struct {
	Args   []string
	Result executor.Result
}

// Outcome collects the steps that ran. FailedAt is the zero-based index of
// the step that exited non-zero, or -1 when every step succeeded.
type Outcome struct {
	Steps    []Step
	FailedAt int
}

// OK reports whether every command exited with status 0.
func (o Outcome) OK() bool { return o.FailedAt < 0 }

// Sequence runs templates one after another against binary, substituting
// input into each. It stops after the first non-zero exit; later commands may
// depend on files produced by earlier ones, so they are never started.
//
// An executor error (spawn or workspace failure) also stops the run. The
// step that could not finish is recorded with exit code -1 and the error
// appended to its stderr, so FailedAt always indexes into Steps.
type Sequence struct {
	Runner executor.Runner
	Binary string
	Dir    string
	Env    []string
}

// Run executes the templates in order.
func (s Sequence) Run(ctx context.Context, templates [][]string, input string) (Outcome, error) {
	out := Outcome{FailedAt: -1, Steps: make([]Step, 0, len(templates))}
	for i, tmpl := range templates {
		args := Substitute(tmpl, input)
		res, err := s.Runner.Run(ctx, executor.Request{Binary: s.Binary, Args: args, Dir: s.Dir, Env: s.Env})
		if err != nil {
			res.ExitCode = -1
			if res.Stderr != "" {
				res.Stderr += "\n"
			}
			res.Stderr += err.Error()
			out.Steps = append(out.Steps, Step{Args: args, Result: res})
			out.FailedAt = i
			return out, fmt.Errorf("step %d: %w", i, err)
		}
		out.Steps = append(out.Steps, Step{Args: args, Result: res})
		if res.ExitCode != 0 {
			out.FailedAt = i
			return out, nil
		}
	}
	return out, nil
}
