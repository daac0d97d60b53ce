package dispatch

import "github.com/magick-mcp/magick-mcp/internal/executor"

// CheckResult is returned by the check tool.
type CheckResult struct {
	OK     bool   `json:"ok"`
	Detail string `json:"detail"`
}

// MagickResult is the outcome of one direct binary invocation.
type MagickResult struct {
	ExitCode int    `json:"exit_code"`
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
}

func newMagickResult(r executor.Result) MagickResult {
	return MagickResult{ExitCode: r.ExitCode, Stdout: r.Stdout, Stderr: r.Stderr}
}

// SaveResult is returned by func_save.
type SaveResult struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// ExecuteResult is returned by func_execute. FailedAt is the zero-based
// index of the step that stopped the run.
type ExecuteResult struct {
	OK       bool           `json:"ok"`
	Steps    []MagickResult `json:"steps"`
	FailedAt *int           `json:"failed_at,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// FunctionEntry is one function as reported by func_list.
type FunctionEntry struct {
	Name     string     `json:"name"`
	Commands [][]string `json:"commands"`
}

// ListResult is returned by func_list.
type ListResult struct {
	Functions []FunctionEntry `json:"functions"`
}
