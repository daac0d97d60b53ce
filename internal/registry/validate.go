package registry

import (
	"fmt"

	"github.com/magick-mcp/magick-mcp/internal/nameutil"
)

// ValidationError reports a function rejected before the store is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Validate checks that f can be stored and replayed: a valid normalized
// name, at least one command, and no empty command.
func Validate(f Function) error {
	if err := nameutil.Validate(f.Name); err != nil {
		return &ValidationError{Field: "name", Reason: err.Error()}
	}
	if len(f.Commands) == 0 {
		return &ValidationError{Field: "commands", Reason: "at least one command is required"}
	}
	for i, c := range f.Commands {
		if len(c) == 0 {
			return &ValidationError{Field: fmt.Sprintf("commands[%d]", i), Reason: "command cannot be empty"}
		}
	}
	return nil
}
