// Package registry persists named functions: ordered lists of command
// templates that can be replayed against an input file.
package registry

import (
	"errors"
	"time"
)

// Function is a named, reusable sequence of command templates.
type Function struct {
	Name     string
	Commands [][]string
	// CreatedAt is informational and set by the store on Save.
	CreatedAt time.Time
}

var (
	// ErrNotFound is returned when no function has the requested name.
	ErrNotFound = errors.New("function not found")
	// ErrDuplicateName is returned by Save when the name is already taken.
	// The stored function is left unchanged.
	ErrDuplicateName = errors.New("function name already exists")
)
