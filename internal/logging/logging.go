// Package logging builds the zerolog logger shared by the CLI and the MCP
// server. Logs never go to stdout: the stdio transport owns it.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLevel converts a level name to a zerolog level, defaulting to info.
func ParseLevel(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// New returns a timestamped logger writing to file (appending) or, when file
// is empty, to stderr. The returned closer releases the log file.
func New(level, file string) (zerolog.Logger, io.Closer, error) {
	var output io.Writer = os.Stderr
	var closer io.Closer = io.NopCloser(nil)
	if file != "" {
		f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		output = f
		closer = f
	}
	return NewWithWriter(output, level), closer, nil
}

// NewWithWriter returns a timestamped logger writing to w.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(ParseLevel(level)).With().Timestamp().Logger()
}
