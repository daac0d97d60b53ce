// Package recorder reads function commands typed one per line, as used by
// `magick-mcp func record`.
package recorder

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/kballard/go-shellquote"
)

// sentinels end a recording when typed alone on a line.
var sentinels = map[string]bool{":end": true, ":save": true, ":quit": true}

// RecordCommands reads lines from r until EOF, a sentinel line (:end, :save,
// :quit) or Ctrl+Z (a raw 0x1A byte or a literal "^Z"). Blank lines and lines
// starting with '#' are skipped. Each remaining line is split into an argument
// vector with shell quoting rules; it is never run through a shell.
func RecordCommands(r io.Reader) ([][]string, error) {
	s := bufio.NewScanner(r)
	out := [][]string{}
	for s.Scan() {
		line, stop := cutEOF(s.Text())
		line = strings.TrimSpace(line)
		if sentinels[line] {
			break
		}
		if line != "" && !strings.HasPrefix(line, "#") {
			argv, err := shellquote.Split(line)
			if err != nil {
				return nil, fmt.Errorf("line %q: %w", line, err)
			}
			if len(argv) > 0 {
				out = append(out, argv)
			}
		}
		if stop {
			break
		}
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("read commands: %w", err)
	}
	return out, nil
}

// cutEOF truncates line at a console end-of-input marker.
func cutEOF(line string) (string, bool) {
	i := strings.IndexByte(line, 0x1A)
	if j := strings.Index(line, "^Z"); j >= 0 && (i < 0 || j < i) {
		i = j
	}
	if i < 0 {
		return line, false
	}
	return line[:i], true
}
