// Package nameutil normalizes and validates function names. Every path that
// stores or looks up a function by name goes through Normalize first, so a
// name pasted with stray whitespace or zero-width characters resolves to the
// same stored function.
package nameutil

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLen is the longest accepted name, in bytes.
const MaxLen = 256

// invisible runes commonly introduced by copy/paste.
func invisible(r rune) bool {
	switch r {
	case '\u200b', '\u200c', '\u200d', '\u2060', '\ufeff':
		return true
	}
	return false
}

// Normalize strips zero-width characters and surrounding whitespace. It
// reports whether name changed. Control characters are kept so Validate
// can reject them instead of silently rewriting the name.
func Normalize(name string) (string, bool) {
	out := strings.TrimSpace(strings.Map(func(r rune) rune {
		if invisible(r) {
			return -1
		}
		return r
	}, name))
	return out, out != name
}

// Validate checks a normalized name: non-empty, valid UTF-8, no control
// characters, no surrounding whitespace and at most MaxLen bytes.
func Validate(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return fmt.Errorf("name contains invalid encoding")
	}
	if len(name) > MaxLen {
		return fmt.Errorf("name is longer than %d bytes", MaxLen)
	}
	if name != strings.TrimSpace(name) {
		return fmt.Errorf("name has leading or trailing whitespace")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("name contains control character U+%04X", r)
		}
		if invisible(r) {
			return fmt.Errorf("name contains invisible character U+%04X", r)
		}
	}
	return nil
}
