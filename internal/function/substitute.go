// Package function holds the pieces that turn a stored command template into
// concrete invocations: placeholder substitution and the sequential runner.
package function

import "strings"

// Placeholder is the token fragment replaced by the caller's input path.
// There is no escape syntax: a literal "$input" cannot be passed through.
const Placeholder = "$input"

// Substitute returns a copy of template with every occurrence of Placeholder
// in every token replaced by input. Tokens without the placeholder are copied
// unchanged. template itself is not modified.
func Substitute(template []string, input string) []string {
	out := make([]string, len(template))
	for i, tok := range template {
		out[i] = strings.ReplaceAll(tok, Placeholder, input)
	}
	return out
}

// HasPlaceholder reports whether any token of template references the input.
func HasPlaceholder(template []string) bool {
	for _, tok := range template {
		if strings.Contains(tok, Placeholder) {
			return true
		}
	}
	return false
}
