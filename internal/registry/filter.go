package registry

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// Filter returns the functions whose name or commands fuzzy-match query,
// keeping the order of fns. An empty query matches everything.
func Filter(fns []Function, query string) []Function {
	query = strings.TrimSpace(query)
	if query == "" {
		return fns
	}
	names := make([]string, len(fns))
	commands := make([]string, len(fns))
	for i, f := range fns {
		names[i] = f.Name
		lines := make([]string, len(f.Commands))
		for j, c := range f.Commands {
			lines[j] = strings.Join(c, " ")
		}
		commands[i] = strings.Join(lines, "\n")
	}

	hit := make(map[int]bool)
	for _, m := range fuzzy.Find(query, names) {
		hit[m.Index] = true
	}
	for _, m := range fuzzy.Find(query, commands) {
		hit[m.Index] = true
	}
	out := []Function{}
	for i, f := range fns {
		if hit[i] {
			out = append(out, f)
		}
	}
	return out
}
