package executor

import (
	"runtime"
	"strings"
)

// SanitizedEnv returns a new environment holding only the PATH entry of
// environ, if present. environ is typically os.Environ(); it is not modified.
// When PATH appears more than once the last entry wins, matching how os/exec
// deduplicates a child's environment.
func SanitizedEnv(environ []string) []string {
	var path string
	found := false
	for _, kv := range environ {
		k, _, ok := strings.Cut(kv, "=")
		if !ok || !isPathKey(k) {
			continue
		}
		path = kv
		found = true
	}
	if !found {
		return []string{}
	}
	return []string{path}
}

// PathValue returns the value of the PATH entry in env, or "".
func PathValue(env []string) string {
	var v string
	for _, kv := range env {
		k, val, ok := strings.Cut(kv, "=")
		if ok && isPathKey(k) {
			v = val
		}
	}
	return v
}

// Environment variable names are case-insensitive on Windows ("Path").
func isPathKey(k string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(k, "PATH")
	}
	return k == "PATH"
}
