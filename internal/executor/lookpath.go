package executor

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// ErrNotFound is returned when a binary cannot be resolved through PATH.
var ErrNotFound = errors.New("executable file not found in PATH")

// LookPathIn resolves name against the directories listed in pathValue only.
// Unlike exec.LookPath it never consults the process environment. Names that
// contain a path separator are checked as-is. Empty and relative PATH
// entries are skipped so the current directory is never searched implicitly.
func LookPathIn(name, pathValue string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("empty executable name: %w", ErrNotFound)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, filepath.Separator) {
		if p, ok := findExecutable(name); ok {
			return p, nil
		}
		return "", fmt.Errorf("%s: %w", name, ErrNotFound)
	}
	for _, dir := range filepath.SplitList(pathValue) {
		if dir == "" || !filepath.IsAbs(dir) {
			continue
		}
		if p, ok := findExecutable(filepath.Join(dir, name)); ok {
			return p, nil
		}
	}
	return "", fmt.Errorf("%s: %w", name, ErrNotFound)
}

func findExecutable(p string) (string, bool) {
	if runtime.GOOS == "windows" {
		if filepath.Ext(p) != "" && isExecutable(p) {
			return p, true
		}
		for _, ext := range windowsExts() {
			if isExecutable(p + ext) {
				return p + ext, true
			}
		}
		return "", false
	}
	if isExecutable(p) {
		return p, true
	}
	return "", false
}

func isExecutable(p string) bool {
	fi, err := os.Stat(p)
	if err != nil || fi.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return fi.Mode().Perm()&0o111 != 0
}

// windowsExts returns the executable extensions tried on Windows. PATHEXT is
// not part of the sanitized environment, so the common defaults are used.
func windowsExts() []string {
	return []string{".com", ".exe", ".bat", ".cmd"}
}
