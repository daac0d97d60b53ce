package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// EnvHome overrides the data directory.
	EnvHome = "MAGICK_MCP_HOME"
	// EnvDB overrides the SQLite database path.
	EnvDB = "MAGICK_MCP_DB"
)

// DataDir returns the directory used to store magick-mcp data.
func DataDir() (string, error) {
	if v := os.Getenv(EnvHome); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	// Use a dot-directory in the user's home on all platforms
	return filepath.Join(home, ".magick-mcp"), nil
}

// DBPath returns the full path to the SQLite database file.
func DBPath() (string, error) {
	if v := os.Getenv(EnvDB); v != "" {
		return v, nil
	}
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "magick-mcp.db"), nil
}

// BadgerDir returns the directory holding the badger function store.
func BadgerDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "badger"), nil
}

// EnsureDataDir creates the data directory if needed and returns it.
func EnsureDataDir() (string, error) {
	d, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return d, nil
}
