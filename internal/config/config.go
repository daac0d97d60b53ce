// Package config resolves magick-mcp settings from defaults, an optional
// config.yaml in the data directory, an optional .env file and the process
// environment (highest precedence).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables consulted by Load.
const (
	EnvBinary      = "MAGICK_MCP_BINARY"
	EnvStore       = "MAGICK_MCP_STORE"
	EnvLogLevel    = "MAGICK_MCP_LOG_LEVEL"
	EnvLogFile     = "MAGICK_MCP_LOG_FILE"
	EnvExecTimeout = "MAGICK_MCP_EXEC_TIMEOUT"
)

// Store backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
)

// DefaultBinary is the image-processing executable resolved through PATH.
const DefaultBinary = "magick"

// Config is the resolved application configuration.
type Config struct {
	Binary string      `yaml:"binary"`
	Store  StoreConfig `yaml:"store"`
	Log    LogConfig   `yaml:"log"`
	Exec   ExecConfig  `yaml:"exec"`
}

// StoreConfig selects and locates the function store.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// Path is the sqlite file or badger directory; empty means the default
	// location under the data directory.
	Path string `yaml:"path"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// ExecConfig configures external process execution.
type ExecConfig struct {
	// Timeout bounds a single tool call, e.g. "2m". Empty or "0" disables it.
	Timeout string `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Binary: DefaultBinary,
		Store:  StoreConfig{Backend: BackendSQLite},
		Log:    LogConfig{Level: "info"},
	}
}

// Load resolves the configuration using the data directory's config.yaml and
// a .env file in the current directory.
func Load() (Config, error) {
	dir, err := DataDir()
	if err != nil {
		return Config{}, err
	}
	return LoadFrom(filepath.Join(dir, "config.yaml"), ".env")
}

// LoadFrom resolves the configuration from the given files. Missing files are
// not an error. The .env file is read without modifying the process
// environment; variables already set in the environment win over it.
func LoadFrom(yamlPath, dotenvPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse %s: %w", yamlPath, err)
			}
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", yamlPath, err)
		}
	}

	dotenv := map[string]string{}
	if dotenvPath != "" {
		vals, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			dotenv = vals
		case !errors.Is(err, fs.ErrNotExist):
			return Config{}, fmt.Errorf("read %s: %w", dotenvPath, err)
		}
	}
	lookup := func(key string) string {
		if v, ok := os.LookupEnv(key); ok {
			return v
		}
		return dotenv[key]
	}

	if v := lookup(EnvBinary); v != "" {
		cfg.Binary = v
	}
	if v := lookup(EnvStore); v != "" {
		cfg.Store.Backend = v
	}
	if v := lookup(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := lookup(EnvLogFile); v != "" {
		cfg.Log.File = v
	}
	if v := lookup(EnvExecTimeout); v != "" {
		cfg.Exec.Timeout = v
	}

	cfg.Store.Backend = strings.ToLower(strings.TrimSpace(cfg.Store.Backend))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for unusable values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Binary) == "" {
		return fmt.Errorf("invalid config: binary cannot be empty")
	}
	switch c.Store.Backend {
	case BackendSQLite, BackendBadger:
	default:
		return fmt.Errorf("invalid config: unknown store backend %q", c.Store.Backend)
	}
	if _, err := c.ExecTimeout(); err != nil {
		return err
	}
	return nil
}

// ExecTimeout parses Exec.Timeout. Zero means no deadline.
func (c Config) ExecTimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.Exec.Timeout)
	if s == "" || s == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid config: exec timeout %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid config: exec timeout %q is negative", s)
	}
	return d, nil
}

// StorePath returns the configured store location, falling back to the
// backend's default path under the data directory.
func (c Config) StorePath() (string, error) {
	if c.Store.Path != "" {
		return c.Store.Path, nil
	}
	if c.Store.Backend == BackendBadger {
		return BadgerDir()
	}
	return DBPath()
}
