// Package install registers magick-mcp as a stdio MCP server in the
// configuration files of supported MCP clients.
package install

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/magick-mcp/magick-mcp/internal/config"
)

// ServerKey is the entry name written under mcpServers.
const ServerKey = "magick-mcp"

// Client names accepted by Options.Clients.
const (
	ClientCursor = "cursor"
	ClientClaude = "claude"
	ClientBoth   = "both"
)

// Options controls install behavior.
type Options struct {
	Clients []string
	// Home overrides the user's home directory.
	Home string
	// Exe is the command clients launch. Empty means the running executable.
	Exe    string
	DryRun bool
}

// ConfigPath returns the MCP config file of client under home.
func ConfigPath(client, home string) (string, error) {
	switch client {
	case ClientCursor:
		return filepath.Join(home, ".cursor", "mcp.json"), nil
	case ClientClaude:
		return filepath.Join(home, ".claude.json"), nil
	default:
		return "", fmt.Errorf("unknown client %q (want %s, %s or %s)", client, ClientCursor, ClientClaude, ClientBoth)
	}
}

// normalizeClients expands "both" and removes duplicates.
func normalizeClients(in []string) ([]string, error) {
	seen := map[string]bool{}
	for _, c := range in {
		c = strings.ToLower(strings.TrimSpace(c))
		switch c {
		case ClientBoth:
			seen[ClientCursor] = true
			seen[ClientClaude] = true
		case ClientCursor, ClientClaude:
			seen[c] = true
		default:
			return nil, fmt.Errorf("unknown client %q (want %s, %s or %s)", c, ClientCursor, ClientClaude, ClientBoth)
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("no client selected")
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (o Options) resolve() (home, exe string, clients []string, err error) {
	clients, err = normalizeClients(o.Clients)
	if err != nil {
		return "", "", nil, err
	}
	home = o.Home
	if home == "" {
		if home, err = os.UserHomeDir(); err != nil {
			return "", "", nil, fmt.Errorf("determine home directory: %w", err)
		}
	}
	exe = o.Exe
	if exe == "" {
		if exe, err = os.Executable(); err != nil {
			return "", "", nil, fmt.Errorf("determine current executable: %w", err)
		}
	}
	return home, exe, clients, nil
}

// serverEntry is the value stored at mcpServers.magick-mcp.
func serverEntry(client, exe string) map[string]interface{} {
	e := map[string]interface{}{
		"command": exe,
		"args":    []string{"serve"},
	}
	if client == ClientClaude {
		e["type"] = "stdio"
	}
	return e
}

func entryPath() string {
	return "mcpServers." + escapeKey(ServerKey)
}

// escapeKey escapes gjson/sjson path metacharacters in a single key.
func escapeKey(k string) string {
	r := strings.NewReplacer(".", `\.`, "*", `\*`, "?", `\?`)
	return r.Replace(k)
}

// PlanInstall returns the human-readable actions Install would perform.
func PlanInstall(opts Options) ([]string, error) {
	home, exe, clients, err := opts.resolve()
	if err != nil {
		return nil, err
	}
	actions := []string{}
	for _, c := range clients {
		p, _ := ConfigPath(c, home)
		b, err := os.ReadFile(p)
		switch {
		case os.IsNotExist(err):
			actions = append(actions, fmt.Sprintf("Create %s", p))
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", p, err)
		case len(strings.TrimSpace(string(b))) > 0 && !gjson.ValidBytes(b):
			return nil, fmt.Errorf("%s is not valid JSON", p)
		case gjson.GetBytes(b, entryPath()).Exists():
			actions = append(actions, fmt.Sprintf("Replace existing %s entry in %s", ServerKey, p))
		default:
			actions = append(actions, fmt.Sprintf("Add %s entry to %s", ServerKey, p))
		}
		actions = append(actions, fmt.Sprintf("  command: %s serve", exe))
	}
	return actions, nil
}

// ExecuteInstall writes the server entry into every selected client config,
// keeping all other content of those files.
func ExecuteInstall(opts Options) ([]string, error) {
	actions, err := PlanInstall(opts)
	if err != nil {
		return nil, err
	}
	if opts.DryRun {
		return actions, nil
	}
	home, exe, clients, _ := opts.resolve()
	var written []string
	for _, c := range clients {
		p, _ := ConfigPath(c, home)
		if err := writeEntry(p, serverEntry(c, exe)); err != nil {
			return nil, err
		}
		written = append(written, p)
	}
	if err := saveMetadata(written, exe); err != nil {
		return nil, fmt.Errorf("save metadata: %w", err)
	}
	return actions, nil
}

func readConfig(p string) ([]byte, os.FileMode, error) {
	mode := os.FileMode(0o600)
	b, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return []byte("{}"), mode, nil
	}
	if err != nil {
		return nil, mode, fmt.Errorf("read %s: %w", p, err)
	}
	if fi, err := os.Stat(p); err == nil {
		mode = fi.Mode().Perm()
	}
	if len(strings.TrimSpace(string(b))) == 0 {
		return []byte("{}"), mode, nil
	}
	if !gjson.ValidBytes(b) {
		return nil, mode, fmt.Errorf("%s is not valid JSON", p)
	}
	return b, mode, nil
}

func writeEntry(p string, entry map[string]interface{}) error {
	b, mode, err := readConfig(p)
	if err != nil {
		return err
	}
	out, err := sjson.SetBytes(b, entryPath(), entry)
	if err != nil {
		return fmt.Errorf("update %s: %w", p, err)
	}
	return writeFileAtomic(p, out, mode)
}

// writeFileAtomic writes to a temp file next to p and renames it over p so
// a crash never leaves a truncated client config behind.
func writeFileAtomic(p string, data []byte, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(filepath.Dir(p), ".magick-mcp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmp := tmpFile.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp, mode); err != nil {
		return err
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("replace %s: %w", p, err)
	}
	return nil
}

// metadata stores install operations to enable uninstall
type metadata struct {
	ConfigFiles []string  `json:"config_files"`
	Command     string    `json:"command"`
	InstalledAt time.Time `json:"installed_at"`
}

func metadataPath() (string, error) {
	d, err := config.EnsureDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "install_metadata.json"), nil
}

// saveMetadata merges files into the recorded set.
func saveMetadata(files []string, command string) error {
	p, err := metadataPath()
	if err != nil {
		return err
	}
	m := metadata{Command: command, InstalledAt: time.Now()}
	if old, err := loadMetadata(); err == nil {
		m.ConfigFiles = old.ConfigFiles
	}
	for _, f := range files {
		if !contains(m.ConfigFiles, f) {
			m.ConfigFiles = append(m.ConfigFiles, f)
		}
	}
	b, _ := json.MarshalIndent(m, "", "  ")
	return os.WriteFile(p, b, 0o600)
}

func loadMetadata() (*metadata, error) {
	p, err := metadataPath()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	var m metadata
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func removeMetadata() error {
	p, err := metadataPath()
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
