package install

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Status reports where the server entry is currently registered.
type Status struct {
	Client     string
	ConfigPath string
	Registered bool
	Command    string
}

// GetStatus inspects the config file of every known client under home
// (empty means the user's home directory).
func GetStatus(home string) ([]Status, error) {
	if home == "" {
		h, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		home = h
	}
	var out []Status
	for _, c := range []string{ClientClaude, ClientCursor} {
		p, _ := ConfigPath(c, home)
		st := Status{Client: c, ConfigPath: p}
		if b, err := os.ReadFile(p); err == nil && gjson.ValidBytes(b) {
			e := gjson.GetBytes(b, entryPath())
			st.Registered = e.Exists()
			st.Command = e.Get("command").String()
		}
		out = append(out, st)
	}
	return out, nil
}

// targets returns the config files to clean: the recorded ones, or every
// known client config when no metadata exists.
func targets(home string) ([]string, bool, error) {
	if m, err := loadMetadata(); err == nil && len(m.ConfigFiles) > 0 {
		return m.ConfigFiles, true, nil
	}
	st, err := GetStatus(home)
	if err != nil {
		return nil, false, err
	}
	var files []string
	for _, s := range st {
		files = append(files, s.ConfigPath)
	}
	return files, false, nil
}

// PlanUninstall returns the actions Uninstall would perform.
func PlanUninstall(home string) ([]string, error) {
	files, recorded, err := targets(home)
	if err != nil {
		return nil, err
	}
	actions := []string{}
	if !recorded {
		actions = append(actions, "No install metadata found; checking known client configs.")
	}
	for _, p := range files {
		b, err := os.ReadFile(p)
		if err != nil || !gjson.GetBytes(b, entryPath()).Exists() {
			continue
		}
		actions = append(actions, fmt.Sprintf("Remove %s entry from %s", ServerKey, p))
	}
	if len(actions) == 0 || (!recorded && len(actions) == 1) {
		actions = append(actions, fmt.Sprintf("Nothing to do: %s is not registered with any client", ServerKey))
	}
	return actions, nil
}

// Uninstall removes the server entry from every config it was written to.
// Other servers and settings in those files are kept.
func Uninstall(home string, dryRun bool) ([]string, error) {
	actions, err := PlanUninstall(home)
	if err != nil {
		return nil, err
	}
	if dryRun {
		return actions, nil
	}
	files, _, err := targets(home)
	if err != nil {
		return nil, err
	}
	for _, p := range files {
		b, mode, err := readConfig(p)
		if err != nil {
			return nil, err
		}
		if !gjson.GetBytes(b, entryPath()).Exists() {
			continue
		}
		out, err := sjson.DeleteBytes(b, entryPath())
		if err != nil {
			return nil, fmt.Errorf("update %s: %w", p, err)
		}
		if err := writeFileAtomic(p, out, mode); err != nil {
			return nil, err
		}
	}
	if err := removeMetadata(); err != nil {
		return nil, err
	}
	return actions, nil
}
