package mcpserver

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/kballard/go-shellquote"
)

// Argv is one command's argument vector. In JSON it is either an array of
// strings, passed through untouched, or a single string split with POSIX
// shell word rules (quotes only; nothing is expanded).
type Argv []string

// UnmarshalJSON implements json.Unmarshaler.
func (a *Argv) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		words, err := shellquote.Split(s)
		if err != nil {
			return fmt.Errorf("split command %q: %w", s, err)
		}
		*a = words
		return nil
	}
	var words []string
	if err := json.Unmarshal(b, &words); err != nil {
		return fmt.Errorf("command must be a string or an array of strings: %w", err)
	}
	*a = words
	return nil
}

// JSONSchema describes the two accepted encodings.
func (Argv) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Description: "Arguments for the magick binary, without the leading 'magick'",
		OneOf: []*jsonschema.Schema{
			{Type: "array", Items: &jsonschema.Schema{Type: "string"}},
			{Type: "string"},
		},
	}
}

// CheckInput takes no arguments.
type CheckInput struct{}

// MagickInput is the input of the magick tool. Exactly one of Args and
// Command is expected; Command is kept for clients that send a single line.
type MagickInput struct {
	Args      Argv   `json:"args,omitempty" jsonschema_description:"Argument vector, e.g. [\"in.png\",\"-negate\",\"out.png\"]"`
	Command   string `json:"command,omitempty" jsonschema_description:"Arguments as one line, e.g. 'in.png -negate out.png'"`
	Workspace string `json:"workspace,omitempty" jsonschema_description:"Directory to run in"`
}

func (in MagickInput) argv() ([]string, error) {
	if len(in.Args) > 0 && in.Command != "" {
		return nil, fmt.Errorf("give either args or command, not both")
	}
	if in.Command != "" {
		words, err := shellquote.Split(in.Command)
		if err != nil {
			return nil, fmt.Errorf("split command: %w", err)
		}
		return words, nil
	}
	if len(in.Args) == 0 {
		return nil, fmt.Errorf("missing required parameter: args")
	}
	return in.Args, nil
}

// FuncSaveInput is the input of func_save.
type FuncSaveInput struct {
	Name     string `json:"name" jsonschema:"minLength=1" jsonschema_description:"Unique function name"`
	Commands []Argv `json:"commands" jsonschema:"minItems=1" jsonschema_description:"Commands run in order; $input is replaced by the input path"`
}

func (in FuncSaveInput) commands() [][]string {
	out := make([][]string, len(in.Commands))
	for i, c := range in.Commands {
		out[i] = []string(c)
	}
	return out
}

// FuncExecuteInput is the input of func_execute.
type FuncExecuteInput struct {
	Name      string `json:"name" jsonschema:"minLength=1" jsonschema_description:"Name of a saved function"`
	Input     string `json:"input" jsonschema_description:"Path substituted for $input"`
	Workspace string `json:"workspace,omitempty" jsonschema_description:"Directory to run in"`
}

// FuncListInput takes no arguments.
type FuncListInput struct{}

// decode strictly unmarshals raw into v. Empty input and null are treated
// as an empty object.
func decode(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		raw = []byte("{}")
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}
