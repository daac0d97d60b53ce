package mcpserver

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// InputSchema reflects the JSON Schema of a tool input type. Properties are
// inlined and unknown properties rejected.
func InputSchema(v interface{}) *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	return r.Reflect(v)
}

// SchemaJSON renders the input schema of the named tool.
func SchemaJSON(tool string) ([]byte, bool, error) {
	for _, t := range toolSpecs {
		if t.Name == tool {
			b, err := json.MarshalIndent(InputSchema(t.Input), "", "  ")
			return b, true, err
		}
	}
	return nil, false, nil
}
