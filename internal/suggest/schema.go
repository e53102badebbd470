package suggest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// BuildSuggestionJSONSchema returns a JSON-Schema subset as a generic map.
// All three fields are optional: the model omits what it cannot tell.
// A non-empty docTypes list constrains dokumenttyp to the known tags.
func BuildSuggestionJSONSchema(docTypes []string) map[string]any {
	props := map[string]any{
		"datum":         map[string]any{"type": "string", "pattern": `^\d{4}-\d{2}-\d{2}$`},
		"korrespondent": map[string]any{"type": "string", "minLength": 1},
		"dokumenttyp":   map[string]any{"type": "string", "minLength": 1},
	}
	if len(docTypes) > 0 {
		props["dokumenttyp"] = map[string]any{
			"type": "string",
			"enum": docTypes,
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}
