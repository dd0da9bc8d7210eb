package parse

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/oduya/receipt-tracker/constants"
)

// moneyPattern matches the quoted decimal string shopspring emits.
const moneyPattern = `^-?[0-9]+(\.[0-9]+)?$`

// BuildResultJSONSchema returns the JSON Schema (draft 2020-12) describing a
// marshalled Result. Used to validate results at API and export boundaries.
func BuildResultJSONSchema() map[string]any {
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"vendor", "amount", "date", "category",
			"line_items", "raw_text", "success",
		},
		"properties": map[string]any{
			"vendor": map[string]any{"type": []string{"string", "null"}},
			"amount": map[string]any{
				"type":    []string{"string", "null"},
				"pattern": moneyPattern,
			},
			"date":     map[string]any{"type": []string{"string", "null"}},
			"category": map[string]any{"enum": constants.AsStringSlice()},
			"line_items": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":                 "object",
					"additionalProperties": false,
					"required":             []string{"name", "quantity", "unit_price", "total_price"},
					"properties": map[string]any{
						"name":        map[string]any{"type": "string", "minLength": 1},
						"quantity":    map[string]any{"type": "integer", "minimum": 1},
						"unit_price":  map[string]any{"type": "string", "pattern": moneyPattern},
						"total_price": map[string]any{"type": "string", "pattern": moneyPattern},
					},
				},
			},
			"raw_text": map[string]any{"type": "string"},
			"success":  map[string]any{"type": "boolean"},
			"error":    map[string]any{"type": "string"},
		},
	}
}

// ValidateResultJSON validates "data" against the Result schema.
func ValidateResultJSON(data []byte) error {
	b, err := json.Marshal(BuildResultJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("result.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("result.json")
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
