package fields

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/joseph-ayodele/receipt-recognizer/constants"
)

// BuildRecordSchema returns a JSON-Schema (draft 2020-12 subset) as a
// generic map describing the serialized Record. Exporters and callers use
// it to check output before handing records downstream.
func BuildRecordSchema() map[string]any {
	methods := append(constants.PaymentMethods(), string(constants.PaymentUnknown))
	props := map[string]any{
		"invoice_number": map[string]any{"type": "string"},
		"store_name":     map[string]any{"type": "string", "minLength": 1},
		"amount":         map[string]any{"type": "number", "minimum": 0.0},
		"currency":       map[string]any{"type": "string", "pattern": `^([A-Z]{3})?$`},
		"date":           map[string]any{"type": "string", "minLength": 1},
		"payment_method": map[string]any{"type": "string", "enum": methods},
		"items": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"quantity":    map[string]any{"type": "integer", "minimum": 0},
					"description": map[string]any{"type": "string"},
					"price":       map[string]any{"type": "number", "minimum": 0.0},
				},
				"required": []string{"quantity", "description", "price"},
			},
		},
		"tax_info": map[string]any{
			"type":                 "object",
			"additionalProperties": map[string]any{"type": "number"},
		},
		"confidence": map[string]any{"type": "number", "minimum": 0.0, "maximum": 1.0},
		"extraction_method": map[string]any{
			"type": "string",
			"enum": []string{MethodRegex, MethodStructured, MethodStructuredTables},
		},
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
		"required":             []string{"store_name", "amount", "currency", "date", "confidence", "extraction_method"},
	}
}

// CheckRecordSchema validates the record's JSON form against the schema.
func CheckRecordSchema(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return validateAgainstSchema(BuildRecordSchema(), data)
}

func validateAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("record.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("record.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("record does not match schema: %w", err)
	}
	return nil
}
