// Package schema provides JSON schema generation for grants documents.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/errors"
)

// GenerateSchema creates a JSON schema from a Go struct.
// It uses the `invopop/jsonschema` library to reflect on the struct
// and generate a standard JSON Schema (Draft 2020-12).
func GenerateSchema(v interface{}) ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true, // Expand struct definitions inline
	}
	schema := reflector.Reflect(v)

	jsonBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	return jsonBytes, nil
}

// GrantsSchema returns the schema of a grants file.
func GrantsSchema() ([]byte, error) {
	b, err := GenerateSchema(&entities.GrantConfig{})
	if err != nil {
		return nil, &errors.SchemaError{Type: "GrantConfig", Err: err}
	}
	return b, nil
}
