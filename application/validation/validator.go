// Package validation checks grants documents against the generated schema
// before they are parsed.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/reglet-dev/runguard/application/schema"
	"github.com/reglet-dev/runguard/domain/errors"
	"github.com/reglet-dev/runguard/domain/ports"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

const grantsSchemaURL = "runguard://grants.schema.json"

// GrantsValidator implements validation using the grants JSON schema.
type GrantsValidator struct {
	schema *jsonschema.Schema
}

// Ensure implementation satisfies the interface.
var _ ports.GrantValidator = (*GrantsValidator)(nil)

// NewGrantsValidator compiles the grants schema.
func NewGrantsValidator() (*GrantsValidator, error) {
	raw, err := schema.GrantsSchema()
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(grantsSchemaURL, bytes.NewReader(raw)); err != nil {
		return nil, &errors.SchemaError{Type: "GrantConfig", Err: fmt.Errorf("failed to add schema resource: %w", err)}
	}
	sch, err := compiler.Compile(grantsSchemaURL)
	if err != nil {
		return nil, &errors.SchemaError{Type: "GrantConfig", Err: fmt.Errorf("invalid schema: %w", err)}
	}
	return &GrantsValidator{schema: sch}, nil
}

// Validate checks a YAML or JSON grants document. An empty document is valid.
func (v *GrantsValidator) Validate(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return &errors.WireFormatError{Operation: "unmarshal", Type: "GrantConfig", Err: err}
	}
	if doc == nil {
		return nil
	}

	// Round-trip through JSON so the validator sees JSON types only.
	b, err := json.Marshal(doc)
	if err != nil {
		return &errors.WireFormatError{Operation: "marshal", Type: "GrantConfig", Err: err}
	}
	var obj interface{}
	if err := json.Unmarshal(b, &obj); err != nil {
		return &errors.WireFormatError{Operation: "unmarshal", Type: "GrantConfig", Err: err}
	}

	if err := v.schema.Validate(obj); err != nil {
		return &errors.SchemaError{Type: "GrantConfig", Err: err}
	}
	return nil
}
