// Package parser decodes grants documents.
package parser

import (
	"bytes"
	"errors"
	"io"

	"github.com/reglet-dev/runguard/domain/entities"
	domainerrors "github.com/reglet-dev/runguard/domain/errors"
	"github.com/reglet-dev/runguard/domain/ports"
	"gopkg.in/yaml.v3"
)

// YamlGrantParser implements GrantParser for YAML. JSON documents parse too,
// being valid YAML.
type YamlGrantParser struct{}

// NewYamlGrantParser creates a new YamlGrantParser.
func NewYamlGrantParser() ports.GrantParser {
	return &YamlGrantParser{}
}

// Parse unmarshals YAML bytes into a GrantConfig. Unknown keys are rejected;
// an empty document yields an empty config.
func (p *YamlGrantParser) Parse(data []byte) (*entities.GrantConfig, error) {
	var cfg entities.GrantConfig

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, &domainerrors.WireFormatError{Operation: "unmarshal", Type: "GrantConfig", Err: err}
	}
	return &cfg, nil
}
