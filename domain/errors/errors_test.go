package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilityDeniedError(t *testing.T) {
	err := &CapabilityDeniedError{
		Class: entities.ResourceRead,
		Value: "/etc/passwd",
	}

	assert.Equal(t, `Requires read access to "/etc/passwd", run again with the --allow-read flag`, err.Error())
	assert.Equal(t, ExitDenied, ExitCode(err))
	assert.False(t, IsSilent(err))

	wrapped := fmt.Errorf("dispatch: %w", err)
	var denied *CapabilityDeniedError
	require.True(t, errors.As(wrapped, &denied))
	assert.Equal(t, "/etc/passwd", denied.Value)
	assert.Equal(t, ExitDenied, ExitCode(wrapped))

	detail := ToErrorDetail(wrapped)
	assert.Equal(t, entities.ErrorKindCapability, detail.Kind)
	assert.Equal(t, "read", detail.Code)
	assert.Equal(t, "/etc/passwd", detail.Details["value"])
}

func TestIntegrityViolationError(t *testing.T) {
	err := &IntegrityViolationError{Target: "environ", Attr: "lookup"}

	assert.Equal(t, `cannot change the "lookup" of environ`, err.Error())
	assert.Equal(t, ExitDenied, ExitCode(err))
	assert.Equal(t, entities.ErrorKindIntegrity, ToErrorDetail(err).Kind)
}

func TestInterruptError(t *testing.T) {
	err := &InterruptError{Exception: entities.ExceptionInterrupt}

	assert.Equal(t, ExitSignal, ExitCode(err))
	assert.True(t, IsSilent(err))
	assert.True(t, IsSilent(fmt.Errorf("wrapped: %w", err)))
	assert.Equal(t, entities.ErrorKindInterrupt, ToErrorDetail(err).Kind)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(fmt.Errorf("boom")))
}

func TestToErrorDetail_Generic(t *testing.T) {
	assert.Nil(t, ToErrorDetail(nil))

	detail := ToErrorDetail(fmt.Errorf("boom"))
	assert.Equal(t, entities.ErrorKindInternal, detail.Kind)
	assert.Equal(t, "boom", detail.Message)

	cfg := ToErrorDetail(fmt.Errorf("load: %w", &ConfigError{Field: "env", Err: fmt.Errorf("bad")}))
	assert.Equal(t, entities.ErrorKindConfig, cfg.Kind)
	assert.Equal(t, "env", cfg.Code)
}

func TestConfigError(t *testing.T) {
	baseErr := fmt.Errorf("invalid format")
	err := &ConfigError{
		Field: "net.values[0]",
		Err:   baseErr,
	}

	assert.Equal(t, "config validation failed for field 'net.values[0]': invalid format", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	var confErr *ConfigError
	require.True(t, errors.As(err, &confErr))
	assert.Equal(t, "net.values[0]", confErr.Field)
}

func TestConfigError_NoField(t *testing.T) {
	baseErr := fmt.Errorf("missing required fields")
	err := &ConfigError{
		Err: baseErr,
	}

	assert.Equal(t, "config validation failed: missing required fields", err.Error())
}

func TestSchemaError(t *testing.T) {
	baseErr := fmt.Errorf("unsupported type")
	err := &SchemaError{
		Type: "GrantConfig",
		Err:  baseErr,
	}

	assert.Equal(t, "schema error for type GrantConfig: unsupported type", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "GrantConfig", schemaErr.Type)
}

func TestSchemaError_NoType(t *testing.T) {
	baseErr := fmt.Errorf("invalid schema")
	err := &SchemaError{
		Err: baseErr,
	}

	assert.Equal(t, "schema error: invalid schema", err.Error())
}

func TestWireFormatError(t *testing.T) {
	baseErr := fmt.Errorf("invalid json")
	err := &WireFormatError{
		Operation: "unmarshal",
		Type:      "Event",
		Err:       baseErr,
	}

	assert.Equal(t, "wire format unmarshal failed for Event: invalid json", err.Error())
	assert.True(t, errors.Is(err, baseErr))

	var wireErr *WireFormatError
	require.True(t, errors.As(err, &wireErr))
	assert.Equal(t, "unmarshal", wireErr.Operation)
	assert.Equal(t, "Event", wireErr.Type)
}

func TestErrorUnwrapping(t *testing.T) {
	baseErr := fmt.Errorf("base error")

	tests := []struct {
		name string
		err  error
	}{
		{"ConfigError", &ConfigError{Field: "test", Err: baseErr}},
		{"SchemaError", &SchemaError{Type: "test", Err: baseErr}},
		{"WireFormatError", &WireFormatError{Operation: "test", Type: "test", Err: baseErr}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, baseErr), "errors.Is should find base error")
			unwrapped := errors.Unwrap(tt.err)
			assert.Equal(t, baseErr, unwrapped, "errors.Unwrap should return base error")
		})
	}
}
