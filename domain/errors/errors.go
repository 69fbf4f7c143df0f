// Package errors provides domain-specific error types for the sandbox.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/reglet-dev/runguard/domain/entities"
)

// Process exit codes.
const (
	ExitOK     = 0
	ExitDenied = 1 // capability denied or integrity violation
	ExitSignal = 1 // operator interrupt
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// DetailedError is an interface for custom error types that can convert themselves
// to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts err to an ErrorDetail. Errors without their own
// conversion become kind "internal".
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	return &entities.ErrorDetail{Kind: entities.ErrorKindInternal, Message: err.Error()}
}

// ExitCoder is implemented by errors that carry a process exit code.
type ExitCoder interface {
	ExitCode() int
}

// ExitCode returns the process exit code for err: 0 for nil, the code
// carried by an ExitCoder in the chain, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var ec ExitCoder
	if stdErrors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

// IntegrityViolationError is raised when the monitored program tries to
// reassign an internal attribute of the tracked environment view.
type IntegrityViolationError struct {
	Target string
	Attr   string
}

func (e *IntegrityViolationError) Error() string {
	return fmt.Sprintf("cannot change the %q of %s", e.Attr, e.Target)
}

// ExitCode implements ExitCoder.
func (e *IntegrityViolationError) ExitCode() int {
	return ExitDenied
}

// ToErrorDetail implements DetailedError.
func (e *IntegrityViolationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: entities.ErrorKindIntegrity, Code: e.Attr}
}

// CapabilityDeniedError represents a request that was not granted, either
// because prompting is disabled or because the operator answered no.
type CapabilityDeniedError struct {
	Class entities.ResourceClass
	Value string

	// Prompted is true when the operator explicitly denied the request.
	Prompted bool
}

func (e *CapabilityDeniedError) Error() string {
	return fmt.Sprintf("Requires %s access to %q, run again with the %s flag", e.Class, e.Value, e.Class.Flag())
}

// ExitCode implements ExitCoder.
func (e *CapabilityDeniedError) ExitCode() int {
	return ExitDenied
}

// ToErrorDetail implements DetailedError.
func (e *CapabilityDeniedError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{
		Message: e.Error(),
		Kind:    entities.ErrorKindCapability,
		Code:    e.Class.String(),
		Details: map[string]any{"value": e.Value, "prompted": e.Prompted},
	}
}

// InterruptError represents an operator interrupt (Ctrl-C) while the
// monitored program is running. It terminates without a message.
type InterruptError struct {
	Exception string
}

func (e *InterruptError) Error() string {
	return "interrupted: " + e.Exception
}

// ExitCode implements ExitCoder.
func (e *InterruptError) ExitCode() int {
	return ExitSignal
}

// Silent reports that no message should be printed on termination.
func (e *InterruptError) Silent() bool {
	return true
}

// ToErrorDetail implements DetailedError.
func (e *InterruptError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: entities.ErrorKindInterrupt, Code: e.Exception}
}

// IsSilent reports whether err asks to terminate without printing a message.
func IsSilent(err error) bool {
	var s interface{ Silent() bool }
	return stdErrors.As(err, &s) && s.Silent()
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: entities.ErrorKindConfig, Code: e.Field}
}

// SchemaError represents a schema generation or validation error.
type SchemaError struct {
	Err  error
	Type string
}

func (e *SchemaError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("schema error for type %s: %v", e.Type, e.Err)
	}
	return fmt.Sprintf("schema error: %v", e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SchemaError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: entities.ErrorKindValidation, Code: "schema"}
}

// WireFormatError represents a malformed payload exchanged with a guest.
type WireFormatError struct {
	Err       error
	Operation string
	Type      string
}

func (e *WireFormatError) Error() string {
	return fmt.Sprintf("wire format %s failed for %s: %v", e.Operation, e.Type, e.Err)
}

func (e *WireFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *WireFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Kind: entities.ErrorKindInternal, Code: "wire_format"}
}
