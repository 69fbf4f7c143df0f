package entities

import (
	"log/slog"
	"maps"
	"slices"
)

// Error kinds carried by an ErrorDetail.
const (
	ErrorKindIntegrity  = "integrity"
	ErrorKindCapability = "capability"
	ErrorKindInterrupt  = "interrupt"
	ErrorKindConfig     = "config"
	ErrorKindValidation = "validation"
	ErrorKindInternal   = "internal"
)

// ErrorDetail is the structured form of the reason a program was
// terminated. The terminator logs it next to the plain message it prints.
type ErrorDetail struct {
	Kind    string         `json:"kind"`
	Code    string         `json:"code,omitempty"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// LogValue implements slog.LogValuer. Details follow in key order.
func (e *ErrorDetail) LogValue() slog.Value {
	if e == nil {
		return slog.StringValue("")
	}
	attrs := make([]slog.Attr, 0, 3+len(e.Details))
	attrs = append(attrs, slog.String("kind", e.Kind))
	if e.Code != "" {
		attrs = append(attrs, slog.String("code", e.Code))
	}
	attrs = append(attrs, slog.String("message", e.Message))
	for _, k := range slices.Sorted(maps.Keys(e.Details)) {
		attrs = append(attrs, slog.Any(k, e.Details[k]))
	}
	return slog.GroupValue(attrs...)
}
