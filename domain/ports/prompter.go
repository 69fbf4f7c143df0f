package ports

import (
	"context"

	"github.com/reglet-dev/runguard/domain/entities"
)

// PromptRequest describes a capability request put to the operator.
type PromptRequest struct {
	Request entities.CapabilityRequest

	// Display is the value as shown to the operator. For network requests it
	// may carry the hostname the address was resolved from.
	Display string

	Risk entities.RiskLevel
}

// Prompter handles interactive capability authorization.
type Prompter interface {
	// IsInteractive returns true if running in an interactive terminal.
	IsInteractive() bool

	// Prompt blocks until the operator allows or denies the request.
	Prompt(ctx context.Context, req PromptRequest) (granted bool, err error)
}
