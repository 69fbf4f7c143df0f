package ports

import "github.com/reglet-dev/runguard/domain/entities"

// DecisionObserver is called after every capability check.
// Implementations can log, collect metrics, or take other actions.
type DecisionObserver interface {
	OnDecision(req entities.CapabilityRequest, decision entities.Decision)
}
