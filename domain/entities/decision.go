package entities

// Decision is the resolution of a capability request.
type Decision int

const (
	// DecisionAllowed means an existing grant covered the request.
	DecisionAllowed Decision = iota

	// DecisionGranted means the operator approved the request interactively.
	DecisionGranted

	// DecisionDenied means the request was refused and the program terminated.
	DecisionDenied
)

// String returns the string representation of a Decision.
func (d Decision) String() string {
	switch d {
	case DecisionAllowed:
		return "allowed"
	case DecisionGranted:
		return "granted"
	case DecisionDenied:
		return "denied"
	default:
		return "unknown"
	}
}
