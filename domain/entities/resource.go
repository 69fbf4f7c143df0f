package entities

import "fmt"

// ResourceClass identifies one of the sensitive resource classes a monitored
// program can request access to.
type ResourceClass int

const (
	ResourceEnv   ResourceClass = iota // Environment variables
	ResourceNet                        // Outbound network endpoints
	ResourceRead                       // Filesystem reads
	ResourceWrite                      // Filesystem writes
	ResourceRun                        // Subprocess execution
)

// resourceClasses lists every class in declaration order.
var resourceClasses = []ResourceClass{
	ResourceEnv,
	ResourceNet,
	ResourceRead,
	ResourceWrite,
	ResourceRun,
}

// ResourceClasses returns all resource classes in a stable order.
func ResourceClasses() []ResourceClass {
	out := make([]ResourceClass, len(resourceClasses))
	copy(out, resourceClasses)
	return out
}

// String returns the lower-case name used in flags, prompts and messages.
func (c ResourceClass) String() string {
	switch c {
	case ResourceEnv:
		return "env"
	case ResourceNet:
		return "net"
	case ResourceRead:
		return "read"
	case ResourceWrite:
		return "write"
	case ResourceRun:
		return "run"
	default:
		return "unknown"
	}
}

// Flag returns the command-line flag that pre-authorizes this class.
func (c ResourceClass) Flag() string {
	return "--allow-" + c.String()
}

// Valid reports whether c is one of the declared classes.
func (c ResourceClass) Valid() bool {
	return c >= ResourceEnv && c <= ResourceRun
}

// ParseResourceClass maps a class name back to its ResourceClass.
func ParseResourceClass(name string) (ResourceClass, error) {
	for _, c := range resourceClasses {
		if c.String() == name {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown resource class %q", name)
}
