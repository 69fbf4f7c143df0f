// Package ports defines the collaborators of the dispatcher.
// These ports enable dependency inversion - domain logic depends on abstractions,
// and infrastructure adapters implement these interfaces.
package ports
