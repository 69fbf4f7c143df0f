// Package entities provides the core domain types of the sandbox: resource
// classes, capability values, grant rules and requests, the initial grant
// configuration, and the operation events reported by the interception
// substrate.
package entities
