package ports

import "github.com/reglet-dev/runguard/domain/entities"

// GrantStore provides persistence for capability grants.
type GrantStore interface {
	// Load retrieves all granted capabilities.
	// Returns empty GrantConfig (not error) if no grants exist.
	Load() (*entities.GrantConfig, error)

	// Save persists the granted capabilities.
	Save(grants *entities.GrantConfig) error

	// ConfigPath returns the path to the backing store (for user messaging).
	ConfigPath() string
}
