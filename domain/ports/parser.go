package ports

import "github.com/reglet-dev/runguard/domain/entities"

// GrantParser parses a raw grants document into a GrantConfig.
type GrantParser interface {
	Parse(data []byte) (*entities.GrantConfig, error)
}
