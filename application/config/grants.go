package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/reglet-dev/runguard/domain/errors"
	"github.com/reglet-dev/runguard/domain/permission"
)

// ValidateGrantConfig checks struct tags and the per-class value formats of
// an initial grant configuration. The first violation is returned as a
// ConfigError naming the offending field.
func ValidateGrantConfig(g *entities.GrantConfig) error {
	if g == nil {
		return nil
	}

	if err := validate.Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return &errors.ConfigError{
				Field: fieldPath(fe.Namespace()),
				Err:   fmt.Errorf("failed on the %q rule", fe.Tag()),
			}
		}
		return &errors.ConfigError{Err: err}
	}

	for i, v := range g.Net.Values {
		if _, err := permission.ParseAddress(v); err != nil {
			return &errors.ConfigError{Field: fmt.Sprintf("net.values[%d]", i), Err: err}
		}
	}
	return nil
}

// fieldPath turns "GrantConfig.Net.Values[0]" into "net.values[0]".
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		rest = namespace
	}
	return strings.ToLower(rest)
}
