// Package config loads runtime settings and validates initial grant
// configurations.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/reglet-dev/runguard/domain/errors"
)

// Environment toggles read before the monitored program starts.
const (
	EnvNoPrompt  = "RUNGUARD_NO_PROMPT"
	EnvLogLevel  = "RUNGUARD_LOG_LEVEL"
	EnvLogFormat = "RUNGUARD_LOG_FORMAT"
)

// Log formats accepted in RUNGUARD_LOG_FORMAT.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// validate is a package-level singleton for better performance.
// Creating a new validator on each call is expensive; reusing is recommended.
var validate = validator.New()

// Settings are the runtime toggles that do not come from flags.
type Settings struct {
	// NoPrompt makes every un-granted request fatal.
	NoPrompt bool

	LogLevel  slog.Level
	LogFormat string `validate:"oneof=auto text json"`
}

// IsEnvSet reports whether a toggle value means "on": 1, true or yes,
// case-insensitive.
func IsEnvSet(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}

// LoadSettings reads the toggles through getenv (normally os.Getenv).
func LoadSettings(getenv func(string) string) (*Settings, error) {
	s := &Settings{
		NoPrompt:  IsEnvSet(getenv(EnvNoPrompt)),
		LogLevel:  slog.LevelWarn,
		LogFormat: LogFormatAuto,
	}

	if v := strings.TrimSpace(getenv(EnvLogLevel)); v != "" {
		if err := s.LogLevel.UnmarshalText([]byte(v)); err != nil {
			return nil, &errors.ConfigError{Field: EnvLogLevel, Err: err}
		}
	}
	if v := strings.TrimSpace(getenv(EnvLogFormat)); v != "" {
		s.LogFormat = strings.ToLower(v)
	}

	if err := validate.Struct(s); err != nil {
		return nil, &errors.ConfigError{
			Field: EnvLogFormat,
			Err:   fmt.Errorf("unsupported log format %q", s.LogFormat),
		}
	}
	return s, nil
}
