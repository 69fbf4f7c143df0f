package config

import (
	"errors"
	"log/slog"
	"testing"

	"github.com/reglet-dev/runguard/domain/entities"
	domainerrors "github.com/reglet-dev/runguard/domain/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestIsEnvSet(t *testing.T) {
	for _, v := range []string{"1", "true", "TRUE", "yes", " Yes "} {
		assert.True(t, IsEnvSet(v), v)
	}
	for _, v := range []string{"", "0", "false", "no", "on", "y"} {
		assert.False(t, IsEnvSet(v), v)
	}
}

func TestLoadSettings_Defaults(t *testing.T) {
	s, err := LoadSettings(envMap(nil))
	require.NoError(t, err)
	assert.False(t, s.NoPrompt)
	assert.Equal(t, slog.LevelWarn, s.LogLevel)
	assert.Equal(t, LogFormatAuto, s.LogFormat)
}

func TestLoadSettings_FromEnvironment(t *testing.T) {
	s, err := LoadSettings(envMap(map[string]string{
		EnvNoPrompt:  "yes",
		EnvLogLevel:  "debug",
		EnvLogFormat: "JSON",
	}))
	require.NoError(t, err)
	assert.True(t, s.NoPrompt)
	assert.Equal(t, slog.LevelDebug, s.LogLevel)
	assert.Equal(t, LogFormatJSON, s.LogFormat)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"level", map[string]string{EnvLogLevel: "loud"}, EnvLogLevel},
		{"format", map[string]string{EnvLogFormat: "xml"}, EnvLogFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(envMap(tt.env))
			var cfgErr *domainerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestValidateGrantConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *entities.GrantConfig
		wantErr string
	}{
		{name: "nil", cfg: nil},
		{name: "empty", cfg: &entities.GrantConfig{}},
		{
			name: "valid",
			cfg: &entities.GrantConfig{
				Env: entities.Selection{Values: []string{"HOME"}},
				Net: entities.Selection{Values: []string{"example.com", "[::1]:80"}},
				Run: entities.Selection{All: true},
			},
		},
		{
			name:    "blank value",
			cfg:     &entities.GrantConfig{Read: entities.Selection{Values: []string{"/tmp", ""}}},
			wantErr: "read.values[1]",
		},
		{
			name:    "bad port",
			cfg:     &entities.GrantConfig{Net: entities.Selection{Values: []string{"example.com:https"}}},
			wantErr: "net.values[0]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrantConfig(tt.cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *domainerrors.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantErr, cfgErr.Field)
		})
	}
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "net.values[0]", fieldPath("GrantConfig.Net.Values[0]"))
	assert.Equal(t, "env", fieldPath("Env"))
}
