package entities_test

import (
	"testing"

	"github.com/reglet-dev/runguard/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceClass_String(t *testing.T) {
	assert.Equal(t, "env", entities.ResourceEnv.String())
	assert.Equal(t, "net", entities.ResourceNet.String())
	assert.Equal(t, "read", entities.ResourceRead.String())
	assert.Equal(t, "write", entities.ResourceWrite.String())
	assert.Equal(t, "run", entities.ResourceRun.String())
	assert.Equal(t, "unknown", entities.ResourceClass(42).String())
	assert.Equal(t, "--allow-write", entities.ResourceWrite.Flag())
}

func TestParseResourceClass(t *testing.T) {
	for _, c := range entities.ResourceClasses() {
		got, err := entities.ParseResourceClass(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
		assert.True(t, got.Valid())
	}

	_, err := entities.ParseResourceClass("kv")
	assert.Error(t, err)
	assert.False(t, entities.ResourceClass(-1).Valid())
}
