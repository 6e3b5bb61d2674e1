package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentModels(t *testing.T) {
	ms := PersistentModels()
	require.Len(t, ms, 4)
	for _, m := range ms {
		assert.NotNil(t, m)
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms, "embedded migrations should be registered at init")
	assert.Equal(t, 1, ms[0].Version)
	assert.NotEmpty(t, ms[0].UpScript)
	assert.NotEmpty(t, ms[0].DownScript)
}
