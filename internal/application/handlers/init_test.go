package handlers

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/balance-core/internal/infrastructure/config"
)

func TestInitHandler_Handle_Success(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(config.EnvDataDir, "")
	t.Setenv(config.EnvDBPath, "")

	handler := NewInitHandler()

	result, err := handler.Handle(t.Context(), tmpDir)

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.ConfigPath, "config.yaml")
	assert.Equal(t, filepath.Join(tmpDir, "data"), result.DataDir)
	assert.Equal(t, filepath.Join(tmpDir, ".balance", "changelog.db"), result.DatabasePath)

	assert.True(t, config.Exists(tmpDir))
	for _, dir := range []string{"units", "heroes", "spells", "consumables"} {
		info, err := os.Stat(filepath.Join(result.DataDir, dir))
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}

func TestInitHandler_Handle_AlreadyInitialized(t *testing.T) {
	tmpDir := t.TempDir()

	err := config.WriteDefault(tmpDir)
	require.NoError(t, err)

	handler := NewInitHandler()

	_, err = handler.Handle(t.Context(), tmpDir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")
}
