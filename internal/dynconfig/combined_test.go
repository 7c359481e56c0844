package dynconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCombinedLoaderFallsBackToDefaultWithoutFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	combined := NewCombinedLoader(NewFileLoader(path), NewEnvLoader("LSPBRIDGE_COMBINED_TEST_"))

	cfg, err := combined.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, Default().Processing.ChunkSize, cfg.Processing.ChunkSize)
}

func TestCombinedLoaderLayersEnvOntoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	fileLoader := NewFileLoader(path)

	fileCfg := Default()
	fileCfg.Processing.ChunkSize = 75
	fileCfg.Memory.MaxMemoryMB = 2048
	require.NoError(t, fileLoader.Save(context.Background(), fileCfg))

	t.Setenv("LSPBRIDGE_COMBINED_MAX_MEMORY_MB", "4096")
	combined := NewCombinedLoader(fileLoader, NewEnvLoader("LSPBRIDGE_COMBINED_"))

	cfg, err := combined.Load(context.Background())
	require.NoError(t, err)

	// File value survives where env did not override it.
	require.Equal(t, 75, cfg.Processing.ChunkSize)
	// Env layers on top of the file value for fields it recognizes.
	require.Equal(t, 4096, cfg.Memory.MaxMemoryMB)
}

func TestCombinedLoaderSaveWritesThroughFileLayer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	combined := NewCombinedLoader(NewFileLoader(path), NewEnvLoader(""))

	require.NoError(t, combined.Save(context.Background(), Default()))
	_, err := os.Stat(path)
	require.NoError(t, err)
}
