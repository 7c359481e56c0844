package dynconfig

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFileLoaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	loader := NewFileLoader(path)

	require.False(t, loader.Exists(context.Background()))

	cfg := Default()
	cfg.Processing.ChunkSize = 250
	require.NoError(t, loader.Save(context.Background(), cfg))
	require.True(t, loader.Exists(context.Background()))

	loaded, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 250, loaded.Processing.ChunkSize)
	require.Equal(t, cfg.Memory.EvictionPolicy, loaded.Memory.EvictionPolicy)
}

func TestFileLoaderLoadMissingFileFails(t *testing.T) {
	loader := NewFileLoader(filepath.Join(t.TempDir(), "missing.toml"))
	_, err := loader.Load(context.Background())
	require.Error(t, err)
}

func TestEnvLoaderAppliesRecognizedOverrides(t *testing.T) {
	t.Setenv("LSPBRIDGE_MAX_MEMORY_MB", "2048")
	t.Setenv("LSPBRIDGE_PARALLEL_PROCESSING", "false")
	t.Setenv("LSPBRIDGE_EVICTION_POLICY", "LRU")

	loader := NewEnvLoader("")
	require.True(t, loader.Exists(context.Background()))

	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2048, cfg.Memory.MaxMemoryMB)
	require.False(t, cfg.Processing.ParallelProcessing)
	require.Equal(t, "LRU", cfg.Memory.EvictionPolicy)
}

func TestEnvLoaderLeavesUnsetFieldsAtDefault(t *testing.T) {
	loader := NewEnvLoader("LSPBRIDGE_TEST_UNSET_")
	cfg, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, Default().Cache.MaxSizeMB, cfg.Cache.MaxSizeMB)
}

func TestEnvLoaderSaveIsUnsupported(t *testing.T) {
	loader := NewEnvLoader("")
	err := loader.Save(context.Background(), Default())
	require.Error(t, err)
}

func TestFileLoaderSaveCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "config.toml")
	loader := NewFileLoader(path)
	require.NoError(t, loader.Save(context.Background(), Default()))

	_, err := os.Stat(path)
	require.NoError(t, err)
}
