package dynconfig

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestCalculateChangesDetectsTrackedFields(t *testing.T) {
	old := Default()
	newCfg := Default()
	newCfg.Processing.ChunkSize = 500
	newCfg.Memory.EvictionPolicy = "LRU"

	changes := CalculateChanges(old, newCfg, time.Unix(0, 0))
	require.Len(t, changes, 2)

	paths := map[string]ConfigChange{}
	for _, c := range changes {
		paths[c.FieldPath] = c
	}
	require.Contains(t, paths, "processing.chunk_size")
	require.Equal(t, "100", paths["processing.chunk_size"].OldValue)
	require.Equal(t, "500", paths["processing.chunk_size"].NewValue)
	require.Contains(t, paths, "memory.eviction_policy")
}

func TestCalculateChangesIsEmptyForIdenticalConfigs(t *testing.T) {
	cfg := Default()
	changes := CalculateChanges(cfg, cfg, time.Unix(0, 0))
	require.Empty(t, changes)
}

func TestCalculateChangesIgnoresUntrackedFields(t *testing.T) {
	old := Default()
	newCfg := Default()
	newCfg.Git.ScanIntervalSeconds = 999

	changes := CalculateChanges(old, newCfg, time.Unix(0, 0))
	require.Empty(t, changes)
}
