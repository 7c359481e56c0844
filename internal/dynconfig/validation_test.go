package dynconfig

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsDefault(t *testing.T) {
	require.NoError(t, Validate(Default()))
}

func TestValidateRejectsZeroChunkSize(t *testing.T) {
	cfg := Default()
	cfg.Processing.ChunkSize = 0
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsInvertedWaterMarks(t *testing.T) {
	cfg := Default()
	cfg.Memory.LowWaterMark = 0.9
	cfg.Memory.HighWaterMark = 0.5
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsUnknownEvictionPolicy(t *testing.T) {
	cfg := Default()
	cfg.Memory.EvictionPolicy = "Unknown"
	require.Error(t, Validate(cfg))
}

func TestValidateStructuralRejectsCacheLargerThanMemory(t *testing.T) {
	cfg := Default()
	cfg.Memory.MaxMemoryMB = 128
	cfg.Cache.MaxSizeMB = 256
	require.Error(t, Validate(cfg))
}

func TestValidateStructuralRejectsTinyMemoryLimit(t *testing.T) {
	cfg := Default()
	cfg.Memory.MaxMemoryMB = 32
	require.Error(t, Validate(cfg))
}

func TestValidateRejectsLowPrometheusPort(t *testing.T) {
	cfg := Default()
	cfg.Metrics.PrometheusPort = 80
	require.Error(t, Validate(cfg))
}

func TestRuleRegistryValidatesRegisteredField(t *testing.T) {
	reg := NewRuleRegistry()
	reg.Add("cache.cache_dir", func(v string) bool { return v != "" })

	require.NoError(t, reg.Validate("cache.cache_dir", "/tmp/cache"))
	require.Error(t, reg.Validate("cache.cache_dir", ""))
}

func TestRuleRegistryIgnoresUnregisteredField(t *testing.T) {
	reg := NewRuleRegistry()
	require.NoError(t, reg.Validate("nothing.here", "anything"))
}
