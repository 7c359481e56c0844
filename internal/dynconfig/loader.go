package dynconfig

import (
	"context"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// Loader is a configuration source, grounded on
// original_source/src/core/dynamic_config/loader/mod.rs's ConfigLoader
// trait.
type Loader interface {
	Load(ctx context.Context) (Config, error)
	Save(ctx context.Context, cfg Config) error
	Exists(ctx context.Context) bool
	Type() string
}

// FileLoader reads and writes a TOML document at a fixed path.
type FileLoader struct {
	Path string
}

func NewFileLoader(path string) *FileLoader { return &FileLoader{Path: path} }

func (l *FileLoader) Type() string { return "file" }

func (l *FileLoader) Exists(ctx context.Context) bool {
	_, err := os.Stat(l.Path)
	return err == nil
}

func (l *FileLoader) Load(ctx context.Context) (Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(l.Path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Config{}, lsperrors.New(lsperrors.KindFile, lsperrors.ReasonNotFound, "dynconfig.load", l.Path, err)
		}
		return Config{}, lsperrors.New(lsperrors.KindConfig, lsperrors.ReasonValidation, "dynconfig.load", l.Path, err)
	}
	return cfg, nil
}

func (l *FileLoader) Save(ctx context.Context, cfg Config) error {
	if dir := filepath.Dir(l.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return lsperrors.New(lsperrors.KindFile, lsperrors.ReasonDirOp, "dynconfig.save", dir, err)
		}
	}

	f, err := os.Create(l.Path)
	if err != nil {
		return lsperrors.New(lsperrors.KindFile, lsperrors.ReasonPermission, "dynconfig.save", l.Path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return lsperrors.New(lsperrors.KindConfig, lsperrors.ReasonValidation, "dynconfig.save", l.Path, err)
	}
	return nil
}

// EnvLoader overlays environment variables under a fixed prefix (default
// "LSPBRIDGE_") onto a base configuration. It never produces a config on
// its own — Load() starts from Default() — and refuses to save.
type EnvLoader struct {
	Prefix string
}

func NewEnvLoader(prefix string) *EnvLoader {
	if prefix == "" {
		prefix = "LSPBRIDGE_"
	}
	return &EnvLoader{Prefix: prefix}
}

func (l *EnvLoader) Type() string { return "environment" }

func (l *EnvLoader) Exists(ctx context.Context) bool {
	for _, suffix := range []string{"MAX_MEMORY_MB", "PARALLEL_PROCESSING", "CACHE_DIR"} {
		if _, ok := os.LookupEnv(l.Prefix + suffix); ok {
			return true
		}
	}
	return false
}

func (l *EnvLoader) Load(ctx context.Context) (Config, error) {
	return l.ApplyOverrides(Default()), nil
}

func (l *EnvLoader) Save(ctx context.Context, cfg Config) error {
	return lsperrors.New(lsperrors.KindConfig, lsperrors.ReasonValidation, "dynconfig.save", "environment", nil)
}

// ApplyOverrides overlays every recognized, parseable environment variable
// onto cfg and returns the result. Unset or unparseable variables leave
// the corresponding field untouched.
func (l *EnvLoader) ApplyOverrides(cfg Config) Config {
	if v, ok := envBool(l.Prefix + "PARALLEL_PROCESSING"); ok {
		cfg.Processing.ParallelProcessing = v
	}
	if v, ok := envInt(l.Prefix + "CHUNK_SIZE"); ok {
		cfg.Processing.ChunkSize = v
	}
	if v, ok := envInt(l.Prefix + "MAX_CONCURRENT_FILES"); ok {
		cfg.Processing.MaxConcurrentFiles = v
	}
	if v, ok := envInt(l.Prefix + "MAX_MEMORY_MB"); ok {
		cfg.Memory.MaxMemoryMB = v
	}
	if v, ok := os.LookupEnv(l.Prefix + "EVICTION_POLICY"); ok {
		cfg.Memory.EvictionPolicy = v
	}
	if v, ok := os.LookupEnv(l.Prefix + "CACHE_DIR"); ok {
		cfg.Cache.CacheDir = v
	}
	if v, ok := envInt(l.Prefix + "CACHE_MAX_SIZE_MB"); ok {
		cfg.Cache.MaxSizeMB = v
	}
	if v, ok := envBool(l.Prefix + "METRICS_ENABLED"); ok {
		cfg.Metrics.EnableMetrics = v
	}
	if v, ok := envInt(l.Prefix + "PROMETHEUS_PORT"); ok {
		cfg.Metrics.PrometheusPort = v
	}
	if v, ok := envFloat(l.Prefix + "MAX_CPU_USAGE_PERCENT"); ok {
		cfg.Performance.MaxCPUUsagePercent = v
	}
	if v, ok := envBool(l.Prefix + "ENABLE_SMART_CACHING"); ok {
		cfg.Features.EnableSmartCaching = v
	}
	if v, ok := envBool(l.Prefix + "ENABLE_EXPERIMENTAL_FEATURES"); ok {
		cfg.Features.EnableExperimentalFeatures = v
	}
	return cfg
}
