// Package dynconfig implements the layered, hot-reloadable runtime
// configuration subsystem (C9), grounded on
// original_source/src/core/dynamic_config/*.rs.
package dynconfig

import "time"

// Config is the sectioned runtime configuration record (spec §3). Every
// field is a primitive or enumerated string so it round-trips cleanly
// through TOML and environment variable overrides.
type Config struct {
	Processing    ProcessingConfig    `toml:"processing"`
	Cache         CacheConfig         `toml:"cache"`
	Memory        MemoryConfig        `toml:"memory"`
	ErrorRecovery ErrorRecoveryConfig `toml:"error_recovery"`
	Git           GitConfig           `toml:"git"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Features      FeatureFlags        `toml:"features"`
	Performance   PerformanceConfig   `toml:"performance"`
}

type ProcessingConfig struct {
	ParallelProcessing bool `toml:"parallel_processing"`
	ChunkSize          int  `toml:"chunk_size"`
	MaxConcurrentFiles int  `toml:"max_concurrent_files"`
	FileSizeLimitMB    int  `toml:"file_size_limit_mb"`
	TimeoutSeconds     int  `toml:"timeout_seconds"`
}

type CacheConfig struct {
	EnablePersistentCache  bool   `toml:"enable_persistent_cache"`
	EnableMemoryCache      bool   `toml:"enable_memory_cache"`
	CacheDir               string `toml:"cache_dir"`
	MaxSizeMB              int    `toml:"max_size_mb"`
	MaxEntries             int    `toml:"max_entries"`
	TTLHours               int    `toml:"ttl_hours"`
	CleanupIntervalMinutes int    `toml:"cleanup_interval_minutes"`
}

type MemoryConfig struct {
	MaxMemoryMB               int     `toml:"max_memory_mb"`
	MaxEntries                int     `toml:"max_entries"`
	EvictionPolicy            string  `toml:"eviction_policy"`
	HighWaterMark             float64 `toml:"high_water_mark"`
	LowWaterMark              float64 `toml:"low_water_mark"`
	EvictionBatchSize         int     `toml:"eviction_batch_size"`
	MonitoringIntervalSeconds int     `toml:"monitoring_interval_seconds"`
}

type ErrorRecoveryConfig struct {
	EnableCircuitBreaker bool    `toml:"enable_circuit_breaker"`
	MaxRetries           int     `toml:"max_retries"`
	InitialDelayMS       int     `toml:"initial_delay_ms"`
	MaxDelayMS           int     `toml:"max_delay_ms"`
	BackoffMultiplier    float64 `toml:"backoff_multiplier"`
	FailureThreshold     int     `toml:"failure_threshold"`
	SuccessThreshold     int     `toml:"success_threshold"`
	TimeoutMS            int     `toml:"timeout_ms"`
}

type GitConfig struct {
	EnableGitIntegration bool `toml:"enable_git_integration"`
	ScanIntervalSeconds  int  `toml:"scan_interval_seconds"`
	IgnoreUntracked      bool `toml:"ignore_untracked"`
	TrackStagedChanges   bool `toml:"track_staged_changes"`
	AutoRefresh          bool `toml:"auto_refresh"`
}

type MetricsConfig struct {
	EnableMetrics             bool   `toml:"enable_metrics"`
	PrometheusPort            int    `toml:"prometheus_port"`
	CollectionIntervalSeconds int    `toml:"collection_interval_seconds"`
	RetentionHours            int    `toml:"retention_hours"`
	ExportFormat              string `toml:"export_format"`
}

type FeatureFlags struct {
	EnableSmartCaching         bool `toml:"enable_smart_caching"`
	EnableAdvancedFiltering    bool `toml:"enable_advanced_filtering"`
	EnableBatchProcessing      bool `toml:"enable_batch_processing"`
	EnableExperimentalFeatures bool `toml:"enable_experimental_features"`
}

type PerformanceConfig struct {
	MaxCPUUsagePercent float64 `toml:"max_cpu_usage_percent"`
	IOPriority         string  `toml:"io_priority"`
	EnableParallelIO   bool    `toml:"enable_parallel_io"`
}

// ConfigChange records one scalar field that differed between two Config
// snapshots.
type ConfigChange struct {
	FieldPath string
	OldValue  string
	NewValue  string
	Timestamp time.Time
}

// Default returns the configuration's documented default values.
func Default() Config {
	return Config{
		Processing: ProcessingConfig{
			ParallelProcessing: true,
			ChunkSize:          100,
			MaxConcurrentFiles: 10,
			FileSizeLimitMB:    100,
			TimeoutSeconds:     30,
		},
		Cache: CacheConfig{
			EnablePersistentCache:  true,
			EnableMemoryCache:      true,
			CacheDir:               ".lsp-bridge/cache",
			MaxSizeMB:              512,
			MaxEntries:             10000,
			TTLHours:               24,
			CleanupIntervalMinutes: 30,
		},
		Memory: MemoryConfig{
			MaxMemoryMB:               1024,
			MaxEntries:                50000,
			EvictionPolicy:            "Adaptive",
			HighWaterMark:             0.8,
			LowWaterMark:              0.6,
			EvictionBatchSize:         100,
			MonitoringIntervalSeconds: 10,
		},
		ErrorRecovery: ErrorRecoveryConfig{
			EnableCircuitBreaker: true,
			MaxRetries:           3,
			InitialDelayMS:       100,
			MaxDelayMS:           5000,
			BackoffMultiplier:    2.0,
			FailureThreshold:     5,
			SuccessThreshold:     2,
			TimeoutMS:            30000,
		},
		Git: GitConfig{
			EnableGitIntegration: true,
			ScanIntervalSeconds:  30,
			IgnoreUntracked:      true,
			TrackStagedChanges:   true,
			AutoRefresh:          true,
		},
		Metrics: MetricsConfig{
			EnableMetrics:             true,
			PrometheusPort:            9090,
			CollectionIntervalSeconds: 60,
			RetentionHours:            168,
			ExportFormat:              "prometheus",
		},
		Features: FeatureFlags{
			EnableSmartCaching:         true,
			EnableAdvancedFiltering:    true,
			EnableBatchProcessing:      true,
			EnableExperimentalFeatures: false,
		},
		Performance: PerformanceConfig{
			MaxCPUUsagePercent: 80.0,
			IOPriority:         "normal",
			EnableParallelIO:   true,
		},
	}
}
