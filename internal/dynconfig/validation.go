package dynconfig

import (
	"fmt"
	"sync"

	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// validateSchema checks structural constraints on each section, grounded
// on validation/schema.rs's ConfigValidator.
func validateSchema(cfg Config) error {
	validators := []func(Config) error{
		validateProcessing,
		validateMemory,
		validateCache,
		validateErrorRecovery,
		validateMetrics,
		validatePerformance,
	}
	for _, v := range validators {
		if err := v(cfg); err != nil {
			return err
		}
	}
	return nil
}

func fail(reason string) error {
	return lsperrors.New(lsperrors.KindConfig, lsperrors.ReasonValidation, "dynconfig.validate", reason, nil)
}

func validateProcessing(cfg Config) error {
	p := cfg.Processing
	switch {
	case p.ChunkSize <= 0:
		return fail("processing.chunk_size must be greater than 0")
	case p.MaxConcurrentFiles <= 0:
		return fail("processing.max_concurrent_files must be greater than 0")
	case p.FileSizeLimitMB <= 0:
		return fail("processing.file_size_limit_mb must be greater than 0")
	case p.TimeoutSeconds <= 0:
		return fail("processing.timeout_seconds must be greater than 0")
	}
	return nil
}

func validateMemory(cfg Config) error {
	m := cfg.Memory
	switch {
	case m.MaxMemoryMB <= 0:
		return fail("memory.max_memory_mb must be greater than 0")
	case m.MaxEntries <= 0:
		return fail("memory.max_entries must be greater than 0")
	case m.HighWaterMark <= 0.0 || m.HighWaterMark > 1.0:
		return fail("memory.high_water_mark must be between 0.0 and 1.0")
	case m.LowWaterMark <= 0.0 || m.LowWaterMark > 1.0:
		return fail("memory.low_water_mark must be between 0.0 and 1.0")
	case m.LowWaterMark >= m.HighWaterMark:
		return fail("memory.low_water_mark must be less than high_water_mark")
	case m.EvictionBatchSize <= 0:
		return fail("memory.eviction_batch_size must be greater than 0")
	}
	switch m.EvictionPolicy {
	case "LRU", "LFU", "SizeWeighted", "AgeWeighted", "Adaptive":
	default:
		return fail(fmt.Sprintf("invalid eviction policy: %s", m.EvictionPolicy))
	}
	return nil
}

func validateCache(cfg Config) error {
	c := cfg.Cache
	switch {
	case c.MaxSizeMB <= 0:
		return fail("cache.max_size_mb must be greater than 0")
	case c.MaxEntries <= 0:
		return fail("cache.max_entries must be greater than 0")
	case c.TTLHours <= 0:
		return fail("cache.ttl_hours must be greater than 0")
	case c.CacheDir == "":
		return fail("cache directory path cannot be empty")
	}
	return nil
}

func validateErrorRecovery(cfg Config) error {
	e := cfg.ErrorRecovery
	switch {
	case e.MaxRetries <= 0:
		return fail("error_recovery.max_retries must be greater than 0")
	case e.InitialDelayMS <= 0:
		return fail("error_recovery.initial_delay_ms must be greater than 0")
	case e.MaxDelayMS < e.InitialDelayMS:
		return fail("error_recovery.max_delay_ms must be >= initial_delay_ms")
	case e.BackoffMultiplier <= 1.0:
		return fail("error_recovery.backoff_multiplier must be > 1.0")
	case e.FailureThreshold <= 0:
		return fail("error_recovery.failure_threshold must be greater than 0")
	case e.SuccessThreshold <= 0:
		return fail("error_recovery.success_threshold must be greater than 0")
	}
	return nil
}

func validateMetrics(cfg Config) error {
	m := cfg.Metrics
	switch {
	case m.PrometheusPort < 1024:
		return fail("metrics.prometheus_port must be >= 1024")
	case m.CollectionIntervalSeconds <= 0:
		return fail("metrics.collection_interval_seconds must be greater than 0")
	case m.RetentionHours <= 0:
		return fail("metrics.retention_hours must be greater than 0")
	}
	switch m.ExportFormat {
	case "prometheus", "json", "csv":
	default:
		return fail(fmt.Sprintf("invalid metrics export format: %s", m.ExportFormat))
	}
	return nil
}

func validatePerformance(cfg Config) error {
	p := cfg.Performance
	if p.MaxCPUUsagePercent <= 0.0 || p.MaxCPUUsagePercent > 100.0 {
		return fail("performance.max_cpu_usage_percent must be between 0.0 and 100.0")
	}
	switch p.IOPriority {
	case "low", "normal", "high":
	default:
		return fail(fmt.Sprintf("invalid io priority: %s", p.IOPriority))
	}
	return nil
}

// validateStructural checks cross-field invariants, grounded on
// validation/rules.rs's ValidationRules.validate_all.
func validateStructural(cfg Config) error {
	switch {
	case cfg.Memory.MaxMemoryMB < 64:
		return fail("memory limit too low: minimum 64MB")
	case cfg.Cache.MaxSizeMB > cfg.Memory.MaxMemoryMB:
		return fail("cache size cannot exceed memory limit")
	case cfg.Performance.MaxCPUUsagePercent > 100.0:
		return fail("cpu usage cannot exceed 100%")
	case cfg.Memory.HighWaterMark <= cfg.Memory.LowWaterMark:
		return fail("high water mark must be greater than low water mark")
	case cfg.Processing.TimeoutSeconds <= 0:
		return fail("timeout must be greater than 0")
	}
	return nil
}

// FieldRule is a predicate over a field's stringified value, registered
// through RuleRegistry.Add (Manager.AddValidationRule) for ad hoc
// per-field validation beyond the structural checks.
type FieldRule func(value string) bool

// RuleRegistry holds named field validation rules, safe for concurrent
// use from the manager's AddValidationRule API.
type RuleRegistry struct {
	mu    sync.RWMutex
	rules map[string]FieldRule
}

func NewRuleRegistry() *RuleRegistry {
	return &RuleRegistry{rules: make(map[string]FieldRule)}
}

func (r *RuleRegistry) Add(fieldPath string, rule FieldRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[fieldPath] = rule
}

func (r *RuleRegistry) Validate(fieldPath, value string) error {
	r.mu.RLock()
	rule, ok := r.rules[fieldPath]
	r.mu.RUnlock()
	if !ok {
		return nil
	}
	if !rule(value) {
		return lsperrors.New(lsperrors.KindConfig, lsperrors.ReasonInvalidValue, "dynconfig.validate_field", fieldPath, nil)
	}
	return nil
}

// Validate runs schema validation, then structural cross-field checks.
// Per-field rule validation is opt-in via AddValidationRule/ValidateField since
// rules operate on (path, stringified value) pairs a bulk Config doesn't
// naturally expose.
func Validate(cfg Config) error {
	if err := validateSchema(cfg); err != nil {
		return err
	}
	return validateStructural(cfg)
}
