package dynconfig

import (
	"strconv"
	"time"
)

// CalculateChanges enumerates the tracked scalar fields (mod.rs's
// calculate_changes set) that differ between old and new, stamped with
// now.
func CalculateChanges(old, new Config, now time.Time) []ConfigChange {
	var changes []ConfigChange
	push := func(path, oldVal, newVal string) {
		changes = append(changes, ConfigChange{FieldPath: path, OldValue: oldVal, NewValue: newVal, Timestamp: now})
	}

	if old.Processing.ParallelProcessing != new.Processing.ParallelProcessing {
		push("processing.parallel_processing", strconv.FormatBool(old.Processing.ParallelProcessing), strconv.FormatBool(new.Processing.ParallelProcessing))
	}
	if old.Processing.ChunkSize != new.Processing.ChunkSize {
		push("processing.chunk_size", strconv.Itoa(old.Processing.ChunkSize), strconv.Itoa(new.Processing.ChunkSize))
	}
	if old.Processing.MaxConcurrentFiles != new.Processing.MaxConcurrentFiles {
		push("processing.max_concurrent_files", strconv.Itoa(old.Processing.MaxConcurrentFiles), strconv.Itoa(new.Processing.MaxConcurrentFiles))
	}
	if old.Memory.MaxMemoryMB != new.Memory.MaxMemoryMB {
		push("memory.max_memory_mb", strconv.Itoa(old.Memory.MaxMemoryMB), strconv.Itoa(new.Memory.MaxMemoryMB))
	}
	if old.Memory.EvictionPolicy != new.Memory.EvictionPolicy {
		push("memory.eviction_policy", old.Memory.EvictionPolicy, new.Memory.EvictionPolicy)
	}
	if old.Cache.MaxSizeMB != new.Cache.MaxSizeMB {
		push("cache.max_size_mb", strconv.Itoa(old.Cache.MaxSizeMB), strconv.Itoa(new.Cache.MaxSizeMB))
	}
	if old.Cache.TTLHours != new.Cache.TTLHours {
		push("cache.ttl_hours", strconv.Itoa(old.Cache.TTLHours), strconv.Itoa(new.Cache.TTLHours))
	}
	if old.Performance.MaxCPUUsagePercent != new.Performance.MaxCPUUsagePercent {
		push("performance.max_cpu_usage_percent", strconv.FormatFloat(old.Performance.MaxCPUUsagePercent, 'f', -1, 64), strconv.FormatFloat(new.Performance.MaxCPUUsagePercent, 'f', -1, 64))
	}
	if old.Metrics.PrometheusPort != new.Metrics.PrometheusPort {
		push("metrics.prometheus_port", strconv.Itoa(old.Metrics.PrometheusPort), strconv.Itoa(new.Metrics.PrometheusPort))
	}
	if old.Metrics.EnableMetrics != new.Metrics.EnableMetrics {
		push("metrics.enable_metrics", strconv.FormatBool(old.Metrics.EnableMetrics), strconv.FormatBool(new.Metrics.EnableMetrics))
	}

	return changes
}
