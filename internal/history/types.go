package history

import (
	"time"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// DiagnosticSnapshot is one persisted (file, capture instant) row (spec §3).
type DiagnosticSnapshot struct {
	ID           int64
	Timestamp    time.Time
	FilePath     string
	FileHash     string
	ErrorCount   int
	WarningCount int
	InfoCount    int
	HintCount    int
	Diagnostics  []diagnostic.Diagnostic
}

// FileHistoryStats is the rolling per-file aggregate maintained by the
// store; never edited by clients.
type FileHistoryStats struct {
	FilePath         string
	FirstSeen        time.Time
	LastSeen         time.Time
	TotalSnapshots   int
	TotalErrors      int
	TotalWarnings    int
	AvgErrorCount    float64
	AvgWarningCount  float64
	MaxErrorCount    int
	MaxWarningCount  int
}

// HistoricalErrorPattern is a fingerprint of a recurring diagnostic.
type HistoricalErrorPattern struct {
	PatternHash      string
	FirstSeen        time.Time
	LastSeen         time.Time
	OccurrenceCount  int
	FilesAffected    int
	Message          string
	Code             string
	Source           string
}

// TimeSeriesPoint is a bucketed aggregate over a time window.
type TimeSeriesPoint struct {
	BucketStart  time.Time
	SnapshotCount int
	TotalErrors   int
	TotalWarnings int
	AvgErrors     float64
	AvgWarnings   float64
	UniqueFiles   int
}

// Config parameterizes the pooled connection manager (spec §4.2).
type Config struct {
	Path              string
	MinConnections    int
	MaxConnections    int
	ConnectionTimeout time.Duration
	EnableWAL         bool
	RetentionDays     int
	AutoCleanupEvery  time.Duration
}

// DefaultConfig mirrors the teacher's local_core.go pragma defaults.
func DefaultConfig(path string) Config {
	return Config{
		Path:              path,
		MinConnections:    1,
		MaxConnections:    4,
		ConnectionTimeout: 5 * time.Second,
		EnableWAL:         true,
		RetentionDays:     90,
		AutoCleanupEvery:  24 * time.Hour,
	}
}
