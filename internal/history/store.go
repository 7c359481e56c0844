// Package history implements the historical snapshot store (C4): a pooled
// embedded-SQL backend with migrations, snapshot insertion, time-series
// aggregation, retention sweep, and ML-oriented export.
//
// Pool shape (separate write and read handles, WAL pragma sequence) is
// grounded on the teacher's internal/store/local_core.go. Schema and
// operation semantics are grounded on
// original_source/src/history/storage/backend/sqlite.rs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// Store is the pooled historical snapshot backend.
type Store struct {
	cfg    Config
	write  *sql.DB
	read   *sql.DB
	logger *zap.Logger

	mu          sync.Mutex
	lastCleanup time.Time
}

// NewStore opens (creating if absent) the SQLite database at cfg.Path,
// applies the pragma sequence from the teacher's local_core.go, runs
// pending migrations, and returns a ready Store.
func NewStore(cfg Config, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, lsperrors.New(lsperrors.KindFile, lsperrors.ReasonDirOp, "history.NewStore", dir, err)
		}
	}

	write, err := sql.Open("sqlite3", cfg.Path)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonConnection, "history.NewStore", cfg.Path, err)
	}
	write.SetMaxOpenConns(1)

	if err := applyPragmas(write, cfg); err != nil {
		write.Close()
		return nil, err
	}
	if err := applyMigrations(write); err != nil {
		write.Close()
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonMigration, "history.NewStore", cfg.Path, err)
	}

	read, err := sql.Open("sqlite3", cfg.Path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		write.Close()
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonConnection, "history.NewStore", cfg.Path, err)
	}
	maxConn := cfg.MaxConnections
	if maxConn < 1 {
		maxConn = 4
	}
	read.SetMaxOpenConns(maxConn)

	logger.Debug("history store opened", zap.String("path", cfg.Path), zap.Bool("wal", cfg.EnableWAL))

	return &Store{cfg: cfg, write: write, read: read, logger: logger, lastCleanup: time.Now()}, nil
}

func applyPragmas(db *sql.DB, cfg Config) error {
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	if cfg.EnableWAL {
		pragmas = append([]string{"PRAGMA journal_mode=WAL"}, pragmas...)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonConnection, "history.applyPragmas", p, err)
		}
	}
	return nil
}

// Close releases both pooled handles.
func (s *Store) Close() error {
	werr := s.write.Close()
	rerr := s.read.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// RecordSnapshot inserts a row, updates file_stats, and upserts the
// matching error_patterns rows. Returns the new row id.
func (s *Store) RecordSnapshot(snap DiagnosticSnapshot) (int64, error) {
	diagJSON, err := json.Marshal(snap.Diagnostics)
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonSerialization, "record_snapshot", snap.FilePath, err)
	}

	ts := snap.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	now := time.Now().Unix()

	tx, err := s.write.Begin()
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonTransaction, "record_snapshot", snap.FilePath, err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`INSERT INTO diagnostic_snapshots
		(timestamp, file_path, file_hash, error_count, warning_count, info_count, hint_count, diagnostics_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ts.Unix(), snap.FilePath, snap.FileHash, snap.ErrorCount, snap.WarningCount, snap.InfoCount, snap.HintCount, string(diagJSON), now)
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "record_snapshot", snap.FilePath, err)
	}
	newID, _ := res.LastInsertId()

	if err := upsertFileStats(tx, snap, ts); err != nil {
		return 0, err
	}
	if err := upsertErrorPatterns(tx, snap, ts); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonTransaction, "record_snapshot", snap.FilePath, err)
	}
	return newID, nil
}

func upsertFileStats(tx *sql.Tx, snap DiagnosticSnapshot, ts time.Time) error {
	var existing struct {
		totalSnapshots  int
		totalErrors     int
		totalWarnings   int
		maxErrorCount   int
		maxWarningCount int
		firstSeen       int64
	}
	row := tx.QueryRow(`SELECT total_snapshots, total_errors, total_warnings, max_error_count, max_warning_count, first_seen
		FROM file_stats WHERE file_path = ?`, snap.FilePath)
	err := row.Scan(&existing.totalSnapshots, &existing.totalErrors, &existing.totalWarnings,
		&existing.maxErrorCount, &existing.maxWarningCount, &existing.firstSeen)

	firstSeen := ts.Unix()
	totalSnapshots := 1
	totalErrors := snap.ErrorCount
	totalWarnings := snap.WarningCount
	maxError := snap.ErrorCount
	maxWarning := snap.WarningCount

	if err == nil {
		firstSeen = existing.firstSeen
		totalSnapshots = existing.totalSnapshots + 1
		totalErrors = existing.totalErrors + snap.ErrorCount
		totalWarnings = existing.totalWarnings + snap.WarningCount
		if existing.maxErrorCount > maxError {
			maxError = existing.maxErrorCount
		}
		if existing.maxWarningCount > maxWarning {
			maxWarning = existing.maxWarningCount
		}
	} else if err != sql.ErrNoRows {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "record_snapshot.file_stats", snap.FilePath, err)
	}

	avgError := float64(totalErrors) / float64(totalSnapshots)
	avgWarning := float64(totalWarnings) / float64(totalSnapshots)

	_, err = tx.Exec(`INSERT INTO file_stats
		(file_path, first_seen, last_seen, total_snapshots, total_errors, total_warnings, avg_error_count, avg_warning_count, max_error_count, max_warning_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_path) DO UPDATE SET
			last_seen=excluded.last_seen, total_snapshots=excluded.total_snapshots,
			total_errors=excluded.total_errors, total_warnings=excluded.total_warnings,
			avg_error_count=excluded.avg_error_count, avg_warning_count=excluded.avg_warning_count,
			max_error_count=excluded.max_error_count, max_warning_count=excluded.max_warning_count`,
		snap.FilePath, firstSeen, ts.Unix(), totalSnapshots, totalErrors, totalWarnings, avgError, avgWarning, maxError, maxWarning)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "record_snapshot.file_stats", snap.FilePath, err)
	}
	return nil
}

// upsertErrorPatterns bumps occurrence_count/last_seen for each distinct
// (message, code, source) fingerprint among the error-severity entries of
// snap.Diagnostics; other severities are not recorded — the supplement
// noted in SPEC_FULL.md §3.
func upsertErrorPatterns(tx *sql.Tx, snap DiagnosticSnapshot, ts time.Time) error {
	seen := make(map[string]bool)
	for _, d := range snap.Diagnostics {
		if d.Severity != diagnostic.Error {
			continue
		}
		hash := fmt.Sprintf("%s|%s|%s", d.Message, d.Code, d.Source)
		if seen[hash] {
			continue
		}
		seen[hash] = true

		var occurrences, filesAffected int
		row := tx.QueryRow(`SELECT occurrence_count, files_affected FROM error_patterns WHERE pattern_hash = ?`, hash)
		err := row.Scan(&occurrences, &filesAffected)
		switch {
		case err == nil:
			occurrences++
			filesAffected++
		case err == sql.ErrNoRows:
			occurrences = 1
			filesAffected = 1
		default:
			return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "record_snapshot.error_patterns", hash, err)
		}

		_, err = tx.Exec(`INSERT INTO error_patterns
			(pattern_hash, first_seen, last_seen, occurrence_count, files_affected, error_message, error_code, source)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(pattern_hash) DO UPDATE SET
				last_seen=excluded.last_seen, occurrence_count=excluded.occurrence_count, files_affected=excluded.files_affected`,
			hash, ts.Unix(), ts.Unix(), occurrences, filesAffected, d.Message, d.Code, d.Source)
		if err != nil {
			return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "record_snapshot.error_patterns", hash, err)
		}
	}
	return nil
}

// GetSnapshotsForFile returns snapshots for path in descending timestamp
// order, with an optional lower-bound and row limit.
func (s *Store) GetSnapshotsForFile(path string, since *time.Time, limit *int) ([]DiagnosticSnapshot, error) {
	query := `SELECT id, timestamp, file_path, file_hash, error_count, warning_count, info_count, hint_count, diagnostics_json
		FROM diagnostic_snapshots WHERE file_path = ?`
	args := []any{path}
	if since != nil {
		query += " AND timestamp >= ?"
		args = append(args, since.Unix())
	}
	query += " ORDER BY timestamp DESC"
	if limit != nil {
		query += " LIMIT ?"
		args = append(args, *limit)
	}

	rows, err := s.read.Query(query, args...)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_snapshots_for_file", path, err)
	}
	defer rows.Close()

	var out []DiagnosticSnapshot
	for rows.Next() {
		var snap DiagnosticSnapshot
		var ts int64
		var diagJSON string
		if err := rows.Scan(&snap.ID, &ts, &snap.FilePath, &snap.FileHash, &snap.ErrorCount, &snap.WarningCount, &snap.InfoCount, &snap.HintCount, &diagJSON); err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_snapshots_for_file", path, err)
		}
		snap.Timestamp = time.Unix(ts, 0).UTC()
		if err := json.Unmarshal([]byte(diagJSON), &snap.Diagnostics); err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonSerialization, "get_snapshots_for_file", path, err)
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// GetFileHistoryStats returns (stats, true) or (zero, false) if unknown.
func (s *Store) GetFileHistoryStats(path string) (FileHistoryStats, bool, error) {
	var stats FileHistoryStats
	var firstSeen, lastSeen int64
	row := s.read.QueryRow(`SELECT file_path, first_seen, last_seen, total_snapshots, total_errors, total_warnings,
		avg_error_count, avg_warning_count, max_error_count, max_warning_count
		FROM file_stats WHERE file_path = ?`, path)
	err := row.Scan(&stats.FilePath, &firstSeen, &lastSeen, &stats.TotalSnapshots, &stats.TotalErrors, &stats.TotalWarnings,
		&stats.AvgErrorCount, &stats.AvgWarningCount, &stats.MaxErrorCount, &stats.MaxWarningCount)
	if err == sql.ErrNoRows {
		return FileHistoryStats{}, false, nil
	}
	if err != nil {
		return FileHistoryStats{}, false, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_file_history_stats", path, err)
	}
	stats.FirstSeen = time.Unix(firstSeen, 0).UTC()
	stats.LastSeen = time.Unix(lastSeen, 0).UTC()
	return stats, true, nil
}

// GetRecurringPatterns returns error_patterns with occurrence_count >= min,
// descending.
func (s *Store) GetRecurringPatterns(minOccurrences int) ([]HistoricalErrorPattern, error) {
	rows, err := s.read.Query(`SELECT pattern_hash, first_seen, last_seen, occurrence_count, files_affected, error_message, error_code, source
		FROM error_patterns WHERE occurrence_count >= ? ORDER BY occurrence_count DESC`, minOccurrences)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_recurring_patterns", "", err)
	}
	defer rows.Close()

	var out []HistoricalErrorPattern
	for rows.Next() {
		var p HistoricalErrorPattern
		var first, last int64
		if err := rows.Scan(&p.PatternHash, &first, &last, &p.OccurrenceCount, &p.FilesAffected, &p.Message, &p.Code, &p.Source); err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_recurring_patterns", "", err)
		}
		p.FirstSeen = time.Unix(first, 0).UTC()
		p.LastSeen = time.Unix(last, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetTimeSeriesData buckets snapshots between [start,end) by interval.
func (s *Store) GetTimeSeriesData(start, end time.Time, interval time.Duration) ([]TimeSeriesPoint, error) {
	intervalSecs := int64(interval.Seconds())
	if intervalSecs <= 0 {
		intervalSecs = 3600
	}
	rows, err := s.read.Query(`SELECT (timestamp / ?) * ? AS time_bucket,
			COUNT(*), SUM(error_count), SUM(warning_count), AVG(error_count), AVG(warning_count), COUNT(DISTINCT file_path)
		FROM diagnostic_snapshots
		WHERE timestamp >= ? AND timestamp < ?
		GROUP BY time_bucket ORDER BY time_bucket`,
		intervalSecs, intervalSecs, start.Unix(), end.Unix())
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_time_series_data", "", err)
	}
	defer rows.Close()

	var out []TimeSeriesPoint
	for rows.Next() {
		var p TimeSeriesPoint
		var bucket int64
		if err := rows.Scan(&bucket, &p.SnapshotCount, &p.TotalErrors, &p.TotalWarnings, &p.AvgErrors, &p.AvgWarnings, &p.UniqueFiles); err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_time_series_data", "", err)
		}
		p.BucketStart = time.Unix(bucket, 0).UTC()
		out = append(out, p)
	}
	return out, rows.Err()
}

// CleanupOldData deletes snapshots older than retentionDays and orphaned
// file_stats rows, returning the number of snapshot rows deleted.
func (s *Store) CleanupOldData(retentionDays int) (int64, error) {
	cutoff := time.Now().Add(-time.Duration(retentionDays) * 24 * time.Hour).Unix()

	tx, err := s.write.Begin()
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonTransaction, "cleanup_old_data", "", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(`DELETE FROM diagnostic_snapshots WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "cleanup_old_data", "", err)
	}
	deleted, _ := res.RowsAffected()

	if deleted > 0 {
		if _, err := tx.Exec(`DELETE FROM file_stats WHERE file_path NOT IN (SELECT DISTINCT file_path FROM diagnostic_snapshots)`); err != nil {
			return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "cleanup_old_data", "", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonTransaction, "cleanup_old_data", "", err)
	}

	s.mu.Lock()
	s.lastCleanup = time.Now()
	s.mu.Unlock()

	return deleted, nil
}

// ShouldCleanup reports whether wall time since the last cleanup exceeds
// cfg.AutoCleanupEvery, treating a clock that appears to have gone
// backwards as "should cleanup".
func (s *Store) ShouldCleanup() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	elapsed := time.Since(s.lastCleanup)
	return elapsed < 0 || elapsed >= s.cfg.AutoCleanupEvery
}

// mlRecord is one line of the ML-ready JSON-lines export.
type mlRecord struct {
	FilePath             string  `json:"file_path"`
	Timestamp            int64   `json:"timestamp"`
	ErrorCount           int     `json:"error_count"`
	WarningCount         int     `json:"warning_count"`
	TotalSnapshots       int     `json:"total_snapshots"`
	FileComplexityScore  float64 `json:"file_complexity_score"`
}

// ExportMLReadyData streams one JSON object per line joining snapshots
// with file_stats to destPath. file_complexity_score is an advisory
// placeholder (total_snapshots/100.0) per spec §9 Open Questions.
func (s *Store) ExportMLReadyData(destPath string) error {
	rows, err := s.read.Query(`SELECT s.file_path, s.timestamp, s.error_count, s.warning_count, f.total_snapshots
		FROM diagnostic_snapshots s JOIN file_stats f ON s.file_path = f.file_path
		ORDER BY s.timestamp`)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "export_ml_ready_data", destPath, err)
	}
	defer rows.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return lsperrors.New(lsperrors.KindExport, lsperrors.ReasonTargetUnreach, "export_ml_ready_data", destPath, err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for rows.Next() {
		var rec mlRecord
		if err := rows.Scan(&rec.FilePath, &rec.Timestamp, &rec.ErrorCount, &rec.WarningCount, &rec.TotalSnapshots); err != nil {
			return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "export_ml_ready_data", destPath, err)
		}
		rec.FileComplexityScore = float64(rec.TotalSnapshots) / 100.0
		if err := enc.Encode(rec); err != nil {
			return lsperrors.New(lsperrors.KindExport, lsperrors.ReasonTransformation, "export_ml_ready_data", destPath, err)
		}
	}
	return rows.Err()
}
