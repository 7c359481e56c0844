package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig(filepath.Join(dir, "snapshots.db"))
	s, err := NewStore(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordSnapshotAndStats(t *testing.T) {
	s := newTestStore(t)

	_, err := s.RecordSnapshot(DiagnosticSnapshot{FilePath: "a.go", ErrorCount: 3, Timestamp: time.Now()})
	require.NoError(t, err)
	_, err = s.RecordSnapshot(DiagnosticSnapshot{FilePath: "a.go", ErrorCount: 5, Timestamp: time.Now()})
	require.NoError(t, err)

	stats, ok, err := s.GetFileHistoryStats("a.go")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 2, stats.TotalSnapshots)
	require.Equal(t, 5, stats.MaxErrorCount)
	require.Equal(t, 4.0, stats.AvgErrorCount)
}

func TestUnknownFileStatsAbsent(t *testing.T) {
	s := newTestStore(t)
	_, ok, err := s.GetFileHistoryStats("missing.go")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetSnapshotsForFileDescending(t *testing.T) {
	s := newTestStore(t)
	t1 := time.Now().Add(-2 * time.Hour)
	t2 := time.Now().Add(-1 * time.Hour)
	_, err := s.RecordSnapshot(DiagnosticSnapshot{FilePath: "a.go", ErrorCount: 1, Timestamp: t1})
	require.NoError(t, err)
	_, err = s.RecordSnapshot(DiagnosticSnapshot{FilePath: "a.go", ErrorCount: 2, Timestamp: t2})
	require.NoError(t, err)

	snaps, err := s.GetSnapshotsForFile("a.go", nil, nil)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	require.True(t, snaps[0].Timestamp.After(snaps[1].Timestamp) || snaps[0].Timestamp.Equal(snaps[1].Timestamp))
}

func TestRecurringPatterns(t *testing.T) {
	s := newTestStore(t)
	diag := diagnostic.Diagnostic{Message: "unused var", Code: "E1", Source: "eslint", Severity: diagnostic.Error}
	for i := 0; i < 3; i++ {
		_, err := s.RecordSnapshot(DiagnosticSnapshot{
			FilePath:   "a.go",
			ErrorCount: 1,
			Diagnostics: []diagnostic.Diagnostic{diag},
			Timestamp:  time.Now(),
		})
		require.NoError(t, err)
	}

	patterns, err := s.GetRecurringPatterns(2)
	require.NoError(t, err)
	require.Len(t, patterns, 1)
	require.Equal(t, 3, patterns[0].OccurrenceCount)
}

func TestCleanupOldDataRetention(t *testing.T) {
	s := newTestStore(t)
	old := time.Now().Add(-100 * 24 * time.Hour)
	_, err := s.RecordSnapshot(DiagnosticSnapshot{FilePath: "old.go", ErrorCount: 1, Timestamp: old})
	require.NoError(t, err)
	// Retention is keyed on created_at (insertion time), so backdate it.
	_, err = s.write.Exec(`UPDATE diagnostic_snapshots SET created_at = ? WHERE file_path = ?`, old.Unix(), "old.go")
	require.NoError(t, err)

	deleted, err := s.CleanupOldData(90)
	require.NoError(t, err)
	require.Equal(t, int64(1), deleted)

	_, ok, err := s.GetFileHistoryStats("old.go")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestExportMLReadyData(t *testing.T) {
	s := newTestStore(t)
	_, err := s.RecordSnapshot(DiagnosticSnapshot{FilePath: "a.go", ErrorCount: 1, Timestamp: time.Now()})
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "export.jsonl")
	require.NoError(t, s.ExportMLReadyData(dest))
}
