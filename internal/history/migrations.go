package history

import (
	"database/sql"
	"strconv"
)

// migration is a single versioned schema batch, grounded on the teacher's
// internal/store/migrations.go versioned-migration shape.
type migration struct {
	version int
	stmts   []string
}

var schemaMigrations = []migration{
	{
		version: 1,
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS diagnostic_snapshots (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				file_hash TEXT NOT NULL,
				error_count INTEGER NOT NULL,
				warning_count INTEGER NOT NULL,
				info_count INTEGER NOT NULL,
				hint_count INTEGER NOT NULL,
				diagnostics_json TEXT NOT NULL,
				created_at INTEGER NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_snapshots_file_path ON diagnostic_snapshots(file_path)`,
			`CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON diagnostic_snapshots(created_at)`,
			`CREATE TABLE IF NOT EXISTS file_stats (
				file_path TEXT PRIMARY KEY,
				first_seen INTEGER NOT NULL,
				last_seen INTEGER NOT NULL,
				total_snapshots INTEGER NOT NULL,
				total_errors INTEGER NOT NULL,
				total_warnings INTEGER NOT NULL,
				avg_error_count REAL NOT NULL,
				avg_warning_count REAL NOT NULL,
				max_error_count INTEGER NOT NULL,
				max_warning_count INTEGER NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS error_patterns (
				pattern_hash TEXT PRIMARY KEY,
				first_seen INTEGER NOT NULL,
				last_seen INTEGER NOT NULL,
				occurrence_count INTEGER NOT NULL,
				files_affected INTEGER NOT NULL,
				error_message TEXT NOT NULL,
				error_code TEXT NOT NULL,
				source TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS metadata (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL
			)`,
		},
	},
}

// applyMigrations reads metadata.schema_version and applies any migration
// batch whose version exceeds it, transactionally.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return err
	}

	current := 0
	row := db.QueryRow(`SELECT value FROM metadata WHERE key = 'schema_version'`)
	var v string
	if err := row.Scan(&v); err == nil {
		if n, ok := parseVersion(v); ok {
			current = n
		}
	}

	for _, m := range schemaMigrations {
		if m.version <= current {
			continue
		}
		tx, err := db.Begin()
		if err != nil {
			return err
		}
		for _, stmt := range m.stmts {
			if _, err := tx.Exec(stmt); err != nil {
				tx.Rollback()
				return err
			}
		}
		if _, err := tx.Exec(`INSERT INTO metadata(key, value) VALUES('schema_version', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(m.version)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		current = m.version
	}
	return nil
}

func parseVersion(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

