package registry

import (
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// Registry is the persistent directory of repositories and relations. Per
// spec §5 it serializes access via a single mutex around its connection —
// unlike the history store's pooled read/write handles.
type Registry struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *zap.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS repositories (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	path TEXT NOT NULL,
	remote_url TEXT NOT NULL DEFAULT '',
	primary_language TEXT NOT NULL DEFAULT '',
	build_system TEXT NOT NULL DEFAULT '',
	is_monorepo_member INTEGER NOT NULL DEFAULT 0,
	monorepo_id TEXT NOT NULL DEFAULT '',
	tags TEXT NOT NULL DEFAULT '[]',
	active INTEGER NOT NULL DEFAULT 1,
	last_diagnostic_run INTEGER,
	metadata TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_repositories_active ON repositories(active);
CREATE INDEX IF NOT EXISTS idx_repositories_monorepo ON repositories(monorepo_id);

CREATE TABLE IF NOT EXISTS repository_relations (
	source_id TEXT NOT NULL,
	target_id TEXT NOT NULL,
	relation_type TEXT NOT NULL,
	data TEXT NOT NULL DEFAULT '{}',
	created_at INTEGER NOT NULL,
	UNIQUE(source_id, target_id, relation_type),
	FOREIGN KEY(source_id) REFERENCES repositories(id),
	FOREIGN KEY(target_id) REFERENCES repositories(id)
);
CREATE INDEX IF NOT EXISTS idx_relations_source ON repository_relations(source_id);
CREATE INDEX IF NOT EXISTS idx_relations_target ON repository_relations(target_id);
`

// LoadOrCreate opens (or creates) the registry database at path and ensures
// its schema exists.
func LoadOrCreate(path string, logger *zap.Logger) (*Registry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, lsperrors.New(lsperrors.KindFile, lsperrors.ReasonDirOp, "registry.LoadOrCreate", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonConnection, "registry.LoadOrCreate", path, err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonConnection, "registry.LoadOrCreate", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonMigration, "registry.LoadOrCreate", path, err)
	}
	return &Registry{db: db, logger: logger}, nil
}

func (r *Registry) Close() error { return r.db.Close() }

// Register upserts a RepositoryInfo by id.
func (r *Registry) Register(info RepositoryInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tags, err := json.Marshal(info.Tags)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonSerialization, "register", info.ID, err)
	}
	meta, err := json.Marshal(info.Metadata)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonSerialization, "register", info.ID, err)
	}

	var lastRun any
	if info.LastDiagnosticRun != nil {
		lastRun = info.LastDiagnosticRun.Unix()
	}
	now := time.Now().Unix()

	_, err = r.db.Exec(`INSERT INTO repositories
		(id, name, path, remote_url, primary_language, build_system, is_monorepo_member, monorepo_id, tags, active, last_diagnostic_run, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, path=excluded.path, remote_url=excluded.remote_url,
			primary_language=excluded.primary_language, build_system=excluded.build_system,
			is_monorepo_member=excluded.is_monorepo_member, monorepo_id=excluded.monorepo_id,
			tags=excluded.tags, active=excluded.active, last_diagnostic_run=excluded.last_diagnostic_run,
			metadata=excluded.metadata, updated_at=excluded.updated_at`,
		info.ID, info.Name, info.Path, info.RemoteURL, info.PrimaryLanguage, info.BuildSystem,
		boolToInt(info.IsMonorepoMember), info.MonorepoID, string(tags), boolToInt(info.Active), lastRun, string(meta), now, now)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "register", info.ID, err)
	}
	return nil
}

// Get returns the repository with the given id, or (zero, false).
func (r *Registry) Get(id string) (RepositoryInfo, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getLocked(id)
}

func (r *Registry) getLocked(id string) (RepositoryInfo, bool, error) {
	row := r.db.QueryRow(`SELECT id, name, path, remote_url, primary_language, build_system, is_monorepo_member,
		monorepo_id, tags, active, last_diagnostic_run, metadata FROM repositories WHERE id = ?`, id)
	info, err := scanRepository(row)
	if err == sql.ErrNoRows {
		return RepositoryInfo{}, false, nil
	}
	if err != nil {
		return RepositoryInfo{}, false, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get", id, err)
	}
	return info, true, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRepository(row scanner) (RepositoryInfo, error) {
	var info RepositoryInfo
	var isMember, active int
	var tagsJSON, metaJSON string
	var lastRun sql.NullInt64

	if err := row.Scan(&info.ID, &info.Name, &info.Path, &info.RemoteURL, &info.PrimaryLanguage, &info.BuildSystem,
		&isMember, &info.MonorepoID, &tagsJSON, &active, &lastRun, &metaJSON); err != nil {
		return RepositoryInfo{}, err
	}
	info.IsMonorepoMember = isMember != 0
	info.Active = active != 0
	if lastRun.Valid {
		t := time.Unix(lastRun.Int64, 0).UTC()
		info.LastDiagnosticRun = &t
	}
	_ = json.Unmarshal([]byte(tagsJSON), &info.Tags)
	_ = json.Unmarshal([]byte(metaJSON), &info.Metadata)
	return info, nil
}

// ListActive returns all repositories with active=true.
func (r *Registry) ListActive() ([]RepositoryInfo, error) {
	return r.list("WHERE active = 1")
}

// ListAll returns every registered repository, active or not.
func (r *Registry) ListAll() ([]RepositoryInfo, error) {
	return r.list("")
}

func (r *Registry) list(where string) ([]RepositoryInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	query := `SELECT id, name, path, remote_url, primary_language, build_system, is_monorepo_member,
		monorepo_id, tags, active, last_diagnostic_run, metadata FROM repositories ` + where
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "list", "", err)
	}
	defer rows.Close()

	var out []RepositoryInfo
	for rows.Next() {
		info, err := scanRepository(rows)
		if err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "list", "", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// AddRelation upserts a relation by its natural key.
func (r *Registry) AddRelation(rel RepositoryRelation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(rel.Data)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonSerialization, "add_relation", rel.SourceID, err)
	}
	_, err = r.db.Exec(`INSERT INTO repository_relations (source_id, target_id, relation_type, data, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, relation_type) DO UPDATE SET data=excluded.data`,
		rel.SourceID, rel.TargetID, string(rel.Kind), string(data), time.Now().Unix())
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "add_relation", rel.SourceID, err)
	}
	return nil
}

// GetRelations returns every relation touching repoID in either direction.
func (r *Registry) GetRelations(repoID string) ([]RepositoryRelation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT source_id, target_id, relation_type, data FROM repository_relations
		WHERE source_id = ? OR target_id = ?`, repoID, repoID)
	if err != nil {
		return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_relations", repoID, err)
	}
	defer rows.Close()

	var out []RepositoryRelation
	for rows.Next() {
		var rel RepositoryRelation
		var kind, dataJSON string
		if err := rows.Scan(&rel.SourceID, &rel.TargetID, &kind, &dataJSON); err != nil {
			return nil, lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "get_relations", repoID, err)
		}
		rel.Kind = RelationKind(kind)
		_ = json.Unmarshal([]byte(dataJSON), &rel.Data)
		out = append(out, rel)
	}
	return out, rows.Err()
}

// FindByTag returns active repositories whose decoded tag list contains
// tag exactly. This improves on the original Rust registry's
// `LIKE '%"tag"%'` substring probe, which can both false-positive on
// substrings of other tags and miss tags at array boundaries; see
// DESIGN.md.
func (r *Registry) FindByTag(tag string) ([]RepositoryInfo, error) {
	all, err := r.ListActive()
	if err != nil {
		return nil, err
	}
	var out []RepositoryInfo
	for _, info := range all {
		for _, t := range info.Tags {
			if t == tag {
				out = append(out, info)
				break
			}
		}
	}
	return out, nil
}

// UpdateDiagnosticTimestamp bumps last_diagnostic_run to now.
func (r *Registry) UpdateDiagnosticTimestamp(repoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().Unix()
	res, err := r.db.Exec(`UPDATE repositories SET last_diagnostic_run = ?, updated_at = ? WHERE id = ?`, now, now, repoID)
	if err != nil {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "update_diagnostic_timestamp", repoID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return lsperrors.New(lsperrors.KindDatabase, lsperrors.ReasonQuery, "update_diagnostic_timestamp", repoID, sql.ErrNoRows)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
