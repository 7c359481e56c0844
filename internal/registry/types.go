// Package registry implements the persistent repository registry (C5):
// a directory of repositories and their typed relations, grounded on
// original_source/src/multi_repo/registry.rs.
package registry

import "time"

// RelationKind is a tagged variant with a Custom(name) escape hatch: known
// values round-trip via a fixed string mapping; any other string passes
// through verbatim (spec §9).
type RelationKind string

const (
	RelationSharedTypes     RelationKind = "shared_types"
	RelationDependency      RelationKind = "dependency"
	RelationDevDependency   RelationKind = "dev_dependency"
	RelationMonorepoSibling RelationKind = "monorepo_sibling"
	RelationApiRelation     RelationKind = "api_relation"
)

// RepositoryInfo is the registry's owned record for one repository (spec §3).
type RepositoryInfo struct {
	ID               string
	Name             string
	Path             string
	RemoteURL        string
	PrimaryLanguage  string
	BuildSystem      string
	IsMonorepoMember bool
	MonorepoID       string
	Tags             []string
	Active           bool
	LastDiagnosticRun *time.Time
	Metadata         map[string]any
}

// RepositoryRelation is a directed, typed edge between two repositories,
// unique per (source, target, kind).
type RepositoryRelation struct {
	SourceID string
	TargetID string
	Kind     RelationKind
	Data     map[string]any
}
