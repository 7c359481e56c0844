// Package aggregator collects diagnostics across repositories, mines
// pairwise relationships between them, and scores cross-repository impact,
// grounded on original_source/src/multi_repo/aggregator.rs.
package aggregator

import (
	"context"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
	"github.com/lspbridge/lspbridge/internal/registry"
)

// DiagnosticRelation classifies how two diagnostics in different
// repositories relate to each other.
type DiagnosticRelation string

const (
	RelationSamePattern      DiagnosticRelation = "same_pattern"
	RelationSharedDependency DiagnosticRelation = "shared_dependency"
	RelationTypeMismatch     DiagnosticRelation = "type_mismatch"
	RelationAPIViolation     DiagnosticRelation = "api_violation"
	RelationSimilarCode      DiagnosticRelation = "similar_code"
)

// RelatedDiagnostic is a diagnostic in another repository found related to
// the one it's attached to.
type RelatedDiagnostic struct {
	RepositoryID      string
	RepositoryName    string
	FilePath          string
	DiagnosticSummary string
	RelationType      DiagnosticRelation
}

// AggregatedDiagnostic wraps a single diagnostic with the repository it
// came from and its computed cross-repository relationships.
type AggregatedDiagnostic struct {
	Diagnostic         diagnostic.Diagnostic
	RepositoryID       string
	RepositoryName     string
	RelativePath       string
	CrossRepoImpact    float64
	RelatedDiagnostics []RelatedDiagnostic
}

// CollectFunc fetches diagnostics for one repository. The aggregator
// treats a nil slice and a nil error as "no diagnostics found" (per
// SPEC_FULL.md's Open Question decision), never as a failure.
type CollectFunc func(ctx context.Context, repo registry.RepositoryInfo) ([]diagnostic.Diagnostic, error)
