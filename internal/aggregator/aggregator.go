package aggregator

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
	"github.com/lspbridge/lspbridge/internal/registry"
)

// Aggregator fans diagnostic collection out across repositories with
// bounded concurrency, then mines relationships and scores impact.
type Aggregator struct {
	maxConcurrent int
	collect       CollectFunc
	logger        *zap.Logger

	mu    sync.Mutex
	cache map[string][]diagnostic.Diagnostic
}

// New creates an Aggregator. collect is the diagnostic source per
// repository — in production this talks to an LSP client; in tests it's a
// stub.
func New(maxConcurrent int, collect CollectFunc, logger *zap.Logger) *Aggregator {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Aggregator{
		maxConcurrent: maxConcurrent,
		collect:       collect,
		logger:        logger,
		cache:         make(map[string][]diagnostic.Diagnostic),
	}
}

type repoResult struct {
	repo        registry.RepositoryInfo
	diagnostics []diagnostic.Diagnostic
}

// AnalyzeRepositories collects diagnostics from every repository (bounded
// by maxConcurrent in-flight collections), mines pairwise relationships,
// scores cross-repository impact, and returns the result sorted by impact
// descending.
func (a *Aggregator) AnalyzeRepositories(ctx context.Context, repositories []registry.RepositoryInfo) ([]AggregatedDiagnostic, error) {
	results := a.collectAll(ctx, repositories)

	repoMap := make(map[string]repoResult, len(results))
	var aggregated []AggregatedDiagnostic
	for _, r := range results {
		repoMap[r.repo.ID] = r
		for _, d := range r.diagnostics {
			aggregated = append(aggregated, AggregatedDiagnostic{
				Diagnostic:     d,
				RepositoryID:   r.repo.ID,
				RepositoryName: r.repo.Name,
				RelativePath:   d.File,
			})
		}
	}

	findRelationships(aggregated, repoMap)
	calculateImpactScores(aggregated)

	sort.SliceStable(aggregated, func(i, j int) bool {
		return aggregated[i].CrossRepoImpact > aggregated[j].CrossRepoImpact
	})

	return aggregated, nil
}

func (a *Aggregator) collectAll(ctx context.Context, repositories []registry.RepositoryInfo) []repoResult {
	sem := make(chan struct{}, a.maxConcurrent)
	var wg sync.WaitGroup
	results := make([]repoResult, len(repositories))

	for i, repo := range repositories {
		wg.Add(1)
		go func(i int, repo registry.RepositoryInfo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			results[i] = repoResult{repo: repo}
			if a.collect == nil {
				return
			}

			diagnostics, err := a.collect(ctx, repo)
			if err != nil {
				a.logger.Warn("failed to collect diagnostics", zap.String("repo", repo.ID), zap.Error(err))
				return
			}

			a.mu.Lock()
			a.cache[repo.ID] = diagnostics
			a.mu.Unlock()

			results[i].diagnostics = diagnostics
		}(i, repo)
	}

	wg.Wait()
	return results
}

// GetCached returns the last collected diagnostics for a repository.
func (a *Aggregator) GetCached(repoID string) ([]diagnostic.Diagnostic, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	d, ok := a.cache[repoID]
	return d, ok
}

// ClearCache drops all cached per-repository diagnostics.
func (a *Aggregator) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string][]diagnostic.Diagnostic)
}

func findRelationships(aggregated []AggregatedDiagnostic, repoMap map[string]repoResult) {
	for i := range aggregated {
		current := &aggregated[i]
		var related []RelatedDiagnostic

		for repoID, r := range repoMap {
			if repoID == current.RepositoryID {
				continue
			}
			for _, other := range r.diagnostics {
				if relation, ok := checkRelation(current.Diagnostic, other); ok {
					related = append(related, RelatedDiagnostic{
						RepositoryID:      repoID,
						RepositoryName:    r.repo.Name,
						FilePath:          other.File,
						DiagnosticSummary: other.Message,
						RelationType:      relation,
					})
				}
			}
		}

		sort.Slice(related, func(i, j int) bool {
			if related[i].RepositoryID != related[j].RepositoryID {
				return related[i].RepositoryID < related[j].RepositoryID
			}
			return related[i].FilePath < related[j].FilePath
		})

		current.RelatedDiagnostics = related
	}
}

// checkRelation applies the original's fixed precedence: same pattern,
// then type mismatch, then API violation, then similar code.
func checkRelation(d1, d2 diagnostic.Diagnostic) (DiagnosticRelation, bool) {
	if isSamePattern(d1, d2) {
		return RelationSamePattern, true
	}
	if isTypeMismatch(d1, d2) {
		return RelationTypeMismatch, true
	}
	if isAPIViolation(d1, d2) {
		return RelationAPIViolation, true
	}
	if isSimilarCode(d1, d2) {
		return RelationSimilarCode, true
	}
	return "", false
}

func isSamePattern(d1, d2 diagnostic.Diagnostic) bool {
	if d1.Code != "" && d1.Code == d2.Code {
		return true
	}

	words1 := wordSet(d1.Message)
	words2 := wordSet(d2.Message)
	if len(words1) == 0 && len(words2) == 0 {
		return false
	}

	intersection := 0
	for w := range words1 {
		if words2[w] {
			intersection++
		}
	}
	denom := len(words1)
	if len(words2) > denom {
		denom = len(words2)
	}
	if denom == 0 {
		return false
	}

	return float64(intersection)/float64(denom) > 0.7
}

func wordSet(s string) map[string]bool {
	words := strings.Fields(s)
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

var typeMismatchKeywords = []string{"type", "Type", "interface", "Interface", "struct", "Struct"}

func isTypeMismatch(d1, d2 diagnostic.Diagnostic) bool {
	return hasTypeError(d1.Message) && hasTypeError(d2.Message)
}

func hasTypeError(msg string) bool {
	hasKeyword := false
	for _, kw := range typeMismatchKeywords {
		if strings.Contains(msg, kw) {
			hasKeyword = true
			break
		}
	}
	if !hasKeyword {
		return false
	}
	return strings.Contains(msg, "mismatch") || strings.Contains(msg, "incompatible") ||
		strings.Contains(msg, "expected") || strings.Contains(msg, "found")
}

var apiViolationKeywords = []string{"api", "API", "endpoint", "route", "contract", "schema"}

func isAPIViolation(d1, d2 diagnostic.Diagnostic) bool {
	for _, kw := range apiViolationKeywords {
		if strings.Contains(d1.Message, kw) || strings.Contains(d2.Message, kw) {
			return true
		}
	}
	return false
}

func isSimilarCode(d1, d2 diagnostic.Diagnostic) bool {
	name1 := filepath.Base(d1.File)
	name2 := filepath.Base(d2.File)
	return name1 != "" && name1 == name2
}

func calculateImpactScores(aggregated []AggregatedDiagnostic) {
	for i := range aggregated {
		d := &aggregated[i]
		score := severityBaseScore(d.Diagnostic.Severity)

		relatedBonus := float64(len(d.RelatedDiagnostics)) * 0.1
		if relatedBonus > 0.3 {
			relatedBonus = 0.3
		}
		score += relatedBonus

		for _, r := range d.RelatedDiagnostics {
			switch r.RelationType {
			case RelationTypeMismatch:
				score += 0.1
			case RelationAPIViolation:
				score += 0.15
			case RelationSharedDependency:
				score += 0.05
			default:
				score += 0.02
			}
		}

		if score > 1.0 {
			score = 1.0
		}
		d.CrossRepoImpact = score
	}
}

func severityBaseScore(sev diagnostic.Severity) float64 {
	switch sev {
	case diagnostic.Error:
		return 0.5
	case diagnostic.Warning:
		return 0.3
	case diagnostic.Information:
		return 0.1
	case diagnostic.Hint:
		return 0.05
	default:
		return 0.0
	}
}
