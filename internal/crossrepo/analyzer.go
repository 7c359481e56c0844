package crossrepo

import (
	"context"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/lspbridge/lspbridge/internal/registry"
)

// Analyzer combines type reference and import resolution analysis over a
// repository registry, with a result cache invalidated by filesystem
// change notifications (the supplement beyond the distilled scan-on-every-
// call original: repeated calls between repo edits are free).
type Analyzer struct {
	types        *TypeAnalyzer
	dependencies *DependencyAnalyzer
	analyzeTypes bool

	logger *zap.Logger
	mu     sync.Mutex
	cache  *analysisResult

	watcher *fsnotify.Watcher
}

type analysisResult struct {
	typeRefs []TypeReference
	imports  []ImportRelation
}

// New creates an Analyzer. analyzeTypes disables the (more expensive)
// type-reference scan when false, matching the original's toggle.
func New(analyzeTypes bool, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		types:        NewTypeAnalyzer(),
		dependencies: NewDependencyAnalyzer(),
		analyzeTypes: analyzeTypes,
		logger:       logger,
	}
}

// WatchInvalidation starts watching the given repository roots and drops
// the analysis cache whenever fsnotify reports a change underneath one of
// them. Best-effort: if the watcher cannot be created, results stay cached
// and are never invalidated.
func (a *Analyzer) WatchInvalidation(roots []string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		a.logger.Warn("crossrepo cache invalidation watcher unavailable", zap.Error(err))
		return
	}
	for _, root := range roots {
		if err := watcher.Add(root); err != nil {
			a.logger.Warn("failed to watch repository root", zap.String("root", root), zap.Error(err))
		}
	}

	a.mu.Lock()
	a.watcher = watcher
	a.mu.Unlock()

	go func() {
		for {
			select {
			case _, ok := <-watcher.Events:
				if !ok {
					return
				}
				a.mu.Lock()
				a.cache = nil
				a.mu.Unlock()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				a.logger.Warn("crossrepo watcher error", zap.Error(err))
			}
		}
	}()
}

// Close stops the invalidation watcher, if running.
func (a *Analyzer) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Close()
	a.watcher = nil
	return err
}

// AnalyzeTypeReferences returns cross-repo type usage references, or an
// empty slice when type analysis is disabled.
func (a *Analyzer) AnalyzeTypeReferences(ctx context.Context, reg *registry.Registry) ([]TypeReference, error) {
	if !a.analyzeTypes {
		return nil, nil
	}
	result, err := a.analyzeLocked(ctx, reg)
	if err != nil {
		return nil, err
	}
	return result.typeRefs, nil
}

// ResolveImports returns every import relation found across active
// repositories, with resolution applied where possible.
func (a *Analyzer) ResolveImports(ctx context.Context, reg *registry.Registry) ([]ImportRelation, error) {
	result, err := a.analyzeLocked(ctx, reg)
	if err != nil {
		return nil, err
	}
	return result.imports, nil
}

func (a *Analyzer) analyzeLocked(ctx context.Context, reg *registry.Registry) (*analysisResult, error) {
	a.mu.Lock()
	if a.cache != nil {
		defer a.mu.Unlock()
		return a.cache, nil
	}
	a.mu.Unlock()

	var typeRefs []TypeReference
	var err error
	if a.analyzeTypes {
		typeRefs, err = a.types.AnalyzeTypeReferences(ctx, reg)
		if err != nil {
			return nil, err
		}
	}

	imports, err := a.dependencies.ResolveImports(ctx, reg)
	if err != nil {
		return nil, err
	}

	result := &analysisResult{typeRefs: typeRefs, imports: imports}
	a.mu.Lock()
	a.cache = result
	a.mu.Unlock()
	return result, nil
}
