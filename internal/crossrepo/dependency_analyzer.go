package crossrepo

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/lspbridge/lspbridge/internal/registry"
)

// DependencyAnalyzer extracts and resolves import statements across
// repositories.
type DependencyAnalyzer struct{}

func NewDependencyAnalyzer() *DependencyAnalyzer { return &DependencyAnalyzer{} }

// ResolveImports scans every active repository's source files for import
// statements and tries to resolve each against the registry.
func (a *DependencyAnalyzer) ResolveImports(ctx context.Context, reg *registry.Registry) ([]ImportRelation, error) {
	repos, err := reg.ListActive()
	if err != nil {
		return nil, err
	}

	var relations []ImportRelation
	for _, repo := range repos {
		imports, err := a.findImports(repo.Path, repo.ID, repo.PrimaryLanguage)
		if err != nil {
			return nil, err
		}
		for i := range imports {
			resolved, err := a.resolveImportTarget(imports[i].ImportPath, repo, reg)
			if err != nil {
				return nil, err
			}
			if resolved != nil {
				imports[i].TargetRepoID = resolved.repoID
				imports[i].TargetFile = resolved.file
				imports[i].ImportType = resolved.kind
			} else {
				imports[i].ImportType = ImportPackage
			}
			relations = append(relations, imports[i])
		}
	}

	return relations, nil
}

func (a *DependencyAnalyzer) findImports(repoPath, repoID, language string) ([]ImportRelation, error) {
	var imports []ImportRelation

	lang, ok := canonicalLanguage(language)
	if !ok {
		return imports, nil
	}
	patterns := importPatterns[lang]
	extensions := fileExtensions(lang)

	err := walkSourceFiles(repoPath, extensions, func(path string, lines []string) {
		for _, line := range lines {
			for _, pattern := range patterns {
				if m := pattern.FindStringSubmatch(line); len(m) > 1 {
					imports = append(imports, ImportRelation{
						SourceRepoID: repoID,
						SourceFile:   path,
						ImportPath:   m[1],
						ImportType:   ImportLocal,
					})
				}
			}
		}
	})
	return imports, err
}

type resolvedImport struct {
	repoID string
	file   string
	kind   ImportType
}

// resolveImportTarget applies the original's precedence: relative path
// (Local), monorepo sibling (Workspace), tracked remote (External), else
// nil meaning the caller should classify it as an untracked Package
// import (per SPEC_FULL.md's Open Question decision).
func (a *DependencyAnalyzer) resolveImportTarget(importPath string, source registry.RepositoryInfo, reg *registry.Registry) (*resolvedImport, error) {
	if strings.HasPrefix(importPath, ".") || strings.HasPrefix(importPath, "/") {
		return &resolvedImport{
			repoID: source.ID,
			file:   filepath.Join(source.Path, importPath),
			kind:   ImportLocal,
		}, nil
	}

	if source.IsMonorepoMember && source.MonorepoID != "" {
		siblings, err := reg.ListActive()
		if err != nil {
			return nil, err
		}
		for _, sibling := range siblings {
			if sibling.MonorepoID != source.MonorepoID {
				continue
			}
			if strings.Contains(importPath, sibling.Name) {
				return &resolvedImport{repoID: sibling.ID, file: sibling.Path, kind: ImportWorkspace}, nil
			}
		}
	}

	allRepos, err := reg.ListActive()
	if err != nil {
		return nil, err
	}
	for _, repo := range allRepos {
		if repo.RemoteURL == "" {
			continue
		}
		if strings.Contains(importPath, repo.Name) || strings.Contains(repo.RemoteURL, importPath) {
			return &resolvedImport{repoID: repo.ID, file: repo.Path, kind: ImportExternal}, nil
		}
	}

	return nil, nil
}
