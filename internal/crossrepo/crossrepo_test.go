package crossrepo

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lspbridge/lspbridge/internal/logging"
	"github.com/lspbridge/lspbridge/internal/registry"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "registry.db")
	reg, err := registry.LoadOrCreate(path, logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })
	return reg
}

func writeSource(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTypeAnalyzerFindsCrossRepoReferences(t *testing.T) {
	reg := newTestRegistry(t)

	libRoot := t.TempDir()
	appRoot := t.TempDir()
	writeSource(t, filepath.Join(libRoot, "types.ts"), "export interface Widget {\n  id: string\n}\n")
	writeSource(t, filepath.Join(appRoot, "main.ts"), "function render(w: Widget) {\n  return w.id\n}\n")

	require.NoError(t, reg.Register(registry.RepositoryInfo{ID: "lib", Name: "lib", Path: libRoot, PrimaryLanguage: "typescript", Active: true}))
	require.NoError(t, reg.Register(registry.RepositoryInfo{ID: "app", Name: "app", Path: appRoot, PrimaryLanguage: "typescript", Active: true}))

	refs, err := NewTypeAnalyzer().AnalyzeTypeReferences(context.Background(), reg)
	require.NoError(t, err)

	var found bool
	for _, r := range refs {
		if r.TypeName == "Widget" {
			found = true
			require.Equal(t, "lib", r.SourceRepoID)
			require.Len(t, r.TargetRepos, 1)
			require.Equal(t, "app", r.TargetRepos[0].RepoID)
		}
	}
	require.True(t, found, "expected a Widget type reference")
}

func TestDependencyAnalyzerClassifiesImportKinds(t *testing.T) {
	reg := newTestRegistry(t)

	appRoot := t.TempDir()
	writeSource(t, filepath.Join(appRoot, "main.ts"), ""+
		"import { helper } from './helper'\n"+
		"import { thing } from 'sibling-pkg'\n"+
		"import lodash from 'lodash'\n")

	require.NoError(t, reg.Register(registry.RepositoryInfo{
		ID: "app", Name: "app", Path: appRoot, PrimaryLanguage: "typescript", Active: true,
		IsMonorepoMember: true, MonorepoID: "mono",
	}))
	require.NoError(t, reg.Register(registry.RepositoryInfo{
		ID: "sibling", Name: "sibling-pkg", Path: t.TempDir(), PrimaryLanguage: "typescript", Active: true,
		IsMonorepoMember: true, MonorepoID: "mono",
	}))

	relations, err := NewDependencyAnalyzer().ResolveImports(context.Background(), reg)
	require.NoError(t, err)

	byPath := make(map[string]ImportRelation)
	for _, r := range relations {
		byPath[r.ImportPath] = r
	}

	require.Equal(t, ImportLocal, byPath["./helper"].ImportType)
	require.Equal(t, ImportWorkspace, byPath["sibling-pkg"].ImportType)
	require.Equal(t, "sibling", byPath["sibling-pkg"].TargetRepoID)
	require.Equal(t, ImportPackage, byPath["lodash"].ImportType)
}

func TestAnalyzerCachesUntilInvalidated(t *testing.T) {
	reg := newTestRegistry(t)
	root := t.TempDir()
	writeSource(t, filepath.Join(root, "main.ts"), "import lodash from 'lodash'\n")
	require.NoError(t, reg.Register(registry.RepositoryInfo{ID: "app", Name: "app", Path: root, PrimaryLanguage: "typescript", Active: true}))

	a := New(false, logging.NewNop())
	first, err := a.ResolveImports(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, first, 1)

	writeSource(t, filepath.Join(root, "second.ts"), "import react from 'react'\n")
	second, err := a.ResolveImports(context.Background(), reg)
	require.NoError(t, err)
	require.Len(t, second, 1, "cached result should not see the new file yet")
}

func TestAnalyzerDisablesTypeScanWhenRequested(t *testing.T) {
	reg := newTestRegistry(t)
	a := New(false, logging.NewNop())
	refs, err := a.AnalyzeTypeReferences(context.Background(), reg)
	require.NoError(t, err)
	require.Nil(t, refs)
}
