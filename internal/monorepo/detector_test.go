package monorepo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestDetectNpmWorkspaceArrayForm(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "package.json"), `{"name":"root","workspaces":["packages/*"]}`)
	writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name":"a","dependencies":{"b":"1.0.0","lodash":"4.0.0"}}`)
	writeFile(t, filepath.Join(root, "packages/b/package.json"), `{"name":"b"}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Npm, layout.Kind)
	require.Len(t, layout.Subprojects, 2)

	var a SubprojectInfo
	for _, s := range layout.Subprojects {
		if s.Name == "a" {
			a = s
		}
	}
	require.Equal(t, []string{"b"}, a.InternalDeps)
	require.Equal(t, []string{"lodash"}, a.ExternalDeps)
}

func TestDetectPnpmWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pnpm-workspace.yaml"), "packages:\n  - 'packages/*'\n")
	writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name":"a"}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Pnpm, layout.Kind)
}

func TestDetectLernaDefaultsPackagesGlob(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "lerna.json"), `{}`)
	writeFile(t, filepath.Join(root, "packages/a/package.json"), `{"name":"a"}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Lerna, layout.Kind)
	require.Len(t, layout.Subprojects, 1)
}

func TestDetectCargoWorkspaceMembers(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = [\"crates/*\"]\n")
	writeFile(t, filepath.Join(root, "crates/foo/Cargo.toml"), "[package]\nname = \"foo\"\n\n[dependencies]\nserde = \"1\"\n")

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Cargo, layout.Kind)
	require.Len(t, layout.Subprojects, 1)
	require.Equal(t, "foo", layout.Subprojects[0].Name)
	require.Equal(t, []string{"serde"}, layout.Subprojects[0].ExternalDeps)
}

func TestDetectCargoEmptyMembersIsNotAWorkspace(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Cargo.toml"), "[workspace]\nmembers = []\n")

	layout, err := Detect(root)
	require.NoError(t, err)
	require.Nil(t, layout)
}

func TestDetectNxFromWorkspaceJSON(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "nx.json"), `{}`)
	writeFile(t, filepath.Join(root, "workspace.json"), `{"projects":{"api":"apps/api"}}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Nx, layout.Kind)
	require.Len(t, layout.Subprojects, 1)
	require.Equal(t, "api", layout.Subprojects[0].Name)
}

func TestDetectRushProjects(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "rush.json"), `{"projects":[{"packageName":"svc-a","projectFolder":"apps/svc-a"}]}`)
	writeFile(t, filepath.Join(root, "apps/svc-a/package.json"), `{"name":"svc-a"}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Rush, layout.Kind)
	require.Len(t, layout.Subprojects, 1)
	require.Equal(t, "svc-a", layout.Subprojects[0].Name)
}

func TestDetectBazelByBuildFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "WORKSPACE"), "")
	writeFile(t, filepath.Join(root, "pkg/foo/BUILD.bazel"), "")

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Bazel, layout.Kind)
	require.Len(t, layout.Subprojects, 1)
}

func TestDetectFallsBackToCustomHeuristic(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "services/a/package.json"), `{"name":"a"}`)
	writeFile(t, filepath.Join(root, "services/b/package.json"), `{"name":"b"}`)

	layout, err := Detect(root)
	require.NoError(t, err)
	require.NotNil(t, layout)
	require.Equal(t, Custom, layout.Kind)
	require.Len(t, layout.Subprojects, 2)
}

func TestDetectReturnsNilWhenNothingMatches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "hello")

	layout, err := Detect(root)
	require.NoError(t, err)
	require.Nil(t, layout)
}
