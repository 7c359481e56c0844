// Package monorepo implements the monorepo layout detector (C6): it tries
// workspace flavors in a fixed order and enumerates subprojects with
// internal/external dependencies, grounded on
// original_source/src/multi_repo/monorepo/detectors/*.rs.
package monorepo

// WorkspaceKind identifies a monorepo tooling flavor.
type WorkspaceKind string

const (
	Npm    WorkspaceKind = "npm"
	Pnpm   WorkspaceKind = "pnpm"
	Lerna  WorkspaceKind = "lerna"
	Cargo  WorkspaceKind = "cargo"
	Bazel  WorkspaceKind = "bazel"
	Nx     WorkspaceKind = "nx"
	Rush   WorkspaceKind = "rush"
	Custom WorkspaceKind = "custom"
)

// SubprojectInfo describes one workspace member (spec §3).
type SubprojectInfo struct {
	Name            string
	RelativePath    string
	AbsolutePath    string
	Language        string
	BuildSystem     string
	InternalDeps    []string
	ExternalDeps    []string
	PackageManifest map[string]any
}

// WorkspaceConfig carries the raw glob patterns/excludes plus any
// flavor-specific build configuration blob.
type WorkspaceConfig struct {
	Patterns     []string
	Excludes     []string
	Dependencies map[string]string
	BuildConfig  map[string]any
}

// WorkspaceLayout is the detector's output.
type WorkspaceLayout struct {
	Root              string
	Kind              WorkspaceKind
	Subprojects       []SubprojectInfo
	Config            WorkspaceConfig
	SharedConfigPaths []string
}
