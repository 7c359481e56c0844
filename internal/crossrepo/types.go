// Package crossrepo analyzes shared types and import dependencies across
// the repositories held in a registry, grounded on
// original_source/src/multi_repo/cross_repo/{mod,analyzers/*}.rs.
package crossrepo

// TypeDefinition locates where a named type is declared.
type TypeDefinition struct {
	RepoID     string
	FilePath   string
	LineNumber int
}

// TypeUsage locates a reference to a known type name in some file.
type TypeUsage struct {
	RepoID       string
	FilePath     string
	LineNumber   int
	UsageContext string
}

// TypeReference links a type's definition to its cross-repo usages.
type TypeReference struct {
	TypeName     string
	SourceRepoID string
	SourceFile   string
	SourceLine   int
	TargetRepos  []TypeUsage
}

// ImportType classifies where an import path resolves to.
type ImportType string

const (
	ImportLocal     ImportType = "local"
	ImportWorkspace ImportType = "workspace"
	ImportExternal  ImportType = "external"
	ImportPackage   ImportType = "package"
)

// ImportRelation is one import statement found in a source file, with its
// resolution (if any) against the repository registry.
type ImportRelation struct {
	SourceRepoID string
	SourceFile   string
	ImportPath   string
	TargetRepoID string
	TargetFile   string
	ImportType   ImportType
}
