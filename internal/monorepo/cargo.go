package monorepo

import "github.com/BurntSushi/toml"

type cargoWorkspaceFile struct {
	Workspace *struct {
		Members []string `toml:"members"`
		Exclude []string `toml:"exclude"`
	} `toml:"workspace"`
}

// cargoDetector recognizes a Cargo workspace: Cargo.toml with a
// [workspace] table and a non-empty members array. An empty members array
// is explicitly NOT a workspace (spec §8 boundary behavior).
type cargoDetector struct{}

func (cargoDetector) Kind() WorkspaceKind { return Cargo }

func (cargoDetector) Detect(root string) (*WorkspaceLayout, error) {
	path := join(root, "Cargo.toml")
	if !fileExists(path) {
		return nil, nil
	}

	var parsed cargoWorkspaceFile
	if _, err := toml.DecodeFile(path, &parsed); err != nil {
		return nil, nil
	}
	if parsed.Workspace == nil || len(parsed.Workspace.Members) == 0 {
		return nil, nil
	}

	subprojects, err := findSubprojects(root, parsed.Workspace.Members, "Cargo.toml")
	if err != nil {
		return nil, err
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Cargo,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{Patterns: parsed.Workspace.Members, Excludes: parsed.Workspace.Exclude},
		SharedConfigPaths: findSharedConfigs(root, []string{"rustfmt.toml", ".cargo/config.toml"}),
	}, nil
}
