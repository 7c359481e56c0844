package monorepo

import (
	"os"

	"gopkg.in/yaml.v3"
)

// pnpmDetector recognizes pnpm workspaces declared via pnpm-workspace.yaml.
type pnpmDetector struct{}

func (pnpmDetector) Kind() WorkspaceKind { return Pnpm }

type pnpmWorkspaceFile struct {
	Packages []string `yaml:"packages"`
}

func (pnpmDetector) Detect(root string) (*WorkspaceLayout, error) {
	path := join(root, "pnpm-workspace.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil
	}

	var ws pnpmWorkspaceFile
	if err := yaml.Unmarshal(data, &ws); err != nil {
		return nil, nil
	}
	if len(ws.Packages) == 0 {
		return nil, nil
	}

	subprojects, err := findSubprojects(root, ws.Packages, "package.json")
	if err != nil {
		return nil, err
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Pnpm,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{Patterns: ws.Packages},
		SharedConfigPaths: findSharedConfigs(root, []string{"tsconfig.json", ".eslintrc", ".prettierrc"}),
	}, nil
}
