package monorepo

// customHeuristicDetector is the fallback when no named tooling flavor
// matches: if at least two subprojects are found under common directory
// conventions (package.json or Cargo.toml), it reports a Custom layout.
type customHeuristicDetector struct{}

func (customHeuristicDetector) Kind() WorkspaceKind { return Custom }

var customCandidatePatterns = []string{
	"packages/*", "apps/*", "services/*", "libs/*", "modules/*",
}

func (customHeuristicDetector) Detect(root string) (*WorkspaceLayout, error) {
	npmProjects, err := findSubprojects(root, customCandidatePatterns, "package.json")
	if err != nil {
		return nil, err
	}
	cargoProjects, err := findSubprojects(root, customCandidatePatterns, "Cargo.toml")
	if err != nil {
		return nil, err
	}

	subprojects := append(npmProjects, cargoProjects...)
	if len(subprojects) < 2 {
		return nil, nil
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Custom,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{Patterns: customCandidatePatterns},
		SharedConfigPaths: findSharedConfigs(root, []string{"tsconfig.json", ".eslintrc", ".prettierrc"}),
	}, nil
}
