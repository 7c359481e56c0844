package monorepo

// lernaDetector recognizes Lerna monorepos via lerna.json, defaulting
// packages to ["packages/*"] when absent.
type lernaDetector struct{}

func (lernaDetector) Kind() WorkspaceKind { return Lerna }

func (lernaDetector) Detect(root string) (*WorkspaceLayout, error) {
	path := join(root, "lerna.json")
	if !fileExists(path) {
		return nil, nil
	}
	cfg, err := readJSON(path)
	if err != nil {
		cfg = map[string]any{}
	}

	patterns := []string{"packages/*"}
	if raw, ok := cfg["packages"].([]any); ok && len(raw) > 0 {
		patterns = nil
		for _, p := range raw {
			if s, ok := p.(string); ok {
				patterns = append(patterns, s)
			}
		}
	}

	subprojects, err := findSubprojects(root, patterns, "package.json")
	if err != nil {
		return nil, err
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Lerna,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{Patterns: patterns, BuildConfig: cfg},
		SharedConfigPaths: findSharedConfigs(root, []string{"tsconfig.json", ".eslintrc", ".prettierrc"}),
	}, nil
}
