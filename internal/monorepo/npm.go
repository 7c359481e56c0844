package monorepo

// npmDetector recognizes npm/Yarn workspaces declared via package.json's
// "workspaces" field (array or {packages:[...]} object form).
type npmDetector struct{}

func (npmDetector) Kind() WorkspaceKind { return Npm }

func (npmDetector) Detect(root string) (*WorkspaceLayout, error) {
	pkgPath := join(root, "package.json")
	if !fileExists(pkgPath) {
		return nil, nil
	}
	pkg, err := readJSON(pkgPath)
	if err != nil {
		return nil, nil
	}

	var patterns []string
	switch ws := pkg["workspaces"].(type) {
	case []any:
		for _, p := range ws {
			if s, ok := p.(string); ok {
				patterns = append(patterns, s)
			}
		}
	case map[string]any:
		if arr, ok := ws["packages"].([]any); ok {
			for _, p := range arr {
				if s, ok := p.(string); ok {
					patterns = append(patterns, s)
				}
			}
		}
	}
	if len(patterns) == 0 {
		return nil, nil
	}

	subprojects, err := findSubprojects(root, patterns, "package.json")
	if err != nil {
		return nil, err
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Npm,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{Patterns: patterns},
		SharedConfigPaths: findSharedConfigs(root, []string{"tsconfig.json", ".eslintrc", ".prettierrc"}),
	}, nil
}
