package monorepo

// nxDetector recognizes Nx workspaces, grounded on
// original_source/src/multi_repo/monorepo/detectors/nx.rs: prefer
// workspace.json's "projects" map when present, else walk for
// project.json files up to depth 4.
type nxDetector struct{}

func (nxDetector) Kind() WorkspaceKind { return Nx }

func (nxDetector) Detect(root string) (*WorkspaceLayout, error) {
	wsPath := join(root, "workspace.json")
	nxJSONPath := join(root, "nx.json")
	if !fileExists(wsPath) && !fileExists(nxJSONPath) {
		return nil, nil
	}

	var subprojects []SubprojectInfo
	if fileExists(wsPath) {
		ws, err := readJSON(wsPath)
		if err == nil {
			if projects, ok := ws["projects"].(map[string]any); ok && len(projects) > 0 {
				for name, v := range projects {
					rel, _ := v.(string)
					if rel == "" {
						continue
					}
					subprojects = append(subprojects, SubprojectInfo{
						Name:         name,
						RelativePath: rel,
						AbsolutePath: join(root, rel),
						Language:     "typescript",
						BuildSystem:  "nx",
					})
				}
			}
		}
	}

	if len(subprojects) == 0 {
		found, err := findNxProjects(root)
		if err != nil {
			return nil, err
		}
		subprojects = found
	}
	if len(subprojects) == 0 {
		return nil, nil
	}

	analyzeDependencies(subprojects)

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Nx,
		Subprojects:       subprojects,
		SharedConfigPaths: findSharedConfigs(root, []string{"nx.json", "tsconfig.base.json"}),
	}, nil
}
