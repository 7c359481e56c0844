package monorepo

// rushDetector recognizes Rush monorepos via rush.json's "projects" array,
// grounded on
// original_source/src/multi_repo/monorepo/detectors/rush.rs. Each entry's
// own package.json, when present, becomes its PackageManifest.
type rushDetector struct{}

func (rushDetector) Kind() WorkspaceKind { return Rush }

type rushProjectEntry struct {
	PackageName   string
	ProjectFolder string
}

func (rushDetector) Detect(root string) (*WorkspaceLayout, error) {
	path := join(root, "rush.json")
	if !fileExists(path) {
		return nil, nil
	}
	cfg, err := readJSON(path)
	if err != nil {
		return nil, nil
	}

	rawProjects, ok := cfg["projects"].([]any)
	if !ok || len(rawProjects) == 0 {
		return nil, nil
	}

	var subprojects []SubprojectInfo
	for _, rp := range rawProjects {
		entry, ok := rp.(map[string]any)
		if !ok {
			continue
		}
		name, _ := entry["packageName"].(string)
		folder, _ := entry["projectFolder"].(string)
		if folder == "" {
			continue
		}

		info := SubprojectInfo{
			Name:         name,
			RelativePath: folder,
			AbsolutePath: join(root, folder),
			Language:     "typescript",
			BuildSystem:  "rush",
		}
		if info.Name == "" {
			info.Name = folder
		}

		pkgPath := join(root, folder, "package.json")
		if pkg, err := readJSON(pkgPath); err == nil {
			info.PackageManifest = pkg
		}

		subprojects = append(subprojects, info)
	}
	if len(subprojects) == 0 {
		return nil, nil
	}

	analyzeDependencies(subprojects)

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Rush,
		Subprojects:       subprojects,
		Config:            WorkspaceConfig{BuildConfig: cfg},
		SharedConfigPaths: findSharedConfigs(root, []string{"common/config/rush/common-versions.json"}),
	}, nil
}
