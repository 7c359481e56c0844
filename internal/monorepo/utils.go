package monorepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// cargoPackageFile mirrors the subset of a subproject's Cargo.toml that
// feeds SubprojectInfo: its own name plus dependency tables.
type cargoPackageFile struct {
	Package struct {
		Name string `toml:"name"`
	} `toml:"package"`
	Dependencies    map[string]toml.Primitive `toml:"dependencies"`
	DevDependencies map[string]toml.Primitive `toml:"dev-dependencies"`
}

// readCargoManifest decodes a member Cargo.toml into the generic
// map[string]any shape analyzeDependencies expects, so Rust and npm
// subprojects share one dependency-classification code path.
func readCargoManifest(path string) (string, map[string]any, error) {
	var pkg cargoPackageFile
	if _, err := toml.DecodeFile(path, &pkg); err != nil {
		return "", nil, err
	}
	deps := make(map[string]any, len(pkg.Dependencies))
	for name := range pkg.Dependencies {
		deps[name] = true
	}
	devDeps := make(map[string]any, len(pkg.DevDependencies))
	for name := range pkg.DevDependencies {
		devDeps[name] = true
	}
	manifest := map[string]any{
		"dependencies":    deps,
		"devDependencies": devDeps,
	}
	return pkg.Package.Name, manifest, nil
}

// readJSON reads and decodes a JSON file into a generic map.
func readJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// findSubprojects globs `<root>/<pattern>/<configFile>` for each pattern
// and builds a SubprojectInfo per match, grounded on
// original_source/src/multi_repo/monorepo/utils.rs's find_subprojects.
func findSubprojects(root string, patterns []string, configFile string) ([]SubprojectInfo, error) {
	var out []SubprojectInfo
	seen := make(map[string]bool)

	for _, pattern := range patterns {
		globPath := filepath.Join(root, pattern, configFile)
		matches, err := filepath.Glob(globPath)
		if err != nil {
			return nil, err
		}
		for _, match := range matches {
			dir := filepath.Dir(match)
			if seen[dir] {
				continue
			}
			seen[dir] = true

			rel, err := filepath.Rel(root, dir)
			if err != nil {
				rel = dir
			}

			info := SubprojectInfo{
				RelativePath: rel,
				AbsolutePath: dir,
				Name:         filepath.ToSlash(rel),
			}

			switch configFile {
			case "package.json":
				pkg, err := readJSON(match)
				if err == nil {
					if name, ok := pkg["name"].(string); ok && name != "" {
						info.Name = name
					}
					info.Language = "typescript"
					info.BuildSystem = detectNpmBuildSystem(pkg)
					info.PackageManifest = pkg
				}
			case "Cargo.toml":
				info.Language = "rust"
				info.BuildSystem = "cargo"
				if name, manifest, err := readCargoManifest(match); err == nil {
					if name != "" {
						info.Name = name
					}
					info.PackageManifest = manifest
				} else {
					info.PackageManifest = map[string]any{}
				}
			}

			out = append(out, info)
		}
	}

	analyzeDependencies(out)
	return out, nil
}

// findNxProjects walks root up to depth 4 looking for project.json files.
func findNxProjects(root string) ([]SubprojectInfo, error) {
	var out []SubprojectInfo
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
			if depth > 4 {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.Name() != "project.json" {
			return nil
		}
		dir := filepath.Dir(path)
		project, err := readJSON(path)
		if err != nil {
			return nil
		}
		rel, _ := filepath.Rel(root, dir)
		name := filepath.Base(dir)
		if n, ok := project["name"].(string); ok && n != "" {
			name = n
		}
		out = append(out, SubprojectInfo{
			Name:            name,
			RelativePath:    rel,
			AbsolutePath:    dir,
			Language:        "typescript",
			BuildSystem:     "nx",
			PackageManifest: project,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// analyzeDependencies intersects each subproject's declared dependencies
// against the set of sibling names to compute InternalDeps/ExternalDeps.
func analyzeDependencies(subprojects []SubprojectInfo) {
	names := make(map[string]bool, len(subprojects))
	for _, p := range subprojects {
		names[p.Name] = true
	}

	for i := range subprojects {
		var internal, external []string
		manifest := subprojects[i].PackageManifest
		for _, depField := range []string{"dependencies", "devDependencies", "peerDependencies"} {
			deps, ok := manifest[depField].(map[string]any)
			if !ok {
				continue
			}
			for dep := range deps {
				if names[dep] {
					internal = append(internal, dep)
				} else {
					external = append(external, dep)
				}
			}
		}
		subprojects[i].InternalDeps = internal
		subprojects[i].ExternalDeps = external
	}
}

// findSharedConfigs returns which of the candidate paths exist under root.
func findSharedConfigs(root string, candidates []string) []string {
	var found []string
	for _, c := range candidates {
		if _, err := os.Stat(filepath.Join(root, c)); err == nil {
			found = append(found, c)
		}
	}
	return found
}

// detectNpmBuildSystem inspects package.json scripts/packageManager per
// original_source/src/multi_repo/monorepo/utils.rs's
// detect_npm_build_system, in the original's exact precedence: script
// markers first, then packageManager, then a default of "npm".
func detectNpmBuildSystem(pkg map[string]any) string {
	if scripts, ok := pkg["scripts"].(map[string]any); ok {
		for _, raw := range scripts {
			script, ok := raw.(string)
			if !ok {
				continue
			}
			switch {
			case strings.Contains(script, "nx "):
				return "nx"
			case strings.Contains(script, "lerna "):
				return "lerna"
			case strings.Contains(script, "rush "):
				return "rush"
			case strings.Contains(script, "turbo "):
				return "turbo"
			}
		}
	}
	if pm, ok := pkg["packageManager"].(string); ok {
		switch {
		case strings.HasPrefix(pm, "pnpm"):
			return "pnpm"
		case strings.HasPrefix(pm, "yarn"):
			return "yarn"
		}
	}
	return "npm"
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
