package monorepo

import (
	"os"
	"path/filepath"
	"strings"
)

// bazelDetector recognizes Bazel workspaces: a WORKSPACE(.bazel) file at
// root, with subprojects being directories containing a BUILD(.bazel)
// file within depth 3. Bazel has no original_source file to ground on;
// this detector is spec-only (SPEC_FULL.md §4.4).
type bazelDetector struct{}

func (bazelDetector) Kind() WorkspaceKind { return Bazel }

func (bazelDetector) Detect(root string) (*WorkspaceLayout, error) {
	if !fileExists(join(root, "WORKSPACE")) && !fileExists(join(root, "WORKSPACE.bazel")) {
		return nil, nil
	}

	var subprojects []SubprojectInfo
	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	err := filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			depth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
			if depth > 3 {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.Name() != "BUILD" && fi.Name() != "BUILD.bazel" {
			return nil
		}
		dir := filepath.Dir(path)
		if dir == root {
			return nil
		}
		rel, _ := filepath.Rel(root, dir)
		subprojects = append(subprojects, SubprojectInfo{
			Name:         filepath.ToSlash(rel),
			RelativePath: rel,
			AbsolutePath: dir,
			BuildSystem:  "bazel",
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(subprojects) == 0 {
		return nil, nil
	}

	return &WorkspaceLayout{
		Root:              root,
		Kind:              Bazel,
		Subprojects:       subprojects,
		SharedConfigPaths: findSharedConfigs(root, []string{".bazelrc", "BUILD.bazel"}),
	}, nil
}
