package monorepo

import "path/filepath"

// Detector tries to recognize one workspace flavor at root.
type Detector interface {
	Detect(root string) (*WorkspaceLayout, error)
	Kind() WorkspaceKind
}

// Detect tries every flavor in the fixed order from spec §4.4 and returns
// the first match, falling back to the custom heuristic.
func Detect(root string) (*WorkspaceLayout, error) {
	detectors := []Detector{
		npmDetector{},
		pnpmDetector{},
		lernaDetector{},
		cargoDetector{},
		nxDetector{},
		rushDetector{},
		bazelDetector{},
	}
	for _, d := range detectors {
		layout, err := d.Detect(root)
		if err != nil {
			return nil, err
		}
		if layout != nil {
			return layout, nil
		}
	}
	return customHeuristicDetector{}.Detect(root)
}

func join(root string, parts ...string) string {
	all := append([]string{root}, parts...)
	return filepath.Join(all...)
}
