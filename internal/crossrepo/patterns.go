package crossrepo

import "regexp"

var typeDefinitionPatterns = map[string][]*regexp.Regexp{
	"typescript": {
		regexp.MustCompile(`export\s+(?:declare\s+)?(?:interface|type|class|enum)\s+(\w+)`),
		regexp.MustCompile(`(?:interface|type|class|enum)\s+(\w+)`),
	},
	"rust": {
		regexp.MustCompile(`pub\s+(?:struct|enum|trait|type)\s+(\w+)`),
		regexp.MustCompile(`(?:struct|enum|trait|type)\s+(\w+)`),
	},
	"python": {
		regexp.MustCompile(`class\s+(\w+)`),
		regexp.MustCompile(`(\w+)\s*=\s*TypedDict`),
		regexp.MustCompile(`(\w+)\s*=\s*NamedTuple`),
	},
}

var importPatterns = map[string][]*regexp.Regexp{
	"typescript": {
		regexp.MustCompile(`import\s+(?:type\s+)?(?:\{[^}]+\}|\*\s+as\s+\w+|\w+)\s+from\s+['"]([@\w\-/.]+)['"]`),
		regexp.MustCompile(`require\s*\(\s*['"]([@\w\-/.]+)['"]\s*\)`),
		regexp.MustCompile(`import\s*\(\s*['"]([@\w\-/.]+)['"]\s*\)`),
	},
	"rust": {
		regexp.MustCompile(`use\s+((?:\w+::)*\w+)`),
		regexp.MustCompile(`extern\s+crate\s+(\w+)`),
	},
	"python": {
		regexp.MustCompile(`from\s+([\w.]+)\s+import`),
		regexp.MustCompile(`import\s+([\w.]+)`),
	},
}

// canonicalLanguage maps a repository's recorded primary language to the
// pattern-table key, folding javascript onto the typescript patterns.
func canonicalLanguage(language string) (string, bool) {
	switch language {
	case "typescript", "javascript":
		return "typescript", true
	case "rust":
		return "rust", true
	case "python":
		return "python", true
	default:
		return "", false
	}
}

func fileExtensions(language string) []string {
	switch language {
	case "typescript":
		return []string{".ts", ".tsx"}
	case "javascript":
		return []string{".js", ".jsx"}
	case "rust":
		return []string{".rs"}
	case "python":
		return []string{".py"}
	default:
		return nil
	}
}

// typeScanExtensions lists the extensions for the type-definition scan. Its
// explicit .d.ts entry adds nothing over .ts: extensions are matched as
// suffixes, so import scanning sees ambient declaration files as well.
func typeScanExtensions(language string) []string {
	if language == "typescript" {
		return []string{".ts", ".tsx", ".d.ts"}
	}
	return fileExtensions(language)
}
