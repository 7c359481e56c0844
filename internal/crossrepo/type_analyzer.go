package crossrepo

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/lspbridge/lspbridge/internal/registry"
)

// TypeAnalyzer finds type definitions and their cross-repository usages.
type TypeAnalyzer struct{}

func NewTypeAnalyzer() *TypeAnalyzer { return &TypeAnalyzer{} }

// AnalyzeTypeReferences walks every active repository twice: once to
// collect type definitions, once to find lines referencing a known type
// name declared in a different repository.
func (a *TypeAnalyzer) AnalyzeTypeReferences(ctx context.Context, reg *registry.Registry) ([]TypeReference, error) {
	repos, err := reg.ListActive()
	if err != nil {
		return nil, err
	}

	allTypes := make(map[string][]TypeDefinition)
	for _, repo := range repos {
		defs, err := a.findTypeDefinitions(repo.Path, repo.ID, repo.PrimaryLanguage)
		if err != nil {
			return nil, err
		}
		for name, def := range defs {
			allTypes[name] = append(allTypes[name], def)
		}
	}

	allUsages := make(map[string][]TypeUsage)
	for _, repo := range repos {
		usages, err := a.findTypeUsages(repo.Path, repo.ID, repo.PrimaryLanguage, allTypes)
		if err != nil {
			return nil, err
		}
		for name, usage := range usages {
			allUsages[name] = append(allUsages[name], usage)
		}
	}

	var references []TypeReference
	for typeName, defs := range allTypes {
		for _, def := range defs {
			var targets []TypeUsage
			for _, u := range allUsages[typeName] {
				if u.RepoID != def.RepoID {
					targets = append(targets, u)
				}
			}
			if len(targets) > 0 {
				references = append(references, TypeReference{
					TypeName:     typeName,
					SourceRepoID: def.RepoID,
					SourceFile:   def.FilePath,
					SourceLine:   def.LineNumber,
					TargetRepos:  targets,
				})
			}
		}
	}

	return references, nil
}

func (a *TypeAnalyzer) findTypeDefinitions(repoPath, repoID, language string) (map[string]TypeDefinition, error) {
	definitions := make(map[string]TypeDefinition)

	lang, ok := canonicalLanguage(language)
	if !ok {
		return definitions, nil
	}
	patterns := typeDefinitionPatterns[lang]
	extensions := typeScanExtensions(lang)

	err := walkSourceFiles(repoPath, extensions, func(path string, lines []string) {
		for lineNum, line := range lines {
			for _, pattern := range patterns {
				if m := pattern.FindStringSubmatch(line); len(m) > 1 {
					definitions[m[1]] = TypeDefinition{
						RepoID:     repoID,
						FilePath:   path,
						LineNumber: lineNum + 1,
					}
				}
			}
		}
	})
	return definitions, err
}

func (a *TypeAnalyzer) findTypeUsages(repoPath, repoID, language string, knownTypes map[string][]TypeDefinition) (map[string]TypeUsage, error) {
	usages := make(map[string]TypeUsage)
	if len(knownTypes) == 0 {
		return usages, nil
	}
	lang, ok := canonicalLanguage(language)
	if !ok {
		return usages, nil
	}

	err := walkSourceFiles(repoPath, fileExtensions(lang), func(path string, lines []string) {
		for lineNum, line := range lines {
			for typeName := range knownTypes {
				if strings.Contains(line, typeName) {
					usages[typeName] = TypeUsage{
						RepoID:       repoID,
						FilePath:     path,
						LineNumber:   lineNum + 1,
						UsageContext: strings.TrimSpace(line),
					}
				}
			}
		}
	})
	return usages, err
}

// walkSourceFiles visits every file under root whose extension is in
// extensions (or every file, when extensions is nil), reading it line by
// line and invoking visit. Unreadable files are skipped, matching the
// original's best-effort scan.
func walkSourceFiles(root string, extensions []string, visit func(path string, lines []string)) error {
	return filepath.Walk(root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if fi.IsDir() {
			return nil
		}
		if extensions != nil && !hasAnyExtension(path, extensions) {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return nil
		}
		defer f.Close()

		var lines []string
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		visit(path, lines)
		return nil
	})
}

func hasAnyExtension(path string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}
