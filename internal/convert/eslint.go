package convert

import (
	"strings"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// ESLintConverter converts `eslint -f json` style payloads, grounded on
// original_source/src/format/format_converter/converters/eslint.rs.
type ESLintConverter struct{}

func NewESLintConverter() *ESLintConverter { return &ESLintConverter{} }

func (c *ESLintConverter) Name() string { return "eslint" }

func (c *ESLintConverter) CanHandle(sourceTag string) bool {
	return strings.Contains(strings.ToLower(sourceTag), "eslint")
}

// eslintSeverity maps the `severity` field: 1=Warning, 2=Error.
func eslintSeverity(sev int) diagnostic.Severity {
	switch sev {
	case 1:
		return diagnostic.Warning
	case 2:
		return diagnostic.Error
	default:
		return diagnostic.Warning
	}
}

func (c *ESLintConverter) Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error) {
	results, err := unwrapResultsArray(raw.Payload)
	if err != nil {
		return nil, err
	}

	var out []diagnostic.Diagnostic
	for _, r := range results {
		result, ok := asMap(r)
		if !ok {
			return nil, invalidFormat("eslint.convert", "result object", r)
		}
		filePath := getStringDefault(result, "filePath", "")
		messages, _ := getSlice(result, "messages")

		for _, m := range messages {
			msg, ok := asMap(m)
			if !ok {
				return nil, invalidFormat("eslint.convert", "message object", m)
			}
			rng := convertEslintRange(msg)
			sev := getIntDefault(msg, "severity", 1)
			message := getStringDefault(msg, "message", "")
			code := getStringDefault(msg, "ruleId", "")

			out = append(out, diagnostic.Diagnostic{
				ID:       generateID("eslint"),
				File:     diagnostic.NormalizePath(filePath),
				Range:    rng,
				Severity: eslintSeverity(sev),
				Message:  message,
				Code:     code,
				Source:   "eslint",
			})
		}
	}
	return out, nil
}

func unwrapResultsArray(payload any) ([]any, error) {
	m, ok := asMap(payload)
	if !ok {
		return nil, invalidFormat("unwrap", "{results:[]}", payload)
	}
	results, ok := getSlice(m, "results")
	if !ok {
		return nil, invalidFormat("unwrap", "results array", m["results"])
	}
	return results, nil
}
