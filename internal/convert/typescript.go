package convert

import (
	"strings"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// TypeScriptConverter converts `tsc --pretty false` / tsserver style
// diagnostic payloads, grounded on
// original_source/src/format/format_converter/converters/typescript.rs.
type TypeScriptConverter struct{}

func NewTypeScriptConverter() *TypeScriptConverter { return &TypeScriptConverter{} }

func (c *TypeScriptConverter) Name() string { return "typescript" }

func (c *TypeScriptConverter) CanHandle(sourceTag string) bool {
	lower := strings.ToLower(sourceTag)
	return strings.Contains(lower, "typescript") || strings.Contains(lower, "ts")
}

// typeScriptSeverity maps the `category` field: 0=Info,1=Error,2=Warning,3=Hint.
func typeScriptSeverity(category int) diagnostic.Severity {
	switch category {
	case 0:
		return diagnostic.Information
	case 1:
		return diagnostic.Error
	case 2:
		return diagnostic.Warning
	case 3:
		return diagnostic.Hint
	default:
		return diagnostic.Error
	}
}

func (c *TypeScriptConverter) Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error) {
	items, err := unwrapDiagnosticsArray(raw.Payload)
	if err != nil {
		return nil, err
	}

	out := make([]diagnostic.Diagnostic, 0, len(items))
	for i, item := range items {
		entry, ok := asMap(item)
		if !ok {
			return nil, invalidFormat("typescript.convert", "diagnostic object", item)
		}

		file := getStringDefault(entry, "file", getStringDefault(entry, "fileName", ""))
		startV, _ := getMap(entry, "start")
		endV, _ := getMap(entry, "end")
		rng := convertTypeScriptRange(startV, endV)

		category := getIntDefault(entry, "category", 1)
		message := getStringDefault(entry, "messageText", getStringDefault(entry, "message", ""))
		code := codeString(entry["code"])

		var related []diagnostic.RelatedInformation
		if relatedRaw, ok := getSlice(entry, "relatedInformation"); ok {
			for _, r := range relatedRaw {
				relMap, ok := asMap(r)
				if !ok {
					continue
				}
				fileMap, _ := getMap(relMap, "file")
				relFile := getStringDefault(fileMap, "fileName", "")
				relStart, _ := getMap(relMap, "start")
				relEnd, _ := getMap(relMap, "end")
				relRange := convertTypeScriptRange(relStart, relEnd)
				relMsg := getStringDefault(relMap, "messageText", getStringDefault(relMap, "message", ""))
				related = append(related, diagnostic.RelatedInformation{
					File:    diagnostic.NormalizePath(relFile),
					Range:   relRange,
					Message: relMsg,
				})
			}
		}

		out = append(out, diagnostic.Diagnostic{
			ID:       generateID("ts"),
			File:     diagnostic.NormalizePath(file),
			Range:    rng,
			Severity: typeScriptSeverity(category),
			Message:  message,
			Code:     code,
			Source:   "typescript",
			Related:  related,
		})
		_ = i
	}
	return out, nil
}

// unwrapDiagnosticsArray handles both `{"diagnostics":[...]}` envelopes and
// a raw top-level array.
func unwrapDiagnosticsArray(payload any) ([]any, error) {
	if m, ok := asMap(payload); ok {
		if arr, ok := getSlice(m, "diagnostics"); ok {
			return arr, nil
		}
		return nil, invalidFormat("unwrap", "diagnostics array", payload)
	}
	if arr, ok := asSlice(payload); ok {
		return arr, nil
	}
	return nil, invalidFormat("unwrap", "array or {diagnostics:[]}", payload)
}
