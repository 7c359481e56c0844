package convert

import (
	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// GenericLSPConverter is the fallback converter: it treats the payload as
// LSP-shape and preserves the original source tag, grounded on
// original_source/src/format/format_converter/converters/generic_lsp.rs.
type GenericLSPConverter struct{}

func NewGenericLSPConverter() *GenericLSPConverter { return &GenericLSPConverter{} }

func (c *GenericLSPConverter) Name() string { return "generic_lsp" }

// CanHandle is the universal fallback: it always matches.
func (c *GenericLSPConverter) CanHandle(sourceTag string) bool { return true }

// lspSeverity maps the `severity` field: 1=Error,2=Warning,3=Info,4=Hint.
func lspSeverity(sev int) diagnostic.Severity {
	switch sev {
	case 1:
		return diagnostic.Error
	case 2:
		return diagnostic.Warning
	case 3:
		return diagnostic.Information
	case 4:
		return diagnostic.Hint
	default:
		return diagnostic.Error
	}
}

func (c *GenericLSPConverter) Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error) {
	items, err := unwrapDiagnosticsArray(raw.Payload)
	if err != nil {
		return nil, err
	}

	out := make([]diagnostic.Diagnostic, 0, len(items))
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			return nil, invalidFormat("generic_lsp.convert", "diagnostic object", item)
		}

		file := getStringDefault(entry, "uri", getStringDefault(entry, "source", getStringDefault(entry, "file", "")))
		rangeV, _ := getMap(entry, "range")
		rng, ok := convertLSPRange(rangeV)
		if !ok {
			return nil, invalidFormat("generic_lsp.convert", "range with start and end", entry["range"])
		}

		sev := getIntDefault(entry, "severity", 1)
		message := getStringDefault(entry, "message", "")
		code := codeString(entry["code"])
		source := getStringDefault(entry, "source", raw.SourceTag)

		out = append(out, diagnostic.Diagnostic{
			ID:       generateID("lsp"),
			File:     diagnostic.NormalizePath(file),
			Range:    rng,
			Severity: lspSeverity(sev),
			Message:  message,
			Code:     code,
			Source:   source,
		})
	}
	return out, nil
}
