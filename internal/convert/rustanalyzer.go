package convert

import (
	"strings"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// RustAnalyzerConverter converts `cargo check --message-format=json` /
// rust-analyzer style diagnostic payloads, grounded on
// original_source/src/format/format_converter/converters/rust_analyzer.rs.
type RustAnalyzerConverter struct{}

func NewRustAnalyzerConverter() *RustAnalyzerConverter { return &RustAnalyzerConverter{} }

func (c *RustAnalyzerConverter) Name() string { return "rust-analyzer" }

func (c *RustAnalyzerConverter) CanHandle(sourceTag string) bool {
	lower := strings.ToLower(sourceTag)
	return strings.Contains(lower, "rust") || strings.Contains(lower, "analyzer")
}

// rustSeverity maps the `level` field: error|warning|note|help -> Error|Warning|Info|Hint.
func rustSeverity(level string) diagnostic.Severity {
	switch strings.ToLower(level) {
	case "error":
		return diagnostic.Error
	case "warning":
		return diagnostic.Warning
	case "note":
		return diagnostic.Information
	case "help":
		return diagnostic.Hint
	default:
		return diagnostic.Error
	}
}

func (c *RustAnalyzerConverter) Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error) {
	items, err := unwrapDiagnosticsArray(raw.Payload)
	if err != nil {
		return nil, err
	}

	out := make([]diagnostic.Diagnostic, 0, len(items))
	for _, item := range items {
		entry, ok := asMap(item)
		if !ok {
			return nil, invalidFormat("rust_analyzer.convert", "diagnostic object", item)
		}

		spansRaw, ok := getSlice(entry, "spans")
		if !ok || len(spansRaw) == 0 {
			return nil, invalidFormat("rust_analyzer.convert", "non-empty spans array", entry["spans"])
		}
		mainSpan, ok := asMap(spansRaw[0])
		if !ok {
			return nil, invalidFormat("rust_analyzer.convert", "span object", spansRaw[0])
		}

		file := getStringDefault(mainSpan, "file_name", "")
		rng := convertRustRange(mainSpan)
		level := getStringDefault(entry, "level", "error")
		message := getStringDefault(entry, "message", "")

		code := ""
		if codeMap, ok := getMap(entry, "code"); ok {
			code = getStringDefault(codeMap, "code", "")
		}

		var related []diagnostic.RelatedInformation
		for _, s := range spansRaw[1:] {
			spanMap, ok := asMap(s)
			if !ok {
				continue
			}
			related = append(related, diagnostic.RelatedInformation{
				File:    diagnostic.NormalizePath(getStringDefault(spanMap, "file_name", "")),
				Range:   convertRustRange(spanMap),
				Message: getStringDefault(spanMap, "label", ""),
			})
		}

		out = append(out, diagnostic.Diagnostic{
			ID:       generateID("rust"),
			File:     diagnostic.NormalizePath(file),
			Range:    rng,
			Severity: rustSeverity(level),
			Message:  message,
			Code:     code,
			Source:   "rust-analyzer",
			Related:  related,
		})
	}
	return out, nil
}
