package convert

import (
	"strings"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// Dispatcher selects a Converter by source-tag precedence, falling back to
// structural sniffing and finally the generic LSP converter (spec §4.1).
type Dispatcher struct {
	typescript *TypeScriptConverter
	rust       *RustAnalyzerConverter
	eslint     *ESLintConverter
	generic    *GenericLSPConverter
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		typescript: NewTypeScriptConverter(),
		rust:       NewRustAnalyzerConverter(),
		eslint:     NewESLintConverter(),
		generic:    NewGenericLSPConverter(),
	}
}

// Convert routes raw to the selected converter and returns its output.
func (d *Dispatcher) Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error) {
	return d.selectConverter(raw).Convert(raw)
}

func (d *Dispatcher) selectConverter(raw RawDiagnostics) Converter {
	// (i) substring match on the source tag.
	switch {
	case d.typescript.CanHandle(raw.SourceTag):
		return d.typescript
	case d.rust.CanHandle(raw.SourceTag):
		return d.rust
	case d.eslint.CanHandle(raw.SourceTag):
		return d.eslint
	}

	// (ii) structural sniff on the payload, in a fixed precedence order:
	// TypeScript ({diagnostics:[{category,...}]}) -> Rust
	// ({diagnostics:[{spans,...}]}) -> ESLint ({results:[...]}).
	if items, ok := sniffDiagnosticsArray(raw.Payload); ok && len(items) > 0 {
		if first, ok := asMap(items[0]); ok {
			if _, hasCategory := first["category"]; hasCategory {
				return d.typescript
			}
			if _, hasSpans := first["spans"]; hasSpans {
				return d.rust
			}
		}
	}
	if m, ok := asMap(raw.Payload); ok {
		if _, hasResults := m["results"]; hasResults {
			return d.eslint
		}
	}

	// (iii) fallback.
	return d.generic
}

func sniffDiagnosticsArray(payload any) ([]any, bool) {
	if m, ok := asMap(payload); ok {
		arr, ok := getSlice(m, "diagnostics")
		return arr, ok
	}
	arr, ok := asSlice(payload)
	return arr, ok
}

// lowerContains is a small readability helper used by converters' CanHandle
// implementations that need more than one substring check.
func lowerContains(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}
