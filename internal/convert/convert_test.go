package convert

import (
	"encoding/json"
	"testing"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, js string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(js), &v))
	return v
}

func TestTypeScriptConversion(t *testing.T) {
	payload := decode(t, `{"diagnostics":[{"file":"/a/b.ts","start":{"line":3,"character":7},"end":{"line":3,"character":12},"category":1,"code":2322,"messageText":"Type X"}]}`)
	out, err := NewTypeScriptConverter().Convert(RawDiagnostics{SourceTag: "typescript", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)

	d := out[0]
	require.Equal(t, "/a/b.ts", d.File)
	require.Equal(t, diagnostic.Range{Start: diagnostic.Position{Line: 3, Character: 7}, End: diagnostic.Position{Line: 3, Character: 12}}, d.Range)
	require.Equal(t, diagnostic.Error, d.Severity)
	require.Equal(t, "2322", d.Code)
	require.Equal(t, "typescript", d.Source)
	require.Equal(t, "Type X", d.Message)
}

func TestRustAnalyzerConversion(t *testing.T) {
	payload := decode(t, `{"diagnostics":[{"level":"warning","message":"unused","code":{"code":"dead_code"},"spans":[{"file_name":"src/a.rs","line_start":10,"line_end":10,"column_start":5,"column_end":9}]}]}`)
	out, err := NewRustAnalyzerConverter().Convert(RawDiagnostics{SourceTag: "rust-analyzer", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)

	d := out[0]
	require.Equal(t, diagnostic.Range{Start: diagnostic.Position{Line: 9, Character: 4}, End: diagnostic.Position{Line: 9, Character: 8}}, d.Range)
	require.Equal(t, diagnostic.Warning, d.Severity)
	require.Equal(t, "dead_code", d.Code)
	require.Equal(t, "rust-analyzer", d.Source)
}

func TestESLintExpansion(t *testing.T) {
	payload := decode(t, `{"results":[{"filePath":"x.js","messages":[{"line":2,"column":3,"endLine":2,"endColumn":7,"severity":2,"message":"no-var","ruleId":"no-var"}]}]}`)
	out, err := NewESLintConverter().Convert(RawDiagnostics{SourceTag: "eslint", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)

	d := out[0]
	require.Equal(t, diagnostic.Range{Start: diagnostic.Position{Line: 1, Character: 2}, End: diagnostic.Position{Line: 1, Character: 6}}, d.Range)
	require.Equal(t, diagnostic.Error, d.Severity)
	require.Equal(t, "no-var", d.Code)
}

func TestGenericLSPPreservesSourceTag(t *testing.T) {
	payload := decode(t, `{"diagnostics":[{"uri":"file:///x/y.go","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":3}},"severity":2,"message":"unused import","source":"gopls"}]}`)
	out, err := NewGenericLSPConverter().Convert(RawDiagnostics{SourceTag: "gopls", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "gopls", out[0].Source)
	require.Equal(t, "/x/y.go", out[0].File)
}

func TestGenericLSPMissingRangeErrors(t *testing.T) {
	payload := decode(t, `{"diagnostics":[{"uri":"a.go","message":"x"}]}`)
	_, err := NewGenericLSPConverter().Convert(RawDiagnostics{SourceTag: "gopls", Payload: payload})
	require.Error(t, err)
}

func TestDispatcherSourceTagPrecedence(t *testing.T) {
	d := NewDispatcher()
	payload := decode(t, `{"diagnostics":[{"file":"a.ts","category":1,"messageText":"x"}]}`)
	out, err := d.Convert(RawDiagnostics{SourceTag: "typescript", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "typescript", out[0].Source)
}

func TestDispatcherStructuralSniff(t *testing.T) {
	d := NewDispatcher()
	payload := decode(t, `{"results":[{"filePath":"x.js","messages":[{"line":1,"column":1,"severity":1,"message":"m","ruleId":"r"}]}]}`)
	out, err := d.Convert(RawDiagnostics{SourceTag: "unknown-tool", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "eslint", out[0].Source)
}

func TestDispatcherFallsBackToGenericLSP(t *testing.T) {
	d := NewDispatcher()
	payload := decode(t, `{"diagnostics":[{"uri":"a.py","range":{"start":{"line":0,"character":0},"end":{"line":0,"character":1}},"severity":3,"message":"hint"}]}`)
	out, err := d.Convert(RawDiagnostics{SourceTag: "pyright", Payload: payload})
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "pyright", out[0].Source)
}
