package convert

import "github.com/lspbridge/lspbridge/internal/diagnostic"

// saturatingSub1 subtracts 1 from n, floored at 0 (Rust's saturating_sub(1)).
func saturatingSub1(n int) int {
	if n <= 0 {
		return 0
	}
	return n - 1
}

// convertTypeScriptRange reads already 0-based {line,character} positions,
// defaulting missing ones to (0,0) and defaulting a missing end to start.
func convertTypeScriptRange(startV, endV map[string]any) diagnostic.Range {
	start := diagnostic.Position{
		Line:      getIntDefault(startV, "line", 0),
		Character: getIntDefault(startV, "character", 0),
	}
	end := start
	if endV != nil {
		end = diagnostic.Position{
			Line:      getIntDefault(endV, "line", start.Line),
			Character: getIntDefault(endV, "character", start.Character),
		}
	}
	return diagnostic.Range{Start: start, End: end}
}

// convertRustRange converts a rust-analyzer span's 1-based line/column
// fields to 0-based via saturating subtraction.
func convertRustRange(span map[string]any) diagnostic.Range {
	lineStart := getIntDefault(span, "line_start", 1)
	lineEnd := getIntDefault(span, "line_end", lineStart)
	colStart := getIntDefault(span, "column_start", 1)
	colEnd := getIntDefault(span, "column_end", colStart)

	return diagnostic.Range{
		Start: diagnostic.Position{Line: saturatingSub1(lineStart), Character: saturatingSub1(colStart)},
		End:   diagnostic.Position{Line: saturatingSub1(lineEnd), Character: saturatingSub1(colEnd)},
	}
}

// convertEslintRange converts an ESLint message's 1-based line/column
// fields to 0-based via saturating subtraction.
func convertEslintRange(msg map[string]any) diagnostic.Range {
	line := getIntDefault(msg, "line", 1)
	col := getIntDefault(msg, "column", 1)
	endLine := getIntDefault(msg, "endLine", line)
	endCol := getIntDefault(msg, "endColumn", col)

	return diagnostic.Range{
		Start: diagnostic.Position{Line: saturatingSub1(line), Character: saturatingSub1(col)},
		End:   diagnostic.Position{Line: saturatingSub1(endLine), Character: saturatingSub1(endCol)},
	}
}

// convertLSPRange requires range/start/end to be present (generic LSP has
// no reasonable default); it returns ok=false when any are missing.
func convertLSPRange(rangeV map[string]any) (diagnostic.Range, bool) {
	if rangeV == nil {
		return diagnostic.Range{}, false
	}
	startV, okStart := getMap(rangeV, "start")
	endV, okEnd := getMap(rangeV, "end")
	if !okStart || !okEnd {
		return diagnostic.Range{}, false
	}
	start := diagnostic.Position{
		Line:      getIntDefault(startV, "line", 0),
		Character: getIntDefault(startV, "character", 0),
	}
	end := diagnostic.Position{
		Line:      getIntDefault(endV, "line", 0),
		Character: getIntDefault(endV, "character", 0),
	}
	return diagnostic.Range{Start: start, End: end}, true
}
