// Package diagnostic defines the canonical diagnostic record (C1) shared by
// every converter, the historical store, the registry's aggregated view,
// and the query language.
package diagnostic

import (
	"strings"
)

// Severity is the normalized diagnostic severity.
type Severity int

const (
	Error Severity = iota
	Warning
	Information
	Hint
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Information:
		return "information"
	case Hint:
		return "hint"
	default:
		return "error"
	}
}

// ParseSeverity accepts the query language's textual severity values,
// including the "info" shorthand spec §4.8 allows alongside "information".
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return Error, true
	case "warning":
		return Warning, true
	case "info", "information":
		return Information, true
	case "hint":
		return Hint, true
	default:
		return Error, false
	}
}

// Position is a zero-based UTF-16 code-unit line/column coordinate.
type Position struct {
	Line      int
	Character int
}

// Range is a half-open text range; Start must be <= End lexicographically.
type Range struct {
	Start Position
	End   Position
}

// LessEq reports whether r.Start <= r.End lexicographically.
func (r Range) LessEq() bool {
	if r.Start.Line != r.End.Line {
		return r.Start.Line < r.End.Line
	}
	return r.Start.Character <= r.End.Character
}

// RelatedInformation is a secondary location attached to a Diagnostic.
type RelatedInformation struct {
	File    string
	Range   Range
	Message string
}

// Diagnostic is the canonical, immutable-after-construction diagnostic
// record defined in spec §3.
type Diagnostic struct {
	ID      string
	File    string
	Range   Range
	Severity Severity
	Message string
	Code    string // empty when absent
	Source  string
	Related []RelatedInformation
	Tags    []string
	Data    map[string]any
}

// NormalizePath converts a raw path into the canonical forward-slash,
// file://-stripped form. Normalizing twice is idempotent (spec §8
// invariant 3): a path already in canonical form passes through unchanged.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "file://")
	p = strings.ReplaceAll(p, "\\", "/")
	return p
}
