// Package convert implements the format converters (C2) and the conversion
// dispatcher (C3) that turn source-specific diagnostic payloads into the
// canonical diagnostic.Diagnostic shape.
package convert

import (
	"time"

	"github.com/lspbridge/lspbridge/internal/diagnostic"
)

// RawDiagnostics is the carrier for a pre-conversion payload (spec §3).
type RawDiagnostics struct {
	SourceTag string
	Payload   any // decoded JSON: map[string]any, []any, or scalar
	Timestamp time.Time
	Workspace string // optional
}

// Converter is the capability every format converter implements (spec §9:
// "Inheritance / mixins -> tagged variants + capability traits").
type Converter interface {
	Convert(raw RawDiagnostics) ([]diagnostic.Diagnostic, error)
	CanHandle(sourceTag string) bool
	Name() string
}
