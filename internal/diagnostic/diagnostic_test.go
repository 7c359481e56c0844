package diagnostic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePathIdempotent(t *testing.T) {
	once := NormalizePath(`file://C:\a\b.ts`)
	twice := NormalizePath(once)
	assert.Equal(t, once, twice)
	assert.Equal(t, "C:/a/b.ts", once)
}

func TestRangeLessEq(t *testing.T) {
	r := Range{Start: Position{Line: 1, Character: 2}, End: Position{Line: 1, Character: 2}}
	assert.True(t, r.LessEq())

	bad := Range{Start: Position{Line: 2, Character: 0}, End: Position{Line: 1, Character: 0}}
	assert.False(t, bad.LessEq())
}

func TestParseSeverity(t *testing.T) {
	sev, ok := ParseSeverity("Information")
	assert.True(t, ok)
	assert.Equal(t, Information, sev)

	_, ok = ParseSeverity("bogus")
	assert.False(t, ok)
}
