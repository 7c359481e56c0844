package lsperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessageShape(t *testing.T) {
	err := New(KindDatabase, ReasonConnection, "record_snapshot", "snapshots.db", errors.New("timed out"))
	msg := err.Error()
	assert.Contains(t, msg, "record_snapshot")
	assert.Contains(t, msg, "snapshots.db")
	assert.Contains(t, msg, "timed out")
}

func TestIsRecoverable(t *testing.T) {
	assert.True(t, New(KindDatabase, ReasonTimeout, "op", "x", nil).IsRecoverable())
	assert.False(t, New(KindConfig, ReasonValidation, "op", "x", nil).IsRecoverable())
}

func TestKindOf(t *testing.T) {
	wrapped := New(KindParse, ReasonFormat, "convert", "payload", nil)
	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, KindParse, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}

func TestErrorsIsMatchesKindAndReason(t *testing.T) {
	a := New(KindFile, ReasonNotFound, "open", "a.txt", nil)
	b := New(KindFile, ReasonNotFound, "open", "b.txt", nil)
	c := New(KindFile, ReasonPermission, "open", "a.txt", nil)

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}
