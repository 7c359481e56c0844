package convert

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/lspbridge/lspbridge/internal/lsperrors"
)

// generateID builds a stable-within-a-call identifier. Identifiers need not
// be stable across calls (spec §4.1).
func generateID(source string) string {
	return fmt.Sprintf("%s_%s", source, uuid.NewString())
}

// asMap type-asserts a decoded-JSON value to a map, returning (nil, false)
// on any mismatch rather than panicking.
func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func asSlice(v any) ([]any, bool) {
	s, ok := v.([]any)
	return s, ok
}

func getMap(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	return asMap(m[key])
}

func getSlice(m map[string]any, key string) ([]any, bool) {
	if m == nil {
		return nil, false
	}
	return asSlice(m[key])
}

func getString(m map[string]any, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	s, ok := m[key].(string)
	return s, ok
}

func getStringDefault(m map[string]any, key, def string) string {
	if s, ok := getString(m, key); ok {
		return s
	}
	return def
}

// getInt reads a JSON-decoded numeric field (always float64 via
// encoding/json) as an int.
func getInt(m map[string]any, key string) (int, bool) {
	if m == nil {
		return 0, false
	}
	switch v := m[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

func getIntDefault(m map[string]any, key string, def int) int {
	if n, ok := getInt(m, key); ok {
		return n
	}
	return def
}

// codeString converts a diagnostic "code" field, which may arrive as a
// string or a number, into its canonical string form.
func codeString(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatInt(int64(c), 10)
	case int:
		return strconv.Itoa(c)
	default:
		return ""
	}
}

func invalidFormat(op, expected string, found any) error {
	return lsperrors.New(lsperrors.KindParse, lsperrors.ReasonFormat, op, expected, fmt.Errorf("found %T: %v", found, found))
}
