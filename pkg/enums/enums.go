package enums

import (
	"fmt"
	"strings"
)

func oneOf[T ~string](v T, values []T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// parse trims and lowercases raw before matching it against values.
func parse[T ~string](kind, raw string, values []T) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if oneOf(v, values) {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", kind, raw)
}
