package validators

import (
	"net/http"
	"strconv"
	"strings"
)

// ParseQueryInt reads an optional integer query parameter bounded by
// [min, max]. An absent value yields defaultVal.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, FieldError(key, "must be an integer")
	}
	if value < min || value > max {
		return 0, FieldError(key, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
	return value, nil
}
