package earnings

import (
	"fmt"
	"strings"
	"time"
)

const dateOnlyLayout = "2006-01-02"

// DayWindow returns the inclusive bounds [00:00:00.000, 23:59:59.999] of the
// calendar day t falls on in loc, converted to UTC for storage comparisons.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, int(999*time.Millisecond), loc)
	return start.UTC(), end.UTC()
}

// ParseDay accepts an RFC 3339 date-time or a bare YYYY-MM-DD date. Bare
// dates are midnight in loc.
func ParseDay(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("date is empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(dateOnlyLayout, value, loc); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("date %q is not an ISO-8601 date or date-time", raw)
}
