package availability

import (
	"fmt"
	"time"
)

// DateKeyLayout is the canonical YYYY-MM-DD serialization of a calendar date.
const DateKeyLayout = "2006-01-02"

// FormatDateKey renders the calendar day of t in t's own location.
func FormatDateKey(t time.Time) string {
	return t.Format(DateKeyLayout)
}

// FormatDateKeyIn renders the calendar day of t as observed in loc.
func FormatDateKeyIn(t time.Time, loc *time.Location) string {
	if loc == nil {
		return FormatDateKey(t)
	}
	return t.In(loc).Format(DateKeyLayout)
}

// ParseDateKey parses a YYYY-MM-DD key to midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	return ParseDateKeyIn(key, time.UTC)
}

// ParseDateKeyIn parses a YYYY-MM-DD key to midnight in loc. Formatting the
// result with FormatDateKeyIn and the same loc returns key unchanged.
func ParseDateKeyIn(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date key %q: %w", key, err)
	}
	return t, nil
}
