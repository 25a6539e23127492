package policy

import (
	"fmt"
	"time"
)

// TimestampLayout is the serialization used for snapshot directory names.
const TimestampLayout = "2006-01-02 15:04"

// Accepted input layouts, most specific first.
var timestampLayouts = []string{
	TimestampLayout,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.DateOnly,
}

// FormatTimestamp renders t with minute precision, e.g. "2024-03-07 14:30".
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses a snapshot name or a user supplied time.
// Date-only values resolve to midnight. The result is naive (wall clock in UTC).
// value must match a layout exactly; surrounding whitespace is rejected.
func ParseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp '%s'; must be YYYY-MM-DD[ HH:MM]", value)
}

// Naive drops the location of t while keeping its wall clock reading,
// truncated to the minute.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

// AddDays shifts t by a (possibly negative) number of calendar days.
func AddDays(t time.Time, days int) time.Time {
	return t.AddDate(0, 0, days)
}
