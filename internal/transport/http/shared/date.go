package shared

import (
	"fmt"
	"time"
)

// dateLayout is the wire format for calendar dates. Requests and
// notifications both use it; leave accounting never cares about clock time.
const dateLayout = "2006-01-02"

// ParseDate reads a calendar date off the wire. Plain YYYY-MM-DD is the
// documented format; a full RFC3339 timestamp is tolerated and truncated to
// its UTC date. An empty value is an error, callers decide whether the field
// was optional before calling.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if day, err := time.Parse(dateLayout, value); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", value, err)
	}
	ts = ts.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC), nil
}

// FormatDate renders t in the wire date format.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}
