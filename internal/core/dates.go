package core

import (
	"time"
)

const (
	// DateLayout is the calendar-date form used for keys and filter bounds.
	DateLayout = "2006-01-02"
	// DisplayDateLayout renders dates for humans ("Jan 02, 2006").
	DisplayDateLayout = "Jan 02, 2006"
)

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// ParseDate interprets an ISO 8601 date or date-time. Date-only values and
// date-times without offset are placed at loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.UTC
	}
	if len(s) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		return t, err == nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatDate renders s with layout. Unparseable input is returned unchanged.
func FormatDate(s, layout string) string {
	t, ok := ParseDate(s, time.UTC)
	if !ok {
		return s
	}
	// Keep the calendar date as written rather than converting zones.
	if len(s) > len(DateLayout) {
		if d, err := time.Parse(DateLayout, s[:len(DateLayout)]); err == nil {
			return d.Format(layout)
		}
	}
	return t.Format(layout)
}

// monthBounds returns the first and last instant of now's calendar month.
func monthBounds(now time.Time) (time.Time, time.Time) {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

// withinInclusive reports start <= t <= end.
func withinInclusive(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}
