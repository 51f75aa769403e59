package app

import (
	"strings"
	"time"
)

// dueDateLayouts are the cell formats seen in the payments sheet exports.
var dueDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"1/2/2006",
	"1/2/2006 15:04:05",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"Mon Jan 02 2006",
}

// ParseDueDate normalizes a sheet cell to a calendar date in loc, dropping the
// time of day. Empty and unparseable cells report false.
func ParseDueDate(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	// Sheets exports often append the timezone name, e.g. "Mon Mar 02 2026 00:00:00 GMT+0100 (CET)".
	if i := strings.Index(raw, " GMT"); i > 0 {
		raw = raw[:i]
		if len(raw) > len("Mon Jan 02 2006") {
			raw = raw[:len("Mon Jan 02 2006")]
		}
	}
	for _, layout := range dueDateLayouts {
		t, err := time.ParseInLocation(layout, raw, loc)
		if err != nil {
			continue
		}
		if layout == time.RFC3339 {
			t = t.In(loc)
		}
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), true
	}
	return time.Time{}, false
}
