// internal/domain/reminder/record.go
package reminder

import (
	"sort"
	"time"
)

// DateLayout is the ISO calendar date used as the record key.
const DateLayout = "2006-01-02"

// Records maps a due-date (ISO calendar date) to the calendar event id created
// for it. Entries are only ever added.
type Records map[string]string

// Has reports whether an event was already created for the date.
func (r Records) Has(date string) bool {
	_, ok := r[date]
	return ok
}

// Dates returns the recorded dates in ascending order.
func (r Records) Dates() []string {
	dates := make([]string, 0, len(r))
	for d := range r {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	return dates
}

// Clone returns an independent copy.
func (r Records) Clone() Records {
	out := make(Records, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// DateKey formats t as a record key, ignoring time-of-day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}
