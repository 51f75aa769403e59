package app

import (
	"fmt"
	"strings"

	"field_study_ops/internal/domain/reminder"
)

// FormatRunSummary renders the user-facing report of a reminder run.
func FormatRunSummary(s *reminder.RunSummary) string {
	if s == nil {
		return "Reminder run produced no summary."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Reminders created: %d\n", s.Created))
	b.WriteString(fmt.Sprintf("Already existing (skipped): %d\n", s.Skipped))
	b.WriteString(fmt.Sprintf("Remaining for next run: %d", s.Remaining))
	if s.RowsSkipped > 0 {
		b.WriteString(fmt.Sprintf("\nRows without a usable due-date: %d", s.RowsSkipped))
	}
	if len(s.CreatedDates) > 0 {
		b.WriteString("\nNew dates: ")
		b.WriteString(strings.Join(s.CreatedDates, ", "))
	}
	return b.String()
}

// FormatStatus renders the recorded reminders, listing at most the last n dates.
func FormatStatus(records reminder.Records, n int) string {
	dates := records.Dates()
	if len(dates) == 0 {
		return "No reminder events recorded yet."
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Reminder events recorded: %d", len(dates)))
	if n > 0 && len(dates) > n {
		dates = dates[len(dates)-n:]
	}
	b.WriteString("\nLatest dates:")
	for _, d := range dates {
		b.WriteString(fmt.Sprintf("\n%s  %s", d, records[d]))
	}
	return b.String()
}
