package app

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"field_study_ops/internal/domain/payment"
)

// sortPayments orders rows by confederate name, then by numeric transaction
// order. Non-numeric orders sort after numeric ones.
func sortPayments(rows []payment.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		an, bn := strings.ToLower(a.ConfederateName), strings.ToLower(b.ConfederateName)
		if an != bn {
			return an < bn
		}
		ao, aerr := strconv.Atoi(strings.TrimSpace(a.Order))
		bo, berr := strconv.Atoi(strings.TrimSpace(b.Order))
		switch {
		case aerr == nil && berr == nil && ao != bo:
			return ao < bo
		case aerr == nil && berr != nil:
			return true
		case aerr != nil && berr == nil:
			return false
		case aerr != nil && berr != nil && a.Order != b.Order:
			return a.Order < b.Order
		}
		return a.SheetRow < b.SheetRow
	})
}

// ReminderTitle is the event title for a due-date.
func ReminderTitle(date string, payments int) string {
	return fmt.Sprintf("Send payments due %s (%d payment(s))", date, payments)
}

// ReminderChecklist renders the event description: one checkbox line per
// payment, in a stable order. rows is sorted in place.
func ReminderChecklist(date string, rows []payment.Row, loc *time.Location) string {
	sortPayments(rows)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("Payments to send by %s:\n", date))
	for _, r := range rows {
		b.WriteString("\n☐ ")
		b.WriteString(checklistLine(r, loc))
	}
	b.WriteString("\n")
	return b.String()
}

func checklistLine(r payment.Row, loc *time.Location) string {
	name := strings.TrimSpace(r.ConfederateName)
	if name == "" {
		name = "(no name)"
	}
	if id := strings.TrimSpace(r.ConfederateID); id != "" {
		name = fmt.Sprintf("%s (%s)", name, id)
	}

	parts := []string{name}
	if o := strings.TrimSpace(r.Order); o != "" {
		parts = append(parts, "#"+o)
	}
	for _, v := range []string{r.Channel, r.Amount, r.DeliveryMethod} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	if tx := strings.TrimSpace(r.TransactionDate); tx != "" {
		if d, ok := ParseDueDate(tx, loc); ok {
			tx = d.Format("2006-01-02")
		}
		parts = append(parts, "transaction "+tx)
	}
	return strings.Join(parts, " | ")
}
