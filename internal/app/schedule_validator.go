// internal/app/schedule_validator.go
package app

import (
	"errors"
	"fmt"
	"time"

	"field_study_ops/internal/domain/schedule"
)

var phaseTotals = [schedule.Phases]int{15, 15, 10}

// ValidateSchedule checks every balance invariant of a confederate's schedule
// and returns all violations joined. A non-nil result means the generator is
// broken; callers should stop.
func ValidateSchedule(sc schedule.Schedule, studyStart time.Time) error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("confederate %s: "+format, append([]any{sc.Confederate.ID}, args...)...))
	}

	rows := sc.Rows
	if len(rows) != schedule.TransactionsPerConfederate {
		fail("has %d rows, want %d", len(rows), schedule.TransactionsPerConfederate)
		return errors.Join(errs...)
	}

	channelCount := make(map[schedule.Channel]int)
	amountCount := make(map[schedule.Channel]map[schedule.Amount]int)
	blockCount := make(map[int]map[schedule.Channel]int)
	phaseCount := make(map[int]int)
	inPerson := make(map[schedule.Channel]int)
	inPersonWeeks := make(map[int]int)
	dates := make(map[string]int)
	earliest := map[schedule.Channel]int{}

	run := 0
	for i, r := range rows {
		if r.TransactionOrder != i+1 {
			fail("row %d has transaction order %d", i+1, r.TransactionOrder)
		}
		if r.Block != schedule.BlockOf(r.TransactionOrder) {
			fail("order %d in block %d, want %d", r.TransactionOrder, r.Block, schedule.BlockOf(r.TransactionOrder))
		}
		if r.AssignedWeek < 1 || r.AssignedWeek > schedule.Weeks {
			fail("order %d in week %d", r.TransactionOrder, r.AssignedWeek)
		}
		if r.Phase != schedule.PhaseOf(r.AssignedWeek) {
			fail("order %d in phase %d, week %d belongs to phase %d", r.TransactionOrder, r.Phase, r.AssignedWeek, schedule.PhaseOf(r.AssignedWeek))
		}
		if i > 0 && rows[i-1].AssignedWeek > r.AssignedWeek {
			fail("order %d in week %d after week %d", r.TransactionOrder, r.AssignedWeek, rows[i-1].AssignedWeek)
		}

		channelCount[r.Channel]++
		if amountCount[r.Channel] == nil {
			amountCount[r.Channel] = make(map[schedule.Amount]int)
		}
		amountCount[r.Channel][r.Amount]++
		if blockCount[r.Block] == nil {
			blockCount[r.Block] = make(map[schedule.Channel]int)
		}
		blockCount[r.Block][r.Channel]++
		phaseCount[r.Phase]++

		if i > 0 && rows[i-1].Channel == r.Channel {
			run++
		} else {
			run = 1
		}
		if run > schedule.MaxChannelRun {
			fail("%s repeats %d times ending at order %d", r.Channel, run, r.TransactionOrder)
		}

		if _, ok := earliest[r.Channel]; !ok {
			earliest[r.Channel] = r.AssignedWeek
		}

		switch r.DeliveryMethod {
		case schedule.DeliveryInPerson:
			inPerson[r.Channel]++
			inPersonWeeks[r.AssignedWeek]++
		case schedule.DeliveryOnline:
		default:
			fail("order %d has delivery method %q", r.TransactionOrder, r.DeliveryMethod)
		}

		switch r.Date.Weekday() {
		case time.Saturday, time.Sunday:
			fail("order %d falls on %s", r.TransactionOrder, r.Date.Weekday())
		}
		day := r.Date.Format("2006-01-02")
		if prev, dup := dates[day]; dup {
			fail("orders %d and %d share date %s", prev, r.TransactionOrder, day)
		}
		dates[day] = r.TransactionOrder

		weekStart := studyStart.AddDate(0, 0, (r.AssignedWeek-1)*7)
		if r.Date.Before(weekStart) || !r.Date.Before(weekStart.AddDate(0, 0, 7)) {
			fail("order %d dated %s outside week %d", r.TransactionOrder, day, r.AssignedWeek)
		}
	}

	for _, ch := range schedule.Channels {
		if channelCount[ch] != schedule.TransactionsPerChannel {
			fail("%s appears %d times, want %d", ch, channelCount[ch], schedule.TransactionsPerChannel)
		}
		for _, a := range schedule.Amounts {
			want := schedule.TransactionsPerChannel / len(schedule.Amounts)
			if got := amountCount[ch][a]; got != want {
				fail("%s has %d rows at %d, want %d", ch, got, a, want)
			}
		}
		for b := 1; b <= schedule.Blocks; b++ {
			if n := blockCount[b][ch]; n < 2 || n > 3 {
				fail("%s appears %d times in block %d, want 2-3", ch, n, b)
			}
		}
	}

	for p := 1; p <= schedule.Phases; p++ {
		if phaseCount[p] != phaseTotals[p-1] {
			fail("phase %d has %d rows, want %d", p, phaseCount[p], phaseTotals[p-1])
		}
	}

	for _, ch := range []schedule.Channel{schedule.ChannelFintech, schedule.ChannelCrypto} {
		if w, ok := earliest[ch]; !ok || w > accountOpeningWeek {
			fail("first %s transaction in week %d, want week %d or earlier", ch, w, accountOpeningWeek)
		}
	}

	for _, ch := range schedule.Channels {
		want := 0
		if ch == schedule.ChannelBank || ch == schedule.ChannelMTS {
			want = schedule.InPersonPerChannel
		}
		if inPerson[ch] != want {
			fail("%s has %d in-person rows, want %d", ch, inPerson[ch], want)
		}
	}
	for w, n := range inPersonWeeks {
		if n > 1 {
			fail("week %d has %d in-person rows", w, n)
		}
	}

	return errors.Join(errs...)
}
