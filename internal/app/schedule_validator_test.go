package app

import (
	"testing"

	"field_study_ops/internal/domain/schedule"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSchedule(t *testing.T) schedule.Schedule {
	t.Helper()
	sc, err := newTestGenerator(t, 99).GenerateConfederate(schedule.Confederate{ID: "C01", Country: "Ghana"})
	require.NoError(t, err)
	require.NoError(t, ValidateSchedule(sc, testStudyStart))
	return sc
}

func firstRowOf(rows []schedule.Row, ch schedule.Channel) int {
	for i, r := range rows {
		if r.Channel == ch {
			return i
		}
	}
	return -1
}

func TestValidateSchedule_Violations(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(rows []schedule.Row) []schedule.Row
		wantMsg string
	}{
		{
			name:    "missing row",
			mutate:  func(rows []schedule.Row) []schedule.Row { return rows[:len(rows)-1] },
			wantMsg: "has 39 rows, want 40",
		},
		{
			name: "fintech in person",
			mutate: func(rows []schedule.Row) []schedule.Row {
				rows[firstRowOf(rows, schedule.ChannelFintech)].DeliveryMethod = schedule.DeliveryInPerson
				return rows
			},
			wantMsg: "Fintech has 1 in-person rows, want 0",
		},
		{
			name: "weekend date",
			mutate: func(rows []schedule.Row) []schedule.Row {
				weekStart := testStudyStart.AddDate(0, 0, (rows[0].AssignedWeek-1)*7)
				rows[0].Date = weekStart.AddDate(0, 0, 5)
				return rows
			},
			wantMsg: "order 1 falls on Saturday",
		},
		{
			name: "two transactions on one day",
			mutate: func(rows []schedule.Row) []schedule.Row {
				rows[1].Date = rows[0].Date
				return rows
			},
			wantMsg: "orders 1 and 2 share date",
		},
		{
			name: "amount imbalance",
			mutate: func(rows []schedule.Row) []schedule.Row {
				if rows[0].Amount == schedule.AmountLow {
					rows[0].Amount = schedule.AmountHigh
				} else {
					rows[0].Amount = schedule.AmountLow
				}
				return rows
			},
			wantMsg: "rows at",
		},
		{
			name: "wrong phase label",
			mutate: func(rows []schedule.Row) []schedule.Row {
				rows[0].Phase = 3
				return rows
			},
			wantMsg: "order 1 in phase 3",
		},
		{
			name: "unknown delivery method",
			mutate: func(rows []schedule.Row) []schedule.Row {
				rows[5].DeliveryMethod = "Courier"
				return rows
			},
			wantMsg: `order 6 has delivery method "Courier"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := validSchedule(t)
			sc.Rows = tt.mutate(sc.Rows)

			err := ValidateSchedule(sc, testStudyStart)
			require.Error(t, err)
			assert.ErrorContains(t, err, "confederate C01: ")
			assert.ErrorContains(t, err, tt.wantMsg)
		})
	}
}

func TestValidateSchedule_RunOfThree(t *testing.T) {
	sc := validSchedule(t)
	for i := range sc.Rows[:3] {
		sc.Rows[i].Channel = schedule.ChannelBank
	}

	err := ValidateSchedule(sc, testStudyStart)
	require.Error(t, err)
	assert.ErrorContains(t, err, "Bank repeats 3 times ending at order 3")
}
