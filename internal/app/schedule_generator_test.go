package app

import (
	"fmt"
	"testing"
	"time"

	"field_study_ops/internal/domain/schedule"
	"field_study_ops/internal/infra/logger"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStudyStart = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // Monday

func newTestGenerator(t *testing.T, seed int64) *ScheduleGenerator {
	t.Helper()
	g, err := NewScheduleGenerator(GeneratorOptions{Seed: seed, StudyStart: testStudyStart}, logger.Discard())
	require.NoError(t, err)
	return g
}

func confederates(n int) []schedule.Confederate {
	out := make([]schedule.Confederate, n)
	for i := range out {
		out[i] = schedule.Confederate{ID: fmt.Sprintf("C%02d", i+1), Country: "Kenya"}
	}
	return out
}

func TestNewScheduleGenerator_RejectsNonMonday(t *testing.T) {
	_, err := NewScheduleGenerator(GeneratorOptions{Seed: 1, StudyStart: testStudyStart.AddDate(0, 0, 1)}, logger.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidStudyStart)
}

func TestGenerate_AllInvariantsHold(t *testing.T) {
	for _, seed := range []int64{1, 7, 42, 20260302} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			study, err := newTestGenerator(t, seed).Generate(confederates(25))
			require.NoError(t, err)
			require.Len(t, study.Schedules, 25)

			for _, sc := range study.Schedules {
				require.NoError(t, ValidateSchedule(sc, testStudyStart))
				assertScheduleProperties(t, sc)
			}
		})
	}
}

// assertScheduleProperties re-checks the headline properties independently of
// ValidateSchedule.
func assertScheduleProperties(t *testing.T, sc schedule.Schedule) {
	t.Helper()
	require.Len(t, sc.Rows, schedule.TransactionsPerConfederate)

	perChannel := map[schedule.Channel]int{}
	perAmount := map[schedule.Channel]map[schedule.Amount]int{}
	perPhase := map[int]int{}
	inPersonWeeks := map[int]int{}
	inPerson := map[schedule.Channel]int{}
	days := map[string]bool{}
	firstWeek := map[schedule.Channel]int{}

	for i, r := range sc.Rows {
		assert.Equal(t, i+1, r.TransactionOrder)
		perChannel[r.Channel]++
		if perAmount[r.Channel] == nil {
			perAmount[r.Channel] = map[schedule.Amount]int{}
		}
		perAmount[r.Channel][r.Amount]++
		perPhase[r.Phase]++
		if r.DeliveryMethod == schedule.DeliveryInPerson {
			inPerson[r.Channel]++
			inPersonWeeks[r.AssignedWeek]++
		}
		if _, ok := firstWeek[r.Channel]; !ok {
			firstWeek[r.Channel] = r.AssignedWeek
		}
		assert.NotEqual(t, time.Saturday, r.Date.Weekday())
		assert.NotEqual(t, time.Sunday, r.Date.Weekday())
		day := r.Date.Format("2006-01-02")
		assert.False(t, days[day], "date %s used twice", day)
		days[day] = true
		if i >= 2 {
			assert.False(t, sc.Rows[i-2].Channel == r.Channel && sc.Rows[i-1].Channel == r.Channel, "run of 3 at order %d", r.TransactionOrder)
		}
	}

	for _, ch := range schedule.Channels {
		assert.Equal(t, 10, perChannel[ch], ch)
		assert.Equal(t, 5, perAmount[ch][schedule.AmountLow], ch)
		assert.Equal(t, 5, perAmount[ch][schedule.AmountHigh], ch)
	}
	assert.Equal(t, 15, perPhase[1])
	assert.Equal(t, 15, perPhase[2])
	assert.Equal(t, 10, perPhase[3])
	assert.LessOrEqual(t, firstWeek[schedule.ChannelFintech], 2)
	assert.LessOrEqual(t, firstWeek[schedule.ChannelCrypto], 2)
	assert.Equal(t, 2, inPerson[schedule.ChannelBank])
	assert.Equal(t, 2, inPerson[schedule.ChannelMTS])
	assert.Zero(t, inPerson[schedule.ChannelFintech])
	assert.Zero(t, inPerson[schedule.ChannelCrypto])
	for w, n := range inPersonWeeks {
		assert.LessOrEqual(t, n, 1, "week %d", w)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a, err := newTestGenerator(t, 99).Generate(confederates(5))
	require.NoError(t, err)
	b, err := newTestGenerator(t, 99).Generate(confederates(5))
	require.NoError(t, err)

	if diff := cmp.Diff(a.Master(), b.Master()); diff != "" {
		t.Errorf("same seed produced different rows (-first +second):\n%s", diff)
	}
	assert.Equal(t, a.Overall, b.Overall)
}

func TestGenerate_ScheduleIndependentOfRosterOrder(t *testing.T) {
	roster := confederates(3)
	reversed := []schedule.Confederate{roster[2], roster[1], roster[0]}

	a, err := newTestGenerator(t, 5).Generate(roster)
	require.NoError(t, err)
	b, err := newTestGenerator(t, 5).Generate(reversed)
	require.NoError(t, err)

	assert.Equal(t, a.Schedules[0].Rows, b.Schedules[2].Rows)
}

func TestGenerate_DifferentSeedsDiffer(t *testing.T) {
	a, err := newTestGenerator(t, 1).GenerateConfederate(schedule.Confederate{ID: "C01"})
	require.NoError(t, err)
	b, err := newTestGenerator(t, 2).GenerateConfederate(schedule.Confederate{ID: "C01"})
	require.NoError(t, err)

	assert.NotEqual(t, a.Rows, b.Rows)
}

func TestGenerate_Summaries(t *testing.T) {
	study, err := newTestGenerator(t, 3).Generate(confederates(4))
	require.NoError(t, err)

	require.Len(t, study.PerConfederate, 4)
	for id, c := range study.PerConfederate {
		assert.Equal(t, 40, c.Total, id)
		assert.Equal(t, 4, c.ByDelivery[schedule.DeliveryInPerson], id)
		assert.Equal(t, 36, c.ByDelivery[schedule.DeliveryOnline], id)
		assert.Equal(t, 20, c.ByAmount[schedule.AmountLow], id)
	}
	assert.Equal(t, 160, study.Overall.Total)
	for _, ch := range schedule.Channels {
		assert.Equal(t, 40, study.Overall.ByChannel[ch])
	}
	assert.Len(t, study.Master(), 160)
}

func TestGenerate_RejectsBadRoster(t *testing.T) {
	tests := []struct {
		name   string
		roster []schedule.Confederate
		want   string
	}{
		{
			name:   "empty id",
			roster: []schedule.Confederate{{ID: ""}},
			want:   "empty id",
		},
		{
			name:   "duplicate id",
			roster: []schedule.Confederate{{ID: "C01"}, {ID: "C01"}},
			want:   "duplicate confederate id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newTestGenerator(t, 1).Generate(tt.roster)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestGenerate_CountryCarriedToRows(t *testing.T) {
	sc, err := newTestGenerator(t, 11).GenerateConfederate(schedule.Confederate{ID: "N07", Country: "Nigeria"})
	require.NoError(t, err)
	for _, r := range sc.Rows {
		assert.Equal(t, "N07", r.ConfederateID)
		assert.Equal(t, "Nigeria", r.Country)
	}
}
