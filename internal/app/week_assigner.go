// internal/app/week_assigner.go
package app

import (
	"fmt"
	"math/rand/v2"

	"field_study_ops/internal/domain/schedule"
)

const (
	maxWeekAttempts = 20000
	// accountOpeningWeek is the latest week in which the first Fintech and the
	// first Crypto transaction may fall; accounts on those rails take time to open.
	accountOpeningWeek = 2
)

// phaseWeekCounts holds the weekly transaction counts for each phase before
// shuffling. Totals are 15, 15 and 10.
var phaseWeekCounts = [schedule.Phases][schedule.WeeksPerPhase]int{
	{4, 4, 4, 3},
	{4, 4, 4, 3},
	{3, 3, 2, 2},
}

// earliestSlotLimit is the most slots weeks 1..accountOpeningWeek can ever hold.
func earliestSlotLimit() int {
	limit := 0
	for w := 0; w < accountOpeningWeek; w++ {
		most := 0
		for _, c := range phaseWeekCounts[0] {
			if c > most {
				most = c
			}
		}
		limit += most
	}
	return limit
}

// AssignWeeks maps each slot, in transaction order, to a study week.
func AssignWeeks(rng *rand.Rand, seq []schedule.Channel) ([]int, error) {
	firstFintech := firstIndex(seq, schedule.ChannelFintech)
	firstCrypto := firstIndex(seq, schedule.ChannelCrypto)
	limit := earliestSlotLimit()
	if firstFintech < 0 || firstCrypto < 0 || firstFintech >= limit || firstCrypto >= limit {
		return nil, fmt.Errorf("first Fintech slot %d, first Crypto slot %d, weeks 1-%d hold at most %d: %w",
			firstFintech+1, firstCrypto+1, accountOpeningWeek, limit, ErrInfeasible)
	}

	for attempt := 0; attempt < maxWeekAttempts; attempt++ {
		weeks := make([]int, 0, len(seq))
		for p := 0; p < schedule.Phases; p++ {
			counts := phaseWeekCounts[p]
			rng.Shuffle(len(counts), func(i, j int) { counts[i], counts[j] = counts[j], counts[i] })
			for i, n := range counts {
				week := p*schedule.WeeksPerPhase + i + 1
				for k := 0; k < n; k++ {
					weeks = append(weeks, week)
				}
			}
		}
		if len(weeks) != len(seq) {
			return nil, fmt.Errorf("week plan holds %d slots, sequence has %d", len(weeks), len(seq))
		}
		if weeks[firstFintech] <= accountOpeningWeek && weeks[firstCrypto] <= accountOpeningWeek {
			return weeks, nil
		}
	}
	return nil, fmt.Errorf("week assignment after %d attempts: %w", maxWeekAttempts, ErrAttemptsExhausted)
}

func firstIndex(seq []schedule.Channel, ch schedule.Channel) int {
	for i, c := range seq {
		if c == ch {
			return i
		}
	}
	return -1
}
