package app

import (
	"math/rand/v2"

	"field_study_ops/internal/domain/schedule"
)

// AssignAmounts gives every channel five low and five high amounts in a uniform
// random order over that channel's positions.
func AssignAmounts(rng *rand.Rand, seq []schedule.Channel) []schedule.Amount {
	amounts := make([]schedule.Amount, len(seq))
	for _, ch := range schedule.Channels {
		positions := positionsOf(seq, ch)
		levels := make([]schedule.Amount, 0, len(positions))
		for i := range positions {
			levels = append(levels, schedule.Amounts[i*len(schedule.Amounts)/len(positions)])
		}
		rng.Shuffle(len(levels), func(i, j int) { levels[i], levels[j] = levels[j], levels[i] })
		for i, pos := range positions {
			amounts[pos] = levels[i]
		}
	}
	return amounts
}
