package app

import (
	"fmt"
	"math/rand/v2"

	"field_study_ops/internal/domain/schedule"
)

const maxDeliveryAttempts = 20000

// inPersonChannels are the rails that can be completed at a branch or agent.
var inPersonChannels = []schedule.Channel{schedule.ChannelBank, schedule.ChannelMTS}

// AssignDelivery marks two Bank and two MTS slots as in-person, with no two
// in-person events in the same week. Everything else is online.
func AssignDelivery(rng *rand.Rand, seq []schedule.Channel, weeks []int) ([]schedule.DeliveryMethod, error) {
	candidates := make(map[schedule.Channel][]int, len(inPersonChannels))
	for _, ch := range inPersonChannels {
		positions := positionsOf(seq, ch)
		if len(positions) < schedule.InPersonPerChannel {
			return nil, fmt.Errorf("%s has %d slots, need %d in-person: %w", ch, len(positions), schedule.InPersonPerChannel, ErrInfeasible)
		}
		candidates[ch] = positions
	}

	for attempt := 0; attempt < maxDeliveryAttempts; attempt++ {
		var chosen []int
		for _, ch := range inPersonChannels {
			positions := candidates[ch]
			for _, k := range rng.Perm(len(positions))[:schedule.InPersonPerChannel] {
				chosen = append(chosen, positions[k])
			}
		}
		if !distinctWeeks(chosen, weeks) {
			continue
		}

		methods := make([]schedule.DeliveryMethod, len(seq))
		for i := range methods {
			methods[i] = schedule.DeliveryOnline
		}
		for _, pos := range chosen {
			methods[pos] = schedule.DeliveryInPerson
		}
		return methods, nil
	}
	return nil, fmt.Errorf("in-person spread after %d attempts: %w", maxDeliveryAttempts, ErrAttemptsExhausted)
}

func distinctWeeks(positions []int, weeks []int) bool {
	seen := make(map[int]bool, len(positions))
	for _, pos := range positions {
		if seen[weeks[pos]] {
			return false
		}
		seen[weeks[pos]] = true
	}
	return true
}
