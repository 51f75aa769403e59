// internal/app/channel_sampler.go
package app

import (
	"fmt"
	"math/rand/v2"

	"field_study_ops/internal/domain/schedule"
)

const (
	maxExtrasAttempts   = 10000
	maxSequenceAttempts = 50000
	extrasPerBlock      = 2
)

// sampleExtras picks, for each block, the two channels that appear three times
// instead of twice. Every channel is extra in exactly two blocks and a block's
// two extras are distinct.
func sampleExtras(rng *rand.Rand) ([][extrasPerBlock]schedule.Channel, error) {
	pool := make([]schedule.Channel, 0, len(schedule.Channels)*extrasPerBlock)
	for _, ch := range schedule.Channels {
		for i := 0; i < extrasPerBlock; i++ {
			pool = append(pool, ch)
		}
	}

	for attempt := 0; attempt < maxExtrasAttempts; attempt++ {
		rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })

		extras := make([][extrasPerBlock]schedule.Channel, schedule.Blocks)
		ok := true
		for b := 0; b < schedule.Blocks; b++ {
			first, second := pool[b*extrasPerBlock], pool[b*extrasPerBlock+1]
			if first == second {
				ok = false
				break
			}
			extras[b] = [extrasPerBlock]schedule.Channel{first, second}
		}
		if ok {
			return extras, nil
		}
	}
	return nil, fmt.Errorf("block extras after %d attempts: %w", maxExtrasAttempts, ErrAttemptsExhausted)
}

// SampleChannelSequence draws the 40-slot channel order for one confederate.
func SampleChannelSequence(rng *rand.Rand) ([]schedule.Channel, error) {
	for attempt := 0; attempt < maxSequenceAttempts; attempt++ {
		extras, err := sampleExtras(rng)
		if err != nil {
			return nil, err
		}

		seq := make([]schedule.Channel, 0, schedule.TransactionsPerConfederate)
		for b := 0; b < schedule.Blocks; b++ {
			block := make([]schedule.Channel, 0, schedule.BlockSize)
			for _, ch := range schedule.Channels {
				block = append(block, ch, ch)
			}
			block = append(block, extras[b][0], extras[b][1])
			rng.Shuffle(len(block), func(i, j int) { block[i], block[j] = block[j], block[i] })
			seq = append(seq, block...)
		}

		if longestRun(seq) > schedule.MaxChannelRun {
			continue
		}
		if !channelTotalsBalanced(seq) {
			continue
		}
		return seq, nil
	}
	return nil, fmt.Errorf("channel sequence after %d attempts: %w", maxSequenceAttempts, ErrAttemptsExhausted)
}

func longestRun(seq []schedule.Channel) int {
	longest, run := 0, 0
	for i, ch := range seq {
		if i > 0 && seq[i-1] == ch {
			run++
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}
	return longest
}

func channelTotalsBalanced(seq []schedule.Channel) bool {
	counts := make(map[schedule.Channel]int, len(schedule.Channels))
	for _, ch := range seq {
		counts[ch]++
	}
	for _, ch := range schedule.Channels {
		if counts[ch] != schedule.TransactionsPerChannel {
			return false
		}
	}
	return len(seq) == schedule.TransactionsPerConfederate
}

// positionsOf returns the 0-based indexes at which ch occurs.
func positionsOf(seq []schedule.Channel, ch schedule.Channel) []int {
	var idx []int
	for i, c := range seq {
		if c == ch {
			idx = append(idx, i)
		}
	}
	return idx
}
