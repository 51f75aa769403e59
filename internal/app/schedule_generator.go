// internal/app/schedule_generator.go
package app

import (
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"time"

	"field_study_ops/internal/domain/schedule"

	"github.com/sirupsen/logrus"
)

const defaultMaxPipelineAttempts = 1000

// GeneratorOptions configures a schedule run.
type GeneratorOptions struct {
	Seed                int64
	StudyStart          time.Time // must be a Monday
	MaxPipelineAttempts int       // redraws after an infeasible channel sequence
}

// ScheduleGenerator builds balanced transaction schedules for confederates.
// Output depends only on the options and the confederate list.
type ScheduleGenerator struct {
	opts   GeneratorOptions
	logger *logrus.Entry
}

func NewScheduleGenerator(opts GeneratorOptions, logger *logrus.Entry) (*ScheduleGenerator, error) {
	if opts.StudyStart.Weekday() != time.Monday {
		return nil, fmt.Errorf("study start %s: %w", opts.StudyStart.Format("2006-01-02"), ErrInvalidStudyStart)
	}
	if opts.MaxPipelineAttempts <= 0 {
		opts.MaxPipelineAttempts = defaultMaxPipelineAttempts
	}
	return &ScheduleGenerator{opts: opts, logger: logger}, nil
}

// confederateRand derives an independent stream per confederate so that adding
// or reordering confederates does not change anyone else's schedule.
func confederateRand(seed int64, confederateID string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(confederateID))
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}

// Generate produces and validates a schedule for every confederate, then rolls
// up the balance summaries.
func (g *ScheduleGenerator) Generate(confederates []schedule.Confederate) (*schedule.Study, error) {
	seen := make(map[string]bool, len(confederates))
	study := &schedule.Study{
		Seed:           g.opts.Seed,
		PerConfederate: make(map[string]schedule.Counts, len(confederates)),
		Overall:        schedule.NewCounts(),
	}

	for _, c := range confederates {
		if c.ID == "" {
			return nil, fmt.Errorf("confederate with empty id")
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("duplicate confederate id %q", c.ID)
		}
		seen[c.ID] = true

		sc, err := g.GenerateConfederate(c)
		if err != nil {
			return nil, err
		}
		study.Schedules = append(study.Schedules, sc)

		counts := schedule.NewCounts()
		for _, r := range sc.Rows {
			counts.Add(r)
			study.Overall.Add(r)
		}
		study.PerConfederate[c.ID] = counts
	}

	g.logger.WithFields(logrus.Fields{
		"confederates": len(study.Schedules),
		"rows":         study.Overall.Total,
		"seed":         g.opts.Seed,
	}).Info("Study schedule generated")
	return study, nil
}

// GenerateConfederate runs the sampling pipeline for one confederate and checks
// the result.
func (g *ScheduleGenerator) GenerateConfederate(c schedule.Confederate) (schedule.Schedule, error) {
	rng := confederateRand(g.opts.Seed, c.ID)
	log := g.logger.WithField("confederate_id", c.ID)

	for attempt := 1; attempt <= g.opts.MaxPipelineAttempts; attempt++ {
		rows, err := g.draw(rng, c)
		if errors.Is(err, ErrInfeasible) {
			log.WithError(err).WithField("attempt", attempt).Debug("Redrawing infeasible schedule")
			continue
		}
		if err != nil {
			return schedule.Schedule{}, fmt.Errorf("confederate %s: %w", c.ID, err)
		}

		sc := schedule.Schedule{Confederate: c, Rows: rows}
		if err := ValidateSchedule(sc, g.opts.StudyStart); err != nil {
			return schedule.Schedule{}, fmt.Errorf("schedule failed validation: %w", err)
		}
		log.WithField("attempts", attempt).Debug("Schedule drawn")
		return sc, nil
	}
	return schedule.Schedule{}, fmt.Errorf("confederate %s after %d pipeline attempts: %w", c.ID, g.opts.MaxPipelineAttempts, ErrAttemptsExhausted)
}

func (g *ScheduleGenerator) draw(rng *rand.Rand, c schedule.Confederate) ([]schedule.Row, error) {
	channels, err := SampleChannelSequence(rng)
	if err != nil {
		return nil, err
	}
	amounts := AssignAmounts(rng, channels)
	weeks, err := AssignWeeks(rng, channels)
	if err != nil {
		return nil, err
	}
	dates, err := AssignDates(rng, weeks, g.opts.StudyStart)
	if err != nil {
		return nil, err
	}
	methods, err := AssignDelivery(rng, channels, weeks)
	if err != nil {
		return nil, err
	}

	rows := make([]schedule.Row, len(channels))
	for i := range channels {
		order := i + 1
		rows[i] = schedule.Row{
			ConfederateID:    c.ID,
			Country:          c.Country,
			TransactionOrder: order,
			Block:            schedule.BlockOf(order),
			Phase:            schedule.PhaseOf(weeks[i]),
			AssignedWeek:     weeks[i],
			Date:             dates[i],
			Channel:          channels[i],
			Amount:           amounts[i],
			DeliveryMethod:   methods[i],
		}
	}
	return rows, nil
}
