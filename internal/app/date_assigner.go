package app

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"
)

const weekdaysPerWeek = 5

// AssignDates places each slot on a distinct weekday of its assigned week.
// Slots keep their transaction order within a week.
func AssignDates(rng *rand.Rand, weeks []int, studyStart time.Time) ([]time.Time, error) {
	if studyStart.Weekday() != time.Monday {
		return nil, fmt.Errorf("%s is a %s: %w", studyStart.Format("2006-01-02"), studyStart.Weekday(), ErrInvalidStudyStart)
	}

	byWeek := make(map[int][]int)
	var order []int
	for i, w := range weeks {
		if _, seen := byWeek[w]; !seen {
			order = append(order, w)
		}
		byWeek[w] = append(byWeek[w], i)
	}

	dates := make([]time.Time, len(weeks))
	for _, w := range order {
		slots := byWeek[w]
		if len(slots) > weekdaysPerWeek {
			return nil, fmt.Errorf("week %d has %d slots but only %d weekdays", w, len(slots), weekdaysPerWeek)
		}
		days := rng.Perm(weekdaysPerWeek)[:len(slots)]
		sort.Ints(days)
		for k, slot := range slots {
			dates[slot] = studyStart.AddDate(0, 0, (w-1)*7+days[k])
		}
	}
	return dates, nil
}
