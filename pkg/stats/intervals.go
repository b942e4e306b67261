package stats

import (
	"math"
	"time"
)

// IntervalSummary describes the spacing of a date sequence in whole days.
type IntervalSummary struct {
	MeanDays float64
	StdDev   float64
	CV       float64
	// Gaps holds the n-1 consecutive day gaps, rounded to whole days.
	Gaps []int
}

// Intervals computes consecutive day gaps over an ascending-sorted date
// sequence and summarizes them. The second return is false when fewer than
// two dates are supplied; callers must check it before classifying frequency.
func Intervals(dates []time.Time) (IntervalSummary, bool) {
	if len(dates) < 2 {
		return IntervalSummary{}, false
	}

	gaps := make([]int, 0, len(dates)-1)
	values := make([]float64, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		days := int(math.Round(dates[i].Sub(dates[i-1]).Hours() / 24))
		gaps = append(gaps, days)
		values = append(values, float64(days))
	}

	s := Summarize(values)
	return IntervalSummary{
		MeanDays: s.Mean,
		StdDev:   s.StdDev,
		CV:       s.CV,
		Gaps:     gaps,
	}, true
}
