package insights

import (
	"github.com/castlemilk/finsight/pkg/stats"
)

// Baseline is the historical mean/stddev for one grouping key (a category or
// a merchant). Computed fresh per run; never cached inside the engine.
type Baseline struct {
	Key          string
	Mean         float64
	StdDev       float64
	SampleCount  int
	WindowMonths int
}

// buildBaselines computes a population baseline per grouping key over the
// historical amounts. Records whose key is empty are skipped.
func buildBaselines(txns []Transaction, keyOf func(Transaction) string) map[string]Baseline {
	amounts := make(map[string][]float64)
	for _, t := range txns {
		key := keyOf(t)
		if key == "" {
			continue
		}
		amounts[key] = append(amounts[key], t.Amount.InexactFloat64())
	}

	window := monthsSpanned(txns)
	baselines := make(map[string]Baseline, len(amounts))
	for key, values := range amounts {
		s := stats.Summarize(values)
		baselines[key] = Baseline{
			Key:          key,
			Mean:         s.Mean,
			StdDev:       s.StdDev,
			SampleCount:  s.N,
			WindowMonths: window,
		}
	}
	return baselines
}

// monthsSpanned counts the distinct calendar months present in the set. Used
// to turn a historical category total into an average monthly total.
func monthsSpanned(txns []Transaction) int {
	months := make(map[string]struct{})
	for _, t := range txns {
		months[t.Date.Format("2006-01")] = struct{}{}
	}
	return len(months)
}

// monthlyCategoryAverages returns, per category name, the average historical
// monthly spend total. Returns nil when the history spans no months.
func monthlyCategoryAverages(historical []Transaction) map[string]float64 {
	months := monthsSpanned(historical)
	if months == 0 {
		return nil
	}

	totals := make(map[string]float64)
	for _, t := range historical {
		if t.CategoryName == "" {
			continue
		}
		totals[t.CategoryName] += t.Amount.InexactFloat64()
	}

	averages := make(map[string]float64, len(totals))
	for cat, total := range totals {
		averages[cat] = total / float64(months)
	}
	return averages
}
