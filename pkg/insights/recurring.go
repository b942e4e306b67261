package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/castlemilk/finsight/pkg/merchant"
	"github.com/castlemilk/finsight/pkg/stats"
)

// Detection defaults.
const (
	DefaultMinOccurrences      = 3
	DefaultLookbackMonths      = 6
	DefaultConfidenceThreshold = 0.6
)

// DetectOptions tunes recurring-pattern detection. Zero values take the
// package defaults.
type DetectOptions struct {
	MinOccurrences      int
	LookbackMonths      int
	ConfidenceThreshold float64
	AmountTolerance     float64
}

func (o DetectOptions) withDefaults() (DetectOptions, error) {
	if o.MinOccurrences < 0 {
		return o, fmt.Errorf("min occurrences must not be negative, got %d", o.MinOccurrences)
	}
	if o.LookbackMonths < 0 {
		return o, fmt.Errorf("lookback months must not be negative, got %d", o.LookbackMonths)
	}
	if o.ConfidenceThreshold < 0 || o.ConfidenceThreshold > 1 {
		return o, fmt.Errorf("confidence threshold must be in [0,1], got %v", o.ConfidenceThreshold)
	}
	if o.MinOccurrences == 0 {
		o.MinOccurrences = DefaultMinOccurrences
	}
	if o.LookbackMonths == 0 {
		o.LookbackMonths = DefaultLookbackMonths
	}
	if o.ConfidenceThreshold == 0 {
		o.ConfidenceThreshold = DefaultConfidenceThreshold
	}
	if o.AmountTolerance == 0 {
		o.AmountTolerance = stats.DefaultAmountTolerance
	}
	return o, nil
}

// DetectRecurringPatterns analyzes the transaction history for merchants that
// charge on a predictable cadence and synthesizes a forward-looking rule per
// qualifying (merchant, amount-cluster) pair. Results are sorted by
// confidence descending.
func (e *Engine) DetectRecurringPatterns(txns []Transaction, opts DetectOptions) ([]RecurringPattern, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := validateTransactions("transactions", txns); err != nil {
		return nil, err
	}

	windowed := filterWindow(txns, e.windowStart(opts.LookbackMonths))

	// Group by normalized merchant key; ungroupable (empty-key) records are
	// excluded from detection.
	groups := make(map[string][]Transaction)
	for _, t := range windowed {
		key := merchant.Key(t.MerchantName)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	var patterns []RecurringPattern
	var rejected int

	for _, group := range groups {
		if len(group) < opts.MinOccurrences {
			continue
		}

		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		// Cluster amounts in chronological order so merchants with multiple
		// distinct recurring charges (e.g. two subscription tiers) each get
		// their own candidate.
		amounts := make([]float64, len(group))
		for i, t := range group {
			amounts[i] = t.Amount.InexactFloat64()
		}
		clusters := stats.FilterClusters(stats.ClusterAmounts(amounts, opts.AmountTolerance), opts.MinOccurrences)

		for _, cluster := range clusters {
			p, ok := e.patternFromCluster(group, cluster, opts)
			if !ok {
				rejected++
				continue
			}
			patterns = append(patterns, p)
		}
	}

	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].Confidence != patterns[j].Confidence {
			return patterns[i].Confidence > patterns[j].Confidence
		}
		return patterns[i].MerchantName < patterns[j].MerchantName
	})

	e.log.Debug().
		Int("transactions", len(windowed)).
		Int("merchants", len(groups)).
		Int("emitted", len(patterns)).
		Int("rejected", rejected).
		Msg("recurring pattern detection completed")

	return patterns, nil
}

// patternFromCluster walks one (merchant, amount-cluster) candidate through
// frequency classification and confidence scoring.
func (e *Engine) patternFromCluster(group []Transaction, cluster *stats.Cluster, opts DetectOptions) (RecurringPattern, bool) {
	members := make([]Transaction, len(cluster.Members))
	dates := make([]time.Time, len(cluster.Members))
	for i, idx := range cluster.Members {
		members[i] = group[idx]
		dates[i] = group[idx].Date
	}

	iv, ok := stats.Intervals(dates)
	if !ok {
		return RecurringPattern{}, false
	}

	freq := ClassifyFrequency(iv.MeanDays, iv.CV)
	if freq == FrequencyUnknown {
		return RecurringPattern{}, false
	}

	amountCV := stats.Summarize(cluster.Values).CV
	confidence := stats.ConfidenceScore(len(members), amountCV, iv.CV)
	if confidence < opts.ConfidenceThreshold {
		return RecurringPattern{}, false
	}

	categoryID, ok := voteCategory(members)
	if !ok {
		return RecurringPattern{}, false
	}

	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	last := members[len(members)-1]

	return RecurringPattern{
		MerchantName:   last.MerchantName,
		DisplayName:    merchant.DisplayName(last.MerchantName),
		Frequency:      freq,
		Amount:         cents(cluster.Average),
		CategoryID:     categoryID,
		NextDueDate:    last.Date.AddDate(0, 0, int(math.Round(iv.MeanDays))),
		TransactionIDs: ids,
		Confidence:     confidence,
	}, true
}

// voteCategory picks the most frequent category among members, ties broken by
// first-seen order. A cluster with no categorized members is rejected.
func voteCategory(members []Transaction) (string, bool) {
	counts := make(map[string]int)
	for _, m := range members {
		if m.CategoryID != "" {
			counts[m.CategoryID]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	best := ""
	bestCount := 0
	for _, m := range members {
		if m.CategoryID == "" {
			continue
		}
		if counts[m.CategoryID] > bestCount {
			best = m.CategoryID
			bestCount = counts[m.CategoryID]
		}
	}
	return best, true
}
