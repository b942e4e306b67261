package insights

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/castlemilk/finsight/pkg/merchant"
	"github.com/castlemilk/finsight/pkg/stats"
	"github.com/shopspring/decimal"
)

// staleFactor: a subscription counts as inactive once the gap since its last
// charge exceeds 1.5x its average interval.
const staleFactor = 1.5

// defaultHighCostMonthly is the monthly-equivalent cost above which an
// active subscription is surfaced for a value review.
var defaultHighCostMonthly = decimal.NewFromInt(50)

// AuditOptions tunes the subscription audit. Zero values take defaults.
type AuditOptions struct {
	LookbackMonths  int
	MinOccurrences  int
	AmountTolerance float64
	// HighCostMonthly overrides the review-for-value threshold.
	HighCostMonthly decimal.Decimal
}

func (o AuditOptions) withDefaults() (AuditOptions, error) {
	if o.LookbackMonths < 0 {
		return o, fmt.Errorf("lookback months must not be negative, got %d", o.LookbackMonths)
	}
	if o.MinOccurrences < 0 {
		return o, fmt.Errorf("min occurrences must not be negative, got %d", o.MinOccurrences)
	}
	if o.LookbackMonths == 0 {
		o.LookbackMonths = DefaultLookbackMonths
	}
	if o.MinOccurrences == 0 {
		o.MinOccurrences = DefaultMinOccurrences
	}
	if o.AmountTolerance == 0 {
		o.AmountTolerance = stats.DefaultAmountTolerance
	}
	if o.HighCostMonthly.IsZero() {
		o.HighCostMonthly = defaultHighCostMonthly
	}
	return o, nil
}

// AuditSubscriptions re-runs clustering and frequency classification over a
// shorter window and layers on lifecycle state: is the subscription still
// charging, what does it cost per 30 days, and which entries deserve action.
func (e *Engine) AuditSubscriptions(txns []Transaction, opts AuditOptions) (*SubscriptionReport, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}
	if err := validateTransactions("transactions", txns); err != nil {
		return nil, err
	}

	now := e.now()
	windowed := filterWindow(txns, e.windowStart(opts.LookbackMonths))

	// The newest transaction anywhere in the window tells us how fresh the
	// data is: a missing charge only means "likely canceled" when the user
	// was still transacting elsewhere after the expected charge date.
	var latestActivity time.Time
	for _, t := range windowed {
		if t.Date.After(latestActivity) {
			latestActivity = t.Date
		}
	}

	groups := make(map[string][]Transaction)
	for _, t := range windowed {
		key := merchant.Key(t.MerchantName)
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	var audits []SubscriptionAudit
	for _, group := range groups {
		if len(group) < opts.MinOccurrences {
			continue
		}
		sort.Slice(group, func(i, j int) bool {
			return group[i].Date.Before(group[j].Date)
		})

		amounts := make([]float64, len(group))
		for i, t := range group {
			amounts[i] = t.Amount.InexactFloat64()
		}
		clusters := stats.FilterClusters(stats.ClusterAmounts(amounts, opts.AmountTolerance), opts.MinOccurrences)

		for _, cluster := range clusters {
			if audit, ok := auditFromCluster(group, cluster, now); ok {
				audits = append(audits, audit)
			}
		}
	}

	sort.Slice(audits, func(i, j int) bool {
		if audits[i].IsActive != audits[j].IsActive {
			return audits[i].IsActive
		}
		if !audits[i].MonthlyEquivalent.Equal(audits[j].MonthlyEquivalent) {
			return audits[i].MonthlyEquivalent.GreaterThan(audits[j].MonthlyEquivalent)
		}
		return audits[i].Merchant < audits[j].Merchant
	})

	report := &SubscriptionReport{
		Subscriptions:   audits,
		Recommendations: recommendations(audits, latestActivity, opts.HighCostMonthly),
	}

	e.log.Debug().
		Int("transactions", len(windowed)).
		Int("subscriptions", len(audits)).
		Int("recommendations", len(report.Recommendations)).
		Msg("subscription audit completed")

	return report, nil
}

func auditFromCluster(group []Transaction, cluster *stats.Cluster, now time.Time) (SubscriptionAudit, bool) {
	dates := make([]time.Time, len(cluster.Members))
	for i, idx := range cluster.Members {
		dates[i] = group[idx].Date
	}

	iv, ok := stats.Intervals(dates)
	if !ok || iv.MeanDays <= 0 {
		return SubscriptionAudit{}, false
	}
	freq := ClassifyFrequency(iv.MeanDays, iv.CV)
	if freq == FrequencyUnknown {
		return SubscriptionAudit{}, false
	}

	last := group[cluster.Members[len(cluster.Members)-1]]
	first := group[cluster.Members[0]]

	daysSinceLast := now.Sub(last.Date).Hours() / 24
	isActive := daysSinceLast < iv.MeanDays*staleFactor

	audit := SubscriptionAudit{
		Merchant:          last.MerchantName,
		DisplayName:       merchant.DisplayName(last.MerchantName),
		Amount:            cents(cluster.Average),
		Frequency:         freq,
		AvgIntervalDays:   iv.MeanDays,
		OccurrenceCount:   len(cluster.Members),
		IsActive:          isActive,
		FirstCharge:       first.Date,
		LastCharge:        last.Date,
		MonthlyEquivalent: cents(cluster.Average / iv.MeanDays * 30),
	}
	if isActive {
		next := last.Date.AddDate(0, 0, int(math.Round(iv.MeanDays)))
		audit.NextExpectedCharge = &next
	}
	return audit, true
}

// recommendations surfaces inactive entries as likely canceled (only when
// the account shows activity after the charge went missing, so stale data is
// not mistaken for a cancellation) and high-cost entries for a value review.
func recommendations(audits []SubscriptionAudit, latestActivity time.Time, highCost decimal.Decimal) []Recommendation {
	var recs []Recommendation
	for _, a := range audits {
		if !a.IsActive {
			missedBy := a.LastCharge.AddDate(0, 0, int(math.Round(a.AvgIntervalDays*staleFactor)))
			if latestActivity.After(missedBy) {
				recs = append(recs, Recommendation{
					Type:              RecommendLikelyCanceled,
					Merchant:          a.Merchant,
					Message:           fmt.Sprintf("%s has stopped charging; likely canceled, consider removing it", a.DisplayName),
					MonthlyEquivalent: a.MonthlyEquivalent,
				})
			}
			continue
		}
		if a.MonthlyEquivalent.GreaterThan(highCost) {
			recs = append(recs, Recommendation{
				Type:              RecommendReviewValue,
				Merchant:          a.Merchant,
				Message:           fmt.Sprintf("%s costs %s/month; review whether it is still worth it", a.DisplayName, a.MonthlyEquivalent.StringFixed(2)),
				MonthlyEquivalent: a.MonthlyEquivalent,
			})
		}
	}
	return recs
}
