package insights

import (
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Anomaly detection thresholds.
const (
	// minMerchantHistory is the occurrence floor before a merchant baseline
	// is trusted for per-transaction comparison.
	minMerchantHistory = 3
	// overspendFactor multiplies the average historical monthly category
	// total to form the overspend trigger.
	overspendFactor = 1.5
	// maxAnomalies bounds the report.
	maxAnomalies = 10
)

// DetectAnomalies compares current-period transactions against baselines
// built from the historical set and flags deviations past the 2-sigma rule,
// plus category totals that blow past the historical monthly average. The
// caller is responsible for excluding the current period from the historical
// set; the engine does not guard against leakage.
func (e *Engine) DetectAnomalies(historical, current []Transaction) (*AnomalyReport, error) {
	if err := validateTransactions("historical", historical); err != nil {
		return nil, err
	}
	if err := validateTransactions("current", current); err != nil {
		return nil, err
	}

	categoryBase := buildBaselines(historical, func(t Transaction) string { return t.CategoryName })
	merchantBase := buildBaselines(historical, func(t Transaction) string { return t.MerchantName })

	var anomalies []Anomaly

	for _, t := range current {
		amount := t.Amount.InexactFloat64()

		// Category-baseline check. Single-sample baselines have no spread to
		// compare against and are skipped.
		if b, ok := categoryBase[t.CategoryName]; ok && b.SampleCount >= 2 {
			if amount > b.Mean+2*b.StdDev {
				severity := SeverityMedium
				if amount > b.Mean+3*b.StdDev {
					severity = SeverityHigh
				}
				anomalies = append(anomalies, Anomaly{
					ID:            uuid.New().String(),
					Type:          AnomalyUnusualAmount,
					Severity:      severity,
					TransactionID: t.ID,
					Amount:        t.Amount,
					Category:      t.CategoryName,
					Merchant:      t.MerchantName,
					Data:          deviationData(amount, b),
				})
			}
		}

		// Merchant-baseline check, independent of the category check: both
		// can fire for the same transaction and neither suppresses the other.
		if b, ok := merchantBase[t.MerchantName]; ok && b.SampleCount >= minMerchantHistory {
			if amount > b.Mean+2*b.StdDev {
				anomalies = append(anomalies, Anomaly{
					ID:            uuid.New().String(),
					Type:          AnomalyUnusualMerchantAmount,
					Severity:      SeverityMedium,
					TransactionID: t.ID,
					Amount:        t.Amount,
					Category:      t.CategoryName,
					Merchant:      t.MerchantName,
					Data:          deviationData(amount, b),
				})
			}
		}
	}

	anomalies = append(anomalies, e.overspendAnomalies(historical, current)...)

	sort.SliceStable(anomalies, func(i, j int) bool {
		if anomalies[i].Severity.rank() != anomalies[j].Severity.rank() {
			return anomalies[i].Severity.rank() > anomalies[j].Severity.rank()
		}
		return anomalies[i].Amount.GreaterThan(anomalies[j].Amount)
	})

	report := &AnomalyReport{Summary: summarize(anomalies)}
	if len(anomalies) > maxAnomalies {
		anomalies = anomalies[:maxAnomalies]
	}
	report.Anomalies = anomalies

	e.log.Debug().
		Int("historical", len(historical)).
		Int("current", len(current)).
		Int("flagged", report.Summary.TotalAnomalies).
		Msg("anomaly detection completed")

	return report, nil
}

// overspendAnomalies flags categories whose current-period total exceeds
// overspendFactor times the average historical monthly total. Severity is
// high once the total reaches twice the trigger threshold.
func (e *Engine) overspendAnomalies(historical, current []Transaction) []Anomaly {
	averages := monthlyCategoryAverages(historical)
	if averages == nil {
		return nil
	}

	totals := make(map[string]float64)
	for _, t := range current {
		if t.CategoryName == "" {
			continue
		}
		totals[t.CategoryName] += t.Amount.InexactFloat64()
	}

	categories := make([]string, 0, len(totals))
	for cat := range totals {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var anomalies []Anomaly
	for _, cat := range categories {
		avg, ok := averages[cat]
		if !ok || avg <= 0 {
			continue
		}
		total := totals[cat]
		threshold := avg * overspendFactor
		if total <= threshold {
			continue
		}

		severity := SeverityMedium
		if total >= 2*threshold {
			severity = SeverityHigh
		}
		anomalies = append(anomalies, Anomaly{
			ID:       uuid.New().String(),
			Type:     AnomalyCategoryOverspending,
			Severity: severity,
			Amount:   cents(total),
			Category: cat,
			Data: AnomalyData{
				Average:         avg,
				Threshold:       threshold,
				PercentAboveAvg: (total - avg) / avg * 100,
			},
		})
	}
	return anomalies
}

// deviationData captures the baseline behind a per-transaction flag.
func deviationData(amount float64, b Baseline) AnomalyData {
	d := AnomalyData{
		Average:   b.Mean,
		StdDev:    b.StdDev,
		Threshold: b.Mean + 2*b.StdDev,
	}
	if b.Mean > 0 {
		d.PercentAboveAvg = (amount - b.Mean) / b.Mean * 100
	}
	return d
}

func summarize(anomalies []Anomaly) AnomalySummary {
	summary := AnomalySummary{
		TotalAnomalies:      len(anomalies),
		AnomalousSpendTotal: decimal.Zero,
	}

	counts := make(map[string]int)
	for _, a := range anomalies {
		summary.AnomalousSpendTotal = summary.AnomalousSpendTotal.Add(a.Amount)
		if a.Category != "" {
			counts[a.Category]++
		}
	}

	topCount := 0
	for cat, count := range counts {
		if count > topCount || (count == topCount && cat < summary.TopCategory) {
			topCount = count
			summary.TopCategory = cat
		}
	}
	return summary
}
