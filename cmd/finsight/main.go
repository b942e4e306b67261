// Command finsight runs the insight engine over a transaction history
// supplied as JSON and prints a terminal report. It is a harness around the
// pure engine: fetching the right window from storage and persisting results
// remain the caller's concern in a real deployment.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/castlemilk/finsight/internal/logging"
	"github.com/castlemilk/finsight/pkg/insights"
)

func main() {
	var (
		op         = flag.String("op", "recurring", "operation: recurring, anomalies, or audit")
		input      = flag.String("input", "-", "path to a JSON array of transactions, or - for stdin")
		lookback   = flag.Int("lookback", 0, "lookback window in months (0 = engine default)")
		minOccur   = flag.Int("min-occurrences", 0, "minimum occurrences per pattern (0 = engine default)")
		periodDays = flag.Int("period-days", 30, "for anomalies: transactions newer than this many days form the current period")
		jsonOut    = flag.Bool("json", false, "emit raw JSON instead of a formatted report")
		debug      = flag.Bool("debug", false, "enable debug logging")
	)
	flag.Parse()

	log := logging.New(*debug)
	engine := insights.NewEngine(insights.WithLogger(log))

	txns, err := readTransactions(*input)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read transactions")
	}
	log.Debug().Int("transactions", len(txns)).Str("op", *op).Msg("input loaded")

	var result any
	switch *op {
	case "recurring":
		patterns, err := engine.DetectRecurringPatterns(txns, insights.DetectOptions{
			MinOccurrences: *minOccur,
			LookbackMonths: *lookback,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("recurring detection failed")
		}
		result = patterns
		if !*jsonOut {
			printPatterns(patterns)
			return
		}

	case "anomalies":
		historical, current := splitByAge(txns, *periodDays)
		report, err := engine.DetectAnomalies(historical, current)
		if err != nil {
			log.Fatal().Err(err).Msg("anomaly detection failed")
		}
		result = report
		if !*jsonOut {
			printAnomalies(report)
			return
		}

	case "audit":
		report, err := engine.AuditSubscriptions(txns, insights.AuditOptions{
			LookbackMonths: *lookback,
			MinOccurrences: *minOccur,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("subscription audit failed")
		}
		result = report
		if !*jsonOut {
			printAudit(report)
			return
		}

	default:
		log.Fatal().Str("op", *op).Msg("unknown operation")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		log.Fatal().Err(err).Msg("failed to encode result")
	}
}

func readTransactions(path string) ([]insights.Transaction, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var txns []insights.Transaction
	if err := json.NewDecoder(r).Decode(&txns); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	return txns, nil
}

// splitByAge partitions transactions into historical and current sets so the
// baseline never includes the period under evaluation.
func splitByAge(txns []insights.Transaction, periodDays int) (historical, current []insights.Transaction) {
	var newest insights.Transaction
	for _, t := range txns {
		if t.Date.After(newest.Date) {
			newest = t
		}
	}
	cutoff := newest.Date.AddDate(0, 0, -periodDays)
	for _, t := range txns {
		if t.Date.After(cutoff) {
			current = append(current, t)
		} else {
			historical = append(historical, t)
		}
	}
	return historical, current
}

func printPatterns(patterns []insights.RecurringPattern) {
	if len(patterns) == 0 {
		fmt.Println("no recurring patterns detected")
		return
	}
	header := color.New(color.Bold)
	header.Printf("%-30s %-10s %10s %12s  %s\n", "MERCHANT", "FREQUENCY", "AMOUNT", "CONFIDENCE", "NEXT DUE")
	for _, p := range patterns {
		conf := color.GreenString("%.2f", p.Confidence)
		if p.Confidence < 0.75 {
			conf = color.YellowString("%.2f", p.Confidence)
		}
		fmt.Printf("%-30s %-10s %10s %12s  %s\n",
			p.DisplayName, p.Frequency, p.Amount.StringFixed(2), conf, p.NextDueDate.Format("2006-01-02"))
	}
}

func printAnomalies(report *insights.AnomalyReport) {
	if report.Summary.TotalAnomalies == 0 {
		fmt.Println("no anomalies detected")
		return
	}
	for _, a := range report.Anomalies {
		sev := color.HiWhiteString(string(a.Severity))
		switch a.Severity {
		case insights.SeverityHigh:
			sev = color.RedString(string(a.Severity))
		case insights.SeverityMedium:
			sev = color.YellowString(string(a.Severity))
		}
		subject := a.Merchant
		if a.Type == insights.AnomalyCategoryOverspending {
			subject = a.Category
		}
		fmt.Printf("[%s] %-25s %-30s %10s  (avg %.2f, +%.0f%%)\n",
			sev, a.Type, subject, a.Amount.StringFixed(2), a.Data.Average, a.Data.PercentAboveAvg)
	}
	fmt.Printf("\n%d anomalies, %s anomalous spend", report.Summary.TotalAnomalies, report.Summary.AnomalousSpendTotal.StringFixed(2))
	if report.Summary.TopCategory != "" {
		fmt.Printf(", top category %s", report.Summary.TopCategory)
	}
	fmt.Println()
}

func printAudit(report *insights.SubscriptionReport) {
	if len(report.Subscriptions) == 0 {
		fmt.Println("no subscriptions found")
		return
	}
	header := color.New(color.Bold)
	header.Printf("%-30s %-10s %10s %12s  %s\n", "MERCHANT", "FREQUENCY", "AMOUNT", "PER MONTH", "STATUS")
	for _, s := range report.Subscriptions {
		status := color.GreenString("active")
		if !s.IsActive {
			status = color.RedString("inactive")
		}
		fmt.Printf("%-30s %-10s %10s %12s  %s\n",
			s.DisplayName, s.Frequency, s.Amount.StringFixed(2), s.MonthlyEquivalent.StringFixed(2), status)
	}
	if len(report.Recommendations) > 0 {
		fmt.Println()
		header.Println("RECOMMENDATIONS")
		for _, r := range report.Recommendations {
			fmt.Printf("  - %s\n", r.Message)
		}
	}
}
