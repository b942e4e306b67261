// Package insights derives recurring-charge patterns, spending anomalies, and
// subscription lifecycle audits from a user's transaction history. Every
// operation is a pure, stateless computation over the records it is handed:
// the engine performs no I/O and keeps nothing between runs.
package insights

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the engine's input record. It is externally owned and never
// mutated: the caller fetches the window, the engine only reads it. Amount is
// always a positive magnitude; direction is the caller's concern.
type Transaction struct {
	ID           string          `json:"id"`
	Date         time.Time       `json:"date"`
	Amount       decimal.Decimal `json:"amount"`
	MerchantName string          `json:"merchant_name"`
	CategoryID   string          `json:"category_id,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
}

// Frequency is a detected billing cadence.
type Frequency string

const (
	FrequencyUnknown   Frequency = ""
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiWeekly  Frequency = "BI_WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

// RecurringPattern is a detected (merchant, amount, cadence) triple with a
// projected next occurrence. It carries no identity beyond the run that
// produced it; callers persist it as a standing rule if they want one.
type RecurringPattern struct {
	MerchantName   string          `json:"merchant_name"`
	DisplayName    string          `json:"display_name"`
	Frequency      Frequency       `json:"frequency"`
	Amount         decimal.Decimal `json:"amount"`
	CategoryID     string          `json:"category_id"`
	NextDueDate    time.Time       `json:"next_due_date"`
	TransactionIDs []string        `json:"transaction_ids"`
	Confidence     float64         `json:"confidence"`
}

// AnomalyType names the check that flagged a transaction or category total.
type AnomalyType string

const (
	AnomalyUnusualAmount         AnomalyType = "unusual_amount"
	AnomalyUnusualMerchantAmount AnomalyType = "unusual_merchant_amount"
	AnomalyCategoryOverspending  AnomalyType = "category_overspending"
)

// Severity tiers anomalies for presentation.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AnomalyData carries the baseline figures behind a flag.
type AnomalyData struct {
	Average         float64 `json:"average"`
	StdDev          float64 `json:"std_dev"`
	Threshold       float64 `json:"threshold"`
	PercentAboveAvg float64 `json:"percent_above_avg"`
}

// Anomaly is a single deviation flag. TransactionID is empty for
// category-total anomalies. The category- and merchant-based checks can both
// fire for the same transaction; they are deliberately not merged.
type Anomaly struct {
	ID            string          `json:"id"`
	Type          AnomalyType     `json:"type"`
	Severity      Severity        `json:"severity"`
	TransactionID string          `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	Category      string          `json:"category,omitempty"`
	Merchant      string          `json:"merchant,omitempty"`
	Data          AnomalyData     `json:"data"`
}

// AnomalySummary aggregates a detection run.
type AnomalySummary struct {
	TotalAnomalies      int             `json:"total_anomalies"`
	AnomalousSpendTotal decimal.Decimal `json:"anomalous_spend_total"`
	TopCategory         string          `json:"top_category,omitempty"`
}

// AnomalyReport is the result of DetectAnomalies. Anomalies are sorted by
// severity rank descending and truncated to the top 10; the summary covers
// everything flagged, including truncated entries.
type AnomalyReport struct {
	Anomalies []Anomaly      `json:"anomalies"`
	Summary   AnomalySummary `json:"summary"`
}

// SubscriptionAudit is one merchant charge-stream with lifecycle state.
type SubscriptionAudit struct {
	Merchant           string          `json:"merchant"`
	DisplayName        string          `json:"display_name"`
	Amount             decimal.Decimal `json:"amount"`
	Frequency          Frequency       `json:"frequency"`
	AvgIntervalDays    float64         `json:"avg_interval_days"`
	OccurrenceCount    int             `json:"occurrence_count"`
	IsActive           bool            `json:"is_active"`
	FirstCharge        time.Time       `json:"first_charge"`
	LastCharge         time.Time       `json:"last_charge"`
	NextExpectedCharge *time.Time      `json:"next_expected_charge,omitempty"`
	MonthlyEquivalent  decimal.Decimal `json:"monthly_equivalent"`
}

// RecommendationType classifies an audit recommendation.
type RecommendationType string

const (
	RecommendLikelyCanceled RecommendationType = "likely_canceled"
	RecommendReviewValue    RecommendationType = "review_value"
)

// Recommendation is an actionable follow-up surfaced by the audit.
type Recommendation struct {
	Type              RecommendationType `json:"type"`
	Merchant          string             `json:"merchant"`
	Message           string             `json:"message"`
	MonthlyEquivalent decimal.Decimal    `json:"monthly_equivalent"`
}

// SubscriptionReport is the result of AuditSubscriptions, sorted active-first
// then by monthly-equivalent cost descending.
type SubscriptionReport struct {
	Subscriptions   []SubscriptionAudit `json:"subscriptions"`
	Recommendations []Recommendation    `json:"recommendations"`
}
