package insights

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Engine runs the insight detectors. It holds no per-run state; the clock and
// logger are the only configuration, so a single Engine is safe to share
// across concurrent runs for independent users.
type Engine struct {
	now func() time.Time
	log zerolog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the engine clock. Lookback windows and subscription
// staleness are measured against this instant.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithLogger attaches a logger for per-run diagnostics. The default engine
// logs nothing.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// NewEngine constructs an Engine with the given options.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now: time.Now,
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var defaultEngine = NewEngine()

// DetectRecurringPatterns runs recurring-pattern detection on a default engine.
func DetectRecurringPatterns(txns []Transaction, opts DetectOptions) ([]RecurringPattern, error) {
	return defaultEngine.DetectRecurringPatterns(txns, opts)
}

// DetectAnomalies runs anomaly detection on a default engine.
func DetectAnomalies(historical, current []Transaction) (*AnomalyReport, error) {
	return defaultEngine.DetectAnomalies(historical, current)
}

// AuditSubscriptions runs the subscription audit on a default engine.
func AuditSubscriptions(txns []Transaction, opts AuditOptions) (*SubscriptionReport, error) {
	return defaultEngine.AuditSubscriptions(txns, opts)
}

// validateTransactions fails fast on malformed boundary input. Statistical
// degeneracies (too few records, empty groups) are not errors; they degrade
// to skipped groups downstream.
func validateTransactions(name string, txns []Transaction) error {
	for i, t := range txns {
		if t.Date.IsZero() {
			return fmt.Errorf("%s[%d] (id %q): date is unset", name, i, t.ID)
		}
		if t.Amount.IsNegative() {
			return fmt.Errorf("%s[%d] (id %q): amount must be a positive magnitude, got %s", name, i, t.ID, t.Amount)
		}
	}
	return nil
}

// windowStart returns the inclusive start of a lookback window ending now.
func (e *Engine) windowStart(months int) time.Time {
	return e.now().AddDate(0, -months, 0)
}

// filterWindow keeps transactions dated on or after start.
func filterWindow(txns []Transaction, start time.Time) []Transaction {
	kept := make([]Transaction, 0, len(txns))
	for _, t := range txns {
		if !t.Date.Before(start) {
			kept = append(kept, t)
		}
	}
	return kept
}

// cents rounds a float amount to a two-decimal money value.
func cents(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}
