package insights

import (
	"fmt"

	"github.com/dgraph-io/ristretto"
)

// ReportCache memoizes per-run engine output behind a caller-supplied run
// key (typically user + window). Results are identical to a from-scratch run;
// this is purely a cost optimization for request layers that recompute the
// same window repeatedly. Keys are the caller's responsibility: reusing a key
// across different inputs returns the first input's result.
type ReportCache struct {
	engine *Engine
	cache  *ristretto.Cache
}

// NewReportCache wraps the engine with a cache holding up to maxEntries
// reports.
func NewReportCache(engine *Engine, maxEntries int64) (*ReportCache, error) {
	if maxEntries <= 0 {
		return nil, fmt.Errorf("max entries must be positive, got %d", maxEntries)
	}
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &ReportCache{engine: engine, cache: cache}, nil
}

// DetectRecurringPatterns returns the cached result for runKey, computing and
// storing it on a miss.
func (c *ReportCache) DetectRecurringPatterns(runKey string, txns []Transaction, opts DetectOptions) ([]RecurringPattern, error) {
	key := "recurring:" + runKey
	if v, ok := c.cache.Get(key); ok {
		return v.([]RecurringPattern), nil
	}
	patterns, err := c.engine.DetectRecurringPatterns(txns, opts)
	if err != nil {
		return nil, err
	}
	c.store(key, patterns)
	return patterns, nil
}

// DetectAnomalies returns the cached report for runKey, computing and storing
// it on a miss.
func (c *ReportCache) DetectAnomalies(runKey string, historical, current []Transaction) (*AnomalyReport, error) {
	key := "anomalies:" + runKey
	if v, ok := c.cache.Get(key); ok {
		return v.(*AnomalyReport), nil
	}
	report, err := c.engine.DetectAnomalies(historical, current)
	if err != nil {
		return nil, err
	}
	c.store(key, report)
	return report, nil
}

// AuditSubscriptions returns the cached report for runKey, computing and
// storing it on a miss.
func (c *ReportCache) AuditSubscriptions(runKey string, txns []Transaction, opts AuditOptions) (*SubscriptionReport, error) {
	key := "audit:" + runKey
	if v, ok := c.cache.Get(key); ok {
		return v.(*SubscriptionReport), nil
	}
	report, err := c.engine.AuditSubscriptions(txns, opts)
	if err != nil {
		return nil, err
	}
	c.store(key, report)
	return report, nil
}

// Close releases the underlying cache.
func (c *ReportCache) Close() {
	c.cache.Close()
}

// store writes through and waits for the buffered set to land so an
// immediately-following request for the same run key hits the cache.
func (c *ReportCache) store(key string, value any) {
	c.cache.Set(key, value, 1)
	c.cache.Wait()
}
