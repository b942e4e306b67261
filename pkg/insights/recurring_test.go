package insights

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow anchors detection windows for deterministic tests.
var fixedNow = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	return NewEngine(WithNow(func() time.Time { return fixedNow }))
}

func tx(id string, date time.Time, amount float64, merchantName, categoryID, categoryName string) Transaction {
	return Transaction{
		ID:           id,
		Date:         date,
		Amount:       decimal.NewFromFloat(amount),
		MerchantName: merchantName,
		CategoryID:   categoryID,
		CategoryName: categoryName,
	}
}

// monthlyCharges builds n charges of the same amount on the first of
// consecutive months ending the month before fixedNow.
func monthlyCharges(idPrefix string, n int, amount float64, merchantName, categoryID string) []Transaction {
	txns := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(n - 1 - i), 0)
		txns = append(txns, tx(idPrefix+string(rune('a'+i)), date, amount, merchantName, categoryID, ""))
	}
	return txns
}

func TestDetectRecurringPatterns(t *testing.T) {
	engine := testEngine()

	t.Run("monthly subscription is detected", func(t *testing.T) {
		txns := monthlyCharges("nf-", 6, 15.99, "NETFLIX.COM", "entertainment")

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		require.Len(t, patterns, 1)

		p := patterns[0]
		assert.Equal(t, FrequencyMonthly, p.Frequency)
		assert.True(t, p.Amount.Equal(decimal.NewFromFloat(15.99)), "amount = %s", p.Amount)
		assert.Equal(t, "entertainment", p.CategoryID)
		assert.GreaterOrEqual(t, p.Confidence, 0.6)
		assert.LessOrEqual(t, p.Confidence, 1.0)

		// Jan..Jun gaps average 30.2 days, so the projection lands 30 days
		// after the last charge.
		assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), p.NextDueDate)

		// The emitted IDs must reproduce exactly the member set.
		assert.Equal(t, []string{"nf-a", "nf-b", "nf-c", "nf-d", "nf-e", "nf-f"}, p.TransactionIDs)
	})

	t.Run("irregular intervals emit nothing", func(t *testing.T) {
		base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		txns := []Transaction{
			tx("g1", base, 49.0, "Gym Plus", "health", ""),
			tx("g2", base.AddDate(0, 0, 10), 49.0, "Gym Plus", "health", ""),
			tx("g3", base.AddDate(0, 0, 50), 49.0, "Gym Plus", "health", ""),
			tx("g4", base.AddDate(0, 0, 70), 49.0, "Gym Plus", "health", ""),
			tx("g5", base.AddDate(0, 0, 120), 49.0, "Gym Plus", "health", ""),
		}

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("two subscription tiers yield two patterns", func(t *testing.T) {
		var txns []Transaction
		for i := 0; i < 4; i++ {
			date := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(3 - i), 0)
			txns = append(txns, tx("lo-"+string(rune('a'+i)), date, 9.99, "Spotify", "music", ""))
			txns = append(txns, tx("hi-"+string(rune('a'+i)), date.AddDate(0, 0, 2), 19.99, "Spotify", "music", ""))
		}

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		require.Len(t, patterns, 2)

		amounts := []string{patterns[0].Amount.StringFixed(2), patterns[1].Amount.StringFixed(2)}
		assert.ElementsMatch(t, []string{"9.99", "19.99"}, amounts)
	})

	t.Run("fewer occurrences than the minimum are ignored", func(t *testing.T) {
		txns := monthlyCharges("s-", 2, 12.00, "Stan", "entertainment")

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("charges outside the lookback window are excluded", func(t *testing.T) {
		var txns []Transaction
		for i := 0; i < 5; i++ {
			date := fixedNow.AddDate(0, -(12 - i), 0)
			txns = append(txns, tx("old-"+string(rune('a'+i)), date, 8.00, "Old Mag", "news", ""))
		}

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("clusters with no categorized member are rejected", func(t *testing.T) {
		txns := monthlyCharges("u-", 6, 5.00, "Mystery Box", "")

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("ungroupable merchants are excluded", func(t *testing.T) {
		txns := monthlyCharges("x-", 6, 5.00, "***", "misc")

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		assert.Empty(t, patterns)
	})

	t.Run("patterns are sorted by confidence descending", func(t *testing.T) {
		txns := append(
			monthlyCharges("a-", 6, 15.99, "Netflix", "entertainment"),
			monthlyCharges("b-", 3, 11.99, "Disney Plus", "entertainment")...,
		)

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		require.Len(t, patterns, 2)
		assert.GreaterOrEqual(t, patterns[0].Confidence, patterns[1].Confidence)
		assert.Equal(t, "Netflix", patterns[0].MerchantName)
	})

	t.Run("display name is cleaned for presentation", func(t *testing.T) {
		txns := monthlyCharges("d-", 6, 15.99, "NETFLIX PREMIUM", "entertainment")

		patterns, err := engine.DetectRecurringPatterns(txns, DetectOptions{})
		require.NoError(t, err)
		require.Len(t, patterns, 1)
		assert.Equal(t, "Netflix Premium", patterns[0].DisplayName)
	})

	t.Run("negative options fail fast", func(t *testing.T) {
		_, err := engine.DetectRecurringPatterns(nil, DetectOptions{MinOccurrences: -1})
		assert.Error(t, err)

		_, err = engine.DetectRecurringPatterns(nil, DetectOptions{LookbackMonths: -2})
		assert.Error(t, err)

		_, err = engine.DetectRecurringPatterns(nil, DetectOptions{ConfidenceThreshold: 1.5})
		assert.Error(t, err)
	})

	t.Run("malformed transactions fail fast", func(t *testing.T) {
		_, err := engine.DetectRecurringPatterns([]Transaction{
			{ID: "bad", Amount: decimal.NewFromInt(5), MerchantName: "X"},
		}, DetectOptions{})
		assert.ErrorContains(t, err, "date is unset")

		_, err = engine.DetectRecurringPatterns([]Transaction{
			tx("neg", fixedNow, -5, "X", "", ""),
		}, DetectOptions{})
		assert.ErrorContains(t, err, "positive magnitude")
	})
}
