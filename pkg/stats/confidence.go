package stats

import "math"

// DefaultIntervalCV is assumed when a caller has already gated intervals
// through the frequency classifier's variance ceiling and has no
// finer-grained figure of its own.
const DefaultIntervalCV = 0.15

// ConfidenceScore combines occurrence count, amount-cluster tightness, and
// interval tightness into a [0,1] score:
//
//	min(occurrences/12, 0.5)       more history, saturating at 12
//	max(0, 1-amountCV) * 0.3       tighter amounts
//	max(0, 1-intervalCV) * 0.2     tighter timing
//
// Pass a negative intervalCV to use DefaultIntervalCV.
func ConfidenceScore(occurrences int, amountCV, intervalCV float64) float64 {
	if intervalCV < 0 {
		intervalCV = DefaultIntervalCV
	}

	score := math.Min(float64(occurrences)/12.0, 0.5)
	score += math.Max(0, 1-amountCV) * 0.3
	score += math.Max(0, 1-intervalCV) * 0.2

	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}
