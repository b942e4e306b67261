// Package stats provides the shared statistical primitives used by the
// insight detectors: population summaries, day-interval statistics, greedy
// amount clustering, and confidence scoring.
package stats

import "math"

// Summary holds population statistics over a sample set.
type Summary struct {
	Mean   float64
	StdDev float64
	// CV is the coefficient of variation (stddev/mean), a scale-free
	// measure of relative spread. Zero when the mean is zero.
	CV float64
	N  int
}

// Summarize computes population mean, standard deviation, and coefficient of
// variation for the given values. Population convention: divide by n, not n-1.
func Summarize(values []float64) Summary {
	n := len(values)
	if n == 0 {
		return Summary{}
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sumSq float64
	for _, v := range values {
		d := v - mean
		sumSq += d * d
	}
	stdDev := math.Sqrt(sumSq / float64(n))

	s := Summary{Mean: mean, StdDev: stdDev, N: n}
	if mean != 0 {
		s.CV = stdDev / math.Abs(mean)
	}
	return s
}
