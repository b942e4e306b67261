package stats

import "math"

// DefaultAmountTolerance is the relative distance an amount may sit from a
// cluster's running average and still join that cluster.
const DefaultAmountTolerance = 0.10

// Cluster is a group of amounts that all fell within tolerance of the
// cluster's running average at the time they were added. Members are indexes
// into the input slice so callers can map back to their source records.
type Cluster struct {
	Members []int
	Values  []float64
	Average float64
}

// ClusterAmounts partitions values with a greedy single pass: each value
// joins the first existing cluster (in creation order) whose running average
// is within the relative tolerance, updating that average as a simple mean;
// otherwise it opens a new cluster. Insertion order affects the exact
// partition, which is acceptable for this engine: the post-hoc guarantee is
// that every member was within tolerance of its cluster average when added.
// Tolerance <= 0 falls back to DefaultAmountTolerance.
func ClusterAmounts(values []float64, tolerance float64) []*Cluster {
	if tolerance <= 0 {
		tolerance = DefaultAmountTolerance
	}

	var clusters []*Cluster
	for i, v := range values {
		placed := false
		for _, c := range clusters {
			if withinTolerance(v, c.Average, tolerance) {
				c.Members = append(c.Members, i)
				c.Values = append(c.Values, v)
				c.Average = mean(c.Values)
				placed = true
				break
			}
		}
		if !placed {
			clusters = append(clusters, &Cluster{
				Members: []int{i},
				Values:  []float64{v},
				Average: v,
			})
		}
	}
	return clusters
}

// FilterClusters drops clusters with fewer than minSize members.
func FilterClusters(clusters []*Cluster, minSize int) []*Cluster {
	if minSize <= 1 {
		return clusters
	}
	kept := clusters[:0:0]
	for _, c := range clusters {
		if len(c.Members) >= minSize {
			kept = append(kept, c)
		}
	}
	return kept
}

func withinTolerance(value, reference, tolerance float64) bool {
	if reference == 0 {
		return value == 0
	}
	return math.Abs(value-reference)/math.Abs(reference) <= tolerance
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
