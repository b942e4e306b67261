package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterAmounts(t *testing.T) {
	t.Run("homogeneous input yields one cluster", func(t *testing.T) {
		values := []float64{10.0, 10.5, 9.8, 10.2}

		clusters := ClusterAmounts(values, DefaultAmountTolerance)
		require.Len(t, clusters, 1)
		assert.Equal(t, []int{0, 1, 2, 3}, clusters[0].Members)
		assert.InDelta(t, 10.125, clusters[0].Average, 1e-9)
	})

	t.Run("distinct tiers split", func(t *testing.T) {
		values := []float64{9.99, 19.99, 9.99, 19.99, 9.99}

		clusters := ClusterAmounts(values, DefaultAmountTolerance)
		require.Len(t, clusters, 2)
		assert.Equal(t, []int{0, 2, 4}, clusters[0].Members)
		assert.Equal(t, []int{1, 3}, clusters[1].Members)
	})

	t.Run("members stay within tolerance of the final average", func(t *testing.T) {
		values := []float64{50, 52, 48, 51, 49, 100, 102, 98}

		for _, c := range ClusterAmounts(values, DefaultAmountTolerance) {
			for _, v := range c.Values {
				assert.InDelta(t, c.Average, v, c.Average*0.11)
			}
		}
	})

	t.Run("zero tolerance falls back to default", func(t *testing.T) {
		clusters := ClusterAmounts([]float64{10, 10.5}, 0)
		assert.Len(t, clusters, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, ClusterAmounts(nil, DefaultAmountTolerance))
	})
}

func TestFilterClusters(t *testing.T) {
	clusters := ClusterAmounts([]float64{10, 10, 10, 99}, DefaultAmountTolerance)
	require.Len(t, clusters, 2)

	kept := FilterClusters(clusters, 3)
	require.Len(t, kept, 1)
	assert.Len(t, kept[0].Members, 3)
}
