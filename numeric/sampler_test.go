package numeric

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscreteDistributionAllZeroIsUniform(t *testing.T) {
	// scenario 5 from spec §8: DiscreteDistribution::new(vec![0., 0., 0.])
	// is defined and each index has empirical probability 1/3 ± error.
	d, err := NewDiscreteDistribution([]float64{0, 0, 0}, rand.NewSource(1))
	require.NoError(t, err)

	counts := make([]int, 3)
	const draws = 30000
	for i := 0; i < draws; i++ {
		counts[d.Generate()]++
	}
	for _, c := range counts {
		assert.InDelta(t, 1.0/3, float64(c)/draws, 0.02)
	}
}

func TestDiscreteDistributionRejectsNegative(t *testing.T) {
	_, err := NewDiscreteDistribution([]float64{1, -0.5}, rand.NewSource(1))
	assert.Error(t, err)
}

func TestDiscreteDistributionRespectsWeights(t *testing.T) {
	d, err := NewDiscreteDistribution([]float64{0, 1, 0}, rand.NewSource(1))
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		assert.Equal(t, 1, d.Generate())
	}
}
