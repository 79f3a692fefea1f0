package numeric

import (
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// DiscreteDistribution draws indices into a weight vector with probability
// proportional to their weight. All-zero weights fall back to a uniform
// distribution over the same length so sampling always remains defined;
// negative weights are rejected at construction.
type DiscreteDistribution struct {
	cat distuv.Categorical
	n   int
}

// NewDiscreteDistribution builds a sampler over weights. A zero-sum weight
// vector is treated as uniform.
func NewDiscreteDistribution(weights []float64, src rand.Source) (*DiscreteDistribution, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("discrete distribution: empty weight vector")
	}
	sum := 0.0
	for _, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("discrete distribution: negative weight %v", w)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("discrete distribution: non-finite weight %v", w)
		}
		sum += w
	}
	use := weights
	if math.Abs(sum) < EPSILON {
		use = make([]float64, len(weights))
		for i := range use {
			use[i] = 1.0
		}
	}
	return &DiscreteDistribution{
		cat: distuv.NewCategorical(use, src),
		n:   len(weights),
	}, nil
}

// Generate draws a single index in [0, n).
func (d *DiscreteDistribution) Generate() int {
	return int(d.cat.Rand())
}

// Len reports the number of categories.
func (d *DiscreteDistribution) Len() int { return d.n }
