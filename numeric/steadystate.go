package numeric

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const maxPowerIterations = 10000

// SteadyState returns the steady-state distribution of a row-stochastic n×n
// transition matrix (given as a slice of n rows) by power
// iteration: v ← normalize(M·v), starting from the uniform vector, until the
// L1 distance between successive iterates falls below EPSILON.
//
// If the matrix normalizes to all-zero (no row carries any mass) the
// zero vector of length n is returned rather than an error, matching the
// "impossible transition" convention used elsewhere in this package.
func SteadyState(rows [][]float64) ([]float64, error) {
	n := len(rows)
	if n == 0 {
		return nil, fmt.Errorf("steady state: empty transition matrix")
	}
	normalized, err := NormalizeTransitionMatrix(rows)
	if err != nil {
		return nil, fmt.Errorf("steady state: %w", err)
	}

	flat := make([]float64, 0, n*n)
	total := 0.0
	for _, row := range normalized {
		flat = append(flat, row...)
		total += floats.Sum(row)
	}
	if total == 0 {
		return make([]float64, n), nil
	}

	m := mat.NewDense(n, n, flat)

	v := make([]float64, n)
	for i := range v {
		v[i] = 1.0 / float64(n)
	}
	cur := mat.NewVecDense(n, v)

	for iter := 0; iter < maxPowerIterations; iter++ {
		next := mat.NewVecDense(n, nil)
		next.MulVec(m, cur)

		sum := mat.Sum(next)
		if sum == 0 {
			return make([]float64, n), nil
		}
		next.ScaleVec(1/sum, next)

		diff := make([]float64, n)
		for i := 0; i < n; i++ {
			diff[i] = next.AtVec(i) - cur.AtVec(i)
		}
		if floats.Norm(diff, 1) < EPSILON {
			out := make([]float64, n)
			for i := 0; i < n; i++ {
				out[i] = next.AtVec(i)
			}
			return out, nil
		}
		cur = next
	}
	return nil, fmt.Errorf("steady state: no suitable eigenvector found after %d iterations", maxPowerIterations)
}
