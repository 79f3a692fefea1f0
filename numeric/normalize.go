// Package numeric provides the distribution-normalization, steady-state,
// sampling, and range-indexed array primitives shared by every feature in
// package feature and by the inference driver in package vdj.
package numeric

import (
	"fmt"
	"math"
)

// EPSILON is the tolerance used throughout the model for "sums to one" and
// convergence checks.
const EPSILON = 1e-10

// NormalizeDistribution1 normalizes a 1-D non-negative weight vector into a
// probability distribution. A zero-sum input yields the uniform distribution
// over the same length (the "marginal" fallback). Negative or non-finite
// entries are rejected.
func NormalizeDistribution1(weights []float64) ([]float64, error) {
	if err := checkFinite(weights); err != nil {
		return nil, err
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]float64, len(weights))
	if math.Abs(sum) < EPSILON {
		u := 1.0 / float64(len(weights))
		for i := range out {
			out[i] = u
		}
		return out, nil
	}
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// NormalizeTransitionMatrix normalizes each row of a row-major 2-D array
// independently. A zero-sum row stays all-zero (the "conditional" fallback,
// meaning "impossible given this condition" rather than "uniform").
func NormalizeTransitionMatrix(rows [][]float64) ([][]float64, error) {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if err := checkFinite(row); err != nil {
			return nil, fmt.Errorf("normalize transition matrix row %d: %w", i, err)
		}
		sum := 0.0
		for _, w := range row {
			sum += w
		}
		out[i] = make([]float64, len(row))
		if math.Abs(sum) < EPSILON {
			continue // row of zeros, stays zero
		}
		for j, w := range row {
			out[i][j] = w / sum
		}
	}
	return out, nil
}

// NormalizeDistributionDouble2 normalizes a flattened 2-D array by its total
// sum (or to uniform if the total is zero). Used for globally-normalized
// joint categoricals such as p(D, J).
func NormalizeDistributionDouble2(weights []float64) ([]float64, error) {
	if err := checkFinite(weights); err != nil {
		return nil, err
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	out := make([]float64, len(weights))
	if math.Abs(sum) < EPSILON {
		u := 1.0 / float64(len(weights))
		for i := range out {
			out[i] = u
		}
		return out, nil
	}
	for i, w := range weights {
		out[i] = w / sum
	}
	return out, nil
}

// NormalizeDistributionDouble3Slices normalizes each slice along the last
// axis of a conceptual 3-D array independently, where slices are passed in
// as a flat list of equal-length vectors (one per value of the conditioning
// index). A zero-sum slice becomes all-zero rather than uniform, matching
// the "impossible given this condition" semantics of conditional joints such
// as p(delD3, delD5 | D).
func NormalizeDistributionDouble3Slices(slices [][]float64) ([][]float64, error) {
	out := make([][]float64, len(slices))
	for i, s := range slices {
		if err := checkFinite(s); err != nil {
			return nil, fmt.Errorf("normalize double-3 slice %d: %w", i, err)
		}
		sum := 0.0
		for _, w := range s {
			sum += w
		}
		out[i] = make([]float64, len(s))
		if math.Abs(sum) < EPSILON {
			continue
		}
		for j, w := range s {
			out[i][j] = w / sum
		}
	}
	return out, nil
}

func checkFinite(weights []float64) error {
	for _, w := range weights {
		if w < 0 {
			return fmt.Errorf("distribution contains a negative value: %v", w)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("distribution contains a non-finite value: %v", w)
		}
	}
	return nil
}

// SumsToOne reports whether weights are all non-negative and sum to 1
// within EPSILON, or are identically zero. Used by Model.Validate and by
// the feature constructors.
func SumsToOne(weights []float64) bool {
	sum := 0.0
	allZero := true
	for _, w := range weights {
		if w < 0 {
			return false
		}
		if w != 0 {
			allZero = false
		}
		sum += w
	}
	if allZero {
		return true
	}
	return math.Abs(sum-1.0) < EPSILON
}
