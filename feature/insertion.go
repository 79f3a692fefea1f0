package feature

import (
	"fmt"
	"math"
	"math/rand"

	"vdjinfer/numeric"
)

// InsertionFeature models a run of N-nucleotides inserted at a junction
// (VD or DJ): a length distribution, a bias on the first inserted base, and
// a 4x4 Markov chain governing every subsequent base. Likelihood factorizes
// as
//
//	p(s) = p_len(|s|) * p_first(s[0]) * prod_i T(s[i-1], s[i])
//
// with the empty insertion's likelihood equal to p_len(0).
type InsertionFeature struct {
	lengthProbas []float64   // p_len, indexed by insertion length
	firstNt      [4]float64  // p_first, indexed by model.NucleotideIndex
	transition   [4][4]float64 // T[from][to], each row sums to 1 (or is all-zero)

	dirtyLength []float64
	dirtyFirst  [4]float64
	dirtyTrans  [4][4]float64
}

// NewInsertionFeature validates the three tables and returns a Fresh
// feature.
func NewInsertionFeature(lengthProbas []float64, firstNt [4]float64, transition [4][4]float64) (*InsertionFeature, error) {
	if !numeric.SumsToOne(lengthProbas) {
		return nil, fmt.Errorf("insertion feature: length distribution does not sum to 1")
	}
	if !numeric.SumsToOne(firstNt[:]) {
		return nil, fmt.Errorf("insertion feature: first-nucleotide bias does not sum to 1")
	}
	for i, row := range transition {
		if !numeric.SumsToOne(row[:]) {
			return nil, fmt.Errorf("insertion feature: transition row %d does not sum to 1", i)
		}
	}
	return &InsertionFeature{
		lengthProbas: append([]float64(nil), lengthProbas...),
		firstNt:      firstNt,
		transition:   transition,
		dirtyLength:  make([]float64, len(lengthProbas)),
	}, nil
}

// MaxNbInsertions is the largest insertion length this feature assigns any
// mass to, or 0 if the length distribution carries no mass at all.
func (f *InsertionFeature) MaxNbInsertions() int {
	for n := len(f.lengthProbas) - 1; n >= 0; n-- {
		if f.lengthProbas[n] > 0 {
			return n
		}
	}
	return 0
}

// LengthDistribution returns p_len, indexed by insertion length. Used by
// diagnostics to plot post-cleanup insertion length profiles.
func (f *InsertionFeature) LengthDistribution() []float64 {
	return append([]float64(nil), f.lengthProbas...)
}

// LogLikelihood evaluates a nucleotide-index-encoded sequence (bytes 0..3,
// the same convention as model.Sequence.Read).
func (f *InsertionFeature) LogLikelihood(seq []byte) float64 {
	n := len(seq)
	if n >= len(f.lengthProbas) {
		return math.Inf(-1)
	}
	ll := log2(f.lengthProbas[n])
	if n == 0 {
		return ll
	}
	first := seq[0]
	if first > 3 {
		return math.Inf(-1)
	}
	ll += log2(f.firstNt[first])
	prev := first
	for i := 1; i < n; i++ {
		cur := seq[i]
		if cur > 3 {
			return math.Inf(-1)
		}
		ll += log2(f.transition[prev][cur])
		prev = cur
	}
	return ll
}

// Likelihood is exp2(LogLikelihood(seq)).
func (f *InsertionFeature) Likelihood(seq []byte) float64 {
	return math.Exp2(f.LogLikelihood(seq))
}

// DirtyUpdate accumulates mass for an observed (or expected, fractional)
// insertion of the given index-encoded sequence.
func (f *InsertionFeature) DirtyUpdate(seq []byte, mass float64) {
	n := len(seq)
	if n < len(f.dirtyLength) {
		f.dirtyLength[n] += mass
	}
	if n == 0 {
		return
	}
	first := seq[0]
	if first > 3 {
		return
	}
	f.dirtyFirst[first] += mass
	prev := first
	for i := 1; i < n; i++ {
		cur := seq[i]
		if cur > 3 {
			return
		}
		f.dirtyTrans[prev][cur] += mass
		prev = cur
	}
}

// Cleanup renormalizes every dirty accumulator into the next iteration's
// feature.
func (f *InsertionFeature) Cleanup() (*InsertionFeature, error) {
	lengths, err := numeric.NormalizeDistribution1(f.dirtyLength)
	if err != nil {
		return nil, fmt.Errorf("insertion feature cleanup length: %w", err)
	}
	firstFlat, err := numeric.NormalizeDistribution1(f.dirtyFirst[:])
	if err != nil {
		return nil, fmt.Errorf("insertion feature cleanup first nucleotide: %w", err)
	}
	var first [4]float64
	copy(first[:], firstFlat)

	transRows := make([][]float64, 4)
	for i := range f.dirtyTrans {
		transRows[i] = f.dirtyTrans[i][:]
	}
	normedTrans, err := numeric.NormalizeTransitionMatrix(transRows)
	if err != nil {
		return nil, fmt.Errorf("insertion feature cleanup transition: %w", err)
	}
	var trans [4][4]float64
	for i, row := range normedTrans {
		copy(trans[i][:], row)
	}

	return &InsertionFeature{
		lengthProbas: lengths,
		firstNt:      first,
		transition:   trans,
		dirtyLength:  make([]float64, len(lengths)),
	}, nil
}

// AverageInsertionFeature returns the elementwise mean of several
// independently-accumulated shards.
func AverageInsertionFeature(fs []*InsertionFeature) (*InsertionFeature, error) {
	if len(fs) == 0 {
		return nil, fmt.Errorf("insertion feature average: empty input")
	}
	n := float64(len(fs))
	maxLen := len(fs[0].lengthProbas)
	lengths := make([]float64, maxLen)
	var first [4]float64
	var trans [4][4]float64
	for _, f := range fs {
		for i, v := range f.lengthProbas {
			lengths[i] += v / n
		}
		for i, v := range f.firstNt {
			first[i] += v / n
		}
		for i, row := range f.transition {
			for j, v := range row {
				trans[i][j] += v / n
			}
		}
	}
	return &InsertionFeature{
		lengthProbas: lengths,
		firstNt:      first,
		transition:   trans,
		dirtyLength:  make([]float64, maxLen),
	}, nil
}

// InitialDistribution returns the steady-state nucleotide distribution of
// the transition matrix, used to seed generation when no explicit initial
// bias is requested.
func (f *InsertionFeature) InitialDistribution() ([]float64, error) {
	rows := make([][]float64, 4)
	for i, row := range f.transition {
		rows[i] = append([]float64(nil), row[:]...)
	}
	return numeric.SteadyState(rows)
}

// allZero reports whether every weight is exactly zero, the degenerate
// "not provided" encoding numeric.SumsToOne also treats as valid.
func allZero(weights []float64) bool {
	for _, w := range weights {
		if w != 0 {
			return false
		}
	}
	return true
}

// GenerateSequence draws a random insertion from this feature's length,
// first-base, and Markov tables, index-encoded (bytes 0..3) exactly like
// model.Sequence.Read. Callers needing a human-readable string convert with
// model.IndexNucleotide.
func (f *InsertionFeature) GenerateSequence(src rand.Source) ([]byte, error) {
	lenDist, err := numeric.NewDiscreteDistribution(f.lengthProbas, src)
	if err != nil {
		return nil, fmt.Errorf("insertion feature generate: %w", err)
	}
	n := lenDist.Generate()
	if n == 0 {
		return []byte{}, nil
	}
	initial := f.firstNt[:]
	if allZero(initial) {
		initial, err = f.InitialDistribution()
		if err != nil {
			return nil, fmt.Errorf("insertion feature generate: %w", err)
		}
	}
	firstDist, err := numeric.NewDiscreteDistribution(initial, src)
	if err != nil {
		return nil, fmt.Errorf("insertion feature generate: %w", err)
	}
	out := make([]byte, n)
	idx := firstDist.Generate()
	out[0] = byte(idx)
	for i := 1; i < n; i++ {
		transDist, err := numeric.NewDiscreteDistribution(f.transition[idx][:], src)
		if err != nil {
			return nil, fmt.Errorf("insertion feature generate: %w", err)
		}
		idx = transDist.Generate()
		out[i] = byte(idx)
	}
	return out, nil
}
