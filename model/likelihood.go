package model

import (
	"fmt"
	"math"
)

// LikelihoodType selects whether Features evaluate to a plain scalar
// likelihood (Known) or to a length-K vector over ambiguous-nucleotide
// interpretations (Ambiguous), per InferenceParameters.LikelihoodType.
type LikelihoodType int

const (
	LikelihoodKnown LikelihoodType = iota
	LikelihoodAmbiguous
)

// Likelihood is a tagged value that is either a scalar or a vector over
// ambiguous-nucleotide interpretations. Callers that assume scalarity call
// ToScalar and must be prepared for it to report ok=false. The vdj
// aggregated-feature pipeline does not use this type; it works on plain
// float64 values.
type Likelihood struct {
	typ    LikelihoodType
	scalar float64
	vector []float64
}

// Zero returns the zero likelihood of the given type.
func Zero(t LikelihoodType) Likelihood {
	return Likelihood{typ: t}
}

// Scalar wraps a plain float64 likelihood.
func Scalar(v float64) Likelihood {
	return Likelihood{typ: LikelihoodKnown, scalar: v}
}

// Vector wraps a length-K vector of per-interpretation likelihoods.
func Vector(v []float64) Likelihood {
	return Likelihood{typ: LikelihoodAmbiguous, vector: v}
}

// Type reports which representation this value holds.
func (l Likelihood) Type() LikelihoodType { return l.typ }

// IsZero reports whether every component of the likelihood is zero.
func (l Likelihood) IsZero() bool {
	if l.typ == LikelihoodKnown {
		return l.scalar == 0
	}
	for _, v := range l.vector {
		if v != 0 {
			return false
		}
	}
	return true
}

// Max returns the largest component: the scalar itself, or the maximum
// over the ambiguous-interpretation vector.
func (l Likelihood) Max() float64 {
	if l.typ == LikelihoodKnown {
		return l.scalar
	}
	m := math.Inf(-1)
	for _, v := range l.vector {
		if v > m {
			m = v
		}
	}
	if math.IsInf(m, -1) {
		return 0
	}
	return m
}

// ToScalar returns the scalar value and true, or (0, false) if this
// Likelihood is a vector.
func (l Likelihood) ToScalar() (float64, bool) {
	if l.typ != LikelihoodKnown {
		return 0, false
	}
	return l.scalar, true
}

// MustScalar panics if l is not scalar; for callers that assert
// scalarity.
func (l Likelihood) MustScalar() float64 {
	v, ok := l.ToScalar()
	if !ok {
		panic(fmt.Sprintf("likelihood: expected scalar, got vector of length %d", len(l.vector)))
	}
	return v
}

// Add returns l + other component-wise (the += operator of spec §3).
func (l Likelihood) Add(other Likelihood) Likelihood {
	if l.typ == LikelihoodKnown && other.typ == LikelihoodKnown {
		return Scalar(l.scalar + other.scalar)
	}
	a, b := l.asVector(), other.asVector()
	n := maxInt(len(a), len(b))
	out := make([]float64, n)
	for i := range out {
		var av, bv float64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av + bv
	}
	return Vector(out)
}

// Mul returns l * other component-wise (the * operator of spec §3). A
// scalar times a vector scales every component.
func (l Likelihood) Mul(other Likelihood) Likelihood {
	if l.typ == LikelihoodKnown && other.typ == LikelihoodKnown {
		return Scalar(l.scalar * other.scalar)
	}
	if l.typ == LikelihoodKnown {
		out := make([]float64, len(other.vector))
		for i, v := range other.vector {
			out[i] = l.scalar * v
		}
		return Vector(out)
	}
	if other.typ == LikelihoodKnown {
		out := make([]float64, len(l.vector))
		for i, v := range l.vector {
			out[i] = v * other.scalar
		}
		return Vector(out)
	}
	n := maxInt(len(l.vector), len(other.vector))
	out := make([]float64, n)
	for i := range out {
		var av, bv float64
		if i < len(l.vector) {
			av = l.vector[i]
		}
		if i < len(other.vector) {
			bv = other.vector[i]
		}
		out[i] = av * bv
	}
	return Vector(out)
}

// MulScalar scales every component by c.
func (l Likelihood) MulScalar(c float64) Likelihood {
	if l.typ == LikelihoodKnown {
		return Scalar(l.scalar * c)
	}
	out := make([]float64, len(l.vector))
	for i, v := range l.vector {
		out[i] = v * c
	}
	return Vector(out)
}

func (l Likelihood) asVector() []float64 {
	if l.typ == LikelihoodAmbiguous {
		return l.vector
	}
	return []float64{l.scalar}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Likelihood1DContainer accumulates Likelihood values over a coordinate
// interval [Min, MaxIdx), indexed by a free coordinate (spec §3). The vdj
// aggregated features keep their per-read tables in numeric.RangeArray1/2
// instead.
type Likelihood1DContainer struct {
	min, maxIdx int64
	typ         LikelihoodType
	vecLen      int
	scalars     []float64
	vectors     [][]float64
}

// NewLikelihood1DContainerZeros allocates a zeroed container over
// [min, maxIdx). vecLen is only meaningful when typ is LikelihoodAmbiguous.
func NewLikelihood1DContainerZeros(min, maxIdx int64, typ LikelihoodType, vecLen int) *Likelihood1DContainer {
	n := maxIdx - min
	if n < 0 {
		n = 0
	}
	c := &Likelihood1DContainer{min: min, maxIdx: maxIdx, typ: typ, vecLen: vecLen}
	if typ == LikelihoodKnown {
		c.scalars = make([]float64, n)
	} else {
		c.vectors = make([][]float64, n)
		for i := range c.vectors {
			c.vectors[i] = make([]float64, vecLen)
		}
	}
	return c
}

// Min returns the inclusive lower bound of the container's range.
func (c *Likelihood1DContainer) Min() int64 { return c.min }

// MaxIdx returns the exclusive upper bound of the container's range.
func (c *Likelihood1DContainer) MaxIdx() int64 { return c.maxIdx }

// Dim returns (Min, MaxIdx).
func (c *Likelihood1DContainer) Dim() (int64, int64) { return c.min, c.maxIdx }

// AddTo accumulates l into the value at index i.
func (c *Likelihood1DContainer) AddTo(i int64, l Likelihood) {
	off := i - c.min
	if c.typ == LikelihoodKnown {
		v, _ := l.ToScalar()
		c.scalars[off] += v
	} else {
		vec := l.asVector()
		for j := 0; j < len(c.vectors[off]) && j < len(vec); j++ {
			c.vectors[off][j] += vec[j]
		}
	}
}

// Get returns the accumulated Likelihood at index i.
func (c *Likelihood1DContainer) Get(i int64) Likelihood {
	off := i - c.min
	if c.typ == LikelihoodKnown {
		return Scalar(c.scalars[off])
	}
	return Vector(c.vectors[off])
}
