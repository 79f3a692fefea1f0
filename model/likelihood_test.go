package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLikelihoodScalarArithmetic(t *testing.T) {
	a := Scalar(0.5)
	b := Scalar(0.25)
	assert.Equal(t, 0.75, a.Add(b).MustScalar())
	assert.Equal(t, 0.125, a.Mul(b).MustScalar())
	assert.False(t, a.IsZero())
	assert.True(t, Zero(LikelihoodKnown).IsZero())
}

func TestLikelihoodVectorMax(t *testing.T) {
	v := Vector([]float64{0.1, 0.9, 0.3})
	assert.Equal(t, 0.9, v.Max())
	_, ok := v.ToScalar()
	assert.False(t, ok)
}

func TestLikelihood1DContainerRoundTrip(t *testing.T) {
	c := NewLikelihood1DContainerZeros(-2, 3, LikelihoodKnown, 0)
	c.AddTo(-1, Scalar(2))
	c.AddTo(-1, Scalar(3))
	assert.Equal(t, 5.0, c.Get(-1).MustScalar())
	assert.Equal(t, 0.0, c.Get(0).MustScalar())
	min, max := c.Dim()
	assert.Equal(t, int64(-2), min)
	assert.Equal(t, int64(3), max)
}
