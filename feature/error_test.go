package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorSingleNucleotideLikelihood(t *testing.T) {
	f, err := NewErrorSingleNucleotide(0.1)
	require.NoError(t, err)
	got := f.LogLikelihood(1, 4)
	want := math.Log2(0.1) + 3*math.Log2(0.9)
	assert.InDelta(t, want, got, 1e-12)
}

func TestErrorSingleNucleotideRejectsBadRate(t *testing.T) {
	_, err := NewErrorSingleNucleotide(1.5)
	assert.Error(t, err)
}

func TestErrorSingleNucleotideCleanup(t *testing.T) {
	f, err := NewErrorSingleNucleotide(0.5)
	require.NoError(t, err)
	f.DirtyUpdate(1, 10, 1)
	f.DirtyUpdate(2, 10, 1)
	cleaned, err := f.Cleanup()
	require.NoError(t, err)
	assert.InDelta(t, 3.0/20.0, cleaned.Rate(), 1e-12)
}

func TestErrorSingleNucleotideCleanupNoEvidenceKeepsRate(t *testing.T) {
	f, err := NewErrorSingleNucleotide(0.05)
	require.NoError(t, err)
	cleaned, err := f.Cleanup()
	require.NoError(t, err)
	assert.Equal(t, 0.05, cleaned.Rate())
}

func TestAverageErrorSingleNucleotide(t *testing.T) {
	a, _ := NewErrorSingleNucleotide(0.1)
	b, _ := NewErrorSingleNucleotide(0.3)
	avg, err := AverageErrorSingleNucleotide([]*ErrorSingleNucleotide{a, b})
	require.NoError(t, err)
	assert.InDelta(t, 0.2, avg.Rate(), 1e-12)
}
