package feature

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformTransition() [4][4]float64 {
	var t [4][4]float64
	for i := range t {
		for j := range t[i] {
			t[i][j] = 0.25
		}
	}
	return t
}

func TestInsertionFeatureEmptyInsertionLikelihood(t *testing.T) {
	f, err := NewInsertionFeature([]float64{0.5, 0.5}, [4]float64{0.25, 0.25, 0.25, 0.25}, uniformTransition())
	require.NoError(t, err)
	assert.Equal(t, math.Log2(0.5), f.LogLikelihood(nil))
}

func TestInsertionFeatureFactorizes(t *testing.T) {
	f, err := NewInsertionFeature([]float64{0, 0, 1}, [4]float64{1, 0, 0, 0}, uniformTransition())
	require.NoError(t, err)
	got := f.LogLikelihood([]byte{0, 1}) // A, C index-encoded
	want := math.Log2(1) + math.Log2(1) + math.Log2(0.25)
	assert.InDelta(t, want, got, 1e-12)
}

func TestInsertionFeatureRejectsBadTables(t *testing.T) {
	_, err := NewInsertionFeature([]float64{0.5, 0.6}, [4]float64{0.25, 0.25, 0.25, 0.25}, uniformTransition())
	assert.Error(t, err)
}

func TestInsertionFeatureCleanupAndGenerate(t *testing.T) {
	f, err := NewInsertionFeature([]float64{0.5, 0.5}, [4]float64{0.25, 0.25, 0.25, 0.25}, uniformTransition())
	require.NoError(t, err)
	f.DirtyUpdate([]byte{}, 4)
	f.DirtyUpdate([]byte{0}, 4)
	cleaned, err := f.Cleanup()
	require.NoError(t, err)
	assert.InDelta(t, 0.5, cleaned.Likelihood([]byte{}), 1e-12)

	seq, err := cleaned.GenerateSequence(rand.NewSource(1))
	require.NoError(t, err)
	assert.True(t, len(seq) <= cleaned.MaxNbInsertions())
}

func TestInsertionFeatureInitialDistributionIsSteadyState(t *testing.T) {
	var trans [4][4]float64
	trans[0] = [4]float64{1, 0, 0, 0}
	trans[1] = [4]float64{1, 0, 0, 0}
	trans[2] = [4]float64{1, 0, 0, 0}
	trans[3] = [4]float64{1, 0, 0, 0}
	f, err := NewInsertionFeature([]float64{1}, [4]float64{0.25, 0.25, 0.25, 0.25}, trans)
	require.NoError(t, err)
	dist, err := f.InitialDistribution()
	require.NoError(t, err)
	// Every row is [1,0,0,0], so M·v = (v0, v0, v0, v0): power iteration
	// from the uniform vector is already at its fixed point.
	assert.InDelta(t, 0.25, dist[0], 1e-6)
}
