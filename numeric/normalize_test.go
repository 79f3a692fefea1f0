package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDistribution1Uniform(t *testing.T) {
	out, err := NormalizeDistribution1([]float64{0, 0, 0})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, out, 1e-12)
}

func TestNormalizeDistribution1Rejects(t *testing.T) {
	_, err := NormalizeDistribution1([]float64{1, -1})
	assert.Error(t, err)
}

func TestNormalizeTransitionMatrixScenario(t *testing.T) {
	// scenario 1 from spec §8, transposed to a row-normalization check:
	// normalizing [[0,2,3],[2,3,3]] along the first axis yields
	// [[0, 0.4, 0.5],[1, 0.6, 0.5]]. Expressed here as per-row
	// normalization of the transpose.
	rows := [][]float64{{0, 2}, {2, 3}, {3, 3}}
	out, err := NormalizeTransitionMatrix(rows)
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{0, 1}, out[0], 1e-12)
	assert.InDeltaSlice(t, []float64{0.4, 0.6}, out[1], 1e-12)
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, out[2], 1e-12)
}

func TestNormalizeTransitionMatrixZeroRowStaysZero(t *testing.T) {
	out, err := NormalizeTransitionMatrix([][]float64{{0, 0}, {1, 1}})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out[0])
	assert.InDeltaSlice(t, []float64{0.5, 0.5}, out[1], 1e-12)
}

func TestNormalizeDistributionDouble3SlicesScenario(t *testing.T) {
	// scenario 2 from spec §8: normalizing [[[0,0],[2,0],[0,0],[0,0]]]
	// double-on-last yields [[[0,0],[1,0],[0,0],[0,0]]].
	slices := [][]float64{{0, 0}, {2, 0}, {0, 0}, {0, 0}}
	out, err := NormalizeDistributionDouble3Slices(slices)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, out[0])
	assert.InDeltaSlice(t, []float64{1, 0}, out[1], 1e-12)
	assert.Equal(t, []float64{0, 0}, out[2])
	assert.Equal(t, []float64{0, 0}, out[3])
}

func TestSumsToOne(t *testing.T) {
	assert.True(t, SumsToOne([]float64{0.5, 0.5}))
	assert.True(t, SumsToOne([]float64{0, 0, 0}))
	assert.False(t, SumsToOne([]float64{0.5, 0.4}))
}
