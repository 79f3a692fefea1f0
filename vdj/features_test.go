package vdj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdjinfer/model"
)

// buildTrivialModel returns a single-V/D/J-gene model where every
// conditional table is a 1x1 identity and the error rate is zero, so the
// only recombination event physically possible has likelihood 1 and the
// per-read likelihood should equal the exact product of its marginals
// (the concrete scenario spec §8 calls out for an exhaustive check).
func buildTrivialModel() *model.Model {
	uniformRow := [4]float64{0.25, 0.25, 0.25, 0.25}
	var markov [4][4]float64
	for i := range markov {
		markov[i] = uniformRow
	}
	return &model.Model{
		VGenes: []model.Gene{{Name: "V1"}},
		DGenes: []model.Gene{{Name: "D1"}},
		JGenes: []model.Gene{{Name: "J1"}},

		PV:          []float64{1},
		PDJ:         [][]float64{{1}},
		PDelVGivenV: [][]float64{{1}},
		PDelJGivenJ: [][]float64{{1}},
		PDelD3DelD5: [][][]float64{{{1}}},

		PInsVD: []float64{1},
		PInsDJ: []float64{1},

		FirstNtBiasInsVD: uniformRow,
		FirstNtBiasInsDJ: uniformRow,

		MarkovCoefficientsVD: markov,
		MarkovCoefficientsDJ: markov,

		ErrorRate: 0,
	}
}

// buildTrivialSequence lays V at [0,3), D at [3,5), J at [5,8) in an
// 8-base read with no mismatches against any trim.
func buildTrivialSequence() *model.Sequence {
	read := []byte{0, 1, 2, 3, 0, 1, 2, 3}
	return &model.Sequence{
		Read: read,
		VGenes: []model.VJAlignment{
			{Index: 0, StartSeq: 0, EndSeq: 3, Errors: []int{0}, Read: read},
		},
		JGenes: []model.VJAlignment{
			{Index: 0, StartSeq: 5, EndSeq: 8, Errors: []int{0}, Read: read},
		},
		DGenes: []model.DAlignment{
			{Index: 0, StartSeq: 3, EndSeq: 5, Errors: [][]int{{0}}},
		},
	}
}

func TestInferSingleCandidateEqualsExactProduct(t *testing.T) {
	m := buildTrivialModel()
	f, err := New(m)
	require.NoError(t, err)

	seq := buildTrivialSequence()
	params := model.NewInferenceParameters(1e-12, 1e-12)
	params.InferFeatures = false

	total, bestEvents, err := f.Infer(seq, params)
	require.NoError(t, err)
	assert.Nil(t, bestEvents)
	assert.InDelta(t, 1.0, total, 1e-9)
}

func TestInferStoresBestEvent(t *testing.T) {
	m := buildTrivialModel()
	f, err := New(m)
	require.NoError(t, err)

	seq := buildTrivialSequence()
	params := model.NewInferenceParameters(1e-12, 1e-12)
	params.InferFeatures = false
	params.StoreBestEvent = true

	total, bestEvents, err := f.Infer(seq, params)
	require.NoError(t, err)
	require.Len(t, bestEvents, 1)
	bestEvent := bestEvents[0]
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 0, bestEvent.Event.VIndex)
	assert.Equal(t, 0, bestEvent.Event.DIndex)
	assert.Equal(t, 0, bestEvent.Event.JIndex)
	assert.Equal(t, 0, bestEvent.Event.DelV)
	assert.Equal(t, 0, bestEvent.Event.DelJ)
	assert.Equal(t, 0, bestEvent.Event.DelD5)
	assert.Equal(t, 0, bestEvent.Event.DelD3)
	assert.Empty(t, bestEvent.Event.InsVD)
	assert.Empty(t, bestEvent.Event.InsDJ)
}

func TestInferStoresTopKBestEvents(t *testing.T) {
	m := buildTrivialModel()
	f, err := New(m)
	require.NoError(t, err)

	seq := buildTrivialSequence()
	params := model.NewInferenceParameters(1e-12, 1e-12)
	params.InferFeatures = false
	params.StoreBestEvent = true
	params.NbBestEvents = 5

	_, bestEvents, err := f.Infer(seq, params)
	require.NoError(t, err)
	// The trivial model has exactly one physically possible candidate
	// event, so even asking for 5 best events yields just the one found.
	require.Len(t, bestEvents, 1)
	assert.InDelta(t, 1.0, bestEvents[0].Likelihood, 1e-9)
}

func TestInferAccumulatesDirtyUpdates(t *testing.T) {
	m := buildTrivialModel()
	f, err := New(m)
	require.NoError(t, err)

	seq := buildTrivialSequence()
	params := model.NewInferenceParameters(1e-12, 1e-12)

	total, _, err := f.Infer(seq, params)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, total, 1e-9)

	cleaned, err := f.Cleanup()
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cleaned.PV.Likelihood(0), 1e-9)
	assert.InDelta(t, 1.0, cleaned.PDJ.Likelihood(0, 0), 1e-9)
	assert.InDelta(t, 0.0, cleaned.ErrorRate.Rate(), 1e-9)
}

func TestInferRejectsAmbiguousLikelihoodType(t *testing.T) {
	m := buildTrivialModel()
	f, err := New(m)
	require.NoError(t, err)

	seq := buildTrivialSequence()
	params := model.NewInferenceParameters(1e-12, 1e-12)
	params.LikelihoodType = model.LikelihoodAmbiguous

	_, _, err = f.Infer(seq, params)
	assert.Error(t, err)
}
