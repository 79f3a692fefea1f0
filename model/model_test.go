package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validModel() *Model {
	return &Model{
		VGenes: []Gene{{Name: "V1", Seq: "ACGTACGTAC"}},
		DGenes: []Gene{{Name: "D1", Seq: "ACGTACGT"}},
		JGenes: []Gene{{Name: "J1", Seq: "ACGTACGTAC"}},
		PV:     []float64{1},
		PDJ:    [][]float64{{1}},
		PDelVGivenV: [][]float64{
			{0.5},
			{0.5},
		},
		PDelJGivenJ: [][]float64{
			{1},
		},
		PDelD3DelD5: [][][]float64{
			{{1}},
		},
		PInsVD:               []float64{0.5, 0.5},
		PInsDJ:               []float64{1},
		FirstNtBiasInsVD:     [4]float64{0.25, 0.25, 0.25, 0.25},
		FirstNtBiasInsDJ:     [4]float64{0.25, 0.25, 0.25, 0.25},
		MarkovCoefficientsVD: [4][4]float64{{0.25, 0.25, 0.25, 0.25}, {0.25, 0.25, 0.25, 0.25}, {0.25, 0.25, 0.25, 0.25}, {0.25, 0.25, 0.25, 0.25}},
		MarkovCoefficientsDJ: [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}},
		ErrorRate:            0.01,
	}
}

func TestModelValidateAccepts(t *testing.T) {
	require.NoError(t, validModel().Validate())
}

func TestModelValidateRejectsBadErrorRate(t *testing.T) {
	m := validModel()
	m.ErrorRate = 1.0
	assert.Error(t, m.Validate())
}

func TestModelValidateRejectsUnnormalizedPV(t *testing.T) {
	m := validModel()
	m.PV = []float64{0.5}
	assert.Error(t, m.Validate())
}

func TestModelValidateRejectsNonStochasticMarkovRow(t *testing.T) {
	m := validModel()
	m.MarkovCoefficientsVD[0] = [4]float64{0.5, 0.5, 0.5, 0}
	assert.Error(t, m.Validate())
}

func TestModelValidateAllowsAllZeroMarkovRow(t *testing.T) {
	m := validModel()
	m.MarkovCoefficientsVD[0] = [4]float64{0, 0, 0, 0}
	assert.NoError(t, m.Validate())
}
