package diagnostics

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdjinfer/model"
	"vdjinfer/vdj"
)

func buildDiagnosticsModel() *model.Model {
	uniformRow := [4]float64{0.25, 0.25, 0.25, 0.25}
	var markov [4][4]float64
	for i := range markov {
		markov[i] = uniformRow
	}
	return &model.Model{
		VGenes: []model.Gene{{Name: "V1"}, {Name: "V2"}},
		DGenes: []model.Gene{{Name: "D1"}},
		JGenes: []model.Gene{{Name: "J1"}, {Name: "J2"}},

		PV:          []float64{0.4, 0.6},
		PDJ:         [][]float64{{0.5, 0.5}},
		PDelVGivenV: [][]float64{{1, 1}},
		PDelJGivenJ: [][]float64{{1, 1}},
		PDelD3DelD5: [][][]float64{{{0.25, 0.25}, {0.25, 0.25}}},

		PInsVD: []float64{0.5, 0.5},
		PInsDJ: []float64{0.5, 0.5},

		FirstNtBiasInsVD: uniformRow,
		FirstNtBiasInsDJ: uniformRow,

		MarkovCoefficientsVD: markov,
		MarkovCoefficientsDJ: markov,

		ErrorRate: 0.01,
	}
}

func TestVUsageSVGRendersSVGDocument(t *testing.T) {
	m := buildDiagnosticsModel()
	f, err := vdj.New(m)
	require.NoError(t, err)

	svg, err := VUsageSVG(f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(svg, "<svg"))
	assert.True(t, strings.Contains(svg, "V Gene Usage"))
}

func TestJUsageSVGRendersSVGDocument(t *testing.T) {
	m := buildDiagnosticsModel()
	f, err := vdj.New(m)
	require.NoError(t, err)

	svg, err := JUsageSVG(f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(svg, "<svg"))
}

func TestInsertionLengthSVGRendersSVGDocument(t *testing.T) {
	m := buildDiagnosticsModel()
	f, err := vdj.New(m)
	require.NoError(t, err)

	svg, err := InsertionLengthSVG("VD", f.InsVD)
	require.NoError(t, err)
	assert.True(t, strings.Contains(svg, "<svg"))
}

func TestDeletionProfileSVGRejectsOutOfRangeGene(t *testing.T) {
	m := buildDiagnosticsModel()
	f, err := vdj.New(m)
	require.NoError(t, err)

	_, err = DeletionProfileSVG(5, f)
	assert.Error(t, err)
}

func TestDeletionProfileSVGRendersSVGDocument(t *testing.T) {
	m := buildDiagnosticsModel()
	f, err := vdj.New(m)
	require.NoError(t, err)

	svg, err := DeletionProfileSVG(0, f)
	require.NoError(t, err)
	assert.True(t, strings.Contains(svg, "<svg"))
}
