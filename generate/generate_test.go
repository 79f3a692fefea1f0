package generate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vdjinfer/model"
)

func cdr3Pos(p int) *int { return &p }

func buildGenerationModel() *model.Model {
	uniformRow := [4]float64{0.25, 0.25, 0.25, 0.25}
	var markov [4][4]float64
	for i := range markov {
		markov[i] = uniformRow
	}
	return &model.Model{
		VGenes: []model.Gene{{Name: "V1", Seq: "ACGTACGTACGT", CDR3Pos: cdr3Pos(3)}},
		DGenes: []model.Gene{{Name: "D1", Seq: "GGGGCCCC"}},
		JGenes: []model.Gene{{Name: "J1", Seq: "TTTTAAAACCCC"}},

		PV:          []float64{1},
		PDJ:         [][]float64{{1}},
		PDelVGivenV: [][]float64{{1}, {0}},
		PDelJGivenJ: [][]float64{{1}, {0}},
		PDelD3DelD5: [][][]float64{{{1, 0}, {0, 0}}},

		PInsVD: []float64{1, 0},
		PInsDJ: []float64{1, 0},

		FirstNtBiasInsVD: uniformRow,
		FirstNtBiasInsDJ: uniformRow,

		MarkovCoefficientsVD: markov,
		MarkovCoefficientsDJ: markov,

		ErrorRate: 0,
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	m := buildGenerationModel()
	seed := int64(42)

	g1, err := New(m, &seed)
	require.NoError(t, err)
	r1, err := g1.Generate(false)
	require.NoError(t, err)

	g2, err := New(m, &seed)
	require.NoError(t, err)
	r2, err := g2.Generate(false)
	require.NoError(t, err)

	assert.Equal(t, r1.CDR3Nt, r2.CDR3Nt)
	assert.Equal(t, r1.RecombinationEvent, r2.RecombinationEvent)
}

func TestGenerateRoundTripsThroughRebuild(t *testing.T) {
	m := buildGenerationModel()
	seed := int64(7)
	g, err := New(m, &seed)
	require.NoError(t, err)

	res, err := g.Generate(false)
	require.NoError(t, err)

	rebuilt, err := Rebuild(m, res.RecombinationEvent)
	require.NoError(t, err)
	assert.Equal(t, res.CDR3Nt, rebuilt)

	if res.CDR3Aa != nil {
		aa, inFrame := Translate(res.CDR3Nt)
		require.True(t, inFrame)
		assert.Equal(t, aa, *res.CDR3Aa)
	}
}

func TestTranslateOutOfFrame(t *testing.T) {
	_, inFrame := Translate("ACGTA")
	assert.False(t, inFrame)
}

func TestTranslateKnownCodons(t *testing.T) {
	aa, inFrame := Translate("ATGTTTTAA")
	require.True(t, inFrame)
	assert.Equal(t, "MF*", aa)
}
