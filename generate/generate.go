// Package generate implements the ancestral-sampling generative model of
// spec §4.4: drawing a full V(D)J recombination event from a Model's
// marginals and splicing the resulting segments into a CDR3.
package generate

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
	"vdjinfer/vdj"
)

// GenerationResult is one sampled recombination, per spec §6.
type GenerationResult struct {
	CDR3Nt             string
	CDR3Aa             *string
	FullSeq            string
	VGene              string
	JGene              string
	RecombinationEvent *vdj.StaticEvent
}

// Generator draws GenerationResults from a fixed Model. It is deterministic
// given a seed and otherwise seeded from OS entropy (spec §6).
type Generator struct {
	model *model.Model
	insVD *feature.InsertionFeature
	insDJ *feature.InsertionFeature
	rng   *rand.Rand
}

// New validates m and builds a Generator. A nil seed seeds from OS entropy
// (crypto/rand); a non-nil seed makes every draw reproducible.
func New(m *model.Model, seed *int64) (*Generator, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	insVD, err := feature.NewInsertionFeature(m.PInsVD, m.FirstNtBiasInsVD, m.MarkovCoefficientsVD)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	insDJ, err := feature.NewInsertionFeature(m.PInsDJ, m.FirstNtBiasInsDJ, m.MarkovCoefficientsDJ)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	var s int64
	if seed != nil {
		s = *seed
	} else {
		var b [8]byte
		if _, err := cryptorand.Read(b[:]); err != nil {
			return nil, fmt.Errorf("generate: seed: %w", err)
		}
		s = int64(binary.LittleEndian.Uint64(b[:]))
	}
	return &Generator{model: m, insVD: insVD, insDJ: insDJ, rng: rand.New(rand.NewSource(s))}, nil
}

// maxRejectionAttempts bounds the rejection-sampling loop for
// Generate(functional=true); a model with no in-frame, stop-codon-free CDR3
// at all would otherwise loop forever.
const maxRejectionAttempts = 10000

// Generate draws one recombination event. When functional is set, it
// rejection-samples until the CDR3 is in-frame and free of internal stop
// codons (spec §4.4, §6).
func (g *Generator) Generate(functional bool) (*GenerationResult, error) {
	for attempt := 0; attempt < maxRejectionAttempts; attempt++ {
		res, err := g.sampleOnce()
		if err != nil {
			return nil, err
		}
		aa, inFrame := Translate(res.CDR3Nt)
		if inFrame {
			res.CDR3Aa = &aa
		}
		if !functional || (inFrame && !hasStopCodon(aa)) {
			return res, nil
		}
	}
	return nil, fmt.Errorf("generate: no functional CDR3 found within %d attempts", maxRejectionAttempts)
}

func (g *Generator) sampleOnce() (*GenerationResult, error) {
	m := g.model

	djFlat, nJ := flattenDJ(m.PDJ)
	djDist, err := newDist(djFlat, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: p_dj: %w", err)
	}
	djIdx := djDist.Generate()
	dIndex, jIndex := djIdx/nJ, djIdx%nJ

	vDist, err := newDist(m.PV, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: p_v: %w", err)
	}
	vIndex := vDist.Generate()

	delV, err := sampleColumn(m.PDelVGivenV, vIndex, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: p_del_v_given_v: %w", err)
	}
	delJ, err := sampleColumn(m.PDelJGivenJ, jIndex, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: p_del_j_given_j: %w", err)
	}

	if dIndex < 0 || dIndex >= len(m.PDelD3DelD5) {
		return nil, fmt.Errorf("generate: d gene index %d out of range", dIndex)
	}
	ddFlat, nDelD5 := flattenDJ(m.PDelD3DelD5[dIndex])
	ddDist, err := newDist(ddFlat, g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: p_del_d3_del_d5: %w", err)
	}
	ddIdx := ddDist.Generate()
	delD3, delD5 := ddIdx/nDelD5, ddIdx%nDelD5

	insVD, err := g.insVD.GenerateSequence(g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: ins_vd: %w", err)
	}
	insDJ, err := g.insDJ.GenerateSequence(g.rng)
	if err != nil {
		return nil, fmt.Errorf("generate: ins_dj: %w", err)
	}

	vGene := m.VGenes[vIndex]
	dGene := m.DGenes[dIndex]
	jGene := m.JGenes[jIndex]

	vStart := 0
	if vGene.CDR3Pos != nil {
		vStart = *vGene.CDR3Pos
	}
	vEnd := len(vGene.Seq) - delV
	if vEnd < vStart {
		vEnd = vStart
	}
	vTrimmed := vGene.Seq[vStart:vEnd]

	dStart := delD5
	dEnd := len(dGene.Seq) - delD3
	if dEnd < dStart {
		dEnd = dStart
	}
	dTrimmed := dGene.Seq[dStart:dEnd]

	jTrimmed := jGene.Seq[minInt(delJ, len(jGene.Seq)):]

	cdr3 := vTrimmed + indexBytesToString(insVD) + dTrimmed + indexBytesToString(insDJ) + jTrimmed
	cdr3 = applyErrors(cdr3, m.ErrorRate, g.rng)

	event := &vdj.StaticEvent{
		VIndex: vIndex, DIndex: dIndex, JIndex: jIndex,
		DelV: delV, DelJ: delJ,
		DelD5: delD5, DelD3: delD3,
		InsVD: insVD, InsDJ: insDJ,
	}
	return &GenerationResult{
		CDR3Nt:             cdr3,
		FullSeq:            cdr3,
		VGene:              vGene.Name,
		JGene:              jGene.Name,
		RecombinationEvent: event,
	}, nil
}

// Rebuild reconstructs the CDR3 nucleotide string an InfEvent/StaticEvent
// corresponds to, without resampling, used by the generation round-trip
// test of spec §8.
func Rebuild(m *model.Model, ev *vdj.StaticEvent) (string, error) {
	if ev.VIndex < 0 || ev.VIndex >= len(m.VGenes) {
		return "", fmt.Errorf("rebuild: v index %d out of range", ev.VIndex)
	}
	if ev.DIndex < 0 || ev.DIndex >= len(m.DGenes) {
		return "", fmt.Errorf("rebuild: d index %d out of range", ev.DIndex)
	}
	if ev.JIndex < 0 || ev.JIndex >= len(m.JGenes) {
		return "", fmt.Errorf("rebuild: j index %d out of range", ev.JIndex)
	}
	vGene := m.VGenes[ev.VIndex]
	dGene := m.DGenes[ev.DIndex]
	jGene := m.JGenes[ev.JIndex]

	vStart := 0
	if vGene.CDR3Pos != nil {
		vStart = *vGene.CDR3Pos
	}
	vEnd := len(vGene.Seq) - ev.DelV
	if vEnd < vStart {
		vEnd = vStart
	}
	dStart := ev.DelD5
	dEnd := len(dGene.Seq) - ev.DelD3
	if dEnd < dStart {
		dEnd = dStart
	}
	jStart := minInt(ev.DelJ, len(jGene.Seq))

	return vGene.Seq[vStart:vEnd] + indexBytesToString(ev.InsVD) + dGene.Seq[dStart:dEnd] + indexBytesToString(ev.InsDJ) + jGene.Seq[jStart:], nil
}

func flattenDJ(rows [][]float64) ([]float64, int) {
	if len(rows) == 0 {
		return nil, 0
	}
	nCols := len(rows[0])
	out := make([]float64, 0, len(rows)*nCols)
	for _, r := range rows {
		out = append(out, r...)
	}
	return out, nCols
}

func newDist(weights []float64, rng *rand.Rand) (*numeric.DiscreteDistribution, error) {
	return numeric.NewDiscreteDistribution(weights, rng)
}

func sampleColumn(table [][]float64, col int, rng *rand.Rand) (int, error) {
	weights := make([]float64, len(table))
	for i, row := range table {
		if col < 0 || col >= len(row) {
			return 0, fmt.Errorf("sample column: column %d out of range", col)
		}
		weights[i] = row[col]
	}
	d, err := newDist(weights, rng)
	if err != nil {
		return 0, err
	}
	return d.Generate(), nil
}

func indexBytesToString(idx []byte) string {
	out := make([]byte, len(idx))
	for i, b := range idx {
		out[i] = model.IndexNucleotide(int(b))
	}
	return string(out)
}

func applyErrors(seq string, rate float64, rng *rand.Rand) string {
	if rate == 0 {
		return seq
	}
	out := []byte(seq)
	for i := range out {
		if rng.Float64() < rate {
			out[i] = model.Nucleotides[rng.Intn(4)]
		}
	}
	return string(out)
}

func hasStopCodon(aa string) bool {
	for i := 0; i < len(aa); i++ {
		if aa[i] == '*' {
			return true
		}
	}
	return false
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
