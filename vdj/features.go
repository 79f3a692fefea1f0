package vdj

import (
	"fmt"
	"math"
	"sort"

	"vdjinfer/feature"
	"vdjinfer/model"
)

// Features is the full trainable parameter set of spec §3, wrapping one
// package-feature object per recombination coordinate, plus the gene
// tables needed to interpret V/D/J indices during inference. It is Fresh
// immediately after New or Cleanup; Infer accumulates dirty updates into
// it (the Evaluating/Dirty states of the spec §4.3 state machine) unless
// InferenceParameters.InferFeatures is false.
type Features struct {
	VGenes []model.Gene
	DGenes []model.Gene
	JGenes []model.Gene

	PV          *feature.CategoricalFeature1
	PDJ         *feature.CategoricalFeature2
	PDelVGivenV *feature.CategoricalFeature1g1
	PDelJGivenJ *feature.CategoricalFeature1g1
	PDelD3DelD5 []*feature.CategoricalFeature2 // one per D gene index
	InsVD       *feature.InsertionFeature
	InsDJ       *feature.InsertionFeature
	ErrorRate   *feature.ErrorSingleNucleotide
}

// New builds a Fresh Features snapshot from a validated Model.
func New(m *model.Model) (*Features, error) {
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	pv, err := feature.NewCategoricalFeature1(m.PV)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	pdj, err := feature.NewCategoricalFeature2(m.PDJ)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	pDelV, err := feature.NewCategoricalFeature1g1(m.PDelVGivenV)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	pDelJ, err := feature.NewCategoricalFeature1g1(m.PDelJGivenJ)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	pDelD3DelD5 := make([]*feature.CategoricalFeature2, len(m.PDelD3DelD5))
	for i, table := range m.PDelD3DelD5 {
		f, err := feature.NewCategoricalFeature2(table)
		if err != nil {
			return nil, fmt.Errorf("vdj features: p_del_d3_del_d5[%d]: %w", i, err)
		}
		pDelD3DelD5[i] = f
	}
	insVD, err := feature.NewInsertionFeature(m.PInsVD, m.FirstNtBiasInsVD, m.MarkovCoefficientsVD)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	insDJ, err := feature.NewInsertionFeature(m.PInsDJ, m.FirstNtBiasInsDJ, m.MarkovCoefficientsDJ)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	errRate, err := feature.NewErrorSingleNucleotide(m.ErrorRate)
	if err != nil {
		return nil, fmt.Errorf("vdj features: %w", err)
	}
	return &Features{
		VGenes: m.VGenes, DGenes: m.DGenes, JGenes: m.JGenes,
		PV: pv, PDJ: pdj, PDelVGivenV: pDelV, PDelJGivenJ: pDelJ,
		PDelD3DelD5: pDelD3DelD5, InsVD: insVD, InsDJ: insDJ, ErrorRate: errRate,
	}, nil
}

// Infer computes the total per-read marginal likelihood of seq under f,
// pushing dirty updates back into f's raw features when
// params.InferFeatures is set (spec §4.3). A read whose candidate
// alignments produce no surviving hypothesis above MinLikelihood
// contributes zero likelihood rather than an error.
func (f *Features) Infer(seq *model.Sequence, params *model.InferenceParameters) (float64, []*InfEvent, error) {
	if params.LikelihoodType != model.LikelihoodKnown {
		return 0, nil, fmt.Errorf("vdj features infer: ambiguous-nucleotide likelihood vectors are not supported by the aggregated-feature pipeline")
	}
	vEntries, err := BuildVEndEntries(seq, f.PV, f.PDelVGivenV, f.ErrorRate, params)
	if err == errNoHypothesis {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, err
	}
	jEntries, err := BuildJStartEntries(seq, f.PDelJGivenJ, f.ErrorRate, params)
	if err == errNoHypothesis {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, err
	}
	dEntries, err := BuildDSpanEntries(seq, f.PDelD3DelD5, f.ErrorRate, params)
	if err == errNoHypothesis {
		return 0, nil, nil
	} else if err != nil {
		return 0, nil, err
	}

	minDEnd, maxDEnd := dSpanEndRange(dEntries)
	minJStart, maxJStart := jStartRangeUnion(jEntries)
	dj := BuildFeatureDJ(seq, f.InsDJ, minDEnd, maxDEnd, minJStart, maxJStart)

	djByIndex := make(map[int]*AggregatedFeatureDJ)
	spanByIndex := make(map[int]*DSpanEntry)
	for _, span := range dEntries {
		spanByIndex[span.DIndex] = span
		if _, ok := djByIndex[span.DIndex]; ok {
			continue
		}
		_, _, dMin1, dMax1 := span.LL.Dim()
		djByIndex[span.DIndex] = BuildAggregatedFeatureDJ(span.DIndex, dMin1, dMax1, jEntries, dj, f.PDJ)
	}
	jByIndex := make(map[int]*JStartEntry)
	for _, je := range jEntries {
		jByIndex[je.JIndex] = je
	}

	startDAndJ := BuildAggregatedFeatureStartDAndJ(dEntries, djByIndex)

	evMin, evMax := vEndRange(vEntries)
	sdMin, sdMax := startDAndJ.LL.Dim()

	type combo struct {
		ev, sd int64
		ll     float64
	}
	var combos []combo
	total := 0.0
	for ev := evMin; ev < evMax; ev++ {
		likelihoodV := totalEndVLikelihood(vEntries, ev)
		if likelihoodV == 0 {
			continue
		}
		maxSd := ev + int64(f.InsVD.MaxNbInsertions())
		lo := ev
		if sdMin > lo {
			lo = sdMin
		}
		hi := maxSd + 1
		if sdMax < hi {
			hi = sdMax
		}
		for sd := lo; sd < hi; sd++ {
			likelihoodStartDAndJ := startDAndJLikelihoodAt(startDAndJ, sd)
			if likelihoodStartDAndJ == 0 {
				continue
			}
			insLL := vdInsertionLogLikelihood(seq, f.InsVD, ev, sd)
			if math.IsInf(insLL, -1) {
				continue
			}
			combined := likelihoodV * math.Exp2(insLL) * likelihoodStartDAndJ
			if combined < params.MinLikelihood {
				continue
			}
			combos = append(combos, combo{ev: ev, sd: sd, ll: combined})
			total += combined
		}
	}

	if params.InferFeatures && total > 0 {
		dirtyEv := map[int64]float64{}
		dirtySd := map[int64]float64{}
		for _, c := range combos {
			posterior := c.ll / total
			dirtyEv[c.ev] += posterior
			dirtySd[c.sd] += posterior
			f.InsVD.DirtyUpdate(seq.GetSubsequence(c.ev, c.sd), posterior)
		}
		for ev, mass := range dirtyEv {
			disaggregateEndV(vEntries, ev, mass, f.PV, f.PDelVGivenV, f.ErrorRate)
		}
		for sd, mass := range dirtySd {
			disaggregateStartDAndJ(startDAndJ, sd, mass, spanByIndex, djByIndex, func(span *DSpanEntry, dStart, dEnd int64, djEntry *AggregatedFeatureDJ, m float64) {
				disaggregateSpanD(span, dStart, dEnd, m, f.PDelD3DelD5, f.ErrorRate)
				disaggregateFeatureDJ(djEntry, dEnd, m, seq, f.InsDJ, f.PDJ, jByIndex, f.PDelJGivenJ, f.ErrorRate)
			})
		}
	}

	var bestEvents []*InfEvent
	if params.StoreBestEvent && len(combos) > 0 {
		ranked := append([]combo(nil), combos...)
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].ll > ranked[j].ll })
		k := params.NbBestEvents
		if k <= 0 {
			k = 1
		}
		if k > len(ranked) {
			k = len(ranked)
		}
		bestEvents = make([]*InfEvent, k)
		for i, c := range ranked[:k] {
			bestEvents[i] = decodeBestEvent(seq, c.ev, c.sd, c.ll, vEntries, spanByIndex, djByIndex, jByIndex)
		}
	}

	if !params.Evaluate {
		return 0, bestEvents, nil
	}
	return total, bestEvents, nil
}

// decodeBestEvent reconstructs the single most probable StaticEvent
// consistent with the winning (ev, sd) coordinate pair, by walking back
// down the aggregation cascade and picking the highest-likelihood raw
// contribution at each step (a MAP decode, not the full posterior).
func decodeBestEvent(seq *model.Sequence, ev, sd int64, ll float64, vEntries []*VEndEntry, spanByIndex map[int]*DSpanEntry, djByIndex map[int]*AggregatedFeatureDJ, jByIndex map[int]*JStartEntry) *InfEvent {
	var vIndex, delV int
	bestV := -1.0
	for _, e := range vEntries {
		for _, c := range e.Contribs {
			if c.ev != ev {
				continue
			}
			if c.ll > bestV {
				bestV, vIndex, delV = c.ll, e.VIndex, c.delV
			}
		}
	}

	var dIndex int
	var dStart, dEnd int64
	bestSpan := -1.0
	for idx, span := range spanByIndex {
		dj, ok := djByIndex[idx]
		if !ok {
			continue
		}
		_, _, min1, max1 := span.LL.Dim()
		for end := min1; end < max1; end++ {
			spanLL := dSpanLikelihoodAt(span, sd, end)
			if spanLL == 0 {
				continue
			}
			combined := spanLL * djLikelihoodAt(dj, end)
			if combined > bestSpan {
				bestSpan, dIndex, dStart, dEnd = combined, idx, sd, end
			}
		}
	}

	var delD3, delD5 int
	if span, ok := spanByIndex[dIndex]; ok {
		best := -1.0
		for _, c := range span.Contribs {
			if c.dStart != dStart || c.dEnd != dEnd {
				continue
			}
			if c.ll > best {
				best, delD3, delD5 = c.ll, c.delD3, c.delD5
			}
		}
	}

	var jIndex int
	var jStart int64
	if dj, ok := djByIndex[dIndex]; ok {
		best := -1.0
		for _, c := range dj.Contribs {
			if c.dEnd != dEnd {
				continue
			}
			if c.ll > best {
				best, jIndex, jStart = c.ll, c.jIndex, c.jStart
			}
		}
	}

	var delJ int
	if je, ok := jByIndex[jIndex]; ok {
		best := -1.0
		for _, c := range je.Contribs {
			if c.sj != jStart {
				continue
			}
			if c.ll > best {
				best, delJ = c.ll, c.delJ
			}
		}
	}

	event := StaticEvent{
		VIndex: vIndex, DIndex: dIndex, JIndex: jIndex,
		DelV: delV, DelJ: delJ,
		DelD5: delD5, DelD3: delD3,
		InsVD: append([]byte(nil), seq.GetSubsequence(ev, sd)...),
		InsDJ: append([]byte(nil), seq.GetSubsequence(dEnd, jStart)...),
	}
	return &InfEvent{Event: event, Ev: ev, Sd: sd, Ed: dEnd, Sj: jStart, Likelihood: ll}
}

func dSpanEndRange(entries []*DSpanEntry) (int64, int64) {
	first := true
	var lo, hi int64
	for _, e := range entries {
		_, _, min1, max1 := e.LL.Dim()
		if first || min1 < lo {
			lo = min1
		}
		if first || max1 > hi {
			hi = max1
		}
		first = false
	}
	return lo, hi
}

func jStartRangeUnion(entries []*JStartEntry) (int64, int64) {
	first := true
	var lo, hi int64
	for _, e := range entries {
		min, max := e.LL.Dim()
		if first || min < lo {
			lo = min
		}
		if first || max > hi {
			hi = max
		}
		first = false
	}
	return lo, hi
}

// Cleanup renormalizes every raw feature's dirty accumulator into a fresh
// Features snapshot (spec §4.3). The gene tables are carried over
// unchanged since Cleanup only touches probability parameters.
func (f *Features) Cleanup() (*Features, error) {
	pv, err := f.PV.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	pdj, err := f.PDJ.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	pDelV, err := f.PDelVGivenV.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	pDelJ, err := f.PDelJGivenJ.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	pDelD3DelD5 := make([]*feature.CategoricalFeature2, len(f.PDelD3DelD5))
	for i, feat := range f.PDelD3DelD5 {
		cleaned, err := feat.Cleanup()
		if err != nil {
			return nil, fmt.Errorf("vdj features cleanup: p_del_d3_del_d5[%d]: %w", i, err)
		}
		pDelD3DelD5[i] = cleaned
	}
	insVD, err := f.InsVD.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	insDJ, err := f.InsDJ.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	errRate, err := f.ErrorRate.Cleanup()
	if err != nil {
		return nil, fmt.Errorf("vdj features cleanup: %w", err)
	}
	return &Features{
		VGenes: f.VGenes, DGenes: f.DGenes, JGenes: f.JGenes,
		PV: pv, PDJ: pdj, PDelVGivenV: pDelV, PDelJGivenJ: pDelJ,
		PDelD3DelD5: pDelD3DelD5, InsVD: insVD, InsDJ: insDJ, ErrorRate: errRate,
	}, nil
}

// Average combines several independently-accumulated Features shards into
// one by taking the elementwise mean of every raw feature, per spec §5.
func Average(shards []*Features) (*Features, error) {
	if len(shards) == 0 {
		return nil, fmt.Errorf("vdj features average: empty input")
	}
	pvs := make([]*feature.CategoricalFeature1, len(shards))
	pdjs := make([]*feature.CategoricalFeature2, len(shards))
	pDelVs := make([]*feature.CategoricalFeature1g1, len(shards))
	pDelJs := make([]*feature.CategoricalFeature1g1, len(shards))
	insVDs := make([]*feature.InsertionFeature, len(shards))
	insDJs := make([]*feature.InsertionFeature, len(shards))
	errRates := make([]*feature.ErrorSingleNucleotide, len(shards))
	for i, s := range shards {
		pvs[i] = s.PV
		pdjs[i] = s.PDJ
		pDelVs[i] = s.PDelVGivenV
		pDelJs[i] = s.PDelJGivenJ
		insVDs[i] = s.InsVD
		insDJs[i] = s.InsDJ
		errRates[i] = s.ErrorRate
	}
	pv, err := feature.AverageCategoricalFeature1(pvs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	pdj, err := feature.AverageCategoricalFeature2(pdjs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	pDelV, err := feature.AverageCategoricalFeature1g1(pDelVs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	pDelJ, err := feature.AverageCategoricalFeature1g1(pDelJs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	nD := len(shards[0].PDelD3DelD5)
	pDelD3DelD5 := make([]*feature.CategoricalFeature2, nD)
	for d := 0; d < nD; d++ {
		perD := make([]*feature.CategoricalFeature2, len(shards))
		for i, s := range shards {
			perD[i] = s.PDelD3DelD5[d]
		}
		avg, err := feature.AverageCategoricalFeature2(perD)
		if err != nil {
			return nil, fmt.Errorf("vdj features average: p_del_d3_del_d5[%d]: %w", d, err)
		}
		pDelD3DelD5[d] = avg
	}
	insVD, err := feature.AverageInsertionFeature(insVDs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	insDJ, err := feature.AverageInsertionFeature(insDJs)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	errRate, err := feature.AverageErrorSingleNucleotide(errRates)
	if err != nil {
		return nil, fmt.Errorf("vdj features average: %w", err)
	}
	return &Features{
		VGenes: shards[0].VGenes, DGenes: shards[0].DGenes, JGenes: shards[0].JGenes,
		PV: pv, PDJ: pdj, PDelVGivenV: pDelV, PDelJGivenJ: pDelJ,
		PDelD3DelD5: pDelD3DelD5, InsVD: insVD, InsDJ: insDJ, ErrorRate: errRate,
	}, nil
}
