package vdj

import (
	"fmt"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
)

// vContribution is one (V gene, delV) pair folded into a VEndEntry's
// forward RangeArray1, kept around so a later dirty-update can be
// disaggregated back to the raw PV/PDelVGivenV/error features.
type vContribution struct {
	delV int
	ev   int64
	k, n int
	ll   float64 // p(V) * p(delV|V) * errorLikelihood(k, n)
}

// VEndEntry aggregates, for a single candidate V alignment, the likelihood
// of every V 3'-end position ev reachable by some delV: Sigma over delV of
// p(V) * p(delV|V) * p(errors on V up to ev). This is AggregatedFeatureEndV
// of spec §4.3, kept one-per-V-candidate so p(V) stays attached to the gene
// identity used by later stages of the pipeline.
type VEndEntry struct {
	VIndex   int
	LL       *numeric.RangeArray1
	Dirty    *numeric.RangeArray1
	Contribs []vContribution
}

// BuildVEndEntries computes one VEndEntry per V alignment candidate in seq.
// Candidates that contribute no surviving (delV, ev) pair above
// params.MinLikelihood are omitted entirely (spec §7's "empty evidence").
func BuildVEndEntries(seq *model.Sequence, pv *feature.CategoricalFeature1, delV *feature.CategoricalFeature1g1, errV *feature.ErrorSingleNucleotide, params *model.InferenceParameters) ([]*VEndEntry, error) {
	var entries []*VEndEntry
	nDelV, _ := delV.Dim()
	for _, v := range seq.VGenes {
		if v.Index < 0 || v.Index >= pv.Dim() {
			return nil, fmt.Errorf("aggregated feature end v: v gene index %d out of range", v.Index)
		}
		pvv := pv.Likelihood(v.Index)
		if pvv == 0 {
			continue
		}
		var contribs []vContribution
		var minEv, maxEv int64
		first := true
		for delVIdx := 0; delVIdx < nDelV; delVIdx++ {
			pdel := delV.Likelihood(delVIdx, v.Index)
			if pdel == 0 {
				continue
			}
			n := v.LengthWithDeletion(delVIdx)
			if n <= 0 {
				continue
			}
			k := v.NbErrors(delVIdx)
			ell := pvv * pdel * errV.Likelihood(k, int(n))
			if ell < params.MinLikelihood {
				continue
			}
			ev := v.EndSeq - int64(delVIdx)
			contribs = append(contribs, vContribution{delV: delVIdx, ev: ev, k: k, n: int(n), ll: ell})
			if first || ev < minEv {
				minEv = ev
			}
			if first || ev >= maxEv {
				maxEv = ev + 1
			}
			first = false
		}
		if len(contribs) == 0 {
			continue
		}
		ll := numeric.NewRangeArray1(minEv, maxEv)
		for _, c := range contribs {
			ll.AddTo(c.ev, c.ll)
		}
		entries = append(entries, &VEndEntry{
			VIndex:   v.Index,
			LL:       ll,
			Dirty:    numeric.NewRangeArray1(minEv, maxEv),
			Contribs: contribs,
		})
	}
	if len(entries) == 0 {
		return nil, errNoHypothesis
	}
	return entries, nil
}

// vEndRange returns the union of ev bounds across every entry.
func vEndRange(entries []*VEndEntry) (int64, int64) {
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

// totalEndVLikelihood sums every entry's contribution at ev, or 0 if ev is
// outside every entry's range.
func totalEndVLikelihood(entries []*VEndEntry, ev int64) float64 {
	total := 0.0
	for _, e := range entries {
		min, max := e.LL.Dim()
		if ev < min || ev >= max {
			continue
		}
		total += e.LL.Get(ev)
	}
	return total
}

// disaggregateEndV redistributes dirty mass accumulated at coordinate ev
// (the ratio dirty(ev)/forward(ev) of spec §4.3) down to each V candidate's
// raw contributions, then into the raw PV / PDelVGivenV / error features.
func disaggregateEndV(entries []*VEndEntry, ev int64, dirtyMass float64, pvDirty *feature.CategoricalFeature1, delVDirty *feature.CategoricalFeature1g1, errVDirty *feature.ErrorSingleNucleotide) {
	total := totalEndVLikelihood(entries, ev)
	if total == 0 || dirtyMass == 0 {
		return
	}
	ratio := dirtyMass / total
	for _, e := range entries {
		min, max := e.LL.Dim()
		if ev < min || ev >= max {
			continue
		}
		for _, c := range e.Contribs {
			if c.ev != ev {
				continue
			}
			mass := c.ll * ratio
			if mass == 0 {
				continue
			}
			pvDirty.DirtyUpdate(e.VIndex, mass)
			delVDirty.DirtyUpdate(c.delV, e.VIndex, mass)
			errVDirty.DirtyUpdate(c.k, c.n, mass)
		}
	}
}
