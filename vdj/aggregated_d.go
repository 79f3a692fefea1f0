package vdj

import (
	"fmt"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
)

// dContribution is one (delD3, delD5) trim folded into a DSpanEntry.
type dContribution struct {
	delD3, delD5 int
	dStart, dEnd int64
	k, n         int
	ll           float64
}

// DSpanEntry aggregates, for a single candidate D alignment, the likelihood
// of every (d_start, d_end) span reachable by some (delD3, delD5) pair
// (AggregatedFeatureSpanD of spec §4.3). The D gene index is kept attached
// so p(D|J) can be looked up once this span feeds into the D-J
// aggregation.
type DSpanEntry struct {
	DIndex   int
	LL       *numeric.RangeArray2 // over (dStart, dEnd)
	Dirty    *numeric.RangeArray2
	Contribs []dContribution
}

// BuildDSpanEntries computes one DSpanEntry per D alignment candidate.
// delD3DelD5 holds one joint CategoricalFeature2 per D gene index.
func BuildDSpanEntries(seq *model.Sequence, delD3DelD5 []*feature.CategoricalFeature2, errD *feature.ErrorSingleNucleotide, params *model.InferenceParameters) ([]*DSpanEntry, error) {
	var entries []*DSpanEntry
	for _, d := range seq.DGenes {
		if d.Index < 0 || d.Index >= len(delD3DelD5) {
			return nil, fmt.Errorf("aggregated feature span d: d gene index %d out of range", d.Index)
		}
		feat := delD3DelD5[d.Index]
		nDelD3, nDelD5 := feat.Dim()
		var contribs []dContribution
		var minStart, maxStart, minEnd, maxEnd int64
		first := true
		for delD3 := 0; delD3 < nDelD3; delD3++ {
			for delD5 := 0; delD5 < nDelD5; delD5++ {
				pdd := feat.Likelihood(delD3, delD5)
				if pdd == 0 {
					continue
				}
				n := d.LengthWithDeletion(delD5, delD3)
				if n <= 0 {
					continue
				}
				k := d.NbErrors(delD5, delD3)
				ell := pdd * errD.Likelihood(k, int(n))
				if ell < params.MinLikelihood {
					continue
				}
				dStart := d.StartSeq + int64(delD5)
				dEnd := d.EndSeq - int64(delD3)
				contribs = append(contribs, dContribution{delD3: delD3, delD5: delD5, dStart: dStart, dEnd: dEnd, k: k, n: int(n), ll: ell})
				if first || dStart < minStart {
					minStart = dStart
				}
				if first || dStart >= maxStart {
					maxStart = dStart + 1
				}
				if first || dEnd < minEnd {
					minEnd = dEnd
				}
				if first || dEnd >= maxEnd {
					maxEnd = dEnd + 1
				}
				first = false
			}
		}
		if len(contribs) == 0 {
			continue
		}
		ll := numeric.NewRangeArray2(minStart, maxStart, minEnd, maxEnd)
		for _, c := range contribs {
			ll.AddTo(c.dStart, c.dEnd, c.ll)
		}
		entries = append(entries, &DSpanEntry{
			DIndex:   d.Index,
			LL:       ll,
			Dirty:    numeric.NewRangeArray2(minStart, maxStart, minEnd, maxEnd),
			Contribs: contribs,
		})
	}
	if len(entries) == 0 {
		return nil, errNoHypothesis
	}
	return entries, nil
}

func dSpanLikelihoodAt(e *DSpanEntry, dStart, dEnd int64) float64 {
	min0, max0, min1, max1 := e.LL.Dim()
	if dStart < min0 || dStart >= max0 || dEnd < min1 || dEnd >= max1 {
		return 0
	}
	return e.LL.Get(dStart, dEnd)
}

// disaggregateSpanD redistributes dirty mass at (dStart, dEnd) of a single
// DSpanEntry into the raw PDelD3DelD5 / error features.
func disaggregateSpanD(e *DSpanEntry, dStart, dEnd int64, dirtyMass float64, delDDirty []*feature.CategoricalFeature2, errDDirty *feature.ErrorSingleNucleotide) {
	total := dSpanLikelihoodAt(e, dStart, dEnd)
	if total == 0 || dirtyMass == 0 {
		return
	}
	ratio := dirtyMass / total
	for _, c := range e.Contribs {
		if c.dStart != dStart || c.dEnd != dEnd {
			continue
		}
		mass := c.ll * ratio
		if mass == 0 {
			continue
		}
		delDDirty[e.DIndex].DirtyUpdate(c.delD3, c.delD5, mass)
		errDDirty.DirtyUpdate(c.k, c.n, mass)
	}
}
