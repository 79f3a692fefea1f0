package vdj

import (
	"fmt"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
)

// jContribution is one (J gene, delJ) pair folded into a JStartEntry.
type jContribution struct {
	delJ int
	sj   int64
	k, n int
	ll   float64
}

// JStartEntry aggregates, for a single candidate J alignment, the
// likelihood of every J 5'-start position sj reachable by some delJ
// (AggregatedFeatureStartJ of spec §4.3), symmetric to VEndEntry.
type JStartEntry struct {
	JIndex   int
	LL       *numeric.RangeArray1
	Dirty    *numeric.RangeArray1
	Contribs []jContribution
}

// BuildJStartEntries computes one JStartEntry per J alignment candidate.
func BuildJStartEntries(seq *model.Sequence, delJFeat *feature.CategoricalFeature1g1, errJ *feature.ErrorSingleNucleotide, params *model.InferenceParameters) ([]*JStartEntry, error) {
	var entries []*JStartEntry
	nDelJ, _ := delJFeat.Dim()
	for _, j := range seq.JGenes {
		if j.Index < 0 {
			return nil, fmt.Errorf("aggregated feature start j: j gene index %d out of range", j.Index)
		}
		var contribs []jContribution
		var minSj, maxSj int64
		first := true
		for delJ := 0; delJ < nDelJ; delJ++ {
			pdel := delJFeat.Likelihood(delJ, j.Index)
			if pdel == 0 {
				continue
			}
			n := j.LengthWithDeletion(delJ)
			if n <= 0 {
				continue
			}
			k := j.NbErrors(delJ)
			ell := pdel * errJ.Likelihood(k, int(n))
			if ell < params.MinLikelihood {
				continue
			}
			sj := j.StartSeq + int64(delJ)
			contribs = append(contribs, jContribution{delJ: delJ, sj: sj, k: k, n: int(n), ll: ell})
			if first || sj < minSj {
				minSj = sj
			}
			if first || sj >= maxSj {
				maxSj = sj + 1
			}
			first = false
		}
		if len(contribs) == 0 {
			continue
		}
		ll := numeric.NewRangeArray1(minSj, maxSj)
		for _, c := range contribs {
			ll.AddTo(c.sj, c.ll)
		}
		entries = append(entries, &JStartEntry{
			JIndex:   j.Index,
			LL:       ll,
			Dirty:    numeric.NewRangeArray1(minSj, maxSj),
			Contribs: contribs,
		})
	}
	if len(entries) == 0 {
		return nil, errNoHypothesis
	}
	return entries, nil
}

func jLikelihoodAt(e *JStartEntry, sj int64) float64 {
	min, max := e.LL.Dim()
	if sj < min || sj >= max {
		return 0
	}
	return e.LL.Get(sj)
}

// disaggregateStartJ redistributes dirty mass at a single JStartEntry's sj
// coordinate down into the raw PDelJGivenJ / error features. Unlike EndV,
// the caller already knows which JStartEntry produced this mass (it comes
// tagged with a j_idx throughout the DJ pipeline), so no cross-candidate
// ratio is needed here: the entry's own forward value at sj is the total.
func disaggregateStartJ(e *JStartEntry, sj int64, dirtyMass float64, delJDirty *feature.CategoricalFeature1g1, errJDirty *feature.ErrorSingleNucleotide) {
	total := jLikelihoodAt(e, sj)
	if total == 0 || dirtyMass == 0 {
		return
	}
	ratio := dirtyMass / total
	for _, c := range e.Contribs {
		if c.sj != sj {
			continue
		}
		mass := c.ll * ratio
		if mass == 0 {
			continue
		}
		delJDirty.DirtyUpdate(c.delJ, e.JIndex, mass)
		errJDirty.DirtyUpdate(c.k, c.n, mass)
	}
}
