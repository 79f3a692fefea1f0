package vdj

import (
	"math"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
)

// djMarginalContribution is one (J candidate, j_start) pair folded into an
// AggregatedFeatureDJ's forward value at d_end.
type djMarginalContribution struct {
	jIndex int
	jStart int64
	dEnd   int64
	ll     float64
}

// AggregatedFeatureDJ marginalizes J identity out of FeatureDJ for a single
// D gene candidate: for every d_end it sums p(D, J) * p_insDJ(d_end,
// j_start) * likelihood_J(j_start) over every J alignment candidate and
// every j_start compatible with that candidate's surviving (delJ) range.
type AggregatedFeatureDJ struct {
	DIndex   int
	LL       *numeric.RangeArray1 // over d_end
	Dirty    *numeric.RangeArray1
	Contribs []djMarginalContribution
}

// BuildAggregatedFeatureDJ builds the composite for one D gene candidate
// over its surviving d_end range [minDEnd, maxDEnd).
func BuildAggregatedFeatureDJ(dIndex int, minDEnd, maxDEnd int64, startJ []*JStartEntry, dj *FeatureDJ, pdj *feature.CategoricalFeature2) *AggregatedFeatureDJ {
	var contribs []djMarginalContribution
	for dEnd := minDEnd; dEnd < maxDEnd; dEnd++ {
		for _, je := range startJ {
			pDJ := pdj.Likelihood(dIndex, je.JIndex)
			if pDJ == 0 {
				continue
			}
			min, max := je.LL.Dim()
			lo := dEnd
			if min > lo {
				lo = min
			}
			for sj := lo; sj < max; sj++ {
				insLL := dj.LogLikelihood(dEnd, sj)
				if math.IsInf(insLL, -1) {
					continue
				}
				ll := pDJ * math.Exp2(insLL) * je.LL.Get(sj)
				if ll == 0 {
					continue
				}
				contribs = append(contribs, djMarginalContribution{jIndex: je.JIndex, jStart: sj, dEnd: dEnd, ll: ll})
			}
		}
	}
	ll := numeric.NewRangeArray1(minDEnd, maxDEnd)
	for _, c := range contribs {
		ll.AddTo(c.dEnd, c.ll)
	}
	return &AggregatedFeatureDJ{
		DIndex:   dIndex,
		LL:       ll,
		Dirty:    numeric.NewRangeArray1(minDEnd, maxDEnd),
		Contribs: contribs,
	}
}

func djLikelihoodAt(a *AggregatedFeatureDJ, dEnd int64) float64 {
	min, max := a.LL.Dim()
	if dEnd < min || dEnd >= max {
		return 0
	}
	return a.LL.Get(dEnd)
}

// disaggregateFeatureDJ redistributes dirty mass at d_end into the raw
// PDJ / PInsDJ / insertion-Markov features and the J-side (delJ, error)
// features, keyed through each surviving (J candidate, j_start)
// contribution.
func disaggregateFeatureDJ(a *AggregatedFeatureDJ, dEnd int64, dirtyMass float64, seq *model.Sequence, insDJ *feature.InsertionFeature, pdjDirty *feature.CategoricalFeature2, jEntries map[int]*JStartEntry, delJDirty *feature.CategoricalFeature1g1, errJDirty *feature.ErrorSingleNucleotide) {
	total := djLikelihoodAt(a, dEnd)
	if total == 0 || dirtyMass == 0 {
		return
	}
	ratio := dirtyMass / total
	for _, c := range a.Contribs {
		if c.dEnd != dEnd {
			continue
		}
		mass := c.ll * ratio
		if mass == 0 {
			continue
		}
		pdjDirty.DirtyUpdate(a.DIndex, c.jIndex, mass)
		sub := model.ReverseBytes(seq.GetSubsequence(dEnd, c.jStart))
		insDJ.DirtyUpdate(sub, mass)
		if je, ok := jEntries[c.jIndex]; ok {
			disaggregateStartJ(je, c.jStart, mass, delJDirty, errJDirty)
		}
	}
}
