package vdj

import (
	"vdjinfer/numeric"
)

// startDAndJContribution is one (D candidate, d_end) pair folded into
// AggregatedFeatureStartDAndJ's forward value at d_start.
type startDAndJContribution struct {
	dIndex       int
	dStart, dEnd int64
	ll           float64
}

// AggregatedFeatureStartDAndJ marginalizes d_end and J out of the D-start
// likelihood (spec §4.3): for every D span candidate it combines the span's
// own likelihood_D(d_start, d_end) with the matching AggregatedFeatureDJ's
// already-J-marginalized likelihood at d_end, summed over d_end, into a
// single 1-D range keyed by d_start across every D candidate.
type AggregatedFeatureStartDAndJ struct {
	LL       *numeric.RangeArray1
	Dirty    *numeric.RangeArray1
	Contribs []startDAndJContribution
}

// BuildAggregatedFeatureStartDAndJ combines every D span entry with its
// corresponding AggregatedFeatureDJ (matched by D gene index).
func BuildAggregatedFeatureStartDAndJ(spanD []*DSpanEntry, dj map[int]*AggregatedFeatureDJ) *AggregatedFeatureStartDAndJ {
	var contribs []startDAndJContribution
	first := true
	var minStart, maxStart int64
	for _, span := range spanD {
		marginal, ok := dj[span.DIndex]
		if !ok {
			continue
		}
		min0, max0, min1, max1 := span.LL.Dim()
		for dStart := min0; dStart < max0; dStart++ {
			for dEnd := min1; dEnd < max1; dEnd++ {
				spanLL := span.LL.Get(dStart, dEnd)
				if spanLL == 0 {
					continue
				}
				djLL := djLikelihoodAt(marginal, dEnd)
				if djLL == 0 {
					continue
				}
				ll := spanLL * djLL
				if ll == 0 {
					continue
				}
				contribs = append(contribs, startDAndJContribution{dIndex: span.DIndex, dStart: dStart, dEnd: dEnd, ll: ll})
				if first || dStart < minStart {
					minStart = dStart
				}
				if first || dStart >= maxStart {
					maxStart = dStart + 1
				}
				first = false
			}
		}
	}
	ll := numeric.NewRangeArray1(minStart, maxStart)
	for _, c := range contribs {
		ll.AddTo(c.dStart, c.ll)
	}
	return &AggregatedFeatureStartDAndJ{
		LL:       ll,
		Dirty:    numeric.NewRangeArray1(minStart, maxStart),
		Contribs: contribs,
	}
}

func startDAndJLikelihoodAt(a *AggregatedFeatureStartDAndJ, dStart int64) float64 {
	if a == nil || a.LL == nil {
		return 0
	}
	min, max := a.LL.Dim()
	if dStart < min || dStart >= max {
		return 0
	}
	return a.LL.Get(dStart)
}

// disaggregateStartDAndJ redistributes dirty mass at d_start down to the
// (D candidate, d_end) pairs that produced it, then further into the
// DSpanEntry and AggregatedFeatureDJ disaggregation at that d_end.
func disaggregateStartDAndJ(a *AggregatedFeatureStartDAndJ, dStart int64, dirtyMass float64, spanByIndex map[int]*DSpanEntry, djByIndex map[int]*AggregatedFeatureDJ, sink func(span *DSpanEntry, dStart, dEnd int64, djEntry *AggregatedFeatureDJ, mass float64)) {
	total := startDAndJLikelihoodAt(a, dStart)
	if total == 0 || dirtyMass == 0 {
		return
	}
	ratio := dirtyMass / total
	for _, c := range a.Contribs {
		if c.dStart != dStart {
			continue
		}
		mass := c.ll * ratio
		if mass == 0 {
			continue
		}
		span := spanByIndex[c.dIndex]
		djEntry := djByIndex[c.dIndex]
		if span == nil || djEntry == nil {
			continue
		}
		sink(span, c.dStart, c.dEnd, djEntry, mass)
	}
}
