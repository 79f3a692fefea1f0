package vdj

import (
	"math"

	"vdjinfer/feature"
	"vdjinfer/model"
	"vdjinfer/numeric"
)

// FeatureDJ precomputes the DJ-insertion log-likelihood for every (d_end,
// j_start) pair reachable within the insertion feature's max length, for
// the read substring actually observed between those two coordinates
// (reversed, so the Markov orientation matches the J-to-D generation
// direction used when the model was fit). Gene identity plays no part
// here: the inserted bases are whatever lies in the read between ed and
// sj, regardless of which D or J gene eventually claims that span.
type FeatureDJ struct {
	ll *numeric.RangeArray2
}

// BuildFeatureDJ fills the (d_end, j_start) table over the given rectangle.
func BuildFeatureDJ(seq *model.Sequence, insDJ *feature.InsertionFeature, minDEnd, maxDEnd, minJStart, maxJStart int64) *FeatureDJ {
	f := &FeatureDJ{ll: numeric.NewRangeArray2(minDEnd, maxDEnd, minJStart, maxJStart)}
	for ed := minDEnd; ed < maxDEnd; ed++ {
		for sj := minJStart; sj < maxJStart; sj++ {
			f.ll.Set(ed, sj, djInsertionLogLikelihood(seq, insDJ, ed, sj))
		}
	}
	return f
}

// LogLikelihood looks up the cached value at (d_end, j_start).
func (f *FeatureDJ) LogLikelihood(dEnd, jStart int64) float64 {
	min0, max0, min1, max1 := f.ll.Dim()
	if dEnd < min0 || dEnd >= max0 || jStart < min1 || jStart >= max1 {
		return math.Inf(-1)
	}
	return f.ll.Get(dEnd, jStart)
}

func djInsertionLogLikelihood(seq *model.Sequence, insDJ *feature.InsertionFeature, dEnd, jStart int64) float64 {
	if jStart < dEnd {
		return math.Inf(-1)
	}
	if int(jStart-dEnd) > insDJ.MaxNbInsertions() {
		return math.Inf(-1)
	}
	sub := seq.GetSubsequence(dEnd, jStart)
	return insDJ.LogLikelihood(model.ReverseBytes(sub))
}

func vdInsertionLogLikelihood(seq *model.Sequence, insVD *feature.InsertionFeature, ev, sd int64) float64 {
	if sd < ev {
		return math.Inf(-1)
	}
	if int(sd-ev) > insVD.MaxNbInsertions() {
		return math.Inf(-1)
	}
	return insVD.LogLikelihood(seq.GetSubsequence(ev, sd))
}
