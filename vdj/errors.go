package vdj

import "errors"

// errNoHypothesis is returned by the aggregated-feature builders when a
// read's candidate alignments produce no surviving event above
// InferenceParameters.MinLikelihood. Per spec §7 this is not a failure:
// Features.Infer treats it as the read contributing zero likelihood for
// that alignment combination.
var errNoHypothesis = errors.New("vdj: no hypothesis survives min_likelihood pruning")
