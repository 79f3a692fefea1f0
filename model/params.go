package model

import "math"

// InferenceParameters are the options recognized by the inference driver
// (spec §3). min_log_likelihood is always recomputed from min_likelihood so
// the two never drift apart.
type InferenceParameters struct {
	MinLikelihoodError float64
	MinLikelihood      float64
	MinLogLikelihood   float64
	Evaluate           bool
	NbBestEvents       int
	InferFeatures      bool
	StoreBestEvent     bool
	LikelihoodType     LikelihoodType
}

// NewInferenceParameters builds the default parameter set used by a single
// EM pass: evaluation on, features inferred, best-event storage off (with
// NbBestEvents set to 1 for when it is turned on), known (scalar)
// likelihoods.
func NewInferenceParameters(minLikelihoodError, minLikelihood float64) *InferenceParameters {
	return &InferenceParameters{
		MinLikelihoodError: minLikelihoodError,
		MinLikelihood:      minLikelihood,
		MinLogLikelihood:   math.Log2(minLikelihood),
		Evaluate:           true,
		NbBestEvents:       1,
		InferFeatures:      true,
		StoreBestEvent:     false,
		LikelihoodType:     LikelihoodKnown,
	}
}

// SetMinLikelihood updates MinLikelihood and recomputes MinLogLikelihood in
// lockstep, as spec §3 requires.
func (ip *InferenceParameters) SetMinLikelihood(minLikelihood float64) {
	ip.MinLikelihood = minLikelihood
	ip.MinLogLikelihood = math.Log2(minLikelihood)
}
