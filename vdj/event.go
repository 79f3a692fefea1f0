// Package vdj implements the aggregated per-read features and the
// inference driver that compress the V(D)J recombination latent-event space
// into a tractable dynamic program (spec §4.3), plus the EM driver
// (Features) that ties aggregated features back to the raw trainable
// features of package feature.
package vdj

// StaticEvent is the fully-resolved discrete latent event for one
// recombination: which V/D/J genes, how many bases were trimmed from each
// end, and the two non-templated insertion segments (index-encoded 0..3,
// matching model.Sequence.Read).
type StaticEvent struct {
	VIndex, DIndex, JIndex int
	DelV, DelJ             int
	DelD5, DelD3           int
	InsVD, InsDJ           []byte
}

// InfEvent pairs a StaticEvent with the coordinate quadruple it was found
// at during inference and the likelihood it carried. When
// InferenceParameters.StoreBestEvent is set, Features.Infer returns up to
// NbBestEvents of these, ranked highest-likelihood first.
type InfEvent struct {
	Event      StaticEvent
	Ev, Sd, Ed, Sj int64
	Likelihood float64
}
