// Package feature implements the trainable parameter objects shared by
// every recombination event coordinate: categorical distributions of
// varying arity, the Markov-chain insertion feature, and the single-rate
// Bernoulli error feature. All of them share the same two-phase protocol
// described in spec §4.2: evaluate via Likelihood/LogLikelihood, accumulate
// expected counts via DirtyUpdate, and produce the next-iteration feature
// via Cleanup. Average combines independently-accumulated shards.
package feature

// Protocol documents (but does not enforce via a Go interface, since the
// key methods differ in arity per feature) the two-phase contract every
// feature in this package implements:
//
//	New(params)             validates parameters, returns a Fresh feature
//	Likelihood(key) / LogLikelihood(key)
//	DirtyUpdate(key, mass)  accumulates expected count, feature becomes Dirty
//	Cleanup() (Feature, error)
//	Average(features) (Feature, error)
