// Package buildinfo centralizes the version constants reported by the
// vdjinfer binary, adapted from the teacher's config/version_control.go
// per-component convention.
package buildinfo

// Version system: vMAJOR.MINOR.PATCH
const (
	// Main is the vdjinfer binary's own version.
	Main = "v1.0.0"

	// Per-component versions, following the teacher's practice of giving
	// every modular tool its own line.
	Infer       = "v1.0.0"
	Generate    = "v1.0.0"
	Sanity      = "v1.0.0"
	Diagnostics = "v0.1.0"
)
