// Package ucscale makes SVD-based computations unit-consistent: invariant
// under independent rescaling of the physical units carried by each row
// and each column of a matrix.
//
// 🚀 What is ucscale?
//
//	A small, focused library that brings together:
//		• dscale/ — the iterative diagonal-scaling solver: strictly positive
//		  row and column scale vectors satisfying line-product balance
//		  constraints over the nonzero pattern
//		• ucsvd/  — the unit-consistent SVD and pseudoinverse built on top
//		  of dscale and gonum's mat.SVD
//
// ✨ Why choose ucscale?
//
//   - Correct by construction – degenerate lines, disconnected components
//     and sign handling are dealt with explicitly, not by accident
//   - Deterministic – canonical gauge pinning makes results reproducible
//     regardless of component discovery order
//   - Minimal API – one entry point per package, functional options,
//     sentinel errors
//
// The scaling step removes the artifact where an SVD-based pseudoinverse
// of a matrix mixing heterogeneous units changes arbitrarily when a unit
// is switched (meters vs. millimeters): balance first, decompose the
// balanced matrix, undo the scaling on the result.
//
// Reference: J. Uhlmann, A generalized matrix inverse that is consistent
// with respect to diagonal transformations. SIAM J. Matrix Anal. Appl.,
// 39(2):781–800 (doi: 10.1137/17M113890X).
//
//	go get github.com/katalvlaran/ucscale
package ucscale
