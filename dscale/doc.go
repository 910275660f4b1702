// Package dscale computes diagonal scaling transforms that make an SVD
// (and the pseudoinverse built from it) unit-consistent: invariant under
// independent rescaling of the physical units of each row and column.
//
// What:
//
//   - Scale finds strictly positive vectors r, c so that the product of
//     |r_i · a_ij · c_j| along every row and column meets a prescribed
//     target (1 by default), in the least-squares sense when the nonzero
//     pattern contains cycles.
//   - Works in log₂ domain: the multiplicative balance problem becomes an
//     additive least-squares problem, immune to overflow/underflow from
//     products of very large or very small entries.
//   - Partitions the bipartite row/column incidence into connected
//     components and solves each independently; all-zero rows and columns
//     are degenerate singletons with scale factor exactly 1.
//
// Why:
//
//   - SVD-based pseudoinverses of matrices mixing heterogeneous units
//     change arbitrarily when a unit is switched (meters vs. millimeters).
//     Balancing first removes the artifact; see package ucsvd for the
//     downstream decomposition.
//
// Complexity:
//
//   - Pattern + components: O(m·n), Memory: O(m + n + nnz).
//   - Solver: O(sweeps · nnz) per component; convergence is geometric for
//     connected consistent components and typically takes a handful of
//     sweeps.
//
// Options:
//
//   - WithTolerance, WithMaxIterations: convergence policy.
//   - WithRowTargets, WithColTargets: non-unit line products.
//   - WithBalanced: also return diag(r)·A·diag(c).
//   - WithWorkers: solve independent components concurrently.
//   - WithContext: cancellation between sweeps.
//
// Errors:
//
//   - ErrNilMatrix, ErrEmptyMatrix: no input to scale.
//   - ErrNonFinite: NaN/±Inf at a structurally nonzero position.
//   - ErrTargetLength, ErrTargetValue: malformed target vectors.
//   - ErrOptionViolation: nonsensical option values.
//
// Reaching the iteration cap is reported through Result.Converged=false,
// never as an error; many callers treat it as informational.
//
// References: J. Uhlmann (doi: 10.1137/17M113890X); U.G. Rothblum &
// S.A. Zenios, Scalings of matrices satisfying line-product constraints
// and generalizations (doi: 10.1016/0024-3795(92)90307-V).
package dscale
