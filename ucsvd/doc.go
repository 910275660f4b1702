// Package ucsvd provides the unit-consistent singular value decomposition
// and pseudoinverse: balance first, decompose the balanced matrix, undo
// the scaling on the result.
//
// What:
//
//   - Decompose runs dscale.Scale, then factorizes the balanced matrix
//     S = diag(r)·A·diag(c) with gonum's thin SVD.
//   - Values exposes the unit-consistent singular values (those of S).
//   - PseudoinverseTo / Pseudoinverse assemble A⁺ = diag(c)·S⁺·diag(r)
//     with a relative cutoff on small singular values.
//
// Why:
//
//   - The ordinary Moore–Penrose pseudoinverse of a matrix mixing
//     heterogeneous physical units changes arbitrarily when a unit is
//     switched. The unit-consistent variant satisfies
//     pinv(D·A·E) = E⁻¹·pinv(A)·D⁻¹ for any positive diagonal D, E,
//     while still obeying A·A⁺·A = A, and coincides with the ordinary
//     inverse for nonsingular square input.
//
// Errors:
//
//   - Balancing failures propagate unchanged from package dscale.
//   - ErrFactorization: gonum's SVD did not converge.
//   - ErrNilDst: nil destination matrix.
//
// Reference: J. Uhlmann, A generalized matrix inverse that is consistent
// with respect to diagonal transformations (doi: 10.1137/17M113890X).
package ucsvd
