package dscale

import (
	"context"
	"math"
)

// solver owns the potential vectors u (rows) and v (columns) for the
// lifetime of one Scale call. Components cover disjoint index ranges of
// u and v, so solving them concurrently needs no locking.
type solver struct {
	ctx        context.Context
	p          *pattern
	rowTargets []float64 // t_i = log₂ P_i
	colTargets []float64 // s_j = log₂ Q_j
	tol        float64
	maxIter    int
	u, v       []float64
}

// solveComponent runs alternating row/column sweeps on one component
// until convergence or the iteration cap.
//
// Each row update
//
//	u_i ← (t_i − Σ_{j∈N(i)} (v_j + w_ij)) / d_i
//
// sets row i's aggregate line sum exactly to its target given the current
// column potentials; the column sweep is symmetric. The updates are exact
// block-coordinate minimizers of the least-squares balance objective, so
// the residual is non-increasing sweep over sweep.
//
// Stopping rule, checked after every full row+column sweep:
//   - maximum absolute line-sum residual ≤ tol (the constraints are met,
//     which a permutation-like pattern reaches after a single sweep), or
//   - maximum absolute potential change ≤ tol (a least-squares fixed
//     point; at any fixed point of the sweeps every line constraint is
//     again met exactly, so the two criteria agree in the limit).
//
// Returns the number of sweeps used and whether the rule fired before the
// cap. Reaching the cap is not an error: the best potentials found so far
// stay in place and the caller reports Converged=false.
//
// Time:   O(sweeps · edges). Memory: O(1) beyond the shared potentials.
func (s *solver) solveComponent(comp component) (int, bool, error) {
	if comp.edges == 0 {
		return 0, true, nil // degenerate singleton: unconstrained, scale 1
	}

	var (
		iter  int
		delta float64 // max |potential change| across the current sweep
		sum   float64
		next  float64
	)
	for iter = 1; iter <= s.maxIter; iter++ {
		// cancellation check (once per sweep)
		select {
		case <-s.ctx.Done():
			return iter - 1, false, s.ctx.Err()
		default:
		}

		delta = 0

		// Row sweep
		for _, i := range comp.rows {
			sum = 0
			for _, e := range s.p.rowEdges[i] {
				sum += s.v[e.to] + e.w
			}
			next = (s.rowTargets[i] - sum) / float64(len(s.p.rowEdges[i]))
			if d := math.Abs(next - s.u[i]); d > delta {
				delta = d
			}
			s.u[i] = next
		}

		// Column sweep
		for _, j := range comp.cols {
			sum = 0
			for _, e := range s.p.colEdges[j] {
				sum += s.u[e.to] + e.w
			}
			next = (s.colTargets[j] - sum) / float64(len(s.p.colEdges[j]))
			if d := math.Abs(next - s.v[j]); d > delta {
				delta = d
			}
			s.v[j] = next
		}

		if delta <= s.tol || s.residual(comp) <= s.tol {
			return iter, true, nil
		}
	}

	return s.maxIter, false, nil
}

// residual returns the maximum absolute deviation of any line's aggregate
// sum Σ (u_i + v_j + w_ij) from its target within the component.
// Time: O(edges).
func (s *solver) residual(comp component) float64 {
	var worst, sum float64
	for _, i := range comp.rows {
		sum = -s.rowTargets[i]
		for _, e := range s.p.rowEdges[i] {
			sum += s.u[i] + s.v[e.to] + e.w
		}
		if r := math.Abs(sum); r > worst {
			worst = r
		}
	}
	for _, j := range comp.cols {
		sum = -s.colTargets[j]
		for _, e := range s.p.colEdges[j] {
			sum += s.u[e.to] + s.v[j] + e.w
		}
		if r := math.Abs(sum); r > worst {
			worst = r
		}
	}

	return worst
}

// pin removes the free additive degree of freedom of a component.
//
// Every edge sum is invariant under u_i += δ, v_j −= δ, so the solution is
// a one-parameter family. Pinning picks δ so that the mean row potential
// equals the mean column potential, which is deterministic, independent of
// traversal order, and leaves all line products untouched.
func (s *solver) pin(comp component) {
	if comp.edges == 0 {
		return
	}

	var meanU, meanV float64
	for _, i := range comp.rows {
		meanU += s.u[i]
	}
	meanU /= float64(len(comp.rows))
	for _, j := range comp.cols {
		meanV += s.v[j]
	}
	meanV /= float64(len(comp.cols))

	delta := (meanV - meanU) / 2
	for _, i := range comp.rows {
		s.u[i] += delta
	}
	for _, j := range comp.cols {
		s.v[j] -= delta
	}
}
