// Package dscale implements the iterative diagonal-scaling solver behind
// the unit-consistent SVD and pseudoinverse.
package dscale

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/mat"
)

// Scale computes strictly positive scale vectors r (per row) and c (per
// column) such that the products of the scaled nonzero magnitudes along
// every row and column meet the prescribed targets (all ones by default),
// exactly when the constraints are satisfiable and in the least-squares
// sense otherwise.
//
// Pipeline: extract the nonzero pattern (log₂ magnitudes, degrees) →
// partition the bipartite row/column incidence into connected components →
// solve each component by alternating row/column sweeps → pin the free
// additive shift per component and exponentiate.
//
// The call is a pure function of its inputs; a is never mutated and no
// state survives the call. Independent components may be solved in
// parallel via WithWorkers.
//
// Returns ErrNilMatrix, ErrEmptyMatrix, ErrNonFinite, ErrTargetLength,
// ErrTargetValue or ErrOptionViolation for invalid input, all detected
// before any iteration begins. Failure to converge within the iteration
// cap is NOT an error: the result carries the best potentials found and
// Converged=false.
//
// Example:
//
//	res, err := dscale.Scale(a, dscale.WithBalanced())
func Scale(a mat.Matrix, opts ...Option) (*Result, error) {
	if a == nil {
		return nil, ErrNilMatrix
	}
	// Build options and catch any invalid ones immediately
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return nil, o.err
	}

	m, n := a.Dims()
	if m == 0 || n == 0 {
		return nil, ErrEmptyMatrix
	}
	rowT, err := logTargets(o.RowTargets, m, "row")
	if err != nil {
		return nil, err
	}
	colT, err := logTargets(o.ColTargets, n, "column")
	if err != nil {
		return nil, err
	}

	p, err := extractPattern(a)
	if err != nil {
		return nil, err
	}
	comps := connectedComponents(p)

	s := &solver{
		ctx:        o.Ctx,
		p:          p,
		rowTargets: rowT,
		colTargets: colT,
		tol:        o.Tolerance,
		maxIter:    o.MaxIterations,
		u:          make([]float64, m),
		v:          make([]float64, n),
	}

	iters, convs, err := solveAll(s, comps, o.Workers)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Left:       make([]float64, m),
		Right:      make([]float64, n),
		Converged:  true,
		Components: len(comps),
	}
	for ci, comp := range comps {
		s.pin(comp)
		if iters[ci] > res.Iterations {
			res.Iterations = iters[ci]
		}
		if !convs[ci] {
			res.Converged = false
		}
	}

	// Exponentiate pinned potentials; untouched (degenerate) lines hold
	// u=v=0 and come out as exactly 1.
	for i := 0; i < m; i++ {
		res.Left[i] = math.Exp2(s.u[i])
	}
	for j := 0; j < n; j++ {
		res.Right[j] = math.Exp2(s.v[j])
	}

	if o.Balanced {
		res.Balanced = balanced(a, res.Left, res.Right)
	}

	return res, nil
}

// solveAll runs the per-component solver, sequentially or across a bounded
// goroutine fan-out. Components write to disjoint ranges of the shared
// potential vectors and to their own slots of the collection slices, so
// the only synchronization needed is the final join.
func solveAll(s *solver, comps []component, workers int) ([]int, []bool, error) {
	iters := make([]int, len(comps))
	convs := make([]bool, len(comps))

	if workers > len(comps) {
		workers = len(comps)
	}
	if workers <= 1 {
		for ci, comp := range comps {
			it, conv, err := s.solveComponent(comp)
			if err != nil {
				return nil, nil, err
			}
			iters[ci], convs[ci] = it, conv
		}

		return iters, convs, nil
	}

	errs := make([]error, len(comps))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ci := range jobs {
				iters[ci], convs[ci], errs[ci] = s.solveComponent(comps[ci])
			}
		}()
	}
	for ci := range comps {
		jobs <- ci
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	return iters, convs, nil
}

// logTargets validates a target line-product vector and converts it to
// log₂ domain. nil means unit targets (all-zero logs).
func logTargets(t []float64, want int, which string) ([]float64, error) {
	out := make([]float64, want)
	if t == nil {
		return out, nil
	}
	if len(t) != want {
		return nil, fmt.Errorf("%w: %s targets: got %d, want %d", ErrTargetLength, which, len(t), want)
	}
	for i, x := range t {
		if math.IsNaN(x) || math.IsInf(x, 0) || x <= 0 {
			return nil, fmt.Errorf("%w: %s target %d = %g", ErrTargetValue, which, i, x)
		}
		out[i] = math.Log2(x)
	}

	return out, nil
}

// balanced materializes diag(r)·A·diag(c). Structural zeros stay exactly
// zero and the sign of every nonzero entry is preserved, since r and c are
// strictly positive.
func balanced(a mat.Matrix, r, c []float64) *mat.Dense {
	m, n := a.Dims()
	b := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if v := a.At(i, j); v != 0 {
				b.Set(i, j, r[i]*v*c[j])
			}
		}
	}

	return b
}
