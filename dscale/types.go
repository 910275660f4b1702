// Package dscale defines tunable options, sentinel errors and the result
// type for the diagonal-scaling solver.
package dscale

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Sentinel errors for Scale execution.
var (
	// ErrNilMatrix is returned if a nil matrix is passed.
	ErrNilMatrix = errors.New("dscale: matrix is nil")

	// ErrEmptyMatrix is returned when the input has no rows or no columns.
	ErrEmptyMatrix = errors.New("dscale: matrix must have at least one row and one column")

	// ErrNonFinite is returned when a structurally nonzero entry is NaN or
	// ±Inf; such an entry cannot be log-scaled.
	ErrNonFinite = errors.New("dscale: non-finite entry at nonzero position")

	// ErrTargetLength is returned when a target vector does not match the
	// corresponding matrix dimension.
	ErrTargetLength = errors.New("dscale: target vector length mismatch")

	// ErrTargetValue is returned when a target line product is not a
	// strictly positive finite number (its logarithm is undefined).
	ErrTargetValue = errors.New("dscale: target products must be positive and finite")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("dscale: invalid option supplied")
)

// Defaults for the convergence policy.
const (
	// DefaultTolerance is the stopping tolerance in log₂ units.
	DefaultTolerance = 1e-10

	// DefaultMaxIterations caps the number of full row+column sweeps
	// per connected component.
	DefaultMaxIterations = 100
)

// Option configures Scale behavior via functional arguments.
// If an Option is invalid (e.g. a non-positive tolerance), it is recorded
// internally and surfaced as ErrOptionViolation when Scale is invoked.
type Option func(*Options)

// Options holds parameters to customize the solver.
type Options struct {
	// Ctx allows cancellation between sweeps.
	Ctx context.Context

	// Tolerance is the convergence threshold in log₂ units; a full sweep
	// stops the iteration once the maximum line-sum residual or the
	// maximum potential change drops to this value or below.
	Tolerance float64

	// MaxIterations caps the number of full row+column sweeps per
	// connected component. Reaching the cap is not an error; the result
	// carries Converged=false.
	MaxIterations int

	// RowTargets holds the prescribed line products P_i, one per row.
	// nil means all ones (every row's scaled product balances to 1).
	RowTargets []float64

	// ColTargets holds the prescribed line products Q_j, one per column.
	// nil means all ones.
	ColTargets []float64

	// Balanced requests the balanced matrix diag(r)·A·diag(c) in the result.
	Balanced bool

	// Workers bounds the number of goroutines solving independent
	// connected components. Values ≤ 1 solve sequentially.
	Workers int

	// internal error recorded during option parsing
	err error
}

// DefaultOptions returns Options with sane defaults:
//   - context.Background()
//   - Tolerance = DefaultTolerance
//   - MaxIterations = DefaultMaxIterations
//   - unit targets (nil vectors)
//   - no balanced-matrix output
//   - sequential solving.
func DefaultOptions() Options {
	return Options{
		Ctx:           context.Background(),
		Tolerance:     DefaultTolerance,
		MaxIterations: DefaultMaxIterations,
		Workers:       1,
	}
}

// WithContext sets a custom context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		if ctx != nil {
			o.Ctx = ctx
		}
	}
}

// WithTolerance sets the convergence tolerance in log₂ units.
//
//	tol > 0: accepted
//	otherwise (including NaN): invalid option → ErrOptionViolation
func WithTolerance(tol float64) Option {
	return func(o *Options) {
		if math.IsNaN(tol) || tol <= 0 {
			o.err = fmt.Errorf("%w: Tolerance must be positive (%g)", ErrOptionViolation, tol)
			return
		}
		o.Tolerance = tol
	}
}

// WithMaxIterations caps the number of full sweeps per component.
//
//	n ≥ 1: accepted
//	n < 1: invalid option → ErrOptionViolation
func WithMaxIterations(n int) Option {
	return func(o *Options) {
		if n < 1 {
			o.err = fmt.Errorf("%w: MaxIterations must be at least 1 (%d)", ErrOptionViolation, n)
			return
		}
		o.MaxIterations = n
	}
}

// WithRowTargets prescribes the target line product for every row.
// Length and positivity are validated against the matrix inside Scale.
func WithRowTargets(p []float64) Option {
	return func(o *Options) { o.RowTargets = p }
}

// WithColTargets prescribes the target line product for every column.
func WithColTargets(q []float64) Option {
	return func(o *Options) { o.ColTargets = q }
}

// WithBalanced requests the balanced matrix in the result.
func WithBalanced() Option {
	return func(o *Options) { o.Balanced = true }
}

// WithWorkers solves independent connected components across up to k
// goroutines. Each component owns a disjoint slice range of the potential
// vectors, so no synchronization beyond the final join is needed.
//
//	k ≥ 2: parallel
//	k == 0 or 1: sequential
//	k < 0: invalid option → ErrOptionViolation
func WithWorkers(k int) Option {
	return func(o *Options) {
		if k < 0 {
			o.err = fmt.Errorf("%w: Workers cannot be negative (%d)", ErrOptionViolation, k)
			return
		}
		o.Workers = k
	}
}

// Result holds the outcome of a Scale call:
//   - Left, Right: strictly positive scale vectors r (length m) and
//     c (length n); rows/columns with no nonzero entries get exactly 1.
//   - Balanced: diag(r)·A·diag(c), only when requested via WithBalanced.
//   - Converged: whether every component met the tolerance before the cap.
//   - Iterations: full row+column sweeps used by the slowest component.
//   - Components: number of connected components of the bipartite
//     incidence, degenerate singletons included.
type Result struct {
	Left       []float64
	Right      []float64
	Balanced   *mat.Dense
	Converged  bool
	Iterations int
	Components int
}
