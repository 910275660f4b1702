package dscale_test

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/ucscale/dscale"
)

// emptyMatrix is a 0×0 mat.Matrix; gonum's constructors reject zero
// dimensions, so the empty-input guard needs a bespoke stub.
type emptyMatrix struct{}

func (emptyMatrix) Dims() (int, int)    { return 0, 0 }
func (emptyMatrix) At(_, _ int) float64 { return 0 }
func (e emptyMatrix) T() mat.Matrix     { return mat.Transpose{Matrix: e} }

// absLineProduct multiplies |b_ij| along row i (axis 0) or column j
// (axis 1) over the nonzero entries of b.
func absLineProduct(b *mat.Dense, axis, idx int) float64 {
	m, n := b.Dims()
	prod := 1.0
	if axis == 0 {
		for j := 0; j < n; j++ {
			if v := b.At(idx, j); v != 0 {
				prod *= math.Abs(v)
			}
		}
	} else {
		for i := 0; i < m; i++ {
			if v := b.At(i, idx); v != 0 {
				prod *= math.Abs(v)
			}
		}
	}

	return prod
}

// TestScale_DiagonalExact: a diagonal matrix is degree-1 everywhere, so
// the solver lands on the exact closed-form scaling in one sweep and the
// pinned gauge splits each entry's log evenly between its row and column.
func TestScale_DiagonalExact(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		2, 0,
		0, 8,
	})

	res, err := dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1, res.Iterations, "degree-1 pattern converges in one sweep")
	assert.Equal(t, 2, res.Components, "each diagonal entry is its own component")

	// r_i = c_i = 2^(-log2(a_ii)/2)
	assert.InDelta(t, math.Exp2(-0.5), res.Left[0], 1e-12)
	assert.InDelta(t, math.Exp2(-1.5), res.Left[1], 1e-12)
	assert.InDelta(t, math.Exp2(-0.5), res.Right[0], 1e-12)
	assert.InDelta(t, math.Exp2(-1.5), res.Right[1], 1e-12)

	assert.InDelta(t, 1.0, res.Left[0]*2*res.Right[0], 1e-12, "row 0 product balances to 1")
	assert.InDelta(t, 1.0, res.Left[1]*8*res.Right[1], 1e-12, "row 1 product balances to 1")
}

// TestScale_FullCycle: a fully connected 2×2 pattern contains one cycle;
// the solver reaches the least-squares balance well within the default
// cap and every line product of the balanced matrix is 1.
func TestScale_FullCycle(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})

	res, err := dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Less(t, res.Iterations, dscale.DefaultMaxIterations)
	assert.Equal(t, 1, res.Components)

	for i := 0; i < 2; i++ {
		assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 0, i), 1e-8, "row %d product", i)
		assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 1, i), 1e-8, "column %d product", i)
	}
}

// TestScale_ZeroRow: an all-zero row is degenerate — scale factor exactly
// 1 — while the remaining single-row component balances normally.
func TestScale_ZeroRow(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})

	res, err := dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)

	assert.True(t, res.Converged)
	assert.Equal(t, 1.0, res.Left[0], "degenerate row must get exactly 1")
	assert.Equal(t, 2, res.Components)
	assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 0, 1), 1e-10, "live row balances to 1")
	assert.Zero(t, res.Balanced.At(0, 0), "structural zeros stay zero")
	assert.Zero(t, res.Balanced.At(0, 1))
}

// TestScale_Targets: non-unit line products. Row/column targets are
// mutually consistent here, so each line's product of balanced magnitudes
// must equal its target, not 1.
func TestScale_Targets(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		1, 2,
		0, 4,
	})

	res, err := dscale.Scale(a,
		dscale.WithRowTargets([]float64{4, 1}),
		dscale.WithColTargets([]float64{1, 4}),
		dscale.WithBalanced(),
	)
	require.NoError(t, err)
	require.True(t, res.Converged)

	assert.InDelta(t, 4.0, absLineProduct(res.Balanced, 0, 0), 1e-8, "row 0 target")
	assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 0, 1), 1e-8, "row 1 target")
	assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 1, 0), 1e-8, "column 0 target")
	assert.InDelta(t, 4.0, absLineProduct(res.Balanced, 1, 1), 1e-8, "column 1 target")
}

// TestScale_SignPreservation: scale factors are positive, so the sign of
// every entry survives balancing.
func TestScale_SignPreservation(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{
		-2, 3, 0,
		5, -7, 11,
	})

	res, err := dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)

	m, n := a.Dims()
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			orig, bal := a.At(i, j), res.Balanced.At(i, j)
			if orig == 0 {
				assert.Zero(t, bal)
				continue
			}
			assert.Equal(t, math.Signbit(orig), math.Signbit(bal), "sign flip at (%d,%d)", i, j)
		}
	}
}

// TestScale_PositivityAndDegenerates: random sparse signed input — all
// scale factors strictly positive, all-zero lines exactly 1, under both
// a loose and a tight convergence policy.
func TestScale_PositivityAndDegenerates(t *testing.T) {
	rnd := rand.New(rand.NewSource(13))
	a := mat.NewDense(6, 5, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j < 5; j++ {
			if i == 2 || j == 4 || rnd.Float64() < 0.3 {
				continue // keep row 2 and column 4 all-zero, plus random holes
			}
			v := (0.5 + 1.5*rnd.Float64())
			if rnd.Float64() < 0.5 {
				v = -v
			}
			a.Set(i, j, v)
		}
	}

	for _, opts := range [][]dscale.Option{
		nil,
		{dscale.WithTolerance(1e-3), dscale.WithMaxIterations(2)},
	} {
		res, err := dscale.Scale(a, opts...)
		require.NoError(t, err)
		for i, r := range res.Left {
			assert.Positive(t, r, "row scale %d", i)
		}
		for j, c := range res.Right {
			assert.Positive(t, c, "column scale %d", j)
		}
		assert.Equal(t, 1.0, res.Left[2], "all-zero row pinned to exactly 1")
		assert.Equal(t, 1.0, res.Right[4], "all-zero column pinned to exactly 1")
	}
}

// TestScale_Idempotence: scaling an already balanced matrix is a no-op —
// the second pass returns unit scale vectors.
func TestScale_Idempotence(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{
		1, 2,
		3, 4,
	})

	first, err := dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)
	require.True(t, first.Converged)

	second, err := dscale.Scale(first.Balanced)
	require.NoError(t, err)
	assert.True(t, second.Converged)
	for i := range second.Left {
		assert.InDelta(t, 1.0, second.Left[i], 1e-6, "row scale %d", i)
	}
	for j := range second.Right {
		assert.InDelta(t, 1.0, second.Right[j], 1e-6, "column scale %d", j)
	}
}

// TestScale_RandomConsistent: random connected matrices with unit targets
// converge and balance every live line to product 1.
func TestScale_RandomConsistent(t *testing.T) {
	rnd := rand.New(rand.NewSource(99))
	for trial := 0; trial < 10; trial++ {
		m, n := 4+rnd.Intn(4), 4+rnd.Intn(5)
		a := mat.NewDense(m, n, nil)
		for i := 0; i < m; i++ {
			for j := 0; j < n; j++ {
				if rnd.Float64() < 0.25 {
					continue
				}
				v := math.Exp2(6 * (rnd.Float64() - 0.5)) // magnitudes across ~4 decades
				if rnd.Float64() < 0.5 {
					v = -v
				}
				a.Set(i, j, v)
			}
		}

		res, err := dscale.Scale(a, dscale.WithBalanced(), dscale.WithMaxIterations(1000))
		require.NoError(t, err)
		require.True(t, res.Converged, "trial %d must converge", trial)

		// degenerate lines contribute an empty product, which is exactly 1
		for i := 0; i < m; i++ {
			assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 0, i), 1e-6, "trial %d row %d", trial, i)
		}
		for j := 0; j < n; j++ {
			assert.InDelta(t, 1.0, absLineProduct(res.Balanced, 1, j), 1e-6, "trial %d column %d", trial, j)
		}
	}
}

// TestScale_InconsistentTargetsHitCap: a single edge cannot satisfy two
// different line targets at once; the sweeps drift, the cap fires, and the
// best-effort result is returned without an error.
func TestScale_InconsistentTargetsHitCap(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{2})

	res, err := dscale.Scale(a,
		dscale.WithRowTargets([]float64{4}),
		dscale.WithColTargets([]float64{1}),
		dscale.WithMaxIterations(25),
	)
	require.NoError(t, err, "non-convergence is informational, never fatal")

	assert.False(t, res.Converged)
	assert.Equal(t, 25, res.Iterations)
	assert.Positive(t, res.Left[0])
	assert.Positive(t, res.Right[0])
	assert.False(t, math.IsNaN(res.Left[0]) || math.IsInf(res.Left[0], 0))
}

// TestScale_ParallelMatchesSequential: components own disjoint potential
// ranges, so worker fan-out must be bit-for-bit identical to the
// sequential solve.
func TestScale_ParallelMatchesSequential(t *testing.T) {
	// three independent blocks on the diagonal
	a := mat.NewDense(6, 6, nil)
	a.Set(0, 0, 2)
	a.Set(0, 1, -3)
	a.Set(1, 0, 5)
	a.Set(2, 2, 7)
	a.Set(3, 3, 0.25)
	a.Set(3, 4, 8)
	a.Set(4, 3, -16)
	a.Set(5, 5, 9)

	seq, err := dscale.Scale(a)
	require.NoError(t, err)
	par, err := dscale.Scale(a, dscale.WithWorkers(4))
	require.NoError(t, err)

	assert.Equal(t, seq.Left, par.Left)
	assert.Equal(t, seq.Right, par.Right)
	assert.Equal(t, seq.Converged, par.Converged)
	assert.Equal(t, seq.Iterations, par.Iterations)
	assert.Equal(t, seq.Components, par.Components)
}

// TestScale_ContextCanceled verifies cancellation surfaces as the context
// error before results are produced.
func TestScale_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	_, err := dscale.Scale(a, dscale.WithContext(ctx))
	assert.ErrorIs(t, err, context.Canceled)
}

// TestScale_BalancedOnlyOnRequest: the balanced matrix is opt-in.
func TestScale_BalancedOnlyOnRequest(t *testing.T) {
	a := mat.NewDense(1, 2, []float64{3, 5})

	res, err := dscale.Scale(a)
	require.NoError(t, err)
	assert.Nil(t, res.Balanced)

	res, err = dscale.Scale(a, dscale.WithBalanced())
	require.NoError(t, err)
	assert.NotNil(t, res.Balanced)
}

// TestScale_InputErrors exercises every precondition sentinel.
func TestScale_InputErrors(t *testing.T) {
	valid := mat.NewDense(1, 1, []float64{1})

	_, err := dscale.Scale(nil)
	assert.ErrorIs(t, err, dscale.ErrNilMatrix)

	_, err = dscale.Scale(emptyMatrix{})
	assert.ErrorIs(t, err, dscale.ErrEmptyMatrix)

	bad := mat.NewDense(1, 2, []float64{1, math.NaN()})
	_, err = dscale.Scale(bad)
	assert.ErrorIs(t, err, dscale.ErrNonFinite)

	bad.Set(0, 1, math.Inf(-1))
	_, err = dscale.Scale(bad)
	assert.ErrorIs(t, err, dscale.ErrNonFinite)

	_, err = dscale.Scale(valid, dscale.WithRowTargets([]float64{1, 1}))
	assert.ErrorIs(t, err, dscale.ErrTargetLength)

	_, err = dscale.Scale(valid, dscale.WithColTargets(nil))
	assert.NoError(t, err, "nil targets mean all ones")

	for _, target := range []float64{0, -3, math.NaN(), math.Inf(1)} {
		_, err = dscale.Scale(valid, dscale.WithRowTargets([]float64{target}))
		assert.ErrorIs(t, err, dscale.ErrTargetValue, "target %g", target)
	}
}

// TestScale_OptionViolations: nonsensical option values are rejected at
// the entry point before any work happens.
func TestScale_OptionViolations(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{1})

	for name, opt := range map[string]dscale.Option{
		"zero tolerance":     dscale.WithTolerance(0),
		"negative tolerance": dscale.WithTolerance(-1e-9),
		"NaN tolerance":      dscale.WithTolerance(math.NaN()),
		"zero iterations":    dscale.WithMaxIterations(0),
		"negative workers":   dscale.WithWorkers(-2),
	} {
		_, err := dscale.Scale(a, opt)
		assert.ErrorIs(t, err, dscale.ErrOptionViolation, name)
	}
}
