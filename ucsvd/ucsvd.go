package ucsvd

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/ucscale/dscale"
)

var (
	// ErrFactorization is returned when the SVD of the balanced matrix
	// fails to converge inside gonum.
	ErrFactorization = errors.New("ucsvd: SVD factorization failed")

	// ErrNilDst is returned when a nil destination matrix is passed.
	ErrNilDst = errors.New("ucsvd: destination matrix is nil")
)

// machEps is the double-precision machine epsilon, 2⁻⁵².
const machEps = 1.0 / (1 << 52)

// Decomposition is the unit-consistent SVD of a matrix A: the thin SVD of
// the balanced matrix S = diag(r)·A·diag(c) together with the recovered
// scale vectors. All products derived from it (singular values, the
// pseudoinverse) are invariant under diagonal rescaling of A.
type Decomposition struct {
	left  []float64 // r, length m
	right []float64 // c, length n
	svd   mat.SVD
	m, n  int
}

// Decompose balances a with dscale.Scale and factorizes the balanced
// matrix. Any dscale option (targets, tolerance, workers, context) may be
// forwarded. Errors from the balancing step are propagated unchanged;
// ErrFactorization reports an SVD convergence failure.
func Decompose(a mat.Matrix, opts ...dscale.Option) (*Decomposition, error) {
	all := make([]dscale.Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, dscale.WithBalanced())

	res, err := dscale.Scale(a, all...)
	if err != nil {
		return nil, err
	}

	d := &Decomposition{
		left:  res.Left,
		right: res.Right,
	}
	d.m, d.n = res.Balanced.Dims()
	if ok := d.svd.Factorize(res.Balanced, mat.SVDThin); !ok {
		return nil, ErrFactorization
	}

	return d, nil
}

// Values returns the unit-consistent singular values — the singular
// values of the balanced matrix, in descending order. If dst is non-nil
// it is used as storage and must have length min(m, n).
func (d *Decomposition) Values(dst []float64) []float64 {
	return d.svd.Values(dst)
}

// Condition returns σmax/σmin of the balanced matrix, +Inf when the
// smallest singular value is zero.
func (d *Decomposition) Condition() float64 {
	s := d.svd.Values(nil)
	if s[len(s)-1] == 0 {
		return math.Inf(1)
	}

	return s[0] / s[len(s)-1]
}

// PseudoinverseTo writes the unit-consistent pseudoinverse of the
// original matrix into dst (reshaped to n×m):
//
//	A⁺ = diag(c) · S⁺ · diag(r),  S⁺ = V · Σ⁺ · Uᵀ
//
// Singular values at or below rcond·σmax are treated as zero; rcond ≤ 0
// selects the default max(m,n)·2⁻⁵².
func (d *Decomposition) PseudoinverseTo(dst *mat.Dense, rcond float64) error {
	if dst == nil {
		return ErrNilDst
	}
	if rcond <= 0 {
		rcond = float64(max(d.m, d.n)) * machEps
	}

	var u, v mat.Dense
	d.svd.UTo(&u)
	d.svd.VTo(&v)
	s := d.svd.Values(nil)

	// invert the spectrum above the cutoff
	cutoff := rcond * s[0]
	inv := make([]float64, len(s))
	for i, sv := range s {
		if sv > cutoff {
			inv[i] = 1 / sv
		}
	}

	// S⁺ = V·Σ⁺·Uᵀ, then undo the balancing on both sides
	var pinv mat.Dense
	pinv.Product(&v, mat.NewDiagDense(len(inv), inv), u.T())
	dst.Product(mat.NewDiagDense(d.n, d.right), &pinv, mat.NewDiagDense(d.m, d.left))

	return nil
}

// Pseudoinverse is the one-shot convenience: balance, factorize and
// return the unit-consistent pseudoinverse with the default cutoff.
func Pseudoinverse(a mat.Matrix) (*mat.Dense, error) {
	d, err := Decompose(a)
	if err != nil {
		return nil, err
	}

	var dst mat.Dense
	if err := d.PseudoinverseTo(&dst, 0); err != nil {
		return nil, err
	}

	return &dst, nil
}
