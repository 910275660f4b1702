package dscale

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// halfEdge is one structurally nonzero entry as seen from one side of the
// bipartite incidence: the opposite line's index and log₂|a_ij|.
type halfEdge struct {
	to int
	w  float64
}

// pattern is the read-only nonzero structure of the input matrix, derived
// once per call and never mutated afterwards. Magnitudes are kept in log₂
// domain so the multiplicative balance problem becomes additive and
// repeated products of very large or very small entries cannot overflow.
type pattern struct {
	m, n     int
	rowEdges [][]halfEdge // per row: (column, log₂ magnitude)
	colEdges [][]halfEdge // per column: (row, log₂ magnitude)
	nonzeros int
}

// extractPattern scans a once in row-major order and records every
// structurally nonzero entry on both sides of the incidence.
// A row or column left with an empty edge list is degenerate: it joins no
// balance equation and keeps scale factor 1.
// Returns ErrNonFinite if a nonzero entry is NaN or ±Inf.
//
// Time:   O(m·n).
// Memory: O(m + n + nnz).
func extractPattern(a mat.Matrix) (*pattern, error) {
	m, n := a.Dims()
	p := &pattern{
		m:        m,
		n:        n,
		rowEdges: make([][]halfEdge, m),
		colEdges: make([][]halfEdge, n),
	}

	var v float64
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			v = a.At(i, j)
			if v == 0 {
				continue // structural zero: excluded from balance equations
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: entry (%d,%d) = %g", ErrNonFinite, i, j, v)
			}
			w := math.Log2(math.Abs(v))
			p.rowEdges[i] = append(p.rowEdges[i], halfEdge{to: j, w: w})
			p.colEdges[j] = append(p.colEdges[j], halfEdge{to: i, w: w})
			p.nonzeros++
		}
	}

	return p, nil
}
