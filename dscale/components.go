package dscale

// component is a maximal set of rows and columns linked transitively
// through nonzero entries. Balance equations never couple lines across
// components, so each one is solved independently. Rows and columns with
// no nonzero entries form singleton components with edges == 0; they
// bypass the solver entirely.
type component struct {
	rows  []int
	cols  []int
	edges int
}

// connectedComponents partitions the bipartite row/column node set of p.
// Traversal uses an explicit work-list and visited markers (no recursion),
// and seeds strictly by ascending row index, then sweeps up leftover
// all-zero columns by ascending column index, so component enumeration is
// deterministic and reproducible across runs.
//
// Node encoding inside the queue: rows are 0..m-1, columns are m..m+n-1.
//
// Time:   O(m + n + nnz).
// Memory: O(m + n) for visited flags plus the output.
func connectedComponents(p *pattern) []component {
	seenRow := make([]bool, p.m)
	seenCol := make([]bool, p.n)
	var comps []component

	for i := 0; i < p.m; i++ {
		if seenRow[i] {
			continue
		}
		seenRow[i] = true
		if len(p.rowEdges[i]) == 0 {
			// degenerate row: singleton, no edges
			comps = append(comps, component{rows: []int{i}})
			continue
		}

		// BFS to collect the component reachable from row i
		queue := []int{i}
		var comp component
		for qi := 0; qi < len(queue); qi++ {
			u := queue[qi]
			if u < p.m {
				comp.rows = append(comp.rows, u)
				comp.edges += len(p.rowEdges[u])
				for _, e := range p.rowEdges[u] {
					if !seenCol[e.to] {
						seenCol[e.to] = true
						queue = append(queue, p.m+e.to)
					}
				}
			} else {
				j := u - p.m
				comp.cols = append(comp.cols, j)
				for _, e := range p.colEdges[j] {
					if !seenRow[e.to] {
						seenRow[e.to] = true
						queue = append(queue, e.to)
					}
				}
			}
		}
		comps = append(comps, comp)
	}

	// columns never reached above have no nonzero entries: singletons
	for j := 0; j < p.n; j++ {
		if !seenCol[j] {
			comps = append(comps, component{cols: []int{j}})
		}
	}

	return comps
}
