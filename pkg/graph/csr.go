package graph

import "sort"

// CSR is a compressed-sparse-row matrix of f32 edge weights: outer row
// pointers, inner column indices, and data, enabling O(nnz) row iteration
// (spec §3, §6).
type CSR struct {
	Rows, Cols int32
	Outer      []int32   // length Rows+1
	Inner      []int32   // length nnz
	Data       []float32 // length nnz
}

// CSRPtrs is the raw-pointer export shape spec §6 requires for interop:
// pointers into the CSR's own backing arrays, valid until the Graph's next
// mutation or destruction.
type CSRPtrs struct {
	NNZ, Rows, Cols int32
	Data            *float32
	Outer           *int32
	Inner           *int32
}

// Pointers exports c's backing arrays without copying.
func (c *CSR) Pointers() CSRPtrs {
	p := CSRPtrs{NNZ: int32(len(c.Data)), Rows: c.Rows, Cols: c.Cols}
	if len(c.Outer) > 0 {
		p.Outer = &c.Outer[0]
	}
	if len(c.Data) > 0 {
		p.Data = &c.Data[0]
		p.Inner = &c.Inner[0]
	}
	return p
}

// NNZ returns the number of stored (nonzero) entries.
func (c *CSR) NNZ() int { return len(c.Data) }

// RowRange returns the [start, end) slice bounds for row within Inner/Data.
func (c *CSR) RowRange(row int) (start, end int32) {
	return c.Outer[row], c.Outer[row+1]
}

// Get returns the weight of edge (row, col) and whether it exists.
func (c *CSR) Get(row, col int) (float32, bool) {
	if row < 0 || row >= int(c.Rows) {
		return 0, false
	}
	start, end := c.RowRange(row)
	// Inner indices are kept sorted ascending within each row, so this
	// could binary-search; rows are short enough in practice that a linear
	// scan keeps the code simple without materially hurting lookups.
	for i := start; i < end; i++ {
		if int(c.Inner[i]) == col {
			return c.Data[i], true
		}
	}
	return 0, false
}

// buildCSR assembles a CSR of the given dimension from a sequence of
// triplets, applying "last write wins" on duplicate (row, col) pairs as
// they are merged — existing entries are expected to be passed first, with
// newly staged triplets passed afterward so they take priority
// (spec §4.C "Compression protocol").
func buildCSR(dim int, triplets []Triplet) *CSR {
	type key struct{ row, col int }
	merged := make(map[key]float32, len(triplets))
	for _, t := range triplets {
		merged[key{int(t.Parent), int(t.Child)}] = t.Weight
	}

	rows := make([][]ChildWeight, dim)
	for k, w := range merged {
		rows[k.row] = append(rows[k.row], ChildWeight{Child: k.col, Weight: w})
	}
	for i := range rows {
		sort.Slice(rows[i], func(a, b int) bool { return rows[i][a].Child < rows[i][b].Child })
	}

	csr := &CSR{Rows: int32(dim), Cols: int32(dim), Outer: make([]int32, dim+1)}
	for i := 0; i < dim; i++ {
		csr.Outer[i+1] = csr.Outer[i] + int32(len(rows[i]))
	}
	csr.Inner = make([]int32, csr.Outer[dim])
	csr.Data = make([]float32, csr.Outer[dim])
	for i := 0; i < dim; i++ {
		start := csr.Outer[i]
		for j, cw := range rows[i] {
			csr.Inner[start+int32(j)] = int32(cw.Child)
			csr.Data[start+int32(j)] = cw.Weight
		}
	}
	return csr
}

// existingTriplets flattens a CSR back into triplet form, so it can be
// merged with newly staged ones by buildCSR.
func existingTriplets(c *CSR) []Triplet {
	if c == nil {
		return nil
	}
	out := make([]Triplet, 0, c.NNZ())
	for row := 0; row < int(c.Rows); row++ {
		start, end := c.RowRange(row)
		for i := start; i < end; i++ {
			out = append(out, Triplet{Parent: row, Child: int(c.Inner[i]), Weight: c.Data[i]})
		}
	}
	return out
}
