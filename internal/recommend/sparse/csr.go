// SAR - Smart Adaptive Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sar

package sparse

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrShape is returned when operand dimensions do not agree.
	ErrShape = errors.New("sparse: shape mismatch")

	// ErrIndexOutOfRange is returned when a coordinate lies outside the matrix.
	ErrIndexOutOfRange = errors.New("sparse: index out of range")
)

// CSR is an immutable compressed sparse row matrix of float64 values.
type CSR struct {
	rows    int
	cols    int
	indptr  []int
	indices []int
	data    []float64
}

// New returns an empty rows x cols matrix.
func New(rows, cols int) *CSR {
	return &CSR{
		rows:   rows,
		cols:   cols,
		indptr: make([]int, rows+1),
	}
}

// FromCOO builds a CSR matrix from coordinate triples. Entries sharing the
// same (row, col) are summed in input order. Entries whose sum is exactly
// zero are not stored.
func FromCOO(rows, cols int, rowIdx, colIdx []int, vals []float64) (*CSR, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: negative dimensions %dx%d", ErrShape, rows, cols)
	}
	if len(rowIdx) != len(colIdx) || len(rowIdx) != len(vals) {
		return nil, fmt.Errorf("%w: coordinate slices differ in length (%d, %d, %d)",
			ErrShape, len(rowIdx), len(colIdx), len(vals))
	}

	counts := make([]int, rows+1)
	for n := range rowIdx {
		r, c := rowIdx[n], colIdx[n]
		if r < 0 || r >= rows || c < 0 || c >= cols {
			return nil, fmt.Errorf("%w: entry %d at (%d, %d) outside %dx%d",
				ErrIndexOutOfRange, n, r, c, rows, cols)
		}
		counts[r+1]++
	}
	for r := 0; r < rows; r++ {
		counts[r+1] += counts[r]
	}

	// Scatter into row buckets, keeping input order within a row.
	next := make([]int, rows)
	copy(next, counts[:rows])
	bucketCols := make([]int, len(vals))
	bucketVals := make([]float64, len(vals))
	for n := range rowIdx {
		r := rowIdx[n]
		bucketCols[next[r]] = colIdx[n]
		bucketVals[next[r]] = vals[n]
		next[r]++
	}

	m := &CSR{
		rows:    rows,
		cols:    cols,
		indptr:  make([]int, rows+1),
		indices: make([]int, 0, len(vals)),
		data:    make([]float64, 0, len(vals)),
	}
	for r := 0; r < rows; r++ {
		lo, hi := counts[r], counts[r+1]
		sort.Stable(rowSorter{cols: bucketCols[lo:hi], vals: bucketVals[lo:hi]})

		for p := lo; p < hi; {
			c := bucketCols[p]
			sum := 0.0
			for ; p < hi && bucketCols[p] == c; p++ {
				sum += bucketVals[p]
			}
			if sum != 0 {
				m.indices = append(m.indices, c)
				m.data = append(m.data, sum)
			}
		}
		m.indptr[r+1] = len(m.indices)
	}
	return m, nil
}

// rowSorter orders one row segment by column index.
type rowSorter struct {
	cols []int
	vals []float64
}

func (s rowSorter) Len() int           { return len(s.cols) }
func (s rowSorter) Less(i, j int) bool { return s.cols[i] < s.cols[j] }
func (s rowSorter) Swap(i, j int) {
	s.cols[i], s.cols[j] = s.cols[j], s.cols[i]
	s.vals[i], s.vals[j] = s.vals[j], s.vals[i]
}

// Rows returns the number of rows.
func (m *CSR) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *CSR) Cols() int { return m.cols }

// Shape returns (rows, cols).
func (m *CSR) Shape() (rows, cols int) { return m.rows, m.cols }

// NNZ returns the number of stored entries.
func (m *CSR) NNZ() int { return len(m.data) }

// Row returns the column indices and values stored in row i.
// The returned slices alias the matrix and must not be modified.
func (m *CSR) Row(i int) (cols []int, vals []float64) {
	lo, hi := m.indptr[i], m.indptr[i+1]
	return m.indices[lo:hi], m.data[lo:hi]
}

// At returns the value at (i, j), or 0 when no entry is stored.
func (m *CSR) At(i, j int) float64 {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		return 0
	}
	cols, vals := m.Row(i)
	k := sort.SearchInts(cols, j)
	if k < len(cols) && cols[k] == j {
		return vals[k]
	}
	return 0
}

// Sum returns the sum of all stored values.
func (m *CSR) Sum() float64 {
	total := 0.0
	for _, v := range m.data {
		total += v
	}
	return total
}

// RowSums returns the per-row sums.
func (m *CSR) RowSums() []float64 {
	sums := make([]float64, m.rows)
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			sums[i] += m.data[p]
		}
	}
	return sums
}

// ColSums returns the per-column sums.
func (m *CSR) ColSums() []float64 {
	sums := make([]float64, m.cols)
	for p, c := range m.indices {
		sums[c] += m.data[p]
	}
	return sums
}

// ColNonzero returns the number of stored entries in each column.
func (m *CSR) ColNonzero() []int {
	counts := make([]int, m.cols)
	for _, c := range m.indices {
		counts[c]++
	}
	return counts
}

// Transpose returns the cols x rows transpose.
func (m *CSR) Transpose() *CSR {
	t := &CSR{
		rows:    m.cols,
		cols:    m.rows,
		indptr:  make([]int, m.cols+1),
		indices: make([]int, len(m.indices)),
		data:    make([]float64, len(m.data)),
	}
	for _, c := range m.indices {
		t.indptr[c+1]++
	}
	for c := 0; c < m.cols; c++ {
		t.indptr[c+1] += t.indptr[c]
	}

	next := make([]int, m.cols)
	copy(next, t.indptr[:m.cols])
	// Rows are visited in order, so each transposed row stays sorted.
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			c := m.indices[p]
			t.indices[next[c]] = i
			t.data[next[c]] = m.data[p]
			next[c]++
		}
	}
	return t
}

// Mul returns the product a x b. Only nonzero results are stored.
func Mul(a, b *CSR) (*CSR, error) {
	if a.cols != b.rows {
		return nil, fmt.Errorf("%w: cannot multiply %dx%d by %dx%d", ErrShape, a.rows, a.cols, b.rows, b.cols)
	}

	out := &CSR{
		rows:   a.rows,
		cols:   b.cols,
		indptr: make([]int, a.rows+1),
	}

	acc := make([]float64, b.cols)
	mark := make([]int, b.cols)
	for j := range mark {
		mark[j] = -1
	}
	touched := make([]int, 0, 64)

	for i := 0; i < a.rows; i++ {
		touched = touched[:0]
		for p := a.indptr[i]; p < a.indptr[i+1]; p++ {
			k, av := a.indices[p], a.data[p]
			for q := b.indptr[k]; q < b.indptr[k+1]; q++ {
				j := b.indices[q]
				if mark[j] != i {
					mark[j] = i
					acc[j] = 0
					touched = append(touched, j)
				}
				acc[j] += av * b.data[q]
			}
		}
		sort.Ints(touched)
		for _, j := range touched {
			if acc[j] != 0 {
				out.indices = append(out.indices, j)
				out.data = append(out.data, acc[j])
			}
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out, nil
}

// MulRowInto writes row i of m multiplied by b into dst, which must have
// length b.Cols(). Entries of dst not reached by the product are set to 0.
func (m *CSR) MulRowInto(i int, b *CSR, dst []float64) error {
	if m.cols != b.rows {
		return fmt.Errorf("%w: cannot multiply row of %dx%d by %dx%d", ErrShape, m.rows, m.cols, b.rows, b.cols)
	}
	if len(dst) != b.cols {
		return fmt.Errorf("%w: destination length %d, want %d", ErrShape, len(dst), b.cols)
	}
	if i < 0 || i >= m.rows {
		return fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, i, m.rows)
	}

	for j := range dst {
		dst[j] = 0
	}
	for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
		k, av := m.indices[p], m.data[p]
		for q := b.indptr[k]; q < b.indptr[k+1]; q++ {
			dst[b.indices[q]] += av * b.data[q]
		}
	}
	return nil
}

// Map returns a matrix with the same sparsity pattern whose values are
// fn(i, j, v). Results equal to zero are dropped.
func (m *CSR) Map(fn func(i, j int, v float64) float64) *CSR {
	out := &CSR{
		rows:    m.rows,
		cols:    m.cols,
		indptr:  make([]int, m.rows+1),
		indices: make([]int, 0, len(m.indices)),
		data:    make([]float64, 0, len(m.data)),
	}
	for i := 0; i < m.rows; i++ {
		for p := m.indptr[i]; p < m.indptr[i+1]; p++ {
			j := m.indices[p]
			if v := fn(i, j, m.data[p]); v != 0 {
				out.indices = append(out.indices, j)
				out.data = append(out.data, v)
			}
		}
		out.indptr[i+1] = len(out.indices)
	}
	return out
}
