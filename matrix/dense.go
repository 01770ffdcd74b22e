// Package matrix provides the dense numeric buffers shared between the
// fitting tasks of a layer: the input feature matrix and the out-of-fold
// prediction matrix. Row windows are views into the parent's backing array,
// and column writes touch only the addressed cells, so concurrent tasks may
// write disjoint (row range, column) slices without locking.
package matrix

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Dense is a row-major matrix of float64 values.
type Dense struct {
	rows   int
	cols   int
	stride int
	data   []float64
}

// NewDense allocates a rows x cols matrix initialized to zero.
func NewDense(rows, cols int) *Dense {
	if rows < 0 || cols < 0 {
		panic(fmt.Sprintf("matrix: negative dimension %dx%d", rows, cols))
	}
	return &Dense{
		rows:   rows,
		cols:   cols,
		stride: cols,
		data:   make([]float64, rows*cols),
	}
}

// FromRows builds a matrix from a slice of equal-length rows. The data is
// copied.
func FromRows(rows [][]float64) *Dense {
	if len(rows) == 0 {
		return NewDense(0, 0)
	}
	m := NewDense(len(rows), len(rows[0]))
	for i, r := range rows {
		if len(r) != m.cols {
			panic(fmt.Sprintf("matrix: ragged row %d: got %d values, want %d", i, len(r), m.cols))
		}
		copy(m.data[i*m.stride:], r)
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Dense) Dims() (rows, cols int) {
	return m.rows, m.cols
}

// At returns the value at row i, column j.
func (m *Dense) At(i, j int) float64 {
	m.bounds(i, j)
	return m.data[i*m.stride+j]
}

// Set stores v at row i, column j.
func (m *Dense) Set(i, j int, v float64) {
	m.bounds(i, j)
	m.data[i*m.stride+j] = v
}

// Row returns row i as a view into the matrix backing array.
func (m *Dense) Row(i int) []float64 {
	if i < 0 || i >= m.rows {
		panic(fmt.Sprintf("matrix: row %d out of range for %d rows", i, m.rows))
	}
	return m.data[i*m.stride : i*m.stride+m.cols]
}

// RowWindow returns the half-open row range [start, stop) as a view sharing
// the receiver's backing array. Mutations through the view are visible to
// the parent and vice versa.
func (m *Dense) RowWindow(start, stop int) *Dense {
	if start < 0 || stop < start || stop > m.rows {
		panic(fmt.Sprintf("matrix: row window [%d, %d) out of range for %d rows", start, stop, m.rows))
	}
	return &Dense{
		rows:   stop - start,
		cols:   m.cols,
		stride: m.stride,
		data:   m.data[start*m.stride:],
	}
}

// SetCol writes vals down column j, starting at row 0. len(vals) must equal
// the row count.
func (m *Dense) SetCol(j int, vals []float64) {
	m.SetColRange(j, 0, vals)
}

// SetColRange writes vals down column j starting at row start. Only the
// addressed cells are touched, so writers targeting disjoint (row range,
// column) slices never conflict.
func (m *Dense) SetColRange(j, start int, vals []float64) {
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range for %d columns", j, m.cols))
	}
	if start < 0 || start+len(vals) > m.rows {
		panic(fmt.Sprintf("matrix: rows [%d, %d) out of range for %d rows", start, start+len(vals), m.rows))
	}
	for i, v := range vals {
		m.data[(start+i)*m.stride+j] = v
	}
}

// Col returns a copy of column j.
func (m *Dense) Col(j int) []float64 {
	if j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: column %d out of range for %d columns", j, m.cols))
	}
	out := make([]float64, m.rows)
	for i := range out {
		out[i] = m.data[i*m.stride+j]
	}
	return out
}

// Clone returns a deep copy with its own backing array.
func (m *Dense) Clone() *Dense {
	out := NewDense(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		copy(out.data[i*out.stride:(i+1)*out.stride], m.Row(i))
	}
	return out
}

// Equal reports whether the two matrices have the same shape and values.
func (m *Dense) Equal(o *Dense) bool {
	if m.rows != o.rows || m.cols != o.cols {
		return false
	}
	for i := 0; i < m.rows; i++ {
		mr, or := m.Row(i), o.Row(i)
		for j := range mr {
			if mr[j] != or[j] {
				return false
			}
		}
	}
	return true
}

func (m *Dense) bounds(i, j int) {
	if i < 0 || i >= m.rows || j < 0 || j >= m.cols {
		panic(fmt.Sprintf("matrix: index (%d, %d) out of range for %dx%d", i, j, m.rows, m.cols))
	}
}

// denseGob is the serialized form of Dense. Views are materialized, so a
// decoded matrix always owns its backing array.
type denseGob struct {
	Rows, Cols int
	Data       []float64
}

// GobEncode implements gob.GobEncoder so fitted instances that hold matrices
// survive the cache round-trip.
func (m *Dense) GobEncode() ([]byte, error) {
	g := denseGob{Rows: m.rows, Cols: m.cols, Data: make([]float64, 0, m.rows*m.cols)}
	for i := 0; i < m.rows; i++ {
		g.Data = append(g.Data, m.Row(i)...)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(g); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (m *Dense) GobDecode(data []byte) error {
	var g denseGob
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&g); err != nil {
		return err
	}
	m.rows, m.cols, m.stride = g.Rows, g.Cols, g.Cols
	m.data = g.Data
	return nil
}
