// Package table implements a heterogeneous column store with per-cell
// validity and a row-selection bitset, the tabular companion of the
// pixel-array engine.
package table

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalInput is returned when an argument is structurally
	// nonsensical for the operation.
	ErrIllegalInput = errors.New("table: illegal input")

	// ErrAccessOutOfRange is returned when a row index falls outside the
	// table.
	ErrAccessOutOfRange = errors.New("table: access out of range")

	// ErrIncompatibleInput is returned when two individually valid inputs
	// cannot be combined, such as tables of differing structure.
	ErrIncompatibleInput = errors.New("table: incompatible input")

	// ErrInvalidType is returned when an operation is undefined for a
	// column's type.
	ErrInvalidType = errors.New("table: invalid type")

	// ErrDataNotFound is returned when a named column does not exist.
	ErrDataNotFound = errors.New("table: data not found")
)

// ColumnType tags the element type of a column. Array types hold a
// fixed-depth sequence of the scalar type per cell.
type ColumnType int

const (
	ColInt ColumnType = iota + 1
	ColDouble
	ColComplex
	ColString
	ColIntArray
	ColDoubleArray
	ColComplexArray
)

// String returns the type name.
func (t ColumnType) String() string {
	switch t {
	case ColInt:
		return "int"
	case ColDouble:
		return "double"
	case ColComplex:
		return "complex"
	case ColString:
		return "string"
	case ColIntArray:
		return "int array"
	case ColDoubleArray:
		return "double array"
	case ColComplexArray:
		return "complex array"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// IsNumeric reports whether column arithmetic is defined for the type.
func (t ColumnType) IsNumeric() bool {
	return t == ColInt || t == ColDouble || t == ColComplex
}

type column struct {
	typ   ColumnType
	depth int
	i64   []int64
	f64   []float64
	c128  []complex128
	str   []string
	ai64  [][]int64
	af64  [][]float64
	ac128 [][]complex128
	valid []bool
}

// Table is an ordered set of named columns of equal row count, with a
// per-cell validity flag and a per-row selection bitset. New rows start
// invalid in every column and selected.
type Table struct {
	rows     int
	order    []string
	cols     map[string]*column
	selected []bool
}

// New creates a table with the given number of rows and no columns.
func New(rows int) (*Table, error) {
	if rows < 0 {
		return nil, fmt.Errorf("%w: %d rows", ErrIllegalInput, rows)
	}
	t := &Table{rows: rows, cols: make(map[string]*column)}
	t.selected = make([]bool, rows)
	for i := range t.selected {
		t.selected[i] = true
	}
	return t, nil
}

// Rows returns the number of rows.
func (t *Table) Rows() int { return t.rows }

// ColumnNames returns the column names in creation order.
func (t *Table) ColumnNames() []string {
	return append([]string(nil), t.order...)
}

// Has reports whether the named column exists.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Type returns the named column's type.
func (t *Table) Type(name string) (ColumnType, error) {
	c, err := t.column(name)
	if err != nil {
		return 0, err
	}
	return c.typ, nil
}

// Depth returns the named column's array depth, 0 for scalar columns.
func (t *Table) Depth(name string) (int, error) {
	c, err := t.column(name)
	if err != nil {
		return 0, err
	}
	return c.depth, nil
}

func (t *Table) column(name string) (*column, error) {
	c, ok := t.cols[name]
	if !ok {
		return nil, fmt.Errorf("%w: column %q", ErrDataNotFound, name)
	}
	return c, nil
}

func (t *Table) checkRow(row int) error {
	if row < 0 || row >= t.rows {
		return fmt.Errorf("%w: row %d of %d", ErrAccessOutOfRange, row, t.rows)
	}
	return nil
}

func (t *Table) put(name string, c *column) {
	if _, ok := t.cols[name]; !ok {
		t.order = append(t.order, name)
	}
	t.cols[name] = c
}

// Erase removes the named column.
func (t *Table) Erase(name string) error {
	if _, err := t.column(name); err != nil {
		return err
	}
	delete(t.cols, name)
	for i, n := range t.order {
		if n == name {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Assign creates or replaces the named column from a value sequence,
// inferring the column type from the sequence's element type: integers
// become an int column, floats a double column, complex values a complex
// column, strings a string column, and nested sequences a fixed-depth
// array column of the inner type. Re-assigning an existing name with a
// differently-typed sequence replaces the column's type, not just its
// values. The sequence length must equal the table's row count, and
// every assigned cell becomes valid.
//
// Accepted sequence types: []int64, []int, []float64, []complex128,
// []string, [][]int64, [][]float64 and [][]complex128.
func (t *Table) Assign(name string, values any) error {
	if name == "" {
		return fmt.Errorf("%w: empty column name", ErrIllegalInput)
	}
	switch vs := values.(type) {
	case []int64:
		return t.assignInt(name, vs)
	case []int:
		conv := make([]int64, len(vs))
		for i, v := range vs {
			conv[i] = int64(v)
		}
		return t.assignInt(name, conv)
	case []float64:
		if err := t.checkLen(len(vs)); err != nil {
			return err
		}
		c := &column{typ: ColDouble, f64: append([]float64(nil), vs...), valid: allValid(len(vs))}
		t.put(name, c)
		return nil
	case []complex128:
		if err := t.checkLen(len(vs)); err != nil {
			return err
		}
		c := &column{typ: ColComplex, c128: append([]complex128(nil), vs...), valid: allValid(len(vs))}
		t.put(name, c)
		return nil
	case []string:
		if err := t.checkLen(len(vs)); err != nil {
			return err
		}
		c := &column{typ: ColString, str: append([]string(nil), vs...), valid: allValid(len(vs))}
		t.put(name, c)
		return nil
	case [][]int64:
		depth, err := t.arrayDepth(len(vs), func(i int) int { return len(vs[i]) })
		if err != nil {
			return err
		}
		c := &column{typ: ColIntArray, depth: depth, ai64: make([][]int64, len(vs)), valid: allValid(len(vs))}
		for i, a := range vs {
			c.ai64[i] = append([]int64(nil), a...)
		}
		t.put(name, c)
		return nil
	case [][]float64:
		depth, err := t.arrayDepth(len(vs), func(i int) int { return len(vs[i]) })
		if err != nil {
			return err
		}
		c := &column{typ: ColDoubleArray, depth: depth, af64: make([][]float64, len(vs)), valid: allValid(len(vs))}
		for i, a := range vs {
			c.af64[i] = append([]float64(nil), a...)
		}
		t.put(name, c)
		return nil
	case [][]complex128:
		depth, err := t.arrayDepth(len(vs), func(i int) int { return len(vs[i]) })
		if err != nil {
			return err
		}
		c := &column{typ: ColComplexArray, depth: depth, ac128: make([][]complex128, len(vs)), valid: allValid(len(vs))}
		for i, a := range vs {
			c.ac128[i] = append([]complex128(nil), a...)
		}
		t.put(name, c)
		return nil
	default:
		return fmt.Errorf("%w: cannot infer a column type from %T", ErrInvalidType, values)
	}
}

func (t *Table) assignInt(name string, vs []int64) error {
	if err := t.checkLen(len(vs)); err != nil {
		return err
	}
	c := &column{typ: ColInt, i64: append([]int64(nil), vs...), valid: allValid(len(vs))}
	t.put(name, c)
	return nil
}

func (t *Table) checkLen(n int) error {
	if n != t.rows {
		return fmt.Errorf("%w: %d values for %d rows", ErrIncompatibleInput, n, t.rows)
	}
	return nil
}

// arrayDepth validates that every cell of an array assignment has the
// same length and returns it.
func (t *Table) arrayDepth(n int, lenAt func(int) int) (int, error) {
	if err := t.checkLen(n); err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	depth := lenAt(0)
	for i := 1; i < n; i++ {
		if lenAt(i) != depth {
			return 0, fmt.Errorf("%w: ragged array column, depth %d vs %d", ErrIllegalInput, lenAt(i), depth)
		}
	}
	return depth, nil
}

func allValid(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// NewColumn creates an empty column of the given type. Every cell starts
// invalid. Array types require a positive depth; scalar types ignore it.
func (t *Table) NewColumn(name string, typ ColumnType, depth int) error {
	if name == "" {
		return fmt.Errorf("%w: empty column name", ErrIllegalInput)
	}
	c := &column{typ: typ, valid: make([]bool, t.rows)}
	switch typ {
	case ColInt:
		c.i64 = make([]int64, t.rows)
	case ColDouble:
		c.f64 = make([]float64, t.rows)
	case ColComplex:
		c.c128 = make([]complex128, t.rows)
	case ColString:
		c.str = make([]string, t.rows)
	case ColIntArray, ColDoubleArray, ColComplexArray:
		if depth < 1 {
			return fmt.Errorf("%w: array depth %d", ErrIllegalInput, depth)
		}
		c.depth = depth
		switch typ {
		case ColIntArray:
			c.ai64 = make([][]int64, t.rows)
		case ColDoubleArray:
			c.af64 = make([][]float64, t.rows)
		default:
			c.ac128 = make([][]complex128, t.rows)
		}
	default:
		return fmt.Errorf("%w: column type %d", ErrIllegalInput, int(typ))
	}
	t.put(name, c)
	return nil
}

// IsValid reports whether the cell at (name, row) holds a value.
func (t *Table) IsValid(name string, row int) (bool, error) {
	c, err := t.column(name)
	if err != nil {
		return false, err
	}
	if err := t.checkRow(row); err != nil {
		return false, err
	}
	return c.valid[row], nil
}

// SetInvalid marks the cell at (name, row) as holding no value. The
// stored sentinel is unspecified.
func (t *Table) SetInvalid(name string, row int) error {
	c, err := t.column(name)
	if err != nil {
		return err
	}
	if err := t.checkRow(row); err != nil {
		return err
	}
	c.valid[row] = false
	return nil
}

func (t *Table) cellFor(name string, row int, want ...ColumnType) (*column, error) {
	c, err := t.column(name)
	if err != nil {
		return nil, err
	}
	if err := t.checkRow(row); err != nil {
		return nil, err
	}
	for _, w := range want {
		if c.typ == w {
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: column %q is %s", ErrInvalidType, name, c.typ)
}

// GetInt reads an int cell. ok is false for an invalid cell.
func (t *Table) GetInt(name string, row int) (v int64, ok bool, err error) {
	c, err := t.cellFor(name, row, ColInt)
	if err != nil {
		return 0, false, err
	}
	return c.i64[row], c.valid[row], nil
}

// SetInt writes an int cell, making it valid.
func (t *Table) SetInt(name string, row int, v int64) error {
	c, err := t.cellFor(name, row, ColInt)
	if err != nil {
		return err
	}
	c.i64[row] = v
	c.valid[row] = true
	return nil
}

// GetDouble reads a double cell. ok is false for an invalid cell.
func (t *Table) GetDouble(name string, row int) (v float64, ok bool, err error) {
	c, err := t.cellFor(name, row, ColDouble)
	if err != nil {
		return 0, false, err
	}
	return c.f64[row], c.valid[row], nil
}

// SetDouble writes a double cell, making it valid.
func (t *Table) SetDouble(name string, row int, v float64) error {
	c, err := t.cellFor(name, row, ColDouble)
	if err != nil {
		return err
	}
	c.f64[row] = v
	c.valid[row] = true
	return nil
}

// GetComplex reads a complex cell. ok is false for an invalid cell.
func (t *Table) GetComplex(name string, row int) (v complex128, ok bool, err error) {
	c, err := t.cellFor(name, row, ColComplex)
	if err != nil {
		return 0, false, err
	}
	return c.c128[row], c.valid[row], nil
}

// SetComplex writes a complex cell, making it valid.
func (t *Table) SetComplex(name string, row int, v complex128) error {
	c, err := t.cellFor(name, row, ColComplex)
	if err != nil {
		return err
	}
	c.c128[row] = v
	c.valid[row] = true
	return nil
}

// GetString reads a string cell. ok is false for an invalid cell.
func (t *Table) GetString(name string, row int) (v string, ok bool, err error) {
	c, err := t.cellFor(name, row, ColString)
	if err != nil {
		return "", false, err
	}
	return c.str[row], c.valid[row], nil
}

// SetString writes a string cell, making it valid.
func (t *Table) SetString(name string, row int, v string) error {
	c, err := t.cellFor(name, row, ColString)
	if err != nil {
		return err
	}
	c.str[row] = v
	c.valid[row] = true
	return nil
}

// GetIntArray reads an int-array cell. An invalid cell reads back as an
// empty array, not a zero-filled one of the declared depth.
func (t *Table) GetIntArray(name string, row int) ([]int64, error) {
	c, err := t.cellFor(name, row, ColIntArray)
	if err != nil {
		return nil, err
	}
	if !c.valid[row] {
		return []int64{}, nil
	}
	return append([]int64(nil), c.ai64[row]...), nil
}

// SetIntArray writes an int-array cell, making it valid. The value's
// length must equal the column depth.
func (t *Table) SetIntArray(name string, row int, v []int64) error {
	c, err := t.cellFor(name, row, ColIntArray)
	if err != nil {
		return err
	}
	if len(v) != c.depth {
		return fmt.Errorf("%w: %d elements for depth %d", ErrIncompatibleInput, len(v), c.depth)
	}
	c.ai64[row] = append([]int64(nil), v...)
	c.valid[row] = true
	return nil
}

// GetDoubleArray reads a double-array cell. An invalid cell reads back
// as an empty array.
func (t *Table) GetDoubleArray(name string, row int) ([]float64, error) {
	c, err := t.cellFor(name, row, ColDoubleArray)
	if err != nil {
		return nil, err
	}
	if !c.valid[row] {
		return []float64{}, nil
	}
	return append([]float64(nil), c.af64[row]...), nil
}

// SetDoubleArray writes a double-array cell, making it valid.
func (t *Table) SetDoubleArray(name string, row int, v []float64) error {
	c, err := t.cellFor(name, row, ColDoubleArray)
	if err != nil {
		return err
	}
	if len(v) != c.depth {
		return fmt.Errorf("%w: %d elements for depth %d", ErrIncompatibleInput, len(v), c.depth)
	}
	c.af64[row] = append([]float64(nil), v...)
	c.valid[row] = true
	return nil
}

// GetComplexArray reads a complex-array cell. An invalid cell reads back
// as an empty array.
func (t *Table) GetComplexArray(name string, row int) ([]complex128, error) {
	c, err := t.cellFor(name, row, ColComplexArray)
	if err != nil {
		return nil, err
	}
	if !c.valid[row] {
		return []complex128{}, nil
	}
	return append([]complex128(nil), c.ac128[row]...), nil
}

// SetComplexArray writes a complex-array cell, making it valid.
func (t *Table) SetComplexArray(name string, row int, v []complex128) error {
	c, err := t.cellFor(name, row, ColComplexArray)
	if err != nil {
		return err
	}
	if len(v) != c.depth {
		return fmt.Errorf("%w: %d elements for depth %d", ErrIncompatibleInput, len(v), c.depth)
	}
	c.ac128[row] = append([]complex128(nil), v...)
	c.valid[row] = true
	return nil
}

// SetSize grows or truncates the table to the given row count. Grown
// rows start invalid in every column and selected.
func (t *Table) SetSize(rows int) error {
	if rows < 0 {
		return fmt.Errorf("%w: %d rows", ErrIllegalInput, rows)
	}
	for _, name := range t.order {
		c := t.cols[name]
		c.resize(rows)
	}
	if rows <= t.rows {
		t.selected = t.selected[:rows]
	} else {
		for i := t.rows; i < rows; i++ {
			t.selected = append(t.selected, true)
		}
	}
	t.rows = rows
	return nil
}

func (c *column) resize(rows int) {
	old := len(c.valid)
	if rows <= old {
		c.valid = c.valid[:rows]
		c.i64 = truncI64(c.i64, rows)
		c.f64 = truncF64(c.f64, rows)
		c.c128 = truncC128(c.c128, rows)
		c.str = truncStr(c.str, rows)
		c.ai64 = truncAI64(c.ai64, rows)
		c.af64 = truncAF64(c.af64, rows)
		c.ac128 = truncAC128(c.ac128, rows)
		return
	}
	grow := rows - old
	c.valid = append(c.valid, make([]bool, grow)...)
	switch c.typ {
	case ColInt:
		c.i64 = append(c.i64, make([]int64, grow)...)
	case ColDouble:
		c.f64 = append(c.f64, make([]float64, grow)...)
	case ColComplex:
		c.c128 = append(c.c128, make([]complex128, grow)...)
	case ColString:
		c.str = append(c.str, make([]string, grow)...)
	case ColIntArray:
		c.ai64 = append(c.ai64, make([][]int64, grow)...)
	case ColDoubleArray:
		c.af64 = append(c.af64, make([][]float64, grow)...)
	case ColComplexArray:
		c.ac128 = append(c.ac128, make([][]complex128, grow)...)
	}
}

func truncI64(s []int64, n int) []int64 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncF64(s []float64, n int) []float64 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncC128(s []complex128, n int) []complex128 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncStr(s []string, n int) []string {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncAI64(s [][]int64, n int) [][]int64 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncAF64(s [][]float64, n int) [][]float64 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func truncAC128(s [][]complex128, n int) [][]complex128 {
	if s == nil {
		return nil
	}
	return s[:n]
}
