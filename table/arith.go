package table

import "fmt"

// numericColumn fetches a scalar numeric column.
func (t *Table) numericColumn(name string) (*column, error) {
	c, err := t.column(name)
	if err != nil {
		return nil, err
	}
	if !c.typ.IsNumeric() {
		return nil, fmt.Errorf("%w: arithmetic on %s column %q", ErrInvalidType, c.typ, name)
	}
	return c, nil
}

// AddScalar adds v to every valid cell of a numeric column. Invalid
// cells stay invalid and untouched.
func (t *Table) AddScalar(name string, v float64) error {
	return t.applyScalar(name, v, func(a, b float64) float64 { return a + b })
}

// SubtractScalar subtracts v from every valid cell of a numeric column.
func (t *Table) SubtractScalar(name string, v float64) error {
	return t.applyScalar(name, v, func(a, b float64) float64 { return a - b })
}

// MultiplyScalar multiplies every valid cell of a numeric column by v.
func (t *Table) MultiplyScalar(name string, v float64) error {
	return t.applyScalar(name, v, func(a, b float64) float64 { return a * b })
}

// DivideScalar divides every valid cell of a numeric column by v. A zero
// divisor is refused.
func (t *Table) DivideScalar(name string, v float64) error {
	if v == 0 {
		return fmt.Errorf("%w: zero scalar divisor", ErrIllegalInput)
	}
	return t.applyScalar(name, v, func(a, b float64) float64 { return a / b })
}

func (t *Table) applyScalar(name string, v float64, op func(a, b float64) float64) error {
	c, err := t.numericColumn(name)
	if err != nil {
		return err
	}
	for row := 0; row < t.rows; row++ {
		if !c.valid[row] {
			continue
		}
		switch c.typ {
		case ColInt:
			c.i64[row] = int64(op(float64(c.i64[row]), v))
		case ColDouble:
			c.f64[row] = op(c.f64[row], v)
		case ColComplex:
			c.c128[row] = complex(op(real(c.c128[row]), v), imag(c.c128[row]))
		}
	}
	return nil
}

// AddColumns adds column b into column a cell-wise. A result cell is
// valid only where both inputs were; other cells of a are left alone.
// The target column's type carries the result, with the usual cast.
func (t *Table) AddColumns(a, b string) error {
	return t.applyColumns(a, b, func(x, y complex128) complex128 { return x + y })
}

// SubtractColumns subtracts column b from column a cell-wise.
func (t *Table) SubtractColumns(a, b string) error {
	return t.applyColumns(a, b, func(x, y complex128) complex128 { return x - y })
}

// MultiplyColumns multiplies column a by column b cell-wise.
func (t *Table) MultiplyColumns(a, b string) error {
	return t.applyColumns(a, b, func(x, y complex128) complex128 { return x * y })
}

// DivideColumns divides column a by column b cell-wise. Cells with a
// zero divisor become invalid in a.
func (t *Table) DivideColumns(a, b string) error {
	ca, err := t.numericColumn(a)
	if err != nil {
		return err
	}
	cb, err := t.numericColumn(b)
	if err != nil {
		return err
	}
	for row := 0; row < t.rows; row++ {
		if !ca.valid[row] || !cb.valid[row] {
			continue
		}
		d := cb.cell(row)
		if d == 0 {
			ca.valid[row] = false
			continue
		}
		ca.setCell(row, ca.cell(row)/d)
	}
	return nil
}

func (t *Table) applyColumns(a, b string, op func(x, y complex128) complex128) error {
	ca, err := t.numericColumn(a)
	if err != nil {
		return err
	}
	cb, err := t.numericColumn(b)
	if err != nil {
		return err
	}
	for row := 0; row < t.rows; row++ {
		if !ca.valid[row] || !cb.valid[row] {
			continue
		}
		ca.setCell(row, op(ca.cell(row), cb.cell(row)))
	}
	return nil
}

// cell reads a numeric cell as complex128.
func (c *column) cell(row int) complex128 {
	switch c.typ {
	case ColInt:
		return complex(float64(c.i64[row]), 0)
	case ColDouble:
		return complex(c.f64[row], 0)
	default:
		return c.c128[row]
	}
}

// setCell stores a complex128 back into a numeric cell, truncating to
// the column's type.
func (c *column) setCell(row int, v complex128) {
	switch c.typ {
	case ColInt:
		c.i64[row] = int64(real(v))
	case ColDouble:
		c.f64[row] = real(v)
	default:
		c.c128[row] = v
	}
}

// CompareStructure reports whether other has the same columns, in the
// same order, with the same types and depths.
func (t *Table) CompareStructure(other *Table) bool {
	if len(t.order) != len(other.order) {
		return false
	}
	for i, name := range t.order {
		if other.order[i] != name {
			return false
		}
		a, b := t.cols[name], other.cols[name]
		if a.typ != b.typ || a.depth != b.depth {
			return false
		}
	}
	return true
}

// Insert splices every row of other into t starting at row at, shifting
// later rows down. at may equal the row count to append. The tables must
// have identical structure.
func (t *Table) Insert(other *Table, at int) error {
	if at < 0 || at > t.rows {
		return fmt.Errorf("%w: insert at row %d of %d", ErrAccessOutOfRange, at, t.rows)
	}
	if !t.CompareStructure(other) {
		return fmt.Errorf("%w: tables differ in structure", ErrIncompatibleInput)
	}
	for _, name := range t.order {
		a, b := t.cols[name], other.cols[name]
		a.valid = spliceBool(a.valid, b.valid, at)
		switch a.typ {
		case ColInt:
			a.i64 = append(a.i64[:at:at], append(append([]int64(nil), b.i64...), a.i64[at:]...)...)
		case ColDouble:
			a.f64 = append(a.f64[:at:at], append(append([]float64(nil), b.f64...), a.f64[at:]...)...)
		case ColComplex:
			a.c128 = append(a.c128[:at:at], append(append([]complex128(nil), b.c128...), a.c128[at:]...)...)
		case ColString:
			a.str = append(a.str[:at:at], append(append([]string(nil), b.str...), a.str[at:]...)...)
		case ColIntArray:
			a.ai64 = append(a.ai64[:at:at], append(copyAI64(b.ai64), a.ai64[at:]...)...)
		case ColDoubleArray:
			a.af64 = append(a.af64[:at:at], append(copyAF64(b.af64), a.af64[at:]...)...)
		case ColComplexArray:
			a.ac128 = append(a.ac128[:at:at], append(copyAC128(b.ac128), a.ac128[at:]...)...)
		}
	}
	inserted := make([]bool, other.rows)
	for i := range inserted {
		inserted[i] = true
	}
	t.selected = spliceBool(t.selected, inserted, at)
	t.rows += other.rows
	return nil
}

func spliceBool(dst, src []bool, at int) []bool {
	return append(dst[:at:at], append(append([]bool(nil), src...), dst[at:]...)...)
}

func copyAI64(src [][]int64) [][]int64 {
	out := make([][]int64, len(src))
	for i, a := range src {
		out[i] = append([]int64(nil), a...)
	}
	return out
}

func copyAF64(src [][]float64) [][]float64 {
	out := make([][]float64, len(src))
	for i, a := range src {
		out[i] = append([]float64(nil), a...)
	}
	return out
}

func copyAC128(src [][]complex128) [][]complex128 {
	out := make([][]complex128, len(src))
	for i, a := range src {
		out[i] = append([]complex128(nil), a...)
	}
	return out
}
