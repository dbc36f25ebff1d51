package table

import (
	"fmt"
	"regexp"
	"sort"
)

// Operator is a row-selection comparison.
type Operator int

const (
	OpEqual Operator = iota + 1
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpLess
	OpLessEqual
)

func (op Operator) compare(a, b float64) (bool, error) {
	switch op {
	case OpEqual:
		return a == b, nil
	case OpNotEqual:
		return a != b, nil
	case OpGreater:
		return a > b, nil
	case OpGreaterEqual:
		return a >= b, nil
	case OpLess:
		return a < b, nil
	case OpLessEqual:
		return a <= b, nil
	default:
		return false, fmt.Errorf("%w: operator %d", ErrIllegalInput, int(op))
	}
}

// SelectAll marks every row selected.
func (t *Table) SelectAll() {
	for i := range t.selected {
		t.selected[i] = true
	}
}

// UnselectAll clears the selection.
func (t *Table) UnselectAll() {
	for i := range t.selected {
		t.selected[i] = false
	}
}

// NotSelected complements the selection.
func (t *Table) NotSelected() {
	for i := range t.selected {
		t.selected[i] = !t.selected[i]
	}
}

// SelectedCount returns the number of selected rows.
func (t *Table) SelectedCount() int {
	n := 0
	for _, s := range t.selected {
		if s {
			n++
		}
	}
	return n
}

// IsSelected reports whether the row is selected.
func (t *Table) IsSelected(row int) (bool, error) {
	if err := t.checkRow(row); err != nil {
		return false, err
	}
	return t.selected[row], nil
}

// WhereSelected returns the selected row indices in ascending order.
func (t *Table) WhereSelected() []int {
	out := make([]int, 0, t.rows)
	for i, s := range t.selected {
		if s {
			out = append(out, i)
		}
	}
	return out
}

// combine folds a per-row predicate into the selection bitset: with and
// set, a row stays selected only if it was selected and matches; without
// it, a row becomes selected if it was selected or matches.
func (t *Table) combine(and bool, match func(row int) (bool, error)) error {
	for row := 0; row < t.rows; row++ {
		m, err := match(row)
		if err != nil {
			return err
		}
		if and {
			t.selected[row] = t.selected[row] && m
		} else {
			t.selected[row] = t.selected[row] || m
		}
	}
	return nil
}

func (t *Table) valuePredicate(name string, op Operator, value float64) (func(row int) (bool, error), error) {
	c, err := t.numericColumn(name)
	if err != nil {
		return nil, err
	}
	if c.typ == ColComplex && op != OpEqual && op != OpNotEqual {
		return nil, fmt.Errorf("%w: ordering complex column %q", ErrInvalidType, name)
	}
	if _, err := op.compare(0, 0); err != nil {
		return nil, err
	}
	return func(row int) (bool, error) {
		if !c.valid[row] {
			return false, nil
		}
		var a float64
		switch c.typ {
		case ColInt:
			a = float64(c.i64[row])
		case ColDouble:
			a = c.f64[row]
		default:
			if imag(c.c128[row]) != 0 {
				return op == OpNotEqual, nil
			}
			a = real(c.c128[row])
		}
		return op.compare(a, value)
	}, nil
}

// AndSelected narrows the selection to rows whose valid cell in the
// named numeric column satisfies the comparison. Invalid cells never
// match.
func (t *Table) AndSelected(name string, op Operator, value float64) error {
	p, err := t.valuePredicate(name, op, value)
	if err != nil {
		return err
	}
	return t.combine(true, p)
}

// OrSelected widens the selection with rows whose valid cell in the
// named numeric column satisfies the comparison.
func (t *Table) OrSelected(name string, op Operator, value float64) error {
	p, err := t.valuePredicate(name, op, value)
	if err != nil {
		return err
	}
	return t.combine(false, p)
}

// AndSelectedInvalid narrows the selection to rows whose cell in the
// named column is invalid.
func (t *Table) AndSelectedInvalid(name string) error {
	c, err := t.column(name)
	if err != nil {
		return err
	}
	return t.combine(true, func(row int) (bool, error) { return !c.valid[row], nil })
}

// OrSelectedInvalid widens the selection with rows whose cell in the
// named column is invalid.
func (t *Table) OrSelectedInvalid(name string) error {
	c, err := t.column(name)
	if err != nil {
		return err
	}
	return t.combine(false, func(row int) (bool, error) { return !c.valid[row], nil })
}

func (t *Table) windowPredicate(first, last int) (func(row int) (bool, error), error) {
	if first > last {
		return nil, fmt.Errorf("%w: row window [%d,%d]", ErrIllegalInput, first, last)
	}
	if first < 0 || last >= t.rows {
		return nil, fmt.Errorf("%w: row window [%d,%d] of %d rows", ErrAccessOutOfRange, first, last, t.rows)
	}
	return func(row int) (bool, error) { return row >= first && row <= last, nil }, nil
}

// AndSelectedWindow narrows the selection to the inclusive row range
// [first, last].
func (t *Table) AndSelectedWindow(first, last int) error {
	p, err := t.windowPredicate(first, last)
	if err != nil {
		return err
	}
	return t.combine(true, p)
}

// OrSelectedWindow widens the selection with the inclusive row range
// [first, last].
func (t *Table) OrSelectedWindow(first, last int) error {
	p, err := t.windowPredicate(first, last)
	if err != nil {
		return err
	}
	return t.combine(false, p)
}

func (t *Table) stringPredicate(name, pattern string) (func(row int) (bool, error), error) {
	c, err := t.column(name)
	if err != nil {
		return nil, err
	}
	if c.typ != ColString {
		return nil, fmt.Errorf("%w: string match on %s column %q", ErrInvalidType, c.typ, name)
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %q: %v", ErrIllegalInput, pattern, err)
	}
	return func(row int) (bool, error) {
		return c.valid[row] && re.MatchString(c.str[row]), nil
	}, nil
}

// AndSelectedString narrows the selection to rows whose valid string
// cell matches the regular expression.
func (t *Table) AndSelectedString(name, pattern string) error {
	p, err := t.stringPredicate(name, pattern)
	if err != nil {
		return err
	}
	return t.combine(true, p)
}

// OrSelectedString widens the selection with rows whose valid string
// cell matches the regular expression.
func (t *Table) OrSelectedString(name, pattern string) error {
	p, err := t.stringPredicate(name, pattern)
	if err != nil {
		return err
	}
	return t.combine(false, p)
}

// SortKey names one sort column and its direction.
type SortKey struct {
	Column     string
	Descending bool
}

// Sort stably reorders the rows by the given keys in priority order.
// Invalid cells order before valid ones. Complex and array columns have
// no ordering and are refused as keys.
func (t *Table) Sort(keys []SortKey) error {
	if len(keys) == 0 {
		return fmt.Errorf("%w: no sort key", ErrIllegalInput)
	}
	cols := make([]*column, len(keys))
	for i, k := range keys {
		c, err := t.column(k.Column)
		if err != nil {
			return err
		}
		switch c.typ {
		case ColInt, ColDouble, ColString:
		default:
			return fmt.Errorf("%w: sorting by %s column %q", ErrInvalidType, c.typ, k.Column)
		}
		cols[i] = c
	}
	perm := make([]int, t.rows)
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ra, rb := perm[a], perm[b]
		for i, c := range cols {
			cmp := compareCells(c, ra, rb)
			if keys[i].Descending {
				cmp = -cmp
			}
			if cmp != 0 {
				return cmp < 0
			}
		}
		return false
	})
	t.applyPermutation(perm)
	return nil
}

// compareCells orders two rows within one column: -1, 0 or 1.
func compareCells(c *column, a, b int) int {
	if !c.valid[a] || !c.valid[b] {
		switch {
		case c.valid[a] == c.valid[b]:
			return 0
		case !c.valid[a]:
			return -1
		default:
			return 1
		}
	}
	switch c.typ {
	case ColInt:
		switch {
		case c.i64[a] < c.i64[b]:
			return -1
		case c.i64[a] > c.i64[b]:
			return 1
		}
	case ColDouble:
		switch {
		case c.f64[a] < c.f64[b]:
			return -1
		case c.f64[a] > c.f64[b]:
			return 1
		}
	case ColString:
		switch {
		case c.str[a] < c.str[b]:
			return -1
		case c.str[a] > c.str[b]:
			return 1
		}
	}
	return 0
}

// applyPermutation reorders every column and the selection so that new
// row i holds what was at perm[i].
func (t *Table) applyPermutation(perm []int) {
	for _, name := range t.order {
		c := t.cols[name]
		valid := make([]bool, t.rows)
		for i, p := range perm {
			valid[i] = c.valid[p]
		}
		c.valid = valid
		switch c.typ {
		case ColInt:
			out := make([]int64, t.rows)
			for i, p := range perm {
				out[i] = c.i64[p]
			}
			c.i64 = out
		case ColDouble:
			out := make([]float64, t.rows)
			for i, p := range perm {
				out[i] = c.f64[p]
			}
			c.f64 = out
		case ColComplex:
			out := make([]complex128, t.rows)
			for i, p := range perm {
				out[i] = c.c128[p]
			}
			c.c128 = out
		case ColString:
			out := make([]string, t.rows)
			for i, p := range perm {
				out[i] = c.str[p]
			}
			c.str = out
		case ColIntArray:
			out := make([][]int64, t.rows)
			for i, p := range perm {
				out[i] = c.ai64[p]
			}
			c.ai64 = out
		case ColDoubleArray:
			out := make([][]float64, t.rows)
			for i, p := range perm {
				out[i] = c.af64[p]
			}
			c.af64 = out
		case ColComplexArray:
			out := make([][]complex128, t.rows)
			for i, p := range perm {
				out[i] = c.ac128[p]
			}
			c.ac128 = out
		}
	}
	selected := make([]bool, t.rows)
	for i, p := range perm {
		selected[i] = t.selected[p]
	}
	t.selected = selected
}
