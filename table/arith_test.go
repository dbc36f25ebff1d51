package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScalarArithmeticSkipsInvalid(t *testing.T) {
	tab, _ := New(3)
	require.NoError(t, tab.Assign("x", []float64{1, 2, 3}))
	require.NoError(t, tab.SetInvalid("x", 1))

	require.NoError(t, tab.AddScalar("x", 10))

	v, ok, _ := tab.GetDouble("x", 0)
	assert.True(t, ok)
	assert.Equal(t, 11.0, v)
	_, ok, _ = tab.GetDouble("x", 1)
	assert.False(t, ok, "invalid cell stays invalid")
	v, _, _ = tab.GetDouble("x", 2)
	assert.Equal(t, 13.0, v)
}

func TestScalarArithmeticTypes(t *testing.T) {
	tab, _ := New(2)
	require.NoError(t, tab.Assign("i", []int{7, 8}))
	require.NoError(t, tab.Assign("z", []complex128{1 + 2i, 3 - 1i}))
	require.NoError(t, tab.Assign("s", []string{"a", "b"}))

	// Integer cells truncate toward zero.
	require.NoError(t, tab.DivideScalar("i", 2))
	v, _, _ := tab.GetInt("i", 0)
	assert.Equal(t, int64(3), v)

	// Scalar arithmetic touches only the real part of complex cells.
	require.NoError(t, tab.SubtractScalar("z", 1))
	z, _, _ := tab.GetComplex("z", 0)
	assert.Equal(t, 0+2i, z)

	assert.ErrorIs(t, tab.AddScalar("s", 1), ErrInvalidType)
	assert.ErrorIs(t, tab.DivideScalar("i", 0), ErrIllegalInput)
	assert.ErrorIs(t, tab.MultiplyScalar("missing", 2), ErrDataNotFound)
}

func TestColumnArithmetic(t *testing.T) {
	tab, _ := New(3)
	require.NoError(t, tab.Assign("a", []float64{1, 2, 3}))
	require.NoError(t, tab.Assign("b", []float64{10, 20, 30}))
	require.NoError(t, tab.SetInvalid("b", 2))

	require.NoError(t, tab.AddColumns("a", "b"))
	v, ok, _ := tab.GetDouble("a", 0)
	assert.True(t, ok)
	assert.Equal(t, 11.0, v)
	// A cell invalid in either input is left alone in the target.
	v, ok, _ = tab.GetDouble("a", 2)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	// The target column's type carries the result.
	require.NoError(t, tab.Assign("n", []int{5, 5, 5}))
	require.NoError(t, tab.Assign("half", []float64{2.5, 2.5, 2.5}))
	require.NoError(t, tab.MultiplyColumns("n", "half"))
	iv, _, _ := tab.GetInt("n", 0)
	assert.Equal(t, int64(12), iv)
}

func TestDivideColumnsInvalidatesZeroDivisor(t *testing.T) {
	tab, _ := New(3)
	require.NoError(t, tab.Assign("num", []float64{10, 20, 30}))
	require.NoError(t, tab.Assign("den", []float64{2, 0, 5}))

	require.NoError(t, tab.DivideColumns("num", "den"))

	v, ok, _ := tab.GetDouble("num", 0)
	assert.True(t, ok)
	assert.Equal(t, 5.0, v)
	_, ok, _ = tab.GetDouble("num", 1)
	assert.False(t, ok, "zero divisor invalidates the cell")
	v, ok, _ = tab.GetDouble("num", 2)
	assert.True(t, ok)
	assert.Equal(t, 6.0, v)
}

func TestCompareStructure(t *testing.T) {
	a, _ := New(2)
	require.NoError(t, a.Assign("x", []int{1, 2}))
	require.NoError(t, a.Assign("y", []float64{1, 2}))

	b, _ := New(5)
	require.NoError(t, b.Assign("x", []int64{1, 2, 3, 4, 5}))
	require.NoError(t, b.Assign("y", []float64{1, 2, 3, 4, 5}))
	assert.True(t, a.CompareStructure(b), "row counts do not matter")

	c, _ := New(2)
	require.NoError(t, c.Assign("y", []float64{1, 2}))
	require.NoError(t, c.Assign("x", []int{1, 2}))
	assert.False(t, a.CompareStructure(c), "column order matters")

	d, _ := New(2)
	require.NoError(t, d.Assign("x", []float64{1, 2}))
	require.NoError(t, d.Assign("y", []float64{1, 2}))
	assert.False(t, a.CompareStructure(d), "column types matter")
}

func TestInsertSplicesRows(t *testing.T) {
	dst, _ := New(3)
	require.NoError(t, dst.Assign("x", []int{1, 2, 3}))
	require.NoError(t, dst.SetInvalid("x", 1))
	dst.UnselectAll()

	src, _ := New(2)
	require.NoError(t, src.Assign("x", []int{10, 20}))

	require.NoError(t, dst.Insert(src, 1))
	require.Equal(t, 5, dst.Rows())

	var got []int64
	var valid []bool
	for row := 0; row < 5; row++ {
		v, ok, err := dst.GetInt("x", row)
		require.NoError(t, err)
		got = append(got, v)
		valid = append(valid, ok)
	}
	assert.Equal(t, []int64{1, 10, 20, 2, 3}, got)
	assert.Equal(t, []bool{true, true, true, false, true}, valid)

	// Inserted rows come in selected, the rest keep their state.
	assert.Equal(t, []int{1, 2}, dst.WhereSelected())

	other, _ := New(1)
	require.NoError(t, other.Assign("x", []float64{1}))
	assert.ErrorIs(t, dst.Insert(other, 0), ErrIncompatibleInput)
	assert.ErrorIs(t, dst.Insert(src, 9), ErrAccessOutOfRange)
}

func TestInsertAppends(t *testing.T) {
	dst, _ := New(1)
	require.NoError(t, dst.Assign("s", []string{"head"}))
	src, _ := New(1)
	require.NoError(t, src.Assign("s", []string{"tail"}))

	require.NoError(t, dst.Insert(src, dst.Rows()))
	v, _, _ := dst.GetString("s", 1)
	assert.Equal(t, "tail", v)
}
