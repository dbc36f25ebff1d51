// Package mat provides the small dense linear-algebra toolkit that
// accompanies the pixel-array engine: real-valued matrices with LU-based
// solving, 1D vectors with statistics and fitting, a Levenberg-Marquardt
// engine, and sparse multivariate polynomials.
package mat

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
)

// Error taxonomy for the linear-algebra toolkit.
var (
	// ErrIllegalInput is returned when an argument is structurally
	// nonsensical, such as a zero-sized construction.
	ErrIllegalInput = errors.New("mat: illegal input")

	// ErrAccessOutOfRange is returned when an index or region falls
	// outside the bounds of the object.
	ErrAccessOutOfRange = errors.New("mat: access out of range")

	// ErrIncompatibleInput is returned when two individually valid inputs
	// cannot be combined, or when an operation requiring a square matrix
	// is applied to a rectangular one.
	ErrIncompatibleInput = errors.New("mat: incompatible input")

	// ErrUnsupportedMode is returned when a combination of otherwise valid
	// mode flags or parameters is not implemented.
	ErrUnsupportedMode = errors.New("mat: unsupported mode")

	// ErrSingularMatrix is returned when a linear system is numerically
	// singular.
	ErrSingularMatrix = errors.New("mat: singular matrix")

	// ErrDivisionByZero is returned when an exactly zero pivot is met
	// while back-substituting a factorization.
	ErrDivisionByZero = errors.New("mat: division by zero")

	// ErrDataNotFound is returned when a well-posed query has no answer
	// given the data, such as fitting with fewer points than parameters.
	ErrDataNotFound = errors.New("mat: data not found")
)

// pivotEps is the relative threshold below which a pivot is considered
// numerically zero during factorization.
const pivotEps = 1e-14

// Matrix is a dense real-valued matrix in row-major storage. Most
// operations mutate the receiver; *Create variants and the extraction
// operations return fresh matrices.
type Matrix struct {
	rows int
	cols int
	data []float64
}

// NewMatrix creates a zero-filled rows x cols matrix.
func NewMatrix(rows, cols int) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: matrix extent %dx%d", ErrIllegalInput, rows, cols)
	}
	return &Matrix{rows: rows, cols: cols, data: make([]float64, rows*cols)}, nil
}

// NewMatrixFromSlice creates a rows x cols matrix from row-major data.
// The slice is copied.
func NewMatrixFromSlice(data []float64, rows, cols int) (*Matrix, error) {
	m, err := NewMatrix(rows, cols)
	if err != nil {
		return nil, err
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d elements for %dx%d matrix", ErrIllegalInput, len(data), rows, cols)
	}
	copy(m.data, data)
	return m, nil
}

// Identity creates the n x n identity matrix.
func Identity(n int) (*Matrix, error) {
	m, err := NewMatrix(n, n)
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		m.data[i*n+i] = 1
	}
	return m, nil
}

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the number of columns.
func (m *Matrix) Cols() int { return m.cols }

// Duplicate returns a deep copy.
func (m *Matrix) Duplicate() *Matrix {
	return &Matrix{rows: m.rows, cols: m.cols, data: append([]float64(nil), m.data...)}
}

func (m *Matrix) index(r, c int) (int, error) {
	if r < 0 || r >= m.rows || c < 0 || c >= m.cols {
		return 0, fmt.Errorf("%w: element (%d,%d) of %dx%d",
			ErrAccessOutOfRange, r, c, m.rows, m.cols)
	}
	return r*m.cols + c, nil
}

// Get returns the element at (row, col).
func (m *Matrix) Get(r, c int) (float64, error) {
	i, err := m.index(r, c)
	if err != nil {
		return 0, err
	}
	return m.data[i], nil
}

// Set assigns the element at (row, col).
func (m *Matrix) Set(r, c int, v float64) error {
	i, err := m.index(r, c)
	if err != nil {
		return err
	}
	m.data[i] = v
	return nil
}

// Fill sets every element to v.
func (m *Matrix) Fill(v float64) {
	for i := range m.data {
		m.data[i] = v
	}
}

func (m *Matrix) checkShape(other *Matrix) error {
	if m.rows != other.rows || m.cols != other.cols {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrIncompatibleInput, m.rows, m.cols, other.rows, other.cols)
	}
	return nil
}

func (m *Matrix) checkSquare(op string) error {
	if m.rows != m.cols {
		return fmt.Errorf("%w: %s of %dx%d matrix", ErrIncompatibleInput, op, m.rows, m.cols)
	}
	return nil
}

// Add adds other into m elementwise.
func (m *Matrix) Add(other *Matrix) error {
	if err := m.checkShape(other); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] += other.data[i]
	}
	return nil
}

// Subtract subtracts other from m elementwise.
func (m *Matrix) Subtract(other *Matrix) error {
	if err := m.checkShape(other); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] -= other.data[i]
	}
	return nil
}

// AddScalar adds v to every element.
func (m *Matrix) AddScalar(v float64) {
	for i := range m.data {
		m.data[i] += v
	}
}

// MultiplyScalar multiplies every element by v.
func (m *Matrix) MultiplyScalar(v float64) {
	for i := range m.data {
		m.data[i] *= v
	}
}

// Product returns the matrix product m * other.
func (m *Matrix) Product(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, fmt.Errorf("%w: product of %dx%d and %dx%d",
			ErrIncompatibleInput, m.rows, m.cols, other.rows, other.cols)
	}
	out, _ := NewMatrix(m.rows, other.cols)
	for r := 0; r < m.rows; r++ {
		for k := 0; k < m.cols; k++ {
			a := m.data[r*m.cols+k]
			if a == 0 {
				continue
			}
			row := other.data[k*other.cols : (k+1)*other.cols]
			dst := out.data[r*out.cols : (r+1)*out.cols]
			for c, b := range row {
				dst[c] += a * b
			}
		}
	}
	return out, nil
}

// TransposeCreate returns a new transposed matrix.
func (m *Matrix) TransposeCreate() *Matrix {
	out, _ := NewMatrix(m.cols, m.rows)
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			out.data[c*out.cols+r] = m.data[r*m.cols+c]
		}
	}
	return out
}

// ProductTranspose returns m' * other, without forming the transpose.
func (m *Matrix) ProductTranspose(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows {
		return nil, fmt.Errorf("%w: transposed product of %dx%d and %dx%d",
			ErrIncompatibleInput, m.rows, m.cols, other.rows, other.cols)
	}
	out, _ := NewMatrix(m.cols, other.cols)
	for k := 0; k < m.rows; k++ {
		for r := 0; r < m.cols; r++ {
			a := m.data[k*m.cols+r]
			if a == 0 {
				continue
			}
			row := other.data[k*other.cols : (k+1)*other.cols]
			dst := out.data[r*out.cols : (r+1)*out.cols]
			for c, b := range row {
				dst[c] += a * b
			}
		}
	}
	return out, nil
}

// ProductBilinear returns the bilinear product b' * a * b, the form used
// for covariance propagation. a must be square with the same order as
// b's row count.
func ProductBilinear(a, b *Matrix) (*Matrix, error) {
	if a.rows != a.cols || a.cols != b.rows {
		return nil, fmt.Errorf("%w: bilinear product of %dx%d and %dx%d",
			ErrIncompatibleInput, a.rows, a.cols, b.rows, b.cols)
	}
	ab, err := a.Product(b)
	if err != nil {
		return nil, err
	}
	return b.ProductTranspose(ab)
}

// SwapRows exchanges two rows in place. Like the other structural pivot
// operations this is defined for square matrices only.
func (m *Matrix) SwapRows(a, b int) error {
	if err := m.checkSquare("row swap"); err != nil {
		return err
	}
	if a < 0 || a >= m.rows || b < 0 || b >= m.rows {
		return fmt.Errorf("%w: rows %d,%d of %dx%d", ErrAccessOutOfRange, a, b, m.rows, m.cols)
	}
	if a == b {
		return nil
	}
	ra := m.data[a*m.cols : (a+1)*m.cols]
	rb := m.data[b*m.cols : (b+1)*m.cols]
	for i := range ra {
		ra[i], rb[i] = rb[i], ra[i]
	}
	return nil
}

// SwapColumns exchanges two columns in place. Square matrices only.
func (m *Matrix) SwapColumns(a, b int) error {
	if err := m.checkSquare("column swap"); err != nil {
		return err
	}
	if a < 0 || a >= m.cols || b < 0 || b >= m.cols {
		return fmt.Errorf("%w: columns %d,%d of %dx%d", ErrAccessOutOfRange, a, b, m.rows, m.cols)
	}
	for r := 0; r < m.rows; r++ {
		m.data[r*m.cols+a], m.data[r*m.cols+b] = m.data[r*m.cols+b], m.data[r*m.cols+a]
	}
	return nil
}

// EraseRows removes count rows starting at row start.
func (m *Matrix) EraseRows(start, count int) error {
	if count < 1 {
		return fmt.Errorf("%w: erase %d rows", ErrIllegalInput, count)
	}
	if start < 0 || start+count > m.rows {
		return fmt.Errorf("%w: rows [%d,%d) of %dx%d", ErrAccessOutOfRange, start, start+count, m.rows, m.cols)
	}
	if count == m.rows {
		return fmt.Errorf("%w: erasing every row", ErrIllegalInput)
	}
	m.data = append(m.data[:start*m.cols], m.data[(start+count)*m.cols:]...)
	m.rows -= count
	return nil
}

// EraseColumns removes count columns starting at column start.
func (m *Matrix) EraseColumns(start, count int) error {
	if count < 1 {
		return fmt.Errorf("%w: erase %d columns", ErrIllegalInput, count)
	}
	if start < 0 || start+count > m.cols {
		return fmt.Errorf("%w: columns [%d,%d) of %dx%d", ErrAccessOutOfRange, start, start+count, m.rows, m.cols)
	}
	if count == m.cols {
		return fmt.Errorf("%w: erasing every column", ErrIllegalInput)
	}
	newCols := m.cols - count
	out := make([]float64, m.rows*newCols)
	for r := 0; r < m.rows; r++ {
		copy(out[r*newCols:], m.data[r*m.cols:r*m.cols+start])
		copy(out[r*newCols+start:], m.data[r*m.cols+start+count:(r+1)*m.cols])
	}
	m.data = out
	m.cols = newCols
	return nil
}

// Extract returns the sub-matrix of extent rows x cols whose top-left
// element is (row, col).
func (m *Matrix) Extract(row, col, rows, cols int) (*Matrix, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: extraction extent %dx%d", ErrIllegalInput, rows, cols)
	}
	if row < 0 || col < 0 || row+rows > m.rows || col+cols > m.cols {
		return nil, fmt.Errorf("%w: extraction (%d,%d)+%dx%d of %dx%d",
			ErrAccessOutOfRange, row, col, rows, cols, m.rows, m.cols)
	}
	out, _ := NewMatrix(rows, cols)
	for r := 0; r < rows; r++ {
		copy(out.data[r*cols:(r+1)*cols], m.data[(row+r)*m.cols+col:(row+r)*m.cols+col+cols])
	}
	return out, nil
}

// ExtractRow returns row r as a 1 x cols matrix.
func (m *Matrix) ExtractRow(r int) (*Matrix, error) {
	return m.Extract(r, 0, 1, m.cols)
}

// ExtractColumn returns column c as a rows x 1 matrix.
func (m *Matrix) ExtractColumn(c int) (*Matrix, error) {
	return m.Extract(0, c, m.rows, 1)
}

// ExtractDiagonal returns the diagonal starting at (0, offset) for a
// wide matrix, or (offset, 0) for a tall one, as an n x 1 matrix.
func (m *Matrix) ExtractDiagonal(offset int) (*Matrix, error) {
	short := m.rows
	if m.cols < short {
		short = m.cols
	}
	long := m.rows + m.cols - short
	if offset < 0 || offset > long-short {
		return nil, fmt.Errorf("%w: diagonal offset %d of %dx%d", ErrAccessOutOfRange, offset, m.rows, m.cols)
	}
	out, _ := NewMatrix(short, 1)
	for i := 0; i < short; i++ {
		if m.rows <= m.cols {
			out.data[i] = m.data[i*m.cols+i+offset]
		} else {
			out.data[i] = m.data[(i+offset)*m.cols+i]
		}
	}
	return out, nil
}

// AppendMode selects the edge along which Append attaches a matrix.
type AppendMode int

const (
	// AppendBottom stacks other below m; column counts must match.
	AppendBottom AppendMode = iota
	// AppendRight attaches other to the right of m; row counts must match.
	AppendRight
)

// Append attaches other to m in place along the given edge.
func (m *Matrix) Append(other *Matrix, mode AppendMode) error {
	switch mode {
	case AppendBottom:
		if m.cols != other.cols {
			return fmt.Errorf("%w: appending %d columns below %d", ErrIncompatibleInput, other.cols, m.cols)
		}
		m.data = append(m.data, other.data...)
		m.rows += other.rows
	case AppendRight:
		if m.rows != other.rows {
			return fmt.Errorf("%w: appending %d rows beside %d", ErrIncompatibleInput, other.rows, m.rows)
		}
		newCols := m.cols + other.cols
		out := make([]float64, m.rows*newCols)
		for r := 0; r < m.rows; r++ {
			copy(out[r*newCols:], m.data[r*m.cols:(r+1)*m.cols])
			copy(out[r*newCols+m.cols:], other.data[r*other.cols:(r+1)*other.cols])
		}
		m.data = out
		m.cols = newCols
	default:
		return fmt.Errorf("%w: append mode %d", ErrIllegalInput, int(mode))
	}
	return nil
}

// Resize grows or shrinks the matrix by signed per-edge deltas. Grown
// regions are zero-filled; shrinking discards the outermost rows and
// columns. The resulting extent must stay at least 1x1.
func (m *Matrix) Resize(top, bottom, left, right int) error {
	newRows := m.rows + top + bottom
	newCols := m.cols + left + right
	if newRows < 1 || newCols < 1 {
		return fmt.Errorf("%w: resize to %dx%d", ErrIllegalInput, newRows, newCols)
	}
	out := make([]float64, newRows*newCols)
	for r := 0; r < newRows; r++ {
		sr := r - top
		if sr < 0 || sr >= m.rows {
			continue
		}
		for c := 0; c < newCols; c++ {
			sc := c - left
			if sc < 0 || sc >= m.cols {
				continue
			}
			out[r*newCols+c] = m.data[sr*m.cols+sc]
		}
	}
	m.rows, m.cols, m.data = newRows, newCols, out
	return nil
}

// Shift translates the matrix cyclically by (drow, dcol): elements that
// leave one edge reappear at the opposite edge. Shift amounts are taken
// modulo the extent, so shifts summing to zero compose to the identity.
func (m *Matrix) Shift(drow, dcol int) {
	drow = ((drow % m.rows) + m.rows) % m.rows
	dcol = ((dcol % m.cols) + m.cols) % m.cols
	if drow == 0 && dcol == 0 {
		return
	}
	out := make([]float64, len(m.data))
	for r := 0; r < m.rows; r++ {
		nr := (r + drow) % m.rows
		for c := 0; c < m.cols; c++ {
			nc := (c + dcol) % m.cols
			out[nr*m.cols+nc] = m.data[r*m.cols+c]
		}
	}
	m.data = out
}

// DecompLU factors m in place into L and U with partial pivoting, storing
// both triangles in the matrix itself (unit diagonal of L implied). It
// returns the row permutation applied and the permutation's sign. The
// factorization is returned even when the matrix is found to be singular,
// together with ErrSingularMatrix, since the determinant of a singular
// matrix is still well defined.
func (m *Matrix) DecompLU() (perm []int, sign int, err error) {
	if err := m.checkSquare("LU decomposition"); err != nil {
		return nil, 0, err
	}
	n := m.rows
	perm = make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	sign = 1

	// Implicit scaling per row for pivot selection, plus the matrix norm
	// for the relative singularity threshold.
	norm := 0.0
	scale := make([]float64, n)
	for r := 0; r < n; r++ {
		big := 0.0
		for c := 0; c < n; c++ {
			if a := math.Abs(m.data[r*n+c]); a > big {
				big = a
			}
		}
		if big > norm {
			norm = big
		}
		if big == 0 {
			big = 1
		}
		scale[r] = 1 / big
	}
	if norm == 0 {
		norm = 1
	}

	singular := false
	for col := 0; col < n; col++ {
		// Crout update of column col.
		for r := 0; r < n; r++ {
			lim := r
			if col < lim {
				lim = col
			}
			sum := m.data[r*n+col]
			for k := 0; k < lim; k++ {
				sum -= m.data[r*n+k] * m.data[k*n+col]
			}
			m.data[r*n+col] = sum
		}
		// Select the pivot among rows col..n-1.
		pivot, pivotRow := 0.0, col
		for r := col; r < n; r++ {
			if v := scale[r] * math.Abs(m.data[r*n+col]); v > pivot {
				pivot = v
				pivotRow = r
			}
		}
		if pivotRow != col {
			ra := m.data[pivotRow*n : (pivotRow+1)*n]
			rb := m.data[col*n : (col+1)*n]
			for i := range ra {
				ra[i], rb[i] = rb[i], ra[i]
			}
			scale[pivotRow] = scale[col]
			perm[pivotRow], perm[col] = perm[col], perm[pivotRow]
			sign = -sign
		}
		p := m.data[col*n+col]
		if math.Abs(p) <= pivotEps*norm {
			singular = true
			continue
		}
		inv := 1 / p
		for r := col + 1; r < n; r++ {
			m.data[r*n+col] *= inv
		}
	}
	if singular {
		return perm, sign, fmt.Errorf("%w: zero pivot in LU decomposition", ErrSingularMatrix)
	}
	return perm, sign, nil
}

// SolveLU solves L*U*x = P*b for a matrix already factored by DecompLU,
// overwriting rhs columns with the solutions. An exactly zero pivot on
// the diagonal reports ErrDivisionByZero.
func (m *Matrix) SolveLU(rhs *Matrix, perm []int) error {
	if err := m.checkSquare("LU solve"); err != nil {
		return err
	}
	n := m.rows
	if rhs.rows != n {
		return fmt.Errorf("%w: %d right-hand rows for order %d", ErrIncompatibleInput, rhs.rows, n)
	}
	if len(perm) != n {
		return fmt.Errorf("%w: permutation length %d for order %d", ErrIllegalInput, len(perm), n)
	}
	for i := 0; i < n; i++ {
		if m.data[i*n+i] == 0 {
			return fmt.Errorf("%w: zero pivot at row %d", ErrDivisionByZero, i)
		}
	}
	for i, p := range perm {
		if p < 0 || p >= n {
			return fmt.Errorf("%w: permutation entry %d at %d", ErrIllegalInput, p, i)
		}
	}
	for c := 0; c < rhs.cols; c++ {
		// Apply the row permutation, then forward- and back-substitute.
		// perm[r] names the original row now at position r.
		x := make([]float64, n)
		for r := 0; r < n; r++ {
			x[r] = rhs.data[perm[r]*rhs.cols+c]
		}
		for r := 0; r < n; r++ {
			sum := x[r]
			for k := 0; k < r; k++ {
				sum -= m.data[r*n+k] * x[k]
			}
			x[r] = sum
		}
		for r := n - 1; r >= 0; r-- {
			sum := x[r]
			for k := r + 1; k < n; k++ {
				sum -= m.data[r*n+k] * x[k]
			}
			x[r] = sum / m.data[r*n+r]
		}
		for r := 0; r < n; r++ {
			rhs.data[r*rhs.cols+c] = x[r]
		}
	}
	return nil
}

// Solve returns x with m * x = rhs, via LU decomposition with partial
// pivoting. A numerically singular matrix reports ErrSingularMatrix.
func (m *Matrix) Solve(rhs *Matrix) (*Matrix, error) {
	if err := m.checkSquare("solve"); err != nil {
		return nil, err
	}
	if rhs.rows != m.rows {
		return nil, fmt.Errorf("%w: %d right-hand rows for order %d", ErrIncompatibleInput, rhs.rows, m.rows)
	}
	lu := m.Duplicate()
	perm, _, err := lu.DecompLU()
	if err != nil {
		return nil, err
	}
	x := rhs.Duplicate()
	if err := lu.SolveLU(x, perm); err != nil {
		return nil, err
	}
	return x, nil
}

// SolveNormal returns the least-squares solution of the over-determined
// system m * x = rhs via the normal equations m'*m * x = m'*rhs.
func (m *Matrix) SolveNormal(rhs *Matrix) (*Matrix, error) {
	if rhs.rows != m.rows {
		return nil, fmt.Errorf("%w: %d right-hand rows for %d equations", ErrIncompatibleInput, rhs.rows, m.rows)
	}
	ata, err := m.ProductTranspose(m)
	if err != nil {
		return nil, err
	}
	atb, err := m.ProductTranspose(rhs)
	if err != nil {
		return nil, err
	}
	return ata.Solve(atb)
}

// Determinant returns det(m) as the product of the LU diagonal with the
// permutation sign. A singular matrix yields exactly 0 without error.
func (m *Matrix) Determinant() (float64, error) {
	if err := m.checkSquare("determinant"); err != nil {
		return 0, err
	}
	lu := m.Duplicate()
	_, sign, err := lu.DecompLU()
	if err != nil {
		if errors.Is(err, ErrSingularMatrix) {
			return 0, nil
		}
		return 0, err
	}
	det := float64(sign)
	n := m.rows
	for i := 0; i < n; i++ {
		det *= lu.data[i*n+i]
	}
	return det, nil
}

// InvertCreate returns the inverse of m, solving against the identity.
func (m *Matrix) InvertCreate() (*Matrix, error) {
	if err := m.checkSquare("inversion"); err != nil {
		return nil, err
	}
	id, _ := Identity(m.rows)
	return m.Solve(id)
}

// DumpTo writes the matrix elements to w as a tabular text block, one
// row per element with 1-indexed row and column.
func (m *Matrix) DumpTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#----- matrix: %d rows, %d columns -----\n#row\tcol\tvalue\n",
		m.rows, m.cols); err != nil {
		return err
	}
	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			if _, err := fmt.Fprintf(w, "%d\t%d\t%g\n", r+1, c+1, m.data[r*m.cols+c]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dump returns the textual dump as a string.
func (m *Matrix) Dump() string {
	var sb strings.Builder
	m.DumpTo(&sb)
	return sb.String()
}
