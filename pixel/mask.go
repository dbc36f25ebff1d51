package pixel

import "fmt"

// Axis selects a mirror axis for Flip operations.
type Axis int

const (
	// AxisHorizontal mirrors across the horizontal axis (rows are reversed).
	AxisHorizontal Axis = iota
	// AxisVertical mirrors across the vertical axis (columns are reversed).
	AxisVertical
)

// Mask is a dense boolean grid with one cell per pixel. A true cell marks
// the pixel as rejected: it carries no valid data. Masks support set
// algebra, morphological filtering and the same geometric transforms as
// the images they are attached to.
type Mask struct {
	width  int
	height int
	data   []bool
}

// NewMask creates an all-false (all pixels valid) mask.
func NewMask(width, height int) (*Mask, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: mask extent %dx%d", ErrIllegalInput, width, height)
	}
	return &Mask{width: width, height: height, data: make([]bool, width*height)}, nil
}

// Width returns the number of columns.
func (m *Mask) Width() int { return m.width }

// Height returns the number of rows.
func (m *Mask) Height() int { return m.height }

// Duplicate returns a deep copy of the mask.
func (m *Mask) Duplicate() *Mask {
	return &Mask{width: m.width, height: m.height, data: append([]bool(nil), m.data...)}
}

func (m *Mask) index(y, x int) (int, error) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return 0, fmt.Errorf("%w: mask cell (%d,%d) of %dx%d",
			ErrAccessOutOfRange, x, y, m.width, m.height)
	}
	return y*m.width + x, nil
}

// Get returns the cell at (y, x).
func (m *Mask) Get(y, x int) (bool, error) {
	i, err := m.index(y, x)
	if err != nil {
		return false, err
	}
	return m.data[i], nil
}

// Set assigns the cell at (y, x).
func (m *Mask) Set(y, x int, rejected bool) error {
	i, err := m.index(y, x)
	if err != nil {
		return err
	}
	m.data[i] = rejected
	return nil
}

// Count returns the number of true cells inside the window.
func (m *Mask) Count(win Window) (int, error) {
	x0, y0, x1, y1, err := win.resolve(m.width, m.height)
	if err != nil {
		return 0, err
	}
	n := 0
	for y := y0; y <= y1; y++ {
		row := m.data[y*m.width : (y+1)*m.width]
		for x := x0; x <= x1; x++ {
			if row[x] {
				n++
			}
		}
	}
	return n, nil
}

// IsEmpty reports whether no cell inside the window is set.
func (m *Mask) IsEmpty(win Window) (bool, error) {
	n, err := m.Count(win)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Extract returns a new mask covering the inclusive window.
func (m *Mask) Extract(win Window) (*Mask, error) {
	x0, y0, x1, y1, err := win.resolve(m.width, m.height)
	if err != nil {
		return nil, err
	}
	out, _ := NewMask(x1-x0+1, y1-y0+1)
	for y := y0; y <= y1; y++ {
		copy(out.data[(y-y0)*out.width:(y-y0+1)*out.width], m.data[y*m.width+x0:y*m.width+x1+1])
	}
	return out, nil
}

func (m *Mask) checkShape(other *Mask) error {
	if m.width != other.width || m.height != other.height {
		return fmt.Errorf("%w: mask %dx%d vs %dx%d",
			ErrIncompatibleInput, m.width, m.height, other.width, other.height)
	}
	return nil
}

// And intersects m with other in place.
func (m *Mask) And(other *Mask) error {
	if err := m.checkShape(other); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] = m.data[i] && other.data[i]
	}
	return nil
}

// Or unions other into m in place.
func (m *Mask) Or(other *Mask) error {
	if err := m.checkShape(other); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] = m.data[i] || other.data[i]
	}
	return nil
}

// Xor sets each cell of m to the symmetric difference with other.
func (m *Mask) Xor(other *Mask) error {
	if err := m.checkShape(other); err != nil {
		return err
	}
	for i := range m.data {
		m.data[i] = m.data[i] != other.data[i]
	}
	return nil
}

// Invert complements every cell in place.
func (m *Mask) Invert() {
	for i := range m.data {
		m.data[i] = !m.data[i]
	}
}

// Flip mirrors the mask in place across the given axis.
func (m *Mask) Flip(axis Axis) error {
	switch axis {
	case AxisHorizontal:
		for y := 0; y < m.height/2; y++ {
			top := m.data[y*m.width : (y+1)*m.width]
			bot := m.data[(m.height-1-y)*m.width : (m.height-y)*m.width]
			for x := range top {
				top[x], bot[x] = bot[x], top[x]
			}
		}
	case AxisVertical:
		for y := 0; y < m.height; y++ {
			row := m.data[y*m.width : (y+1)*m.width]
			for x := 0; x < m.width/2; x++ {
				row[x], row[m.width-1-x] = row[m.width-1-x], row[x]
			}
		}
	default:
		return fmt.Errorf("%w: flip axis %d", ErrIllegalInput, int(axis))
	}
	return nil
}

// Rotate turns the mask by n quarter turns counter-clockwise for positive
// n. The mask extent swaps for odd turn counts. The dump-format fixtures
// are the normative orientation reference for this operation.
func (m *Mask) Rotate(n int) {
	n = ((n % 4) + 4) % 4
	for ; n > 0; n-- {
		out := make([]bool, len(m.data))
		// (y, x) -> (width-1-x, y) in the rotated grid of height=width
		for y := 0; y < m.height; y++ {
			for x := 0; x < m.width; x++ {
				out[(m.width-1-x)*m.height+y] = m.data[y*m.width+x]
			}
		}
		m.width, m.height = m.height, m.width
		m.data = out
	}
}

// Shift translates the mask by (dy, dx) in place. Cells shifted in from
// outside the extent are set (rejected), since no data exists for them.
// A shift at least as large as the extent in either axis leaves no
// original cell and is refused.
func (m *Mask) Shift(dy, dx int) error {
	if dx <= -m.width || dx >= m.width || dy <= -m.height || dy >= m.height {
		return fmt.Errorf("%w: shift (%d,%d) of %dx%d mask",
			ErrIllegalInput, dy, dx, m.width, m.height)
	}
	out := make([]bool, len(m.data))
	for y := 0; y < m.height; y++ {
		sy := y - dy
		for x := 0; x < m.width; x++ {
			sx := x - dx
			if sx < 0 || sx >= m.width || sy < 0 || sy >= m.height {
				out[y*m.width+x] = true
			} else {
				out[y*m.width+x] = m.data[sy*m.width+sx]
			}
		}
	}
	m.data = out
	return nil
}

// Subsample returns a new mask keeping every ystep-th row and xstep-th
// column, starting at row 0 and column 0.
func (m *Mask) Subsample(ystep, xstep int) (*Mask, error) {
	if ystep < 1 || xstep < 1 {
		return nil, fmt.Errorf("%w: subsample steps (%d,%d)", ErrIllegalInput, ystep, xstep)
	}
	out, _ := NewMask((m.width+xstep-1)/xstep, (m.height+ystep-1)/ystep)
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			out.data[y*out.width+x] = m.data[y*ystep*m.width+x*xstep]
		}
	}
	return out, nil
}

// Move partitions the mask into nb x nb equally sized blocks and
// rearranges them. perm lists, for each source block in row-major order,
// its destination position; both are 1-based block indices. perm must be
// a permutation of 1..nb*nb.
func (m *Mask) Move(nb int, perm []int) error {
	if nb < 2 || m.width%nb != 0 || m.height%nb != 0 {
		return fmt.Errorf("%w: %dx%d mask cannot split into %dx%d blocks",
			ErrIllegalInput, m.width, m.height, nb, nb)
	}
	if len(perm) != nb*nb {
		return fmt.Errorf("%w: permutation length %d, want %d", ErrIllegalInput, len(perm), nb*nb)
	}
	seen := make([]bool, nb*nb)
	for _, p := range perm {
		if p < 1 || p > nb*nb || seen[p-1] {
			return fmt.Errorf("%w: not a permutation of 1..%d", ErrIllegalInput, nb*nb)
		}
		seen[p-1] = true
	}
	bw, bh := m.width/nb, m.height/nb
	out := make([]bool, len(m.data))
	for src := 0; src < nb*nb; src++ {
		dst := perm[src] - 1
		sy, sx := (src/nb)*bh, (src%nb)*bw
		dy, dx := (dst/nb)*bh, (dst%nb)*bw
		for y := 0; y < bh; y++ {
			copy(out[(dy+y)*m.width+dx:(dy+y)*m.width+dx+bw],
				m.data[(sy+y)*m.width+sx:(sy+y)*m.width+sx+bw])
		}
	}
	m.data = out
	return nil
}
