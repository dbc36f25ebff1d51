package mat

import (
	"fmt"
	"io"
	"strings"
)

// Polynomial is a sparse multivariate polynomial: a list of terms, each
// a coefficient with one non-negative exponent per dimension. Terms with
// coefficient zero are not stored, so an empty polynomial evaluates to 0
// everywhere.
//
// Dimensions are ordered slowest axis first: for the 2D image-plane case
// dimension 0 runs along y (rows) and dimension 1 along x (columns), and
// the Eval2D/Eval3D conveniences take their arguments in (x, y[, z])
// order and reverse them into that convention.
type Polynomial struct {
	dim   int
	terms []polyTerm
}

type polyTerm struct {
	pows  []int
	coeff float64
}

// NewPolynomial creates an all-zero polynomial over dim dimensions.
func NewPolynomial(dim int) (*Polynomial, error) {
	if dim < 1 {
		return nil, fmt.Errorf("%w: polynomial dimension %d", ErrIllegalInput, dim)
	}
	return &Polynomial{dim: dim}, nil
}

// Dimension returns the number of dimensions.
func (p *Polynomial) Dimension() int { return p.dim }

// Duplicate returns a deep copy.
func (p *Polynomial) Duplicate() *Polynomial {
	out := &Polynomial{dim: p.dim, terms: make([]polyTerm, len(p.terms))}
	for i, t := range p.terms {
		out.terms[i] = polyTerm{pows: append([]int(nil), t.pows...), coeff: t.coeff}
	}
	return out
}

func (p *Polynomial) checkPows(pows []int) error {
	if len(pows) != p.dim {
		return fmt.Errorf("%w: %d exponents for %d dimensions", ErrIllegalInput, len(pows), p.dim)
	}
	for _, e := range pows {
		if e < 0 {
			return fmt.Errorf("%w: negative exponent %d", ErrIllegalInput, e)
		}
	}
	return nil
}

func (p *Polynomial) findTerm(pows []int) int {
	for i, t := range p.terms {
		if powsEqual(t.pows, pows) {
			return i
		}
	}
	return -1
}

func powsEqual(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetCoeff sets the coefficient of the term with the given exponent
// tuple. A zero coefficient removes the term.
func (p *Polynomial) SetCoeff(pows []int, coeff float64) error {
	if err := p.checkPows(pows); err != nil {
		return err
	}
	i := p.findTerm(pows)
	if coeff == 0 {
		if i >= 0 {
			p.terms = append(p.terms[:i], p.terms[i+1:]...)
		}
		return nil
	}
	if i >= 0 {
		p.terms[i].coeff = coeff
		return nil
	}
	p.terms = append(p.terms, polyTerm{pows: append([]int(nil), pows...), coeff: coeff})
	return nil
}

// Coeff returns the coefficient of the term with the given exponent
// tuple, 0 for an absent term.
func (p *Polynomial) Coeff(pows []int) (float64, error) {
	if err := p.checkPows(pows); err != nil {
		return 0, err
	}
	if i := p.findTerm(pows); i >= 0 {
		return p.terms[i].coeff, nil
	}
	return 0, nil
}

// Degree returns the highest total degree over all stored terms, 0 for
// an empty polynomial.
func (p *Polynomial) Degree() int {
	deg := 0
	for _, t := range p.terms {
		total := 0
		for _, e := range t.pows {
			total += e
		}
		if total > deg {
			deg = total
		}
	}
	return deg
}

// ipow raises x to a non-negative integer power by iterated
// multiplication, which keeps small-integer evaluations exact.
func ipow(x float64, e int) float64 {
	r := 1.0
	for ; e > 0; e-- {
		r *= x
	}
	return r
}

// Eval evaluates the polynomial at the given point, one coordinate per
// dimension in the slowest-axis-first order.
func (p *Polynomial) Eval(point []float64) (float64, error) {
	if len(point) != p.dim {
		return 0, fmt.Errorf("%w: %d coordinates for %d dimensions", ErrIllegalInput, len(point), p.dim)
	}
	sum := 0.0
	for _, t := range p.terms {
		v := t.coeff
		for d, e := range t.pows {
			v *= ipow(point[d], e)
		}
		sum += v
	}
	return sum, nil
}

// evalGrad evaluates the polynomial and its analytic gradient at point.
func (p *Polynomial) evalGrad(point []float64, grad []float64) float64 {
	for d := range grad {
		grad[d] = 0
	}
	sum := 0.0
	for _, t := range p.terms {
		v := t.coeff
		for d, e := range t.pows {
			v *= ipow(point[d], e)
		}
		sum += v
		for d, e := range t.pows {
			if e == 0 {
				continue
			}
			g := t.coeff * float64(e) * ipow(point[d], e-1)
			for dd, ee := range t.pows {
				if dd == d {
					continue
				}
				g *= ipow(point[dd], ee)
			}
			grad[d] += g
		}
	}
	return sum
}

// Eval2D evaluates a 2-dimensional polynomial at image-plane position
// (x, y), which is the point (y, x) in dimension order, and returns the
// value with the analytic partial derivatives along x and y. A receiver
// of any other dimensionality evaluates to 0.
func (p *Polynomial) Eval2D(x, y float64) (v, dx, dy float64) {
	if p.dim != 2 {
		return 0, 0, 0
	}
	grad := make([]float64, 2)
	v = p.evalGrad([]float64{y, x}, grad)
	return v, grad[1], grad[0]
}

// Eval3D evaluates a 3-dimensional polynomial at volume position
// (x, y, z), which is the point (z, y, x) in dimension order, and
// returns the value with the analytic partial derivatives.
func (p *Polynomial) Eval3D(x, y, z float64) (v, dx, dy, dz float64) {
	if p.dim != 3 {
		return 0, 0, 0, 0
	}
	grad := make([]float64, 3)
	v = p.evalGrad([]float64{z, y, x}, grad)
	return v, grad[2], grad[1], grad[0]
}

// Derivative differentiates the polynomial in place along the given
// dimension: each term's coefficient is multiplied by its exponent there
// and the exponent decremented; terms constant in that dimension vanish.
func (p *Polynomial) Derivative(dim int) error {
	if dim < 0 || dim >= p.dim {
		return fmt.Errorf("%w: dimension %d of %d", ErrAccessOutOfRange, dim, p.dim)
	}
	kept := p.terms[:0]
	for _, t := range p.terms {
		e := t.pows[dim]
		if e == 0 {
			continue
		}
		t.coeff *= float64(e)
		t.pows[dim] = e - 1
		kept = append(kept, t)
	}
	p.terms = kept
	return nil
}

// ExtractCreate projects out one dimension by substituting the fixed
// value for it, returning a polynomial over the remaining dimensions.
// The receiver must have at least two dimensions.
func (p *Polynomial) ExtractCreate(dim int, value float64) (*Polynomial, error) {
	if dim < 0 || dim >= p.dim {
		return nil, fmt.Errorf("%w: dimension %d of %d", ErrAccessOutOfRange, dim, p.dim)
	}
	if p.dim < 2 {
		return nil, fmt.Errorf("%w: projecting a %d-dimensional polynomial", ErrIllegalInput, p.dim)
	}
	out, _ := NewPolynomial(p.dim - 1)
	pows := make([]int, p.dim-1)
	for _, t := range p.terms {
		copy(pows, t.pows[:dim])
		copy(pows[dim:], t.pows[dim+1:])
		c := t.coeff * ipow(value, t.pows[dim])
		if c == 0 {
			continue
		}
		old, _ := out.Coeff(pows)
		if err := out.SetCoeff(pows, old+c); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Symmetry constrains the exponents a fitted polynomial may use in one
// dimension.
type Symmetry int

const (
	// SymNone places no constraint.
	SymNone Symmetry = iota
	// SymEven keeps only even exponents.
	SymEven
	// SymOdd keeps only odd exponents.
	SymOdd
)

// FitOptions configures PolynomialFit.
type FitOptions struct {
	// PerDimDegrees interprets MaxDegrees (and MinDegrees) as one bound
	// per dimension instead of a single total-degree bound.
	PerDimDegrees bool

	// MaxDegrees holds the degree bound: a single element for a
	// total-degree bound, or one element per dimension.
	MaxDegrees []int

	// MinDegrees optionally excludes low-order terms, with the same
	// shape convention as MaxDegrees.
	MinDegrees []int

	// Symmetry optionally constrains exponent parity per dimension.
	Symmetry []Symmetry

	// Sigma optionally weights the samples by per-sample standard
	// deviations.
	Sigma *Vector
}

// PolynomialFit least-squares fits a polynomial to the sample values at
// the given positions (one row per sample, one column per dimension).
// The monomial basis is every exponent tuple inside the configured
// degree bounds and symmetry constraints, and the system is solved
// through the normal equations.
//
// Dimensions above 3 combined with any symmetry constraint are not
// implemented and report ErrUnsupportedMode.
func PolynomialFit(positions *Matrix, values *Vector, opts FitOptions) (*Polynomial, error) {
	dim := positions.Cols()
	n := positions.Rows()
	if values.Size() != n {
		return nil, fmt.Errorf("%w: %d values for %d positions", ErrIllegalInput, values.Size(), n)
	}
	if opts.Sigma != nil && opts.Sigma.Size() != n {
		return nil, fmt.Errorf("%w: %d sigmas for %d samples", ErrIllegalInput, opts.Sigma.Size(), n)
	}
	if opts.Symmetry != nil && len(opts.Symmetry) != dim {
		return nil, fmt.Errorf("%w: %d symmetry flags for %d dimensions", ErrIllegalInput, len(opts.Symmetry), dim)
	}
	if dim > 3 {
		for _, s := range opts.Symmetry {
			if s != SymNone {
				return nil, fmt.Errorf("%w: symmetry-constrained fit in %d dimensions", ErrUnsupportedMode, dim)
			}
		}
	}
	wantLen := 1
	if opts.PerDimDegrees {
		wantLen = dim
	}
	if len(opts.MaxDegrees) != wantLen {
		return nil, fmt.Errorf("%w: %d degree bounds, want %d", ErrIllegalInput, len(opts.MaxDegrees), wantLen)
	}
	if opts.MinDegrees != nil && len(opts.MinDegrees) != wantLen {
		return nil, fmt.Errorf("%w: %d minimum degrees, want %d", ErrIllegalInput, len(opts.MinDegrees), wantLen)
	}
	for _, d := range opts.MaxDegrees {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative degree bound %d", ErrIllegalInput, d)
		}
	}

	basis := enumerateBasis(dim, opts)
	if len(basis) == 0 {
		return nil, fmt.Errorf("%w: degree bounds admit no basis term", ErrIllegalInput)
	}
	if n < len(basis) {
		return nil, fmt.Errorf("%w: %d samples for %d basis terms", ErrDataNotFound, n, len(basis))
	}

	design, _ := NewMatrix(n, len(basis))
	rhs, _ := NewMatrix(n, 1)
	point := make([]float64, dim)
	for s := 0; s < n; s++ {
		w := 1.0
		if opts.Sigma != nil {
			sg := opts.Sigma.data[s]
			if sg <= 0 {
				return nil, fmt.Errorf("%w: non-positive sample sigma %g", ErrIllegalInput, sg)
			}
			w = 1 / sg
		}
		for d := 0; d < dim; d++ {
			point[d] = positions.data[s*dim+d]
		}
		for b, pows := range basis {
			v := w
			for d, e := range pows {
				v *= ipow(point[d], e)
			}
			design.data[s*len(basis)+b] = v
		}
		rhs.data[s] = w * values.data[s]
	}
	sol, err := design.SolveNormal(rhs)
	if err != nil {
		return nil, err
	}
	fit, _ := NewPolynomial(dim)
	for b, pows := range basis {
		if err := fit.SetCoeff(pows, sol.data[b]); err != nil {
			return nil, err
		}
	}
	return fit, nil
}

// enumerateBasis lists the admissible exponent tuples in a stable order.
func enumerateBasis(dim int, opts FitOptions) [][]int {
	perDimMax := make([]int, dim)
	totalMax := -1
	if opts.PerDimDegrees {
		copy(perDimMax, opts.MaxDegrees)
	} else {
		totalMax = opts.MaxDegrees[0]
		for d := range perDimMax {
			perDimMax[d] = totalMax
		}
	}
	var basis [][]int
	pows := make([]int, dim)
	var walk func(d, total int)
	walk = func(d, total int) {
		if d == dim {
			if !degreeAdmitted(pows, total, opts) {
				return
			}
			basis = append(basis, append([]int(nil), pows...))
			return
		}
		for e := 0; e <= perDimMax[d]; e++ {
			if totalMax >= 0 && total+e > totalMax {
				break
			}
			if opts.Symmetry != nil {
				if opts.Symmetry[d] == SymEven && e%2 == 1 {
					continue
				}
				if opts.Symmetry[d] == SymOdd && e%2 == 0 {
					continue
				}
			}
			pows[d] = e
			walk(d+1, total+e)
		}
		pows[d] = 0
	}
	walk(0, 0)
	return basis
}

func degreeAdmitted(pows []int, total int, opts FitOptions) bool {
	if opts.MinDegrees == nil {
		return true
	}
	if opts.PerDimDegrees {
		for d, e := range pows {
			if e < opts.MinDegrees[d] {
				return false
			}
		}
		return true
	}
	return total >= opts.MinDegrees[0]
}

// DumpTo writes the stored terms to w as a tabular text block, one row
// per term with the exponent tuple followed by the coefficient.
func (p *Polynomial) DumpTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#----- polynomial: %d dimensions, %d terms -----\n", p.dim, len(p.terms)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "#powers\tcoefficient"); err != nil {
		return err
	}
	for _, t := range p.terms {
		strs := make([]string, len(t.pows))
		for i, e := range t.pows {
			strs[i] = fmt.Sprintf("%d", e)
		}
		if _, err := fmt.Fprintf(w, "%s\t%g\n", strings.Join(strs, "."), t.coeff); err != nil {
			return err
		}
	}
	return nil
}

// Dump returns the textual dump as a string.
func (p *Polynomial) Dump() string {
	var sb strings.Builder
	p.DumpTo(&sb)
	return sb.String()
}
