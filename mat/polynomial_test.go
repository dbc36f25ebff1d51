package mat

import (
	"errors"
	"math"
	"testing"
)

func TestPolynomialEval2DExact(t *testing.T) {
	p, err := NewPolynomial(2)
	if err != nil {
		t.Fatalf("NewPolynomial: %v", err)
	}
	// p(x, y) = 4 + x + 3x^2 + 7y + 10xy + 2xy^3, exponents ordered (y, x).
	p.SetCoeff([]int{0, 0}, 4)
	p.SetCoeff([]int{0, 1}, 1)
	p.SetCoeff([]int{0, 2}, 3)
	p.SetCoeff([]int{1, 0}, 7)
	p.SetCoeff([]int{1, 1}, 10)
	p.SetCoeff([]int{3, 1}, 2)
	v, _, _ := p.Eval2D(6, -8)
	if v != -6562 {
		t.Errorf("Eval2D(6, -8) = %v, want exactly -6562", v)
	}
}

func TestPolynomialEval2DGradient(t *testing.T) {
	p, _ := NewPolynomial(2)
	p.SetCoeff([]int{0, 2}, 3)
	p.SetCoeff([]int{1, 1}, 10)
	v, dx, dy := p.Eval2D(2, 5)
	if v != 3*4+10*2*5 {
		t.Errorf("value = %v, want 112", v)
	}
	if dx != 3*2*2+10*5 {
		t.Errorf("dx = %v, want 62", dx)
	}
	if dy != 10*2 {
		t.Errorf("dy = %v, want 20", dy)
	}
}

func TestPolynomialGradientMatchesCentralDifference(t *testing.T) {
	p, _ := NewPolynomial(2)
	p.SetCoeff([]int{2, 1}, 1.5)
	p.SetCoeff([]int{0, 3}, -0.25)
	p.SetCoeff([]int{1, 0}, 2)
	const h = 1e-6
	x, y := 1.3, -0.7
	_, dx, dy := p.Eval2D(x, y)
	vp, _, _ := p.Eval2D(x+h, y)
	vm, _, _ := p.Eval2D(x-h, y)
	if math.Abs(dx-(vp-vm)/(2*h)) > 1e-5 {
		t.Errorf("dx = %v, central difference = %v", dx, (vp-vm)/(2*h))
	}
	vp, _, _ = p.Eval2D(x, y+h)
	vm, _, _ = p.Eval2D(x, y-h)
	if math.Abs(dy-(vp-vm)/(2*h)) > 1e-5 {
		t.Errorf("dy = %v, central difference = %v", dy, (vp-vm)/(2*h))
	}
}

func TestPolynomialCoeffAndDegree(t *testing.T) {
	p, _ := NewPolynomial(2)
	p.SetCoeff([]int{1, 2}, 5)
	if got, _ := p.Coeff([]int{1, 2}); got != 5 {
		t.Errorf("Coeff = %v, want 5", got)
	}
	if got, _ := p.Coeff([]int{2, 1}); got != 0 {
		t.Errorf("absent term = %v, want 0", got)
	}
	if p.Degree() != 3 {
		t.Errorf("Degree = %d, want 3", p.Degree())
	}
	p.SetCoeff([]int{1, 2}, 0)
	if p.Degree() != 0 {
		t.Errorf("Degree after removing the term = %d, want 0", p.Degree())
	}
	if err := p.SetCoeff([]int{1}, 1); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("wrong exponent count: err = %v, want ErrIllegalInput", err)
	}
	if err := p.SetCoeff([]int{-1, 0}, 1); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("negative exponent: err = %v, want ErrIllegalInput", err)
	}
}

func TestPolynomialDerivative(t *testing.T) {
	p, _ := NewPolynomial(2)
	// p = 3*y^2*x + 4*x, d/dy = 6*y*x.
	p.SetCoeff([]int{2, 1}, 3)
	p.SetCoeff([]int{0, 1}, 4)
	if err := p.Derivative(0); err != nil {
		t.Fatalf("Derivative: %v", err)
	}
	if got, _ := p.Coeff([]int{1, 1}); got != 6 {
		t.Errorf("derivative coefficient = %v, want 6", got)
	}
	if got, _ := p.Coeff([]int{0, 1}); got != 0 {
		t.Errorf("constant-in-y term survived differentiation: %v", got)
	}
	if err := p.Derivative(5); !errors.Is(err, ErrAccessOutOfRange) {
		t.Errorf("derivative along missing dimension: err = %v, want ErrAccessOutOfRange", err)
	}
}

func TestPolynomialExtractCreate(t *testing.T) {
	p, _ := NewPolynomial(2)
	// p = y^2*x + 3*y with (y, x) ordering. Substituting y=2 gives 4x + 6.
	p.SetCoeff([]int{2, 1}, 1)
	p.SetCoeff([]int{1, 0}, 3)
	q, err := p.ExtractCreate(0, 2)
	if err != nil {
		t.Fatalf("ExtractCreate: %v", err)
	}
	if q.Dimension() != 1 {
		t.Fatalf("projected dimension = %d, want 1", q.Dimension())
	}
	v, err := q.Eval([]float64{5})
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if v != 26 {
		t.Errorf("projection at x=5 = %v, want 26", v)
	}

	one, _ := NewPolynomial(1)
	if _, err := one.ExtractCreate(0, 1); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("projecting a 1D polynomial: err = %v, want ErrIllegalInput", err)
	}
}

func TestPolynomialFitRecoversCoefficients(t *testing.T) {
	truth, _ := NewPolynomial(2)
	truth.SetCoeff([]int{0, 0}, 1)
	truth.SetCoeff([]int{0, 1}, -2)
	truth.SetCoeff([]int{1, 0}, 0.5)
	truth.SetCoeff([]int{1, 1}, 3)

	var rows []float64
	var vals []float64
	for y := -2; y <= 2; y++ {
		for x := -2; x <= 2; x++ {
			v, err := truth.Eval([]float64{float64(y), float64(x)})
			if err != nil {
				t.Fatalf("Eval: %v", err)
			}
			rows = append(rows, float64(y), float64(x))
			vals = append(vals, v)
		}
	}
	positions, _ := NewMatrixFromSlice(rows, 25, 2)
	values, _ := NewVectorFromSlice(vals)
	fit, err := PolynomialFit(positions, values, FitOptions{MaxDegrees: []int{2}})
	if err != nil {
		t.Fatalf("PolynomialFit: %v", err)
	}
	for _, tc := range []struct {
		pows []int
		want float64
	}{
		{[]int{0, 0}, 1}, {[]int{0, 1}, -2}, {[]int{1, 0}, 0.5}, {[]int{1, 1}, 3},
		{[]int{2, 0}, 0}, {[]int{0, 2}, 0},
	} {
		got, _ := fit.Coeff(tc.pows)
		if math.Abs(got-tc.want) > 1e-8 {
			t.Errorf("fitted coefficient %v = %v, want %v", tc.pows, got, tc.want)
		}
	}
}

func TestPolynomialFitSymmetry(t *testing.T) {
	// Even data in one dimension fitted under an even constraint keeps
	// odd exponents out of the basis.
	var rows, vals []float64
	for x := -3; x <= 3; x++ {
		rows = append(rows, float64(x))
		vals = append(vals, float64(x*x))
	}
	positions, _ := NewMatrixFromSlice(rows, 7, 1)
	values, _ := NewVectorFromSlice(vals)
	fit, err := PolynomialFit(positions, values, FitOptions{
		MaxDegrees: []int{3},
		Symmetry:   []Symmetry{SymEven},
	})
	if err != nil {
		t.Fatalf("PolynomialFit: %v", err)
	}
	if got, _ := fit.Coeff([]int{2}); math.Abs(got-1) > 1e-10 {
		t.Errorf("even coefficient = %v, want 1", got)
	}
	if got, _ := fit.Coeff([]int{1}); got != 0 {
		t.Errorf("odd coefficient under even symmetry = %v, want 0", got)
	}
}

func TestPolynomialFitHighDimSymmetryUnsupported(t *testing.T) {
	positions, _ := NewMatrix(10, 4)
	values, _ := NewVector(10)
	_, err := PolynomialFit(positions, values, FitOptions{
		MaxDegrees: []int{1},
		Symmetry:   []Symmetry{SymEven, SymNone, SymNone, SymNone},
	})
	if !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("4D symmetric fit: err = %v, want ErrUnsupportedMode", err)
	}
}

func TestPolynomialFitUnderdetermined(t *testing.T) {
	positions, _ := NewMatrix(2, 2)
	values, _ := NewVector(2)
	_, err := PolynomialFit(positions, values, FitOptions{MaxDegrees: []int{2}})
	if !errors.Is(err, ErrDataNotFound) {
		t.Errorf("fewer samples than basis terms: err = %v, want ErrDataNotFound", err)
	}
}

func TestPolynomialDump(t *testing.T) {
	p, _ := NewPolynomial(2)
	p.SetCoeff([]int{1, 2}, -3.5)
	want := "#----- polynomial: 2 dimensions, 1 terms -----\n#powers\tcoefficient\n1.2\t-3.5\n"
	if got := p.Dump(); got != want {
		t.Errorf("Dump =\n%s\nwant\n%s", got, want)
	}
}
