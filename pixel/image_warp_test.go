package pixel

import (
	"math"
	"testing"

	"github.com/mrjoshuak/go-pixelcore/mat"
)

func nearestKernel(t *testing.T) *Kernel {
	t.Helper()
	k, err := NewKernel(mat.ProfileNearest, 0.5)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	return k
}

func TestGetInterpolatedAtGridPoint(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2,
		3, 4,
	}, 2, 2)
	k := nearestKernel(t)
	v, conf, err := im.GetInterpolated(1, 0, k, k)
	if err != nil {
		t.Fatalf("GetInterpolated: %v", err)
	}
	if v != 2 || conf != 1 {
		t.Errorf("GetInterpolated(1,0) = %v, %v, want 2, 1", v, conf)
	}
	v, conf, _ = im.GetInterpolated(0.4, 0.9, k, k)
	if v != 3 || conf != 1 {
		t.Errorf("GetInterpolated(0.4,0.9) = %v, %v, want nearest pixel 3, 1", v, conf)
	}
}

func TestGetInterpolatedConfidence(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{10, 20}, 2, 1)
	im.Reject(0, 1)
	// Radius 1 covers both pixels with equal weight at the midpoint.
	k, err := NewKernel(mat.ProfileNearest, 1)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	half, _ := NewKernel(mat.ProfileNearest, 0.5)
	v, conf, err := im.GetInterpolated(0.5, 0, k, half)
	if err != nil {
		t.Fatalf("GetInterpolated: %v", err)
	}
	if v != 10 {
		t.Errorf("value with right sample rejected = %v, want 10", v)
	}
	if conf != 0.5 {
		t.Errorf("confidence with half the weight rejected = %v, want 0.5", conf)
	}

	_, conf, _ = im.GetInterpolated(10, 0, k, half)
	if conf != 0 {
		t.Errorf("confidence far outside the extent = %v, want 0", conf)
	}
}

func TestWarpCreateIdentity(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 3, 3)
	xmap, _ := NewImage(TypeFloat64, 3, 3)
	ymap, _ := NewImage(TypeFloat64, 3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			xmap.Set(y, x, complex(float64(x), 0))
			ymap.Set(y, x, complex(float64(y), 0))
		}
	}
	k := nearestKernel(t)
	out, err := im.WarpCreate(xmap, ymap, k, k)
	if err != nil {
		t.Fatalf("WarpCreate: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want, _, _ := im.Get(y, x)
			got, ok, _ := out.Get(y, x)
			if !ok || got != want {
				t.Errorf("identity warp (%d,%d) = %v, want %v", y, x, real(got), real(want))
			}
		}
	}
}

func TestWarpCreateRejections(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{1, 2, 3, 4}, 2, 2)
	xmap, _ := NewImage(TypeFloat64, 2, 2)
	ymap, _ := NewImage(TypeFloat64, 2, 2)
	// Pixel (0,0) maps outside the input, pixel (0,1) has a rejected map
	// cell, the bottom row maps to input (0,0).
	xmap.Set(0, 0, complex(50, 0))
	xmap.Reject(0, 1)
	k := nearestKernel(t)
	out, err := im.WarpCreate(xmap, ymap, k, k)
	if err != nil {
		t.Fatalf("WarpCreate: %v", err)
	}
	if _, ok, _ := out.Get(0, 0); ok {
		t.Error("out-of-extent source position produced a valid pixel")
	}
	if _, ok, _ := out.Get(0, 1); ok {
		t.Error("rejected map pixel produced a valid pixel")
	}
	v, ok, _ := out.Get(1, 0)
	if !ok || real(v) != 1 {
		t.Errorf("warp (1,0) = %v, %v, want 1, true", real(v), ok)
	}
}

func TestWarpPolynomialCreateTranslation(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 3, 3)
	// px(x,y) = x + 1, py(x,y) = y: shift the content left by one pixel.
	px, _ := mat.NewPolynomial(2)
	px.SetCoeff([]int{0, 1}, 1)
	px.SetCoeff([]int{0, 0}, 1)
	py, _ := mat.NewPolynomial(2)
	py.SetCoeff([]int{1, 0}, 1)
	k := nearestKernel(t)
	out, err := im.WarpPolynomialCreate(3, 3, px, py, k, k)
	if err != nil {
		t.Fatalf("WarpPolynomialCreate: %v", err)
	}
	v, ok, _ := out.Get(1, 0)
	if !ok || real(v) != 5 {
		t.Errorf("translated warp (1,0) = %v, %v, want 5, true", real(v), ok)
	}
	if _, ok, _ := out.Get(1, 2); ok {
		t.Error("column mapping outside the input is not rejected")
	}
}

func TestCreateJacobianLinearMaps(t *testing.T) {
	const w, h = 4, 3
	xmap, _ := NewImage(TypeFloat64, w, h)
	ymap, _ := NewImage(TypeFloat64, w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			xmap.Set(y, x, complex(2*float64(x), 0))
			ymap.Set(y, x, complex(3*float64(y), 0))
		}
	}
	planes, err := CreateJacobian(xmap, ymap)
	if err != nil {
		t.Fatalf("CreateJacobian: %v", err)
	}
	if planes.Len() != 2 {
		t.Fatalf("Len = %d, want 2 planes", planes.Len())
	}
	p0, _ := planes.Get(0)
	p1, _ := planes.Get(1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v0, _, _ := p0.Get(y, x)
			v1, _, _ := p1.Get(y, x)
			if v0 != complex(2, 0) {
				t.Errorf("x plane (%d,%d) = %v, want 2+0i", y, x, v0)
			}
			if v1 != complex(0, 3) {
				t.Errorf("y plane (%d,%d) = %v, want 0+3i", y, x, v1)
			}
		}
	}
}

func TestCreateJacobianPolynomialMatchesAnalytic(t *testing.T) {
	// px(x,y) = x*y has dpx/dx = y and dpx/dy = x.
	px, _ := mat.NewPolynomial(2)
	px.SetCoeff([]int{1, 1}, 1)
	py, _ := mat.NewPolynomial(2)
	py.SetCoeff([]int{1, 0}, 1)
	planes, err := CreateJacobianPolynomial(3, 3, px, py)
	if err != nil {
		t.Fatalf("CreateJacobianPolynomial: %v", err)
	}
	p0, _ := planes.Get(0)
	v, _, _ := p0.Get(2, 1)
	if real(v) != 2 || imag(v) != 1 {
		t.Errorf("x plane at (y=2,x=1) = %v, want 2+1i", v)
	}
}

func TestKernelValueDecay(t *testing.T) {
	k, err := NewKernel(mat.ProfileSinc, 3)
	if err != nil {
		t.Fatalf("NewKernel: %v", err)
	}
	if got := k.value(0); got != 1 {
		t.Errorf("sinc kernel at 0 = %v, want 1", got)
	}
	if got := k.value(1); math.Abs(got) > 1e-3 {
		t.Errorf("sinc kernel at integer distance = %v, want near 0", got)
	}
	if got := k.value(4); got != 0 {
		t.Errorf("kernel beyond radius = %v, want 0", got)
	}
}
