package pixel

import (
	"errors"
	"math"
	"testing"

	"github.com/mrjoshuak/go-pixelcore/mat"
)

func identityKernel(t *testing.T) *mat.Matrix {
	t.Helper()
	k, err := mat.NewMatrix(3, 3)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	k.Set(1, 1, 1)
	return k
}

func TestFilterLinearIdentity(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 3, 3)
	out, err := im.FilterCreate(identityKernel(t), FilterLinear, BorderFilter)
	if err != nil {
		t.Fatalf("FilterCreate: %v", err)
	}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			want, _, _ := im.Get(y, x)
			got, ok, _ := out.Get(y, x)
			if !ok || got != want {
				t.Errorf("identity filter (%d,%d) = %v, want %v", y, x, real(got), real(want))
			}
		}
	}
}

func TestFilterLinearScaleAverages(t *testing.T) {
	im, _ := NewImage(TypeFloat64, 5, 5)
	im.Fill(complex(4, 0))
	k, _ := mat.NewMatrix(3, 3)
	k.Fill(1)
	out, err := im.FilterCreate(k, FilterLinearScale, BorderFilter)
	if err != nil {
		t.Fatalf("FilterCreate: %v", err)
	}
	v, ok, _ := out.Get(2, 2)
	if !ok || real(v) != 4 {
		t.Errorf("scaled box filter of constant image = %v, want 4", real(v))
	}
	// BorderFilter averages over the samples inside the extent, so the
	// corner is still 4.
	v, ok, _ = out.Get(0, 0)
	if !ok || real(v) != 4 {
		t.Errorf("corner under BorderFilter = %v, want 4", real(v))
	}
}

func TestFilterMedianRemovesSpike(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 1, 1,
		1, 100, 1,
		1, 1, 1,
	}, 3, 3)
	k, _ := NewMask(3, 3)
	k.Invert()
	out, err := im.FilterMaskCreate(k, FilterMedian, BorderFilter)
	if err != nil {
		t.Fatalf("FilterMaskCreate: %v", err)
	}
	v, ok, _ := out.Get(1, 1)
	if !ok || real(v) != 1 {
		t.Errorf("median at spike = %v, want 1", real(v))
	}
}

func TestFilterMedianBorderCrop(t *testing.T) {
	im, _ := NewImage(TypeFloat64, 5, 4)
	im.Fill(complex(2, 0))
	k, _ := NewMask(3, 3)
	k.Invert()
	out, err := im.FilterMaskCreate(k, FilterMedian, BorderCrop)
	if err != nil {
		t.Fatalf("FilterMaskCreate: %v", err)
	}
	if out.Width() != 3 || out.Height() != 2 {
		t.Errorf("cropped extent = %dx%d, want 3x2", out.Width(), out.Height())
	}
}

func TestFilterIgnoresRejectedSamples(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 1, 1,
		1, 100, 1,
		1, 1, 1,
	}, 3, 3)
	im.Reject(1, 1)
	k, _ := NewMask(3, 3)
	k.Invert()
	out, err := im.FilterMaskCreate(k, FilterAverage, BorderFilter)
	if err != nil {
		t.Fatalf("FilterMaskCreate: %v", err)
	}
	v, ok, _ := out.Get(1, 1)
	if !ok || real(v) != 1 {
		t.Errorf("average excluding rejected spike = %v, want 1", real(v))
	}
}

func TestFilterAllRejectedWindowRejectsOutput(t *testing.T) {
	im, _ := NewImage(TypeFloat64, 3, 3)
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			im.Reject(y, x)
		}
	}
	k, _ := NewMask(3, 3)
	k.Invert()
	out, err := im.FilterMaskCreate(k, FilterAverage, BorderFilter)
	if err != nil {
		t.Fatalf("FilterMaskCreate: %v", err)
	}
	if _, ok, _ := out.Get(1, 1); ok {
		t.Error("output pixel with no valid contributor is not rejected")
	}
}

func TestFilterStdev(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 1,
		2, 1, 2,
		1, 2, 1,
	}, 3, 3)
	k, _ := NewMask(3, 3)
	k.Invert()
	out, err := im.FilterMaskCreate(k, FilterStdev, BorderFilter)
	if err != nil {
		t.Fatalf("FilterMaskCreate: %v", err)
	}
	v, ok, _ := out.Get(1, 1)
	// Nine samples, five ones and four twos.
	mean := 13.0 / 9
	want := math.Sqrt((5*(1-mean)*(1-mean) + 4*(2-mean)*(2-mean)) / 8)
	if !ok || math.Abs(real(v)-want) > 1e-12 {
		t.Errorf("stdev filter = %v, want %v", real(v), want)
	}
}

func TestFilterMorphoScaleWeightsSortedWindow(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		3, 1, 2,
		9, 5, 7,
		4, 8, 6,
	}, 3, 3)
	// Coefficient layout selects the middle of the sorted window, so the
	// interior pixel becomes the window median.
	k, _ := mat.NewMatrix(3, 3)
	k.Set(1, 1, 1)
	out, err := im.FilterCreate(k, FilterMorphoScale, BorderNop)
	if err != nil {
		t.Fatalf("FilterCreate: %v", err)
	}
	v, ok, _ := out.Get(1, 1)
	if !ok || real(v) != 5 {
		t.Errorf("morpho median = %v, want 5", real(v))
	}
}

func TestFilterModeErrors(t *testing.T) {
	im, _ := NewImage(TypeFloat64, 3, 3)
	k := identityKernel(t)
	if _, err := im.FilterCreate(k, FilterMedian, BorderFilter); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("median with matrix kernel: err = %v, want ErrUnsupportedMode", err)
	}
	if _, err := im.FilterCreate(k, FilterLinear, BorderCrop); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("crop border outside median: err = %v, want ErrUnsupportedMode", err)
	}
	even, _ := mat.NewMatrix(2, 2)
	if _, err := im.FilterCreate(even, FilterLinear, BorderFilter); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("even kernel: err = %v, want ErrIllegalInput", err)
	}
	cplx, _ := NewImage(TypeComplex64, 3, 3)
	if _, err := cplx.FilterCreate(k, FilterLinear, BorderFilter); !errors.Is(err, ErrInvalidType) {
		t.Errorf("filtering complex image: err = %v, want ErrInvalidType", err)
	}
	mk, _ := NewMask(3, 3)
	if _, err := im.FilterMaskCreate(mk, FilterAverage, BorderFilter); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("empty mask kernel: err = %v, want ErrIllegalInput", err)
	}
}
