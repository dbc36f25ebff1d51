package pixel

import (
	"errors"
	"math"
	"testing"
)

func gaussian2DImage(t *testing.T, w, h int, background, flux, rho, x0, y0, sx, sy float64) *Image {
	t.Helper()
	im, err := NewImage(TypeFloat64, w, h)
	if err != nil {
		t.Fatalf("NewImage: %v", err)
	}
	q := 1 - rho*rho
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := (float64(x) - x0) / sx
			v := (float64(y) - y0) / sy
			e := math.Exp(-(u*u - 2*rho*u*v + v*v) / (2 * q))
			z := background + flux/(2*math.Pi*sx*sy*math.Sqrt(q))*e
			if err := im.Set(y, x, complex(z, 0)); err != nil {
				t.Fatalf("Set(%d,%d): %v", y, x, err)
			}
		}
	}
	return im
}

func TestFitGaussian2DRecoversParameters(t *testing.T) {
	im := gaussian2DImage(t, 21, 21, 5, 200, 0, 10, 8, 2, 3)
	fit, err := im.FitGaussian2D(FullWindow)
	if err != nil {
		t.Fatalf("FitGaussian2D: %v", err)
	}
	// Fitted center comes back 1-based.
	if math.Abs(fit.X0-11) > 1e-5 {
		t.Errorf("X0 = %v, want 11", fit.X0)
	}
	if math.Abs(fit.Y0-9) > 1e-5 {
		t.Errorf("Y0 = %v, want 9", fit.Y0)
	}
	if math.Abs(fit.SigmaX-2) > 1e-5 {
		t.Errorf("SigmaX = %v, want 2", fit.SigmaX)
	}
	if math.Abs(fit.SigmaY-3) > 1e-5 {
		t.Errorf("SigmaY = %v, want 3", fit.SigmaY)
	}
	if math.Abs(fit.Rho) > 1e-5 {
		t.Errorf("Rho = %v, want 0", fit.Rho)
	}
	if math.Abs(fit.Flux-200) > 1e-3 {
		t.Errorf("Flux = %v, want 200", fit.Flux)
	}
	if math.Abs(fit.Background-5) > 1e-5 {
		t.Errorf("Background = %v, want 5", fit.Background)
	}
	if fit.RedChisq > 1e-8 {
		t.Errorf("RedChisq = %v for noise-free data, want ~0", fit.RedChisq)
	}
	if fit.Covariance.Rows() != 7 || fit.Covariance.Cols() != 7 {
		t.Errorf("covariance extent = %dx%d, want 7x7", fit.Covariance.Rows(), fit.Covariance.Cols())
	}
}

func TestFitGaussian2DTilted(t *testing.T) {
	im := gaussian2DImage(t, 25, 25, 0, 100, 0.4, 12, 12, 2.5, 1.8)
	fit, err := im.FitGaussian2D(FullWindow)
	if err != nil {
		t.Fatalf("FitGaussian2D: %v", err)
	}
	if math.Abs(fit.Rho-0.4) > 1e-3 {
		t.Errorf("Rho = %v, want 0.4", fit.Rho)
	}
	if math.Abs(fit.SigmaX-2.5) > 1e-3 {
		t.Errorf("SigmaX = %v, want 2.5", fit.SigmaX)
	}
	if math.Abs(fit.SigmaY-1.8) > 1e-3 {
		t.Errorf("SigmaY = %v, want 1.8", fit.SigmaY)
	}
}

func TestFitGaussian2DIgnoresRejected(t *testing.T) {
	im := gaussian2DImage(t, 21, 21, 0, 150, 0, 10, 10, 2, 2)
	// A corrupted but rejected pixel must not pull the fit.
	if err := im.Set(3, 3, 1e6); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := im.Reject(3, 3); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	fit, err := im.FitGaussian2D(FullWindow)
	if err != nil {
		t.Fatalf("FitGaussian2D: %v", err)
	}
	if math.Abs(fit.X0-11) > 1e-5 || math.Abs(fit.Y0-11) > 1e-5 {
		t.Errorf("center = (%v, %v), want (11, 11)", fit.X0, fit.Y0)
	}
	if math.Abs(fit.Flux-150) > 1e-3 {
		t.Errorf("Flux = %v, want 150", fit.Flux)
	}
}

func TestFitGaussian2DErrors(t *testing.T) {
	cim, _ := NewImage(TypeComplex128, 4, 4)
	if _, err := cim.FitGaussian2D(FullWindow); !errors.Is(err, ErrInvalidType) {
		t.Errorf("complex image: err = %v, want ErrInvalidType", err)
	}

	im, _ := NewImage(TypeFloat64, 4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			im.Reject(y, x)
		}
	}
	if _, err := im.FitGaussian2D(FullWindow); !errors.Is(err, ErrDataNotFound) {
		t.Errorf("all pixels rejected: err = %v, want ErrDataNotFound", err)
	}

	small, _ := NewImage(TypeFloat64, 2, 2)
	if _, err := small.FitGaussian2D(FullWindow); !errors.Is(err, ErrDataNotFound) {
		t.Errorf("fewer samples than parameters: err = %v, want ErrDataNotFound", err)
	}
}
