package pixel

import (
	"errors"
	"testing"
)

func TestExtractCreateCarriesMask(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 3, 3)
	im.Reject(1, 1)
	sub, err := im.ExtractCreate(Window{X0: 1, Y0: 1, X1: 2, Y1: 2})
	if err != nil {
		t.Fatalf("ExtractCreate: %v", err)
	}
	if sub.Width() != 2 || sub.Height() != 2 {
		t.Fatalf("extract extent = %dx%d, want 2x2", sub.Width(), sub.Height())
	}
	if _, ok, _ := sub.Get(0, 0); ok {
		t.Error("rejection of source (1,1) not carried to extract (0,0)")
	}
	v, ok, _ := sub.Get(1, 1)
	if !ok || real(v) != 9 {
		t.Errorf("extract (1,1) = %v, %v, want 9, true", real(v), ok)
	}
}

func TestImageShiftRejectsIncomingPixels(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{1, 2, 3, 4}, 2, 2)
	if err := im.Shift(0, 1); err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if _, ok, _ := im.Get(0, 0); ok {
		t.Error("pixel shifted in from outside is valid")
	}
	v, ok, _ := im.Get(0, 1)
	if !ok || real(v) != 1 {
		t.Errorf("shifted pixel (0,1) = %v, %v, want 1, true", real(v), ok)
	}
	if err := im.Shift(2, 0); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("full-extent shift: err = %v, want ErrIllegalInput", err)
	}
}

func TestTurnFollowsMaskRotation(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3,
		4, 5, 6,
	}, 3, 2)
	im.Reject(0, 0)
	im.Turn(1)
	if im.Width() != 2 || im.Height() != 3 {
		t.Fatalf("turned extent = %dx%d, want 2x3", im.Width(), im.Height())
	}
	if _, ok, _ := im.Get(2, 0); ok {
		t.Error("rejection did not follow the pixel through the turn")
	}
	im.Accept(2, 0)
	v, _, _ := im.Get(2, 0)
	if real(v) != 1 {
		t.Errorf("turned pixel (2,0) = %v, want 1", real(v))
	}
	im.Turn(-1)
	v, _, _ = im.Get(0, 2)
	if im.Width() != 3 || real(v) != 3 {
		t.Errorf("inverse turn: extent %dx%d, pixel (0,2) = %v, want 3x2 and 3",
			im.Width(), im.Height(), real(v))
	}
}

func TestRebinCreate(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 3, 10,
		5, 7, 10,
		9, 9, 9,
	}, 3, 3)
	out, err := im.RebinCreate(0, 0, 2, 2)
	if err != nil {
		t.Fatalf("RebinCreate: %v", err)
	}
	if out.Width() != 1 || out.Height() != 1 {
		t.Fatalf("rebin extent = %dx%d, want 1x1 (partial bins dropped)", out.Width(), out.Height())
	}
	v, ok, _ := out.Get(0, 0)
	if !ok || real(v) != 4 {
		t.Errorf("bin mean = %v, %v, want 4, true", real(v), ok)
	}
}

func TestRebinCreateAllRejectedBin(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{1, 2, 3, 4}, 2, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			im.Reject(y, x)
		}
	}
	out, err := im.RebinCreate(0, 0, 2, 2)
	if err != nil {
		t.Fatalf("RebinCreate: %v", err)
	}
	if _, ok, _ := out.Get(0, 0); ok {
		t.Error("bin with no valid pixel produced a valid output pixel")
	}
}

func TestExtractSubsampleCreate(t *testing.T) {
	im, _ := NewImageFromFloat64([]float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
	}, 4, 3)
	im.Reject(2, 2)
	out, err := im.ExtractSubsampleCreate(2, 2)
	if err != nil {
		t.Fatalf("ExtractSubsampleCreate: %v", err)
	}
	if out.Width() != 2 || out.Height() != 2 {
		t.Fatalf("subsample extent = %dx%d, want 2x2", out.Width(), out.Height())
	}
	v, ok, _ := out.Get(0, 1)
	if !ok || real(v) != 3 {
		t.Errorf("subsample (0,1) = %v, %v, want 3, true", real(v), ok)
	}
	if _, ok, _ := out.Get(1, 1); ok {
		t.Error("rejection of source (2,2) not sampled into (1,1)")
	}
}
