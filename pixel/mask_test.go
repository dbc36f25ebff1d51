package pixel

import (
	"errors"
	"testing"
)

func TestMaskCountInvert(t *testing.T) {
	m, err := NewMask(3, 3)
	if err != nil {
		t.Fatalf("NewMask: %v", err)
	}
	if err := m.Set(2, 2, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	n, err := m.Count(FullWindow)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1", n)
	}
	m.Invert()
	if n, _ = m.Count(FullWindow); n != 8 {
		t.Errorf("Count after invert = %d, want 8", n)
	}
	if empty, _ := m.IsEmpty(FullWindow); empty {
		t.Error("IsEmpty = true for a mask with 8 set cells")
	}
}

func TestMaskDumpFormat(t *testing.T) {
	m, _ := NewMask(3, 3)
	m.Set(2, 2, true)
	want := "#----- mask: 1 <= x <= 3, 1 <= y <= 3 -----\n" +
		"#X\tY\tvalue\n" +
		"1\t1\t0\n" +
		"2\t1\t0\n" +
		"3\t1\t0\n" +
		"1\t2\t0\n" +
		"2\t2\t0\n" +
		"3\t2\t0\n" +
		"1\t3\t0\n" +
		"2\t3\t0\n" +
		"3\t3\t1\n"
	if got := m.Dump(); got != want {
		t.Errorf("Dump =\n%s\nwant\n%s", got, want)
	}
}

func TestMaskWindowSentinel(t *testing.T) {
	m, _ := NewMask(4, 4)
	m.Set(1, 2, true)
	full, err := m.Count(Window{})
	if err != nil {
		t.Fatalf("Count(zero window): %v", err)
	}
	explicit, _ := m.Count(Window{X0: 0, Y0: 0, X1: 3, Y1: 3})
	if full != explicit {
		t.Errorf("zero window count = %d, explicit full window = %d", full, explicit)
	}
}

func TestMaskSetAlgebra(t *testing.T) {
	a, _ := NewMask(2, 2)
	b, _ := NewMask(2, 2)
	a.Set(0, 0, true)
	a.Set(0, 1, true)
	b.Set(0, 1, true)
	b.Set(1, 0, true)

	x := a.Duplicate()
	x.Xor(b)
	for _, tc := range []struct {
		y, x int
		want bool
	}{
		{0, 0, true}, {0, 1, false}, {1, 0, true}, {1, 1, false},
	} {
		if got, _ := x.Get(tc.y, tc.x); got != tc.want {
			t.Errorf("xor cell (%d,%d) = %v, want %v", tc.y, tc.x, got, tc.want)
		}
	}

	and := a.Duplicate()
	and.And(b)
	if n, _ := and.Count(FullWindow); n != 1 {
		t.Errorf("and count = %d, want 1", n)
	}
	or := a.Duplicate()
	or.Or(b)
	if n, _ := or.Count(FullWindow); n != 3 {
		t.Errorf("or count = %d, want 3", n)
	}
}

func TestMaskShiftFillsIncomingCells(t *testing.T) {
	m, _ := NewMask(4, 1)
	m.Set(0, 1, true)
	if err := m.Shift(0, 1); err != nil {
		t.Fatalf("Shift: %v", err)
	}
	wants := []bool{true, false, true, false}
	for x, want := range wants {
		if got, _ := m.Get(0, x); got != want {
			t.Errorf("cell (0,%d) after shift = %v, want %v", x, got, want)
		}
	}
	if err := m.Shift(0, 4); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("full-extent shift: err = %v, want ErrIllegalInput", err)
	}
}

func TestMaskShiftRoundTripRestoresInterior(t *testing.T) {
	m, _ := NewMask(5, 5)
	m.Set(2, 2, true)
	m.Set(1, 3, true)
	orig := m.Duplicate()
	m.Shift(1, 1)
	m.Shift(-1, -1)
	// Cells whose content left the extent and came back as fill stay set;
	// everything that stayed inside is restored.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			got, _ := m.Get(y, x)
			want, _ := orig.Get(y, x)
			if got != want {
				t.Errorf("cell (%d,%d) after round trip = %v, want %v", y, x, got, want)
			}
		}
	}
	if got, _ := m.Get(4, 4); !got {
		t.Error("cell (4,4) after round trip = false, want fill value true")
	}
}

func TestMaskRotate(t *testing.T) {
	m, _ := NewMask(3, 2)
	m.Set(0, 0, true)
	m.Rotate(1)
	if m.Width() != 2 || m.Height() != 3 {
		t.Fatalf("rotated extent = %dx%d, want 2x3", m.Width(), m.Height())
	}
	if got, _ := m.Get(2, 0); !got {
		t.Error("quarter turn moved (0,0) away from (2,0)")
	}
	if n, _ := m.Count(FullWindow); n != 1 {
		t.Errorf("rotation changed set-cell count to %d", n)
	}
	m.Rotate(3)
	if got, _ := m.Get(0, 0); !got {
		t.Error("four quarter turns did not restore the mask")
	}
}

func TestMaskFlip(t *testing.T) {
	m, _ := NewMask(3, 2)
	m.Set(0, 0, true)
	if err := m.Flip(AxisVertical); err != nil {
		t.Fatalf("Flip: %v", err)
	}
	if got, _ := m.Get(0, 2); !got {
		t.Error("vertical flip did not mirror (0,0) to (0,2)")
	}
	m.Flip(AxisHorizontal)
	if got, _ := m.Get(1, 2); !got {
		t.Error("horizontal flip did not mirror (0,2) to (1,2)")
	}
}

func TestMaskExtractSubsample(t *testing.T) {
	m, _ := NewMask(4, 4)
	m.Set(1, 1, true)
	m.Set(2, 2, true)
	sub, err := m.Extract(Window{X0: 1, Y0: 1, X1: 2, Y1: 2})
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if sub.Width() != 2 || sub.Height() != 2 {
		t.Fatalf("extract extent = %dx%d, want 2x2", sub.Width(), sub.Height())
	}
	if got, _ := sub.Get(0, 0); !got {
		t.Error("extract lost cell (1,1)")
	}

	ss, err := m.Subsample(2, 2)
	if err != nil {
		t.Fatalf("Subsample: %v", err)
	}
	if ss.Width() != 2 || ss.Height() != 2 {
		t.Fatalf("subsample extent = %dx%d, want 2x2", ss.Width(), ss.Height())
	}
	if got, _ := ss.Get(1, 1); !got {
		t.Error("subsample dropped source cell (2,2)")
	}
}

func TestMaskMove(t *testing.T) {
	m, _ := NewMask(4, 4)
	m.Set(0, 0, true) // block 1
	// Swap the two top blocks, keep the bottom row in place.
	if err := m.Move(2, []int{2, 1, 3, 4}); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if got, _ := m.Get(0, 2); !got {
		t.Error("block content did not move to block 2")
	}
	if got, _ := m.Get(0, 0); got {
		t.Error("source block was not replaced")
	}
	if err := m.Move(2, []int{1, 1, 3, 4}); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("duplicate destination: err = %v, want ErrIllegalInput", err)
	}
}

func fullElement(t *testing.T, n int) *Mask {
	t.Helper()
	k, err := NewMask(n, n)
	if err != nil {
		t.Fatalf("NewMask: %v", err)
	}
	k.Invert()
	return k
}

func TestMaskOpeningRemovesSmallSpeckles(t *testing.T) {
	m, _ := NewMask(7, 7)
	m.Set(3, 3, true)
	m.Set(3, 4, true)
	m.Set(4, 3, true)
	m.Set(4, 4, true)
	m.Set(1, 5, true)
	out, err := m.Filter(fullElement(t, 3), FilterOpening, BorderNop)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if n, _ := out.Count(FullWindow); n != 0 {
		t.Errorf("opening left %d cells, want 0 (no 3x3 region was fully set)", n)
	}
}

func TestMaskClosingFillsHoles(t *testing.T) {
	m, _ := NewMask(9, 9)
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			if y == 4 && x == 4 {
				continue
			}
			m.Set(y, x, true)
		}
	}
	out, err := m.Filter(fullElement(t, 3), FilterClosing, BorderNop)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if got, _ := out.Get(4, 4); !got {
		t.Error("closing did not fill the interior hole")
	}
	for y := 3; y <= 5; y++ {
		for x := 3; x <= 5; x++ {
			if got, _ := out.Get(y, x); !got {
				t.Errorf("closing removed original cell (%d,%d)", y, x)
			}
		}
	}
}

func TestMaskErosionDilationDuality(t *testing.T) {
	m, _ := NewMask(8, 8)
	m.Set(3, 3, true)
	m.Set(3, 4, true)
	m.Set(4, 3, true)
	m.Set(5, 5, true)
	k := fullElement(t, 3)

	dil, err := m.Filter(k, FilterDilation, BorderNop)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	comp := m.Duplicate()
	comp.Invert()
	ero, _ := comp.Filter(k, FilterErosion, BorderNop)
	ero.Invert()
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			d, _ := dil.Get(y, x)
			e, _ := ero.Get(y, x)
			if d != e {
				t.Errorf("duality broken at (%d,%d): dilation %v, complement erosion %v", y, x, d, e)
			}
		}
	}
}

func TestMaskFilterBadInput(t *testing.T) {
	m, _ := NewMask(4, 4)
	even, _ := NewMask(2, 2)
	if _, err := m.Filter(even, FilterErosion, BorderNop); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("even structuring element: err = %v, want ErrIllegalInput", err)
	}
	k := fullElement(t, 3)
	if _, err := m.Filter(k, FilterMedian, BorderNop); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("median on mask: err = %v, want ErrUnsupportedMode", err)
	}
	if _, err := m.Filter(k, FilterErosion, BorderCrop); !errors.Is(err, ErrUnsupportedMode) {
		t.Errorf("crop border on mask: err = %v, want ErrUnsupportedMode", err)
	}
}
