package mat

import (
	"errors"
	"math"
	"testing"
)

func TestVectorStatistics(t *testing.T) {
	v, err := NewVectorFromSlice([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if err != nil {
		t.Fatalf("NewVectorFromSlice: %v", err)
	}
	if got := v.Mean(); got != 5 {
		t.Errorf("Mean = %v, want 5", got)
	}
	want := math.Sqrt(32.0 / 7)
	if got := v.Stdev(); math.Abs(got-want) > 1e-12 {
		t.Errorf("Stdev = %v, want %v", got, want)
	}
	if got := v.Median(); got != 4.5 {
		t.Errorf("Median = %v, want 4.5", got)
	}
	if got := v.Sum(); got != 40 {
		t.Errorf("Sum = %v, want 40", got)
	}
	if got := v.Min(); got != 2 {
		t.Errorf("Min = %v, want 2", got)
	}
	if got := v.Max(); got != 9 {
		t.Errorf("Max = %v, want 9", got)
	}
}

func TestVectorDotProduct(t *testing.T) {
	a, _ := NewVectorFromSlice([]float64{1, 2, 3})
	b, _ := NewVectorFromSlice([]float64{4, 5, 6})
	got, err := a.Product(b)
	if err != nil {
		t.Fatalf("Product: %v", err)
	}
	if got != 32 {
		t.Errorf("dot product = %v, want 32", got)
	}
	short, _ := NewVector(2)
	if _, err := a.Product(short); !errors.Is(err, ErrIncompatibleInput) {
		t.Errorf("mismatched sizes: err = %v, want ErrIncompatibleInput", err)
	}
}

func TestVectorSort(t *testing.T) {
	v, _ := NewVectorFromSlice([]float64{3, 1, 2})
	sorted := v.SortedCreate(false)
	if got := sorted.Data(); got[0] != 1 || got[2] != 3 {
		t.Errorf("sorted = %v, want ascending", got)
	}
	if got := v.Data(); got[0] != 3 {
		t.Error("SortedCreate mutated the receiver")
	}
	v.Sort(true)
	if got := v.Data(); got[0] != 3 || got[2] != 1 {
		t.Errorf("reverse sorted = %v, want descending", got)
	}
}

func TestVectorCycleInteger(t *testing.T) {
	v, _ := NewVectorFromSlice([]float64{1, 2, 3, 4})
	v.Cycle(1)
	if got := v.Data(); got[0] != 4 || got[1] != 1 {
		t.Errorf("Cycle(1) = %v, want exact rotation {4,1,2,3}", got)
	}
	v.Cycle(-5)
	if got := v.Data(); got[0] != 1 || got[3] != 4 {
		t.Errorf("Cycle(-5) after Cycle(1) = %v, want original order", got)
	}
}

func TestVectorCycleFractionalRoundTrip(t *testing.T) {
	v, _ := NewVectorFromSlice([]float64{1, 5, 2, 8, 3, 9, 4, 7})
	orig := v.Duplicate()
	v.Cycle(0.3)
	v.Cycle(-0.3)
	for i, want := range orig.Data() {
		if math.Abs(v.Data()[i]-want) > 1e-9 {
			t.Errorf("element %d after fractional round trip = %v, want %v", i, v.Data()[i], want)
		}
	}
}

func TestVectorCycleHalfOnSmoothData(t *testing.T) {
	// A pure single-cycle sine shifted by half a sample matches the
	// analytically shifted sine.
	const n = 16
	v, _ := NewVector(n)
	for i := 0; i < n; i++ {
		v.Set(i, math.Sin(2*math.Pi*float64(i)/n))
	}
	v.Cycle(0.5)
	for i := 0; i < n; i++ {
		want := math.Sin(2 * math.Pi * (float64(i) - 0.5) / n)
		if math.Abs(v.Data()[i]-want) > 1e-9 {
			t.Errorf("element %d = %v, want %v", i, v.Data()[i], want)
		}
	}
}

func TestVectorCorrelate(t *testing.T) {
	a, _ := NewVectorFromSlice([]float64{0, 0, 1, 0, 0, 0})
	b, _ := NewVectorFromSlice([]float64{0, 0, 0, 0, 1, 0})
	corr, best, err := a.Correlate(b, 2)
	if err != nil {
		t.Fatalf("Correlate: %v", err)
	}
	if corr.Size() != 5 {
		t.Fatalf("correlation size = %d, want 5", corr.Size())
	}
	// b is a by a shift of +2, so the peak sits at lag +2.
	if best != 4 {
		t.Errorf("best index = %d, want 4 (lag +2)", best)
	}

	single, best, err := a.Correlate(a, 0)
	if err != nil {
		t.Fatalf("Correlate(0): %v", err)
	}
	if single.Size() != 1 || best != 0 {
		t.Errorf("zero half search: size %d best %d, want 1 and 0", single.Size(), best)
	}
	if got, _ := single.Get(0); got != 1 {
		t.Errorf("zero-lag autocorrelation = %v, want 1", got)
	}

	if _, _, err := a.Correlate(b, 6); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("half search beyond extent: err = %v, want ErrIllegalInput", err)
	}
}

func TestVectorFilterMedianCreate(t *testing.T) {
	v, _ := NewVectorFromSlice([]float64{1, 1, 50, 1, 1})
	out, err := v.FilterMedianCreate(1)
	if err != nil {
		t.Fatalf("FilterMedianCreate: %v", err)
	}
	if got := out.Data()[2]; got != 1 {
		t.Errorf("median filtered spike = %v, want 1", got)
	}
	// Edge windows shrink to the available elements.
	if got := out.Data()[0]; got != 1 {
		t.Errorf("edge element = %v, want 1", got)
	}
	if _, err := v.FilterMedianCreate(3); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("half width beyond size/2: err = %v, want ErrIllegalInput", err)
	}
}

func TestFillKernelProfile(t *testing.T) {
	v, _ := NewVector(11)
	if err := v.FillKernelProfile(ProfileNearest, 1); err != nil {
		t.Fatalf("FillKernelProfile: %v", err)
	}
	// Element i sits at distance i/10: ones through 0.5, zeros beyond.
	d := v.Data()
	if d[0] != 1 || d[5] != 1 || d[6] != 0 || d[10] != 0 {
		t.Errorf("nearest profile = %v, want step at 0.5", d)
	}

	if err := v.FillKernelProfile(ProfileSinc, 2); err != nil {
		t.Fatalf("sinc profile: %v", err)
	}
	if d[0] != 1 {
		t.Errorf("sinc at 0 = %v, want 1", d[0])
	}
	// Element 5 sits at distance 1, a sinc zero crossing.
	if math.Abs(d[5]) > 1e-12 {
		t.Errorf("sinc at 1 = %v, want 0", d[5])
	}

	if err := v.FillKernelProfile(ProfileHann, 2); err != nil {
		t.Fatalf("hann profile: %v", err)
	}
	if d[10] != 0 {
		t.Errorf("hann at radius = %v, want 0", d[10])
	}

	single, _ := NewVector(1)
	if err := single.FillKernelProfile(ProfileSinc, 1); !errors.Is(err, ErrIllegalInput) {
		t.Errorf("tabulating one sample: err = %v, want ErrIllegalInput", err)
	}
}

func TestVectorDump(t *testing.T) {
	v, _ := NewVectorFromSlice([]float64{1.5, -2})
	want := "#----- vector: 2 elements -----\n#pos\tvalue\n1\t1.5\n2\t-2\n"
	if got := v.Dump(); got != want {
		t.Errorf("Dump =\n%s\nwant\n%s", got, want)
	}
}
