package mat

import (
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"sort"
	"strings"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Vector is a 1D real numeric array. Zero-length vectors cannot be
// constructed, so statistics are always defined over at least one
// element.
type Vector struct {
	data []float64
}

// NewVector creates a zero-filled vector of n elements, n >= 1.
func NewVector(n int) (*Vector, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: vector size %d", ErrIllegalInput, n)
	}
	return &Vector{data: make([]float64, n)}, nil
}

// NewVectorFromSlice creates a vector copying the given elements.
func NewVectorFromSlice(data []float64) (*Vector, error) {
	v, err := NewVector(len(data))
	if err != nil {
		return nil, err
	}
	copy(v.data, data)
	return v, nil
}

// Size returns the number of elements.
func (v *Vector) Size() int { return len(v.data) }

// Data returns the underlying element slice. Mutating it mutates the
// vector.
func (v *Vector) Data() []float64 { return v.data }

// Duplicate returns a deep copy.
func (v *Vector) Duplicate() *Vector {
	return &Vector{data: append([]float64(nil), v.data...)}
}

// Get returns element i.
func (v *Vector) Get(i int) (float64, error) {
	if i < 0 || i >= len(v.data) {
		return 0, fmt.Errorf("%w: element %d of %d", ErrAccessOutOfRange, i, len(v.data))
	}
	return v.data[i], nil
}

// Set assigns element i.
func (v *Vector) Set(i int, x float64) error {
	if i < 0 || i >= len(v.data) {
		return fmt.Errorf("%w: element %d of %d", ErrAccessOutOfRange, i, len(v.data))
	}
	v.data[i] = x
	return nil
}

// Fill sets every element to x.
func (v *Vector) Fill(x float64) {
	for i := range v.data {
		v.data[i] = x
	}
}

// Mean returns the arithmetic mean.
func (v *Vector) Mean() float64 { return stat.Mean(v.data, nil) }

// Stdev returns the sample standard deviation (n-1 normalization).
func (v *Vector) Stdev() float64 { return stat.StdDev(v.data, nil) }

// Median returns the median, averaging the two middle elements for even
// sizes.
func (v *Vector) Median() float64 {
	tmp := append([]float64(nil), v.data...)
	sort.Float64s(tmp)
	n := len(tmp)
	if n%2 == 1 {
		return tmp[n/2]
	}
	return (tmp[n/2-1] + tmp[n/2]) / 2
}

// Sum returns the sum of the elements.
func (v *Vector) Sum() float64 {
	sum := 0.0
	for _, x := range v.data {
		sum += x
	}
	return sum
}

// Min returns the smallest element.
func (v *Vector) Min() float64 {
	min := v.data[0]
	for _, x := range v.data[1:] {
		if x < min {
			min = x
		}
	}
	return min
}

// Max returns the largest element.
func (v *Vector) Max() float64 {
	max := v.data[0]
	for _, x := range v.data[1:] {
		if x > max {
			max = x
		}
	}
	return max
}

// Product returns the dot product with another vector of equal size.
func (v *Vector) Product(other *Vector) (float64, error) {
	if len(v.data) != len(other.data) {
		return 0, fmt.Errorf("%w: dot product of %d and %d elements",
			ErrIncompatibleInput, len(v.data), len(other.data))
	}
	sum := 0.0
	for i, x := range v.data {
		sum += x * other.data[i]
	}
	return sum, nil
}

// Sort sorts the vector in place, descending when reverse is set. The
// sort is stable, though stability is unobservable for plain values.
func (v *Vector) Sort(reverse bool) {
	if reverse {
		sort.Stable(sort.Reverse(sort.Float64Slice(v.data)))
		return
	}
	sort.Stable(sort.Float64Slice(v.data))
}

// SortedCreate returns a sorted copy, leaving the receiver untouched.
func (v *Vector) SortedCreate(reverse bool) *Vector {
	out := v.Duplicate()
	out.Sort(reverse)
	return out
}

// Cycle shifts the vector cyclically by amount positions in place:
// element i moves to position i+amount, wrapping around. Integer amounts
// are an exact rotation; fractional amounts interpolate through the
// Fourier phase-shift theorem, so Cycle(k) followed by Cycle(-k)
// restores the vector to floating tolerance.
func (v *Vector) Cycle(amount float64) {
	n := len(v.data)
	if n == 1 {
		return
	}
	if amount == math.Trunc(amount) {
		s := ((int(amount) % n) + n) % n
		if s == 0 {
			return
		}
		out := make([]float64, n)
		for i, x := range v.data {
			out[(i+s)%n] = x
		}
		v.data = out
		return
	}

	fft := fourier.NewCmplxFFT(n)
	in := make([]complex128, n)
	for i, x := range v.data {
		in[i] = complex(x, 0)
	}
	coef := fft.Coefficients(nil, in)
	for k := range coef {
		kk := k
		if kk > n/2 {
			kk -= n
		}
		if n%2 == 0 && k == n/2 {
			// The Nyquist bin has no conjugate partner: keep the output
			// real by using the cosine of the phase.
			coef[k] *= complex(math.Cos(math.Pi*amount), 0)
			continue
		}
		coef[k] *= cmplx.Exp(complex(0, -2*math.Pi*float64(kk)*amount/float64(n)))
	}
	res := fft.Sequence(nil, coef)
	scale := 1 / float64(n)
	for i := range v.data {
		v.data[i] = real(res[i]) * scale
	}
}

// Correlate cross-correlates v with other over the lag range
// [-halfSearch, +halfSearch]: element lag+halfSearch of the result is
// the dot product of v with other shifted by lag, over the overlapping
// elements. It returns the correlation vector and the index of its
// maximum, so halfSearch is the index of zero lag. halfSearch zero
// degenerates to the single zero-lag dot product.
func (v *Vector) Correlate(other *Vector, halfSearch int) (*Vector, int, error) {
	n1, n2 := len(v.data), len(other.data)
	lim := n1
	if n2 < lim {
		lim = n2
	}
	if halfSearch < 0 || halfSearch >= lim {
		return nil, 0, fmt.Errorf("%w: half search %d for vectors of %d and %d",
			ErrIllegalInput, halfSearch, n1, n2)
	}
	out, _ := NewVector(2*halfSearch + 1)
	best := 0
	for lag := -halfSearch; lag <= halfSearch; lag++ {
		sum := 0.0
		for i := 0; i < n1; i++ {
			j := i + lag
			if j < 0 || j >= n2 {
				continue
			}
			sum += v.data[i] * other.data[j]
		}
		k := lag + halfSearch
		out.data[k] = sum
		if out.data[k] > out.data[best] {
			best = k
		}
	}
	return out, best, nil
}

// FilterMedianCreate returns the sliding-median filtered vector with a
// window of 2*halfWidth+1 elements. Near the edges the window shrinks to
// the available elements. halfWidth must lie in [0, size/2].
func (v *Vector) FilterMedianCreate(halfWidth int) (*Vector, error) {
	n := len(v.data)
	if halfWidth < 0 || halfWidth > n/2 {
		return nil, fmt.Errorf("%w: median half width %d for %d elements",
			ErrIllegalInput, halfWidth, n)
	}
	out, _ := NewVector(n)
	win := make([]float64, 0, 2*halfWidth+1)
	for i := range v.data {
		lo, hi := i-halfWidth, i+halfWidth
		if lo < 0 {
			lo = 0
		}
		if hi > n-1 {
			hi = n - 1
		}
		win = append(win[:0], v.data[lo:hi+1]...)
		sort.Float64s(win)
		m := len(win)
		if m%2 == 1 {
			out.data[i] = win[m/2]
		} else {
			out.data[i] = (win[m/2-1] + win[m/2]) / 2
		}
	}
	return out, nil
}

// KernelProfile selects the shape of a tabulated reconstruction kernel.
type KernelProfile int

const (
	// ProfileNearest is nearest-neighbor reconstruction.
	ProfileNearest KernelProfile = iota
	// ProfileSinc is the ideal low-pass sinc kernel.
	ProfileSinc
	// ProfileSinc2 is the squared sinc kernel.
	ProfileSinc2
	// ProfileLanczos is the sinc kernel windowed by a wider sinc.
	ProfileLanczos
	// ProfileHamming is the sinc kernel under a Hamming window.
	ProfileHamming
	// ProfileHann is the sinc kernel under a Hann window.
	ProfileHann
)

// FillKernelProfile fills the vector with the kernel profile tabulated
// uniformly over distances [0, radius]: element i holds the profile at
// distance radius*i/(size-1).
func (v *Vector) FillKernelProfile(profile KernelProfile, radius float64) error {
	if radius <= 0 {
		return fmt.Errorf("%w: kernel radius %g", ErrIllegalInput, radius)
	}
	n := len(v.data)
	if n < 2 {
		return fmt.Errorf("%w: profile tabulation over %d sample", ErrIllegalInput, n)
	}
	for i := range v.data {
		d := radius * float64(i) / float64(n-1)
		switch profile {
		case ProfileNearest:
			if d <= 0.5 {
				v.data[i] = 1
			} else {
				v.data[i] = 0
			}
		case ProfileSinc:
			v.data[i] = sinc(d)
		case ProfileSinc2:
			s := sinc(d)
			v.data[i] = s * s
		case ProfileLanczos:
			if d < radius {
				v.data[i] = sinc(d) * sinc(d/radius)
			} else {
				v.data[i] = 0
			}
		case ProfileHamming:
			v.data[i] = sinc(d) * (0.54 + 0.46*math.Cos(math.Pi*d/radius))
		case ProfileHann:
			v.data[i] = sinc(d) * (0.5 + 0.5*math.Cos(math.Pi*d/radius))
		default:
			return fmt.Errorf("%w: kernel profile %d", ErrIllegalInput, int(profile))
		}
	}
	return nil
}

// sinc is the normalized sinc function sin(pi x)/(pi x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	return math.Sin(math.Pi*x) / (math.Pi * x)
}

// DumpTo writes the vector elements to w as a tabular text block, one
// row per element with a 1-indexed position column.
func (v *Vector) DumpTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "#----- vector: %d elements -----\n#pos\tvalue\n", len(v.data)); err != nil {
		return err
	}
	for i, x := range v.data {
		if _, err := fmt.Fprintf(w, "%d\t%g\n", i+1, x); err != nil {
			return err
		}
	}
	return nil
}

// Dump returns the textual dump as a string.
func (v *Vector) Dump() string {
	var sb strings.Builder
	v.DumpTo(&sb)
	return sb.String()
}
