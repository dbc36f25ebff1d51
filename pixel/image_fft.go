package pixel

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFTMode is a bit combination of transform options. The zero value is a
// forward, normalized transform with no quadrant swap.
type FFTMode uint

const (
	// FFTForward is the default forward transform.
	FFTForward FFTMode = 0

	// FFTInverse selects the inverse transform.
	FFTInverse FFTMode = 1 << iota

	// FFTUnnormalized skips the 1/N scaling of the inverse transform.
	FFTUnnormalized

	// FFTSwapHalves swaps the image quadrants diagonally after the
	// transform, moving the zero-frequency term to the center. Both
	// extents must be even.
	FFTSwapHalves
)

// FFTCreate returns the 2D discrete Fourier transform of the image as a
// complex128 image. Real input is transformed with zero imaginary part.
//
// The forward transform computes X[k] = sum_n x[n] * exp(+2*pi*i*k*n/N)
// per axis, with the sign of the imaginary component negated relative to
// the common engineering convention. The inverse transform mirrors the
// sign and scales by 1/N per axis unless FFTUnnormalized is set, so that
// forward followed by inverse reproduces the input.
//
// Rejected pixels contribute their stored values: the transform is a
// global operation with no per-pixel validity, and the result image
// carries an empty mask.
func (im *Image) FFTCreate(mode FFTMode) (*Image, error) {
	if mode&^(FFTInverse|FFTUnnormalized|FFTSwapHalves) != 0 {
		return nil, fmt.Errorf("%w: fft mode %#x", ErrUnsupportedMode, uint(mode))
	}
	w, h := im.buf.width, im.buf.height
	if mode&FFTSwapHalves != 0 && (w%2 != 0 || h%2 != 0) {
		return nil, fmt.Errorf("%w: half swapping a %dx%d image", ErrIllegalInput, w, h)
	}

	out, _ := NewImage(TypeComplex128, w, h)
	for i := range out.buf.c128 {
		out.buf.c128[i] = im.buf.at(i)
	}

	inverse := mode&FFTInverse != 0
	fftRows(out.buf.c128, w, h, inverse)
	fftCols(out.buf.c128, w, h, inverse)

	if inverse && mode&FFTUnnormalized == 0 {
		scale := complex(1/float64(w*h), 0)
		for i := range out.buf.c128 {
			out.buf.c128[i] *= scale
		}
	}
	if mode&FFTSwapHalves != 0 {
		swapHalves(out.buf.c128, w, h)
	}
	return out, nil
}

// transformLine runs a 1D pass with the negated-imaginary convention.
// Conjugating input and output of a standard FFT flips the sign of the
// exponent, which is exactly the convention mirror required.
func transformLine(fft *fourier.CmplxFFT, line []complex128, inverse bool) {
	for i, v := range line {
		line[i] = cmplx.Conj(v)
	}
	var res []complex128
	if inverse {
		res = fft.Sequence(nil, line)
	} else {
		res = fft.Coefficients(nil, line)
	}
	for i, v := range res {
		line[i] = cmplx.Conj(v)
	}
}

func fftRows(data []complex128, w, h int, inverse bool) {
	fft := fourier.NewCmplxFFT(w)
	line := make([]complex128, w)
	for y := 0; y < h; y++ {
		copy(line, data[y*w:(y+1)*w])
		transformLine(fft, line, inverse)
		copy(data[y*w:(y+1)*w], line)
	}
}

func fftCols(data []complex128, w, h int, inverse bool) {
	fft := fourier.NewCmplxFFT(h)
	line := make([]complex128, h)
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			line[y] = data[y*w+x]
		}
		transformLine(fft, line, inverse)
		for y := 0; y < h; y++ {
			data[y*w+x] = line[y]
		}
	}
}

// swapHalves exchanges the image quadrants diagonally. Extents are even.
func swapHalves(data []complex128, w, h int) {
	hw, hh := w/2, h/2
	for y := 0; y < hh; y++ {
		for x := 0; x < w; x++ {
			sx := (x + hw) % w
			a, b := y*w+x, (y+hh)*w+sx
			data[a], data[b] = data[b], data[a]
		}
	}
}
