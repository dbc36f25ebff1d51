package pixel

import (
	"fmt"
	"math"
	"sort"
)

// collectValid gathers the values of all valid pixels inside the window.
// Statistics are undefined for complex data.
func (im *Image) collectValid(win Window) ([]float64, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: statistics on %s image", ErrInvalidType, im.buf.typ)
	}
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return nil, err
	}
	vals := make([]float64, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*im.buf.width + x
			if im.rejectedAt(i) {
				continue
			}
			vals = append(vals, im.buf.float64At(i))
		}
	}
	if len(vals) == 0 {
		return nil, fmt.Errorf("%w: no valid pixel in window", ErrDataNotFound)
	}
	return vals, nil
}

// Min returns the smallest valid pixel value inside the window.
func (im *Image) Min(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	min := vals[0]
	for _, v := range vals[1:] {
		if v < min {
			min = v
		}
	}
	return min, nil
}

// Max returns the largest valid pixel value inside the window.
func (im *Image) Max(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	max := vals[0]
	for _, v := range vals[1:] {
		if v > max {
			max = v
		}
	}
	return max, nil
}

// Mean returns the arithmetic mean of the valid pixels inside the window.
func (im *Image) Mean(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), nil
}

// Median returns the median of the valid pixels inside the window. For
// integer images the median is computed in integer arithmetic: with an
// even sample count the result is the floor of the average of the two
// middle values, reproducing the engine's historical behavior bit for
// bit.
func (im *Image) Median(win Window) (float64, error) {
	if im.buf.typ == TypeInt32 {
		return im.medianInt(win)
	}
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2], nil
	}
	return (vals[n/2-1] + vals[n/2]) / 2, nil
}

func (im *Image) medianInt(win Window) (float64, error) {
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return 0, err
	}
	vals := make([]int32, 0, (x1-x0+1)*(y1-y0+1))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*im.buf.width + x
			if !im.rejectedAt(i) {
				vals = append(vals, im.buf.i32[i])
			}
		}
	}
	if len(vals) == 0 {
		return 0, fmt.Errorf("%w: no valid pixel in window", ErrDataNotFound)
	}
	sort.Slice(vals, func(a, b int) bool { return vals[a] < vals[b] })
	n := len(vals)
	if n%2 == 1 {
		return float64(vals[n/2]), nil
	}
	sum := int64(vals[n/2-1]) + int64(vals[n/2])
	return float64(floorDiv2(sum)), nil
}

// floorDiv2 divides by two rounding toward negative infinity.
func floorDiv2(v int64) int64 {
	return v >> 1
}

// Stdev returns the sample standard deviation (n-1 normalization) of the
// valid pixels inside the window. At least two valid pixels are required.
func (im *Image) Stdev(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	if len(vals) < 2 {
		return 0, fmt.Errorf("%w: standard deviation of %d sample", ErrDataNotFound, len(vals))
	}
	mean := 0.0
	for _, v := range vals {
		mean += v
	}
	mean /= float64(len(vals))
	ss := 0.0
	for _, v := range vals {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1)), nil
}

// Mad returns the median absolute deviation from the median of the valid
// pixels inside the window.
func (im *Image) Mad(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	med := medianOf(vals)
	devs := make([]float64, len(vals))
	for i, v := range vals {
		devs[i] = math.Abs(v - med)
	}
	return medianOf(devs), nil
}

// medianOf sorts vals in place and returns the floating median.
func medianOf(vals []float64) float64 {
	sort.Float64s(vals)
	n := len(vals)
	if n%2 == 1 {
		return vals[n/2]
	}
	return (vals[n/2-1] + vals[n/2]) / 2
}

// Flux returns the sum of the valid pixel values inside the window.
func (im *Image) Flux(win Window) (float64, error) {
	vals, err := im.collectValid(win)
	if err != nil {
		return 0, err
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum, nil
}

// AbsFlux returns the sum of the absolute valid pixel values inside the
// window. Unlike the other statistics it is defined for complex images,
// where the modulus is summed.
func (im *Image) AbsFlux(win Window) (float64, error) {
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return 0, err
	}
	sum, count := 0.0, 0
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*im.buf.width + x
			if im.rejectedAt(i) {
				continue
			}
			sum += abs(im.buf.at(i))
			count++
		}
	}
	if count == 0 {
		return 0, fmt.Errorf("%w: no valid pixel in window", ErrDataNotFound)
	}
	return sum, nil
}

// Centroid returns the intensity-weighted centroid of the valid pixels
// inside the window, in 1-based pixel coordinates (the same convention as
// the dump format). Only positive values contribute weight; when the
// window carries no positive flux the geometric center of the valid
// pixels is returned.
func (im *Image) Centroid(win Window) (xc, yc float64, err error) {
	if im.buf.typ.IsComplex() {
		return 0, 0, fmt.Errorf("%w: centroid of %s image", ErrInvalidType, im.buf.typ)
	}
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return 0, 0, err
	}
	var sw, swx, swy float64
	var n, sx, sy int
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*im.buf.width + x
			if im.rejectedAt(i) {
				continue
			}
			n++
			sx += x
			sy += y
			v := im.buf.float64At(i)
			if v > 0 {
				sw += v
				swx += v * float64(x)
				swy += v * float64(y)
			}
		}
	}
	if n == 0 {
		return 0, 0, fmt.Errorf("%w: no valid pixel in window", ErrDataNotFound)
	}
	if sw == 0 {
		return float64(sx)/float64(n) + 1, float64(sy)/float64(n) + 1, nil
	}
	return swx/sw + 1, swy/sw + 1, nil
}
