package pixel

import (
	"fmt"
	"math"
	"sort"

	"github.com/mrjoshuak/go-pixelcore/mat"
)

// FilterCreate filters the image with a real-valued kernel matrix and
// returns a new image of the same type. Supported modes are FilterLinear,
// FilterLinearScale, FilterAverage, FilterAverageFast, FilterStdev,
// FilterStdevFast, FilterMorpho and FilterMorphoScale. Border handling is
// BorderFilter, BorderZero, BorderNop or BorderCrop; BorderCopy and
// BorderCrop are reserved for median filtering and report
// ErrUnsupportedMode here.
//
// Rejected input pixels never contribute. An output pixel with no valid
// contributor is rejected.
func (im *Image) FilterCreate(kernel *mat.Matrix, mode FilterMode, border BorderMode) (*Image, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: filtering a %s image", ErrInvalidType, im.buf.typ)
	}
	if kernel == nil || kernel.Cols()%2 == 0 || kernel.Rows()%2 == 0 {
		return nil, fmt.Errorf("%w: kernel must have odd extents", ErrIllegalInput)
	}
	switch mode {
	case FilterLinear, FilterLinearScale, FilterAverage, FilterAverageFast,
		FilterStdev, FilterStdevFast, FilterMorpho, FilterMorphoScale:
	default:
		return nil, fmt.Errorf("%w: filter mode %d for matrix kernel", ErrUnsupportedMode, int(mode))
	}
	if border == BorderCopy || border == BorderCrop {
		return nil, fmt.Errorf("%w: border mode %d outside median filtering", ErrUnsupportedMode, int(border))
	}
	if mode == FilterStdev || mode == FilterStdevFast {
		if kernel.Rows()*kernel.Cols() < 2 {
			return nil, fmt.Errorf("%w: standard deviation over a single-sample kernel", ErrDataNotFound)
		}
	}
	coef := make([]float64, 0, kernel.Rows()*kernel.Cols())
	for r := 0; r < kernel.Rows(); r++ {
		for c := 0; c < kernel.Cols(); c++ {
			v, _ := kernel.Get(r, c)
			coef = append(coef, v)
		}
	}
	return im.runFilter(kernel.Cols(), kernel.Rows(), coef, nil, mode, border)
}

// FilterMaskCreate filters the image with a binary kernel: the set cells
// of kernel define the sample window. Supported modes are FilterMedian,
// FilterAverage, FilterAverageFast, FilterStdev and FilterStdevFast.
// BorderCopy and BorderCrop are defined for FilterMedian only.
func (im *Image) FilterMaskCreate(kernel *Mask, mode FilterMode, border BorderMode) (*Image, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: filtering a %s image", ErrInvalidType, im.buf.typ)
	}
	if kernel == nil || kernel.width%2 == 0 || kernel.height%2 == 0 {
		return nil, fmt.Errorf("%w: kernel must have odd extents", ErrIllegalInput)
	}
	switch mode {
	case FilterMedian, FilterAverage, FilterAverageFast, FilterStdev, FilterStdevFast:
	default:
		return nil, fmt.Errorf("%w: filter mode %d for mask kernel", ErrUnsupportedMode, int(mode))
	}
	if (border == BorderCopy || border == BorderCrop) && mode != FilterMedian {
		return nil, fmt.Errorf("%w: border mode %d outside median filtering", ErrUnsupportedMode, int(border))
	}
	hits := 0
	sel := make([]bool, kernel.width*kernel.height)
	for i, v := range kernel.data {
		sel[i] = v
		if v {
			hits++
		}
	}
	if hits == 0 {
		return nil, fmt.Errorf("%w: empty kernel", ErrIllegalInput)
	}
	if (mode == FilterStdev || mode == FilterStdevFast) && hits < 2 {
		return nil, fmt.Errorf("%w: standard deviation over a single-sample kernel", ErrDataNotFound)
	}
	return im.runFilter(kernel.width, kernel.height, nil, sel, mode, border)
}

// runFilter is the shared kernel loop. Exactly one of coef (matrix
// kernel, row-major) and sel (mask kernel) is non-nil.
func (im *Image) runFilter(kw, kh int, coef []float64, sel []bool, mode FilterMode, border BorderMode) (*Image, error) {
	w, h := im.buf.width, im.buf.height
	hx, hy := kw/2, kh/2

	ow, oh := w, h
	cropX, cropY := 0, 0
	if border == BorderCrop {
		ow, oh = w-2*hx, h-2*hy
		cropX, cropY = hx, hy
		if ow < 1 || oh < 1 {
			return nil, fmt.Errorf("%w: crop border leaves no output", ErrIllegalInput)
		}
	}
	out, err := NewImage(im.buf.typ, ow, oh)
	if err != nil {
		return nil, err
	}

	// Border pixels may reject into the mask from worker goroutines, so
	// materialize it before the parallel loop.
	outBpm := out.Bpm()
	parallelFor(oh, func(oy int) {
		buf := make([]float64, 0, kw*kh)
		cbuf := make([]float64, 0, kw*kh)
		y := oy + cropY
		for ox := 0; ox < ow; ox++ {
			x := ox + cropX
			interior := x >= hx && x < w-hx && y >= hy && y < h-hy
			if !interior && border != BorderFilter && border != BorderCrop {
				switch border {
				case BorderZero:
					out.buf.setAt(oy*ow+ox, 0)
				default: // BorderNop, BorderCopy
					out.buf.setAt(oy*ow+ox, im.buf.at(y*w+x))
					if im.rejectedAt(y*w + x) {
						outBpm.data[oy*ow+ox] = true
					}
				}
				continue
			}
			buf = buf[:0]
			cbuf = cbuf[:0]
			for ky := 0; ky < kh; ky++ {
				sy := y + ky - hy
				if sy < 0 || sy >= h {
					continue
				}
				for kx := 0; kx < kw; kx++ {
					sx := x + kx - hx
					if sx < 0 || sx >= w {
						continue
					}
					if sel != nil && !sel[ky*kw+kx] {
						continue
					}
					i := sy*w + sx
					if im.rejectedAt(i) {
						continue
					}
					buf = append(buf, im.buf.float64At(i))
					if coef != nil {
						cbuf = append(cbuf, coef[ky*kw+kx])
					}
				}
			}
			v, ok := applyFilterMode(mode, buf, cbuf)
			if !ok {
				outBpm.data[oy*ow+ox] = true
				continue
			}
			out.buf.setAt(oy*ow+ox, complex(v, 0))
		}
	})
	return out, nil
}

// applyFilterMode reduces the gathered window samples. ok is false when
// the mode has no defined answer for the sample count.
func applyFilterMode(mode FilterMode, vals, coef []float64) (float64, bool) {
	if len(vals) == 0 {
		return 0, false
	}
	switch mode {
	case FilterMedian:
		tmp := append([]float64(nil), vals...)
		return medianOf(tmp), true
	case FilterAverage, FilterAverageFast:
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)), true
	case FilterStdev, FilterStdevFast:
		if len(vals) < 2 {
			return 0, false
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
		return math.Sqrt(ss / float64(len(vals)-1)), true
	case FilterLinear, FilterLinearScale:
		sum, csum := 0.0, 0.0
		for i, v := range vals {
			sum += v * coef[i]
			csum += coef[i]
		}
		if mode == FilterLinearScale {
			if csum == 0 {
				return 0, false
			}
			return sum / csum, true
		}
		return sum, true
	case FilterMorpho, FilterMorphoScale:
		tmp := append([]float64(nil), vals...)
		sort.Float64s(tmp)
		sum, csum := 0.0, 0.0
		for i, v := range tmp {
			sum += v * coef[i]
			csum += coef[i]
		}
		if mode == FilterMorphoScale {
			if csum == 0 {
				return 0, false
			}
			return sum / csum, true
		}
		return sum, true
	}
	return 0, false
}
