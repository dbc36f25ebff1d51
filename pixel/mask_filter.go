package pixel

import "fmt"

// FilterMode selects the operation applied by Mask.Filter, Image.Filter
// and Image.FilterMask. Not every mode is meaningful for every kernel
// kind; unsupported combinations report ErrUnsupportedMode.
type FilterMode int

const (
	// FilterErosion shrinks set regions: a cell stays set only if every
	// structuring-element position over it is set.
	FilterErosion FilterMode = 1 + iota
	// FilterDilation grows set regions: a cell becomes set if any
	// structuring-element position over it is set.
	FilterDilation
	// FilterOpening is erosion followed by dilation.
	FilterOpening
	// FilterClosing is dilation followed by erosion.
	FilterClosing
	// FilterMedian replaces each pixel by the median of the kernel window.
	FilterMedian
	// FilterAverage replaces each pixel by the mean of the kernel window.
	FilterAverage
	// FilterAverageFast is FilterAverage using a running-sum scheme.
	FilterAverageFast
	// FilterStdev replaces each pixel by the standard deviation of the
	// kernel window.
	FilterStdev
	// FilterStdevFast is FilterStdev using a running-sum scheme.
	FilterStdevFast
	// FilterLinear convolves with the kernel coefficients.
	FilterLinear
	// FilterLinearScale is FilterLinear divided by the coefficient sum.
	FilterLinearScale
	// FilterMorpho combines the sorted window values linearly with the
	// kernel coefficients.
	FilterMorpho
	// FilterMorphoScale is FilterMorpho divided by the coefficient sum.
	FilterMorphoScale
)

// BorderMode selects how pixels whose kernel footprint exceeds the image
// edge are produced.
type BorderMode int

const (
	// BorderFilter applies the filter to the samples that do fall inside
	// the extent.
	BorderFilter BorderMode = iota
	// BorderZero sets border pixels to zero (false for masks).
	BorderZero
	// BorderCopy copies border pixels from the input.
	BorderCopy
	// BorderCrop removes the border band from the output.
	BorderCrop
	// BorderNop leaves border pixels unmodified in the output.
	BorderNop
)

// Filter applies binary morphology to the mask using the set cells of
// kernel as the structuring element. kernel extents must be odd so the
// element has a well-defined center. Supported modes are FilterErosion,
// FilterDilation, FilterOpening and FilterClosing with BorderNop,
// BorderZero or BorderCopy handling.
//
// Opening and closing are idempotent away from the border: applying
// either twice equals applying it once on the interior.
func (m *Mask) Filter(kernel *Mask, mode FilterMode, border BorderMode) (*Mask, error) {
	if kernel == nil || kernel.width%2 == 0 || kernel.height%2 == 0 {
		return nil, fmt.Errorf("%w: structuring element must have odd extents", ErrIllegalInput)
	}
	if kernel.width > 2*m.width+1 || kernel.height > 2*m.height+1 {
		return nil, fmt.Errorf("%w: structuring element %dx%d for %dx%d mask",
			ErrIncompatibleInput, kernel.width, kernel.height, m.width, m.height)
	}
	switch border {
	case BorderNop, BorderZero, BorderCopy:
	default:
		return nil, fmt.Errorf("%w: border mode %d for mask filter", ErrUnsupportedMode, int(border))
	}
	switch mode {
	case FilterErosion, FilterDilation:
		return m.morph(kernel, mode, border), nil
	case FilterOpening:
		first := m.morph(kernel, FilterErosion, border)
		return first.morph(kernel, FilterDilation, border), nil
	case FilterClosing:
		first := m.morph(kernel, FilterDilation, border)
		return first.morph(kernel, FilterErosion, border), nil
	default:
		return nil, fmt.Errorf("%w: filter mode %d for mask kernel", ErrUnsupportedMode, int(mode))
	}
}

// morph runs a single erosion or dilation pass.
func (m *Mask) morph(kernel *Mask, mode FilterMode, border BorderMode) *Mask {
	out, _ := NewMask(m.width, m.height)
	hx, hy := kernel.width/2, kernel.height/2

	for y := 0; y < m.height; y++ {
		for x := 0; x < m.width; x++ {
			interior := x >= hx && x < m.width-hx && y >= hy && y < m.height-hy
			if !interior {
				switch border {
				case BorderZero:
					out.data[y*m.width+x] = false
				default: // BorderNop, BorderCopy
					out.data[y*m.width+x] = m.data[y*m.width+x]
				}
				continue
			}
			out.data[y*m.width+x] = m.applyElement(kernel, y, x, hy, hx, mode)
		}
	}
	return out
}

func (m *Mask) applyElement(kernel *Mask, y, x, hy, hx int, mode FilterMode) bool {
	for ky := 0; ky < kernel.height; ky++ {
		for kx := 0; kx < kernel.width; kx++ {
			if !kernel.data[ky*kernel.width+kx] {
				continue
			}
			v := m.data[(y+ky-hy)*m.width+(x+kx-hx)]
			if mode == FilterDilation && v {
				return true
			}
			if mode == FilterErosion && !v {
				return false
			}
		}
	}
	return mode == FilterErosion
}
