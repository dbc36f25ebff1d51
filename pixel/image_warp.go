package pixel

import (
	"fmt"
	"math"

	"github.com/mrjoshuak/go-pixelcore/mat"
)

// kernelTabsPerPix is the tabulation resolution of reconstruction
// kernels: number of profile samples per pixel of support.
const kernelTabsPerPix = 1000

// Kernel is a tabulated 1D reconstruction profile used for separable
// resampling. The profile is sampled at kernelTabsPerPix samples per
// pixel over [0, radius]; lookups beyond the radius return 0.
type Kernel struct {
	radius  float64
	profile []float64
}

// NewKernel tabulates the given profile with the given support radius,
// in pixels. The radius must be positive.
func NewKernel(profile mat.KernelProfile, radius float64) (*Kernel, error) {
	if radius <= 0 {
		return nil, fmt.Errorf("%w: kernel radius %g", ErrIllegalInput, radius)
	}
	n := int(radius*kernelTabsPerPix) + 1
	v, err := mat.NewVector(n)
	if err != nil {
		return nil, err
	}
	if err := v.FillKernelProfile(profile, radius); err != nil {
		return nil, err
	}
	return &Kernel{radius: radius, profile: append([]float64(nil), v.Data()...)}, nil
}

// Radius returns the kernel's support radius in pixels.
func (k *Kernel) Radius() float64 { return k.radius }

// value returns the profile at distance d, by nearest tabulated sample.
func (k *Kernel) value(d float64) float64 {
	if d < 0 {
		d = -d
	}
	i := int(d*kernelTabsPerPix + 0.5)
	if i >= len(k.profile) {
		return 0
	}
	return k.profile[i]
}

// GetInterpolated reconstructs the image value at the fractional pixel
// position (x, y), in the same 0-based coordinates as Get, using the
// separable kernels xk along x and yk along y.
//
// The confidence result is the fraction of the kernel footprint's weight
// that fell on valid pixels: 1.0 when every contributing sample was
// inside the image and not rejected, 0.0 when nothing contributed (the
// value is then 0 and the position should be treated as having no data).
func (im *Image) GetInterpolated(x, y float64, xk, yk *Kernel) (value, confidence float64, err error) {
	if im.buf.typ.IsComplex() {
		return 0, 0, fmt.Errorf("%w: interpolating a %s image", ErrInvalidType, im.buf.typ)
	}
	if xk == nil || yk == nil {
		return 0, 0, fmt.Errorf("%w: nil reconstruction kernel", ErrIllegalInput)
	}
	w, h := im.buf.width, im.buf.height

	ix0, ix1 := int(math.Ceil(x-xk.radius)), int(math.Floor(x+xk.radius))
	iy0, iy1 := int(math.Ceil(y-yk.radius)), int(math.Floor(y+yk.radius))
	if ix1 < 0 || ix0 >= w || iy1 < 0 || iy0 >= h {
		return 0, 0, nil
	}

	var sum, wsum, valid, total float64
	for sy := iy0; sy <= iy1; sy++ {
		wy := yk.value(y - float64(sy))
		for sx := ix0; sx <= ix1; sx++ {
			wxy := xk.value(x-float64(sx)) * wy
			total += math.Abs(wxy)
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				continue
			}
			i := sy*w + sx
			if im.rejectedAt(i) {
				continue
			}
			valid += math.Abs(wxy)
			sum += wxy * im.buf.float64At(i)
			wsum += wxy
		}
	}
	if wsum == 0 || total == 0 {
		return 0, 0, nil
	}
	return sum / wsum, valid / total, nil
}

// WarpCreate resamples the image through the coordinate maps xmap and
// ymap: output pixel (x, y) takes the value interpolated at input
// position (xmap(x,y), ymap(x,y)). The maps must share an extent, which
// becomes the output extent. Output pixels whose source position carries
// no valid data, or whose map pixel is rejected, are rejected.
func (im *Image) WarpCreate(xmap, ymap *Image, xk, yk *Kernel) (*Image, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: warping a %s image", ErrInvalidType, im.buf.typ)
	}
	if xmap.buf.typ.IsComplex() || ymap.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: complex coordinate map", ErrInvalidType)
	}
	if xmap.buf.width != ymap.buf.width || xmap.buf.height != ymap.buf.height {
		return nil, fmt.Errorf("%w: coordinate maps %dx%d vs %dx%d", ErrIncompatibleInput,
			xmap.buf.width, xmap.buf.height, ymap.buf.width, ymap.buf.height)
	}
	if xk == nil || yk == nil {
		return nil, fmt.Errorf("%w: nil reconstruction kernel", ErrIllegalInput)
	}
	ow, oh := xmap.buf.width, xmap.buf.height
	out, err := NewImage(im.buf.typ, ow, oh)
	if err != nil {
		return nil, err
	}
	outBpm := out.Bpm()
	parallelFor(oh, func(y int) {
		for x := 0; x < ow; x++ {
			i := y*ow + x
			if xmap.rejectedAt(i) || ymap.rejectedAt(i) {
				outBpm.data[i] = true
				continue
			}
			v, conf, _ := im.GetInterpolated(xmap.buf.float64At(i), ymap.buf.float64At(i), xk, yk)
			if conf == 0 {
				outBpm.data[i] = true
				continue
			}
			out.buf.setAt(i, complex(v, 0))
		}
	})
	return out, nil
}

// WarpPolynomialCreate resamples the image through a polynomial
// coordinate transform into a width x height output: output pixel (x, y)
// takes the value interpolated at input position (px(x,y), py(x,y)).
// Output pixels whose source position carries no valid data are rejected.
func (im *Image) WarpPolynomialCreate(width, height int, px, py *mat.Polynomial, xk, yk *Kernel) (*Image, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: warping a %s image", ErrInvalidType, im.buf.typ)
	}
	if px == nil || py == nil {
		return nil, fmt.Errorf("%w: nil coordinate polynomial", ErrIllegalInput)
	}
	if xk == nil || yk == nil {
		return nil, fmt.Errorf("%w: nil reconstruction kernel", ErrIllegalInput)
	}
	out, err := NewImage(im.buf.typ, width, height)
	if err != nil {
		return nil, err
	}
	outBpm := out.Bpm()
	parallelFor(height, func(y int) {
		for x := 0; x < width; x++ {
			sx, _, _ := px.Eval2D(float64(x), float64(y))
			sy, _, _ := py.Eval2D(float64(x), float64(y))
			v, conf, _ := im.GetInterpolated(sx, sy, xk, yk)
			i := y*width + x
			if conf == 0 {
				outBpm.data[i] = true
				continue
			}
			out.buf.setAt(i, complex(v, 0))
		}
	})
	return out, nil
}

// CreateJacobian builds the partial derivatives of the coordinate
// mapping (xmap, ymap) as a pair of complex planes: plane 0 holds
// dxin/dxout + i*dxin/dyout, plane 1 holds dyin/dxout + i*dyin/dyout.
// Derivatives are central differences, one-sided at the edges. The pair
// fully describes the local transform, so flux-conserving consumers can
// form the Jacobian determinant per pixel.
func CreateJacobian(xmap, ymap *Image) (*ImageList, error) {
	if xmap.buf.typ.IsComplex() || ymap.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: complex coordinate map", ErrInvalidType)
	}
	if xmap.buf.width != ymap.buf.width || xmap.buf.height != ymap.buf.height {
		return nil, fmt.Errorf("%w: coordinate maps %dx%d vs %dx%d", ErrIncompatibleInput,
			xmap.buf.width, xmap.buf.height, ymap.buf.width, ymap.buf.height)
	}
	w, h := xmap.buf.width, xmap.buf.height
	if w < 2 || h < 2 {
		return nil, fmt.Errorf("%w: %dx%d map too small for derivatives", ErrIllegalInput, w, h)
	}
	planes := NewImageList()
	for _, m := range []*Image{xmap, ymap} {
		plane, _ := NewImage(TypeComplex128, w, h)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				du := diffAlongX(m, x, y)
				dv := diffAlongY(m, x, y)
				plane.buf.c128[y*w+x] = complex(du, dv)
			}
		}
		planes.Append(plane)
	}
	return planes, nil
}

// CreateJacobianPolynomial builds the same 2-plane derivative pair as
// CreateJacobian for a polynomial transform over a width x height output
// grid, using the analytic gradients of the polynomials.
func CreateJacobianPolynomial(width, height int, px, py *mat.Polynomial) (*ImageList, error) {
	if px == nil || py == nil {
		return nil, fmt.Errorf("%w: nil coordinate polynomial", ErrIllegalInput)
	}
	planes := NewImageList()
	for _, p := range []*mat.Polynomial{px, py} {
		plane, err := NewImage(TypeComplex128, width, height)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				_, du, dv := p.Eval2D(float64(x), float64(y))
				plane.buf.c128[y*width+x] = complex(du, dv)
			}
		}
		planes.Append(plane)
	}
	return planes, nil
}

func diffAlongX(m *Image, x, y int) float64 {
	w := m.buf.width
	switch {
	case x == 0:
		return m.buf.float64At(y*w+1) - m.buf.float64At(y*w)
	case x == w-1:
		return m.buf.float64At(y*w+x) - m.buf.float64At(y*w+x-1)
	default:
		return (m.buf.float64At(y*w+x+1) - m.buf.float64At(y*w+x-1)) / 2
	}
}

func diffAlongY(m *Image, x, y int) float64 {
	w, h := m.buf.width, m.buf.height
	switch {
	case y == 0:
		return m.buf.float64At(w+x) - m.buf.float64At(x)
	case y == h-1:
		return m.buf.float64At(y*w+x) - m.buf.float64At((y-1)*w+x)
	default:
		return (m.buf.float64At((y+1)*w+x) - m.buf.float64At((y-1)*w+x)) / 2
	}
}
