package pixel

import (
	"fmt"
	"math"
	"sort"

	"github.com/mrjoshuak/go-pixelcore/mat"
)

// Gaussian2DFit is the result of FitGaussian2D. Coordinates are 1-based,
// the same convention as Centroid and the dump format. The covariance
// matrix is 7x7 over the parameter order (background, flux, rho, x0, y0,
// sigmaX, sigmaY).
type Gaussian2DFit struct {
	X0         float64
	Y0         float64
	SigmaX     float64
	SigmaY     float64
	Rho        float64
	Flux       float64
	Background float64
	Covariance *mat.Matrix
	RedChisq   float64
}

// FitGaussian2D fits an elliptical two-dimensional Gaussian plus a
// constant background to the valid pixels inside the window:
//
//	z = B + F/(2 pi sx sy sqrt(1-rho^2)) * exp(-(u^2 - 2 rho u v + v^2)
//	    / (2 (1-rho^2)))
//
// with u = (x-x0)/sx and v = (y-y0)/sy. All seven parameters are free;
// starting values are derived from the image moments. The fit shares the
// Levenberg-Marquardt engine of the one-dimensional Gaussian fit.
func (im *Image) FitGaussian2D(win Window) (*Gaussian2DFit, error) {
	if im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: gaussian fit on %s image", ErrInvalidType, im.buf.typ)
	}
	wx0, wy0, wx1, wy1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return nil, err
	}
	var xs, ys, zs []float64
	for y := wy0; y <= wy1; y++ {
		for x := wx0; x <= wx1; x++ {
			i := y*im.buf.width + x
			if im.rejectedAt(i) {
				continue
			}
			xs = append(xs, float64(x))
			ys = append(ys, float64(y))
			zs = append(zs, im.buf.float64At(i))
		}
	}
	if len(zs) == 0 {
		return nil, fmt.Errorf("%w: no valid pixel in window", ErrDataNotFound)
	}

	params := gaussian2DGuess(xs, ys, zs, wx0, wy0, wx1, wy1)
	free := []bool{true, true, true, true, true, true, true}

	// The sample position handed to the engine is the sample index; the
	// model looks the pixel coordinates up through the closures.
	idx := make([]float64, len(zs))
	for i := range idx {
		idx[i] = float64(i)
	}
	model := func(s float64, p []float64) float64 {
		i := int(s)
		return gaussian2DValue(xs[i], ys[i], p)
	}
	grad := func(s float64, p []float64, g []float64) {
		i := int(s)
		gaussian2DGrad(xs[i], ys[i], p, g)
	}

	res, err := mat.Lvmq(model, grad, params, free, idx, zs, nil)
	if err != nil {
		return nil, err
	}
	p := res.Params
	return &Gaussian2DFit{
		Background: p[0],
		Flux:       p[1],
		Rho:        clampRho(p[2]),
		X0:         p[3] + 1,
		Y0:         p[4] + 1,
		SigmaX:     math.Abs(p[5]),
		SigmaY:     math.Abs(p[6]),
		Covariance: res.Covariance,
		RedChisq:   res.RedChisq,
	}, nil
}

func clampRho(rho float64) float64 {
	const limit = 0.99999
	if rho > limit {
		return limit
	}
	if rho < -limit {
		return -limit
	}
	return rho
}

func gaussian2DValue(x, y float64, p []float64) float64 {
	b, f := p[0], p[1]
	rho := clampRho(p[2])
	sx, sy := nonZeroSigma(p[5]), nonZeroSigma(p[6])
	q := 1 - rho*rho
	u := (x - p[3]) / sx
	v := (y - p[4]) / sy
	e := math.Exp(-(u*u - 2*rho*u*v + v*v) / (2 * q))
	return b + f/(2*math.Pi*sx*sy*math.Sqrt(q))*e
}

func gaussian2DGrad(x, y float64, p []float64, g []float64) {
	rho := clampRho(p[2])
	sx, sy := nonZeroSigma(p[5]), nonZeroSigma(p[6])
	q := 1 - rho*rho
	u := (x - p[3]) / sx
	v := (y - p[4]) / sy
	pq := u*u - 2*rho*u*v + v*v
	e := math.Exp(-pq / (2 * q))
	norm := 1 / (2 * math.Pi * sx * sy * math.Sqrt(q))
	ne := p[1] * norm * e

	g[0] = 1
	g[1] = norm * e
	g[2] = ne * (rho/q + u*v/q - rho*pq/(q*q))
	g[3] = ne * (u - rho*v) / (q * sx)
	g[4] = ne * (v - rho*u) / (q * sy)
	g[5] = ne / sx * (u*(u-rho*v)/q - 1)
	g[6] = ne / sy * (v*(v-rho*u)/q - 1)
}

func nonZeroSigma(s float64) float64 {
	s = math.Abs(s)
	if s == 0 {
		return math.SmallestNonzeroFloat64
	}
	return s
}

// gaussian2DGuess derives starting values from the sample moments: the
// background is the first quartile, the centroid and widths come from
// the moments of the background-subtracted positive part, and the flux
// from its sum.
func gaussian2DGuess(xs, ys, zs []float64, wx0, wy0, wx1, wy1 int) []float64 {
	sorted := append([]float64(nil), zs...)
	sort.Float64s(sorted)
	background := sorted[len(sorted)/4]

	var sw, swx, swy, swxx, swyy float64
	for i := range zs {
		w := zs[i] - background
		if w <= 0 {
			continue
		}
		sw += w
		swx += w * xs[i]
		swy += w * ys[i]
		swxx += w * xs[i] * xs[i]
		swyy += w * ys[i] * ys[i]
	}
	x0 := float64(wx0+wx1) / 2
	y0 := float64(wy0+wy1) / 2
	sigmaX := math.Max(float64(wx1-wx0)/4, 1)
	sigmaY := math.Max(float64(wy1-wy0)/4, 1)
	flux := 1.0
	if sw > 0 {
		x0 = swx / sw
		y0 = swy / sw
		if vx := swxx/sw - x0*x0; vx > 0 {
			sigmaX = math.Sqrt(vx)
		}
		if vy := swyy/sw - y0*y0; vy > 0 {
			sigmaY = math.Sqrt(vy)
		}
		flux = sw
	}
	return []float64{background, flux, 0, x0, y0, sigmaX, sigmaY}
}
