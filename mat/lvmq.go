package mat

import (
	"fmt"
	"math"
	"sort"
)

// ModelFunc evaluates a model at sample position x for the given
// parameter vector.
type ModelFunc func(x float64, params []float64) float64

// GradFunc fills grad with the partial derivatives of the model with
// respect to each parameter, at sample position x. len(grad) equals the
// parameter count.
type GradFunc func(x float64, params []float64, grad []float64)

// LvmqResult is the outcome of a Levenberg-Marquardt fit.
type LvmqResult struct {
	// Params is the refined parameter vector. Fixed parameters keep
	// their input values.
	Params []float64

	// Covariance is the full parameter covariance matrix; rows and
	// columns of fixed parameters are zero.
	Covariance *Matrix

	// RedChisq is the weighted sum of squared residuals divided by the
	// degrees of freedom.
	RedChisq float64

	// Iterations is the number of accepted refinement steps.
	Iterations int
}

const (
	lvmqMaxIter    = 500
	lvmqLambdaInit = 1e-3
	lvmqLambdaUp   = 10.0
	lvmqLambdaDown = 0.1
	lvmqTolerance  = 1e-10
	// lvmqPatience is how many successive negligible improvements are
	// required before the fit is declared converged.
	lvmqPatience = 3
)

// Lvmq refines the free entries of params to minimize the weighted sum
// of squared residuals of model against the samples (x[i], y[i]), using
// the Levenberg-Marquardt algorithm. free marks which parameters may
// move; the others are held at their input values. sigma, when non-nil,
// gives per-sample standard deviations used as weights.
//
// A singular normal-equations step and failure to converge within the
// iteration budget both report ErrSingularMatrix.
func Lvmq(model ModelFunc, grad GradFunc, params []float64, free []bool, x, y, sigma []float64) (*LvmqResult, error) {
	npar := len(params)
	if npar == 0 || len(free) != npar {
		return nil, fmt.Errorf("%w: %d parameters with %d free flags", ErrIllegalInput, npar, len(free))
	}
	if len(x) != len(y) || (sigma != nil && len(sigma) != len(x)) {
		return nil, fmt.Errorf("%w: %d positions, %d values", ErrIllegalInput, len(x), len(y))
	}
	if sigma != nil {
		for _, s := range sigma {
			if s <= 0 {
				return nil, fmt.Errorf("%w: non-positive sample sigma %g", ErrIllegalInput, s)
			}
		}
	}
	freeIdx := make([]int, 0, npar)
	for i, f := range free {
		if f {
			freeIdx = append(freeIdx, i)
		}
	}
	nfree := len(freeIdx)
	if nfree == 0 {
		return nil, fmt.Errorf("%w: no free parameter to fit", ErrIllegalInput)
	}
	if len(x) < nfree {
		return nil, fmt.Errorf("%w: %d samples for %d free parameters", ErrDataNotFound, len(x), nfree)
	}

	p := append([]float64(nil), params...)
	chisq := lvmqChisq(model, p, x, y, sigma)
	lambda := lvmqLambdaInit
	stall := 0
	iters := 0

	g := make([]float64, npar)
	for iter := 0; iter < lvmqMaxIter; iter++ {
		alpha, beta := lvmqNormal(model, grad, p, freeIdx, x, y, sigma, g)

		// Damp the diagonal and solve for the step.
		damped := alpha.Duplicate()
		for i := 0; i < nfree; i++ {
			damped.data[i*nfree+i] *= 1 + lambda
		}
		step, err := damped.Solve(beta)
		if err != nil {
			return nil, err
		}

		trial := append([]float64(nil), p...)
		for i, pi := range freeIdx {
			trial[pi] += step.data[i]
		}
		trialChisq := lvmqChisq(model, trial, x, y, sigma)

		if math.IsNaN(trialChisq) || trialChisq >= chisq {
			lambda *= lvmqLambdaUp
			if lambda > 1e12 {
				break
			}
			continue
		}
		improvement := chisq - trialChisq
		p, chisq = trial, trialChisq
		lambda *= lvmqLambdaDown
		iters++
		if improvement <= lvmqTolerance*(chisq+lvmqTolerance) {
			stall++
			if stall >= lvmqPatience {
				return lvmqFinish(model, grad, p, freeIdx, x, y, sigma, chisq, iters)
			}
		} else {
			stall = 0
		}
	}
	if lambda > 1e12 {
		// The damping grew until no step improves: the parameters are at
		// a minimum to working precision.
		return lvmqFinish(model, grad, p, freeIdx, x, y, sigma, chisq, iters)
	}
	return nil, fmt.Errorf("%w: fit did not converge in %d iterations", ErrSingularMatrix, lvmqMaxIter)
}

// lvmqNormal builds the normal-equations matrix and gradient vector for
// the free parameters.
func lvmqNormal(model ModelFunc, grad GradFunc, p []float64, freeIdx []int, x, y, sigma []float64, g []float64) (*Matrix, *Matrix) {
	nfree := len(freeIdx)
	alpha, _ := NewMatrix(nfree, nfree)
	beta, _ := NewMatrix(nfree, 1)
	for s := range x {
		w := 1.0
		if sigma != nil {
			w = 1 / (sigma[s] * sigma[s])
		}
		res := y[s] - model(x[s], p)
		grad(x[s], p, g)
		for i, pi := range freeIdx {
			beta.data[i] += w * res * g[pi]
			for j, pj := range freeIdx {
				alpha.data[i*nfree+j] += w * g[pi] * g[pj]
			}
		}
	}
	return alpha, beta
}

func lvmqChisq(model ModelFunc, p []float64, x, y, sigma []float64) float64 {
	chisq := 0.0
	for i := range x {
		res := y[i] - model(x[i], p)
		if sigma != nil {
			res /= sigma[i]
		}
		chisq += res * res
	}
	return chisq
}

// lvmqFinish computes the covariance at the optimum (undamped normal
// matrix inverse) and assembles the result.
func lvmqFinish(model ModelFunc, grad GradFunc, p []float64, freeIdx []int, x, y, sigma []float64, chisq float64, iters int) (*LvmqResult, error) {
	npar := len(p)
	g := make([]float64, npar)
	alpha, _ := lvmqNormal(model, grad, p, freeIdx, x, y, sigma, g)
	inv, err := alpha.InvertCreate()
	if err != nil {
		return nil, err
	}
	cov, _ := NewMatrix(npar, npar)
	for i, pi := range freeIdx {
		for j, pj := range freeIdx {
			cov.data[pi*npar+pj] = inv.data[i*len(freeIdx)+j]
		}
	}
	dof := len(x) - len(freeIdx)
	red := chisq
	if dof > 0 {
		red = chisq / float64(dof)
	}
	return &LvmqResult{Params: p, Covariance: cov, RedChisq: red, Iterations: iters}, nil
}

// FitMode is a bit combination selecting which Gaussian parameters are
// free during fitting. Parameters left out of the combination are held
// at their supplied or guessed values.
type FitMode uint

const (
	// FitCentroid frees the center position x0.
	FitCentroid FitMode = 1 << iota
	// FitStdev frees the width sigma.
	FitStdev
	// FitArea frees the integrated area.
	FitArea
	// FitOffset frees the constant background offset.
	FitOffset

	// FitAll frees all four parameters.
	FitAll = FitCentroid | FitStdev | FitArea | FitOffset
)

// GaussianFit is the result of FitGaussian. The covariance matrix is
// 4x4 over the parameter order (x0, sigma, area, offset), with zero rows
// and columns for fixed parameters.
type GaussianFit struct {
	X0         float64
	Sigma      float64
	Area       float64
	Offset     float64
	Covariance *Matrix
	RedChisq   float64
}

// FitGaussian fits offset + area/(sqrt(2 pi) sigma) * exp(-(x-x0)^2 /
// (2 sigma^2)) to the samples (x[i], y[i]) by Levenberg-Marquardt.
// ysigma, when non-nil, gives per-sample standard deviations. mode
// selects the free parameters; x0 and sigma, when non-nil, supply
// starting values (or the held values when the parameter is fixed),
// otherwise robust quartile-based guesses are derived from the data.
func FitGaussian(x, y, ysigma *Vector, mode FitMode, x0, sigma *float64) (*GaussianFit, error) {
	if mode&FitAll == 0 {
		return nil, fmt.Errorf("%w: no free parameter in fit mode %#x", ErrIllegalInput, uint(mode))
	}
	if mode&^FitAll != 0 {
		return nil, fmt.Errorf("%w: fit mode %#x", ErrUnsupportedMode, uint(mode))
	}
	if x.Size() != y.Size() {
		return nil, fmt.Errorf("%w: %d positions, %d values", ErrIllegalInput, x.Size(), y.Size())
	}
	if ysigma != nil && ysigma.Size() != x.Size() {
		return nil, fmt.Errorf("%w: %d sigmas for %d samples", ErrIllegalInput, ysigma.Size(), x.Size())
	}

	gx0, gsigma, garea, goffset := gaussianGuess(x.data, y.data)
	if x0 != nil {
		gx0 = *x0
	}
	if sigma != nil {
		gsigma = *sigma
	}
	params := []float64{gx0, gsigma, garea, goffset}
	free := []bool{
		mode&FitCentroid != 0,
		mode&FitStdev != 0,
		mode&FitArea != 0,
		mode&FitOffset != 0,
	}
	var sig []float64
	if ysigma != nil {
		sig = ysigma.data
	}
	res, err := Lvmq(gaussianModel, gaussianGrad, params, free, x.data, y.data, sig)
	if err != nil {
		return nil, err
	}
	return &GaussianFit{
		X0:         res.Params[0],
		Sigma:      math.Abs(res.Params[1]),
		Area:       res.Params[2],
		Offset:     res.Params[3],
		Covariance: res.Covariance,
		RedChisq:   res.RedChisq,
	}, nil
}

func gaussianModel(x float64, p []float64) float64 {
	s := math.Abs(p[1])
	if s == 0 {
		s = math.SmallestNonzeroFloat64
	}
	d := (x - p[0]) / s
	return p[3] + p[2]/(s*math.Sqrt(2*math.Pi))*math.Exp(-d*d/2)
}

func gaussianGrad(x float64, p []float64, g []float64) {
	s := math.Abs(p[1])
	if s == 0 {
		s = math.SmallestNonzeroFloat64
	}
	d := (x - p[0]) / s
	e := math.Exp(-d*d/2) / (s * math.Sqrt(2*math.Pi))
	g[0] = p[2] * e * d / s
	g[1] = p[2] * e * (d*d - 1) / s
	g[2] = e
	g[3] = 1
}

// gaussianGuess derives robust starting values: the offset is the first
// quartile of the values, the centroid and width come from the moments
// of the offset-subtracted positive part, and the area from its sum
// scaled by the median sample spacing.
func gaussianGuess(x, y []float64) (x0, sigma, area, offset float64) {
	n := len(x)
	sortedY := append([]float64(nil), y...)
	sort.Float64s(sortedY)
	offset = sortedY[n/4]

	var sw, swx, swxx float64
	for i := range x {
		w := y[i] - offset
		if w <= 0 {
			continue
		}
		sw += w
		swx += w * x[i]
		swxx += w * x[i] * x[i]
	}
	if sw > 0 {
		x0 = swx / sw
		variance := swxx/sw - x0*x0
		if variance > 0 {
			sigma = math.Sqrt(variance)
		}
	} else {
		// Flat data: center on the sampled range.
		x0 = (x[0] + x[n-1]) / 2
	}
	spacing := medianSpacing(x)
	if sigma == 0 {
		sigma = spacing
		if sigma == 0 {
			sigma = 1
		}
	}
	area = sw * spacing
	if area == 0 {
		area = 1
	}
	return x0, sigma, area, offset
}

func medianSpacing(x []float64) float64 {
	if len(x) < 2 {
		return 1
	}
	sorted := append([]float64(nil), x...)
	sort.Float64s(sorted)
	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i]-sorted[i-1])
	}
	sort.Float64s(gaps)
	m := len(gaps)
	if m%2 == 1 {
		return gaps[m/2]
	}
	return (gaps[m/2-1] + gaps[m/2]) / 2
}
