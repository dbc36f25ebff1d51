package pixel

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// ClipCenter selects the center estimator of sigma-clipping.
type ClipCenter int

const (
	// ClipMean centers the clip interval on the mean of the kept samples.
	ClipMean ClipCenter = iota
	// ClipMedian centers the clip interval on their median.
	ClipMedian
)

// collectColumn gathers the valid samples at pixel index i across the
// list into buf, which is returned resliced.
func (l *ImageList) collectColumn(i int, buf []float64) []float64 {
	buf = buf[:0]
	for _, im := range l.images {
		if im.rejectedAt(i) {
			continue
		}
		buf = append(buf, im.buf.float64At(i))
	}
	return buf
}

// collapseWith reduces each pixel column of the uniform list with fn,
// which returns ok=false when the column has no defined result. The
// result image keeps the element pixel type; a pixel with no valid
// sample in any element is rejected. Complex element types have no
// ordering and are refused.
func (l *ImageList) collapseWith(fn func(vals []float64) (float64, bool)) (*Image, error) {
	if err := l.requireUniform(); err != nil {
		return nil, err
	}
	typ := l.images[0].buf.typ
	if typ.IsComplex() {
		return nil, fmt.Errorf("%w: collapsing %s images", ErrInvalidType, typ)
	}
	w, h := l.images[0].buf.width, l.images[0].buf.height
	out, _ := NewImage(typ, w, h)
	outBpm := out.Bpm()
	var (
		failedMu sync.Mutex
		failed   error
	)
	parallelFor(h, func(y int) {
		buf := make([]float64, 0, len(l.images))
		for x := 0; x < w; x++ {
			i := y*w + x
			vals := l.collectColumn(i, buf)
			if len(vals) == 0 {
				outBpm.data[i] = true
				continue
			}
			v, ok := fn(vals)
			if !ok {
				failedMu.Lock()
				if failed == nil {
					failed = fmt.Errorf("%w: collapse undefined at pixel (%d,%d)", ErrIllegalInput, x+1, y+1)
				}
				failedMu.Unlock()
				return
			}
			out.buf.setAt(i, complex(v, 0))
		}
	})
	if failed != nil {
		return nil, failed
	}
	return out, nil
}

// CollapseCreate reduces the list to the per-pixel mean of the valid
// samples. A pixel rejected in every element is rejected in the result.
func (l *ImageList) CollapseCreate() (*Image, error) {
	return l.collapseWith(func(vals []float64) (float64, bool) {
		sum := 0.0
		for _, v := range vals {
			sum += v
		}
		return sum / float64(len(vals)), true
	})
}

// CollapseMedianCreate reduces the list to the per-pixel median of the
// valid samples.
func (l *ImageList) CollapseMedianCreate() (*Image, error) {
	return l.collapseWith(func(vals []float64) (float64, bool) {
		return medianOf(vals), true
	})
}

// CollapseMinMaxCreate discards the nlow lowest and nhigh highest valid
// samples per pixel and means the remainder. The operation fails when
// any pixel has no sample left after discarding.
func (l *ImageList) CollapseMinMaxCreate(nlow, nhigh int) (*Image, error) {
	if nlow < 0 || nhigh < 0 {
		return nil, fmt.Errorf("%w: discard counts (%d,%d)", ErrIllegalInput, nlow, nhigh)
	}
	return l.collapseWith(func(vals []float64) (float64, bool) {
		if nlow+nhigh >= len(vals) {
			return 0, false
		}
		sort.Float64s(vals)
		kept := vals[nlow : len(vals)-nhigh]
		sum := 0.0
		for _, v := range kept {
			sum += v
		}
		return sum / float64(len(kept)), true
	})
}

// CollapseSigclipCreate reduces the list by iterative sigma-clipping:
// samples farther than low standard deviations below or high standard
// deviations above the center (mean or median, per center) are discarded
// and the clip repeats until it is stable. Clipping never reduces a
// pixel's sample count below ceil(fraction * n) of the n initially valid
// samples, even when the survivors are outliers. The clipped samples are
// then averaged.
//
// The second result is an int32 image recording, per pixel, how many
// samples were kept. Pixels with no valid sample are rejected in both
// results.
func (l *ImageList) CollapseSigclipCreate(low, high, fraction float64, center ClipCenter) (*Image, *Image, error) {
	if low <= 0 || high <= 0 {
		return nil, nil, fmt.Errorf("%w: clip widths (%g,%g)", ErrIllegalInput, low, high)
	}
	if fraction <= 0 || fraction > 1 {
		return nil, nil, fmt.Errorf("%w: keep fraction %g", ErrIllegalInput, fraction)
	}
	if center != ClipMean && center != ClipMedian {
		return nil, nil, fmt.Errorf("%w: clip center %d", ErrIllegalInput, int(center))
	}
	if err := l.requireUniform(); err != nil {
		return nil, nil, err
	}
	typ := l.images[0].buf.typ
	if typ.IsComplex() {
		return nil, nil, fmt.Errorf("%w: collapsing %s images", ErrInvalidType, typ)
	}
	w, h := l.images[0].buf.width, l.images[0].buf.height
	out, _ := NewImage(typ, w, h)
	contrib, _ := NewImage(TypeInt32, w, h)
	outBpm := out.Bpm()
	contribBpm := contrib.Bpm()
	parallelFor(h, func(y int) {
		buf := make([]float64, 0, len(l.images))
		for x := 0; x < w; x++ {
			i := y*w + x
			vals := l.collectColumn(i, buf)
			if len(vals) == 0 {
				outBpm.data[i] = true
				contribBpm.data[i] = true
				continue
			}
			kept := sigclip(vals, low, high, fraction, center)
			sum := 0.0
			for _, v := range kept {
				sum += v
			}
			out.buf.setAt(i, complex(sum/float64(len(kept)), 0))
			contrib.buf.i32[i] = int32(len(kept))
		}
	})
	return out, contrib, nil
}

// sigclip iterates the clip on vals (modified in place) and returns the
// surviving samples.
func sigclip(vals []float64, low, high, fraction float64, center ClipCenter) []float64 {
	minKeep := int(math.Ceil(fraction * float64(len(vals))))
	if minKeep < 1 {
		minKeep = 1
	}
	for len(vals) > minKeep {
		c := clipCenterOf(vals, center)
		sdev := stdevOf(vals, c)
		if sdev == 0 {
			break
		}
		lo, hi := c-low*sdev, c+high*sdev
		kept := vals[:0]
		for _, v := range vals {
			if v >= lo && v <= hi {
				kept = append(kept, v)
			}
		}
		if len(kept) == len(vals) {
			break
		}
		if len(kept) < minKeep {
			// The clip would overshoot the floor: keep the minKeep samples
			// closest to the center instead.
			sort.Slice(vals, func(a, b int) bool {
				return math.Abs(vals[a]-c) < math.Abs(vals[b]-c)
			})
			kept = vals[:minKeep]
			return kept
		}
		vals = kept
	}
	return vals
}

func clipCenterOf(vals []float64, center ClipCenter) float64 {
	if center == ClipMedian {
		tmp := append([]float64(nil), vals...)
		return medianOf(tmp)
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

// stdevOf is the deviation around an externally supplied center, with
// n-1 normalization. A single sample has deviation 0.
func stdevOf(vals []float64, center float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	ss := 0.0
	for _, v := range vals {
		d := v - center
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(vals)-1))
}
