package pixel

import "fmt"

// ExtractCreate returns a new image covering the inclusive window. The
// mask is carried over for the extracted region.
func (im *Image) ExtractCreate(win Window) (*Image, error) {
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return nil, err
	}
	out, _ := NewImage(im.buf.typ, x1-x0+1, y1-y0+1)
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			out.buf.setAt((y-y0)*out.buf.width+(x-x0), im.buf.at(y*im.buf.width+x))
		}
	}
	if im.bpm != nil {
		out.bpm, err = im.bpm.Extract(win)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// Shift translates the image by (dy, dx) in place. Pixels shifted in from
// outside the extent carry no data and are rejected. A shift at least as
// large as the extent in either axis is refused.
func (im *Image) Shift(dy, dx int) error {
	w, h := im.buf.width, im.buf.height
	if dx <= -w || dx >= w || dy <= -h || dy >= h {
		return fmt.Errorf("%w: shift (%d,%d) of %dx%d image", ErrIllegalInput, dy, dx, w, h)
	}
	out, _ := NewBuffer(im.buf.typ, w, h)
	bpm := im.Bpm()
	newBpm, _ := NewMask(w, h)
	for y := 0; y < h; y++ {
		sy := y - dy
		for x := 0; x < w; x++ {
			sx := x - dx
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				newBpm.data[y*w+x] = true
				continue
			}
			out.setAt(y*w+x, im.buf.at(sy*w+sx))
			newBpm.data[y*w+x] = bpm.data[sy*w+sx]
		}
	}
	im.buf = out
	im.bpm = newBpm
	return nil
}

// Turn rotates the image by n quarter turns counter-clockwise for
// positive n, in place. The extent swaps for odd turn counts and the
// mask follows the pixel transform.
func (im *Image) Turn(n int) {
	n = ((n % 4) + 4) % 4
	for ; n > 0; n-- {
		w, h := im.buf.width, im.buf.height
		out, _ := NewBuffer(im.buf.typ, h, w)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				out.setAt((w-1-x)*h+y, im.buf.at(y*w+x))
			}
		}
		im.buf = out
		if im.bpm != nil {
			im.bpm.Rotate(1)
		}
	}
}

// RebinCreate block-averages the image into bins of ystep x xstep pixels
// starting at (ystart, xstart). Each output pixel is the mean of the
// valid pixels in its bin, stored in the image's own type; a bin with no
// valid pixel yields a rejected output pixel.
func (im *Image) RebinCreate(ystart, xstart, ystep, xstep int) (*Image, error) {
	w, h := im.buf.width, im.buf.height
	if ystep < 1 || xstep < 1 || ystart < 0 || xstart < 0 {
		return nil, fmt.Errorf("%w: rebin start (%d,%d) step (%d,%d)",
			ErrIllegalInput, ystart, xstart, ystep, xstep)
	}
	if xstart >= w || ystart >= h {
		return nil, fmt.Errorf("%w: rebin start (%d,%d) of %dx%d image",
			ErrAccessOutOfRange, ystart, xstart, w, h)
	}
	ow, oh := (w-xstart)/xstep, (h-ystart)/ystep
	if ow < 1 || oh < 1 {
		return nil, fmt.Errorf("%w: rebin bins larger than image", ErrIllegalInput)
	}
	out, _ := NewImage(im.buf.typ, ow, oh)
	for by := 0; by < oh; by++ {
		for bx := 0; bx < ow; bx++ {
			sum := complex(0, 0)
			count := 0
			for y := ystart + by*ystep; y < ystart+(by+1)*ystep; y++ {
				for x := xstart + bx*xstep; x < xstart+(bx+1)*xstep; x++ {
					i := y*w + x
					if im.rejectedAt(i) {
						continue
					}
					sum += im.buf.at(i)
					count++
				}
			}
			if count == 0 {
				out.Bpm().data[by*ow+bx] = true
				continue
			}
			out.buf.setAt(by*ow+bx, sum/complex(float64(count), 0))
		}
	}
	return out, nil
}

// ExtractSubsampleCreate returns a new image keeping every ystep-th row
// and xstep-th column, starting at row 0 and column 0. Validity is
// sampled along with the values.
func (im *Image) ExtractSubsampleCreate(ystep, xstep int) (*Image, error) {
	if ystep < 1 || xstep < 1 {
		return nil, fmt.Errorf("%w: subsample steps (%d,%d)", ErrIllegalInput, ystep, xstep)
	}
	w := im.buf.width
	ow, oh := (w+xstep-1)/xstep, (im.buf.height+ystep-1)/ystep
	out, _ := NewImage(im.buf.typ, ow, oh)
	for y := 0; y < oh; y++ {
		for x := 0; x < ow; x++ {
			i := y*ystep*w + x*xstep
			out.buf.setAt(y*ow+x, im.buf.at(i))
			if im.rejectedAt(i) {
				out.Bpm().data[y*ow+x] = true
			}
		}
	}
	return out, nil
}
