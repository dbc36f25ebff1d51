package pixel

import "fmt"

// ImageList is an ordered sequence of images, the unit of stack
// processing. Elements may differ in extent and type; the collapse and
// axis-swap operations require a uniform list and say so.
type ImageList struct {
	images []*Image
}

// NewImageList creates an empty list.
func NewImageList() *ImageList {
	return &ImageList{}
}

// Len returns the number of images in the list.
func (l *ImageList) Len() int { return len(l.images) }

// Append adds an image at the end of the list.
func (l *ImageList) Append(im *Image) {
	l.images = append(l.images, im)
}

// Insert places an image at the given position, shifting later elements
// up. Inserting at Len() appends.
func (l *ImageList) Insert(pos int, im *Image) error {
	if pos < 0 || pos > len(l.images) {
		return fmt.Errorf("%w: insert at %d in list of %d", ErrAccessOutOfRange, pos, len(l.images))
	}
	l.images = append(l.images, nil)
	copy(l.images[pos+1:], l.images[pos:])
	l.images[pos] = im
	return nil
}

// Delete removes the image at the given position, shifting later
// elements down.
func (l *ImageList) Delete(pos int) error {
	if pos < 0 || pos >= len(l.images) {
		return fmt.Errorf("%w: delete at %d in list of %d", ErrAccessOutOfRange, pos, len(l.images))
	}
	l.images = append(l.images[:pos], l.images[pos+1:]...)
	return nil
}

// Get returns the image at the given position.
func (l *ImageList) Get(pos int) (*Image, error) {
	if pos < 0 || pos >= len(l.images) {
		return nil, fmt.Errorf("%w: element %d of list of %d", ErrAccessOutOfRange, pos, len(l.images))
	}
	return l.images[pos], nil
}

// Set replaces the image at the given position.
func (l *ImageList) Set(pos int, im *Image) error {
	if pos < 0 || pos >= len(l.images) {
		return fmt.Errorf("%w: element %d of list of %d", ErrAccessOutOfRange, pos, len(l.images))
	}
	l.images[pos] = im
	return nil
}

// IsUniform reports whether every element shares the same extent and
// pixel type. An empty list has no well defined uniformity and is an
// error rather than a false.
func (l *ImageList) IsUniform() (bool, error) {
	if len(l.images) == 0 {
		return false, fmt.Errorf("%w: uniformity of an empty list", ErrIllegalInput)
	}
	first := l.images[0]
	for _, im := range l.images[1:] {
		if im.buf.typ != first.buf.typ ||
			im.buf.width != first.buf.width ||
			im.buf.height != first.buf.height {
			return false, nil
		}
	}
	return true, nil
}

func (l *ImageList) requireUniform() error {
	uniform, err := l.IsUniform()
	if err != nil {
		return err
	}
	if !uniform {
		return fmt.Errorf("%w: list elements differ in extent or type", ErrIncompatibleInput)
	}
	return nil
}

// AddImage adds other into every element of the list.
func (l *ImageList) AddImage(other *Image) error {
	return l.eachImage(other, (*Image).Add)
}

// SubtractImage subtracts other from every element of the list.
func (l *ImageList) SubtractImage(other *Image) error {
	return l.eachImage(other, (*Image).Subtract)
}

// MultiplyImage multiplies every element of the list by other.
func (l *ImageList) MultiplyImage(other *Image) error {
	return l.eachImage(other, (*Image).Multiply)
}

// DivideImage divides every element of the list by other.
func (l *ImageList) DivideImage(other *Image) error {
	return l.eachImage(other, (*Image).Divide)
}

func (l *ImageList) eachImage(other *Image, op func(*Image, *Image) error) error {
	for _, im := range l.images {
		if err := op(im, other); err != nil {
			return err
		}
	}
	return nil
}

// AddScalar adds v to every element of the list.
func (l *ImageList) AddScalar(v complex128) error {
	for _, im := range l.images {
		if err := im.AddScalar(v); err != nil {
			return err
		}
	}
	return nil
}

// MultiplyScalar multiplies every element of the list by v.
func (l *ImageList) MultiplyScalar(v complex128) error {
	for _, im := range l.images {
		if err := im.MultiplyScalar(v); err != nil {
			return err
		}
	}
	return nil
}

// AddList adds the elements of other into the elements of l pairwise.
// The lists must have equal length.
func (l *ImageList) AddList(other *ImageList) error {
	return l.eachPair(other, (*Image).Add)
}

// SubtractList subtracts the elements of other from the elements of l
// pairwise.
func (l *ImageList) SubtractList(other *ImageList) error {
	return l.eachPair(other, (*Image).Subtract)
}

// MultiplyList multiplies the elements of l by the elements of other
// pairwise.
func (l *ImageList) MultiplyList(other *ImageList) error {
	return l.eachPair(other, (*Image).Multiply)
}

// DivideList divides the elements of l by the elements of other
// pairwise.
func (l *ImageList) DivideList(other *ImageList) error {
	return l.eachPair(other, (*Image).Divide)
}

func (l *ImageList) eachPair(other *ImageList, op func(*Image, *Image) error) error {
	if len(l.images) != len(other.images) {
		return fmt.Errorf("%w: lists of %d and %d images", ErrIllegalInput, len(l.images), len(other.images))
	}
	for i, im := range l.images {
		if err := op(im, other.images[i]); err != nil {
			return err
		}
	}
	return nil
}

// SwapAxisMode selects the re-slicing axis of SwapAxisCreate.
type SwapAxisMode int

const (
	// SwapXZ re-slices the x/z planes: element x of the result is the
	// width x depth slice at column x.
	SwapXZ SwapAxisMode = iota
	// SwapYZ re-slices the y/z planes: element y of the result is the
	// depth x height slice at row y.
	SwapYZ
)

// SwapAxisCreate treats the uniform list as a width x height x depth
// volume and re-slices it along another axis. With SwapXZ the result has
// one element per column of the input images; with SwapYZ one element
// per row. Validity follows the voxels.
func (l *ImageList) SwapAxisCreate(mode SwapAxisMode) (*ImageList, error) {
	if err := l.requireUniform(); err != nil {
		return nil, err
	}
	if mode != SwapXZ && mode != SwapYZ {
		return nil, fmt.Errorf("%w: axis swap mode %d", ErrIllegalInput, int(mode))
	}
	w := l.images[0].buf.width
	h := l.images[0].buf.height
	d := len(l.images)
	typ := l.images[0].buf.typ

	out := NewImageList()
	if mode == SwapXZ {
		for x := 0; x < w; x++ {
			slice, err := NewImage(typ, d, h)
			if err != nil {
				return nil, err
			}
			for y := 0; y < h; y++ {
				for z := 0; z < d; z++ {
					src := l.images[z]
					slice.buf.setAt(y*d+z, src.buf.at(y*w+x))
					if src.rejectedAt(y*w + x) {
						slice.Bpm().data[y*d+z] = true
					}
				}
			}
			out.Append(slice)
		}
		return out, nil
	}
	for y := 0; y < h; y++ {
		slice, err := NewImage(typ, w, d)
		if err != nil {
			return nil, err
		}
		for z := 0; z < d; z++ {
			src := l.images[z]
			for x := 0; x < w; x++ {
				slice.buf.setAt(z*w+x, src.buf.at(y*w+x))
				if src.rejectedAt(y*w + x) {
					slice.Bpm().data[z*w+x] = true
				}
			}
		}
		out.Append(slice)
	}
	return out, nil
}
