package pixel

import (
	"fmt"
	"math"
)

// Image is the central numeric entity of the engine: one typed Buffer and
// one bad-pixel mask (BPM) of identical extent. Every pixel is either
// valid, contributing its stored value, or rejected, in which case reads
// surface no value at all while the storage retains the last value
// written so Accept can restore it.
//
// The mask is materialized lazily: an image on which no pixel was ever
// rejected behaves as if it had an all-false mask.
//
// Operations come in two flavors, an explicit naming contract kept
// throughout the package: in-place methods mutate the receiver and return
// only an error, while *Create methods leave the operands unchanged and
// return a fresh Image.
type Image struct {
	buf *Buffer
	bpm *Mask
}

// NewImage creates a zero-filled, all-valid image.
func NewImage(typ Type, width, height int) (*Image, error) {
	buf, err := NewBuffer(typ, width, height)
	if err != nil {
		return nil, err
	}
	return &Image{buf: buf}, nil
}

// NewImageFromInt32 creates an int32 image from row-major data.
// The data slice is copied.
func NewImageFromInt32(data []int32, width, height int) (*Image, error) {
	im, err := NewImage(TypeInt32, width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d elements for %dx%d image", ErrIllegalInput, len(data), width, height)
	}
	copy(im.buf.i32, data)
	return im, nil
}

// NewImageFromFloat64 creates a float64 image from row-major data.
// The data slice is copied.
func NewImageFromFloat64(data []float64, width, height int) (*Image, error) {
	im, err := NewImage(TypeFloat64, width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d elements for %dx%d image", ErrIllegalInput, len(data), width, height)
	}
	copy(im.buf.f64, data)
	return im, nil
}

// NewImageFromComplex128 creates a complex128 image from row-major data.
// The data slice is copied.
func NewImageFromComplex128(data []complex128, width, height int) (*Image, error) {
	im, err := NewImage(TypeComplex128, width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d elements for %dx%d image", ErrIllegalInput, len(data), width, height)
	}
	copy(im.buf.c128, data)
	return im, nil
}

// Width returns the number of columns.
func (im *Image) Width() int { return im.buf.width }

// Height returns the number of rows.
func (im *Image) Height() int { return im.buf.height }

// Type returns the element type.
func (im *Image) Type() Type { return im.buf.typ }

// Duplicate returns a deep copy of the image including its mask.
func (im *Image) Duplicate() *Image {
	out := &Image{buf: im.buf.Duplicate()}
	if im.bpm != nil {
		out.bpm = im.bpm.Duplicate()
	}
	return out
}

// Bpm returns the image's bad-pixel mask, materializing an all-false mask
// on first use. The returned mask is the live mask, not a copy: mutating
// it mutates the image's validity.
func (im *Image) Bpm() *Mask {
	if im.bpm == nil {
		im.bpm, _ = NewMask(im.buf.width, im.buf.height)
	}
	return im.bpm
}

// rejected reports whether flat index i is rejected, without materializing
// the mask.
func (im *Image) rejectedAt(i int) bool {
	return im.bpm != nil && im.bpm.data[i]
}

// Get returns the pixel value at (y, x) and whether it is valid. A
// rejected pixel reads as (0, false): the stored numeric value is not
// surfaced.
func (im *Image) Get(y, x int) (complex128, bool, error) {
	if x < 0 || x >= im.buf.width || y < 0 || y >= im.buf.height {
		return 0, false, fmt.Errorf("%w: pixel (%d,%d) of %dx%d",
			ErrAccessOutOfRange, x, y, im.buf.width, im.buf.height)
	}
	i := y*im.buf.width + x
	if im.rejectedAt(i) {
		return 0, false, nil
	}
	return im.buf.at(i), true, nil
}

// Set stores a value at (y, x). The pixel's validity is unchanged: a
// rejected pixel stays rejected until Accept, which then surfaces the
// value written here.
func (im *Image) Set(y, x int, v complex128) error {
	if x < 0 || x >= im.buf.width || y < 0 || y >= im.buf.height {
		return fmt.Errorf("%w: pixel (%d,%d) of %dx%d",
			ErrAccessOutOfRange, x, y, im.buf.width, im.buf.height)
	}
	if err := im.buf.checkScalar(v); err != nil {
		return err
	}
	im.buf.setAt(y*im.buf.width+x, v)
	return nil
}

// RawValues returns every stored pixel value in row-major order,
// including the hidden values of rejected pixels. All five pixel types
// convert to complex128 without loss, so the slice is a faithful raw
// interchange form for save/load collaborators.
func (im *Image) RawValues() []complex128 {
	out := make([]complex128, im.buf.width*im.buf.height)
	for i := range out {
		out[i] = im.buf.at(i)
	}
	return out
}

// SetRawValues restores every stored pixel value in row-major order,
// leaving validity untouched. The slice length must match the extent.
func (im *Image) SetRawValues(values []complex128) error {
	if len(values) != im.buf.width*im.buf.height {
		return fmt.Errorf("%w: %d values for %dx%d image",
			ErrIncompatibleInput, len(values), im.buf.width, im.buf.height)
	}
	for i, v := range values {
		im.buf.setAt(i, v)
	}
	return nil
}

// Fill sets every pixel to v and leaves validity untouched.
func (im *Image) Fill(v complex128) error {
	return im.buf.fill(v)
}

// Reject marks the pixel at (y, x) as invalid. The stored value is kept.
func (im *Image) Reject(y, x int) error {
	return im.Bpm().Set(y, x, true)
}

// Accept marks the pixel at (y, x) as valid again, restoring whatever
// value the storage holds.
func (im *Image) Accept(y, x int) error {
	if x < 0 || x >= im.buf.width || y < 0 || y >= im.buf.height {
		return fmt.Errorf("%w: pixel (%d,%d) of %dx%d",
			ErrAccessOutOfRange, x, y, im.buf.width, im.buf.height)
	}
	if im.bpm == nil {
		return nil
	}
	return im.bpm.Set(y, x, false)
}

// AcceptAll marks every pixel valid.
func (im *Image) AcceptAll() {
	if im.bpm == nil {
		return
	}
	for i := range im.bpm.data {
		im.bpm.data[i] = false
	}
}

// IsRejected reports whether the pixel at (y, x) is invalid.
func (im *Image) IsRejected(y, x int) (bool, error) {
	if x < 0 || x >= im.buf.width || y < 0 || y >= im.buf.height {
		return false, fmt.Errorf("%w: pixel (%d,%d) of %dx%d",
			ErrAccessOutOfRange, x, y, im.buf.width, im.buf.height)
	}
	return im.rejectedAt(y*im.buf.width + x), nil
}

// RejectFromMask replaces the image's mask with a copy of m.
func (im *Image) RejectFromMask(m *Mask) error {
	if m.width != im.buf.width || m.height != im.buf.height {
		return fmt.Errorf("%w: mask %dx%d for %dx%d image",
			ErrIncompatibleInput, m.width, m.height, im.buf.width, im.buf.height)
	}
	im.bpm = m.Duplicate()
	return nil
}

// ValueFlags tags special values for RejectValue. Flags combine with
// bitwise or.
type ValueFlags uint

const (
	// ValueNaN matches IEEE not-a-number values.
	ValueNaN ValueFlags = 1 << iota
	// ValuePlusInf matches positive infinity.
	ValuePlusInf
	// ValueMinusInf matches negative infinity.
	ValueMinusInf
	// ValueZero matches exact zero.
	ValueZero
)

// RejectValue rejects every pixel whose value matches one of the tagged
// values. NaN and infinity matching is defined for float and double data
// only: requesting it on complex data reports ErrUnsupportedMode since
// NaN comparison on complex values is ambiguous, and any other tag on
// complex data reports ErrInvalidType. On integer data the NaN and
// infinity tags never match.
func (im *Image) RejectValue(flags ValueFlags) error {
	if flags == 0 {
		return fmt.Errorf("%w: no value tags", ErrIllegalInput)
	}
	if im.buf.typ.IsComplex() {
		if flags&(ValueNaN|ValuePlusInf|ValueMinusInf) != 0 {
			return fmt.Errorf("%w: NaN/Inf rejection on %s image", ErrUnsupportedMode, im.buf.typ)
		}
		return fmt.Errorf("%w: value rejection on %s image", ErrInvalidType, im.buf.typ)
	}
	bpm := im.Bpm()
	n := im.buf.Len()
	for i := 0; i < n; i++ {
		v := real(im.buf.at(i))
		switch {
		case flags&ValueNaN != 0 && math.IsNaN(v),
			flags&ValuePlusInf != 0 && math.IsInf(v, 1),
			flags&ValueMinusInf != 0 && math.IsInf(v, -1),
			flags&ValueZero != 0 && v == 0:
			bpm.data[i] = true
		}
	}
	return nil
}

// orBpm merges other's rejections into im.
func (im *Image) orBpm(other *Image) {
	if other.bpm == nil {
		return
	}
	bpm := im.Bpm()
	for i, r := range other.bpm.data {
		if r {
			bpm.data[i] = true
		}
	}
}

// Add adds other into im elementwise, in im's own type. Pixels rejected
// in either operand are rejected in the result.
func (im *Image) Add(other *Image) error {
	if err := im.buf.add(other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Subtract subtracts other from im elementwise, in im's own type.
func (im *Image) Subtract(other *Image) error {
	if err := im.buf.subtract(other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Multiply multiplies im by other elementwise, in im's own type.
func (im *Image) Multiply(other *Image) error {
	if err := im.buf.multiply(other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Divide divides im by other elementwise, in im's own type. Pixels whose
// divisor casts to zero keep their stored value and are rejected: numeric
// degeneracy surfaces through the mask rather than as infinities.
func (im *Image) Divide(other *Image) error {
	zeros, err := im.buf.divide(other.buf)
	if err != nil {
		return err
	}
	im.orBpm(other)
	if len(zeros) > 0 {
		bpm := im.Bpm()
		for _, i := range zeros {
			bpm.data[i] = true
		}
	}
	return nil
}

// AddCreate returns a new image holding im + other, leaving both operands
// unchanged. The result has im's type.
func (im *Image) AddCreate(other *Image) (*Image, error) {
	out := im.Duplicate()
	if err := out.Add(other); err != nil {
		return nil, err
	}
	return out, nil
}

// SubtractCreate returns a new image holding im - other.
func (im *Image) SubtractCreate(other *Image) (*Image, error) {
	out := im.Duplicate()
	if err := out.Subtract(other); err != nil {
		return nil, err
	}
	return out, nil
}

// MultiplyCreate returns a new image holding im * other.
func (im *Image) MultiplyCreate(other *Image) (*Image, error) {
	out := im.Duplicate()
	if err := out.Multiply(other); err != nil {
		return nil, err
	}
	return out, nil
}

// DivideCreate returns a new image holding im / other.
func (im *Image) DivideCreate(other *Image) (*Image, error) {
	out := im.Duplicate()
	if err := out.Divide(other); err != nil {
		return nil, err
	}
	return out, nil
}

// AddScalar adds a uniform scalar to every pixel, in im's own type.
func (im *Image) AddScalar(v complex128) error { return im.buf.scalarOp('+', v) }

// SubtractScalar subtracts a uniform scalar from every pixel.
func (im *Image) SubtractScalar(v complex128) error { return im.buf.scalarOp('-', v) }

// MultiplyScalar multiplies every pixel by a uniform scalar.
func (im *Image) MultiplyScalar(v complex128) error { return im.buf.scalarOp('*', v) }

// DivideScalar divides every pixel by a uniform scalar.
func (im *Image) DivideScalar(v complex128) error { return im.buf.scalarOp('/', v) }

// And computes the bitwise and with other. Integer images only.
func (im *Image) And(other *Image) error {
	if err := im.buf.bitwise('&', other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Or computes the bitwise or with other. Integer images only.
func (im *Image) Or(other *Image) error {
	if err := im.buf.bitwise('|', other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Xor computes the bitwise exclusive or with other. Integer images only.
func (im *Image) Xor(other *Image) error {
	if err := im.buf.bitwise('^', other.buf); err != nil {
		return err
	}
	im.orBpm(other)
	return nil
}

// Not complements every pixel bitwise. Integer images only.
func (im *Image) Not() error { return im.buf.notBits() }

// CastCreate returns a copy converted to typ. Float to int truncates
// toward zero, narrowing rounds to nearest, real to complex zeroes the
// imaginary part. Complex to real is refused: use RealCreate, ImagCreate,
// AbsCreate or ArgCreate for the explicit projections.
func (im *Image) CastCreate(typ Type) (*Image, error) {
	buf, err := im.buf.castCreate(typ)
	if err != nil {
		return nil, err
	}
	out := &Image{buf: buf}
	if im.bpm != nil {
		out.bpm = im.bpm.Duplicate()
	}
	return out, nil
}

// RealCreate extracts the real component of a complex image as float64.
func (im *Image) RealCreate() (*Image, error) {
	return im.project(func(v complex128) float64 { return real(v) })
}

// ImagCreate extracts the imaginary component of a complex image.
func (im *Image) ImagCreate() (*Image, error) {
	return im.project(func(v complex128) float64 { return imag(v) })
}

// AbsCreate extracts the modulus of a complex image.
func (im *Image) AbsCreate() (*Image, error) {
	return im.project(abs)
}

// ArgCreate extracts the argument (phase angle) of a complex image.
func (im *Image) ArgCreate() (*Image, error) {
	return im.project(func(v complex128) float64 { return math.Atan2(imag(v), real(v)) })
}

func (im *Image) project(proj func(complex128) float64) (*Image, error) {
	if !im.buf.typ.IsComplex() {
		return nil, fmt.Errorf("%w: component extraction from %s image", ErrInvalidType, im.buf.typ)
	}
	out := &Image{buf: im.buf.componentCreate(proj)}
	if im.bpm != nil {
		out.bpm = im.bpm.Duplicate()
	}
	return out, nil
}
