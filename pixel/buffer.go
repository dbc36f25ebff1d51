package pixel

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Buffer is typed, contiguous, row-major storage for width*height elements
// of one of the five supported element types. The element at (x, y) lives
// at index y*width + x. The type is fixed at construction: every mutating
// operation stores its result cast back into the buffer's own type.
//
// Exactly one of the five storage slices is non-nil, selected by typ.
type Buffer struct {
	typ    Type
	width  int
	height int

	i32  []int32
	f32  []float32
	f64  []float64
	c64  []complex64
	c128 []complex128
}

// NewBuffer creates a zero-filled buffer of the given type and extent.
func NewBuffer(typ Type, width, height int) (*Buffer, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("%w: buffer extent %dx%d", ErrIllegalInput, width, height)
	}
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: buffer type %d", ErrInvalidType, int(typ))
	}
	b := &Buffer{typ: typ, width: width, height: height}
	n := width * height
	switch typ {
	case TypeInt32:
		b.i32 = make([]int32, n)
	case TypeFloat32:
		b.f32 = make([]float32, n)
	case TypeFloat64:
		b.f64 = make([]float64, n)
	case TypeComplex64:
		b.c64 = make([]complex64, n)
	case TypeComplex128:
		b.c128 = make([]complex128, n)
	}
	return b, nil
}

// Width returns the number of columns.
func (b *Buffer) Width() int { return b.width }

// Height returns the number of rows.
func (b *Buffer) Height() int { return b.height }

// Type returns the element type.
func (b *Buffer) Type() Type { return b.typ }

// Len returns the number of elements.
func (b *Buffer) Len() int { return b.width * b.height }

// Duplicate returns a deep copy of the buffer.
func (b *Buffer) Duplicate() *Buffer {
	d := &Buffer{typ: b.typ, width: b.width, height: b.height}
	switch b.typ {
	case TypeInt32:
		d.i32 = append([]int32(nil), b.i32...)
	case TypeFloat32:
		d.f32 = append([]float32(nil), b.f32...)
	case TypeFloat64:
		d.f64 = append([]float64(nil), b.f64...)
	case TypeComplex64:
		d.c64 = append([]complex64(nil), b.c64...)
	case TypeComplex128:
		d.c128 = append([]complex128(nil), b.c128...)
	}
	return d
}

// at returns element i widened to complex128 without changing its value.
func (b *Buffer) at(i int) complex128 {
	switch b.typ {
	case TypeInt32:
		return complex(float64(b.i32[i]), 0)
	case TypeFloat32:
		return complex(float64(b.f32[i]), 0)
	case TypeFloat64:
		return complex(b.f64[i], 0)
	case TypeComplex64:
		return complex128(b.c64[i])
	default:
		return b.c128[i]
	}
}

// setAt stores v into element i, cast to the buffer's type. Float to int
// truncates toward zero; narrowing rounds to the nearest representable
// value; the imaginary part is dropped when storing into a real buffer.
func (b *Buffer) setAt(i int, v complex128) {
	switch b.typ {
	case TypeInt32:
		b.i32[i] = truncInt32(real(v))
	case TypeFloat32:
		b.f32[i] = float32(real(v))
	case TypeFloat64:
		b.f64[i] = real(v)
	case TypeComplex64:
		b.c64[i] = complex64(v)
	default:
		b.c128[i] = v
	}
}

// truncInt32 converts toward zero, clamping non-finite and out-of-range
// values to the nearest representable int32.
func truncInt32(v float64) int32 {
	if math.IsNaN(v) {
		return 0
	}
	if v >= math.MaxInt32 {
		return math.MaxInt32
	}
	if v <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(v)
}

// Right-operand accessors: read element i of b cast to the named type,
// following the cast rules of the engine (truncation toward zero for
// float to int, round to nearest for narrowing, zero imaginary part when
// widening to complex). Complex sources must be rejected by the caller
// before requesting a real-typed view.

func (b *Buffer) int32At(i int) int32 {
	switch b.typ {
	case TypeInt32:
		return b.i32[i]
	case TypeFloat32:
		return truncInt32(float64(b.f32[i]))
	default:
		return truncInt32(b.f64[i])
	}
}

func (b *Buffer) float32At(i int) float32 {
	switch b.typ {
	case TypeInt32:
		return float32(b.i32[i])
	case TypeFloat32:
		return b.f32[i]
	default:
		return float32(b.f64[i])
	}
}

func (b *Buffer) float64At(i int) float64 {
	switch b.typ {
	case TypeInt32:
		return float64(b.i32[i])
	case TypeFloat32:
		return float64(b.f32[i])
	default:
		return b.f64[i]
	}
}

func (b *Buffer) complex64At(i int) complex64 {
	switch b.typ {
	case TypeInt32:
		return complex(float32(b.i32[i]), 0)
	case TypeFloat32:
		return complex(b.f32[i], 0)
	case TypeFloat64:
		return complex(float32(b.f64[i]), 0)
	case TypeComplex64:
		return b.c64[i]
	default:
		return complex64(b.c128[i])
	}
}

func (b *Buffer) complex128At(i int) complex128 {
	return b.at(i)
}

// checkBinary validates that other can be combined elementwise into b.
func (b *Buffer) checkBinary(other *Buffer) error {
	if b.width != other.width || b.height != other.height {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrIncompatibleInput, b.width, b.height, other.width, other.height)
	}
	if !b.typ.IsComplex() && other.typ.IsComplex() {
		return fmt.Errorf("%w: cannot cast %s operand into %s buffer",
			ErrInvalidType, other.typ, b.typ)
	}
	return nil
}

// add computes b[i] += other[i] in b's own type. The right operand is cast
// to b's type element-wise before combining, so an integer buffer plus a
// float buffer keeps integer truncation of each right-hand element.
func (b *Buffer) add(other *Buffer) error {
	if err := b.checkBinary(other); err != nil {
		return err
	}
	switch b.typ {
	case TypeInt32:
		for i := range b.i32 {
			b.i32[i] += other.int32At(i)
		}
	case TypeFloat32:
		for i := range b.f32 {
			b.f32[i] += other.float32At(i)
		}
	case TypeFloat64:
		for i := range b.f64 {
			b.f64[i] += other.float64At(i)
		}
	case TypeComplex64:
		for i := range b.c64 {
			b.c64[i] += other.complex64At(i)
		}
	default:
		for i := range b.c128 {
			b.c128[i] += other.complex128At(i)
		}
	}
	return nil
}

// subtract computes b[i] -= other[i] in b's own type.
func (b *Buffer) subtract(other *Buffer) error {
	if err := b.checkBinary(other); err != nil {
		return err
	}
	switch b.typ {
	case TypeInt32:
		for i := range b.i32 {
			b.i32[i] -= other.int32At(i)
		}
	case TypeFloat32:
		for i := range b.f32 {
			b.f32[i] -= other.float32At(i)
		}
	case TypeFloat64:
		for i := range b.f64 {
			b.f64[i] -= other.float64At(i)
		}
	case TypeComplex64:
		for i := range b.c64 {
			b.c64[i] -= other.complex64At(i)
		}
	default:
		for i := range b.c128 {
			b.c128[i] -= other.complex128At(i)
		}
	}
	return nil
}

// multiply computes b[i] *= other[i] in b's own type.
func (b *Buffer) multiply(other *Buffer) error {
	if err := b.checkBinary(other); err != nil {
		return err
	}
	switch b.typ {
	case TypeInt32:
		for i := range b.i32 {
			b.i32[i] *= other.int32At(i)
		}
	case TypeFloat32:
		for i := range b.f32 {
			b.f32[i] *= other.float32At(i)
		}
	case TypeFloat64:
		for i := range b.f64 {
			b.f64[i] *= other.float64At(i)
		}
	case TypeComplex64:
		for i := range b.c64 {
			b.c64[i] *= other.complex64At(i)
		}
	default:
		for i := range b.c128 {
			b.c128[i] *= other.complex128At(i)
		}
	}
	return nil
}

// divide computes b[i] /= other[i] in b's own type. Elements whose divisor
// casts to zero are left untouched and their indices returned, so the
// caller can mark them rejected. Integer division truncates toward zero.
func (b *Buffer) divide(other *Buffer) (zeros []int, err error) {
	if err := b.checkBinary(other); err != nil {
		return nil, err
	}
	switch b.typ {
	case TypeInt32:
		for i := range b.i32 {
			d := other.int32At(i)
			if d == 0 {
				zeros = append(zeros, i)
				continue
			}
			b.i32[i] /= d
		}
	case TypeFloat32:
		for i := range b.f32 {
			d := other.float32At(i)
			if d == 0 {
				zeros = append(zeros, i)
				continue
			}
			b.f32[i] /= d
		}
	case TypeFloat64:
		for i := range b.f64 {
			d := other.float64At(i)
			if d == 0 {
				zeros = append(zeros, i)
				continue
			}
			b.f64[i] /= d
		}
	case TypeComplex64:
		for i := range b.c64 {
			d := other.complex64At(i)
			if d == 0 {
				zeros = append(zeros, i)
				continue
			}
			b.c64[i] /= d
		}
	default:
		for i := range b.c128 {
			d := other.complex128At(i)
			if d == 0 {
				zeros = append(zeros, i)
				continue
			}
			b.c128[i] /= d
		}
	}
	return zeros, nil
}

// checkScalar validates a scalar operand against b's type.
func (b *Buffer) checkScalar(v complex128) error {
	if imag(v) != 0 && !b.typ.IsComplex() {
		return fmt.Errorf("%w: complex scalar on %s buffer", ErrInvalidType, b.typ)
	}
	return nil
}

// scalarOp applies one of +, -, *, / with a uniform scalar, computed in
// the buffer's own type. The scalar is cast once up front.
func (b *Buffer) scalarOp(op byte, v complex128) error {
	if err := b.checkScalar(v); err != nil {
		return err
	}
	if op == '/' && v == 0 {
		return fmt.Errorf("%w: scalar division by zero", ErrIllegalInput)
	}
	switch b.typ {
	case TypeInt32:
		s := truncInt32(real(v))
		if op == '/' && s == 0 {
			return fmt.Errorf("%w: scalar casts to integer zero", ErrIllegalInput)
		}
		for i := range b.i32 {
			switch op {
			case '+':
				b.i32[i] += s
			case '-':
				b.i32[i] -= s
			case '*':
				b.i32[i] *= s
			case '/':
				b.i32[i] /= s
			}
		}
	case TypeFloat32:
		s := float32(real(v))
		for i := range b.f32 {
			switch op {
			case '+':
				b.f32[i] += s
			case '-':
				b.f32[i] -= s
			case '*':
				b.f32[i] *= s
			case '/':
				b.f32[i] /= s
			}
		}
	case TypeFloat64:
		s := real(v)
		for i := range b.f64 {
			switch op {
			case '+':
				b.f64[i] += s
			case '-':
				b.f64[i] -= s
			case '*':
				b.f64[i] *= s
			case '/':
				b.f64[i] /= s
			}
		}
	case TypeComplex64:
		s := complex64(v)
		for i := range b.c64 {
			switch op {
			case '+':
				b.c64[i] += s
			case '-':
				b.c64[i] -= s
			case '*':
				b.c64[i] *= s
			case '/':
				b.c64[i] /= s
			}
		}
	default:
		for i := range b.c128 {
			switch op {
			case '+':
				b.c128[i] += v
			case '-':
				b.c128[i] -= v
			case '*':
				b.c128[i] *= v
			case '/':
				b.c128[i] /= v
			}
		}
	}
	return nil
}

// bitwise applies one of and, or, xor with another buffer. Defined for
// integer buffers only.
func (b *Buffer) bitwise(op byte, other *Buffer) error {
	if b.typ != TypeInt32 || other.typ != TypeInt32 {
		return fmt.Errorf("%w: bitwise %c on %s/%s buffers", ErrInvalidType, op, b.typ, other.typ)
	}
	if b.width != other.width || b.height != other.height {
		return fmt.Errorf("%w: %dx%d vs %dx%d",
			ErrIncompatibleInput, b.width, b.height, other.width, other.height)
	}
	for i := range b.i32 {
		switch op {
		case '&':
			b.i32[i] &= other.i32[i]
		case '|':
			b.i32[i] |= other.i32[i]
		case '^':
			b.i32[i] ^= other.i32[i]
		}
	}
	return nil
}

// notBits complements every element bitwise. Integer buffers only.
func (b *Buffer) notBits() error {
	if b.typ != TypeInt32 {
		return fmt.Errorf("%w: bitwise not on %s buffer", ErrInvalidType, b.typ)
	}
	for i := range b.i32 {
		b.i32[i] = ^b.i32[i]
	}
	return nil
}

// fill sets every element to v cast into the buffer's type.
func (b *Buffer) fill(v complex128) error {
	if err := b.checkScalar(v); err != nil {
		return err
	}
	n := b.Len()
	for i := 0; i < n; i++ {
		b.setAt(i, v)
	}
	return nil
}

// castCreate returns a copy of b converted to typ. Converting complex data
// to a real type is not a cast: use the explicit real/imag extraction on
// Image instead.
func (b *Buffer) castCreate(typ Type) (*Buffer, error) {
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: cast target %d", ErrInvalidType, int(typ))
	}
	if b.typ.IsComplex() && !typ.IsComplex() {
		return nil, fmt.Errorf("%w: cannot cast %s to %s", ErrInvalidType, b.typ, typ)
	}
	out, err := NewBuffer(typ, b.width, b.height)
	if err != nil {
		return nil, err
	}
	n := b.Len()
	for i := 0; i < n; i++ {
		out.setAt(i, b.at(i))
	}
	return out, nil
}

// componentCreate extracts a float64 buffer from a complex one using the
// given projection (real, imag, modulus or argument).
func (b *Buffer) componentCreate(proj func(complex128) float64) *Buffer {
	out, _ := NewBuffer(TypeFloat64, b.width, b.height)
	n := b.Len()
	for i := 0; i < n; i++ {
		out.f64[i] = proj(b.at(i))
	}
	return out
}

// abs returns |v| for real and complex values alike.
func abs(v complex128) float64 {
	if imag(v) == 0 {
		return math.Abs(real(v))
	}
	return cmplx.Abs(v)
}
