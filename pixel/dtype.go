// Package pixel implements a typed 2D pixel-array engine: contiguous
// numeric buffers over five element types, bad-pixel masks, images that
// pair the two, and image lists with axis-reduction operators.
//
// Every image operation is aware of the attached bad-pixel mask: rejected
// pixels never contribute to arithmetic or statistics, and rejection
// propagates through binary operations by logical OR.
package pixel

// Type identifies the element type of a Buffer. The set is closed: all
// dispatch in this package is over exactly these five kinds.
type Type int

const (
	// TypeInt32 stores 32-bit signed integers.
	TypeInt32 Type = 1 + iota
	// TypeFloat32 stores IEEE single-precision floats.
	TypeFloat32
	// TypeFloat64 stores IEEE double-precision floats.
	TypeFloat64
	// TypeComplex64 stores complex numbers with float32 components.
	TypeComplex64
	// TypeComplex128 stores complex numbers with float64 components.
	TypeComplex128
)

// String returns the conventional name of the type.
func (t Type) String() string {
	switch t {
	case TypeInt32:
		return "int32"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeComplex64:
		return "complex64"
	case TypeComplex128:
		return "complex128"
	default:
		return "unknown"
	}
}

// Size returns the storage size of one element in bytes.
func (t Type) Size() int {
	switch t {
	case TypeInt32, TypeFloat32:
		return 4
	case TypeFloat64, TypeComplex64:
		return 8
	case TypeComplex128:
		return 16
	default:
		return 0
	}
}

// IsValid reports whether t is one of the five supported element types.
func (t Type) IsValid() bool {
	return t >= TypeInt32 && t <= TypeComplex128
}

// IsComplex reports whether t stores complex values.
func (t Type) IsComplex() bool {
	return t == TypeComplex64 || t == TypeComplex128
}

// IsInteger reports whether t stores integer values.
func (t Type) IsInteger() bool {
	return t == TypeInt32
}

// IsFloat reports whether t stores real floating-point values.
func (t Type) IsFloat() bool {
	return t == TypeFloat32 || t == TypeFloat64
}
