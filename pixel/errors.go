package pixel

import "errors"

// Error taxonomy shared by all pixel-array operations. Every failing call
// reports exactly one of these kinds (possibly wrapped with context) and
// leaves its operands unmodified.
var (
	// ErrIllegalInput is returned when a supplied argument is structurally
	// nonsensical for the operation regardless of other state, such as a
	// zero-sized construction or an inverted window.
	ErrIllegalInput = errors.New("pixel: illegal input")

	// ErrAccessOutOfRange is returned when a structurally valid index or
	// window falls outside the bounds of the object it is applied to.
	ErrAccessOutOfRange = errors.New("pixel: access out of range")

	// ErrIncompatibleInput is returned when two individually valid inputs
	// cannot be combined, such as images of different shapes.
	ErrIncompatibleInput = errors.New("pixel: incompatible input")

	// ErrInvalidType is returned when the operation is undefined for the
	// object's element type, such as bitwise operations on float data.
	ErrInvalidType = errors.New("pixel: invalid type")

	// ErrUnsupportedMode is returned when a combination of otherwise valid
	// mode flags or parameters is not implemented.
	ErrUnsupportedMode = errors.New("pixel: unsupported mode")

	// ErrDataNotFound is returned when a well-posed query legitimately has
	// no answer given the data, such as statistics over a window in which
	// every pixel is rejected.
	ErrDataNotFound = errors.New("pixel: data not found")
)
