package pixel

import "fmt"

// Window is an inclusive pixel-coordinate rectangle. Both corners are part
// of the window, following the same convention as the bounding boxes of
// image file formats.
//
// The zero value is a sentinel meaning "the whole extent of the object the
// window is applied to". This sentinel is used pervasively: passing
// Window{} to any windowed operation is equivalent to passing the full
// extent explicitly.
type Window struct {
	X0, Y0 int
	X1, Y1 int
}

// FullWindow is the whole-extent sentinel.
var FullWindow = Window{}

// IsFull reports whether w is the whole-extent sentinel.
func (w Window) IsFull() bool {
	return w.X0 == 0 && w.Y0 == 0 && w.X1 == 0 && w.Y1 == 0
}

// Width returns the number of columns covered by the window.
func (w Window) Width() int { return w.X1 - w.X0 + 1 }

// Height returns the number of rows covered by the window.
func (w Window) Height() int { return w.Y1 - w.Y0 + 1 }

// resolve validates w against a width*height extent and returns the
// concrete inclusive bounds. The zero-value sentinel resolves to the full
// extent. Inverted or negative coordinates report ErrIllegalInput;
// coordinates beyond the extent report ErrAccessOutOfRange.
func (w Window) resolve(width, height int) (x0, y0, x1, y1 int, err error) {
	if w.IsFull() {
		return 0, 0, width - 1, height - 1, nil
	}
	if w.X0 < 0 || w.Y0 < 0 || w.X1 < w.X0 || w.Y1 < w.Y0 {
		return 0, 0, 0, 0, fmt.Errorf("%w: window (%d,%d)-(%d,%d)",
			ErrIllegalInput, w.X0, w.Y0, w.X1, w.Y1)
	}
	if w.X1 >= width || w.Y1 >= height {
		return 0, 0, 0, 0, fmt.Errorf("%w: window (%d,%d)-(%d,%d) exceeds %dx%d",
			ErrAccessOutOfRange, w.X0, w.Y0, w.X1, w.Y1, width, height)
	}
	return w.X0, w.Y0, w.X1, w.Y1, nil
}
