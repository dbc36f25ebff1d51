package pixel

import (
	"fmt"
	"io"
	"strings"
)

// DumpWindow writes the mask cells inside the window to w as a tabular
// text block, one row per cell with 1-indexed coordinates and the cell
// value as 0 or 1. The format is deterministic and is relied on by
// golden-file tests.
func (m *Mask) DumpWindow(win Window, w io.Writer) error {
	x0, y0, x1, y1, err := win.resolve(m.width, m.height)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#----- mask: %d <= x <= %d, %d <= y <= %d -----\n",
		x0+1, x1+1, y0+1, y1+1); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "#X\tY\tvalue"); err != nil {
		return err
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			v := 0
			if m.data[y*m.width+x] {
				v = 1
			}
			if _, err := fmt.Fprintf(w, "%d\t%d\t%d\n", x+1, y+1, v); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dump returns the full-mask dump as a string.
func (m *Mask) Dump() string {
	var sb strings.Builder
	m.DumpWindow(FullWindow, &sb)
	return sb.String()
}

// DumpWindow writes the image pixels inside the window to w as a tabular
// text block, one row per pixel with 1-indexed coordinates. Rejected
// pixels print their stored value followed by a rejection marker.
func (im *Image) DumpWindow(win Window, w io.Writer) error {
	x0, y0, x1, y1, err := win.resolve(im.buf.width, im.buf.height)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "#----- image %s: %d <= x <= %d, %d <= y <= %d -----\n",
		im.buf.typ, x0+1, x1+1, y0+1, y1+1); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "#X\tY\tvalue"); err != nil {
		return err
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			i := y*im.buf.width + x
			if _, err := fmt.Fprintf(w, "%d\t%d\t%s", x+1, y+1, im.formatPixel(i)); err != nil {
				return err
			}
			if im.rejectedAt(i) {
				if _, err := io.WriteString(w, "\t(rejected)"); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// Dump returns the full-image dump as a string.
func (im *Image) Dump() string {
	var sb strings.Builder
	im.DumpWindow(FullWindow, &sb)
	return sb.String()
}

func (im *Image) formatPixel(i int) string {
	switch im.buf.typ {
	case TypeInt32:
		return fmt.Sprintf("%d", im.buf.i32[i])
	case TypeFloat32:
		return fmt.Sprintf("%g", im.buf.f32[i])
	case TypeFloat64:
		return fmt.Sprintf("%g", im.buf.f64[i])
	case TypeComplex64:
		v := im.buf.c64[i]
		return fmt.Sprintf("%g%+gi", real(v), imag(v))
	default:
		v := im.buf.c128[i]
		return fmt.Sprintf("%g%+gi", real(v), imag(v))
	}
}
