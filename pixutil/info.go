package pixutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/mrjoshuak/go-pixelcore/pixel"
)

// Dumper is any entity with a deterministic textual dump.
type Dumper interface {
	Dump() string
}

// DumpToFile writes an entity's textual dump to a named file.
func DumpToFile(path string, d Dumper) error {
	return os.WriteFile(path, []byte(d.Dump()), 0o644)
}

// ImageInfo summarizes an image in one text block: extent, type,
// rejection count and the basic statistics of the valid pixels.
func ImageInfo(im *pixel.Image) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "image: %dx%d %s\n", im.Width(), im.Height(), im.Type())
	rejected, _ := im.Bpm().Count(pixel.FullWindow)
	fmt.Fprintf(&sb, "rejected: %d of %d\n", rejected, im.Width()*im.Height())
	if im.Type().IsComplex() {
		if flux, err := im.AbsFlux(pixel.FullWindow); err == nil {
			fmt.Fprintf(&sb, "absflux: %g\n", flux)
		}
		return sb.String()
	}
	if min, err := im.Min(pixel.FullWindow); err == nil {
		max, _ := im.Max(pixel.FullWindow)
		mean, _ := im.Mean(pixel.FullWindow)
		fmt.Fprintf(&sb, "min: %g\nmax: %g\nmean: %g\n", min, max, mean)
		if sdev, err := im.Stdev(pixel.FullWindow); err == nil {
			fmt.Fprintf(&sb, "stdev: %g\n", sdev)
		}
	}
	return sb.String()
}

// MaskInfo summarizes a mask in one text block.
func MaskInfo(m *pixel.Mask) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "mask: %dx%d\n", m.Width(), m.Height())
	count, _ := m.Count(pixel.FullWindow)
	fmt.Fprintf(&sb, "set: %d of %d\n", count, m.Width()*m.Height())
	return sb.String()
}

// SnapshotInfo summarizes a snapshot, delegating to the entity summary.
func SnapshotInfo(s *Snapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "snapshot %s\n", s.ID)
	if s.Image != nil {
		sb.WriteString(ImageInfo(s.Image))
	}
	if s.Mask != nil {
		sb.WriteString(MaskInfo(s.Mask))
	}
	return sb.String()
}
