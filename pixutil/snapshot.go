// Package pixutil provides utilities layered on the core numeric types:
// a binary snapshot container for images and masks, and text-dump and
// summary helpers.
package pixutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zlib"

	"github.com/mrjoshuak/go-pixelcore/internal/xdr"
	"github.com/mrjoshuak/go-pixelcore/pixel"
)

// Snapshot container errors.
var (
	// ErrBadMagic is returned when the input does not start with the
	// snapshot magic.
	ErrBadMagic = errors.New("pixutil: not a snapshot file")

	// ErrVersion is returned for an unknown container version.
	ErrVersion = errors.New("pixutil: unsupported snapshot version")

	// ErrCorrupt is returned when the payload does not decode cleanly.
	ErrCorrupt = errors.New("pixutil: corrupt snapshot payload")
)

// snapshotMagic identifies a snapshot stream.
var snapshotMagic = [4]byte{'P', 'X', 'S', 'N'}

const snapshotVersion = 1

const (
	kindImage byte = 1
	kindMask  byte = 2
)

// Snapshot is a serializable capture of one image (with its validity
// mask) or one standalone mask. Every snapshot carries a unique instance
// identifier so that copies of the same capture can be recognized.
type Snapshot struct {
	ID    uuid.UUID
	Image *pixel.Image
	Mask  *pixel.Mask
}

// NewImageSnapshot captures an image, assigning a fresh instance id.
func NewImageSnapshot(im *pixel.Image) *Snapshot {
	return &Snapshot{ID: uuid.New(), Image: im}
}

// NewMaskSnapshot captures a standalone mask, assigning a fresh instance
// id.
func NewMaskSnapshot(m *pixel.Mask) *Snapshot {
	return &Snapshot{ID: uuid.New(), Mask: m}
}

// Encode writes the snapshot to w: a fixed header followed by a
// zlib-compressed payload of the pixel data.
func (s *Snapshot) Encode(w io.Writer) error {
	if (s.Image == nil) == (s.Mask == nil) {
		return fmt.Errorf("pixutil: snapshot must hold exactly one of image and mask")
	}
	header := xdr.NewWriter(32)
	header.WriteBytes(snapshotMagic[:])
	header.WriteUint32(snapshotVersion)
	header.WriteBytes(s.ID[:])
	if s.Image != nil {
		header.WriteByte(kindImage)
	} else {
		header.WriteByte(kindMask)
	}
	if _, err := w.Write(header.Bytes()); err != nil {
		return err
	}

	payload := xdr.NewWriter(1024)
	if s.Image != nil {
		encodeImage(payload, s.Image)
	} else {
		encodeMask(payload, s.Mask)
	}
	zw := zlib.NewWriter(w)
	if _, err := zw.Write(payload.Bytes()); err != nil {
		return err
	}
	return zw.Close()
}

func encodeImage(w *xdr.Writer, im *pixel.Image) {
	w.WriteInt32(int32(im.Type()))
	w.WriteInt32(int32(im.Width()))
	w.WriteInt32(int32(im.Height()))
	for _, v := range im.RawValues() {
		switch im.Type() {
		case pixel.TypeInt32:
			w.WriteInt32(int32(real(v)))
		case pixel.TypeFloat32:
			w.WriteFloat32(float32(real(v)))
		case pixel.TypeFloat64:
			w.WriteFloat64(real(v))
		case pixel.TypeComplex64:
			w.WriteComplex64(complex64(v))
		default:
			w.WriteComplex128(v)
		}
	}
	encodeMask(w, im.Bpm())
}

func encodeMask(w *xdr.Writer, m *pixel.Mask) {
	w.WriteInt32(int32(m.Width()))
	w.WriteInt32(int32(m.Height()))
	for y := 0; y < m.Height(); y++ {
		for x := 0; x < m.Width(); x++ {
			set, _ := m.Get(y, x)
			if set {
				w.WriteByte(1)
			} else {
				w.WriteByte(0)
			}
		}
	}
}

// Decode reads one snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	header := make([]byte, 4+4+16+1)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	hr := xdr.NewReader(header)
	magic, _ := hr.ReadBytes(4)
	if string(magic) != string(snapshotMagic[:]) {
		return nil, ErrBadMagic
	}
	version, _ := hr.ReadUint32()
	if version != snapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrVersion, version)
	}
	s := &Snapshot{}
	idBytes, _ := hr.ReadBytes(16)
	copy(s.ID[:], idBytes)
	kind, _ := hr.ReadByte()

	zr, err := zlib.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	defer zr.Close()
	raw, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	pr := xdr.NewReader(raw)
	switch kind {
	case kindImage:
		s.Image, err = decodeImage(pr)
	case kindMask:
		s.Mask, err = decodeMask(pr)
	default:
		return nil, fmt.Errorf("%w: kind %d", ErrCorrupt, kind)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func decodeImage(r *xdr.Reader) (*pixel.Image, error) {
	rawTyp, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	typ := pixel.Type(rawTyp)
	if !typ.IsValid() {
		return nil, fmt.Errorf("%w: pixel type %d", ErrCorrupt, rawTyp)
	}
	width, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	height, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	im, err := pixel.NewImage(typ, int(width), int(height))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	values := make([]complex128, int(width)*int(height))
	for i := range values {
		switch typ {
		case pixel.TypeInt32:
			v, err := r.ReadInt32()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			values[i] = complex(float64(v), 0)
		case pixel.TypeFloat32:
			v, err := r.ReadFloat32()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			values[i] = complex(float64(v), 0)
		case pixel.TypeFloat64:
			v, err := r.ReadFloat64()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			values[i] = complex(v, 0)
		case pixel.TypeComplex64:
			v, err := r.ReadComplex64()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			values[i] = complex128(v)
		default:
			v, err := r.ReadComplex128()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			values[i] = v
		}
	}
	if err := im.SetRawValues(values); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	mask, err := decodeMask(r)
	if err != nil {
		return nil, err
	}
	if err := im.RejectFromMask(mask); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return im, nil
}

func decodeMask(r *xdr.Reader) (*pixel.Mask, error) {
	width, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	height, err := r.ReadInt32()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	m, err := pixel.NewMask(int(width), int(height))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	for y := 0; y < int(height); y++ {
		for x := 0; x < int(width); x++ {
			b, err := r.ReadByte()
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
			}
			if b != 0 {
				m.Set(y, x, true)
			}
		}
	}
	return m, nil
}

// Save writes the snapshot to a file.
func Save(path string, s *Snapshot) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := s.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Load reads one snapshot from a file.
func Load(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
