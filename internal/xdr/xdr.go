// Package xdr provides little-endian binary encoding and decoding
// utilities for the snapshot container payloads.
//
// Snapshots use little-endian byte order for all multi-byte values. This
// package provides efficient, bounds-checked readers and a growable
// writer for the primitive types the container stores: 32- and 64-bit
// integers, IEEE 754 floats, complex values and length-prefixed strings.
package xdr

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrShortBuffer is returned when a read operation cannot complete
	// because the buffer holds too few bytes.
	ErrShortBuffer = errors.New("xdr: buffer too short")

	// ErrNegativeSize is returned when a size parameter is negative.
	ErrNegativeSize = errors.New("xdr: negative size")
)

// ByteOrder is the byte order used by snapshot payloads.
var ByteOrder = binary.LittleEndian

// Reader provides little-endian binary reading from a byte slice. It
// maintains a read position and bounds-checks every operation.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if r.pos+n > len(r.data) {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, ErrShortBuffer
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads n bytes into a new slice.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if r.pos+n > len(r.data) {
		return nil, ErrShortBuffer
	}
	result := make([]byte, n)
	copy(result, r.data[r.pos:r.pos+n])
	r.pos += n
	return result, nil
}

// ReadBytesInto reads len(dst) bytes into the provided slice.
func (r *Reader) ReadBytesInto(dst []byte) error {
	n := len(dst)
	if r.pos+n > len(r.data) {
		return ErrShortBuffer
	}
	copy(dst, r.data[r.pos:r.pos+n])
	r.pos += n
	return nil
}

// ReadUint32 reads an unsigned 32-bit integer in little-endian order.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadInt32 reads a signed 32-bit integer in little-endian order.
func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.ReadUint32()
	return int32(v), err
}

// ReadUint64 reads an unsigned 64-bit integer in little-endian order.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, ErrShortBuffer
	}
	v := ByteOrder.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadInt64 reads a signed 64-bit integer in little-endian order.
func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a 32-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a 64-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadComplex64 reads a complex value as two 32-bit floats, real part
// first.
func (r *Reader) ReadComplex64() (complex64, error) {
	re, err := r.ReadFloat32()
	if err != nil {
		return 0, err
	}
	im, err := r.ReadFloat32()
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// ReadComplex128 reads a complex value as two 64-bit floats, real part
// first.
func (r *Reader) ReadComplex128() (complex128, error) {
	re, err := r.ReadFloat64()
	if err != nil {
		return 0, err
	}
	im, err := r.ReadFloat64()
	if err != nil {
		return 0, err
	}
	return complex(re, im), nil
}

// ReadString reads a string prefixed by its uint32 byte length.
func (r *Reader) ReadString() (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	if r.pos+int(n) > len(r.data) {
		r.pos -= 4
		return "", ErrShortBuffer
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// Writer provides a growing buffer for little-endian binary writing.
type Writer struct {
	buf []byte
}

// NewWriter creates a Writer with an initial capacity.
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the written data. The returned slice is valid until the
// next write operation.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Reset clears the buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// WriteByte writes a single byte.
func (w *Writer) WriteByte(b byte) {
	w.buf = append(w.buf, b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUint32 writes an unsigned 32-bit integer in little-endian order.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = append(w.buf, byte(v), byte(v>>8), byte(v>>16), byte(v>>24))
}

// WriteInt32 writes a signed 32-bit integer in little-endian order.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteUint64 writes an unsigned 64-bit integer in little-endian order.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = append(w.buf,
		byte(v), byte(v>>8), byte(v>>16), byte(v>>24),
		byte(v>>32), byte(v>>40), byte(v>>48), byte(v>>56))
}

// WriteInt64 writes a signed 64-bit integer in little-endian order.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteFloat32 writes a 32-bit IEEE 754 floating-point number.
func (w *Writer) WriteFloat32(v float32) {
	w.WriteUint32(math.Float32bits(v))
}

// WriteFloat64 writes a 64-bit IEEE 754 floating-point number.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteUint64(math.Float64bits(v))
}

// WriteComplex64 writes a complex value as two 32-bit floats, real part
// first.
func (w *Writer) WriteComplex64(v complex64) {
	w.WriteFloat32(real(v))
	w.WriteFloat32(imag(v))
}

// WriteComplex128 writes a complex value as two 64-bit floats, real part
// first.
func (w *Writer) WriteComplex128(v complex128) {
	w.WriteFloat64(real(v))
	w.WriteFloat64(imag(v))
}

// WriteString writes a string prefixed by its uint32 byte length.
func (w *Writer) WriteString(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}
