// Package archive loads regulation archives into memory and provides
// bounds-checked typed access at absolute byte offsets.
//
// A Buffer is owned by exactly one patch operation: it is created by Load,
// mutated in place, and either flushed or discarded. Nothing is written to
// disk until Flush, so a failure at any point before it leaves the archive
// file untouched.
package archive

import (
	"os"

	"github.com/joshuapare/regpatch/internal/buf"
	"github.com/joshuapare/regpatch/internal/format"
	"github.com/joshuapare/regpatch/internal/writer"
)

// Buffer is a mutable in-memory copy of an archive.
type Buffer struct {
	path string
	mode os.FileMode
	data []byte
}

// Load reads the entire archive at path.
func Load(path string) (*Buffer, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &format.IOError{Op: "load", Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &format.IOError{Op: "load", Path: path, Err: err}
	}
	return &Buffer{path: path, mode: info.Mode().Perm(), data: data}, nil
}

// FromBytes wraps data without copying. The caller gives up ownership.
func FromBytes(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Path returns the file the buffer was loaded from, or "" for FromBytes.
func (b *Buffer) Path() string { return b.path }

// Len returns the archive length in bytes.
func (b *Buffer) Len() int { return len(b.data) }

// Bytes exposes the underlying storage. Writes through it bypass bounds checks.
func (b *Buffer) Bytes() []byte { return b.data }

// Clone returns an independent copy, used for dry runs.
func (b *Buffer) Clone() *Buffer {
	return &Buffer{path: b.path, mode: b.mode, data: append([]byte(nil), b.data...)}
}

// ReadU8 reads one byte at off.
func (b *Buffer) ReadU8(off int) (uint8, error) {
	v, ok := buf.U8(b.data, off)
	if !ok {
		return 0, rangeError(off, 1, len(b.data))
	}
	return v, nil
}

// ReadU16 reads a little-endian uint16 at off.
func (b *Buffer) ReadU16(off int) (uint16, error) {
	v, ok := buf.U16LE(b.data, off)
	if !ok {
		return 0, rangeError(off, 2, len(b.data))
	}
	return v, nil
}

// ReadU32 reads a little-endian uint32 at off.
func (b *Buffer) ReadU32(off int) (uint32, error) {
	v, ok := buf.U32LE(b.data, off)
	if !ok {
		return 0, rangeError(off, 4, len(b.data))
	}
	return v, nil
}

// ReadF32 reads a little-endian float32 at off.
func (b *Buffer) ReadF32(off int) (float32, error) {
	v, ok := buf.F32LE(b.data, off)
	if !ok {
		return 0, rangeError(off, 4, len(b.data))
	}
	return v, nil
}

// WriteU8 stores v at off.
func (b *Buffer) WriteU8(off int, v uint8) error {
	if !buf.PutU8(b.data, off, v) {
		return rangeError(off, 1, len(b.data))
	}
	return nil
}

// WriteU16 stores v little-endian at off.
func (b *Buffer) WriteU16(off int, v uint16) error {
	if !buf.PutU16LE(b.data, off, v) {
		return rangeError(off, 2, len(b.data))
	}
	return nil
}

// WriteU32 stores v little-endian at off.
func (b *Buffer) WriteU32(off int, v uint32) error {
	if !buf.PutU32LE(b.data, off, v) {
		return rangeError(off, 4, len(b.data))
	}
	return nil
}

// WriteF32 stores v little-endian at off.
func (b *Buffer) WriteF32(off int, v float32) error {
	if !buf.PutF32LE(b.data, off, v) {
		return rangeError(off, 4, len(b.data))
	}
	return nil
}

// ReadValue reads a field of type t at off.
func (b *Buffer) ReadValue(off int, t format.FieldType) (format.Value, error) {
	return readValue(b.data, off, t)
}

// WriteValue stores v at off using v's type.
func (b *Buffer) WriteValue(off int, v format.Value) error {
	switch v.Type {
	case format.TypeU8:
		return b.WriteU8(off, uint8(v.Uint()))
	case format.TypeU16:
		return b.WriteU16(off, uint16(v.Uint()))
	case format.TypeU32:
		return b.WriteU32(off, v.Uint())
	case format.TypeF32:
		return b.WriteF32(off, v.Float())
	default:
		return format.ErrTypeMismatch
	}
}

// Flush atomically replaces the file at path with the buffer contents,
// keeping the original file mode when the buffer came from Load.
func (b *Buffer) Flush(path string) error {
	if err := b.FlushTo(&writer.FileWriter{Path: path, Perm: b.mode}); err != nil {
		return &format.IOError{Op: "flush", Path: path, Err: err}
	}
	return nil
}

// FlushTo hands the full contents to sink.
func (b *Buffer) FlushTo(sink writer.Sink) error {
	return sink.WriteArchive(b.data)
}

func readValue(data []byte, off int, t format.FieldType) (format.Value, error) {
	var (
		bits uint32
		ok   bool
	)
	switch t {
	case format.TypeU8:
		var v uint8
		v, ok = buf.U8(data, off)
		bits = uint32(v)
	case format.TypeU16:
		var v uint16
		v, ok = buf.U16LE(data, off)
		bits = uint32(v)
	case format.TypeU32, format.TypeF32:
		bits, ok = buf.U32LE(data, off)
	default:
		return format.Value{}, format.ErrTypeMismatch
	}
	if !ok {
		return format.Value{}, rangeError(off, t.Width(), len(data))
	}
	return format.FromBits(t, bits), nil
}

func rangeError(off, width, n int) error {
	return &format.OutOfRangeError{Offset: off, Width: width, Len: n}
}
