// Package buf contains bounds-checked little-endian accessors for archive bytes.
package buf

import (
	"encoding/binary"
	"math"
)

// U8 reads the byte at off. ok is false when off is out of range.
func U8(b []byte, off int) (uint8, bool) {
	s, ok := Slice(b, off, 1)
	if !ok {
		return 0, false
	}
	return s[0], true
}

// U16LE reads a little-endian uint16 at off.
func U16LE(b []byte, off int) (uint16, bool) {
	s, ok := Slice(b, off, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(s), true
}

// U32LE reads a little-endian uint32 at off.
func U32LE(b []byte, off int) (uint32, bool) {
	s, ok := Slice(b, off, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(s), true
}

// F32LE reads a little-endian IEEE-754 single at off.
func F32LE(b []byte, off int) (float32, bool) {
	v, ok := U32LE(b, off)
	if !ok {
		return 0, false
	}
	return math.Float32frombits(v), true
}

// PutU8 stores v at off. It reports false and leaves b untouched when off is out of range.
func PutU8(b []byte, off int, v uint8) bool {
	s, ok := Slice(b, off, 1)
	if !ok {
		return false
	}
	s[0] = v
	return true
}

// PutU16LE stores v little-endian at off.
func PutU16LE(b []byte, off int, v uint16) bool {
	s, ok := Slice(b, off, 2)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint16(s, v)
	return true
}

// PutU32LE stores v little-endian at off.
func PutU32LE(b []byte, off int, v uint32) bool {
	s, ok := Slice(b, off, 4)
	if !ok {
		return false
	}
	binary.LittleEndian.PutUint32(s, v)
	return true
}

// PutF32LE stores the IEEE-754 bits of v little-endian at off.
func PutF32LE(b []byte, off int, v float32) bool {
	return PutU32LE(b, off, math.Float32bits(v))
}
