// Package format defines the primitive field types stored in regulation
// archives and the error taxonomy shared by every stage of the patcher.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FieldType is the on-disk primitive type of a record field.
type FieldType uint8

const (
	TypeInvalid FieldType = iota
	TypeU8                // single flag/enum/stat byte
	TypeU16               // little-endian uint16
	TypeU32               // little-endian uint32
	TypeF32               // little-endian IEEE-754 single
)

// Width returns the field size in bytes, or 0 for TypeInvalid.
func (t FieldType) Width() int {
	switch t {
	case TypeU8:
		return 1
	case TypeU16:
		return 2
	case TypeU32, TypeF32:
		return 4
	default:
		return 0
	}
}

func (t FieldType) String() string {
	switch t {
	case TypeU8:
		return "u8"
	case TypeU16:
		return "u16"
	case TypeU32:
		return "u32"
	case TypeF32:
		return "f32"
	default:
		return "invalid"
	}
}

// ParseFieldType parses the names produced by FieldType.String.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "u8":
		return TypeU8, nil
	case "u16":
		return TypeU16, nil
	case "u32":
		return TypeU32, nil
	case "f32":
		return TypeF32, nil
	default:
		return TypeInvalid, fmt.Errorf("format: unknown field type %q", s)
	}
}

// Value is a typed field value. Integers are held zero-extended in bits;
// floats are held as their IEEE-754 bit pattern.
type Value struct {
	Type FieldType
	bits uint32
}

// U8 returns a TypeU8 value.
func U8(v uint8) Value { return Value{Type: TypeU8, bits: uint32(v)} }

// U16 returns a TypeU16 value.
func U16(v uint16) Value { return Value{Type: TypeU16, bits: uint32(v)} }

// U32 returns a TypeU32 value.
func U32(v uint32) Value { return Value{Type: TypeU32, bits: v} }

// F32 returns a TypeF32 value.
func F32(v float32) Value { return Value{Type: TypeF32, bits: math.Float32bits(v)} }

// FromBits builds a value of type t from a raw little-endian payload.
func FromBits(t FieldType, bits uint32) Value { return Value{Type: t, bits: bits} }

// Uint returns the integer payload. Meaningless for TypeF32.
func (v Value) Uint() uint32 { return v.bits }

// Float returns the float payload. Meaningless for integer types.
func (v Value) Float() float32 { return math.Float32frombits(v.bits) }

// Matches compares v to want: integers exactly, floats within tol.
func (v Value) Matches(want Value, tol float64) bool {
	if v.Type != want.Type {
		return false
	}
	if v.Type == TypeF32 {
		return math.Abs(float64(v.Float())-float64(want.Float())) < tol
	}
	return v.bits == want.bits
}

func (v Value) String() string {
	switch v.Type {
	case TypeF32:
		return strconv.FormatFloat(float64(v.Float()), 'g', -1, 32)
	case TypeU8, TypeU16, TypeU32:
		return strconv.FormatUint(uint64(v.bits), 10)
	default:
		return "<invalid>"
	}
}
