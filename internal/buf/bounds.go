package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int.
func AddOverflowSafe(a, b int) (int, bool) {
	switch {
	case b > 0 && a > math.MaxInt-b:
		return 0, false
	case b < 0 && a < math.MinInt-b:
		return 0, false
	default:
		return a + b, true
	}
}

// MulOverflowSafe multiplies two non-negative ints, returning ok = false on
// overflow or when either operand is negative.
func MulOverflowSafe(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	if a == 0 || b == 0 {
		return 0, true
	}
	if a > math.MaxInt/b {
		return 0, false
	}
	return a * b, true
}

// RecordOffset computes base + index*stride + field without overflowing.
//
//	off, ok := buf.RecordOffset(0x2A0000, 32, 0x100, 0x34)
//	if !ok {
//	    return fmt.Errorf("weapon: offset overflow")
//	}
func RecordOffset(base, index, stride, field int) (int, bool) {
	if base < 0 || field < 0 {
		return 0, false
	}
	span, ok := MulOverflowSafe(index, stride)
	if !ok {
		return 0, false
	}
	off, ok := AddOverflowSafe(base, span)
	if !ok {
		return 0, false
	}
	return AddOverflowSafe(off, field)
}

// CheckRange validates that n bytes starting at off fit in a buffer of
// bufLen bytes. The error describes the failing condition.
func CheckRange(bufLen, off, n int) error {
	if off < 0 {
		return fmt.Errorf("negative offset: %d", off)
	}
	if n < 0 {
		return fmt.Errorf("negative width: %d", n)
	}
	end, ok := AddOverflowSafe(off, n)
	if !ok {
		return fmt.Errorf("overflow: offset=%d + width=%d", off, n)
	}
	if end > bufLen {
		return fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off, n int) ([]byte, bool) {
	if CheckRange(len(b), off, n) != nil {
		return nil, false
	}
	return b[off : off+n], true
}
