package buf

import (
	"math"
	"strings"
	"testing"
)

func TestAddOverflowSafe(t *testing.T) {
	if sum, ok := AddOverflowSafe(10, 5); !ok || sum != 15 {
		t.Fatalf("AddOverflowSafe(10,5)=%d,%v want 15,true", sum, ok)
	}
	if _, ok := AddOverflowSafe(math.MaxInt, 1); ok {
		t.Fatalf("expected overflow when adding to MaxInt")
	}
	if _, ok := AddOverflowSafe(math.MinInt, -1); ok {
		t.Fatalf("expected underflow when subtracting from MinInt")
	}
}

func TestMulOverflowSafe(t *testing.T) {
	if got, ok := MulOverflowSafe(32, 0x100); !ok || got != 0x2000 {
		t.Fatalf("MulOverflowSafe(32,0x100)=%d,%v want 0x2000,true", got, ok)
	}
	if got, ok := MulOverflowSafe(0, math.MaxInt); !ok || got != 0 {
		t.Fatalf("zero operand should give 0,true; got %d,%v", got, ok)
	}
	if _, ok := MulOverflowSafe(math.MaxInt, 2); ok {
		t.Fatalf("expected overflow for MaxInt*2")
	}
	if _, ok := MulOverflowSafe(-1, 4); ok {
		t.Fatalf("negative operand should be rejected")
	}
}

func TestRecordOffset(t *testing.T) {
	off, ok := RecordOffset(0x2A0000, 32, 0x100, 0x34)
	if !ok || off != 0x2A2034 {
		t.Fatalf("RecordOffset = 0x%X,%v want 0x2A2034,true", off, ok)
	}
	if _, ok := RecordOffset(math.MaxInt-4, 1, 8, 0); ok {
		t.Fatalf("expected overflow")
	}
	if _, ok := RecordOffset(0, 1, 8, -1); ok {
		t.Fatalf("negative field offset should be rejected")
	}
}

func TestCheckRange(t *testing.T) {
	if err := CheckRange(8, 4, 4); err != nil {
		t.Fatalf("CheckRange(8,4,4) unexpected error: %v", err)
	}
	tests := []struct {
		off, n int
		want   string
	}{
		{-1, 1, "negative offset"},
		{0, -1, "negative width"},
		{math.MaxInt, 1, "overflow"},
		{5, 4, "bounds"},
	}
	for _, tt := range tests {
		err := CheckRange(8, tt.off, tt.n)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Fatalf("CheckRange(8,%d,%d) = %v, want %q", tt.off, tt.n, err, tt.want)
		}
	}
}

func TestSlice(t *testing.T) {
	data := []byte{0, 1, 2, 3, 4}
	if got, ok := Slice(data, 1, 3); !ok || len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("Slice returned unexpected result: %v, %v", got, ok)
	}
	if _, ok := Slice(data, 4, 2); ok {
		t.Fatalf("Slice should fail when extending beyond len")
	}
	if _, ok := Slice(data, 2, 4); ok {
		t.Fatalf("Slice should fail for out-of-bounds range")
	}
	if _, ok := Slice(data, -1, 1); ok {
		t.Fatalf("Slice should reject negative offset")
	}
	if _, ok := Slice(data, 1, -1); ok {
		t.Fatalf("Slice should reject negative length")
	}
}
