package util

import "testing"

func TestLEBytesToU32(t *testing.T) {
	b := []byte{0x78, 0x56, 0x34, 0x12}
	if got := LEBytesToU32(b); got != 0x12345678 {
		t.Errorf("LEBytesToU32(%v) = 0x%08x, want 0x12345678", b, got)
	}
}

func TestLEBytesToU32Short(t *testing.T) {
	if LEBytesToU32([]byte{0x01}) != 0 {
		t.Error("LEBytesToU32 with short slice should return 0")
	}
}

func TestLEBytesToU16(t *testing.T) {
	b := []byte{0xCD, 0xAB}
	if got := LEBytesToU16(b); got != 0xABCD {
		t.Errorf("LEBytesToU16(%v) = 0x%04x, want 0xABCD", b, got)
	}
}

func TestLEBytesToU16Short(t *testing.T) {
	if LEBytesToU16([]byte{}) != 0 {
		t.Error("LEBytesToU16 with short slice should return 0")
	}
}
