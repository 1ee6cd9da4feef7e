package packing

import (
	"bytes"
	"testing"
)

func TestPackBe_KnownVectors(t *testing.T) {
	testCases := []struct {
		name string
		pack func(buf []byte)
		want []byte
	}{
		{
			name: "uint16",
			pack: func(buf []byte) { PackU16(0x0201, buf) },
			want: []byte{0x02, 0x01},
		},
		{
			name: "uint32",
			pack: func(buf []byte) { PackU32(0x04030201, buf) },
			want: []byte{0x04, 0x03, 0x02, 0x01},
		},
		{
			name: "uint64",
			pack: func(buf []byte) { PackU64(0x0807060504030201, buf) },
			want: []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		},
		{
			name: "int64",
			pack: func(buf []byte) { PackI64(0x0807060504030201, buf) },
			want: []byte{0x08, 0x07, 0x06, 0x05, 0x04, 0x03, 0x02, 0x01},
		},
		{
			name: "int16 negative",
			pack: func(buf []byte) { PackI16(-2, buf) },
			want: []byte{0xFF, 0xFE},
		},
		{
			name: "float",
			pack: func(buf []byte) { PackF32(3.1415926, buf) },
			want: []byte{0x40, 0x49, 0x0F, 0xDA},
		},
		{
			name: "double",
			pack: func(buf []byte) { PackF64(3.1415926, buf) },
			want: []byte{0x40, 0x09, 0x21, 0xFB, 0x4D, 0x12, 0xD8, 0x4A},
		},
		{
			name: "bool true",
			pack: func(buf []byte) { PackBool(true, buf) },
			want: []byte{0x01},
		},
		{
			name: "bool false",
			pack: func(buf []byte) { PackBool(false, buf) },
			want: []byte{0x00},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, len(tc.want))
			tc.pack(buf)
			if !bytes.Equal(buf, tc.want) {
				t.Errorf("packed % X, want % X", buf, tc.want)
			}
		})
	}
}

func TestUnpackBe_RoundTrip(t *testing.T) {
	buf := make([]byte, 8)

	PackU16(0xBEEF, buf)
	if got := UnpackU16(buf); got != 0xBEEF {
		t.Errorf("uint16 round trip: got 0x%04X", got)
	}

	PackU32(0xDEADBEEF, buf)
	if got := UnpackU32(buf); got != 0xDEADBEEF {
		t.Errorf("uint32 round trip: got 0x%08X", got)
	}

	PackU64(0xFEEDFACEDEADBEEF, buf)
	if got := UnpackU64(buf); got != 0xFEEDFACEDEADBEEF {
		t.Errorf("uint64 round trip: got 0x%016X", got)
	}

	PackI8(-100, buf)
	if got := UnpackI8(buf); got != -100 {
		t.Errorf("int8 round trip: got %d", got)
	}

	PackI32(-123456789, buf)
	if got := UnpackI32(buf); got != -123456789 {
		t.Errorf("int32 round trip: got %d", got)
	}

	PackI64(-0x0807060504030201, buf)
	if got := UnpackI64(buf); got != -0x0807060504030201 {
		t.Errorf("int64 round trip: got %d", got)
	}

	PackF32(3.1415926, buf)
	if got := UnpackF32(buf); got != 3.1415926 {
		t.Errorf("float round trip: got %v", got)
	}

	PackF64(3.1415926, buf)
	if got := UnpackF64(buf); got != 3.1415926 {
		t.Errorf("double round trip: got %v", got)
	}
}

func TestUnpackBool_AnyNonZero(t *testing.T) {
	if !UnpackBool([]byte{0x02}) {
		t.Error("0x02 should decode true")
	}
	if UnpackBool([]byte{0x00}) {
		t.Error("0x00 should decode false")
	}
}

func TestUnpackBits(t *testing.T) {
	// field0: bits 0..2 = 6, field1: bits 3..7 = 27, field2: bits 8..16 = 264
	const word = 0x000108DE

	if got := UnpackBits(word, 0, 3); got != 6 {
		t.Errorf("field0: got %d, want 6", got)
	}
	if got := UnpackBits(word, 3, 5); got != 27 {
		t.Errorf("field1: got %d, want 27", got)
	}
	if got := UnpackBits(word, 8, 9); got != 264 {
		t.Errorf("field2: got %d, want 264", got)
	}
}

func TestPackBits_AssemblesWord(t *testing.T) {
	var word uint64
	word = PackBits(word, 6, 0, 3)
	word = PackBits(word, 27, 3, 5)
	word = PackBits(word, 264, 8, 9)

	if word != 0x000108DE {
		t.Errorf("got 0x%08X, want 0x000108DE", word)
	}
}

func TestPackBits_ClearsExisting(t *testing.T) {
	word := uint64(0xFFFFFFFFFFFFFFFF)
	word = PackBits(word, 0, 4, 8)

	if got := UnpackBits(word, 4, 8); got != 0 {
		t.Errorf("range not cleared: got %d", got)
	}
	if got := UnpackBits(word, 0, 4); got != 0xF {
		t.Errorf("low bits disturbed: got %X", got)
	}
	if got := UnpackBits(word, 12, 4); got != 0xF {
		t.Errorf("high bits disturbed: got %X", got)
	}
}

func TestSignExtend(t *testing.T) {
	testCases := []struct {
		name    string
		v       uint64
		bitSize uint
		want    int64
	}{
		{"positive stays", 0x05, 4, 5},
		{"high bit extends", 0x0F, 4, -1},
		{"minus two", 0x0E, 4, -2},
		{"eight bit min", 0x80, 8, -128},
		{"full width untouched", 0xFFFFFFFFFFFFFFFF, 64, -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SignExtend(tc.v, tc.bitSize); got != tc.want {
				t.Errorf("SignExtend(%#x, %d) = %d, want %d", tc.v, tc.bitSize, got, tc.want)
			}
		})
	}
}

func TestUnpackBitsSigned(t *testing.T) {
	// A 5-bit field holding -3 (0b11101) at offset 2.
	word := PackBits(0, 0x1D, 2, 5)

	if got := UnpackBitsSigned(word, 2, 5); got != -3 {
		t.Errorf("got %d, want -3", got)
	}
}
