package uid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reference CRCs generated from https://crccalc.com/

func TestChecksum_KnownVectors(t *testing.T) {
	input := []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	assert.Equal(t, uint32(0x456CD746), Checksum(input))

	assert.Equal(t, uint32(0x1C291CA3), ChecksumString("Hello World!"))
}

func TestPrimitive_CanonicalString(t *testing.T) {
	assert.Equal(t, ChecksumString("uint8, 1"), Primitive("uint8", 1))
	assert.Equal(t, ChecksumString("double, 8"), Primitive("double", 8))
}

func TestArray_UsesDecimalElementUID(t *testing.T) {
	elem := Primitive("uint8", 1)
	assert.Equal(t, ChecksumString("2904516448, 4"), Array(2904516448, 4))
	assert.NotEqual(t, Array(elem, 3), Array(elem, 4))
}

func TestEnum_ValueOrderMatters(t *testing.T) {
	v0 := EnumValue("kValueA", 0)
	v1 := EnumValue("kValueB", 1)

	assert.NotEqual(t, Enum("E", []uint32{v0, v1}), Enum("E", []uint32{v1, v0}))
	assert.NotEqual(t, EnumValue("kValueA", 0), EnumValue("kValueA", 1))
}

func TestStruct_NameAndFieldsBound(t *testing.T) {
	f0 := StructField("count", Primitive("uint32", 4))
	f1 := StructField("flags", Primitive("uint8", 1))

	assert.NotEqual(t, Struct("A", []uint32{f0, f1}), Struct("B", []uint32{f0, f1}))
	assert.NotEqual(t, Struct("A", []uint32{f0, f1}), Struct("A", []uint32{f1, f0}))
	assert.Equal(t, Struct("A", []uint32{f0, f1}), Struct("A", []uint32{f0, f1}))
}

func TestBitfieldField_HashesBitSize(t *testing.T) {
	assert.Equal(t, ChecksumString("flag, 1"), BitfieldField("flag", 1))
	assert.NotEqual(t, BitfieldField("flag", 1), BitfieldField("flag", 2))
}

func TestDeterminism(t *testing.T) {
	for i := 0; i < 3; i++ {
		assert.Equal(t, Primitive("int16", 2), Primitive("int16", 2))
		assert.Equal(t, Bitfield("B", []uint32{1, 2, 3}), Bitfield("B", []uint32{1, 2, 3}))
	}
}
