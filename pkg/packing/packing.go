package packing

import (
	"encoding/binary"
	"math"
)

// Big-endian pack/unpack for every wire primitive. Callers guarantee the
// buffer holds at least the primitive's width; these mirror the layout
// produced by the static encoders and allocate nothing.

// PackU8 writes v into buf[0].
func PackU8(v uint8, buf []byte) {
	buf[0] = v
}

// PackU16 writes v into buf[0:2] most-significant byte first.
func PackU16(v uint16, buf []byte) {
	binary.BigEndian.PutUint16(buf, v)
}

// PackU32 writes v into buf[0:4] most-significant byte first.
func PackU32(v uint32, buf []byte) {
	binary.BigEndian.PutUint32(buf, v)
}

// PackU64 writes v into buf[0:8] most-significant byte first.
func PackU64(v uint64, buf []byte) {
	binary.BigEndian.PutUint64(buf, v)
}

// PackI8 writes v into buf[0].
func PackI8(v int8, buf []byte) {
	buf[0] = uint8(v)
}

// PackI16 writes v into buf[0:2] most-significant byte first.
func PackI16(v int16, buf []byte) {
	binary.BigEndian.PutUint16(buf, uint16(v))
}

// PackI32 writes v into buf[0:4] most-significant byte first.
func PackI32(v int32, buf []byte) {
	binary.BigEndian.PutUint32(buf, uint32(v))
}

// PackI64 writes v into buf[0:8] most-significant byte first.
func PackI64(v int64, buf []byte) {
	binary.BigEndian.PutUint64(buf, uint64(v))
}

// PackBool writes a single byte, 0x01 for true and 0x00 for false.
func PackBool(v bool, buf []byte) {
	if v {
		buf[0] = 1
	} else {
		buf[0] = 0
	}
}

// PackF32 writes the IEEE-754 bit pattern of v into buf[0:4].
func PackF32(v float32, buf []byte) {
	binary.BigEndian.PutUint32(buf, math.Float32bits(v))
}

// PackF64 writes the IEEE-754 bit pattern of v into buf[0:8].
func PackF64(v float64, buf []byte) {
	binary.BigEndian.PutUint64(buf, math.Float64bits(v))
}

// UnpackU8 reads buf[0].
func UnpackU8(buf []byte) uint8 {
	return buf[0]
}

// UnpackU16 reads buf[0:2] most-significant byte first.
func UnpackU16(buf []byte) uint16 {
	return binary.BigEndian.Uint16(buf)
}

// UnpackU32 reads buf[0:4] most-significant byte first.
func UnpackU32(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf)
}

// UnpackU64 reads buf[0:8] most-significant byte first.
func UnpackU64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf)
}

// UnpackI8 reads buf[0].
func UnpackI8(buf []byte) int8 {
	return int8(buf[0])
}

// UnpackI16 reads buf[0:2] most-significant byte first.
func UnpackI16(buf []byte) int16 {
	return int16(binary.BigEndian.Uint16(buf))
}

// UnpackI32 reads buf[0:4] most-significant byte first.
func UnpackI32(buf []byte) int32 {
	return int32(binary.BigEndian.Uint32(buf))
}

// UnpackI64 reads buf[0:8] most-significant byte first.
func UnpackI64(buf []byte) int64 {
	return int64(binary.BigEndian.Uint64(buf))
}

// UnpackBool reads buf[0]; any non-zero byte is true.
func UnpackBool(buf []byte) bool {
	return buf[0] != 0
}

// UnpackF32 reads the IEEE-754 bit pattern from buf[0:4].
func UnpackF32(buf []byte) float32 {
	return math.Float32frombits(binary.BigEndian.Uint32(buf))
}

// UnpackF64 reads the IEEE-754 bit pattern from buf[0:8].
func UnpackF64(buf []byte) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(buf))
}
