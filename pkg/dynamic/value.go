// Package dynamic materializes runtime value trees for any descriptor in
// a schema builder. A value tree mirrors the shape of its descriptor and
// unpacks from (or packs into) the big-endian wire representation without
// generated code, which makes it the decode path for schema-driven
// consumers such as the log reader.
package dynamic

import (
	"fmt"
	"math"

	"github.com/ssargent/packlog/pkg/packing"
	"github.com/ssargent/packlog/pkg/schema"
)

// Value is a runtime value conforming to a type descriptor. The concrete
// types are *Scalar, *Struct, and *Array. A value owns its children and
// holds a non-owning reference to its descriptor, so it must not outlive
// the builder that produced the descriptor graph.
type Value interface {
	// Descriptor returns the type this value conforms to.
	Descriptor() *schema.TypeDescriptor

	// Unpack fills the tree from buf, interpreted as the packed
	// representation of the value's descriptor.
	Unpack(buf []byte) error

	// Pack writes the tree into buf in wire representation.
	Pack(buf []byte) error

	// Clone deep-copies the tree. Descriptor references are shared.
	Clone() Value

	sealed()
}

// New allocates a zeroed value tree for desc.
func New(desc *schema.TypeDescriptor) Value {
	switch desc.Kind() {
	case schema.KindArray:
		return newArray(desc)
	case schema.KindStruct, schema.KindBitfield:
		return newStruct(desc)
	default:
		return &Scalar{desc: desc}
	}
}

// Scalar holds one primitive or enum value. Integer payloads are stored
// two's-complement in bits (sign-extended for signed primitives); floats
// store their IEEE-754 bit pattern; bool stores 0 or 1.
type Scalar struct {
	desc *schema.TypeDescriptor
	bits uint64
}

func (s *Scalar) sealed() {}

// Descriptor returns the scalar's primitive or enum descriptor.
func (s *Scalar) Descriptor() *schema.TypeDescriptor { return s.desc }

// Prim returns the scalar's wire primitive.
func (s *Scalar) Prim() schema.PrimType { return s.desc.Prim() }

// Clone copies the scalar.
func (s *Scalar) Clone() Value {
	c := *s
	return &c
}

// Unpack reads the scalar from buf most-significant byte first.
func (s *Scalar) Unpack(buf []byte) error {
	if len(buf) < s.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, s.desc.Name())
	}

	switch s.desc.Prim() {
	case schema.U8:
		s.bits = uint64(packing.UnpackU8(buf))
	case schema.U16:
		s.bits = uint64(packing.UnpackU16(buf))
	case schema.U32:
		s.bits = uint64(packing.UnpackU32(buf))
	case schema.U64:
		s.bits = packing.UnpackU64(buf)
	case schema.I8:
		s.bits = uint64(int64(packing.UnpackI8(buf)))
	case schema.I16:
		s.bits = uint64(int64(packing.UnpackI16(buf)))
	case schema.I32:
		s.bits = uint64(int64(packing.UnpackI32(buf)))
	case schema.I64:
		s.bits = uint64(packing.UnpackI64(buf))
	case schema.Bool:
		s.bits = 0
		if packing.UnpackBool(buf) {
			s.bits = 1
		}
	case schema.F32:
		s.bits = uint64(math.Float32bits(packing.UnpackF32(buf)))
	case schema.F64:
		s.bits = math.Float64bits(packing.UnpackF64(buf))
	}
	return nil
}

// Pack writes the scalar into buf most-significant byte first.
func (s *Scalar) Pack(buf []byte) error {
	if len(buf) < s.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, s.desc.Name())
	}

	switch s.desc.Prim() {
	case schema.U8:
		packing.PackU8(uint8(s.bits), buf)
	case schema.U16:
		packing.PackU16(uint16(s.bits), buf)
	case schema.U32:
		packing.PackU32(uint32(s.bits), buf)
	case schema.U64:
		packing.PackU64(s.bits, buf)
	case schema.I8:
		packing.PackI8(int8(s.bits), buf)
	case schema.I16:
		packing.PackI16(int16(s.bits), buf)
	case schema.I32:
		packing.PackI32(int32(s.bits), buf)
	case schema.I64:
		packing.PackI64(int64(s.bits), buf)
	case schema.Bool:
		packing.PackBool(s.bits != 0, buf)
	case schema.F32:
		packing.PackF32(math.Float32frombits(uint32(s.bits)), buf)
	case schema.F64:
		packing.PackF64(math.Float64frombits(s.bits), buf)
	}
	return nil
}

// Prim is the set of Go types a scalar can hold.
type Prim interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~int8 | ~int16 | ~int32 | ~int64 |
		~bool | ~float32 | ~float64
}

// ScalarGet returns the scalar's value as T. The stored primitive must
// match T exactly; otherwise ErrFieldTypeMismatch.
func ScalarGet[T Prim](s *Scalar) (T, error) {
	var out T
	if !primMatches[T](s.desc.Prim()) {
		return out, fmt.Errorf("%w: %s holds %s", ErrFieldTypeMismatch, s.desc.Name(), s.desc.Prim())
	}

	switch p := any(&out).(type) {
	case *uint8:
		*p = uint8(s.bits)
	case *uint16:
		*p = uint16(s.bits)
	case *uint32:
		*p = uint32(s.bits)
	case *uint64:
		*p = s.bits
	case *int8:
		*p = int8(s.bits)
	case *int16:
		*p = int16(s.bits)
	case *int32:
		*p = int32(s.bits)
	case *int64:
		*p = int64(s.bits)
	case *bool:
		*p = s.bits != 0
	case *float32:
		*p = math.Float32frombits(uint32(s.bits))
	case *float64:
		*p = math.Float64frombits(s.bits)
	}
	return out, nil
}

// ScalarSet stores v into the scalar. The stored primitive must match T
// exactly; otherwise ErrFieldTypeMismatch.
func ScalarSet[T Prim](s *Scalar, v T) error {
	if !primMatches[T](s.desc.Prim()) {
		return fmt.Errorf("%w: %s holds %s", ErrFieldTypeMismatch, s.desc.Name(), s.desc.Prim())
	}

	switch p := any(v).(type) {
	case uint8:
		s.bits = uint64(p)
	case uint16:
		s.bits = uint64(p)
	case uint32:
		s.bits = uint64(p)
	case uint64:
		s.bits = p
	case int8:
		s.bits = uint64(int64(p))
	case int16:
		s.bits = uint64(int64(p))
	case int32:
		s.bits = uint64(int64(p))
	case int64:
		s.bits = uint64(p)
	case bool:
		s.bits = 0
		if p {
			s.bits = 1
		}
	case float32:
		s.bits = uint64(math.Float32bits(p))
	case float64:
		s.bits = math.Float64bits(p)
	}
	return nil
}

// ScalarConvert returns the scalar converted to T using Go's numeric
// conversion rules. Bool sources convert as 0/1; bool targets are true
// for any non-zero value.
func ScalarConvert[T Prim](s *Scalar) (T, error) {
	var out T

	prim := s.desc.Prim()
	switch p := any(&out).(type) {
	case *uint8:
		*p = uint8(convertBits(s.bits, prim))
	case *uint16:
		*p = uint16(convertBits(s.bits, prim))
	case *uint32:
		*p = uint32(convertBits(s.bits, prim))
	case *uint64:
		*p = convertBits(s.bits, prim)
	case *int8:
		*p = int8(convertBits(s.bits, prim))
	case *int16:
		*p = int16(convertBits(s.bits, prim))
	case *int32:
		*p = int32(convertBits(s.bits, prim))
	case *int64:
		*p = int64(convertBits(s.bits, prim))
	case *bool:
		*p = convertFloat(s.bits, prim) != 0
	case *float32:
		*p = float32(convertFloat(s.bits, prim))
	case *float64:
		*p = convertFloat(s.bits, prim)
	}
	return out, nil
}

// convertBits reduces a scalar payload to its integer value, truncating
// floats toward zero.
func convertBits(bits uint64, prim schema.PrimType) uint64 {
	switch prim {
	case schema.F32:
		return uint64(int64(math.Float32frombits(uint32(bits))))
	case schema.F64:
		return uint64(int64(math.Float64frombits(bits)))
	}
	return bits
}

// convertFloat widens a scalar payload to float64.
func convertFloat(bits uint64, prim schema.PrimType) float64 {
	switch prim {
	case schema.F32:
		return float64(math.Float32frombits(uint32(bits)))
	case schema.F64:
		return math.Float64frombits(bits)
	}
	if prim.Signed() {
		return float64(int64(bits))
	}
	return float64(bits)
}

func primMatches[T Prim](prim schema.PrimType) bool {
	var probe T
	switch any(probe).(type) {
	case uint8:
		return prim == schema.U8
	case uint16:
		return prim == schema.U16
	case uint32:
		return prim == schema.U32
	case uint64:
		return prim == schema.U64
	case int8:
		return prim == schema.I8
	case int16:
		return prim == schema.I16
	case int32:
		return prim == schema.I32
	case int64:
		return prim == schema.I64
	case bool:
		return prim == schema.Bool
	case float32:
		return prim == schema.F32
	case float64:
		return prim == schema.F64
	}
	return false
}
