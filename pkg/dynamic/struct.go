package dynamic

import (
	"fmt"

	"github.com/ssargent/packlog/pkg/packing"
	"github.com/ssargent/packlog/pkg/schema"
)

// Struct is a dynamic value for a struct or bitfield descriptor. Children
// are kept in field declaration order; bitfield children are always
// scalars of the field's container-slice primitive.
type Struct struct {
	desc *schema.TypeDescriptor
	vals []Value
	idx  map[*schema.Field]int
}

func newStruct(desc *schema.TypeDescriptor) *Struct {
	fields := desc.Fields()
	s := &Struct{
		desc: desc,
		vals: make([]Value, len(fields)),
		idx:  make(map[*schema.Field]int, len(fields)),
	}
	for i, f := range fields {
		s.vals[i] = New(f.Type())
		s.idx[f] = i
	}
	return s
}

// NewStruct allocates a zeroed value tree for a struct or bitfield
// descriptor.
func NewStruct(desc *schema.TypeDescriptor) (*Struct, error) {
	if desc.Kind() != schema.KindStruct && desc.Kind() != schema.KindBitfield {
		return nil, fmt.Errorf("%w: %s is a %s, not a struct", ErrFieldTypeMismatch, desc.Name(), desc.Kind())
	}
	return newStruct(desc), nil
}

func (s *Struct) sealed() {}

// Descriptor returns the struct's descriptor.
func (s *Struct) Descriptor() *schema.TypeDescriptor { return s.desc }

// Clone deep-copies the struct and its children.
func (s *Struct) Clone() Value {
	c := &Struct{
		desc: s.desc,
		vals: make([]Value, len(s.vals)),
		idx:  s.idx,
	}
	for i, v := range s.vals {
		c.vals[i] = v.Clone()
	}
	return c
}

// Get returns the child value for the named field, failing with
// ErrFieldNotFound if the descriptor has no such field.
func (s *Struct) Get(name string) (Value, error) {
	f := s.desc.Field(name)
	if f == nil {
		return nil, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, name, s.desc.Name())
	}
	return s.vals[s.idx[f]], nil
}

// GetIf returns the child value for the named field, or nil if absent.
func (s *Struct) GetIf(name string) Value {
	f := s.desc.Field(name)
	if f == nil {
		return nil
	}
	return s.vals[s.idx[f]]
}

// GetField returns the child value for a field descriptor reference.
func (s *Struct) GetField(f *schema.Field) (Value, error) {
	i, ok := s.idx[f]
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s", ErrFieldNotFound, f.Name(), s.desc.Name())
	}
	return s.vals[i], nil
}

// Struct returns the named field as a nested *Struct, failing with
// ErrFieldTypeMismatch if the child is not a struct or bitfield value.
func (s *Struct) Struct(name string) (*Struct, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Struct)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s is not a struct", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	return sub, nil
}

// Array returns the named field as an *Array, failing with
// ErrFieldTypeMismatch if the child is not an array value.
func (s *Struct) Array(name string) (*Array, error) {
	v, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	arr, ok := v.(*Array)
	if !ok {
		return nil, fmt.Errorf("%w: %s in %s is not an array", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	return arr, nil
}

// Unpack fills the struct from buf, interpreted as the packed
// representation of the struct's descriptor.
func (s *Struct) Unpack(buf []byte) error {
	if len(buf) < s.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, s.desc.Name())
	}

	if s.desc.Kind() == schema.KindBitfield {
		return s.unpackBitfield(buf)
	}

	for i, f := range s.desc.Fields() {
		if err := s.vals[i].Unpack(buf[f.Offset():]); err != nil {
			return err
		}
	}
	return nil
}

// Pack writes the struct into buf in wire representation.
func (s *Struct) Pack(buf []byte) error {
	if len(buf) < s.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, s.desc.Name())
	}

	if s.desc.Kind() == schema.KindBitfield {
		return s.packBitfield(buf)
	}

	for i, f := range s.desc.Fields() {
		if err := s.vals[i].Pack(buf[f.Offset():]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) unpackBitfield(buf []byte) error {
	word := unpackWord(buf, s.desc.Prim())

	for i, f := range s.desc.Fields() {
		child := s.vals[i].(*Scalar)
		child.bits = packing.UnpackBits(word, uint(f.BitOffset()), uint(f.BitSize()))
	}
	return nil
}

func (s *Struct) packBitfield(buf []byte) error {
	var word uint64
	for i, f := range s.desc.Fields() {
		child := s.vals[i].(*Scalar)
		word = packing.PackBits(word, child.bits, uint(f.BitOffset()), uint(f.BitSize()))
	}

	packWord(word, buf, s.desc.Prim())
	return nil
}

func unpackWord(buf []byte, prim schema.PrimType) uint64 {
	switch prim {
	case schema.U8:
		return uint64(packing.UnpackU8(buf))
	case schema.U16:
		return uint64(packing.UnpackU16(buf))
	case schema.U32:
		return uint64(packing.UnpackU32(buf))
	}
	return packing.UnpackU64(buf)
}

func packWord(word uint64, buf []byte, prim schema.PrimType) {
	switch prim {
	case schema.U8:
		packing.PackU8(uint8(word), buf)
	case schema.U16:
		packing.PackU16(uint16(word), buf)
	case schema.U32:
		packing.PackU32(uint32(word), buf)
	default:
		packing.PackU64(word, buf)
	}
}

// Get returns the named scalar field as T. Fails with ErrFieldNotFound
// for missing fields, ErrFieldTypeMismatch when T does not match the
// stored primitive or the field is a container.
func Get[T Prim](s *Struct, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, fmt.Errorf("%w: %s in %s is not a scalar", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	return ScalarGet[T](sc)
}

// GetIf is Get with a found flag instead of ErrFieldNotFound; a type
// mismatch on a present field still fails.
func GetIf[T Prim](s *Struct, name string) (T, bool, error) {
	var zero T
	v := s.GetIf(name)
	if v == nil {
		return zero, false, nil
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s in %s is not a scalar", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	out, err := ScalarGet[T](sc)
	return out, err == nil, err
}

// Set stores v into the named scalar field. T must match the stored
// primitive exactly.
func Set[T Prim](s *Struct, name string, v T) error {
	val, err := s.Get(name)
	if err != nil {
		return err
	}
	sc, ok := val.(*Scalar)
	if !ok {
		return fmt.Errorf("%w: %s in %s is not a scalar", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	return ScalarSet(sc, v)
}

// Convert returns the named scalar field converted to T. Container
// fields fail with ErrFieldTypeMismatch.
func Convert[T Prim](s *Struct, name string) (T, error) {
	var zero T
	v, err := s.Get(name)
	if err != nil {
		return zero, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, fmt.Errorf("%w: %s in %s is not a scalar", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	return ScalarConvert[T](sc)
}

// ConvertIf is Convert with a found flag instead of ErrFieldNotFound.
func ConvertIf[T Prim](s *Struct, name string) (T, bool, error) {
	var zero T
	v := s.GetIf(name)
	if v == nil {
		return zero, false, nil
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, false, fmt.Errorf("%w: %s in %s is not a scalar", ErrFieldTypeMismatch, name, s.desc.Name())
	}
	out, err := ScalarConvert[T](sc)
	return out, err == nil, err
}
