package dynamic

import (
	"fmt"

	"github.com/ssargent/packlog/pkg/schema"
)

// Array is a dynamic value for a fixed-size array descriptor.
type Array struct {
	desc  *schema.TypeDescriptor
	elems []Value
}

func newArray(desc *schema.TypeDescriptor) *Array {
	a := &Array{
		desc:  desc,
		elems: make([]Value, desc.Len()),
	}
	for i := range a.elems {
		a.elems[i] = New(desc.Elem())
	}
	return a
}

func (a *Array) sealed() {}

// Descriptor returns the array's descriptor.
func (a *Array) Descriptor() *schema.TypeDescriptor { return a.desc }

// Len returns the fixed element count.
func (a *Array) Len() int { return len(a.elems) }

// At returns the element at index i.
func (a *Array) At(i int) (Value, error) {
	if i < 0 || i >= len(a.elems) {
		return nil, fmt.Errorf("%w: %d of %s", ErrIndexOutOfRange, i, a.desc.Name())
	}
	return a.elems[i], nil
}

// StructAt returns element i as a nested *Struct.
func (a *Array) StructAt(i int) (*Struct, error) {
	v, err := a.At(i)
	if err != nil {
		return nil, err
	}
	s, ok := v.(*Struct)
	if !ok {
		return nil, fmt.Errorf("%w: element of %s is not a struct", ErrFieldTypeMismatch, a.desc.Name())
	}
	return s, nil
}

// ArrayAt returns element i as a nested *Array.
func (a *Array) ArrayAt(i int) (*Array, error) {
	v, err := a.At(i)
	if err != nil {
		return nil, err
	}
	sub, ok := v.(*Array)
	if !ok {
		return nil, fmt.Errorf("%w: element of %s is not an array", ErrFieldTypeMismatch, a.desc.Name())
	}
	return sub, nil
}

// Clone deep-copies the array and its elements.
func (a *Array) Clone() Value {
	c := &Array{
		desc:  a.desc,
		elems: make([]Value, len(a.elems)),
	}
	for i, v := range a.elems {
		c.elems[i] = v.Clone()
	}
	return c
}

// Unpack fills each element from its slot in buf.
func (a *Array) Unpack(buf []byte) error {
	if len(buf) < a.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, a.desc.Name())
	}

	elemSize := a.desc.Elem().PackedSize()
	for i, v := range a.elems {
		if err := v.Unpack(buf[i*elemSize:]); err != nil {
			return err
		}
	}
	return nil
}

// Pack writes each element into its slot in buf.
func (a *Array) Pack(buf []byte) error {
	if len(buf) < a.desc.PackedSize() {
		return fmt.Errorf("%w: %s", ErrShortBuffer, a.desc.Name())
	}

	elemSize := a.desc.Elem().PackedSize()
	for i, v := range a.elems {
		if err := v.Pack(buf[i*elemSize:]); err != nil {
			return err
		}
	}
	return nil
}

// GetAt returns element i as a scalar of type T.
func GetAt[T Prim](a *Array, i int) (T, error) {
	var zero T
	v, err := a.At(i)
	if err != nil {
		return zero, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, fmt.Errorf("%w: element of %s is not a scalar", ErrFieldTypeMismatch, a.desc.Name())
	}
	return ScalarGet[T](sc)
}

// SetAt stores v into element i. T must match the element primitive.
func SetAt[T Prim](a *Array, i int, val T) error {
	v, err := a.At(i)
	if err != nil {
		return err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return fmt.Errorf("%w: element of %s is not a scalar", ErrFieldTypeMismatch, a.desc.Name())
	}
	return ScalarSet(sc, val)
}

// ConvertAt returns element i converted to T.
func ConvertAt[T Prim](a *Array, i int) (T, error) {
	var zero T
	v, err := a.At(i)
	if err != nil {
		return zero, err
	}
	sc, ok := v.(*Scalar)
	if !ok {
		return zero, fmt.Errorf("%w: element of %s is not a scalar", ErrFieldTypeMismatch, a.desc.Name())
	}
	return ScalarConvert[T](sc)
}
