package dynamic

import (
	"math"

	"github.com/ssargent/packlog/pkg/schema"
)

// Native converts a value tree into plain Go values suitable for JSON or
// YAML rendering: scalars become their Go primitive, enums their value
// name (falling back to the raw index if out of range), structs become
// maps keyed by field name, and arrays become slices.
func Native(v Value) any {
	switch val := v.(type) {
	case *Scalar:
		return scalarNative(val)
	case *Array:
		out := make([]any, val.Len())
		for i := range out {
			elem, _ := val.At(i)
			out[i] = Native(elem)
		}
		return out
	case *Struct:
		out := make(map[string]any, len(val.vals))
		for i, f := range val.desc.Fields() {
			out[f.Name()] = Native(val.vals[i])
		}
		return out
	}
	return nil
}

func scalarNative(s *Scalar) any {
	if s.desc.Kind() == schema.KindEnum {
		idx := int64(s.bits)
		values := s.desc.EnumValues()
		if idx >= 0 && idx < int64(len(values)) {
			return values[idx]
		}
		return idx
	}

	switch s.desc.Prim() {
	case schema.U8:
		return uint8(s.bits)
	case schema.U16:
		return uint16(s.bits)
	case schema.U32:
		return uint32(s.bits)
	case schema.U64:
		return s.bits
	case schema.I8:
		return int8(s.bits)
	case schema.I16:
		return int16(s.bits)
	case schema.I32:
		return int32(s.bits)
	case schema.I64:
		return int64(s.bits)
	case schema.Bool:
		return s.bits != 0
	case schema.F32:
		return math.Float32frombits(uint32(s.bits))
	case schema.F64:
		return math.Float64frombits(s.bits)
	}
	return nil
}
