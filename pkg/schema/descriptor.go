package schema

// TypeDescriptor is an immutable metadata node describing one wire type.
// Descriptors form a DAG owned by the Builder that parsed them; every
// other reference into the graph is a non-owning pointer whose lifetime
// is tied to the builder.

// Kind discriminates the closed set of descriptor variants.
type Kind int

const (
	KindPrimitive Kind = iota
	KindEnum
	KindStruct
	KindBitfield
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "Primitive"
	case KindEnum:
		return "Enum"
	case KindStruct:
		return "Struct"
	case KindBitfield:
		return "Bitfield"
	case KindArray:
		return "Array"
	}
	return "Unknown"
}

// PrimType identifies one of the eleven wire primitives.
type PrimType int

const (
	U8 PrimType = iota
	U16
	U32
	U64
	I8
	I16
	I32
	I64
	Bool
	F32
	F64
)

// Size returns the primitive's wire footprint in bytes.
func (p PrimType) Size() int {
	switch p {
	case U8, I8, Bool:
		return 1
	case U16, I16:
		return 2
	case U32, I32, F32:
		return 4
	case U64, I64, F64:
		return 8
	}
	return 0
}

// Signed reports whether the primitive is a signed integer.
func (p PrimType) Signed() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	}
	return false
}

// Float reports whether the primitive is a floating point type.
func (p PrimType) Float() bool {
	return p == F32 || p == F64
}

func (p PrimType) String() string {
	switch p {
	case U8:
		return "uint8"
	case U16:
		return "uint16"
	case U32:
		return "uint32"
	case U64:
		return "uint64"
	case I8:
		return "int8"
	case I16:
		return "int16"
	case I32:
		return "int32"
	case I64:
		return "int64"
	case Bool:
		return "bool"
	case F32:
		return "float"
	case F64:
		return "double"
	}
	return "unknown"
}

// TypeDescriptor describes a primitive, enum, struct, bitfield, or array.
// Only the accessors valid for the descriptor's Kind return meaningful
// values; see each accessor's doc.
type TypeDescriptor struct {
	name       string
	kind       Kind
	packedSize int
	uid        uint32

	// Primitive, Enum, and the Bitfield container word.
	prim PrimType

	// Enum value names in declaration order.
	values []string

	// Struct and Bitfield fields in declaration order.
	fields []*Field
	byName map[string]*Field

	// Array element and length.
	elem     *TypeDescriptor
	arrayLen int

	message bool
}

// Name returns the canonical type name, unique within a builder.
func (d *TypeDescriptor) Name() string { return d.name }

// Kind returns the descriptor variant.
func (d *TypeDescriptor) Kind() Kind { return d.kind }

// PackedSize returns the wire footprint in bytes.
func (d *TypeDescriptor) PackedSize() int { return d.packedSize }

// UID returns the 32-bit structural hash of the descriptor subgraph.
func (d *TypeDescriptor) UID() uint32 { return d.uid }

// Prim returns the underlying primitive. Valid for KindPrimitive,
// KindEnum (storage width), and KindBitfield (container word).
func (d *TypeDescriptor) Prim() PrimType { return d.prim }

// EnumValues returns the enum's value names in declaration order.
func (d *TypeDescriptor) EnumValues() []string { return d.values }

// Fields returns struct or bitfield fields in declaration order.
func (d *TypeDescriptor) Fields() []*Field { return d.fields }

// Field looks a field up by name; nil if the descriptor has no such
// field or is not a struct or bitfield.
func (d *TypeDescriptor) Field(name string) *Field { return d.byName[name] }

// Elem returns the array element descriptor; nil for non-arrays.
func (d *TypeDescriptor) Elem() *TypeDescriptor { return d.elem }

// Len returns the array length; zero for non-arrays.
func (d *TypeDescriptor) Len() int { return d.arrayLen }

// IsMessage reports whether the struct is registered for wire framing
// and carries the implicit SsHeader first field.
func (d *TypeDescriptor) IsMessage() bool { return d.message }

// Field describes one member of a struct or bitfield. Offset is the byte
// offset within a struct parent; BitOffset and BitSize position a
// bitfield member within its container word.
type Field struct {
	name      string
	typ       *TypeDescriptor
	uid       uint32
	offset    int
	bitOffset int
	bitSize   int
}

// Name returns the field name, unique within its parent.
func (f *Field) Name() string { return f.name }

// Type returns the field's type descriptor.
func (f *Field) Type() *TypeDescriptor { return f.typ }

// UID returns the field's structural hash.
func (f *Field) UID() uint32 { return f.uid }

// Offset returns the byte offset within the parent struct.
func (f *Field) Offset() int { return f.offset }

// BitOffset returns the LSB-indexed bit offset within the container word.
func (f *Field) BitOffset() int { return f.bitOffset }

// BitSize returns the field width in bits; zero for struct fields.
func (f *Field) BitSize() int { return f.bitSize }
