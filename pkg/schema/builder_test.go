package schema

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSpec = `
Enum1Bytes:
  type: Enum
  values:
    - kValue0:
    - kValue1:
    - kValue2:
Enum1BytesTest:
  type: Message
  fields:
    - enumeration: Enum1Bytes
Bitfield2Bytes:
  type: Bitfield
  fields:
    - field0: 3
    - field1: 7
Bitfield4Bytes:
  type: Bitfield
  fields:
    - field0: 3
    - field1: 5
    - field2: 9
Bitfield4BytesTest:
  type: Message
  fields:
    - bitfield: Bitfield4Bytes
PrimitiveTest:
  type: Message
  fields:
    - uint8: uint8
    - uint16: uint16
    - uint32: uint32
    - uint64: uint64
    - int8: int8
    - int16: int16
    - int32: int32
    - int64: int64
    - boolean: bool
    - float_type: float
    - double_type: double
ArrayElem:
  type: Struct
  fields:
    - field1: uint8
    - field2: uint16
ArrayTest:
  type: Message
  fields:
    - array_1d: [ArrayElem, 3]
    - array_3d: [[[ArrayElem, 3], 2], 1]
`

func TestNewBuilder_SeedsBuiltins(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	for name, size := range map[string]int{
		"uint8": 1, "uint16": 2, "uint32": 4, "uint64": 8,
		"int8": 1, "int16": 2, "int32": 4, "int64": 8,
		"bool": 1, "float": 4, "double": 8,
	} {
		d := b.Type(name)
		require.NotNil(t, d, name)
		assert.Equal(t, KindPrimitive, d.Kind())
		assert.Equal(t, size, d.PackedSize(), name)
	}

	header := b.Type(HeaderTypeName)
	require.NotNil(t, header)
	assert.Equal(t, HeaderSize, header.PackedSize())
	assert.Len(t, header.Fields(), 2)
	assert.False(t, header.IsMessage())
}

func TestNewBuilder_PrimitiveTestLayout(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	msg := b.Type("PrimitiveTest")
	require.NotNil(t, msg)
	assert.Equal(t, KindStruct, msg.Kind())
	assert.True(t, msg.IsMessage())
	assert.Equal(t, 49, msg.PackedSize())

	wantOffsets := map[string]int{
		HeaderFieldName: 0,
		"uint8":         6,
		"uint16":        7,
		"uint32":        9,
		"uint64":        13,
		"int8":          21,
		"int16":         22,
		"int32":         24,
		"int64":         28,
		"boolean":       36,
		"float_type":    37,
		"double_type":   41,
	}
	for name, offset := range wantOffsets {
		f := msg.Field(name)
		require.NotNil(t, f, name)
		assert.Equal(t, offset, f.Offset(), name)
	}

	// Offsets are the running sum of prior field sizes.
	running := 0
	for _, f := range msg.Fields() {
		assert.Equal(t, running, f.Offset(), f.Name())
		running += f.Type().PackedSize()
	}
	assert.Equal(t, msg.PackedSize(), running)
}

func TestNewBuilder_MessageHeaderImplicit(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	msg := b.Type("Enum1BytesTest")
	require.NotNil(t, msg)
	require.NotEmpty(t, msg.Fields())
	assert.Equal(t, HeaderFieldName, msg.Fields()[0].Name())
	assert.Equal(t, b.Type(HeaderTypeName), msg.Fields()[0].Type())
	assert.Equal(t, HeaderSize+1, msg.PackedSize())
}

func TestNewBuilder_EnumWidths(t *testing.T) {
	spec := func(values int) []byte {
		var sb strings.Builder
		sb.WriteString("Wide:\n  type: Enum\n  values:\n")
		for i := 0; i < values; i++ {
			fmt.Fprintf(&sb, "    - kValue%d:\n", i)
		}
		return []byte(sb.String())
	}

	b, err := NewBuilder(spec(127))
	require.NoError(t, err)
	assert.Equal(t, I8, b.Type("Wide").Prim())
	assert.Equal(t, 1, b.Type("Wide").PackedSize())

	b, err = NewBuilder(spec(128))
	require.NoError(t, err)
	assert.Equal(t, I16, b.Type("Wide").Prim())
	assert.Equal(t, 2, b.Type("Wide").PackedSize())
}

func TestNewBuilder_EnumValuesOrdered(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	e := b.Type("Enum1Bytes")
	require.NotNil(t, e)
	assert.Equal(t, KindEnum, e.Kind())
	assert.Equal(t, []string{"kValue0", "kValue1", "kValue2"}, e.EnumValues())
}

func TestNewBuilder_BitfieldLayout(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	bf := b.Type("Bitfield4Bytes")
	require.NotNil(t, bf)
	assert.Equal(t, KindBitfield, bf.Kind())
	assert.Equal(t, U32, bf.Prim())
	assert.Equal(t, 4, bf.PackedSize())

	fields := bf.Fields()
	require.Len(t, fields, 3)

	assert.Equal(t, 0, fields[0].BitOffset())
	assert.Equal(t, 3, fields[0].BitSize())
	assert.Equal(t, 3, fields[1].BitOffset())
	assert.Equal(t, 5, fields[1].BitSize())
	assert.Equal(t, 8, fields[2].BitOffset())
	assert.Equal(t, 9, fields[2].BitSize())

	// Field slice primitives track each field's own width.
	assert.Equal(t, U8, fields[0].Type().Prim())
	assert.Equal(t, U16, fields[2].Type().Prim())

	// 10 bits fit a two byte container.
	small := b.Type("Bitfield2Bytes")
	require.NotNil(t, small)
	assert.Equal(t, U16, small.Prim())
	assert.Equal(t, 2, small.PackedSize())
}

func TestNewBuilder_ArrayInterning(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	inner := b.Type("ArrayElem[3]")
	require.NotNil(t, inner)
	assert.Equal(t, 9, inner.PackedSize())

	mid := b.Type("ArrayElem[3][2]")
	require.NotNil(t, mid)
	assert.Equal(t, 18, mid.PackedSize())

	outer := b.Type("ArrayElem[3][2][1]")
	require.NotNil(t, outer)
	assert.Equal(t, 18, outer.PackedSize())

	// array_1d resolved to the same interned node as array_3d's
	// innermost dimension.
	msg := b.Type("ArrayTest")
	require.NotNil(t, msg)
	assert.Same(t, inner, msg.Field("array_1d").Type())
	assert.Same(t, outer, msg.Field("array_3d").Type())
	assert.Same(t, mid, outer.Elem())
	assert.Same(t, inner, mid.Elem())
}

func TestNewBuilder_PackedSizeClosure(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	for _, d := range b.Types() {
		switch d.Kind() {
		case KindStruct:
			sum := 0
			for _, f := range d.Fields() {
				sum += f.Type().PackedSize()
			}
			assert.Equal(t, sum, d.PackedSize(), d.Name())
		case KindArray:
			assert.Equal(t, d.Elem().PackedSize()*d.Len(), d.PackedSize(), d.Name())
		case KindBitfield:
			assert.Contains(t, []int{1, 2, 4, 8}, d.PackedSize(), d.Name())
			bits := 0
			for _, f := range d.Fields() {
				bits += f.BitSize()
			}
			assert.GreaterOrEqual(t, 8*d.PackedSize(), bits, d.Name())
		}
	}
}

func TestNewBuilder_UIDDeterminism(t *testing.T) {
	b1, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)
	b2, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	types1 := b1.Types()
	types2 := b2.Types()
	require.Equal(t, len(types1), len(types2))

	for i := range types1 {
		assert.Equal(t, types1[i].Name(), types2[i].Name())
		assert.Equal(t, types1[i].UID(), types2[i].UID(), types1[i].Name())
	}
}

func TestNewBuilder_NameUniqueness(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, d := range b.Types() {
		assert.False(t, seen[d.Name()], d.Name())
		seen[d.Name()] = true
	}
}

func TestNewBuilder_MessageUIDIndex(t *testing.T) {
	b, err := NewBuilder([]byte(testSpec))
	require.NoError(t, err)

	for _, msg := range b.Messages() {
		assert.Same(t, msg, b.MessageByUID(msg.UID()))
	}
	assert.Nil(t, b.MessageByUID(0xFFFFFFFF))

	// Non-message types never enter the index.
	assert.Len(t, b.Messages(), 4)
}

func TestNewBuilder_MetadataSkipped(t *testing.T) {
	spec := `
Sampled:
  type: Message
  _description: metadata on the type map is fine
  fields:
    - count: uint32
      _units: ticks
    - _note: ignored
`
	// The _units key rides alongside its field; the _note entry is
	// metadata only and contributes no field.
	b, err := NewBuilder([]byte(spec))
	require.NoError(t, err)

	msg := b.Type("Sampled")
	require.NotNil(t, msg)
	require.Len(t, msg.Fields(), 2)
	assert.Equal(t, "count", msg.Fields()[1].Name())
}

func TestNewBuilder_UIDMapParsed(t *testing.T) {
	spec := testSpec + `
SsMessageUidMap:
  PrimitiveTest: 12345
`
	b, err := NewBuilder([]byte(spec))
	require.NoError(t, err)

	require.NotNil(t, b.DeclaredUIDMap())
	assert.Equal(t, uint32(12345), b.DeclaredUIDMap()["PrimitiveTest"])
}

func TestNewBuilder_HeaderRedeclarationTolerated(t *testing.T) {
	spec := `
SsHeader:
  type: Struct
  fields:
    - uid: uint32
    - len: uint16
Ping:
  type: Message
  fields:
    - seq: uint32
`
	b, err := NewBuilder([]byte(spec))
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, b.Type(HeaderTypeName).PackedSize())
}

func TestNewBuilder_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		spec    string
		wantErr error
	}{
		{
			name: "unknown type reference",
			spec: `
Bad:
  type: Struct
  fields:
    - field: NoSuchType
`,
			wantErr: ErrUnknownType,
		},
		{
			name: "unknown array element",
			spec: `
Bad:
  type: Struct
  fields:
    - field: [NoSuchType, 3]
`,
			wantErr: ErrUnknownType,
		},
		{
			name: "bitfield overflow",
			spec: `
Bad:
  type: Bitfield
  fields:
    - field0: 33
    - field1: 32
`,
			wantErr: ErrBitfieldOverflow,
		},
		{
			name: "duplicate type",
			spec: `
Dup:
  type: Struct
  fields:
    - a: uint8
Dup:
  type: Struct
  fields:
    - b: uint8
`,
			wantErr: ErrDuplicateType,
		},
		{
			name: "duplicate field",
			spec: `
Bad:
  type: Struct
  fields:
    - a: uint8
    - a: uint16
`,
			wantErr: ErrDuplicateField,
		},
		{
			name: "duplicate enum value",
			spec: `
Bad:
  type: Enum
  values:
    - kValue0:
    - kValue0:
`,
			wantErr: ErrDuplicateField,
		},
		{
			name: "zero array length",
			spec: `
Bad:
  type: Struct
  fields:
    - field: [uint8, 0]
`,
			wantErr: ErrBadArrayLen,
		},
		{
			name: "unrecognized type keyword",
			spec: `
Bad:
  type: Union
  fields:
    - a: uint8
`,
			wantErr: ErrSchemaParse,
		},
		{
			name:    "malformed yaml",
			spec:    "Bad:\n\t- broken",
			wantErr: ErrSchemaParse,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuilder([]byte(tc.spec))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}
