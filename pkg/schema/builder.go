package schema

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/packlog/pkg/uid"
)

const (
	// HeaderTypeName is the implicit header struct prepended to messages.
	HeaderTypeName = "SsHeader"

	// HeaderFieldName is the implicit first field of every message.
	HeaderFieldName = "ss_header"

	// HeaderSize is the wire footprint of SsHeader: uid(4) + len(2).
	HeaderSize = 6

	// UIDMapKey is the optional top-level key mapping message names to
	// their expected UIDs. The builder computes its own UIDs; readers may
	// cross-check against this map.
	UIDMapKey = "SsMessageUidMap"
)

// Builder parses a YAML schema into an immutable type-descriptor graph.
// It owns every descriptor it returns; the graph must not be mutated
// after NewBuilder returns and is then safe to share across goroutines.
type Builder struct {
	types map[string]*TypeDescriptor
	names []string

	msgs     map[uint32]*TypeDescriptor
	msgNames []string

	uidMap map[string]uint32
}

// NewBuilder parses a schema from YAML bytes.
func NewBuilder(data []byte) (*Builder, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSchemaParse, err)
	}

	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("%w: schema is empty", ErrSchemaParse)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: top level must be a mapping", ErrSchemaParse)
	}

	b := &Builder{
		types: make(map[string]*TypeDescriptor),
		msgs:  make(map[uint32]*TypeDescriptor),
	}
	b.seedBuiltins()

	if err := b.parseRoot(root); err != nil {
		return nil, err
	}

	if err := b.checkUIDCollisions(); err != nil {
		return nil, err
	}

	return b, nil
}

// NewBuilderFromFile parses a schema from a YAML file.
func NewBuilderFromFile(path string) (*Builder, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return NewBuilder(data)
}

// Type looks a descriptor up by canonical name; nil if unknown.
func (b *Builder) Type(name string) *TypeDescriptor {
	return b.types[name]
}

// Types returns every descriptor in declaration order, builtins first.
func (b *Builder) Types() []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, len(b.names))
	for _, name := range b.names {
		out = append(out, b.types[name])
	}
	return out
}

// Messages returns the message descriptors in declaration order.
func (b *Builder) Messages() []*TypeDescriptor {
	out := make([]*TypeDescriptor, 0, len(b.msgNames))
	for _, name := range b.msgNames {
		out = append(out, b.types[name])
	}
	return out
}

// MessageByUID resolves a wire UID to its message descriptor; nil if the
// UID names no message in this builder.
func (b *Builder) MessageByUID(u uint32) *TypeDescriptor {
	return b.msgs[u]
}

// DeclaredUIDMap returns the SsMessageUidMap entries from the schema, or
// nil if the schema carried none.
func (b *Builder) DeclaredUIDMap() map[string]uint32 {
	return b.uidMap
}

func (b *Builder) seedBuiltins() {
	prims := []struct {
		name string
		prim PrimType
	}{
		{"uint8", U8}, {"uint16", U16}, {"uint32", U32}, {"uint64", U64},
		{"int8", I8}, {"int16", I16}, {"int32", I32}, {"int64", I64},
		{"bool", Bool}, {"float", F32}, {"double", F64},
	}

	for _, p := range prims {
		d := &TypeDescriptor{
			name:       p.name,
			kind:       KindPrimitive,
			prim:       p.prim,
			packedSize: p.prim.Size(),
		}
		d.uid = uid.Primitive(d.name, d.packedSize)
		b.insert(d)
	}

	header := b.newStruct(HeaderTypeName, false)
	b.addStructField(header, "uid", b.types["uint32"])
	b.addStructField(header, "len", b.types["uint16"])
	b.insert(header)
}

func (b *Builder) insert(d *TypeDescriptor) {
	b.types[d.name] = d
	b.names = append(b.names, d.name)
}

func (b *Builder) parseRoot(root *yaml.Node) error {
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]
		name := keyNode.Value

		if strings.HasPrefix(name, "_") {
			continue
		}

		if name == UIDMapKey {
			if err := b.parseUIDMap(valNode); err != nil {
				return err
			}
			continue
		}

		// Log headers re-declare SsHeader; the seeded builtin wins.
		if name == HeaderTypeName {
			continue
		}

		typeName := mappingValue(valNode, "type")
		if typeName == nil {
			continue
		}

		if _, exists := b.types[name]; exists {
			return fmt.Errorf("%w: %s", ErrDuplicateType, name)
		}

		var err error
		switch typeName.Value {
		case "Struct":
			err = b.parseStruct(name, valNode, false)
		case "Message":
			err = b.parseStruct(name, valNode, true)
		case "Enum":
			err = b.parseEnum(name, valNode)
		case "Bitfield":
			err = b.parseBitfield(name, valNode)
		default:
			err = fmt.Errorf("%w: unrecognized type %q for %s", ErrSchemaParse, typeName.Value, name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) parseUIDMap(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("%w: %s must be a mapping", ErrSchemaParse, UIDMapKey)
	}

	b.uidMap = make(map[string]uint32, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		if strings.HasPrefix(node.Content[i].Value, "_") {
			continue
		}
		v, err := strconv.ParseUint(node.Content[i+1].Value, 0, 32)
		if err != nil {
			return fmt.Errorf("%w: bad uid for %s: %v", ErrSchemaParse, node.Content[i].Value, err)
		}
		b.uidMap[node.Content[i].Value] = uint32(v)
	}
	return nil
}

func (b *Builder) parseStruct(name string, node *yaml.Node, isMsg bool) error {
	s := b.newStruct(name, isMsg)

	if isMsg {
		b.addStructField(s, HeaderFieldName, b.types[HeaderTypeName])
	}

	fields := mappingValue(node, "fields")
	if fields == nil || fields.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: %s has no fields list", ErrSchemaParse, name)
	}

	for _, entry := range fields.Content {
		fieldName, fieldType, err := entryKeyValue(entry)
		if err != nil {
			return fmt.Errorf("%w: in %s", err, name)
		}
		if fieldName == "" {
			continue
		}

		if s.byName[fieldName] != nil {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateField, fieldName, name)
		}

		switch fieldType.Kind {
		case yaml.ScalarNode:
			ft := b.types[fieldType.Value]
			if ft == nil {
				return fmt.Errorf("%w: %s for field %s in %s", ErrUnknownType, fieldType.Value, fieldName, name)
			}
			b.addStructField(s, fieldName, ft)
		case yaml.SequenceNode:
			ft, err := b.parseArray(fieldType)
			if err != nil {
				return err
			}
			b.addStructField(s, fieldName, ft)
		default:
			return fmt.Errorf("%w: field %s in %s", ErrBadFieldShape, fieldName, name)
		}
	}

	b.insert(s)

	if isMsg {
		b.msgs[s.uid] = s
		b.msgNames = append(b.msgNames, name)
	}
	return nil
}

func (b *Builder) parseArray(node *yaml.Node) (*TypeDescriptor, error) {
	if len(node.Content) != 2 {
		return nil, fmt.Errorf("%w: array must be [type, size]", ErrBadFieldShape)
	}

	elemNode := node.Content[0]
	size, err := strconv.Atoi(node.Content[1].Value)
	if err != nil {
		return nil, fmt.Errorf("%w: array size %q", ErrBadFieldShape, node.Content[1].Value)
	}
	if size < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrBadArrayLen, size)
	}

	var elem *TypeDescriptor
	switch elemNode.Kind {
	case yaml.ScalarNode:
		elem = b.types[elemNode.Value]
		if elem == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownType, elemNode.Value)
		}
	case yaml.SequenceNode:
		elem, err = b.parseArray(elemNode)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: array element", ErrBadFieldShape)
	}

	name := elem.name + "[" + strconv.Itoa(size) + "]"

	// Structurally identical arrays intern to the same node.
	if existing := b.types[name]; existing != nil {
		return existing, nil
	}

	a := &TypeDescriptor{
		name:       name,
		kind:       KindArray,
		elem:       elem,
		arrayLen:   size,
		packedSize: elem.packedSize * size,
		uid:        uid.Array(elem.uid, size),
	}
	b.insert(a)
	return a, nil
}

func (b *Builder) parseEnum(name string, node *yaml.Node) error {
	values := mappingValue(node, "values")
	if values == nil || values.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: %s has no values list", ErrSchemaParse, name)
	}

	e := &TypeDescriptor{name: name, kind: KindEnum, prim: I8, packedSize: 1}

	var valueUIDs []uint32
	for _, entry := range values.Content {
		valueName, _, err := entryKeyValue(entry)
		if err != nil {
			return fmt.Errorf("%w: in %s", err, name)
		}
		if valueName == "" {
			continue
		}

		for _, existing := range e.values {
			if existing == valueName {
				return fmt.Errorf("%w: value %s repeated in %s", ErrDuplicateField, valueName, name)
			}
		}

		valueUIDs = append(valueUIDs, uid.EnumValue(valueName, len(e.values)))
		e.values = append(e.values, valueName)

		prim, err := enumWidth(uint64(len(e.values)))
		if err != nil {
			return fmt.Errorf("%w: %s", err, name)
		}
		e.prim = prim
		e.packedSize = prim.Size()
	}

	e.uid = uid.Enum(name, valueUIDs)
	b.insert(e)
	return nil
}

func (b *Builder) parseBitfield(name string, node *yaml.Node) error {
	fields := mappingValue(node, "fields")
	if fields == nil || fields.Kind != yaml.SequenceNode {
		return fmt.Errorf("%w: %s has no fields list", ErrSchemaParse, name)
	}

	bf := &TypeDescriptor{
		name:   name,
		kind:   KindBitfield,
		prim:   U8,
		byName: make(map[string]*Field),
	}

	bitOffset := 0
	for _, entry := range fields.Content {
		fieldName, sizeNode, err := entryKeyValue(entry)
		if err != nil {
			return fmt.Errorf("%w: in %s", err, name)
		}
		if fieldName == "" {
			continue
		}

		if bf.byName[fieldName] != nil {
			return fmt.Errorf("%w: %s in %s", ErrDuplicateField, fieldName, name)
		}

		bits, err := strconv.Atoi(sizeNode.Value)
		if err != nil || bits < 1 {
			return fmt.Errorf("%w: bit size for %s in %s", ErrBadFieldShape, fieldName, name)
		}

		if bitOffset+bits > 64 {
			return fmt.Errorf("%w: %s:%d in %s", ErrBitfieldOverflow, fieldName, bits, name)
		}

		f := &Field{
			name:      fieldName,
			typ:       bitfieldFieldPrim(b, bits),
			uid:       uid.BitfieldField(fieldName, bits),
			bitOffset: bitOffset,
			bitSize:   bits,
		}
		bf.fields = append(bf.fields, f)
		bf.byName[fieldName] = f
		bitOffset += bits

		bf.prim = containerWord(bitOffset)
		bf.packedSize = bf.prim.Size()
	}

	bf.uid = uid.Bitfield(name, fieldUIDs(bf.fields))
	b.insert(bf)
	return nil
}

func (b *Builder) newStruct(name string, isMsg bool) *TypeDescriptor {
	return &TypeDescriptor{
		name:    name,
		kind:    KindStruct,
		byName:  make(map[string]*Field),
		message: isMsg,
	}
}

func (b *Builder) addStructField(s *TypeDescriptor, name string, typ *TypeDescriptor) {
	f := &Field{
		name:   name,
		typ:    typ,
		uid:    uid.StructField(name, typ.uid),
		offset: s.packedSize,
	}
	s.fields = append(s.fields, f)
	s.byName[name] = f
	s.packedSize += typ.packedSize
	s.uid = uid.Struct(s.name, fieldUIDs(s.fields))
}

func (b *Builder) checkUIDCollisions() error {
	seen := make(map[uint32]string, len(b.names))
	for _, name := range b.names {
		d := b.types[name]
		if other, ok := seen[d.uid]; ok {
			return fmt.Errorf("%w: %s and %s", ErrUIDCollision, other, name)
		}
		seen[d.uid] = name
	}
	return nil
}

func fieldUIDs(fields []*Field) []uint32 {
	uids := make([]uint32, len(fields))
	for i, f := range fields {
		uids[i] = f.uid
	}
	return uids
}

func enumWidth(cardinality uint64) (PrimType, error) {
	switch {
	case cardinality <= 1<<7-1:
		return I8, nil
	case cardinality <= 1<<15-1:
		return I16, nil
	case cardinality <= 1<<31-1:
		return I32, nil
	case cardinality <= 1<<63-1:
		return I64, nil
	}
	return I8, ErrEnumOverflow
}

func containerWord(totalBits int) PrimType {
	switch {
	case totalBits <= 8:
		return U8
	case totalBits <= 16:
		return U16
	case totalBits <= 32:
		return U32
	}
	return U64
}

func bitfieldFieldPrim(b *Builder, bits int) *TypeDescriptor {
	switch {
	case bits <= 8:
		return b.types["uint8"]
	case bits <= 16:
		return b.types["uint16"]
	case bits <= 32:
		return b.types["uint32"]
	}
	return b.types["uint64"]
}

// mappingValue returns the value node for key in a mapping node, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// entryKeyValue unwraps a single-key list entry of the form {name: value},
// skipping metadata keys with a leading underscore. An empty name means
// the entry held only metadata.
func entryKeyValue(entry *yaml.Node) (string, *yaml.Node, error) {
	if entry.Kind != yaml.MappingNode {
		return "", nil, ErrBadFieldShape
	}
	for i := 0; i+1 < len(entry.Content); i += 2 {
		if strings.HasPrefix(entry.Content[i].Value, "_") {
			continue
		}
		return entry.Content[i].Value, entry.Content[i+1], nil
	}
	return "", nil, nil
}
