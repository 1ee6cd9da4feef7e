// Package schema parses YAML message schemas into type-descriptor graphs.
//
// A schema is a YAML mapping whose top-level keys declare types. Four
// shapes are recognized, dispatched on the "type" key:
//
//	MyStruct:
//	  type: Struct          # or Message
//	  fields:
//	    - counter: uint32
//	    - samples: [int16, 8]
//	MyEnum:
//	  type: Enum
//	  values:
//	    - kValueA:
//	    - kValueB:
//	MyBits:
//	  type: Bitfield
//	  fields:
//	    - flag: 1
//	    - level: 5
//
// The eleven primitives (uint8..uint64, int8..int64, bool, float, double)
// are built in and never declared. A Message is a Struct whose first
// field is the implicit ss_header (uid:uint32, len:uint16). Fixed arrays
// are written as two-element sequences [type, size] and may nest; every
// distinct element/size pair resolves to exactly one interned descriptor
// named Elem[N]. Keys with a leading underscore are metadata and are
// skipped everywhere.
//
// Types must be declared before use, so the resulting graph is a DAG.
// Each descriptor carries its wire footprint (PackedSize) and a
// structural CRC-32 identifier (UID) computed bottom-up; two builders
// fed the same schema produce identical UIDs for every node.
//
// # Error Handling
//
// All parse failures are fatal and wrap a package sentinel
// (ErrUnknownType, ErrBitfieldOverflow, ErrDuplicateType, ...) so
// callers can test with errors.Is while still seeing the offending
// type and field names in the message.
package schema
