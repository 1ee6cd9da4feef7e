// Package dispatch routes decoded message frames to registered consumers
// by the UID carried in each record's header.
package dispatch

import (
	"fmt"

	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/packing"
	"github.com/ssargent/packlog/pkg/schema"
)

// DispatchError represents a header validation failure.
type DispatchError struct {
	Message string
}

func (e *DispatchError) Error() string {
	return e.Message
}

// Errors
var (
	ErrInvalidLen = &DispatchError{"message length mismatch"}
	ErrInvalidUid = &DispatchError{"unknown message uid"}
)

// Header is the decoded 6-byte SsHeader prefix of a record.
type Header struct {
	UID uint32
	Len uint16
}

// InspectHeader decodes the SsHeader prefix of buf without touching the
// payload.
func InspectHeader(buf []byte) (Header, error) {
	if len(buf) < schema.HeaderSize {
		return Header{}, fmt.Errorf("%w: %d bytes is shorter than a header", ErrInvalidLen, len(buf))
	}
	return Header{
		UID: packing.UnpackU32(buf),
		Len: packing.UnpackU16(buf[4:]),
	}, nil
}

// Handler consumes one full record, header included. The buffer is only
// valid for the duration of the call.
type Handler func(desc *schema.TypeDescriptor, buf []byte)

// Dispatcher fans records out to handlers keyed by message UID. Handlers
// registered for the same UID run in registration order. A Dispatcher is
// not safe for concurrent use.
type Dispatcher struct {
	builder  *schema.Builder
	handlers map[uint32][]Handler
}

// NewDispatcher creates a dispatcher over the builder's message set.
func NewDispatcher(builder *schema.Builder) *Dispatcher {
	return &Dispatcher{
		builder:  builder,
		handlers: make(map[uint32][]Handler),
	}
}

// Register attaches a handler to a message descriptor.
func (d *Dispatcher) Register(msg *schema.TypeDescriptor, h Handler) {
	d.handlers[msg.UID()] = append(d.handlers[msg.UID()], h)
}

// Dispatch validates the record in buf and invokes every handler
// registered for its UID. Records whose UID has no handlers are skipped
// without error; a length mismatch on a known UID is reported.
func (d *Dispatcher) Dispatch(buf []byte) error {
	hdr, err := InspectHeader(buf)
	if err != nil {
		return err
	}

	handlers, ok := d.handlers[hdr.UID]
	if !ok {
		return nil
	}

	desc := d.builder.MessageByUID(hdr.UID)
	if desc == nil {
		return nil
	}

	if int(hdr.Len) != len(buf) || int(hdr.Len) != desc.PackedSize() {
		return fmt.Errorf("%w: %s header says %d, buffer is %d, descriptor wants %d",
			ErrInvalidLen, desc.Name(), hdr.Len, len(buf), desc.PackedSize())
	}

	for _, h := range handlers {
		h(desc, buf)
	}
	return nil
}

// UnpackMessage decodes the record in buf into a dynamic value tree for
// whichever message type its header names. Unknown UIDs surface as
// ErrInvalidUid; length disagreements as ErrInvalidLen.
func UnpackMessage(buf []byte, builder *schema.Builder) (*dynamic.Struct, error) {
	hdr, err := InspectHeader(buf)
	if err != nil {
		return nil, err
	}

	if int(hdr.Len) != len(buf) {
		return nil, fmt.Errorf("%w: header says %d, buffer is %d", ErrInvalidLen, hdr.Len, len(buf))
	}

	desc := builder.MessageByUID(hdr.UID)
	if desc == nil {
		return nil, fmt.Errorf("%w: 0x%08X", ErrInvalidUid, hdr.UID)
	}

	if int(hdr.Len) != desc.PackedSize() {
		return nil, fmt.Errorf("%w: %s wants %d bytes, header says %d", ErrInvalidLen, desc.Name(), desc.PackedSize(), hdr.Len)
	}

	msg, err := dynamic.NewStruct(desc)
	if err != nil {
		return nil, err
	}
	if err := msg.Unpack(buf); err != nil {
		return nil, err
	}
	return msg, nil
}
