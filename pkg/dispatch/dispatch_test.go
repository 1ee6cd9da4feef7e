package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/schema"
)

const testSpec = `
Ping:
  type: Message
  fields:
    - seq: uint32
Pong:
  type: Message
  fields:
    - seq: uint32
    - flags: uint8
`

func newTestBuilder(t *testing.T) *schema.Builder {
	t.Helper()
	b, err := schema.NewBuilder([]byte(testSpec))
	require.NoError(t, err)
	return b
}

// packMessage builds a packed record with a stamped header.
func packMessage(t *testing.T, desc *schema.TypeDescriptor, seq uint32) []byte {
	t.Helper()

	msg, err := dynamic.NewStruct(desc)
	require.NoError(t, err)

	hdr, err := msg.Struct(schema.HeaderFieldName)
	require.NoError(t, err)
	require.NoError(t, dynamic.Set(hdr, "uid", desc.UID()))
	require.NoError(t, dynamic.Set(hdr, "len", uint16(desc.PackedSize())))
	require.NoError(t, dynamic.Set(msg, "seq", seq))

	buf := make([]byte, desc.PackedSize())
	require.NoError(t, msg.Pack(buf))
	return buf
}

func TestInspectHeader(t *testing.T) {
	b := newTestBuilder(t)
	ping := b.Type("Ping")

	rec := packMessage(t, ping, 7)

	hdr, err := InspectHeader(rec)
	require.NoError(t, err)
	assert.Equal(t, ping.UID(), hdr.UID)
	assert.Equal(t, uint16(ping.PackedSize()), hdr.Len)

	_, err = InspectHeader(rec[:4])
	assert.ErrorIs(t, err, ErrInvalidLen)
}

func TestDispatcher_RoutesByUID(t *testing.T) {
	b := newTestBuilder(t)
	ping := b.Type("Ping")
	pong := b.Type("Pong")

	d := NewDispatcher(b)

	var got []string
	d.Register(ping, func(desc *schema.TypeDescriptor, buf []byte) {
		got = append(got, "ping:"+desc.Name())
	})
	d.Register(ping, func(desc *schema.TypeDescriptor, buf []byte) {
		got = append(got, "ping2:"+desc.Name())
	})
	d.Register(pong, func(desc *schema.TypeDescriptor, buf []byte) {
		got = append(got, "pong:"+desc.Name())
	})

	require.NoError(t, d.Dispatch(packMessage(t, ping, 1)))
	require.NoError(t, d.Dispatch(packMessage(t, pong, 2)))

	// Handlers fire in registration order, all on the same record.
	assert.Equal(t, []string{"ping:Ping", "ping2:Ping", "pong:Pong"}, got)
}

func TestDispatcher_UnknownUIDSkipped(t *testing.T) {
	b := newTestBuilder(t)

	d := NewDispatcher(b)

	rec := packMessage(t, b.Type("Ping"), 1)
	// No handler registered: silently skipped.
	assert.NoError(t, d.Dispatch(rec))
}

func TestDispatcher_LenMismatch(t *testing.T) {
	b := newTestBuilder(t)
	ping := b.Type("Ping")

	d := NewDispatcher(b)
	d.Register(ping, func(desc *schema.TypeDescriptor, buf []byte) {
		t.Error("handler must not fire on a bad record")
	})

	rec := packMessage(t, ping, 1)

	// Truncated buffer disagrees with the header length.
	err := d.Dispatch(rec[:len(rec)-1])
	assert.ErrorIs(t, err, ErrInvalidLen)
}

func TestUnpackMessage(t *testing.T) {
	b := newTestBuilder(t)
	pong := b.Type("Pong")

	rec := packMessage(t, pong, 41)

	msg, err := UnpackMessage(rec, b)
	require.NoError(t, err)
	assert.Same(t, pong, msg.Descriptor())

	seq, err := dynamic.Get[uint32](msg, "seq")
	require.NoError(t, err)
	assert.Equal(t, uint32(41), seq)
}

func TestUnpackMessage_Errors(t *testing.T) {
	b := newTestBuilder(t)
	ping := b.Type("Ping")

	rec := packMessage(t, ping, 1)

	// Unknown uid surfaces, unlike the dispatcher's silent skip.
	bogus := append([]byte{}, rec...)
	bogus[0] ^= 0xFF
	_, err := UnpackMessage(bogus, b)
	assert.ErrorIs(t, err, ErrInvalidUid)

	_, err = UnpackMessage(rec[:len(rec)-1], b)
	assert.ErrorIs(t, err, ErrInvalidLen)

	_, err = UnpackMessage(rec[:3], b)
	assert.ErrorIs(t, err, ErrInvalidLen)
}
