package logfile

import (
	"fmt"
	"io"

	"github.com/ssargent/packlog/pkg/packing"
	"github.com/ssargent/packlog/pkg/schema"
)

const defaultFramerBuf = 4096

// msgFramer is the streaming record extractor. It keeps a shift-and-fill
// byte buffer over the log body, grows the buffer to four times an
// oversize record's length to avoid repeated shifting, and guarantees a
// record header is never split across a shift boundary.
type msgFramer struct {
	buf   []byte
	index int
	used  int
	r     io.Reader
}

func newMsgFramer(r io.Reader) *msgFramer {
	return &msgFramer{
		buf: make([]byte, defaultFramerBuf),
		r:   r,
	}
}

// next returns the next full record, header included. The returned slice
// aliases the framer's buffer and is only valid until the next call.
// io.EOF signals clean end-of-log; ending mid-header or mid-record is
// ErrCorruptedLogEnd.
func (f *msgFramer) next() ([]byte, error) {
	if f.remaining() < schema.HeaderSize {
		if err := f.shiftAndFill(); err != nil {
			return nil, err
		}

		if f.remaining() == 0 {
			return nil, io.EOF
		}
		if f.remaining() < schema.HeaderSize {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptedLogEnd, f.remaining())
		}
	}

	msgLen := int(packing.UnpackU16(f.buf[f.index+4:]))
	if msgLen < schema.HeaderSize {
		return nil, fmt.Errorf("%w: record length %d shorter than header", ErrCorruptedLogEnd, msgLen)
	}

	// Grow for large records so a giant message does not realign the
	// buffer on every iteration.
	if 4*msgLen > len(f.buf) {
		grown := make([]byte, 4*msgLen)
		f.used = copy(grown, f.buf[f.index:f.used])
		f.index = 0
		f.buf = grown
	}

	if msgLen > f.remaining() {
		if err := f.shiftAndFill(); err != nil {
			return nil, err
		}
		if msgLen > f.remaining() {
			return nil, fmt.Errorf("%w: record wants %d bytes, %d remain", ErrCorruptedLogEnd, msgLen, f.remaining())
		}
	}

	rec := f.buf[f.index : f.index+msgLen]
	f.index += msgLen
	return rec, nil
}

func (f *msgFramer) remaining() int {
	return f.used - f.index
}

func (f *msgFramer) shiftAndFill() error {
	rem := copy(f.buf, f.buf[f.index:f.used])
	f.index = 0

	n, err := io.ReadFull(f.r, f.buf[rem:])
	f.used = rem + n
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return nil
	}
	return err
}
