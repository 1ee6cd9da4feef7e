// Package logfile reads and writes append-only binary message logs. A
// log file is the UTF-8 YAML schema, the fixed Delimiter sentinel, then
// a concatenation of length-prefixed records, each starting with the
// 6-byte SsHeader (uid:u32, len:u16, big-endian).
package logfile

import (
	"fmt"
	"io"
	"os"

	"github.com/ssargent/packlog/pkg/dispatch"
	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/packing"
	"github.com/ssargent/packlog/pkg/schema"
)

// RecordFunc consumes one record, header included. The buffer aliases
// the reader's internal buffer and is only valid for the call.
type RecordFunc func(desc *schema.TypeDescriptor, record []byte) error

// Reader streams a message log. It parses the embedded schema at open
// and replays records in strict file order. A Reader is not safe for
// concurrent use; independent Readers on distinct handles are.
type Reader struct {
	path        string
	file        *os.File
	binaryStart int64
	builder     *schema.Builder
}

// Open opens a log file, locates the schema/binary boundary, and parses
// the embedded schema header.
func Open(path string) (*Reader, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	binaryStart, err := FindDelimiter(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("%w in %s", err, path)
	}

	yamlLen := binaryStart - int64(len(Delimiter))
	header := make([]byte, yamlLen)
	if _, err := file.ReadAt(header, 0); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read schema header from %s: %w", path, err)
	}

	builder, err := schema.NewBuilder(header)
	if err != nil {
		file.Close()
		return nil, err
	}

	if err := checkUIDMap(builder); err != nil {
		file.Close()
		return nil, err
	}

	return &Reader{
		path:        path,
		file:        file,
		binaryStart: binaryStart,
		builder:     builder,
	}, nil
}

// checkUIDMap cross-checks computed message UIDs against the writer's
// embedded SsMessageUidMap, when the header carries one.
func checkUIDMap(b *schema.Builder) error {
	declared := b.DeclaredUIDMap()
	if declared == nil {
		return nil
	}

	for _, msg := range b.Messages() {
		want, ok := declared[msg.Name()]
		if ok && want != msg.UID() {
			return fmt.Errorf("%w: %s computed 0x%08X, log declares 0x%08X",
				ErrUIDMismatch, msg.Name(), msg.UID(), want)
		}
	}
	return nil
}

// Close releases the underlying file handle.
func (r *Reader) Close() error {
	return r.file.Close()
}

// Builder returns the descriptor graph parsed from the log header.
func (r *Reader) Builder() *schema.Builder {
	return r.builder
}

// MessageTypes returns the log's message descriptors keyed by name.
func (r *Reader) MessageTypes() map[string]*schema.TypeDescriptor {
	msgs := r.builder.Messages()
	out := make(map[string]*schema.TypeDescriptor, len(msgs))
	for _, m := range msgs {
		out[m.Name()] = m
	}
	return out
}

// Load streams every record in file order and delivers those whose UID
// matches a descriptor in filter to visit. Records of other types are
// skipped. A wanted record whose length disagrees with its descriptor's
// packed size raises dispatch.ErrInvalidLen. Mid-record truncation raises
// ErrCorruptedLogEnd.
func (r *Reader) Load(filter []*schema.TypeDescriptor, visit RecordFunc) error {
	wanted := make(map[uint32]*schema.TypeDescriptor, len(filter))
	for _, d := range filter {
		wanted[d.UID()] = d
	}

	if _, err := r.file.Seek(r.binaryStart, io.SeekStart); err != nil {
		return err
	}

	framer := newMsgFramer(r.file)
	for {
		rec, err := framer.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		desc, ok := wanted[packing.UnpackU32(rec)]
		if !ok {
			continue
		}

		if len(rec) != desc.PackedSize() {
			return fmt.Errorf("%w: %s record is %d bytes, descriptor wants %d",
				dispatch.ErrInvalidLen, desc.Name(), len(rec), desc.PackedSize())
		}

		if err := visit(desc, rec); err != nil {
			return err
		}
	}
}

// LoadInto streams every record in file order through a dispatcher.
// Records whose UID has no registered handler are skipped by the
// dispatcher itself.
func (r *Reader) LoadInto(d *dispatch.Dispatcher) error {
	if _, err := r.file.Seek(r.binaryStart, io.SeekStart); err != nil {
		return err
	}

	framer := newMsgFramer(r.file)
	for {
		rec, err := framer.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		if err := d.Dispatch(rec); err != nil {
			return err
		}
	}
}

// LoadAll reads the whole log and returns, for each message type that
// appears, a dynamic value tree filled from the most recent record of
// that type. Earlier records are overwritten in place.
func (r *Reader) LoadAll() (map[string]*dynamic.Struct, error) {
	msgs := r.builder.Messages()

	trees := make(map[string]*dynamic.Struct, len(msgs))
	seen := make(map[string]bool, len(msgs))

	for _, m := range msgs {
		tree, err := dynamic.NewStruct(m)
		if err != nil {
			return nil, err
		}
		trees[m.Name()] = tree
	}

	err := r.Load(msgs, func(desc *schema.TypeDescriptor, rec []byte) error {
		seen[desc.Name()] = true
		return trees[desc.Name()].Unpack(rec)
	})
	if err != nil {
		return nil, err
	}

	for name := range trees {
		if !seen[name] {
			delete(trees, name)
		}
	}
	return trees, nil
}
