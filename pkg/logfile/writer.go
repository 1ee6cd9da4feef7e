package logfile

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ssargent/packlog/pkg/dynamic"
	"github.com/ssargent/packlog/pkg/schema"
)

// Writer appends packed message records to a new log file. Create emits
// the schema header (with the SsMessageUidMap and SsHeader declarations
// prepended, so any reader can verify what it parses) followed by the
// delimiter; Append packs one dynamic message per call.
type Writer struct {
	file    *os.File
	builder *schema.Builder
}

// Create writes the log header for schemaYAML into a fresh file at path.
func Create(path string, schemaYAML []byte) (*Writer, error) {
	builder, err := schema.NewBuilder(schemaYAML)
	if err != nil {
		return nil, err
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := &Writer{file: file, builder: builder}

	if _, err := file.Write(headerYAML(builder, schemaYAML)); err != nil {
		file.Close()
		return nil, err
	}
	if _, err := file.Write(Delimiter); err != nil {
		file.Close()
		return nil, err
	}

	return w, nil
}

// Builder returns the descriptor graph the writer packs against.
func (w *Writer) Builder() *schema.Builder {
	return w.builder
}

// Append packs msg and writes it as the next record. The message's
// ss_header fields are stamped with the descriptor's UID and packed
// size before packing.
func (w *Writer) Append(msg *dynamic.Struct) error {
	desc := msg.Descriptor()
	if !desc.IsMessage() {
		return fmt.Errorf("%w: %s", ErrNotMessage, desc.Name())
	}

	hdr, err := msg.Struct(schema.HeaderFieldName)
	if err != nil {
		return err
	}
	if err := dynamic.Set(hdr, "uid", desc.UID()); err != nil {
		return err
	}
	if err := dynamic.Set(hdr, "len", uint16(desc.PackedSize())); err != nil {
		return err
	}

	buf := make([]byte, desc.PackedSize())
	if err := msg.Pack(buf); err != nil {
		return err
	}

	return w.WriteRecord(buf)
}

// WriteRecord writes an already-packed record verbatim.
func (w *Writer) WriteRecord(rec []byte) error {
	_, err := w.file.Write(rec)
	return err
}

// Close flushes and releases the file handle.
func (w *Writer) Close() error {
	if err := w.file.Sync(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// headerYAML prepends the message uid map and the SsHeader declaration
// to the user schema, mirroring what static log writers embed.
func headerYAML(builder *schema.Builder, schemaYAML []byte) []byte {
	var sb strings.Builder

	msgs := builder.Messages()
	if len(msgs) > 0 {
		sb.WriteString(schema.UIDMapKey + ":\n")
		for _, m := range msgs {
			sb.WriteString("  " + m.Name() + ": " + strconv.FormatUint(uint64(m.UID()), 10) + "\n")
		}
	}

	sb.WriteString(schema.HeaderTypeName + ":\n")
	sb.WriteString("  type: Struct\n")
	sb.WriteString("  fields:\n")
	sb.WriteString("    - uid: uint32\n")
	sb.WriteString("    - len: uint16\n")

	sb.Write(schemaYAML)
	if len(schemaYAML) > 0 && schemaYAML[len(schemaYAML)-1] != '\n' {
		sb.WriteByte('\n')
	}

	return []byte(sb.String())
}
