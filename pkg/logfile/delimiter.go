package logfile

import (
	"io"
)

// Delimiter separates the YAML schema header from the binary record body
// of a log file. The 0xFE/0xFF bytes can never appear in UTF-8 text, so
// no schema can contain the sentinel.
var Delimiter = []byte{0xFE, 0xFF, 'S', 'S', 'L', 'G', 0xFF, 0xFE}

// FindDelimiter scans r from its current position and returns the offset
// of the first byte after the delimiter. The match is single-pass and
// tolerates the delimiter straddling read boundaries.
func FindDelimiter(r io.Reader) (int64, error) {
	buf := make([]byte, 4*len(Delimiter))

	var fileIndex int64
	delimIndex := 0

	for {
		n, err := r.Read(buf)

		for i := 0; i < n; i++ {
			if buf[i] != Delimiter[delimIndex] {
				delimIndex = 0
			}
			if buf[i] == Delimiter[delimIndex] {
				delimIndex++
				if delimIndex == len(Delimiter) {
					return fileIndex + 1, nil
				}
			}
			fileIndex++
		}

		if err == io.EOF {
			return 0, ErrMissingDelimiter
		}
		if err != nil {
			return 0, err
		}
	}
}
