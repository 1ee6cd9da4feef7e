// Package snapshot persists latest-message snapshots extracted from a
// log into a pebble store, so downstream tools can look a message up
// without rescanning the log body.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/packlog/pkg/logfile"
	"github.com/ssargent/packlog/pkg/schema"
)

const (
	msgPrefix = "msg/"
	runPrefix = "run/"
)

// Store is a pebble-backed snapshot database. Latest packed records live
// under "msg/<name>"; every indexing run leaves a marker under
// "run/<ksuid>" naming the source log.
type Store struct {
	db *pebble.DB
}

// Open opens or creates a snapshot store at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the store.
func (s *Store) Close() error {
	return s.db.Close()
}

// PutLatest stores the packed record as the latest snapshot for name.
func (s *Store) PutLatest(name string, rec []byte) error {
	return s.db.Set([]byte(msgPrefix+name), rec, pebble.NoSync)
}

// Latest returns the latest packed record stored for name.
func (s *Store) Latest(name string) ([]byte, error) {
	data, closer, err := s.db.Get([]byte(msgPrefix + name))
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Names lists every message name with a stored snapshot.
func (s *Store) Names() ([]string, error) {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(msgPrefix),
		UpperBound: []byte(msgPrefix + "\xff"),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var names []string
	for iter.First(); iter.Valid(); iter.Next() {
		names = append(names, strings.TrimPrefix(string(iter.Key()), msgPrefix))
	}
	return names, iter.Error()
}

// IndexLog scans every message in the log and stores the latest record
// of each type. It returns the run id recorded for this pass and the
// number of records scanned.
func (s *Store) IndexLog(reader *logfile.Reader, logPath string) (ksuid.KSUID, int, error) {
	runID := ksuid.New()

	var msgs []*schema.TypeDescriptor
	for _, m := range reader.MessageTypes() {
		msgs = append(msgs, m)
	}

	count := 0
	err := reader.Load(msgs, func(desc *schema.TypeDescriptor, rec []byte) error {
		count++
		return s.PutLatest(desc.Name(), rec)
	})
	if err != nil {
		return runID, count, err
	}

	marker := fmt.Sprintf("%s records=%d", logPath, count)
	if err := s.db.Set([]byte(runPrefix+runID.String()), []byte(marker), pebble.Sync); err != nil {
		return runID, count, err
	}

	return runID, count, nil
}
