// Package recordstream implements the logical-object layer spec.md calls an
// "external collaborator": a length-prefixed key/record stream built
// strictly on top of the internal/wal byte-stream contract. It is not part
// of the durability core; it is the core's first consumer.
package recordstream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/btree"
)

const (
	opPut byte = iota + 1
	opDelete
)

// ErrKeyNotFound is returned by Get and Delete when key has no live entry.
var ErrKeyNotFound = errors.New("recordstream: key not found")

// byteStream is the slice of the *wal.WAL capability set this package
// consumes. Declaring it locally (instead of importing internal/wal) keeps
// the dependency direction the spec requires: the core exports a byte
// stream, and external collaborators like this one consume it through
// nothing more than that contract.
type byteStream interface {
	io.Reader
	io.Writer
	io.Seeker
	Len() (int64, error)
	SetLen(uint64) error
	Checkpoint() error
}

// indexEntry is the in-memory offset index entry kept in a btree.BTree,
// the same pairing the teacher's disk engine uses for its key index
// (github.com/google/btree), generalized from an in-memory record to an
// on-disk byte offset.
type indexEntry struct {
	key    string
	offset int64
}

func (e indexEntry) Less(than btree.Item) bool {
	return e.key < than.(indexEntry).key
}

// Store is an append-only key/record log consuming a byte stream. It keeps
// an in-memory btree index of key -> record offset so Get does not require a
// linear scan; the index is never persisted and is rebuilt by replay on
// Open, so it is never itself a crash-consistency concern.
type Store struct {
	stream byteStream
	index  *btree.BTree
}

// Open wraps stream as a Store, rebuilding the index by replaying every
// record from offset 0.
func Open(stream byteStream) (*Store, error) {
	s := &Store{stream: stream, index: btree.New(32)}
	if err := s.rebuildIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) rebuildIndex() error {
	if _, err := s.stream.Seek(0, io.SeekStart); err != nil {
		return err
	}
	streamLen, err := s.stream.Len()
	if err != nil {
		return err
	}

	var offset int64
	for offset < streamLen {
		op, key, payloadLen, err := readRecordHeader(s.stream)
		if err != nil {
			return fmt.Errorf("recordstream: rebuild index: %w", err)
		}
		switch op {
		case opPut:
			s.index.ReplaceOrInsert(indexEntry{key: key, offset: offset})
		case opDelete:
			s.index.Delete(indexEntry{key: key})
		}
		if _, err := s.stream.Seek(int64(payloadLen), io.SeekCurrent); err != nil {
			return err
		}
		offset, err = s.stream.Seek(0, io.SeekCurrent)
		if err != nil {
			return err
		}
	}
	return nil
}

// Append stores payload under key, overwriting any previous value.
func (s *Store) Append(key string, payload []byte) error {
	offset, err := s.stream.Seek(0, io.SeekEnd)
	if err != nil {
		return err
	}
	buf := encodeRecord(opPut, key, payload)
	if _, err := s.stream.Write(buf); err != nil {
		return err
	}
	s.index.ReplaceOrInsert(indexEntry{key: key, offset: offset})
	return nil
}

// Get returns the payload most recently stored under key.
func (s *Store) Get(key string) ([]byte, error) {
	found := s.index.Get(indexEntry{key: key})
	if found == nil {
		return nil, ErrKeyNotFound
	}
	entry := found.(indexEntry)

	if _, err := s.stream.Seek(entry.offset, io.SeekStart); err != nil {
		return nil, err
	}
	op, _, payload, err := readRecord(s.stream)
	if err != nil {
		return nil, fmt.Errorf("recordstream: get %q: %w", key, err)
	}
	if op != opPut {
		return nil, ErrKeyNotFound
	}
	return payload, nil
}

// Delete removes key. It is a no-op error (ErrKeyNotFound) if key is not
// currently live.
func (s *Store) Delete(key string) error {
	if s.index.Get(indexEntry{key: key}) == nil {
		return ErrKeyNotFound
	}
	if _, err := s.stream.Seek(0, io.SeekEnd); err != nil {
		return err
	}
	buf := encodeRecord(opDelete, key, nil)
	if _, err := s.stream.Write(buf); err != nil {
		return err
	}
	s.index.Delete(indexEntry{key: key})
	return nil
}

// Checkpoint passes directly through to the underlying WAL. Checkpointing
// never changes the stream's observable byte content (spec.md's P4), so the
// in-memory index stays valid across it without rebuilding.
func (s *Store) Checkpoint() error {
	return s.stream.Checkpoint()
}

// Len returns the number of keys currently live in the store.
func (s *Store) Len() int {
	return s.index.Len()
}

func encodeRecord(op byte, key string, payload []byte) []byte {
	buf := make([]byte, 0, 1+4+len(key)+4+len(payload))
	buf = append(buf, op)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(key)))
	buf = append(buf, key...)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(payload)))
	buf = append(buf, payload...)
	return buf
}

// readRecordHeader reads op, key, and the payload length, leaving the
// stream positioned at the start of the payload.
func readRecordHeader(r io.Reader) (op byte, key string, payloadLen uint32, err error) {
	var opBuf [1]byte
	if _, err = io.ReadFull(r, opBuf[:]); err != nil {
		return 0, "", 0, err
	}
	op = opBuf[0]

	var lenBuf [4]byte
	if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, "", 0, err
	}
	keyLen := binary.LittleEndian.Uint32(lenBuf[:])
	keyBuf := make([]byte, keyLen)
	if _, err = io.ReadFull(r, keyBuf); err != nil {
		return 0, "", 0, err
	}

	if _, err = io.ReadFull(r, lenBuf[:]); err != nil {
		return 0, "", 0, err
	}
	payloadLen = binary.LittleEndian.Uint32(lenBuf[:])

	return op, string(keyBuf), payloadLen, nil
}

func readRecord(r io.Reader) (op byte, key string, payload []byte, err error) {
	op, key, payloadLen, err := readRecordHeader(r)
	if err != nil {
		return 0, "", nil, err
	}
	payload = make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, "", nil, err
	}
	return op, key, payload, nil
}
