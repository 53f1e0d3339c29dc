package wal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// logEntry is one record in wal.log: either a Write or a SetLen mutation,
// recorded before it is applied so a crash between the two can be replayed.
type logEntry struct {
	isSetLen  bool
	position  uint64 // Write only
	newLength uint64 // SetLen only
	payload   []byte // Write only
}

var (
	tagWrite  = [2]byte{'W', 'R'}
	tagSetLen = [2]byte{'S', 'L'}
)

// encode appends the little-endian binary encoding of e to buf and returns
// the result.
func (e logEntry) encode(buf []byte) []byte {
	if e.isSetLen {
		buf = append(buf, tagSetLen[:]...)
		buf = binary.LittleEndian.AppendUint64(buf, e.newLength)
		return buf
	}
	buf = append(buf, tagWrite[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, e.position)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(len(e.payload)))
	buf = append(buf, e.payload...)
	return buf
}

// errTruncatedLogEntry signals that r ran out of bytes partway through a
// record. It is not propagated to callers of the public API: every place
// that reads log entries treats it exactly like a clean EOF, per spec.
var errTruncatedLogEntry = errors.New("wal: truncated log entry")

// readLogEntry reads one entry from r. io.EOF at the very start of a record
// is a clean end of log. Any other short read mid-record is reported as
// errTruncatedLogEntry, which callers treat identically to clean EOF: the
// already-parsed entries stand, and the torn tail is discarded.
func readLogEntry(r io.Reader) (logEntry, error) {
	var tag [2]byte
	if _, err := io.ReadFull(r, tag[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return logEntry{}, io.EOF
		}
		return logEntry{}, errTruncatedLogEntry
	}

	switch tag {
	case tagSetLen:
		var lenBuf [8]byte
		if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
			return logEntry{}, errTruncatedLogEntry
		}
		return logEntry{isSetLen: true, newLength: binary.LittleEndian.Uint64(lenBuf[:])}, nil

	case tagWrite:
		var fields [16]byte
		if _, err := io.ReadFull(r, fields[:]); err != nil {
			return logEntry{}, errTruncatedLogEntry
		}
		position := binary.LittleEndian.Uint64(fields[0:8])
		payloadLen := binary.LittleEndian.Uint64(fields[8:16])
		payload := make([]byte, payloadLen)
		if _, err := io.ReadFull(r, payload); err != nil {
			return logEntry{}, errTruncatedLogEntry
		}
		return logEntry{position: position, payload: payload}, nil

	default:
		return logEntry{}, fmt.Errorf("wal: unrecognized log entry tag %q", tag)
	}
}
