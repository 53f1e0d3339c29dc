// Package wal implements a crash-consistent write-ahead log exposing a
// random-access byte-stream abstraction: read, write, seek, truncate,
// position, length, and an explicit atomic checkpoint. Reopening the log
// after a crash at any instruction yields the byte stream as it stood at the
// most recently completed checkpoint.
//
// The package is single-owner, single-threaded: a *WAL must not be used from
// more than one goroutine at a time, and it does no internal locking.
package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	tickFileName = "wal.tick"
	tockFileName = "wal.tock"
	logFileName  = "wal.log"
	metaFileName = "wal.meta"
)

// WAL is a handle on one WAL directory. Use New to create a fresh one or
// Open to recover an existing one.
type WAL struct {
	dir string

	tick *file
	tock *file
	log  *file
	meta *file

	// op is the cached operational selection. New sets it to tick (matching
	// the all-zero meta it writes), Open reads it from wal.meta, and it is kept in sync with every on-disk rewrite in
	// Checkpoint; it is never otherwise a source of truth.
	op     operational
	cursor int64
}

// New creates a fresh WAL in dir. dir must already exist and be empty.
func New(dir string) (*WAL, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("wal: %w: %v", ErrDirectoryPreconditionFailed, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("wal: %w: %s is not a directory", ErrDirectoryPreconditionFailed, dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("wal: %w: %v", ErrDirectoryPreconditionFailed, err)
	}
	if len(entries) != 0 {
		return nil, fmt.Errorf("wal: %w: %s is not empty", ErrDirectoryPreconditionFailed, dir)
	}

	tick, err := openFile(filepath.Join(dir, tickFileName), true)
	if err != nil {
		return nil, err
	}
	tock, err := openFile(filepath.Join(dir, tockFileName), true)
	if err != nil {
		return nil, err
	}
	logF, err := openFile(filepath.Join(dir, logFileName), true)
	if err != nil {
		return nil, err
	}
	metaF, err := openFile(filepath.Join(dir, metaFileName), true)
	if err != nil {
		return nil, err
	}

	if err := metaF.writeAt(zeroIndicator, 0); err != nil {
		return nil, err
	}
	if err := metaF.sync(); err != nil {
		return nil, err
	}

	return &WAL{dir: dir, tick: tick, tock: tock, log: logF, meta: metaF, op: opTick}, nil
}

// Open opens an existing WAL directory, repairing it first if the previous
// process crashed mid-mutation or mid-checkpoint. All four files must exist.
func Open(dir string) (*WAL, error) {
	for _, name := range [...]string{tickFileName, tockFileName, logFileName, metaFileName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			return nil, fmt.Errorf("wal: %w: %s", ErrOpenPrerequisiteMissing, name)
		}
	}

	tick, err := openFile(filepath.Join(dir, tickFileName), false)
	if err != nil {
		return nil, err
	}
	tock, err := openFile(filepath.Join(dir, tockFileName), false)
	if err != nil {
		return nil, err
	}
	logF, err := openFile(filepath.Join(dir, logFileName), false)
	if err != nil {
		return nil, err
	}
	metaF, err := openFile(filepath.Join(dir, metaFileName), false)
	if err != nil {
		return nil, err
	}

	w := &WAL{dir: dir, tick: tick, tock: tock, log: logF, meta: metaF}
	if err := w.recover(); err != nil {
		return nil, err
	}
	return w, nil
}

// Close releases the four file handles. There is no other shutdown
// procedure: every stable-rest invariant already holds after the fsync that
// ended the last operation.
func (w *WAL) Close() error {
	var firstErr error
	for _, f := range [...]*file{w.tick, w.tock, w.log, w.meta} {
		if err := f.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// operationalFile returns the file currently designated operational.
func (w *WAL) operationalFile() *file {
	if w.op == opTick {
		return w.tick
	}
	return w.tock
}

func fileFor(w *WAL, op operational) *file {
	if op == opTick {
		return w.tick
	}
	return w.tock
}

// Read fills p from the operational file starting at the current cursor and
// advances the cursor by the number of bytes actually read. It returns
// ErrShortRead if fewer than len(p) bytes remained.
func (w *WAL) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := w.operationalFile().readAt(p, w.cursor)
	w.cursor += int64(n)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("wal: read %d bytes at %d: %w", len(p), w.cursor-int64(n), err)
	}
	if n < len(p) {
		return n, fmt.Errorf("wal: read %d bytes at %d: %w", len(p), w.cursor-int64(n), ErrShortRead)
	}
	return n, nil
}

// Seek moves the cursor per the io.Seeker convention (io.SeekStart,
// io.SeekCurrent, io.SeekEnd) and returns the resulting absolute position.
func (w *WAL) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = w.cursor
	case io.SeekEnd:
		n, err := w.operationalFile().size()
		if err != nil {
			return 0, err
		}
		base = n
	default:
		return 0, fmt.Errorf("wal: invalid whence %d", whence)
	}
	pos := base + offset
	if pos < 0 {
		return 0, fmt.Errorf("wal: negative seek position %d", pos)
	}
	w.cursor = pos
	return pos, nil
}

// Len returns the current length of the byte stream.
func (w *WAL) Len() (int64, error) {
	return w.operationalFile().size()
}

// Position returns the current cursor offset.
func (w *WAL) Position() int64 {
	return w.cursor
}
