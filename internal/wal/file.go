package wal

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// file is a thin wrapper over a single *os.File giving the durability core
// the handful of primitives it needs: positional read/write, truncate, and
// fsync. It never reorders or batches anything the caller asks for.
type file struct {
	path string
	f    *os.File
}

// openFile opens path for read/write, creating it if create is true and it
// does not yet exist.
func openFile(path string, create bool) (*file, error) {
	flags := os.O_RDWR
	if create {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("wal: open %s: %w", path, err)
	}
	return &file{path: path, f: f}, nil
}

func (fl *file) size() (int64, error) {
	st, err := fl.f.Stat()
	if err != nil {
		return 0, fmt.Errorf("wal: stat %s: %w", fl.path, err)
	}
	return st.Size(), nil
}

func (fl *file) readAt(buf []byte, off int64) (int, error) {
	n, err := fl.f.ReadAt(buf, off)
	if err != nil {
		return n, err
	}
	return n, nil
}

func (fl *file) writeAt(buf []byte, off int64) error {
	if _, err := fl.f.WriteAt(buf, off); err != nil {
		return fmt.Errorf("wal: write %s: %w", fl.path, err)
	}
	return nil
}

func (fl *file) truncate(n int64) error {
	if err := fl.f.Truncate(n); err != nil {
		return fmt.Errorf("wal: truncate %s: %w", fl.path, err)
	}
	return nil
}

func (fl *file) sync() error {
	if err := fl.f.Sync(); err != nil {
		return fmt.Errorf("wal: fsync %s: %w", fl.path, err)
	}
	return nil
}

func (fl *file) close() error {
	return fl.f.Close()
}

// copyFrom truncates fl to zero length and copies all of src onto it,
// fsyncing fl afterward. Used by recovery to restore one data file from
// another known-good one.
func (fl *file) copyFrom(src *file) error {
	if err := fl.truncate(0); err != nil {
		return err
	}
	n, err := src.size()
	if err != nil {
		return err
	}
	const chunk = 1 << 20
	buf := make([]byte, chunk)
	var off int64
	for off < n {
		want := chunk
		if remaining := n - off; remaining < int64(chunk) {
			want = int(remaining)
		}
		read, err := src.readAt(buf[:want], off)
		if read > 0 {
			if werr := fl.writeAt(buf[:read], off); werr != nil {
				return werr
			}
			off += int64(read)
		}
		if err != nil && !(errors.Is(err, io.EOF) && read == want) {
			return fmt.Errorf("wal: copy %s -> %s: %w", src.path, fl.path, err)
		}
	}
	return fl.sync()
}
