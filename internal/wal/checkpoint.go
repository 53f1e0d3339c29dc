package wal

import "io"

// Checkpoint brings the fallback file into sync with the operational file
// and discards the log, by swapping which file is operational rather than
// copying: the log is replayed onto the file that was stale and therefore
// dispensable. The caller's cursor is preserved.
//
// A crash after the meta flip (step 2) but before the log truncate (step 4)
// leaves a valid meta and a non-empty log; Open's Recovery A repairs it. A
// crash during the meta flip itself leaves an invalid meta; Open's
// Recovery B repairs it.
func (w *WAL) Checkpoint() error {
	savedCursor := w.cursor

	newOp := w.op.other()
	if err := w.meta.writeAt(indicatorFor(newOp), 0); err != nil {
		return err
	}
	if err := w.meta.sync(); err != nil {
		return err
	}
	w.op = newOp

	if err := w.replayLogOnto(fileFor(w, w.op)); err != nil {
		return err
	}

	if err := w.log.truncate(0); err != nil {
		return err
	}
	if err := w.log.sync(); err != nil {
		return err
	}

	w.cursor = savedCursor
	return nil
}

// replayLogOnto applies every entry in wal.log, in order, to dst, then
// fsyncs dst. A torn tail (readLogEntry returning errTruncatedLogEntry) ends
// replay early without error: everything parsed so far has been applied.
func (w *WAL) replayLogOnto(dst *file) error {
	size, err := w.log.size()
	if err != nil {
		return err
	}
	if size == 0 {
		return nil
	}

	r := &fileReader{f: w.log, off: 0}
	for {
		entry, err := readLogEntry(r)
		if err != nil {
			if err == io.EOF || err == errTruncatedLogEntry {
				break
			}
			return err
		}
		if entry.isSetLen {
			if err := dst.truncate(int64(entry.newLength)); err != nil {
				return err
			}
		} else {
			if err := dst.writeAt(entry.payload, int64(entry.position)); err != nil {
				return err
			}
		}
	}
	return dst.sync()
}

// fileReader adapts a *file's positional reads to io.Reader, so the log
// entry codec can consume it sequentially without knowing about offsets.
type fileReader struct {
	f   *file
	off int64
}

func (r *fileReader) Read(p []byte) (int, error) {
	n, err := r.f.readAt(p, r.off)
	r.off += int64(n)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
