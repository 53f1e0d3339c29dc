package wal

// Write appends a log entry recording the intended mutation, fsyncs the
// log, applies the write to the operational file, and fsyncs the operational
// file. A crash at any point leaves the directory repairable by Open: with a
// non-empty log, Open's Recovery A copies the fallback file over the
// operational file and empties the log, so the stream returns to its state at
// the last completed checkpoint.
func (w *WAL) Write(p []byte) (int, error) {
	position := uint64(w.cursor)

	entry := logEntry{position: position, payload: p}
	if err := w.appendLogEntry(entry); err != nil {
		return 0, err
	}

	op := w.operationalFile()
	if err := op.writeAt(p, w.cursor); err != nil {
		return 0, err
	}
	if err := op.sync(); err != nil {
		return 0, err
	}

	w.cursor += int64(len(p))
	return len(p), nil
}

// SetLen truncates or extends the operational file to newLength, following
// the same log-then-apply pipeline as Write.
func (w *WAL) SetLen(newLength uint64) error {
	entry := logEntry{isSetLen: true, newLength: newLength}
	if err := w.appendLogEntry(entry); err != nil {
		return err
	}

	op := w.operationalFile()
	if err := op.truncate(int64(newLength)); err != nil {
		return err
	}
	if err := op.sync(); err != nil {
		return err
	}

	if w.cursor > int64(newLength) {
		w.cursor = int64(newLength)
	}
	return nil
}

// appendLogEntry encodes entry, appends it to the end of wal.log, and
// fsyncs wal.log. After this call returns successfully the mutation is
// durably intended even if the process crashes before it is applied.
func (w *WAL) appendLogEntry(entry logEntry) error {
	size, err := w.log.size()
	if err != nil {
		return err
	}
	buf := entry.encode(nil)
	if err := w.log.writeAt(buf, size); err != nil {
		return err
	}
	return w.log.sync()
}
