package wal

import (
	"errors"
	"io"
)

// recover classifies the on-disk state at Open time and repairs it to a
// legal resting state before the WAL is handed to the caller.
func (w *WAL) recover() error {
	metaBuf := make([]byte, indicatorSize+1) // +1 so a wrong-size meta still reads fully
	n, err := w.meta.readAt(metaBuf, 0)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	// A meta file shorter than indicatorSize+1 bytes (including empty) reads
	// fully with io.EOF; that is not a failure here, just a non-32-byte
	// indicator, which classifyIndicator below will reject as invalid.
	metaBuf = metaBuf[:n]

	op, valid := classifyIndicator(metaBuf)
	logSize, err := w.log.size()
	if err != nil {
		return err
	}

	switch {
	case valid && logSize == 0:
		// Clean: nothing to repair.
		w.op = op
		return nil

	case valid && logSize != 0:
		return w.recoverTypeA(op)

	default:
		return w.recoverTypeB()
	}
}

// recoverTypeA restores the operational file from the fallback, discarding
// whatever partially-applied mutations the log still describes. It is
// idempotent: the fallback is never touched, so repeating it is a no-op
// beyond the second run's own copy-and-truncate.
func (w *WAL) recoverTypeA(op operational) error {
	w.op = op
	opFile := fileFor(w, op)
	fallback := fileFor(w, op.other())

	if err := opFile.copyFrom(fallback); err != nil {
		return err
	}
	if err := w.log.truncate(0); err != nil {
		return err
	}
	return w.log.sync()
}

// recoverTypeB handles a meta indicator that is not a legal stable value,
// meaning the process crashed mid meta-rewrite during a checkpoint. Neither
// file can be trusted as "operational" by reading meta, since meta itself is
// torn. The policy is unconditional: tock survives, tick is rebuilt from it,
// and meta is set to all-ones.
func (w *WAL) recoverTypeB() error {
	if err := w.tick.copyFrom(w.tock); err != nil {
		return err
	}
	if err := w.meta.writeAt(oneIndicator, 0); err != nil {
		return err
	}
	if err := w.meta.sync(); err != nil {
		return err
	}
	if err := w.log.truncate(0); err != nil {
		return err
	}
	if err := w.log.sync(); err != nil {
		return err
	}

	w.op = opTock
	w.cursor = 0
	return nil
}
