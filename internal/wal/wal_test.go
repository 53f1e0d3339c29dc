package wal

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func newTestWAL(t *testing.T) *WAL {
	t.Helper()
	dir := t.TempDir()
	w, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { w.Close() })
	return w
}

// Scenario 1: new, write, read back.
func TestWriteReadRoundTrip(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := make([]byte, 4)
	if _, err := w.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("got %v, want [1 2 3 4]", got)
	}
}

// Scenario 2: seek into the middle.
func TestSeekIntoMiddle(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{9, 10, 11, 12}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := make([]byte, 2)
	if _, err := w.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{11, 12}) {
		t.Fatalf("got %v, want [11 12]", got)
	}
}

// Scenario 3: checkpoint preserves content.
func TestCheckpointPreservesContent(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{21, 22, 23, 24}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := make([]byte, 4)
	if _, err := w.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{21, 22, 23, 24}) {
		t.Fatalf("got %v, want [21 22 23 24]", got)
	}
}

// Scenario 6: set_len shrink then checkpoint (P3).
func TestSetLenShrinkThenCheckpoint(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{25, 26, 27, 28}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	n, err := w.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 4 {
		t.Fatalf("Len = %d, want 4", n)
	}

	if err := w.SetLen(3); err != nil {
		t.Fatalf("SetLen: %v", err)
	}
	n, err = w.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 3 {
		t.Fatalf("Len = %d, want 3", n)
	}

	if err := w.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	n, err = w.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if n != 3 {
		t.Fatalf("Len after checkpoint = %d, want 3", n)
	}
}

// P3: reads beyond the truncated length fail with ErrShortRead.
func TestSetLenReadBeyondLengthFails(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := w.SetLen(2); err != nil {
		t.Fatalf("SetLen: %v", err)
	}
	if _, err := w.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	buf := make([]byte, 4)
	_, err := w.Read(buf)
	if err == nil {
		t.Fatalf("Read beyond truncated length: want error, got nil")
	}
	if !errors.Is(err, ErrShortRead) {
		t.Fatalf("Read beyond truncated length: want ErrShortRead, got %v", err)
	}
}

// P2: arbitrary byte sequences round-trip.
func TestReadWriteRoundTripArbitrary(t *testing.T) {
	cases := [][]byte{
		{},
		{0},
		{0xFF},
		bytes.Repeat([]byte{0xAB}, 4096),
	}
	for _, payload := range cases {
		w := newTestWAL(t)
		if _, err := w.Write(payload); err != nil {
			t.Fatalf("Write: %v", err)
		}
		if _, err := w.Seek(0, io.SeekStart); err != nil {
			t.Fatalf("Seek: %v", err)
		}
		got := make([]byte, len(payload))
		if len(payload) > 0 {
			if _, err := w.Read(got); err != nil {
				t.Fatalf("Read: %v", err)
			}
		}
		if !bytes.Equal(got, payload) {
			t.Fatalf("got %v, want %v", got, payload)
		}
	}
}

// P4: checkpoint is observationally transparent.
func TestCheckpointTransparency(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{1, 2, 3}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Write([]byte{4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	before, err := w.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if err := w.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	after, err := w.Len()
	if err != nil {
		t.Fatalf("Len: %v", err)
	}
	if before != after {
		t.Fatalf("Len changed across checkpoint: %d -> %d", before, after)
	}

	if _, err := w.Seek(0, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	got := make([]byte, after)
	if _, err := w.Read(got); err != nil {
		t.Fatalf("Read: %v", err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3, 4, 5}) {
		t.Fatalf("got %v, want [1 2 3 4 5]", got)
	}
}

// P5: cursor position survives a checkpoint.
func TestCursorPreservedAcrossCheckpoint(t *testing.T) {
	w := newTestWAL(t)

	if _, err := w.Write([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := w.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if err := w.Checkpoint(); err != nil {
		t.Fatalf("Checkpoint: %v", err)
	}
	if got := w.Position(); got != 2 {
		t.Fatalf("Position = %d, want 2", got)
	}
}
