package recordstream_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rift-db/crashwal/internal/wal"
	"github.com/rift-db/crashwal/pkg/recordstream"
)

func newTestStore(t *testing.T) (*recordstream.Store, *wal.WAL) {
	t.Helper()
	dir := t.TempDir()
	w, err := wal.New(dir)
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })

	s, err := recordstream.Open(w)
	require.NoError(t, err)
	return s, w
}

func TestAppendGetRoundTrip(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Append("alpha", []byte("first")))
	require.NoError(t, s.Append("beta", []byte("second")))

	got, err := s.Get("alpha")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), got)

	got, err = s.Get("beta")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)

	assert.Equal(t, 2, s.Len())
}

func TestAppendOverwritesPreviousValue(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Append("key", []byte("v1")))
	require.NoError(t, s.Append("key", []byte("v2")))

	got, err := s.Get("key")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, 1, s.Len())
}

func TestDeleteRemovesKey(t *testing.T) {
	s, _ := newTestStore(t)

	require.NoError(t, s.Append("key", []byte("v1")))
	require.NoError(t, s.Delete("key"))

	_, err := s.Get("key")
	assert.ErrorIs(t, err, recordstream.ErrKeyNotFound)

	err = s.Delete("key")
	assert.ErrorIs(t, err, recordstream.ErrKeyNotFound)
}

func TestGetMissingKey(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.Get("missing")
	assert.ErrorIs(t, err, recordstream.ErrKeyNotFound)
}

func TestCheckpointThenReopenRebuildsIndex(t *testing.T) {
	dir := t.TempDir()

	w, err := wal.New(dir)
	require.NoError(t, err)

	s, err := recordstream.Open(w)
	require.NoError(t, err)
	require.NoError(t, s.Append("alpha", []byte("first")))
	require.NoError(t, s.Append("beta", []byte("second")))
	require.NoError(t, s.Delete("alpha"))
	require.NoError(t, s.Checkpoint())
	require.NoError(t, w.Close())

	w2, err := wal.Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { w2.Close() })

	s2, err := recordstream.Open(w2)
	require.NoError(t, err)

	_, err = s2.Get("alpha")
	assert.ErrorIs(t, err, recordstream.ErrKeyNotFound)

	got, err := s2.Get("beta")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), got)
	assert.Equal(t, 1, s2.Len())
}
