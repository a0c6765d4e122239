package blobstore

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := []byte("support vectors")
	require.NoError(t, store.Put(ctx, "a/model", data))

	// Put copies its input.
	data[0] = 'X'

	blob, err := store.Open(ctx, "a/model")
	require.NoError(t, err)
	defer blob.Close()

	_, mappable := blob.(Mappable)
	assert.False(t, mappable)

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "support vectors", string(got))

	require.NoError(t, store.Put(ctx, "a/CURRENT", []byte("a/model")))
	require.NoError(t, store.Put(ctx, "b/CURRENT", []byte("b/model")))

	names, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/CURRENT", "a/model"}, names)

	require.NoError(t, store.Delete(ctx, "a/model"))
	_, err = store.Open(ctx, "a/model")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PutIfNotExists(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.PutIfNotExists(ctx, "v1", []byte("a")))
	assert.ErrorIs(t, store.PutIfNotExists(ctx, "v1", []byte("b")), ErrExists)

	var _ ConditionalPutter = store
}

func TestReader(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := make([]byte, 3*defaultChunkSize+17)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, store.Put(ctx, "big", data))

	blob, err := store.Open(ctx, "big")
	require.NoError(t, err)
	defer blob.Close()

	got, err := io.ReadAll(NewReader(ctx, blob))
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestReadAllEmpty(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "empty", nil))

	blob, err := store.Open(ctx, "empty")
	require.NoError(t, err)

	got, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Empty(t, got)
}
