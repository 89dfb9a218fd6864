package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorageUploadAndGet(t *testing.T) {
	store := NewMemoryStorage()

	err := store.Upload(context.Background(), "evidence/a.jpg", []byte("payload"), "image/jpeg")
	require.NoError(t, err)

	data, ok := store.Get("evidence/a.jpg")
	require.True(t, ok)
	assert.Equal(t, []byte("payload"), data)
	assert.Equal(t, 1, store.Len())

	_, ok = store.Get("evidence/missing.jpg")
	assert.False(t, ok)
}

func TestMemoryStorageCopiesData(t *testing.T) {
	store := NewMemoryStorage()

	buf := []byte("original")
	require.NoError(t, store.Upload(context.Background(), "k", buf, "text/plain"))
	buf[0] = 'X'

	data, ok := store.Get("k")
	require.True(t, ok)
	assert.Equal(t, []byte("original"), data, "stored bytes must not alias the caller's buffer")
}

func TestMemoryStoragePublicURL(t *testing.T) {
	store := NewMemoryStorage()
	assert.Equal(t, "memory://stock-in-evidence/x/y.png", store.PublicURL("stock-in-evidence/x/y.png"))
}
