package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"belongings/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore("http://localhost:8080/files")

	require.NoError(t, store.Put(ctx, "users/u/items/i/p.png", "image/png", strings.NewReader("pixels"), 6))
	assert.True(t, store.Has("users/u/items/i/p.png"))

	body, err := store.Get(ctx, "users/u/items/i/p.png")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))

	url, err := store.PresignGet(ctx, "users/u/items/i/p.png", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/files/"), url)
	assert.Contains(t, url, "expires=")

	require.NoError(t, store.Delete(ctx, "users/u/items/i/p.png"))
	require.NoError(t, store.Delete(ctx, "users/u/items/i/p.png"))
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStore_Missing(t *testing.T) {
	store := NewMemoryStore("")

	_, err := store.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	_, err = store.PresignGet(context.Background(), "nope", time.Minute)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestMemoryStore_SizeMismatch(t *testing.T) {
	err := NewMemoryStore("").Put(context.Background(), "k", "image/png", strings.NewReader("abc"), 10)
	assert.Error(t, err)
}
