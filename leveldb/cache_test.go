package leveldb_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/fwojciec/fieldscrape"
	"github.com/fwojciec/fieldscrape/leveldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestCache(t *testing.T) *leveldb.Cache {
	t.Helper()
	cache, err := leveldb.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_PutGet(t *testing.T) {
	t.Parallel()

	t.Run("returns the stored bytes", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceRaw, "k1", []byte("hello")))

		got, err := cache.Get(ctx, fieldscrape.NamespaceRaw, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("hello"), got)
	})

	t.Run("overwrites silently", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceRaw, "k1", []byte("first")))
		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceRaw, "k1", []byte("second")))

		got, err := cache.Get(ctx, fieldscrape.NamespaceRaw, "k1")
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("keeps namespaces apart", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceRaw, "same", []byte("raw")))
		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceStructured, "same", []byte("structured")))

		raw, err := cache.Get(ctx, fieldscrape.NamespaceRaw, "same")
		require.NoError(t, err)
		structured, err := cache.Get(ctx, fieldscrape.NamespaceStructured, "same")
		require.NoError(t, err)

		assert.Equal(t, []byte("raw"), raw)
		assert.Equal(t, []byte("structured"), structured)

		_, err = cache.Get(ctx, fieldscrape.NamespaceCatalog, "same")
		assert.Equal(t, fieldscrape.ENOTFOUND, fieldscrape.ErrorCode(err))
	})

	t.Run("returns ENOTFOUND for missing key", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)

		_, err := cache.Get(context.Background(), fieldscrape.NamespaceStructured, "missing")

		require.Error(t, err)
		assert.Equal(t, fieldscrape.ENOTFOUND, fieldscrape.ErrorCode(err))
	})

	t.Run("empty value is not absence", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)
		ctx := context.Background()

		require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceRaw, "empty", nil))

		got, err := cache.Get(ctx, fieldscrape.NamespaceRaw, "empty")
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rejects unknown namespace", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)

		_, err := cache.Get(context.Background(), fieldscrape.Namespace("bogus"), "k")

		assert.Equal(t, fieldscrape.EINVALID, fieldscrape.ErrorCode(err))
	})

	t.Run("fails fast on cancelled context", func(t *testing.T) {
		t.Parallel()

		cache := openTestCache(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := cache.Put(ctx, fieldscrape.NamespaceRaw, "k", []byte("v"))

		require.Error(t, err)
		assert.Equal(t, fieldscrape.ECACHE, fieldscrape.ErrorCode(err))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCache_Reopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cache")
	ctx := context.Background()

	cache, err := leveldb.Open(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put(ctx, fieldscrape.NamespaceStructured, "k", []byte("persisted")))
	require.NoError(t, cache.Close())

	cache, err = leveldb.Open(path)
	require.NoError(t, err)
	defer cache.Close()

	got, err := cache.Get(ctx, fieldscrape.NamespaceStructured, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), got)
}
