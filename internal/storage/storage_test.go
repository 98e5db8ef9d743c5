package storage_test

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"annexops/internal/storage"
	dErrors "annexops/pkg/domain-errors"
)

func TestInMemoryStoreRoundTrip(t *testing.T) {
	s := storage.NewInMemoryStore()
	ctx := context.Background()

	uri, err := s.Put(ctx, "exports/abc.zip", []byte("bundle"), "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "mem://exports/abc.zip", uri)

	data, ok := s.Get(uri)
	require.True(t, ok)
	assert.Equal(t, []byte("bundle"), data)

	signed, err := s.PresignedGet(ctx, uri, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed, "expires=")

	require.NoError(t, s.Delete(ctx, uri))
	_, err = s.PresignedGet(ctx, uri, time.Hour)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestInMemoryStoreRefusesOverwrite(t *testing.T) {
	s := storage.NewInMemoryStore()
	ctx := context.Background()

	_, err := s.Put(ctx, "exports/abc.zip", []byte("one"), "application/zip")
	require.NoError(t, err)
	_, err = s.Put(ctx, "exports/abc.zip", []byte("two"), "application/zip")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageFailure))
}

func TestFilesystemStore(t *testing.T) {
	s := storage.NewFilesystemStore(t.TempDir(), []byte("test-signing-key"))
	ctx := context.Background()

	uri, err := s.Put(ctx, "exports/abc.zip", []byte("bundle"), "application/zip")
	require.NoError(t, err)
	assert.Equal(t, "file://exports/abc.zip", uri)

	// Immutable: same key refused.
	_, err = s.Put(ctx, "exports/abc.zip", []byte("other"), "application/zip")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeStorageFailure))

	signed, err := s.PresignedGet(ctx, uri, time.Hour)
	require.NoError(t, err)

	key, expires, sig := parseDownloadURL(t, signed)
	data, err := s.Open(key, expires, sig)
	require.NoError(t, err)
	assert.Equal(t, []byte("bundle"), data)

	// Tampered signature rejected.
	_, err = s.Open(key, expires, "deadbeef")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	// Expired link rejected even with a valid-looking signature.
	_, err = s.Open(key, time.Now().Add(-time.Minute).Unix(), sig)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))

	require.NoError(t, s.Delete(ctx, uri))
	_, err = s.PresignedGet(ctx, uri, time.Hour)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestPresignCachePassthroughWithoutRedis(t *testing.T) {
	inner := storage.NewInMemoryStore()
	cache := storage.NewPresignCache(inner, nil)
	ctx := context.Background()

	uri, err := cache.Put(ctx, "exports/abc.zip", []byte("bundle"), "application/zip")
	require.NoError(t, err)

	signed, err := cache.PresignedGet(ctx, uri, time.Hour)
	require.NoError(t, err)
	assert.Contains(t, signed, "exports/abc.zip")

	require.NoError(t, cache.Delete(ctx, uri))
}

func parseDownloadURL(t *testing.T, raw string) (key string, expires int64, sig string) {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	key, err = url.PathUnescape(strings.TrimPrefix(u.Path, "/downloads/"))
	require.NoError(t, err)
	expires, err = strconv.ParseInt(u.Query().Get("expires"), 10, 64)
	require.NoError(t, err)
	return key, expires, u.Query().Get("signature")
}
