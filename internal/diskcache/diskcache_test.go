package diskcache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/NCSOPHAL/landscapist/pkg/errors"
)

func TestCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	key := "aabbccdd"
	payload := []byte("png-bytes")
	require.NoError(t, c.Set(key, payload, "png"))

	assert.True(t, c.Has(key))
	data, err := c.Get(key)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	stats := c.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(len(payload)), stats.Bytes)
}

func TestCacheMiss(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = c.Get("absent")
	assert.ErrorIs(t, err, pkgerrors.ErrCacheMiss)
	assert.False(t, c.Has("absent"))
}

func TestCachePersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("aa11", []byte("one"), "png"))
	require.NoError(t, c.Set("bb22", []byte("two"), "jpeg"))

	reopened, err := New(dir, 0)
	require.NoError(t, err)

	data, err := reopened.Get("aa11")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), data)
	assert.Equal(t, 2, reopened.Stats().Entries)
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 10)
	require.NoError(t, err)

	require.NoError(t, c.Set("old1", []byte("aaaa"), ""))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, c.Set("old2", []byte("bbbb"), ""))
	time.Sleep(2 * time.Millisecond)

	// Touch old1 so old2 becomes the eviction candidate.
	_, err = c.Get("old1")
	require.NoError(t, err)
	time.Sleep(2 * time.Millisecond)

	require.NoError(t, c.Set("new1", []byte("cccc"), ""))

	assert.True(t, c.Has("old1"))
	assert.False(t, c.Has("old2"), "the least recently used entry is evicted")
	assert.True(t, c.Has("new1"), "a fresh write survives its own eviction pass")
	assert.LessOrEqual(t, c.Stats().Bytes, int64(10))
}

func TestCacheDelete(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("aa11", []byte("one"), ""))

	require.NoError(t, c.Delete("aa11"))
	assert.False(t, c.Has("aa11"))
	assert.NoError(t, c.Delete("aa11"), "deleting an absent key is a no-op")
}

func TestCacheClear(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("aa11", []byte("one"), ""))
	require.NoError(t, c.Set("bb22", []byte("two"), ""))

	require.NoError(t, c.Clear())
	stats := c.Stats()
	assert.Equal(t, 0, stats.Entries)
	assert.Equal(t, int64(0), stats.Bytes)

	_, err = c.Get("aa11")
	assert.ErrorIs(t, err, pkgerrors.ErrCacheMiss)
}

func TestCacheEntriesOrdered(t *testing.T) {
	t.Parallel()

	c, err := New(t.TempDir(), 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("first", []byte("1"), ""))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, c.Set("second", []byte("2"), ""))

	entries := c.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "second", entries[0].Key, "most recently used first")
	assert.Equal(t, "first", entries[1].Key)
}

func TestCacheReconcilesMissingObjects(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("gone", []byte("data"), ""))

	require.NoError(t, os.Remove(filepath.Join(dir, "objects", "go", "gone")))

	reopened, err := New(dir, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, reopened.Stats().Entries,
		"index entries without a backing object are dropped on load")
}

func TestCacheVanishedObjectIsAMiss(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c, err := New(dir, 0)
	require.NoError(t, err)
	require.NoError(t, c.Set("gone", []byte("data"), ""))

	require.NoError(t, os.Remove(filepath.Join(dir, "objects", "go", "gone")))

	_, err = c.Get("gone")
	assert.ErrorIs(t, err, pkgerrors.ErrCacheMiss)
	assert.Equal(t, 0, c.Stats().Entries)
}
