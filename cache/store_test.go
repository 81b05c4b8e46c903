package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	found, _, err := s.Load(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Put(ctx, "ns", "key", []byte("payload")))

	found, raw, err := s.Load(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte("payload"), raw)
}

func TestStoreEntryPathLayout(t *testing.T) {
	s := NewStore("/data/caches")
	assert.Equal(t, filepath.Join("/data/caches", "square", "abc123.cache"), s.EntryPath("square", "abc123"))
}

func TestStoreDefaultRoot(t *testing.T) {
	assert.Equal(t, DefaultRoot, NewStore("").Root())
}

func TestStorePutLeavesNoTempFiles(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Put(ctx, "ns", "key", []byte("v")))

	dirents, err := os.ReadDir(filepath.Join(root, "ns"))
	require.NoError(t, err)
	require.Len(t, dirents, 1)
	assert.Equal(t, "key.cache", dirents[0].Name())
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "ns", "key", []byte("v")))

	found, err := s.Remove(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.True(t, found)

	found, err = s.Remove(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.False(t, found)

	found, _, err = s.Load(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestStoreRemoveNamespace(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "ns", "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "ns", "b", []byte("2")))

	found, err := s.RemoveNamespace(ctx, "ns")
	assert.NoError(t, err)
	assert.True(t, found)

	namespaces, err := s.Namespaces(ctx)
	assert.NoError(t, err)
	assert.Empty(t, namespaces)

	found, err = s.RemoveNamespace(ctx, "ns")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestStoreNamespaces(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	namespaces, err := s.Namespaces(ctx)
	assert.NoError(t, err)
	assert.Empty(t, namespaces)

	require.NoError(t, s.Put(ctx, "alpha", "k", []byte("1")))
	require.NoError(t, s.Put(ctx, "beta", "k", []byte("2")))

	namespaces, err = s.Namespaces(ctx)
	assert.NoError(t, err)
	assert.ElementsMatch(t, []string{"alpha", "beta"}, namespaces)
}

func TestStoreNamespacesMissingRoot(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "nope"))
	namespaces, err := s.Namespaces(context.Background())
	assert.NoError(t, err)
	assert.Empty(t, namespaces)
}

func TestStoreEntriesSkipsNonEntries(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Put(ctx, "ns", "key", []byte("payload")))

	// A stale temp file and a stray subdirectory are not entries.
	require.NoError(t, os.WriteFile(filepath.Join(root, "ns", "key.cache.tmp-stale"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(root, "ns", "sub"), 0o755))

	entries, err := s.Entries(ctx, "ns")
	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ns", entries[0].Namespace)
	assert.Equal(t, "key", entries[0].Key)
	assert.Equal(t, int64(7), entries[0].Size)
	assert.WithinDuration(t, time.Now(), entries[0].ModTime, time.Minute)
}

func TestStoreEntriesMissingNamespace(t *testing.T) {
	s := NewStore(t.TempDir())
	entries, err := s.Entries(context.Background(), "nope")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorePurgeAll(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())
	require.NoError(t, s.Put(ctx, "ns", "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "ns", "b", []byte("2")))

	removed, err := s.Purge(ctx, "ns", 0)
	assert.NoError(t, err)
	assert.Equal(t, 2, removed)

	entries, err := s.Entries(ctx, "ns")
	assert.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStorePurgeOlderThan(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, s.Put(ctx, "ns", "old", []byte("1")))
	require.NoError(t, s.Put(ctx, "ns", "new", []byte("2")))

	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(s.EntryPath("ns", "old"), stale, stale))

	removed, err := s.Purge(ctx, "ns", 24*time.Hour)
	assert.NoError(t, err)
	assert.Equal(t, 1, removed)

	entries, err := s.Entries(ctx, "ns")
	assert.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Key)
}

func TestStoreLoadDirectoryAtEntryPathIsMiss(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	s := NewStore(root)
	require.NoError(t, os.MkdirAll(s.EntryPath("ns", "key"), 0o755))

	found, _, err := s.Load(ctx, "ns", "key")
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestStoreRejectsUnsafeNames(t *testing.T) {
	ctx := context.Background()
	s := NewStore(t.TempDir())

	assert.Error(t, s.Put(ctx, "", "key", nil))
	assert.Error(t, s.Put(ctx, "ns", "", nil))
	assert.Error(t, s.Put(ctx, "../escape", "key", nil))
	assert.Error(t, s.Put(ctx, "ns", "../../etc/passwd", nil))

	_, _, err := s.Load(ctx, "ns", `a\b`)
	assert.Error(t, err)
}

func TestStoreContextCancelled(t *testing.T) {
	s := NewStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Load(ctx, "ns", "key")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, "ns", "key", nil), context.Canceled)
}
