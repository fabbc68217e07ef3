package atomdb_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb"
	"github.com/conjurernix/atomdb/convert"
	"github.com/conjurernix/atomdb/value"
)

func TestOpen_DefaultsToMemoryAndTextual(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{})
	require.NoError(t, err)

	v, err := c.Deref()
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestOpen_WithInitEstablishesRoot(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{
		Init: value.Vector{int64(1), int64(2), int64(3)},
	})
	require.NoError(t, err)

	_, ok := c.RootHash()
	require.True(t, ok)

	v, err := c.Deref()
	require.NoError(t, err)
	plain, err := convert.ToPlain(v)
	require.NoError(t, err)
	require.True(t, value.Equal(value.Vector{int64(1), int64(2), int64(3)}, plain))
}

func TestOpen_FilesystemStoreWritesChunksUnderRoot(t *testing.T) {
	dir := filepath.Join(os.TempDir(), "atomdb-test-"+time.Now().Format("20060102150405.000000000"))
	defer os.RemoveAll(dir)

	c, err := atomdb.Open(atomdb.Config{
		Store: atomdb.StoreConfig{Filesystem: &atomdb.FilesystemStoreConfig{Path: dir}},
		Init:  value.Map{{Key: "a", Value: int64(1)}},
	})
	require.NoError(t, err)
	h, ok := c.RootHash()
	require.True(t, ok)

	got, ok, err := c.Store().Get(h)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, got)
}

func TestOpen_BinaryCodecSelectable(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{
		Codec: atomdb.Binary,
		Init:  value.Set{"x", "y"},
	})
	require.NoError(t, err)

	v, err := c.Deref()
	require.NoError(t, err)
	plain, err := convert.ToPlain(v)
	require.NoError(t, err)
	require.True(t, value.Equal(value.Set{"x", "y"}, plain))
}

func TestOpen_LRUCache(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{
		Cache: atomdb.CacheConfig{LRU: &atomdb.LRUCacheConfig{Capacity: 16}},
		Init:  int64(42),
	})
	require.NoError(t, err)

	v, err := c.Deref()
	require.NoError(t, err)
	require.Equal(t, int64(42), v)
}

func TestOpen_TTLCache(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{
		Cache: atomdb.CacheConfig{TTL: &atomdb.TTLCacheConfig{Lifetime: time.Minute}},
		Init:  "hello",
	})
	require.NoError(t, err)

	v, err := c.Deref()
	require.NoError(t, err)
	require.Equal(t, "hello", v)
}

func TestOpen_SwapAndCompareAndSet(t *testing.T) {
	c, err := atomdb.Open(atomdb.Config{Init: int64(1)})
	require.NoError(t, err)

	next, err := c.Swap(func(cur any) (any, error) {
		return cur.(int64) + 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), next)

	ok, err := c.CompareAndSet(int64(2), int64(3))
	require.NoError(t, err)
	require.True(t, ok)

	v, err := c.Deref()
	require.NoError(t, err)
	require.Equal(t, int64(3), v)
}
