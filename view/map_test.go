package view_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/chunk/textual"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/persist"
	"github.com/conjurernix/atomdb/value"
	"github.com/conjurernix/atomdb/view"
)

func openMap(t *testing.T, m value.Map) (*view.MapView, chunkstore.ChunkStore) {
	t.Helper()
	store := chunkstore.NewMemory()
	cache := chunkcache.NewNoop()
	codec := textual.New()

	h, err := persist.Persist(store, cache, codec, m)
	require.NoError(t, err)

	got, err := view.Open(store, cache, codec, h)
	require.NoError(t, err)
	mv, ok := got.(*view.MapView)
	require.True(t, ok)
	return mv, store
}

func TestMapView_CountAndContainsKeyNoLoad(t *testing.T) {
	mv, _ := openMap(t, value.Map{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: int64(2)},
	})
	require.Equal(t, 2, mv.Count())
	require.True(t, mv.ContainsKey("a"))
	require.False(t, mv.ContainsKey("z"))
}

func TestMapView_Get(t *testing.T) {
	mv, _ := openMap(t, value.Map{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: "two"},
	})
	v, ok, err := mv.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "two", v)

	_, ok, err = mv.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMapView_KeysCanonicalOrder(t *testing.T) {
	mv, _ := openMap(t, value.Map{
		{Key: "z", Value: int64(1)},
		{Key: "a", Value: int64(2)},
	})
	keys := mv.Keys()
	require.Len(t, keys, 2)
	require.Equal(t, "a", keys[0])
	require.Equal(t, "z", keys[1])
}

func TestMapView_AssocNewKey(t *testing.T) {
	mv, _ := openMap(t, value.Map{{Key: "a", Value: int64(1)}})
	next, err := mv.Assoc("b", int64(2))
	require.NoError(t, err)

	require.Equal(t, 1, mv.Count(), "original view untouched")
	require.Equal(t, 2, next.Count())

	v, ok, err := next.Get("b")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(2), v)
}

func TestMapView_AssocOverwritesExistingKey(t *testing.T) {
	mv, _ := openMap(t, value.Map{{Key: "a", Value: int64(1)}})
	next, err := mv.Assoc("a", int64(99))
	require.NoError(t, err)
	require.Equal(t, 1, next.Count())

	v, ok, err := next.Get("a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(99), v)
}

func TestMapView_Dissoc(t *testing.T) {
	mv, _ := openMap(t, value.Map{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: int64(2)},
	})
	next, err := mv.Dissoc("a")
	require.NoError(t, err)
	require.Equal(t, 1, next.Count())
	require.False(t, next.ContainsKey("a"))
	require.True(t, next.ContainsKey("b"))
}

func TestMapView_PutAndDeleteAreImmutable(t *testing.T) {
	mv, _ := openMap(t, value.Map{{Key: "a", Value: int64(1)}})
	require.ErrorIs(t, mv.Put("a", int64(2)), atomdberr.ErrImmutableView)
	require.ErrorIs(t, mv.Delete("a"), atomdberr.ErrImmutableView)
}

func TestMapView_ToPlainRoundtrip(t *testing.T) {
	want := value.Map{
		{Key: "a", Value: int64(1)},
		{Key: "b", Value: value.Vector{int64(1), int64(2)}},
	}
	mv, _ := openMap(t, want)
	plain, err := mv.ToPlain()
	require.NoError(t, err)
	require.True(t, value.Equal(want, plain))
}
