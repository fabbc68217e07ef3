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

func openList(t *testing.T, v value.List) *view.ListView {
	t.Helper()
	store := chunkstore.NewMemory()
	cache := chunkcache.NewNoop()
	codec := textual.New()

	h, err := persist.Persist(store, cache, codec, v)
	require.NoError(t, err)

	got, err := view.Open(store, cache, codec, h)
	require.NoError(t, err)
	lv, ok := got.(*view.ListView)
	require.True(t, ok)
	return lv
}

func TestListView_Nth(t *testing.T) {
	lv := openList(t, value.List{"a", "b", "c"})
	require.Equal(t, 3, lv.Count())

	v, err := lv.Nth(2, nil)
	require.NoError(t, err)
	require.Equal(t, "c", v)
}

func TestListView_ConsPrepends(t *testing.T) {
	lv := openList(t, value.List{"b", "c"})
	next, err := lv.Cons("a")
	require.NoError(t, err)

	require.Equal(t, 2, lv.Count(), "original untouched")
	require.Equal(t, 3, next.Count())

	first, err := next.Nth(0, nil)
	require.NoError(t, err)
	require.Equal(t, "a", first)

	plain, err := next.ToPlain()
	require.NoError(t, err)
	require.True(t, value.Equal(value.List{"a", "b", "c"}, plain))
}

func TestListView_PrependIsImmutable(t *testing.T) {
	lv := openList(t, value.List{"a"})
	require.ErrorIs(t, lv.Prepend("z"), atomdberr.ErrImmutableView)
}
