package convert_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/chunk/textual"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/convert"
	"github.com/conjurernix/atomdb/persist"
	"github.com/conjurernix/atomdb/value"
	"github.com/conjurernix/atomdb/view"
)

func TestToPlain_Scalar(t *testing.T) {
	got, err := convert.ToPlain("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", got)
}

func TestToPlain_NestedCollection(t *testing.T) {
	store := chunkstore.NewMemory()
	cache := chunkcache.NewNoop()
	codec := textual.New()

	want := value.Map{
		{Key: "name", Value: "alice"},
		{Key: "tags", Value: value.Set{"a", "b"}},
		{Key: "scores", Value: value.Vector{int64(1), int64(2), int64(3)}},
	}

	h, err := persist.Persist(store, cache, codec, want)
	require.NoError(t, err)

	v, err := view.Open(store, cache, codec, h)
	require.NoError(t, err)

	plain, err := convert.ToPlain(v)
	require.NoError(t, err)
	require.True(t, value.Equal(want, plain))
}
