package load

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/chunk/binary"
	"github.com/conjurernix/atomdb/chunk/textual"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/persist"
	"github.com/conjurernix/atomdb/value"
)

func codecs() map[string]chunk.Codec {
	return map[string]chunk.Codec{
		"textual": textual.New(),
		"binary":  binary.New(),
	}
}

func roundtrip(t *testing.T, codec chunk.Codec, v any) any {
	t.Helper()
	store := chunkstore.NewMemory()
	cache := chunkcache.NewNoop()

	h, err := persist.Persist(store, cache, codec, v)
	require.NoError(t, err)

	got, err := Load(store, cache, codec, h)
	require.NoError(t, err)
	return got
}

func TestLoad_ScalarRoundtrip(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.New()

	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			cases := []any{
				nil,
				int64(7),
				int64(0),
				2.25,
				0.0,
				true,
				false,
				value.BigDec("9.99"),
				value.Ratio{N: -2, D: 5},
				"hello world",
				"",
				value.Symbol("sym"),
				value.Keyword{NS: "ns", Name: "kw"},
				id,
				now,
			}
			for _, v := range cases {
				got := roundtrip(t, codec, v)
				require.True(t, value.Equal(v, got), "roundtrip of %#v got %#v", v, got)
			}
		})
	}
}

func TestLoad_CollectionRoundtrip(t *testing.T) {
	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			v := value.Map{
				{Key: value.Keyword{Name: "id"}, Value: int64(1)},
				{Key: value.Keyword{Name: "tags"}, Value: value.Set{"a", "b", "a"}},
				{Key: value.Keyword{Name: "items"}, Value: value.Vector{int64(1), int64(2), int64(3)}},
			}
			want := value.Map{
				{Key: value.Keyword{Name: "id"}, Value: int64(1)},
				{Key: value.Keyword{Name: "tags"}, Value: value.Set{"a", "b"}},
				{Key: value.Keyword{Name: "items"}, Value: value.Vector{int64(1), int64(2), int64(3)}},
			}
			got := roundtrip(t, codec, v)
			require.True(t, value.Equal(want, got), "roundtrip mismatch: got %#v", got)
		})
	}
}

func TestLoad_MapKeyOrderIrrelevant(t *testing.T) {
	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			a := value.Map{
				{Key: "x", Value: int64(1)},
				{Key: "y", Value: int64(2)},
			}
			b := value.Map{
				{Key: "y", Value: int64(2)},
				{Key: "x", Value: int64(1)},
			}
			gotA := roundtrip(t, codec, a)
			gotB := roundtrip(t, codec, b)
			require.True(t, value.Equal(gotA, gotB))
		})
	}
}

func TestLoad_ChunkMissingPropagates(t *testing.T) {
	codec := textual.New()
	store := chunkstore.NewMemory()
	cache := chunkcache.NewNoop()

	missing := hash.Hash("0000000000000000000000000000000000000000000000000000000000000000")[:64]
	_, err := Load(store, cache, codec, missing)
	require.Error(t, err)
}

func TestLoad_NestedVectorOfMaps(t *testing.T) {
	for name, codec := range codecs() {
		t.Run(name, func(t *testing.T) {
			v := value.Vector{
				value.Map{{Key: "n", Value: int64(1)}},
				value.Map{{Key: "n", Value: int64(2)}},
			}
			got := roundtrip(t, codec, v)
			require.True(t, value.Equal(v, got))
		})
	}
}
