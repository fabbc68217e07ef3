package textual

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
)

func roundTrip(t *testing.T, rec *chunk.ChunkRecord) *chunk.ChunkRecord {
	t.Helper()
	c := New()
	b, err := c.Encode(rec)
	require.NoError(t, err)
	got, err := c.Decode(b)
	require.NoError(t, err)
	return got
}

func TestEncodeDecode_Leaf(t *testing.T) {
	got := roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagLeaf, Scalar: nil})
	require.Nil(t, got.Scalar)

	got = roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagLeaf, Scalar: int64(-42)})
	require.Equal(t, int64(-42), got.Scalar)

	got = roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagLeaf, Scalar: 3.5})
	require.Equal(t, 3.5, got.Scalar)
}

func TestEncodeDecode_String(t *testing.T) {
	got := roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagString, Scalar: "hello world"})
	require.Equal(t, "hello world", got.Scalar)
}

func TestEncodeDecode_Keyword(t *testing.T) {
	got := roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagKeyword, KeywordNS: "ns", KeywordName: "name"})
	require.Equal(t, "ns", got.KeywordNS)
	require.Equal(t, "name", got.KeywordName)
}

func TestEncodeDecode_Vector(t *testing.T) {
	h1 := hash.Of([]byte("a"))
	h2 := hash.Of([]byte("b"))
	got := roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagVector, SeqChildren: []hash.Hash{h1, h2}})
	require.Equal(t, []hash.Hash{h1, h2}, got.SeqChildren)
}

func TestEncodeDecode_Map(t *testing.T) {
	h1 := hash.Of([]byte("a"))
	rec := &chunk.ChunkRecord{Tag: chunk.TagMap, MapChildren: []chunk.MapChild{{Key: "x", Hash: h1}}}
	got := roundTrip(t, rec)
	require.Len(t, got.MapChildren, 1)
	require.Equal(t, "x", got.MapChildren[0].Key)
	require.Equal(t, h1, got.MapChildren[0].Hash)
}

func TestEncodeDecode_Bool(t *testing.T) {
	got := roundTrip(t, &chunk.ChunkRecord{Tag: chunk.TagBool, Scalar: true})
	require.Equal(t, true, got.Scalar)
}

func TestDeterministic(t *testing.T) {
	c := New()
	rec := &chunk.ChunkRecord{Tag: chunk.TagString, Scalar: "same"}
	b1, err := c.Encode(rec)
	require.NoError(t, err)
	b2, err := c.Encode(rec)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
