package chunk

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/value"
)

func TestCanonicalKeyBytes_RoundTrip(t *testing.T) {
	cases := []any{
		nil,
		true,
		int64(42),
		3.14,
		value.BigDec("1.50"),
		value.Ratio{N: 1, D: 3},
		"hello",
		value.Symbol("sym"),
		value.Keyword{NS: "ns", Name: "k"},
		value.Vector{int64(1), "two", nil},
		value.Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}},
	}
	for _, c := range cases {
		b, err := CanonicalKeyBytes(c)
		require.NoError(t, err)
		got, err := ParseCanonicalKey(b)
		require.NoError(t, err)
		require.True(t, value.Equal(c, got), "roundtrip mismatch for %#v -> %#v", c, got)
	}
}

func TestCanonicalKeyBytes_Deterministic(t *testing.T) {
	m1 := value.Map{{Key: "a", Value: int64(1)}, {Key: "b", Value: int64(2)}}
	m2 := value.Map{{Key: "b", Value: int64(2)}, {Key: "a", Value: int64(1)}}
	b1, err := CanonicalKeyBytes(m1)
	require.NoError(t, err)
	b2, err := CanonicalKeyBytes(m2)
	require.NoError(t, err)
	require.Equal(t, b1, b2)
}
