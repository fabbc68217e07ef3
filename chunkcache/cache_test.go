package chunkcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/conjurernix/atomdb/hash"
)

func TestLRU_CapacityEviction(t *testing.T) {
	c, err := NewLRU(2)
	require.NoError(t, err)

	ha, hb, hc := hash.Hash("a"), hash.Hash("b"), hash.Hash("c")
	c.Put(ha, []byte("A"))
	c.Put(hb, []byte("B"))

	_, ok := c.Get(ha) // promote a to MRU
	require.True(t, ok)

	c.Put(hc, []byte("C")) // evicts b (LRU), not a

	_, ok = c.Get(hb)
	require.False(t, ok)

	_, ok = c.Get(ha)
	require.True(t, ok)
	_, ok = c.Get(hc)
	require.True(t, ok)
	require.LessOrEqual(t, c.Len(), 2)
}

func TestTTL_Expiry(t *testing.T) {
	c := NewTTL(10 * time.Millisecond)
	cur := time.Now()
	c.now = func() time.Time { return cur }

	h := hash.Hash("x")
	c.Put(h, []byte("v"))

	_, ok := c.Get(h)
	require.True(t, ok)

	cur = cur.Add(20 * time.Millisecond)
	_, ok = c.Get(h)
	require.False(t, ok)
}

func TestNoop_AlwaysMisses(t *testing.T) {
	c := NewNoop()
	c.Put("h", []byte("v"))
	_, ok := c.Get("h")
	require.False(t, ok)
}
