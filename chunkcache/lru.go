package chunkcache

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conjurernix/atomdb/hash"
)

// LRU is a fixed-capacity, recency-ordered cache. It is the one place
// AtomDB reaches for a pack library instead of hand-rolling the teacher's
// usual linked-map bookkeeping: hashicorp/golang-lru/v2 (already pulled in
// by dolthub-dolt/go) already serializes its own recency bookkeeping
// internally, which is exactly what spec.md §5 requires of the LRU cache.
type LRU struct {
	inner *lru.Cache[hash.Hash, []byte]
}

// NewLRU returns an LRU cache with room for capacity entries. A capacity
// below 1 is treated as 1.
func NewLRU(capacity int) (*LRU, error) {
	if capacity < 1 {
		capacity = 1
	}
	c, err := lru.New[hash.Hash, []byte](capacity)
	if err != nil {
		return nil, err
	}
	return &LRU{inner: c}, nil
}

func (c *LRU) Get(h hash.Hash) ([]byte, bool) {
	return c.inner.Get(h)
}

func (c *LRU) Put(h hash.Hash, b []byte) {
	c.inner.Add(h, b)
}

// Len reports the current entry count, mostly useful for tests.
func (c *LRU) Len() int {
	return c.inner.Len()
}
