package chunkcache

import (
	"sync"
	"time"

	"github.com/conjurernix/atomdb/hash"
)

type ttlEntry struct {
	bytes   []byte
	storeAt time.Time
}

// TTL is an unbounded cache whose entries expire lifetime after insertion.
// An entry older than lifetime at read time is treated as a miss and
// lazily dropped, grounded on graviton's version_data_loaded-guarded
// lazy-load-on-first-touch pattern (store.go init/loadfiles), generalized
// from "load once" to "load, then expire".
type TTL struct {
	mu       sync.Mutex
	lifetime time.Duration
	entries  map[hash.Hash]ttlEntry
	now      func() time.Time
}

// NewTTL returns a cache whose entries live for lifetime after insertion.
func NewTTL(lifetime time.Duration) *TTL {
	return &TTL{
		lifetime: lifetime,
		entries:  make(map[hash.Hash]ttlEntry),
		now:      time.Now,
	}
}

func (c *TTL) Get(h hash.Hash) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[h]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.storeAt) > c.lifetime {
		delete(c.entries, h)
		return nil, false
	}
	return e.bytes, true
}

func (c *TTL) Put(h hash.Hash, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[h] = ttlEntry{bytes: b, storeAt: c.now()}
}

// Sweep drops every entry older than lifetime. Callers may run it
// periodically from a background goroutine; correctness never depends on
// it since Get already checks age lazily.
func (c *TTL) Sweep() {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	for h, e := range c.entries {
		if now.Sub(e.storeAt) > c.lifetime {
			delete(c.entries, h)
		}
	}
}

// Len reports the current entry count including not-yet-swept expired
// entries, mostly useful for tests.
func (c *TTL) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
