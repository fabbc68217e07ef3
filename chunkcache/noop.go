package chunkcache

import "github.com/conjurernix/atomdb/hash"

// Noop never caches anything: every Get misses, every Put is discarded.
// Grounded on graviton's explicit unknown_layer default case in store.go —
// making the "do nothing" path its own named, trivial type rather than a
// nil check scattered through callers.
type Noop struct{}

// NewNoop returns a cache that never holds anything.
func NewNoop() Noop { return Noop{} }

func (Noop) Get(hash.Hash) ([]byte, bool) { return nil, false }

func (Noop) Put(hash.Hash, []byte) {}
