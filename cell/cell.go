// Package cell implements the root cell (spec.md §4.9): a single mutable
// "current root hash" field swapped under CAS, backed by a chunk store,
// cache and codec. Unlike deroproject-graviton's tree.go, which reserves
// and retries a version number under one store-wide sync.RWMutex
// (commitsync), Cell.Swap uses a lock-free atomic.Pointer CAS loop, per
// spec.md §4.9's "single word / CAS primitive" requirement — recorded as
// a deliberate generalization beyond the teacher's coarser lock.
package cell

import (
	"sync/atomic"

	"github.com/conjurernix/atomdb/atomlog"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/persist"
	"github.com/conjurernix/atomdb/view"
)

// Cell is a root-hash cell: a single content-addressed pointer that can
// be read, reset, functionally swapped, or compare-and-set, with every
// mutation serialized through an atomic CAS on the pointer field.
type Cell struct {
	root  atomic.Pointer[hash.Hash]
	store chunkstore.ChunkStore
	cache chunkcache.Cache
	codec chunk.Codec
	log   *atomlog.Logger
}

// New returns a cell with no root (Deref returns nil until Reset or Swap
// establishes one). Lifecycle events are discarded; call SetLogger to
// observe them.
func New(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec) *Cell {
	return &Cell{store: store, cache: cache, codec: codec, log: atomlog.Nop()}
}

// SetLogger installs l as the cell's lifecycle event logger.
func (c *Cell) SetLogger(l *atomlog.Logger) {
	c.log = l
}

// Store returns the cell's chunk backend.
func (c *Cell) Store() chunkstore.ChunkStore { return c.store }

// Cache returns the cell's chunk cache.
func (c *Cell) Cache() chunkcache.Cache { return c.cache }

// RootHash returns the current root hash and whether one is set.
func (c *Cell) RootHash() (hash.Hash, bool) {
	p := c.root.Load()
	if p == nil || p.IsZero() {
		return hash.Zero, false
	}
	return *p, true
}

// Deref returns a lazy view over the current root hash, or nil if no
// root is set.
func (c *Cell) Deref() (any, error) {
	h, ok := c.RootHash()
	if !ok {
		return nil, nil
	}
	return view.Open(c.store, c.cache, c.codec, h)
}

// Reset persists v, atomically replaces the root hash regardless of its
// previous value, and returns v.
func (c *Cell) Reset(v any) (any, error) {
	h, err := c.persistRoot(v)
	if err != nil {
		c.log.Error("reset", err)
		return nil, err
	}
	c.root.Store(&h)
	c.log.Reset(h)
	return v, nil
}

// Swap reads the current view, computes fn(cur), persists the result
// and atomically replaces the root hash, retrying from the top if
// another writer raced it. fn must be effectively pure: contention can
// invoke it more than once on the same cur.
func (c *Cell) Swap(fn func(cur any) (any, error)) (any, error) {
	for attempt := 0; ; attempt++ {
		before := c.root.Load()
		cur, err := c.derefPointer(before)
		if err != nil {
			c.log.Error("swap", err)
			return nil, err
		}

		next, err := fn(cur)
		if err != nil {
			c.log.Error("swap", err)
			return nil, err
		}

		h, err := c.persistRoot(next)
		if err != nil {
			c.log.Error("swap", err)
			return nil, err
		}

		if c.root.CompareAndSwap(before, &h) {
			c.log.Swap(hashOf(before), h)
			return next, nil
		}
		// lost the race: another writer moved the root under us, retry
		// fn against the now-current value.
		c.log.SwapRetry(attempt)
	}
}

func hashOf(p *hash.Hash) hash.Hash {
	if p == nil {
		return hash.Zero
	}
	return *p
}

// CompareAndSet persists newValue and atomically replaces the root hash
// only if the currently-dereferenced value equals oldExpected by value
// semantics (materializing as needed, never by hash). Returns false
// without persisting anything if the comparison fails. Also returns false
// if another writer moves the root concurrently; by then newValue has
// already been persisted, but the root is left as the other writer set it.
func (c *Cell) CompareAndSet(oldExpected, newValue any) (bool, error) {
	before := c.root.Load()
	cur, err := c.derefPointer(before)
	if err != nil {
		return false, err
	}
	if !view.Equal(cur, oldExpected) {
		return false, nil
	}

	h, err := c.persistRoot(newValue)
	if err != nil {
		c.log.Error("compare-and-set", err)
		return false, err
	}
	applied := c.root.CompareAndSwap(before, &h)
	c.log.CompareAndSet(applied)
	return applied, nil
}

// persistRoot installs v as a chunk the same way persist.Persist does,
// except that a v already backed by a persisted chunk (a view.View
// returned by Deref or by one of its own functional-update methods)
// reuses that chunk's existing hash instead of being walked and
// re-persisted. This lets Assoc/Conj/Cons/Dissoc/Disj results flow
// straight back into Reset/Swap/CompareAndSet without losing the
// structural sharing they exist to provide, mirroring
// view.backend.persistChild's identical short-circuit.
func (c *Cell) persistRoot(v any) (hash.Hash, error) {
	if vw, ok := v.(view.View); ok {
		return vw.Hash(), nil
	}
	return persist.Persist(c.store, c.cache, c.codec, v)
}

func (c *Cell) derefPointer(p *hash.Hash) (any, error) {
	if p == nil || p.IsZero() {
		return nil, nil
	}
	return view.Open(c.store, c.cache, c.codec, *p)
}
