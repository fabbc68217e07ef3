// Package chunkstore implements the content-addressed byte-blob backends
// AtomDB persists chunks to. Both implementations generalize
// deroproject-graviton/store.go's Store, which already distinguishes a
// "disk" and "memory" storage_layer behind one type; here each layer gets
// its own focused type behind a shared ChunkStore interface instead of a
// storage_layer_type switch.
package chunkstore

import "github.com/conjurernix/atomdb/hash"

// ChunkStore is the content-addressed byte blob contract (spec.md §4.3).
// Put computes the hash of b, stores it if absent, and returns the hash;
// putting already-present bytes is a no-op that still returns the same
// hash. Get returns the stored bytes for h, or ok=false if h is unknown —
// never an error for an unknown hash. Backends expose no listing and no
// delete.
type ChunkStore interface {
	Put(b []byte) (hash.Hash, error)
	Get(h hash.Hash) (b []byte, ok bool, err error)
}
