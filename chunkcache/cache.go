// Package chunkcache implements the bounded, advisory caches that sit in
// front of a chunkstore.ChunkStore (spec.md §4.4). A miss always falls
// through to the backend; a hit may be returned without re-validation
// because chunks are immutable (I5).
package chunkcache

import "github.com/conjurernix/atomdb/hash"

// Cache is the advisory chunk cache contract.
type Cache interface {
	Get(h hash.Hash) (b []byte, ok bool)
	Put(h hash.Hash, b []byte)
}
