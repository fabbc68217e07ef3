// Package atomdb wires the store/cache/codec layers into a single root
// cell (spec.md §6), the way deroproject-graviton's NewDiskStore/
// NewMemStore constructors pick a storage_layer and hand back a ready
// *Store. Open is the one call most programs need; everything it wires
// (chunkstore, chunkcache, chunk/textual, chunk/binary, cell, view,
// convert) remains independently usable for callers who want more
// control.
package atomdb

import (
	"time"

	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomlog"
	"github.com/conjurernix/atomdb/cell"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/chunk/binary"
	"github.com/conjurernix/atomdb/chunk/textual"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/hash"
)

// Cell is the root-cell handle Open returns. It is an alias for
// package cell's type so callers never need to import package cell
// themselves for the common case.
type Cell = cell.Cell

// CodecKind selects which chunk.Codec Open wires in.
type CodecKind int

const (
	// Textual selects the human-readable, self-describing codec
	// (package chunk/textual).
	Textual CodecKind = iota
	// Binary selects the compact CBOR-backed codec (package
	// chunk/binary).
	Binary
)

// StoreConfig selects and configures a chunkstore.ChunkStore backend.
// Exactly one of Memory or Filesystem should be set; Filesystem takes
// precedence if both are.
type StoreConfig struct {
	Memory     *MemoryStoreConfig
	Filesystem *FilesystemStoreConfig
}

// MemoryStoreConfig configures chunkstore.Memory. It has no fields
// today; its presence alone selects the backend.
type MemoryStoreConfig struct{}

// FilesystemStoreConfig configures chunkstore.Filesystem.
type FilesystemStoreConfig struct {
	// Path is the sharded store's root directory, created if absent.
	Path string
}

// CacheConfig selects and configures a chunkcache.Cache. At most one of
// LRU or TTL should be set; leaving both nil selects chunkcache.Noop.
type CacheConfig struct {
	LRU *LRUCacheConfig
	TTL *TTLCacheConfig
}

// LRUCacheConfig configures chunkcache.LRU.
type LRUCacheConfig struct {
	// Capacity is the maximum number of chunks retained; values < 1 are
	// treated as 1.
	Capacity int
}

// TTLCacheConfig configures chunkcache.TTL.
type TTLCacheConfig struct {
	// Lifetime is how long an entry survives after insertion.
	Lifetime time.Duration
}

// Config configures Open.
type Config struct {
	Store StoreConfig
	Cache CacheConfig
	Codec CodecKind
	// Init, if non-nil, is persisted and installed as the cell's initial
	// root value.
	Init any
	// Logger receives the cell's lifecycle events. Defaults to a no-op
	// logger (atomlog.Nop()) when left nil.
	Logger *atomlog.Logger
}

// Open builds the configured store, cache and codec, wires them into a
// new *Cell, and optionally establishes an initial root value.
func Open(cfg Config) (*Cell, error) {
	store, err := buildStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	cache := buildCache(cfg.Cache)
	codec := buildCodec(cfg.Codec)

	c := cell.New(store, cache, codec)
	if cfg.Logger != nil {
		c.SetLogger(cfg.Logger)
	}

	if cfg.Init != nil {
		if _, err := c.Reset(cfg.Init); err != nil {
			return nil, xerrors.Errorf("atomdb: open: initial reset: %w", err)
		}
	}
	return c, nil
}

func buildStore(cfg StoreConfig) (chunkstore.ChunkStore, error) {
	if cfg.Filesystem != nil {
		return chunkstore.NewFilesystem(cfg.Filesystem.Path)
	}
	if cfg.Memory != nil {
		return chunkstore.NewMemory(), nil
	}
	return chunkstore.NewMemory(), nil
}

func buildCache(cfg CacheConfig) chunkcache.Cache {
	if cfg.LRU != nil {
		c, err := chunkcache.NewLRU(cfg.LRU.Capacity)
		if err == nil {
			return c
		}
	}
	if cfg.TTL != nil {
		return chunkcache.NewTTL(cfg.TTL.Lifetime)
	}
	return chunkcache.NewNoop()
}

func buildCodec(kind CodecKind) chunk.Codec {
	if kind == Binary {
		return binary.New()
	}
	return textual.New()
}

// Hash re-exports package hash's type for callers that only imported
// atomdb.
type Hash = hash.Hash
