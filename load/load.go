// Package load implements the strict loader (spec.md §4.7): given a root
// chunk hash it recursively reconstructs the full plain value tree,
// failing closed on any missing chunk or codec error. It is the semantic
// reference the lazy views in package view are checked against — Load
// followed by value.Equal must agree with whatever a view materializes.
package load

import (
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// Load reconstructs the value rooted at h, reading chunks from cache first
// and falling back to store, populating cache on a miss the same way
// persist.Persist does on write.
func Load(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, h hash.Hash) (any, error) {
	rec, err := Fetch(store, cache, codec, h)
	if err != nil {
		return nil, err
	}
	return buildValue(store, cache, codec, rec)
}

// Fetch reads and decodes the chunk at h, checking cache before store and
// populating cache on a miss. Exported so package view can load a node
// record without re-implementing the cache-then-store lookup.
func Fetch(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, h hash.Hash) (*chunk.ChunkRecord, error) {
	var b []byte
	if cache != nil {
		if cached, ok := cache.Get(h); ok {
			b = cached
		}
	}
	if b == nil {
		stored, ok, err := store.Get(h)
		if err != nil {
			return nil, xerrors.Errorf("%w: get %s: %v", atomdberr.ErrStoreIO, h, err)
		}
		if !ok {
			return nil, xerrors.Errorf("%w: %s", atomdberr.ErrChunkMissing, h)
		}
		b = stored
		if cache != nil {
			cache.Put(h, b)
		}
	}
	rec, err := codec.Decode(b)
	if err != nil {
		return nil, xerrors.Errorf("%w: decode %s: %v", atomdberr.ErrCodec, h, err)
	}
	return rec, nil
}

func buildValue(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, rec *chunk.ChunkRecord) (any, error) {
	switch rec.Tag {
	case chunk.TagVector:
		elems, err := loadSeq(store, cache, codec, rec.SeqChildren)
		if err != nil {
			return nil, err
		}
		return value.Vector(elems), nil
	case chunk.TagList:
		elems, err := loadSeq(store, cache, codec, rec.SeqChildren)
		if err != nil {
			return nil, err
		}
		return value.List(elems), nil
	case chunk.TagSet:
		elems, err := loadSeq(store, cache, codec, rec.SeqChildren)
		if err != nil {
			return nil, err
		}
		return value.Set(elems), nil
	case chunk.TagMap:
		return loadMap(store, cache, codec, rec.MapChildren)
	default:
		return DecodeScalar(rec)
	}
}

// DecodeScalar materializes the non-collection chunk tags (everything but
// map/vector/list/set) into their plain Go/value representation. Exported
// so package view can share this logic when a lazily-loaded child turns
// out to be a scalar rather than a nested collection.
func DecodeScalar(rec *chunk.ChunkRecord) (any, error) {
	switch rec.Tag {
	case chunk.TagLeaf:
		return rec.Scalar, nil
	case chunk.TagBool:
		b, ok := rec.Scalar.(bool)
		if !ok {
			return nil, scalarTypeErr(rec.Tag, "bool", rec.Scalar)
		}
		return b, nil
	case chunk.TagBigDec:
		s, err := scalarString(rec)
		if err != nil {
			return nil, err
		}
		return value.BigDec(s), nil
	case chunk.TagRatio:
		s, err := scalarString(rec)
		if err != nil {
			return nil, err
		}
		return parseRatio(s)
	case chunk.TagString:
		return scalarString(rec)
	case chunk.TagSymbol:
		s, err := scalarString(rec)
		if err != nil {
			return nil, err
		}
		return value.Symbol(s), nil
	case chunk.TagKeyword:
		return value.Keyword{NS: rec.KeywordNS, Name: rec.KeywordName}, nil
	case chunk.TagUUID:
		s, err := scalarString(rec)
		if err != nil {
			return nil, err
		}
		u, err := uuid.Parse(s)
		if err != nil {
			return nil, xerrors.Errorf("%w: bad uuid literal: %v", atomdberr.ErrCodec, err)
		}
		return u, nil
	case chunk.TagDate:
		s, err := scalarString(rec)
		if err != nil {
			return nil, err
		}
		t, err := parseTimestamp(s)
		if err != nil {
			return nil, xerrors.Errorf("%w: bad timestamp literal: %v", atomdberr.ErrCodec, err)
		}
		return t, nil
	default:
		return nil, xerrors.Errorf("%w: unknown chunk tag %d", atomdberr.ErrCodec, rec.Tag)
	}
}

// scalarString asserts rec.Scalar decoded as a string, returning ErrCodec
// rather than panicking when a codec produced some other concrete type
// for a tag that requires one.
func scalarString(rec *chunk.ChunkRecord) (string, error) {
	s, ok := rec.Scalar.(string)
	if !ok {
		return "", scalarTypeErr(rec.Tag, "string", rec.Scalar)
	}
	return s, nil
}

func scalarTypeErr(tag chunk.Tag, want string, got any) error {
	return xerrors.Errorf("%w: tag %s expects a %s scalar, got %T", atomdberr.ErrCodec, tag, want, got)
}

func loadSeq(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, hashes []hash.Hash) ([]any, error) {
	out := make([]any, 0, len(hashes))
	for _, h := range hashes {
		v, err := Load(store, cache, codec, h)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func loadMap(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, children []chunk.MapChild) (value.Map, error) {
	m := make(value.Map, 0, len(children))
	for _, c := range children {
		v, err := Load(store, cache, codec, c.Hash)
		if err != nil {
			return nil, err
		}
		m = append(m, value.MapEntry{Key: c.Key, Value: v})
	}
	return m, nil
}
