// Package persist recursively decomposes a composite value into immutable
// chunks (spec.md §4.6), mirroring the children-first write order of
// deroproject-graviton/tree.go's commit_inner: every child is written (or
// already present, by I5) before its parent node is assembled and stored.
package persist

import (
	"bytes"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/chunkcache"
	"github.com/conjurernix/atomdb/chunkstore"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// Persist writes v (and every child it contains) to store as chunks
// through codec, populating cache along the way, and returns the hash of
// the resulting root chunk. Persisting an already-present subtree is
// idempotent: store.Put no-ops on bytes it already has (I5), so
// structurally equal subtrees are physically shared.
func Persist(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, v any) (hash.Hash, error) {
	return persistAt(store, cache, codec, v, "$")
}

func persistAt(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, v any, path string) (hash.Hash, error) {
	rec, err := buildRecord(store, cache, codec, v, path)
	if err != nil {
		return "", err
	}
	return writeRecord(store, cache, codec, rec, path)
}

func writeRecord(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, rec *chunk.ChunkRecord, path string) (hash.Hash, error) {
	b, err := codec.Encode(rec)
	if err != nil {
		return "", xerrors.Errorf("%w: encode %s: %v", atomdberr.ErrCodec, path, err)
	}
	h, err := store.Put(b)
	if err != nil {
		return "", xerrors.Errorf("%w: put %s: %v", atomdberr.ErrStoreIO, path, err)
	}
	if cache != nil {
		cache.Put(h, b)
	}
	return h, nil
}

func buildRecord(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, v any, path string) (*chunk.ChunkRecord, error) {
	switch value.Classify(v) {
	case value.KindNull, value.KindInt, value.KindFloat:
		return &chunk.ChunkRecord{Tag: chunk.TagLeaf, Scalar: normalizeLeaf(v)}, nil
	case value.KindBool:
		return &chunk.ChunkRecord{Tag: chunk.TagBool, Scalar: v.(bool)}, nil
	case value.KindBigDec:
		return &chunk.ChunkRecord{Tag: chunk.TagBigDec, Scalar: string(v.(value.BigDec))}, nil
	case value.KindRatio:
		return &chunk.ChunkRecord{Tag: chunk.TagRatio, Scalar: v.(value.Ratio).String()}, nil
	case value.KindString:
		return &chunk.ChunkRecord{Tag: chunk.TagString, Scalar: v.(string)}, nil
	case value.KindSymbol:
		return &chunk.ChunkRecord{Tag: chunk.TagSymbol, Scalar: string(v.(value.Symbol))}, nil
	case value.KindKeyword:
		kw := v.(value.Keyword)
		return &chunk.ChunkRecord{Tag: chunk.TagKeyword, KeywordNS: kw.NS, KeywordName: kw.Name}, nil
	case value.KindUUID:
		return &chunk.ChunkRecord{Tag: chunk.TagUUID, Scalar: v.(uuid.UUID).String()}, nil
	case value.KindTimestamp:
		return &chunk.ChunkRecord{Tag: chunk.TagDate, Scalar: v.(time.Time).UTC().Format(time.RFC3339Nano)}, nil
	case value.KindVector:
		return buildSeqRecord(store, cache, codec, chunk.TagVector, []any(v.(value.Vector)), path, false)
	case value.KindList:
		return buildSeqRecord(store, cache, codec, chunk.TagList, []any(v.(value.List)), path, false)
	case value.KindSet:
		return buildSeqRecord(store, cache, codec, chunk.TagSet, []any(v.(value.Set)), path, true)
	case value.KindMap:
		return buildMapRecord(store, cache, codec, v.(value.Map), path)
	default:
		return nil, xerrors.Errorf("%w: %s is of kind %s with no persister arm", atomdberr.ErrUnsupportedKind, path, value.Classify(v))
	}
}

func normalizeLeaf(v any) any {
	switch n := v.(type) {
	case nil:
		return nil
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return toInt64(n)
	}
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case uint:
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	default:
		return 0
	}
}

func buildSeqRecord(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, tag chunk.Tag, elems []any, path string, dedupAndSort bool) (*chunk.ChunkRecord, error) {
	hashes := make([]hash.Hash, 0, len(elems))
	for i, e := range elems {
		h, err := persistAt(store, cache, codec, e, elemPath(path, i))
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, h)
	}
	if dedupAndSort {
		hashes = dedupSortHashes(hashes)
	}
	return &chunk.ChunkRecord{Tag: tag, SeqChildren: hashes}, nil
}

func dedupSortHashes(hashes []hash.Hash) []hash.Hash {
	seen := make(map[hash.Hash]struct{}, len(hashes))
	out := make([]hash.Hash, 0, len(hashes))
	for _, h := range hashes {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// buildMapRecord persists each entry's value and assembles the map node
// in codec-canonical key order (spec.md §4.6). A repeated key keeps only
// its last occurrence, matching the "keys unique" invariant for a map
// literal built with duplicate keys.
func buildMapRecord(store chunkstore.ChunkStore, cache chunkcache.Cache, codec chunk.Codec, m value.Map, path string) (*chunk.ChunkRecord, error) {
	type keyedEntry struct {
		canon []byte
		entry value.MapEntry
	}
	byKey := make(map[string]int, len(m)) // canonical key bytes -> index into order
	var order []keyedEntry
	for _, e := range m {
		canon, err := chunk.CanonicalKeyBytes(e.Key)
		if err != nil {
			return nil, xerrors.Errorf("%w: %s key: %v", atomdberr.ErrCodec, path, err)
		}
		if idx, ok := byKey[string(canon)]; ok {
			order[idx].entry = e
			continue
		}
		byKey[string(canon)] = len(order)
		order = append(order, keyedEntry{canon: canon, entry: e})
	}
	sort.Slice(order, func(i, j int) bool { return bytes.Compare(order[i].canon, order[j].canon) < 0 })

	children := make([]chunk.MapChild, 0, len(order))
	for _, ke := range order {
		h, err := persistAt(store, cache, codec, ke.entry.Value, path+"{key}")
		if err != nil {
			return nil, err
		}
		children = append(children, chunk.MapChild{Key: ke.entry.Key, Hash: h})
	}
	return &chunk.ChunkRecord{Tag: chunk.TagMap, MapChildren: children}, nil
}

func elemPath(path string, i int) string {
	return path + "[" + strconv.Itoa(i) + "]"
}
