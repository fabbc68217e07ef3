// Package chunk defines ChunkRecord, the tagged node written to a
// ChunkStore backend, the Codec contract used to turn a record into bytes
// and back, and the canonical-form helper persist uses to order and embed
// map keys deterministically (spec.md §3, §4.2, §4.6).
package chunk

import "github.com/conjurernix/atomdb/hash"

// Tag identifies the shape of a ChunkRecord, mirroring spec.md §3's table
// of ChunkRecord shapes. It plays the role graviton's nullNODE/innerNODE/
// leafNODE byte constants play in node.go, generalized from three shapes
// to the full value-kind set.
type Tag uint8

const (
	TagMap Tag = iota
	TagVector
	TagList
	TagSet
	TagKeyword
	TagSymbol
	TagString
	TagUUID
	TagDate
	TagBigDec
	TagRatio
	TagBool
	TagLeaf
)

func (t Tag) String() string {
	switch t {
	case TagMap:
		return "map"
	case TagVector:
		return "vector"
	case TagList:
		return "list"
	case TagSet:
		return "set"
	case TagKeyword:
		return "keyword"
	case TagSymbol:
		return "symbol"
	case TagString:
		return "string"
	case TagUUID:
		return "uuid"
	case TagDate:
		return "date"
	case TagBigDec:
		return "bigdec"
	case TagRatio:
		return "ratio"
	case TagBool:
		return "bool"
	default:
		return "leaf"
	}
}

// MapChild is one entry of a TagMap record's children. The key is retained
// as a full value (not hash-indirected) so containment checks at the view
// layer load no child; MapView answers them with a linear scan of the
// retained keys (O(n)), not an O(1) lookup. spec.md §4.6 requires the
// inline key and pushes the codec toward a canonical serialization of it.
type MapChild struct {
	Key  any
	Hash hash.Hash
}

// ChunkRecord is the tagged node every chunk backend stores. Which fields
// are meaningful depends on Tag; this mirrors the teacher's leaf/inner
// structs, each of which only populates the fields its own shape needs.
type ChunkRecord struct {
	Tag Tag

	// Scalar holds the payload for TagLeaf (nil | int64 | float64),
	// TagBool (bool), TagString/TagSymbol (string), TagUUID/TagDate/
	// TagBigDec/TagRatio (string, in each kind's canonical textual form).
	Scalar any

	// KeywordNS/KeywordName hold the TagKeyword payload; KeywordNS is
	// empty when the keyword carries no namespace.
	KeywordNS   string
	KeywordName string

	// MapChildren holds the TagMap payload, in codec-canonical key order.
	MapChildren []MapChild

	// SeqChildren holds the TagVector/TagList/TagSet payload. Vector and
	// list children are in positional order; set children are ordered by
	// a stable sort of their own hash (their serialized form), which is
	// insertion-order independent because content addressing gives equal
	// values equal hashes.
	SeqChildren []hash.Hash
}
