// Package binary implements chunk.Codec as a compact, typed,
// length-prefixed encoding on top of github.com/fxamacker/cbor/v2. Every
// ChunkRecord shape maps to one fixed wire struct, encoded with CBOR's
// deterministic ("core deterministic", RFC 8949 §4.2.1) mode so field
// order and integer/float widths never vary between calls.
package binary

import (
	"github.com/fxamacker/cbor/v2"
	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
)

var (
	encMode = mustEncMode()
	decMode = mustDecMode()
)

func mustEncMode() cbor.EncMode {
	m, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(err)
	}
	return m
}

func mustDecMode() cbor.DecMode {
	opts := cbor.DecOptions{IntDec: cbor.IntDecConvertSigned}
	m, err := opts.DecMode()
	if err != nil {
		panic(err)
	}
	return m
}

// wireMapChild is the on-wire shape of one Map entry: the key's canonical
// byte form (see chunk.CanonicalKeyBytes) plus the value's child hash.
type wireMapChild struct {
	Key  []byte `cbor:"1,keyasint"`
	Hash string `cbor:"2,keyasint"`
}

// wireRecord is the on-wire shape of a ChunkRecord. Only the fields
// relevant to Tag are populated; the rest travel as zero values. Scalar
// deliberately has no omitempty: rec.Scalar legitimately holds zero
// values (false, 0, 0.0, "") for TagBool/TagLeaf/TagString, and
// OmitEmptyCBORValue would drop those along with the genuinely absent
// case, making them indistinguishable on decode. The other fields are
// safe to omit empty — an absent MapChildren/SeqChildren/KeywordNS/
// KeywordName decodes back to the same zero value a present-but-empty
// one would.
type wireRecord struct {
	Tag         uint8          `cbor:"1,keyasint"`
	Scalar      any            `cbor:"2,keyasint"`
	KeywordNS   string         `cbor:"3,keyasint,omitempty"`
	KeywordName string         `cbor:"4,keyasint,omitempty"`
	MapChildren []wireMapChild `cbor:"5,keyasint,omitempty"`
	SeqChildren []string       `cbor:"6,keyasint,omitempty"`
}

// Codec is the binary chunk.Codec implementation.
type Codec struct{}

// New returns a ready-to-use binary codec.
func New() *Codec { return &Codec{} }

func (Codec) Encode(rec *chunk.ChunkRecord) ([]byte, error) {
	w := wireRecord{Tag: uint8(rec.Tag)}

	switch rec.Tag {
	case chunk.TagMap:
		w.MapChildren = make([]wireMapChild, 0, len(rec.MapChildren))
		for _, child := range rec.MapChildren {
			kb, err := chunk.CanonicalKeyBytes(child.Key)
			if err != nil {
				return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
			}
			w.MapChildren = append(w.MapChildren, wireMapChild{Key: kb, Hash: string(child.Hash)})
		}
	case chunk.TagVector, chunk.TagList, chunk.TagSet:
		w.SeqChildren = make([]string, 0, len(rec.SeqChildren))
		for _, h := range rec.SeqChildren {
			w.SeqChildren = append(w.SeqChildren, string(h))
		}
	case chunk.TagKeyword:
		w.KeywordNS, w.KeywordName = rec.KeywordNS, rec.KeywordName
	default:
		w.Scalar = rec.Scalar
	}

	b, err := encMode.Marshal(&w)
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	return b, nil
}

func (Codec) Decode(data []byte) (*chunk.ChunkRecord, error) {
	var w wireRecord
	if err := decMode.Unmarshal(data, &w); err != nil {
		return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	tag := chunk.Tag(w.Tag)
	rec := &chunk.ChunkRecord{Tag: tag}

	switch tag {
	case chunk.TagMap:
		rec.MapChildren = make([]chunk.MapChild, 0, len(w.MapChildren))
		for _, wc := range w.MapChildren {
			key, err := chunk.ParseCanonicalKey(wc.Key)
			if err != nil {
				return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
			}
			rec.MapChildren = append(rec.MapChildren, chunk.MapChild{Key: key, Hash: hash.Hash(wc.Hash)})
		}
	case chunk.TagVector, chunk.TagList, chunk.TagSet:
		rec.SeqChildren = make([]hash.Hash, 0, len(w.SeqChildren))
		for _, s := range w.SeqChildren {
			rec.SeqChildren = append(rec.SeqChildren, hash.Hash(s))
		}
	case chunk.TagKeyword:
		rec.KeywordNS, rec.KeywordName = w.KeywordNS, w.KeywordName
	default:
		rec.Scalar = w.Scalar
	}
	return rec, nil
}
