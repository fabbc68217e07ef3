// Package textual implements chunk.Codec as a human-readable,
// self-describing form: after a one-character tag, counts and leaf
// numbers are decimal text terminated by ';', strings are netstrings
// ("<byte-length>:<bytes>"), child hashes are 'h' plus 64 hex characters,
// and bools and nil are a single character, so a reader
// can walk the structure by eye the same way graviton's tree.go frames a
// leaf's key/value as uvarint-length-prefixed fields (commit_leaf,
// loadfullleaffromstore) — rendered here in decimal ASCII instead of raw
// varint bytes so the output stays inspectable with a text editor.
package textual

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"strconv"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"

	"golang.org/x/xerrors"
)

// Codec is the textual chunk.Codec implementation.
type Codec struct{}

// New returns a ready-to-use textual codec.
func New() *Codec { return &Codec{} }

const (
	tagMap     = 'm'
	tagVector  = 'v'
	tagList    = 'l'
	tagSet     = 's'
	tagKeyword = 'k'
	tagSymbol  = 'y'
	tagString  = 't'
	tagUUID    = 'u'
	tagDate    = 'd'
	tagBigDec  = 'b'
	tagRatio   = 'r'
	tagBool    = 'o'
	tagLeaf    = 'x'
)

var tagChars = map[chunk.Tag]byte{
	chunk.TagMap:     tagMap,
	chunk.TagVector:  tagVector,
	chunk.TagList:    tagList,
	chunk.TagSet:     tagSet,
	chunk.TagKeyword: tagKeyword,
	chunk.TagSymbol:  tagSymbol,
	chunk.TagString:  tagString,
	chunk.TagUUID:    tagUUID,
	chunk.TagDate:    tagDate,
	chunk.TagBigDec:  tagBigDec,
	chunk.TagRatio:   tagRatio,
	chunk.TagBool:    tagBool,
	chunk.TagLeaf:    tagLeaf,
}

var charTags = func() map[byte]chunk.Tag {
	m := make(map[byte]chunk.Tag, len(tagChars))
	for t, c := range tagChars {
		m[c] = t
	}
	return m
}()

// Encode renders rec in the textual form described in the package doc.
func (Codec) Encode(rec *chunk.ChunkRecord) ([]byte, error) {
	var buf bytes.Buffer
	c, ok := tagChars[rec.Tag]
	if !ok {
		return nil, xerrors.Errorf("%w: unknown tag %d", atomdberr.ErrCodec, rec.Tag)
	}
	buf.WriteByte(c)

	switch rec.Tag {
	case chunk.TagMap:
		writeCount(&buf, len(rec.MapChildren))
		for _, child := range rec.MapChildren {
			kb, err := chunk.CanonicalKeyBytes(child.Key)
			if err != nil {
				return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
			}
			writeNetstring(&buf, hex.EncodeToString(kb))
			if err := writeHash(&buf, child.Hash); err != nil {
				return nil, err
			}
		}
	case chunk.TagVector, chunk.TagList, chunk.TagSet:
		writeCount(&buf, len(rec.SeqChildren))
		for _, h := range rec.SeqChildren {
			if err := writeHash(&buf, h); err != nil {
				return nil, err
			}
		}
	case chunk.TagKeyword:
		writeNetstring(&buf, rec.KeywordNS)
		writeNetstring(&buf, rec.KeywordName)
	case chunk.TagSymbol, chunk.TagString, chunk.TagUUID, chunk.TagDate, chunk.TagBigDec:
		s, ok := rec.Scalar.(string)
		if !ok {
			return nil, xerrors.Errorf("%w: tag %s expects a string scalar, got %T", atomdberr.ErrCodec, rec.Tag, rec.Scalar)
		}
		writeNetstring(&buf, s)
	case chunk.TagRatio:
		r, ok := rec.Scalar.(string)
		if !ok {
			return nil, xerrors.Errorf("%w: ratio scalar must be a string", atomdberr.ErrCodec)
		}
		writeNetstring(&buf, r)
	case chunk.TagBool:
		b, ok := rec.Scalar.(bool)
		if !ok {
			return nil, xerrors.Errorf("%w: bool scalar must be a bool", atomdberr.ErrCodec)
		}
		if b {
			buf.WriteByte('1')
		} else {
			buf.WriteByte('0')
		}
	case chunk.TagLeaf:
		if err := encodeLeafScalar(&buf, rec.Scalar); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func encodeLeafScalar(buf *bytes.Buffer, v any) error {
	switch n := v.(type) {
	case nil:
		buf.WriteByte('n')
	case int64:
		buf.WriteByte('i')
		buf.WriteString(strconv.FormatInt(n, 10))
		buf.WriteByte(';')
	case float64:
		buf.WriteByte('g')
		buf.WriteString(strconv.FormatFloat(n, 'g', -1, 64))
		buf.WriteByte(';')
	default:
		return xerrors.Errorf("%w: leaf scalar of unsupported type %T", atomdberr.ErrCodec, v)
	}
	return nil
}

func writeHash(buf *bytes.Buffer, h hash.Hash) error {
	if !hash.Valid(h) {
		return xerrors.Errorf("%w: invalid child hash %q", atomdberr.ErrCodec, h)
	}
	buf.WriteByte('h')
	buf.WriteString(string(h))
	return nil
}

func writeCount(buf *bytes.Buffer, n int) {
	buf.WriteString(strconv.Itoa(n))
	buf.WriteByte(';')
}

func writeNetstring(buf *bytes.Buffer, s string) {
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte(':')
	buf.WriteString(s)
}

// Decode parses bytes previously produced by Encode.
func (Codec) Decode(data []byte) (*chunk.ChunkRecord, error) {
	r := &reader{buf: data}
	c, err := r.readByte()
	if err != nil {
		return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	tag, ok := charTags[c]
	if !ok {
		return nil, xerrors.Errorf("%w: unknown tag char %q", atomdberr.ErrCodec, c)
	}
	rec := &chunk.ChunkRecord{Tag: tag}

	switch tag {
	case chunk.TagMap:
		n, err := r.readCount()
		if err != nil {
			return nil, err
		}
		rec.MapChildren = make([]chunk.MapChild, 0, n)
		for i := 0; i < n; i++ {
			hexKey, err := r.readNetstring()
			if err != nil {
				return nil, err
			}
			kb, err := hex.DecodeString(hexKey)
			if err != nil {
				return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
			}
			key, err := chunk.ParseCanonicalKey(kb)
			if err != nil {
				return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
			}
			h, err := r.readHash()
			if err != nil {
				return nil, err
			}
			rec.MapChildren = append(rec.MapChildren, chunk.MapChild{Key: key, Hash: h})
		}
	case chunk.TagVector, chunk.TagList, chunk.TagSet:
		n, err := r.readCount()
		if err != nil {
			return nil, err
		}
		rec.SeqChildren = make([]hash.Hash, 0, n)
		for i := 0; i < n; i++ {
			h, err := r.readHash()
			if err != nil {
				return nil, err
			}
			rec.SeqChildren = append(rec.SeqChildren, h)
		}
	case chunk.TagKeyword:
		ns, err := r.readNetstring()
		if err != nil {
			return nil, err
		}
		name, err := r.readNetstring()
		if err != nil {
			return nil, err
		}
		rec.KeywordNS, rec.KeywordName = ns, name
	case chunk.TagSymbol, chunk.TagString, chunk.TagUUID, chunk.TagDate, chunk.TagBigDec, chunk.TagRatio:
		s, err := r.readNetstring()
		if err != nil {
			return nil, err
		}
		rec.Scalar = s
	case chunk.TagBool:
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		rec.Scalar = b == '1'
	case chunk.TagLeaf:
		v, err := decodeLeafScalar(r)
		if err != nil {
			return nil, err
		}
		rec.Scalar = v
	}
	return rec, nil
}

func decodeLeafScalar(r *reader) (any, error) {
	c, err := r.readByte()
	if err != nil {
		return nil, err
	}
	switch c {
	case 'n':
		return nil, nil
	case 'i':
		s, err := r.readUntil(';')
		if err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
		}
		return n, nil
	case 'g':
		s, err := r.readUntil(';')
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
		}
		return f, nil
	default:
		return nil, xerrors.Errorf("%w: unknown leaf tag %q", atomdberr.ErrCodec, c)
	}
}

type reader struct {
	buf []byte
	pos int
}

func (r *reader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("unexpected end of input")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *reader) readUntil(delim byte) (string, error) {
	start := r.pos
	for r.pos < len(r.buf) {
		if r.buf[r.pos] == delim {
			s := string(r.buf[start:r.pos])
			r.pos++
			return s, nil
		}
		r.pos++
	}
	return "", fmt.Errorf("delimiter %q not found", delim)
}

func (r *reader) readCount() (int, error) {
	s, err := r.readUntil(';')
	if err != nil {
		return 0, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	return n, nil
}

func (r *reader) readNetstring() (string, error) {
	lenStr, err := r.readUntil(':')
	if err != nil {
		return "", xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	n, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	if r.pos+n > len(r.buf) {
		return "", xerrors.Errorf("%w: netstring overruns buffer", atomdberr.ErrCodec)
	}
	s := string(r.buf[r.pos : r.pos+n])
	r.pos += n
	return s, nil
}

func (r *reader) readHash() (hash.Hash, error) {
	c, err := r.readByte()
	if err != nil {
		return "", xerrors.Errorf("%w: %v", atomdberr.ErrCodec, err)
	}
	if c != 'h' {
		return "", xerrors.Errorf("%w: expected hash marker, got %q", atomdberr.ErrCodec, c)
	}
	if r.pos+hash.HexLen > len(r.buf) {
		return "", xerrors.Errorf("%w: hash overruns buffer", atomdberr.ErrCodec)
	}
	h := hash.Hash(r.buf[r.pos : r.pos+hash.HexLen])
	r.pos += hash.HexLen
	return h, nil
}
