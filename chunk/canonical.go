package chunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/conjurernix/atomdb/value"
)

// CanonicalKeyBytes produces a deterministic byte encoding of v, used by
// the Persister to order a Map's entries and to give both codecs a single,
// shared inline representation of a (possibly composite) map key — per
// spec.md §4.6/§9 "canonical-form function per value kind". Two values
// equal under value.Equal always produce identical canonical bytes, and
// vice versa, satisfying invariant I3.
func CanonicalKeyBytes(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseCanonicalKey reconstructs the value CanonicalKeyBytes produced.
func ParseCanonicalKey(b []byte) (any, error) {
	r := &canonReader{buf: b}
	v, err := decodeCanonical(r)
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.buf) {
		return nil, fmt.Errorf("canonical key: %d trailing bytes", len(r.buf)-r.pos)
	}
	return v, nil
}

func encodeCanonical(w *bytes.Buffer, v any) error {
	k := value.Classify(v)
	w.WriteByte(byte(k))

	switch k {
	case value.KindNull:
		return nil
	case value.KindBool:
		if v.(bool) {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
		return nil
	case value.KindInt:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(toInt64(v)))
		w.Write(b[:])
		return nil
	case value.KindFloat:
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], math.Float64bits(toFloat64(v)))
		w.Write(b[:])
		return nil
	case value.KindBigDec:
		writeString(w, string(v.(value.BigDec)))
		return nil
	case value.KindRatio:
		r := v.(value.Ratio)
		var b [16]byte
		binary.BigEndian.PutUint64(b[0:8], uint64(r.N))
		binary.BigEndian.PutUint64(b[8:16], uint64(r.D))
		w.Write(b[:])
		return nil
	case value.KindString:
		writeString(w, v.(string))
		return nil
	case value.KindSymbol:
		writeString(w, string(v.(value.Symbol)))
		return nil
	case value.KindKeyword:
		kw := v.(value.Keyword)
		writeString(w, kw.NS)
		writeString(w, kw.Name)
		return nil
	case value.KindUUID:
		u := v.(uuid.UUID)
		w.Write(u[:])
		return nil
	case value.KindTimestamp:
		t := v.(time.Time).UTC()
		var b [8]byte
		binary.BigEndian.PutUint64(b[:], uint64(t.UnixNano()))
		w.Write(b[:])
		return nil
	case value.KindVector:
		return encodeCanonicalSeq(w, []any(v.(value.Vector)), false)
	case value.KindList:
		return encodeCanonicalSeq(w, []any(v.(value.List)), false)
	case value.KindSet:
		return encodeCanonicalSeq(w, []any(v.(value.Set)), true)
	case value.KindMap:
		return encodeCanonicalMap(w, v.(value.Map))
	default:
		return fmt.Errorf("chunk: cannot canonicalize value of kind %s", k)
	}
}

func encodeCanonicalSeq(w *bytes.Buffer, elems []any, sortElems bool) error {
	encoded := make([][]byte, len(elems))
	for i, e := range elems {
		var b bytes.Buffer
		if err := encodeCanonical(&b, e); err != nil {
			return err
		}
		encoded[i] = b.Bytes()
	}
	if sortElems {
		sort.Slice(encoded, func(i, j int) bool { return bytes.Compare(encoded[i], encoded[j]) < 0 })
	}
	writeUvarint(w, uint64(len(encoded)))
	for _, e := range encoded {
		writeUvarint(w, uint64(len(e)))
		w.Write(e)
	}
	return nil
}

func encodeCanonicalMap(w *bytes.Buffer, m value.Map) error {
	type kv struct{ k, v []byte }
	pairs := make([]kv, len(m))
	for i, e := range m {
		var kb, vb bytes.Buffer
		if err := encodeCanonical(&kb, e.Key); err != nil {
			return err
		}
		if err := encodeCanonical(&vb, e.Value); err != nil {
			return err
		}
		pairs[i] = kv{kb.Bytes(), vb.Bytes()}
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].k, pairs[j].k) < 0 })
	writeUvarint(w, uint64(len(pairs)))
	for _, p := range pairs {
		writeUvarint(w, uint64(len(p.k)))
		w.Write(p.k)
		writeUvarint(w, uint64(len(p.v)))
		w.Write(p.v)
	}
	return nil
}

type canonReader struct {
	buf []byte
	pos int
}

func (r *canonReader) readByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, fmt.Errorf("canonical key: unexpected end of input")
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

func (r *canonReader) readN(n int) ([]byte, error) {
	if r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("canonical key: unexpected end of input")
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *canonReader) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	if n <= 0 {
		return 0, fmt.Errorf("canonical key: bad uvarint")
	}
	r.pos += n
	return v, nil
}

func decodeCanonical(r *canonReader) (any, error) {
	tagByte, err := r.readByte()
	if err != nil {
		return nil, err
	}
	k := value.Kind(tagByte)

	switch k {
	case value.KindNull:
		return nil, nil
	case value.KindBool:
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		return b != 0, nil
	case value.KindInt:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return int64(binary.BigEndian.Uint64(b)), nil
	case value.KindFloat:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
	case value.KindBigDec:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return value.BigDec(s), nil
	case value.KindRatio:
		b, err := r.readN(16)
		if err != nil {
			return nil, err
		}
		return value.Ratio{N: int64(binary.BigEndian.Uint64(b[0:8])), D: int64(binary.BigEndian.Uint64(b[8:16]))}, nil
	case value.KindString:
		return readString(r)
	case value.KindSymbol:
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		return value.Symbol(s), nil
	case value.KindKeyword:
		ns, err := readString(r)
		if err != nil {
			return nil, err
		}
		name, err := readString(r)
		if err != nil {
			return nil, err
		}
		return value.Keyword{NS: ns, Name: name}, nil
	case value.KindUUID:
		b, err := r.readN(16)
		if err != nil {
			return nil, err
		}
		u, err := uuid.FromBytes(b)
		if err != nil {
			return nil, err
		}
		return u, nil
	case value.KindTimestamp:
		b, err := r.readN(8)
		if err != nil {
			return nil, err
		}
		return time.Unix(0, int64(binary.BigEndian.Uint64(b))).UTC(), nil
	case value.KindVector:
		elems, err := decodeCanonicalSeq(r)
		if err != nil {
			return nil, err
		}
		return value.Vector(elems), nil
	case value.KindList:
		elems, err := decodeCanonicalSeq(r)
		if err != nil {
			return nil, err
		}
		return value.List(elems), nil
	case value.KindSet:
		elems, err := decodeCanonicalSeq(r)
		if err != nil {
			return nil, err
		}
		return value.Set(elems), nil
	case value.KindMap:
		return decodeCanonicalMap(r)
	default:
		return nil, fmt.Errorf("chunk: unknown canonical tag %d", tagByte)
	}
}

func decodeCanonicalSeq(r *canonReader) ([]any, error) {
	count, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	elems := make([]any, 0, count)
	for i := uint64(0); i < count; i++ {
		n, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		sub, err := r.readN(int(n))
		if err != nil {
			return nil, err
		}
		v, err := decodeCanonical(&canonReader{buf: sub})
		if err != nil {
			return nil, err
		}
		elems = append(elems, v)
	}
	return elems, nil
}

func decodeCanonicalMap(r *canonReader) (value.Map, error) {
	count, err := r.readUvarint()
	if err != nil {
		return nil, err
	}
	m := make(value.Map, 0, count)
	for i := uint64(0); i < count; i++ {
		kn, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		kb, err := r.readN(int(kn))
		if err != nil {
			return nil, err
		}
		key, err := decodeCanonical(&canonReader{buf: kb})
		if err != nil {
			return nil, err
		}
		vn, err := r.readUvarint()
		if err != nil {
			return nil, err
		}
		vb, err := r.readN(int(vn))
		if err != nil {
			return nil, err
		}
		val, err := decodeCanonical(&canonReader{buf: vb})
		if err != nil {
			return nil, err
		}
		m = append(m, value.MapEntry{Key: key, Value: val})
	}
	return m, nil
}

func writeString(w *bytes.Buffer, s string) {
	writeUvarint(w, uint64(len(s)))
	w.WriteString(s)
}

func readString(r *canonReader) (string, error) {
	n, err := r.readUvarint()
	if err != nil {
		return "", err
	}
	b, err := r.readN(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func writeUvarint(w *bytes.Buffer, v uint64) {
	var b [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(b[:], v)
	w.Write(b[:n])
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

func toFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}
