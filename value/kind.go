// Package value classifies runtime Go values into the fixed set of kinds
// AtomDB persists (spec.md §3) and defines the handful of wrapper types Go
// has no native equivalent for (keyword, symbol, ratio, big-decimal).
//
// A value entering AtomDB is always a plain Go value: nil, bool, int64,
// float64, string, one of the wrapper types below, uuid.UUID, time.Time, or
// one of the four collection types (Map, Vector, List, Set). Classify is the
// total function (spec.md §4.5) that assigns exactly one Kind to any such
// value; anything it does not recognize falls through to KindLeaf, matching
// the "unknown kinds fall through to leaf" rule.
package value

import (
	"time"

	"github.com/google/uuid"
)

// Kind is the closed tag set every persisted chunk carries.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindBigDec
	KindRatio
	KindString
	KindSymbol
	KindKeyword
	KindUUID
	KindTimestamp
	KindMap
	KindVector
	KindList
	KindSet
	// KindLeaf is the fallback for any scalar Go value (including nil via
	// KindNull) that has no dedicated kind above. The zero-value default
	// case of Classify always resolves here rather than erroring, per
	// spec.md §4.5; ErrUnsupportedKind is reserved for callers that choose
	// to reject it explicitly.
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBigDec:
		return "bigdec"
	case KindRatio:
		return "ratio"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindKeyword:
		return "keyword"
	case KindUUID:
		return "uuid"
	case KindTimestamp:
		return "timestamp"
	case KindMap:
		return "map"
	case KindVector:
		return "vector"
	case KindList:
		return "list"
	case KindSet:
		return "set"
	default:
		return "leaf"
	}
}

// Symbol is a bare textual identifier, distinct from String.
type Symbol string

// Keyword is an optionally-namespaced, always-named textual identifier.
type Keyword struct {
	NS   string // optional
	Name string // required
}

func (k Keyword) String() string {
	if k.NS == "" {
		return k.Name
	}
	return k.NS + "/" + k.Name
}

// Ratio is an exact n/d rational, stored in lowest-terms-agnostic textual
// form per spec.md §3; callers that need normalization should reduce
// before constructing one.
type Ratio struct {
	N, D int64
}

func (r Ratio) String() string {
	return ratioString(r.N, r.D)
}

// BigDec is an arbitrary-precision decimal carried in its textual form
// exactly as supplied, so round-tripping never loses precision to a
// host float.
type BigDec string

// MapEntry is one key/value pair of a Map. Keys may themselves be any
// supported value, including a collection, so Map cannot be a native Go
// map (whose keys must be comparable).
type MapEntry struct {
	Key   any
	Value any
}

// Map is an unordered mapping from value to value with unique keys. The
// slice order here is incidental storage order, not semantic order — two
// Maps with the same entries in different order are equal (see Equal).
type Map []MapEntry

// Vector is an ordered, random-access sequence.
type Vector []any

// List is an ordered sequence intended for front-extension (Cons).
type List []any

// Set is an unordered collection with no duplicate members by value
// equality.
type Set []any

// Classify assigns exactly one Kind to v. Unknown Go types fall through to
// KindLeaf rather than erroring.
func Classify(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case bool:
		return KindBool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return KindInt
	case float32, float64:
		return KindFloat
	case BigDec:
		return KindBigDec
	case Ratio:
		return KindRatio
	case string:
		return KindString
	case Symbol:
		return KindSymbol
	case Keyword:
		return KindKeyword
	case uuid.UUID:
		return KindUUID
	case time.Time:
		return KindTimestamp
	case Map:
		return KindMap
	case Vector:
		return KindVector
	case List:
		return KindList
	case Set:
		return KindSet
	default:
		return KindLeaf
	}
}

func ratioString(n, d int64) string {
	if d == 0 {
		return "0/0"
	}
	buf := make([]byte, 0, 24)
	buf = appendInt(buf, n)
	buf = append(buf, '/')
	buf = appendInt(buf, d)
	return string(buf)
}

func appendInt(buf []byte, n int64) []byte {
	if n < 0 {
		buf = append(buf, '-')
		n = -n
	}
	if n == 0 {
		return append(buf, '0')
	}
	start := len(buf)
	for n > 0 {
		buf = append(buf, byte('0'+n%10))
		n /= 10
	}
	// reverse the digits just appended
	for i, j := start, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return buf
}
