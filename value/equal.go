package value

import (
	"time"

	"github.com/google/uuid"
)

// Equal implements the domain equality relation used throughout AtomDB:
// scalars compare by value, collections compare structurally, Map and Set
// compare order-independently, Vector and List compare order-sensitively.
// It is independent of any codec — callers needing codec-canonical
// comparisons (map key ordering, set member ordering) go through the
// chunk package instead.
func Equal(a, b any) bool {
	ka, kb := Classify(a), Classify(b)
	if ka != kb {
		// allow leaf-vs-leaf comparisons to fall through to a generic
		// comparison below even when both land on KindLeaf but differ in
		// concrete Go type (e.g. two different unknown scalar types).
		if ka != KindLeaf || kb != KindLeaf {
			return false
		}
	}

	switch ka {
	case KindNull:
		return true
	case KindBool:
		return a.(bool) == b.(bool)
	case KindInt:
		return asInt64(a) == asInt64(b)
	case KindFloat:
		return asFloat64(a) == asFloat64(b)
	case KindBigDec:
		return a.(BigDec) == b.(BigDec)
	case KindRatio:
		return a.(Ratio) == b.(Ratio)
	case KindString:
		return a.(string) == b.(string)
	case KindSymbol:
		return a.(Symbol) == b.(Symbol)
	case KindKeyword:
		return a.(Keyword) == b.(Keyword)
	case KindUUID:
		return a.(uuid.UUID) == b.(uuid.UUID)
	case KindTimestamp:
		return a.(time.Time).Equal(b.(time.Time))
	case KindVector:
		return equalSeq(a.(Vector), b.(Vector))
	case KindList:
		return equalSeq(a.(List), b.(List))
	case KindMap:
		return equalMap(a.(Map), b.(Map))
	case KindSet:
		return equalSet(a.(Set), b.(Set))
	default:
		return a == b
	}
}

func asInt64(v any) int64 {
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

func asFloat64(v any) float64 {
	switch n := v.(type) {
	case float32:
		return float64(n)
	case float64:
		return n
	default:
		return 0
	}
}

func equalSeq[T ~[]any](a, b T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func equalMap(a, b Map) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, ea := range a {
		found := false
		for i, eb := range b {
			if used[i] {
				continue
			}
			if Equal(ea.Key, eb.Key) && Equal(ea.Value, eb.Value) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func equalSet(a, b Set) bool {
	if len(a) != len(b) {
		return false
	}
	used := make([]bool, len(b))
	for _, va := range a {
		found := false
		for i, vb := range b {
			if used[i] {
				continue
			}
			if Equal(va, vb) {
				used[i] = true
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
