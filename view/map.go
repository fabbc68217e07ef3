package view

import (
	"sync"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// MapView is a lazy view over a persisted map node. Keys are retained
// directly (not hash-indirected) in the node's canonical order, so
// ContainsKey and Keys never touch the store; only Get of a not-yet-seen
// key loads its value chunk.
type MapView struct {
	backend
	h        hash.Hash
	children []chunk.MapChild // canonical key order, as persisted

	mu    sync.Mutex
	local map[int]any // index into children -> materialized value
}

func newMapView(b backend, h hash.Hash, children []chunk.MapChild) *MapView {
	return &MapView{backend: b, h: h, children: children, local: make(map[int]any)}
}

func (v *MapView) Kind() value.Kind { return value.KindMap }

func (v *MapView) Hash() hash.Hash { return v.h }

// Count returns the number of entries without loading any child.
func (v *MapView) Count() int { return len(v.children) }

// Keys returns every key in the node's canonical order. No child values
// are loaded.
func (v *MapView) Keys() []any {
	out := make([]any, len(v.children))
	for i, c := range v.children {
		out[i] = c.Key
	}
	return out
}

func (v *MapView) indexOf(key any) int {
	for i, c := range v.children {
		if value.Equal(c.Key, key) {
			return i
		}
	}
	return -1
}

// ContainsKey answers from the child table alone; no child value is
// loaded.
func (v *MapView) ContainsKey(key any) bool {
	return v.indexOf(key) >= 0
}

// Get returns the value stored under key, loading and caching it on
// first access. ok is false when key is absent.
func (v *MapView) Get(key any) (val any, ok bool, err error) {
	i := v.indexOf(key)
	if i < 0 {
		return nil, false, nil
	}
	val, err = v.valueAt(i)
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (v *MapView) valueAt(i int) (any, error) {
	v.mu.Lock()
	if cached, ok := v.local[i]; ok {
		v.mu.Unlock()
		return cached, nil
	}
	v.mu.Unlock()

	val, err := v.loadChild(v.children[i].Hash)
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.local[i] = val
	v.mu.Unlock()
	return val, nil
}

// Assoc returns a new MapView with key bound to val, leaving the
// receiver untouched. A pre-existing key is overwritten in place,
// preserving canonical order; a new key is inserted in its canonical
// position.
func (v *MapView) Assoc(key, val any) (*MapView, error) {
	valHash, err := v.persistChild(val)
	if err != nil {
		return nil, err
	}
	keyBytes, err := chunk.CanonicalKeyBytes(key)
	if err != nil {
		return nil, err
	}

	next := make([]chunk.MapChild, 0, len(v.children)+1)
	inserted := false
	for _, c := range v.children {
		cb, err := chunk.CanonicalKeyBytes(c.Key)
		if err != nil {
			return nil, err
		}
		if !inserted && value.Equal(c.Key, key) {
			next = append(next, chunk.MapChild{Key: key, Hash: valHash})
			inserted = true
			continue
		}
		if !inserted && compareBytes(keyBytes, cb) < 0 {
			next = append(next, chunk.MapChild{Key: key, Hash: valHash})
			inserted = true
		}
		next = append(next, c)
	}
	if !inserted {
		next = append(next, chunk.MapChild{Key: key, Hash: valHash})
	}
	return v.withChildren(next)
}

// Dissoc returns a new MapView with key removed. Removing an absent key
// returns a view equivalent to the receiver.
func (v *MapView) Dissoc(key any) (*MapView, error) {
	next := make([]chunk.MapChild, 0, len(v.children))
	for _, c := range v.children {
		if value.Equal(c.Key, key) {
			continue
		}
		next = append(next, c)
	}
	return v.withChildren(next)
}

func (v *MapView) withChildren(children []chunk.MapChild) (*MapView, error) {
	rec := &chunk.ChunkRecord{Tag: chunk.TagMap, MapChildren: children}
	h, err := writeNode(v.backend, rec)
	if err != nil {
		return nil, err
	}
	return newMapView(v.backend, h, children), nil
}

// Put always fails: MapView is immutable. Use Assoc to obtain a new view
// with the binding applied.
func (v *MapView) Put(key, val any) error {
	return errImmutable("map view Put: use Assoc")
}

// Delete always fails: MapView is immutable. Use Dissoc to obtain a new
// view with the key removed.
func (v *MapView) Delete(key any) error {
	return errImmutable("map view Delete: use Dissoc")
}

// ToPlain recursively materializes this view into an in-memory
// value.Map, detaching it from the backing store.
func (v *MapView) ToPlain() (any, error) {
	return v.toPlain()
}

func (v *MapView) toPlain() (value.Map, error) {
	m := make(value.Map, 0, len(v.children))
	for i, c := range v.children {
		val, err := v.valueAt(i)
		if err != nil {
			return nil, err
		}
		plain, err := toPlainErr(val)
		if err != nil {
			return nil, err
		}
		m = append(m, value.MapEntry{Key: c.Key, Value: plain})
	}
	return m, nil
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}
