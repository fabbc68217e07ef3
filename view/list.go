package view

import (
	"sync"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// ListView is a lazy view over a persisted list node. It shares
// VectorView's child-table shape (an ordered sequence of child hashes)
// but is intended for front-extension: Cons prepends rather than
// appending.
type ListView struct {
	backend
	h        hash.Hash
	children []hash.Hash

	mu    sync.Mutex
	local map[int]any
}

func newListView(b backend, h hash.Hash, children []hash.Hash) *ListView {
	return &ListView{backend: b, h: h, children: children, local: make(map[int]any)}
}

func (v *ListView) Kind() value.Kind { return value.KindList }

func (v *ListView) Hash() hash.Hash { return v.h }

func (v *ListView) Count() int { return len(v.children) }

// Nth returns the element at i, or def when i is out of range.
func (v *ListView) Nth(i int, def any) (any, error) {
	if i < 0 || i >= len(v.children) {
		return def, nil
	}
	return v.valueAt(i)
}

func (v *ListView) valueAt(i int) (any, error) {
	v.mu.Lock()
	if cached, ok := v.local[i]; ok {
		v.mu.Unlock()
		return cached, nil
	}
	v.mu.Unlock()

	val, err := v.loadChild(v.children[i])
	if err != nil {
		return nil, err
	}

	v.mu.Lock()
	v.local[i] = val
	v.mu.Unlock()
	return val, nil
}

// Cons returns a new ListView with val prepended as the new first
// element.
func (v *ListView) Cons(val any) (*ListView, error) {
	h, err := v.persistChild(val)
	if err != nil {
		return nil, err
	}
	next := make([]hash.Hash, 0, len(v.children)+1)
	next = append(next, h)
	next = append(next, v.children...)
	return v.withChildren(next)
}

func (v *ListView) withChildren(children []hash.Hash) (*ListView, error) {
	rec := &chunk.ChunkRecord{Tag: chunk.TagList, SeqChildren: children}
	h, err := writeNode(v.backend, rec)
	if err != nil {
		return nil, err
	}
	return newListView(v.backend, h, children), nil
}

// Prepend always fails: ListView is immutable. Use Cons to obtain a new
// view with the element applied.
func (v *ListView) Prepend(val any) error {
	return errImmutable("list view Prepend: use Cons")
}

// ToPlain recursively materializes this view into an in-memory
// value.List, detaching it from the backing store.
func (v *ListView) ToPlain() (any, error) {
	return v.toPlain()
}

func (v *ListView) toPlain() (value.List, error) {
	out := make(value.List, len(v.children))
	for i := range v.children {
		val, err := v.valueAt(i)
		if err != nil {
			return nil, err
		}
		plain, err := toPlainErr(val)
		if err != nil {
			return nil, err
		}
		out[i] = plain
	}
	return out, nil
}
