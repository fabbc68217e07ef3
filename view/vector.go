package view

import (
	"sync"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// VectorView is a lazy view over a persisted vector node: an ordered,
// random-access sequence of child hashes.
type VectorView struct {
	backend
	h        hash.Hash
	children []hash.Hash

	mu    sync.Mutex
	local map[int]any
}

func newVectorView(b backend, h hash.Hash, children []hash.Hash) *VectorView {
	return &VectorView{backend: b, h: h, children: children, local: make(map[int]any)}
}

func (v *VectorView) Kind() value.Kind { return value.KindVector }

func (v *VectorView) Hash() hash.Hash { return v.h }

func (v *VectorView) Count() int { return len(v.children) }

// Nth returns the element at i, or def when i is out of range. A
// negative index is always out of range.
func (v *VectorView) Nth(i int, def any) (any, error) {
	if i < 0 || i >= len(v.children) {
		return def, nil
	}
	return v.valueAt(i)
}

func (v *VectorView) valueAt(i int) (any, error) {
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

// Assoc returns a new VectorView with index i bound to val. i must
// satisfy 0 <= i <= Count(); i == Count() appends.
func (v *VectorView) Assoc(i int, val any) (*VectorView, error) {
	if i < 0 || i > len(v.children) {
		return nil, errOutOfRange(i)
	}
	h, err := v.persistChild(val)
	if err != nil {
		return nil, err
	}
	next := make([]hash.Hash, len(v.children), len(v.children)+1)
	copy(next, v.children)
	if i == len(next) {
		next = append(next, h)
	} else {
		next[i] = h
	}
	return v.withChildren(next)
}

func (v *VectorView) withChildren(children []hash.Hash) (*VectorView, error) {
	rec := &chunk.ChunkRecord{Tag: chunk.TagVector, SeqChildren: children}
	h, err := writeNode(v.backend, rec)
	if err != nil {
		return nil, err
	}
	return newVectorView(v.backend, h, children), nil
}

// Set always fails: VectorView is immutable. Use Assoc to obtain a new
// view with the element applied.
func (v *VectorView) Set(i int, val any) error {
	return errImmutable("vector view Set: use Assoc")
}

// ToPlain recursively materializes this view into an in-memory
// value.Vector, detaching it from the backing store.
func (v *VectorView) ToPlain() (any, error) {
	return v.toPlain()
}

func (v *VectorView) toPlain() (value.Vector, error) {
	out := make(value.Vector, len(v.children))
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
