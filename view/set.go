package view

import (
	"sort"
	"sync"

	"github.com/conjurernix/atomdb/chunk"
	"github.com/conjurernix/atomdb/hash"
	"github.com/conjurernix/atomdb/value"
)

// SetView is a lazy view over a persisted set node: an ordered (by
// child-hash sort) sequence of child hashes with no duplicate members.
// Containment, Conj and Disj work on the queried element's persisted hash
// and never load a member: Contains binary-searches the sorted child
// hashes (O(log n)), Conj and Disj scan them (O(n)). Two members that are
// equal by value but persist to different hashes are not recognized as
// the same member.
type SetView struct {
	backend
	h        hash.Hash
	children []hash.Hash

	mu    sync.Mutex
	local map[int]any
}

func newSetView(b backend, h hash.Hash, children []hash.Hash) *SetView {
	return &SetView{backend: b, h: h, children: children, local: make(map[int]any)}
}

func (v *SetView) Kind() value.Kind { return value.KindSet }

func (v *SetView) Hash() hash.Hash { return v.h }

func (v *SetView) Count() int { return len(v.children) }

func (v *SetView) valueAt(i int) (any, error) {
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

// At returns the i-th member in the set's stable hash order, mostly
// useful for iteration; out-of-range returns def.
func (v *SetView) At(i int, def any) (any, error) {
	if i < 0 || i >= len(v.children) {
		return def, nil
	}
	return v.valueAt(i)
}

// indexOf returns the position of elem by its persisted hash: two equal
// values hash identically (I3), so an exact hash match stands for value
// equality. It returns -1 when no child carries elem's hash; members are
// never loaded and compared.
func (v *SetView) indexOf(elem any) (int, error) {
	elemHash, err := v.persistChild(elem)
	if err != nil {
		return -1, err
	}
	// children are sorted by hash (persist.buildSeqRecord's
	// dedupAndSort, mirrored by Conj's re-sort below), so elemHash's
	// position can be found by binary search without loading anything.
	i := sort.Search(len(v.children), func(i int) bool { return v.children[i] >= elemHash })
	if i < len(v.children) && v.children[i] == elemHash {
		return i, nil
	}
	return -1, nil
}

// Contains reports whether elem is a member, by a search for elem's
// persisted hash among the child hashes; no child is loaded.
func (v *SetView) Contains(elem any) (bool, error) {
	i, err := v.indexOf(elem)
	if err != nil {
		return false, err
	}
	return i >= 0, nil
}

// Conj returns a new SetView with elem added, or the receiver's
// equivalent if elem is already a member (sets never carry duplicates).
func (v *SetView) Conj(elem any) (*SetView, error) {
	h, err := v.persistChild(elem)
	if err != nil {
		return nil, err
	}
	for _, existing := range v.children {
		if existing == h {
			return v, nil
		}
	}
	next := make([]hash.Hash, len(v.children), len(v.children)+1)
	copy(next, v.children)
	next = append(next, h)
	sort.Slice(next, func(i, j int) bool { return next[i] < next[j] })
	return v.withChildren(next)
}

// Disj returns a new SetView with elem removed, or the receiver's
// equivalent if elem was not a member.
func (v *SetView) Disj(elem any) (*SetView, error) {
	h, err := v.persistChild(elem)
	if err != nil {
		return nil, err
	}
	next := make([]hash.Hash, 0, len(v.children))
	for _, existing := range v.children {
		if existing == h {
			continue
		}
		next = append(next, existing)
	}
	if len(next) == len(v.children) {
		return v, nil
	}
	return v.withChildren(next)
}

func (v *SetView) withChildren(children []hash.Hash) (*SetView, error) {
	rec := &chunk.ChunkRecord{Tag: chunk.TagSet, SeqChildren: children}
	h, err := writeNode(v.backend, rec)
	if err != nil {
		return nil, err
	}
	return newSetView(v.backend, h, children), nil
}

// Add always fails: SetView is immutable. Use Conj to obtain a new view
// with the member applied.
func (v *SetView) Add(elem any) error {
	return errImmutable("set view Add: use Conj")
}

// Remove always fails: SetView is immutable. Use Disj to obtain a new
// view with the member removed.
func (v *SetView) Remove(elem any) error {
	return errImmutable("set view Remove: use Disj")
}

// ToPlain recursively materializes this view into an in-memory
// value.Set, detaching it from the backing store.
func (v *SetView) ToPlain() (any, error) {
	return v.toPlain()
}

func (v *SetView) toPlain() (value.Set, error) {
	out := make(value.Set, len(v.children))
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
