// Package convert implements ToPlain (spec.md §4.10): detaching a lazy
// view from its backing store by recursively materializing every child
// into an ordinary in-memory value.Map/Vector/List/Set. Grounded on
// deroproject-graviton/extra.go's recursive whole-tree walks
// (KeyCountEstimate, random), generalized from "walk the b-tree counting
// keys" to "walk a view tree building a plain value".
package convert

import "github.com/conjurernix/atomdb/view"

// ToPlain walks v and returns an in-memory value of the corresponding
// ordinary kind, with every child recursively converted. A non-view
// scalar passes through unchanged.
func ToPlain(v any) (any, error) {
	switch x := v.(type) {
	case *view.MapView:
		return x.ToPlain()
	case *view.VectorView:
		return x.ToPlain()
	case *view.ListView:
		return x.ToPlain()
	case *view.SetView:
		return x.ToPlain()
	default:
		return v, nil
	}
}
