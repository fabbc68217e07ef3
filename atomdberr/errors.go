// Package atomdberr defines the sentinel error values shared across atomdb's
// packages, so callers can test for a failure kind with errors.Is regardless
// of which layer (codec, store, view) raised it.
package atomdberr

import "errors"

var (
	// ErrStoreIO is wrapped around any chunk backend failure: a filesystem
	// error, an out-of-space condition, a permission failure.
	ErrStoreIO = errors.New("atomdb: store io error")

	// ErrChunkMissing is raised when a referenced child hash is unknown to
	// the backend. Fatal during a strict load; surfaced lazily from views.
	ErrChunkMissing = errors.New("atomdb: chunk missing")

	// ErrCodec wraps a serialize/deserialize failure.
	ErrCodec = errors.New("atomdb: codec error")

	// ErrUnsupportedKind marks a value whose kind has no persister arm.
	// Reserved for strict builds; the default classification always falls
	// through to KindLeaf so this should be unreachable in practice.
	ErrUnsupportedKind = errors.New("atomdb: unsupported value kind")

	// ErrImmutableView is raised when a mutation method is invoked on a
	// lazy view; views only grow new views via functional update.
	ErrImmutableView = errors.New("atomdb: view is immutable")

	// ErrIndexOutOfRange is raised by vector/list access with i < 0 or
	// i > count.
	ErrIndexOutOfRange = errors.New("atomdb: index out of range")
)
