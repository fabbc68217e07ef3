package chunkstore

import (
	"os"
	"path/filepath"

	"golang.org/x/xerrors"

	"github.com/conjurernix/atomdb/atomdberr"
	"github.com/conjurernix/atomdb/hash"
)

// Filesystem is a directory-backed ChunkStore. For a chunk with hash h it
// stores bytes at <root>/<h[0:2]>/<h[2:]>, creating directories lazily —
// the hash-sharded generalization of graviton's NewDiskStore, which
// MkdirAlls a base directory and then splits numeric file indices into
// subdirectories (store.go uint_to_filename). Writes go through a temp
// file plus os.Rename so a reader never observes partial content, closing
// the "put may return nil on existing file" bug spec.md §9 flags: Put
// always returns the computed hash, existing-or-not.
type Filesystem struct {
	root string
}

// NewFilesystem opens (creating if necessary) a filesystem chunk store
// rooted at root.
func NewFilesystem(root string) (*Filesystem, error) {
	if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, xerrors.Errorf("%w: create root %s: %v", atomdberr.ErrStoreIO, root, err)
	}
	return &Filesystem{root: root}, nil
}

func (f *Filesystem) pathFor(h hash.Hash) (dir, file string) {
	s := string(h)
	dir = filepath.Join(f.root, s[0:2])
	file = filepath.Join(dir, s[2:])
	return
}

func (f *Filesystem) Put(b []byte) (hash.Hash, error) {
	h := hash.Of(b)
	dir, file := f.pathFor(h)

	if _, err := os.Stat(file); err == nil {
		return h, nil // already present; Put is idempotent and never overwrites (I5)
	} else if !os.IsNotExist(err) {
		return "", xerrors.Errorf("%w: stat %s: %v", atomdberr.ErrStoreIO, file, err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", xerrors.Errorf("%w: mkdir %s: %v", atomdberr.ErrStoreIO, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", xerrors.Errorf("%w: create temp in %s: %v", atomdberr.ErrStoreIO, dir, err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return "", xerrors.Errorf("%w: write %s: %v", atomdberr.ErrStoreIO, tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", xerrors.Errorf("%w: sync %s: %v", atomdberr.ErrStoreIO, tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return "", xerrors.Errorf("%w: close %s: %v", atomdberr.ErrStoreIO, tmpName, err)
	}

	if err := os.Rename(tmpName, file); err != nil {
		// a concurrent writer may have already placed the same bytes
		// at file (I5 permits this); treat that as success.
		if _, statErr := os.Stat(file); statErr == nil {
			return h, nil
		}
		return "", xerrors.Errorf("%w: rename %s -> %s: %v", atomdberr.ErrStoreIO, tmpName, file, err)
	}
	return h, nil
}

func (f *Filesystem) Get(h hash.Hash) ([]byte, bool, error) {
	_, file := f.pathFor(h)
	b, err := os.ReadFile(file)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, xerrors.Errorf("%w: read %s: %v", atomdberr.ErrStoreIO, file, err)
	}
	return b, true, nil
}
