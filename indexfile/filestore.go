package indexfile

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/lancedb/lance-index-core/internal/idxerrors"
)

// FileBatchStore is a directory-backed BatchStore. Each named blob is one
// file in dir; Put publishes a new version by writing to a temp file in the
// same directory and renaming it over the target, so a reader never
// observes a partially-written file (spec.md §5: "Save... publish via an
// atomic rename").
type FileBatchStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileBatchStore opens (creating if necessary) a directory-backed store.
func NewFileBatchStore(dir string) (*FileBatchStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, idxerrors.WrapIndex(err, "indexfile: create directory")
	}
	return &FileBatchStore{dir: dir}, nil
}

func (f *FileBatchStore) path(name string) string {
	return filepath.Join(f.dir, name)
}

func (f *FileBatchStore) Get(name string) ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.path(name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, idxerrors.WrapIndex(err, "indexfile: read")
	}
	return data, nil
}

func (f *FileBatchStore) Put(name string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, fmt.Sprintf(".%s.tmp-*", name))
	if err != nil {
		return idxerrors.WrapIndex(err, "indexfile: create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once the rename below succeeds

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return idxerrors.WrapIndex(err, "indexfile: write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return idxerrors.WrapIndex(err, "indexfile: sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return idxerrors.WrapIndex(err, "indexfile: close temp file")
	}
	if err := os.Rename(tmpName, f.path(name)); err != nil {
		return idxerrors.WrapIndex(err, "indexfile: publish rename")
	}
	return nil
}

func (f *FileBatchStore) Has(name string) (bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, err := os.Stat(f.path(name))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, idxerrors.WrapIndex(err, "indexfile: stat")
	}
	return true, nil
}

func (f *FileBatchStore) Delete(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := os.Remove(f.path(name)); err != nil && !os.IsNotExist(err) {
		return idxerrors.WrapIndex(err, "indexfile: delete")
	}
	return nil
}

func (f *FileBatchStore) Close() error { return nil }
