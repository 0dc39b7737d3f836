package tree

import (
	"fmt"
	"sort"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// IsDirectory reports whether p names a directory (true for root too) or
// a file (false). It holds the monitor briefly and never waits, per
// spec.md §5.
func (t *Tree) IsDirectory(p path.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.resolve(p)
	if err != nil {
		return false, err
	}
	return n.IsDirectory(), nil
}

// List returns the ordered child names of the directory named by p. It
// fails with ErrNotFound if p is absent or names a file.
func (t *Tree) List(p path.Path) ([]string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.resolve(p)
	if err != nil {
		return nil, err
	}
	if !n.IsDirectory() {
		return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	names := n.childNames()
	sort.Strings(names)
	return names, nil
}

// GetStorage returns the primary storage reference of the file named by
// p. It fails with ErrNotFound if p is absent or names a directory.
func (t *Tree) GetStorage(p path.Path) (storage.Ref, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	n, err := t.resolve(p)
	if err != nil {
		return storage.Ref{}, err
	}
	if n.IsDirectory() {
		return storage.Ref{}, fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return n.primary, nil
}
