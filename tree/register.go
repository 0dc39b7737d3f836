package tree

import (
	"fmt"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// Register implements the registration & reconciliation merge of
// spec.md §4.F, grounded on the teacher's tree_walking.go Grow/walk
// tree-descent idiom (there: descend creating missing block-backed
// nodes; here: descend creating missing directories). It enforces
// single registration, failing with ErrAlreadyRegistered if ref.ID is
// already known. Otherwise it registers ref and merges paths into the
// tree: for each path, missing intermediate directories are created, and
// a file leaf bound to ref is installed at the last component — unless a
// node already exists there, in which case the path is added to the
// returned duplicates list and left untouched.
func (t *Tree) Register(ref storage.Ref, paths []path.Path) (duplicates []path.Path, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, known := t.registry[ref.ID]; known {
		return nil, fmt.Errorf("%s: %w", ref.ID, ErrAlreadyRegistered)
	}
	t.registry[ref.ID] = ref
	t.registryOrder = append(t.registryOrder, ref.ID)

	for _, p := range paths {
		if p.IsRoot() {
			continue
		}
		dup, err := t.merge(ref, p)
		if err != nil {
			return nil, err
		}
		if dup {
			duplicates = append(duplicates, p)
		}
	}
	return duplicates, nil
}

// merge walks p from root, creating any missing intermediate directory,
// and installs a file leaf bound to ref at the last component. It
// reports dup=true, leaving the tree untouched below the point of
// conflict, if a node already exists at the leaf position, or if an
// intermediate component is itself a file node.
func (t *Tree) merge(ref storage.Ref, p path.Path) (dup bool, err error) {
	cur := t.root
	it := p.Iterator()
	for it.HasNext() {
		name, _ := it.Next()
		last := !it.HasNext()
		if !cur.IsDirectory() {
			return true, nil
		}
		child := cur.child(name)
		switch {
		case child == nil && last:
			cur.children[name] = newFile(name, cur, ref)
			return false, nil
		case child == nil:
			cur.children[name] = newDirectory(name, cur)
			cur = cur.children[name]
		case last:
			// A node already exists at the leaf position: report as
			// duplicate without overwriting it, whether it is itself a
			// file or a directory.
			return true, nil
		default:
			cur = child
		}
	}
	return false, nil
}
