package tree

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// CreateFile installs a new file leaf at p, bound to the first registered
// storage server as primary, having commanded that server to create the
// file on local disk (spec.md §4.G). It returns false, nil if a node
// already exists at p. It fails with ErrNotFound if p's parent is absent
// or not a directory, and ErrIllegalState if no storage server is
// registered.
func (t *Tree) CreateFile(p path.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, name, err := t.resolveParent(p)
	if err != nil {
		return false, err
	}
	if _, exists := parent.children[name]; exists {
		return false, nil
	}
	if len(t.registry) == 0 {
		return false, fmt.Errorf("createFile %s: %w", p, ErrIllegalState)
	}
	primary := t.registeredRefs()[0]
	if _, err := t.commander.Create(primary, p); err != nil {
		log.WithFields(log.Fields{"op": "createFile", "path": p.String(), "primary": primary}).WithError(err).Warning("storage server failed to create file")
	}
	parent.children[name] = newFile(name, parent, primary)
	return true, nil
}

// CreateDirectory installs a new, empty directory at p. It returns
// false, nil if a node already exists at p, and fails with ErrNotFound if
// p's parent is absent or not a directory.
func (t *Tree) CreateDirectory(p path.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	parent, name, err := t.resolveParent(p)
	if err != nil {
		return false, err
	}
	if _, exists := parent.children[name]; exists {
		return false, nil
	}
	parent.children[name] = newDirectory(name, parent)
	return true, nil
}

// Delete removes the node at p, after best-effort informing the file's
// primary and replica holders (for a directory, those of every descendant
// file) to delete their copies. It returns false, nil at root, and
// fails with ErrNotFound if p is absent.
func (t *Tree) Delete(p path.Path) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if p.IsRoot() {
		return false, nil
	}
	n, err := t.resolve(p)
	if err != nil {
		return false, err
	}
	t.deleteCopies(n, p)

	name, _ := p.Last()
	delete(n.parent.children, name)
	return true, nil
}

// deleteCopies instructs every storage server holding a copy of the
// subtree rooted at n to delete its file(s). Per-server failures are
// absorbed (logged, not returned) so that one faulty storage server
// cannot block a tree mutation (spec.md §7).
func (t *Tree) deleteCopies(n *Node, p path.Path) {
	if n.IsDirectory() {
		names := n.childNames()
		for _, name := range names {
			child := n.children[name]
			childPath, err := p.Join(name)
			if err != nil {
				continue
			}
			t.deleteCopies(child, childPath)
		}
		return
	}
	t.deleteFileCopies(n, p)
}

func (t *Tree) deleteFileCopies(n *Node, p path.Path) {
	if _, err := t.commander.Delete(n.primary, p); err != nil {
		log.WithFields(log.Fields{"op": "delete", "path": p.String(), "server": n.primary}).WithError(err).Warning("primary failed to delete file")
	}
	for _, ref := range n.replicas {
		if _, err := t.commander.Delete(ref, p); err != nil {
			log.WithFields(log.Fields{"op": "delete", "path": p.String(), "server": ref}).WithError(err).Warning("replica holder failed to delete file")
		}
	}
}

// resolveParent resolves p's parent directory and p's last component
// name, failing with ErrNotFound if the parent is absent or not a
// directory.
func (t *Tree) resolveParent(p path.Path) (*Node, string, error) {
	parentPath, err := p.Parent()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	name, err := p.Last()
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	parent, err := t.resolve(parentPath)
	if err != nil {
		return nil, "", err
	}
	if !parent.IsDirectory() {
		return nil, "", fmt.Errorf("%s: %w", p, ErrNotFound)
	}
	return parent, name, nil
}
