// Package tree implements the naming server's directory tree, its
// hierarchical lock manager coupling, and the registration merge
// algorithm — components C, D (per-node queue driving) and F of the
// distributed filesystem this module implements. Structure, lock
// queues and the global storage registry all live under one mutex plus
// condition variable (the "tree monitor" of spec.md §5), grounded on the
// single coarse `ops.mu sync.Mutex` the teacher's cmd/musclefs/musclefs.go
// uses to serialize its own facade.
package tree

import (
	"fmt"
	"sync"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// Decision is what a Replicator returns after a shared acquisition on a
// file node: at most one candidate to add, plus the desired replica
// count computed for that acquisition (spec.md §4.E).
type Decision struct {
	AddReplica *storage.Ref
	Desired    int
}

// Replicator is the coupling point from the lock manager into the
// replication controller (component E), invoked from the tree monitor
// itself so that invariant 7 (writer sees empty replica_refs at the
// moment of grant) holds without extra synchronization.
type Replicator interface {
	// Decide computes the desired replica count for a file given its
	// current primary/replicas/readCount and the full set of registered
	// storage servers, and — if under-replicated — attempts to
	// provision exactly one more. A provisioning failure is logged by
	// the implementation and reported back as a no-op Decision, not an
	// error.
	Decide(p path.Path, primary storage.Ref, replicas []storage.Ref, readCount int, registered []storage.Ref) Decision

	// Invalidate instructs every given replica holder to delete its copy
	// of p. Best-effort: per-server failures are logged, not returned.
	Invalidate(p path.Path, replicas []storage.Ref)
}

// Tree is the naming server's directory tree, lock queues and storage
// registry, all guarded by one monitor.
type Tree struct {
	mu   sync.Mutex
	cond *sync.Cond

	root *Node
	// registry and registryOrder together track registered storage
	// servers keyed by ID, in registration order: spec.md §4.G requires
	// createFile to bind a new file's primary to the *first* registered
	// storage server, not an arbitrary one.
	registry      map[string]storage.Ref
	registryOrder []string
	replicator    Replicator
	commander     Commander
}

// Commander is the coupling point from the tree into a storage server's
// Command interface, used by createFile/delete (spec.md §4.G) to tell the
// primary (and, for delete, every replica holder) to create or remove a
// file on local disk. The default implementation dials out over rmi; a
// fake is injected in tests.
type Commander interface {
	Create(ref storage.Ref, p path.Path) (bool, error)
	Delete(ref storage.Ref, p path.Path) (bool, error)
}

// New returns an empty tree (just the root directory) with no storage
// servers registered.
func New(replicator Replicator, commander Commander) *Tree {
	t := &Tree{
		root:       newDirectory("", nil),
		registry:   make(map[string]storage.Ref),
		replicator: replicator,
		commander:  commander,
	}
	t.cond = sync.NewCond(&t.mu)
	return t
}

// resolveChain walks p from root, returning every node from root
// (inclusive) to the target (inclusive). It fails with ErrNotFound if any
// component, including the target, is missing, and if an intermediate
// component resolves to a file node (spec.md §4.G: "paths resolving
// through a file node as an intermediate component signal NotFound").
func (t *Tree) resolveChain(p path.Path) ([]*Node, error) {
	nodes := []*Node{t.root}
	cur := t.root
	it := p.Iterator()
	for it.HasNext() {
		name, _ := it.Next()
		if !cur.IsDirectory() {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		next := cur.child(name)
		if next == nil {
			return nil, fmt.Errorf("%s: %w", p, ErrNotFound)
		}
		nodes = append(nodes, next)
		cur = next
	}
	return nodes, nil
}

// resolve returns just the target node named by p.
func (t *Tree) resolve(p path.Path) (*Node, error) {
	nodes, err := t.resolveChain(p)
	if err != nil {
		return nil, err
	}
	return nodes[len(nodes)-1], nil
}

// registeredRefs returns every registered storage server, in registration
// order.
func (t *Tree) registeredRefs() []storage.Ref {
	refs := make([]storage.Ref, 0, len(t.registryOrder))
	for _, id := range t.registryOrder {
		refs = append(refs, t.registry[id])
	}
	return refs
}
