package tree

import (
	"github.com/nicolagi/nsfs/lock"
	"github.com/nicolagi/nsfs/storage"
)

type kind int

const (
	kindDirectory kind = iota
	kindFile
)

// Node is the tagged variant of spec.md §3: a directory node carries
// children indexed by name, a file node carries the storage references
// and replication bookkeeping. Grounded on the teacher's node.go Node
// struct and its nodeFlags bitset idiom (here a plain kind tag instead,
// since there is no serialized on-disk representation to pack into
// flags), generalized away from 9P/content-addressed fields: file bytes
// are entirely a storage-server concern (spec.md §1 scope), so there are
// no block/QID/cryptography fields here.
type Node struct {
	kind   kind
	name   string
	parent *Node

	// Every node, directory or file, participates in hierarchical
	// locking (spec.md §4.D): ancestors are locked shared on the way to
	// the target.
	queue lock.Queue

	// Directory-only.
	children map[string]*Node

	// File-only.
	primary      storage.Ref
	replicas     []storage.Ref
	readCount    int
	replicaCount int
}

func newDirectory(name string, parent *Node) *Node {
	return &Node{kind: kindDirectory, name: name, parent: parent, children: make(map[string]*Node)}
}

func newFile(name string, parent *Node, primary storage.Ref) *Node {
	return &Node{kind: kindFile, name: name, parent: parent, primary: primary}
}

// IsDirectory reports whether n is a directory node.
func (n *Node) IsDirectory() bool {
	return n.kind == kindDirectory
}

// child returns the named child of a directory node, or nil.
func (n *Node) child(name string) *Node {
	if n.children == nil {
		return nil
	}
	return n.children[name]
}

// childNames returns a directory node's child names in no particular
// order; the facade sorts them (spec.md §4.G list returns an ordered
// sequence, but does not require a specific ordering beyond that it be
// deterministic from the caller's perspective, which sorting provides).
func (n *Node) childNames() []string {
	names := make([]string, 0, len(n.children))
	for name := range n.children {
		names = append(names, name)
	}
	return names
}
