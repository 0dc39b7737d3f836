// Package storage implements a storage server's two remote interfaces
// (Storage for byte I/O, Command for lifecycle operations driven by the
// naming server) and a path-addressed local disk backing store.
package storage

import "fmt"

// Ref is what the naming server keeps in a file node in place of a
// storage server object reference: the server's self-reported identity
// plus the two addresses needed to dial its Storage and Command
// interfaces. It crosses the wire as a plain value (spec.md §4.B) and
// round-trips through rmi's gob framing with no custom encoding needed,
// since every field is exported.
type Ref struct {
	ID          string
	StorageAddr string
	CommandAddr string
}

// String renders the ref for logging.
func (r Ref) String() string {
	return fmt.Sprintf("%s(%s)", r.ID, r.StorageAddr)
}

// Equal reports whether two refs name the same storage server.
func (r Ref) Equal(other Ref) bool {
	return r.ID == other.ID
}
