package storage

import "github.com/nicolagi/nsfs/path"

// Storage is the remote interface a storage server exposes for byte-level
// file I/O (spec.md §6). The naming server never calls these directly; it
// hands out Refs to clients, who dial Storage themselves.
type Storage interface {
	Size(p path.Path) (int64, error)
	Read(p path.Path, offset, length int64) ([]byte, error)
	Write(p path.Path, offset int64, data []byte) error
}

// Command is the remote interface the naming server uses to direct a
// storage server's lifecycle: create and delete files, and copy a file
// in from another storage server's Storage interface when provisioning a
// new replica (spec.md §4.E, §6).
type Command interface {
	Create(p path.Path) (bool, error)
	Delete(p path.Path) (bool, error)
	Copy(p path.Path, source Ref) (bool, error)
}
