// Package naming implements the naming server's two client-visible
// remote interfaces — Service (component G, spec.md §4.G) and
// Registration (component F, spec.md §4.F) — as a thin rmi-facing layer
// over a *tree.Tree. Grounded on the teacher's cmd/musclefs/musclefs.go
// ops struct: a single facade type wrapping the tree under one mutex,
// here stripped of all 9P-specific (srv.ReqOps/Fid) plumbing since the
// client-facing transport is rmi, not 9P.
package naming

import (
	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// Service is the client-visible interface of spec.md §4.G.
type Service interface {
	IsDirectory(p path.Path) (bool, error)
	List(p path.Path) ([]string, error)
	CreateFile(p path.Path) (bool, error)
	CreateDirectory(p path.Path) (bool, error)
	Delete(p path.Path) (bool, error)
	GetStorage(p path.Path) (storage.Ref, error)
	Lock(p path.Path, exclusive bool) error
	Unlock(p path.Path, exclusive bool) error
}

// Registration is the storage-server-visible interface of spec.md §4.F.
type Registration interface {
	Register(ref storage.Ref, paths []path.Path) ([]path.Path, error)
}
