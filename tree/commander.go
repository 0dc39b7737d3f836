package tree

import (
	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
)

// rmiCommander is the production Commander, dialing out to each storage
// server's Command interface through rmi stubs.
type rmiCommander struct{}

// NewCommander returns the production Commander used by cmd/naming-server.
func NewCommander() Commander {
	return rmiCommander{}
}

func (rmiCommander) Create(ref storage.Ref, p path.Path) (bool, error) {
	return storage.NewCommandStub(ref).Create(p)
}

func (rmiCommander) Delete(ref storage.Ref, p path.Path) (bool, error) {
	return storage.NewCommandStub(ref).Delete(p)
}
