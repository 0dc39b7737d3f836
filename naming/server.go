package naming

import "github.com/nicolagi/nsfs/tree"

// Server implements both Service and Registration by delegating straight
// to the tree: the facade is this thin because *tree.Tree already
// exposes exactly the operations spec.md §4.F/§4.G name, under its own
// monitor.
type Server struct {
	*tree.Tree
}

// NewServer wraps t as a naming.Server.
func NewServer(t *tree.Tree) *Server {
	return &Server{Tree: t}
}

var (
	_ Service      = (*Server)(nil)
	_ Registration = (*Server)(nil)
)
