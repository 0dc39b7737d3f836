package path

import (
	"errors"

	"github.com/nicolagi/nsfs/rmi"
)

// ErrInvalidPath, ErrNotFound and ErrNotADirectory are re-exported from rmi
// rather than independent sentinels, so that errors.Is keeps working for a
// path-level failure that later crosses an rmi call (spec.md §7 names
// InvalidPath, NotFound and NotADirectory as remote error kinds).
var (
	// ErrInvalidPath is returned when a string or component cannot form a well-formed Path.
	ErrInvalidPath = rmi.ErrInvalidPath

	// ErrRootHasNoParent is returned by Parent and Last when called on the root path.
	// It has no remote Kind of its own: it can only ever be raised locally,
	// against an already-validated Path value.
	ErrRootHasNoParent = errors.New("root path has no parent")

	// ErrNotFound is returned by List when the local directory does not exist.
	ErrNotFound = rmi.ErrNotFound

	// ErrNotADirectory is returned by List when the local path names a regular file.
	ErrNotADirectory = rmi.ErrNotADirectory
)
