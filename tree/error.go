package tree

import "github.com/nicolagi/nsfs/rmi"

// Re-exported so callers can errors.Is against tree without importing rmi
// directly.
var (
	ErrNotFound          = rmi.ErrNotFound
	ErrNotADirectory     = rmi.ErrNotADirectory
	ErrNullArg           = rmi.ErrNullArg
	ErrIllegalArg        = rmi.ErrIllegalArg
	ErrIllegalState      = rmi.ErrIllegalState
	ErrAlreadyRegistered = rmi.ErrAlreadyRegistered
)
