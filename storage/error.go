package storage

import "github.com/nicolagi/nsfs/rmi"

// Re-exported so callers can errors.Is against storage without importing
// rmi directly.
var (
	ErrNotFound   = rmi.ErrNotFound
	ErrOutOfRange = rmi.ErrOutOfRange
)
