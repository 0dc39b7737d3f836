package lock

import "github.com/nicolagi/nsfs/rmi"

// ErrIllegalState is rmi.ErrIllegalState re-exported under this package so
// callers can errors.Is against lock without importing rmi directly.
var ErrIllegalState = rmi.ErrIllegalState
