package rmi

import (
	"errors"
	"fmt"
)

// Kind tags an error so that it survives the trip across the wire: the
// skeleton classifies the application error it caught into a Kind, and the
// client reconstructs an error of that Kind from the message alone.
type Kind string

const (
	KindNullArg            Kind = "NullArg"
	KindIllegalArg         Kind = "IllegalArg"
	KindInvalidPath        Kind = "InvalidPath"
	KindNotFound           Kind = "NotFound"
	KindAlreadyExists      Kind = "AlreadyExists"
	KindNotADirectory      Kind = "NotADirectory"
	KindAlreadyRegistered  Kind = "AlreadyRegistered"
	KindIllegalState       Kind = "IllegalState"
	KindNotRemoteInterface Kind = "NotRemoteInterface"
	KindNotStarted         Kind = "NotStarted"
	KindUnknownHost        Kind = "UnknownHost"
	KindOutOfRange         Kind = "OutOfRange"
	KindRemoteError        Kind = "RemoteError"
)

// The canonical sentinel for each Kind named in spec.md §7 (plus OutOfRange,
// which §6 names for the Storage interface). Packages across nsfs build
// their own errors by wrapping these with fmt.Errorf("...: %w", rmi.ErrX),
// so that errors.Is keeps working both locally and after a round trip
// through a remote call.
var (
	ErrNullArg            = errors.New("null argument")
	ErrIllegalArg         = errors.New("illegal argument")
	ErrInvalidPath        = errors.New("invalid path")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotADirectory      = errors.New("not a directory")
	ErrAlreadyRegistered  = errors.New("already registered")
	ErrIllegalState       = errors.New("illegal state")
	ErrNotRemoteInterface = errors.New("not a remote interface: every method must return error as its last result")
	ErrNotStarted         = errors.New("skeleton not started and not bound to an address")
	ErrUnknownHost        = errors.New("unresolved wildcard host")
	ErrOutOfRange         = errors.New("out of range")

	ErrUnknownMethod = errors.New("unknown remote method")
)

var kinds = []struct {
	kind      Kind
	sentinel  error
}{
	{KindNullArg, ErrNullArg},
	{KindIllegalArg, ErrIllegalArg},
	{KindInvalidPath, ErrInvalidPath},
	{KindNotFound, ErrNotFound},
	{KindAlreadyExists, ErrAlreadyExists},
	{KindNotADirectory, ErrNotADirectory},
	{KindAlreadyRegistered, ErrAlreadyRegistered},
	{KindIllegalState, ErrIllegalState},
	{KindNotRemoteInterface, ErrNotRemoteInterface},
	{KindNotStarted, ErrNotStarted},
	{KindUnknownHost, ErrUnknownHost},
	{KindOutOfRange, ErrOutOfRange},
}

// RemoteError signals that a connection could not be established, that
// marshalling failed, or that the server reported a transport-level
// failure. It is distinct from any application error the remote
// implementation itself returns.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// NewRemoteError builds a RemoteError with the given formatted message.
func NewRemoteError(format string, args ...interface{}) *RemoteError {
	return &RemoteError{Message: fmt.Sprintf(format, args...)}
}

// ClassifyError returns the Kind to tag err with on the wire. An error not
// matching any of the sentinels above via errors.Is is tagged
// KindRemoteError.
func ClassifyError(err error) Kind {
	if err == nil {
		return ""
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return KindRemoteError
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindRemoteError
}

// ErrorForKind reconstructs an error of the given Kind carrying message, on
// the receiving side of a remote call. The result satisfies errors.Is
// against the Kind's sentinel.
func ErrorForKind(kind Kind, message string) error {
	if kind == KindRemoteError {
		return &RemoteError{Message: message}
	}
	for _, k := range kinds {
		if k.kind == kind {
			return fmt.Errorf("%s: %w", message, k.sentinel)
		}
	}
	return fmt.Errorf("%s: %s", kind, message)
}
