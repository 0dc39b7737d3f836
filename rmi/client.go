package rmi

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net"
	"reflect"
)

// Client is the stub-side plumbing for one remote interface: it marshals a
// call per the wire framing of the package doc, reads back the result, and
// re-throws a remote exception as an error of its original Kind. Per-domain
// packages wrap a *Client in a thin struct implementing the actual remote
// interface method-by-method (see e.g. the naming package's serviceStub),
// since Go has no runtime dynamic proxy for an arbitrary interface type.
//
// Two clients are Equal iff they were built for the same named interface
// and the same remote address; that is also how per-domain stub wrapper
// types should implement equality.
type Client struct {
	name    string
	network string
	address string
}

// NewClientFromSkeleton builds a Client for the interface named name,
// inheriting the address of a started (or explicitly bound) Skeleton. It
// fails with ErrNotStarted if the skeleton has no address, and with
// ErrUnknownHost if the bound address is an unresolved wildcard (e.g. ":0"
// or "0.0.0.0:1234") that a remote caller could not dial.
func NewClientFromSkeleton(name string, s *Skeleton) (*Client, error) {
	network, address, err := s.Address()
	if err != nil {
		return nil, err
	}
	if isWildcardHost(address) {
		return nil, ErrUnknownHost
	}
	return &Client{name: name, network: network, address: address}, nil
}

// NewClientFromSkeletonWithHost builds a Client for the interface named
// name, using a started skeleton's port but a caller-supplied hostname in
// place of the skeleton's own bound host. Useful when the skeleton bound a
// wildcard address and the caller knows the externally reachable hostname.
func NewClientFromSkeletonWithHost(name string, s *Skeleton, host string) (*Client, error) {
	_, address, err := s.Address()
	if err != nil {
		return nil, err
	}
	_, port, err := net.SplitHostPort(address)
	if err != nil {
		return nil, NewRemoteError("%s: %v", address, err)
	}
	return &Client{name: name, network: s.network, address: net.JoinHostPort(host, port)}, nil
}

// NewClient builds a Client for the interface named name at an explicit
// network address, for bootstrapping a connection to a server not reached
// through a local Skeleton (e.g. the well-known naming server address).
func NewClient(name, network, address string) *Client {
	return &Client{name: name, network: network, address: address}
}

func isWildcardHost(address string) bool {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return false
	}
	return host == "" || host == "0.0.0.0" || host == "::" || host == "[::]"
}

// Equal reports whether two clients address the same remote interface.
func (c *Client) Equal(other *Client) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.name == other.name && c.network == other.network && c.address == other.address
}

// String renders the remote address, matching the stub's toString contract.
func (c *Client) String() string {
	return fmt.Sprintf("%s@%s:%s", c.name, c.network, c.address)
}

// HashCode derives a stable hash from the remote address, for stub types
// that need to key maps/sets by identity.
func (c *Client) HashCode() uint64 {
	h := uint64(14695981039346656037) // FNV offset basis
	for _, b := range []byte(c.name + "\x00" + c.network + "\x00" + c.address) {
		h ^= uint64(b)
		h *= 1099511628211 // FNV prime
	}
	return h
}

// Call marshals method and args to the remote address, blocks for the
// response, and decodes it into reply (which may be nil if the method
// returns only error). It fails with a *RemoteError if the connection
// cannot be established, marshalling fails, or the server reports a
// transport-level error; an application error returned by the remote
// implementation is reconstructed with its original Kind.
func (c *Client) Call(method string, args []interface{}, reply interface{}) error {
	conn, err := net.Dial(c.network, c.address)
	if err != nil {
		return NewRemoteError("%s: dial %s: %v", c.name, c.address, err)
	}
	defer conn.Close()

	req := request{Method: method, ArgTypes: make([]string, len(args)), Args: make([][]byte, len(args))}
	for i, arg := range args {
		req.ArgTypes[i] = reflect.TypeOf(arg).String()
		var buf bytes.Buffer
		if err := gob.NewEncoder(&buf).Encode(arg); err != nil {
			return NewRemoteError("%s.%s: encoding argument %d: %v", c.name, method, i, err)
		}
		req.Args[i] = buf.Bytes()
	}
	if err := gob.NewEncoder(conn).Encode(req); err != nil {
		return NewRemoteError("%s.%s: sending request: %v", c.name, method, err)
	}

	var resp response
	if err := gob.NewDecoder(conn).Decode(&resp); err != nil {
		return NewRemoteError("%s.%s: reading response: %v", c.name, method, err)
	}
	if resp.HasErr {
		return ErrorForKind(resp.Kind, resp.ErrMsg)
	}
	if reply != nil && len(resp.Value) > 0 {
		if err := gob.NewDecoder(bytes.NewReader(resp.Value)).Decode(reply); err != nil {
			return NewRemoteError("%s.%s: decoding result: %v", c.name, method, err)
		}
	}
	return nil
}
