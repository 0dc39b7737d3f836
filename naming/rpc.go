package naming

import (
	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/rmi"
	"github.com/nicolagi/nsfs/storage"
)

// NewServiceSkeleton exposes impl's Service interface for remote calls,
// on the naming server's well-known client port (spec.md §6).
func NewServiceSkeleton(impl Service, network, address string) (*rmi.Skeleton, error) {
	return rmi.NewSkeleton("Service", (*Service)(nil), impl, network, address)
}

// NewRegistrationSkeleton exposes impl's Registration interface for
// remote calls, on the naming server's well-known storage port.
func NewRegistrationSkeleton(impl Registration, network, address string) (*rmi.Skeleton, error) {
	return rmi.NewSkeleton("Registration", (*Registration)(nil), impl, network, address)
}

// serviceStub implements Service by delegating every method to an
// rmi.Client, the hand-written per-domain wrapper the rmi package doc
// calls for in place of a runtime dynamic proxy.
type serviceStub struct {
	client *rmi.Client
}

// NewServiceStub builds a Service that calls out to the naming server at
// network/address.
func NewServiceStub(network, address string) Service {
	return &serviceStub{client: rmi.NewClient("Service", network, address)}
}

func (s *serviceStub) IsDirectory(p path.Path) (bool, error) {
	var reply bool
	err := s.client.Call("IsDirectory", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) List(p path.Path) ([]string, error) {
	var reply []string
	err := s.client.Call("List", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) CreateFile(p path.Path) (bool, error) {
	var reply bool
	err := s.client.Call("CreateFile", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) CreateDirectory(p path.Path) (bool, error) {
	var reply bool
	err := s.client.Call("CreateDirectory", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) Delete(p path.Path) (bool, error) {
	var reply bool
	err := s.client.Call("Delete", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) GetStorage(p path.Path) (storage.Ref, error) {
	var reply storage.Ref
	err := s.client.Call("GetStorage", []interface{}{p}, &reply)
	return reply, err
}

func (s *serviceStub) Lock(p path.Path, exclusive bool) error {
	return s.client.Call("Lock", []interface{}{p, exclusive}, nil)
}

func (s *serviceStub) Unlock(p path.Path, exclusive bool) error {
	return s.client.Call("Unlock", []interface{}{p, exclusive}, nil)
}

// registrationStub implements Registration by delegating to an
// rmi.Client.
type registrationStub struct {
	client *rmi.Client
}

// NewRegistrationStub builds a Registration that calls out to the naming
// server at network/address.
func NewRegistrationStub(network, address string) Registration {
	return &registrationStub{client: rmi.NewClient("Registration", network, address)}
}

func (r *registrationStub) Register(ref storage.Ref, paths []path.Path) ([]path.Path, error) {
	var reply []path.Path
	err := r.client.Call("Register", []interface{}{ref, paths}, &reply)
	return reply, err
}
