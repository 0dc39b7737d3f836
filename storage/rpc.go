package storage

import (
	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/rmi"
)

// NewStorageSkeleton exposes impl's Storage interface for remote calls.
func NewStorageSkeleton(impl Storage, network, address string) (*rmi.Skeleton, error) {
	return rmi.NewSkeleton("Storage", (*Storage)(nil), impl, network, address)
}

// NewCommandSkeleton exposes impl's Command interface for remote calls.
func NewCommandSkeleton(impl Command, network, address string) (*rmi.Skeleton, error) {
	return rmi.NewSkeleton("Command", (*Command)(nil), impl, network, address)
}

// storageStub implements Storage by delegating every method to an
// rmi.Client, the pattern the package doc of rmi describes: Go has no
// runtime dynamic proxy, so the per-domain wrapper is hand-written.
type storageStub struct {
	client *rmi.Client
}

// NewStorageStub builds a Storage that calls out to the storage server
// named by ref.
func NewStorageStub(ref Ref) Storage {
	return &storageStub{client: rmi.NewClient("Storage", "tcp", ref.StorageAddr)}
}

func (s *storageStub) Size(p path.Path) (int64, error) {
	var reply int64
	err := s.client.Call("Size", []interface{}{p}, &reply)
	return reply, err
}

func (s *storageStub) Read(p path.Path, offset, length int64) ([]byte, error) {
	var reply []byte
	err := s.client.Call("Read", []interface{}{p, offset, length}, &reply)
	return reply, err
}

func (s *storageStub) Write(p path.Path, offset int64, data []byte) error {
	return s.client.Call("Write", []interface{}{p, offset, data}, nil)
}

// commandStub implements Command by delegating every method to an
// rmi.Client.
type commandStub struct {
	client *rmi.Client
}

// NewCommandStub builds a Command that calls out to the storage server
// named by ref.
func NewCommandStub(ref Ref) Command {
	return &commandStub{client: rmi.NewClient("Command", "tcp", ref.CommandAddr)}
}

func (c *commandStub) Create(p path.Path) (bool, error) {
	var reply bool
	err := c.client.Call("Create", []interface{}{p}, &reply)
	return reply, err
}

func (c *commandStub) Delete(p path.Path) (bool, error) {
	var reply bool
	err := c.client.Call("Delete", []interface{}{p}, &reply)
	return reply, err
}

func (c *commandStub) Copy(p path.Path, source Ref) (bool, error) {
	var reply bool
	err := c.client.Call("Copy", []interface{}{p, source}, &reply)
	return reply, err
}
