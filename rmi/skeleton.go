package rmi

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"net"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

type methodBinding struct {
	fn       reflect.Value
	in       []reflect.Type
	hasValue bool // true when the method returns (value, error) rather than just error
}

// Skeleton is a multithreaded server bound to a declared remote interface.
// One acceptor goroutine accepts connections; each accepted connection is
// served by its own worker goroutine for exactly one request/response
// exchange (see package doc for the wire framing).
type Skeleton struct {
	name    string
	methods map[string]methodBinding

	mu        sync.Mutex
	network   string
	address   string
	listener  net.Listener
	running   bool
	stopped   bool
	onStopped func(error)
	wg        sync.WaitGroup
}

// NewSkeleton validates impl against the remote interface named by ifacePtr
// (a nil pointer to the interface type, e.g. (*Service)(nil)) and binds it
// for serving on network/address. address may be empty, in which case the
// OS assigns one at Start. It fails with ErrNotRemoteInterface if any
// method of the interface does not declare error as its last result, or is
// not implemented by impl.
func NewSkeleton(name string, ifacePtr interface{}, impl interface{}, network, address string) (*Skeleton, error) {
	ifaceType := reflect.TypeOf(ifacePtr)
	if ifaceType == nil || ifaceType.Kind() != reflect.Ptr || ifaceType.Elem().Kind() != reflect.Interface {
		return nil, fmt.Errorf("%s: ifacePtr must be a nil pointer to an interface type: %w", name, ErrNotRemoteInterface)
	}
	ifaceType = ifaceType.Elem()
	implValue := reflect.ValueOf(impl)
	methods := make(map[string]methodBinding, ifaceType.NumMethod())
	for i := 0; i < ifaceType.NumMethod(); i++ {
		m := ifaceType.Method(i)
		if m.Type.NumOut() == 0 || m.Type.Out(m.Type.NumOut()-1) != errorType {
			return nil, fmt.Errorf("%s.%s: method must declare error as its last result: %w", name, m.Name, ErrNotRemoteInterface)
		}
		if m.Type.NumOut() > 2 {
			return nil, fmt.Errorf("%s.%s: at most one value plus error may be returned: %w", name, m.Name, ErrNotRemoteInterface)
		}
		bound := implValue.MethodByName(m.Name)
		if !bound.IsValid() {
			return nil, fmt.Errorf("%s.%s: not implemented by %T: %w", name, m.Name, impl, ErrNotRemoteInterface)
		}
		in := make([]reflect.Type, m.Type.NumIn())
		for j := range in {
			in[j] = m.Type.In(j)
		}
		methods[m.Name] = methodBinding{fn: bound, in: in, hasValue: m.Type.NumOut() == 2}
	}
	return &Skeleton{name: name, methods: methods, network: network, address: address}, nil
}

// OnStopped registers the hook invoked exactly once after the skeleton
// stops, whether by an explicit Stop or because the listener failed. cause
// is nil for an explicit Stop.
func (s *Skeleton) OnStopped(fn func(cause error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onStopped = fn
}

// Start binds the listening socket if not already bound and spawns the
// acceptor goroutine. Restart after Stop is not supported.
func (s *Skeleton) Start() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return fmt.Errorf("%s: restart not supported", s.name)
	}
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("%s: already started", s.name)
	}
	ln, err := net.Listen(s.network, s.address)
	if err != nil {
		s.mu.Unlock()
		return NewRemoteError("%s: listen %s %s: %v", s.name, s.network, s.address, err)
	}
	s.listener = ln
	s.address = ln.Addr().String()
	s.running = true
	s.mu.Unlock()

	s.wg.Add(1)
	go s.acceptLoop()
	return nil
}

// Address returns the bound network and address. It fails with
// ErrNotStarted if the skeleton has neither an explicit address nor has
// been started.
func (s *Skeleton) Address() (network, address string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.address == "" {
		return "", "", ErrNotStarted
	}
	return s.network, s.address, nil
}

func (s *Skeleton) acceptLoop() {
	defer s.wg.Done()
	var cause error
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			cause = err
			break
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.serve(conn)
		}()
	}
	s.mu.Lock()
	alreadyStopped := s.stopped
	s.stopped = true
	hook := s.onStopped
	s.mu.Unlock()
	if !alreadyStopped && hook != nil {
		hook(cause)
	}
}

func (s *Skeleton) serve(conn net.Conn) {
	defer conn.Close()
	var req request
	if err := gob.NewDecoder(conn).Decode(&req); err != nil {
		return
	}
	resp := s.dispatch(&req)
	_ = gob.NewEncoder(conn).Encode(resp)
}

func (s *Skeleton) dispatch(req *request) response {
	binding, ok := s.methods[req.Method]
	if !ok {
		return response{HasErr: true, Kind: KindRemoteError, ErrMsg: fmt.Sprintf("%s: %v", req.Method, ErrUnknownMethod)}
	}
	if len(req.Args) != len(binding.in) {
		return response{HasErr: true, Kind: KindRemoteError, ErrMsg: fmt.Sprintf("%s: expected %d arguments, got %d", req.Method, len(binding.in), len(req.Args))}
	}
	in := make([]reflect.Value, len(binding.in))
	for i, t := range binding.in {
		target := reflect.New(t)
		if err := gob.NewDecoder(bytes.NewReader(req.Args[i])).Decode(target.Interface()); err != nil {
			return response{HasErr: true, Kind: KindRemoteError, ErrMsg: fmt.Sprintf("%s: decoding argument %d (%s): %v", req.Method, i, t, err)}
		}
		in[i] = target.Elem()
	}
	out := binding.fn.Call(in)
	errVal := out[len(out)-1]
	if !errVal.IsNil() {
		err, _ := errVal.Interface().(error)
		return response{HasErr: true, Kind: ClassifyError(err), ErrMsg: err.Error()}
	}
	if !binding.hasValue {
		return response{}
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(out[0].Interface()); err != nil {
		return response{HasErr: true, Kind: KindRemoteError, ErrMsg: fmt.Sprintf("%s: encoding result: %v", req.Method, err)}
	}
	return response{Value: buf.Bytes()}
}

// Stop closes the listener and waits for in-flight workers to drain before
// returning. The stopped hook, if any, fires after all workers have
// finished.
func (s *Skeleton) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	hook := s.onStopped
	ln := s.listener
	s.mu.Unlock()

	_ = ln.Close()
	s.wg.Wait()
	if hook != nil {
		hook(nil)
	}
}
