// Package rmi implements the bespoke remote method invocation transport
// binding the naming server, storage servers and clients of nsfs.
//
// A Skeleton validates an implementation against a declared remote
// interface and serves it over TCP: one acceptor goroutine, one worker
// goroutine per accepted connection, one request/response exchange per
// connection. A Client marshals one call (method name, positional
// arguments, argument-type descriptors) and reads back either the
// method's return value or the error it raised, with the error's Kind
// preserved across the wire.
//
// Go has no runtime dynamic proxy for an arbitrary interface, so the
// "stub" of the original design is split in two: Client carries the
// marshalling and address/equality plumbing, and each per-domain package
// (naming, storage) defines a small wrapper type implementing its own
// remote interface by delegating each method to Client.Call — the
// code-generated dispatch table design notes call out as an acceptable
// substitute for reflection-keyed dispatch.
package rmi
