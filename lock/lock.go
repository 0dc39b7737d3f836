// Package lock implements the per-node FIFO lock queue described in
// spec.md §4.D: a queue of requests, exclusive requests always enqueued
// anew, shared requests coalesced into a trailing shared entry so that a
// burst of readers costs one queue slot instead of one per reader.
//
// Queue carries no synchronization of its own. It is driven under a
// single external monitor (tree.Tree's mutex and condition variable),
// the same way the teacher's cmd/musclefs/musclefs.go serializes its facade
// under one coarse ops.mu rather than locking per entry.
package lock

import "fmt"

// Request is one entry in a node's queue: either a single exclusive
// holder-in-waiting, or a coalesced group of shared holders-in-waiting.
type Request struct {
	Exclusive bool
	// Readers counts how many shared acquisitions have coalesced into
	// this entry, including ones already granted (i.e. at the head).
	Readers int
}

// Queue is the FIFO queue of lock requests for one node.
type Queue struct {
	entries []*Request
}

// EnqueueExclusive appends a new exclusive request and returns it. The
// request is granted once it reaches the head of the queue.
func (q *Queue) EnqueueExclusive() *Request {
	r := &Request{Exclusive: true}
	q.entries = append(q.entries, r)
	return r
}

// EnqueueShared coalesces into the trailing entry if it is itself a
// shared request, otherwise appends a new one. The returned request is
// granted once it is the head of the queue.
func (q *Queue) EnqueueShared() *Request {
	if n := len(q.entries); n > 0 && !q.entries[n-1].Exclusive {
		q.entries[n-1].Readers++
		return q.entries[n-1]
	}
	r := &Request{Readers: 1}
	q.entries = append(q.entries, r)
	return r
}

// Head returns the request currently at the head of the queue, the only
// one(s) ever granted, or nil if the queue is empty.
func (q *Queue) Head() *Request {
	if len(q.entries) == 0 {
		return nil
	}
	return q.entries[0]
}

// IsGranted reports whether r is the (or part of the coalesced) head
// entry, meaning its holder(s) may proceed.
func (q *Queue) IsGranted(r *Request) bool {
	return q.Head() == r
}

// Empty reports whether the queue holds no requests at all.
func (q *Queue) Empty() bool {
	return len(q.entries) == 0
}

// ReleaseExclusive pops the head entry, which must be an exclusive
// request. It is a programming error to call this when the head is not
// an exclusive grant.
func (q *Queue) ReleaseExclusive() error {
	h := q.Head()
	if h == nil || !h.Exclusive {
		return fmt.Errorf("lock: release exclusive: %w", ErrIllegalState)
	}
	q.entries = q.entries[1:]
	return nil
}

// ReleaseShared decrements the head entry's reader count, popping it once
// it reaches zero. It is a programming error to call this when the head
// is not a shared grant.
func (q *Queue) ReleaseShared() error {
	h := q.Head()
	if h == nil || h.Exclusive {
		return fmt.Errorf("lock: release shared: %w", ErrIllegalState)
	}
	h.Readers--
	if h.Readers == 0 {
		q.entries = q.entries[1:]
	}
	return nil
}
