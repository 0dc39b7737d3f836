package tree

import (
	"fmt"

	"github.com/nicolagi/nsfs/lock"
	"github.com/nicolagi/nsfs/path"
)

// Lock acquires the hierarchical lock on p per spec.md §4.D: every strict
// ancestor from root down is acquired shared, then the target itself in
// the requested mode. On a shared grant of a file node it increments
// read_count and invokes the replicator (§4.E) before returning; on an
// exclusive grant of a file node it invalidates all replicas first
// (§4.D, invariant 7). It fails with ErrNotFound if p does not resolve.
func (t *Tree) Lock(p path.Path, exclusive bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	nodes, err := t.resolveChain(p)
	if err != nil {
		return err
	}

	for i, n := range nodes {
		last := i == len(nodes)-1
		var req *lock.Request
		if last && exclusive {
			req = n.queue.EnqueueExclusive()
		} else {
			req = n.queue.EnqueueShared()
		}
		for !n.queue.IsGranted(req) {
			t.cond.Wait()
		}
		if !last {
			continue
		}
		if n.kind != kindFile {
			continue
		}
		if exclusive {
			replicas := n.replicas
			n.replicas = nil
			n.readCount = 0
			t.replicator.Invalidate(p, replicas)
		} else {
			n.readCount++
			decision := t.replicator.Decide(p, n.primary, n.replicas, n.readCount, t.registeredRefs())
			if decision.AddReplica != nil {
				n.replicas = append(n.replicas, *decision.AddReplica)
				n.replicaCount = decision.Desired
			}
		}
	}
	return nil
}

// Unlock releases the hierarchical lock on p, target first then ancestors
// in reverse, per spec.md §4.D. It fails with ErrIllegalArg if p does not
// resolve, and ErrIllegalState if the lock is not currently held in the
// given mode (spec.md §4.G).
func (t *Tree) Unlock(p path.Path, exclusive bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	nodes, err := t.resolveChain(p)
	if err != nil {
		return fmt.Errorf("%s: %w", p, ErrIllegalArg)
	}

	target := nodes[len(nodes)-1]
	var releaseErr error
	if exclusive {
		releaseErr = target.queue.ReleaseExclusive()
	} else {
		releaseErr = target.queue.ReleaseShared()
	}
	if releaseErr != nil {
		return fmt.Errorf("%s: %w", p, ErrIllegalState)
	}
	for i := len(nodes) - 2; i >= 0; i-- {
		if err := nodes[i].queue.ReleaseShared(); err != nil {
			return fmt.Errorf("%s: %w", p, ErrIllegalState)
		}
	}
	t.cond.Broadcast()
	return nil
}
