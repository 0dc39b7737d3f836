// Package replicate implements the demand-driven replication controller
// of spec.md §4.E: on each shared lock acquisition of a file, compute the
// desired replica count from accumulated read demand and, if
// under-replicated, provision at most one new replica per acquisition.
// Grounded on the teacher's storage/paired.go propagation-log idiom —
// background, best-effort, per-item-failure-logged copy — adapted from
// block keys to whole-file Command.copy RPCs issued through rmi stubs.
package replicate

import (
	"math"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nicolagi/nsfs/path"
	"github.com/nicolagi/nsfs/storage"
	"github.com/nicolagi/nsfs/tree"
)

// Controller implements tree.Replicator.
type Controller struct {
	alpha float64

	// newCommand is overridden in tests to avoid real network dials.
	newCommand func(storage.Ref) storage.Command
}

var _ tree.Replicator = (*Controller)(nil)

// NewController returns a Controller with replication factor alpha
// (spec.md §4.E default 0.3, configured via config.C.ReplicationFactor).
func NewController(alpha float64) *Controller {
	return &Controller{alpha: alpha, newCommand: storage.NewCommandStub}
}

// Decide computes the desired replica count and, if under-replicated,
// attempts to provision exactly one additional replica by commanding one
// eligible storage server to copy the file from the primary.
func (c *Controller) Decide(p path.Path, primary storage.Ref, replicas []storage.Ref, readCount int, registered []storage.Ref) tree.Decision {
	coarse := math.Round(float64(readCount)/20) * 20
	desired := int(math.Floor(c.alpha * coarse))
	if desired > len(registered) {
		desired = len(registered)
	}
	if desired <= len(replicas) {
		return tree.Decision{}
	}

	candidate, ok := c.pickCandidate(primary, replicas, registered)
	if !ok {
		return tree.Decision{}
	}
	if _, err := c.newCommand(candidate).Copy(p, primary); err != nil {
		log.WithFields(log.Fields{"op": "replicate", "path": p.String(), "candidate": candidate}).WithError(err).Warning("could not provision replica")
		return tree.Decision{}
	}
	return tree.Decision{AddReplica: &candidate, Desired: desired}
}

// pickCandidate deterministically selects the first registered server
// holding neither the primary nor any existing replica.
func (c *Controller) pickCandidate(primary storage.Ref, replicas []storage.Ref, registered []storage.Ref) (storage.Ref, bool) {
	for _, s := range registered {
		if s.Equal(primary) {
			continue
		}
		held := false
		for _, r := range replicas {
			if s.Equal(r) {
				held = true
				break
			}
		}
		if !held {
			return s, true
		}
	}
	return storage.Ref{}, false
}

// Invalidate instructs every given replica holder to delete its copy of
// p, in parallel with bounded concurrency, absorbing and logging
// per-server failures (spec.md §7). Grounded on tree_walking.go's grow,
// which fans invalidation-equivalent work out through an errgroup guarded
// by a semaphore channel.
func (c *Controller) Invalidate(p path.Path, replicas []storage.Ref) {
	if len(replicas) == 0 {
		return
	}
	const maxConcurrency = 8
	sem := make(chan struct{}, maxConcurrency)
	var g errgroup.Group
	for _, ref := range replicas {
		ref := ref
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			if _, err := c.newCommand(ref).Delete(p); err != nil {
				log.WithFields(log.Fields{"op": "invalidate", "path": p.String(), "replica": ref}).WithError(err).Warning("could not invalidate replica")
			}
			return nil
		})
	}
	_ = g.Wait()
}
