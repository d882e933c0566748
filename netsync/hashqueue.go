// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package netsync tracks the sync state of a node relative to its peers: a
// chain of known headers above the stored tip, and a four-stage queue that
// moves each header's hash from "known about" through "verified and
// stored".
package netsync

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Stage is a hash's position in the queue chain. Advance moves a hash
// forward by exactly one stage; Retreat moves a requested or verifying hash
// back to scheduled.
type Stage int

const (
	// StageUnknown means the hash isn't tracked by the queue chain at all.
	StageUnknown Stage = iota
	StageScheduled
	StageRequested
	StageVerifying
	StageStored
)

func (s Stage) String() string {
	switch s {
	case StageScheduled:
		return "scheduled"
	case StageRequested:
		return "requested"
	case StageVerifying:
		return "verifying"
	case StageStored:
		return "stored"
	default:
		return "unknown"
	}
}

// entry is the per-hash bookkeeping the queue chain keeps: which FIFO it
// currently sits in, and the timers the peer-tasks subsystem attached at
// its last transition.
type entry struct {
	stage      Stage
	assignedAt time.Time // when a peer was assigned this hash (Requested)
	deadline   time.Time // request timeout (Requested, Verifying)
}

// HashQueueChain is a chain of four ordered FIFOs — scheduled, requested,
// verifying, stored — holding the same universe of hashes at any time,
// each hash appearing in exactly one. Order within a FIFO is insertion
// order; it is what the sync client core drains peer assignments from.
type HashQueueChain struct {
	order   map[Stage][]chainhash.Hash
	entries map[chainhash.Hash]*entry
}

// NewHashQueueChain returns an empty queue chain.
func NewHashQueueChain() *HashQueueChain {
	return &HashQueueChain{
		order: map[Stage][]chainhash.Hash{
			StageScheduled: nil,
			StageRequested: nil,
			StageVerifying: nil,
			StageStored:    nil,
		},
		entries: make(map[chainhash.Hash]*entry),
	}
}

// Stage returns a hash's current position, StageUnknown if it isn't
// tracked.
func (c *HashQueueChain) Stage(hash chainhash.Hash) Stage {
	e, ok := c.entries[hash]
	if !ok {
		return StageUnknown
	}
	return e.stage
}

// Schedule adds a new hash to the scheduled FIFO. It is an error to
// schedule a hash already tracked by the chain.
func (c *HashQueueChain) Schedule(hash chainhash.Hash) error {
	if _, ok := c.entries[hash]; ok {
		return fmt.Errorf("netsync: %s already tracked at stage %s", hash, c.entries[hash].stage)
	}
	c.entries[hash] = &entry{stage: StageScheduled}
	c.order[StageScheduled] = append(c.order[StageScheduled], hash)
	return nil
}

// Advance moves hash forward by exactly one stage, attaching assignedAt
// and deadline timers as given (either may be the zero time if the target
// stage doesn't use it). It refuses to move a hash by more than one stage
// or backward.
func (c *HashQueueChain) Advance(hash chainhash.Hash, to Stage, assignedAt, deadline time.Time) error {
	e, ok := c.entries[hash]
	if !ok {
		return fmt.Errorf("netsync: %s not tracked", hash)
	}
	if to != e.stage+1 {
		return fmt.Errorf("netsync: %s at stage %s cannot advance to %s", hash, e.stage, to)
	}
	c.removeFromOrder(e.stage, hash)
	e.stage = to
	e.assignedAt = assignedAt
	e.deadline = deadline
	c.order[to] = append(c.order[to], hash)
	return nil
}

// Retreat moves a requested or verifying hash back to scheduled, used when
// a peer's request times out or a reorg invalidates in-flight work.
func (c *HashQueueChain) Retreat(hash chainhash.Hash) error {
	e, ok := c.entries[hash]
	if !ok {
		return fmt.Errorf("netsync: %s not tracked", hash)
	}
	if e.stage == StageUnknown || e.stage == StageScheduled {
		return fmt.Errorf("netsync: %s at stage %s cannot retreat", hash, e.stage)
	}
	c.removeFromOrder(e.stage, hash)
	e.stage = StageScheduled
	e.assignedAt = time.Time{}
	e.deadline = time.Time{}
	c.order[StageScheduled] = append(c.order[StageScheduled], hash)
	return nil
}

// Remove drops hash from the chain entirely, used once a stored block's
// ancestry is far enough behind the tip that tracking it is no longer
// useful.
func (c *HashQueueChain) Remove(hash chainhash.Hash) {
	e, ok := c.entries[hash]
	if !ok {
		return
	}
	c.removeFromOrder(e.stage, hash)
	delete(c.entries, hash)
}

// Front returns the oldest hash in the given stage's FIFO, and whether one
// exists.
func (c *HashQueueChain) Front(stage Stage) (chainhash.Hash, bool) {
	q := c.order[stage]
	if len(q) == 0 {
		return chainhash.Hash{}, false
	}
	return q[0], true
}

// Len reports how many hashes currently sit in the given stage.
func (c *HashQueueChain) Len(stage Stage) int {
	return len(c.order[stage])
}

// Deadline returns the timeout attached to hash at its current stage, and
// whether the hash is tracked with one set.
func (c *HashQueueChain) Deadline(hash chainhash.Hash) (time.Time, bool) {
	e, ok := c.entries[hash]
	if !ok || e.deadline.IsZero() {
		return time.Time{}, false
	}
	return e.deadline, true
}

func (c *HashQueueChain) removeFromOrder(stage Stage, hash chainhash.Hash) {
	q := c.order[stage]
	for i, h := range q {
		if h == hash {
			c.order[stage] = append(q[:i], q[i+1:]...)
			return
		}
	}
}
