// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Epoch identifies which shielded pool a nullifier belongs to. Sprout and
// Sapling nullifiers live in disjoint namespaces even when their raw bytes
// collide.
type Epoch uint8

const (
	EpochSprout Epoch = iota
	EpochSapling
)

func (e Epoch) String() string {
	switch e {
	case EpochSprout:
		return "sprout"
	case EpochSapling:
		return "sapling"
	default:
		return "unknown"
	}
}

// nullifierKey namespaces a raw nullifier hash by epoch tag so the two
// pools never collide in a shared set.
type nullifierKey struct {
	epoch Epoch
	hash  chainhash.Hash
}

// NullifierSet tracks revealed nullifiers across both shielded pools. It is
// intentionally a thin, explicit set (rather than folding epoch into the
// hash bytes) so the epoch-tag invariant in spec is enforced by the type,
// not by convention.
type NullifierSet struct {
	seen map[nullifierKey]struct{}
}

// NewNullifierSet returns an empty nullifier set.
func NewNullifierSet() *NullifierSet {
	return &NullifierSet{seen: make(map[nullifierKey]struct{})}
}

// Has reports whether the given nullifier has already been revealed in the
// given epoch.
func (s *NullifierSet) Has(epoch Epoch, h chainhash.Hash) bool {
	_, ok := s.seen[nullifierKey{epoch, h}]
	return ok
}

// Insert records a nullifier as revealed. It returns ErrDuplicateNullifier
// if the nullifier was already present in this epoch.
func (s *NullifierSet) Insert(epoch Epoch, h chainhash.Hash) error {
	key := nullifierKey{epoch, h}
	if _, ok := s.seen[key]; ok {
		return ruleError(ErrDuplicateNullifier, "nullifier already revealed")
	}
	s.seen[key] = struct{}{}
	return nil
}

// Remove undoes Insert, used by decanonize to roll back a block's revealed
// nullifiers.
func (s *NullifierSet) Remove(epoch Epoch, h chainhash.Hash) {
	delete(s.seen, nullifierKey{epoch, h})
}

// Clone returns a deep copy of the set that shares no state with the
// original.
func (s *NullifierSet) Clone() *NullifierSet {
	clone := &NullifierSet{seen: make(map[nullifierKey]struct{}, len(s.seen))}
	for k := range s.seen {
		clone.seen[k] = struct{}{}
	}
	return clone
}
