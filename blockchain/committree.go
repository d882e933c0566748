// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// emptyRoots memoizes the root of an empty subtree at each level of an
// incremental note commitment tree, so appends and root computation never
// need to special-case "nothing appended there yet".
type emptyRoots struct {
	levels []chainhash.Hash
}

func newEmptyRoots(height uint8) *emptyRoots {
	levels := make([]chainhash.Hash, height+1)
	levels[0] = chainhash.Hash{} // uncommitted leaf value
	for i := 1; i <= int(height); i++ {
		levels[i] = HashMerkleBranches(&levels[i-1], &levels[i-1])
	}
	return &emptyRoots{levels: levels}
}

// CommitmentTree is a fixed-height, append-only Merkle tree of note
// commitments. It retains only the O(height) frontier nodes needed to
// append the next leaf and recompute the root, following Zcash's
// incremental Merkle tree construction (equivalent to a binary counter: each
// append either opens a new frontier slot or carries a completed pair up to
// the next level).
type CommitmentTree struct {
	height uint8
	empty  *emptyRoots
	size   uint64
	nodes  []chainhash.Hash
	filled []bool
}

// NewCommitmentTree returns a new, empty tree of the given height (29 for
// Sprout, 32 for Sapling).
func NewCommitmentTree(height uint8) *CommitmentTree {
	return &CommitmentTree{
		height: height,
		empty:  newEmptyRoots(height),
		nodes:  make([]chainhash.Hash, height),
		filled: make([]bool, height),
	}
}

// Clone returns a deep, independent copy of the tree, used by insert() to
// branch a new block's tree off of its parent's snapshot without mutating
// the parent's.
func (t *CommitmentTree) Clone() *CommitmentTree {
	clone := &CommitmentTree{
		height: t.height,
		empty:  t.empty,
		size:   t.size,
		nodes:  make([]chainhash.Hash, t.height),
		filled: make([]bool, t.height),
	}
	copy(clone.nodes, t.nodes)
	copy(clone.filled, t.filled)
	return clone
}

// ErrTreeFull is returned by Append when the tree has reached its maximum
// capacity of 2^height leaves.
var ErrTreeFull = ruleError(ErrBlockTooBig, "commitment tree is full")

// Append adds a single note commitment as the tree's next leaf.
func (t *CommitmentTree) Append(cm chainhash.Hash) error {
	if t.size >= uint64(1)<<t.height {
		return ErrTreeFull
	}
	node := cm
	for level := uint8(0); level < t.height; level++ {
		if !t.filled[level] {
			t.nodes[level] = node
			t.filled[level] = true
			t.size++
			return nil
		}
		node = HashMerkleBranches(&t.nodes[level], &node)
		t.filled[level] = false
	}
	// The carry ran past the top level: the tree is now full and node is
	// its root, kept in the top frontier slot.
	if t.height > 0 {
		t.nodes[t.height-1] = node
		t.filled[t.height-1] = true
	}
	t.size++
	return nil
}

// Root computes the current root of the tree by folding the frontier
// against the precomputed empty-subtree roots.
func (t *CommitmentTree) Root() chainhash.Hash {
	if t.height > 0 && t.size == uint64(1)<<t.height {
		return t.nodes[t.height-1]
	}
	var acc chainhash.Hash
	haveAcc := false
	for level := uint8(0); level < t.height; level++ {
		if t.filled[level] {
			right := t.empty.levels[level]
			if haveAcc {
				right = acc
			}
			acc = HashMerkleBranches(&t.nodes[level], &right)
			haveAcc = true
		} else if haveAcc {
			acc = HashMerkleBranches(&acc, &t.empty.levels[level])
		}
	}
	if !haveAcc {
		return t.empty.levels[t.height]
	}
	return acc
}

// Size returns the number of leaves appended so far.
func (t *CommitmentTree) Size() uint64 { return t.size }

// Serialize encodes the tree's frontier state for storage in the
// tree-states column: height(1) ‖ size(8 LE) ‖ for each level a
// presence-byte followed by 32 bytes of node data when present.
func (t *CommitmentTree) Serialize() []byte {
	buf := make([]byte, 0, 1+8+int(t.height)*(1+chainhash.HashSize))
	buf = append(buf, t.height)
	var sizeBytes [8]byte
	putUint64LE(sizeBytes[:], t.size)
	buf = append(buf, sizeBytes[:]...)
	for level := uint8(0); level < t.height; level++ {
		if t.filled[level] {
			buf = append(buf, 1)
			buf = append(buf, t.nodes[level][:]...)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

// DeserializeCommitmentTree reconstructs a tree from the bytes produced by
// Serialize.
func DeserializeCommitmentTree(data []byte) (*CommitmentTree, error) {
	if len(data) < 9 {
		return nil, ruleError(ErrBlockTooBig, "tree snapshot truncated")
	}
	height := data[0]
	size := uint64LE(data[1:9])
	t := NewCommitmentTree(height)
	t.size = size
	off := 9
	for level := uint8(0); level < height; level++ {
		if off >= len(data) {
			return nil, ruleError(ErrBlockTooBig, "tree snapshot truncated")
		}
		present := data[off]
		off++
		if present == 1 {
			if off+chainhash.HashSize > len(data) {
				return nil, ruleError(ErrBlockTooBig, "tree snapshot truncated")
			}
			copy(t.nodes[level][:], data[off:off+chainhash.HashSize])
			t.filled[level] = true
			off += chainhash.HashSize
		}
	}
	return t, nil
}

func putUint64LE(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

func uint64LE(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(b[i]) << (8 * i)
	}
	return v
}
