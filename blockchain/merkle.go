// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
)

// nextPowerOfTwo returns the next highest power of two from a given number if
// it is not already a power of two. This is a helper used during the
// calculation of a merkle tree.
func nextPowerOfTwo(n int) int {
	if n&(n-1) == 0 {
		return n
	}
	exponent := uint(math.Log2(float64(n))) + 1
	return 1 << exponent
}

// HashMerkleBranches takes two hashes, treated as the left and right tree
// nodes, and returns the hash of their concatenation.
func HashMerkleBranches(left, right *chainhash.Hash) chainhash.Hash {
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])

	return chainhash.DoubleHashRaw(func(w io.Writer) error {
		_, err := w.Write(hash[:])
		return err
	})
}

// BuildMerkleTreeStore creates a merkle tree from a slice of transactions,
// stored as a linear array, and returns the backing slice. A linear array is
// used instead of an actual tree structure since it uses about half the
// memory.
//
// A merkle tree is a tree in which every non-leaf node is the hash of its
// children nodes. A diagram depicting how this works for a set of
// transactions where h(x) is a double sha256 follows:
//
//	         root = h1234 = h(h12 + h34)
//	        /                           \
//	  h12 = h(h1 + h2)            h34 = h(h3 + h4)
//	   /            \              /            \
//	h1 = h(tx1)  h2 = h(tx2)    h3 = h(tx3)  h4 = h(tx4)
//
// As the above shows, the merkle root is always the last element of the
// array. The number of transactions is not always a power of two, which
// results in a balanced tree as above; parent nodes with no children are
// zero, and parent nodes with only a single left child are computed by
// concatenating that node with itself before hashing. Zcash has no segwit
// analogue, so unlike upstream btcd there is only one merkle tree here, over
// plain transaction hashes.
func BuildMerkleTreeStore(transactions []*wire.Tx) []*chainhash.Hash {
	nextPoT := nextPowerOfTwo(len(transactions))
	arraySize := nextPoT*2 - 1
	merkles := make([]*chainhash.Hash, arraySize)

	for i, tx := range transactions {
		merkles[i] = tx.Hash()
	}

	offset := nextPoT
	for i := 0; i < arraySize-1; i += 2 {
		switch {
		case merkles[i] == nil:
			merkles[offset] = nil
		case merkles[i+1] == nil:
			newHash := HashMerkleBranches(merkles[i], merkles[i])
			merkles[offset] = &newHash
		default:
			newHash := HashMerkleBranches(merkles[i], merkles[i+1])
			merkles[offset] = &newHash
		}
		offset++
	}

	return merkles
}

// CalcMerkleRoot computes the merkle root over a slice of transactions using
// a rollingMerkleTreeStore.
func CalcMerkleRoot(transactions []*wire.Tx) chainhash.Hash {
	s := newRollingMerkleTreeStore(uint64(len(transactions)))
	return s.calcMerkleRoot(transactions)
}

// rollingMerkleTreeStore computes a merkle root from a slice holding all n
// leaf hashes, reducing it one level at a time and duplicating the last
// hash of any level with an odd count.
type rollingMerkleTreeStore struct {
	nodes []chainhash.Hash
	branch []*chainhash.Hash
}

func newRollingMerkleTreeStore(numLeaves uint64) *rollingMerkleTreeStore {
	height := 0
	for (uint64(1) << height) < numLeaves {
		height++
	}
	return &rollingMerkleTreeStore{branch: make([]*chainhash.Hash, height+1)}
}

func (s *rollingMerkleTreeStore) calcMerkleRoot(transactions []*wire.Tx) chainhash.Hash {
	if len(transactions) == 0 {
		return chainhash.Hash{}
	}

	hashes := make([]chainhash.Hash, len(transactions))
	for i, tx := range transactions {
		hashes[i] = *tx.Hash()
	}

	for len(hashes) > 1 {
		if len(hashes)%2 != 0 {
			hashes = append(hashes, hashes[len(hashes)-1])
		}
		next := make([]chainhash.Hash, len(hashes)/2)
		for i := 0; i < len(hashes); i += 2 {
			h := HashMerkleBranches(&hashes[i], &hashes[i+1])
			next[i/2] = h
		}
		hashes = next
	}

	return hashes[0]
}
