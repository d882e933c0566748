// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func leaf(b byte) chainhash.Hash {
	var h chainhash.Hash
	h[0] = b
	return h
}

func TestCommitmentTreeEmptyRoot(t *testing.T) {
	tree := NewCommitmentTree(3)
	empty := newEmptyRoots(3)
	require.Equal(t, empty.levels[3], tree.Root())
}

func TestCommitmentTreeRootChangesOnAppend(t *testing.T) {
	tree := NewCommitmentTree(4)
	r0 := tree.Root()
	require.NoError(t, tree.Append(leaf(1)))
	r1 := tree.Root()
	require.NotEqual(t, r0, r1)
	require.NoError(t, tree.Append(leaf(2)))
	r2 := tree.Root()
	require.NotEqual(t, r1, r2)
}

func TestCommitmentTreeCloneIsIndependent(t *testing.T) {
	tree := NewCommitmentTree(4)
	require.NoError(t, tree.Append(leaf(1)))
	clone := tree.Clone()
	require.NoError(t, clone.Append(leaf(2)))
	require.NotEqual(t, tree.Root(), clone.Root())
	require.Equal(t, uint64(1), tree.Size())
	require.Equal(t, uint64(2), clone.Size())
}

func TestCommitmentTreeMatchesManualPairHash(t *testing.T) {
	tree := NewCommitmentTree(1)
	a, b := leaf(0xaa), leaf(0xbb)
	require.NoError(t, tree.Append(a))
	require.NoError(t, tree.Append(b))
	want := HashMerkleBranches(&a, &b)
	require.Equal(t, want, tree.Root())
}

func TestCommitmentTreeFull(t *testing.T) {
	tree := NewCommitmentTree(1)
	require.NoError(t, tree.Append(leaf(1)))
	require.NoError(t, tree.Append(leaf(2)))
	require.ErrorIs(t, tree.Append(leaf(3)), ErrTreeFull)
}
