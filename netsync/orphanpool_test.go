// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

func blockWithParent(prev chainhash.Hash, nonce byte) *wire.MsgBlock {
	return &wire.MsgBlock{Header: header(prev, nonce)}
}

func TestOrphanBlocksPoolFlushesChildrenInOrder(t *testing.T) {
	pool := NewOrphanBlocksPool()
	root := chainhash.Hash{0xaa}

	child := blockWithParent(root, 1)
	require.NoError(t, pool.Add(child))
	grandchild := blockWithParent(child.Header.BlockHash(), 2)
	require.NoError(t, pool.Add(grandchild))

	require.Equal(t, 2, pool.Len())
	flushed := pool.Flush(root)
	require.Len(t, flushed, 2)
	require.Equal(t, child.Header.BlockHash(), flushed[0].Header.BlockHash())
	require.Equal(t, grandchild.Header.BlockHash(), flushed[1].Header.BlockHash())
	require.Equal(t, 0, pool.Len())
}

func TestOrphanBlocksPoolRejectsPastCapacity(t *testing.T) {
	pool := NewOrphanBlocksPool()
	root := chainhash.Hash{0xaa}
	for i := 0; i < maxOrphanBlocks; i++ {
		b := blockWithParent(root, byte(i))
		b.Header.Timestamp = b.Header.Timestamp.Add(1)
		// vary nonce+timestamp combination enough to keep hashes distinct
		b.Header.Nonce[1] = byte(i >> 8)
		require.NoError(t, pool.Add(b))
	}
	require.Equal(t, maxOrphanBlocks, pool.Len())

	overflow := blockWithParent(root, 0xff)
	overflow.Header.Nonce[1] = 0xff
	overflow.Header.Nonce[2] = 0xff
	err := pool.Add(overflow)
	require.ErrorIs(t, err, ErrTooManyOrphanBlocks)
}
