// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

func header(prev chainhash.Hash, nonce byte) wire.BlockHeader {
	return wire.BlockHeader{
		PrevBlock: prev,
		Timestamp: time.Unix(1700000000, 0),
		Nonce:     [32]byte{nonce},
	}
}

func TestHeadersChainAppendRequiresTipExtension(t *testing.T) {
	base := chainhash.Hash{0xff}
	c := NewHeadersChain(base)
	require.Equal(t, base, c.Tip())

	h1 := header(base, 1)
	require.NoError(t, c.Append(h1))
	require.Equal(t, h1.BlockHash(), c.Tip())
	require.Equal(t, 1, c.Len())

	wrongParent := header(chainhash.Hash{0xaa}, 2)
	require.Error(t, c.Append(wrongParent))
}

func TestHeadersChainRetractToForkPoint(t *testing.T) {
	base := chainhash.Hash{0xff}
	c := NewHeadersChain(base)
	h1 := header(base, 1)
	require.NoError(t, c.Append(h1))
	h2 := header(h1.BlockHash(), 2)
	require.NoError(t, c.Append(h2))
	h3 := header(h2.BlockHash(), 3)
	require.NoError(t, c.Append(h3))
	require.Equal(t, 3, c.Len())

	require.NoError(t, c.Retract(h1.BlockHash()))
	require.Equal(t, 1, c.Len())
	require.Equal(t, h1.BlockHash(), c.Tip())
	require.False(t, c.Contains(h2.BlockHash()))
}

func TestHeadersChainRetractToBase(t *testing.T) {
	base := chainhash.Hash{0xff}
	c := NewHeadersChain(base)
	require.NoError(t, c.Append(header(base, 1)))
	require.NoError(t, c.Retract(base))
	require.Equal(t, 0, c.Len())
	require.Equal(t, base, c.Tip())
}

func TestHeadersChainLocatorIncludesBase(t *testing.T) {
	base := chainhash.Hash{0xff}
	c := NewHeadersChain(base)
	prev := base
	for i := byte(1); i <= 5; i++ {
		h := header(prev, i)
		require.NoError(t, c.Append(h))
		prev = h.BlockHash()
	}

	locator := c.Locator()
	require.Equal(t, c.Tip(), locator[0])
	require.Equal(t, base, locator[len(locator)-1])
}
