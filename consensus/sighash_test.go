// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/parityzec/zecnode/wire"
)

func sampleSigningTx() *wire.MsgTx {
	tx := wire.NewMsgTx(4)
	tx.Overwintered = true
	tx.VersionGroupID = wire.SaplingVersionGroupID
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}, Sequence: 0xffffffff})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 1}, Sequence: 0xffffffff})
	tx.AddTxOut(&wire.TxOut{Value: 50000, PkScript: []byte{0x76, 0xa9}})
	return tx
}

func TestSignatureDigestWarmCacheMatchesFreshCache(t *testing.T) {
	tx := sampleSigningTx()
	prevScript := []byte{0x76, 0xa9, 0x14}

	warm := NewSighashCache(tx)
	// Populate every cache entry via input 0 first.
	_ = warm.SignatureDigest(0, SigHashAll, 0x76b809bb, prevScript, 1000)
	warmDigest := warm.SignatureDigest(1, SigHashAll, 0x76b809bb, prevScript, 2000)

	fresh := NewSighashCache(tx)
	freshDigest := fresh.SignatureDigest(1, SigHashAll, 0x76b809bb, prevScript, 2000)

	require.Equal(t, freshDigest, warmDigest)
}

func TestSignatureDigestDiffersByInput(t *testing.T) {
	tx := sampleSigningTx()
	cache := NewSighashCache(tx)
	prevScript := []byte{0x76, 0xa9, 0x14}

	d0 := cache.SignatureDigest(0, SigHashAll, 0x76b809bb, prevScript, 1000)
	d1 := cache.SignatureDigest(1, SigHashAll, 0x76b809bb, prevScript, 1000)
	require.NotEqual(t, d0, d1)
}

func TestSignatureDigestDiffersByHashType(t *testing.T) {
	tx := sampleSigningTx()
	cache := NewSighashCache(tx)
	prevScript := []byte{0x76, 0xa9, 0x14}

	all := cache.SignatureDigest(0, SigHashAll, 0x76b809bb, prevScript, 1000)
	none := cache.SignatureDigest(0, SigHashNone, 0x76b809bb, prevScript, 1000)
	require.NotEqual(t, all, none)
}

func TestSignatureDigestDiffersByBranch(t *testing.T) {
	tx := sampleSigningTx()
	cache := NewSighashCache(tx)
	prevScript := []byte{0x76, 0xa9, 0x14}

	sapling := cache.SignatureDigest(0, SigHashAll, 0x76b809bb, prevScript, 1000)
	overwinter := cache.SignatureDigest(0, SigHashAll, 0x5ba81b19, prevScript, 1000)
	require.NotEqual(t, sapling, overwinter)
}

func TestLegacySproutDigestIsDeterministic(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0}, Sequence: 0xffffffff})
	tx.AddTxOut(&wire.TxOut{Value: 91234, PkScript: []byte{
		0x76, 0xa9, 0x14, 0x9a, 0x82, 0x3b, 0x69, 0x8f, 0x77, 0x8e, 0xce, 0x90, 0xb0, 0x94,
		0xdc, 0x3f, 0x12, 0xa8, 0x1f, 0x5e, 0x3c, 0x33, 0x45, 0x88, 0xac,
	}})
	prevScript := []byte{
		0x76, 0xa9, 0x14, 0xdf, 0x3b, 0xd3, 0x01, 0x60, 0xe6, 0xc6, 0x14, 0x5b, 0xaa, 0xf2,
		0xc8, 0x8a, 0x88, 0x44, 0xc1, 0x3a, 0x00, 0xd1, 0xd5, 0x88, 0xac,
	}

	cache := NewSighashCache(tx)
	a := cache.SignatureDigest(0, SigHashAll, 0, prevScript, 0)
	b := cache.SignatureDigest(0, SigHashAll, 0, prevScript, 0)
	require.Equal(t, a, b)
}
