// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/parityzec/zecnode/wire"
)

func sampleTx(seed byte) *wire.Tx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: uint32(seed)}})
	tx.AddTxOut(&wire.TxOut{Value: int64(seed) * 1000, PkScript: []byte{seed}})
	return wire.NewTx(tx)
}

func TestCalcMerkleRootSingleTx(t *testing.T) {
	tx := sampleTx(1)
	root := CalcMerkleRoot([]*wire.Tx{tx})
	require.Equal(t, *tx.Hash(), root)
}

func TestCalcMerkleRootMatchesBuildMerkleTreeStore(t *testing.T) {
	txs := []*wire.Tx{sampleTx(1), sampleTx(2), sampleTx(3)}
	root := CalcMerkleRoot(txs)
	tree := BuildMerkleTreeStore(txs)
	require.Equal(t, *tree[len(tree)-1], root)
}

func TestCalcMerkleRootEvenOdd(t *testing.T) {
	even := []*wire.Tx{sampleTx(1), sampleTx(2)}
	odd := []*wire.Tx{sampleTx(1), sampleTx(2), sampleTx(3)}
	require.NotEqual(t, CalcMerkleRoot(even), CalcMerkleRoot(odd))
}
