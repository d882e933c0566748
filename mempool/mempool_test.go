// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	txs    map[chainhash.Hash]*wire.MsgTx
	metas  map[chainhash.Hash]*blockchain.TxMeta
	height int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txs:   make(map[chainhash.Hash]*wire.MsgTx),
		metas: make(map[chainhash.Hash]*blockchain.TxMeta),
	}
}

func (f *fakeStore) Transaction(hash chainhash.Hash) (*wire.MsgTx, error) {
	if tx, ok := f.txs[hash]; ok {
		return tx, nil
	}
	return nil, blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "not found"}
}

func (f *fakeStore) TxMeta(hash chainhash.Hash) (*blockchain.TxMeta, error) {
	return f.metas[hash], nil
}

func (f *fakeStore) HasNullifier(blockchain.Epoch, chainhash.Hash) bool { return false }

func (f *fakeStore) Params() *chaincfg.Params { return &chaincfg.RegtestParams }

func (f *fakeStore) BestHeight() int32 { return f.height }

func fundingTx(value int64) (*wire.MsgTx, chainhash.Hash) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{}})
	return tx, tx.TxHash()
}

func newTestPool(store *fakeStore) *TxPool {
	return New(Config{
		ChainParams: &chaincfg.RegtestParams,
		Store:       store,
		BestHeight:  func() int32 { return store.height },
	})
}

func TestMaybeAcceptTransactionFilesOrphanOnMissingParent(t *testing.T) {
	store := newFakeStore()
	store.height = 500
	pool := newTestPool(store)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{7}, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 100})

	result, err := pool.MaybeAcceptTransaction(tx, 0)
	require.NoError(t, err)
	require.Len(t, result.MissingParents, 1)
	require.Equal(t, 0, pool.Count())
}

func TestMaybeAcceptTransactionComputesFeeRate(t *testing.T) {
	store := newFakeStore()
	store.height = 500
	prev, prevHash := fundingTx(1000000)
	prev2, prevHash2 := fundingTx(2000000)
	store.txs[prevHash] = prev
	store.txs[prevHash2] = prev2
	store.metas[prevHash] = &blockchain.TxMeta{Height: 100, SpentBits: []bool{false}}
	store.metas[prevHash2] = &blockchain.TxMeta{Height: 100, SpentBits: []bool{false}}

	pool := newTestPool(store)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash2, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 2500000})

	result, err := pool.MaybeAcceptTransaction(tx, 0)
	require.NoError(t, err)
	require.Equal(t, int64(500000), result.Fee)
	require.Equal(t, int64(101), result.Size)
	require.Equal(t, int64(4950), result.FeeRate)
	require.Equal(t, 1, pool.Count())
	require.True(t, pool.HaveTransaction(tx.TxHash()))
}

func TestCheckDoubleSpendDetectsConflict(t *testing.T) {
	store := newFakeStore()
	prev, prevHash := fundingTx(1000)
	store.txs[prevHash] = prev
	store.metas[prevHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}
	pool := newTestPool(store)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})
	_, err := pool.MaybeAcceptTransaction(tx, 0)
	require.NoError(t, err)

	conflicting := wire.NewMsgTx(1)
	conflicting.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	conflicting.AddTxOut(&wire.TxOut{Value: 800})

	result := pool.CheckDoubleSpend(conflicting)
	require.Equal(t, DoubleSpend, result.Kind)
	require.Equal(t, []chainhash.Hash{tx.TxHash()}, result.Conflicts)
}

func TestRemoveTransactionRemovesDescendants(t *testing.T) {
	store := newFakeStore()
	prev, prevHash := fundingTx(1000)
	store.txs[prevHash] = prev
	store.metas[prevHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}
	pool := newTestPool(store)

	parent := wire.NewMsgTx(1)
	parent.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	parent.AddTxOut(&wire.TxOut{Value: 900})
	_, err := pool.MaybeAcceptTransaction(parent, 0)
	require.NoError(t, err)
	parentHash := parent.TxHash()

	child := wire.NewMsgTx(1)
	child.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: parentHash, Index: 0}})
	child.AddTxOut(&wire.TxOut{Value: 800})
	_, err = pool.MaybeAcceptTransaction(child, 0)
	require.NoError(t, err)
	require.Equal(t, 2, pool.Count())

	pool.RemoveTransaction(parentHash, true)
	require.Equal(t, 0, pool.Count())
}

func TestTxDescsOrderingByFeeRate(t *testing.T) {
	store := newFakeStore()
	pool := newTestPool(store)

	low, lowHash := fundingTx(1000)
	high, highHash := fundingTx(1000)
	store.txs[lowHash] = low
	store.txs[highHash] = high
	store.metas[lowHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}
	store.metas[highHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}

	lowFeeTx := wire.NewMsgTx(1)
	lowFeeTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: lowHash, Index: 0}})
	lowFeeTx.AddTxOut(&wire.TxOut{Value: 990})
	_, err := pool.MaybeAcceptTransaction(lowFeeTx, 0)
	require.NoError(t, err)

	highFeeTx := wire.NewMsgTx(1)
	highFeeTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: highHash, Index: 0}})
	highFeeTx.AddTxOut(&wire.TxOut{Value: 500})
	_, err = pool.MaybeAcceptTransaction(highFeeTx, 0)
	require.NoError(t, err)

	descs := pool.TxDescs(ByFeeRate)
	require.Len(t, descs, 2)
	require.Equal(t, highFeeTx.TxHash(), descs[0].Tx.MsgTx().TxHash())
}
