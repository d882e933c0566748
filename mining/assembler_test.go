// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mining

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/mempool"
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
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{}})
	return tx, tx.TxHash()
}

func newTestPool(store *fakeStore) *mempool.TxPool {
	return mempool.New(mempool.Config{
		ChainParams: &chaincfg.RegtestParams,
		Store:       store,
		BestHeight:  func() int32 { return store.height },
	})
}

func testAssemblerConfig(pool *mempool.TxPool) AssemblerConfig {
	return AssemblerConfig{
		Pool:           pool,
		Params:         &chaincfg.RegtestParams,
		Ordering:       mempool.ByFeeRate,
		ParentSapling:  blockchain.NewCommitmentTree(chaincfg.RegtestParams.SaplingTreeHeight),
		MaxBlockBytes:  2000000,
		BytesBuffer:    1000,
		MaxBlockSigOps: 20000,
		SigOpsBuffer:   100,
		FinishLimit:    3,
	}
}

func TestAssembleIncludesMempoolTransactionAndPaysFees(t *testing.T) {
	store := newFakeStore()
	store.height = 500
	prev, prevHash := fundingTx(1000)
	store.txs[prevHash] = prev
	store.metas[prevHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}
	pool := newTestPool(store)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})
	_, err := pool.MaybeAcceptTransaction(tx, 0)
	require.NoError(t, err)

	tmpl, err := Assemble(testAssemblerConfig(pool), 501, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Len(t, tmpl.Transactions, 2)
	require.Equal(t, tx.TxHash(), tmpl.Transactions[1].TxHash())
	require.Equal(t, int64(100), tmpl.Fees)
	require.Empty(t, tmpl.Ignored)

	coinbase := tmpl.Transactions[0]
	require.Len(t, coinbase.TxIn, 1)
	require.Equal(t, uint32(0xffffffff), coinbase.TxIn[0].PreviousOutPoint.Index)

	subsidy := chaincfg.RegtestParams.CalcBlockSubsidy(501)
	wantReward := subsidy + tmpl.Fees
	if _, amount, ok := chaincfg.RegtestParams.FounderRewardScript(501); ok {
		wantReward -= amount
		require.Len(t, coinbase.TxOut, 2)
	} else {
		require.Len(t, coinbase.TxOut, 1)
	}
	require.Equal(t, wantReward, coinbase.TxOut[len(coinbase.TxOut)-1].Value)
}

func TestAssembleSkipsNonFinalTransaction(t *testing.T) {
	store := newFakeStore()
	store.height = 500
	prev, prevHash := fundingTx(1000)
	store.txs[prevHash] = prev
	store.metas[prevHash] = &blockchain.TxMeta{Height: 0, SpentBits: []bool{false}}
	pool := newTestPool(store)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0},
		Sequence:         0, // not max, so lock-time is enforced
	})
	tx.AddTxOut(&wire.TxOut{Value: 900})
	tx.LockTime = 4_000_000_000 // far future unix timestamp
	_, err := pool.MaybeAcceptTransaction(tx, 0)
	require.NoError(t, err)

	tmpl, err := Assemble(testAssemblerConfig(pool), 501, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Len(t, tmpl.Transactions, 1, "only the coinbase should be included")
	require.Equal(t, int64(0), tmpl.Fees)
}

func TestAssembleIgnoresDescendantOfIgnoredAncestor(t *testing.T) {
	store := newFakeStore()
	store.height = 500
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

	cfg := testAssemblerConfig(pool)
	cfg.MaxBlockBytes = 1 // tiny budget: even the parent can't fit, so it's ignored
	cfg.BytesBuffer = 0
	cfg.FinishLimit = 5 // high enough that the parent's rejection is a plain Ignore, not a hard stop

	tmpl, err := Assemble(cfg, 501, time.Unix(1700000000, 0))
	require.NoError(t, err)
	require.Len(t, tmpl.Transactions, 1, "only the coinbase should be included")
	require.Contains(t, tmpl.Ignored, parentHash)
	require.Contains(t, tmpl.Ignored, child.TxHash())
}
