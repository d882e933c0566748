// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/database"
	_ "github.com/btcsuite/btcd/database/ffldb"
	btcdwire "github.com/btcsuite/btcd/wire"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/mempool"
	"github.com/parityzec/zecnode/netsync"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

func newTestChain(t *testing.T) *blockchain.ChainStore {
	t.Helper()
	dbPath := t.TempDir()
	db, err := database.Create("ffldb", dbPath, btcdwire.MainNet)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	cs, err := blockchain.New(db, &chaincfg.RegtestParams)
	require.NoError(t, err)
	return cs
}

func newTestServer(t *testing.T) (*Server, *recordingSink) {
	chain := newTestChain(t)
	client := netsync.NewClient(chain, &chaincfg.RegtestParams)
	pool := mempool.New(mempool.Config{
		ChainParams: &chaincfg.RegtestParams,
		Store:       chain,
		BestHeight:  func() int32 { return chain.BestHeight() },
	})
	sink := &recordingSink{}
	return New(client, pool, sink), sink
}

// canonizeSpendableOutput directly canonizes a one-transaction block holding
// a spendable output, bypassing the consensus verifier entirely: these
// tests only need a real, mature UTXO the pool's prevout resolution can
// find, not a block that would pass full acceptance.
func canonizeSpendableOutput(t *testing.T, chain *blockchain.ChainStore, value int64) chainhash.Hash {
	t.Helper()
	funding := wire.NewMsgTx(1)
	funding.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0x01}, Index: 0}})
	funding.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{}})

	block := &wire.MsgBlock{Header: wire.BlockHeader{
		Version:   4,
		PrevBlock: chain.BestHash(),
		Timestamp: time.Now(),
		Bits:      0x200f0f0f,
		Solution:  make([]byte, wire.EquihashSolutionSize),
	}}
	block.AddTransaction(funding)

	require.NoError(t, chain.Insert(block))
	require.NoError(t, chain.Canonize(block.BlockHash()))
	return funding.TxHash()
}

func spendTx(source chainhash.Hash, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: source, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{}})
	return tx
}

func TestOnGetHeadersPassesThroughWithNothingVerifying(t *testing.T) {
	s, sink := newTestServer(t)
	peer := netsync.PeerID(1)
	s.OnConnect(peer)

	s.OnGetHeaders(peer, nil, chainhash.Hash{}, 7)

	require.Len(t, sink.executed, 1)
	require.Equal(t, TaskGetHeaders, sink.executed[0].Kind)
	require.Equal(t, uint32(7), sink.executed[0].RequestID)
}

func TestOnDisconnectForgetsBarrier(t *testing.T) {
	s, sink := newTestServer(t)
	peer := netsync.PeerID(1)
	s.OnConnect(peer)
	s.barrier.hold(peer, ServerTask{Kind: TaskGetHeaders, RequestID: 1})

	s.OnDisconnect(peer)

	s.barrier.release(peer, sink)
	require.Empty(t, sink.executed)
}

func TestAcceptTransactionRelaysOnSuccess(t *testing.T) {
	chain := newTestChain(t)
	client := netsync.NewClient(chain, &chaincfg.RegtestParams)
	pool := mempool.New(mempool.Config{
		ChainParams: &chaincfg.RegtestParams,
		Store:       chain,
		BestHeight:  func() int32 { return chain.BestHeight() },
	})
	s := New(client, pool, &recordingSink{})

	source := canonizeSpendableOutput(t, chain, 1000)
	tx := spendTx(source, 900)

	var relayed *wire.MsgTx
	err := s.AcceptTransaction(tx, func(t *wire.MsgTx, _ *mempool.AcceptResult) {
		relayed = t
	})

	require.NoError(t, err)
	require.NotNil(t, relayed)
	require.Equal(t, tx.TxHash(), relayed.TxHash())
}

func TestAcceptTransactionReportsMissingParents(t *testing.T) {
	s, _ := newTestServer(t)

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{0xaa}, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{}})

	relayCalled := false
	err := s.AcceptTransaction(tx, func(*wire.MsgTx, *mempool.AcceptResult) {
		relayCalled = true
	})

	require.Error(t, err)
	require.False(t, relayCalled)
}

func TestAcceptTransactionConcurrentCallersShareOneResult(t *testing.T) {
	chain := newTestChain(t)
	client := netsync.NewClient(chain, &chaincfg.RegtestParams)
	pool := mempool.New(mempool.Config{
		ChainParams: &chaincfg.RegtestParams,
		Store:       chain,
		BestHeight:  func() int32 { return chain.BestHeight() },
	})
	s := New(client, pool, &recordingSink{})

	source := canonizeSpendableOutput(t, chain, 2000)
	tx := spendTx(source, 1900)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var relayCount int
	errs := make([]error, 8)
	start := make(chan struct{})

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = s.AcceptTransaction(tx, func(*wire.MsgTx, *mempool.AcceptResult) {
				mu.Lock()
				relayCount++
				mu.Unlock()
			})
		}(i)
	}
	close(start)
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, relayCount, 1)
}
