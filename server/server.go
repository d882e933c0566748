// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package server is the local node façade: it translates inbound peer
// messages into calls on the sync chain/client core (netsync) and the
// mempool, and turns their outcomes into outbound ServerTasks a peer
// connection layer can drain and send.
package server

import (
	"fmt"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/parityzec/zecnode/mempool"
	"github.com/parityzec/zecnode/netsync"
	"github.com/parityzec/zecnode/wire"
)

// log is a logger that is initialized with no output filters. This means
// the package will not perform any logging by default until the caller
// requests it.
var log btclog.Logger

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	DisableLog()
}

// DisableLog disables all library log output. Logging output is disabled
// by default until either UseLogger is called.
func DisableLog() {
	log = btclog.Disabled
}

// TaskKind identifies what an outbound ServerTask asks the peer
// connection layer to do.
type TaskKind int

const (
	TaskGetData TaskKind = iota
	TaskGetBlocks
	TaskGetHeaders
	TaskMempool
)

// ServerTask is an outbound unit of work the façade hands to whatever
// owns the actual peer connections. This package never touches a
// network socket itself — per spec.md, transport is out of scope.
type ServerTask struct {
	Kind      TaskKind
	Peer      netsync.PeerID
	Invs      []*wire.InvVect
	Locator   []chainhash.Hash
	HashStop  chainhash.Hash
	RequestID uint32
}

// TaskSink receives outbound ServerTasks, in order, for a connection
// layer to act on.
type TaskSink interface {
	Execute(task ServerTask)
}

// Server is the local node façade. It owns no network connections; it
// is driven by calls from a peer connection layer (On* methods) and
// drives that layer back via a TaskSink.
type Server struct {
	client *netsync.Client
	pool   *mempool.TxPool
	sink   TaskSink

	barrier *pendingHeadersBarrier

	mu      sync.Mutex
	pending map[chainhash.Hash]*acceptWaiter
}

// New returns a façade wired to client, pool, and a sink for outbound
// tasks.
func New(client *netsync.Client, pool *mempool.TxPool, sink TaskSink) *Server {
	return &Server{
		client:  client,
		pool:    pool,
		sink:    sink,
		barrier: newPendingHeadersBarrier(),
		pending: make(map[chainhash.Hash]*acceptWaiter),
	}
}

// OnConnect registers a newly connected peer with the sync client.
func (s *Server) OnConnect(peer netsync.PeerID) {
	s.client.NewPeer(peer)
}

// OnDisconnect forgets a peer, releasing any barrier entries and
// returning its in-flight hashes to the scheduled FIFO.
func (s *Server) OnDisconnect(peer netsync.PeerID) {
	s.client.DonePeer(peer)
	s.barrier.forget(peer)
}

// OnHeaders feeds newly announced headers into the sync client.
func (s *Server) OnHeaders(peer netsync.PeerID, headers []wire.BlockHeader) error {
	return s.client.OnHeaders(peer, headers)
}

// OnInv feeds an inventory announcement into the sync client and emits a
// getdata task for whatever it decides to fetch.
func (s *Server) OnInv(peer netsync.PeerID, hashes []chainhash.Hash) {
	toFetch := s.client.OnInv(peer, hashes)
	if len(toFetch) == 0 {
		return
	}
	invs := make([]*wire.InvVect, len(toFetch))
	for i, h := range toFetch {
		invs[i] = &wire.InvVect{Type: wire.InvTypeBlock, Hash: h}
	}
	s.sink.Execute(ServerTask{Kind: TaskGetData, Peer: peer, Invs: invs})
}

// OnBlock feeds an arriving block into the sync client, then releases any
// getheaders tasks the barrier was holding for this peer if it has
// finished verifying everything it supplied.
func (s *Server) OnBlock(peer netsync.PeerID, block *wire.MsgBlock) error {
	if err := s.client.OnBlock(peer, block); err != nil {
		return err
	}
	if s.client.PeerVerifyingCount(peer) == 0 {
		s.barrier.release(peer, s.sink)
	}
	return nil
}

// OnGetData emits a getdata task verbatim; this façade does not resolve
// the requested hashes itself, that's the connection layer's job against
// the chain store.
func (s *Server) OnGetData(peer netsync.PeerID, invs []*wire.InvVect) {
	s.sink.Execute(ServerTask{Kind: TaskGetData, Peer: peer, Invs: invs})
}

// OnGetBlocks emits a getblocks task verbatim.
func (s *Server) OnGetBlocks(peer netsync.PeerID, locator []chainhash.Hash, hashStop chainhash.Hash) {
	s.sink.Execute(ServerTask{Kind: TaskGetBlocks, Peer: peer, Locator: locator, HashStop: hashStop})
}

// OnGetHeaders enqueues a getheaders task, delaying it behind a
// completion barrier if peer recently delivered blocks that are still
// verifying, so responses to that peer remain causally ordered: it won't
// be told about headers for blocks whose acceptance result it hasn't
// seen yet.
func (s *Server) OnGetHeaders(peer netsync.PeerID, locator []chainhash.Hash, hashStop chainhash.Hash, requestID uint32) {
	task := ServerTask{Kind: TaskGetHeaders, Peer: peer, Locator: locator, HashStop: hashStop, RequestID: requestID}
	if s.client.PeerVerifyingCount(peer) > 0 {
		s.barrier.hold(peer, task)
		return
	}
	s.sink.Execute(task)
}

// OnMempool emits a mempool task verbatim.
func (s *Server) OnMempool(peer netsync.PeerID) {
	s.sink.Execute(ServerTask{Kind: TaskMempool, Peer: peer})
}

// acceptWaiter is the completion signal AcceptTransaction blocks on,
// replacing the condition-variable-guarded result cell of a threaded
// implementation with a single-value channel.
type acceptWaiter struct {
	done chan struct{}
	err  error
}

// AcceptTransaction runs tx through the mempool synchronously: the
// caller blocks until the result is known, then (on success) the
// transaction is handed to relayFn to announce to peers whose filters
// accept it. Concurrent callers accepting the same transaction hash
// share one waiter.
func (s *Server) AcceptTransaction(tx *wire.MsgTx, relayFn func(*wire.MsgTx, *mempool.AcceptResult)) error {
	hash := tx.TxHash()

	s.mu.Lock()
	if w, ok := s.pending[hash]; ok {
		s.mu.Unlock()
		<-w.done
		return w.err
	}
	w := &acceptWaiter{done: make(chan struct{})}
	s.pending[hash] = w
	s.mu.Unlock()

	result, err := s.pool.MaybeAcceptTransaction(tx, 0)
	w.err = err

	s.mu.Lock()
	delete(s.pending, hash)
	s.mu.Unlock()
	close(w.done)

	if err != nil {
		log.Debugf("transaction %s rejected: %v", hash, err)
		return err
	}
	if len(result.MissingParents) > 0 {
		return fmt.Errorf("server: transaction %s has missing parents, held as orphan", hash)
	}
	if relayFn != nil {
		relayFn(tx, result)
	}
	return nil
}
