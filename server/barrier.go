// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package server

import (
	"sync"

	"github.com/parityzec/zecnode/netsync"
)

// pendingHeadersBarrier holds getheaders tasks for peers whose
// recently-delivered blocks are still verifying, so a peer never
// receives a headers response that implicitly reveals blocks it just
// sent us are about to be rejected before we've told it so. Grounded on
// local_node.rs's on_getheaders, which defers the server task behind a
// future resolved by after_peer_nearly_blocks_verified; this is that
// future reimplemented as a per-peer FIFO released by the caller once
// the peer's verifying count reaches zero.
type pendingHeadersBarrier struct {
	mu      sync.Mutex
	pending map[netsync.PeerID][]ServerTask
}

func newPendingHeadersBarrier() *pendingHeadersBarrier {
	return &pendingHeadersBarrier{pending: make(map[netsync.PeerID][]ServerTask)}
}

// hold enqueues task behind peer's barrier.
func (b *pendingHeadersBarrier) hold(peer netsync.PeerID, task ServerTask) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending[peer] = append(b.pending[peer], task)
}

// release drains every task held for peer, in order, onto sink. Callers
// must only call this once they've confirmed the peer has nothing left
// verifying.
func (b *pendingHeadersBarrier) release(peer netsync.PeerID, sink TaskSink) {
	b.mu.Lock()
	tasks := b.pending[peer]
	delete(b.pending, peer)
	b.mu.Unlock()

	for _, task := range tasks {
		sink.Execute(task)
	}
}

// forget drops any held tasks for a peer that disconnected before they
// were released.
func (b *pendingHeadersBarrier) forget(peer netsync.PeerID) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.pending, peer)
}
