// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"fmt"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btclog"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/consensus"
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

// State is the sync client's high-level posture relative to its peers.
type State int

const (
	// Saturated means fewer than nearlySaturatedThreshold headers are
	// unstored: the node is effectively caught up.
	Saturated State = iota
	// Synchronizing means the headers chain is well ahead of storage
	// and the client is actively requesting and verifying blocks.
	Synchronizing
	// NearlySaturated means the client is verifying the last batch of
	// blocks needed to catch up to its headers chain.
	NearlySaturated
)

func (s State) String() string {
	switch s {
	case Synchronizing:
		return "synchronizing"
	case NearlySaturated:
		return "nearly-saturated"
	default:
		return "saturated"
	}
}

// nearlySaturatedThreshold is how few unstored headers remain before the
// client considers itself in the NearlySaturated state.
const nearlySaturatedThreshold = 32

// requestTimeout bounds how long a peer has to answer a requested hash
// before it times out back to scheduled.
const requestTimeout = 30 * time.Second

// Chain is the subset of blockchain.ChainStore the client needs beyond
// consensus.ChainContext: block insertion and header-origin queries.
type Chain interface {
	consensus.ChainContext
	Insert(block *wire.MsgBlock) error
	Canonize(hash chainhash.Hash) error
	HaveBlock(hash chainhash.Hash) bool
	BestHash() chainhash.Hash
	ParentOf(hash chainhash.Hash) (chainhash.Hash, bool)
}

// Client is the sync client core: it owns the hash queue chain, the
// headers chain, per-peer state, and the orphan pool, and drives all of
// them in response to peer messages and timer ticks.
type Client struct {
	chain  Chain
	params *chaincfg.Params

	hashes  *HashQueueChain
	headers *HeadersChain
	orphans *OrphanBlocksPool

	peers map[PeerID]*PeerState

	// pending holds blocks that have been requested/received but not
	// yet verified and stored, keyed by hash, for the reorg replay
	// path and for attributing a disconnect to the peer that supplied
	// a bad block.
	pending      map[chainhash.Hash]*wire.MsgBlock
	suppliedBy   map[chainhash.Hash]PeerID
	isRegtest    bool
}

// NewClient returns a client whose headers chain starts at the store's
// current best hash.
func NewClient(chain Chain, params *chaincfg.Params) *Client {
	best := chain.BestHash()
	return &Client{
		chain:      chain,
		params:     params,
		hashes:     NewHashQueueChain(),
		headers:    NewHeadersChain(best),
		orphans:    NewOrphanBlocksPool(),
		peers:      make(map[PeerID]*PeerState),
		pending:    make(map[chainhash.Hash]*wire.MsgBlock),
		suppliedBy: make(map[chainhash.Hash]PeerID),
		isRegtest:  params.Net == chaincfg.RegtestParams.Net,
	}
}

// PeerVerifyingCount reports how many blocks supplied by peer are still
// sitting in the verifying stage, used by the local-node façade to decide
// whether a getheaders response from that peer must wait behind them.
func (c *Client) PeerVerifyingCount(peer PeerID) int {
	n := 0
	for hash, by := range c.suppliedBy {
		if by == peer && c.hashes.Stage(hash) == StageVerifying {
			n++
		}
	}
	return n
}

// State reports the client's current posture.
func (c *Client) State() State {
	unstored := c.headers.Len() - c.hashes.Len(StageStored)
	switch {
	case unstored < nearlySaturatedThreshold && c.hashes.Len(StageVerifying) > 0:
		return NearlySaturated
	case unstored < nearlySaturatedThreshold:
		return Saturated
	default:
		return Synchronizing
	}
}

// NewPeer registers a newly connected peer.
func (c *Client) NewPeer(id PeerID) {
	c.peers[id] = NewPeerState(id)
}

// DonePeer forgets a disconnected peer, returning any hashes that were
// in flight to it to the scheduled FIFO so another peer can serve them.
func (c *Client) DonePeer(id PeerID) {
	p, ok := c.peers[id]
	if !ok {
		return
	}
	if n := len(p.inFlight); n > 0 {
		log.Debugf("peer %d disconnected with %d hashes in flight, rescheduling", id, n)
	}
	for hash := range p.inFlight {
		_ = c.hashes.Retreat(hash)
	}
	delete(c.peers, id)
}

// OnHeaders appends newly announced headers to the headers chain and
// schedules their hashes in the queue chain. Headers that don't extend
// the current tip are rejected outright; spec.md leaves branch handling
// to the reorg path once the corresponding blocks are requested.
func (c *Client) OnHeaders(peer PeerID, headers []wire.BlockHeader) error {
	for _, h := range headers {
		if err := c.headers.Append(h); err != nil {
			return err
		}
		hash := h.BlockHash()
		if c.chain.HaveBlock(hash) {
			continue
		}
		if err := c.hashes.Schedule(hash); err != nil {
			return err
		}
	}
	return nil
}

// OnInv drops hashes the client has already seen (known to a peer or
// already stored) and schedules the rest, returning the hashes that need
// a getdata.
func (c *Client) OnInv(peer PeerID, hashes []chainhash.Hash) []chainhash.Hash {
	p := c.peers[peer]
	var toFetch []chainhash.Hash
	for _, hash := range hashes {
		if p != nil {
			p.MarkKnown(hash)
		}
		if c.chain.HaveBlock(hash) || c.hashes.Stage(hash) != StageUnknown {
			continue
		}
		if err := c.hashes.Schedule(hash); err != nil {
			continue
		}
		toFetch = append(toFetch, hash)
	}
	return toFetch
}

// AssignNext picks the next scheduled hash (if any, and if the peer's
// window has room) and moves it to requested, returning the hash to
// getdata for.
func (c *Client) AssignNext(peer PeerID, now time.Time) (chainhash.Hash, bool) {
	p, ok := c.peers[peer]
	if !ok || !p.CanAcceptMore() {
		return chainhash.Hash{}, false
	}
	hash, ok := c.hashes.Front(StageScheduled)
	if !ok {
		return chainhash.Hash{}, false
	}
	deadline := now.Add(requestTimeout)
	if err := c.hashes.Advance(hash, StageRequested, now, deadline); err != nil {
		return chainhash.Hash{}, false
	}
	p.Assign(hash, deadline)
	return hash, true
}

// ExpireTimeouts walks every peer's in-flight window, returns expired
// hashes to scheduled, and reports which peers have now failed enough
// consecutive windows to be disconnected.
func (c *Client) ExpireTimeouts(now time.Time) []PeerID {
	var toDisconnect []PeerID
	for id, p := range c.peers {
		for _, hash := range p.ExpireTimeouts(now) {
			_ = c.hashes.Retreat(hash)
		}
		if p.ShouldDisconnect() {
			toDisconnect = append(toDisconnect, id)
		}
	}
	return toDisconnect
}

// OnBlock handles an arriving block: it attempts to chain the parent,
// holds the block as an orphan if the parent hasn't arrived, and flushes
// any orphans waiting on this block once it chains successfully.
func (c *Client) OnBlock(peer PeerID, block *wire.MsgBlock) error {
	hash := block.Header.BlockHash()
	if p, ok := c.peers[peer]; ok {
		p.Resolve(hash)
	}

	parent := block.Header.PrevBlock
	if !c.chain.HaveBlock(parent) && parent != (chainhash.Hash{}) {
		if err := c.orphans.Add(block); err != nil {
			return err
		}
		return nil
	}

	if err := c.chainBlock(peer, block); err != nil {
		return err
	}

	for _, child := range c.orphans.Flush(hash) {
		if err := c.chainBlock(peer, child); err != nil {
			return err
		}
	}
	return nil
}

// chainBlock advances hash through verifying to stored (or triggers a
// reorg replay if the block's origin is a side chain becoming canon),
// recording the supplying peer for attribution on a later failure.
func (c *Client) chainBlock(peer PeerID, block *wire.MsgBlock) error {
	hash := block.Header.BlockHash()
	now := time.Now()

	if c.hashes.Stage(hash) == StageRequested {
		if err := c.hashes.Advance(hash, StageVerifying, now, time.Time{}); err != nil {
			return err
		}
	}
	c.pending[hash] = block
	if _, ok := c.suppliedBy[hash]; !ok {
		c.suppliedBy[hash] = peer
	}

	origin, err := c.chain.BlockOriginOf(&block.Header)
	if err != nil {
		return err
	}

	if err := consensus.Verify(consensus.Full, block, c.chain, c.params); err != nil {
		return c.failVerification(hash, err)
	}

	if err := c.chain.Insert(block); err != nil {
		return err
	}

	switch origin.Kind {
	case blockchain.OriginSideChainBecomingCanon:
		// tip is now inserted (above); replayReorg canonizes the whole
		// fork, tip included, and handles the stage/pending bookkeeping
		// itself.
		return c.replayReorg(origin.Origin, hash)
	case blockchain.OriginCanonChain:
		if err := c.chain.Canonize(hash); err != nil {
			return err
		}
	}

	// Only a hash that went through the header-announced
	// scheduled/requested/verifying path is tracked by the queue chain;
	// a block pushed unsolicited (an inv-fetched block, or an orphan's
	// child flushed straight through) never entered it and has nothing
	// to advance.
	if c.hashes.Stage(hash) == StageVerifying {
		if err := c.hashes.Advance(hash, StageStored, time.Time{}, time.Time{}); err != nil {
			return err
		}
	}
	delete(c.pending, hash)
	delete(c.suppliedBy, hash)
	return nil
}

// failVerification wraps a verification error, naming the supplying peer so
// the caller can disconnect it, unless this is Regtest: local test chains
// don't get their only peer disconnected over a single bad block.
func (c *Client) failVerification(hash chainhash.Hash, err error) error {
	if !c.isRegtest {
		if by, ok := c.suppliedBy[hash]; ok {
			return fmt.Errorf("netsync: block %s failed verification, disconnect peer %d: %w", hash, by, err)
		}
	}
	return fmt.Errorf("netsync: block %s failed verification: %w", hash, err)
}

// replayReorg asks the store for a fork overlay rooted at origin and
// canonizes every block from origin up to and including tip against it,
// then switches the base store to the new fork. Every block in that
// ancestry was already verified (and, for tip, just inserted) by
// chainBlock before calling in here, either on this call or on an
// earlier one when it first arrived as a plain side-chain block, so this
// only replays the bookkeeping, not verification. On a failure from
// SwitchToFork the error is returned and the base store is not restored to
// its previous tip (see SwitchToFork).
func (c *Client) replayReorg(origin, tip chainhash.Hash) error {
	fork := c.chain.Fork(origin)

	chainUp := c.ancestryFrom(origin, tip)
	for _, hash := range chainUp {
		if err := fork.Canonize(hash); err != nil {
			return err
		}
	}

	if err := fork.SwitchToFork(); err != nil {
		return fmt.Errorf("netsync: reorg to %s failed: %w", tip, err)
	}
	for _, hash := range chainUp {
		if c.hashes.Stage(hash) == StageVerifying {
			_ = c.hashes.Advance(hash, StageStored, time.Time{}, time.Time{})
		}
		delete(c.pending, hash)
		delete(c.suppliedBy, hash)
	}
	return nil
}

// ancestryFrom walks the chain store's own parent links from tip back to
// (but excluding) origin, returning the hashes in forward
// (origin-to-tip) order. It must use the store's recorded parent links
// rather than the client's pending map: earlier fork blocks are already
// inserted and pruned from pending by the time a later sibling triggers
// a reorg, since each side-chain block is stored as soon as it arrives,
// well before any of them becomes heavy enough to trigger this replay.
func (c *Client) ancestryFrom(origin, tip chainhash.Hash) []chainhash.Hash {
	var reversed []chainhash.Hash
	hash := tip
	for hash != origin {
		reversed = append(reversed, hash)
		parent, ok := c.chain.ParentOf(hash)
		if !ok {
			break
		}
		hash = parent
	}
	out := make([]chainhash.Hash, len(reversed))
	for i, h := range reversed {
		out[len(reversed)-1-i] = h
	}
	return out
}
