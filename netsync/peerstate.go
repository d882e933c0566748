// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"
	"github.com/parityzec/zecnode/wire"
)

// maxKnownHashes bounds the per-peer known-hash filter: large enough to
// suppress re-announcement over a normal sync burst without growing
// unbounded for a long-lived connection.
const maxKnownHashes = 5000

// maxInFlightWindow is how many hashes may be assigned to a single peer
// at once before the client waits for some to resolve.
const maxInFlightWindow = 32

// maxConsecutiveFailedWindows is how many request windows in a row may
// time out before the peer is disconnected.
const maxConsecutiveFailedWindows = 3

// PeerID identifies a connected peer to the sync client; callers own the
// numbering scheme (usually a connection sequence number).
type PeerID uint64

// PeerState is the sync client's per-peer bookkeeping: what it has already
// announced to us (suppressing re-announcement), what we've currently
// asked it for, how fast it answers, and its behavioral track record.
type PeerState struct {
	id PeerID

	known *lru.Cache[chainhash.Hash]

	inFlight          map[chainhash.Hash]time.Time
	consecutiveFailed int

	bytesSinceReset int64
	windowStart     time.Time

	bloomFilter *wire.MsgFilterLoad
	feeFilter   int64 // minimum relay fee rate this peer asked to receive
}

// NewPeerState returns empty state for a newly connected peer.
func NewPeerState(id PeerID) *PeerState {
	return &PeerState{
		id:          id,
		known:       lru.NewCache[chainhash.Hash](maxKnownHashes),
		inFlight:    make(map[chainhash.Hash]time.Time),
		windowStart: time.Time{},
	}
}

// MarkKnown records that the peer has already announced or sent us hash,
// so the client won't re-request or re-announce it.
func (p *PeerState) MarkKnown(hash chainhash.Hash) {
	p.known.Add(hash)
}

// IsKnown reports whether the peer has already announced hash to us.
func (p *PeerState) IsKnown(hash chainhash.Hash) bool {
	return p.known.Contains(hash)
}

// CanAcceptMore reports whether the peer's in-flight window has room for
// another assignment.
func (p *PeerState) CanAcceptMore() bool {
	return len(p.inFlight) < maxInFlightWindow
}

// Assign records that hash was just requested from this peer with the
// given timeout.
func (p *PeerState) Assign(hash chainhash.Hash, deadline time.Time) {
	p.inFlight[hash] = deadline
}

// Resolve clears hash from the in-flight window, called once the hash
// arrives (successfully or via notfound) and resets the failure streak.
func (p *PeerState) Resolve(hash chainhash.Hash) {
	delete(p.inFlight, hash)
	p.consecutiveFailed = 0
}

// ExpireTimeouts drops every in-flight hash whose deadline has passed as
// of now, returning them so the caller can return each to the scheduled
// FIFO. If any expired, the peer's failure streak is incremented.
func (p *PeerState) ExpireTimeouts(now time.Time) []chainhash.Hash {
	var expired []chainhash.Hash
	for hash, deadline := range p.inFlight {
		if now.After(deadline) {
			expired = append(expired, hash)
			delete(p.inFlight, hash)
		}
	}
	if len(expired) > 0 {
		p.consecutiveFailed++
	}
	return expired
}

// ShouldDisconnect reports whether the peer has accumulated enough
// consecutive failed windows to warrant disconnection.
func (p *PeerState) ShouldDisconnect() bool {
	return p.consecutiveFailed >= maxConsecutiveFailedWindows
}

// RecordBytes feeds the speed meter: bytes received since the last
// ResetSpeed call.
func (p *PeerState) RecordBytes(n int64) {
	if p.windowStart.IsZero() {
		p.windowStart = time.Now()
	}
	p.bytesSinceReset += n
}

// SpeedBytesPerSec reports the peer's average receive rate over the
// current measurement window, used to rank sync-peer candidates.
func (p *PeerState) SpeedBytesPerSec(now time.Time) float64 {
	if p.windowStart.IsZero() {
		return 0
	}
	elapsed := now.Sub(p.windowStart).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(p.bytesSinceReset) / elapsed
}

// ResetSpeed starts a fresh measurement window, called periodically by
// the sync-peer eviction ticker.
func (p *PeerState) ResetSpeed() {
	p.bytesSinceReset = 0
	p.windowStart = time.Time{}
}

// SetBloomFilter installs or replaces the peer's bloom filter.
func (p *PeerState) SetBloomFilter(f *wire.MsgFilterLoad) { p.bloomFilter = f }

// ClearBloomFilter removes the peer's bloom filter, reverting to
// unfiltered relay.
func (p *PeerState) ClearBloomFilter() { p.bloomFilter = nil }

// SetFeeFilter records the minimum fee rate this peer wants relayed to it.
func (p *PeerState) SetFeeFilter(minFeeRate int64) { p.feeFilter = minFeeRate }

// AcceptsFeeRate reports whether a transaction at feeRate clears this
// peer's fee filter (a peer with no filter set accepts everything).
func (p *PeerState) AcceptsFeeRate(feeRate int64) bool {
	return feeRate >= p.feeFilter
}
