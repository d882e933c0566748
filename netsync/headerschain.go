// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
)

// HeadersChain stores known valid-looking headers in topological order
// above the current storage tip. It is the sync client's view of "what
// headers do we know about" independent of which have been fetched,
// verified, or stored — that bookkeeping lives in HashQueueChain.
type HeadersChain struct {
	base    chainhash.Hash // the storage tip this chain extends
	headers []wire.BlockHeader
	index   map[chainhash.Hash]int // hash -> position in headers
}

// NewHeadersChain returns a chain extending base, the current storage tip.
func NewHeadersChain(base chainhash.Hash) *HeadersChain {
	return &HeadersChain{base: base, index: make(map[chainhash.Hash]int)}
}

// Tip returns the hash of the last known header, or the base if the chain
// is empty.
func (c *HeadersChain) Tip() chainhash.Hash {
	if len(c.headers) == 0 {
		return c.base
	}
	return c.headers[len(c.headers)-1].BlockHash()
}

// Len returns the number of headers known above the base.
func (c *HeadersChain) Len() int {
	return len(c.headers)
}

// Append adds header to the chain. header.PrevBlock must equal the current
// tip.
func (c *HeadersChain) Append(header wire.BlockHeader) error {
	if header.PrevBlock != c.Tip() {
		return fmt.Errorf("netsync: header %s does not extend tip %s", header.BlockHash(), c.Tip())
	}
	hash := header.BlockHash()
	c.index[hash] = len(c.headers)
	c.headers = append(c.headers, header)
	return nil
}

// Retract drops every header from the current tip back down to (but
// excluding) fork point, used when a reorg invalidates headers that were
// never actually stored. If fork point equals the base, every header is
// dropped.
func (c *HeadersChain) Retract(forkPoint chainhash.Hash) error {
	if forkPoint == c.base {
		for _, h := range c.headers {
			delete(c.index, h.BlockHash())
		}
		c.headers = nil
		return nil
	}
	i, ok := c.index[forkPoint]
	if !ok {
		return fmt.Errorf("netsync: fork point %s not in headers chain", forkPoint)
	}
	for _, h := range c.headers[i+1:] {
		delete(c.index, h.BlockHash())
	}
	c.headers = c.headers[:i+1]
	return nil
}

// HeaderAt returns the header at the given height above base (1-indexed:
// height 1 is the first header above base), and whether it exists.
func (c *HeadersChain) HeaderAt(height int) (wire.BlockHeader, bool) {
	if height < 1 || height > len(c.headers) {
		return wire.BlockHeader{}, false
	}
	return c.headers[height-1], true
}

// Contains reports whether hash is a known header (not the base).
func (c *HeadersChain) Contains(hash chainhash.Hash) bool {
	_, ok := c.index[hash]
	return ok
}

// Locator builds a block-locator hash list for a getheaders request: the
// ten most recent headers one height apart (tip, tip-1, ..., tip-9), then
// headers whose spacing doubles after each further entry (tip-11, tip-15,
// tip-23, ...), and finally the base, so a peer anywhere on a
// diverging chain can find the most recent common ancestor in O(log n)
// round trips.
func (c *HeadersChain) Locator() []chainhash.Hash {
	height := len(c.headers)
	var hashes []chainhash.Hash

	step := 1
	for height > 0 {
		h, _ := c.HeaderAt(height)
		hashes = append(hashes, h.BlockHash())
		if len(hashes) >= 10 {
			step *= 2
		}
		height -= step
	}
	hashes = append(hashes, c.base)
	return hashes
}
