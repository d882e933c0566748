// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package netsync

import (
	"errors"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
)

// maxOrphanBlocks is the hard cap on blocks held in the orphan pool at
// once. Past this, the pool refuses new orphans rather than grow
// unbounded under a misbehaving or malicious peer.
const maxOrphanBlocks = 1024

// ErrTooManyOrphanBlocks is returned by Add once the pool is at capacity.
var ErrTooManyOrphanBlocks = errors.New("netsync: too many orphan blocks")

// OrphanBlocksPool holds blocks whose parent hasn't arrived yet, indexed
// both by their own hash and by the parent hash they're waiting on, so
// that when the parent finally arrives every waiting child can be found
// and flushed in one step.
type OrphanBlocksPool struct {
	byHash   map[chainhash.Hash]*wire.MsgBlock
	byParent map[chainhash.Hash][]chainhash.Hash
}

// NewOrphanBlocksPool returns an empty pool.
func NewOrphanBlocksPool() *OrphanBlocksPool {
	return &OrphanBlocksPool{
		byHash:   make(map[chainhash.Hash]*wire.MsgBlock),
		byParent: make(map[chainhash.Hash][]chainhash.Hash),
	}
}

// Len reports how many orphans the pool currently holds.
func (p *OrphanBlocksPool) Len() int {
	return len(p.byHash)
}

// Contains reports whether hash is already held as an orphan.
func (p *OrphanBlocksPool) Contains(hash chainhash.Hash) bool {
	_, ok := p.byHash[hash]
	return ok
}

// Add inserts block as an orphan waiting on its PrevBlock. Returns
// ErrTooManyOrphanBlocks if the pool is already at its cap.
func (p *OrphanBlocksPool) Add(block *wire.MsgBlock) error {
	if len(p.byHash) >= maxOrphanBlocks {
		return ErrTooManyOrphanBlocks
	}
	hash := block.Header.BlockHash()
	if _, ok := p.byHash[hash]; ok {
		return nil
	}
	parent := block.Header.PrevBlock
	p.byHash[hash] = block
	p.byParent[parent] = append(p.byParent[parent], hash)
	return nil
}

// Children returns every orphan directly waiting on parent, in the order
// they arrived.
func (p *OrphanBlocksPool) Children(parent chainhash.Hash) []*wire.MsgBlock {
	var out []*wire.MsgBlock
	for _, hash := range p.byParent[parent] {
		if b, ok := p.byHash[hash]; ok {
			out = append(out, b)
		}
	}
	return out
}

// Remove drops an orphan (its parent having finally arrived and been
// chained, or the orphan having been discarded as unreachable).
func (p *OrphanBlocksPool) Remove(hash chainhash.Hash) {
	block, ok := p.byHash[hash]
	if !ok {
		return
	}
	delete(p.byHash, hash)
	parent := block.Header.PrevBlock
	siblings := p.byParent[parent]
	for i, h := range siblings {
		if h == hash {
			p.byParent[parent] = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	if len(p.byParent[parent]) == 0 {
		delete(p.byParent, parent)
	}
}

// Flush removes and returns, in topological order, every orphan reachable
// from root by following parent-to-child links — the full run of orphans
// that can now be chained once root itself has been accepted.
func (p *OrphanBlocksPool) Flush(root chainhash.Hash) []*wire.MsgBlock {
	var flushed []*wire.MsgBlock
	frontier := []chainhash.Hash{root}
	for len(frontier) > 0 {
		parent := frontier[0]
		frontier = frontier[1:]
		for _, child := range p.Children(parent) {
			hash := child.Header.BlockHash()
			flushed = append(flushed, child)
			p.Remove(hash)
			frontier = append(frontier, hash)
		}
	}
	return flushed
}
