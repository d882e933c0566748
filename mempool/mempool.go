// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mempool maintains the set of unconfirmed transactions a node has
// accepted, in fee/ancestor order, available to a block assembler and to
// relay.
package mempool

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/consensus"
	"github.com/parityzec/zecnode/wire"
)

// orphanTx is a transaction the pool has seen but cannot yet place, because
// one or more of the outputs it spends are themselves missing.
type orphanTx struct {
	tx         *wire.Tx
	tag        Tag
	expiration time.Time
}

const (
	orphanTTL               = 15 * time.Minute
	orphanExpireScanInterval = 5 * time.Minute
	maxOrphans               = 100
)

// TxPool holds unconfirmed transactions, keyed by hash, along with the
// outpoint index used for double-spend detection and the orphan pool for
// transactions whose parents haven't arrived yet. Safe for concurrent use.
type TxPool struct {
	mtx sync.RWMutex
	cfg Config

	pool      map[chainhash.Hash]*TxDesc
	poolTxs   map[chainhash.Hash]*wire.MsgTx
	outpoints map[wire.OutPoint]chainhash.Hash

	orphans       map[chainhash.Hash]*orphanTx
	orphansByPrev map[wire.OutPoint]map[chainhash.Hash]struct{}

	lastUpdated    time.Time
	nextExpireScan time.Time
}

// New returns an empty pool configured against cfg.
func New(cfg Config) *TxPool {
	return &TxPool{
		cfg:            cfg,
		pool:           make(map[chainhash.Hash]*TxDesc),
		poolTxs:        make(map[chainhash.Hash]*wire.MsgTx),
		outpoints:      make(map[wire.OutPoint]chainhash.Hash),
		orphans:        make(map[chainhash.Hash]*orphanTx),
		orphansByPrev:  make(map[wire.OutPoint]map[chainhash.Hash]struct{}),
		nextExpireScan: time.Now().Add(orphanExpireScanInterval),
	}
}

// Count returns the number of transactions currently accepted into the pool.
func (mp *TxPool) Count() int {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return len(mp.pool)
}

// HaveTransaction reports whether hash is already accepted into the pool.
func (mp *TxPool) HaveTransaction(hash chainhash.Hash) bool {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	_, ok := mp.pool[hash]
	return ok
}

// CheckSpend returns the pooled transaction that currently spends op, or
// nil if no pooled transaction spends it.
func (mp *TxPool) CheckSpend(op wire.OutPoint) *wire.Tx {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	hash, ok := mp.outpoints[op]
	if !ok {
		return nil
	}
	return mp.pool[hash].Tx
}

// CheckDoubleSpend classifies tx against everything currently in the pool:
// NoDoubleSpend if none of its inputs are already spent there, otherwise
// DoubleSpend with the list of conflicting pooled transactions. The pool
// never evicts conflicts itself — eviction policy belongs to the caller.
func (mp *TxPool) CheckDoubleSpend(tx *wire.MsgTx) DoubleSpendResult {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	seen := make(map[chainhash.Hash]struct{})
	var conflicts []chainhash.Hash
	for _, in := range tx.TxIn {
		if hash, ok := mp.outpoints[in.PreviousOutPoint]; ok {
			if _, dup := seen[hash]; !dup {
				seen[hash] = struct{}{}
				conflicts = append(conflicts, hash)
			}
		}
	}
	if len(conflicts) == 0 {
		return DoubleSpendResult{Kind: NoDoubleSpend}
	}
	return DoubleSpendResult{Kind: DoubleSpend, Conflicts: conflicts}
}

// resolvePrevOut resolves an outpoint's value against the pool first (so
// chains of unconfirmed spends work), then the chain store.
func (mp *TxPool) resolvePrevOut(op wire.OutPoint) (*wire.TxOut, error) {
	if desc, ok := mp.pool[op.Hash]; ok {
		outs := desc.Tx.MsgTx().TxOut
		if int(op.Index) < len(outs) {
			return outs[op.Index], nil
		}
	}
	prevTx, err := mp.cfg.Store.Transaction(op.Hash)
	if err != nil {
		return nil, err
	}
	if int(op.Index) >= len(prevTx.TxOut) {
		return nil, blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "input references out-of-range output index"}
	}
	return prevTx.TxOut[op.Index], nil
}

// ancestorsOf returns the hashes of every pooled transaction tx spends from,
// directly or transitively, used both for ByTransactionScore ordering and
// for attributing eviction scope.
func (mp *TxPool) ancestorsOf(tx *wire.MsgTx) map[chainhash.Hash]struct{} {
	ancestors := make(map[chainhash.Hash]struct{})
	var walk func(t *wire.MsgTx)
	walk = func(t *wire.MsgTx) {
		for _, in := range t.TxIn {
			hash := in.PreviousOutPoint.Hash
			if _, ok := mp.pool[hash]; !ok {
				continue
			}
			if _, seen := ancestors[hash]; seen {
				continue
			}
			ancestors[hash] = struct{}{}
			if desc, ok := mp.pool[hash]; ok {
				walk(desc.Tx.MsgTx())
			}
		}
	}
	walk(tx)
	return ancestors
}

// MaybeAcceptTransaction validates tx against the acceptor in mempool mode
// and, if it passes, files it into the pool (or the orphan pool, if one or
// more inputs are missing). tag is stored with the orphan entry.
func (mp *TxPool) MaybeAcceptTransaction(tx *wire.MsgTx, tag Tag) (*AcceptResult, error) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	return mp.maybeAcceptTransaction(tx, tag)
}

// maybeAcceptTransaction is MaybeAcceptTransaction's body, callable while
// the write lock is already held (orphan re-acceptance recurses into it
// directly rather than dropping and reacquiring the lock).
func (mp *TxPool) maybeAcceptTransaction(tx *wire.MsgTx, tag Tag) (*AcceptResult, error) {
	txHash := tx.TxHash()
	if _, ok := mp.pool[txHash]; ok {
		return nil, fmt.Errorf("transaction %s already in pool", txHash)
	}

	var missing []chainhash.Hash
	var inputSum int64
	for _, in := range tx.TxIn {
		out, err := mp.resolvePrevOut(in.PreviousOutPoint)
		if err != nil {
			missing = append(missing, in.PreviousOutPoint.Hash)
			continue
		}
		inputSum += out.Value
	}
	if len(missing) > 0 {
		mp.addOrphan(tx, tag)
		return &AcceptResult{MissingParents: missing}, nil
	}

	height := mp.cfg.BestHeight()
	branchID := mp.cfg.ChainParams.ConsensusBranchID(height)
	if err := consensus.AcceptTransaction(tx, mp.cfg.Store, mp.poolTxs, consensus.MempoolMode, consensus.Full, height, time.Now(), branchID); err != nil {
		return nil, err
	}

	var outputSum int64
	for _, out := range tx.TxOut {
		outputSum += out.Value
	}
	shielded, err := consensus.ShieldedValueBalance(tx)
	if err != nil {
		return nil, err
	}
	fee := inputSum + shielded - outputSum

	size := int64(tx.SerializeSize())
	var feeRate int64
	if size > 0 {
		feeRate = fee / size
	}

	wrapped := wire.NewTx(tx)
	desc := &TxDesc{
		Tx:          wrapped,
		Added:       time.Now(),
		Height:      height,
		Fee:         fee,
		FeeRate:     feeRate,
		Ancestors:   mp.ancestorsOf(tx),
		Descendants: make(map[chainhash.Hash]struct{}),
	}
	for ancestor := range desc.Ancestors {
		if ad, ok := mp.pool[ancestor]; ok {
			ad.Descendants[txHash] = struct{}{}
		}
	}

	mp.pool[txHash] = desc
	mp.poolTxs[txHash] = tx
	for _, in := range tx.TxIn {
		mp.outpoints[in.PreviousOutPoint] = txHash
	}
	mp.lastUpdated = time.Now()

	mp.acceptOrphansOf(txHash)

	return &AcceptResult{Fee: fee, FeeRate: feeRate, Size: size}, nil
}

// RemoveTransaction removes hash from the pool. If removeDescendants is
// true, every transaction that spent one of its outputs while unconfirmed
// is removed too (recursively); otherwise only hash itself is removed,
// leaving its descendants' outpoints to resolve against the chain store.
func (mp *TxPool) RemoveTransaction(hash chainhash.Hash, removeDescendants bool) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	mp.removeTransaction(hash, removeDescendants)
}

func (mp *TxPool) removeTransaction(hash chainhash.Hash, removeDescendants bool) {
	desc, ok := mp.pool[hash]
	if !ok {
		return
	}

	if removeDescendants {
		for descendant := range desc.Descendants {
			mp.removeTransaction(descendant, true)
		}
	}

	for _, in := range desc.Tx.MsgTx().TxIn {
		if mp.outpoints[in.PreviousOutPoint] == hash {
			delete(mp.outpoints, in.PreviousOutPoint)
		}
	}
	for ancestor := range desc.Ancestors {
		if ad, ok := mp.pool[ancestor]; ok {
			delete(ad.Descendants, hash)
		}
	}
	delete(mp.pool, hash)
	delete(mp.poolTxs, hash)
	mp.lastUpdated = time.Now()
}

// RemoveDoubleSpends evicts every pooled transaction that spends an
// outpoint tx itself spends, used once tx has been confirmed in a block.
func (mp *TxPool) RemoveDoubleSpends(tx *wire.MsgTx) {
	mp.mtx.Lock()
	defer mp.mtx.Unlock()
	for _, in := range tx.TxIn {
		if hash, ok := mp.outpoints[in.PreviousOutPoint]; ok {
			if hash != tx.TxHash() {
				mp.removeTransaction(hash, true)
			}
		}
	}
}

// addOrphan files tx into the orphan pool, evicting the oldest orphan first
// if the pool is already at capacity.
func (mp *TxPool) addOrphan(tx *wire.MsgTx, tag Tag) {
	now := time.Now()
	if now.After(mp.nextExpireScan) {
		mp.expireOrphans(now)
		mp.nextExpireScan = now.Add(orphanExpireScanInterval)
	}
	if len(mp.orphans) >= maxOrphans {
		mp.limitOrphans()
	}
	hash := tx.TxHash()
	wrapped := wire.NewTx(tx)
	mp.orphans[hash] = &orphanTx{tx: wrapped, tag: tag, expiration: time.Now().Add(orphanTTL)}
	for _, in := range tx.TxIn {
		if mp.orphansByPrev[in.PreviousOutPoint] == nil {
			mp.orphansByPrev[in.PreviousOutPoint] = make(map[chainhash.Hash]struct{})
		}
		mp.orphansByPrev[in.PreviousOutPoint][hash] = struct{}{}
	}
}

// expireOrphans evicts every orphan whose TTL has elapsed as of now.
func (mp *TxPool) expireOrphans(now time.Time) {
	for hash, otx := range mp.orphans {
		if now.After(otx.expiration) {
			mp.removeOrphan(hash)
		}
	}
}

func (mp *TxPool) limitOrphans() {
	mp.expireOrphans(time.Now())
	if len(mp.orphans) < maxOrphans {
		return
	}
	var oldest chainhash.Hash
	var oldestTime time.Time
	first := true
	for hash, otx := range mp.orphans {
		if first || otx.expiration.Before(oldestTime) {
			oldest = hash
			oldestTime = otx.expiration
			first = false
		}
	}
	mp.removeOrphan(oldest)
}

func (mp *TxPool) removeOrphan(hash chainhash.Hash) {
	otx, ok := mp.orphans[hash]
	if !ok {
		return
	}
	for _, in := range otx.tx.MsgTx().TxIn {
		if set, ok := mp.orphansByPrev[in.PreviousOutPoint]; ok {
			delete(set, hash)
			if len(set) == 0 {
				delete(mp.orphansByPrev, in.PreviousOutPoint)
			}
		}
	}
	delete(mp.orphans, hash)
}

// acceptOrphansOf re-attempts every orphan that spends one of newlyAccepted's
// outputs, now that they can resolve.
func (mp *TxPool) acceptOrphansOf(newlyAccepted chainhash.Hash) {
	desc, ok := mp.pool[newlyAccepted]
	if !ok {
		return
	}
	for index := range desc.Tx.MsgTx().TxOut {
		op := wire.OutPoint{Hash: newlyAccepted, Index: uint32(index)}
		waiting, ok := mp.orphansByPrev[op]
		if !ok {
			continue
		}
		for hash := range waiting {
			otx, ok := mp.orphans[hash]
			if !ok {
				continue
			}
			mp.removeOrphan(hash)
			mp.maybeAcceptTransaction(otx.tx.MsgTx(), otx.tag)
		}
	}
}

// TxDescs returns every pooled transaction's descriptor ordered by strategy.
func (mp *TxPool) TxDescs(strategy OrderingStrategy) []*TxDesc {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()

	descs := make([]*TxDesc, 0, len(mp.pool))
	for _, d := range mp.pool {
		descs = append(descs, d)
	}

	switch strategy {
	case ByFeeRate:
		sort.Slice(descs, func(i, j int) bool { return descs[i].FeeRate > descs[j].FeeRate })
	case ByArrival:
		sort.Slice(descs, func(i, j int) bool { return descs[i].Added.Before(descs[j].Added) })
	case ByTransactionScore:
		scores := make(map[chainhash.Hash]int64, len(descs))
		for _, d := range descs {
			scores[d.Tx.MsgTx().TxHash()] = mp.componentScore(d)
		}
		sort.Slice(descs, func(i, j int) bool {
			return scores[descs[i].Tx.MsgTx().TxHash()] > scores[descs[j].Tx.MsgTx().TxHash()]
		})
	}
	return descs
}

// componentScore sums the fee-rate of d and everything in its ancestor set,
// approximating the fee density of its connected in-pool component.
func (mp *TxPool) componentScore(d *TxDesc) int64 {
	score := d.FeeRate
	for ancestor := range d.Ancestors {
		if ad, ok := mp.pool[ancestor]; ok {
			score += ad.FeeRate
		}
	}
	return score
}

// LastUpdated reports when the pool's contents last changed.
func (mp *TxPool) LastUpdated() time.Time {
	mp.mtx.RLock()
	defer mp.mtx.RUnlock()
	return mp.lastUpdated
}
