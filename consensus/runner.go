// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"fmt"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
)

// ChainContext is the subset of blockchain.ChainStore the runner needs to
// classify a block's origin. Fork is part of the interface for callers that
// promote side chains; Verify itself checks every block, side-chain blocks
// included, against the base store and does not use a fork overlay.
type ChainContext interface {
	Store
	BlockOriginOf(header *wire.BlockHeader) (*blockchain.BlockOriginResult, error)
	Fork(origin chainhash.Hash) *blockchain.ForkChain
}

// TxIndexError reports which transaction within a block failed acceptance,
// so callers can attribute bans/penalties to the lowest-index offender when
// transactions are checked concurrently.
type TxIndexError struct {
	Index int
	Err   error
}

func (e *TxIndexError) Error() string {
	return fmt.Sprintf("transaction %d: %v", e.Index, e.Err)
}

func (e *TxIndexError) Unwrap() error { return e.Err }

// Verify runs the full two-phase pipeline against block: pre-verification,
// origin classification, and acceptance. NoVerification returns
// immediately without running anything else, by design: the verify-level
// gate skips everything at that level, not merely script evaluation.
func Verify(level VerificationLevel, block *wire.MsgBlock, chain ChainContext, params *chaincfg.Params) error {
	if level == NoVerification {
		return nil
	}

	var flags BehaviorFlags
	if params.Net == chaincfg.RegtestParams.Net {
		flags |= BFNoPoWCheck
	}
	if err := PreVerifyBlock(block, params, time.Now(), flags); err != nil {
		return err
	}

	origin, err := chain.BlockOriginOf(&block.Header)
	if err != nil {
		return err
	}

	height := origin.Height
	branchID := params.ConsensusBranchID(height)

	pending := make(map[chainhash.Hash]*wire.MsgTx, len(block.Transactions))
	for _, tx := range block.Transactions {
		pending[tx.TxHash()] = tx
	}

	fees, err := acceptTransactionsConcurrently(block, chain, pending, level, height, branchID)
	if err != nil {
		return err
	}

	saplingRootAfter, err := computeSaplingRootAfter(block, chain, params)
	if err != nil {
		return err
	}

	return BlockAcceptor(block, height, fees, saplingRootAfter, params)
}

// acceptTransactionsConcurrently runs AcceptTransaction over every
// non-coinbase transaction in parallel, returning the sum of fees
// collected, or the error belonging to the lowest transaction index that
// failed (even if a higher index's check completed first).
func acceptTransactionsConcurrently(block *wire.MsgBlock, chain ChainContext, pending map[chainhash.Hash]*wire.MsgTx, level VerificationLevel, height int32, branchID uint32) (int64, error) {
	blockTime := block.Header.Timestamp
	type result struct {
		fee int64
		err error
	}
	results := make([]result, len(block.Transactions))

	var wg sync.WaitGroup
	for i, tx := range block.Transactions {
		if i == 0 {
			continue // coinbase has no fee and is not run through AcceptTransaction
		}
		earlier := make(map[chainhash.Hash]*wire.MsgTx, i)
		for _, prev := range block.Transactions[:i] {
			h := prev.TxHash()
			earlier[h] = pending[h]
		}
		wg.Add(1)
		go func(i int, tx *wire.MsgTx, earlier map[chainhash.Hash]*wire.MsgTx) {
			defer wg.Done()
			inputSum, outputSum, err := feeComponents(tx, chain, earlier)
			if err != nil {
				results[i] = result{err: err}
				return
			}
			if err := AcceptTransaction(tx, chain, earlier, BlockMode, level, height, blockTime, branchID); err != nil {
				results[i] = result{err: err}
				return
			}
			results[i] = result{fee: inputSum - outputSum}
		}(i, tx, earlier)
	}
	wg.Wait()

	var totalFees int64
	for i, r := range results {
		if r.err != nil {
			return 0, &TxIndexError{Index: i, Err: r.err}
		}
		totalFees += r.fee
	}
	return totalFees, nil
}

// feeComponents resolves a transaction's input sum and computes its output
// sum, used only to derive the fee once AcceptTransaction has independently
// confirmed value conservation.
func feeComponents(tx *wire.MsgTx, chain ChainContext, pending map[chainhash.Hash]*wire.MsgTx) (inputSum, outputSum int64, err error) {
	for _, out := range tx.TxOut {
		outputSum += out.Value
	}
	for _, in := range tx.TxIn {
		var prevTx *wire.MsgTx
		if t, ok := pending[in.PreviousOutPoint.Hash]; ok {
			prevTx = t
		} else {
			prevTx, err = chain.Transaction(in.PreviousOutPoint.Hash)
			if err != nil {
				return 0, 0, err
			}
		}
		if int(in.PreviousOutPoint.Index) >= len(prevTx.TxOut) {
			return 0, 0, blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "input references out-of-range output index"}
		}
		inputSum += prevTx.TxOut[in.PreviousOutPoint.Index].Value
	}
	shielded, err := ShieldedValueBalance(tx)
	if err != nil {
		return 0, 0, err
	}
	inputSum += shielded
	return inputSum, outputSum, nil
}

func computeSaplingRootAfter(block *wire.MsgBlock, chain ChainContext, params *chaincfg.Params) (chainhash.Hash, error) {
	tree := blockchain.NewCommitmentTree(params.SaplingTreeHeight)
	for _, tx := range block.Transactions {
		if tx.Sapling == nil {
			continue
		}
		for _, out := range tx.Sapling.Outputs {
			if err := tree.Append(out.Cmu); err != nil {
				return chainhash.Hash{}, err
			}
		}
	}
	return tree.Root(), nil
}

// WorkerPool dispatches header ("light") and block ("heavy") verification
// work onto separate bounded queues, each drained by its own workers. Jobs
// start in submission order, but with more than one worker on a queue they
// may finish in any order; there is no per-chain ordering and no result
// sink: each job reports its own outcome.
type WorkerPool struct {
	light chan func()
	heavy chan func()

	wg sync.WaitGroup
}

// NewWorkerPool starts lightWorkers goroutines draining the header queue
// and heavyWorkers goroutines draining the block queue.
func NewWorkerPool(lightWorkers, heavyWorkers, queueDepth int) *WorkerPool {
	p := &WorkerPool{
		light: make(chan func(), queueDepth),
		heavy: make(chan func(), queueDepth),
	}
	for i := 0; i < lightWorkers; i++ {
		p.wg.Add(1)
		go p.drain(p.light)
	}
	for i := 0; i < heavyWorkers; i++ {
		p.wg.Add(1)
		go p.drain(p.heavy)
	}
	return p
}

func (p *WorkerPool) drain(queue chan func()) {
	defer p.wg.Done()
	for job := range queue {
		job()
	}
}

// SubmitHeader enqueues a header-verification job on the light queue.
func (p *WorkerPool) SubmitHeader(job func()) { p.light <- job }

// SubmitBlock enqueues a block-verification job on the heavy queue.
func (p *WorkerPool) SubmitBlock(job func()) { p.heavy <- job }

// Close stops accepting new work and waits for in-flight jobs to finish.
func (p *WorkerPool) Close() {
	close(p.light)
	close(p.heavy)
	p.wg.Wait()
}
