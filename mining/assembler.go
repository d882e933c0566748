// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package mining assembles a candidate block template from the mempool for
// miners to search for a valid proof-of-work over.
package mining

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/mempool"
	"github.com/parityzec/zecnode/wire"
)

// lockTimeThreshold distinguishes a lock-time expressed in block height
// from one expressed as a unix timestamp, matching Bitcoin's convention.
const lockTimeThreshold = 500000000

// maxTxInSequenceNum is the sequence value every input must carry for its
// transaction's lock-time to be ignored.
const maxTxInSequenceNum = 0xffffffff

// isFinalTransaction reports whether tx may be included in a block at
// height with the given block time, i.e. its lock-time (if any) has
// already passed.
func isFinalTransaction(tx *wire.MsgTx, height int32, blockTime time.Time) bool {
	if tx.LockTime == 0 {
		return true
	}

	blockTimeOrHeight := int64(height)
	if tx.LockTime >= lockTimeThreshold {
		blockTimeOrHeight = blockTime.Unix()
	}
	if int64(tx.LockTime) < blockTimeOrHeight {
		return true
	}

	for _, in := range tx.TxIn {
		if in.Sequence != maxTxInSequenceNum {
			return false
		}
	}
	return true
}

// AssemblerConfig wires the assembler to the state it needs to build a
// template: the mempool to draw from, network parameters, and the parent
// block's Sapling tree snapshot to extend.
type AssemblerConfig struct {
	Pool          *mempool.TxPool
	Params        *chaincfg.Params
	Ordering      mempool.OrderingStrategy
	ParentSapling *blockchain.CommitmentTree

	MaxBlockBytes  int64
	BytesBuffer    int64
	MaxBlockSigOps int64
	SigOpsBuffer   int64
	FinishLimit    int
}

// Template is a candidate block body ready for a miner to search a nonce
// and Equihash solution over.
type Template struct {
	Transactions []*wire.MsgTx
	Fees         int64
	SaplingRoot  chainhash.Hash
	Ignored      map[chainhash.Hash]struct{}
}

// Assemble iterates the mempool in cfg.Ordering, admitting transactions
// that respect the combined bytes/sigops SizePolicy decision, skipping
// (without penalizing the finish budget) any that aren't yet final, and
// propagating ignored ancestors to their descendants. It then synthesizes
// the coinbase for height, whose outputs together pay
// block_reward(height)+fees; when a founders' reward applies at height, it
// is paid in its own output and deducted from the miner output.
func Assemble(cfg AssemblerConfig, height int32, blockTime time.Time) (*Template, error) {
	bytesPolicy := &SizePolicy{Max: cfg.MaxBlockBytes, Buffer: cfg.BytesBuffer, FinishLimit: cfg.FinishLimit}
	sigopsPolicy := &SizePolicy{Max: cfg.MaxBlockSigOps, Buffer: cfg.SigOpsBuffer, FinishLimit: cfg.FinishLimit}

	tree := cfg.ParentSapling.Clone()
	ignored := make(map[chainhash.Hash]struct{})

	var included []*wire.MsgTx
	var fees int64

	for _, desc := range cfg.Pool.TxDescs(cfg.Ordering) {
		tx := desc.Tx.MsgTx()
		hash := desc.Tx.Hash()

		if ancestorIgnored(desc, ignored) {
			ignored[*hash] = struct{}{}
			continue
		}
		if !isFinalTransaction(tx, height, blockTime) {
			continue
		}

		size := int64(tx.SerializeSize())
		sigOps := int64(countSigOps(tx))

		decision := Join(bytesPolicy.Decide(size), sigopsPolicy.Decide(sigOps))
		switch decision {
		case Ignore, FinishAndIgnore:
			ignored[*hash] = struct{}{}
			if decision == FinishAndIgnore {
				goto coinbase
			}
			continue
		}

		if tx.Sapling != nil {
			accepted := true
			for _, out := range tx.Sapling.Outputs {
				if err := tree.Append(out.Cmu); err != nil {
					accepted = false
					break
				}
			}
			if !accepted {
				ignored[*hash] = struct{}{}
				continue
			}
		}

		bytesPolicy.Accept(size)
		sigopsPolicy.Accept(sigOps)
		included = append(included, tx)
		fees += desc.Fee

		if decision == FinishAndAppend {
			goto coinbase
		}
	}

coinbase:
	coinbaseTx, err := buildCoinbase(cfg.Params, height, fees)
	if err != nil {
		return nil, err
	}

	return &Template{
		Transactions: append([]*wire.MsgTx{coinbaseTx}, included...),
		Fees:         fees,
		SaplingRoot:  tree.Root(),
		Ignored:      ignored,
	}, nil
}

// ancestorIgnored reports whether any in-pool ancestor of desc has already
// been ignored, which means desc spends from a transaction that won't make
// it into this block and must itself be ignored.
func ancestorIgnored(desc *mempool.TxDesc, ignored map[chainhash.Hash]struct{}) bool {
	for ancestor := range desc.Ancestors {
		if _, ok := ignored[ancestor]; ok {
			return true
		}
	}
	return false
}

func countSigOps(tx *wire.MsgTx) int {
	var n int
	for _, out := range tx.TxOut {
		n += txscript.GetSigOpCount(out.PkScript)
	}
	for _, in := range tx.TxIn {
		n += txscript.GetSigOpCount(in.SignatureScript)
	}
	return n
}

// buildCoinbase synthesizes the coinbase transaction for height: a single
// null-prevout input carrying a height-encoded script-sig (so no two
// blocks at different heights can ever collide on transaction hash), a
// founders' reward output when one applies at this height, a miner output
// paying block_reward(height)+fees less any founders' reward, and no
// shielded fields.
func buildCoinbase(params *chaincfg.Params, height int32, fees int64) (*wire.MsgTx, error) {
	scriptSig, err := txscript.NewScriptBuilder().AddInt64(int64(height)).Script()
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(4)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  scriptSig,
		Sequence:         0xffffffff,
	})

	subsidy := params.CalcBlockSubsidy(height)
	minerReward := subsidy + fees

	if script, amount, ok := params.FounderRewardScript(height); ok {
		minerReward -= amount
		tx.AddTxOut(&wire.TxOut{Value: amount, PkScript: script})
	}
	tx.AddTxOut(&wire.TxOut{Value: minerReward})

	return tx, nil
}
