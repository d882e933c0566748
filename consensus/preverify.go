// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"bytes"
	"time"

	"github.com/btcsuite/btcd/txscript"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
)

const (
	minCoinbaseScriptLen = 2
	maxCoinbaseScriptLen = 100
)

// BehaviorFlags adjusts the preverifier's strictness, mirroring btcd's
// blockchain.BehaviorFlags: normally every check runs, but callers
// synthesizing or replaying blocks outside of real mining (tests, fast
// initial-block-download trust paths) can selectively relax checks whose
// cost or nondeterminism isn't wanted there.
type BehaviorFlags uint32

const (
	// BFNoPoWCheck skips the proof-of-work comparison against the header's
	// declared target, without skipping the target-range sanity check.
	BFNoPoWCheck BehaviorFlags = 1 << iota
)

// PreVerifyHeader performs context-free checks on a header: timestamp bound,
// Equihash solution shape, and proof-of-work against its own declared bits.
// It does not check the bits value is the one this height should have
// produced; that is HeaderAcceptor's job, since it needs the chain tip.
func PreVerifyHeader(header *wire.BlockHeader, params *chaincfg.Params, now time.Time, flags BehaviorFlags) error {
	if header.Timestamp.After(now.Add(params.MaxFutureBlockTime)) {
		return blockchain.RuleError{ErrorCode: blockchain.ErrTimeTooNew, Description: "block timestamp too far in the future"}
	}
	if len(header.Solution) != wire.EquihashSolutionSize {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadEquihashSolution, Description: "equihash solution has the wrong length"}
	}
	if err := checkProofOfWork(header, params, flags); err != nil {
		return err
	}
	return nil
}

func checkProofOfWork(header *wire.BlockHeader, params *chaincfg.Params, flags BehaviorFlags) error {
	target := CompactToBig(header.Bits)
	if target.Sign() <= 0 || target.Cmp(params.PowLimit) > 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadDifficultyBits, Description: "difficulty target out of range"}
	}

	if flags&BFNoPoWCheck != 0 {
		return nil
	}

	hash := header.BlockHash()
	hashNum := hashToBig(&hash)
	if hashNum.Cmp(target) > 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrInvalidPoW, Description: "block hash does not meet declared target"}
	}
	return nil
}

// PreVerifyBlock performs context-free checks on a block's structure: it
// must be non-empty, under the network size limit, begin with exactly one
// coinbase and contain no others, have no duplicate transaction hashes, its
// merkle root must match its header, and the header itself must pre-verify.
func PreVerifyBlock(block *wire.MsgBlock, params *chaincfg.Params, now time.Time, flags BehaviorFlags) error {
	if err := PreVerifyHeader(&block.Header, params, now, flags); err != nil {
		return err
	}

	if len(block.Transactions) == 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrNoTransactions, Description: "block has no transactions"}
	}

	var buf bytes.Buffer
	if err := block.BtcEncode(&buf, wire.ProtocolVersion); err != nil {
		return err
	}
	if int64(buf.Len()) > params.MaxBlockSize {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBlockTooBig, Description: "block exceeds maximum serialized size"}
	}

	if !block.Transactions[0].IsCoinBase() {
		return blockchain.RuleError{ErrorCode: blockchain.ErrFirstTxNotCoinbase, Description: "first transaction in block is not a coinbase"}
	}
	for _, tx := range block.Transactions[1:] {
		if tx.IsCoinBase() {
			return blockchain.RuleError{ErrorCode: blockchain.ErrMultipleCoinbases, Description: "block contains more than one coinbase"}
		}
	}

	seen := make(map[wire.OutPoint]struct{})
	seenHashes := make(map[[32]byte]struct{})
	var sigOps int64
	for _, tx := range block.Transactions {
		h := tx.TxHash()
		if _, ok := seenHashes[h]; ok {
			return blockchain.RuleError{ErrorCode: blockchain.ErrDuplicateTx, Description: "block contains duplicate transaction hashes"}
		}
		seenHashes[h] = struct{}{}

		if err := PreVerifyTransaction(tx, params); err != nil {
			return err
		}

		if !tx.IsCoinBase() {
			for _, in := range tx.TxIn {
				if _, ok := seen[in.PreviousOutPoint]; ok {
					return blockchain.RuleError{ErrorCode: blockchain.ErrDoubleSpend, Description: "block spends the same outpoint twice"}
				}
				seen[in.PreviousOutPoint] = struct{}{}
			}
		}
		for _, out := range tx.TxOut {
			sigOps += int64(txscript.GetSigOpCount(out.PkScript))
		}
		for _, in := range tx.TxIn {
			sigOps += int64(txscript.GetSigOpCount(in.SignatureScript))
		}
	}
	if sigOps > params.MaxBlockSigOps {
		return blockchain.RuleError{ErrorCode: blockchain.ErrTooManySigOps, Description: "block exceeds maximum sigop count"}
	}

	wireTxs := make([]*wire.Tx, len(block.Transactions))
	for i, tx := range block.Transactions {
		wireTxs[i] = wire.NewTx(tx)
	}
	root := blockchain.CalcMerkleRoot(wireTxs)
	if root != block.Header.MerkleRoot {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadMerkleRoot, Description: "merkle root does not match block transactions"}
	}

	return nil
}

// PreVerifyTransaction performs context-free checks on a single transaction:
// it must have at least one input and one output (coinbases excepted for
// inputs), every output value and their sum must fit within MaxMoney, and a
// coinbase's scriptSig must be between 2 and 100 bytes.
func PreVerifyTransaction(tx *wire.MsgTx, params *chaincfg.Params) error {
	if len(tx.TxOut) == 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrNoTxOutputs, Description: "transaction has no outputs"}
	}

	if tx.IsCoinBase() {
		scriptLen := len(tx.TxIn[0].SignatureScript)
		if scriptLen < minCoinbaseScriptLen || scriptLen > maxCoinbaseScriptLen {
			return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "coinbase script length out of range"}
		}
	} else if len(tx.TxIn) == 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrNoTxInputs, Description: "transaction has no inputs"}
	}

	for _, out := range tx.TxOut {
		if out.Value < 0 || out.Value > params.MaxMoney {
			return blockchain.RuleError{ErrorCode: blockchain.ErrOutputValueOverflow, Description: "transaction output value out of range"}
		}
	}
	if _, err := CheckTransparentValueBalance(tx); err != nil {
		return err
	}

	for _, js := range tx.JoinSplits {
		if int64(js.VPubOld) > params.MaxMoney || int64(js.VPubNew) > params.MaxMoney {
			return blockchain.RuleError{ErrorCode: blockchain.ErrInputValueOverflow, Description: "joinsplit public value out of range"}
		}
		if js.VPubOld != 0 && js.VPubNew != 0 {
			return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "joinsplit cannot both mint and burn transparent value"}
		}
	}

	var buf bytes.Buffer
	if err := tx.BtcEncode(&buf, wire.ProtocolVersion); err != nil {
		return err
	}
	if int64(buf.Len()) > params.MaxBlockSize {
		return blockchain.RuleError{ErrorCode: blockchain.ErrTxTooBig, Description: "transaction exceeds maximum serialized size"}
	}

	return nil
}
