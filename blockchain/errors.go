// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import "fmt"

// ErrorCode identifies the consensus-visible reason a rule check failed.
type ErrorCode int

const (
	// ErrUnknownParent indicates a block's parent is neither stored nor
	// the zero hash.
	ErrUnknownParent ErrorCode = iota

	// ErrCannotCanonize indicates canonize was attempted on a block whose
	// parent is not the current best hash, or which does not exist.
	ErrCannotCanonize

	// ErrCannotDecanonize indicates decanonize was attempted with no
	// canonical block to undo.
	ErrCannotDecanonize

	// ErrAncientFork indicates a side-chain origin lies deeper than the
	// accepted fork depth below the current tip.
	ErrAncientFork

	// ErrDuplicateNullifier indicates canonize attempted to insert a
	// nullifier already present in its epoch's namespace.
	ErrDuplicateNullifier

	// ErrNoTransactions indicates a block has no transactions at all.
	ErrNoTransactions

	// ErrNoTxInputs indicates a transaction has no inputs.
	ErrNoTxInputs

	// ErrNoTxOutputs indicates a transaction has no outputs.
	ErrNoTxOutputs

	// ErrBlockTooBig indicates a block's serialized size exceeds the
	// network maximum.
	ErrBlockTooBig

	// ErrFirstTxNotCoinbase indicates the first transaction in a block is
	// not a coinbase.
	ErrFirstTxNotCoinbase

	// ErrMultipleCoinbases indicates a block has more than one coinbase
	// transaction.
	ErrMultipleCoinbases

	// ErrDuplicateTx indicates a block contains two transactions with the
	// same hash.
	ErrDuplicateTx

	// ErrTooManySigOps indicates the cumulative sigop count across a
	// block's scripts exceeds the network maximum.
	ErrTooManySigOps

	// ErrBadMerkleRoot indicates the header's merkle root does not match
	// the computed root of the block's transactions.
	ErrBadMerkleRoot

	// ErrTimeTooNew indicates a header's timestamp is too far in the
	// future.
	ErrTimeTooNew

	// ErrInvalidPoW indicates the header's hash does not satisfy the
	// difficulty target encoded in its bits field.
	ErrInvalidPoW

	// ErrBadEquihashSolution indicates a header's Equihash solution is
	// malformed (wrong length for the network).
	ErrBadEquihashSolution

	// ErrMissingTxOut indicates a transaction input's previous outpoint
	// could not be resolved against the chain store and pending block.
	ErrMissingTxOut

	// ErrImmatureSpend indicates a coinbase output is spent before
	// reaching CoinbaseMaturity confirmations.
	ErrImmatureSpend

	// ErrOverspend indicates a transaction's outputs (plus shielded
	// spends) exceed its inputs (plus shielded outputs).
	ErrOverspend

	// ErrInputValueOverflow indicates the checked-arithmetic accumulator
	// for incoming value overflowed.
	ErrInputValueOverflow

	// ErrOutputValueOverflow indicates the checked-arithmetic accumulator
	// for outgoing value overflowed.
	ErrOutputValueOverflow

	// ErrDoubleSpend indicates a transaction spends an output already
	// marked spent in the chain store.
	ErrDoubleSpend

	// ErrDuplicateNullifierSpend indicates a transaction reveals a
	// nullifier already present in the store's epoch-tagged set.
	ErrDuplicateNullifierSpend

	// ErrUnspentTxWithSameHash indicates BIP-30: an existing, unspent
	// transaction shares this transaction's hash.
	ErrUnspentTxWithSameHash

	// ErrBadFee indicates a coinbase output sum exceeds the allowed
	// subsidy plus collected fees.
	ErrBadFee

	// ErrMissingFounderReward indicates the consensus-mandated founders'
	// reward output is absent or pays the wrong amount/script.
	ErrMissingFounderReward

	// ErrBadSaplingRoot indicates the header's FinalSaplingRoot does not
	// match the Sapling tree root after applying the block's outputs.
	ErrBadSaplingRoot

	// ErrBadDifficultyBits indicates a header's bits field does not match
	// the expected retarget computation.
	ErrBadDifficultyBits

	// ErrOldVersionBlock indicates a header's version is below the
	// network's minimum accepted version.
	ErrOldVersionBlock

	// ErrScriptValidation indicates a transparent script failed
	// evaluation.
	ErrScriptValidation

	// ErrTxTooBig indicates a transaction's serialized size exceeds the
	// per-transaction maximum at this height.
	ErrTxTooBig
)

var errorCodeStrings = map[ErrorCode]string{
	ErrUnknownParent:            "ErrUnknownParent",
	ErrCannotCanonize:           "ErrCannotCanonize",
	ErrCannotDecanonize:         "ErrCannotDecanonize",
	ErrAncientFork:              "ErrAncientFork",
	ErrDuplicateNullifier:       "ErrDuplicateNullifier",
	ErrNoTransactions:           "ErrNoTransactions",
	ErrNoTxInputs:               "ErrNoTxInputs",
	ErrNoTxOutputs:              "ErrNoTxOutputs",
	ErrBlockTooBig:              "ErrBlockTooBig",
	ErrFirstTxNotCoinbase:       "ErrFirstTxNotCoinbase",
	ErrMultipleCoinbases:        "ErrMultipleCoinbases",
	ErrDuplicateTx:              "ErrDuplicateTx",
	ErrTooManySigOps:            "ErrTooManySigOps",
	ErrBadMerkleRoot:            "ErrBadMerkleRoot",
	ErrTimeTooNew:               "ErrTimeTooNew",
	ErrInvalidPoW:               "ErrInvalidPoW",
	ErrBadEquihashSolution:      "ErrBadEquihashSolution",
	ErrMissingTxOut:             "ErrMissingTxOut",
	ErrImmatureSpend:            "ErrImmatureSpend",
	ErrOverspend:                "ErrOverspend",
	ErrInputValueOverflow:       "ErrInputValueOverflow",
	ErrOutputValueOverflow:      "ErrOutputValueOverflow",
	ErrDoubleSpend:              "ErrDoubleSpend",
	ErrDuplicateNullifierSpend:  "ErrDuplicateNullifierSpend",
	ErrUnspentTxWithSameHash:    "ErrUnspentTxWithSameHash",
	ErrBadFee:                   "ErrBadFee",
	ErrMissingFounderReward:     "ErrMissingFounderReward",
	ErrBadSaplingRoot:           "ErrBadSaplingRoot",
	ErrBadDifficultyBits:        "ErrBadDifficultyBits",
	ErrOldVersionBlock:          "ErrOldVersionBlock",
	ErrScriptValidation:         "ErrScriptValidation",
	ErrTxTooBig:                 "ErrTxTooBig",
}

func (e ErrorCode) String() string {
	if s, ok := errorCodeStrings[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorCode(%d)", int(e))
}

// RuleError identifies a rule violation. It carries both a machine-checkable
// ErrorCode and a human-readable description, mirroring how btcd's
// blockchain package separates the two.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return e.Description
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

// IsErrorCode reports whether err is a RuleError with the given code.
func IsErrorCode(err error, c ErrorCode) bool {
	re, ok := err.(RuleError)
	return ok && re.ErrorCode == c
}
