// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/wire"
)

// maxMoneyBound is used as the overflow guard for per-transaction checked
// addition independent of which network's MaxMoney applies; the network's
// actual MaxMoney is checked separately once the sum is known to not have
// wrapped.
const maxMoneyBound = 21_000_000 * 1e8

// checkedAdd adds b to a, returning an error if the running total would
// exceed maxMoneyBound (used as an overflow fence, since zatoshi amounts
// are int64 and a naive sum of malicious values could wrap negative).
func checkedAdd(a, b int64) (int64, error) {
	if b < 0 {
		return 0, blockchain.RuleError{
			ErrorCode:   blockchain.ErrInputValueOverflow,
			Description: "negative value in checked sum",
		}
	}
	sum := a + b
	if sum < a || sum > maxMoneyBound {
		return 0, blockchain.RuleError{
			ErrorCode:   blockchain.ErrInputValueOverflow,
			Description: "value sum overflowed maxmoney bound",
		}
	}
	return sum, nil
}

// CheckTransparentValueBalance sums a transaction's transparent outputs,
// returning an error if any single value or the running total is negative
// or exceeds maxMoneyBound.
func CheckTransparentValueBalance(tx *wire.MsgTx) (int64, error) {
	var total int64
	var err error
	for _, out := range tx.TxOut {
		if out.Value < 0 {
			return 0, blockchain.RuleError{
				ErrorCode:   blockchain.ErrOutputValueOverflow,
				Description: "transaction output value is negative",
			}
		}
		total, err = checkedAdd(total, out.Value)
		if err != nil {
			return 0, blockchain.RuleError{
				ErrorCode:   blockchain.ErrOutputValueOverflow,
				Description: "sum of transaction output values overflowed",
			}
		}
	}
	return total, nil
}

// ShieldedValueBalance is the net flow of value out of (positive) or into
// (negative) the transparent pool across a transaction's shielded bundles:
// Sprout JoinSplits contribute (vpub_new - vpub_old) each, and the Sapling
// bundle contributes its signed balancing value directly.
func ShieldedValueBalance(tx *wire.MsgTx) (int64, error) {
	var balance int64
	for _, js := range tx.JoinSplits {
		if js.VPubOld > maxMoneyBound || js.VPubNew > maxMoneyBound {
			return 0, blockchain.RuleError{
				ErrorCode:   blockchain.ErrInputValueOverflow,
				Description: "joinsplit public value exceeds maxmoney",
			}
		}
		delta := int64(js.VPubNew) - int64(js.VPubOld)
		next := balance + delta
		// A well-formed chain of checked additions would never both
		// overflow and underflow in one step; guard both directions since
		// vpub_old/vpub_new are attacker-controlled up to maxMoneyBound.
		if (delta > 0 && next < balance) || (delta < 0 && next > balance) {
			return 0, blockchain.RuleError{
				ErrorCode:   blockchain.ErrInputValueOverflow,
				Description: "shielded value balance overflowed",
			}
		}
		balance = next
	}
	if tx.Sapling != nil {
		balance += tx.Sapling.BalancingValue
	}
	return balance, nil
}

// CheckValueConservation enforces the network-wide conservation law: the
// value unlocked by transparent inputs plus the value released from the
// shielded pools must be at least the value committed to transparent outputs
// plus the value absorbed by the shielded pools; the difference is the fee.
// inputSum is the caller-supplied
// sum of resolved previous-output values for this transaction's transparent
// inputs (the acceptor is responsible for resolving those against the chain
// store, since pre-verification has no view of the UTXO set).
func CheckValueConservation(tx *wire.MsgTx, inputSum int64) error {
	outputSum, err := CheckTransparentValueBalance(tx)
	if err != nil {
		return err
	}
	shielded, err := ShieldedValueBalance(tx)
	if err != nil {
		return err
	}

	// available is the transparent value this transaction has to spend:
	// its resolved inputs, plus whatever the shielded bundles release to
	// the transparent side (shielded is negative when they absorb value
	// instead). The difference between available and outputSum is the
	// fee, which must not be negative; any non-negative fee is valid.
	available := inputSum + shielded
	if available < outputSum {
		return blockchain.RuleError{
			ErrorCode:   blockchain.ErrOverspend,
			Description: "transaction outputs exceed available input value",
		}
	}
	return nil
}
