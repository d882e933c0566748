// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"

	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

func TestCheckValueConservationExactFee(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: 900})
	require.NoError(t, CheckValueConservation(tx, 1000))
}

func TestCheckValueConservationOverspendFails(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: 1100})
	err := CheckValueConservation(tx, 1000)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrOverspend))
}

func TestShieldedValueBalanceJoinSplitMint(t *testing.T) {
	tx := wire.NewMsgTx(2)
	tx.JoinSplits = []*wire.JSDescription{{VPubNew: 500}}
	balance, err := ShieldedValueBalance(tx)
	require.NoError(t, err)
	require.Equal(t, int64(500), balance)
}

func TestShieldedValueBalanceSaplingBalancingValue(t *testing.T) {
	tx := wire.NewMsgTx(4)
	tx.Sapling = &wire.SaplingBundle{BalancingValue: -300}
	balance, err := ShieldedValueBalance(tx)
	require.NoError(t, err)
	require.Equal(t, int64(-300), balance)
}

func TestCheckTransparentValueBalanceNegativeOutputFails(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxOut(&wire.TxOut{Value: -1})
	_, err := CheckTransparentValueBalance(tx)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrOutputValueOverflow))
}
