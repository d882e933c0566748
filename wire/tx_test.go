// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSproutTx() *MsgTx {
	tx := NewMsgTx(1)
	tx.AddTxIn(&TxIn{
		PreviousOutPoint: OutPoint{Index: 0},
		SignatureScript:  []byte{0x51},
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&TxOut{Value: 91234, PkScript: []byte{0x76, 0xa9, 0x14}})
	return tx
}

func sampleSaplingTx() *MsgTx {
	tx := NewMsgTx(TxVersionSapling)
	tx.Overwintered = true
	tx.VersionGroupID = SaplingVersionGroupID
	tx.ExpiryHeight = 100
	tx.AddTxIn(&TxIn{
		PreviousOutPoint: OutPoint{Index: 1},
		SignatureScript:  []byte{0x51, 0x52},
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&TxOut{Value: 500, PkScript: []byte{0x6a}})
	tx.Sapling = &SaplingBundle{
		Spends:         []*SaplingSpendDescription{{}},
		Outputs:        []*SaplingOutputDescription{{}, {}},
		BalancingValue: -250,
	}
	return tx
}

func TestMsgTxRoundTripTransparentOnly(t *testing.T) {
	tx := sampleSproutTx()
	var buf bytes.Buffer
	require.NoError(t, tx.BtcEncode(&buf, ProtocolVersion))

	got := &MsgTx{}
	require.NoError(t, got.BtcDecode(&buf, ProtocolVersion))
	require.Equal(t, tx.TxHash(), got.TxHash())
	require.Equal(t, len(tx.TxIn), len(got.TxIn))
	require.Equal(t, tx.TxOut[0].Value, got.TxOut[0].Value)
}

func TestMsgTxRoundTripSapling(t *testing.T) {
	tx := sampleSaplingTx()
	var buf bytes.Buffer
	require.NoError(t, tx.BtcEncode(&buf, ProtocolVersion))

	got := &MsgTx{}
	require.NoError(t, got.BtcDecode(&buf, ProtocolVersion))
	require.Equal(t, tx.TxHash(), got.TxHash())
	require.NotNil(t, got.Sapling)
	require.Len(t, got.Sapling.Spends, 1)
	require.Len(t, got.Sapling.Outputs, 2)
	require.Equal(t, int64(-250), got.Sapling.BalancingValue)
}

func TestMsgTxCopyIsIndependent(t *testing.T) {
	tx := sampleSproutTx()
	clone := tx.Copy()
	clone.TxOut[0].Value = 1

	require.Equal(t, int64(91234), tx.TxOut[0].Value)
	require.Equal(t, int64(1), clone.TxOut[0].Value)
}

func TestIsCoinBase(t *testing.T) {
	tx := NewMsgTx(1)
	tx.AddTxIn(&TxIn{PreviousOutPoint: OutPoint{Index: 0xffffffff}})
	require.True(t, tx.IsCoinBase())

	tx2 := sampleSproutTx()
	require.False(t, tx2.IsCoinBase())
}
