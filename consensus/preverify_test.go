// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"
	"time"

	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

func coinbaseOnlyBlock(ts time.Time, bits uint32) *wire.MsgBlock {
	coinbase := wire.NewMsgTx(1)
	coinbase.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  []byte{0x01, 0x02},
		Sequence:         0xffffffff,
	})
	coinbase.AddTxOut(&wire.TxOut{Value: 1250000000, PkScript: []byte{0x51}})

	txs := []*wire.Tx{wire.NewTx(coinbase)}
	root := blockchain.CalcMerkleRoot(txs)

	header := wire.BlockHeader{
		Version:    4,
		MerkleRoot: root,
		Timestamp:  ts,
		Bits:       bits,
		Solution:   make([]byte, wire.EquihashSolutionSize),
	}
	block := &wire.MsgBlock{Header: header}
	block.AddTransaction(coinbase)
	return block
}

func TestPreVerifyHeaderRejectsFutureTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := &wire.BlockHeader{
		Timestamp: now.Add(3 * time.Hour),
		Bits:      chaincfg.RegtestParams.PowLimitBits,
		Solution:  make([]byte, wire.EquihashSolutionSize),
	}
	err := PreVerifyHeader(header, &chaincfg.RegtestParams, now, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrTimeTooNew))
}

func TestPreVerifyHeaderRejectsWrongSolutionLength(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	header := &wire.BlockHeader{
		Timestamp: now,
		Bits:      chaincfg.RegtestParams.PowLimitBits,
		Solution:  make([]byte, 10),
	}
	err := PreVerifyHeader(header, &chaincfg.RegtestParams, now, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrBadEquihashSolution))
}

func TestPreVerifyBlockRejectsMultipleCoinbases(t *testing.T) {
	block := coinbaseOnlyBlock(time.Unix(1000, 0), chaincfg.RegtestParams.PowLimitBits)
	second := wire.NewMsgTx(1)
	second.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, SignatureScript: []byte{0x03, 0x04}})
	second.AddTxOut(&wire.TxOut{Value: 1, PkScript: []byte{0x51}})
	block.AddTransaction(second)

	err := PreVerifyBlock(block, &chaincfg.RegtestParams, time.Unix(2000, 0), BFNoPoWCheck)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrMultipleCoinbases))
}

func TestPreVerifyBlockRejectsBadMerkleRoot(t *testing.T) {
	block := coinbaseOnlyBlock(time.Unix(1000, 0), chaincfg.RegtestParams.PowLimitBits)
	block.Header.MerkleRoot[0] ^= 0xff

	err := PreVerifyBlock(block, &chaincfg.RegtestParams, time.Unix(2000, 0), BFNoPoWCheck)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrBadMerkleRoot))
}

func TestPreVerifyTransactionRejectsCoinbaseScriptTooShort(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}, SignatureScript: []byte{0x01}})
	tx.AddTxOut(&wire.TxOut{Value: 1, PkScript: []byte{0x51}})

	err := PreVerifyTransaction(tx, &chaincfg.RegtestParams)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrScriptValidation))
}

func TestPreVerifyTransactionRejectsNoOutputs(t *testing.T) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: [32]byte{1}}})
	err := PreVerifyTransaction(tx, &chaincfg.RegtestParams)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrNoTxOutputs))
}
