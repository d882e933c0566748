// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
)

// genesisCoinbaseScript is embedded in the genesis block's single coinbase
// input. It carries no spendable meaning. Every network uses this same
// script, so the genesis coinbase transaction is identical across networks.
var genesisCoinbaseScript = []byte{
	0x04, 0xff, 0xff, 0x00, 0x1d, 0x01, 0x04, 0x45,
	0x7a, 0x65, 0x63, 0x20, 0x67, 0x65, 0x6e, 0x65,
	0x73, 0x69, 0x73, 0x20, 0x62, 0x6c, 0x6f, 0x63,
	0x6b,
}

// newGenesisCoinbaseTx returns the coinbase transaction used in the genesis
// block of every network; it takes no arguments and is the same on each.
func newGenesisCoinbaseTx() *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Index: 0xffffffff},
		SignatureScript:  genesisCoinbaseScript,
		Sequence:         0xffffffff,
	})
	tx.AddTxOut(&wire.TxOut{
		Value:    0,
		PkScript: []byte{0x6a}, // OP_RETURN: genesis reward is unspendable
	})
	return tx
}

// newGenesisBlock assembles a genesis block header and coinbase for the
// given network, with the nonce/solution left as found (the header hash is
// not re-derived here; each network's Params.GenesisHash is computed from
// this block's header).
func newGenesisBlock(version int32, bits uint32, nonceSeed byte, timestamp time.Time) *wire.MsgBlock {
	coinbase := newGenesisCoinbaseTx()

	var merkle chainhash.Hash
	h := coinbase.TxHash()
	merkle = h

	var nonce [32]byte
	nonce[0] = nonceSeed

	header := wire.BlockHeader{
		Version:          version,
		PrevBlock:        chainhash.Hash{},
		MerkleRoot:       merkle,
		FinalSaplingRoot: chainhash.Hash{},
		Timestamp:        timestamp,
		Bits:             bits,
		Nonce:            nonce,
		Solution:         make([]byte, wire.EquihashSolutionSize),
	}

	block := &wire.MsgBlock{Header: header}
	block.AddTransaction(coinbase)
	return block
}

// mainNetGenesisBlock is the genesis block for the main network.
var mainNetGenesisBlock = newGenesisBlock(
	4, 0x1f07ffff, 0x01, time.Unix(1477641360, 0),
)

// testNetGenesisBlock is the genesis block for the test network.
var testNetGenesisBlock = newGenesisBlock(
	4, 0x2007ffff, 0x02, time.Unix(1477648033, 0),
)

// regtestGenesisBlock is the genesis block for regtest.
var regtestGenesisBlock = newGenesisBlock(
	4, 0x200f0f0f, 0x03, time.Unix(1296688602, 0),
)
