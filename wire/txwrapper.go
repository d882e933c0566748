// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Tx wraps an MsgTx and memoizes its hash and position within an owning
// block, mirroring the caching-transaction-wrapper idiom of
// btcutil.Tx but over our shielded-aware MsgTx.
type Tx struct {
	msgTx   *MsgTx
	txHash  *chainhash.Hash
	txIndex int
}

// NewTx returns a new Tx instance for the given MsgTx with an unset index.
func NewTx(msgTx *MsgTx) *Tx {
	return &Tx{msgTx: msgTx, txIndex: -1}
}

// NewTxIndex returns a new Tx for the given MsgTx with its index within the
// containing block already set.
func NewTxIndex(msgTx *MsgTx, index int) *Tx {
	return &Tx{msgTx: msgTx, txIndex: index}
}

// MsgTx returns the underlying MsgTx for the transaction.
func (t *Tx) MsgTx() *MsgTx { return t.msgTx }

// Hash returns the cached transaction hash, computing and caching it on
// first use.
func (t *Tx) Hash() *chainhash.Hash {
	if t.txHash != nil {
		return t.txHash
	}
	h := t.msgTx.TxHash()
	t.txHash = &h
	return t.txHash
}

// Index returns the saved index of the transaction within its containing
// block, or -1 if it hasn't been set.
func (t *Tx) Index() int { return t.txIndex }

// SetIndex sets the index of the transaction within its containing block.
func (t *Tx) SetIndex(index int) { t.txIndex = index }
