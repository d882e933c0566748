// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/consensus"
	"github.com/parityzec/zecnode/wire"
)

// Tag identifies the source a transaction was relayed from. It is stored
// with each orphan; the pool has no operation that evicts orphans by tag.
type Tag uint64

// TxDesc is the descriptor the pool stores for each accepted transaction:
// the transaction itself plus the bookkeeping an ordering strategy or the
// block assembler needs without re-deriving it from the raw tx each time.
type TxDesc struct {
	Tx      *wire.Tx
	Added   time.Time
	Height  int32 // chain height at acceptance time
	Fee     int64
	FeeRate int64 // Fee / serialized size, integer division

	Ancestors   map[chainhash.Hash]struct{}
	Descendants map[chainhash.Hash]struct{}
}

// OrderingStrategy selects how TxDescs enumerates the pool for a block
// assembler or for relay.
type OrderingStrategy int

const (
	// ByFeeRate orders by Fee/size, highest first.
	ByFeeRate OrderingStrategy = iota
	// ByTransactionScore orders by the sum of a transaction's own FeeRate
	// and the FeeRates of its in-pool ancestors, highest first.
	// Descendants are not counted.
	ByTransactionScore
	// ByArrival orders by acceptance time, earliest first.
	ByArrival
)

// DoubleSpendKind distinguishes an outright conflict from one whose
// resolution depends on finality (a conflicting input whose spender isn't
// itself final yet), which the caller — not the pool — decides how to
// police.
type DoubleSpendKind int

const (
	NoDoubleSpend DoubleSpendKind = iota
	DoubleSpend
	NonFinalDoubleSpend
)

// DoubleSpendResult reports whether a candidate transaction conflicts with
// something already in the pool, and if so, with what.
type DoubleSpendResult struct {
	Kind      DoubleSpendKind
	Conflicts []chainhash.Hash
}

// Config wires the pool to the chain state it validates new transactions
// against.
type Config struct {
	ChainParams *chaincfg.Params
	Store       consensus.Store
	BestHeight  func() int32
}
