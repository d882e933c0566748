// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// AcceptResult holds the outcome of successfully admitting a transaction
// into the pool.
type AcceptResult struct {
	Fee     int64
	FeeRate int64
	Size    int64

	// MissingParents lists prevout hashes this transaction spends that
	// the pool and the chain store both lack; a non-empty list means
	// the transaction was filed as an orphan instead of accepted.
	MissingParents []chainhash.Hash
}
