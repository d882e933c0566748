// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package mempool

// DefaultMinRelayFeeRate is the minimum fee, in zatoshi per serialized
// byte, a transaction must pay to be relayed or mined by a node running
// with default policy.
const DefaultMinRelayFeeRate = 1

// CheckRelayFee reports whether fee over a transaction of the given
// serialized size meets minRelayFeeRate. Both fee and size come from the
// same integer-division fee-rate computation MaybeAcceptTransaction uses,
// so a transaction that passes here will report the same FeeRate in its
// TxDesc.
func CheckRelayFee(fee, size int64, minRelayFeeRate int64) bool {
	if size <= 0 {
		return false
	}
	return fee/size >= minRelayFeeRate
}
