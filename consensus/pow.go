// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// CompactToBig converts a compact "nBits" difficulty representation (sign
// and magnitude with an 8-bit exponent, 23-bit mantissa) to its big.Int
// target form.
func CompactToBig(compact uint32) *big.Int {
	mantissa := compact & 0x007fffff
	exponent := uint8(compact >> 24)

	var result *big.Int
	if exponent <= 3 {
		mantissa >>= 8 * (3 - exponent)
		result = big.NewInt(int64(mantissa))
	} else {
		result = big.NewInt(int64(mantissa))
		result.Lsh(result, uint(8*(exponent-3)))
	}

	if compact&0x00800000 != 0 {
		result = result.Neg(result)
	}
	return result
}

// BigToCompact converts a big.Int target into its compact "nBits" form.
func BigToCompact(n *big.Int) uint32 {
	if n.Sign() == 0 {
		return 0
	}

	var negative bool
	if n.Sign() < 0 {
		negative = true
		n = new(big.Int).Neg(n)
	}

	bytesLen := uint((n.BitLen() + 7) / 8)
	var mantissa uint32
	if bytesLen <= 3 {
		mantissa = uint32(n.Bits()[0])
		mantissa <<= 8 * (3 - bytesLen)
	} else {
		shifted := new(big.Int).Rsh(n, 8*(bytesLen-3))
		mantissa = uint32(shifted.Bits()[0])
	}

	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		bytesLen++
	}

	compact := uint32(bytesLen<<24) | mantissa
	if negative {
		compact |= 0x00800000
	}
	return compact
}

// hashToBig interprets a block hash as a big-endian big.Int for comparison
// against a difficulty target, matching the convention that block hashes
// are displayed and compared in big-endian despite being stored
// little-endian internally.
func hashToBig(hash *chainhash.Hash) *big.Int {
	var buf chainhash.Hash
	copy(buf[:], hash[:])
	for i := 0; i < len(buf)/2; i++ {
		buf[i], buf[len(buf)-1-i] = buf[len(buf)-1-i], buf[i]
	}
	return new(big.Int).SetBytes(buf[:])
}
