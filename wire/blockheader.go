// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// EquihashSolutionSize is the length in bytes of the Equihash solution
// carried in every block header on this network (n=200,k=9 parameters).
const EquihashSolutionSize = 1344

// maxBlockHeaderPayload is the header's fixed wire size: version(4) +
// prevBlock(32) + merkleRoot(32) + finalSaplingRoot(32) + time(4) +
// bits(4) + nonce(32) + solution varint-prefixed blob.
const maxBlockHeaderPayload = 4 + 32 + 32 + 32 + 4 + 4 + 32 + 3 + EquihashSolutionSize

// BlockHeader defines information about a block and is used in the bitcoin
// block (MsgBlock) and headers (MsgHeaders) messages.
type BlockHeader struct {
	// Version of the block. This is not the same as the protocol version.
	Version int32

	// PrevBlock is the hash of the previous block header in the chain.
	PrevBlock chainhash.Hash

	// MerkleRoot is the merkle tree reference to hash of all transactions
	// for the block.
	MerkleRoot chainhash.Hash

	// FinalSaplingRoot is the root of the Sapling note commitment tree
	// after applying all of this block's Sapling outputs.
	FinalSaplingRoot chainhash.Hash

	// Timestamp is the time the miner started hashing the header.
	Timestamp time.Time

	// Bits is the difficulty target for the block in compact form.
	Bits uint32

	// Nonce used to generate the block, 32 bytes on this network (vs.
	// Bitcoin's 4).
	Nonce [32]byte

	// Solution is the opaque Equihash proof-of-work solution.
	Solution []byte
}

// BlockHash computes the double-SHA256 identity hash of the header's
// canonical encoding.
func (h *BlockHeader) BlockHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = writeBlockHeader(&buf, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// BtcDecode decodes a header from r.
func (h *BlockHeader) BtcDecode(r io.Reader, pver uint32) error {
	return readBlockHeader(r, h)
}

// BtcEncode encodes a header to w.
func (h *BlockHeader) BtcEncode(w io.Writer, pver uint32) error {
	return writeBlockHeader(w, h)
}

func readBlockHeader(r io.Reader, h *BlockHeader) error {
	var secs int64
	if err := readElement(r, &h.Version); err != nil {
		return err
	}
	if err := readElement(r, &h.PrevBlock); err != nil {
		return err
	}
	if err := readElement(r, &h.MerkleRoot); err != nil {
		return err
	}
	if err := readElement(r, &h.FinalSaplingRoot); err != nil {
		return err
	}
	var ts uint32
	if err := readElement(r, &ts); err != nil {
		return err
	}
	secs = int64(ts)
	h.Timestamp = time.Unix(secs, 0)
	if err := readElement(r, &h.Bits); err != nil {
		return err
	}
	if _, err := io.ReadFull(r, h.Nonce[:]); err != nil {
		return err
	}
	sol, err := ReadVarBytes(r, EquihashSolutionSize, "equihash solution")
	if err != nil {
		return err
	}
	h.Solution = sol
	return nil
}

func writeBlockHeader(w io.Writer, h *BlockHeader) error {
	if err := writeElement(w, h.Version); err != nil {
		return err
	}
	if err := writeElement(w, h.PrevBlock); err != nil {
		return err
	}
	if err := writeElement(w, h.MerkleRoot); err != nil {
		return err
	}
	if err := writeElement(w, h.FinalSaplingRoot); err != nil {
		return err
	}
	if err := writeElement(w, uint32(h.Timestamp.Unix())); err != nil {
		return err
	}
	if err := writeElement(w, h.Bits); err != nil {
		return err
	}
	if _, err := w.Write(h.Nonce[:]); err != nil {
		return err
	}
	return WriteVarBytes(w, h.Solution)
}

// NewBlockHeader returns a new header populated with the given fields and a
// zero solution/nonce, ready for mining to fill in.
func NewBlockHeader(version int32, prevHash, merkleRoot, finalSaplingRoot chainhash.Hash,
	bits uint32, timestamp time.Time) *BlockHeader {
	return &BlockHeader{
		Version:          version,
		PrevBlock:        prevHash,
		MerkleRoot:       merkleRoot,
		FinalSaplingRoot: finalSaplingRoot,
		Timestamp:        timestamp,
		Bits:             bits,
	}
}
