// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package consensus implements the two-phase block/transaction validation
// pipeline: context-free pre-verification, contextual acceptance against a
// chain tip, and the worker pool that routes work between the two.
package consensus

import (
	"bytes"
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
	"golang.org/x/crypto/blake2b"
)

// SigHashType represents the signature hash type bits, identical in meaning
// to Bitcoin's.
type SigHashType uint32

const (
	SigHashAll          SigHashType = 1
	SigHashNone         SigHashType = 2
	SigHashSingle       SigHashType = 3
	SigHashAnyOneCanPay SigHashType = 0x80
)

// Personalization prefixes for the ZIP-143/243 BLAKE2b digests. Each is
// padded to the 16-byte BLAKE2b personalization field; the signing digest's
// personalization additionally has the 4-byte consensus branch id appended
// in its low bytes (ZcashSigHash ‖ branch_id LE).
var (
	personalPrevoutsHash = []byte("ZcashPrevoutHash")
	personalSequenceHash = []byte("ZcashSequencHash")
	personalOutputsHash  = []byte("ZcashOutputsHash")
	personalJSplitsHash  = []byte("ZcashJSplitsHash")
	personalSSpendsHash  = []byte("ZcashSSpendsHash")
	personalSOutputHash  = []byte("ZcashSOutputHash")
	personalSigHashBase  = []byte("ZcashSigHash")
)

func blake2bPersonalized(personal []byte, data []byte) chainhash.Hash {
	cfg := &blake2b.Config{Size: 32, Person: personal}
	h, err := blake2b.New(cfg)
	if err != nil {
		panic(err) // misconfigured personalization length is a programmer error
	}
	h.Write(data)
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

func sigHashPersonal(branchID uint32) []byte {
	p := make([]byte, 16)
	copy(p, personalSigHashBase)
	binary.LittleEndian.PutUint32(p[12:], branchID)
	return p
}

// SighashCache memoizes the six per-transaction BLAKE2b digests used by
// ZIP-143/243 signing so that signing N inputs of the same transaction only
// computes each digest once.
type SighashCache struct {
	tx *wire.MsgTx

	prevouts *chainhash.Hash
	sequence *chainhash.Hash
	outputs  *chainhash.Hash
	jsplits  *chainhash.Hash
	sspends  *chainhash.Hash
	soutputs *chainhash.Hash
}

// NewSighashCache returns a cache bound to tx; every digest is computed
// lazily on first use and reused across inputs of this same transaction.
func NewSighashCache(tx *wire.MsgTx) *SighashCache {
	return &SighashCache{tx: tx}
}

func (c *SighashCache) prevoutsHash() chainhash.Hash {
	if c.prevouts != nil {
		return *c.prevouts
	}
	var buf bytes.Buffer
	for _, in := range c.tx.TxIn {
		buf.Write(in.PreviousOutPoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.PreviousOutPoint.Index)
		buf.Write(idx[:])
	}
	h := blake2bPersonalized(personalPrevoutsHash, buf.Bytes())
	c.prevouts = &h
	return h
}

func (c *SighashCache) sequenceHash() chainhash.Hash {
	if c.sequence != nil {
		return *c.sequence
	}
	var buf bytes.Buffer
	for _, in := range c.tx.TxIn {
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf.Write(seq[:])
	}
	h := blake2bPersonalized(personalSequenceHash, buf.Bytes())
	c.sequence = &h
	return h
}

func (c *SighashCache) outputsHash() chainhash.Hash {
	if c.outputs != nil {
		return *c.outputs
	}
	var buf bytes.Buffer
	for _, out := range c.tx.TxOut {
		var val [8]byte
		binary.LittleEndian.PutUint64(val[:], uint64(out.Value))
		buf.Write(val[:])
		_ = wire.WriteVarBytes(&buf, out.PkScript)
	}
	h := blake2bPersonalized(personalOutputsHash, buf.Bytes())
	c.outputs = &h
	return h
}

func (c *SighashCache) joinSplitsHash() chainhash.Hash {
	if c.jsplits != nil {
		return *c.jsplits
	}
	if len(c.tx.JoinSplits) == 0 {
		var zero chainhash.Hash
		c.jsplits = &zero
		return zero
	}
	var buf bytes.Buffer
	for _, js := range c.tx.JoinSplits {
		var vpubOld, vpubNew [8]byte
		binary.LittleEndian.PutUint64(vpubOld[:], js.VPubOld)
		binary.LittleEndian.PutUint64(vpubNew[:], js.VPubNew)
		buf.Write(vpubOld[:])
		buf.Write(vpubNew[:])
		buf.Write(js.Anchor[:])
		for _, n := range js.Nullifiers {
			buf.Write(n[:])
		}
		for _, cm := range js.Commitments {
			buf.Write(cm[:])
		}
		buf.Write(js.EphemeralKey[:])
		buf.Write(js.RandomSeed[:])
		for _, m := range js.Macs {
			buf.Write(m[:])
		}
		buf.Write(js.ZkProof)
		for _, ct := range js.Ciphertexts {
			buf.Write(ct[:])
		}
	}
	buf.Write(c.tx.JoinSplitPubKey[:])
	h := blake2bPersonalized(personalJSplitsHash, buf.Bytes())
	c.jsplits = &h
	return h
}

func (c *SighashCache) saplingSpendsHash() chainhash.Hash {
	if c.sspends != nil {
		return *c.sspends
	}
	if c.tx.Sapling == nil || len(c.tx.Sapling.Spends) == 0 {
		var zero chainhash.Hash
		c.sspends = &zero
		return zero
	}
	var buf bytes.Buffer
	for _, sp := range c.tx.Sapling.Spends {
		buf.Write(sp.CV[:])
		buf.Write(sp.Anchor[:])
		buf.Write(sp.Nullifier[:])
		buf.Write(sp.RK[:])
		buf.Write(sp.ZkProof[:])
	}
	h := blake2bPersonalized(personalSSpendsHash, buf.Bytes())
	c.sspends = &h
	return h
}

func (c *SighashCache) saplingOutputsHash() chainhash.Hash {
	if c.soutputs != nil {
		return *c.soutputs
	}
	if c.tx.Sapling == nil || len(c.tx.Sapling.Outputs) == 0 {
		var zero chainhash.Hash
		c.soutputs = &zero
		return zero
	}
	var buf bytes.Buffer
	for _, out := range c.tx.Sapling.Outputs {
		buf.Write(out.CV[:])
		buf.Write(out.Cmu[:])
		buf.Write(out.EphemeralKey[:])
		buf.Write(out.EncCiphertext[:])
		buf.Write(out.OutCiphertext[:])
		buf.Write(out.ZkProof[:])
	}
	h := blake2bPersonalized(personalSOutputHash, buf.Bytes())
	c.soutputs = &h
	return h
}

// SignatureDigest computes the ZIP-143/243 signing digest for inputIndex of
// the cache's transaction (or the whole-transaction digest if inputIndex is
// negative), under the given hash type and consensus branch id. For the
// Sprout era (branchID == chaincfg.BranchIDSprout) it instead produces the
// legacy Sprout/Bitcoin-style digest.
func (c *SighashCache) SignatureDigest(inputIndex int, hashType SigHashType, branchID uint32, prevScript []byte, amount int64) chainhash.Hash {
	if branchID == 0 {
		return c.legacySprout(inputIndex, hashType, prevScript)
	}

	var buf bytes.Buffer
	var header [4]byte
	v := uint32(c.tx.Version)
	if c.tx.Overwintered {
		v |= wire.TxVersionOverwinterFlag
	}
	binary.LittleEndian.PutUint32(header[:], v)
	buf.Write(header[:])

	var vgid [4]byte
	binary.LittleEndian.PutUint32(vgid[:], c.tx.VersionGroupID)
	buf.Write(vgid[:])

	prevouts := c.prevoutsHash()
	sequence := c.sequenceHash()
	outputs := c.outputsHash()
	jsplits := c.joinSplitsHash()
	buf.Write(prevouts[:])
	buf.Write(sequence[:])
	buf.Write(outputs[:])
	buf.Write(jsplits[:])

	if c.tx.Overwintered && c.tx.VersionGroupID == wire.SaplingVersionGroupID {
		sspends := c.saplingSpendsHash()
		soutputs := c.saplingOutputsHash()
		buf.Write(sspends[:])
		buf.Write(soutputs[:])
	}

	var lockTime, expiry [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], c.tx.LockTime)
	binary.LittleEndian.PutUint32(expiry[:], c.tx.ExpiryHeight)
	buf.Write(lockTime[:])
	buf.Write(expiry[:])

	if c.tx.Overwintered && c.tx.VersionGroupID == wire.SaplingVersionGroupID {
		var bal [8]byte
		if c.tx.Sapling != nil {
			binary.LittleEndian.PutUint64(bal[:], uint64(c.tx.Sapling.BalancingValue))
		}
		buf.Write(bal[:])
	}

	var ht [4]byte
	binary.LittleEndian.PutUint32(ht[:], uint32(hashType))
	buf.Write(ht[:])

	if inputIndex >= 0 && inputIndex < len(c.tx.TxIn) {
		in := c.tx.TxIn[inputIndex]
		buf.Write(in.PreviousOutPoint.Hash[:])
		var idx [4]byte
		binary.LittleEndian.PutUint32(idx[:], in.PreviousOutPoint.Index)
		buf.Write(idx[:])
		_ = wire.WriteVarBytes(&buf, prevScript)
		var amt [8]byte
		binary.LittleEndian.PutUint64(amt[:], uint64(amount))
		buf.Write(amt[:])
		var seq [4]byte
		binary.LittleEndian.PutUint32(seq[:], in.Sequence)
		buf.Write(seq[:])
	}

	return blake2bPersonalized(sigHashPersonal(branchID), buf.Bytes())
}

// legacySprout computes the pre-Overwinter (Bitcoin-style) signature hash:
// a serialization of the transaction with SIGHASH_* input rewriting rules
// applied and the JoinSplit signature zeroed.
func (c *SighashCache) legacySprout(inputIndex int, hashType SigHashType, prevScript []byte) chainhash.Hash {
	txCopy := c.tx.Copy()
	txCopy.JoinSplitSig = [64]byte{}

	if hashType&0x1f == SigHashNone {
		for i := range txCopy.TxOut {
			txCopy.TxOut[i] = &wire.TxOut{Value: -1}
		}
		for i := range txCopy.TxIn {
			if i != inputIndex {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	} else if hashType&0x1f == SigHashSingle {
		if inputIndex < len(txCopy.TxOut) {
			for i := inputIndex + 1; i < len(txCopy.TxOut); i++ {
				txCopy.TxOut[i] = &wire.TxOut{Value: -1}
			}
			for i := 0; i < inputIndex; i++ {
				txCopy.TxOut[i] = &wire.TxOut{}
			}
		}
		for i := range txCopy.TxIn {
			if i != inputIndex {
				txCopy.TxIn[i].Sequence = 0
			}
		}
	}

	if hashType&SigHashAnyOneCanPay != 0 {
		if inputIndex < len(txCopy.TxIn) {
			txCopy.TxIn = []*wire.TxIn{txCopy.TxIn[inputIndex]}
		}
	} else {
		for i, in := range txCopy.TxIn {
			if i == inputIndex {
				in.SignatureScript = prevScript
			} else {
				in.SignatureScript = nil
			}
		}
	}

	var buf bytes.Buffer
	_ = txCopy.BtcEncode(&buf, wire.ProtocolVersion)
	var ht [4]byte
	binary.LittleEndian.PutUint32(ht[:], uint32(hashType))
	buf.Write(ht[:])

	return chainhash.DoubleHashH(buf.Bytes())
}
