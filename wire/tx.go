// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Overwinter / Sapling version markers. The high bit of the tx version
// field signals the overwintered flag; the low 31 bits carry the version.
const (
	TxVersionOverwinterFlag = 1 << 31
	TxVersionSprout         = 1
	TxVersionOverwinter     = 3
	TxVersionSapling        = 4

	OverwinterVersionGroupID = 0x03C48270
	SaplingVersionGroupID    = 0x892F2085

	// maxTxInPerMessage / maxTxOutPerMessage bound the number of inputs
	// and outputs that can appear in a single transaction on the wire.
	maxTxInPerMessage  = MaxMessagePayload/41 + 1
	maxTxOutPerMessage = MaxMessagePayload/9 + 1

	// joinSplitPHGRProofSize is the size of a PHGR13 proof (pre-Sapling).
	joinSplitPHGRProofSize = 296

	// joinSplitGrothProofSize is the size of a Groth16 proof (Sapling+).
	joinSplitGrothProofSize = 192

	// joinSplitCiphertextSize is the size of one note ciphertext.
	joinSplitCiphertextSize = 601

	saplingSpendProofSize  = 192
	saplingSpendAuthSigLen = 64
	saplingOutputProofSize = 192
	saplingEncCiphertextSize = 580
	saplingOutCiphertextSize = 80
	bindingSigSize           = 64
)

// OutPoint defines a Zcash transaction outpoint (previous tx hash and
// output index).
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// String returns a human-readable "hash:index" form.
func (o OutPoint) String() string {
	return fmt.Sprintf("%s:%d", o.Hash, o.Index)
}

// TxIn defines a Zcash transparent transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes this input would occupy on the
// wire.
func (t *TxIn) SerializeSize() int {
	return 32 + 4 + VarIntSerializeSize(uint64(len(t.SignatureScript))) + len(t.SignatureScript) + 4
}

// TxOut defines a Zcash transparent transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes this output would occupy on the
// wire.
func (t *TxOut) SerializeSize() int {
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// JSDescription is a single Sprout JoinSplit description. ZkProof holds
// either a 296-byte PHGR13 proof (pre-Sapling) or a 192-byte Groth16 proof
// (Sapling+), chosen by the transaction's version.
type JSDescription struct {
	VPubOld       uint64
	VPubNew       uint64
	Anchor        chainhash.Hash
	Nullifiers    [2]chainhash.Hash
	Commitments   [2]chainhash.Hash
	EphemeralKey  [32]byte
	RandomSeed    [32]byte
	Macs          [2][32]byte
	ZkProof       []byte
	Ciphertexts   [2][joinSplitCiphertextSize]byte
}

// SaplingSpendDescription describes a Sapling shielded spend.
type SaplingSpendDescription struct {
	CV           [32]byte
	Anchor       chainhash.Hash
	Nullifier    chainhash.Hash
	RK           [32]byte
	ZkProof      [saplingSpendProofSize]byte
	SpendAuthSig [saplingSpendAuthSigLen]byte
}

// SaplingOutputDescription describes a Sapling shielded output.
type SaplingOutputDescription struct {
	CV            [32]byte
	Cmu           chainhash.Hash
	EphemeralKey  [32]byte
	EncCiphertext [saplingEncCiphertextSize]byte
	OutCiphertext [saplingOutCiphertextSize]byte
	ZkProof       [saplingOutputProofSize]byte
}

// SaplingBundle groups all Sapling shielded fields of a transaction.
type SaplingBundle struct {
	Spends         []*SaplingSpendDescription
	Outputs        []*SaplingOutputDescription
	BalancingValue int64 // valueBalanceSapling, signed
	BindingSig     [bindingSigSize]byte
}

// MsgTx implements the Message interface and represents a Zcash transaction,
// carrying optional Sprout JoinSplit and Sapling shielded bundles alongside
// the ordinary transparent inputs/outputs.
type MsgTx struct {
	Version         int32 // signed; high bit via Overwintered flag, not the int
	Overwintered    bool
	VersionGroupID  uint32
	TxIn            []*TxIn
	TxOut           []*TxOut
	LockTime        uint32
	ExpiryHeight    uint32
	JoinSplits      []*JSDescription
	JoinSplitPubKey [32]byte
	JoinSplitSig    [64]byte
	Sapling         *SaplingBundle
}

// NewMsgTx returns a new, empty MsgTx of the given consensus version.
func NewMsgTx(version int32) *MsgTx {
	return &MsgTx{Version: version}
}

// usesGrothProofs reports whether this tx's JoinSplit proofs are Groth16
// (true from Sapling onward) or PHGR13 (Sprout/Overwinter).
func (msg *MsgTx) usesGrothProofs() bool {
	return msg.Overwintered && msg.VersionGroupID == SaplingVersionGroupID
}

// AddTxIn adds a transparent input to the transaction.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transparent output to the transaction.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// IsCoinBase determines whether this transaction is a coinbase: exactly one
// input, with a null previous outpoint.
func (msg *MsgTx) IsCoinBase() bool {
	if len(msg.TxIn) != 1 {
		return false
	}
	prevOut := &msg.TxIn[0].PreviousOutPoint
	return prevOut.Index == ^uint32(0) && prevOut.Hash == chainhash.Hash{}
}

// HasSprout reports whether the tx carries any Sprout JoinSplit descriptions.
func (msg *MsgTx) HasSprout() bool { return len(msg.JoinSplits) > 0 }

// HasSapling reports whether the tx carries a (non-empty) Sapling bundle.
func (msg *MsgTx) HasSapling() bool {
	return msg.Sapling != nil && (len(msg.Sapling.Spends) > 0 || len(msg.Sapling.Outputs) > 0)
}

// TxHash computes the double-SHA256 identity hash of the transaction over
// its canonical encoding.
func (msg *MsgTx) TxHash() chainhash.Hash {
	var buf bytes.Buffer
	_ = msg.BtcEncode(&buf, 0)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy returns a deep copy of the transaction.
func (msg *MsgTx) Copy() *MsgTx {
	var buf bytes.Buffer
	_ = msg.BtcEncode(&buf, 0)
	clone := &MsgTx{}
	_ = clone.BtcDecode(bytes.NewReader(buf.Bytes()), 0)
	return clone
}

// SerializeSize returns the number of bytes of the transaction's canonical
// encoding.
func (msg *MsgTx) SerializeSize() int {
	var buf bytes.Buffer
	_ = msg.BtcEncode(&buf, 0)
	return buf.Len()
}

// Command returns the protocol command string for a transaction message.
func (msg *MsgTx) Command() string { return CmdTx }

// MaxPayloadLength returns the maximum length the payload of a tx message
// can be.
func (msg *MsgTx) MaxPayloadLength(pver uint32) uint32 { return MaxMessagePayload }

// headerWord encodes the version int32 with the overwintered high bit folded in.
func (msg *MsgTx) headerWord() uint32 {
	h := uint32(msg.Version)
	if msg.Overwintered {
		h |= TxVersionOverwinterFlag
	}
	return h
}

func (msg *MsgTx) setHeaderWord(h uint32) {
	msg.Overwintered = h&TxVersionOverwinterFlag != 0
	msg.Version = int32(h &^ TxVersionOverwinterFlag)
}

// BtcEncode writes the canonical Zcash transaction encoding to w.
func (msg *MsgTx) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.headerWord()); err != nil {
		return err
	}
	if msg.Overwintered {
		if err := writeElement(w, msg.VersionGroupID); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeElement(w, ti.PreviousOutPoint.Hash); err != nil {
			return err
		}
		if err := writeElement(w, ti.PreviousOutPoint.Index); err != nil {
			return err
		}
		if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
			return err
		}
		if err := writeElement(w, ti.Sequence); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := writeElement(w, to.Value); err != nil {
			return err
		}
		if err := WriteVarBytes(w, to.PkScript); err != nil {
			return err
		}
	}

	if err := writeElement(w, msg.LockTime); err != nil {
		return err
	}

	if msg.Overwintered {
		if err := writeElement(w, msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.Overwintered && msg.VersionGroupID == SaplingVersionGroupID {
		var bal int64
		var spends, outputs uint64
		if msg.Sapling != nil {
			bal = msg.Sapling.BalancingValue
			spends = uint64(len(msg.Sapling.Spends))
			outputs = uint64(len(msg.Sapling.Outputs))
		}
		if err := writeElement(w, bal); err != nil {
			return err
		}
		if err := WriteVarInt(w, spends); err != nil {
			return err
		}
		if msg.Sapling != nil {
			for _, sp := range msg.Sapling.Spends {
				if err := writeSaplingSpend(w, sp); err != nil {
					return err
				}
			}
		}
		if err := WriteVarInt(w, outputs); err != nil {
			return err
		}
		if msg.Sapling != nil {
			for _, op := range msg.Sapling.Outputs {
				if err := writeSaplingOutput(w, op); err != nil {
					return err
				}
			}
		}
	}

	if msg.Version >= 2 {
		if err := WriteVarInt(w, uint64(len(msg.JoinSplits))); err != nil {
			return err
		}
		if len(msg.JoinSplits) > 0 {
			groth := msg.usesGrothProofs()
			for _, js := range msg.JoinSplits {
				if err := writeJoinSplit(w, js, groth); err != nil {
					return err
				}
			}
			if err := writeElement(w, msg.JoinSplitPubKey); err != nil {
				return err
			}
			if err := writeElement(w, msg.JoinSplitSig); err != nil {
				return err
			}
		}
	}

	if msg.Overwintered && msg.VersionGroupID == SaplingVersionGroupID &&
		msg.Sapling != nil && (len(msg.Sapling.Spends) > 0 || len(msg.Sapling.Outputs) > 0) {
		if err := writeElement(w, msg.Sapling.BindingSig); err != nil {
			return err
		}
	}

	return nil
}

// BtcDecode reads the canonical Zcash transaction encoding from r.
func (msg *MsgTx) BtcDecode(r io.Reader, pver uint32) error {
	var header uint32
	if err := readElement(r, &header); err != nil {
		return err
	}
	msg.setHeaderWord(header)

	if msg.Overwintered {
		if err := readElement(r, &msg.VersionGroupID); err != nil {
			return err
		}
	}

	txInCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txInCount > uint64(maxTxInPerMessage) {
		return fmt.Errorf("too many transaction inputs: %d", txInCount)
	}
	msg.TxIn = make([]*TxIn, txInCount)
	for i := range msg.TxIn {
		ti := &TxIn{}
		if err := readElement(r, &ti.PreviousOutPoint.Hash); err != nil {
			return err
		}
		if err := readElement(r, &ti.PreviousOutPoint.Index); err != nil {
			return err
		}
		script, err := ReadVarBytes(r, MaxMessagePayload, "signature script")
		if err != nil {
			return err
		}
		ti.SignatureScript = script
		if err := readElement(r, &ti.Sequence); err != nil {
			return err
		}
		msg.TxIn[i] = ti
	}

	txOutCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if txOutCount > uint64(maxTxOutPerMessage) {
		return fmt.Errorf("too many transaction outputs: %d", txOutCount)
	}
	msg.TxOut = make([]*TxOut, txOutCount)
	for i := range msg.TxOut {
		to := &TxOut{}
		if err := readElement(r, &to.Value); err != nil {
			return err
		}
		script, err := ReadVarBytes(r, MaxMessagePayload, "pk script")
		if err != nil {
			return err
		}
		to.PkScript = script
		msg.TxOut[i] = to
	}

	if err := readElement(r, &msg.LockTime); err != nil {
		return err
	}

	if msg.Overwintered {
		if err := readElement(r, &msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.Overwintered && msg.VersionGroupID == SaplingVersionGroupID {
		var bal int64
		if err := readElement(r, &bal); err != nil {
			return err
		}
		bundle := &SaplingBundle{BalancingValue: bal}

		nSpends, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < nSpends; i++ {
			sp, err := readSaplingSpend(r)
			if err != nil {
				return err
			}
			bundle.Spends = append(bundle.Spends, sp)
		}

		nOutputs, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		for i := uint64(0); i < nOutputs; i++ {
			op, err := readSaplingOutput(r)
			if err != nil {
				return err
			}
			bundle.Outputs = append(bundle.Outputs, op)
		}
		msg.Sapling = bundle
	}

	if msg.Version >= 2 {
		nJoinSplit, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if nJoinSplit > 0 {
			groth := msg.usesGrothProofs()
			msg.JoinSplits = make([]*JSDescription, nJoinSplit)
			for i := range msg.JoinSplits {
				js, err := readJoinSplit(r, groth)
				if err != nil {
					return err
				}
				msg.JoinSplits[i] = js
			}
			if err := readElement(r, &msg.JoinSplitPubKey); err != nil {
				return err
			}
			if err := readElement(r, &msg.JoinSplitSig); err != nil {
				return err
			}
		}
	}

	if msg.Overwintered && msg.VersionGroupID == SaplingVersionGroupID &&
		msg.Sapling != nil && (len(msg.Sapling.Spends) > 0 || len(msg.Sapling.Outputs) > 0) {
		if err := readElement(r, &msg.Sapling.BindingSig); err != nil {
			return err
		}
	}

	return nil
}

func writeJoinSplit(w io.Writer, js *JSDescription, groth bool) error {
	if err := writeElement(w, js.VPubOld); err != nil {
		return err
	}
	if err := writeElement(w, js.VPubNew); err != nil {
		return err
	}
	if err := writeElement(w, js.Anchor); err != nil {
		return err
	}
	for _, n := range js.Nullifiers {
		if err := writeElement(w, n); err != nil {
			return err
		}
	}
	for _, c := range js.Commitments {
		if err := writeElement(w, c); err != nil {
			return err
		}
	}
	if err := writeElement(w, js.EphemeralKey); err != nil {
		return err
	}
	if err := writeElement(w, js.RandomSeed); err != nil {
		return err
	}
	for _, m := range js.Macs {
		if err := writeElement(w, m); err != nil {
			return err
		}
	}
	proofSize := joinSplitPHGRProofSize
	if groth {
		proofSize = joinSplitGrothProofSize
	}
	if len(js.ZkProof) != proofSize {
		return fmt.Errorf("joinsplit proof is %d bytes, want %d", len(js.ZkProof), proofSize)
	}
	if _, err := w.Write(js.ZkProof); err != nil {
		return err
	}
	for _, ct := range js.Ciphertexts {
		if _, err := w.Write(ct[:]); err != nil {
			return err
		}
	}
	return nil
}

func readJoinSplit(r io.Reader, groth bool) (*JSDescription, error) {
	js := &JSDescription{}
	if err := readElement(r, &js.VPubOld); err != nil {
		return nil, err
	}
	if err := readElement(r, &js.VPubNew); err != nil {
		return nil, err
	}
	if err := readElement(r, &js.Anchor); err != nil {
		return nil, err
	}
	for i := range js.Nullifiers {
		if err := readElement(r, &js.Nullifiers[i]); err != nil {
			return nil, err
		}
	}
	for i := range js.Commitments {
		if err := readElement(r, &js.Commitments[i]); err != nil {
			return nil, err
		}
	}
	if err := readElement(r, &js.EphemeralKey); err != nil {
		return nil, err
	}
	if err := readElement(r, &js.RandomSeed); err != nil {
		return nil, err
	}
	for i := range js.Macs {
		if err := readElement(r, &js.Macs[i]); err != nil {
			return nil, err
		}
	}
	proofSize := joinSplitPHGRProofSize
	if groth {
		proofSize = joinSplitGrothProofSize
	}
	js.ZkProof = make([]byte, proofSize)
	if _, err := io.ReadFull(r, js.ZkProof); err != nil {
		return nil, err
	}
	for i := range js.Ciphertexts {
		if _, err := io.ReadFull(r, js.Ciphertexts[i][:]); err != nil {
			return nil, err
		}
	}
	return js, nil
}

func writeSaplingSpend(w io.Writer, sp *SaplingSpendDescription) error {
	if _, err := w.Write(sp.CV[:]); err != nil {
		return err
	}
	if err := writeElement(w, sp.Anchor); err != nil {
		return err
	}
	if err := writeElement(w, sp.Nullifier); err != nil {
		return err
	}
	if _, err := w.Write(sp.RK[:]); err != nil {
		return err
	}
	if _, err := w.Write(sp.ZkProof[:]); err != nil {
		return err
	}
	_, err := w.Write(sp.SpendAuthSig[:])
	return err
}

func readSaplingSpend(r io.Reader) (*SaplingSpendDescription, error) {
	sp := &SaplingSpendDescription{}
	if _, err := io.ReadFull(r, sp.CV[:]); err != nil {
		return nil, err
	}
	if err := readElement(r, &sp.Anchor); err != nil {
		return nil, err
	}
	if err := readElement(r, &sp.Nullifier); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, sp.RK[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, sp.ZkProof[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, sp.SpendAuthSig[:]); err != nil {
		return nil, err
	}
	return sp, nil
}

func writeSaplingOutput(w io.Writer, op *SaplingOutputDescription) error {
	if _, err := w.Write(op.CV[:]); err != nil {
		return err
	}
	if err := writeElement(w, op.Cmu); err != nil {
		return err
	}
	if _, err := w.Write(op.EphemeralKey[:]); err != nil {
		return err
	}
	if _, err := w.Write(op.EncCiphertext[:]); err != nil {
		return err
	}
	if _, err := w.Write(op.OutCiphertext[:]); err != nil {
		return err
	}
	_, err := w.Write(op.ZkProof[:])
	return err
}

func readSaplingOutput(r io.Reader) (*SaplingOutputDescription, error) {
	op := &SaplingOutputDescription{}
	if _, err := io.ReadFull(r, op.CV[:]); err != nil {
		return nil, err
	}
	if err := readElement(r, &op.Cmu); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, op.EphemeralKey[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, op.EncCiphertext[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, op.OutCiphertext[:]); err != nil {
		return nil, err
	}
	if _, err := io.ReadFull(r, op.ZkProof[:]); err != nil {
		return nil, err
	}
	return op, nil
}
