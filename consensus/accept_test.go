// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory Store used to exercise AcceptTransaction
// without standing up a real ChainStore/ffldb instance.
type fakeStore struct {
	txs    map[chainhash.Hash]*wire.MsgTx
	metas  map[chainhash.Hash]*blockchain.TxMeta
	nulls  map[blockchain.Epoch]map[chainhash.Hash]struct{}
	params *chaincfg.Params
	height int32
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		txs:    make(map[chainhash.Hash]*wire.MsgTx),
		metas:  make(map[chainhash.Hash]*blockchain.TxMeta),
		nulls:  map[blockchain.Epoch]map[chainhash.Hash]struct{}{},
		params: &chaincfg.RegtestParams,
	}
}

func (f *fakeStore) Transaction(hash chainhash.Hash) (*wire.MsgTx, error) {
	if tx, ok := f.txs[hash]; ok {
		return tx, nil
	}
	return nil, blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "not found"}
}

func (f *fakeStore) TxMeta(hash chainhash.Hash) (*blockchain.TxMeta, error) {
	return f.metas[hash], nil
}

func (f *fakeStore) HasNullifier(epoch blockchain.Epoch, h chainhash.Hash) bool {
	set, ok := f.nulls[epoch]
	if !ok {
		return false
	}
	_, ok = set[h]
	return ok
}

func (f *fakeStore) Params() *chaincfg.Params { return f.params }
func (f *fakeStore) BestHeight() int32        { return f.height }

func prevTxWithOutput(value int64) (*wire.MsgTx, chainhash.Hash) {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	tx.AddTxOut(&wire.TxOut{Value: value, PkScript: []byte{}})
	return tx, tx.TxHash()
}

func TestAcceptTransactionMissingInputFails(t *testing.T) {
	store := newFakeStore()
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: chainhash.Hash{1}, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 100})

	err := AcceptTransaction(tx, store, nil, BlockMode, Header, 10, time.Time{}, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrMissingTxOut))
}

func TestAcceptTransactionResolvesOutputsAndConservesValue(t *testing.T) {
	store := newFakeStore()
	prevTx, prevHash := prevTxWithOutput(1000)
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: true, Height: 0, SpentBits: []bool{false}}
	store.height = 200

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})

	err := AcceptTransaction(tx, store, nil, BlockMode, Header, 200, time.Time{}, 0)
	require.NoError(t, err)
}

func TestAcceptTransactionImmatureCoinbaseSpendFails(t *testing.T) {
	store := newFakeStore()
	prevTx, prevHash := prevTxWithOutput(1000)
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: true, Height: 5, SpentBits: []bool{false}}
	store.height = 10

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})

	err := AcceptTransaction(tx, store, nil, BlockMode, Header, 10, time.Time{}, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrImmatureSpend))
}

func TestAcceptTransactionDoubleSpendFails(t *testing.T) {
	store := newFakeStore()
	prevTx, prevHash := prevTxWithOutput(1000)
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: false, Height: 0, SpentBits: []bool{true}}

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})

	err := AcceptTransaction(tx, store, nil, BlockMode, Header, 100, time.Time{}, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrDoubleSpend))
}

func TestAcceptTransactionDuplicateNullifierFails(t *testing.T) {
	store := newFakeStore()
	store.nulls[blockchain.EpochSprout] = map[chainhash.Hash]struct{}{{9}: {}}
	prevTx, prevHash := prevTxWithOutput(1000)
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: false, Height: 0, SpentBits: []bool{false}}

	tx := wire.NewMsgTx(2)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: 900})
	tx.JoinSplits = []*wire.JSDescription{{Nullifiers: [2]chainhash.Hash{{9}, {}}}}

	err := AcceptTransaction(tx, store, nil, BlockMode, Header, 100, time.Time{}, 0)
	require.True(t, blockchain.IsErrorCode(err, blockchain.ErrDuplicateNullifierSpend))
}

// signedSpend builds a transaction spending prevOut, signed with signKey.
// advertisedKey is the public key carried in the scriptSig; passing a key
// other than signKey's own produces a scriptSig whose signature does not
// match its advertised public key.
func signedSpend(t *testing.T, signKey *btcec.PrivateKey, advertisedKey *btcec.PublicKey, prevOut *wire.TxOut, prevHash chainhash.Hash, outValue int64, branchID uint32) *wire.MsgTx {
	t.Helper()
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Hash: prevHash, Index: 0}})
	tx.AddTxOut(&wire.TxOut{Value: outValue, PkScript: []byte{}})

	digest := NewSighashCache(tx).SignatureDigest(0, SigHashAll, branchID, prevOut.PkScript, prevOut.Value)
	sig := ecdsa.Sign(signKey, digest[:])

	sigScript := append(sig.Serialize(), byte(SigHashAll))
	builder := txscript.NewScriptBuilder().AddData(sigScript).AddData(advertisedKey.SerializeCompressed())
	script, err := builder.Script()
	require.NoError(t, err)
	tx.TxIn[0].SignatureScript = script
	return tx
}

func TestAcceptTransactionVerifiesSignature(t *testing.T) {
	store := newFakeStore()
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	prevTx := wire.NewMsgTx(1)
	prevTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	prevTx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x51}})
	prevHash := prevTx.TxHash()
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: false, Height: 0, SpentBits: []bool{false}}

	tx := signedSpend(t, privKey, privKey.PubKey(), prevTx.TxOut[0], prevHash, 900, 0)

	err = AcceptTransaction(tx, store, nil, BlockMode, Full, 100, time.Time{}, 0)
	require.NoError(t, err)
}

func TestAcceptTransactionBadSignatureFails(t *testing.T) {
	store := newFakeStore()
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)
	wrongKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	prevTx := wire.NewMsgTx(1)
	prevTx.AddTxIn(&wire.TxIn{PreviousOutPoint: wire.OutPoint{Index: 0xffffffff}})
	prevTx.AddTxOut(&wire.TxOut{Value: 1000, PkScript: []byte{0x51}})
	prevHash := prevTx.TxHash()
	store.txs[prevHash] = prevTx
	store.metas[prevHash] = &blockchain.TxMeta{IsCoinBase: false, Height: 0, SpentBits: []bool{false}}

	// Signed with privKey but advertises wrongKey's public key, so
	// verification fails against the mismatched key.
	tx := signedSpend(t, privKey, wrongKey.PubKey(), prevTx.TxOut[0], prevHash, 900, 0)

	err = AcceptTransaction(tx, store, nil, BlockMode, Full, 100, time.Time{}, 0)
	var inputErr *InputIndexError
	require.ErrorAs(t, err, &inputErr)
	require.Equal(t, 0, inputErr.Index)
	require.True(t, blockchain.IsErrorCode(inputErr.Err, blockchain.ErrScriptValidation))
}
