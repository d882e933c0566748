// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/parityzec/zecnode/blockchain"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
)

// VerificationLevel selects how much of the acceptor pipeline runs.
type VerificationLevel int

const (
	// Full runs every acceptor check, including script evaluation.
	Full VerificationLevel = iota
	// Header runs header and structural checks but skips script
	// evaluation.
	Header
	// NoVerification skips everything; Verify must return immediately
	// without even pre-verifying.
	NoVerification
)

// Mode distinguishes block-context acceptance (BIP-30 enforced) from
// mempool acceptance (BIP-30 skipped, since the tx isn't part of any block
// yet, and sigops re-checked against the standalone per-tx limit).
type Mode int

const (
	BlockMode Mode = iota
	MempoolMode
)

// Store is the subset of blockchain.ChainStore the acceptor needs: output
// resolution, nullifier membership, transaction-meta (for maturity and
// double-spend checks), and network parameters.
type Store interface {
	Transaction(hash chainhash.Hash) (*wire.MsgTx, error)
	TxMeta(hash chainhash.Hash) (*blockchain.TxMeta, error)
	HasNullifier(epoch blockchain.Epoch, h chainhash.Hash) bool
	Params() *chaincfg.Params
	BestHeight() int32
}

// medianTimePast returns the median timestamp of recentHeaders, which the
// caller must supply most-recent-first and already limited to at most the
// last 11 headers.
func medianTimePast(recentHeaders []*wire.BlockHeader) time.Time {
	times := make([]time.Time, len(recentHeaders))
	for i, h := range recentHeaders {
		times[i] = h.Timestamp
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	return times[len(times)/2]
}

// HeaderAcceptor checks a header against its parent's context: minimum
// version, the expected retarget bits, and (once CSV is active) that its
// timestamp exceeds the median of the previous headers.
func HeaderAcceptor(header *wire.BlockHeader, recentHeaders []*wire.BlockHeader, expectedBits uint32, height int32, params *chaincfg.Params) error {
	const minHeaderVersion = 4
	if header.Version < minHeaderVersion {
		return blockchain.RuleError{ErrorCode: blockchain.ErrOldVersionBlock, Description: "header version below minimum"}
	}
	if header.Bits != expectedBits {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadDifficultyBits, Description: "header bits does not match expected retarget"}
	}

	csv := params.Deployments[chaincfg.DeploymentCSV]
	if csv.MinActivationHeight != 0 && uint32(height) >= csv.MinActivationHeight && len(recentHeaders) > 0 {
		mtp := medianTimePast(recentHeaders)
		if !header.Timestamp.After(mtp) {
			return blockchain.RuleError{ErrorCode: blockchain.ErrTimeTooNew, Description: "header time does not exceed median time past"}
		}
	}
	return nil
}

// BlockAcceptor checks a block's contextual rules: the coinbase must not
// pay more than subsidy+fees, the founders' reward output (if any applies
// at this height) must be present and exact, and the header's
// FinalSaplingRoot must match the Sapling tree root after this block's
// outputs are appended to the parent's snapshot.
func BlockAcceptor(block *wire.MsgBlock, height int32, fees int64, saplingRootAfter chainhash.Hash, params *chaincfg.Params) error {
	subsidy := params.CalcBlockSubsidy(height)

	var coinbaseOut int64
	coinbase := block.Transactions[0]
	for _, out := range coinbase.TxOut {
		coinbaseOut += out.Value
	}
	if coinbaseOut > subsidy+fees {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadFee, Description: "coinbase pays more than subsidy plus fees"}
	}

	if script, amount, ok := params.FounderRewardScript(height); ok {
		var found bool
		for _, out := range coinbase.TxOut {
			if out.Value == amount && bytes.Equal(out.PkScript, script) {
				found = true
				break
			}
		}
		if !found {
			return blockchain.RuleError{ErrorCode: blockchain.ErrMissingFounderReward, Description: "founders reward output missing or incorrect"}
		}
	}

	if block.Header.FinalSaplingRoot != saplingRootAfter {
		return blockchain.RuleError{ErrorCode: blockchain.ErrBadSaplingRoot, Description: "final sapling root does not match computed tree root"}
	}

	return nil
}

// scriptFlagsForHeight derives the txscript evaluation flags active at
// height from the network's BIP activation points and CSV deployment,
// matching the upstream rule that these gate on block height (BIP0065/66)
// or time (BIP0016) rather than a single blanket flag set.
func scriptFlagsForHeight(height int32, blockTime time.Time, params *chaincfg.Params) txscript.ScriptFlags {
	var flags txscript.ScriptFlags
	if blockTime.Unix() >= params.BIP0016Time {
		flags |= txscript.ScriptBip16
	}
	if height >= params.BIP0065Height {
		flags |= txscript.ScriptVerifyCheckLockTimeVerify
	}
	if height >= params.BIP0066Height {
		flags |= txscript.ScriptVerifyDERSignatures
	}
	csv := params.Deployments[chaincfg.DeploymentCSV]
	if csv.MinActivationHeight != 0 && uint32(height) >= csv.MinActivationHeight {
		flags |= txscript.ScriptVerifyCheckSequenceVerify
	}
	return flags
}

// InputIndexError reports which input within a transaction failed script
// evaluation, mirroring spec's Transaction.Signature(index, ScriptError).
type InputIndexError struct {
	Index int
	Err   error
}

func (e *InputIndexError) Error() string {
	return fmt.Sprintf("input %d: %v", e.Index, e.Err)
}

func (e *InputIndexError) Unwrap() error { return e.Err }

// resolvedInput is a transaction input together with the output it spends.
type resolvedInput struct {
	in     *wire.TxIn
	output *wire.TxOut
	height int32 // height of the block containing the spent output, for maturity
}

// AcceptTransaction runs the ordered, short-circuiting TransactionAcceptor
// checks against store and any transactions already pending earlier in the
// same candidate block (pendingBlock may be nil outside of block context).
func AcceptTransaction(tx *wire.MsgTx, store Store, pendingBlock map[chainhash.Hash]*wire.MsgTx, mode Mode, level VerificationLevel, height int32, blockTime time.Time, branchID uint32) error {
	params := store.Params()

	// 1. Size, already bounded at pre-verify time against the network
	// maximum; nothing further to check here per this network's fixed
	// per-tx limit.

	txHash := tx.TxHash()

	// 2. BIP-30: skip entirely in mempool mode.
	if mode == BlockMode {
		if meta, err := store.TxMeta(txHash); err == nil && meta != nil {
			for _, spent := range meta.SpentBits {
				if !spent {
					return blockchain.RuleError{ErrorCode: blockchain.ErrUnspentTxWithSameHash, Description: "unspent transaction with the same hash already exists"}
				}
			}
		}
	}

	if tx.IsCoinBase() {
		return nil
	}

	// 3. Missing inputs: resolve every prevout against the duplex view.
	resolved := make([]resolvedInput, len(tx.TxIn))
	for i, in := range tx.TxIn {
		var (
			prevTx     *wire.MsgTx
			prevHeight int32 = -1
		)
		if pendingBlock != nil {
			if t, ok := pendingBlock[in.PreviousOutPoint.Hash]; ok {
				prevTx = t
				prevHeight = height
			}
		}
		if prevTx == nil {
			t, err := store.Transaction(in.PreviousOutPoint.Hash)
			if err != nil {
				return blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "input references unknown transaction"}
			}
			prevTx = t
			if meta, err := store.TxMeta(in.PreviousOutPoint.Hash); err == nil && meta != nil {
				prevHeight = meta.Height
			}
		}
		if int(in.PreviousOutPoint.Index) >= len(prevTx.TxOut) {
			return blockchain.RuleError{ErrorCode: blockchain.ErrMissingTxOut, Description: "input references out-of-range output index"}
		}
		resolved[i] = resolvedInput{
			in:     in,
			output: prevTx.TxOut[in.PreviousOutPoint.Index],
			height: prevHeight,
		}
		if prevTx.IsCoinBase() {
			// 4. Maturity: coinbase outputs spendable only after
			// CoinbaseMaturity confirmations.
			if prevHeight >= 0 && height-prevHeight < int32(params.CoinbaseMaturity) {
				return blockchain.RuleError{ErrorCode: blockchain.ErrImmatureSpend, Description: "spend of immature coinbase output"}
			}
		}
	}

	// 5. Value conservation.
	var inputSum int64
	var err error
	for _, r := range resolved {
		inputSum, err = checkedAdd(inputSum, r.output.Value)
		if err != nil {
			return err
		}
	}
	if err := CheckValueConservation(tx, inputSum); err != nil {
		return err
	}

	// 6. Double-spend / nullifier checks.
	for _, r := range resolved {
		meta, err := store.TxMeta(r.in.PreviousOutPoint.Hash)
		if err == nil && meta != nil {
			idx := int(r.in.PreviousOutPoint.Index)
			if idx < len(meta.SpentBits) && meta.SpentBits[idx] {
				return blockchain.RuleError{ErrorCode: blockchain.ErrDoubleSpend, Description: "input already spent"}
			}
		}
	}
	for _, js := range tx.JoinSplits {
		for _, n := range js.Nullifiers {
			if store.HasNullifier(blockchain.EpochSprout, n) {
				return blockchain.RuleError{ErrorCode: blockchain.ErrDuplicateNullifierSpend, Description: "sprout nullifier already revealed"}
			}
		}
	}
	if tx.Sapling != nil {
		for _, sp := range tx.Sapling.Spends {
			if store.HasNullifier(blockchain.EpochSapling, sp.Nullifier) {
				return blockchain.RuleError{ErrorCode: blockchain.ErrDuplicateNullifierSpend, Description: "sapling nullifier already revealed"}
			}
		}
	}

	// 7. Sigops, mempool mode only (block-wide sigops already bounded at
	// pre-verify time).
	if mode == MempoolMode {
		var sigOps int64
		for _, out := range tx.TxOut {
			sigOps += int64(txscript.GetSigOpCount(out.PkScript))
		}
		for _, in := range tx.TxIn {
			sigOps += int64(txscript.GetSigOpCount(in.SignatureScript))
		}
		if sigOps > params.MaxBlockSigOps/10 {
			return blockchain.RuleError{ErrorCode: blockchain.ErrTooManySigOps, Description: "standalone transaction exceeds mempool sigop limit"}
		}
	}

	// 8. Script evaluation, unless verification level is Header or
	// NoVerification.
	if level == Full {
		cache := NewSighashCache(tx)
		flags := scriptFlagsForHeight(height, blockTime, params)
		for i, r := range resolved {
			if err := evaluateScript(i, r, cache, branchID, flags); err != nil {
				return &InputIndexError{Index: i, Err: err}
			}
		}
	}

	return nil
}

// evaluateScript verifies a transparent input's scriptSig against its
// resolved prevout: the scriptSig must be a push-only sequence carrying
// exactly a signature and a public key (the standard P2PK/P2PKH shape;
// bare multisig and other templates are not supported), the public key
// must parse, and the signature must verify against the ZIP-143/243
// signature digest for this input under the active consensus branch. Of
// the flags derived by scriptFlagsForHeight only ScriptVerifyDERSignatures
// is consulted, and it selects how the signature is parsed: once DER-only
// enforcement is active, a non-strict-DER encoding is rejected outright
// rather than deferred to btcec's lenient parser.
func evaluateScript(inputIndex int, r resolvedInput, cache *SighashCache, branchID uint32, flags txscript.ScriptFlags) error {
	if len(r.output.PkScript) == 0 {
		return nil
	}

	pushes, err := txscript.PushedData(r.in.SignatureScript)
	if err != nil {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "scriptSig is not a valid push-only script"}
	}
	if len(pushes) != 2 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "scriptSig does not carry exactly a signature and a public key"}
	}

	sigWithType := pushes[0]
	pubKeyBytes := pushes[1]
	if len(sigWithType) == 0 {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "signature push is empty"}
	}

	hashType := SigHashType(sigWithType[len(sigWithType)-1])
	rawSig := sigWithType[:len(sigWithType)-1]

	var sig *ecdsa.Signature
	if flags&txscript.ScriptVerifyDERSignatures != 0 {
		sig, err = ecdsa.ParseDERSignature(rawSig)
	} else {
		sig, err = ecdsa.ParseSignature(rawSig)
	}
	if err != nil {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "malformed signature encoding"}
	}

	pubKey, err := btcec.ParsePubKey(pubKeyBytes)
	if err != nil {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "malformed public key encoding"}
	}

	digest := cache.SignatureDigest(inputIndex, hashType, branchID, r.output.PkScript, r.output.Value)
	if !sig.Verify(digest[:], pubKey) {
		return blockchain.RuleError{ErrorCode: blockchain.ErrScriptValidation, Description: "signature does not verify against resolved output"}
	}
	return nil
}
