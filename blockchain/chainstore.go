// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockchain implements the transactional, forkable chain store:
// block/header/transaction/nullifier/tree persistence behind a
// column-partitioned key-value interface, plus the canonize/decanonize
// machinery that advances or retracts the canonical chain.
package blockchain

import (
	"bytes"
	"encoding/binary"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/database"
	"github.com/parityzec/zecnode/chaincfg"
	"github.com/parityzec/zecnode/wire"
)

// Column bucket names, one per logical column from spec.md §4.B. Kept as
// top-level buckets under the database's root metadata bucket.
var (
	bucketBlockHeaders      = []byte("block-headers")
	bucketBlockHashes       = []byte("block-hashes")   // height -> hash
	bucketBlockNumbers      = []byte("block-numbers")  // hash -> height
	bucketBlockTransactions = []byte("block-transactions")
	bucketTransactions      = []byte("transactions")
	bucketTransactionsMeta  = []byte("transactions-meta")
	bucketMeta              = []byte("meta")
	bucketSproutNullifiers  = []byte("sprout-nullifiers")
	bucketSaplingNullifiers = []byte("sapling-nullifiers")
	bucketTreeStates        = []byte("tree-states")
	bucketSproutBlockRoots  = []byte("sprout-block-roots")

	keyBestBlockHash   = []byte("best_block_hash")
	keyBestBlockNumber = []byte("best_block_number")
)

var allColumns = [][]byte{
	bucketBlockHeaders, bucketBlockHashes, bucketBlockNumbers,
	bucketBlockTransactions, bucketTransactions, bucketTransactionsMeta,
	bucketMeta, bucketSproutNullifiers, bucketSaplingNullifiers,
	bucketTreeStates, bucketSproutBlockRoots,
}

// TxMeta records, per canonical transaction, whether it is a coinbase, the
// height of the block that includes it, and which of its outputs have been
// spent.
type TxMeta struct {
	IsCoinBase bool
	Height     int32
	SpentBits  []bool
}

func (m *TxMeta) serialize() []byte {
	buf := make([]byte, 0, 9+len(m.SpentBits))
	var flags byte
	if m.IsCoinBase {
		flags = 1
	}
	buf = append(buf, flags)
	var h [4]byte
	binary.LittleEndian.PutUint32(h[:], uint32(m.Height))
	buf = append(buf, h[:]...)
	var n [4]byte
	binary.LittleEndian.PutUint32(n[:], uint32(len(m.SpentBits)))
	buf = append(buf, n[:]...)
	for _, b := range m.SpentBits {
		if b {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func deserializeTxMeta(data []byte) (*TxMeta, error) {
	if len(data) < 9 {
		return nil, ruleError(ErrMissingTxOut, "truncated tx meta")
	}
	m := &TxMeta{IsCoinBase: data[0] == 1, Height: int32(binary.LittleEndian.Uint32(data[1:5]))}
	n := binary.LittleEndian.Uint32(data[5:9])
	m.SpentBits = make([]bool, n)
	for i := uint32(0); i < n; i++ {
		m.SpentBits[i] = data[9+i] == 1
	}
	return m, nil
}

// BlockOrigin classifies an incoming header against the store's known
// chains.
type BlockOrigin int

const (
	// OriginKnownBlock indicates the block is already stored.
	OriginKnownBlock BlockOrigin = iota
	// OriginCanonChain indicates the block extends the current best chain.
	OriginCanonChain
	// OriginSideChain indicates the block extends a known but non-best
	// chain.
	OriginSideChain
	// OriginSideChainBecomingCanon indicates the side chain the block
	// extends would become the heaviest known chain.
	OriginSideChainBecomingCanon
)

// BlockOriginResult is the outcome of classifying a header via BlockOrigin.
type BlockOriginResult struct {
	Kind   BlockOrigin
	Height int32  // the block's height; for side-chain kinds, its height on that branch
	Origin chainhash.Hash // valid for side-chain kinds: the fork point
}

// storedBlock is the in-memory working copy of a non-canonical or canonical
// block entry: header, ordered tx list, and raw tx bodies. Persisted copies
// live in the column buckets; this mirrors what's on disk for blocks that
// have been inserted but whose ancestor chain we still need fast access to
// (e.g. computing fork depth).
type storedBlock struct {
	header   wire.BlockHeader
	txs      []*wire.MsgTx
	sproutRoot  chainhash.Hash
	saplingRoot chainhash.Hash
	height   int32 // -1 until canonized
}

// ChainStore is a transactional, forkable block chain database. It wraps a
// column-partitioned key-value engine (btcd's database.DB, normally backed
// by ffldb) with the nullifier sets and incremental note-commitment trees
// Zcash-style consensus needs on top of the plain UTXO bookkeeping.
type ChainStore struct {
	mu     sync.RWMutex
	db     database.DB
	params *chaincfg.Params

	// index mirrors the subset of chain topology needed for fork-depth
	// and ancestor walks without round-tripping through the KV engine
	// on every lookup.
	blocks map[chainhash.Hash]*storedBlock
	parent map[chainhash.Hash]chainhash.Hash

	sprout  map[chainhash.Hash]*CommitmentTree // keyed by block hash, tree after that block
	sapling map[chainhash.Hash]*CommitmentTree

	nullifiers *NullifierSet

	bestHash   chainhash.Hash
	bestHeight int32
}

// maxForkDepth is the largest number of side-chain blocks, counted by
// depthBelowBest from a new block's parent back to its fork point on the
// best chain, that BlockOriginOf accepts before it fails with
// ErrAncientFork.
const maxForkDepth = 2048

// New opens (or initializes) a chain store over db for the given network,
// seeding it with the network's genesis block if the store is empty.
func New(db database.DB, params *chaincfg.Params) (*ChainStore, error) {
	cs := &ChainStore{
		db:         db,
		params:     params,
		blocks:     make(map[chainhash.Hash]*storedBlock),
		parent:     make(map[chainhash.Hash]chainhash.Hash),
		sprout:     make(map[chainhash.Hash]*CommitmentTree),
		sapling:    make(map[chainhash.Hash]*CommitmentTree),
		nullifiers: NewNullifierSet(),
		bestHeight: -1,
	}

	err := db.Update(func(tx database.Tx) error {
		meta := tx.Metadata()
		for _, col := range allColumns {
			if _, err := meta.CreateBucketIfNotExists(col); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := cs.loadBestPointer(); err != nil {
		return nil, err
	}

	if cs.bestHeight < 0 {
		genesis := params.GenesisBlock
		if err := cs.Insert(genesis); err != nil {
			return nil, err
		}
		if err := cs.Canonize(genesis.BlockHash()); err != nil {
			return nil, err
		}
	}

	return cs, nil
}

func (cs *ChainStore) loadBestPointer() error {
	return cs.db.View(func(tx database.Tx) error {
		meta := tx.Metadata().Bucket(bucketMeta)
		hashBytes := meta.Get(keyBestBlockHash)
		if hashBytes == nil {
			cs.bestHeight = -1
			return nil
		}
		var h chainhash.Hash
		copy(h[:], hashBytes)
		cs.bestHash = h
		numBytes := meta.Get(keyBestBlockNumber)
		cs.bestHeight = int32(binary.LittleEndian.Uint32(numBytes))
		return nil
	})
}

// BestHash returns the tip of the heaviest known chain.
func (cs *ChainStore) BestHash() chainhash.Hash {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.bestHash
}

// BestHeight returns the height of the current best block, or -1 if the
// store is empty.
func (cs *ChainStore) BestHeight() int32 {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.bestHeight
}

// HaveBlock reports whether the given hash has been inserted, canonical or
// not.
func (cs *ChainStore) HaveBlock(hash chainhash.Hash) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	_, ok := cs.blocks[hash]
	return ok
}

// ParentOf returns the stored parent hash of a previously inserted block.
// Unlike the caller-side bookkeeping a sync client keeps for in-flight
// blocks, this link survives for as long as the block itself is stored
// (Canonize/Decanonize never touch it), so it is the right source of
// ancestry for a fork whose earlier blocks have already been individually
// processed and forgotten by the caller.
func (cs *ChainStore) ParentOf(hash chainhash.Hash) (chainhash.Hash, bool) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	p, ok := cs.parent[hash]
	return p, ok
}

// Insert stores a block's header and transactions. It is idempotent: a
// second Insert of the same block is a no-op. It fails with ErrUnknownParent
// unless the parent is already stored or is the zero hash (genesis). Insert
// appends this block's Sprout JoinSplit commitments and Sapling output
// commitments to the parent's tree snapshots (cloned, never mutated in
// place) and records the resulting roots.
func (cs *ChainStore) Insert(block *wire.MsgBlock) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	hash := block.BlockHash()
	if _, ok := cs.blocks[hash]; ok {
		return nil
	}

	var zero chainhash.Hash
	parentHash := block.Header.PrevBlock
	var sproutBase, saplingBase *CommitmentTree
	if parentHash == zero {
		sproutBase = NewCommitmentTree(cs.params.SproutTreeHeight)
		saplingBase = NewCommitmentTree(cs.params.SaplingTreeHeight)
	} else {
		if _, ok := cs.blocks[parentHash]; !ok {
			return ruleError(ErrUnknownParent, "parent block not stored")
		}
		sproutBase = cs.sprout[parentHash].Clone()
		saplingBase = cs.sapling[parentHash].Clone()
	}

	for _, txn := range block.Transactions {
		for _, js := range txn.JoinSplits {
			for _, cm := range js.Commitments {
				if err := sproutBase.Append(cm); err != nil {
					return err
				}
			}
		}
		if txn.Sapling != nil {
			for _, out := range txn.Sapling.Outputs {
				if err := saplingBase.Append(out.Cmu); err != nil {
					return err
				}
			}
		}
	}

	sb := &storedBlock{
		header:      block.Header,
		txs:         block.Transactions,
		sproutRoot:  sproutBase.Root(),
		saplingRoot: saplingBase.Root(),
		height:      -1,
	}

	if err := cs.persistBlock(hash, block); err != nil {
		return err
	}

	cs.blocks[hash] = sb
	cs.parent[hash] = parentHash
	cs.sprout[hash] = sproutBase
	cs.sapling[hash] = saplingBase

	return nil
}

func (cs *ChainStore) persistBlock(hash chainhash.Hash, block *wire.MsgBlock) error {
	var headerBuf bytes.Buffer
	if err := block.Header.BtcEncode(&headerBuf, wire.ProtocolVersion); err != nil {
		return err
	}

	hashList := make([]byte, 0, len(block.Transactions)*chainhash.HashSize)
	return cs.db.Update(func(tx database.Tx) error {
		meta := tx.Metadata()
		if err := meta.Bucket(bucketBlockHeaders).Put(hash[:], headerBuf.Bytes()); err != nil {
			return err
		}
		txBucket := meta.Bucket(bucketTransactions)
		for _, txn := range block.Transactions {
			txHash := txn.TxHash()
			hashList = append(hashList, txHash[:]...)
			var txBuf bytes.Buffer
			if err := txn.BtcEncode(&txBuf, wire.ProtocolVersion); err != nil {
				return err
			}
			if err := txBucket.Put(txHash[:], txBuf.Bytes()); err != nil {
				return err
			}
		}
		return meta.Bucket(bucketBlockTransactions).Put(hash[:], hashList)
	})
}

// Canonize advances the canonical chain by one block. It fails with
// ErrCannotCanonize unless hash is stored and its parent is the current
// best hash. It creates transaction-meta entries (the first transaction is
// marked coinbase), inserts nullifiers (failing on duplicates), flips the
// spend bit of every non-coinbase input's previous output, and finally
// moves the best-block pointer.
func (cs *ChainStore) Canonize(hash chainhash.Hash) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.canonizeLocked(hash)
}

func (cs *ChainStore) canonizeLocked(hash chainhash.Hash) error {
	sb, ok := cs.blocks[hash]
	if !ok {
		return ruleError(ErrCannotCanonize, "block not stored")
	}

	var zero chainhash.Hash
	isGenesis := sb.header.PrevBlock == zero && cs.bestHeight == -1
	if !isGenesis && sb.header.PrevBlock != cs.bestHash {
		return ruleError(ErrCannotCanonize, "block does not extend best chain")
	}

	height := cs.bestHeight + 1

	for i, txn := range sb.txs {
		txHash := txn.TxHash()
		tm := &TxMeta{IsCoinBase: i == 0, Height: height, SpentBits: make([]bool, len(txn.TxOut))}

		if i > 0 {
			for _, in := range txn.TxIn {
				prevMeta, err := cs.txMetaLocked(in.PreviousOutPoint.Hash)
				if err == nil && prevMeta != nil {
					idx := int(in.PreviousOutPoint.Index)
					if idx < len(prevMeta.SpentBits) {
						if prevMeta.SpentBits[idx] {
							cs.rollbackNullifiers(sb.txs[:i], txn)
							return ruleError(ErrDoubleSpend, "output already spent")
						}
						prevMeta.SpentBits[idx] = true
						if err := cs.putTxMetaLocked(in.PreviousOutPoint.Hash, prevMeta); err != nil {
							return err
						}
					}
				}
			}
			for _, js := range txn.JoinSplits {
				for _, n := range js.Nullifiers {
					if err := cs.nullifiers.Insert(EpochSprout, n); err != nil {
						return err
					}
				}
			}
			if txn.Sapling != nil {
				for _, sp := range txn.Sapling.Spends {
					if err := cs.nullifiers.Insert(EpochSapling, sp.Nullifier); err != nil {
						return err
					}
				}
			}
		}

		if err := cs.putTxMetaLocked(txHash, tm); err != nil {
			return err
		}
	}

	sb.height = height
	cs.bestHash = hash
	cs.bestHeight = height

	return cs.db.Update(func(tx database.Tx) error {
		meta := tx.Metadata()
		var hbuf [4]byte
		binary.LittleEndian.PutUint32(hbuf[:], uint32(height))
		if err := meta.Bucket(bucketBlockHashes).Put(hbuf[:], hash[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketBlockNumbers).Put(hash[:], hbuf[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketMeta).Put(keyBestBlockHash, hash[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketMeta).Put(keyBestBlockNumber, hbuf[:]); err != nil {
			return err
		}
		sproutRoot := sb.sproutRoot
		saplingRoot := sb.saplingRoot
		if err := meta.Bucket(bucketSproutBlockRoots).Put(hash[:], sproutRoot[:]); err != nil {
			return err
		}
		return meta.Bucket(bucketTreeStates).Put(hash[:], saplingRoot[:])
	})
}

// rollbackNullifiers undoes nullifier inserts already applied for
// transactions [0, failedIdx) of the block being canonized, called when a
// later transaction in the same block fails double-spend checking midway.
func (cs *ChainStore) rollbackNullifiers(applied []*wire.MsgTx, _ *wire.MsgTx) {
	for _, txn := range applied {
		for _, js := range txn.JoinSplits {
			for _, n := range js.Nullifiers {
				cs.nullifiers.Remove(EpochSprout, n)
			}
		}
		if txn.Sapling != nil {
			for _, sp := range txn.Sapling.Spends {
				cs.nullifiers.Remove(EpochSapling, sp.Nullifier)
			}
		}
	}
}

func (cs *ChainStore) putTxMetaLocked(hash chainhash.Hash, m *TxMeta) error {
	return cs.db.Update(func(tx database.Tx) error {
		return tx.Metadata().Bucket(bucketTransactionsMeta).Put(hash[:], m.serialize())
	})
}

func (cs *ChainStore) txMetaLocked(hash chainhash.Hash) (*TxMeta, error) {
	var data []byte
	err := cs.db.View(func(tx database.Tx) error {
		data = tx.Metadata().Bucket(bucketTransactionsMeta).Get(hash[:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return deserializeTxMeta(data)
}

// TxMeta looks up the stored metadata for a canonical transaction.
func (cs *ChainStore) TxMeta(hash chainhash.Hash) (*TxMeta, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.txMetaLocked(hash)
}

// Transaction returns the decoded body of a stored transaction, canonical
// or not, looked up by hash.
func (cs *ChainStore) Transaction(hash chainhash.Hash) (*wire.MsgTx, error) {
	var data []byte
	err := cs.db.View(func(tx database.Tx) error {
		data = tx.Metadata().Bucket(bucketTransactions).Get(hash[:])
		return nil
	})
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ruleError(ErrMissingTxOut, "transaction not found")
	}
	txn := new(wire.MsgTx)
	if err := txn.BtcDecode(bytes.NewReader(data), wire.ProtocolVersion); err != nil {
		return nil, err
	}
	return txn, nil
}

// Params returns the network parameters this store was opened with.
func (cs *ChainStore) Params() *chaincfg.Params { return cs.params }

// HasNullifier reports whether a nullifier is already present in the
// canonical chain's epoch-tagged set.
func (cs *ChainStore) HasNullifier(epoch Epoch, h chainhash.Hash) bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.nullifiers.Has(epoch, h)
}

// Decanonize undoes Canonize for the current best block: it is the exact
// inverse, restoring the previous best pointer, clearing this block's
// tx-meta entries and spend-bit flips, and removing its nullifiers.
func (cs *ChainStore) Decanonize() error {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.decanonizeLocked()
}

func (cs *ChainStore) decanonizeLocked() error {
	if cs.bestHeight < 0 {
		return ruleError(ErrCannotDecanonize, "no canonical block to undo")
	}
	hash := cs.bestHash
	sb := cs.blocks[hash]

	for i := len(sb.txs) - 1; i >= 0; i-- {
		txn := sb.txs[i]
		txHash := txn.TxHash()
		if i > 0 {
			for _, in := range txn.TxIn {
				prevMeta, err := cs.txMetaLocked(in.PreviousOutPoint.Hash)
				if err == nil && prevMeta != nil {
					idx := int(in.PreviousOutPoint.Index)
					if idx < len(prevMeta.SpentBits) {
						prevMeta.SpentBits[idx] = false
						_ = cs.putTxMetaLocked(in.PreviousOutPoint.Hash, prevMeta)
					}
				}
			}
			for _, js := range txn.JoinSplits {
				for _, n := range js.Nullifiers {
					cs.nullifiers.Remove(EpochSprout, n)
				}
			}
			if txn.Sapling != nil {
				for _, sp := range txn.Sapling.Spends {
					cs.nullifiers.Remove(EpochSapling, sp.Nullifier)
				}
			}
		}
		if err := cs.db.Update(func(tx database.Tx) error {
			return tx.Metadata().Bucket(bucketTransactionsMeta).Delete(txHash[:])
		}); err != nil {
			return err
		}
	}

	parentHash := sb.header.PrevBlock
	prevHeight := cs.bestHeight - 1
	sb.height = -1

	err := cs.db.Update(func(tx database.Tx) error {
		meta := tx.Metadata()
		var hbuf [4]byte
		binary.LittleEndian.PutUint32(hbuf[:], uint32(cs.bestHeight))
		if err := meta.Bucket(bucketBlockHashes).Delete(hbuf[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketBlockNumbers).Delete(hash[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketSproutBlockRoots).Delete(hash[:]); err != nil {
			return err
		}
		if err := meta.Bucket(bucketTreeStates).Delete(hash[:]); err != nil {
			return err
		}
		if prevHeight < 0 {
			if err := meta.Bucket(bucketMeta).Delete(keyBestBlockHash); err != nil {
				return err
			}
			return meta.Bucket(bucketMeta).Delete(keyBestBlockNumber)
		}
		var pbuf [4]byte
		binary.LittleEndian.PutUint32(pbuf[:], uint32(prevHeight))
		if err := meta.Bucket(bucketMeta).Put(keyBestBlockHash, parentHash[:]); err != nil {
			return err
		}
		return meta.Bucket(bucketMeta).Put(keyBestBlockNumber, pbuf[:])
	})
	if err != nil {
		return err
	}

	cs.bestHash = parentHash
	cs.bestHeight = prevHeight
	return nil
}

// RollbackBest decanonizes the current best block and then deletes its
// header/transaction rows entirely, returning the new best hash.
func (cs *ChainStore) RollbackBest() (chainhash.Hash, error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	removed := cs.bestHash
	if err := cs.decanonizeLocked(); err != nil {
		return chainhash.Hash{}, err
	}

	err := cs.db.Update(func(tx database.Tx) error {
		meta := tx.Metadata()
		if err := meta.Bucket(bucketBlockHeaders).Delete(removed[:]); err != nil {
			return err
		}
		return meta.Bucket(bucketBlockTransactions).Delete(removed[:])
	})
	if err != nil {
		return chainhash.Hash{}, err
	}

	sb := cs.blocks[removed]
	for _, txn := range sb.txs {
		txHash := txn.TxHash()
		_ = cs.db.Update(func(tx database.Tx) error {
			return tx.Metadata().Bucket(bucketTransactions).Delete(txHash[:])
		})
	}

	delete(cs.blocks, removed)
	delete(cs.parent, removed)
	delete(cs.sprout, removed)
	delete(cs.sapling, removed)

	return cs.bestHash, nil
}

// depthBelowBest walks parent links from hash back to the best chain,
// returning the number of blocks between hash and its fork point, and
// whether a fork point on the best chain was found at all.
func (cs *ChainStore) depthBelowBest(hash chainhash.Hash) (depth int32, forkPoint chainhash.Hash, onBestChain bool) {
	onBest := make(map[chainhash.Hash]struct{})
	cur := cs.bestHash
	for {
		onBest[cur] = struct{}{}
		if cur == (chainhash.Hash{}) {
			break
		}
		p, ok := cs.parent[cur]
		if !ok {
			break
		}
		cur = p
	}

	walker := hash
	var steps int32
	for {
		if _, ok := onBest[walker]; ok {
			return steps, walker, true
		}
		p, ok := cs.parent[walker]
		if !ok {
			return steps, walker, false
		}
		walker = p
		steps++
	}
}

// BlockOriginOf classifies an incoming header per spec.md §4.B.
func (cs *ChainStore) BlockOriginOf(header *wire.BlockHeader) (*BlockOriginResult, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	hash := header.BlockHash()
	if sb, ok := cs.blocks[hash]; ok && sb.height >= 0 {
		return &BlockOriginResult{Kind: OriginKnownBlock, Height: sb.height}, nil
	} else if ok {
		return &BlockOriginResult{Kind: OriginKnownBlock}, nil
	}

	var zero chainhash.Hash
	if header.PrevBlock != zero {
		if _, ok := cs.blocks[header.PrevBlock]; !ok {
			return nil, ruleError(ErrUnknownParent, "parent not known")
		}
	}

	if header.PrevBlock == cs.bestHash {
		return &BlockOriginResult{Kind: OriginCanonChain, Height: cs.bestHeight + 1}, nil
	}

	depth, origin, onBest := cs.depthBelowBest(header.PrevBlock)
	if !onBest {
		return nil, ruleError(ErrUnknownParent, "side chain has no known ancestor on best chain")
	}
	if depth > maxForkDepth {
		return nil, ruleError(ErrAncientFork, "fork point too far below tip")
	}

	// A side chain extending this block would become canonical if its
	// resulting height exceeds the current best height.
	sideHeight := cs.heightOf(header.PrevBlock) + 1
	if sideHeight > cs.bestHeight {
		return &BlockOriginResult{Kind: OriginSideChainBecomingCanon, Height: sideHeight, Origin: origin}, nil
	}
	return &BlockOriginResult{Kind: OriginSideChain, Height: sideHeight, Origin: origin}, nil
}

func (cs *ChainStore) heightOf(hash chainhash.Hash) int32 {
	if sb, ok := cs.blocks[hash]; ok && sb.height >= 0 {
		return sb.height
	}
	// Side-chain block: walk back to its fork point on the best chain and
	// add the number of steps, not bestHeight - depth (only correct when
	// the fork point is the tip itself).
	depth, forkPoint, _ := cs.depthBelowBest(hash)
	forkHeight := cs.bestHeight
	if sb, ok := cs.blocks[forkPoint]; ok && sb.height >= 0 {
		forkHeight = sb.height
	}
	return forkHeight + depth
}

// ForkChain is an overlay over a ChainStore that shadows it with pending
// writes, used to speculatively canonize a side chain before promoting it
// with SwitchToFork.
type ForkChain struct {
	base    *ChainStore
	origin  chainhash.Hash
	pending []chainhash.Hash // blocks canonized on the overlay, in order
}

// Fork returns an overlay rooted at the given side-chain origin.
func (cs *ChainStore) Fork(origin chainhash.Hash) *ForkChain {
	return &ForkChain{base: cs, origin: origin}
}

// Canonize on the overlay behaves like ChainStore.Canonize but only records
// the block; SwitchToFork applies every recorded block, in order, against
// the base store.
func (f *ForkChain) Canonize(hash chainhash.Hash) error {
	f.pending = append(f.pending, hash)
	return nil
}

// SwitchToFork promotes the overlay: it decanonizes the base store down to
// the fork origin, then canonizes every pending block in order. Each step
// is its own database transaction, not one transaction for the whole
// switch. On a failure the error is returned and the base store stays
// where that step stopped (between the previous tip and the origin, or at
// a pending block above the origin); the previous tip is not restored.
func (f *ForkChain) SwitchToFork() error {
	f.base.mu.Lock()
	defer f.base.mu.Unlock()

	for f.base.bestHash != f.origin && f.base.bestHeight >= 0 {
		if err := f.base.decanonizeLocked(); err != nil {
			return err
		}
	}

	for _, hash := range f.pending {
		if err := f.base.canonizeLocked(hash); err != nil {
			return err
		}
	}
	return nil
}
