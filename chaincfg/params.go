// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines consensus parameters for each supported network:
// genesis block, checkpoints, difficulty limits, shielded-protocol
// activation heights and consensus branch IDs, and the founders' reward
// schedule.
package chaincfg

import (
	"errors"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/parityzec/zecnode/wire"
)

var bigOne = big.NewInt(1)

// mainPowLimit is the highest proof-of-work value (easiest difficulty) a
// main-network block can have. 2^243 - 1, chosen for an Equihash network.
var mainPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 243), bigOne)

// testNetPowLimit is the proof-of-work limit for the test network.
var testNetPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 251), bigOne)

// regtestPowLimit is the proof-of-work limit for regtest: trivially easy.
var regtestPowLimit = new(big.Int).Sub(new(big.Int).Lsh(bigOne, 255), bigOne)

// Checkpoint identifies a known-good point in the block chain, used to
// speed up initial block download and reject conflicting forks below it.
type Checkpoint struct {
	Height int32
	Hash   *chainhash.Hash
}

// DNSSeed identifies a DNS seed used for peer discovery. Peer discovery
// itself is out of scope for this module; the field is retained as
// consensus-adjacent network metadata only.
type DNSSeed struct {
	Host         string
	HasFiltering bool
}

// ConsensusDeployment defines a BIP0009-style soft-fork deployment: a bit
// position plus the activation rule for it.
type ConsensusDeployment struct {
	BitNumber            uint8
	StartTime            uint64
	ExpireTime           uint64
	MinActivationHeight  uint32
}

// Deployment IDs used to index Params.Deployments.
const (
	DeploymentTestDummy = iota
	DeploymentCSV
	DeploymentOverwinter
	DeploymentSapling
	DefinedDeployments
)

// NetworkUpgrade identifies one of the shielded-protocol consensus epochs.
// Each carries its own consensus branch ID, mixed into the ZIP-143/243
// signature hash.
type NetworkUpgrade struct {
	Name              string
	ActivationHeight  int32 // -1 means "never activates" on this network
	ConsensusBranchID uint32
}

// Consensus branch IDs, matching the upstream Zcash protocol specification.
const (
	BranchIDSprout     uint32 = 0x00000000
	BranchIDOverwinter uint32 = 0x5ba81b19
	BranchIDSapling    uint32 = 0x76b809bb
)

// FounderAddress describes one recipient of the founders' reward for a
// range of heights.
type FounderAddress struct {
	StartHeight int32
	EndHeight   int32 // exclusive; 0 means "open ended"
	Script      []byte
}

// Params defines the consensus rules and genesis data for a single Zcash-
// style network.
type Params struct {
	Name         string
	Net          wire.ZcashNet
	DefaultPort  string
	DNSSeeds     []DNSSeed

	GenesisBlock *wire.MsgBlock
	GenesisHash  chainhash.Hash

	PowLimit             *big.Int
	PowLimitBits         uint32
	PoWNoRetargeting     bool
	AveragingWindow      int64
	MaxActualTimespan    int64
	MinActualTimespan    int64

	// SproutTreeHeight / SaplingTreeHeight are the fixed heights of the
	// two incremental note-commitment trees.
	SproutTreeHeight  uint8
	SaplingTreeHeight uint8

	// NetworkUpgrades is ordered by ActivationHeight and must always
	// include at least the Sprout (genesis) entry at index 0.
	NetworkUpgrades []NetworkUpgrade

	CoinbaseMaturity         uint16
	SubsidyReductionInterval int32
	InitialBlockSubsidy      int64

	FoundersReward       []FounderAddress
	FoundersRewardEndsAt int32

	TargetTimePerBlock time.Duration

	BIP0016Time   int64 // unix time p2sh activates
	BIP0065Height int32 // CHECKLOCKTIMEVERIFY
	BIP0066Height int32 // strict DER signatures

	Checkpoints []Checkpoint

	Deployments [DefinedDeployments]ConsensusDeployment

	RuleChangeActivationThreshold uint32
	MinerConfirmationWindow       uint32

	// MaxBlockSize bounds the serialized size of a block.
	MaxBlockSize int64
	// MaxBlockSigOps bounds the total sigops across all scripts in a block.
	MaxBlockSigOps int64
	// MaxMoney is the maximum value (in zatoshi) that can ever exist.
	MaxMoney int64
	// MaxFutureBlockTime bounds how far into the future a header's
	// timestamp may be relative to the validator's clock.
	MaxFutureBlockTime time.Duration
	// AncientForkDepth is the network's side-chain fork depth limit. The
	// chain store does not read this field; BlockOriginOf applies its own
	// fixed limit (blockchain's maxForkDepth, 2048).
	AncientForkDepth int32
}

// ConsensusBranchID returns the consensus branch ID active at the given
// height, used as the ZIP-143/243 sighash personalization tag.
func (p *Params) ConsensusBranchID(height int32) uint32 {
	id := BranchIDSprout
	for _, nu := range p.NetworkUpgrades {
		if nu.ActivationHeight >= 0 && height >= nu.ActivationHeight {
			id = nu.ConsensusBranchID
		}
	}
	return id
}

// IsOverwinterActive reports whether the Overwinter upgrade is active at
// the given height.
func (p *Params) IsOverwinterActive(height int32) bool {
	return p.upgradeActive("overwinter", height)
}

// IsSaplingActive reports whether the Sapling upgrade is active at the
// given height.
func (p *Params) IsSaplingActive(height int32) bool {
	return p.upgradeActive("sapling", height)
}

func (p *Params) upgradeActive(name string, height int32) bool {
	for _, nu := range p.NetworkUpgrades {
		if nu.Name == name {
			return nu.ActivationHeight >= 0 && height >= nu.ActivationHeight
		}
	}
	return false
}

// CalcBlockSubsidy returns the block subsidy (before fees) at the given
// height, halving every SubsidyReductionInterval blocks.
func (p *Params) CalcBlockSubsidy(height int32) int64 {
	if p.SubsidyReductionInterval == 0 {
		return p.InitialBlockSubsidy
	}
	halvings := height / p.SubsidyReductionInterval
	if halvings >= 64 {
		return 0
	}
	return p.InitialBlockSubsidy >> uint(halvings)
}

// FounderRewardScript returns the founders' reward script and amount that
// must be paid at the given height, or ok=false if no founders' reward
// applies there.
func (p *Params) FounderRewardScript(height int32) (script []byte, amount int64, ok bool) {
	if height <= 0 || height > p.FoundersRewardEndsAt {
		return nil, 0, false
	}
	for _, fa := range p.FoundersReward {
		if height >= fa.StartHeight && (fa.EndHeight == 0 || height < fa.EndHeight) {
			subsidy := p.CalcBlockSubsidy(height)
			// Founders' reward is a fixed 20% of the block subsidy.
			return fa.Script, subsidy / 5, true
		}
	}
	return nil, 0, false
}

var registeredNets = make(map[wire.ZcashNet]*Params)

// ErrDuplicateNet is returned by Register when a network has already been
// registered.
var ErrDuplicateNet = errors.New("duplicate network")

// Register adds the network parameters to the set of registered networks,
// guarding against double-registration of the magic value.
func Register(p *Params) error {
	if _, ok := registeredNets[p.Net]; ok {
		return ErrDuplicateNet
	}
	registeredNets[p.Net] = p
	return nil
}

// ParamsForNet returns the registered Params for the given network magic,
// or nil if no network with that magic has been registered.
func ParamsForNet(net wire.ZcashNet) *Params {
	return registeredNets[net]
}
