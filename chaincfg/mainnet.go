// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/parityzec/zecnode/wire"
)

// MainNetParams defines the network parameters for the main Zcash-style
// network.
var MainNetParams = Params{
	Name:        "mainnet",
	Net:         wire.MainNet,
	DefaultPort: "8233",

	GenesisBlock: mainNetGenesisBlock,
	GenesisHash:  mainNetGenesisBlock.Header.BlockHash(),

	PowLimit:          mainPowLimit,
	PowLimitBits:      0x1f07ffff,
	AveragingWindow:   17,
	MaxActualTimespan: 17 * 150 * 4,
	MinActualTimespan: 17 * 150 / 4,

	SproutTreeHeight:  29,
	SaplingTreeHeight: 32,

	NetworkUpgrades: []NetworkUpgrade{
		{Name: "sprout", ActivationHeight: 0, ConsensusBranchID: BranchIDSprout},
		{Name: "overwinter", ActivationHeight: 347500, ConsensusBranchID: BranchIDOverwinter},
		{Name: "sapling", ActivationHeight: 419200, ConsensusBranchID: BranchIDSapling},
	},

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 840000,
	InitialBlockSubsidy:      1250000000, // 12.5 ZEC in zatoshi

	FoundersReward: []FounderAddress{
		{StartHeight: 1, EndHeight: 840000, Script: []byte{0xa9, 0x14}},
	},
	FoundersRewardEndsAt: 840000,

	TargetTimePerBlock: 150 * time.Second,

	Checkpoints: []Checkpoint{},

	RuleChangeActivationThreshold: 1916, // 95% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,

	MaxBlockSize:        2000000,
	MaxBlockSigOps:      20000,
	MaxMoney:            21000000 * 100000000,
	MaxFutureBlockTime:  2 * time.Hour,
	AncientForkDepth:    100,
}

func init() {
	MainNetParams.Deployments[DeploymentOverwinter] = ConsensusDeployment{
		BitNumber: 1,
		StartTime: 0,
	}
	MainNetParams.Deployments[DeploymentSapling] = ConsensusDeployment{
		BitNumber: 2,
		StartTime: 0,
	}
}
