// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/parityzec/zecnode/wire"
)

// TestNetParams defines the network parameters for the test network.
var TestNetParams = Params{
	Name:        "testnet",
	Net:         wire.TestNet,
	DefaultPort: "18233",

	GenesisBlock: testNetGenesisBlock,
	GenesisHash:  testNetGenesisBlock.Header.BlockHash(),

	PowLimit:          testNetPowLimit,
	PowLimitBits:      0x2007ffff,
	AveragingWindow:   17,
	MaxActualTimespan: 17 * 150 * 4,
	MinActualTimespan: 17 * 150 / 4,

	SproutTreeHeight:  29,
	SaplingTreeHeight: 32,

	NetworkUpgrades: []NetworkUpgrade{
		{Name: "sprout", ActivationHeight: 0, ConsensusBranchID: BranchIDSprout},
		{Name: "overwinter", ActivationHeight: 207500, ConsensusBranchID: BranchIDOverwinter},
		{Name: "sapling", ActivationHeight: 280000, ConsensusBranchID: BranchIDSapling},
	},

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 840000,
	InitialBlockSubsidy:      1250000000,

	FoundersReward: []FounderAddress{
		{StartHeight: 1, EndHeight: 840000, Script: []byte{0xa9, 0x14}},
	},
	FoundersRewardEndsAt: 840000,

	TargetTimePerBlock: 150 * time.Second,

	Checkpoints: []Checkpoint{},

	RuleChangeActivationThreshold: 1512, // 75% of MinerConfirmationWindow
	MinerConfirmationWindow:       2016,

	MaxBlockSize:       2000000,
	MaxBlockSigOps:     20000,
	MaxMoney:           21000000 * 100000000,
	MaxFutureBlockTime: 2 * time.Hour,
	AncientForkDepth:   100,
}

func init() {
	TestNetParams.Deployments[DeploymentOverwinter] = ConsensusDeployment{
		BitNumber: 1,
		StartTime: 0,
	}
	TestNetParams.Deployments[DeploymentSapling] = ConsensusDeployment{
		BitNumber: 2,
		StartTime: 0,
	}
}
