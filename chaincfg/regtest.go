// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/parityzec/zecnode/wire"
)

// RegtestParams defines the network parameters for a private regression
// test network: trivial difficulty, no founders' reward, and upgrades
// active from genesis so new consensus rules can be exercised immediately.
var RegtestParams = Params{
	Name:        "regtest",
	Net:         wire.RegtestNet,
	DefaultPort: "18344",

	GenesisBlock: regtestGenesisBlock,
	GenesisHash:  regtestGenesisBlock.Header.BlockHash(),

	PowLimit:          regtestPowLimit,
	PowLimitBits:      0x200f0f0f,
	PoWNoRetargeting:  true,
	AveragingWindow:   17,
	MaxActualTimespan: 17 * 150 * 4,
	MinActualTimespan: 17 * 150 / 4,

	SproutTreeHeight:  29,
	SaplingTreeHeight: 32,

	NetworkUpgrades: []NetworkUpgrade{
		{Name: "sprout", ActivationHeight: 0, ConsensusBranchID: BranchIDSprout},
		{Name: "overwinter", ActivationHeight: 0, ConsensusBranchID: BranchIDOverwinter},
		{Name: "sapling", ActivationHeight: 0, ConsensusBranchID: BranchIDSapling},
	},

	CoinbaseMaturity:         100,
	SubsidyReductionInterval: 150,
	InitialBlockSubsidy:      1250000000,

	FoundersReward:       nil,
	FoundersRewardEndsAt: 0,

	TargetTimePerBlock: 150 * time.Second,

	Checkpoints: []Checkpoint{},

	RuleChangeActivationThreshold: 108, // 75% of MinerConfirmationWindow
	MinerConfirmationWindow:       144,

	MaxBlockSize:       2000000,
	MaxBlockSigOps:     20000,
	MaxMoney:           21000000 * 100000000,
	MaxFutureBlockTime: 2 * time.Hour,
	AncientForkDepth:   100,
}
