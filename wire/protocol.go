// Copyright (c) 2013-2024 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package wire implements the Zcash-style wire protocol: message framing,
// header/payload encoding, and the data structures carried over it.
package wire

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// ProtocolVersion is the latest protocol version this package supports.
	ProtocolVersion uint32 = 170100

	// InitialProtocolVersion is the very first, bare-bones version
	// message layout (pre BIP0031Version-equivalent).
	InitialProtocolVersion uint32 = 106

	// BIP0031Version is the protocol version after which a pong message
	// and nonce field in ping were added.
	BIP0031Version uint32 = 60000

	// BIP0037Version is the protocol version which added bloom filtering
	// related messages and extended the version message with a relay flag.
	BIP0037Version uint32 = 70001

	// FeeFilterVersion is the protocol version which added the feefilter
	// message.
	FeeFilterVersion uint32 = 70013

	// SendHeadersVersion is the protocol version which added the
	// sendheaders message.
	SendHeadersVersion uint32 = 70012
)

// ServiceFlag identifies services supported by a peer.
type ServiceFlag uint64

const (
	// SFNodeNetwork indicates a peer is a full node.
	SFNodeNetwork ServiceFlag = 1 << iota

	// SFNodeBloom indicates a peer supports bloom filtering (BIP0037).
	SFNodeBloom

	// SFNodeNetworkLimited indicates a peer serves only the last
	// NodeNetworkLimitedBlockThreshold blocks.
	SFNodeNetworkLimited
)

// NodeNetworkLimitedBlockThreshold is the number of blocks that a node
// advertising SFNodeNetworkLimited must be able to serve from the tip.
const NodeNetworkLimitedBlockThreshold = 288

var sfStrings = map[ServiceFlag]string{
	SFNodeNetwork:        "SFNodeNetwork",
	SFNodeBloom:          "SFNodeBloom",
	SFNodeNetworkLimited: "SFNodeNetworkLimited",
}

var orderedSFStrings = []ServiceFlag{
	SFNodeNetwork,
	SFNodeBloom,
	SFNodeNetworkLimited,
}

// HasFlag returns whether the service flag set has the given flag.
func (f ServiceFlag) HasFlag(s ServiceFlag) bool {
	return f&s == s
}

// String returns the ServiceFlag in human-readable form.
func (f ServiceFlag) String() string {
	if f == 0 {
		return "0x0"
	}
	s := ""
	for _, flag := range orderedSFStrings {
		if f&flag == flag {
			s += sfStrings[flag] + "|"
			f -= flag
		}
	}
	s = strings.TrimRight(s, "|")
	if f != 0 {
		s += "|0x" + strconv.FormatUint(uint64(f), 16)
	}
	return strings.TrimLeft(s, "|")
}

// ZcashNet represents which network a message belongs to. It is mixed into
// the message header magic.
type ZcashNet uint32

const (
	// MainNet represents the main network.
	MainNet ZcashNet = 0x6427e924

	// TestNet represents the test network.
	TestNet ZcashNet = 0xbff91afa

	// RegtestNet represents the regression test network.
	RegtestNet ZcashNet = 0xaae83f5f
)

var znStrings = map[ZcashNet]string{
	MainNet:    "MainNet",
	TestNet:    "TestNet",
	RegtestNet: "RegtestNet",
}

// String returns the ZcashNet in human-readable form.
func (n ZcashNet) String() string {
	if s, ok := znStrings[n]; ok {
		return s
	}
	return fmt.Sprintf("Unknown ZcashNet (%d)", uint32(n))
}

// InvType represents the allowed types of inventory vectors.
type InvType uint32

const (
	InvTypeError InvType = iota
	InvTypeTx
	InvTypeBlock
	InvTypeFilteredBlock
	InvTypeCompactBlock
)

var ivStrings = map[InvType]string{
	InvTypeError:         "ERROR",
	InvTypeTx:            "MSG_TX",
	InvTypeBlock:         "MSG_BLOCK",
	InvTypeFilteredBlock: "MSG_FILTERED_BLOCK",
	InvTypeCompactBlock:  "MSG_CMPCT_BLOCK",
}

// String returns the InvType in human-readable form.
func (i InvType) String() string {
	if s, ok := ivStrings[i]; ok {
		return s
	}
	return fmt.Sprintf("Unknown InvType (%d)", uint32(i))
}
