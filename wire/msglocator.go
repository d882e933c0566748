// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes
// allowed in a getblocks message.
const MaxBlockLocatorsPerMsg = 500

// MaxHeaderLocatorsPerMsg is the maximum number of block locator hashes
// allowed in a getheaders message.
const MaxHeaderLocatorsPerMsg = 2000

// BlockLocator is used to help locate a specific block, working backward
// from the best known block: ten consecutive heights, then spacing that
// doubles after each further entry (see BuildBlockLocator).
type BlockLocator []*chainhash.Hash

func readLocator(r io.Reader, maxCount int, command string) (BlockLocator, chainhash.Hash, error) {
	var hashStop chainhash.Hash
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, hashStop, err
	}
	if count > uint64(maxCount) {
		return nil, hashStop, fmt.Errorf("too many block locator hashes in %s [%d, max %d]",
			command, count, maxCount)
	}
	locator := make(BlockLocator, count)
	for i := range locator {
		h := &chainhash.Hash{}
		if err := readElement(r, h); err != nil {
			return nil, hashStop, err
		}
		locator[i] = h
	}
	if err := readElement(r, &hashStop); err != nil {
		return nil, hashStop, err
	}
	return locator, hashStop, nil
}

func writeLocator(w io.Writer, locator BlockLocator, hashStop chainhash.Hash, maxCount int, command string) error {
	if len(locator) > maxCount {
		return fmt.Errorf("too many block locator hashes in %s [%d, max %d]",
			command, len(locator), maxCount)
	}
	if err := WriteVarInt(w, uint64(len(locator))); err != nil {
		return err
	}
	for _, h := range locator {
		if err := writeElement(w, *h); err != nil {
			return err
		}
	}
	return writeElement(w, hashStop)
}

// MsgGetBlocks implements the Message interface and is used to request a
// list of block hashes starting from a common ancestor.
type MsgGetBlocks struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

func (msg *MsgGetBlocks) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(msg.BlockLocatorHashes)+1 > MaxBlockLocatorsPerMsg {
		return fmt.Errorf("too many block locator hashes for message [max %d]", MaxBlockLocatorsPerMsg)
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

func (msg *MsgGetBlocks) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.ProtocolVersion); err != nil {
		return err
	}
	locator, stop, err := readLocator(r, MaxBlockLocatorsPerMsg, CmdGetBlocks)
	if err != nil {
		return err
	}
	msg.BlockLocatorHashes = locator
	msg.HashStop = stop
	return nil
}

func (msg *MsgGetBlocks) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.ProtocolVersion); err != nil {
		return err
	}
	return writeLocator(w, msg.BlockLocatorHashes, msg.HashStop, MaxBlockLocatorsPerMsg, CmdGetBlocks)
}

func (msg *MsgGetBlocks) Command() string { return CmdGetBlocks }

func (msg *MsgGetBlocks) MaxPayloadLength(pver uint32) uint32 {
	return uint32(4 + 9 + (MaxBlockLocatorsPerMsg * chainhash.HashSize) + chainhash.HashSize)
}

// MsgGetHeaders implements the Message interface and is used to request a
// list of block headers starting from a common ancestor.
type MsgGetHeaders struct {
	ProtocolVersion    uint32
	BlockLocatorHashes []*chainhash.Hash
	HashStop           chainhash.Hash
}

func (msg *MsgGetHeaders) AddBlockLocatorHash(hash *chainhash.Hash) error {
	if len(msg.BlockLocatorHashes)+1 > MaxHeaderLocatorsPerMsg {
		return fmt.Errorf("too many block locator hashes for message [max %d]", MaxHeaderLocatorsPerMsg)
	}
	msg.BlockLocatorHashes = append(msg.BlockLocatorHashes, hash)
	return nil
}

func (msg *MsgGetHeaders) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.ProtocolVersion); err != nil {
		return err
	}
	locator, stop, err := readLocator(r, MaxHeaderLocatorsPerMsg, CmdGetHeaders)
	if err != nil {
		return err
	}
	msg.BlockLocatorHashes = locator
	msg.HashStop = stop
	return nil
}

func (msg *MsgGetHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.ProtocolVersion); err != nil {
		return err
	}
	return writeLocator(w, msg.BlockLocatorHashes, msg.HashStop, MaxHeaderLocatorsPerMsg, CmdGetHeaders)
}

func (msg *MsgGetHeaders) Command() string { return CmdGetHeaders }

func (msg *MsgGetHeaders) MaxPayloadLength(pver uint32) uint32 {
	return uint32(4 + 9 + (MaxHeaderLocatorsPerMsg * chainhash.HashSize) + chainhash.HashSize)
}

// BuildBlockLocator builds a block locator for the chain described by
// heightToHash, starting at tipHeight: heights tip, tip-1, ..., tip-9,
// then tip-11, tip-15, tip-23, ... with the step doubling after each
// further entry, always finishing at the genesis block (height 0).
func BuildBlockLocator(tipHeight int32, heightToHash func(int32) (*chainhash.Hash, bool)) BlockLocator {
	var locator BlockLocator
	step := int32(1)
	height := tipHeight
	includedGenesis := false
	for height > 0 {
		if hash, ok := heightToHash(height); ok {
			locator = append(locator, hash)
			if height == 0 {
				includedGenesis = true
			}
		}
		if len(locator) >= 10 {
			step *= 2
		}
		height -= step
	}
	if !includedGenesis {
		if genesis, ok := heightToHash(0); ok {
			locator = append(locator, genesis)
		}
	}
	return locator
}
