// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MaxBlockHeadersPerMsg is the maximum number of block headers that can be
// in a single headers message.
const MaxBlockHeadersPerMsg = 2000

// MsgHeaders implements the Message interface and represents a response to
// a getheaders message.
type MsgHeaders struct {
	Headers []*BlockHeader
}

// AddBlockHeader adds a new block header to the message.
func (msg *MsgHeaders) AddBlockHeader(bh *BlockHeader) error {
	if len(msg.Headers)+1 > MaxBlockHeadersPerMsg {
		return fmt.Errorf("too many block headers in message [max %d]", MaxBlockHeadersPerMsg)
	}
	msg.Headers = append(msg.Headers, bh)
	return nil
}

// BtcDecode decodes the headers message from r. Each header is followed by a
// transaction count, which is always zero here since headers never carry
// transactions, matching the upstream wire quirk.
func (msg *MsgHeaders) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockHeadersPerMsg {
		return fmt.Errorf("too many headers for message [count %d, max %d]", count, MaxBlockHeadersPerMsg)
	}
	msg.Headers = make([]*BlockHeader, 0, count)
	for i := uint64(0); i < count; i++ {
		bh := &BlockHeader{}
		if err := readBlockHeader(r, bh); err != nil {
			return err
		}
		txCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if txCount != 0 {
			return fmt.Errorf("block header transaction count is not zero for " +
				"block header message")
		}
		msg.Headers = append(msg.Headers, bh)
	}
	return nil
}

// BtcEncode encodes the headers message to w.
func (msg *MsgHeaders) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Headers) > MaxBlockHeadersPerMsg {
		return fmt.Errorf("too many headers for message [count %d, max %d]",
			len(msg.Headers), MaxBlockHeadersPerMsg)
	}
	if err := WriteVarInt(w, uint64(len(msg.Headers))); err != nil {
		return err
	}
	for _, bh := range msg.Headers {
		if err := writeBlockHeader(w, bh); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}
	return nil
}

// Command returns the protocol command string for a headers message.
func (msg *MsgHeaders) Command() string { return CmdHeaders }

// MaxPayloadLength returns the maximum length the payload can be for the
// receiver's protocol version.
func (msg *MsgHeaders) MaxPayloadLength(pver uint32) uint32 {
	return uint32(MaxBlockHeadersPerMsg * (maxBlockHeaderPayload + 1))
}
