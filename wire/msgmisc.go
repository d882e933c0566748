// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"
)

// MsgPing implements the Message interface. Ping nonce handling is only
// meaningful from BIP0031Version onward; earlier peers send an empty ping.
type MsgPing struct {
	Nonce uint64
}

func (msg *MsgPing) BtcDecode(r io.Reader, pver uint32) error {
	if pver <= BIP0031Version {
		return nil
	}
	return readElement(r, &msg.Nonce)
}

func (msg *MsgPing) BtcEncode(w io.Writer, pver uint32) error {
	if pver <= BIP0031Version {
		return nil
	}
	return writeElement(w, msg.Nonce)
}

func (msg *MsgPing) Command() string                    { return CmdPing }
func (msg *MsgPing) MaxPayloadLength(pver uint32) uint32 { return 8 }

// MsgPong implements the Message interface and echoes the nonce of a Ping.
type MsgPong struct {
	Nonce uint64
}

func (msg *MsgPong) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.Nonce)
}

func (msg *MsgPong) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.Nonce)
}

func (msg *MsgPong) Command() string                    { return CmdPong }
func (msg *MsgPong) MaxPayloadLength(pver uint32) uint32 { return 8 }

// MaxFilterAddDataSize is the maximum number of bytes a data element in a
// filteradd message can be.
const MaxFilterAddDataSize = 520

// MsgFilterAdd implements the Message interface and is used to add a data
// element to a previously loaded bloom filter.
type MsgFilterAdd struct {
	Data []byte
}

func (msg *MsgFilterAdd) BtcDecode(r io.Reader, pver uint32) error {
	data, err := ReadVarBytes(r, MaxFilterAddDataSize, "filteradd data")
	if err != nil {
		return err
	}
	msg.Data = data
	return nil
}

func (msg *MsgFilterAdd) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Data) > MaxFilterAddDataSize {
		return fmt.Errorf("filteradd data is %d bytes which exceeds max of %d",
			len(msg.Data), MaxFilterAddDataSize)
	}
	return WriteVarBytes(w, msg.Data)
}

func (msg *MsgFilterAdd) Command() string                    { return CmdFilterAdd }
func (msg *MsgFilterAdd) MaxPayloadLength(pver uint32) uint32 { return uint32(MaxFilterAddDataSize) + 3 }

// MsgFilterClear implements the Message interface and requests the peer to
// remove a previously loaded bloom filter (carries no payload).
type MsgFilterClear struct{}

func (msg *MsgFilterClear) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgFilterClear) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgFilterClear) Command() string                         { return CmdFilterClear }
func (msg *MsgFilterClear) MaxPayloadLength(pver uint32) uint32      { return 0 }

// MaxFilterLoadFilterSize is the maximum size in bytes a filterload filter
// can be.
const MaxFilterLoadFilterSize = 36000

// MaxFilterLoadHashFuncs is the maximum number of hash functions a
// filterload message can specify.
const MaxFilterLoadHashFuncs = 50

// BloomUpdateType specifies how the bloom filter is updated on a match.
type BloomUpdateType uint8

const (
	BloomUpdateNone BloomUpdateType = iota
	BloomUpdateAll
	BloomUpdateP2PubkeyOnly
)

// MsgFilterLoad implements the Message interface and loads a bloom filter
// onto a connection for transaction relay filtering.
type MsgFilterLoad struct {
	Filter    []byte
	HashFuncs uint32
	Tweak     uint32
	Flags     BloomUpdateType
}

func (msg *MsgFilterLoad) BtcDecode(r io.Reader, pver uint32) error {
	filter, err := ReadVarBytes(r, MaxFilterLoadFilterSize, "filterload filter")
	if err != nil {
		return err
	}
	msg.Filter = filter
	if err := readElement(r, &msg.HashFuncs); err != nil {
		return err
	}
	if msg.HashFuncs > MaxFilterLoadHashFuncs {
		return fmt.Errorf("too many filter hash funcs: %d", msg.HashFuncs)
	}
	if err := readElement(r, &msg.Tweak); err != nil {
		return err
	}
	var flags [1]byte
	if _, err := io.ReadFull(r, flags[:]); err != nil {
		return err
	}
	msg.Flags = BloomUpdateType(flags[0])
	return nil
}

func (msg *MsgFilterLoad) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.Filter) > MaxFilterLoadFilterSize {
		return fmt.Errorf("filterload filter is %d bytes which exceeds max of %d",
			len(msg.Filter), MaxFilterLoadFilterSize)
	}
	if err := WriteVarBytes(w, msg.Filter); err != nil {
		return err
	}
	if err := writeElement(w, msg.HashFuncs); err != nil {
		return err
	}
	if err := writeElement(w, msg.Tweak); err != nil {
		return err
	}
	_, err := w.Write([]byte{byte(msg.Flags)})
	return err
}

func (msg *MsgFilterLoad) Command() string { return CmdFilterLoad }
func (msg *MsgFilterLoad) MaxPayloadLength(pver uint32) uint32 {
	return uint32(MaxFilterLoadFilterSize) + 9 + 4 + 4 + 1
}

// MsgSendHeaders implements the Message interface and announces that the
// sender prefers to receive new block announcements as headers rather than
// inv messages (carries no payload).
type MsgSendHeaders struct{}

func (msg *MsgSendHeaders) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgSendHeaders) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgSendHeaders) Command() string                         { return CmdSendHeaders }
func (msg *MsgSendHeaders) MaxPayloadLength(pver uint32) uint32      { return 0 }

// MsgFeeFilter implements the Message interface and tells a peer to only
// relay transactions paying at least the given fee rate (satoshis/kB).
type MsgFeeFilter struct {
	MinFee int64
}

func (msg *MsgFeeFilter) BtcDecode(r io.Reader, pver uint32) error {
	return readElement(r, &msg.MinFee)
}

func (msg *MsgFeeFilter) BtcEncode(w io.Writer, pver uint32) error {
	return writeElement(w, msg.MinFee)
}

func (msg *MsgFeeFilter) Command() string                    { return CmdFeeFilter }
func (msg *MsgFeeFilter) MaxPayloadLength(pver uint32) uint32 { return 8 }

// MsgMempool implements the Message interface and requests the contents of
// a peer's mempool as a series of inv messages (carries no payload).
type MsgMempool struct{}

func (msg *MsgMempool) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgMempool) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgMempool) Command() string                         { return CmdMempool }
func (msg *MsgMempool) MaxPayloadLength(pver uint32) uint32      { return 0 }

// MsgMerkleBlock implements the Message interface and represents a block
// with only the transactions matching a bloom filter, plus a merkle proof
// connecting them to the block's merkle root.
type MsgMerkleBlock struct {
	Header       BlockHeader
	Transactions uint32
	Hashes       []*[32]byte
	Flags        []byte
}

func (msg *MsgMerkleBlock) BtcDecode(r io.Reader, pver uint32) error {
	if err := readBlockHeader(r, &msg.Header); err != nil {
		return err
	}
	if err := readElement(r, &msg.Transactions); err != nil {
		return err
	}
	numHashes, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	msg.Hashes = make([]*[32]byte, numHashes)
	for i := range msg.Hashes {
		var h [32]byte
		if _, err := io.ReadFull(r, h[:]); err != nil {
			return err
		}
		msg.Hashes[i] = &h
	}
	flags, err := ReadVarBytes(r, MaxMessagePayload, "merkleblock flags")
	if err != nil {
		return err
	}
	msg.Flags = flags
	return nil
}

func (msg *MsgMerkleBlock) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeBlockHeader(w, &msg.Header); err != nil {
		return err
	}
	if err := writeElement(w, msg.Transactions); err != nil {
		return err
	}
	if err := WriteVarInt(w, uint64(len(msg.Hashes))); err != nil {
		return err
	}
	for _, h := range msg.Hashes {
		if _, err := w.Write(h[:]); err != nil {
			return err
		}
	}
	return WriteVarBytes(w, msg.Flags)
}

func (msg *MsgMerkleBlock) Command() string                    { return CmdMerkleBlock }
func (msg *MsgMerkleBlock) MaxPayloadLength(pver uint32) uint32 { return MaxMessagePayload }
