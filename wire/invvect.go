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

// MaxInvPerMsg is the maximum number of inventory vectors that can be in a
// single inv, getdata, or notfound message.
const MaxInvPerMsg = 50000

// InvVect defines a single inventory vector: a type/hash pair used to
// describe data (a transaction or block) as a means to relay data in the
// Zcash wire protocol.
type InvVect struct {
	Type InvType
	Hash chainhash.Hash
}

// NewInvVect returns a new InvVect using the provided type and hash.
func NewInvVect(typ InvType, hash *chainhash.Hash) *InvVect {
	return &InvVect{Type: typ, Hash: *hash}
}

func readInvVect(r io.Reader, iv *InvVect) error {
	var t uint32
	if err := readElement(r, &t); err != nil {
		return err
	}
	iv.Type = InvType(t)
	return readElement(r, &iv.Hash)
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	if err := writeElement(w, uint32(iv.Type)); err != nil {
		return err
	}
	return writeElement(w, iv.Hash)
}

func readInvVectList(r io.Reader, maxCount int, command string) ([]*InvVect, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > uint64(maxCount) {
		return nil, fmt.Errorf("too many inventory vectors in %s [%d, max %d]", command, count, maxCount)
	}
	invList := make([]*InvVect, count)
	for i := range invList {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return nil, err
		}
		invList[i] = iv
	}
	return invList, nil
}

func writeInvVectList(w io.Writer, invList []*InvVect, maxCount int, command string) error {
	if len(invList) > maxCount {
		return fmt.Errorf("too many inventory vectors in %s [%d, max %d]", command, len(invList), maxCount)
	}
	if err := WriteVarInt(w, uint64(len(invList))); err != nil {
		return err
	}
	for _, iv := range invList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

// MsgInv implements the Message interface and is used to advertise a peer's
// knowledge of transactions or blocks.
type MsgInv struct {
	InvList []*InvVect
}

func (msg *MsgInv) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return fmt.Errorf("too many invvect in message [max %d]", MaxInvPerMsg)
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgInv) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg, CmdInv)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgInv) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, msg.InvList, MaxInvPerMsg, CmdInv)
}

func (msg *MsgInv) Command() string { return CmdInv }

func (msg *MsgInv) MaxPayloadLength(pver uint32) uint32 {
	return uint32(3 + (MaxInvPerMsg * (4 + chainhash.HashSize)))
}

// MsgGetData implements the Message interface and is used to request data
// (transactions and/or blocks) by inventory vector.
type MsgGetData struct {
	InvList []*InvVect
}

func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return fmt.Errorf("too many invvect in message [max %d]", MaxInvPerMsg)
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgGetData) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg, CmdGetData)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgGetData) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, msg.InvList, MaxInvPerMsg, CmdGetData)
}

func (msg *MsgGetData) Command() string { return CmdGetData }

func (msg *MsgGetData) MaxPayloadLength(pver uint32) uint32 {
	return uint32(3 + (MaxInvPerMsg * (4 + chainhash.HashSize)))
}

// MsgNotFound implements the Message interface and is sent in response to a
// getdata message for items that are not available.
type MsgNotFound struct {
	InvList []*InvVect
}

func (msg *MsgNotFound) BtcDecode(r io.Reader, pver uint32) error {
	list, err := readInvVectList(r, MaxInvPerMsg, CmdNotFound)
	if err != nil {
		return err
	}
	msg.InvList = list
	return nil
}

func (msg *MsgNotFound) BtcEncode(w io.Writer, pver uint32) error {
	return writeInvVectList(w, msg.InvList, MaxInvPerMsg, CmdNotFound)
}

func (msg *MsgNotFound) Command() string { return CmdNotFound }

func (msg *MsgNotFound) MaxPayloadLength(pver uint32) uint32 {
	return uint32(3 + (MaxInvPerMsg * (4 + chainhash.HashSize)))
}
