// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"time"
)

// MaxUserAgentLen is the maximum allowed length for the user agent field in
// a version message.
const MaxUserAgentLen = 256

// DefaultUserAgent is the user agent this package identifies as.
const DefaultUserAgent = "/zecnode:0.1.0/"

// MsgVersion implements the Message interface and represents the initial
// handshake message. It deserializes differently depending on the peer's
// negotiated protocol version: the base fields always present, the AddrMe
// timestamp-less net address and Nonce/UserAgent/LastBlock from version
// 106 onward, and Relay from BIP0037Version (70001) onward.
type MsgVersion struct {
	ProtocolVersion int32
	Services        ServiceFlag
	Timestamp       time.Time
	AddrYou         NetAddress
	AddrMe          NetAddress
	Nonce           uint64
	UserAgent       string
	LastBlock       int32
	DisableRelayTx  bool
}

// NewMsgVersion returns a new version message.
func NewMsgVersion(me, you *NetAddress, nonce uint64, lastBlock int32) *MsgVersion {
	return &MsgVersion{
		ProtocolVersion: int32(ProtocolVersion),
		Services:        0,
		Timestamp:       time.Now(),
		AddrMe:          *me,
		AddrYou:         *you,
		Nonce:           nonce,
		UserAgent:       DefaultUserAgent,
		LastBlock:       lastBlock,
		DisableRelayTx:  false,
	}
}

func (msg *MsgVersion) BtcDecode(r io.Reader, pver uint32) error {
	if err := readElement(r, &msg.ProtocolVersion); err != nil {
		return err
	}
	var svc uint64
	if err := readElement(r, &svc); err != nil {
		return err
	}
	msg.Services = ServiceFlag(svc)

	var ts int64
	if err := readElement(r, &ts); err != nil {
		return err
	}
	msg.Timestamp = time.Unix(ts, 0)

	if err := readNetAddress(r, &msg.AddrYou, false); err != nil {
		return err
	}

	// Fields below this point only exist if the peer's declared version
	// is at least InitialProtocolVersion (106); a bare handshake may omit
	// them.
	if uint32(msg.ProtocolVersion) < InitialProtocolVersion {
		return nil
	}

	if err := readNetAddress(r, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := readElement(r, &msg.Nonce); err != nil {
		return err
	}
	ua, err := ReadVarString(r, MaxUserAgentLen)
	if err != nil {
		return err
	}
	if len(ua) > MaxUserAgentLen {
		return io.ErrUnexpectedEOF
	}
	msg.UserAgent = ua
	if err := readElement(r, &msg.LastBlock); err != nil {
		return err
	}

	// Relay flag only present from BIP0037Version (70001) onward.
	if uint32(msg.ProtocolVersion) >= BIP0037Version {
		var relay bool
		if err := readElement(r, &relay); err != nil {
			if err == io.EOF {
				msg.DisableRelayTx = false
				return nil
			}
			return err
		}
		msg.DisableRelayTx = !relay
	}

	return nil
}

func (msg *MsgVersion) BtcEncode(w io.Writer, pver uint32) error {
	if err := writeElement(w, msg.ProtocolVersion); err != nil {
		return err
	}
	if err := writeElement(w, uint64(msg.Services)); err != nil {
		return err
	}
	if err := writeElement(w, msg.Timestamp.Unix()); err != nil {
		return err
	}
	if err := writeNetAddress(w, &msg.AddrYou, false); err != nil {
		return err
	}

	if uint32(msg.ProtocolVersion) < InitialProtocolVersion {
		return nil
	}

	if err := writeNetAddress(w, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := writeElement(w, msg.Nonce); err != nil {
		return err
	}
	if err := WriteVarString(w, msg.UserAgent); err != nil {
		return err
	}
	if err := writeElement(w, msg.LastBlock); err != nil {
		return err
	}

	if uint32(msg.ProtocolVersion) >= BIP0037Version {
		if err := writeElement(w, !msg.DisableRelayTx); err != nil {
			return err
		}
	}

	return nil
}

func (msg *MsgVersion) Command() string { return CmdVersion }

func (msg *MsgVersion) MaxPayloadLength(pver uint32) uint32 {
	return 4 + 8 + 8 + 26 + 26 + 8 + uint32(VarIntSerializeSize(MaxUserAgentLen)) + MaxUserAgentLen + 4 + 1
}

// MsgVerAck implements the Message interface and acknowledges a version
// message (carries no payload).
type MsgVerAck struct{}

func (msg *MsgVerAck) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgVerAck) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgVerAck) Command() string                         { return CmdVerAck }
func (msg *MsgVerAck) MaxPayloadLength(pver uint32) uint32      { return 0 }
