// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"io"
	"net"
	"time"
)

// NetAddress defines information about a peer on the network, including the
// time it was last seen, its services, and its IP address and port.
type NetAddress struct {
	Timestamp time.Time
	Services  ServiceFlag
	IP        net.IP
	Port      uint16
}

// NewNetAddressIPPort returns a new NetAddress using the provided IP,
// port, and supported service flags.
func NewNetAddressIPPort(ip net.IP, port uint16, services ServiceFlag) *NetAddress {
	return &NetAddress{
		Timestamp: time.Now(),
		Services:  services,
		IP:        ip,
		Port:      port,
	}
}

func readNetAddress(r io.Reader, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		var ts uint32
		if err := readElement(r, &ts); err != nil {
			return err
		}
		na.Timestamp = time.Unix(int64(ts), 0)
	}
	var services uint64
	if err := readElement(r, &services); err != nil {
		return err
	}
	na.Services = ServiceFlag(services)

	var ip [16]byte
	if _, err := io.ReadFull(r, ip[:]); err != nil {
		return err
	}
	na.IP = net.IP(append([]byte(nil), ip[:]...))

	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}
	na.Port = uint16(port[0])<<8 | uint16(port[1])
	return nil
}

func writeNetAddress(w io.Writer, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := writeElement(w, uint32(na.Timestamp.Unix())); err != nil {
			return err
		}
	}
	if err := writeElement(w, uint64(na.Services)); err != nil {
		return err
	}
	var ip [16]byte
	if na.IP != nil {
		copy(ip[:], na.IP.To16())
	}
	if _, err := w.Write(ip[:]); err != nil {
		return err
	}
	port := [2]byte{byte(na.Port >> 8), byte(na.Port)}
	_, err := w.Write(port[:])
	return err
}

// MsgAddr implements the Message interface and is used to convey known
// active peers on the network.
type MsgAddr struct {
	AddrList []*NetAddress
}

// MaxAddrPerMsg is the maximum number of addresses in a single addr message.
const MaxAddrPerMsg = 1000

func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return io.ErrShortBuffer
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

func (msg *MsgAddr) BtcDecode(r io.Reader, pver uint32) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxAddrPerMsg {
		return io.ErrUnexpectedEOF
	}
	msg.AddrList = make([]*NetAddress, count)
	for i := range msg.AddrList {
		na := &NetAddress{}
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		msg.AddrList[i] = na
	}
	return nil
}

func (msg *MsgAddr) BtcEncode(w io.Writer, pver uint32) error {
	if len(msg.AddrList) > MaxAddrPerMsg {
		return io.ErrShortBuffer
	}
	if err := WriteVarInt(w, uint64(len(msg.AddrList))); err != nil {
		return err
	}
	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgAddr) Command() string { return CmdAddr }

func (msg *MsgAddr) MaxPayloadLength(pver uint32) uint32 {
	return uint32(3 + (MaxAddrPerMsg * 30))
}

// MsgGetAddr implements the Message interface and is used to request a list
// of known active peers from a peer (carries no payload).
type MsgGetAddr struct{}

func (msg *MsgGetAddr) BtcDecode(r io.Reader, pver uint32) error { return nil }
func (msg *MsgGetAddr) BtcEncode(w io.Writer, pver uint32) error { return nil }
func (msg *MsgGetAddr) Command() string                         { return CmdGetAddr }
func (msg *MsgGetAddr) MaxPayloadLength(pver uint32) uint32      { return 0 }
