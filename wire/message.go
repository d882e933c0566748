// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
)

// Commands used across the Zcash wire protocol.
const (
	CmdVersion     = "version"
	CmdVerAck      = "verack"
	CmdGetAddr     = "getaddr"
	CmdAddr        = "addr"
	CmdGetBlocks   = "getblocks"
	CmdInv         = "inv"
	CmdGetData     = "getdata"
	CmdNotFound    = "notfound"
	CmdBlock       = "block"
	CmdTx          = "tx"
	CmdGetHeaders  = "getheaders"
	CmdHeaders     = "headers"
	CmdPing        = "ping"
	CmdPong        = "pong"
	CmdFilterAdd   = "filteradd"
	CmdFilterClear = "filterclear"
	CmdFilterLoad  = "filterload"
	CmdMerkleBlock = "merkleblock"
	CmdReject      = "reject"
	CmdSendHeaders = "sendheaders"
	CmdFeeFilter   = "feefilter"
	CmdMempool     = "mempool"
	CmdCmpctBlock  = "cmpctblock"
	CmdBlockTxn    = "blocktxn"
	CmdGetBlockTxn = "getblocktxn"
)

// CommandSize is the fixed size in bytes of a command in a message header.
const CommandSize = 12

// MessageHeaderSize is the number of bytes in a wire message header:
// magic(4) + command(12) + length(4) + checksum(4).
const MessageHeaderSize = 24

// MaxMessagePayload is the maximum allowed payload size for any message,
// matching Zcash's maximum block size.
const MaxMessagePayload = 2 * 1024 * 1024

// messageHeader is the on-wire frame preceding every message payload.
type messageHeader struct {
	magic    ZcashNet
	command  string
	length   uint32
	checksum [4]byte
}

// ErrInvalidMagic is returned when a message's network magic does not match
// the expected network.
type ErrInvalidMagic struct {
	Got, Want ZcashNet
}

func (e *ErrInvalidMagic) Error() string {
	return fmt.Sprintf("invalid magic: got %s, want %s", e.Got, e.Want)
}

// ErrInvalidCommand is returned for a command outside the accepted set.
type ErrInvalidCommand struct {
	Command string
}

func (e *ErrInvalidCommand) Error() string {
	return fmt.Sprintf("invalid command %q", e.Command)
}

// ErrInvalidChecksum is returned when the payload checksum does not match
// the header.
type ErrInvalidChecksum struct {
	Got, Want [4]byte
}

func (e *ErrInvalidChecksum) Error() string {
	return fmt.Sprintf("invalid checksum: got %x, want %x", e.Got, e.Want)
}

// validCommands is the accepted set of commands for InvalidCommand checks.
var validCommands = map[string]func() Message{
	CmdVersion:     func() Message { return &MsgVersion{} },
	CmdVerAck:      func() Message { return &MsgVerAck{} },
	CmdGetAddr:     func() Message { return &MsgGetAddr{} },
	CmdAddr:        func() Message { return &MsgAddr{} },
	CmdGetBlocks:   func() Message { return &MsgGetBlocks{} },
	CmdInv:         func() Message { return &MsgInv{} },
	CmdGetData:     func() Message { return &MsgGetData{} },
	CmdNotFound:    func() Message { return &MsgNotFound{} },
	CmdBlock:       func() Message { return &MsgBlock{} },
	CmdTx:          func() Message { return &MsgTx{} },
	CmdGetHeaders:  func() Message { return &MsgGetHeaders{} },
	CmdHeaders:     func() Message { return &MsgHeaders{} },
	CmdPing:        func() Message { return &MsgPing{} },
	CmdPong:        func() Message { return &MsgPong{} },
	CmdFilterAdd:   func() Message { return &MsgFilterAdd{} },
	CmdFilterClear: func() Message { return &MsgFilterClear{} },
	CmdFilterLoad:  func() Message { return &MsgFilterLoad{} },
	CmdMerkleBlock: func() Message { return &MsgMerkleBlock{} },
	CmdSendHeaders: func() Message { return &MsgSendHeaders{} },
	CmdFeeFilter:   func() Message { return &MsgFeeFilter{} },
	CmdMempool:     func() Message { return &MsgMempool{} },
}

// Message is the interface all wire payload types implement.
type Message interface {
	BtcDecode(r io.Reader, pver uint32) error
	BtcEncode(w io.Writer, pver uint32) error
	Command() string
	MaxPayloadLength(pver uint32) uint32
}

// makeEmptyMessage constructs a zero-value Message for the given command, or
// an ErrInvalidCommand if the command is not recognized.
func makeEmptyMessage(command string) (Message, error) {
	ctor, ok := validCommands[command]
	if !ok {
		return nil, &ErrInvalidCommand{Command: command}
	}
	return ctor(), nil
}

func checksum(payload []byte) [4]byte {
	first := sha256.Sum256(payload)
	second := sha256.Sum256(first[:])
	var out [4]byte
	copy(out[:], second[:4])
	return out
}

// WriteMessage writes a full wire frame (header + payload) for msg to w.
func WriteMessage(w io.Writer, msg Message, pver uint32, net ZcashNet) error {
	var command [CommandSize]byte
	cmd := msg.Command()
	if len(cmd) > CommandSize {
		return fmt.Errorf("command %q too long", cmd)
	}
	copy(command[:], cmd)

	var bw bytes.Buffer
	if err := msg.BtcEncode(&bw, pver); err != nil {
		return err
	}
	payload := bw.Bytes()
	lenp := uint32(len(payload))

	maxPayload := msg.MaxPayloadLength(pver)
	if lenp > maxPayload {
		return fmt.Errorf("message payload for %q is %d bytes which exceeds max of %d",
			cmd, lenp, maxPayload)
	}

	var hw bytes.Buffer
	if err := writeElement(&hw, uint32(net)); err != nil {
		return err
	}
	if _, err := hw.Write(command[:]); err != nil {
		return err
	}
	if err := writeElement(&hw, lenp); err != nil {
		return err
	}
	sum := checksum(payload)
	if _, err := hw.Write(sum[:]); err != nil {
		return err
	}

	if _, err := w.Write(hw.Bytes()); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// ReadMessage reads a full wire frame from r, validating magic, command,
// length, and checksum, and returns the decoded Message along with the raw
// payload bytes.
func ReadMessage(r io.Reader, pver uint32, net ZcashNet) (Message, []byte, error) {
	var hdr [MessageHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, nil, err
	}
	hb := bytes.NewReader(hdr[:])

	var magic uint32
	if err := readElement(hb, &magic); err != nil {
		return nil, nil, err
	}
	if ZcashNet(magic) != net {
		return nil, nil, &ErrInvalidMagic{Got: ZcashNet(magic), Want: net}
	}

	var cmdBuf [CommandSize]byte
	if _, err := io.ReadFull(hb, cmdBuf[:]); err != nil {
		return nil, nil, err
	}
	i := bytes.IndexByte(cmdBuf[:], 0)
	if i == -1 {
		i = CommandSize
	}
	command := string(cmdBuf[:i])

	var length uint32
	if err := readElement(hb, &length); err != nil {
		return nil, nil, err
	}
	if length > MaxMessagePayload {
		return nil, nil, fmt.Errorf("message length %d exceeds max %d", length, MaxMessagePayload)
	}

	var wantSum [4]byte
	if _, err := io.ReadFull(hb, wantSum[:]); err != nil {
		return nil, nil, err
	}

	msg, err := makeEmptyMessage(command)
	if err != nil {
		// Drain the payload so the stream stays in sync even when we
		// reject the command.
		io.CopyN(io.Discard, r, int64(length))
		return nil, nil, err
	}

	maxPayload := msg.MaxPayloadLength(pver)
	if length > maxPayload {
		io.CopyN(io.Discard, r, int64(length))
		return nil, nil, fmt.Errorf("%s payload of %d bytes exceeds max of %d",
			command, length, maxPayload)
	}

	payload := make([]byte, length)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, nil, err
	}

	gotSum := checksum(payload)
	if gotSum != wantSum {
		return nil, nil, &ErrInvalidChecksum{Got: gotSum, Want: wantSum}
	}

	if err := msg.BtcDecode(bytes.NewReader(payload), pver); err != nil {
		return nil, nil, err
	}

	return msg, payload, nil
}
