// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestWriteReadMessageRoundTrip(t *testing.T) {
	msg := &MsgPing{Nonce: 0xdeadbeefcafebabe}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, MainNet))

	got, _, err := ReadMessage(&buf, ProtocolVersion, MainNet)
	require.NoError(t, err)
	gotPing, ok := got.(*MsgPing)
	require.True(t, ok)
	require.Equal(t, msg.Nonce, gotPing.Nonce)
}

func TestReadMessageInvalidMagic(t *testing.T) {
	msg := &MsgVerAck{}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, MainNet))

	_, _, err := ReadMessage(&buf, ProtocolVersion, TestNet)
	require.Error(t, err)
	var magicErr *ErrInvalidMagic
	require.ErrorAs(t, err, &magicErr)
}

func TestReadMessageInvalidCommand(t *testing.T) {
	var buf bytes.Buffer
	msg := &MsgVerAck{}
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, MainNet))

	raw := buf.Bytes()
	copy(raw[4:16], []byte("notacommand\x00"))
	// Recompute nothing: command corruption should surface as
	// ErrInvalidCommand before checksum is even consulted.
	_, _, err := ReadMessage(bytes.NewReader(raw), ProtocolVersion, MainNet)
	require.Error(t, err)
	var cmdErr *ErrInvalidCommand
	require.ErrorAs(t, err, &cmdErr)
}

func TestReadMessageInvalidChecksum(t *testing.T) {
	msg := &MsgPing{Nonce: 42}
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, msg, ProtocolVersion, MainNet))

	raw := buf.Bytes()
	// Flip a single byte of the checksum field (offset 20..24).
	raw[20] ^= 0xff

	_, _, err := ReadMessage(bytes.NewReader(raw), ProtocolVersion, MainNet)
	require.Error(t, err)
	var sumErr *ErrInvalidChecksum
	require.ErrorAs(t, err, &sumErr)
}

func TestVarIntRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		val := rapid.Uint64().Draw(rt, "val")
		var buf bytes.Buffer
		require.NoError(rt, WriteVarInt(&buf, val))
		require.Equal(rt, VarIntSerializeSize(val), buf.Len())

		got, err := ReadVarInt(&buf)
		require.NoError(rt, err)
		require.Equal(rt, val, got)
	})
}

func TestBlockHeaderRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		h := randomBlockHeader(rt)
		var buf bytes.Buffer
		require.NoError(rt, h.BtcEncode(&buf, ProtocolVersion))

		var got BlockHeader
		require.NoError(rt, got.BtcDecode(&buf, ProtocolVersion))
		require.Equal(rt, h.Version, got.Version)
		require.Equal(rt, h.PrevBlock, got.PrevBlock)
		require.Equal(rt, h.MerkleRoot, got.MerkleRoot)
		require.Equal(rt, h.FinalSaplingRoot, got.FinalSaplingRoot)
		require.Equal(rt, h.Timestamp.Unix(), got.Timestamp.Unix())
		require.Equal(rt, h.Bits, got.Bits)
		require.Equal(rt, h.Nonce, got.Nonce)
		require.Equal(rt, h.Solution, got.Solution)
	})
}

func randomBlockHeader(rt *rapid.T) *BlockHeader {
	var prev, merkle, saplingRoot chainhash.Hash
	copy(prev[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "prevbytes"))
	copy(merkle[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "merklebytes"))
	copy(saplingRoot[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "saplingbytes"))
	var nonce [32]byte
	copy(nonce[:], rapid.SliceOfN(rapid.Byte(), 32, 32).Draw(rt, "noncebytes"))
	sol := rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(rt, "solution")

	return &BlockHeader{
		Version:          rapid.Int32().Draw(rt, "version"),
		PrevBlock:        prev,
		MerkleRoot:       merkle,
		FinalSaplingRoot: saplingRoot,
		Timestamp:        time.Unix(rapid.Int64Range(0, 4000000000).Draw(rt, "ts"), 0),
		Bits:             rapid.Uint32().Draw(rt, "bits"),
		Nonce:            nonce,
		Solution:         sol,
	}
}
