// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The zecnode developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// MaxVarIntPayload is the maximum payload size for a variable length
// integer.
const MaxVarIntPayload = 9

var littleEndian = binary.LittleEndian

// errNonCanonicalVarInt is the reason a variable length integer is rejected
// if it is not minimally encoded.
var errNonCanonicalVarInt = fmt.Errorf("non-canonical varint")

// ReadVarInt reads a variable length integer from r and returns it as a
// uint64, using the 0xFD/0xFE/0xFF length-prefix scheme.
func ReadVarInt(r io.Reader) (uint64, error) {
	var b [9]byte
	if _, err := io.ReadFull(r, b[0:1]); err != nil {
		return 0, err
	}

	var rv uint64
	switch b[0] {
	case 0xff:
		if _, err := io.ReadFull(r, b[1:9]); err != nil {
			return 0, err
		}
		rv = littleEndian.Uint64(b[1:9])
		if rv < 0x100000000 {
			return 0, errNonCanonicalVarInt
		}
	case 0xfe:
		if _, err := io.ReadFull(r, b[1:5]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint32(b[1:5]))
		if rv < 0x10000 {
			return 0, errNonCanonicalVarInt
		}
	case 0xfd:
		if _, err := io.ReadFull(r, b[1:3]); err != nil {
			return 0, err
		}
		rv = uint64(littleEndian.Uint16(b[1:3]))
		if rv < 0xfd {
			return 0, errNonCanonicalVarInt
		}
	default:
		rv = uint64(b[0])
	}

	return rv, nil
}

// WriteVarInt writes val to w using the compact 0xFD/0xFE/0xFF scheme.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		_, err := w.Write([]byte{byte(val)})
		return err
	}
	if val <= 0xffff {
		var b [3]byte
		b[0] = 0xfd
		littleEndian.PutUint16(b[1:], uint16(val))
		_, err := w.Write(b[:])
		return err
	}
	if val <= 0xffffffff {
		var b [5]byte
		b[0] = 0xfe
		littleEndian.PutUint32(b[1:], uint32(val))
		_, err := w.Write(b[:])
		return err
	}
	var b [9]byte
	b[0] = 0xff
	littleEndian.PutUint64(b[1:], val)
	_, err := w.Write(b[:])
	return err
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	switch {
	case val < 0xfd:
		return 1
	case val <= 0xffff:
		return 3
	case val <= 0xffffffff:
		return 5
	default:
		return 9
	}
}

// ReadVarBytes reads a variable length byte slice prefixed with a compact
// size integer, rejecting anything above maxAllowed.
func ReadVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, fmt.Errorf("%s: %d exceeds max allowed %d", fieldName, count, maxAllowed)
	}
	b := make([]byte, count)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteVarBytes writes a compact-size length prefix followed by b.
func WriteVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

// ReadVarString reads a compact-size length-prefixed string.
func ReadVarString(r io.Reader, maxAllowed uint64) (string, error) {
	b, err := ReadVarBytes(r, maxAllowed, "string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteVarString writes a compact-size length prefixed string.
func WriteVarString(w io.Writer, s string) error {
	return WriteVarBytes(w, []byte(s))
}

func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int32(littleEndian.Uint32(b[:]))
		return nil
	case *uint32:
		var b [4]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint32(b[:])
		return nil
	case *int64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = int64(littleEndian.Uint64(b[:]))
		return nil
	case *uint64:
		var b [8]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = littleEndian.Uint64(b[:])
		return nil
	case *bool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return err
		}
		*e = b[0] != 0
		return nil
	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		return err
	default:
		return binary.Read(r, littleEndian, element)
	}
}

func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		var b [4]byte
		littleEndian.PutUint32(b[:], uint32(e))
		_, err := w.Write(b[:])
		return err
	case uint32:
		var b [4]byte
		littleEndian.PutUint32(b[:], e)
		_, err := w.Write(b[:])
		return err
	case int64:
		var b [8]byte
		littleEndian.PutUint64(b[:], uint64(e))
		_, err := w.Write(b[:])
		return err
	case uint64:
		var b [8]byte
		littleEndian.PutUint64(b[:], e)
		_, err := w.Write(b[:])
		return err
	case bool:
		var b [1]byte
		if e {
			b[0] = 1
		}
		_, err := w.Write(b[:])
		return err
	case chainhash.Hash:
		_, err := w.Write(e[:])
		return err
	default:
		return binary.Write(w, littleEndian, element)
	}
}
