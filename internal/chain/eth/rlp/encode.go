// Package rlp implements RLP (Recursive Length Prefix) encoding and decoding
// for Ethereum transaction envelopes.
// See: https://ethereum.org/en/developers/docs/data-structures-and-encoding/rlp/
package rlp

import (
	"encoding/binary"
	"math/big"

	"github.com/holiman/uint256"
)

const (
	// offsetString is the tag base for byte strings.
	offsetString = 0x80
	// offsetList is the tag base for lists.
	offsetList = 0xc0
	// maxShortLength is the largest payload that fits in a single tag byte.
	maxShortLength = 55
)

// Encode encodes a value to RLP format.
// Supported types: []byte, string, uint64, *big.Int, *uint256.Int, Item,
// []Item and []any (for lists). Nil and negative integers encode as zero.
// A value containing an unsupported type anywhere encodes to nil.
func Encode(val any) []byte {
	out, ok := appendValue(nil, val)
	if !ok {
		return nil
	}
	return out
}

// appendValue appends the encoding of val to dst.
func appendValue(dst []byte, val any) ([]byte, bool) {
	switch v := val.(type) {
	case []byte:
		return appendString(dst, v), true
	case string:
		return appendString(dst, []byte(v)), true
	case uint64:
		return appendUint64(dst, v), true
	case *big.Int:
		if v == nil || v.Sign() <= 0 {
			return append(dst, offsetString), true
		}
		return appendString(dst, v.Bytes()), true
	case *uint256.Int:
		if v == nil || v.IsZero() {
			return append(dst, offsetString), true
		}
		return appendString(dst, v.Bytes()), true
	case Item:
		if !v.IsList() {
			return appendString(dst, v.Bytes()), true
		}
		return appendList(dst, len(v.List()), func(i int) any { return v.List()[i] })
	case []Item:
		return appendList(dst, len(v), func(i int) any { return v[i] })
	case []any:
		return appendList(dst, len(v), func(i int) any { return v[i] })
	default:
		return dst, false
	}
}

// appendString writes a byte string. A single byte below 0x80 is its own
// encoding; anything else carries a length header.
func appendString(dst, b []byte) []byte {
	if len(b) == 1 && b[0] < offsetString {
		return append(dst, b[0])
	}
	dst = appendHeader(dst, offsetString, len(b))
	return append(dst, b...)
}

func appendUint64(dst []byte, i uint64) []byte {
	switch {
	case i == 0:
		return append(dst, offsetString)
	case i < offsetString:
		return append(dst, byte(i)) //nolint:gosec // G115: i < 0x80
	}
	b := minimalBytes(i)
	dst = append(dst, offsetString+byte(len(b))) //nolint:gosec // G115: at most 8 bytes
	return append(dst, b...)
}

// appendList encodes n items into the tail of dst, then inserts the list
// header in front of them once the payload size is known.
func appendList(dst []byte, n int, at func(int) any) ([]byte, bool) {
	start := len(dst)
	var ok bool
	for i := range n {
		if dst, ok = appendValue(dst, at(i)); !ok {
			return dst[:start], false
		}
	}

	payload := len(dst) - start
	header := appendHeader(nil, offsetList, payload)
	dst = append(dst, header...)
	copy(dst[start+len(header):], dst[start:start+payload])
	copy(dst[start:], header)
	return dst, true
}

// appendHeader writes the tag for a payload of the given size. Payloads over
// 55 bytes use the long form: tag, then the big-endian size.
func appendHeader(dst []byte, offset byte, size int) []byte {
	if size <= maxShortLength {
		return append(dst, offset+byte(size)) //nolint:gosec // G115: size <= 55
	}
	sizeBytes := minimalBytes(uint64(size)) //nolint:gosec // G115: slice lengths are never negative
	dst = append(dst, offset+maxShortLength+byte(len(sizeBytes))) //nolint:gosec // G115: at most 8 bytes
	return append(dst, sizeBytes...)
}

// minimalBytes returns i big-endian with leading zero bytes removed.
func minimalBytes(i uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], i)
	for n, b := range buf {
		if b != 0 {
			return buf[n:]
		}
	}
	return nil
}
