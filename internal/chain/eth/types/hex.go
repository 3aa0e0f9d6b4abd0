package ethtypes

import (
	"encoding/hex"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// HashLength is the length of a Keccak-256 digest and of a storage key.
const HashLength = 32

// Hash is a 32-byte value: a transaction hash or an access-list storage key.
type Hash [HashLength]byte

// BytesToHash converts b to a Hash, left-padding short input.
func BytesToHash(b []byte) Hash {
	var h Hash
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
	return h
}

// HexToHash parses exactly 32 hex-encoded bytes.
func HexToHash(s string) (Hash, error) {
	b, err := ParseHexBytes(s)
	if err != nil {
		return Hash{}, err
	}
	if len(b) != HashLength {
		return Hash{}, txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{
			"value":  s,
			"reason": "storage key must be 32 bytes",
		})
	}
	return BytesToHash(b), nil
}

// Bytes returns the hash as a byte slice.
func (h Hash) Bytes() []byte {
	b := make([]byte, HashLength)
	copy(b, h[:])
	return b
}

// Hex returns the hash as a lowercase 0x-prefixed hex string.
func (h Hash) Hex() string {
	return "0x" + hex.EncodeToString(h[:])
}

// String implements fmt.Stringer.
func (h Hash) String() string {
	return h.Hex()
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash) UnmarshalText(text []byte) error {
	parsed, err := HexToHash(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// ParseQuantity parses a hex quantity as used in JSON-RPC. The 0x prefix
// and at least one digit are required; leading zeros are accepted. Values
// wider than 256 bits are rejected.
func ParseQuantity(s string) (*uint256.Int, error) {
	trimmed := strings.TrimSpace(s)
	digits := trimHexPrefix(trimmed)
	if len(digits) == len(trimmed) || digits == "" || !isHexDigits(digits) {
		return nil, txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{"value": s})
	}

	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return nil, txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{"value": s})
	}

	q, overflow := uint256.FromBig(n)
	if overflow {
		return nil, txerr.WithDetails(txerr.ErrValueOverflow, map[string]string{"value": s})
	}
	return q, nil
}

// FormatQuantity renders q as minimal lowercase hex with 0x prefix.
// Nil and zero render as "0x0".
func FormatQuantity(q *uint256.Int) string {
	if q == nil {
		return "0x0"
	}
	return q.Hex()
}

// ParseHexBytes decodes a 0x-prefixed (or bare) hex byte string.
// "0x" and "" decode to an empty, non-nil slice.
func ParseHexBytes(s string) ([]byte, error) {
	digits := trimHexPrefix(strings.TrimSpace(s))
	if len(digits)%2 == 1 {
		digits = "0" + digits
	}
	b, err := hex.DecodeString(digits)
	if err != nil {
		return nil, txerr.WithCause(txerr.WithDetails(txerr.ErrInvalidHex, map[string]string{"value": s}), err)
	}
	if len(b) == 0 {
		return []byte{}, nil
	}
	return b, nil
}

// FormatHexBytes renders b as lowercase hex with 0x prefix.
func FormatHexBytes(b []byte) string {
	return "0x" + hex.EncodeToString(b)
}

// trimHexPrefix removes a leading 0x or 0X.
func trimHexPrefix(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}

func isHexDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') && (c < 'A' || c > 'F') {
			return false
		}
	}
	return true
}

// cloneQuantity returns a copy of q, or zero for nil.
func cloneQuantity(q *uint256.Int) *uint256.Int {
	if q == nil {
		return new(uint256.Int)
	}
	return new(uint256.Int).Set(q)
}

// cloneBytes returns a non-nil copy of b.
func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
