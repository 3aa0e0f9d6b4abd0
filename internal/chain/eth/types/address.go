package ethtypes

import (
	"encoding/hex"
	"strconv"
	"strings"

	ethcrypto "github.com/mrz1836/ethtx/internal/chain/eth/crypto"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

const (
	// AddressLength is the expected length of an Ethereum address.
	AddressLength = 20
)

// Address represents a 20-byte Ethereum address, or the contract creation
// sentinel which encodes as an empty recipient.
type Address struct {
	raw      [AddressLength]byte
	creation bool
}

// CreationAddress returns the contract creation sentinel.
func CreationAddress() Address {
	return Address{creation: true}
}

// BytesToAddress converts a byte slice to an Address.
// Short input is left-padded; long input keeps the last 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a.raw[AddressLength-len(b):], b)
	return a
}

// AddressFromWire converts a recipient slot to an Address.
// An empty slot is the creation sentinel; any length other than 0 or 20 fails.
func AddressFromWire(b []byte) (Address, error) {
	switch len(b) {
	case 0:
		return CreationAddress(), nil
	case AddressLength:
		return BytesToAddress(b), nil
	default:
		return Address{}, txerr.WithDetails(txerr.ErrInvalidAddress, map[string]string{
			"length": strconv.Itoa(len(b)),
		})
	}
}

// HexToAddress converts a hex string to an Address. Hex digits are case-insensitive.
func HexToAddress(s string) (Address, error) {
	s = trimHexPrefix(s)
	if len(s) != AddressLength*2 {
		return Address{}, txerr.ErrInvalidAddress
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, txerr.WithCause(txerr.ErrInvalidAddress, err)
	}

	return BytesToAddress(b), nil
}

// MustHexToAddress converts a hex string to an Address, panicking on error.
// Only use in initialization code with known-good addresses.
func MustHexToAddress(s string) Address {
	addr, err := HexToAddress(s)
	if err != nil {
		panic(err)
	}
	return addr
}

// IsCreation returns true for the contract creation sentinel.
func (a Address) IsCreation() bool {
	return a.creation
}

// Bytes returns the address as a byte slice, or nil for the creation sentinel.
func (a Address) Bytes() []byte {
	if a.creation {
		return nil
	}
	b := make([]byte, AddressLength)
	copy(b, a.raw[:])
	return b
}

// Hex returns the address as a lowercase hex string with 0x prefix.
// The creation sentinel is "0x".
func (a Address) Hex() string {
	if a.creation {
		return "0x"
	}
	return "0x" + hex.EncodeToString(a.raw[:])
}

// String returns the EIP-55 checksummed hex representation.
func (a Address) String() string {
	if a.creation {
		return a.Hex()
	}
	return ethcrypto.ToChecksumAddress(a.Hex())
}

// IsZero returns true if the address is twenty zero bytes.
func (a Address) IsZero() bool {
	if a.creation {
		return false
	}
	for _, b := range a.raw {
		if b != 0 {
			return false
		}
	}
	return true
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// "0x" and "0x0" decode to the creation sentinel.
func (a *Address) UnmarshalText(text []byte) error {
	s := string(text)
	if isCreationText(s) {
		*a = CreationAddress()
		return nil
	}
	parsed, err := HexToAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isCreationText(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "0x", "0x0":
		return true
	default:
		return false
	}
}
