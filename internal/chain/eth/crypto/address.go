package ethcrypto

import (
	"encoding/hex"
	"strings"
)

// ToChecksumAddress converts an Ethereum address to EIP-55 checksum format.
// Inputs that are not 40 hex characters are returned unchanged.
func ToChecksumAddress(address string) string {
	addr := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	if len(addr) != 40 {
		return address
	}

	hash := hex.EncodeToString(Keccak256([]byte(addr)))

	result := make([]byte, 42)
	result[0] = '0'
	result[1] = 'x'

	for i := 0; i < 40; i++ {
		c := addr[i]
		// uppercase letters whose hash nibble is >= 8
		if hash[i] >= '8' && c >= 'a' && c <= 'f' {
			result[i+2] = c - 32
		} else {
			result[i+2] = c
		}
	}

	return string(result)
}

// IsChecksumAddress reports whether a mixed-case address carries a valid
// EIP-55 checksum. All-lowercase and all-uppercase addresses carry none and
// are accepted.
func IsChecksumAddress(address string) bool {
	body := strings.TrimPrefix(address, "0x")
	if body == strings.ToLower(body) || body == strings.ToUpper(body) {
		return true
	}
	return ToChecksumAddress(address) == "0x"+body
}

// LeftPadBytes pads a byte slice with zeros on the left to the specified length.
func LeftPadBytes(b []byte, length int) []byte {
	if len(b) >= length {
		return b
	}
	result := make([]byte, length)
	copy(result[length-len(b):], b)
	return result
}
