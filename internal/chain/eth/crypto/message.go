package ethcrypto

import (
	"strconv"
)

// messagePrefix opens every EIP-191 personal message digest.
const messagePrefix = "\x19Ethereum Signed Message:\n"

// HashMessage returns the EIP-191 personal_sign digest of message:
// keccak256(prefix || decimal length || message).
func HashMessage(message []byte) []byte {
	return Keccak256([]byte(messagePrefix+strconv.Itoa(len(message))), message)
}

// RecoverMessageSigner returns the address that produced a personal_sign
// signature over message. V may be 27/28 as wallets emit it, or 0/1.
func RecoverMessageSigner(message, sig []byte) ([]byte, error) {
	if len(sig) != SignatureLength {
		return nil, ErrInvalidSignature
	}

	normalized := make([]byte, SignatureLength)
	copy(normalized, sig)
	if normalized[64] >= 27 {
		normalized[64] -= 27
	}

	pub, err := RecoverPublicKey(HashMessage(message), normalized)
	if err != nil {
		return nil, err
	}
	return PublicKeyToAddress(pub)
}
