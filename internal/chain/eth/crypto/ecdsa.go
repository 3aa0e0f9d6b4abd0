package ethcrypto

import (
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureLength is the size of an [R || S || V] signature.
const SignatureLength = 65

var (
	// ErrInvalidPrivateKey indicates the private key is invalid.
	ErrInvalidPrivateKey = errors.New("invalid private key")

	// ErrInvalidSignature indicates the signature is invalid.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrInvalidHashLength indicates the hash length is not 32 bytes.
	ErrInvalidHashLength = errors.New("hash must be 32 bytes")

	// ErrInvalidRecoveryID indicates the recovery id is not 0 or 1.
	ErrInvalidRecoveryID = errors.New("invalid signature recovery id")

	// ErrInvalidPublicKeyPrefix indicates an invalid public key prefix.
	ErrInvalidPublicKeyPrefix = errors.New("invalid public key prefix")

	// ErrInvalidPublicKeyLength indicates an invalid public key length.
	ErrInvalidPublicKeyLength = errors.New("invalid public key length")
)

// parsePrivateKey rejects keys that are not 32 bytes or not in [1, n).
func parsePrivateKey(privateKey []byte) (*secp256k1.PrivateKey, error) {
	if len(privateKey) != 32 {
		return nil, ErrInvalidPrivateKey
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(privateKey); overflow || scalar.IsZero() {
		return nil, ErrInvalidPrivateKey
	}
	return secp256k1.NewPrivateKey(&scalar), nil
}

// Sign signs hash and returns a 65-byte [R || S || V] signature with V in {0, 1}.
// Signatures are deterministic (RFC 6979) and use the low-S form.
func Sign(hash, privateKey []byte) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}

	// compact form is [27+V || R || S]
	compact := ecdsa.SignCompact(key, hash, false)
	if len(compact) != SignatureLength {
		return nil, ErrInvalidSignature
	}
	return append(compact[1:], compact[0]-27), nil
}

// RecoverPublicKey returns the uncompressed public key that produced sig over hash.
// sig must be in [R || S || V] format with V in {0, 1}.
func RecoverPublicKey(hash, sig []byte) ([]byte, error) {
	if len(hash) != HashLength {
		return nil, ErrInvalidHashLength
	}
	if len(sig) != SignatureLength {
		return nil, ErrInvalidSignature
	}
	if sig[64] > 1 {
		return nil, ErrInvalidRecoveryID
	}

	compact := make([]byte, SignatureLength)
	compact[0] = sig[64] + 27
	copy(compact[1:], sig[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, hash)
	if err != nil {
		return nil, errors.Join(ErrInvalidSignature, err)
	}
	return pub.SerializeUncompressed(), nil
}

// PrivateKeyToPublicKey returns the uncompressed public key (0x04 || X || Y).
func PrivateKeyToPublicKey(privateKey []byte) ([]byte, error) {
	key, err := parsePrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return key.PubKey().SerializeUncompressed(), nil
}

// PublicKeyToAddress derives an Ethereum address from an uncompressed public key.
// The public key should be 65 bytes (0x04 prefix + 64 bytes X,Y coordinates)
// or 64 bytes (just the X,Y coordinates without prefix).
func PublicKeyToAddress(publicKey []byte) ([]byte, error) {
	var pubKeyBytes []byte

	switch len(publicKey) {
	case 65:
		if publicKey[0] != 0x04 {
			return nil, ErrInvalidPublicKeyPrefix
		}
		pubKeyBytes = publicKey[1:]
	case 64:
		pubKeyBytes = publicKey
	default:
		return nil, ErrInvalidPublicKeyLength
	}

	// the address is the last 20 bytes of the hash
	hash := Keccak256(pubKeyBytes)
	return hash[12:], nil
}

// DeriveAddress derives an Ethereum address from a private key.
func DeriveAddress(privateKey []byte) ([]byte, error) {
	pubKey, err := PrivateKeyToPublicKey(privateKey)
	if err != nil {
		return nil, err
	}
	return PublicKeyToAddress(pubKey)
}
