package ethtypes

import (
	"github.com/holiman/uint256"

	ethcrypto "github.com/mrz1836/ethtx/internal/chain/eth/crypto"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// Signer produces a 65-byte [R || S || V] secp256k1 signature over a
// 32-byte hash, with V the recovery id (0 or 1).
type Signer interface {
	SignHash(hash []byte) ([]byte, error)
}

// SigningHash returns the Keccak-256 digest of the envelope's signing payload.
func SigningHash(env Envelope) Hash {
	return BytesToHash(ethcrypto.Keccak256(env.Encode(SigningPayload)))
}

// TransactionHash returns the Keccak-256 digest of the full encoding,
// the identifier a node reports for a broadcast transaction.
func TransactionHash(env Envelope) Hash {
	return BytesToHash(ethcrypto.Keccak256(env.Encode(FullTransaction)))
}

// SignEnvelope signs env with signer and stores v, r and s.
// Legacy envelopes use EIP-155 v values when ChainID is non-zero.
func SignEnvelope(env Envelope, signer Signer) error {
	hash := SigningHash(env)
	sig, err := signer.SignHash(hash[:])
	if err != nil {
		return txerr.WithCause(txerr.ErrSigningFailed, err)
	}
	if len(sig) != ethcrypto.SignatureLength || sig[64] > 1 {
		return txerr.WithDetails(txerr.ErrSigningFailed, map[string]string{"reason": "signer returned a malformed signature"})
	}

	r := new(uint256.Int).SetBytes(sig[0:32])
	s := new(uint256.Int).SetBytes(sig[32:64])
	v := uint256.NewInt(uint64(sig[64]))

	if legacy, ok := env.(*LegacyTx); ok {
		v = legacyV(legacy.ChainID, sig[64])
	}
	env.SetSignatureValues(v, r, s)
	return nil
}

// legacyV returns chainID*2+35+recid, or 27+recid without a chain ID.
func legacyV(chainID *uint256.Int, recid byte) *uint256.Int {
	if chainID == nil || chainID.IsZero() {
		return uint256.NewInt(27 + uint64(recid))
	}
	v := new(uint256.Int).Lsh(chainID, 1)
	return v.AddUint64(v, 35+uint64(recid))
}

// recoveryID extracts the recovery id from v for the envelope type.
func recoveryID(env Envelope, v *uint256.Int) (byte, error) {
	invalid := txerr.WithDetails(txerr.ErrInvalidSignature, map[string]string{"v": quantityString(v)})

	legacy, ok := env.(*LegacyTx)
	if !ok {
		if !v.IsUint64() || v.Uint64() > 1 {
			return 0, invalid
		}
		return byte(v.Uint64()), nil
	}

	base := legacyV(legacy.ChainID, 0)
	if v.Lt(base) {
		return 0, invalid
	}
	recid := new(uint256.Int).Sub(v, base)
	if !recid.IsUint64() || recid.Uint64() > 1 {
		return 0, invalid
	}
	return byte(recid.Uint64()), nil
}

// Sender recovers the address that signed env.
func Sender(env Envelope) (Address, error) {
	if !IsSigned(env) {
		return Address{}, txerr.ErrNotSigned
	}

	v, r, s := env.RawSignatureValues()
	recid, err := recoveryID(env, v)
	if err != nil {
		return Address{}, err
	}

	sig := make([]byte, ethcrypto.SignatureLength)
	rb, sb := r.Bytes32(), s.Bytes32()
	copy(sig[0:32], rb[:])
	copy(sig[32:64], sb[:])
	sig[64] = recid

	hash := SigningHash(env)
	pub, err := ethcrypto.RecoverPublicKey(hash[:], sig)
	if err != nil {
		return Address{}, txerr.WithCause(txerr.ErrInvalidSignature, err)
	}
	addr, err := ethcrypto.PublicKeyToAddress(pub)
	if err != nil {
		return Address{}, txerr.WithCause(txerr.ErrInvalidSignature, err)
	}
	return BytesToAddress(addr), nil
}
