// Package keystore holds a single secp256k1 private key and signs transaction
// hashes with it. Keys live in locked memory and can be persisted to disk,
// optionally encrypted with an age passphrase.
package keystore

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	ethcrypto "github.com/mrz1836/ethtx/internal/chain/eth/crypto"
	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/fileutil"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

const (
	// privateKeyLength is the size of a raw secp256k1 scalar.
	privateKeyLength = 32

	// keyFilePermissions is the permission mode for key files.
	keyFilePermissions = 0o600

	// keyDirPermissions is the permission mode for the key directory.
	keyDirPermissions = 0o750
)

// ErrClosed indicates the keystore was used after Close.
var ErrClosed = errors.New("keystore is closed")

// keyFile is the on-disk representation of a stored key.
type keyFile struct {
	Address      string `json:"address"`
	Key          string `json:"key,omitempty"`
	EncryptedKey []byte `json:"encrypted_key,omitempty"`
}

// PlainKeystore signs with one private key held in memory.
type PlainKeystore struct {
	key     *secureBytes
	address ethtypes.Address
}

// New creates a keystore from a raw 32-byte private key.
// The caller may zero privateKey after this call returns.
func New(privateKey []byte) (*PlainKeystore, error) {
	if len(privateKey) != privateKeyLength {
		return nil, txerr.WithDetails(txerr.ErrInvalidKey, map[string]string{
			"length": fmt.Sprintf("%d", len(privateKey)),
		})
	}

	addr, err := ethcrypto.DeriveAddress(privateKey)
	if err != nil {
		return nil, txerr.WithCause(txerr.ErrInvalidKey, err)
	}

	return &PlainKeystore{
		key:     newSecureBytes(privateKey),
		address: ethtypes.BytesToAddress(addr),
	}, nil
}

// FromHex creates a keystore from a hex-encoded private key, with or without 0x.
func FromHex(s string) (*PlainKeystore, error) {
	raw, err := hex.DecodeString(strings.TrimPrefix(strings.TrimSpace(s), "0x"))
	if err != nil {
		return nil, txerr.WithCause(txerr.ErrInvalidKey, err)
	}
	defer zero(raw)

	return New(raw)
}

// Generate creates a keystore with a fresh random key.
func Generate() (*PlainKeystore, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating private key: %w", err)
	}
	defer priv.Zero()

	raw := priv.Serialize()
	defer zero(raw)

	return New(raw)
}

// LoadFile reads a key file written by Save. A file holding only a hex key is
// also accepted. The passphrase is ignored for unencrypted files.
func LoadFile(path, passphrase string) (*PlainKeystore, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: key path is chosen by the user
	if errors.Is(err, os.ErrNotExist) {
		return nil, txerr.WithDetails(txerr.ErrKeyFileNotFound, map[string]string{"path": path})
	}
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}
	defer zero(data)

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return FromHex(string(trimmed))
	}

	var kf keyFile
	if err := json.Unmarshal(trimmed, &kf); err != nil {
		return nil, fmt.Errorf("parsing key file: %w", err)
	}

	var ks *PlainKeystore
	switch {
	case len(kf.EncryptedKey) > 0:
		raw, err := decrypt(kf.EncryptedKey, passphrase)
		if err != nil {
			return nil, txerr.WithCause(txerr.ErrDecryptionFailed, err)
		}
		ks, err = New(raw)
		zero(raw)
		if err != nil {
			return nil, err
		}
	case kf.Key != "":
		if ks, err = FromHex(kf.Key); err != nil {
			return nil, err
		}
	default:
		return nil, txerr.WithDetails(txerr.ErrInvalidKey, map[string]string{"path": path})
	}

	if kf.Address != "" && !strings.EqualFold(kf.Address, ks.address.Hex()) {
		ks.Close()
		return nil, txerr.WithDetails(txerr.ErrInvalidKey, map[string]string{
			"address": kf.Address,
			"derived": ks.address.Hex(),
		})
	}
	return ks, nil
}

// Save writes the key to path atomically. A non-empty passphrase encrypts the
// key with age; an empty one stores it as hex.
func (k *PlainKeystore) Save(path, passphrase string) error {
	key := k.key.bytes()
	if key == nil {
		return ErrClosed
	}

	if err := os.MkdirAll(filepath.Dir(path), keyDirPermissions); err != nil {
		return fmt.Errorf("creating key directory: %w", err)
	}

	kf := keyFile{Address: k.address.Hex()}
	if passphrase == "" {
		kf.Key = hex.EncodeToString(key)
	} else {
		encrypted, err := encrypt(key, passphrase)
		if err != nil {
			return fmt.Errorf("encrypting key: %w", err)
		}
		kf.EncryptedKey = encrypted
	}

	data, err := json.MarshalIndent(kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling key file: %w", err)
	}
	defer zero(data)

	return fileutil.WriteAtomic(path, data, keyFilePermissions)
}

// Address returns the address controlled by the key.
func (k *PlainKeystore) Address() ethtypes.Address {
	return k.address
}

// SignHash signs a 32-byte hash and returns [R || S || V] with V in {0, 1}.
func (k *PlainKeystore) SignHash(hash []byte) ([]byte, error) {
	key := k.key.bytes()
	if key == nil {
		return nil, ErrClosed
	}
	return ethcrypto.Sign(hash, key)
}

// SignMessage signs message as an EIP-191 personal message and returns
// [R || S || V] with V in {27, 28}, the form personal_sign returns.
func (k *PlainKeystore) SignMessage(message []byte) ([]byte, error) {
	sig, err := k.SignHash(ethcrypto.HashMessage(message))
	if err != nil {
		return nil, err
	}
	sig[64] += 27
	return sig, nil
}

// Locked reports whether the key memory is pinned against swapping.
func (k *PlainKeystore) Locked() bool {
	return k.key.isLocked()
}

// Close zeroes the key. The keystore cannot sign afterwards.
func (k *PlainKeystore) Close() {
	k.key.destroy()
}

func encrypt(plaintext []byte, passphrase string) ([]byte, error) {
	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	w, err := age.Encrypt(buf, recipient)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(plaintext); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decrypt(ciphertext []byte, passphrase string) ([]byte, error) {
	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return nil, err
	}

	r, err := age.Decrypt(bytes.NewReader(ciphertext), identity)
	if err != nil {
		return nil, err
	}
	return io.ReadAll(r)
}

var _ ethtypes.Signer = (*PlainKeystore)(nil)
