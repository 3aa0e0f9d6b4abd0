// Package ethtypes provides the Ethereum transaction envelopes: legacy,
// EIP-2930 access list and EIP-1559 fee market transactions, with their
// wire and JSON codecs.
package ethtypes

import (
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/mrz1836/ethtx/internal/chain/eth/rlp"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// TxType is the EIP-2718 envelope type.
type TxType uint8

// Supported envelope types.
const (
	LegacyTxType     TxType = 0x00
	AccessListTxType TxType = 0x01
	FeeMarketTxType  TxType = 0x02
)

// TxTypeNames lists the accepted names for ParseTxType.
//
//nolint:gochecknoglobals // read-only lookup table
var TxTypeNames = []string{"legacy", "eip2930", "eip1559", "accesslist", "feemarket"}

// String returns the common name of the envelope type.
func (t TxType) String() string {
	switch t {
	case LegacyTxType:
		return "legacy"
	case AccessListTxType:
		return "eip2930"
	case FeeMarketTxType:
		return "eip1559"
	default:
		return "0x" + strconv.FormatUint(uint64(t), 16)
	}
}

// Hex returns the type as a JSON-RPC quantity.
func (t TxType) Hex() string {
	return "0x" + strconv.FormatUint(uint64(t), 16)
}

// ParseTxType parses an envelope type name or numeric type.
func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "legacy", "0", "0x0", "0x00":
		return LegacyTxType, nil
	case "eip2930", "accesslist", "access-list", "1", "0x1", "0x01":
		return AccessListTxType, nil
	case "eip1559", "feemarket", "fee-market", "2", "0x2", "0x02":
		return FeeMarketTxType, nil
	default:
		return 0, txerr.WithDetails(txerr.ErrUnsupportedTxType, map[string]string{"type": s})
	}
}

// EncodePurpose selects between the broadcast encoding and the signing payload.
type EncodePurpose int

const (
	// FullTransaction includes the signature fields.
	FullTransaction EncodePurpose = iota
	// SigningPayload omits the signature fields and, for legacy envelopes
	// with a chain ID, appends the EIP-155 replay protection triple.
	SigningPayload
)

// Envelope is one of *LegacyTx, *AccessListTx or *FeeMarketTx.
type Envelope interface {
	// Type returns the envelope type.
	Type() TxType
	// Encode returns the wire bytes, type-prefixed for typed envelopes.
	Encode(purpose EncodePurpose) []byte
	// ApplyOptions overrides fields from opts. Unset options leave fields unchanged.
	ApplyOptions(opts *Options)
	// Parameters returns a snapshot of the envelope fields.
	Parameters() *Parameters
	// SetParameters overlays the set fields of p.
	SetParameters(p *Parameters)
	// JSONParameters returns the JSON-RPC transaction object.
	JSONParameters(from *Address) *TransactionParameters
	// RawSignatureValues returns copies of v, r and s.
	RawSignatureValues() (v, r, s *uint256.Int)
	// SetSignatureValues replaces v, r and s.
	SetSignatureValues(v, r, s *uint256.Int)
	// String returns a multi-line description.
	String() string

	envelope()
}

// TransactionParameters is the JSON-RPC transaction object used by
// eth_call, eth_estimateGas and eth_sendTransaction.
type TransactionParameters struct {
	Type                 string      `json:"type,omitempty"`
	ChainID              string      `json:"chainId,omitempty"`
	From                 string      `json:"from,omitempty"`
	To                   string      `json:"to,omitempty"`
	Nonce                string      `json:"nonce,omitempty"`
	Gas                  string      `json:"gas,omitempty"`
	GasPrice             string      `json:"gasPrice,omitempty"`
	MaxFeePerGas         string      `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string      `json:"maxPriorityFeePerGas,omitempty"`
	Value                string      `json:"value,omitempty"`
	Data                 string      `json:"data,omitempty"`
	AccessList           *AccessList `json:"accessList,omitempty"`
}

// newTransactionParameters fills the fields shared by every envelope.
func newTransactionParameters(from *Address, to Address, nonce, gasLimit, value *uint256.Int, data []byte) *TransactionParameters {
	params := &TransactionParameters{
		Nonce: FormatQuantity(nonce),
		Gas:   FormatQuantity(gasLimit),
		Value: FormatQuantity(value),
		Data:  FormatHexBytes(data),
	}
	if from != nil {
		params.From = from.Hex()
	}
	if !to.IsCreation() {
		params.To = to.Hex()
	}
	return params
}

// IsSigned returns true when the envelope carries a non-zero r or s.
func IsSigned(env Envelope) bool {
	_, r, s := env.RawSignatureValues()
	return !r.IsZero() || !s.IsZero()
}

// placeholderSignature returns the signature values of an unsigned typed envelope.
func placeholderSignature() (v, r, s *uint256.Int) {
	return uint256.NewInt(1), new(uint256.Int), new(uint256.Int)
}

// DecodeOption configures wire and JSON decoding.
type DecodeOption func(*decodeConfig)

type decodeConfig struct {
	lenient bool
}

// WithLenientRLP accepts non-canonical RLP length prefixes and integers.
func WithLenientRLP() DecodeOption {
	return func(c *decodeConfig) {
		c.lenient = true
	}
}

func newDecodeConfig(opts []DecodeOption) decodeConfig {
	var cfg decodeConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// decodeFields checks the envelope prefix and arity and returns the top-level fields.
func decodeFields(b []byte, t TxType, cfg decodeConfig, arities ...int) ([]rlp.Item, error) {
	payload := b
	if t == LegacyTxType {
		if len(b) == 0 || b[0] < 0xc0 {
			return nil, structuralError(t, "legacy transaction must be an RLP list", nil)
		}
	} else {
		if len(b) == 0 || b[0] != byte(t) {
			return nil, structuralError(t, "missing type prefix", nil)
		}
		payload = b[1:]
	}

	decode := rlp.Decode
	if cfg.lenient {
		decode = rlp.DecodeLenient
	}
	item, err := decode(payload)
	if err != nil {
		return nil, structuralError(t, "invalid rlp", err)
	}
	if !item.IsList() {
		return nil, structuralError(t, "payload must be an RLP list", nil)
	}

	for _, n := range arities {
		if item.Len() == n {
			return item.List(), nil
		}
	}
	return nil, structuralError(t, "unexpected field count "+strconv.Itoa(item.Len()), nil)
}

func structuralError(t TxType, reason string, cause error) error {
	err := txerr.WithDetails(txerr.ErrStructuralDecode, map[string]string{
		"type":   t.String(),
		"reason": reason,
	})
	if cause != nil {
		err = txerr.WithCause(err, cause)
	}
	return err
}

// fieldReader reads typed fields from a decoded RLP list, keeping the first error.
type fieldReader struct {
	txType TxType
	items  []rlp.Item
	pos    int
	err    error
}

func (r *fieldReader) next(name string) (rlp.Item, bool) {
	if r.err != nil {
		return rlp.Item{}, false
	}
	if r.pos >= len(r.items) {
		r.err = structuralError(r.txType, "missing field "+name, nil)
		return rlp.Item{}, false
	}
	it := r.items[r.pos]
	r.pos++
	return it, true
}

func (r *fieldReader) fail(name string, cause error) {
	r.err = txerr.WithCause(txerr.WithDetails(txerr.ErrStructuralDecode, map[string]string{
		"type":  r.txType.String(),
		"field": name,
	}), cause)
}

func (r *fieldReader) quantity(name string) *uint256.Int {
	it, ok := r.next(name)
	if !ok {
		return nil
	}
	q, err := it.Uint256()
	if err != nil {
		r.fail(name, err)
		return nil
	}
	return q
}

func (r *fieldReader) bytes(name string) []byte {
	it, ok := r.next(name)
	if !ok {
		return nil
	}
	if it.IsList() {
		r.fail(name, rlp.ErrExpectedString)
		return nil
	}
	return cloneBytes(it.Bytes())
}

func (r *fieldReader) address(name string) Address {
	it, ok := r.next(name)
	if !ok {
		return Address{}
	}
	if it.IsList() {
		r.fail(name, rlp.ErrExpectedString)
		return Address{}
	}
	addr, err := AddressFromWire(it.Bytes())
	if err != nil {
		r.fail(name, err)
		return Address{}
	}
	return addr
}

func (r *fieldReader) accessList(name string) AccessList {
	it, ok := r.next(name)
	if !ok {
		return nil
	}
	al, err := decodeAccessList(it)
	if err != nil {
		r.err = err
		return nil
	}
	return al
}

// signature reads v, r and s, or returns nils for an unsigned payload.
func (r *fieldReader) signature() (v, rr, s *uint256.Int) {
	if r.err == nil && r.pos == len(r.items) {
		return nil, nil, nil
	}
	return r.quantity("v"), r.quantity("r"), r.quantity("s")
}
