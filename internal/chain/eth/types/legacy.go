package ethtypes

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/mrz1836/ethtx/internal/chain/eth/rlp"
)

const (
	legacyUnsignedFields = 6
	legacySignedFields   = 9
)

// LegacyTx is a pre-EIP-2718 transaction.
// ChainID is not encoded directly: it is carried by V (EIP-155) and by the
// signing payload. A zero ChainID signs without replay protection.
type LegacyTx struct {
	Nonce    *uint256.Int
	GasPrice *uint256.Int
	GasLimit *uint256.Int
	To       Address
	Value    *uint256.Int
	Data     []byte
	ChainID  *uint256.Int

	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// NewLegacyTx builds an unsigned legacy envelope. Unset parameters are zero.
// An unsigned legacy envelope carries V = ChainID and R = S = 0, so its full
// encoding equals the EIP-155 signing payload.
func NewLegacyTx(to Address, params *Parameters) *LegacyTx {
	tx := &LegacyTx{
		Nonce:    new(uint256.Int),
		GasPrice: new(uint256.Int),
		GasLimit: new(uint256.Int),
		To:       to,
		Value:    new(uint256.Int),
		Data:     []byte{},
		ChainID:  new(uint256.Int),
		V:        new(uint256.Int),
		R:        new(uint256.Int),
		S:        new(uint256.Int),
	}
	tx.SetParameters(params)
	return tx
}

// DecodeLegacyTx decodes a signed (9 field) or unsigned (6 field) legacy transaction.
func DecodeLegacyTx(b []byte, opts ...DecodeOption) (*LegacyTx, error) {
	fields, err := decodeFields(b, LegacyTxType, newDecodeConfig(opts), legacySignedFields, legacyUnsignedFields)
	if err != nil {
		return nil, err
	}

	r := &fieldReader{txType: LegacyTxType, items: fields}
	tx := &LegacyTx{
		Nonce:    r.quantity("nonce"),
		GasPrice: r.quantity("gasPrice"),
		GasLimit: r.quantity("gasLimit"),
		To:       r.address("to"),
		Value:    r.quantity("value"),
		Data:     r.bytes("data"),
	}
	tx.V, tx.R, tx.S = r.signature()
	if r.err != nil {
		return nil, r.err
	}

	if tx.V == nil {
		tx.V, tx.R, tx.S = new(uint256.Int), new(uint256.Int), new(uint256.Int)
	}
	tx.ChainID = deriveLegacyChainID(tx.V, tx.R, tx.S)
	return tx, nil
}

// LegacyTxFromJSON decodes a JSON-RPC legacy transaction object.
// Requires to, nonce, value and data or input. The chain ID comes from
// chainId when present, otherwise from an EIP-155 v.
func LegacyTxFromJSON(fields map[string]any) (*LegacyTx, error) {
	r := &jsonReader{txType: LegacyTxType, fields: fields}
	r.require("to", "nonce", "value")
	r.requireAny("data", "input")

	tx := &LegacyTx{
		To:       r.to(),
		Nonce:    r.quantity("nonce"),
		Value:    r.quantity("value"),
		Data:     r.bytes("input", "data"),
		GasLimit: cloneQuantity(r.firstQuantity("gas", "gasLimit")),
		GasPrice: cloneQuantity(r.quantity("gasPrice")),
	}
	chainID := r.quantity("chainId")
	v, rr, s := r.quantity("v"), r.quantity("r"), r.quantity("s")
	if r.err != nil {
		return nil, r.err
	}

	tx.V, tx.R, tx.S = cloneQuantity(v), cloneQuantity(rr), cloneQuantity(s)
	switch {
	case chainID != nil:
		tx.ChainID = chainID
	default:
		tx.ChainID = deriveLegacyChainID(tx.V, tx.R, tx.S)
	}
	if v == nil {
		tx.V = new(uint256.Int).Set(tx.ChainID)
	}
	return tx, nil
}

// deriveLegacyChainID recovers the chain ID carried by v.
// Unsigned payloads carry the chain ID itself; signed EIP-155 values are
// chainID*2+35+recid; pre-EIP-155 values (27, 28) carry none.
func deriveLegacyChainID(v, r, s *uint256.Int) *uint256.Int {
	if r.IsZero() && s.IsZero() {
		return new(uint256.Int).Set(v)
	}
	if v.LtUint64(35) {
		return new(uint256.Int)
	}
	chainID := new(uint256.Int).SubUint64(v, 35)
	return chainID.Rsh(chainID, 1)
}

// Type implements Envelope.
func (tx *LegacyTx) Type() TxType { return LegacyTxType }

// Encode implements Envelope.
func (tx *LegacyTx) Encode(purpose EncodePurpose) []byte {
	fields := []any{tx.Nonce, tx.GasPrice, tx.GasLimit, tx.To.Bytes(), tx.Value, tx.Data}
	switch purpose {
	case SigningPayload:
		if tx.ChainID != nil && !tx.ChainID.IsZero() {
			fields = append(fields, tx.ChainID, uint64(0), uint64(0))
		}
	default:
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return rlp.Encode(fields)
}

// ApplyOptions implements Envelope. Fee market and access list options are ignored.
func (tx *LegacyTx) ApplyOptions(opts *Options) {
	if opts == nil {
		return
	}
	tx.Nonce = opts.resolveNonce(tx.Nonce)
	tx.GasLimit = opts.resolveGasLimit(tx.GasLimit)
	tx.GasPrice = opts.resolveGasPrice(tx.GasPrice)
	tx.Value = opts.resolveValue(tx.Value)
	tx.To = opts.resolveTo(tx.To)
}

// Parameters implements Envelope.
func (tx *LegacyTx) Parameters() *Parameters {
	t := LegacyTxType
	to := tx.To
	return &Parameters{
		Type:     &t,
		Nonce:    cloneQuantity(tx.Nonce),
		ChainID:  cloneQuantity(tx.ChainID),
		To:       &to,
		Value:    cloneQuantity(tx.Value),
		Data:     cloneBytes(tx.Data),
		GasLimit: cloneQuantity(tx.GasLimit),
		GasPrice: cloneQuantity(tx.GasPrice),
	}
}

// SetParameters implements Envelope. When the envelope is unsigned, V follows
// the chain ID so the full encoding stays equal to the signing payload.
func (tx *LegacyTx) SetParameters(p *Parameters) {
	if p == nil {
		return
	}
	if p.To != nil {
		tx.To = *p.To
	}
	if p.Data != nil {
		tx.Data = cloneBytes(p.Data)
	}
	tx.Nonce = overlay(tx.Nonce, p.Nonce)
	tx.ChainID = overlay(tx.ChainID, p.ChainID)
	tx.Value = overlay(tx.Value, p.Value)
	tx.GasLimit = overlay(tx.GasLimit, p.GasLimit)
	tx.GasPrice = overlay(tx.GasPrice, p.GasPrice)

	if p.ChainID != nil && !IsSigned(tx) {
		tx.V = cloneQuantity(tx.ChainID)
	}
}

// JSONParameters implements Envelope.
func (tx *LegacyTx) JSONParameters(from *Address) *TransactionParameters {
	params := newTransactionParameters(from, tx.To, tx.Nonce, tx.GasLimit, tx.Value, tx.Data)
	params.GasPrice = FormatQuantity(tx.GasPrice)
	if tx.ChainID != nil && !tx.ChainID.IsZero() {
		params.ChainID = FormatQuantity(tx.ChainID)
	}
	return params
}

// RawSignatureValues implements Envelope.
func (tx *LegacyTx) RawSignatureValues() (v, r, s *uint256.Int) {
	return cloneQuantity(tx.V), cloneQuantity(tx.R), cloneQuantity(tx.S)
}

// SetSignatureValues implements Envelope.
func (tx *LegacyTx) SetSignatureValues(v, r, s *uint256.Int) {
	tx.V, tx.R, tx.S = cloneQuantity(v), cloneQuantity(r), cloneQuantity(s)
}

// String implements Envelope.
func (tx *LegacyTx) String() string {
	var b strings.Builder
	b.WriteString("Transaction\n")
	fmt.Fprintf(&b, "Type: %s\n", LegacyTxType)
	fmt.Fprintf(&b, "Nonce: %s\n", quantityString(tx.Nonce))
	fmt.Fprintf(&b, "Gas price: %s\n", quantityString(tx.GasPrice))
	fmt.Fprintf(&b, "Gas limit: %s\n", quantityString(tx.GasLimit))
	fmt.Fprintf(&b, "To: %s\n", tx.To)
	fmt.Fprintf(&b, "Value: %s\n", quantityString(tx.Value))
	fmt.Fprintf(&b, "Data: %s\n", FormatHexBytes(tx.Data))
	fmt.Fprintf(&b, "Chain ID: %s\n", quantityString(tx.ChainID))
	writeSignature(&b, tx.V, tx.R, tx.S)
	return b.String()
}

func (tx *LegacyTx) envelope() {}

// quantityString renders q in decimal, treating nil as zero.
func quantityString(q *uint256.Int) string {
	if q == nil {
		return "0"
	}
	return q.Dec()
}

func writeSignature(b *strings.Builder, v, r, s *uint256.Int) {
	fmt.Fprintf(b, "v: %s\n", quantityString(v))
	fmt.Fprintf(b, "r: %s\n", quantityString(r))
	fmt.Fprintf(b, "s: %s\n", quantityString(s))
}
