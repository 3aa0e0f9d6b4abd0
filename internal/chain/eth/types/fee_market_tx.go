package ethtypes

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/mrz1836/ethtx/internal/chain/eth/rlp"
)

const (
	feeMarketUnsignedFields = 9
	feeMarketSignedFields   = 12
)

// FeeMarketTx is an EIP-1559 transaction.
type FeeMarketTx struct {
	ChainID              *uint256.Int
	Nonce                *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	MaxFeePerGas         *uint256.Int
	GasLimit             *uint256.Int
	To                   Address
	Value                *uint256.Int
	Data                 []byte
	AccessList           AccessList

	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// NewFeeMarketTx builds a fee market envelope with the placeholder
// signature v=1, r=0, s=0. Unset parameters are zero.
func NewFeeMarketTx(to Address, params *Parameters) *FeeMarketTx {
	tx := &FeeMarketTx{
		ChainID:              new(uint256.Int),
		Nonce:                new(uint256.Int),
		MaxPriorityFeePerGas: new(uint256.Int),
		MaxFeePerGas:         new(uint256.Int),
		GasLimit:             new(uint256.Int),
		To:                   to,
		Value:                new(uint256.Int),
		Data:                 []byte{},
		AccessList:           AccessList{},
	}
	tx.V, tx.R, tx.S = placeholderSignature()
	tx.SetParameters(params)
	return tx
}

// DecodeFeeMarketTx decodes 0x02 || rlp([chainId, nonce, maxPriorityFeePerGas,
// maxFeePerGas, gasLimit, to, value, data, accessList, v, r, s]).
// The signature may be absent.
func DecodeFeeMarketTx(b []byte, opts ...DecodeOption) (*FeeMarketTx, error) {
	fields, err := decodeFields(b, FeeMarketTxType, newDecodeConfig(opts), feeMarketSignedFields, feeMarketUnsignedFields)
	if err != nil {
		return nil, err
	}

	r := &fieldReader{txType: FeeMarketTxType, items: fields}
	tx := &FeeMarketTx{
		ChainID:              r.quantity("chainId"),
		Nonce:                r.quantity("nonce"),
		MaxPriorityFeePerGas: r.quantity("maxPriorityFeePerGas"),
		MaxFeePerGas:         r.quantity("maxFeePerGas"),
		GasLimit:             r.quantity("gasLimit"),
		To:                   r.address("to"),
		Value:                r.quantity("value"),
		Data:                 r.bytes("data"),
		AccessList:           r.accessList("accessList"),
	}
	tx.V, tx.R, tx.S = r.signature()
	if r.err != nil {
		return nil, r.err
	}
	if tx.V == nil {
		tx.V, tx.R, tx.S = placeholderSignature()
	}
	return tx, nil
}

// FeeMarketTxFromJSON decodes a JSON-RPC fee market transaction object.
// Requires to, nonce, value, chainId and data or input; gas is read before gasLimit.
func FeeMarketTxFromJSON(fields map[string]any) (*FeeMarketTx, error) {
	r := &jsonReader{txType: FeeMarketTxType, fields: fields}
	r.require("to", "nonce", "value", "chainId")
	r.requireAny("data", "input")

	tx := &FeeMarketTx{
		To:                   r.to(),
		Nonce:                r.quantity("nonce"),
		Value:                r.quantity("value"),
		ChainID:              r.quantity("chainId"),
		Data:                 r.bytes("input", "data"),
		GasLimit:             cloneQuantity(r.firstQuantity("gas", "gasLimit")),
		MaxFeePerGas:         cloneQuantity(r.quantity("maxFeePerGas")),
		MaxPriorityFeePerGas: cloneQuantity(r.quantity("maxPriorityFeePerGas")),
		AccessList:           r.accessList(),
	}
	tx.V, tx.R, tx.S = r.signature()
	if r.err != nil {
		return nil, r.err
	}
	return tx, nil
}

// Type implements Envelope.
func (tx *FeeMarketTx) Type() TxType { return FeeMarketTxType }

// Encode implements Envelope.
func (tx *FeeMarketTx) Encode(purpose EncodePurpose) []byte {
	fields := []any{
		tx.ChainID, tx.Nonce, tx.MaxPriorityFeePerGas, tx.MaxFeePerGas, tx.GasLimit,
		tx.To.Bytes(), tx.Value, tx.Data, tx.AccessList.rlpFields(),
	}
	if purpose == FullTransaction {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return append([]byte{byte(FeeMarketTxType)}, rlp.Encode(fields)...)
}

// ApplyOptions implements Envelope. The gas price option is ignored.
func (tx *FeeMarketTx) ApplyOptions(opts *Options) {
	if opts == nil {
		return
	}
	tx.Nonce = opts.resolveNonce(tx.Nonce)
	tx.GasLimit = opts.resolveGasLimit(tx.GasLimit)
	tx.MaxFeePerGas = opts.resolveMaxFeePerGas(tx.MaxFeePerGas)
	tx.MaxPriorityFeePerGas = opts.resolveMaxPriorityFeePerGas(tx.MaxPriorityFeePerGas)
	tx.Value = opts.resolveValue(tx.Value)
	tx.To = opts.resolveTo(tx.To)
	tx.AccessList = opts.resolveAccessList(tx.AccessList)
}

// Parameters implements Envelope.
func (tx *FeeMarketTx) Parameters() *Parameters {
	t := FeeMarketTxType
	to := tx.To
	return &Parameters{
		Type:                 &t,
		Nonce:                cloneQuantity(tx.Nonce),
		ChainID:              cloneQuantity(tx.ChainID),
		To:                   &to,
		Value:                cloneQuantity(tx.Value),
		Data:                 cloneBytes(tx.Data),
		GasLimit:             cloneQuantity(tx.GasLimit),
		MaxFeePerGas:         cloneQuantity(tx.MaxFeePerGas),
		MaxPriorityFeePerGas: cloneQuantity(tx.MaxPriorityFeePerGas),
		AccessList:           tx.AccessList.Copy(),
	}
}

// SetParameters implements Envelope.
func (tx *FeeMarketTx) SetParameters(p *Parameters) {
	if p == nil {
		return
	}
	if p.To != nil {
		tx.To = *p.To
	}
	if p.Data != nil {
		tx.Data = cloneBytes(p.Data)
	}
	if p.AccessList != nil {
		tx.AccessList = p.AccessList.Copy()
	}
	tx.Nonce = overlay(tx.Nonce, p.Nonce)
	tx.ChainID = overlay(tx.ChainID, p.ChainID)
	tx.Value = overlay(tx.Value, p.Value)
	tx.GasLimit = overlay(tx.GasLimit, p.GasLimit)
	tx.MaxFeePerGas = overlay(tx.MaxFeePerGas, p.MaxFeePerGas)
	tx.MaxPriorityFeePerGas = overlay(tx.MaxPriorityFeePerGas, p.MaxPriorityFeePerGas)
}

// JSONParameters implements Envelope.
func (tx *FeeMarketTx) JSONParameters(from *Address) *TransactionParameters {
	params := newTransactionParameters(from, tx.To, tx.Nonce, tx.GasLimit, tx.Value, tx.Data)
	params.Type = FeeMarketTxType.Hex()
	params.ChainID = FormatQuantity(tx.ChainID)
	params.MaxFeePerGas = FormatQuantity(tx.MaxFeePerGas)
	params.MaxPriorityFeePerGas = FormatQuantity(tx.MaxPriorityFeePerGas)
	al := tx.AccessList.Copy()
	params.AccessList = &al
	return params
}

// RawSignatureValues implements Envelope.
func (tx *FeeMarketTx) RawSignatureValues() (v, r, s *uint256.Int) {
	return cloneQuantity(tx.V), cloneQuantity(tx.R), cloneQuantity(tx.S)
}

// SetSignatureValues implements Envelope.
func (tx *FeeMarketTx) SetSignatureValues(v, r, s *uint256.Int) {
	tx.V, tx.R, tx.S = cloneQuantity(v), cloneQuantity(r), cloneQuantity(s)
}

// String implements Envelope.
func (tx *FeeMarketTx) String() string {
	var b strings.Builder
	b.WriteString("Transaction\n")
	fmt.Fprintf(&b, "Type: %s\n", FeeMarketTxType)
	fmt.Fprintf(&b, "Chain ID: %s\n", quantityString(tx.ChainID))
	fmt.Fprintf(&b, "Nonce: %s\n", quantityString(tx.Nonce))
	fmt.Fprintf(&b, "Max priority fee per gas: %s\n", quantityString(tx.MaxPriorityFeePerGas))
	fmt.Fprintf(&b, "Max fee per gas: %s\n", quantityString(tx.MaxFeePerGas))
	fmt.Fprintf(&b, "Gas limit: %s\n", quantityString(tx.GasLimit))
	fmt.Fprintf(&b, "To: %s\n", tx.To)
	fmt.Fprintf(&b, "Value: %s\n", quantityString(tx.Value))
	fmt.Fprintf(&b, "Data: %s\n", FormatHexBytes(tx.Data))
	writeAccessList(&b, tx.AccessList)
	writeSignature(&b, tx.V, tx.R, tx.S)
	return b.String()
}

func (tx *FeeMarketTx) envelope() {}
