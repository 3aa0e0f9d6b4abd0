package ethtypes

import (
	"fmt"
	"strings"

	"github.com/holiman/uint256"

	"github.com/mrz1836/ethtx/internal/chain/eth/rlp"
)

const (
	accessListUnsignedFields = 8
	accessListSignedFields   = 11
)

// AccessListTx is an EIP-2930 transaction.
type AccessListTx struct {
	ChainID    *uint256.Int
	Nonce      *uint256.Int
	GasPrice   *uint256.Int
	GasLimit   *uint256.Int
	To         Address
	Value      *uint256.Int
	Data       []byte
	AccessList AccessList

	V *uint256.Int
	R *uint256.Int
	S *uint256.Int
}

// NewAccessListTx builds an access list envelope with the placeholder
// signature v=1, r=0, s=0. Unset parameters are zero.
func NewAccessListTx(to Address, params *Parameters) *AccessListTx {
	tx := &AccessListTx{
		ChainID:    new(uint256.Int),
		Nonce:      new(uint256.Int),
		GasPrice:   new(uint256.Int),
		GasLimit:   new(uint256.Int),
		To:         to,
		Value:      new(uint256.Int),
		Data:       []byte{},
		AccessList: AccessList{},
	}
	tx.V, tx.R, tx.S = placeholderSignature()
	tx.SetParameters(params)
	return tx
}

// DecodeAccessListTx decodes 0x01 || rlp([chainId, nonce, gasPrice, gasLimit,
// to, value, data, accessList, v, r, s]). The signature may be absent.
func DecodeAccessListTx(b []byte, opts ...DecodeOption) (*AccessListTx, error) {
	fields, err := decodeFields(b, AccessListTxType, newDecodeConfig(opts), accessListSignedFields, accessListUnsignedFields)
	if err != nil {
		return nil, err
	}

	r := &fieldReader{txType: AccessListTxType, items: fields}
	tx := &AccessListTx{
		ChainID:    r.quantity("chainId"),
		Nonce:      r.quantity("nonce"),
		GasPrice:   r.quantity("gasPrice"),
		GasLimit:   r.quantity("gasLimit"),
		To:         r.address("to"),
		Value:      r.quantity("value"),
		Data:       r.bytes("data"),
		AccessList: r.accessList("accessList"),
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

// AccessListTxFromJSON decodes a JSON-RPC access list transaction object.
// Requires to, nonce, value and data or input.
func AccessListTxFromJSON(fields map[string]any) (*AccessListTx, error) {
	r := &jsonReader{txType: AccessListTxType, fields: fields}
	r.require("to", "nonce", "value")
	r.requireAny("data", "input")

	tx := &AccessListTx{
		To:         r.to(),
		Nonce:      r.quantity("nonce"),
		Value:      r.quantity("value"),
		Data:       r.bytes("input", "data"),
		ChainID:    cloneQuantity(r.quantity("chainId")),
		GasLimit:   cloneQuantity(r.firstQuantity("gas", "gasLimit")),
		GasPrice:   cloneQuantity(r.quantity("gasPrice")),
		AccessList: r.accessList(),
	}
	tx.V, tx.R, tx.S = r.signature()
	if r.err != nil {
		return nil, r.err
	}
	return tx, nil
}

// Type implements Envelope.
func (tx *AccessListTx) Type() TxType { return AccessListTxType }

// Encode implements Envelope.
func (tx *AccessListTx) Encode(purpose EncodePurpose) []byte {
	fields := []any{
		tx.ChainID, tx.Nonce, tx.GasPrice, tx.GasLimit,
		tx.To.Bytes(), tx.Value, tx.Data, tx.AccessList.rlpFields(),
	}
	if purpose == FullTransaction {
		fields = append(fields, tx.V, tx.R, tx.S)
	}
	return append([]byte{byte(AccessListTxType)}, rlp.Encode(fields)...)
}

// ApplyOptions implements Envelope. Fee market options are ignored.
func (tx *AccessListTx) ApplyOptions(opts *Options) {
	if opts == nil {
		return
	}
	tx.Nonce = opts.resolveNonce(tx.Nonce)
	tx.GasLimit = opts.resolveGasLimit(tx.GasLimit)
	tx.GasPrice = opts.resolveGasPrice(tx.GasPrice)
	tx.Value = opts.resolveValue(tx.Value)
	tx.To = opts.resolveTo(tx.To)
	tx.AccessList = opts.resolveAccessList(tx.AccessList)
}

// Parameters implements Envelope.
func (tx *AccessListTx) Parameters() *Parameters {
	t := AccessListTxType
	to := tx.To
	return &Parameters{
		Type:       &t,
		Nonce:      cloneQuantity(tx.Nonce),
		ChainID:    cloneQuantity(tx.ChainID),
		To:         &to,
		Value:      cloneQuantity(tx.Value),
		Data:       cloneBytes(tx.Data),
		GasLimit:   cloneQuantity(tx.GasLimit),
		GasPrice:   cloneQuantity(tx.GasPrice),
		AccessList: tx.AccessList.Copy(),
	}
}

// SetParameters implements Envelope.
func (tx *AccessListTx) SetParameters(p *Parameters) {
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
	tx.GasPrice = overlay(tx.GasPrice, p.GasPrice)
}

// JSONParameters implements Envelope.
func (tx *AccessListTx) JSONParameters(from *Address) *TransactionParameters {
	params := newTransactionParameters(from, tx.To, tx.Nonce, tx.GasLimit, tx.Value, tx.Data)
	params.Type = AccessListTxType.Hex()
	params.ChainID = FormatQuantity(tx.ChainID)
	params.GasPrice = FormatQuantity(tx.GasPrice)
	al := tx.AccessList.Copy()
	params.AccessList = &al
	return params
}

// RawSignatureValues implements Envelope.
func (tx *AccessListTx) RawSignatureValues() (v, r, s *uint256.Int) {
	return cloneQuantity(tx.V), cloneQuantity(tx.R), cloneQuantity(tx.S)
}

// SetSignatureValues implements Envelope.
func (tx *AccessListTx) SetSignatureValues(v, r, s *uint256.Int) {
	tx.V, tx.R, tx.S = cloneQuantity(v), cloneQuantity(r), cloneQuantity(s)
}

// String implements Envelope.
func (tx *AccessListTx) String() string {
	var b strings.Builder
	b.WriteString("Transaction\n")
	fmt.Fprintf(&b, "Type: %s\n", AccessListTxType)
	fmt.Fprintf(&b, "Chain ID: %s\n", quantityString(tx.ChainID))
	fmt.Fprintf(&b, "Nonce: %s\n", quantityString(tx.Nonce))
	fmt.Fprintf(&b, "Gas price: %s\n", quantityString(tx.GasPrice))
	fmt.Fprintf(&b, "Gas limit: %s\n", quantityString(tx.GasLimit))
	fmt.Fprintf(&b, "To: %s\n", tx.To)
	fmt.Fprintf(&b, "Value: %s\n", quantityString(tx.Value))
	fmt.Fprintf(&b, "Data: %s\n", FormatHexBytes(tx.Data))
	writeAccessList(&b, tx.AccessList)
	writeSignature(&b, tx.V, tx.R, tx.S)
	return b.String()
}

func (tx *AccessListTx) envelope() {}

func writeAccessList(b *strings.Builder, al AccessList) {
	fmt.Fprintf(b, "Access list: %d entries, %d storage keys\n", len(al), al.StorageKeyCount())
	for _, tuple := range al {
		fmt.Fprintf(b, "  %s\n", tuple.Address)
		for _, key := range tuple.StorageKeys {
			fmt.Fprintf(b, "    %s\n", key)
		}
	}
}
