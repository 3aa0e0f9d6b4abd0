package ethtypes

import (
	"github.com/holiman/uint256"
)

// Parameters is a partial view of an envelope's fields.
// Nil fields are unset and leave the target untouched when applied.
type Parameters struct {
	Type                 *TxType
	Nonce                *uint256.Int
	ChainID              *uint256.Int
	To                   *Address
	Value                *uint256.Int
	Data                 []byte
	GasLimit             *uint256.Int
	GasPrice             *uint256.Int
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	AccessList           AccessList
}

// Merge overlays the set fields of other onto p.
func (p *Parameters) Merge(other *Parameters) {
	if other == nil {
		return
	}
	if other.Type != nil {
		t := *other.Type
		p.Type = &t
	}
	if other.To != nil {
		to := *other.To
		p.To = &to
	}
	if other.Data != nil {
		p.Data = cloneBytes(other.Data)
	}
	if other.AccessList != nil {
		p.AccessList = other.AccessList.Copy()
	}
	p.Nonce = overlay(p.Nonce, other.Nonce)
	p.ChainID = overlay(p.ChainID, other.ChainID)
	p.Value = overlay(p.Value, other.Value)
	p.GasLimit = overlay(p.GasLimit, other.GasLimit)
	p.GasPrice = overlay(p.GasPrice, other.GasPrice)
	p.MaxFeePerGas = overlay(p.MaxFeePerGas, other.MaxFeePerGas)
	p.MaxPriorityFeePerGas = overlay(p.MaxPriorityFeePerGas, other.MaxPriorityFeePerGas)
}

// overlay returns a copy of next when set, otherwise current.
func overlay(current, next *uint256.Int) *uint256.Int {
	if next == nil {
		return current
	}
	return new(uint256.Int).Set(next)
}
