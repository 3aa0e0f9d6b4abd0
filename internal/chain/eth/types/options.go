package ethtypes

import (
	"github.com/holiman/uint256"
)

// Options overrides envelope fields before encoding or signing.
// Nil fields leave the envelope value unchanged, so applying the same
// options twice gives the same result as applying them once.
type Options struct {
	Nonce                *uint256.Int
	GasLimit             *uint256.Int
	GasPrice             *uint256.Int
	MaxFeePerGas         *uint256.Int
	MaxPriorityFeePerGas *uint256.Int
	Value                *uint256.Int
	To                   *Address
	AccessList           AccessList
}

// IsEmpty returns true if no option is set.
func (o *Options) IsEmpty() bool {
	return o == nil || (o.Nonce == nil && o.GasLimit == nil && o.GasPrice == nil &&
		o.MaxFeePerGas == nil && o.MaxPriorityFeePerGas == nil && o.Value == nil &&
		o.To == nil && o.AccessList == nil)
}

// Apply resolves opts against env. A nil opts is a no-op.
func Apply(env Envelope, opts *Options) {
	if opts.IsEmpty() {
		return
	}
	env.ApplyOptions(opts)
}

func (o *Options) resolveNonce(current *uint256.Int) *uint256.Int {
	return overlay(current, o.Nonce)
}

func (o *Options) resolveGasLimit(current *uint256.Int) *uint256.Int {
	return overlay(current, o.GasLimit)
}

func (o *Options) resolveGasPrice(current *uint256.Int) *uint256.Int {
	return overlay(current, o.GasPrice)
}

func (o *Options) resolveMaxFeePerGas(current *uint256.Int) *uint256.Int {
	return overlay(current, o.MaxFeePerGas)
}

func (o *Options) resolveMaxPriorityFeePerGas(current *uint256.Int) *uint256.Int {
	return overlay(current, o.MaxPriorityFeePerGas)
}

func (o *Options) resolveValue(current *uint256.Int) *uint256.Int {
	return overlay(current, o.Value)
}

func (o *Options) resolveTo(current Address) Address {
	if o.To == nil {
		return current
	}
	return *o.To
}

func (o *Options) resolveAccessList(current AccessList) AccessList {
	if o.AccessList == nil {
		return current
	}
	return o.AccessList.Copy()
}
