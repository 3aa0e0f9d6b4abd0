package cli

import (
	"fmt"
	"io"

	"github.com/holiman/uint256"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/chain/eth/units"
	"github.com/mrz1836/ethtx/internal/output"
)

// envelopeView is the JSON shape of a transaction in command output.
type envelopeView struct {
	Type                 string               `json:"type"`
	ChainID              string               `json:"chainId,omitempty"`
	Nonce                string               `json:"nonce"`
	To                   string               `json:"to,omitempty"`
	Value                string               `json:"value"`
	Gas                  string               `json:"gas"`
	GasPrice             string               `json:"gasPrice,omitempty"`
	MaxFeePerGas         string               `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string               `json:"maxPriorityFeePerGas,omitempty"`
	Input                string               `json:"input"`
	AccessList           *ethtypes.AccessList `json:"accessList,omitempty"`
	V                    string               `json:"v"`
	R                    string               `json:"r"`
	S                    string               `json:"s"`
	Signed               bool                 `json:"signed"`
	From                 string               `json:"from,omitempty"`
	SigningHash          string               `json:"signingHash"`
	Hash                 string               `json:"hash,omitempty"`
	Raw                  string               `json:"raw"`
}

// newEnvelopeView describes env. The sender is recovered for signed envelopes;
// a signature that does not recover leaves From empty.
func newEnvelopeView(env ethtypes.Envelope) *envelopeView {
	p := env.Parameters()
	v, r, s := env.RawSignatureValues()

	view := &envelopeView{
		Type:                 env.Type().String(),
		ChainID:              quantity(p.ChainID),
		Nonce:                quantity(p.Nonce),
		Value:                quantity(p.Value),
		Gas:                  quantity(p.GasLimit),
		GasPrice:             quantity(p.GasPrice),
		MaxFeePerGas:         quantity(p.MaxFeePerGas),
		MaxPriorityFeePerGas: quantity(p.MaxPriorityFeePerGas),
		Input:                ethtypes.FormatHexBytes(p.Data),
		V:                    ethtypes.FormatQuantity(v),
		R:                    ethtypes.FormatQuantity(r),
		S:                    ethtypes.FormatQuantity(s),
		Signed:               ethtypes.IsSigned(env),
		SigningHash:          ethtypes.SigningHash(env).Hex(),
		Raw:                  ethtypes.FormatHexBytes(env.Encode(ethtypes.FullTransaction)),
	}
	if p.To != nil && !p.To.IsCreation() {
		view.To = p.To.String()
	}
	if env.Type() != ethtypes.LegacyTxType {
		al := p.AccessList
		if al == nil {
			al = ethtypes.AccessList{}
		}
		view.AccessList = &al
	}
	if view.Signed {
		view.Hash = ethtypes.TransactionHash(env).Hex()
		if from, err := ethtypes.Sender(env); err == nil {
			view.From = from.String()
		} else {
			logger.Debug("sender recovery failed: %v", err)
		}
	}
	return view
}

func quantity(q *uint256.Int) string {
	if q == nil {
		return ""
	}
	return ethtypes.FormatQuantity(q)
}

// renderEnvelope writes the text form of view.
func renderEnvelope(w io.Writer, view *envelopeView, env ethtypes.Envelope) error {
	p := env.Parameters()

	to := view.To
	if to == "" {
		to = "(contract creation)"
	}

	table := output.NewTable()
	table.AddField("Type", view.Type)
	table.AddField("Chain ID", decimal(p.ChainID))
	table.AddField("Nonce", decimal(p.Nonce))
	table.AddField("To", to)
	table.AddField("Value", ether(p.Value))
	table.AddField("Gas limit", decimal(p.GasLimit))
	table.AddField("Gas price", gwei(p.GasPrice))
	table.AddField("Max fee", gwei(p.MaxFeePerGas))
	table.AddField("Priority fee", gwei(p.MaxPriorityFeePerGas))
	table.AddField("Input", view.Input)
	if view.AccessList != nil {
		for _, tuple := range *view.AccessList {
			table.AddField("Access", tuple.Address.String())
			for _, key := range tuple.StorageKeys {
				table.AddField("  Storage key", key.Hex())
			}
		}
	}
	if view.Signed {
		table.AddField("From", view.From)
		table.AddField("V", view.V)
		table.AddField("R", view.R)
		table.AddField("S", view.S)
		table.AddField("Hash", view.Hash)
	} else {
		table.AddField("Signed", "no")
	}
	table.AddField("Signing hash", view.SigningHash)
	table.AddField("Raw", view.Raw)

	if _, err := fmt.Fprintln(w, formatter.Heading("Transaction")); err != nil {
		return err
	}
	return table.Render(w)
}

func decimal(q *uint256.Int) string {
	if q == nil {
		return ""
	}
	return q.Dec()
}

func gwei(q *uint256.Int) string {
	if q == nil {
		return ""
	}
	s, _ := units.Format(q, "gwei")
	return s
}

func ether(q *uint256.Int) string {
	if q == nil {
		return ""
	}
	s, _ := units.Format(q, "ether")
	return s
}
