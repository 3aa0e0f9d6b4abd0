package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/spf13/pflag"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/chain/eth/units"
	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/fileutil"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// maxTypeSuggestionDistance bounds "did you mean" matches for --type.
const maxTypeSuggestionDistance = 3

// txFlags holds the envelope field flags shared by build and sign.
// Empty strings are unset.
type txFlags struct {
	to          string
	nonce       string
	gas         string
	gasPrice    string
	maxFee      string
	priorityFee string
	value       string
	data        string
	chainID     string
	accessList  string
}

// register adds the field flags to fs.
func (f *txFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.to, "to", "", "recipient address (0x for contract creation)")
	fs.StringVar(&f.nonce, "nonce", "", "sender nonce")
	fs.StringVar(&f.gas, "gas", "", "gas limit")
	fs.StringVar(&f.gasPrice, "gas-price", "", "legacy gas price, e.g. 20gwei")
	fs.StringVar(&f.maxFee, "max-fee", "", "EIP-1559 max fee per gas, e.g. 50gwei")
	fs.StringVar(&f.priorityFee, "priority-fee", "", "EIP-1559 max priority fee per gas, e.g. 1gwei")
	fs.StringVar(&f.value, "value", "", "value to transfer, e.g. 0.5ether (plain numbers are wei)")
	fs.StringVar(&f.data, "data", "", "call data as hex")
	fs.StringVar(&f.chainID, "chain-id", "", "chain ID (default: network.chain_id)")
	fs.StringVar(&f.accessList, "access-list", "", "access list as JSON, or @file")
}

// parameters returns the fields set by flags.
//
//nolint:gocognit,gocyclo // one branch per flag
func (f *txFlags) parameters() (*ethtypes.Parameters, error) {
	p := &ethtypes.Parameters{}
	var err error

	if f.to != "" {
		var to ethtypes.Address
		if toErr := to.UnmarshalText([]byte(f.to)); toErr != nil {
			return nil, flagError("to", toErr)
		}
		p.To = &to
	}
	if p.Nonce, err = amountFlag("nonce", f.nonce); err != nil {
		return nil, err
	}
	if p.GasLimit, err = amountFlag("gas", f.gas); err != nil {
		return nil, err
	}
	if p.GasPrice, err = amountFlag("gas-price", f.gasPrice); err != nil {
		return nil, err
	}
	if p.MaxFeePerGas, err = amountFlag("max-fee", f.maxFee); err != nil {
		return nil, err
	}
	if p.MaxPriorityFeePerGas, err = amountFlag("priority-fee", f.priorityFee); err != nil {
		return nil, err
	}
	if p.Value, err = amountFlag("value", f.value); err != nil {
		return nil, err
	}
	if p.ChainID, err = amountFlag("chain-id", f.chainID); err != nil {
		return nil, err
	}
	if f.data != "" {
		if p.Data, err = ethtypes.ParseHexBytes(f.data); err != nil {
			return nil, flagError("data", err)
		}
	}
	if f.accessList != "" {
		if p.AccessList, err = parseAccessList(f.accessList); err != nil {
			return nil, flagError("access-list", err)
		}
	}
	return p, nil
}

// options returns the overrides set by flags, for an existing envelope.
func (f *txFlags) options() (*ethtypes.Options, error) {
	p, err := f.parameters()
	if err != nil {
		return nil, err
	}
	if f.data != "" || f.chainID != "" {
		return nil, txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "data and chain ID are fixed by the input transaction"}),
			"rebuild the transaction with 'ethtx build' to change them",
		)
	}
	return &ethtypes.Options{
		Nonce:                p.Nonce,
		GasLimit:             p.GasLimit,
		GasPrice:             p.GasPrice,
		MaxFeePerGas:         p.MaxFeePerGas,
		MaxPriorityFeePerGas: p.MaxPriorityFeePerGas,
		Value:                p.Value,
		To:                   p.To,
		AccessList:           p.AccessList,
	}, nil
}

func amountFlag(name, value string) (*uint256.Int, error) {
	if value == "" {
		return nil, nil //nolint:nilnil // unset flag
	}
	q, err := units.Parse(value)
	if err != nil {
		return nil, flagError(name, err)
	}
	return q, nil
}

func flagError(name string, err error) error {
	return txerr.Wrap(err, "--%s", name)
}

// parseAccessList reads an access list from JSON text or @file.
func parseAccessList(value string) (ethtypes.AccessList, error) {
	data := []byte(value)
	if path, ok := strings.CutPrefix(value, "@"); ok {
		var err error
		if data, err = fileutil.ReadInput(path, nil, 0); err != nil {
			return nil, err
		}
	}

	al := ethtypes.AccessList{}
	if err := json.Unmarshal(data, &al); err != nil {
		if txerr.Code(err) != "GENERAL_ERROR" {
			return nil, err
		}
		return nil, txerr.WithCause(txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "access list must be a JSON array"}), err)
	}
	return al, nil
}

// parseTxType parses --type, suggesting the nearest name on a typo.
func parseTxType(value string) (ethtypes.TxType, error) {
	t, err := ethtypes.ParseTxType(value)
	if err == nil {
		return t, nil
	}
	if s := config.Closest(value, ethtypes.TxTypeNames, maxTypeSuggestionDistance); s != "" {
		return 0, txerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", s))
	}
	return 0, txerr.WithSuggestion(err, "use one of "+strings.Join(ethtypes.TxTypeNames, ", "))
}
