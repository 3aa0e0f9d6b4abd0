package cli

import (
	"context"
	"log/slog"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/chain/eth/rpc"
	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build an unsigned transaction",
	Long: `Build an unsigned transaction envelope from flags.

Unset fields are zero. With --fill, the node supplies the chain ID, the
nonce of --from, fee values and an estimated gas limit for any field not
given on the command line.

The output's raw encoding is accepted by 'ethtx sign'.

Examples:
  ethtx build --type eip1559 --to 0x3535... --value 1ether --nonce 9 \
    --gas 21000 --max-fee 50gwei --priority-fee 1gwei
  ethtx build --type legacy --to 0x3535... --value 0.1ether --fill --from 0x9d8a...`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	buildType  string
	buildFill  bool
	buildFrom  string
	buildField txFlags
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildType, "type", "t", "", "envelope type: legacy, eip2930, eip1559 (default: decoding.default_type)")
	buildCmd.Flags().BoolVar(&buildFill, "fill", false, "fill unset fields from the node")
	buildCmd.Flags().StringVar(&buildFrom, "from", "", "sender address, used by --fill for the nonce and gas estimate")
	buildField.register(buildCmd.Flags())
}

func runBuild(cmd *cobra.Command, _ []string) error {
	typeName := buildType
	if typeName == "" {
		typeName = cfg.Decoding.DefaultType
	}
	txType, err := parseTxType(typeName)
	if err != nil {
		return err
	}

	params, err := buildField.parameters()
	if err != nil {
		return err
	}

	to := ethtypes.CreationAddress()
	if params.To != nil {
		to = *params.To
	}
	if to.IsCreation() && len(params.Data) == 0 {
		output.Warn(statusWriter(cmd), "no --to and no --data: this creates an empty contract")
	}

	if params.ChainID == nil && !buildFill {
		params.ChainID = uint256.NewInt(cfg.Network.ChainID)
	}

	env, err := ethtypes.NewEnvelope(txType, to, params)
	if err != nil {
		return err
	}

	if buildFill {
		var from *ethtypes.Address
		if buildFrom != "" {
			addr, addrErr := ethtypes.HexToAddress(buildFrom)
			if addrErr != nil {
				return flagError("from", addrErr)
			}
			from = &addr
		}

		ctx, cancel := contextWithTimeout(cmd)
		defer cancel()
		if err := fillFromNode(ctx, newRPCClientFn(cfg, logger), env, params, from); err != nil {
			return err
		}
	}

	metrics.Global.RecordEncode()
	return printEnvelope(env)
}

// nodeClient is the subset of the RPC client used to fill transactions.
type nodeClient interface {
	ChainID(ctx context.Context) (*uint256.Int, error)
	GetTransactionCount(ctx context.Context, address ethtypes.Address, block string) (*uint256.Int, error)
	GasPrice(ctx context.Context) (*uint256.Int, error)
	MaxPriorityFeePerGas(ctx context.Context) (*uint256.Int, error)
	EstimateGas(ctx context.Context, params *ethtypes.TransactionParameters) (*uint256.Int, error)
}

var _ nodeClient = (*rpc.Client)(nil)

// fillFromNode sets the fields left nil in set from node queries.
// The gas estimate runs last so it sees the filled fee fields.
//
//nolint:gocognit,gocyclo // one query per fillable field
func fillFromNode(ctx context.Context, node nodeClient, env ethtypes.Envelope, set *ethtypes.Parameters, from *ethtypes.Address) error {
	fill := &ethtypes.Parameters{}

	if set.ChainID == nil {
		chainID, err := node.ChainID(ctx)
		if err != nil {
			return err
		}
		if cfg.Network.ChainID != 0 && chainID.Uint64() != cfg.Network.ChainID {
			logger.DebugAttrs("node chain differs from config",
				slog.String("node", chainID.Dec()),
				slog.Uint64("config", cfg.Network.ChainID))
		}
		fill.ChainID = chainID
	}

	if set.Nonce == nil {
		if from == nil {
			return txerr.WithSuggestion(
				txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "cannot fill the nonce without a sender"}),
				"pass --from or --nonce",
			)
		}
		nonce, err := node.GetTransactionCount(ctx, *from, "pending")
		if err != nil {
			return err
		}
		fill.Nonce = nonce
	}

	switch env.Type() {
	case ethtypes.FeeMarketTxType:
		tip := set.MaxPriorityFeePerGas
		if tip == nil {
			var err error
			if tip, err = node.MaxPriorityFeePerGas(ctx); err != nil {
				return err
			}
			fill.MaxPriorityFeePerGas = tip
		}
		if set.MaxFeePerGas == nil {
			price, err := node.GasPrice(ctx)
			if err != nil {
				return err
			}
			fill.MaxFeePerGas = maxFeeFor(price, tip)
		}
	default:
		if set.GasPrice == nil {
			price, err := node.GasPrice(ctx)
			if err != nil {
				return err
			}
			fill.GasPrice = price
		}
	}
	env.SetParameters(fill)

	if set.GasLimit == nil {
		gas, err := node.EstimateGas(ctx, env.JSONParameters(from))
		if err != nil {
			return err
		}
		env.SetParameters(&ethtypes.Parameters{GasLimit: gas})
	}
	return nil
}

// maxFeeFor allows the base fee implied by price to double before the
// transaction stops being includable.
func maxFeeFor(price, tip *uint256.Int) *uint256.Int {
	fee := new(uint256.Int).Lsh(price, 1)
	if fee.Lt(tip) {
		fee.Add(fee, tip)
	}
	return fee
}
