package cli

import (
	"github.com/spf13/cobra"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/metrics"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var fetchCmd = &cobra.Command{
	Use:   "fetch <hash>",
	Short: "Fetch and decode a transaction from the node",
	Long: `Fetch a transaction by hash and decode it.

By default the node's JSON object from eth_getTransactionByHash is decoded.
With --raw the wire bytes from eth_getRawTransactionByHash are decoded
instead, for nodes that expose it.

Examples:
  ethtx fetch 0x3346...
  ethtx fetch 0x3346... --raw -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var fetchRaw bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchRaw, "raw", false, "decode the raw wire bytes instead of the JSON object")
}

func runFetch(cmd *cobra.Command, args []string) error {
	hash, err := ethtypes.HexToHash(args[0])
	if err != nil {
		return flagError("hash", err)
	}

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()
	client := newRPCClientFn(cfg, logger)

	var env ethtypes.Envelope
	if fetchRaw {
		raw, rawErr := client.GetRawTransactionByHash(ctx, hash)
		if rawErr != nil {
			return rawErr
		}
		env, err = ethtypes.DecodeWire(raw, decodeOptions()...)
		metrics.Global.RecordDecode(err)
	} else {
		env, err = client.FetchEnvelope(ctx, hash, decodeOptions()...)
	}
	if err != nil {
		return err
	}
	logger.Debug("fetched %s transaction %s", env.Type(), hash.Hex())

	return printEnvelope(env)
}
