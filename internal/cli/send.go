package cli

import (
	"io"

	"github.com/spf13/cobra"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var sendCmd = &cobra.Command{
	Use:   "send <tx|file|->",
	Short: "Broadcast a signed transaction",
	Long: `Broadcast a signed transaction to the configured node with
eth_sendRawTransaction and print the transaction hash.

Examples:
  ethtx send 0xf86c098504a817c800825208...
  ethtx sign tx.json -o json | jq -r .raw | ethtx send - --rpc http://localhost:8545`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(sendCmd)
}

type sendResult struct {
	Hash string `json:"hash"`
}

func runSend(cmd *cobra.Command, args []string) error {
	env, err := loadEnvelope(cmd, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	hash, err := newRPCClientFn(cfg, logger).SendEnvelope(ctx, env)
	if err != nil {
		return err
	}
	if local := ethtypes.TransactionHash(env); local != hash {
		output.Warn(statusWriter(cmd), "node reported hash %s, expected %s", hash.Hex(), local.Hex())
	}

	result := sendResult{Hash: hash.Hex()}
	return formatter.PrintResult(result, func(w io.Writer) error {
		outln(w, result.Hash)
		return nil
	})
}
