package cli

import (
	"io"

	"github.com/spf13/cobra"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var decodeCmd = &cobra.Command{
	Use:   "decode <tx|file|->",
	Short: "Decode a raw transaction or JSON-RPC transaction object",
	Long: `Decode a transaction and show its fields, hashes and sender.

Input is hex wire bytes (0x-prefixed) or a JSON-RPC transaction object,
given inline, as a file path, or as "-" for stdin. Wire bytes are typed by
their first byte; JSON objects by their "type" field or, without one, by
their fee fields.

Examples:
  ethtx decode 0xf86c098504a817c800825208...
  ethtx decode tx.json
  cat tx.hex | ethtx decode - -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var hashCmd = &cobra.Command{
	Use:   "hash <tx|file|->",
	Short: "Print the signing hash and transaction hash",
	Long: `Print the Keccak-256 signing hash of a transaction and, when it is
signed, the transaction hash a node reports for it.

Example:
  ethtx hash 0x02f8...`,
	Args: cobra.ExactArgs(1),
	RunE: runHash,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(hashCmd)
}

func runDecode(cmd *cobra.Command, args []string) error {
	env, err := loadEnvelope(cmd, args[0])
	if err != nil {
		return err
	}
	return printEnvelope(env)
}

// printEnvelope writes env in the configured format.
func printEnvelope(env ethtypes.Envelope) error {
	view := newEnvelopeView(env)
	return formatter.PrintResult(view, func(w io.Writer) error {
		return renderEnvelope(w, view, env)
	})
}

type hashResult struct {
	Type        string `json:"type"`
	SigningHash string `json:"signingHash"`
	Hash        string `json:"hash,omitempty"`
}

func runHash(cmd *cobra.Command, args []string) error {
	env, err := loadEnvelope(cmd, args[0])
	if err != nil {
		return err
	}

	result := hashResult{
		Type:        env.Type().String(),
		SigningHash: ethtypes.SigningHash(env).Hex(),
	}
	if ethtypes.IsSigned(env) {
		result.Hash = ethtypes.TransactionHash(env).Hex()
	}

	return formatter.PrintResult(result, func(w io.Writer) error {
		out(w, "Signing hash: %s\n", result.SigningHash)
		if result.Hash != "" {
			out(w, "Hash:         %s\n", result.Hash)
		}
		return nil
	})
}
