package cli

import (
	"github.com/spf13/cobra"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signCmd = &cobra.Command{
	Use:   "sign <tx|file|->",
	Short: "Sign a transaction with the key file",
	Long: `Sign a transaction and print the signed envelope.

Field flags override the input before signing; the input's data and chain
ID cannot be changed. An existing signature is replaced.

The key file passphrase is read from ETHTX_KEY_PASSPHRASE, or prompted
for when stdin is a terminal.

Examples:
  ethtx build --to 0x3535... --value 1ether --nonce 9 -o json | jq -r .raw | ethtx sign -
  ethtx sign tx.json --gas 30000 --max-fee 60gwei
  ethtx sign 0x02f8... --qr`,
	Args: cobra.ExactArgs(1),
	RunE: runSign,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	signKeyFile string
	signQR      bool
	signField   txFlags
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(signCmd)

	signCmd.Flags().StringVar(&signKeyFile, "key-file", "", "key file path (default: signing.key_file)")
	signCmd.Flags().BoolVar(&signQR, "qr", false, "also show the raw signed transaction as a QR code")
	signField.register(signCmd.Flags())
}

func runSign(cmd *cobra.Command, args []string) error {
	env, err := loadEnvelope(cmd, args[0])
	if err != nil {
		return err
	}

	opts, err := signField.options()
	if err != nil {
		return err
	}
	ethtypes.Apply(env, opts)

	if ethtypes.IsSigned(env) {
		output.Warn(statusWriter(cmd), "replacing the existing signature")
	}

	ks, err := loadSigningKey(signKeyFile)
	if err != nil {
		return err
	}
	defer ks.Close()

	err = ethtypes.SignEnvelope(env, ks)
	metrics.Global.RecordSign(err)
	if err != nil {
		return err
	}
	logger.Debug("signed %s transaction as %s", env.Type(), ks.Address().Hex())

	if err := printEnvelope(env); err != nil {
		return err
	}
	if signQR {
		return renderQR(cmd, env)
	}
	return nil
}

// renderQR writes the raw signed transaction as a terminal QR code.
func renderQR(cmd *cobra.Command, env ethtypes.Envelope) error {
	w := cmd.OutOrStdout()
	if !output.CanRenderQR(w) {
		output.Info(statusWriter(cmd), "QR output needs a terminal; skipped")
		return nil
	}
	raw := ethtypes.FormatHexBytes(env.Encode(ethtypes.FullTransaction))
	return output.RenderQR(w, raw, output.DefaultQRConfig())
}
