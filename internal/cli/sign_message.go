package cli

import (
	"bytes"
	"io"

	"github.com/spf13/cobra"

	ethcrypto "github.com/mrz1836/ethtx/internal/chain/eth/crypto"
	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/fileutil"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var signMessageCmd = &cobra.Command{
	Use:   "sign-message <message|->",
	Short: "Sign a personal message (EIP-191)",
	Long: `Sign a message with the "\x19Ethereum Signed Message:\n" prefix, as
wallets do for personal_sign, and print the 65-byte signature.

The message is signed with the key file. With --node the configured node
signs it instead with the unlocked account given by --from.

Examples:
  ethtx sign-message "sign in to example.org"
  ethtx sign-message --hex 0xdeadbeef
  echo -n hello | ethtx sign-message -
  ethtx sign-message hello --node --from 0x9d8a...`,
	Args: cobra.ExactArgs(1),
	RunE: runSignMessage,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	signMessageKeyFile string
	signMessageHex     bool
	signMessageNode    bool
	signMessageFrom    string
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(signMessageCmd)

	signMessageCmd.Flags().StringVar(&signMessageKeyFile, "key-file", "", "key file path (default: signing.key_file)")
	signMessageCmd.Flags().BoolVar(&signMessageHex, "hex", false, "treat the message as 0x-prefixed hex bytes")
	signMessageCmd.Flags().BoolVar(&signMessageNode, "node", false, "sign with the node's personal_sign instead of the key file")
	signMessageCmd.Flags().StringVar(&signMessageFrom, "from", "", "account the node signs with (required with --node)")
}

type signMessageResult struct {
	Address     string `json:"address"`
	MessageHash string `json:"message_hash"`
	Signature   string `json:"signature"`
}

func runSignMessage(cmd *cobra.Command, args []string) error {
	message, err := readMessage(cmd, args[0])
	if err != nil {
		return err
	}

	var (
		signer ethtypes.Address
		sig    []byte
	)
	if signMessageNode {
		signer, sig, err = signMessageWithNode(cmd, message)
	} else {
		signer, sig, err = signMessageWithKey(message)
	}
	metrics.Global.RecordSign(err)
	if err != nil {
		return err
	}

	recovered, err := ethcrypto.RecoverMessageSigner(message, sig)
	if err != nil {
		return txerr.WithCause(txerr.ErrInvalidSignature, err)
	}
	if !bytes.Equal(recovered, signer.Bytes()) {
		output.Warn(statusWriter(cmd), "signature recovers to %s, not %s",
			ethtypes.BytesToAddress(recovered).Hex(), signer.Hex())
	}
	logger.Debug("signed %d byte message as %s", len(message), signer.Hex())

	result := signMessageResult{
		Address:     signer.String(),
		MessageHash: ethtypes.FormatHexBytes(ethcrypto.HashMessage(message)),
		Signature:   ethtypes.FormatHexBytes(sig),
	}
	return formatter.PrintResult(result, func(w io.Writer) error {
		out(w, "Address:      %s\n", result.Address)
		out(w, "Message hash: %s\n", result.MessageHash)
		out(w, "Signature:    %s\n", result.Signature)
		return nil
	})
}

// readMessage returns the message bytes: the argument itself, or stdin for "-".
func readMessage(cmd *cobra.Command, arg string) ([]byte, error) {
	message := []byte(arg)
	if arg == "-" {
		var err error
		if message, err = fileutil.ReadInput(arg, cmd.InOrStdin(), 0); err != nil {
			return nil, err
		}
	}
	if !signMessageHex {
		return message, nil
	}
	decoded, err := ethtypes.ParseHexBytes(string(bytes.TrimSpace(message)))
	if err != nil {
		return nil, flagError("hex", err)
	}
	return decoded, nil
}

func signMessageWithKey(message []byte) (ethtypes.Address, []byte, error) {
	ks, err := loadSigningKey(signMessageKeyFile)
	if err != nil {
		return ethtypes.Address{}, nil, err
	}
	defer ks.Close()

	sig, err := ks.SignMessage(message)
	if err != nil {
		return ethtypes.Address{}, nil, txerr.WithCause(txerr.ErrSigningFailed, err)
	}
	return ks.Address(), sig, nil
}

func signMessageWithNode(cmd *cobra.Command, message []byte) (ethtypes.Address, []byte, error) {
	if signMessageFrom == "" {
		return ethtypes.Address{}, nil, txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"flag": "from", "reason": "required with --node"}),
			"pass the node account with --from",
		)
	}
	from, err := ethtypes.HexToAddress(signMessageFrom)
	if err != nil {
		return ethtypes.Address{}, nil, flagError("from", err)
	}

	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	sig, err := newRPCClientFn(cfg, logger).PersonalSign(ctx, message, from)
	if err != nil {
		return ethtypes.Address{}, nil, err
	}
	return from, sig, nil
}
