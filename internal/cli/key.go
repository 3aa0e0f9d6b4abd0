package cli

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/keystore"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the signing key",
	Long:  `Create a signing key file or show the address of an existing one.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new signing key",
	Long: `Generate a random secp256k1 key and write it to the key file.

With --encrypt the key is encrypted with a passphrase, read from
ETHTX_KEY_PASSPHRASE or prompted for. An existing key file is not
replaced unless --force is given.

Examples:
  ethtx key generate --encrypt
  ethtx key generate --key-file ./test-key.json`,
	Args: cobra.NoArgs,
	RunE: runKeyGenerate,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the address of the signing key",
	Args:  cobra.NoArgs,
	RunE:  runKeyAddress,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var (
	keyFile    string
	keyEncrypt bool
	keyForce   bool
)

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(keyCmd)
	keyCmd.AddCommand(keyGenerateCmd)
	keyCmd.AddCommand(keyAddressCmd)

	keyCmd.PersistentFlags().StringVar(&keyFile, "key-file", "", "key file path (default: signing.key_file)")
	keyGenerateCmd.Flags().BoolVar(&keyEncrypt, "encrypt", false, "encrypt the key with a passphrase")
	keyGenerateCmd.Flags().BoolVar(&keyForce, "force", false, "replace an existing key file")
}

type keyResult struct {
	Address string `json:"address"`
	KeyFile string `json:"key_file"`
}

func runKeyGenerate(cmd *cobra.Command, _ []string) error {
	path := keyFilePath(keyFile)
	if _, err := os.Stat(path); err == nil && !keyForce {
		return txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"path": path, "reason": "key file exists"}),
			"use --force to replace it",
		)
	}

	passphrase := ""
	if keyEncrypt {
		var err error
		if passphrase, err = newPassphrase(); err != nil {
			return err
		}
	}

	ks, err := keystore.Generate()
	if err != nil {
		return err
	}
	defer ks.Close()

	if err := ks.Save(path, passphrase); err != nil {
		return err
	}
	logger.Debug("generated key for %s", ks.Address().Hex())
	if !ks.Locked() {
		output.Warn(statusWriter(cmd), "key memory could not be locked and may be swapped to disk")
	}

	return printKey(keyResult{Address: ks.Address().String(), KeyFile: path})
}

func runKeyAddress(_ *cobra.Command, _ []string) error {
	ks, err := loadSigningKey(keyFile)
	if err != nil {
		return err
	}
	defer ks.Close()

	return printKey(keyResult{Address: ks.Address().String(), KeyFile: keyFilePath(keyFile)})
}

func printKey(result keyResult) error {
	return formatter.PrintResult(result, func(w io.Writer) error {
		out(w, "Address:  %s\n", result.Address)
		out(w, "Key file: %s\n", result.KeyFile)
		return nil
	})
}

// keyFilePath resolves the key file from the flag or configuration.
func keyFilePath(flag string) string {
	if flag != "" {
		return config.ExpandHome(flag)
	}
	return config.ExpandHome(cfg.Signing.KeyFile)
}

// loadSigningKey opens the key file. Encrypted files take their passphrase
// from ETHTX_KEY_PASSPHRASE, or from a prompt when stdin is a terminal.
func loadSigningKey(flag string) (*keystore.PlainKeystore, error) {
	path := keyFilePath(flag)
	passphrase := os.Getenv(envKeyPassphrase)

	ks, err := keystore.LoadFile(path, passphrase)
	if err == nil || passphrase != "" || !txerr.Is(err, txerr.ErrDecryptionFailed) || !stdinIsTerminalFn() {
		return ks, err
	}

	if passphrase, err = promptPassphraseFn("Key file passphrase: "); err != nil {
		return nil, err
	}
	return keystore.LoadFile(path, passphrase)
}

func newPassphrase() (string, error) {
	if passphrase := os.Getenv(envKeyPassphrase); passphrase != "" {
		return passphrase, nil
	}
	if !stdinIsTerminalFn() {
		return "", txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "no passphrase available"}),
			"set "+envKeyPassphrase+" or run from a terminal",
		)
	}
	return promptNewPassphraseFn()
}
