package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// envKeyPassphrase supplies the key file passphrase without a prompt.
const envKeyPassphrase = "ETHTX_KEY_PASSPHRASE"

// minPassphraseLength applies to passphrases chosen for new key files.
const minPassphraseLength = 8

// Prompt functions are variables so tests can replace them.
//
//nolint:gochecknoglobals // replaced in tests
var (
	promptPassphraseFn    = promptPassphrase
	promptNewPassphraseFn = promptNewPassphrase
	stdinIsTerminalFn     = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) } //nolint:gosec // G115: Fd fits in int
)

// promptPassphrase reads a passphrase with hidden input.
func promptPassphrase(prompt string) (string, error) {
	out(os.Stderr, "%s", prompt)
	secret, err := term.ReadPassword(int(os.Stdin.Fd())) //nolint:gosec // G115: Fd fits in int
	outln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(secret), nil
}

// promptNewPassphrase reads a passphrase twice and checks they match.
func promptNewPassphrase() (string, error) {
	passphrase, err := promptPassphraseFn("Enter key file passphrase: ")
	if err != nil {
		return "", err
	}
	if len(passphrase) < minPassphraseLength {
		return "", txerr.WithSuggestion(txerr.ErrInvalidInput,
			fmt.Sprintf("passphrase must be at least %d characters", minPassphraseLength))
	}

	confirm, err := promptPassphraseFn("Confirm passphrase: ")
	if err != nil {
		return "", err
	}
	if passphrase != confirm {
		return "", txerr.WithSuggestion(txerr.ErrInvalidInput, "passphrases do not match")
	}
	return passphrase, nil
}
