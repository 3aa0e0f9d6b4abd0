// Package errors provides structured error handling for ethtx.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitAuth     = 3 // Signing or key failure
	ExitNotFound = 4 // Resource not found
)

const codeGeneral = "GENERAL_ERROR"

// TxError is the structured error type shared by all ethtx packages.
// Two TxErrors match under errors.Is when their codes are equal.
type TxError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *TxError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Details))
	for k := range e.Details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " (%s: %s)", k, e.Details[k])
	}

	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *TxError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for TxError.
func (e *TxError) Is(target error) bool {
	var t *TxError
	return errors.As(target, &t) && e.Code == t.Code
}

func sentinel(code, message string, exit int) *TxError {
	return &TxError{Code: code, Message: message, ExitCode: exit}
}

// General errors.
var (
	ErrGeneral      = sentinel(codeGeneral, "an error occurred", ExitGeneral)
	ErrInvalidInput = sentinel("INVALID_INPUT", "invalid input", ExitInput)
	ErrNotFound     = sentinel("NOT_FOUND", "resource not found", ExitNotFound)
)

// Decoding errors.
var (
	ErrDecode            = sentinel("DECODE_FAILED", "transaction could not be decoded", ExitInput)
	ErrStructuralDecode  = sentinel("STRUCTURAL_DECODE_FAILED", "transaction structure does not match envelope", ExitInput)
	ErrMissingField      = sentinel("MISSING_FIELD", "required field is missing", ExitInput)
	ErrInvalidHex        = sentinel("INVALID_HEX", "invalid hex value", ExitInput)
	ErrUnsupportedTxType = sentinel("UNSUPPORTED_TX_TYPE", "unsupported transaction type", ExitInput)
)

// Value errors.
var (
	ErrInvalidAddress  = sentinel("INVALID_ADDRESS", "invalid address format", ExitInput)
	ErrInvalidChecksum = sentinel("INVALID_CHECKSUM", "invalid address checksum", ExitInput)
	ErrInvalidValue    = sentinel("INVALID_VALUE", "invalid value", ExitInput)
	ErrValueOverflow   = sentinel("VALUE_OVERFLOW", "value exceeds 256 bits", ExitInput)
)

// Signing and key errors.
var (
	ErrNotSigned        = sentinel("NOT_SIGNED", "transaction is not signed", ExitInput)
	ErrSigningFailed    = sentinel("SIGNING_FAILED", "transaction signing failed", ExitAuth)
	ErrInvalidSignature = sentinel("INVALID_SIGNATURE", "invalid transaction signature", ExitInput)
	ErrInvalidKey       = sentinel("INVALID_KEY", "invalid private key", ExitAuth)
	ErrKeyFileNotFound  = sentinel("KEY_FILE_NOT_FOUND", "key file not found", ExitNotFound)
	ErrDecryptionFailed = &TxError{
		Code:       "DECRYPTION_FAILED",
		Message:    "key file could not be decrypted",
		Suggestion: "check the passphrase",
		ExitCode:   ExitAuth,
	}
)

// Network errors.
var (
	ErrNetworkError        = sentinel("NETWORK_ERROR", "network communication failed", ExitGeneral)
	ErrTxRejected          = sentinel("TX_REJECTED", "transaction rejected by network", ExitGeneral)
	ErrTransactionNotFound = sentinel("TRANSACTION_NOT_FOUND", "transaction not found", ExitNotFound)
)

// Config errors.
var (
	ErrConfigInvalid    = sentinel("CONFIG_INVALID", "configuration file is invalid", ExitInput)
	ErrUnknownConfigKey = sentinel("UNKNOWN_CONFIG_KEY", "unknown config key", ExitInput)
)

// New creates a new TxError with the given code and message.
func New(code, message string) *TxError {
	return sentinel(code, message, ExitGeneral)
}

// derive copies the TxError in err's chain and applies edit to the copy.
// Errors without a TxError become general errors caused by err.
func derive(err error, edit func(*TxError)) error {
	if err == nil {
		return nil
	}

	var se *TxError
	if errors.As(err, &se) {
		c := *se
		se = &c
	} else {
		se = &TxError{Code: codeGeneral, Message: err.Error(), Cause: err, ExitCode: ExitGeneral}
	}
	edit(se)
	return se
}

// Wrap prefixes the error message with context. The code and exit code of a
// wrapped TxError are kept.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)
	if !errors.As(err, new(*TxError)) {
		return &TxError{Code: codeGeneral, Message: msg, Cause: err, ExitCode: ExitGeneral}
	}
	return derive(err, func(e *TxError) {
		e.Message = msg + ": " + e.Message
		e.Cause = err
	})
}

// WithDetails replaces the details of an error.
func WithDetails(err error, details map[string]string) error {
	return derive(err, func(e *TxError) { e.Details = details })
}

// WithCause attaches an underlying cause to a sentinel error, keeping its code.
func WithCause(err, cause error) error {
	if err == nil {
		return nil
	}
	if !errors.As(err, new(*TxError)) {
		return fmt.Errorf("%w: %w", err, cause)
	}
	return derive(err, func(e *TxError) { e.Cause = cause })
}

// WithSuggestion sets the suggestion shown with an error.
func WithSuggestion(err error, suggestion string) error {
	return derive(err, func(e *TxError) { e.Suggestion = suggestion })
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var se *TxError
	if errors.As(err, &se) {
		return se.ExitCode
	}
	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var se *TxError
	if errors.As(err, &se) {
		return se.Code
	}
	return codeGeneral
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
