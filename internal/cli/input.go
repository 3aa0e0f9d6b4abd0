package cli

import (
	"strings"

	"github.com/spf13/cobra"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/fileutil"
	"github.com/mrz1836/ethtx/internal/metrics"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// readInput returns the transaction text named by arg. Arguments starting
// with 0x or { are inline input, "-" is stdin and anything else is a file.
func readInput(cmd *cobra.Command, arg string) ([]byte, error) {
	trimmed := strings.TrimSpace(arg)
	if isInline(trimmed) {
		return []byte(trimmed), nil
	}
	return fileutil.ReadInput(trimmed, cmd.InOrStdin(), 0)
}

func isInline(s string) bool {
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") || strings.HasPrefix(s, "{")
}

// decodeOptions returns the decode options selected by config and flags.
func decodeOptions() []ethtypes.DecodeOption {
	if cfg != nil && cfg.Decoding.LenientRLP {
		return []ethtypes.DecodeOption{ethtypes.WithLenientRLP()}
	}
	return nil
}

// decodeEnvelope decodes a JSON-RPC object or hex wire bytes.
func decodeEnvelope(data []byte) (ethtypes.Envelope, error) {
	env, err := decodeText(strings.TrimSpace(string(data)))
	metrics.Global.RecordDecode(err)
	if err != nil {
		logger.Debug("decode failed: %v", err)
		return nil, err
	}
	logger.Debug("decoded %s transaction", env.Type())
	return env, nil
}

func decodeText(text string) (ethtypes.Envelope, error) {
	if text == "" {
		return nil, txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"reason": "empty input"})
	}
	if strings.HasPrefix(text, "{") {
		return ethtypes.DecodeJSONBytes([]byte(text), decodeOptions()...)
	}

	raw, err := ethtypes.ParseHexBytes(text)
	if err != nil {
		return nil, err
	}
	return ethtypes.DecodeWire(raw, decodeOptions()...)
}

// loadEnvelope reads and decodes the transaction named by arg.
func loadEnvelope(cmd *cobra.Command, arg string) (ethtypes.Envelope, error) {
	data, err := readInput(cmd, arg)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(data)
}
