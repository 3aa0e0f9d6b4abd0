package output

import (
	"io"
	"strconv"

	"github.com/mdp/qrterminal/v3"
	"rsc.io/qr"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// MaxQRBytes is the byte-mode capacity of a version 40 code at level L.
const MaxQRBytes = 2953

// QRConfig configures QR code rendering.
type QRConfig struct {
	Level      qr.Level
	QuietZone  int
	HalfBlocks bool
}

// DefaultQRConfig uses low error correction, leaving the most room for
// raw transaction hex.
func DefaultQRConfig() QRConfig {
	return QRConfig{
		Level:      qr.L,
		QuietZone:  1,
		HalfBlocks: true,
	}
}

// CanRenderQR reports whether w is a terminal.
func CanRenderQR(w io.Writer) bool {
	return isTerminal(w)
}

// RenderQR draws data as a QR code, for moving a signed transaction off an
// offline machine. Nothing is written when w is not a terminal.
func RenderQR(w io.Writer, data string, cfg QRConfig) error {
	if len(data) > MaxQRBytes {
		return txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{
			"reason": "too large for a QR code",
			"size":   strconv.Itoa(len(data)),
		})
	}
	if !CanRenderQR(w) {
		return nil
	}

	qrterminal.GenerateWithConfig(data, qrterminal.Config{
		Level:          cfg.Level,
		Writer:         w,
		QuietZone:      cfg.QuietZone,
		HalfBlocks:     cfg.HalfBlocks,
		BlackChar:      qrterminal.BLACK_BLACK,
		WhiteChar:      qrterminal.WHITE_WHITE,
		WhiteBlackChar: qrterminal.WHITE_BLACK,
		BlackWhiteChar: qrterminal.BLACK_WHITE,
	})
	return nil
}
