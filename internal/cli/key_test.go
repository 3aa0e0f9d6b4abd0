package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ethtx/internal/keystore"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestRunKeyGenerate(t *testing.T) {
	t.Run("plain key", func(t *testing.T) {
		buf := withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")

		require.NoError(t, runKeyGenerate(cmd, nil))

		got := decodeJSON(t, buf)
		assert.Equal(t, cfg.Signing.KeyFile, got["key_file"])

		ks, err := keystore.LoadFile(cfg.Signing.KeyFile, "")
		require.NoError(t, err)
		defer ks.Close()
		assert.Equal(t, ks.Address().String(), got["address"])

		info, err := os.Stat(cfg.Signing.KeyFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	})

	t.Run("refuses to replace without force", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")
		writeTestKey(t, "")

		err := runKeyGenerate(cmd, nil)
		require.ErrorIs(t, err, txerr.ErrInvalidInput)

		keyForce = true
		require.NoError(t, runKeyGenerate(cmd, nil))
	})

	t.Run("encrypted with prompted passphrase", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")
		keyEncrypt = true
		stdinIsTerminalFn = func() bool { return true }
		promptNewPassphraseFn = func() (string, error) { return "correct horse", nil }

		require.NoError(t, runKeyGenerate(cmd, nil))

		_, err := keystore.LoadFile(cfg.Signing.KeyFile, "")
		require.ErrorIs(t, err, txerr.ErrDecryptionFailed)
		ks, err := keystore.LoadFile(cfg.Signing.KeyFile, "correct horse")
		require.NoError(t, err)
		ks.Close()
	})

	t.Run("encrypt needs a passphrase source", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")
		keyEncrypt = true

		err := runKeyGenerate(cmd, nil)
		require.ErrorIs(t, err, txerr.ErrInvalidInput)
		_, statErr := os.Stat(cfg.Signing.KeyFile)
		assert.True(t, os.IsNotExist(statErr))
	})
}

func TestRunKeyAddress(t *testing.T) {
	buf := withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")
	writeTestKey(t, "")

	require.NoError(t, runKeyAddress(cmd, nil))
	assert.Contains(t, buf.String(), "Address:  "+testSender)
	assert.Contains(t, buf.String(), "Key file: "+cfg.Signing.KeyFile)
}

func TestPromptNewPassphrase(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		want    string
		wantErr bool
	}{
		{name: "matching", answers: []string{"correct horse", "correct horse"}, want: "correct horse"},
		{name: "too short", answers: []string{"short"}, wantErr: true},
		{name: "mismatch", answers: []string{"correct horse", "correct house"}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			withTestGlobals(t, output.FormatText)
			answers := tc.answers
			promptPassphraseFn = func(string) (string, error) {
				next := answers[0]
				answers = answers[1:]
				return next, nil
			}

			got, err := promptNewPassphrase()
			if tc.wantErr {
				require.ErrorIs(t, err, txerr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
