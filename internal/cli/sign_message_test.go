package cli

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// walletSignature signs msg the way go-ethereum wallets answer personal_sign.
func walletSignature(t *testing.T, keyHex string, msg []byte) string {
	t.Helper()
	key, err := gethcrypto.HexToECDSA(keyHex)
	require.NoError(t, err)
	sig, err := gethcrypto.Sign(accounts.TextHash(msg), key)
	require.NoError(t, err)
	sig[64] += 27
	return ethtypes.FormatHexBytes(sig)
}

func TestRunSignMessage_KeyFile(t *testing.T) {
	msg := []byte("sign in to ethtx")

	t.Run("text argument", func(t *testing.T) {
		buf := withTestGlobals(t, output.FormatJSON)
		cmd, stderr := newTestCmd("")
		writeTestKey(t, "")

		require.NoError(t, runSignMessage(cmd, []string{string(msg)}))
		assert.Empty(t, stderr.String())

		got := decodeJSON(t, buf)
		assert.Equal(t, testSender, got["address"])
		assert.Equal(t, ethtypes.FormatHexBytes(accounts.TextHash(msg)), got["message_hash"])
		assert.Equal(t, walletSignature(t, testKeyHex, msg), got["signature"])
		assert.Equal(t, int64(1), metrics.Global.Snapshot().SigningsTotal)
	})

	t.Run("stdin", func(t *testing.T) {
		buf := withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd(string(msg) + "\n")
		writeTestKey(t, "")

		require.NoError(t, runSignMessage(cmd, []string{"-"}))
		assert.Equal(t, walletSignature(t, testKeyHex, msg), decodeJSON(t, buf)["signature"])
	})

	t.Run("hex message", func(t *testing.T) {
		buf := withTestGlobals(t, output.FormatText)
		cmd, _ := newTestCmd("")
		writeTestKey(t, "")
		signMessageHex = true

		require.NoError(t, runSignMessage(cmd, []string{"0xdeadbeef"}))
		assert.Contains(t, buf.String(), "Address:      "+testSender)
		assert.Contains(t, buf.String(), "Signature:    "+walletSignature(t, testKeyHex, []byte{0xde, 0xad, 0xbe, 0xef}))
	})

	t.Run("bad hex", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")
		writeTestKey(t, "")
		signMessageHex = true

		require.ErrorIs(t, runSignMessage(cmd, []string{"0xzz"}), txerr.ErrInvalidHex)
	})

	t.Run("missing key file", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")

		err := runSignMessage(cmd, []string{"hello"})
		require.ErrorIs(t, err, txerr.ErrKeyFileNotFound)
	})
}

func TestRunSignMessage_Node(t *testing.T) {
	msg := []byte("hello")

	t.Run("node signs for the account", func(t *testing.T) {
		buf := withTestGlobals(t, output.FormatJSON)
		cmd, stderr := newTestCmd("")
		calls := fakeNode(t, map[string]any{"personal_sign": walletSignature(t, testKeyHex, msg)})
		signMessageNode, signMessageFrom = true, testSender

		require.NoError(t, runSignMessage(cmd, []string{string(msg)}))
		assert.Empty(t, stderr.String())
		assert.Equal(t, []string{"personal_sign"}, calls())
		assert.Equal(t, testSender, decodeJSON(t, buf)["address"])
	})

	t.Run("warns when another key signed", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, stderr := newTestCmd("")
		other := "0101010101010101010101010101010101010101010101010101010101010101"
		fakeNode(t, map[string]any{"personal_sign": walletSignature(t, other, msg)})
		signMessageNode, signMessageFrom = true, testSender

		require.NoError(t, runSignMessage(cmd, []string{string(msg)}))
		assert.Contains(t, stderr.String(), "signature recovers to")
	})

	t.Run("from is required", func(t *testing.T) {
		withTestGlobals(t, output.FormatJSON)
		cmd, _ := newTestCmd("")
		calls := fakeNode(t, map[string]any{})
		signMessageNode = true

		require.ErrorIs(t, runSignMessage(cmd, []string{string(msg)}), txerr.ErrInvalidInput)
		assert.Empty(t, calls())
	})
}
