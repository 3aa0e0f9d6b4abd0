package cli

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

func TestRunConfigInit(t *testing.T) {
	buf := withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")
	cmd.SetOut(buf)

	require.NoError(t, runConfigInit(cmd, nil))
	assert.Contains(t, buf.String(), "Configuration initialized at "+config.Path(cfg.Home))

	loaded, err := config.Load(config.Path(cfg.Home))
	require.NoError(t, err)
	assert.Equal(t, cfg.Home, loaded.Home)
	assert.Equal(t, uint64(1), loaded.Network.ChainID)

	err = runConfigInit(cmd, nil)
	require.ErrorIs(t, err, txerr.ErrGeneral)

	configForce = true
	require.NoError(t, runConfigInit(cmd, nil))
}

func TestRunConfigShow(t *testing.T) {
	buf := withTestGlobals(t, output.FormatJSON)
	cmd, _ := newTestCmd("")
	cfg.Network.RPC = "https://mainnet.example.com/v3/secret-key"

	require.NoError(t, runConfigShow(cmd, nil))

	got := decodeJSON(t, buf)
	assert.Len(t, got, len(config.Keys()))
	assert.Equal(t, "https://mainnet.example.com/...", got["network.rpc"])
	assert.Equal(t, "false", got["decoding.lenient_rlp"])
	assert.Equal(t, "eip1559", got["decoding.default_type"])
	assert.NotContains(t, buf.String(), "secret-key")
}

func TestRunConfigShow_Text(t *testing.T) {
	buf := withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")

	require.NoError(t, runConfigShow(cmd, nil))
	assert.Contains(t, buf.String(), "network.chain_id")
	assert.Contains(t, buf.String(), "signing.key_file")
}

func TestRunConfigGet(t *testing.T) {
	buf := withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")
	cmd.SetOut(buf)

	require.NoError(t, runConfigGet(cmd, []string{"network.chain_id"}))
	assert.Equal(t, "1\n", buf.String())

	err := runConfigGet(cmd, []string{"network.chainid"})
	require.ErrorIs(t, err, txerr.ErrUnknownConfigKey)
	var te *txerr.TxError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, `did you mean "network.chain_id"?`, te.Suggestion)
}

func TestRunConfigSet(t *testing.T) {
	buf := withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")
	cmd.SetOut(buf)

	// Flag and environment overrides on cfg must not reach the file.
	cfg.Decoding.LenientRLP = true

	require.NoError(t, runConfigSet(cmd, []string{"network.chain_id", "0xaa36a7"}))
	assert.Equal(t, "set network.chain_id = 11155111\n", buf.String())

	loaded, err := config.Load(config.Path(cfg.Home))
	require.NoError(t, err)
	assert.Equal(t, uint64(11155111), loaded.Network.ChainID)
	assert.False(t, loaded.Decoding.LenientRLP)

	info, err := os.Stat(config.Path(cfg.Home))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestRunConfigSet_Invalid(t *testing.T) {
	withTestGlobals(t, output.FormatText)
	cmd, _ := newTestCmd("")

	require.ErrorIs(t, runConfigSet(cmd, []string{"decoding.default_type", "eip4844"}), txerr.ErrInvalidInput)
	require.ErrorIs(t, runConfigSet(cmd, []string{"nope", "1"}), txerr.ErrUnknownConfigKey)

	_, err := os.Stat(config.Path(cfg.Home))
	assert.True(t, os.IsNotExist(err))
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "https://a.example/...,https://b.example",
		displayValue("network.fallback_rpcs", "https://a.example/key,https://b.example"))
	assert.Equal(t, "debug", displayValue("logging.level", "debug"))
}
