package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// withRootFlags isolates initGlobals from the real home directory and
// restores the persistent flag values.
func withRootFlags(t *testing.T) string {
	t.Helper()
	withTestGlobals(t, output.FormatText)

	origHome, origOutput, origVerbose, origRPC, origLenient := homeDir, outputFormat, verbose, rpcURL, lenientRLP
	t.Cleanup(func() {
		homeDir, outputFormat, verbose, rpcURL, lenientRLP = origHome, origOutput, origVerbose, origRPC, origLenient
	})

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvHome, "")
	t.Setenv(config.EnvLogLevel, "off")
	homeDir, outputFormat, verbose, rpcURL, lenientRLP = home, "auto", false, "", false
	return home
}

func TestInitGlobals_Defaults(t *testing.T) {
	home := withRootFlags(t)
	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})

	require.NoError(t, initGlobals(cmd))
	assert.Equal(t, home, cfg.Home)
	assert.Equal(t, config.DefaultRPCURL, cfg.Network.RPC)
	assert.False(t, cfg.Decoding.LenientRLP)
	assert.NotNil(t, logger)
	// A buffer is not a terminal, so auto resolves to JSON.
	assert.True(t, formatter.IsJSON())
}

func TestInitGlobals_FileThenEnvThenFlags(t *testing.T) {
	home := withRootFlags(t)

	fileCfg := config.Defaults()
	fileCfg.Network.RPC = "http://file.example:8545"
	fileCfg.Network.ChainID = 5
	fileCfg.Output.DefaultFormat = "json"
	require.NoError(t, config.Save(fileCfg, config.Path(home)))

	t.Setenv(config.EnvChainID, "11155111")
	rpcURL = "http://flag.example:8545"
	lenientRLP = true
	outputFormat = "text"

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, initGlobals(cmd))

	assert.Equal(t, "http://flag.example:8545", cfg.Network.RPC)
	assert.Equal(t, uint64(11155111), cfg.Network.ChainID)
	assert.True(t, cfg.Decoding.LenientRLP)
	assert.False(t, formatter.IsJSON())
}

func TestInitGlobals_InvalidRPC(t *testing.T) {
	withRootFlags(t)
	rpcURL = "ftp://example.com"

	err := initGlobals(&cobra.Command{})
	require.ErrorIs(t, err, txerr.ErrInvalidInput)
	assert.Equal(t, txerr.ExitInput, ExitCode(err))
}

func TestInitGlobals_Verbose(t *testing.T) {
	withRootFlags(t)
	verbose = true
	t.Setenv(config.EnvLogLevel, "")

	cmd := &cobra.Command{}
	cmd.SetOut(&bytes.Buffer{})
	require.NoError(t, initGlobals(cmd))
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	cleanup()
}

func TestRootCommand_Registered(t *testing.T) {
	want := []string{"build", "config", "decode", "fetch", "hash", "key", "send", "sign", "sign-message", "txpool", "version"}
	var got []string
	for _, c := range rootCmd.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		assert.Contains(t, got, name)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, txerr.ExitInput, ExitCode(txerr.ErrInvalidHex))
	assert.Equal(t, txerr.ExitNotFound, ExitCode(txerr.ErrTransactionNotFound))
	assert.Equal(t, txerr.ExitGeneral, ExitCode(assert.AnError))
}
