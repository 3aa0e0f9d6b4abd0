package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"1", "true", "TRUE", "yes", "on", "  true  ", "t"} {
		assert.True(t, parseBool(s), s)
	}
	for _, s := range []string{"0", "false", "no", "off", "", "random"} {
		assert.False(t, parseBool(s), s)
	}
}

func TestSanitizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"clean https", "https://rpc.example.org", "https://rpc.example.org"},
		{"surrounding whitespace", "  https://rpc.example.org/v3/key \n", "https://rpc.example.org/v3/key"},
		{"embedded control chars", "https://rpc.exa\tmple.org", "https://rpc.example.org"},
		{"quoted paste", `"https://rpc.example.org/v3/key"`, "https://rpc.example.org/v3/key"},
		{"markup", "https://rpc.example.org/<b>v3</b>", "https://rpc.example.org/bv3/b"},
		{"websocket", "wss://rpc.example.org/ws", "wss://rpc.example.org/ws"},
		{"plain http", "http://127.0.0.1:8545", "http://127.0.0.1:8545"},
		{"unsupported scheme", "ftp://rpc.example.org", ""},
		{"no host", "https://", ""},
		{"relative", "rpc.example.org", ""},
		{"empty", "", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, SanitizeURL(tc.input))
		})
	}
}

//nolint:paralleltest // t.Setenv cannot be used with t.Parallel
func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvHome, "/srv/ethtx")
	t.Setenv(EnvRPC, " http://127.0.0.1:8545 ")
	t.Setenv(EnvChainID, "0x539")
	t.Setenv(EnvRPCRate, "20")
	t.Setenv(EnvLenientRLP, "yes")
	t.Setenv(EnvKeyFile, "/keys/dev.json")
	t.Setenv(EnvOutputFormat, "JSON")
	t.Setenv(EnvVerbose, "1")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "Json")
	t.Setenv(EnvNoColor, "")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, "/srv/ethtx", cfg.Home)
	assert.Equal(t, "http://127.0.0.1:8545", cfg.Network.RPC)
	assert.Equal(t, uint64(1337), cfg.Network.ChainID)
	assert.InDelta(t, 20.0, cfg.Network.RateLimit, 0)
	assert.True(t, cfg.Decoding.LenientRLP)
	assert.Equal(t, "/keys/dev.json", cfg.Signing.KeyFile)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "never", cfg.Output.Color)
}

//nolint:paralleltest // t.Setenv cannot be used with t.Parallel
func TestApplyEnvironment_IgnoresMalformed(t *testing.T) {
	t.Setenv(EnvRPC, "not-a-url")
	t.Setenv(EnvChainID, "mainnet")
	t.Setenv(EnvRPCRate, "-1")

	cfg := Defaults()
	ApplyEnvironment(cfg)

	assert.Equal(t, DefaultRPCURL, cfg.Network.RPC)
	assert.Equal(t, uint64(1), cfg.Network.ChainID)
	assert.InDelta(t, 5.0, cfg.Network.RateLimit, 0)
}
