package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/ethtx/internal/chain/eth/rpc"
	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/keystore"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
)

// The EIP-155 example transaction: nonce 9, 20 gwei, 21000 gas, 1 ether to
// 0x3535...35 on chain 1, signed with the key 0x4646...46.
const (
	testKeyHex      = "4646464646464646464646464646464646464646464646464646464646464646"
	testSender      = "0x9d8A62f656a8d1615C1294fd71e9CFb3E4855A4F"
	testRecipient   = "0x3535353535353535353535353535353535353535"
	unsignedLegacy  = "0xec098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a764000080018080"
	signedLegacyRaw = "0xf86c098504a817c800825208943535353535353535353535353535353535353535880de0b6b3a76400008025a028ef61340bd939bc2195fe537567866003e1a15d3c71ff63e1590620aa636276a067cbe9d8997f761aecb703304b3800ccf555c9f3dc64214b297fb1966a3b6d83"
	signingHash     = "0xdaf5a779ae972f972197303d7b574746c7ef83eadac0f2791ad23db92e4c8e53"
	txHash          = "0x33469b22e9f636356c4160a87eb19df52b7412e8eac32a4a55ffe88ea8350788"
)

// withTestGlobals installs default config, a null logger and a formatter
// writing to the returned buffer. Every package-level flag is reset on cleanup.
func withTestGlobals(t *testing.T, format output.Format) *bytes.Buffer {
	t.Helper()

	origCfg, origLogger, origFormatter := cfg, logger, formatter
	origRPC := newRPCClientFn
	origReleases := releasesURL
	origPassphrase, origNewPassphrase, origTerminal := promptPassphraseFn, promptNewPassphraseFn, stdinIsTerminalFn
	origBuildInfo := buildInfo
	t.Cleanup(func() {
		cfg, logger, formatter = origCfg, origLogger, origFormatter
		newRPCClientFn = origRPC
		releasesURL = origReleases
		promptPassphraseFn, promptNewPassphraseFn, stdinIsTerminalFn = origPassphrase, origNewPassphrase, origTerminal

		buildType, buildFill, buildFrom, buildField = "", false, "", txFlags{}
		signKeyFile, signQR, signField = "", false, txFlags{}
		signMessageKeyFile, signMessageHex, signMessageNode, signMessageFrom = "", false, false, ""
		keyFile, keyEncrypt, keyForce = "", false, false
		fetchRaw, txpoolQueued, configForce, versionCheck = false, false, false, false
		buildInfo = origBuildInfo
	})

	cfg = config.Defaults()
	cfg.Home = t.TempDir()
	cfg.Signing.KeyFile = filepath.Join(cfg.Home, "key.json")
	logger = config.NullLogger()
	stdinIsTerminalFn = func() bool { return false }
	t.Setenv(envKeyPassphrase, "")
	metrics.Global.Reset()

	var buf bytes.Buffer
	formatter = output.NewFormatter(format, &buf)
	return &buf
}

// newTestCmd returns a command whose stdin reads input and whose stderr is captured.
func newTestCmd(input string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	var stderr bytes.Buffer
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&stderr)
	return cmd, &stderr
}

// writeTestKey stores the test key unencrypted at the configured key file.
func writeTestKey(t *testing.T, passphrase string) string {
	t.Helper()
	ks, err := keystore.FromHex(testKeyHex)
	require.NoError(t, err)
	defer ks.Close()
	require.NoError(t, ks.Save(cfg.Signing.KeyFile, passphrase))
	return cfg.Signing.KeyFile
}

func decodeJSON(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var v map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v), buf.String())
	return v
}

// rpcRequest is the decoded body seen by a fake node.
type rpcRequest struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params"`
	ID     json.RawMessage   `json:"id"`
}

// fakeNode answers JSON-RPC calls from a method table and points
// newRPCClientFn at itself. Methods missing from the table get a
// method-not-found error; a nil entry answers null. The returned function
// lists the methods called so far.
func fakeNode(t *testing.T, results map[string]any) func() []string {
	t.Helper()
	var (
		mu      sync.Mutex
		methods []string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		mu.Lock()
		methods = append(methods, req.Method)
		mu.Unlock()

		resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
		result, ok := results[req.Method]
		switch nodeErr, isErr := result.(*rpc.Error); {
		case !ok:
			resp["error"] = &rpc.Error{Code: -32601, Message: "method not found"}
		case isErr:
			resp["error"] = nodeErr
		default:
			resp["result"] = result
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(server.Close)

	newRPCClientFn = func(*config.Config, *config.Logger) *rpc.Client {
		return rpc.NewClient(server.URL, rpc.WithRetry(rpc.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond}))
	}
	return func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), methods...)
	}
}
