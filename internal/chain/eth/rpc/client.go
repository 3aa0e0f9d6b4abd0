// Package rpc provides a JSON-RPC 2.0 client for Ethereum nodes that speaks in
// transaction envelopes: parameters go out as TransactionParameters, signed
// envelopes go out as raw bytes and fetched transactions come back decoded.
package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/holiman/uint256"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/metrics"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

const (
	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 32 << 20

	// signatureLength is the size of an [R || S || V] message signature.
	signatureLength = 65
)

var (
	// ErrRPCRequest indicates an RPC request could not be completed.
	ErrRPCRequest = &txerr.TxError{
		Code:     "RPC_REQUEST_FAILED",
		Message:  "RPC request failed",
		ExitCode: txerr.ExitGeneral,
	}

	// ErrRPCResponse indicates the node sent something that is not a JSON-RPC response.
	ErrRPCResponse = &txerr.TxError{
		Code:     "RPC_INVALID_RESPONSE",
		Message:  "invalid RPC response",
		ExitCode: txerr.ExitGeneral,
	}

	// ErrNoEndpoints indicates the client was built without any URL.
	ErrNoEndpoints = &txerr.TxError{
		Code:       "RPC_NO_ENDPOINTS",
		Message:    "no RPC endpoint configured",
		Suggestion: "set network.rpc with 'ethtx config set network.rpc <url>'",
		ExitCode:   txerr.ExitInput,
	}
)

// Error is an error object returned by the node.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithFallbacks adds endpoints tried in order when the primary keeps failing.
func WithFallbacks(urls ...string) Option {
	return func(c *Client) {
		for _, u := range urls {
			if u != "" {
				c.endpoints = append(c.endpoints, u)
			}
		}
	}
}

// WithRateLimit limits requests per endpoint. A zero rate disables limiting.
func WithRateLimit(ratePerSecond float64, burst int) Option {
	return func(c *Client) { c.limiter = NewRateLimiter(ratePerSecond, burst) }
}

// WithRetry sets the per-endpoint retry policy.
func WithRetry(cfg RetryConfig) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *config.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to metrics.Global.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client is an Ethereum JSON-RPC client with endpoint failover.
type Client struct {
	endpoints  []string
	httpClient *http.Client
	idCounter  atomic.Uint64
	limiter    *RateLimiter
	retry      RetryConfig
	logger     *config.Logger
	metrics    *metrics.Metrics
}

// NewClient creates a client for url.
func NewClient(url string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retry:      DefaultRetryConfig(),
		logger:     config.NullLogger(),
		metrics:    metrics.Global,
	}
	if url != "" {
		c.endpoints = append(c.endpoints, url)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientFromConfig builds a client from the network section of cfg.
func NewClientFromConfig(cfg *config.Config, logger *config.Logger) *Client {
	endpoints := cfg.Endpoints()
	primary := ""
	if len(endpoints) > 0 {
		primary = endpoints[0]
	}

	opts := []Option{WithLogger(logger)}
	if len(endpoints) > 1 {
		opts = append(opts, WithFallbacks(endpoints[1:]...))
	}
	if cfg.Network.RateLimit > 0 {
		opts = append(opts, WithRateLimit(cfg.Network.RateLimit, cfg.Network.Burst))
	}
	if cfg.Network.TimeoutSeconds > 0 {
		opts = append(opts, WithHTTPClient(&http.Client{
			Timeout: time.Duration(cfg.Network.TimeoutSeconds) * time.Second,
		}))
	}
	return NewClient(primary, opts...)
}

// Endpoints returns the configured URLs in failover order.
func (c *Client) Endpoints() []string {
	return append([]string(nil), c.endpoints...)
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
	ID      uint64 `json:"id"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *Error          `json:"error,omitempty"`
}

// Call performs a JSON-RPC call and returns the raw result. Transport
// failures are retried and then failed over to the next endpoint; errors
// reported by the node are returned as *Error without failover.
func (c *Client) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if len(c.endpoints) == 0 {
		return nil, ErrNoEndpoints
	}
	if params == nil {
		params = []any{}
	}

	body, err := json.Marshal(request{
		JSONRPC: "2.0",
		Method:  method,
		Params:  params,
		ID:      c.idCounter.Add(1),
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var lastErr error
	for i, endpoint := range c.endpoints {
		if i > 0 {
			c.metrics.RecordRPCFailover()
			c.logger.Debug("rpc failover method=%s endpoint=%s", method, config.MaskURL(endpoint))
		}

		start := time.Now()
		result, callErr := retry(ctx, c.retry, func(err error) {
			c.metrics.RecordRPCRetry()
			c.logger.Debug("rpc retry method=%s err=%v", method, err)
		}, func() (json.RawMessage, error) {
			return c.post(ctx, endpoint, body)
		})
		c.metrics.RecordRPCCall(method, time.Since(start), callErr)

		if callErr == nil {
			c.logger.Debug("rpc call method=%s endpoint=%s elapsed=%s", method, config.MaskURL(endpoint), time.Since(start))
			return result, nil
		}

		c.logger.ErrorAttrs("rpc call failed",
			slog.String("method", method),
			slog.String("endpoint", config.MaskURL(endpoint)),
			slog.String("error", callErr.Error()),
		)

		var nodeErr *Error
		if errors.As(callErr, &nodeErr) || ctx.Err() != nil {
			return nil, callErr
		}
		lastErr = callErr
	}

	return nil, txerr.WithCause(txerr.ErrNetworkError, lastErr)
}

func (c *Client) post(ctx context.Context, endpoint string, body []byte) (json.RawMessage, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return nil, err
		}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, txerr.WithCause(ErrRPCRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, markRetryable(txerr.WithCause(ErrRPCRequest, err), 0)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		return nil, markRetryable(txerr.WithCause(ErrRPCRequest, err), 0)
	}

	switch {
	case httpResp.StatusCode == http.StatusTooManyRequests:
		return nil, markRetryable(statusError(httpResp.StatusCode), parseRetryAfter(httpResp.Header.Get("Retry-After")))
	case httpResp.StatusCode >= http.StatusInternalServerError:
		return nil, markRetryable(statusError(httpResp.StatusCode), 0)
	}

	var resp response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		if httpResp.StatusCode != http.StatusOK {
			return nil, statusError(httpResp.StatusCode)
		}
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

func statusError(code int) error {
	return txerr.WithDetails(ErrRPCRequest, map[string]string{
		"status": fmt.Sprintf("%d %s", code, http.StatusText(code)),
	})
}

// ChainID returns the chain ID reported by the node.
func (c *Client) ChainID(ctx context.Context) (*uint256.Int, error) {
	return c.callQuantity(ctx, "eth_chainId")
}

// GetTransactionCount returns the nonce of address at block ("pending" when empty).
func (c *Client) GetTransactionCount(ctx context.Context, address ethtypes.Address, block string) (*uint256.Int, error) {
	if block == "" {
		block = "pending"
	}
	return c.callQuantity(ctx, "eth_getTransactionCount", address.Hex(), block)
}

// GasPrice returns the node's suggested legacy gas price.
func (c *Client) GasPrice(ctx context.Context) (*uint256.Int, error) {
	return c.callQuantity(ctx, "eth_gasPrice")
}

// MaxPriorityFeePerGas returns the node's suggested EIP-1559 tip.
func (c *Client) MaxPriorityFeePerGas(ctx context.Context) (*uint256.Int, error) {
	return c.callQuantity(ctx, "eth_maxPriorityFeePerGas")
}

// EthCall executes params against state at block ("latest" when empty).
func (c *Client) EthCall(ctx context.Context, params *ethtypes.TransactionParameters, block string) ([]byte, error) {
	if block == "" {
		block = "latest"
	}

	result, err := c.Call(ctx, "eth_call", params, block)
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return ethtypes.ParseHexBytes(hexVal)
}

// EstimateGas asks the node for the gas params would consume.
func (c *Client) EstimateGas(ctx context.Context, params *ethtypes.TransactionParameters) (*uint256.Int, error) {
	return c.callQuantity(ctx, "eth_estimateGas", params)
}

// SendRawTransaction broadcasts full-transaction bytes and returns the hash
// reported by the node. Node-side rejections wrap ErrTxRejected.
func (c *Client) SendRawTransaction(ctx context.Context, raw []byte) (ethtypes.Hash, error) {
	result, err := c.Call(ctx, "eth_sendRawTransaction", ethtypes.FormatHexBytes(raw))
	if err != nil {
		var nodeErr *Error
		if errors.As(err, &nodeErr) {
			return ethtypes.Hash{}, txerr.WithDetails(txerr.WithCause(txerr.ErrTxRejected, nodeErr),
				map[string]string{"reason": nodeErr.Message})
		}
		return ethtypes.Hash{}, err
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return ethtypes.Hash{}, txerr.WithCause(ErrRPCResponse, err)
	}
	return ethtypes.HexToHash(txHash)
}

// SendEnvelope broadcasts a signed envelope.
func (c *Client) SendEnvelope(ctx context.Context, env ethtypes.Envelope) (ethtypes.Hash, error) {
	if !ethtypes.IsSigned(env) {
		return ethtypes.Hash{}, txerr.ErrNotSigned
	}
	return c.SendRawTransaction(ctx, env.Encode(ethtypes.FullTransaction))
}

// GetTransactionByHash returns the node's JSON object for hash as a field map.
// A null result maps to ErrTransactionNotFound.
func (c *Client) GetTransactionByHash(ctx context.Context, hash ethtypes.Hash) (map[string]any, error) {
	result, err := c.Call(ctx, "eth_getTransactionByHash", hash.Hex())
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, txerr.WithDetails(txerr.ErrTransactionNotFound, map[string]string{"hash": hash.Hex()})
	}

	var fields map[string]any
	if err := unmarshalNumbers(result, &fields); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return fields, nil
}

// GetRawTransactionByHash returns the full-transaction bytes for hash.
func (c *Client) GetRawTransactionByHash(ctx context.Context, hash ethtypes.Hash) ([]byte, error) {
	result, err := c.Call(ctx, "eth_getRawTransactionByHash", hash.Hex())
	if err != nil {
		return nil, err
	}
	if isNull(result) {
		return nil, txerr.WithDetails(txerr.ErrTransactionNotFound, map[string]string{"hash": hash.Hex()})
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return ethtypes.ParseHexBytes(hexVal)
}

// PersonalSign asks the node to sign message with the unlocked account from
// (personal_sign). The node returns [R || S || V] with V in {27, 28}.
func (c *Client) PersonalSign(ctx context.Context, message []byte, from ethtypes.Address) ([]byte, error) {
	result, err := c.Call(ctx, "personal_sign", ethtypes.FormatHexBytes(message), from.Hex())
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	sig, err := ethtypes.ParseHexBytes(hexVal)
	if err != nil {
		return nil, err
	}
	if len(sig) != signatureLength {
		return nil, txerr.WithDetails(txerr.ErrInvalidSignature, map[string]string{
			"length": fmt.Sprint(len(sig)),
		})
	}
	return sig, nil
}

// FetchEnvelope retrieves hash and decodes it through the JSON selector.
func (c *Client) FetchEnvelope(ctx context.Context, hash ethtypes.Hash, opts ...ethtypes.DecodeOption) (ethtypes.Envelope, error) {
	fields, err := c.GetTransactionByHash(ctx, hash)
	if err != nil {
		return nil, err
	}
	env, err := ethtypes.DecodeJSON(fields, opts...)
	c.metrics.RecordDecode(err)
	return env, err
}

func (c *Client) callQuantity(ctx context.Context, method string, params ...any) (*uint256.Int, error) {
	result, err := c.Call(ctx, method, params...)
	if err != nil {
		return nil, err
	}

	var hexVal string
	if err := json.Unmarshal(result, &hexVal); err != nil {
		return nil, txerr.WithCause(ErrRPCResponse, err)
	}
	return ethtypes.ParseQuantity(hexVal)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// unmarshalNumbers decodes raw into v, keeping numbers as json.Number.
func unmarshalNumbers(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	return dec.Decode(v)
}
