package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/mrz1836/go-sanitize"
)

// Environment variable names.
const (
	EnvHome         = "ETHTX_HOME"
	EnvRPC          = "ETHTX_RPC"
	EnvChainID      = "ETHTX_CHAIN_ID"
	EnvRPCRate      = "ETHTX_RPC_RATE"
	EnvLenientRLP   = "ETHTX_LENIENT_RLP"
	EnvKeyFile      = "ETHTX_KEY_FILE"
	EnvOutputFormat = "ETHTX_OUTPUT_FORMAT"
	EnvVerbose      = "ETHTX_VERBOSE"
	EnvLogLevel     = "ETHTX_LOG_LEVEL"
	EnvLogFormat    = "ETHTX_LOG_FORMAT"
	EnvNoColor      = "NO_COLOR"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
// Malformed numeric values are ignored.
//
//nolint:gocognit,gocyclo // Environment variable overrides require sequential checks
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvRPC); v != "" {
		if u := SanitizeURL(v); u != "" {
			cfg.Network.RPC = u
		}
	}

	if v := os.Getenv(EnvChainID); v != "" {
		if id, err := strconv.ParseUint(strings.TrimSpace(v), 0, 64); err == nil {
			cfg.Network.ChainID = id
		}
	}

	if v := os.Getenv(EnvRPCRate); v != "" {
		if r, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil && r >= 0 {
			cfg.Network.RateLimit = r
		}
	}

	if v := os.Getenv(EnvLenientRLP); v != "" {
		cfg.Decoding.LenientRLP = parseBool(v)
	}

	if v := os.Getenv(EnvKeyFile); v != "" {
		cfg.Signing.KeyFile = v
	}

	if v := os.Getenv(EnvOutputFormat); v != "" {
		cfg.Output.DefaultFormat = strings.ToLower(v)
	}

	if v := os.Getenv(EnvVerbose); v != "" {
		cfg.Output.Verbose = parseBool(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Logging.Format = string(ParseLogFormat(v))
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a user-provided RPC URL of copy-paste artifacts. It
// returns "" when the result is not an absolute http(s) or ws(s) URL.
func SanitizeURL(raw string) string {
	cleaned := sanitize.URL(strings.TrimSpace(raw))

	u, err := url.Parse(cleaned)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "http", "https", "ws", "wss":
		return cleaned
	default:
		return ""
	}
}
