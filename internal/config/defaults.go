package config

// DefaultRPCURL is the default Ethereum RPC endpoint.
// PublicNode requires no API key.
const DefaultRPCURL = "https://ethereum-rpc.publicnode.com"

// DefaultFallbackRPCs are tried in order when the primary endpoint fails.
//
//nolint:gochecknoglobals // Configuration default, same pattern as DefaultRPCURL
var DefaultFallbackRPCs = []string{
	"https://rpc.ankr.com/eth",
	"https://1rpc.io/eth",
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.ethtx",
		Network: NetworkConfig{
			RPC:            DefaultRPCURL,
			FallbackRPCs:   append([]string(nil), DefaultFallbackRPCs...),
			ChainID:        1,
			RateLimit:      5,
			Burst:          10,
			TimeoutSeconds: 30,
		},
		Decoding: DecodingConfig{
			LenientRLP:  false,
			DefaultType: "eip1559",
		},
		Signing: SigningConfig{
			KeyFile: "~/.ethtx/key.json",
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.ethtx/ethtx.log",
			Format: "text",
		},
	}
}
