package config

import (
	"fmt"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// maxSuggestionDistance bounds how far a typo may be from a known key.
const maxSuggestionDistance = 4

type configKey struct {
	get func(c *Config) string
	set func(c *Config, value string) error
}

//nolint:gochecknoglobals // static key table
var configKeys = map[string]configKey{
	"home": {
		get: func(c *Config) string { return c.Home },
		set: func(c *Config, v string) error { c.Home = v; return nil },
	},
	"network.rpc": {
		get: func(c *Config) string { return c.Network.RPC },
		set: func(c *Config, v string) error {
			u := SanitizeURL(v)
			if u == "" {
				return invalidValue("network.rpc", v, "http(s) or ws(s) URL")
			}
			c.Network.RPC = u
			return nil
		},
	},
	"network.fallback_rpcs": {
		get: func(c *Config) string { return strings.Join(c.Network.FallbackRPCs, ",") },
		set: func(c *Config, v string) error {
			var urls []string
			for _, part := range strings.Split(v, ",") {
				if strings.TrimSpace(part) == "" {
					continue
				}
				u := SanitizeURL(part)
				if u == "" {
					return invalidValue("network.fallback_rpcs", part, "comma-separated URLs")
				}
				urls = append(urls, u)
			}
			c.Network.FallbackRPCs = urls
			return nil
		},
	},
	"network.chain_id": {
		get: func(c *Config) string { return strconv.FormatUint(c.Network.ChainID, 10) },
		set: func(c *Config, v string) error {
			id, err := strconv.ParseUint(v, 0, 64)
			if err != nil {
				return invalidValue("network.chain_id", v, "unsigned integer")
			}
			c.Network.ChainID = id
			return nil
		},
	},
	"network.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Network.RateLimit, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			r, err := strconv.ParseFloat(v, 64)
			if err != nil || r < 0 {
				return invalidValue("network.rate_limit", v, "requests per second, 0 disables")
			}
			c.Network.RateLimit = r
			return nil
		},
	},
	"network.burst": {
		get: func(c *Config) string { return strconv.Itoa(c.Network.Burst) },
		set: func(c *Config, v string) error {
			b, err := strconv.Atoi(v)
			if err != nil || b < 1 {
				return invalidValue("network.burst", v, "positive integer")
			}
			c.Network.Burst = b
			return nil
		},
	},
	"network.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Network.TimeoutSeconds) },
		set: func(c *Config, v string) error {
			s, err := strconv.Atoi(v)
			if err != nil || s < 1 {
				return invalidValue("network.timeout_seconds", v, "positive integer")
			}
			c.Network.TimeoutSeconds = s
			return nil
		},
	},
	"decoding.lenient_rlp": {
		get: func(c *Config) string { return strconv.FormatBool(c.Decoding.LenientRLP) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return invalidValue("decoding.lenient_rlp", v, "true or false")
			}
			c.Decoding.LenientRLP = b
			return nil
		},
	},
	"decoding.default_type": {
		get: func(c *Config) string { return c.Decoding.DefaultType },
		set: oneOf("decoding.default_type", func(c *Config, v string) { c.Decoding.DefaultType = v },
			"legacy", "eip2930", "eip1559"),
	},
	"signing.key_file": {
		get: func(c *Config) string { return c.Signing.KeyFile },
		set: func(c *Config, v string) error { c.Signing.KeyFile = v; return nil },
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: oneOf("output.default_format", func(c *Config, v string) { c.Output.DefaultFormat = v },
			"text", "json", "auto"),
	},
	"output.color": {
		get: func(c *Config) string { return c.Output.Color },
		set: oneOf("output.color", func(c *Config, v string) { c.Output.Color = v },
			"auto", "always", "never"),
	},
	"output.verbose": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *Config, v string) error { c.Output.Verbose = parseBool(v); return nil },
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: oneOf("logging.level", func(c *Config, v string) { c.Logging.Level = v },
			"off", "error", "debug"),
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: oneOf("logging.format", func(c *Config, v string) { c.Logging.Format = v },
			"text", "json"),
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: func(c *Config, v string) error { c.Logging.File = v; return nil },
	},
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(configKeys))
	for k := range configKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of the value at key.
func Get(c *Config, key string) (string, error) {
	k, ok := configKeys[key]
	if !ok {
		return "", unknownKey(key)
	}
	return k.get(c), nil
}

// Set parses value and stores it at key.
func Set(c *Config, key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return unknownKey(key)
	}
	return k.set(c, strings.TrimSpace(value))
}

// SuggestKey returns the known key closest to key, or "" if none is close.
func SuggestKey(key string) string {
	return Closest(key, Keys(), maxSuggestionDistance)
}

// Closest returns the candidate with the smallest edit distance to input,
// provided it is within maxDistance.
func Closest(input string, candidates []string, maxDistance int) string {
	input = strings.ToLower(input)
	best := ""
	bestDistance := maxDistance + 1
	for _, candidate := range candidates {
		if d := levenshtein.ComputeDistance(input, candidate); d < bestDistance {
			best, bestDistance = candidate, d
		}
	}
	return best
}

// MaskURL hides credentials and path segments that commonly carry API keys.
func MaskURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	masked := u.Scheme + "://" + u.Host
	if u.Path != "" && u.Path != "/" {
		masked += "/..."
	}
	return masked
}

func oneOf(key string, assign func(*Config, string), valid ...string) func(*Config, string) error {
	return func(c *Config, v string) error {
		v = strings.ToLower(v)
		if !slices.Contains(valid, v) {
			return invalidValue(key, v, strings.Join(valid, ", "))
		}
		assign(c, v)
		return nil
	}
}

func unknownKey(key string) error {
	err := txerr.WithDetails(txerr.ErrUnknownConfigKey, map[string]string{"key": key})
	if s := SuggestKey(key); s != "" {
		return txerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", s))
	}
	return txerr.WithSuggestion(err, "run 'ethtx config show' to list keys")
}

func invalidValue(key, value, valid string) error {
	return txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{
		"key":   key,
		"value": value,
		"valid": valid,
	})
}
