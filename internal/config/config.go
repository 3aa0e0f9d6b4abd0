// Package config provides configuration management for ethtx.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mrz1836/ethtx/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Network  NetworkConfig  `yaml:"network"`
	Decoding DecodingConfig `yaml:"decoding"`
	Signing  SigningConfig  `yaml:"signing"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// NetworkConfig defines the JSON-RPC endpoint settings.
type NetworkConfig struct {
	RPC            string   `yaml:"rpc"`
	FallbackRPCs   []string `yaml:"fallback_rpcs,omitempty"`
	ChainID        uint64   `yaml:"chain_id"`
	RateLimit      float64  `yaml:"rate_limit"`
	Burst          int      `yaml:"burst"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// DecodingConfig controls how transactions are decoded.
type DecodingConfig struct {
	LenientRLP  bool   `yaml:"lenient_rlp"`
	DefaultType string `yaml:"default_type"`
}

// SigningConfig points at the key used by the sign command.
type SigningConfig struct {
	KeyFile string `yaml:"key_file"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format"`
	Color         string `yaml:"color"`
	Verbose       bool   `yaml:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	File   string `yaml:"file"`
	Format string `yaml:"format"`
}

// Load reads configuration from the specified file.
// Missing keys keep their default values.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(ExpandHome(home), "config.yaml")
}

// ExpandHome replaces a leading "~/" with the user's home directory.
func ExpandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// Endpoints returns the primary RPC URL followed by the fallbacks, skipping blanks.
func (c *Config) Endpoints() []string {
	urls := make([]string, 0, 1+len(c.Network.FallbackRPCs))
	if c.Network.RPC != "" {
		urls = append(urls, c.Network.RPC)
	}
	for _, u := range c.Network.FallbackRPCs {
		if u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

// DefaultHome returns the default ethtx home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".ethtx"
	}
	return filepath.Join(home, ".ethtx")
}
