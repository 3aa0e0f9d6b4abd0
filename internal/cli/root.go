// Package cli implements the ethtx command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/metrics"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	rpcURL       string
	lenientRLP   bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "ethtx",
	Short: "Decode, build, sign and broadcast Ethereum transactions",
	Long: `ethtx works with Ethereum transaction envelopes: legacy, EIP-2930
access list and EIP-1559 fee market transactions.

It decodes raw transaction bytes and JSON-RPC transaction objects, computes
signing and transaction hashes, builds and signs envelopes with a local key,
and talks to a JSON-RPC node to fetch or broadcast them.

Example:
  ethtx decode 0x02f8...
  ethtx build --type eip1559 --to 0x... --value 0.1ether --fill --from 0x...
  ethtx sign tx.hex --key-file ~/.ethtx/key.json
  ethtx send signed.hex`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		format := output.FormatText
		if formatter != nil {
			format = formatter.Format()
		}
		_ = output.FormatError(os.Stderr, err, format)
		if logger != nil {
			logger.Error("command failed: %v", err)
			_ = logger.Close()
		}
		return err
	}
	return nil
}

// ExitCode returns the process exit code for an error.
func ExitCode(err error) int {
	return txerr.ExitCode(err)
}

// initGlobals loads configuration, then applies environment and flag overrides.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	if err != nil {
		cfg = config.Defaults()
		cfg.Home = home
	}
	config.ApplyEnvironment(cfg)

	if homeDir != "" {
		cfg.Home = homeDir
	}
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != "auto" {
		cfg.Output.DefaultFormat = outputFormat
	}
	if lenientRLP {
		cfg.Decoding.LenientRLP = true
	}
	if rpcURL != "" {
		sanitized := config.SanitizeURL(rpcURL)
		if sanitized == "" {
			return txerr.WithDetails(txerr.ErrInvalidInput, map[string]string{"flag": "rpc", "value": rpcURL})
		}
		cfg.Network.RPC = sanitized
	}

	logger, err = config.NewLogger(config.ParseLogLevel(cfg.Logging.Level), cfg.Logging.File,
		config.ParseLogFormat(cfg.Logging.Format))
	if err != nil {
		logger = config.NullLogger()
	}

	w := cmd.OutOrStdout()
	_, noColor := os.LookupEnv(config.EnvNoColor)
	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), w).
		WithColor(output.ColorEnabled(w, cfg.Output.Color, noColor))

	logger.DebugAttrs("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("rpc", config.MaskURL(cfg.Network.RPC)),
		slog.Bool("lenient_rlp", cfg.Decoding.LenientRLP),
	)
	return nil
}

// cleanup logs the run's metrics and releases the log file.
func cleanup() {
	if logger == nil {
		return
	}
	snap := metrics.Global.Snapshot()
	logger.DebugAttrs("command finished",
		slog.Int64("rpc_calls", snap.RPCCallsTotal),
		slog.Int64("rpc_errors", snap.RPCErrorsTotal),
		slog.Int64("rpc_retries", snap.RPCRetries),
		slog.Int64("rpc_failovers", snap.RPCFailovers),
		slog.Int64("decodes", snap.DecodesTotal),
		slog.Int64("decode_errors", snap.DecodeErrors),
		slog.Int64("signings", snap.SigningsTotal),
	)
	_ = logger.Close()
	logger = nil
}

// statusWriter is where progress messages go: stderr, keeping stdout clean.
func statusWriter(cmd *cobra.Command) io.Writer {
	return cmd.ErrOrStderr()
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "ethtx data directory (default: ~/.ethtx)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&rpcURL, "rpc", "", "JSON-RPC endpoint (overrides network.rpc)")
	rootCmd.PersistentFlags().BoolVar(&lenientRLP, "lenient", false, "accept non-canonical RLP when decoding")
}
