package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/config"
	"github.com/mrz1836/ethtx/internal/output"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify ethtx configuration settings.`,
}

// configInitCmd writes a default configuration file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long: `Create a default configuration file at ~/.ethtx/config.yaml.

If a configuration file already exists, this command will not overwrite it
unless --force is specified.

Example:
  ethtx config init
  ethtx config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

// configShowCmd shows the effective configuration.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration: the file, then environment
variables, then flags. RPC URLs are masked.

Example:
  ethtx config show
  ethtx config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

// configGetCmd prints one configuration value.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Get a configuration value by its dotted key.

Examples:
  ethtx config get network.rpc
  ethtx config get decoding.lenient_rlp`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
}

// configSetCmd updates one value in the configuration file.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value by its dotted key. The configuration file
is updated immediately; environment and flag overrides are not saved.

Examples:
  ethtx config set network.rpc http://localhost:8545
  ethtx config set network.chain_id 11155111
  ethtx config set decoding.default_type eip2930`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var configForce bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite existing configuration")
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	configPath := config.Path(cfg.Home)

	if _, err := os.Stat(configPath); err == nil && !configForce {
		return txerr.WithSuggestion(
			txerr.WithDetails(txerr.ErrGeneral, map[string]string{"path": configPath}),
			"configuration already exists; use --force to overwrite",
		)
	}

	defaultCfg := config.Defaults()
	defaultCfg.Home = cfg.Home
	if err := config.Save(defaultCfg, configPath); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	if formatter.IsJSON() {
		return output.FormatSuccess(cmd.OutOrStdout(), "configuration initialized at "+configPath, output.FormatJSON)
	}
	w := cmd.OutOrStdout()
	out(w, "Configuration initialized at %s\n", configPath)
	outln(w)
	outln(w, "Edit this file to configure:")
	outln(w, "  - network.rpc: your JSON-RPC endpoint")
	outln(w, "  - network.chain_id: chain ID for new transactions")
	outln(w, "  - signing.key_file: key used by 'ethtx sign'")
	outln(w, "  - output.default_format: output format (text/json/auto)")
	return nil
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	values := make(map[string]string, len(config.Keys()))
	for _, key := range config.Keys() {
		value, err := config.Get(cfg, key)
		if err != nil {
			return err
		}
		values[key] = displayValue(key, value)
	}

	return formatter.PrintResult(values, func(w io.Writer) error {
		table := output.NewTable()
		for _, key := range config.Keys() {
			table.AddRow(key, values[key])
		}
		return table.Render(w)
	})
}

// displayValue masks endpoint URLs, which often embed API keys.
func displayValue(key, value string) string {
	switch key {
	case "network.rpc":
		return config.MaskURL(value)
	case "network.fallback_rpcs":
		parts := strings.Split(value, ",")
		for i, p := range parts {
			parts[i] = config.MaskURL(p)
		}
		return strings.Join(parts, ",")
	default:
		return value
	}
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	value, err := config.Get(cfg, args[0])
	if err != nil {
		return err
	}

	if formatter.IsJSON() {
		return formatter.Print(map[string]string{args[0]: value})
	}
	outln(cmd.OutOrStdout(), value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	configPath := config.Path(cfg.Home)
	current, err := config.Load(configPath)
	if err != nil {
		current = config.Defaults()
		current.Home = cfg.Home
	}

	if err := config.Set(current, key, value); err != nil {
		return err
	}
	if err := config.Save(current, configPath); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	stored, _ := config.Get(current, key)
	logger.Debug("config %s updated in %s", key, configPath)
	return output.FormatSuccess(cmd.OutOrStdout(), fmt.Sprintf("set %s = %s", key, displayValue(key, stored)), formatter.Format())
}
