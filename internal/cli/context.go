package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/chain/eth/rpc"
	"github.com/mrz1836/ethtx/internal/config"
)

// defaultTimeout applies when network.timeout_seconds is unset.
const defaultTimeout = 30 * time.Second

// newRPCClientFn builds the node client; tests replace it.
//
//nolint:gochecknoglobals // replaced in tests
var newRPCClientFn = func(c *config.Config, l *config.Logger) *rpc.Client {
	return rpc.NewClientFromConfig(c, l)
}

// contextWithTimeout returns a context bounded by the configured network timeout.
func contextWithTimeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	base := cmd.Context()
	if base == nil {
		base = context.Background()
	}
	d := defaultTimeout
	if cfg != nil && cfg.Network.TimeoutSeconds > 0 {
		d = time.Duration(cfg.Network.TimeoutSeconds) * time.Second
	}
	return context.WithTimeout(base, d)
}
