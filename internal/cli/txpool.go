package cli

import (
	"io"
	"sort"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/mrz1836/ethtx/internal/chain/eth/rpc"
	"github.com/mrz1836/ethtx/internal/output"
)

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txpoolCmd = &cobra.Command{
	Use:   "txpool",
	Short: "Inspect the node's transaction pool",
	Long: `Query the node's transaction pool with the txpool_* methods.

These methods are served by geth and compatible clients; other nodes
return a method-not-found error.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txpoolStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the number of pending and queued transactions",
	Args:  cobra.NoArgs,
	RunE:  runTxPoolStatus,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txpoolContentCmd = &cobra.Command{
	Use:   "content",
	Short: "Decode every pooled transaction",
	Long: `Fetch the full pool and decode each transaction object.

Example:
  ethtx txpool content --queued`,
	Args: cobra.NoArgs,
	RunE: runTxPoolContent,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var txpoolInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Show the node's one-line summaries of pooled transactions",
	Args:  cobra.NoArgs,
	RunE:  runTxPoolInspect,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level flag variables
var txpoolQueued bool

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(txpoolCmd)
	txpoolCmd.AddCommand(txpoolStatusCmd)
	txpoolCmd.AddCommand(txpoolContentCmd)
	txpoolCmd.AddCommand(txpoolInspectCmd)

	txpoolCmd.PersistentFlags().BoolVar(&txpoolQueued, "queued", false, "show queued instead of pending transactions")
}

func runTxPoolStatus(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	status, err := newRPCClientFn(cfg, logger).TxPoolStatus(ctx)
	if err != nil {
		return err
	}
	return formatter.PrintResult(status, func(w io.Writer) error {
		out(w, "Pending: %d\n", status.Pending)
		out(w, "Queued:  %d\n", status.Queued)
		return nil
	})
}

// poolEntryView is the JSON shape of one decoded pool transaction.
type poolEntryView struct {
	Sender      string        `json:"sender"`
	Nonce       string        `json:"nonce"`
	Transaction *envelopeView `json:"transaction"`
}

func runTxPoolContent(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	content, err := newRPCClientFn(cfg, logger).TxPoolContent(ctx)
	if err != nil {
		return err
	}

	pool := content.Pending
	if txpoolQueued {
		pool = content.Queued
	}
	entries, err := pool.Decode(decodeOptions()...)
	if err != nil {
		return err
	}
	logger.Debug("decoded %d pool transactions", len(entries))

	views := make([]poolEntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, poolEntryView{
			Sender:      e.Sender,
			Nonce:       e.Nonce.Dec(),
			Transaction: newEnvelopeView(e.Envelope),
		})
	}

	return formatter.PrintResult(views, func(w io.Writer) error {
		return renderPoolEntries(w, entries, views)
	})
}

func renderPoolEntries(w io.Writer, entries []rpc.PoolEntry, views []poolEntryView) error {
	if len(entries) == 0 {
		outln(w, "No transactions in pool.")
		return nil
	}

	table := output.NewTable("SENDER", "NONCE", "TYPE", "HASH")
	for i, e := range entries {
		hash := views[i].Transaction.Hash
		if hash == "" {
			hash = "(unsigned)"
		}
		table.AddRow(e.Sender, e.Nonce.Dec(), e.Envelope.Type().String(), hash)
	}
	if err := table.Render(w); err != nil {
		return err
	}
	out(w, "\n%d transaction(s)\n", len(entries))
	return nil
}

func runTxPoolInspect(cmd *cobra.Command, _ []string) error {
	ctx, cancel := contextWithTimeout(cmd)
	defer cancel()

	inspect, err := newRPCClientFn(cfg, logger).TxPoolInspect(ctx)
	if err != nil {
		return err
	}

	pool := inspect.Pending
	if txpoolQueued {
		pool = inspect.Queued
	}
	return formatter.PrintResult(pool, func(w io.Writer) error {
		return renderInspect(w, pool)
	})
}

func renderInspect(w io.Writer, pool map[string]map[string]string) error {
	table := output.NewTable("SENDER", "NONCE", "SUMMARY")
	for _, sender := range sortedStrings(pool) {
		byNonce := pool[sender]
		nonces := make([]string, 0, len(byNonce))
		for n := range byNonce {
			nonces = append(nonces, n)
		}
		sort.Slice(nonces, func(i, j int) bool { return nonceLess(nonces[i], nonces[j]) })
		for _, n := range nonces {
			table.AddRow(sender, n, byNonce[n])
		}
	}
	if table.Len() == 0 {
		outln(w, "No transactions in pool.")
		return nil
	}
	return table.Render(w)
}

func sortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// nonceLess orders decimal nonce keys numerically, falling back to text order.
func nonceLess(a, b string) bool {
	x, errA := uint256.FromDecimal(a)
	y, errB := uint256.FromDecimal(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return x.Lt(y)
}
