package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/rpc"
	"github.com/Mohsinsiddi/krypton/internal/ui"
)

var rpcForce bool

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add an RPC endpoint",
	Long: `Check that the endpoint answers and serves the configured chain, then add
it to config.json. --force skips the check.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url := args[0]
		out := cmd.OutOrStdout()

		if !rpcForce {
			ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
			defer cancel()
			sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Checking "+url+"…")
			sp.Start()
			ep, err := rpc.HealthCheck(ctx, url, 0, cfg.ChainID)
			if err != nil {
				sp.Stop()
				return fmt.Errorf("%s failed the health check: %w", url, err)
			}
			sp.StopWithMsg(ui.Meta(fmt.Sprintf("%s answered in %dms at block #%d", url, ep.Latency.Milliseconds(), ep.BlockNumber)))
		}

		if err := updateConfigFile(func(c *config.Config) error {
			return c.AddRPC(url)
		}); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success("Added RPC "+url))
		return nil
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove an RPC endpoint",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := updateConfigFile(func(c *config.Config) error {
			return c.RemoveRPC(args[0])
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success("Removed RPC "+args[0]))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured RPC endpoints",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPCs for chain %d  ·  %s", cfg.ChainID, cfg.RPCAlgorithm)))
		if len(cfg.RPCURLs) == 0 {
			fmt.Fprintln(out, ui.Info("No RPC endpoints configured."))
			fmt.Fprintln(out, ui.Hint("Add one with: krypton rpc add <url>"))
			return nil
		}
		for _, u := range cfg.RPCURLs {
			fmt.Fprintln(out, "  "+u)
		}
		return nil
	},
}

var rpcBenchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Probe every configured endpoint and show which one would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render(fmt.Sprintf("Benchmarking %d RPC(s)...", len(cfg.RPCURLs))))

		ctx, cancel := context.WithTimeout(cmd.Context(), config.RPCSelectTimeout)
		defer cancel()
		probes := rpc.ProbeAll(ctx, cfg.RPCURLs, cfg.ChainID)

		algo, _ := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		best, bestErr := rpc.NewPicker(algo).Pick(rpc.ResultsToEndpoints(probes))

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 9, Right: true},
			{Title: "Block #", Width: 10, Right: true},
			{Title: "Status", Width: 12},
		})
		for i, p := range probes {
			status, latency, block := "healthy", fmt.Sprintf("%dms", p.Latency.Milliseconds()), fmt.Sprintf("%d", p.BlockNumber)
			if p.Err != nil {
				status, latency, block = "down", "—", "—"
				logger.Debug().Err(p.Err).Str("rpc", p.URL).Msg("probe failed")
			}
			if bestErr == nil && p.URL == best.URL {
				status = "selected"
				t.SelIdx = i
			}
			t.AddRow(ui.Row{p.URL, latency, block, status})
		}
		fmt.Fprintln(out, t.Render())
		return bestErr
	},
}

func init() {
	rpcAddCmd.Flags().BoolVar(&rpcForce, "force", false, "add without checking the endpoint")
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcBenchmarkCmd)
}
