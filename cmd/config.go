package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/ui"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the effective configuration",
	Long:  `Show every setting after KRYPTON_* environment overrides are applied.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		t := ui.NewTable([]ui.Column{
			{Title: "Key", Width: 18},
			{Title: "Value", Width: 60},
		})
		for _, k := range config.Keys() {
			v, err := cfg.Get(k)
			if err != nil {
				return err
			}
			t.AddRow(ui.Row{k, v})
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ui.StyleTitle.Render("Current Configuration"))
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta("Config directory: "+cfg.Dir()))
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := cfg.Get(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), v)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change a setting in config.json",
	Long: `Change a setting in config.json. The value is validated before it is saved.

Keys: rpc_urls (comma separated), rpc_algorithm, chain_id, contract_address,
default_wallet, confirm_timeout, log_level, token_name, token_symbol,
sale_opens, sale_closes (RFC 3339).`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]
		if err := updateConfigFile(func(c *config.Config) error {
			return c.Set(key, value)
		}); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("%s set to %q", key, value)))
		return nil
	},
}

// updateConfigFile applies fn to config.json as stored on disk, without the
// environment overrides, and saves the result.
func updateConfigFile(fn func(c *config.Config) error) error {
	fileCfg, err := config.LoadFile(cfg.Dir())
	if err != nil {
		return err
	}
	if err := fn(fileCfg); err != nil {
		return err
	}
	return fileCfg.Save()
}

func init() {
	configCmd.AddCommand(configListCmd, configGetCmd, configSetCmd)
}
