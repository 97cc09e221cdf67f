package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/config"
	"github.com/Mohsinsiddi/krypton/internal/ui"
	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

var walletKeyFlag string

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a watch-only wallet by address, or a signing wallet with --key.

The private key is stored in the OS keychain, never in wallets.json. Pass
--key - to read it from stdin instead of the command line.

  krypton wallet add savings 0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266
  krypton wallet add alice --key -`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		if walletKeyFlag != "" {
			key := walletKeyFlag
			if key == "-" {
				if key, err = readLine(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("reading key: %w", err)
				}
			}
			w, err := mgr.AddWithKey(name, key)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: krypton wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return fmt.Errorf("address required for watch-only wallet\n  Usage: krypton wallet add <name> <address>\n  Or for signing: krypton wallet add <name> --key <private-key>")
		}
		if err := mgr.Add(name, args[1]); err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		fmt.Fprintln(out, ui.Hint("Watch-only wallets can check balances but cannot invest."))
		return nil
	},
}

var walletGenerateCmd = &cobra.Command{
	Use:   "generate <name>",
	Short: "Generate a new signing wallet",
	Long: `Generate a brand-new EVM keypair and store the private key in the OS keychain.

Fund the new address with Sepolia ether before investing.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		w, err := mgr.Generate(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("New wallet", [][2]string{
			{"Name", w.Name},
			{"Address", ui.Addr(w.Address)},
			{"Key", "stored in OS keychain"},
		}))
		fmt.Fprintln(out, ui.Hint("Fund it from a Sepolia faucet, then: krypton invest --wallet "+w.Name+" --amount 0.01"))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: krypton wallet generate myWallet"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 42},
			{Title: "Type", Width: 10},
			{Title: "Default", Width: 7},
		})
		for i, w := range wallets {
			def := ""
			if w.IsDefault {
				def = "✓"
				t.SelIdx = i
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w), def})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		out := cmd.OutOrStdout()
		if !assumeYes && !ui.ConfirmDanger(cmd.InOrStdin(), out, fmt.Sprintf("Remove wallet %q and its key?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			if err := updateConfigFile(func(c *config.Config) error {
				c.DefaultWallet = ""
				return nil
			}); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Set the default wallet",
	Long:  `Set the wallet used when --wallet is not given. Without a name, pick one interactively.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}

		var name string
		if len(args) > 0 {
			name = args[0]
		} else {
			wallets, err := mgr.List()
			if err != nil {
				return err
			}
			name, err = ui.PickWallet("Default wallet  ·  select to use", wallets)
			if errors.Is(err, ui.ErrPickCancelled) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Meta("Cancelled."))
				return nil
			}
			if err != nil {
				return err
			}
		}

		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		if err := updateConfigFile(func(c *config.Config) error {
			c.DefaultWallet = name
			return nil
		}); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		if w, err := mgr.Get(name); err == nil && !w.CanSign() {
			fmt.Fprintln(out, ui.Warn("This wallet is watch-only and cannot invest."))
		}
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (- reads stdin)")
	walletCmd.AddCommand(walletAddCmd, walletGenerateCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}

// walletTypeLabel converts a wallet type to a user-friendly label.
func walletTypeLabel(w *wallet.Wallet) string {
	if w.CanSign() {
		return "signing"
	}
	return "watch-only"
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", errors.New("empty input")
	}
	return line, nil
}
