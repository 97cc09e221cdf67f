package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/ui"
)

var investAmount string

var investCmd = &cobra.Command{
	Use:   "invest --amount <ether>",
	Short: "Invest ether in the sale from a signing wallet",
	Long: `Connect the selected signing wallet and send --amount ether to the sale
contract. The amount must be between 0.001 and 1 ETH.

You are asked to approve the connection and the transaction unless --yes is
given. The command waits until the transaction is mined.

  krypton invest --amount 0.5
  krypton invest --amount 0.25 --wallet alice --yes`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := sale.ValidateAmount(investAmount); err != nil {
			return &sale.Error{Kind: sale.KindValidationFailure, Op: "invest", Err: err}
		}

		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		prompter := &ui.Prompter{In: cmd.InOrStdin(), Out: out, AssumeYes: assumeYes}
		ctl := newController(mgr, prompter)

		ctx, cancel := initTimeout(cmd.Context())
		defer cancel()
		if _, err := ctl.Initialize(ctx); err != nil {
			return err
		}
		session, err := ctl.Connect(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success("Connected "+ui.Addr(session.Account)))

		// Waiting for the receipt is bounded by the wallet's confirm timeout.
		inv, err := ctl.Invest(cmd.Context(), investAmount)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success("Investment successful!"))
		fmt.Fprintln(out, ui.InvestmentBlock(inv))

		snap := ctl.Snapshot()
		fmt.Fprintln(out, ui.SnapshotBlock(snap, cfg.TokenSymbol))

		ctx, cancel = initTimeout(cmd.Context())
		defer cancel()
		if bal, err := ctl.TokenBalance(ctx); err == nil {
			fmt.Fprintln(out, ui.Meta("Token balance: ")+ui.Val(bal.String())+" "+ui.Token(cfg.TokenSymbol))
		}
		return nil
	},
}

func init() {
	investCmd.Flags().StringVarP(&investAmount, "amount", "a", "", "amount of ether to invest")
	_ = investCmd.MarkFlagRequired("amount")
}
