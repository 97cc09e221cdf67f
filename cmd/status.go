package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/ui"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the sale state",
	Long: `Read the sale parameters from the contract and print them with the
funding progress, the sale phase and the token details.

With no reachable endpoint the zero snapshot is printed and the command fails.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := newWalletManager()
		if err != nil {
			return err
		}
		ctl := newController(mgr, ui.NewPrompter(assumeYes))

		ctx, cancel := initTimeout(cmd.Context())
		defer cancel()

		sp := ui.NewSpinnerTo(cmd.ErrOrStderr(), "Loading sale…")
		sp.Start()
		snap, initErr := ctl.Initialize(ctx)
		details := ctl.Details(ctx)
		sp.Stop()

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.SnapshotBlock(snap, details.TokenSymbol))
		fmt.Fprintln(out, ui.DetailsBlock(details, time.Now()))
		if initErr == nil && !snap.Phase.Open() {
			fmt.Fprintln(out, ui.Info("The sale is not accepting investments right now."))
		}
		return initErr
	},
}
