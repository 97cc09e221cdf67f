package cmd

import (
	"fmt"
	"math/big"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/sale"
	"github.com/Mohsinsiddi/krypton/internal/ui"
)

var (
	addressQR     bool
	addressPNG    string
	addressAmount string
)

var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Show the sale contract address and a payment QR code",
	Long: `Print the sale contract address and an EIP-681 payment link that mobile
wallets understand. Sending ether to the contract is an investment.

  krypton address --qr
  krypton address --amount 0.5 --png invest.png`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var wei *big.Int
		if addressAmount != "" {
			amt, err := sale.ValidateAmount(addressAmount)
			if err != nil {
				return &sale.Error{Kind: sale.KindValidationFailure, Op: "address", Err: err}
			}
			if wei, err = chain.EtherToWei(amt); err != nil {
				return err
			}
		}

		uri, err := ui.PaymentURI(cfg.ContractAddress, cfg.ChainID, wei)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.KeyValueBlock("Sale contract", [][2]string{
			{"Address", ui.Addr(cfg.ContractAddress)},
			{"Chain ID", fmt.Sprintf("%d", cfg.ChainID)},
			{"Payment link", uri},
		}))

		if addressQR {
			qr, err := ui.QR(uri)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, qr)
		}
		if addressPNG != "" {
			if err := ui.WriteQRPNG(uri, addressPNG); err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success("QR code written to "+addressPNG))
		}
		return nil
	},
}

func init() {
	addressCmd.Flags().BoolVar(&addressQR, "qr", false, "print the payment link as a QR code")
	addressCmd.Flags().StringVar(&addressPNG, "png", "", "write the QR code as a PNG file")
	addressCmd.Flags().StringVarP(&addressAmount, "amount", "a", "", "ether amount to prefill in the payment link")
}
