package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/wallet"
)

// ConfirmDanger asks a yes/no question styled with the error color (for
// destructive actions). Returns true for yes.
func ConfirmDanger(in io.Reader, out io.Writer, prompt string) bool {
	return confirm(in, out, StyleError.Render("⚠ "+prompt))
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", prompt)
	r, ok := in.(*bufio.Reader)
	if !ok {
		r = bufio.NewReader(in)
	}
	line, _ := r.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// Prompter approves wallet requests by asking on the terminal, the way a
// browser wallet pops up a dialog. With AssumeYes set it prints the request
// and approves without asking.
type Prompter struct {
	In        io.Reader
	Out       io.Writer
	AssumeYes bool

	r *bufio.Reader // answers to successive prompts share one buffer
}

var _ wallet.Authorizer = (*Prompter)(nil)

// NewPrompter returns a Prompter on stdin/stdout.
func NewPrompter(assumeYes bool) *Prompter {
	return &Prompter{In: os.Stdin, Out: os.Stdout, AssumeYes: assumeYes}
}

// ApproveConnect asks whether the sale may see the wallet's address.
func (p *Prompter) ApproveConnect(w *wallet.Wallet) bool {
	fmt.Fprintln(p.Out, KeyValueBlock("Connection request", [][2]string{
		{"Wallet", w.Name},
		{"Account", Addr(w.Address)},
	}))
	return p.ask("Connect this account?")
}

// ApproveTx shows the transaction about to be signed and asks for approval.
func (p *Prompter) ApproveTx(tx wallet.TxPreview) bool {
	gas := fmt.Sprintf("%d", tx.Gas)
	if !tx.Estimate {
		gas += Meta(" (estimate failed, using fallback)")
	}
	fmt.Fprintln(p.Out, KeyValueBlock("Transaction request", [][2]string{
		{"From", Addr(tx.From)},
		{"To", Addr(tx.To)},
		{"Value", chain.FormatEther(tx.Value) + " ETH"},
		{"Gas limit", gas},
		{"Max fee", chain.FormatGwei(tx.MaxFee) + " gwei"},
		{"Max cost", chain.FormatEther(tx.MaxCost()) + " ETH"},
		{"Chain ID", fmt.Sprintf("%d", tx.ChainID)},
		{"Nonce", fmt.Sprintf("%d", tx.Nonce)},
	}))
	return p.ask("Sign and send?")
}

func (p *Prompter) ask(q string) bool {
	if p.AssumeYes {
		fmt.Fprintln(p.Out, Meta(q+" yes (--yes)"))
		return true
	}
	if p.r == nil {
		p.r = bufio.NewReader(p.In)
	}
	return confirm(p.r, p.Out, StyleWarning.Render(q))
}
