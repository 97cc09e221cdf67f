package sale

import (
	"context"
	"math/big"

	"github.com/Mohsinsiddi/krypton/internal/chain"
)

// Contract is the sale contract surface the controller reads through.
// *contract.Sale satisfies it.
type Contract interface {
	TotalSupply(ctx context.Context) (*big.Int, error)
	RaisedAmount(ctx context.Context) (*big.Int, error)
	TokenPrice(ctx context.Context) (*big.Int, error)
	HardCap(ctx context.Context) (*big.Int, error)
	MaxInvestment(ctx context.Context) (*big.Int, error)
	MinInvestment(ctx context.Context) (*big.Int, error)
	GetCurrentState(ctx context.Context) (uint8, error)

	Name(ctx context.Context) (string, error)
	Symbol(ctx context.Context) (string, error)
	SaleStart(ctx context.Context) (*big.Int, error)
	SaleEnd(ctx context.Context) (*big.Int, error)
	BalanceOf(ctx context.Context, owner string) (*big.Int, error)
}

// Provider is a wallet-capable environment: it can bind read-only contract
// handles, ask the user to authorize accounts, and hand out signers.
type Provider interface {
	Bind(address string) Contract
	RequestAccounts(ctx context.Context) ([]string, error)
	Signer(ctx context.Context, account string) (Signer, error)
}

// Signer acts on behalf of one authorized account.
type Signer interface {
	Address() string
	Bind(address string) Contract

	// SendTransaction submits a plain value transfer and returns its hash.
	// A refusal by the user is reported as an error wrapping ErrUserRejected.
	SendTransaction(ctx context.Context, to string, value *big.Int) (string, error)

	// WaitMined blocks until the transaction is mined. A reverted
	// transaction is an error.
	WaitMined(ctx context.Context, hash string) (*chain.TxReceipt, error)
}

// Detector looks for a Provider. It returns an error when none is available.
type Detector func(ctx context.Context) (Provider, error)
