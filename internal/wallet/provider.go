package wallet

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Mohsinsiddi/krypton/internal/chain"
	"github.com/Mohsinsiddi/krypton/internal/contract"
	"github.com/Mohsinsiddi/krypton/internal/rpc"
	"github.com/Mohsinsiddi/krypton/internal/sale"
)

const (
	defaultConfirmTimeout = 3 * time.Minute
	defaultPollInterval   = 2 * time.Second
	// Gas used when estimation fails; the sale's receive() mints and
	// transfers tokens, which costs far more than a plain 21000 transfer.
	fallbackGas = 200_000
)

// Backend is the node access a Provider needs. *chain.EVMClient satisfies it.
type Backend interface {
	contract.Backend
	ChainID(ctx context.Context) (int64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GetPendingNonce(ctx context.Context, address string) (uint64, error)
	EstimateGas(ctx context.Context, from, to string, data []byte, value *big.Int) (uint64, error)
	SendRawTransaction(ctx context.Context, raw []byte) (string, error)
	WaitForReceipt(ctx context.Context, hash string, interval time.Duration) (*chain.TxReceipt, error)
}

// TxPreview is what the user is asked to approve before a transaction is
// signed.
type TxPreview struct {
	From     string
	To       string
	Value    *big.Int
	Gas      uint64
	MaxFee   *big.Int // per gas
	ChainID  int64
	Nonce    uint64
	Estimate bool // false when Gas is the fallback value
}

// MaxCost returns value + gas × maxFee, the most the transaction can spend.
func (p TxPreview) MaxCost() *big.Int {
	cost := new(big.Int).Mul(new(big.Int).SetUint64(p.Gas), p.MaxFee)
	return cost.Add(cost, p.Value)
}

// Authorizer asks the user to approve wallet requests.
type Authorizer interface {
	ApproveConnect(w *Wallet) bool
	ApproveTx(p TxPreview) bool
}

// AutoApprove approves every request.
type AutoApprove struct{}

func (AutoApprove) ApproveConnect(*Wallet) bool { return true }
func (AutoApprove) ApproveTx(TxPreview) bool    { return true }

// ProviderConfig configures a Provider.
type ProviderConfig struct {
	ChainID        int64
	Wallet         string // empty selects the default wallet
	ConfirmTimeout time.Duration
	PollInterval   time.Duration
	Authorizer     Authorizer
	Logger         zerolog.Logger
}

// Provider is a wallet environment made of a node connection and the local
// wallet store. It implements sale.Provider.
type Provider struct {
	backend Backend
	manager *Manager
	cfg     ProviderConfig
}

// NewProvider assembles a provider. A nil Authorizer approves everything.
func NewProvider(backend Backend, m *Manager, cfg ProviderConfig) *Provider {
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = defaultConfirmTimeout
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = defaultPollInterval
	}
	if cfg.Authorizer == nil {
		cfg.Authorizer = AutoApprove{}
	}
	return &Provider{backend: backend, manager: m, cfg: cfg}
}

// Bind returns a read-only handle to the sale contract at address.
func (p *Provider) Bind(address string) sale.Contract {
	return contract.NewSale(p.backend, address, "")
}

// RequestAccounts resolves the configured signing wallet and asks the user
// to approve the connection.
func (p *Provider) RequestAccounts(context.Context) ([]string, error) {
	w, err := p.manager.Resolve(p.cfg.Wallet)
	if err != nil {
		return nil, err
	}
	if !w.CanSign() {
		return nil, fmt.Errorf("%q: %w", w.Name, ErrWatchOnly)
	}
	if !p.cfg.Authorizer.ApproveConnect(w) {
		return nil, sale.ErrUserRejected
	}
	return []string{w.Address}, nil
}

// Signer returns an Account for a previously authorized address.
func (p *Provider) Signer(_ context.Context, address string) (sale.Signer, error) {
	w, err := p.walletFor(address)
	if err != nil {
		return nil, err
	}
	key, err := p.manager.PrivateKey(w)
	if err != nil {
		return nil, err
	}
	return &Account{
		wallet:  w,
		key:     key,
		backend: p.backend,
		cfg:     p.cfg,
		log:     p.cfg.Logger.With().Str("wallet", w.Name).Logger(),
	}, nil
}

func (p *Provider) walletFor(address string) (*Wallet, error) {
	wallets, err := p.manager.List()
	if err != nil {
		return nil, err
	}
	for _, w := range wallets {
		if strings.EqualFold(w.Address, address) {
			return w, nil
		}
	}
	return nil, fmt.Errorf("%w: no wallet with address %s", ErrWalletNotFound, address)
}

// DetectConfig describes where to look for a wallet environment.
type DetectConfig struct {
	RPCURLs   []string
	Algorithm rpc.Algorithm
	ProviderConfig
}

// Detect picks a healthy endpoint serving the configured chain and builds a
// Provider on it. It fails when no endpoint qualifies. A missing wallet only
// surfaces later, when accounts are requested.
func Detect(ctx context.Context, m *Manager, cfg DetectConfig) (*Provider, error) {
	ep, err := rpc.Select(ctx, rpc.NewPicker(cfg.Algorithm), cfg.RPCURLs, cfg.ChainID)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug().
		Str("rpc", ep.URL).
		Dur("latency", ep.Latency).
		Uint64("block", ep.BlockNumber).
		Msg("rpc endpoint selected")
	return NewProvider(chain.NewEVMClient(ep.URL), m, cfg.ProviderConfig), nil
}
