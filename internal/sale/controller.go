package sale

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Mohsinsiddi/krypton/internal/chain"
)

// Controller owns the wallet session and the latest sale snapshot. It is
// safe for concurrent use; network calls are made without holding the lock.
type Controller struct {
	address  string
	detect   Detector
	log      zerolog.Logger
	metrics  *Metrics
	defaults Details
	now      func() time.Time

	mu         sync.Mutex
	provider   Provider
	signer     Signer
	account    string
	state      SessionState
	contract   Contract
	snapshot   Snapshot
	refreshSeq uint64
	appliedSeq uint64
	sessionSeq uint64 // bumped whenever the session is reset or a connect starts
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for caught failures.
func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithMetrics records controller activity in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// WithDefaultDetails sets the values Details falls back to when the
// contract cannot be asked.
func WithDefaultDetails(d Details) Option {
	return func(c *Controller) { c.defaults = d }
}

// NewController creates a controller for the sale contract at address.
// Nothing happens on the network until Initialize.
func NewController(address string, detect Detector, opts ...Option) *Controller {
	c := &Controller{
		address: address,
		detect:  detect,
		log:     zerolog.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Address returns the sale contract address.
func (c *Controller) Address() string { return c.address }

// Initialize detects the wallet environment, binds a read-only contract
// handle and loads the first snapshot. Without an environment it returns a
// KindEnvironmentMissing error and the zero snapshot.
func (c *Controller) Initialize(ctx context.Context) (Snapshot, error) {
	p, err := c.detect(ctx)
	if err == nil && p == nil {
		err = ErrNoProvider
	}
	if err != nil {
		if !errors.Is(err, ErrNoProvider) {
			err = fmt.Errorf("%w: %w", ErrNoProvider, err)
		}
		c.log.Warn().Err(err).Msg("wallet environment not available")
		return Snapshot{}, newError(KindEnvironmentMissing, "initialize", err)
	}

	c.mu.Lock()
	c.provider = p
	c.signer = nil
	c.account = ""
	c.state = Disconnected
	c.sessionSeq++
	c.contract = p.Bind(c.address)
	c.mu.Unlock()
	c.metrics.session(false)

	c.log.Debug().Str("contract", c.address).Msg("provider detected")
	return c.Refresh(ctx)
}

// Connect asks the provider to authorize an account and rebinds the
// contract to that account's signer. It is a no-op when already connected.
func (c *Controller) Connect(ctx context.Context) (Session, error) {
	c.mu.Lock()
	p := c.provider
	if p == nil {
		c.mu.Unlock()
		return Session{}, newError(KindEnvironmentMissing, "connect", ErrNoProvider)
	}
	switch c.state {
	case Connected:
		s := c.sessionLocked()
		c.mu.Unlock()
		return s, nil
	case Connecting:
		s := c.sessionLocked()
		c.mu.Unlock()
		return s, newError(KindAuthorizationDenied, "connect", ErrConnectPending)
	}
	c.state = Connecting
	c.sessionSeq++
	seq := c.sessionSeq
	c.mu.Unlock()

	account, signer, err := c.authorize(ctx, p)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.sessionSeq {
		c.log.Debug().Msg("wallet connect superseded")
		return c.sessionLocked(), newError(KindAuthorizationDenied, "connect", ErrConnectCancelled)
	}
	if err != nil {
		c.state = Disconnected
		c.log.Warn().Err(err).Msg("failed to connect wallet")
		return c.sessionLocked(), newError(KindAuthorizationDenied, "connect", err)
	}
	c.signer = signer
	c.account = account
	c.state = Connected
	c.contract = signer.Bind(c.address)
	c.metrics.session(true)

	c.log.Info().Str("account", account).Msg("wallet connected")
	return c.sessionLocked(), nil
}

func (c *Controller) authorize(ctx context.Context, p Provider) (string, Signer, error) {
	accounts, err := p.RequestAccounts(ctx)
	if err != nil {
		return "", nil, err
	}
	if len(accounts) == 0 {
		return "", nil, ErrNoAccounts
	}
	signer, err := p.Signer(ctx, accounts[0])
	if err != nil {
		return "", nil, fmt.Errorf("signer for %s: %w", accounts[0], err)
	}
	return accounts[0], signer, nil
}

// Disconnect forgets the signer and account and goes back to the read-only
// contract handle. The provider and the snapshot are kept.
func (c *Controller) Disconnect() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signer = nil
	c.account = ""
	c.state = Disconnected
	c.sessionSeq++
	if c.provider != nil {
		c.contract = c.provider.Bind(c.address)
	}
	c.metrics.session(false)
	return c.sessionLocked()
}

// Refresh reads the sale parameters and replaces the snapshot. The six
// numeric reads succeed or fail together; a failed phase query only sets
// PhaseError. When refreshes overlap, the one started last wins and older
// results are dropped.
func (c *Controller) Refresh(ctx context.Context) (Snapshot, error) {
	c.mu.Lock()
	ct := c.contract
	if ct == nil {
		c.mu.Unlock()
		return Snapshot{}, newError(KindEnvironmentMissing, "refresh", ErrNoProvider)
	}
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	snap, err := c.read(ctx, ct)
	if err != nil {
		c.log.Error().Err(err).Uint64("seq", seq).Msg("failed to fetch ICO details")
		c.metrics.refresh("failed")
		return c.Snapshot(), newError(KindQueryFailure, "refresh", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq < c.appliedSeq {
		c.log.Debug().Uint64("seq", seq).Uint64("applied", c.appliedSeq).Msg("discarding stale snapshot")
		c.metrics.refresh("stale")
		return c.snapshot, nil
	}
	c.appliedSeq = seq
	c.snapshot = snap
	c.metrics.refresh("applied")
	c.metrics.snapshot(snap)
	return snap, nil
}

func (c *Controller) read(ctx context.Context, ct Contract) (Snapshot, error) {
	var (
		supply, raised, price, hardCap, maxInv, minInv *big.Int

		phase    Phase
		phaseErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	get := func(dst **big.Int, fn func(context.Context) (*big.Int, error)) {
		g.Go(func() error {
			v, err := fn(gctx)
			if err != nil {
				return err
			}
			*dst = v
			return nil
		})
	}
	get(&supply, ct.TotalSupply)
	get(&raised, ct.RaisedAmount)
	get(&price, ct.TokenPrice)
	get(&hardCap, ct.HardCap)
	get(&maxInv, ct.MaxInvestment)
	get(&minInv, ct.MinInvestment)
	g.Go(func() error {
		code, err := ct.GetCurrentState(gctx)
		if err != nil {
			phase, phaseErr = PhaseError, err
			return nil
		}
		phase = PhaseFromCode(int64(code))
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	if phaseErr != nil {
		c.log.Error().Err(phaseErr).Msg("failed to fetch ICO state")
	}

	return Snapshot{
		TotalSupply:   tokens(supply),
		TotalRaised:   chain.WeiToEther(raised),
		TokenPrice:    chain.WeiToEther(price),
		HardCap:       chain.WeiToEther(hardCap),
		MaxInvestment: chain.WeiToEther(maxInv),
		MinInvestment: chain.WeiToEther(minInv),
		Phase:         phase,
		UpdatedAt:     c.now(),
	}, nil
}

// tokens converts a raw token amount; the sale token has no decimals.
func tokens(n *big.Int) decimal.Decimal {
	if n == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n, 0)
}

// Investment is the outcome of a mined investment transaction.
type Investment struct {
	Account     string
	TxHash      string
	Amount      decimal.Decimal // ether
	Wei         *big.Int
	BlockNumber uint64
	GasUsed     uint64
}

// Invest validates amount, sends it to the sale contract from the connected
// account and waits for the transaction to be mined. On success the snapshot
// is refreshed. Nothing is retried.
func (c *Controller) Invest(ctx context.Context, amount string) (*Investment, error) {
	amt, err := InvestmentRequest{Amount: amount}.Validate()
	if err == nil {
		var wei *big.Int
		if wei, err = chain.EtherToWei(amt); err == nil {
			return c.invest(ctx, amt, wei)
		}
	}
	c.metrics.invest("invalid")
	return nil, newError(KindValidationFailure, "invest", err)
}

func (c *Controller) invest(ctx context.Context, amt decimal.Decimal, wei *big.Int) (*Investment, error) {
	c.mu.Lock()
	signer, account := c.signer, c.account
	c.mu.Unlock()
	if signer == nil {
		c.metrics.invest("not_connected")
		return nil, newError(KindAuthorizationDenied, "invest", ErrNotConnected)
	}

	log := c.log.With().Str("account", account).Str("amount", amt.String()).Logger()

	hash, err := signer.SendTransaction(ctx, c.address, wei)
	if err != nil {
		log.Error().Err(err).Msg("investment failed")
		if errors.Is(err, ErrUserRejected) {
			c.metrics.invest("rejected")
			return nil, newError(KindAuthorizationDenied, "invest", err)
		}
		c.metrics.invest("failed")
		return nil, newError(KindSubmissionFailure, "invest", err)
	}
	log.Info().Str("tx", hash).Msg("investment submitted")

	receipt, err := signer.WaitMined(ctx, hash)
	if err != nil {
		log.Error().Err(err).Str("tx", hash).Msg("investment failed")
		c.metrics.invest("failed")
		return nil, newError(KindSubmissionFailure, "invest", fmt.Errorf("tx %s: %w", hash, err))
	}
	c.metrics.invest("mined")

	if _, err := c.Refresh(ctx); err != nil {
		log.Warn().Err(err).Msg("refresh after investment failed")
	}

	return &Investment{
		Account:     account,
		TxHash:      hash,
		Amount:      amt,
		Wei:         wei,
		BlockNumber: receipt.BlockNumber,
		GasUsed:     receipt.GasUsed,
	}, nil
}

// TokenBalance returns the connected account's token balance in whole tokens.
func (c *Controller) TokenBalance(ctx context.Context) (decimal.Decimal, error) {
	c.mu.Lock()
	ct, account := c.contract, c.account
	connected := c.state == Connected
	c.mu.Unlock()
	if !connected {
		return decimal.Zero, newError(KindAuthorizationDenied, "balance", ErrNotConnected)
	}
	n, err := ct.BalanceOf(ctx, account)
	if err != nil {
		c.log.Error().Err(err).Str("account", account).Msg("failed to fetch token balance")
		return decimal.Zero, newError(KindQueryFailure, "balance", err)
	}
	return tokens(n), nil
}

// Snapshot returns a copy of the last applied snapshot.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Session returns a copy of the wallet session.
func (c *Controller) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionLocked()
}

// HasProvider reports whether Initialize found a wallet environment.
func (c *Controller) HasProvider() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.provider != nil
}

func (c *Controller) sessionLocked() Session {
	return Session{State: c.state, Account: c.account}
}
